// Package apperr はAPI全体で共有するエラー種別を定義する。
//
// サービス層は失敗を Kind 付きの *Error として返し、HTTP層はKindから
// ステータスコードとレスポンス形式を一箇所で決定する。
package apperr

import (
	"errors"
	"fmt"
)

// Kind はエラーの種別を表す。
type Kind int

const (
	// KindInternal は想定外の失敗。500として扱う。
	KindInternal Kind = iota
	// KindMissingToken は認証トークンのヘッダーが存在しないことを表す。
	KindMissingToken
	// KindInvalidToken は認証トークンの検証に失敗したことを表す。
	KindInvalidToken
	// KindValidation はリクエストの形式が不正であることを表す。
	KindValidation
	// KindBadRequest は入力値は正しい形式だが処理できない要求を表す。
	KindBadRequest
	// KindNotFound はリソースまたはサブエントリが存在しないことを表す。
	KindNotFound
	// KindMalformedID は識別子の形式が不正であることを表す。
	KindMalformedID
	// KindForbidden はリソースの所有者と呼び出し元が一致しないことを表す。
	KindForbidden
	// KindAlreadyLiked は既にいいね済みの投稿に再度いいねしたことを表す。
	KindAlreadyLiked
	// KindNotLiked はいいねしていない投稿のいいねを取り消そうとしたことを表す。
	KindNotLiked
	// KindUpstream はストアや外部APIの想定外の失敗を表す。
	KindUpstream
)

// String はKindの名前を返す。
func (k Kind) String() string {
	switch k {
	case KindMissingToken:
		return "MissingToken"
	case KindInvalidToken:
		return "InvalidToken"
	case KindValidation:
		return "ValidationFailed"
	case KindBadRequest:
		return "BadRequest"
	case KindNotFound:
		return "NotFound"
	case KindMalformedID:
		return "MalformedID"
	case KindForbidden:
		return "Forbidden"
	case KindAlreadyLiked:
		return "AlreadyLiked"
	case KindNotLiked:
		return "NotLiked"
	case KindUpstream:
		return "UpstreamFailure"
	default:
		return "Internal"
	}
}

// FieldError は入力フィールド単位の検証エラー。
type FieldError struct {
	// Msg は利用者向けのメッセージ。
	Msg string `json:"msg"`
	// Param は対象のフィールド名。フィールドに紐づかない場合は空。
	Param string `json:"param,omitempty"`
	// Location は値の取得元。
	Location string `json:"location,omitempty"`
}

// Error はKindとメッセージを持つアプリケーションエラー。
type Error struct {
	// Kind はエラーの種別。
	Kind Kind
	// Message は利用者向けのメッセージ。
	Message string
	// Fields はフィールド単位の詳細。KindValidationとKindBadRequestで使用する。
	Fields []FieldError
	// Err は原因となったエラー。
	Err error
}

// Error はerrorインターフェースを実装する。
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap は原因となったエラーを返す。
func (e *Error) Unwrap() error {
	return e.Err
}

// New はKindとメッセージからエラーを生成する。
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap は原因エラーを保持したままKindを付与する。
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation はフィールドエラーの一覧から検証エラーを生成する。
func Validation(fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

// Rejected はフィールドエラー形式で返すKindBadRequestを生成する。
// 既存ユーザーや認証情報の誤りなど、入力全体が受け付けられない場合に使用する。
func Rejected(msg string) *Error {
	return &Error{Kind: KindBadRequest, Message: msg, Fields: []FieldError{{Msg: msg}}}
}

// NotFound はKindNotFoundのエラーを生成する。
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// Forbidden はKindForbiddenのエラーを生成する。
func Forbidden() *Error {
	return New(KindForbidden, "User not authorized")
}

// KindOf はエラーチェーンからKindを取り出す。*Errorを含まない場合はKindInternalを返す。
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is はエラーチェーンに指定したKindの*Errorが含まれるかを判定する。
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
