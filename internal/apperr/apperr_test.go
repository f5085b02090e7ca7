package apperr

import (
	"errors"
	"fmt"
	"testing"
)

// TestKindOf はエラーチェーンからKindを取り出せることを検証する。
func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "直接のError", err: NotFound("Post not found"), want: KindNotFound},
		{name: "ラップされたError", err: fmt.Errorf("削除に失敗: %w", Forbidden()), want: KindForbidden},
		{name: "通常のerror", err: errors.New("boom"), want: KindInternal},
		{name: "nil", err: nil, want: KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestIs はIsが種別の一致を判定できることを検証する。
func TestIs(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("いいねに失敗: %w", New(KindAlreadyLiked, "Post already liked"))
	if !Is(err, KindAlreadyLiked) {
		t.Error("Is(KindAlreadyLiked) = false, want true")
	}
	if Is(err, KindNotLiked) {
		t.Error("Is(KindNotLiked) = true, want false")
	}
}

// TestWrap は原因エラーがUnwrapで取り出せることを検証する。
func TestWrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk I/O error")
	err := Wrap(KindUpstream, "store failure", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if got := err.Error(); got != "UpstreamFailure: store failure: disk I/O error" {
		t.Errorf("Error() = %q", got)
	}
}

// TestRejected はRejectedがフィールド形式の詳細を持つことを検証する。
func TestRejected(t *testing.T) {
	t.Parallel()

	err := Rejected("Invalid Credentials")
	if err.Kind != KindBadRequest {
		t.Errorf("Kind = %v, want %v", err.Kind, KindBadRequest)
	}
	if len(err.Fields) != 1 || err.Fields[0].Msg != "Invalid Credentials" {
		t.Errorf("Fields = %+v", err.Fields)
	}
}
