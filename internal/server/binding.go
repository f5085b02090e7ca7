package server

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/nao1215/devconnector/internal/apperr"
)

// locationBody はフィールドエラーの取得元。
const locationBody = "body"

// validationOnce はタグ名関数の登録を1回に限る。
var validationOnce sync.Once

// registerValidation はginの検証エンジンがJSONタグ名でフィールドを報告するよう設定する。
func registerValidation() {
	validationOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// messager はフィールドごとの検証メッセージを持つリクエスト。
// キーは "フィールド名.タグ" または "フィールド名"。
type messager interface {
	messages() map[string]string
}

// bindJSON はリクエストボディをreqに読み込み検証する。
// 失敗した場合はフィールドエラーの一覧を持つKindValidationを返す。
func bindJSON(c *gin.Context, req messager) error {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation(apperr.FieldError{Msg: "Invalid request body", Location: locationBody})
	}

	msgs := req.messages()
	fields := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := msgs[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg, ok = msgs[fe.Field()]
		}
		if !ok {
			msg = fe.Field() + " is invalid"
		}
		fields = append(fields, apperr.FieldError{Msg: msg, Param: fe.Field(), Location: locationBody})
	}
	return apperr.Validation(fields...)
}

// registerRequest はユーザー登録のリクエストボディ。
type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// messages はユーザー登録の検証メッセージを返す。
func (registerRequest) messages() map[string]string {
	return map[string]string{
		"name":     "Name is required",
		"email":    "Please include a valid email",
		"password": "Please enter a password with 6 or more characters",
	}
}

// loginRequest はログインのリクエストボディ。
type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// messages はログインの検証メッセージを返す。
func (loginRequest) messages() map[string]string {
	return map[string]string{
		"email":    "Please include a valid email",
		"password": "Password is required",
	}
}

// profileRequest はプロフィール作成・更新のリクエストボディ。
// SNSリンクはトップレベルのフィールドで受け取る。
type profileRequest struct {
	Company        string `json:"company"`
	Website        string `json:"website"`
	Location       string `json:"location"`
	Bio            string `json:"bio"`
	Status         string `json:"status" binding:"required"`
	GitHubUsername string `json:"githubusername"`
	Skills         string `json:"skills" binding:"required"`
	YouTube        string `json:"youtube"`
	Twitter        string `json:"twitter"`
	Facebook       string `json:"facebook"`
	LinkedIn       string `json:"linkedin"`
	Instagram      string `json:"instagram"`
}

// messages はプロフィールの検証メッセージを返す。
func (profileRequest) messages() map[string]string {
	return map[string]string{
		"status": "Status is required",
		"skills": "Skills is required",
	}
}

// experienceRequest は職歴追加のリクエストボディ。日付はYYYY-MM-DD形式。
type experienceRequest struct {
	Title       string `json:"title" binding:"required"`
	Company     string `json:"company" binding:"required"`
	Location    string `json:"location"`
	From        string `json:"from" binding:"required,datetime=2006-01-02"`
	To          string `json:"to" binding:"omitempty,datetime=2006-01-02"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

// messages は職歴の検証メッセージを返す。
func (experienceRequest) messages() map[string]string {
	return map[string]string{
		"title":         "Title is required",
		"company":       "Company is required",
		"from":          "From date is required",
		"from.datetime": "From date must be YYYY-MM-DD",
		"to":            "To date must be YYYY-MM-DD",
	}
}

// educationRequest は学歴追加のリクエストボディ。日付はYYYY-MM-DD形式。
type educationRequest struct {
	School       string `json:"school" binding:"required"`
	Degree       string `json:"degree" binding:"required"`
	FieldOfStudy string `json:"fieldofstudy" binding:"required"`
	From         string `json:"from" binding:"required,datetime=2006-01-02"`
	To           string `json:"to" binding:"omitempty,datetime=2006-01-02"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

// messages は学歴の検証メッセージを返す。
func (educationRequest) messages() map[string]string {
	return map[string]string{
		"school":        "School is required",
		"degree":        "Degree is required",
		"fieldofstudy":  "Field of study is required",
		"from":          "From date is required",
		"from.datetime": "From date must be YYYY-MM-DD",
		"to":            "To date must be YYYY-MM-DD",
	}
}

// textRequest は投稿とコメントのリクエストボディ。
type textRequest struct {
	Text string `json:"text" binding:"required"`
}

// messages は本文の検証メッセージを返す。
func (textRequest) messages() map[string]string {
	return map[string]string{"text": "Text is required"}
}
