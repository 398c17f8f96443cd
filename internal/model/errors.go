// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
// 内部エラーの詳細はログのみに記録し、ユーザーには含めない。
type APIError struct {
	Code     string   // エラーコード
	Message  string   // エラーメッセージ
	Category string   // カテゴリ: auth, validation, meeting, system
	Action   string   // ユーザー向け対処方法
	Details  []string // フィールド単位のエラーメッセージ（バリデーション時のみ）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeMeetingNotFound  = "MEETING_NOT_FOUND"
	ErrCodeProfileNotFound  = "PROFILE_NOT_FOUND"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewValidationFailedError はバリデーションエラーを生成する。
// detailsにはフィールド単位のエラーメッセージを全件含める。
func NewValidationFailedError(details []string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  "入力内容に誤りがあります。",
		Category: "validation",
		Action:   "各項目のエラーメッセージを確認して修正してください。",
		Details:  details,
	}
}

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewMeetingNotFoundError は会議未検出エラーを生成する。
// 他ユーザーの会議へのアクセスも、存在の有無を漏らさないために同じエラーで応答する。
func NewMeetingNotFoundError(meetingID string) *APIError {
	return &APIError{
		Code:     ErrCodeMeetingNotFound,
		Message:  fmt.Sprintf("指定された会議が見つかりません: %s", meetingID),
		Category: "meeting",
		Action:   "会議IDを確認してください。",
	}
}

// NewProfileNotFoundError はプロフィール未検出エラーを生成する。
func NewProfileNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeProfileNotFound,
		Message:  "ユーザープロフィールが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}
