// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, user, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidAction    = "INVALID_ACTION"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeInvalidBirthYear = "INVALID_BIRTH_YEAR"
	ErrCodeInvalidUsageMode = "INVALID_USAGE_MODE"
	ErrCodeInvalidGoal      = "INVALID_GOAL"
	ErrCodeInvalidUserID    = "INVALID_USER_ID"
	ErrCodeInvalidDate      = "INVALID_DATE"
	ErrCodeEmptyNote        = "EMPTY_NOTE"
	ErrCodeInvalidNoteValue = "INVALID_NOTE_VALUE"
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodeDuplicateCycle   = "DUPLICATE_CYCLE"
	ErrCodeRateLimited      = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// NewInvalidActionError は未知のaction、またはメソッドの組み合わせが不正な場合のエラーを生成する。
func NewInvalidActionError(action string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidAction,
		Message:  fmt.Sprintf("無効なアクションです: %q", action),
		Category: "validation",
		Action:   "actionパラメータとHTTPメソッドを確認してください。",
	}
}

// NewInvalidRequestError はリクエストボディが解析できない場合のエラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewInvalidBirthYearError は生まれ年が範囲外の場合のエラーを生成する。
func NewInvalidBirthYearError(year int) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidBirthYear,
		Message:  fmt.Sprintf("無効な生まれ年です: %d", year),
		Category: "validation",
		Action:   "表示されている範囲から生まれ年を選択してください。",
	}
}

// NewInvalidUsageModeError は利用形態が不正な場合のエラーを生成する。
func NewInvalidUsageModeError(mode string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidUsageMode,
		Message:  fmt.Sprintf("無効な利用形態です: %q", mode),
		Category: "validation",
		Action:   "usage_mode には self または partner を指定してください。",
	}
}

// NewInvalidGoalError は目的タグが不正、または1件も指定されていない場合のエラーを生成する。
func NewInvalidGoalError(goal string) *APIError {
	msg := fmt.Sprintf("無効な目的です: %q", goal)
	if goal == "" {
		msg = "目的が選択されていません。"
	}
	return &APIError{
		Code:     ErrCodeInvalidGoal,
		Message:  msg,
		Category: "validation",
		Action:   "一覧から1つ以上の目的を選択してください。",
	}
}

// NewInvalidUserIDError はuser_idが欠落または不正な場合のエラーを生成する。
func NewInvalidUserIDError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidUserID,
		Message:  "user_id が指定されていないか、不正な値です。",
		Category: "validation",
		Action:   "正の整数のuser_idを指定してください。",
	}
}

// NewInvalidDateError は日付がYYYY-MM-DD形式でない場合のエラーを生成する。
func NewInvalidDateError(field, value string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDate,
		Message:  fmt.Sprintf("%s の日付形式が不正です: %q", field, value),
		Category: "validation",
		Action:   "日付は YYYY-MM-DD 形式で指定してください。",
	}
}

// NewEmptyNoteError は記録項目が1つも指定されていない場合のエラーを生成する。
func NewEmptyNoteError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyNote,
		Message:  "記録する項目が指定されていません。",
		Category: "validation",
		Action:   "mood、energy_level、sleep_quality のいずれかを指定してください。",
	}
}

// NewInvalidNoteValueError は記録値が長すぎる、または空の場合のエラーを生成する。
func NewInvalidNoteValueError(field NoteField) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidNoteValue,
		Message:  fmt.Sprintf("%s の値が不正です。", field),
		Category: "validation",
		Action:   "64文字以内のテキストを指定してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "user",
		Action:   "アプリを再起動し、初期設定をやり直してください。",
	}
}

// NewDuplicateCycleError は同じ開始日の周期を再度記録しようとした場合のエラーを生成する。
func NewDuplicateCycleError(startDate string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateCycle,
		Message:  fmt.Sprintf("%s の周期は既に記録されています。", startDate),
		Category: "validation",
		Action:   "周期一覧から該当の開始日を確認してください。",
	}
}

// NewRateLimitedError はレート制限超過時のエラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "リクエストが多すぎます。",
		Category: "system",
		Action:   "Retry-After ヘッダーの秒数だけ待ってから再度お試しください。",
	}
}

// NewInternalError は内部エラーの汎用レスポンス用エラーを生成する。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
