// Package model はドメインモデルを定義する。
package model

// CreatePitchStatus はピッチ投稿結果のステータス。
type CreatePitchStatus string

const (
	// StatusSuccess は投稿が成功したことを示す。
	StatusSuccess CreatePitchStatus = "SUCCESS"
	// StatusError は投稿が失敗したことを示す。
	StatusError CreatePitchStatus = "ERROR"
)

// CreatePitchResult はピッチ投稿1回分の結果値。
// 失敗はすべてこの構造化された値に変換され、
// ハンドラー層に未処理の例外として伝播することはない。
type CreatePitchResult struct {
	Status CreatePitchStatus   `json:"status"`
	Error  string              `json:"error"`
	Errors map[string][]string `json:"errors,omitempty"`
	ID     string              `json:"id,omitempty"`
}

// ValidationResult は投稿1回分のバリデーション結果。
// フィールド名をキーとするエラーメッセージの集合を保持する。
// フィールドに帰属できない違反は "form" バケットに入る。
type ValidationResult struct {
	FieldErrors map[string][]string
}

// Valid はバリデーションが成功したかを返す。
func (r *ValidationResult) Valid() bool {
	return len(r.FieldErrors) == 0
}

// AddFieldError は指定フィールドにエラーメッセージを追加する。
// フィールド名が空の場合は "form" バケットに入れる。
func (r *ValidationResult) AddFieldError(field, message string) {
	if field == "" {
		field = "form"
	}
	if r.FieldErrors == nil {
		r.FieldErrors = make(map[string][]string)
	}
	r.FieldErrors[field] = append(r.FieldErrors[field], message)
}
