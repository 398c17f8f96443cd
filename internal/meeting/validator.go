// Package meeting は会議コスト管理のドメインロジックを提供する。
package meeting

import (
	"fmt"

	"github.com/hitoshi/meetcost/internal/model"
	"github.com/hitoshi/meetcost/internal/security"
)

// バリデーション境界値。DB側のCHECK制約と一致させること。
const (
	TitleMinLength       = 3
	TitleMaxLength       = 100
	DescriptionMaxLength = 500
	MinAttendees         = 1
	MaxAttendees         = 100
	MinDurationMinutes   = 1
	MaxDurationMinutes   = 1440
	MinHourlyRate        = 0
	MaxHourlyRate        = 10000
)

// FieldError は1フィールドのバリデーションエラーを表す。
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Messages はフィールドエラーのメッセージのみを列挙して返す。
func Messages(errs []FieldError) []string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Message
	}
	return msgs
}

// Validator は会議入力のサニタイズとバリデーションを行う。
// 全フィールドを検査し、違反を1件も漏らさず収集する（最初のエラーで打ち切らない）。
// 文字数チェックはサニタイズ後の値に対して行うため、除去されたマークアップの分だけ
// 長い生入力でも通過しうる。
type Validator struct {
	sanitizer security.InputSanitizerService
}

// NewValidator はValidatorを生成する。
func NewValidator(sanitizer security.InputSanitizerService) *Validator {
	return &Validator{sanitizer: sanitizer}
}

// ValidateInput は新規作成入力をサニタイズして検証する。
// サニタイズ済みの入力と、検出した全フィールドエラーを返す。
// エラーが空でない場合、返される入力を永続化してはならない。
func (v *Validator) ValidateInput(in model.MeetingInput) (model.MeetingInput, []FieldError) {
	var errs []FieldError

	sanitized := in
	sanitized.Title = v.sanitizer.Sanitize(in.Title)
	if in.Description != nil {
		d := v.sanitizer.Sanitize(*in.Description)
		if d == "" {
			sanitized.Description = nil
		} else {
			sanitized.Description = &d
		}
	}

	errs = append(errs, validateTitle(sanitized.Title)...)
	errs = append(errs, validateDescription(sanitized.Description)...)
	errs = append(errs, validateAttendees(sanitized.AttendeesCount)...)
	errs = append(errs, validateDuration(sanitized.DurationMinutes)...)
	errs = append(errs, validateHourlyRate(sanitized.AverageHourlyRate)...)

	return sanitized, errs
}

// ValidatePatch は部分更新入力をサニタイズして検証する。
// 指定されたフィールドのみを検査し、nilのフィールドは変更なしとして素通しする。
func (v *Validator) ValidatePatch(p model.MeetingPatch) (model.MeetingPatch, []FieldError) {
	var errs []FieldError

	sanitized := p
	if p.Title != nil {
		t := v.sanitizer.Sanitize(*p.Title)
		sanitized.Title = &t
		errs = append(errs, validateTitle(t)...)
	}
	if p.Description != nil {
		d := v.sanitizer.Sanitize(*p.Description)
		sanitized.Description = &d
		errs = append(errs, validateDescription(&d)...)
	}
	if p.AttendeesCount != nil {
		errs = append(errs, validateAttendees(*p.AttendeesCount)...)
	}
	if p.DurationMinutes != nil {
		errs = append(errs, validateDuration(*p.DurationMinutes)...)
	}
	if p.AverageHourlyRate != nil {
		errs = append(errs, validateHourlyRate(*p.AverageHourlyRate)...)
	}

	return sanitized, errs
}

func validateTitle(title string) []FieldError {
	var errs []FieldError
	length := len([]rune(title))
	if length < TitleMinLength {
		errs = append(errs, FieldError{
			Field:   "title",
			Message: fmt.Sprintf("タイトルは%d文字以上で入力してください", TitleMinLength),
		})
	}
	if length > TitleMaxLength {
		errs = append(errs, FieldError{
			Field:   "title",
			Message: fmt.Sprintf("タイトルは%d文字以内で入力してください", TitleMaxLength),
		})
	}
	return errs
}

func validateDescription(description *string) []FieldError {
	if description == nil {
		return nil
	}
	if len([]rune(*description)) > DescriptionMaxLength {
		return []FieldError{{
			Field:   "description",
			Message: fmt.Sprintf("説明は%d文字以内で入力してください", DescriptionMaxLength),
		}}
	}
	return nil
}

func validateAttendees(count int) []FieldError {
	if count < MinAttendees || count > MaxAttendees {
		return []FieldError{{
			Field:   "attendees_count",
			Message: fmt.Sprintf("参加者数は%d人以上%d人以下で指定してください", MinAttendees, MaxAttendees),
		}}
	}
	return nil
}

func validateDuration(minutes int) []FieldError {
	if minutes < MinDurationMinutes || minutes > MaxDurationMinutes {
		return []FieldError{{
			Field:   "duration_minutes",
			Message: fmt.Sprintf("会議時間は%d分以上%d分以下で指定してください", MinDurationMinutes, MaxDurationMinutes),
		}}
	}
	return nil
}

func validateHourlyRate(rate float64) []FieldError {
	if rate < MinHourlyRate || rate > MaxHourlyRate {
		return []FieldError{{
			Field:   "average_hourly_rate",
			Message: fmt.Sprintf("平均時給は%d以上%d以下で指定してください", MinHourlyRate, MaxHourlyRate),
		}}
	}
	return nil
}
