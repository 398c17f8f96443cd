package meeting

import (
	"strings"
	"testing"

	"github.com/hitoshi/meetcost/internal/model"
	"github.com/hitoshi/meetcost/internal/security"
)

func newTestValidator() *Validator {
	return NewValidator(security.NewInputSanitizer())
}

func strPtr(s string) *string { return &s }

func validInput() model.MeetingInput {
	return model.MeetingInput{
		Title:             "スプリント計画",
		Description:       strPtr("来週のタスク整理 @tanaka"),
		AttendeesCount:    5,
		DurationMinutes:   30,
		AverageHourlyRate: 50,
	}
}

// 有効な入力がエラーなしで通過することを検証
func TestValidateInput_ValidInput_NoErrors(t *testing.T) {
	v := newTestValidator()

	sanitized, errs := v.ValidateInput(validInput())
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	if sanitized.Title != "スプリント計画" {
		t.Errorf("Title = %q, want unchanged", sanitized.Title)
	}
}

// タイトルの境界値を検証
func TestValidateInput_TitleBoundaries(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name    string
		title   string
		wantErr bool
	}{
		{name: "2文字は拒否", title: "ab", wantErr: true},
		{name: "3文字ちょうどは受理", title: "abc", wantErr: false},
		{name: "100文字ちょうどは受理", title: strings.Repeat("a", 100), wantErr: false},
		{name: "101文字は拒否", title: strings.Repeat("a", 101), wantErr: true},
		{name: "空文字は拒否", title: "", wantErr: true},
		{name: "空白のみは拒否（トリム後に空）", title: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			in.Title = tt.title

			_, errs := v.ValidateInput(in)
			hasTitleErr := false
			for _, e := range errs {
				if e.Field == "title" {
					hasTitleErr = true
				}
			}
			if hasTitleErr != tt.wantErr {
				t.Errorf("title %q: title error = %v, want %v (errs: %v)", tt.title, hasTitleErr, tt.wantErr, errs)
			}
		})
	}
}

// 文字数チェックがサニタイズ後の値に対して行われることを検証。
// マークアップの分だけ長い生入力は、除去後の長さで判定されて通過する。
func TestValidateInput_LengthCheckedAfterSanitization(t *testing.T) {
	v := newTestValidator()

	// 生の長さは100文字を大きく超えるが、タグ除去後は «重要な四半期レビュー» のみ
	in := validInput()
	in.Title = "<div class='" + strings.Repeat("x", 200) + "'>重要な四半期レビュー</div>"

	sanitized, errs := v.ValidateInput(in)
	if len(errs) != 0 {
		t.Fatalf("expected no errors after sanitization, got %v", errs)
	}
	if sanitized.Title != "重要な四半期レビュー" {
		t.Errorf("Title = %q, want %q", sanitized.Title, "重要な四半期レビュー")
	}
}

// タグ除去後に3文字未満になったタイトルが拒否されることを検証
func TestValidateInput_TitleTooShortAfterStripping(t *testing.T) {
	v := newTestValidator()

	in := validInput()
	in.Title = "<b>ab</b>"

	_, errs := v.ValidateInput(in)
	if len(errs) == 0 {
		t.Fatal("expected title error for 2 chars after stripping, got none")
	}
}

// 全フィールドの違反が1回の呼び出しで収集されることを検証（短絡しない）
func TestValidateInput_CollectsAllErrors(t *testing.T) {
	v := newTestValidator()

	in := model.MeetingInput{
		Title:             "",
		Description:       strPtr(strings.Repeat("あ", 501)),
		AttendeesCount:    200,
		DurationMinutes:   0,
		AverageHourlyRate: 20000,
	}

	_, errs := v.ValidateInput(in)
	if len(errs) < 5 {
		t.Fatalf("expected at least 5 errors (all fields), got %d: %v", len(errs), errs)
	}

	fields := map[string]bool{}
	for _, e := range errs {
		fields[e.Field] = true
	}
	for _, f := range []string{"title", "description", "attendees_count", "duration_minutes", "average_hourly_rate"} {
		if !fields[f] {
			t.Errorf("missing error for field %q", f)
		}
	}
}

// 数値フィールドの境界値を検証
func TestValidateInput_NumericBoundaries(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name     string
		mutate   func(*model.MeetingInput)
		wantErrs int
	}{
		{name: "参加者1人は受理", mutate: func(in *model.MeetingInput) { in.AttendeesCount = 1 }, wantErrs: 0},
		{name: "参加者100人は受理", mutate: func(in *model.MeetingInput) { in.AttendeesCount = 100 }, wantErrs: 0},
		{name: "参加者0人は拒否", mutate: func(in *model.MeetingInput) { in.AttendeesCount = 0 }, wantErrs: 1},
		{name: "参加者101人は拒否", mutate: func(in *model.MeetingInput) { in.AttendeesCount = 101 }, wantErrs: 1},
		{name: "1分は受理", mutate: func(in *model.MeetingInput) { in.DurationMinutes = 1 }, wantErrs: 0},
		{name: "1440分は受理", mutate: func(in *model.MeetingInput) { in.DurationMinutes = 1440 }, wantErrs: 0},
		{name: "1441分は拒否", mutate: func(in *model.MeetingInput) { in.DurationMinutes = 1441 }, wantErrs: 1},
		{name: "時給0は受理", mutate: func(in *model.MeetingInput) { in.AverageHourlyRate = 0 }, wantErrs: 0},
		{name: "時給10000は受理", mutate: func(in *model.MeetingInput) { in.AverageHourlyRate = 10000 }, wantErrs: 0},
		{name: "時給10000.01は拒否", mutate: func(in *model.MeetingInput) { in.AverageHourlyRate = 10000.01 }, wantErrs: 1},
		{name: "負の時給は拒否", mutate: func(in *model.MeetingInput) { in.AverageHourlyRate = -1 }, wantErrs: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			_, errs := v.ValidateInput(in)
			if len(errs) != tt.wantErrs {
				t.Errorf("got %d errors, want %d: %v", len(errs), tt.wantErrs, errs)
			}
		})
	}
}

// 説明の境界値を検証
func TestValidateInput_DescriptionBoundaries(t *testing.T) {
	v := newTestValidator()

	// 500文字ちょうどは受理
	in := validInput()
	in.Description = strPtr(strings.Repeat("あ", 500))
	if _, errs := v.ValidateInput(in); len(errs) != 0 {
		t.Errorf("500 chars: expected no errors, got %v", errs)
	}

	// 説明なしは受理（任意フィールド）
	in = validInput()
	in.Description = nil
	if _, errs := v.ValidateInput(in); len(errs) != 0 {
		t.Errorf("nil description: expected no errors, got %v", errs)
	}

	// scriptタグは除去されてから判定される
	in = validInput()
	in.Description = strPtr("議題\n<script>" + strings.Repeat("x", 600) + "</script>")
	sanitized, errs := v.ValidateInput(in)
	if len(errs) != 0 {
		t.Errorf("script-padded description: expected no errors, got %v", errs)
	}
	if sanitized.Description == nil || strings.Contains(*sanitized.Description, "script") {
		t.Errorf("script content not stripped: %v", sanitized.Description)
	}
}

// サニタイズ後に空になった説明がnilに正規化されることを検証
func TestValidateInput_EmptyDescriptionNormalizedToNil(t *testing.T) {
	v := newTestValidator()

	in := validInput()
	in.Description = strPtr("<p></p>")

	sanitized, errs := v.ValidateInput(in)
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	if sanitized.Description != nil {
		t.Errorf("Description = %q, want nil", *sanitized.Description)
	}
}

// パッチ検証: 指定フィールドのみ検査されることを検証
func TestValidatePatch_OnlyProvidedFieldsChecked(t *testing.T) {
	v := newTestValidator()

	// タイトルのみ不正、他フィールドは未指定
	p := model.MeetingPatch{Title: strPtr("ab")}
	_, errs := v.ValidatePatch(p)
	if len(errs) != 1 || errs[0].Field != "title" {
		t.Errorf("expected single title error, got %v", errs)
	}

	// 空のパッチはエラーなし
	if _, errs := v.ValidatePatch(model.MeetingPatch{}); len(errs) != 0 {
		t.Errorf("empty patch: expected no errors, got %v", errs)
	}
}

// パッチ検証: テキストフィールドがサニタイズされることを検証
func TestValidatePatch_SanitizesTextFields(t *testing.T) {
	v := newTestValidator()

	p := model.MeetingPatch{
		Title:       strPtr("<b>四半期レビュー</b>"),
		Description: strPtr("進行: @sato<script>bad()</script>"),
	}

	sanitized, errs := v.ValidatePatch(p)
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	if *sanitized.Title != "四半期レビュー" {
		t.Errorf("Title = %q, want %q", *sanitized.Title, "四半期レビュー")
	}
	if strings.Contains(*sanitized.Description, "script") {
		t.Errorf("Description not sanitized: %q", *sanitized.Description)
	}
}
