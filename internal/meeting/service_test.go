package meeting

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/meetcost/internal/model"
	"github.com/hitoshi/meetcost/internal/security"
)

// mockMeetingRepo はMeetingRepositoryのテスト用モック
type mockMeetingRepo struct {
	createFunc       func(ctx context.Context, meeting *model.Meeting) error
	findByIDFunc     func(ctx context.Context, id string) (*model.Meeting, error)
	updateFunc       func(ctx context.Context, meeting *model.Meeting) error
	deleteFunc       func(ctx context.Context, id string) error
	listByUserIDFunc func(ctx context.Context, userID string) ([]model.Meeting, error)
}

func (m *mockMeetingRepo) Create(ctx context.Context, meeting *model.Meeting) error {
	return m.createFunc(ctx, meeting)
}

func (m *mockMeetingRepo) FindByID(ctx context.Context, id string) (*model.Meeting, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockMeetingRepo) Update(ctx context.Context, meeting *model.Meeting) error {
	return m.updateFunc(ctx, meeting)
}

func (m *mockMeetingRepo) Delete(ctx context.Context, id string) error {
	return m.deleteFunc(ctx, id)
}

func (m *mockMeetingRepo) ListByUserID(ctx context.Context, userID string) ([]model.Meeting, error) {
	return m.listByUserIDFunc(ctx, userID)
}

// mockProfileRepo はProfileRepositoryのテスト用モック
type mockProfileRepo struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Profile, error)
}

func (m *mockProfileRepo) FindByID(ctx context.Context, id string) (*model.Profile, error) {
	return m.findByIDFunc(ctx, id)
}

func noProfile(ctx context.Context, id string) (*model.Profile, error) {
	return nil, nil
}

func newTestService(meetings *mockMeetingRepo, profiles *mockProfileRepo) *Service {
	return NewService(meetings, profiles, newTestValidator(), nil, "EUR")
}

// 会議作成の正常系を検証。DB側で導出されたtotal_costが返ることを模擬する。
func TestCreateMeeting_Success(t *testing.T) {
	var created *model.Meeting
	meetings := &mockMeetingRepo{
		createFunc: func(ctx context.Context, m *model.Meeting) error {
			m.TotalCost = Cost(m.AttendeesCount, m.AverageHourlyRate, m.DurationMinutes)
			created = m
			return nil
		},
	}
	svc := newTestService(meetings, &mockProfileRepo{findByIDFunc: noProfile})

	got, err := svc.CreateMeeting(context.Background(), "user-1", model.MeetingInput{
		Title:             "スプリント計画",
		AttendeesCount:    10,
		DurationMinutes:   90,
		AverageHourlyRate: 100,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("repository Create was not called")
	}
	if got.TotalCost != 1500 {
		t.Errorf("TotalCost = %v, want 1500", got.TotalCost)
	}
	if got.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", got.UserID)
	}
	if got.ID == "" {
		t.Error("ID should be generated")
	}
}

// プレビューと保存値の計算式が一致することを検証
func TestCreateMeeting_CostMatchesPreview(t *testing.T) {
	meetings := &mockMeetingRepo{
		createFunc: func(ctx context.Context, m *model.Meeting) error {
			m.TotalCost = Cost(m.AttendeesCount, m.AverageHourlyRate, m.DurationMinutes)
			return nil
		},
	}
	svc := newTestService(meetings, &mockProfileRepo{findByIDFunc: noProfile})

	preview, err := svc.PreviewCost(7, 85.5, 45)
	if err != nil {
		t.Fatalf("PreviewCost error: %v", err)
	}

	saved, err := svc.CreateMeeting(context.Background(), "user-1", model.MeetingInput{
		Title:             "定例ミーティング",
		AttendeesCount:    7,
		DurationMinutes:   45,
		AverageHourlyRate: 85.5,
	})
	if err != nil {
		t.Fatalf("CreateMeeting error: %v", err)
	}
	if saved.TotalCost != preview {
		t.Errorf("saved TotalCost %v != preview %v", saved.TotalCost, preview)
	}
}

// バリデーション違反時に全エラーが収集されて返ることを検証
func TestCreateMeeting_ValidationFailure(t *testing.T) {
	meetings := &mockMeetingRepo{
		createFunc: func(ctx context.Context, m *model.Meeting) error {
			t.Fatal("Create should not be called on invalid input")
			return nil
		},
	}
	svc := newTestService(meetings, &mockProfileRepo{findByIDFunc: noProfile})

	_, err := svc.CreateMeeting(context.Background(), "user-1", model.MeetingInput{
		Title:             "ab",
		AttendeesCount:    0,
		DurationMinutes:   2000,
		AverageHourlyRate: -5,
	})
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeValidationFailed {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeValidationFailed)
	}
	if len(apiErr.Details) != 4 {
		t.Errorf("Details count = %d, want 4: %v", len(apiErr.Details), apiErr.Details)
	}
}

// プロフィールの通貨が優先されることを検証
func TestCreateMeeting_CurrencyFromProfile(t *testing.T) {
	meetings := &mockMeetingRepo{
		createFunc: func(ctx context.Context, m *model.Meeting) error { return nil },
	}
	profiles := &mockProfileRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Profile, error) {
			return &model.Profile{ID: id, Currency: "JPY"}, nil
		},
	}
	svc := newTestService(meetings, profiles)

	got, err := svc.CreateMeeting(context.Background(), "user-1", model.MeetingInput{
		Title:             "定例ミーティング",
		AttendeesCount:    3,
		DurationMinutes:   30,
		AverageHourlyRate: 50,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Currency != "JPY" {
		t.Errorf("Currency = %q, want JPY", got.Currency)
	}
}

// プロフィールがない場合に既定通貨へフォールバックすることを検証
func TestCreateMeeting_CurrencyFallback(t *testing.T) {
	meetings := &mockMeetingRepo{
		createFunc: func(ctx context.Context, m *model.Meeting) error { return nil },
	}
	svc := newTestService(meetings, &mockProfileRepo{findByIDFunc: noProfile})

	got, err := svc.CreateMeeting(context.Background(), "user-1", model.MeetingInput{
		Title:             "定例ミーティング",
		AttendeesCount:    3,
		DurationMinutes:   30,
		AverageHourlyRate: 50,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Currency != "EUR" {
		t.Errorf("Currency = %q, want EUR", got.Currency)
	}
}

// 他ユーザーの会議の更新がNot Foundとなることを検証（存在の有無を漏らさない）
func TestUpdateMeeting_OwnershipMismatch(t *testing.T) {
	meetings := &mockMeetingRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Meeting, error) {
			return &model.Meeting{ID: id, UserID: "other-user", Title: "秘密の会議"}, nil
		},
		updateFunc: func(ctx context.Context, m *model.Meeting) error {
			t.Fatal("Update should not be called for another user's meeting")
			return nil
		},
	}
	svc := newTestService(meetings, &mockProfileRepo{findByIDFunc: noProfile})

	_, err := svc.UpdateMeeting(context.Background(), "user-1", "meeting-1", model.MeetingPatch{Title: strPtr("新タイトル")})
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeMeetingNotFound {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeMeetingNotFound)
	}
}

// パッチ適用で指定フィールドのみ変更されることを検証
func TestUpdateMeeting_PartialPatch(t *testing.T) {
	existing := &model.Meeting{
		ID:                "meeting-1",
		UserID:            "user-1",
		Title:             "元のタイトル",
		AttendeesCount:    5,
		DurationMinutes:   60,
		AverageHourlyRate: 50,
	}
	meetings := &mockMeetingRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Meeting, error) {
			cp := *existing
			return &cp, nil
		},
		updateFunc: func(ctx context.Context, m *model.Meeting) error {
			m.TotalCost = Cost(m.AttendeesCount, m.AverageHourlyRate, m.DurationMinutes)
			return nil
		},
	}
	svc := newTestService(meetings, &mockProfileRepo{findByIDFunc: noProfile})

	minutes := 90
	got, err := svc.UpdateMeeting(context.Background(), "user-1", "meeting-1", model.MeetingPatch{DurationMinutes: &minutes})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Title != "元のタイトル" {
		t.Errorf("Title = %q, want unchanged", got.Title)
	}
	if got.DurationMinutes != 90 {
		t.Errorf("DurationMinutes = %d, want 90", got.DurationMinutes)
	}
	// 5人 × 50 × 90分 / 60 = 375
	if got.TotalCost != 375 {
		t.Errorf("TotalCost = %v, want 375", got.TotalCost)
	}
}

// 不正なパッチが更新前に拒否されることを検証
func TestUpdateMeeting_InvalidPatch(t *testing.T) {
	meetings := &mockMeetingRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Meeting, error) {
			return &model.Meeting{ID: id, UserID: "user-1", Title: "元のタイトル"}, nil
		},
		updateFunc: func(ctx context.Context, m *model.Meeting) error {
			t.Fatal("Update should not be called on invalid patch")
			return nil
		},
	}
	svc := newTestService(meetings, &mockProfileRepo{findByIDFunc: noProfile})

	attendees := 500
	_, err := svc.UpdateMeeting(context.Background(), "user-1", "meeting-1", model.MeetingPatch{AttendeesCount: &attendees})
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeValidationFailed {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeValidationFailed)
	}
}

// 存在しない会議の削除がNot Foundとなることを検証
func TestDeleteMeeting_NotFound(t *testing.T) {
	meetings := &mockMeetingRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Meeting, error) {
			return nil, nil
		},
	}
	svc := newTestService(meetings, &mockProfileRepo{findByIDFunc: noProfile})

	err := svc.DeleteMeeting(context.Background(), "user-1", "no-such-meeting")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeMeetingNotFound {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeMeetingNotFound)
	}
}

// 削除の正常系を検証
func TestDeleteMeeting_Success(t *testing.T) {
	deleted := false
	meetings := &mockMeetingRepo{
		findByIDFunc: func(ctx context.Context, id string) (*model.Meeting, error) {
			return &model.Meeting{ID: id, UserID: "user-1"}, nil
		},
		deleteFunc: func(ctx context.Context, id string) error {
			deleted = true
			return nil
		},
	}
	svc := newTestService(meetings, &mockProfileRepo{findByIDFunc: noProfile})

	if err := svc.DeleteMeeting(context.Background(), "user-1", "meeting-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleted {
		t.Error("repository Delete was not called")
	}
}

// プレビューの数値境界チェックを検証
func TestPreviewCost(t *testing.T) {
	svc := newTestService(&mockMeetingRepo{}, &mockProfileRepo{findByIDFunc: noProfile})

	got, err := svc.PreviewCost(10, 100, 90)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1500 {
		t.Errorf("PreviewCost = %v, want 1500", got)
	}

	if _, err := svc.PreviewCost(0, 100, 90); err == nil {
		t.Error("expected error for 0 attendees")
	}
	if _, err := svc.PreviewCost(10, -1, 90); err == nil {
		t.Error("expected error for negative rate")
	}
	if _, err := svc.PreviewCost(10, 100, 1441); err == nil {
		t.Error("expected error for duration over 1440")
	}
}

// メトリクス記録の呼び出しを検証
type countingRecorder struct {
	created, updated, deleted, failures int
}

func (c *countingRecorder) RecordMeetingCreated()         { c.created++ }
func (c *countingRecorder) RecordMeetingUpdated()         { c.updated++ }
func (c *countingRecorder) RecordMeetingDeleted()         { c.deleted++ }
func (c *countingRecorder) RecordValidationFailure(n int) { c.failures += n }

func TestService_RecordsMetrics(t *testing.T) {
	rec := &countingRecorder{}
	meetings := &mockMeetingRepo{
		createFunc: func(ctx context.Context, m *model.Meeting) error { return nil },
	}
	svc := NewService(meetings, &mockProfileRepo{findByIDFunc: noProfile}, NewValidator(security.NewInputSanitizer()), rec, "EUR")

	_, err := svc.CreateMeeting(context.Background(), "user-1", model.MeetingInput{
		Title:             "定例ミーティング",
		AttendeesCount:    3,
		DurationMinutes:   30,
		AverageHourlyRate: 50,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.created != 1 {
		t.Errorf("created count = %d, want 1", rec.created)
	}

	_, _ = svc.CreateMeeting(context.Background(), "user-1", model.MeetingInput{Title: "ab", AttendeesCount: 0, DurationMinutes: 0, AverageHourlyRate: -1})
	if rec.failures == 0 {
		t.Error("validation failures should be recorded")
	}
}
