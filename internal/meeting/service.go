package meeting

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hitoshi/meetcost/internal/model"
	"github.com/hitoshi/meetcost/internal/repository"
)

// MetricsRecorder は会議操作のメトリクス記録に必要なインターフェース。
// metrics.Collectorの部分集合として定義する。
type MetricsRecorder interface {
	RecordMeetingCreated()
	RecordMeetingUpdated()
	RecordMeetingDeleted()
	RecordValidationFailure(count int)
}

// Service は会議管理のサービス層。
// バリデーション、所有者スコープの適用、既定値（通貨）の解決を担う。
// total_costの導出はリポジトリ（DB側の生成列）に委ねる。
type Service struct {
	meetingRepo     repository.MeetingRepository
	profileRepo     repository.ProfileRepository
	validator       *Validator
	metrics         MetricsRecorder
	defaultCurrency string
}

// NewService はServiceの新しいインスタンスを生成する。
// metricsはnilでもよい（記録をスキップする）。
func NewService(
	meetingRepo repository.MeetingRepository,
	profileRepo repository.ProfileRepository,
	validator *Validator,
	metrics MetricsRecorder,
	defaultCurrency string,
) *Service {
	return &Service{
		meetingRepo:     meetingRepo,
		profileRepo:     profileRepo,
		validator:       validator,
		metrics:         metrics,
		defaultCurrency: defaultCurrency,
	}
}

// CreateMeeting は入力を検証して会議を作成し、保存された会議
// （DB側で導出されたtotal_costを含む）を返す。
// バリデーション違反は全件まとめて*model.APIErrorとして返す。
func (s *Service) CreateMeeting(ctx context.Context, userID string, in model.MeetingInput) (*model.Meeting, error) {
	sanitized, fieldErrs := s.validator.ValidateInput(in)
	if len(fieldErrs) > 0 {
		if s.metrics != nil {
			s.metrics.RecordValidationFailure(len(fieldErrs))
		}
		return nil, model.NewValidationFailedError(Messages(fieldErrs))
	}

	currency, err := s.resolveCurrency(ctx, userID)
	if err != nil {
		return nil, err
	}

	m := &model.Meeting{
		ID:                uuid.NewString(),
		UserID:            userID,
		Title:             sanitized.Title,
		Description:       sanitized.Description,
		AttendeesCount:    sanitized.AttendeesCount,
		DurationMinutes:   sanitized.DurationMinutes,
		AverageHourlyRate: sanitized.AverageHourlyRate,
		Currency:          currency,
		MeetingDate:       sanitized.MeetingDate,
	}

	if err := s.meetingRepo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("会議の作成に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordMeetingCreated()
	}

	return m, nil
}

// ListMeetings はユーザーの会議一覧をcreated_at降順で返す。
// 統計集計・ルール評価はこの1回の取得結果（スナップショット）に対して行うこと。
func (s *Service) ListMeetings(ctx context.Context, userID string) ([]model.Meeting, error) {
	meetings, err := s.meetingRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("会議一覧の取得に失敗しました: %w", err)
	}
	return meetings, nil
}

// UpdateMeeting は会議を部分更新する。
// 指定されたフィールドのみ再バリデーションし、所有者以外の会議は
// 存在の有無を漏らさないためNot Foundとして扱う。
// コスト入力（参加者数・時間・時給）が変わった場合、total_costは
// DB側で再導出された値が返る。
func (s *Service) UpdateMeeting(ctx context.Context, userID, meetingID string, patch model.MeetingPatch) (*model.Meeting, error) {
	existing, err := s.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		return nil, fmt.Errorf("会議の取得に失敗しました: %w", err)
	}
	if existing == nil || existing.UserID != userID {
		return nil, model.NewMeetingNotFoundError(meetingID)
	}

	sanitized, fieldErrs := s.validator.ValidatePatch(patch)
	if len(fieldErrs) > 0 {
		if s.metrics != nil {
			s.metrics.RecordValidationFailure(len(fieldErrs))
		}
		return nil, model.NewValidationFailedError(Messages(fieldErrs))
	}

	applyPatch(existing, sanitized)

	if err := s.meetingRepo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("会議の更新に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordMeetingUpdated()
	}

	return existing, nil
}

// DeleteMeeting は会議を削除する。所有者以外の会議はNot Foundとして扱う。
func (s *Service) DeleteMeeting(ctx context.Context, userID, meetingID string) error {
	existing, err := s.meetingRepo.FindByID(ctx, meetingID)
	if err != nil {
		return fmt.Errorf("会議の取得に失敗しました: %w", err)
	}
	if existing == nil || existing.UserID != userID {
		return model.NewMeetingNotFoundError(meetingID)
	}

	if err := s.meetingRepo.Delete(ctx, meetingID); err != nil {
		return fmt.Errorf("会議の削除に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordMeetingDeleted()
	}

	return nil
}

// PreviewCost は保存前のライブプレビュー用にコストを計算する。
// 数値フィールドの境界チェックのみ行い、違反があれば保存時と同じ
// バリデーションエラーを返す。計算式は保存値の導出と同一。
func (s *Service) PreviewCost(attendees int, hourlyRate float64, durationMinutes int) (float64, error) {
	var errs []FieldError
	errs = append(errs, validateAttendees(attendees)...)
	errs = append(errs, validateDuration(durationMinutes)...)
	errs = append(errs, validateHourlyRate(hourlyRate)...)
	if len(errs) > 0 {
		if s.metrics != nil {
			s.metrics.RecordValidationFailure(len(errs))
		}
		return 0, model.NewValidationFailedError(Messages(errs))
	}

	return Cost(attendees, hourlyRate, durationMinutes), nil
}

// resolveCurrency はユーザープロフィールの通貨を返す。
// プロフィールが存在しない、または通貨が未設定の場合は既定値にフォールバックする。
func (s *Service) resolveCurrency(ctx context.Context, userID string) (string, error) {
	profile, err := s.profileRepo.FindByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("プロフィールの取得に失敗しました: %w", err)
	}
	if profile == nil || profile.Currency == "" {
		return s.defaultCurrency, nil
	}
	return profile.Currency, nil
}

// applyPatch はサニタイズ済みパッチを既存の会議に適用する。
func applyPatch(m *model.Meeting, p model.MeetingPatch) {
	if p.Title != nil {
		m.Title = *p.Title
	}
	if p.Description != nil {
		if *p.Description == "" {
			m.Description = nil
		} else {
			m.Description = p.Description
		}
	}
	if p.AttendeesCount != nil {
		m.AttendeesCount = *p.AttendeesCount
	}
	if p.DurationMinutes != nil {
		m.DurationMinutes = *p.DurationMinutes
	}
	if p.AverageHourlyRate != nil {
		m.AverageHourlyRate = *p.AverageHourlyRate
	}
	if p.MeetingDate != nil {
		m.MeetingDate = p.MeetingDate
	}
}
