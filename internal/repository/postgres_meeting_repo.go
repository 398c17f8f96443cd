package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/meetcost/internal/model"
)

// PostgresMeetingRepo はPostgreSQLを使用した会議リポジトリ。
type PostgresMeetingRepo struct {
	db *sql.DB
}

// NewPostgresMeetingRepo はPostgresMeetingRepoを生成する。
func NewPostgresMeetingRepo(db *sql.DB) *PostgresMeetingRepo {
	return &PostgresMeetingRepo{db: db}
}

const meetingColumns = `id, user_id, title, description, attendees_count, duration_minutes,
	average_hourly_rate, total_cost, currency, meeting_date, created_at, updated_at`

// scanMeeting は1行をmodel.Meetingに読み込む。
// total_cost（NULL許容の派生列）は0にフォールバックする。
func scanMeeting(row interface{ Scan(...any) error }) (*model.Meeting, error) {
	m := &model.Meeting{}
	var (
		description sql.NullString
		totalCost   sql.NullFloat64
		currency    sql.NullString
		meetingDate sql.NullTime
	)

	err := row.Scan(
		&m.ID, &m.UserID, &m.Title, &description, &m.AttendeesCount, &m.DurationMinutes,
		&m.AverageHourlyRate, &totalCost, &currency, &meetingDate, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		m.Description = &description.String
	}
	if totalCost.Valid {
		m.TotalCost = totalCost.Float64
	}
	if currency.Valid {
		m.Currency = currency.String
	}
	if meetingDate.Valid {
		d := meetingDate.Time
		m.MeetingDate = &d
	}

	return m, nil
}

// Create は会議を作成する。
// total_costはDB側の生成列で導出されるためINSERT対象に含めず、
// RETURNINGで確定値をmeetingに書き戻す。
func (r *PostgresMeetingRepo) Create(ctx context.Context, meeting *model.Meeting) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO meetings (id, user_id, title, description, attendees_count,
		                       duration_minutes, average_hourly_rate, currency, meeting_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING total_cost, created_at, updated_at`,
		meeting.ID, meeting.UserID, meeting.Title, nullString(meeting.Description),
		meeting.AttendeesCount, meeting.DurationMinutes, meeting.AverageHourlyRate,
		meeting.Currency, nullTime(meeting.MeetingDate),
	).Scan(&meeting.TotalCost, &meeting.CreatedAt, &meeting.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert meeting: %w", err)
	}

	return nil
}

// FindByID は指定IDの会議を取得する。見つからない場合はnilを返す。
func (r *PostgresMeetingRepo) FindByID(ctx context.Context, id string) (*model.Meeting, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+meetingColumns+` FROM meetings WHERE id = $1`,
		id,
	)

	m, err := scanMeeting(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find meeting by ID: %w", err)
	}

	return m, nil
}

// Update は会議を上書き更新する。
// total_costはDB側で再導出され、RETURNINGでmeetingに書き戻される。
func (r *PostgresMeetingRepo) Update(ctx context.Context, meeting *model.Meeting) error {
	err := r.db.QueryRowContext(ctx,
		`UPDATE meetings
		 SET title = $1, description = $2, attendees_count = $3, duration_minutes = $4,
		     average_hourly_rate = $5, currency = $6, meeting_date = $7, updated_at = now()
		 WHERE id = $8
		 RETURNING total_cost, updated_at`,
		meeting.Title, nullString(meeting.Description), meeting.AttendeesCount,
		meeting.DurationMinutes, meeting.AverageHourlyRate, meeting.Currency,
		nullTime(meeting.MeetingDate), meeting.ID,
	).Scan(&meeting.TotalCost, &meeting.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("meeting not found: %s", meeting.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update meeting: %w", err)
	}

	return nil
}

// Delete は指定IDの会議を削除する。
func (r *PostgresMeetingRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM meetings WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete meeting: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("meeting not found: %s", id)
	}
	return nil
}

// ListByUserID はユーザーの会議一覧をcreated_at降順で返す。
func (r *PostgresMeetingRepo) ListByUserID(ctx context.Context, userID string) ([]model.Meeting, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+meetingColumns+` FROM meetings WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	defer rows.Close()

	var meetings []model.Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meeting: %w", err)
		}
		meetings = append(meetings, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate meetings: %w", err)
	}

	return meetings, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// compile-time interface check
var _ MeetingRepository = (*PostgresMeetingRepo)(nil)
