// Package model はドメインモデルを定義する。
package model

import "time"

// Meeting は1件の会議記録を表す。
// TotalCostはDB側の生成列で導出される派生値であり、アプリケーションからは書き込めない。
type Meeting struct {
	ID                string
	UserID            string
	Title             string  // サニタイズ済み
	Description       *string // サニタイズ済み。未設定の場合はnil
	AttendeesCount    int
	DurationMinutes   int
	AverageHourlyRate float64
	TotalCost         float64 // 派生値。NULLは0として読み込む
	Currency          string
	MeetingDate       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// EffectiveDate は時間窓の判定に使う実効日時を返す。
// meeting_dateが設定されていればそれを、なければcreated_atを返す。
func (m *Meeting) EffectiveDate() time.Time {
	if m.MeetingDate != nil {
		return *m.MeetingDate
	}
	return m.CreatedAt
}

// MeetingInput は会議の新規作成リクエストの入力データを表す。
// バリデーション前の生データとバリデーション後のサニタイズ済みデータの両方に使う。
type MeetingInput struct {
	Title             string
	Description       *string
	AttendeesCount    int
	DurationMinutes   int
	AverageHourlyRate float64
	MeetingDate       *time.Time
}

// MeetingPatch は会議の部分更新の入力データを表す。
// nilのフィールドは変更なしを意味する。
type MeetingPatch struct {
	Title             *string
	Description       *string
	AttendeesCount    *int
	DurationMinutes   *int
	AverageHourlyRate *float64
	MeetingDate       *time.Time
}

// IsEmpty は全フィールドが未指定かどうかを返す。
func (p *MeetingPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.AttendeesCount == nil &&
		p.DurationMinutes == nil && p.AverageHourlyRate == nil && p.MeetingDate == nil
}

// MeetingStats は会議コレクションから集計した統計サマリを表す。
// 永続化されず、1回の集計呼び出しごとに再計算される。
type MeetingStats struct {
	TotalCostThisWeek     float64
	TotalMeetingsThisWeek int
	AverageCostPerMeeting float64
	TotalMeetingsAllTime  int
	TotalCostAllTime      float64
}
