// Package stats は会議コレクションに対する読み取り専用の集計を提供する。
// すべての関数は渡されたスライス（スナップショット）を変更しない純粋関数であり、
// DBへの再問い合わせは行わない。
package stats

import (
	"time"

	"github.com/hitoshi/meetcost/internal/model"
)

// Aggregate は会議一覧から統計サマリを計算する。
// 「今週」はnowを含むISO週（月曜00:00:00から日曜23:59:59まで、ローカル時刻）。
// 週の判定には実効日時（meeting_date、なければcreated_at）を使う。
// 空の入力に対してはゼロ値の統計を返す。
func Aggregate(meetings []model.Meeting, now time.Time) model.MeetingStats {
	weekStart, weekEnd := WeekBounds(now)

	var s model.MeetingStats
	for i := range meetings {
		m := &meetings[i]
		s.TotalMeetingsAllTime++
		s.TotalCostAllTime += m.TotalCost

		d := m.EffectiveDate()
		if !d.Before(weekStart) && d.Before(weekEnd) {
			s.TotalMeetingsThisWeek++
			s.TotalCostThisWeek += m.TotalCost
		}
	}

	if s.TotalMeetingsAllTime > 0 {
		s.AverageCostPerMeeting = s.TotalCostAllTime / float64(s.TotalMeetingsAllTime)
	}

	return s
}

// WeekBounds はnowを含むISO週の範囲を返す。
// startは月曜00:00:00（含む）、endは翌週月曜00:00:00（含まない）。
func WeekBounds(now time.Time) (start, end time.Time) {
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7 // 日曜は週の7日目
	}
	y, m, d := now.AddDate(0, 0, -(weekday - 1)).Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	end = start.AddDate(0, 0, 7)
	return start, end
}
