package stats

import (
	"time"

	"github.com/hitoshi/meetcost/internal/model"
)

// SaturationLevel は1日の会議コスト密度の区分。
type SaturationLevel string

const (
	SaturationLow    SaturationLevel = "low"
	SaturationMedium SaturationLevel = "medium"
	SaturationHigh   SaturationLevel = "high"
)

// コストレートの閾値。300超でmedium、600超でhigh。
const (
	saturationMediumThreshold = 300
	saturationHighThreshold   = 600
)

// DaySaturation は1日分の会議コスト密度を表す。
type DaySaturation struct {
	Date         time.Time       `json:"date"`
	MeetingCount int             `json:"meeting_count"`
	TotalCost    float64         `json:"total_cost"`
	CostRate     float64         `json:"cost_rate"`
	Level        SaturationLevel `json:"level"`
}

// Saturation は直近7日間（nowを含む）の日別コスト密度を古い順に返す。
// 各日の会議は実効日時のカレンダー日で振り分ける。
// コストレートは当日の合計コストを会議数で割った値で、会議のない日は0。
func Saturation(meetings []model.Meeting, now time.Time) []DaySaturation {
	days := make([]DaySaturation, 0, 7)

	for i := 6; i >= 0; i-- {
		day := truncateToDay(now.AddDate(0, 0, -i))

		var count int
		var totalCost float64
		for j := range meetings {
			if truncateToDay(meetings[j].EffectiveDate()).Equal(day) {
				count++
				totalCost += meetings[j].TotalCost
			}
		}

		var rate float64
		if count > 0 {
			rate = totalCost / float64(count)
		}

		level := SaturationLow
		if rate > saturationHighThreshold {
			level = SaturationHigh
		} else if rate > saturationMediumThreshold {
			level = SaturationMedium
		}

		days = append(days, DaySaturation{
			Date:         day,
			MeetingCount: count,
			TotalCost:    totalCost,
			CostRate:     rate,
			Level:        level,
		})
	}

	return days
}

// truncateToDay は時刻を切り捨ててその日の00:00:00を返す。
func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
