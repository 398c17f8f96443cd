package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/hitoshi/meetcost/internal/model"
)

// TrendRange はトレンド集計の対象期間。
type TrendRange string

const (
	TrendRange4Weeks  TrendRange = "4weeks"
	TrendRange8Weeks  TrendRange = "8weeks"
	TrendRange6Months TrendRange = "6months"
)

// TrendBucket は1期間分のコスト合計を表す。
type TrendBucket struct {
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	TotalCost    float64   `json:"total_cost"`
	MeetingCount int       `json:"meeting_count"`
}

// rangeConfig はバケット数と1バケットの日数を定める。
var rangeConfigs = map[TrendRange]struct {
	count    int
	interval int
}{
	TrendRange4Weeks:  {count: 4, interval: 7},
	TrendRange8Weeks:  {count: 8, interval: 7},
	TrendRange6Months: {count: 6, interval: 30},
}

// Trend は末尾揃えの期間バケットごとのコスト合計を古い順に返す。
// バケットの範囲は [start, start+interval日) をカレンダー日単位で区切ったもので、
// 最後のバケットがnowの日を含む。範囲外のTrendRangeはエラー。
func Trend(meetings []model.Meeting, now time.Time, r TrendRange) ([]TrendBucket, error) {
	cfg, ok := rangeConfigs[r]
	if !ok {
		return nil, fmt.Errorf("不正なトレンド期間です: %q", r)
	}

	buckets := make([]TrendBucket, 0, cfg.count)
	for i := cfg.count - 1; i >= 0; i-- {
		start := truncateToDay(now.AddDate(0, 0, -i*cfg.interval))
		end := start.AddDate(0, 0, cfg.interval)

		var cost float64
		var count int
		for j := range meetings {
			d := truncateToDay(meetings[j].EffectiveDate())
			if !d.Before(start) && d.Before(end) {
				cost += meetings[j].TotalCost
				count++
			}
		}

		buckets = append(buckets, TrendBucket{
			Start:        start,
			End:          end,
			TotalCost:    cost,
			MeetingCount: count,
		})
	}

	return buckets, nil
}

// TopMeetings はコスト降順の上位limit件を返す。
// 入力スライスは変更せず、コピーをソートして返す。
func TopMeetings(meetings []model.Meeting, limit int) []model.Meeting {
	sorted := make([]model.Meeting, len(meetings))
	copy(sorted, meetings)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalCost > sorted[j].TotalCost
	})

	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
