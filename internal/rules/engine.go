// Package rules は会議コレクションに対するルール評価を提供する。
// 評価は渡されたスナップショットに対する純粋な計算で、DBへの問い合わせや
// 入力の変更は行わない。
package rules

import (
	"strings"
	"time"

	"github.com/hitoshi/meetcost/internal/model"
)

// Severity はルール違反の深刻度。
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ルールID。APIレスポンスとメトリクスのラベルに使う。
const (
	RuleLargeLongMeetings = "large_long_meetings"
	RuleNoAgenda          = "no_agenda"
	RuleNoOwner           = "no_owner"
	RuleExcessiveDuration = "excessive_duration"
	RuleTooFrequent       = "too_frequent"
)

// ルールの閾値。
const (
	largeMeetingThreshold     = 8  // 参加者数がこれを超えたら「大人数」
	longMeetingThreshold      = 60 // 分。これを超えたら「長時間」
	minDescriptionLength      = 10 // これ未満の説明はアジェンダなしとみなす
	excessiveDurationMinutes  = 90
	frequentMeetingThreshold  = 3 // 同名会議がこれを超えたら「高頻度」
	DefaultAnalysisPeriodDays = 7
)

// Violation は1ルール分の違反レポート。生成後に変更されない値として扱う。
type Violation struct {
	RuleID      string          `json:"rule_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Severity    Severity        `json:"severity"`
	Meetings    []model.Meeting `json:"meetings"`
	Count       int             `json:"count"`
}

// Engine は会議の健全性ルールを評価する。
type Engine struct {
	analysisDays int
}

// NewEngine はEngineを生成する。analysisDaysが1未満の場合は既定値を使う。
func NewEngine(analysisDays int) *Engine {
	if analysisDays < 1 {
		analysisDays = DefaultAnalysisPeriodDays
	}
	return &Engine{analysisDays: analysisDays}
}

// Evaluate は直近の分析窓（nowからanalysisDays日前まで、実効日時で判定）に
// 含まれる会議へ全ルールを適用し、違反のあったルールのみを返す。
// 違反ゼロのルールは結果に含めない。
func (e *Engine) Evaluate(meetings []model.Meeting, now time.Time) []Violation {
	cutoff := now.AddDate(0, 0, -e.analysisDays)

	var recent []model.Meeting
	for i := range meetings {
		if !meetings[i].EffectiveDate().Before(cutoff) {
			recent = append(recent, meetings[i])
		}
	}

	all := []Violation{
		{
			RuleID:      RuleLargeLongMeetings,
			Title:       "大人数×長時間の会議",
			Description: "参加者が8人を超え、かつ60分を超える会議",
			Severity:    SeverityHigh,
			Meetings:    filterMeetings(recent, isLargeAndLong),
		},
		{
			RuleID:      RuleNoAgenda,
			Title:       "アジェンダのない会議",
			Description: "説明がない、または短すぎてアジェンダとみなせない会議",
			Severity:    SeverityMedium,
			Meetings:    filterMeetings(recent, hasNoAgenda),
		},
		{
			RuleID:      RuleNoOwner,
			Title:       "オーナー未割り当て",
			Description: "説明に責任者（@メンション）が記載されていない会議",
			Severity:    SeverityMedium,
			Meetings:    filterMeetings(recent, hasNoOwner),
		},
		{
			RuleID:      RuleExcessiveDuration,
			Title:       "過剰な会議時間",
			Description: "90分を超える会議",
			Severity:    SeverityHigh,
			Meetings:    filterMeetings(recent, isExcessivelyLong),
		},
		{
			RuleID:      RuleTooFrequent,
			Title:       "高頻度の同名会議",
			Description: "同じタイトルの会議が分析期間内に3回を超えて開催されている",
			Severity:    SeverityLow,
			Meetings:    frequentMeetings(recent),
		},
	}

	violations := make([]Violation, 0, len(all))
	for _, v := range all {
		if len(v.Meetings) == 0 {
			continue
		}
		v.Count = len(v.Meetings)
		violations = append(violations, v)
	}
	return violations
}

func isLargeAndLong(m *model.Meeting) bool {
	return m.AttendeesCount > largeMeetingThreshold && m.DurationMinutes > longMeetingThreshold
}

func hasNoAgenda(m *model.Meeting) bool {
	if m.Description == nil {
		return true
	}
	return len([]rune(strings.TrimSpace(*m.Description))) < minDescriptionLength
}

func hasNoOwner(m *model.Meeting) bool {
	return m.Description == nil || !strings.Contains(*m.Description, "@")
}

func isExcessivelyLong(m *model.Meeting) bool {
	return m.DurationMinutes > excessiveDurationMinutes
}

func filterMeetings(meetings []model.Meeting, pred func(*model.Meeting) bool) []model.Meeting {
	var out []model.Meeting
	for i := range meetings {
		if pred(&meetings[i]) {
			out = append(out, meetings[i])
		}
	}
	return out
}

// frequentMeetings はタイトル（小文字化・トリム後）が同一のグループのうち、
// 閾値を超えるものに属する全会議を入力順で返す。
func frequentMeetings(meetings []model.Meeting) []model.Meeting {
	groups := make(map[string]int)
	for i := range meetings {
		groups[normalizeTitle(meetings[i].Title)]++
	}

	var out []model.Meeting
	for i := range meetings {
		if groups[normalizeTitle(meetings[i].Title)] > frequentMeetingThreshold {
			out = append(out, meetings[i])
		}
	}
	return out
}

func normalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
