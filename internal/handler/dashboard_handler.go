package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/meetcost/internal/middleware"
	"github.com/hitoshi/meetcost/internal/model"
	"github.com/hitoshi/meetcost/internal/rules"
	"github.com/hitoshi/meetcost/internal/stats"
)

// topMeetingsLimit はコスト上位一覧の件数。
const topMeetingsLimit = 10

// MeetingLister はダッシュボードが必要とする会議一覧取得のインターフェース。
// meeting.Serviceの部分集合として定義する。
type MeetingLister interface {
	ListMeetings(ctx context.Context, userID string) ([]model.Meeting, error)
}

// RuleViolationRecorder はルール違反メトリクスの記録インターフェース。
type RuleViolationRecorder interface {
	RecordRuleViolations(ruleID string, count int)
}

// DashboardHandler はダッシュボード集計のHTTPハンドラー。
// 各エンドポイントは会議一覧を1回だけ取得し、同一のスナップショットに
// 対して集計・評価を行う。
type DashboardHandler struct {
	lister  MeetingLister
	engine  *rules.Engine
	metrics RuleViolationRecorder
	now     func() time.Time
}

// NewDashboardHandler はDashboardHandlerを生成する。
// metricsはnilでもよい（記録をスキップする）。
func NewDashboardHandler(lister MeetingLister, engine *rules.Engine, metrics RuleViolationRecorder) *DashboardHandler {
	return &DashboardHandler{
		lister:  lister,
		engine:  engine,
		metrics: metrics,
		now:     time.Now,
	}
}

// --- レスポンス型 ---

// statsResponse は統計サマリのレスポンス。
type statsResponse struct {
	TotalCostThisWeek     float64 `json:"total_cost_this_week"`
	TotalMeetingsThisWeek int     `json:"total_meetings_this_week"`
	AverageCostPerMeeting float64 `json:"average_cost_per_meeting"`
	TotalMeetingsAllTime  int     `json:"total_meetings_all_time"`
	TotalCostAllTime      float64 `json:"total_cost_all_time"`
}

// ruleViolationResponse は1ルール分の違反レポートのレスポンス。
type ruleViolationResponse struct {
	RuleID      string            `json:"rule_id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Severity    string            `json:"severity"`
	Count       int               `json:"count"`
	Meetings    []meetingResponse `json:"meetings"`
}

// rulesResponse はルール評価のレスポンス。
type rulesResponse struct {
	Violations []ruleViolationResponse `json:"violations"`
}

// saturationResponse は日別コスト密度のレスポンス。
type saturationResponse struct {
	Days []stats.DaySaturation `json:"days"`
}

// trendResponse はトレンド集計のレスポンス。
type trendResponse struct {
	Range       string              `json:"range"`
	Buckets     []stats.TrendBucket `json:"buckets"`
	TopMeetings []meetingResponse   `json:"top_meetings"`
}

// GetStats は統計サマリを返す。
// GET /api/dashboard/stats
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	meetings, ok := h.fetchSnapshot(w, r)
	if !ok {
		return
	}

	s := stats.Aggregate(meetings, h.now())
	writeJSONResponse(w, http.StatusOK, statsResponse{
		TotalCostThisWeek:     s.TotalCostThisWeek,
		TotalMeetingsThisWeek: s.TotalMeetingsThisWeek,
		AverageCostPerMeeting: s.AverageCostPerMeeting,
		TotalMeetingsAllTime:  s.TotalMeetingsAllTime,
		TotalCostAllTime:      s.TotalCostAllTime,
	})
}

// GetRules はルール評価の結果を返す。
// GET /api/dashboard/rules
func (h *DashboardHandler) GetRules(w http.ResponseWriter, r *http.Request) {
	meetings, ok := h.fetchSnapshot(w, r)
	if !ok {
		return
	}

	violations := h.engine.Evaluate(meetings, h.now())

	resp := rulesResponse{Violations: make([]ruleViolationResponse, len(violations))}
	for i, v := range violations {
		if h.metrics != nil {
			h.metrics.RecordRuleViolations(v.RuleID, v.Count)
		}
		vm := make([]meetingResponse, len(v.Meetings))
		for j := range v.Meetings {
			vm[j] = toMeetingResponse(&v.Meetings[j])
		}
		resp.Violations[i] = ruleViolationResponse{
			RuleID:      v.RuleID,
			Title:       v.Title,
			Description: v.Description,
			Severity:    string(v.Severity),
			Count:       v.Count,
			Meetings:    vm,
		}
	}

	writeJSONResponse(w, http.StatusOK, resp)
}

// GetSaturation は直近7日間の日別コスト密度を返す。
// GET /api/dashboard/saturation
func (h *DashboardHandler) GetSaturation(w http.ResponseWriter, r *http.Request) {
	meetings, ok := h.fetchSnapshot(w, r)
	if !ok {
		return
	}

	writeJSONResponse(w, http.StatusOK, saturationResponse{
		Days: stats.Saturation(meetings, h.now()),
	})
}

// GetTrend は期間バケット別のコスト合計とコスト上位の会議を返す。
// GET /api/dashboard/trend?range=4weeks|8weeks|6months
func (h *DashboardHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	meetings, ok := h.fetchSnapshot(w, r)
	if !ok {
		return
	}

	rangeStr := r.URL.Query().Get("range")
	if rangeStr == "" {
		rangeStr = string(stats.TrendRange4Weeks)
	}

	buckets, err := stats.Trend(meetings, h.now(), stats.TrendRange(rangeStr))
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	top := stats.TopMeetings(meetings, topMeetingsLimit)
	topResp := make([]meetingResponse, len(top))
	for i := range top {
		topResp[i] = toMeetingResponse(&top[i])
	}

	writeJSONResponse(w, http.StatusOK, trendResponse{
		Range:       rangeStr,
		Buckets:     buckets,
		TopMeetings: topResp,
	})
}

// fetchSnapshot は認証済みユーザーの会議一覧を1回だけ取得する。
// 失敗時はエラーレスポンスを書き込んでfalseを返す。
func (h *DashboardHandler) fetchSnapshot(w http.ResponseWriter, r *http.Request) ([]model.Meeting, bool) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return nil, false
	}

	meetings, err := h.lister.ListMeetings(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return nil, false
	}
	return meetings, true
}
