package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/meetcost/internal/metrics"
	"github.com/hitoshi/meetcost/internal/middleware"
	"github.com/hitoshi/meetcost/internal/rules"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	Logger            *slog.Logger

	// サービス
	MeetingService MeetingServiceInterface
	MeetingLister  MeetingLister
	RuleEngine     *rules.Engine

	// 観測
	Metrics     RuleViolationRecorder
	HTTPMetrics middleware.HTTPMetricsRecorder
	Gatherer    prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → HTTPMetrics → Session（APIグループのみ）
//
// /healthと/metricsはセッションミドルウェアの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	if deps.HTTPMetrics != nil {
		r.Use(middleware.NewHTTPMetricsMiddleware(deps.HTTPMetrics))
	}

	meetingHandler := NewMeetingHandler(deps.MeetingService)
	dashboardHandler := NewDashboardHandler(deps.MeetingLister, deps.RuleEngine, deps.Metrics)

	// --- 認証不要のルート ---

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if deps.Gatherer != nil {
		r.Get("/metrics", metrics.Handler(deps.Gatherer).ServeHTTP)
	}

	// --- 認証が必要なルート ---

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))

		// 会議管理
		r.Route("/api/meetings", func(r chi.Router) {
			r.Get("/", meetingHandler.ListMeetings)
			r.Post("/", meetingHandler.CreateMeeting)

			// POST /api/meetings/preview - 保存前のコストプレビュー
			r.Post("/preview", meetingHandler.PreviewCost)

			r.Route("/{id}", func(r chi.Router) {
				r.Patch("/", meetingHandler.UpdateMeeting)
				r.Delete("/", meetingHandler.DeleteMeeting)
			})
		})

		// ダッシュボード集計
		r.Route("/api/dashboard", func(r chi.Router) {
			r.Get("/stats", dashboardHandler.GetStats)
			r.Get("/rules", dashboardHandler.GetRules)
			r.Get("/saturation", dashboardHandler.GetSaturation)
			r.Get("/trend", dashboardHandler.GetTrend)
		})
	})

	return r
}
