// Package handler はHTTP APIのハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/meetcost/internal/middleware"
	"github.com/hitoshi/meetcost/internal/model"
)

// MeetingServiceInterface は会議ハンドラーが必要とするサービスインターフェース。
type MeetingServiceInterface interface {
	// CreateMeeting は入力を検証して会議を作成する。
	CreateMeeting(ctx context.Context, userID string, in model.MeetingInput) (*model.Meeting, error)
	// ListMeetings はユーザーの会議一覧をcreated_at降順で返す。
	ListMeetings(ctx context.Context, userID string) ([]model.Meeting, error)
	// UpdateMeeting は会議を部分更新する。
	UpdateMeeting(ctx context.Context, userID, meetingID string, patch model.MeetingPatch) (*model.Meeting, error)
	// DeleteMeeting は会議を削除する。
	DeleteMeeting(ctx context.Context, userID, meetingID string) error
	// PreviewCost は保存前のコストプレビューを計算する。
	PreviewCost(attendees int, hourlyRate float64, durationMinutes int) (float64, error)
}

// MeetingHandler は会議管理のHTTPハンドラー。
type MeetingHandler struct {
	service MeetingServiceInterface
}

// NewMeetingHandler はMeetingHandlerを生成する。
func NewMeetingHandler(service MeetingServiceInterface) *MeetingHandler {
	return &MeetingHandler{service: service}
}

// --- リクエスト・レスポンス型 ---

// meetingCreateRequest は会議作成リクエストのボディ。
type meetingCreateRequest struct {
	Title             string     `json:"title"`
	Description       *string    `json:"description,omitempty"`
	AttendeesCount    int        `json:"attendees_count"`
	DurationMinutes   int        `json:"duration_minutes"`
	AverageHourlyRate float64    `json:"average_hourly_rate"`
	MeetingDate       *time.Time `json:"meeting_date,omitempty"`
}

// meetingPatchRequest は会議部分更新リクエストのボディ。
// nilフィールドは変更しない。
type meetingPatchRequest struct {
	Title             *string    `json:"title,omitempty"`
	Description       *string    `json:"description,omitempty"`
	AttendeesCount    *int       `json:"attendees_count,omitempty"`
	DurationMinutes   *int       `json:"duration_minutes,omitempty"`
	AverageHourlyRate *float64   `json:"average_hourly_rate,omitempty"`
	MeetingDate       *time.Time `json:"meeting_date,omitempty"`
}

// previewRequest はコストプレビューリクエストのボディ。
type previewRequest struct {
	AttendeesCount    int     `json:"attendees_count"`
	DurationMinutes   int     `json:"duration_minutes"`
	AverageHourlyRate float64 `json:"average_hourly_rate"`
}

// previewResponse はコストプレビューのレスポンス。
type previewResponse struct {
	TotalCost float64 `json:"total_cost"`
}

// meetingResponse は会議のAPIレスポンス。
type meetingResponse struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Description       *string    `json:"description,omitempty"`
	AttendeesCount    int        `json:"attendees_count"`
	DurationMinutes   int        `json:"duration_minutes"`
	AverageHourlyRate float64    `json:"average_hourly_rate"`
	TotalCost         float64    `json:"total_cost"`
	Currency          string     `json:"currency"`
	MeetingDate       *time.Time `json:"meeting_date,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// meetingListResponse は会議一覧のレスポンス。
type meetingListResponse struct {
	Meetings []meetingResponse `json:"meetings"`
	Total    int               `json:"total"`
}

// CreateMeeting は会議を作成する。
// POST /api/meetings
func (h *MeetingHandler) CreateMeeting(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req meetingCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	meeting, err := h.service.CreateMeeting(r.Context(), userID, model.MeetingInput{
		Title:             req.Title,
		Description:       req.Description,
		AttendeesCount:    req.AttendeesCount,
		DurationMinutes:   req.DurationMinutes,
		AverageHourlyRate: req.AverageHourlyRate,
		MeetingDate:       req.MeetingDate,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, toMeetingResponse(meeting))
}

// ListMeetings はユーザーの会議一覧を取得する。
// GET /api/meetings
func (h *MeetingHandler) ListMeetings(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	meetings, err := h.service.ListMeetings(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := meetingListResponse{
		Meetings: make([]meetingResponse, len(meetings)),
		Total:    len(meetings),
	}
	for i := range meetings {
		resp.Meetings[i] = toMeetingResponse(&meetings[i])
	}

	writeJSONResponse(w, http.StatusOK, resp)
}

// UpdateMeeting は会議を部分更新する。
// PATCH /api/meetings/{id}
func (h *MeetingHandler) UpdateMeeting(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	meetingID := chi.URLParam(r, "id")

	var req meetingPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	meeting, err := h.service.UpdateMeeting(r.Context(), userID, meetingID, model.MeetingPatch{
		Title:             req.Title,
		Description:       req.Description,
		AttendeesCount:    req.AttendeesCount,
		DurationMinutes:   req.DurationMinutes,
		AverageHourlyRate: req.AverageHourlyRate,
		MeetingDate:       req.MeetingDate,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, toMeetingResponse(meeting))
}

// DeleteMeeting は会議を削除する。
// DELETE /api/meetings/{id}
func (h *MeetingHandler) DeleteMeeting(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	meetingID := chi.URLParam(r, "id")

	if err := h.service.DeleteMeeting(r.Context(), userID, meetingID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PreviewCost は保存前のコストプレビューを返す。
// POST /api/meetings/preview
func (h *MeetingHandler) PreviewCost(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.UserIDFromContext(r.Context()); err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	cost, err := h.service.PreviewCost(req.AttendeesCount, req.AverageHourlyRate, req.DurationMinutes)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, previewResponse{TotalCost: cost})
}

// --- ヘルパー関数 ---

// toMeetingResponse はmodel.MeetingからAPIレスポンスに変換する。
func toMeetingResponse(m *model.Meeting) meetingResponse {
	return meetingResponse{
		ID:                m.ID,
		Title:             m.Title,
		Description:       m.Description,
		AttendeesCount:    m.AttendeesCount,
		DurationMinutes:   m.DurationMinutes,
		AverageHourlyRate: m.AverageHourlyRate,
		TotalCost:         m.TotalCost,
		Currency:          m.Currency,
		MeetingDate:       m.MeetingDate,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// writeJSONResponse はJSONレスポンスを書き込む。
func writeJSONResponse(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	middleware.WriteErrorResponse(w, statusCode, apiErr)
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeValidationFailed, model.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case model.ErrCodeMeetingNotFound, model.ErrCodeProfileNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
