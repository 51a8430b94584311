package attendancehandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"opshub/internal/domain/attendance"
	"opshub/internal/domain/auth"
	"opshub/internal/transport/http/api"
	"opshub/internal/transport/http/middleware"
	"opshub/internal/transport/http/shared"
)

var attendancePolicy = auth.Policy{
	FullAccess: auth.AdminTier,
	TeamRole:   auth.RoleManager,
	AllowSelf:  true,
}

type Handler struct {
	Store *attendance.Store
}

func NewHandler(store *attendance.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.Post("/check-in", h.handleCheckIn)
		r.Post("/check-out", h.handleCheckOut)
		r.Get("/", h.handleList)
		r.Get("/summary/{userID}", h.handleSummary)
		r.With(middleware.RequireRoles(auth.AdminTier...)).Post("/mark", h.handleMark)
	})
}

func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal, _ := middleware.GetPrincipal(r.Context())

	record, err := h.Store.CheckIn(r.Context(), principal.ID, time.Now())
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
			api.Fail(w, http.StatusConflict, "already_checked_in", "already checked in today", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "check_in_failed", "failed to check in", requestID)
		return
	}
	api.Created(w, record, requestID)
}

func (h *Handler) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal, _ := middleware.GetPrincipal(r.Context())

	record, err := h.Store.CheckOut(r.Context(), principal.ID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, attendance.ErrNotCheckedIn):
			api.Fail(w, http.StatusConflict, "not_checked_in", "no check-in recorded today", requestID)
		case errors.Is(err, attendance.ErrAlreadyCheckedOut):
			api.Fail(w, http.StatusConflict, "already_checked_out", "already checked out today", requestID)
		default:
			api.Fail(w, http.StatusInternalServerError, "check_out_failed", "failed to check out", requestID)
		}
		return
	}
	api.Success(w, record, requestID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal, _ := middleware.GetPrincipal(r.Context())

	v := shared.NewValidator()
	from, _ := v.Date("from", r.URL.Query().Get("from"))
	to, _ := v.Date("to", r.URL.Query().Get("to"))
	if v.Reject(w, requestID) {
		return
	}
	if from.IsZero() || to.IsZero() {
		now := time.Now()
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(0, 1, -1)
	}

	scope := auth.ScopeFor(principal, attendancePolicy)
	page := shared.ParsePagination(r, 100, 500)
	records, err := h.Store.List(r.Context(), scope, from, to, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_list_failed", "failed to list attendance", requestID)
		return
	}
	api.Success(w, records, requestID)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal, _ := middleware.GetPrincipal(r.Context())
	userID := chi.URLParam(r, "userID")

	managerID, err := h.Store.ManagerOf(r.Context(), userID)
	if err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			api.Fail(w, http.StatusNotFound, "user_not_found", "user not found", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "attendance_summary_failed", "failed to summarize attendance", requestID)
		return
	}
	if err := auth.CheckAccess(principal, attendancePolicy, auth.Resource{OwnerID: userID, ManagerID: managerID}); err != nil {
		middleware.WriteAccessError(w, r, err)
		return
	}

	v := shared.NewValidator()
	from, _ := v.Date("from", r.URL.Query().Get("from"))
	to, _ := v.Date("to", r.URL.Query().Get("to"))
	if v.Reject(w, requestID) {
		return
	}
	if from.IsZero() || to.IsZero() {
		now := time.Now()
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(0, 1, -1)
	}

	summary, err := h.Store.Summarize(r.Context(), userID, from, to)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_summary_failed", "failed to summarize attendance", requestID)
		return
	}
	api.Success(w, summary, requestID)
}

type markPayload struct {
	UserID   string `json:"userId"`
	WorkDate string `json:"workDate"`
	Status   string `json:"status"`
	Note     string `json:"note"`
}

func (h *Handler) handleMark(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload markPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("userId", payload.UserID, "userId is required")
	workDate, _ := v.Date("workDate", payload.WorkDate)
	v.Enum("status", payload.Status, []string{
		attendance.StatusPresent, attendance.StatusAbsent,
		attendance.StatusOnLeave, attendance.StatusHalfDay,
	}, "unknown attendance status")
	if v.Reject(w, requestID) {
		return
	}

	if err := h.Store.Mark(r.Context(), payload.UserID, workDate, payload.Status, payload.Note); err != nil {
		if errors.Is(err, attendance.ErrUnknownStatus) {
			api.Fail(w, http.StatusBadRequest, "unknown_status", "unknown attendance status", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "attendance_mark_failed", "failed to mark attendance", requestID)
		return
	}
	api.Success(w, map[string]string{"status": "marked"}, requestID)
}
