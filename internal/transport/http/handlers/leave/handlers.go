package leavehandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"opshub/internal/domain/auth"
	"opshub/internal/domain/leave"
	"opshub/internal/domain/notifications"
	"opshub/internal/transport/http/api"
	"opshub/internal/transport/http/middleware"
	"opshub/internal/transport/http/shared"
)

var leavePolicy = auth.Policy{
	FullAccess: auth.AdminTier,
	TeamRole:   auth.RoleManager,
	AllowSelf:  true,
}

var decisionPolicy = auth.Policy{
	FullAccess: auth.AdminTier,
	TeamRole:   auth.RoleManager,
}

type Handler struct {
	Service  *leave.Service
	Notifier *notifications.Service
}

func NewHandler(service *leave.Service, notifier *notifications.Service) *Handler {
	return &Handler{Service: service, Notifier: notifier}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.Get("/types", h.handleListTypes)
		r.With(middleware.RequireRoles(auth.AdminTier...)).Post("/types", h.handleCreateType)
		r.Get("/requests", h.handleListRequests)
		r.Post("/requests", h.handleSubmit)
		r.Post("/requests/{requestID}/approve", h.handleApprove)
		r.Post("/requests/{requestID}/reject", h.handleReject)
		r.Post("/requests/{requestID}/cancel", h.handleCancel)
		r.Get("/balances/{userID}", h.handleBalances)
		r.With(middleware.RequireRoles(auth.AdminTier...)).Post("/balances/{userID}/adjust", h.handleAdjustBalance)
	})
}

func (h *Handler) handleListTypes(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	types, err := h.Service.ListTypes(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_types_failed", "failed to list leave types", requestID)
		return
	}
	api.Success(w, types, requestID)
}

func (h *Handler) handleCreateType(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload leave.Type
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	v.Required("code", payload.Code, "code is required")
	if v.Reject(w, requestID) {
		return
	}

	id, err := h.Service.CreateType(r.Context(), payload)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_type_create_failed", "failed to create leave type", requestID)
		return
	}
	api.Created(w, map[string]string{"id": id}, requestID)
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal, _ := middleware.GetPrincipal(r.Context())

	scope := auth.ScopeFor(principal, leavePolicy)
	page := shared.ParsePagination(r, 50, 200)
	requests, err := h.Service.ListRequests(r.Context(), scope, r.URL.Query().Get("status"), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_list_failed", "failed to list leave requests", requestID)
		return
	}
	api.Success(w, requests, requestID)
}

type submitPayload struct {
	LeaveTypeID string `json:"leaveTypeId"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	StartHalf   bool   `json:"startHalf"`
	EndHalf     bool   `json:"endHalf"`
	Reason      string `json:"reason"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal, _ := middleware.GetPrincipal(r.Context())

	var payload submitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("leaveTypeId", payload.LeaveTypeID, "leaveTypeId is required")
	start, _ := v.Date("startDate", payload.StartDate)
	end, _ := v.Date("endDate", payload.EndDate)
	v.DateOrder("startDate", start, "endDate", end)
	if v.Reject(w, requestID) {
		return
	}

	req, err := h.Service.Submit(r.Context(), leave.Request{
		UserID:      principal.ID,
		LeaveTypeID: payload.LeaveTypeID,
		StartDate:   start,
		EndDate:     end,
		StartHalf:   payload.StartHalf,
		EndHalf:     payload.EndHalf,
		Reason:      payload.Reason,
	})
	if err != nil {
		switch {
		case errors.Is(err, leave.ErrInvalidRange):
			api.Fail(w, http.StatusBadRequest, "invalid_range", "invalid leave date range", requestID)
		case errors.Is(err, leave.ErrTypeNotFound):
			api.Fail(w, http.StatusBadRequest, "unknown_leave_type", "unknown leave type", requestID)
		default:
			api.Fail(w, http.StatusInternalServerError, "leave_submit_failed", "failed to submit leave request", requestID)
		}
		return
	}

	if managerID, err := h.Service.ManagerOf(r.Context(), principal.ID); err == nil && managerID != "" {
		h.notify(r, managerID, notifications.TypeLeaveSubmitted, "Leave request submitted",
			fmt.Sprintf("%s requested %.1f day(s) of leave from %s.", principal.Email, req.Days, start.Format("2006-01-02")))
	}
	api.Created(w, req, requestID)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, approve bool) {
	requestID := middleware.GetRequestID(r.Context())
	principal, _ := middleware.GetPrincipal(r.Context())
	reqID := chi.URLParam(r, "requestID")

	req, err := h.Service.GetRequest(r.Context(), reqID)
	if err != nil {
		if errors.Is(err, leave.ErrRequestNotFound) {
			api.Fail(w, http.StatusNotFound, "leave_not_found", "leave request not found", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "leave_get_failed", "failed to load leave request", requestID)
		return
	}

	managerID, err := h.Service.ManagerOf(r.Context(), req.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_get_failed", "failed to load leave request", requestID)
		return
	}
	if err := auth.CheckAccess(principal, decisionPolicy, auth.Resource{OwnerID: req.UserID, ManagerID: managerID}); err != nil {
		middleware.WriteAccessError(w, r, err)
		return
	}

	decided, err := h.Service.Decide(r.Context(), reqID, principal.ID, approve)
	if err != nil {
		if errors.Is(err, leave.ErrInvalidState) {
			api.Fail(w, http.StatusConflict, "invalid_state", "leave request already decided", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "leave_decide_failed", "failed to decide leave request", requestID)
		return
	}

	ntype := notifications.TypeLeaveRejected
	title := "Leave request rejected"
	if approve {
		ntype = notifications.TypeLeaveApproved
		title = "Leave request approved"
	}
	h.notify(r, req.UserID, ntype, title,
		fmt.Sprintf("Your leave from %s to %s was %s.", req.StartDate.Format("2006-01-02"), req.EndDate.Format("2006-01-02"), decided.Status))
	api.Success(w, decided, requestID)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, true)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, false)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal, _ := middleware.GetPrincipal(r.Context())
	reqID := chi.URLParam(r, "requestID")

	req, err := h.Service.GetRequest(r.Context(), reqID)
	if err != nil {
		if errors.Is(err, leave.ErrRequestNotFound) {
			api.Fail(w, http.StatusNotFound, "leave_not_found", "leave request not found", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "leave_get_failed", "failed to load leave request", requestID)
		return
	}
	if req.UserID != principal.ID && principal.Role != auth.RoleSuperAdmin {
		api.Fail(w, http.StatusForbidden, "forbidden", "only the requester can cancel", requestID)
		return
	}

	if err := h.Service.Cancel(r.Context(), reqID); err != nil {
		if errors.Is(err, leave.ErrInvalidState) {
			api.Fail(w, http.StatusConflict, "invalid_state", "only pending requests can be cancelled", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "leave_cancel_failed", "failed to cancel leave request", requestID)
		return
	}
	api.Success(w, map[string]string{"status": "cancelled"}, requestID)
}

func (h *Handler) handleBalances(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal, _ := middleware.GetPrincipal(r.Context())
	userID := chi.URLParam(r, "userID")

	managerID, err := h.Service.ManagerOf(r.Context(), userID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_balances_failed", "failed to load balances", requestID)
		return
	}
	if err := auth.CheckAccess(principal, leavePolicy, auth.Resource{OwnerID: userID, ManagerID: managerID}); err != nil {
		middleware.WriteAccessError(w, r, err)
		return
	}

	balances, err := h.Service.ListBalances(r.Context(), userID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_balances_failed", "failed to load balances", requestID)
		return
	}
	api.Success(w, balances, requestID)
}

func (h *Handler) handleAdjustBalance(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	userID := chi.URLParam(r, "userID")

	var payload struct {
		LeaveTypeID string  `json:"leaveTypeId"`
		Amount      float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("leaveTypeId", payload.LeaveTypeID, "leaveTypeId is required")
	if v.Reject(w, requestID) {
		return
	}

	if err := h.Service.AdjustBalance(r.Context(), userID, payload.LeaveTypeID, payload.Amount); err != nil {
		api.Fail(w, http.StatusInternalServerError, "leave_adjust_failed", "failed to adjust balance", requestID)
		return
	}
	api.Success(w, map[string]string{"status": "adjusted"}, requestID)
}

func (h *Handler) notify(r *http.Request, userID, ntype, title, body string) {
	if h.Notifier == nil {
		return
	}
	if err := h.Notifier.Notify(r.Context(), userID, ntype, title, body); err != nil {
		slog.Warn("leave notification failed", "type", ntype, "err", err)
	}
}
