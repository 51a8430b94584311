package taskshandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"opshub/internal/domain/auth"
	"opshub/internal/domain/notifications"
	"opshub/internal/domain/tasks"
	"opshub/internal/transport/http/api"
	"opshub/internal/transport/http/middleware"
	"opshub/internal/transport/http/shared"
)

var taskPolicy = auth.Policy{
	FullAccess: auth.AdminTier,
	TeamRole:   auth.RoleManager,
	AllowSelf:  true,
}

// Only managers and the admin tier may rate completed work.
var ratingPolicy = auth.Policy{
	FullAccess: auth.AdminTier,
	TeamRole:   auth.RoleManager,
}

type Handler struct {
	Service  *tasks.Service
	Notifier *notifications.Service
}

func NewHandler(service *tasks.Service, notifier *notifications.Service) *Handler {
	return &Handler{Service: service, Notifier: notifier}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/{taskID}", h.handleGet)
		r.With(middleware.RequirePolicy(ratingPolicy)).Post("/", h.handleCreate)
		r.Post("/{taskID}/status", h.handleTransition)
		r.With(middleware.RequirePolicy(ratingPolicy)).Post("/{taskID}/rating", h.handleRate)
		r.Post("/{taskID}/report", h.handleReport)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal, _ := middleware.GetPrincipal(r.Context())

	scope := auth.ScopeFor(principal, taskPolicy)
	page := shared.ParsePagination(r, 50, 200)
	list, err := h.Service.List(r.Context(), scope, r.URL.Query().Get("status"), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "task_list_failed", "failed to list tasks", requestID)
		return
	}
	api.Success(w, list, requestID)
}

func (h *Handler) loadWithAccess(w http.ResponseWriter, r *http.Request, policy auth.Policy) (tasks.Task, bool) {
	requestID := middleware.GetRequestID(r.Context())
	principal, _ := middleware.GetPrincipal(r.Context())

	task, err := h.Service.Get(r.Context(), chi.URLParam(r, "taskID"))
	if err != nil {
		if errors.Is(err, tasks.ErrTaskNotFound) {
			api.Fail(w, http.StatusNotFound, "task_not_found", "task not found", requestID)
			return tasks.Task{}, false
		}
		api.Fail(w, http.StatusInternalServerError, "task_get_failed", "failed to load task", requestID)
		return tasks.Task{}, false
	}

	if err := auth.CheckAccess(principal, policy, auth.Resource{OwnerID: task.AssigneeID, ManagerID: task.ManagerID}); err != nil {
		middleware.WriteAccessError(w, r, err)
		return tasks.Task{}, false
	}
	return task, true
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	task, ok := h.loadWithAccess(w, r, taskPolicy)
	if !ok {
		return
	}
	api.Success(w, task, middleware.GetRequestID(r.Context()))
}

type createPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	AssigneeID  string `json:"assigneeId"`
	Deadline    string `json:"deadline"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal, _ := middleware.GetPrincipal(r.Context())

	var payload createPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("title", payload.Title, "title is required")
	v.Required("assigneeId", payload.AssigneeID, "assigneeId is required")
	deadline, _ := v.Date("deadline", payload.Deadline)
	if v.Reject(w, requestID) {
		return
	}

	id, err := h.Service.Create(r.Context(), tasks.Task{
		Title:       payload.Title,
		Description: payload.Description,
		AssigneeID:  payload.AssigneeID,
		AssignedBy:  principal.ID,
		Deadline:    deadline,
		Status:      tasks.StatusPending,
	})
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "task_create_failed", "failed to create task", requestID)
		return
	}

	h.notify(r, payload.AssigneeID, notifications.TypeTaskAssigned, "New task assigned",
		fmt.Sprintf("Task %q is due %s.", payload.Title, deadline.Format("2006-01-02")))
	api.Created(w, map[string]string{"id": id}, requestID)
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	task, ok := h.loadWithAccess(w, r, taskPolicy)
	if !ok {
		return
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if !tasks.ValidStatus(payload.Status) {
		api.Fail(w, http.StatusBadRequest, "unknown_status", "unknown task status", requestID)
		return
	}

	updated, err := h.Service.Transition(r.Context(), task.ID, payload.Status)
	if err != nil {
		if errors.Is(err, tasks.ErrInvalidTransition) {
			api.Fail(w, http.StatusConflict, "invalid_transition", err.Error(), requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "task_update_failed", "failed to update task", requestID)
		return
	}
	api.Success(w, updated, requestID)
}

func (h *Handler) handleRate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal, _ := middleware.GetPrincipal(r.Context())

	task, ok := h.loadWithAccess(w, r, ratingPolicy)
	if !ok {
		return
	}

	var payload struct {
		Rating int `json:"rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	if err := h.Service.Rate(r.Context(), task.ID, payload.Rating, principal.ID); err != nil {
		switch {
		case errors.Is(err, tasks.ErrRatingOutOfRange):
			api.Fail(w, http.StatusBadRequest, "rating_out_of_range", "rating must be between 1 and 5", requestID)
		case errors.Is(err, tasks.ErrNotCompleted):
			api.Fail(w, http.StatusConflict, "task_not_completed", "only completed tasks can be rated", requestID)
		default:
			api.Fail(w, http.StatusInternalServerError, "task_rate_failed", "failed to rate task", requestID)
		}
		return
	}

	h.notify(r, task.AssigneeID, notifications.TypeTaskRated, "Task rated",
		fmt.Sprintf("Task %q was rated %d/5.", task.Title, payload.Rating))
	api.Success(w, map[string]string{"status": "rated"}, requestID)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal, _ := middleware.GetPrincipal(r.Context())

	task, ok := h.loadWithAccess(w, r, taskPolicy)
	if !ok {
		return
	}
	// Reports come from the person who did the work.
	if task.AssigneeID != principal.ID && principal.Role != auth.RoleSuperAdmin {
		api.Fail(w, http.StatusForbidden, "forbidden", "only the assignee can file a report", requestID)
		return
	}

	var payload struct {
		Report string `json:"report"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("report", payload.Report, "report is required")
	if v.Reject(w, requestID) {
		return
	}

	if err := h.Service.FileReport(r.Context(), task.ID, payload.Report); err != nil {
		switch {
		case errors.Is(err, tasks.ErrReportAlreadyFiled):
			api.Fail(w, http.StatusConflict, "report_exists", "a report has already been filed", requestID)
		case errors.Is(err, tasks.ErrTaskNotFound):
			api.Fail(w, http.StatusNotFound, "task_not_found", "task not found", requestID)
		default:
			api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to file report", requestID)
		}
		return
	}
	api.Success(w, map[string]string{"status": "reported"}, requestID)
}

func (h *Handler) notify(r *http.Request, userID, ntype, title, body string) {
	if h.Notifier == nil {
		return
	}
	if err := h.Notifier.Notify(r.Context(), userID, ntype, title, body); err != nil {
		slog.Warn("task notification failed", "type", ntype, "err", err)
	}
}
