package employeeshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"opshub/internal/domain/audit"
	"opshub/internal/domain/auth"
	"opshub/internal/domain/employees"
	"opshub/internal/transport/http/api"
	"opshub/internal/transport/http/middleware"
	"opshub/internal/transport/http/shared"
)

var directoryPolicy = auth.Policy{
	FullAccess: auth.AdminTier,
	TeamRole:   auth.RoleManager,
	AllowSelf:  true,
}

type Handler struct {
	Service *employees.Service
	Audit   *audit.Service
}

func NewHandler(service *employees.Service, auditor *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditor}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/{employeeID}", h.handleGet)
		r.With(middleware.RequireRoles(auth.AdminTier...)).Post("/", h.handleCreate)
		r.With(middleware.RequireRoles(auth.AdminTier...)).Put("/{employeeID}", h.handleUpdate)
		r.With(middleware.RequireRoles(auth.RoleSuperAdmin, auth.RoleAdmin)).Delete("/{employeeID}", h.handleDeactivate)
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal, _ := middleware.GetPrincipal(r.Context())

	scope := auth.ScopeFor(principal, directoryPolicy)
	page := shared.ParsePagination(r, 50, 200)
	list, err := h.Service.List(r.Context(), scope,
		r.URL.Query().Get("department"), r.URL.Query().Get("status"),
		page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_list_failed", "failed to list employees", requestID)
		return
	}
	api.Success(w, list, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal, _ := middleware.GetPrincipal(r.Context())

	employee, err := h.Service.Get(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		if errors.Is(err, employees.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "employee_get_failed", "failed to load employee", requestID)
		return
	}

	resource := auth.Resource{OwnerID: employee.ID}
	if employee.ManagerID != nil {
		resource.ManagerID = *employee.ManagerID
	}
	if err := auth.CheckAccess(principal, directoryPolicy, resource); err != nil {
		middleware.WriteAccessError(w, r, err)
		return
	}
	api.Success(w, employee, requestID)
}

type createPayload struct {
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	Role        string   `json:"role"`
	Department  string   `json:"department"`
	Designation string   `json:"designation"`
	ManagerID   *string  `json:"managerId"`
	BaseSalary  *float64 `json:"baseSalary"`
	Currency    string   `json:"currency"`
	JoinedAt    string   `json:"joinedAt"`
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
	v.Required("name", payload.Name, "name is required")
	v.Required("email", payload.Email, "email is required")
	v.Required("role", payload.Role, "role is required")
	var joinedAt *time.Time
	if payload.JoinedAt != "" {
		if parsed, ok := v.Date("joinedAt", payload.JoinedAt); ok {
			joinedAt = &parsed
		}
	}
	if v.Reject(w, requestID) {
		return
	}

	id, err := h.Service.Create(r.Context(), employees.CreateInput{
		Name:        payload.Name,
		Email:       payload.Email,
		Password:    payload.Password,
		Role:        payload.Role,
		Department:  payload.Department,
		Designation: payload.Designation,
		ManagerID:   payload.ManagerID,
		BaseSalary:  payload.BaseSalary,
		Currency:    payload.Currency,
		JoinedAt:    joinedAt,
	})
	if err != nil {
		switch {
		case errors.Is(err, employees.ErrEmailTaken):
			api.Fail(w, http.StatusConflict, "email_taken", "email already in use", requestID)
		case errors.Is(err, employees.ErrUnknownRole):
			api.Fail(w, http.StatusBadRequest, "unknown_role", "unknown role", requestID)
		case errors.Is(err, employees.ErrWeakPassword):
			api.Fail(w, http.StatusBadRequest, "weak_password", "password must be at least 8 characters", requestID)
		case errors.Is(err, employees.ErrMissingField):
			api.Fail(w, http.StatusBadRequest, "missing_field", "required field missing", requestID)
		default:
			api.Fail(w, http.StatusInternalServerError, "employee_create_failed", "failed to create employee", requestID)
		}
		return
	}

	h.record(r, principal.ID, "employee.create", id, nil, map[string]string{"email": payload.Email, "role": payload.Role})
	api.Created(w, map[string]string{"id": id}, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal, _ := middleware.GetPrincipal(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	var payload employees.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	before, err := h.Service.Get(r.Context(), employeeID)
	if err != nil {
		if errors.Is(err, employees.ErrNotFound) {
			api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "employee_get_failed", "failed to load employee", requestID)
		return
	}

	if err := h.Service.Update(r.Context(), employeeID, payload); err != nil {
		switch {
		case errors.Is(err, employees.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
		case errors.Is(err, employees.ErrUnknownRole):
			api.Fail(w, http.StatusBadRequest, "unknown_role", "unknown role", requestID)
		case errors.Is(err, employees.ErrManagerCycle):
			api.Fail(w, http.StatusBadRequest, "manager_cycle", "employee cannot manage themselves", requestID)
		default:
			api.Fail(w, http.StatusInternalServerError, "employee_update_failed", "failed to update employee", requestID)
		}
		return
	}

	h.record(r, principal.ID, "employee.update", employeeID, before, payload)
	api.Success(w, map[string]string{"status": "updated"}, requestID)
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal, _ := middleware.GetPrincipal(r.Context())
	employeeID := chi.URLParam(r, "employeeID")

	if err := h.Service.Deactivate(r.Context(), employeeID); err != nil {
		switch {
		case errors.Is(err, employees.ErrNotFound):
			api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
		case errors.Is(err, employees.ErrAlreadyRemoved):
			api.Fail(w, http.StatusConflict, "already_inactive", "employee already deactivated", requestID)
		default:
			api.Fail(w, http.StatusInternalServerError, "employee_deactivate_failed", "failed to deactivate employee", requestID)
		}
		return
	}

	h.record(r, principal.ID, "employee.deactivate", employeeID, nil, nil)
	api.Success(w, map[string]string{"status": "deactivated"}, requestID)
}

func (h *Handler) record(r *http.Request, actorID, action, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	err := h.Audit.Record(r.Context(), actorID, action, "employee", entityID,
		middleware.GetRequestID(r.Context()), r.RemoteAddr, before, after)
	if err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
