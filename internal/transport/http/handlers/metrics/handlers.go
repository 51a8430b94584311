package metricshandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"opshub/internal/domain/auth"
	"opshub/internal/domain/metrics"
	"opshub/internal/domain/notifications"
	"opshub/internal/transport/http/api"
	"opshub/internal/transport/http/middleware"
	"opshub/internal/transport/http/shared"
)

var metricsViewPolicy = auth.Policy{
	FullAccess: auth.AdminTier,
	TeamRole:   auth.RoleManager,
	AllowSelf:  true,
}

type Handler struct {
	Service  *metrics.Service
	Notifier *notifications.Service
}

func NewHandler(service *metrics.Service, notifier *notifications.Service) *Handler {
	return &Handler{Service: service, Notifier: notifier}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/metrics", func(r chi.Router) {
		r.Get("/definitions", h.handleListDefinitions)
		r.With(middleware.RequireRoles(auth.AdminTier...)).Post("/definitions", h.handleCreateDefinition)
		r.With(middleware.RequireRoles(auth.AdminTier...)).Put("/definitions/{definitionID}", h.handleUpdateDefinition)
		r.With(middleware.RequireRoles(auth.AdminTier...)).Delete("/definitions/{definitionID}", h.handleDeactivateDefinition)
		r.Get("/results", h.handleListResults)
		r.With(middleware.RequirePolicy(auth.Policy{FullAccess: auth.AdminTier, TeamRole: auth.RoleManager})).
			Post("/calculate", h.handleCalculate)
	})
}

func (h *Handler) handleListDefinitions(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	kind := metrics.Kind(r.URL.Query().Get("kind"))
	activeOnly := r.URL.Query().Get("all") == ""
	defs, err := h.Service.ListDefinitions(r.Context(), kind, activeOnly)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "definition_list_failed", "failed to list definitions", requestID)
		return
	}
	api.Success(w, defs, requestID)
}

func (h *Handler) handleCreateDefinition(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload metrics.Definition
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("code", payload.Code, "code is required")
	v.Required("name", payload.Name, "name is required")
	v.Enum("kind", string(payload.Kind), []string{string(metrics.KindKPI), string(metrics.KindKRI)}, "kind must be kpi or kri")
	if v.Reject(w, requestID) {
		return
	}

	id, err := h.Service.CreateDefinition(r.Context(), payload)
	if err != nil {
		if errors.Is(err, metrics.ErrUnknownFormula) || errors.Is(err, metrics.ErrKindMismatch) {
			api.Fail(w, http.StatusBadRequest, "invalid_formula", err.Error(), requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "definition_create_failed", "failed to create definition", requestID)
		return
	}
	api.Created(w, map[string]string{"id": id}, requestID)
}

func (h *Handler) handleUpdateDefinition(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload metrics.Definition
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	payload.ID = chi.URLParam(r, "definitionID")

	if err := h.Service.UpdateDefinition(r.Context(), payload); err != nil {
		switch {
		case errors.Is(err, metrics.ErrDefinitionNotFound):
			api.Fail(w, http.StatusNotFound, "definition_not_found", "definition not found", requestID)
		case errors.Is(err, metrics.ErrUnknownFormula), errors.Is(err, metrics.ErrKindMismatch):
			api.Fail(w, http.StatusBadRequest, "invalid_formula", err.Error(), requestID)
		default:
			api.Fail(w, http.StatusInternalServerError, "definition_update_failed", "failed to update definition", requestID)
		}
		return
	}
	api.Success(w, map[string]string{"status": "updated"}, requestID)
}

func (h *Handler) handleDeactivateDefinition(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	if err := h.Service.DeactivateDefinition(r.Context(), chi.URLParam(r, "definitionID")); err != nil {
		if errors.Is(err, metrics.ErrDefinitionNotFound) {
			api.Fail(w, http.StatusNotFound, "definition_not_found", "definition not found", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "definition_deactivate_failed", "failed to deactivate definition", requestID)
		return
	}
	api.Success(w, map[string]string{"status": "deactivated"}, requestID)
}

// scopeFromRequest narrows the requested metric scope to what the caller's
// tier allows: employees get their own numbers, managers their department
// (team membership for a named user is verified separately), the admin tier
// anything.
func scopeFromRequest(r *http.Request, principal auth.Principal) (metrics.Scope, bool) {
	requested := metrics.Scope{
		UserID:     r.URL.Query().Get("userId"),
		Department: r.URL.Query().Get("department"),
	}

	access := auth.ScopeFor(principal, metricsViewPolicy)
	switch access.Kind {
	case auth.ScopeAll:
		return requested, true
	case auth.ScopeTeam:
		if requested.OrgWide() {
			return metrics.Scope{Department: principal.Department}, true
		}
		return requested, true
	case auth.ScopeSelf:
		if requested.UserID != "" && requested.UserID != principal.ID {
			return metrics.Scope{}, false
		}
		return metrics.Scope{UserID: principal.ID}, true
	default:
		return metrics.Scope{}, false
	}
}

// verifyTeamScope checks that a manager-tier caller only names direct reports
// and their own department. Admin-tier callers pass unconditionally.
func (h *Handler) verifyTeamScope(ctx context.Context, principal auth.Principal, scope metrics.Scope) (bool, error) {
	if principal.Role != auth.RoleManager {
		return true, nil
	}
	if scope.Department != "" && scope.Department != principal.Department {
		return false, nil
	}
	if scope.UserID == "" || scope.UserID == principal.ID {
		return true, nil
	}
	managerID, err := h.Service.ManagerOf(ctx, scope.UserID)
	if err != nil {
		return false, err
	}
	return managerID == principal.ID, nil
}

func (h *Handler) handleListResults(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal, _ := middleware.GetPrincipal(r.Context())

	scope, ok := scopeFromRequest(r, principal)
	if !ok {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", requestID)
		return
	}
	allowed, err := h.verifyTeamScope(r.Context(), principal, scope)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "scope_check_failed", "failed to verify scope", requestID)
		return
	}
	if !allowed {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", requestID)
		return
	}

	page := shared.ParsePagination(r, 100, 500)
	results, err := h.Service.ListMetrics(r.Context(),
		r.URL.Query().Get("definitionId"), scope,
		metrics.PeriodType(r.URL.Query().Get("periodType")),
		page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "metric_list_failed", "failed to list metrics", requestID)
		return
	}
	api.Success(w, results, requestID)
}

type calculatePayload struct {
	DefinitionID string `json:"definitionId"`
	PeriodType   string `json:"periodType"`
	UserID       string `json:"userId"`
	Department   string `json:"department"`
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload calculatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Enum("periodType", payload.PeriodType, []string{
		string(metrics.PeriodDaily), string(metrics.PeriodWeekly), string(metrics.PeriodMonthly),
	}, "periodType must be daily, weekly or monthly")
	if v.Reject(w, requestID) {
		return
	}

	principal, _ := middleware.GetPrincipal(r.Context())
	scope := metrics.Scope{UserID: payload.UserID, Department: payload.Department}
	allowed, err := h.verifyTeamScope(r.Context(), principal, scope)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "scope_check_failed", "failed to verify scope", requestID)
		return
	}
	if !allowed {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", requestID)
		return
	}

	now := time.Now()

	var results []metrics.Metric
	if payload.DefinitionID != "" {
		period, err := metrics.DerivePeriod(metrics.PeriodType(payload.PeriodType), now)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_period", "unknown period type", requestID)
			return
		}
		result, err := h.Service.Calculate(r.Context(), payload.DefinitionID, scope, period)
		if err != nil {
			h.writeCalcError(w, err, requestID)
			return
		}
		results = []metrics.Metric{result}
	} else {
		all, err := h.Service.CalculateAll(r.Context(), scope, metrics.PeriodType(payload.PeriodType), now)
		if err != nil {
			h.writeCalcError(w, err, requestID)
			return
		}
		results = all
	}

	h.alertOnRisk(r, scope, results)
	api.Success(w, results, requestID)
}

func (h *Handler) writeCalcError(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, metrics.ErrDefinitionNotFound):
		api.Fail(w, http.StatusNotFound, "definition_not_found", "definition not found", requestID)
	case errors.Is(err, metrics.ErrUnknownFormula):
		api.Fail(w, http.StatusBadRequest, "unknown_formula", "unknown formula", requestID)
	case errors.Is(err, metrics.ErrUnknownPeriodType):
		api.Fail(w, http.StatusBadRequest, "invalid_period", "unknown period type", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "calculation_failed", "metric calculation failed", requestID)
	}
}

// alertOnRisk pushes a metric_alert notification for high and critical KRI
// results scoped to a single user.
func (h *Handler) alertOnRisk(r *http.Request, scope metrics.Scope, results []metrics.Metric) {
	if h.Notifier == nil || scope.UserID == "" {
		return
	}
	for _, m := range results {
		if metrics.Severity(m.RiskLevel) < metrics.Severity(metrics.RiskHigh) {
			continue
		}
		err := h.Notifier.Notify(r.Context(), scope.UserID, notifications.TypeMetricAlert,
			"Risk indicator alert",
			fmt.Sprintf("A risk indicator reached %.2f (%s) for the period starting %s.", m.Value, m.RiskLevel, m.Period.Start.Format("2006-01-02")))
		if err != nil {
			slog.Warn("metric alert notification failed", "err", err)
		}
	}
}
