package payrollhandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"opshub/internal/domain/auth"
	"opshub/internal/domain/notifications"
	"opshub/internal/domain/payroll"
	"opshub/internal/transport/http/api"
	"opshub/internal/transport/http/middleware"
	"opshub/internal/transport/http/shared"
)

// Salary data never opens up to the team tier: employees see their own
// payslips, the admin tier sees everyone's.
var payslipPolicy = auth.Policy{
	FullAccess: auth.AdminTier,
	AllowSelf:  true,
}

type Handler struct {
	Service  *payroll.Service
	Notifier *notifications.Service
}

func NewHandler(service *payroll.Service, notifier *notifications.Service) *Handler {
	return &Handler{Service: service, Notifier: notifier}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.With(middleware.RequireRoles(auth.AdminTier...)).Post("/runs", h.handleRunMonth)
		r.Get("/payslips", h.handleList)
		r.Get("/payslips/{payslipID}", h.handleGet)
		r.With(middleware.RequireRoles(auth.AdminTier...)).Post("/payslips/{payslipID}/publish", h.handlePublish)
		r.Get("/payslips/{payslipID}/download", h.handleDownload)
	})
}

type runPayload struct {
	Month      int    `json:"month"`
	Year       int    `json:"year"`
	Department string `json:"department"`
}

func (h *Handler) handleRunMonth(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload runPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.IntRange("month", payload.Month, 1, 12, "month must be between 1 and 12")
	v.IntRange("year", payload.Year, 2000, 2200, "year is out of range")
	if v.Reject(w, requestID) {
		return
	}

	payslips, err := h.Service.RunMonth(r.Context(), payload.Department, payload.Month, payload.Year)
	if err != nil {
		if errors.Is(err, payroll.ErrInvalidMonth) {
			api.Fail(w, http.StatusBadRequest, "invalid_month", "invalid payroll month", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "payroll_run_failed", "payroll run failed", requestID)
		return
	}
	api.Success(w, payslips, requestID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal, _ := middleware.GetPrincipal(r.Context())

	month, _ := strconv.Atoi(r.URL.Query().Get("month"))
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	scope := auth.ScopeFor(principal, payslipPolicy)
	page := shared.ParsePagination(r, 50, 200)

	payslips, err := h.Service.List(r.Context(), scope, month, year, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "payslip_list_failed", "failed to list payslips", requestID)
		return
	}
	api.Success(w, payslips, requestID)
}

// loadWithAccess fetches a payslip and checks the caller may see it.
func (h *Handler) loadWithAccess(w http.ResponseWriter, r *http.Request, requestID string) (payroll.Payslip, bool) {
	principal, _ := middleware.GetPrincipal(r.Context())

	p, err := h.Service.Get(r.Context(), chi.URLParam(r, "payslipID"))
	if err != nil {
		if errors.Is(err, payroll.ErrPayslipNotFound) {
			api.Fail(w, http.StatusNotFound, "payslip_not_found", "payslip not found", requestID)
			return payroll.Payslip{}, false
		}
		api.Fail(w, http.StatusInternalServerError, "payslip_lookup_failed", "failed to load payslip", requestID)
		return payroll.Payslip{}, false
	}
	if err := auth.CheckAccess(principal, payslipPolicy, auth.Resource{OwnerID: p.UserID}); err != nil {
		middleware.WriteAccessError(w, r, err)
		return payroll.Payslip{}, false
	}
	return p, true
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	p, ok := h.loadWithAccess(w, r, requestID)
	if !ok {
		return
	}
	api.Success(w, p, requestID)
}

func (h *Handler) handlePublish(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	p, err := h.Service.Publish(r.Context(), chi.URLParam(r, "payslipID"))
	if err != nil {
		switch {
		case errors.Is(err, payroll.ErrPayslipNotFound):
			api.Fail(w, http.StatusNotFound, "payslip_not_found", "payslip not found", requestID)
		case errors.Is(err, payroll.ErrAlreadyPublished):
			api.Fail(w, http.StatusConflict, "already_published", "payslip is already published", requestID)
		default:
			api.Fail(w, http.StatusInternalServerError, "publish_failed", "failed to publish payslip", requestID)
		}
		return
	}

	err = h.Notifier.Notify(r.Context(), p.UserID, notifications.TypePayslipPublished,
		"Payslip published",
		fmt.Sprintf("Your payslip for %04d-%02d is available.", p.Year, p.Month))
	if err != nil {
		slog.Warn("payslip notification failed", "err", err)
	}

	api.Success(w, p, requestID)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	p, ok := h.loadWithAccess(w, r, requestID)
	if !ok {
		return
	}
	if p.Status != payroll.StatusPublished {
		api.Fail(w, http.StatusConflict, "not_published", "payslip is not published yet", requestID)
		return
	}

	data, err := h.Service.PayslipBytes(r.Context(), p.ID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "download_failed", "failed to load payslip file", requestID)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="payslip-%04d-%02d.pdf"`, p.Year, p.Month))
	_, _ = w.Write(data)
}
