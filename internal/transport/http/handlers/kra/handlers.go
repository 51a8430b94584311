package krahandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"opshub/internal/domain/auth"
	"opshub/internal/domain/kra"
	"opshub/internal/domain/notifications"
	"opshub/internal/transport/http/api"
	"opshub/internal/transport/http/middleware"
	"opshub/internal/transport/http/shared"
)

var kraViewPolicy = auth.Policy{
	FullAccess: auth.AdminTier,
	TeamRole:   auth.RoleManager,
	AllowSelf:  true,
}

// Ratings come from above: managers rate their reports, the admin tier rates
// anyone. Nobody rates themselves.
var ratingPolicy = auth.Policy{
	FullAccess: auth.AdminTier,
	TeamRole:   auth.RoleManager,
}

type Handler struct {
	Service  *kra.Service
	Notifier *notifications.Service
}

func NewHandler(service *kra.Service, notifier *notifications.Service) *Handler {
	return &Handler{Service: service, Notifier: notifier}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/kra", func(r chi.Router) {
		r.Get("/definitions", h.handleListDefinitions)
		r.With(middleware.RequireRoles(auth.AdminTier...)).Post("/definitions", h.handleCreateDefinition)
		r.With(middleware.RequireRoles(auth.AdminTier...)).Put("/definitions/{kraID}", h.handleUpdateDefinition)
		r.Post("/ratings", h.handleSubmitRatings)
		r.Get("/submissions", h.handleListSubmissions)
		r.Get("/scores/{userID}", h.handleListScores)
		r.Get("/scores/{userID}/period", h.handleGetScore)
	})
}

// checkSubjectAccess verifies the principal may see (or rate) the subject's
// KRA data, looking up the subject's manager for the team tier.
func (h *Handler) checkSubjectAccess(w http.ResponseWriter, r *http.Request, policy auth.Policy, subjectID, requestID string) bool {
	principal, _ := middleware.GetPrincipal(r.Context())

	managerID, err := h.Service.ManagerOf(r.Context(), subjectID)
	if err != nil {
		if errors.Is(err, kra.ErrSubjectNotFound) {
			api.Fail(w, http.StatusNotFound, "user_not_found", "user not found", requestID)
			return false
		}
		api.Fail(w, http.StatusInternalServerError, "kra_lookup_failed", "failed to resolve user", requestID)
		return false
	}
	if err := auth.CheckAccess(principal, policy, auth.Resource{OwnerID: subjectID, ManagerID: managerID}); err != nil {
		middleware.WriteAccessError(w, r, err)
		return false
	}
	return true
}

func (h *Handler) handleListDefinitions(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal, _ := middleware.GetPrincipal(r.Context())

	subjectID := r.URL.Query().Get("userId")
	if subjectID == "" {
		subjectID = principal.ID
	}
	if !h.checkSubjectAccess(w, r, kraViewPolicy, subjectID, requestID) {
		return
	}

	activeOnly := r.URL.Query().Get("all") == ""
	defs, err := h.Service.ListDefinitions(r.Context(), subjectID, activeOnly)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "kra_list_failed", "failed to list KRA definitions", requestID)
		return
	}
	api.Success(w, defs, requestID)
}

func (h *Handler) handleCreateDefinition(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload kra.Definition
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("userId", payload.UserID, "userId is required")
	v.Required("kraName", payload.Name, "kraName is required")
	if v.Reject(w, requestID) {
		return
	}

	id, err := h.Service.CreateDefinition(r.Context(), payload)
	if err != nil {
		if errors.Is(err, kra.ErrWeightOverflow) {
			api.Fail(w, http.StatusBadRequest, "weight_overflow", err.Error(), requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "kra_create_failed", "failed to create KRA definition", requestID)
		return
	}
	api.Created(w, map[string]string{"id": id}, requestID)
}

func (h *Handler) handleUpdateDefinition(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload kra.Definition
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	payload.ID = chi.URLParam(r, "kraID")

	if err := h.Service.UpdateDefinition(r.Context(), payload); err != nil {
		switch {
		case errors.Is(err, kra.ErrKRANotFound):
			api.Fail(w, http.StatusNotFound, "kra_not_found", "KRA definition not found", requestID)
		case errors.Is(err, kra.ErrWeightOverflow):
			api.Fail(w, http.StatusBadRequest, "weight_overflow", err.Error(), requestID)
		default:
			api.Fail(w, http.StatusInternalServerError, "kra_update_failed", "failed to update KRA definition", requestID)
		}
		return
	}
	api.Success(w, map[string]string{"status": "updated"}, requestID)
}

func periodFromQuery(r *http.Request) kra.Period {
	month, _ := strconv.Atoi(r.URL.Query().Get("month"))
	quarter, _ := strconv.Atoi(r.URL.Query().Get("quarter"))
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	return kra.Period{
		Type:    kra.PeriodType(r.URL.Query().Get("periodType")),
		Month:   month,
		Quarter: quarter,
		Year:    year,
	}
}

func (h *Handler) handleSubmitRatings(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal, _ := middleware.GetPrincipal(r.Context())

	var payload struct {
		UserID  string     `json:"userId"`
		Period  kra.Period `json:"period"`
		Ratings []struct {
			KRAID  string `json:"kraId"`
			Rating int    `json:"rating"`
		} `json:"ratings"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("userId", payload.UserID, "userId is required")
	if len(payload.Ratings) == 0 {
		v.Add("ratings", "at least one rating is required")
	}
	if v.Reject(w, requestID) {
		return
	}

	if payload.UserID == principal.ID && principal.Role != auth.RoleSuperAdmin {
		api.Fail(w, http.StatusForbidden, "self_rating", "you cannot rate your own KRAs", requestID)
		return
	}
	if !h.checkSubjectAccess(w, r, ratingPolicy, payload.UserID, requestID) {
		return
	}

	ratings := make([]kra.RatingInput, 0, len(payload.Ratings))
	for _, input := range payload.Ratings {
		ratings = append(ratings, kra.RatingInput{KRAID: input.KRAID, Rating: input.Rating})
	}

	score, err := h.Service.SubmitRatings(r.Context(), payload.UserID, payload.Period, ratings, principal.ID)
	if err != nil {
		switch {
		case errors.Is(err, kra.ErrInvalidPeriod):
			api.Fail(w, http.StatusBadRequest, "invalid_period", err.Error(), requestID)
		case errors.Is(err, kra.ErrRatingOutOfRange):
			api.Fail(w, http.StatusBadRequest, "rating_out_of_range", err.Error(), requestID)
		case errors.Is(err, kra.ErrKRANotFound):
			api.Fail(w, http.StatusNotFound, "kra_not_found", "KRA definition not found or inactive", requestID)
		case errors.Is(err, kra.ErrNoSubmissions):
			api.Fail(w, http.StatusBadRequest, "no_ratings", "no ratings to score", requestID)
		default:
			api.Fail(w, http.StatusInternalServerError, "rating_failed", "failed to submit ratings", requestID)
		}
		return
	}

	err = h.Notifier.Notify(r.Context(), payload.UserID, notifications.TypeKRAScored,
		"Performance score updated",
		fmt.Sprintf("Your performance score for the period is %.2f (%s).", score.TotalScore, score.Category))
	if err != nil {
		slog.Warn("kra score notification failed", "err", err)
	}

	api.Success(w, score, requestID)
}

func (h *Handler) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal, _ := middleware.GetPrincipal(r.Context())

	subjectID := r.URL.Query().Get("userId")
	if subjectID == "" {
		subjectID = principal.ID
	}
	if !h.checkSubjectAccess(w, r, kraViewPolicy, subjectID, requestID) {
		return
	}

	subs, err := h.Service.ListSubmissions(r.Context(), subjectID, periodFromQuery(r))
	if err != nil {
		if errors.Is(err, kra.ErrInvalidPeriod) {
			api.Fail(w, http.StatusBadRequest, "invalid_period", err.Error(), requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "submission_list_failed", "failed to list submissions", requestID)
		return
	}
	api.Success(w, subs, requestID)
}

func (h *Handler) handleListScores(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	subjectID := chi.URLParam(r, "userID")
	if !h.checkSubjectAccess(w, r, kraViewPolicy, subjectID, requestID) {
		return
	}

	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	scores, err := h.Service.ListScores(r.Context(), subjectID, year)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "score_list_failed", "failed to list scores", requestID)
		return
	}
	api.Success(w, scores, requestID)
}

func (h *Handler) handleGetScore(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	subjectID := chi.URLParam(r, "userID")
	if !h.checkSubjectAccess(w, r, kraViewPolicy, subjectID, requestID) {
		return
	}

	score, err := h.Service.GetScore(r.Context(), subjectID, periodFromQuery(r))
	if err != nil {
		switch {
		case errors.Is(err, kra.ErrInvalidPeriod):
			api.Fail(w, http.StatusBadRequest, "invalid_period", err.Error(), requestID)
		case errors.Is(err, kra.ErrNoSubmissions):
			api.Fail(w, http.StatusNotFound, "score_not_found", "no score for the requested period", requestID)
		default:
			api.Fail(w, http.StatusInternalServerError, "score_lookup_failed", "failed to load score", requestID)
		}
		return
	}
	api.Success(w, score, requestID)
}
