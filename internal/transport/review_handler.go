package transport

import (
	"net/http"

	"listing-review/internal/authz"
	"listing-review/internal/domain"
	"listing-review/internal/middleware"
	"listing-review/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SubmitReviewRequest proposes a change to a product
type SubmitReviewRequest struct {
	ProductID      string                `json:"productId" validate:"required"`
	PersonID       string                `json:"personId"`
	ProductDetails ProductDetailsRequest `json:"productDetails"`
}

// DecideRequest carries an admin decision
type DecideRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// ReviewHandler serves the Review Queue
type ReviewHandler struct {
	reviews service.ReviewService
	logger  *zap.Logger
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(reviews service.ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, logger: logger}
}

// RegisterRoutes registers review and per-user statistics routes
func (h *ReviewHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/reviews", func(r chi.Router) {
		r.Use(authMiddleware)

		r.With(middleware.RequireCapability(authz.SubmitForReview, h.logger)).Post("/", h.Submit)
		r.With(middleware.RequireCapability(authz.ViewPendingQueue, h.logger)).Get("/pending", h.Pending)
		r.With(middleware.RequireCapability(authz.ViewOwnHistory, h.logger)).Get("/person/{id}", h.ByPerson)
		r.Get("/{id}", h.Get)
		r.With(middleware.RequireCapability(authz.DecideReview, h.logger)).Put("/{id}/status", h.Decide)
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Use(authMiddleware)
		r.With(middleware.RequireCapability(authz.ViewOwnProfile, h.logger)).Get("/{id}/stats", h.Stats)
	})
}

// Submit records a pending review. The submitter is always the caller.
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	var req SubmitReviewRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDomainError(w, h.logger, err, "invalid request body")
		return
	}
	if req.PersonID != "" && req.PersonID != identity.ID {
		h.logger.Debug("Ignoring foreign person id on submission",
			zap.String("person_id", req.PersonID),
			zap.String("user_id", identity.ID),
		)
	}

	review, err := h.reviews.Submit(r.Context(), identity.ID, req.ProductID, req.ProductDetails.details())
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err, "failed to submit review")
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, review)
}

// Pending lists reviews awaiting a decision, oldest first
func (h *ReviewHandler) Pending(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.Pending(r.Context())
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err, "failed to list pending reviews")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, reviews)
}

// Get returns one review to an admin or its submitter
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	review, err := h.reviews.Get(r.Context(), identity, chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err, "failed to get review")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, review)
}

// Decide approves or rejects a pending review
func (h *ReviewHandler) Decide(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r.Context())

	var req DecideRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDomainError(w, h.logger, err, "invalid request body")
		return
	}
	decision, err := domain.ParseDecision(req.Status)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err, "invalid decision")
		return
	}

	review, err := h.reviews.Decide(r.Context(), identity, chi.URLParam(r, "id"), decision)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err, "failed to decide review")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, review)
}

// ByPerson returns a submitter's reviews grouped by status
func (h *ReviewHandler) ByPerson(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "id")
	if !h.actsFor(w, r, personID) {
		return
	}

	partition, err := h.reviews.ByPerson(r.Context(), personID)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err, "failed to list reviews")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, partition)
}

// Stats returns review counts for a person
func (h *ReviewHandler) Stats(w http.ResponseWriter, r *http.Request) {
	personID := chi.URLParam(r, "id")
	if !h.actsFor(w, r, personID) {
		return
	}

	identity, _ := middleware.GetIdentity(r.Context())
	stats, err := h.reviews.Stats(r.Context(), identity, personID)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err, "failed to get stats")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, stats)
}

func (h *ReviewHandler) actsFor(w http.ResponseWriter, r *http.Request, personID string) bool {
	identity, _ := middleware.GetIdentity(r.Context())
	if authz.ActsFor(identity, personID) {
		return true
	}
	h.logger.Warn("Cross-account read refused",
		zap.String("user_id", identity.ID),
		zap.String("person_id", personID),
	)
	middleware.RespondWithError(w, http.StatusForbidden, "insufficient permissions")
	return false
}
