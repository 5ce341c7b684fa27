package service

import (
	"context"
	"fmt"
	"time"

	"listing-review/internal/domain"
	"listing-review/internal/events"
	"listing-review/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReviewService is the Review Queue. It is the authoritative owner of the
// review state machine: pending -> approved | rejected, nothing else.
type ReviewService interface {
	Submit(ctx context.Context, submitterID, productID string, details domain.ProductDetails) (*domain.Review, error)
	Pending(ctx context.Context) ([]*domain.Review, error)
	Get(ctx context.Context, requester domain.Identity, id string) (*domain.Review, error)
	Decide(ctx context.Context, decider domain.Identity, id string, decision domain.Decision) (*domain.Review, error)
	ByPerson(ctx context.Context, personID string) (domain.ReviewPartition, error)
	Stats(ctx context.Context, requester domain.Identity, personID string) (domain.UserStats, error)
}

type reviewService struct {
	reviews   repository.ReviewRepository
	products  repository.ProductRepository
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewReviewService(
	reviews repository.ReviewRepository,
	products repository.ProductRepository,
	publisher events.Publisher,
	logger *zap.Logger,
) ReviewService {
	return &reviewService{
		reviews:   reviews,
		products:  products,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Submit stores a pending review holding a frozen copy of details. The live
// product is only read, to check it exists.
func (s *reviewService) Submit(ctx context.Context, submitterID, productID string, details domain.ProductDetails) (*domain.Review, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	if details.ID == "" {
		details.ID = productID
	}
	if details.ID != productID {
		return nil, fmt.Errorf("%w: snapshot id %s does not match product %s", domain.ErrValidation, details.ID, productID)
	}

	now := s.now()
	review := &domain.Review{
		ID:             uuid.NewString(),
		ProductID:      productID,
		PersonID:       submitterID,
		Status:         domain.ReviewStatusPending,
		ProductDetails: details,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	s.logger.Info("Review submitted",
		zap.String("review_id", review.ID),
		zap.String("product_id", productID),
		zap.String("person_id", submitterID),
	)
	s.publish(ctx, events.NewReviewEvent(events.TypeReviewSubmitted, review, submitterID, now))

	return review, nil
}

func (s *reviewService) Pending(ctx context.Context) ([]*domain.Review, error) {
	return s.reviews.ListByStatus(ctx, domain.ReviewStatusPending)
}

// Get returns a review to an admin or to its submitter
func (s *reviewService) Get(ctx context.Context, requester domain.Identity, id string) (*domain.Review, error) {
	review, err := s.reviews.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if requester.Role != domain.RoleAdmin && review.PersonID != requester.ID {
		return nil, fmt.Errorf("%w: review belongs to another submitter", domain.ErrUnauthorized)
	}
	return review, nil
}

// Decide applies an admin verdict. A review that is already terminal yields
// ErrReviewAlreadyDecided.
func (s *reviewService) Decide(ctx context.Context, decider domain.Identity, id string, decision domain.Decision) (*domain.Review, error) {
	if !domain.ReviewStatusPending.CanTransition(decision) {
		return nil, fmt.Errorf("%w: %q is not a decision", domain.ErrValidation, decision)
	}

	now := s.now()
	review, err := s.reviews.Decide(ctx, id, decision, decider.ID, now)
	if err != nil {
		s.logger.Debug("Review decision refused",
			zap.String("review_id", id),
			zap.String("decision", string(decision)),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("Review decided",
		zap.String("review_id", id),
		zap.String("status", string(review.Status)),
		zap.String("decided_by", decider.ID),
	)
	s.publish(ctx, events.NewReviewEvent(events.TypeReviewDecided, review, decider.ID, now))

	return review, nil
}

func (s *reviewService) ByPerson(ctx context.Context, personID string) (domain.ReviewPartition, error) {
	reviews, err := s.reviews.ListByPerson(ctx, personID)
	if err != nil {
		return domain.ReviewPartition{}, err
	}
	return domain.PartitionReviews(reviews)
}

// Stats counts personID's reviews. An admin asking about themself gets the
// system-wide counts.
func (s *reviewService) Stats(ctx context.Context, requester domain.Identity, personID string) (domain.UserStats, error) {
	if requester.Role == domain.RoleAdmin && requester.ID == personID {
		return s.reviews.Stats(ctx, nil)
	}
	return s.reviews.Stats(ctx, &personID)
}

// publish never fails the request: the review change is already committed
func (s *reviewService) publish(ctx context.Context, event events.ReviewEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish review event",
			zap.String("type", string(event.Type)),
			zap.String("review_id", event.ReviewID),
			zap.Error(err),
		)
	}
}
