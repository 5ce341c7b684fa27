package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"listing-review/internal/domain"
)

// ReviewRepository defines the interface for review data access
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	FindByID(ctx context.Context, id string) (*domain.Review, error)
	ListByStatus(ctx context.Context, status domain.ReviewStatus) ([]*domain.Review, error)
	ListByPerson(ctx context.Context, personID string) ([]*domain.Review, error)
	Decide(ctx context.Context, id string, decision domain.Decision, deciderID string, at time.Time) (*domain.Review, error)
	Stats(ctx context.Context, personID *string) (domain.UserStats, error)
}

type reviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates a new instance of ReviewRepository
func NewReviewRepository(db *sql.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

const reviewColumns = `id, product_id, person_id, status, product_details, decided_by, decided_at, created_at, updated_at`

func scanReview(row rowScanner) (*domain.Review, error) {
	var (
		status    string
		details   []byte
		decidedBy sql.NullString
		decidedAt sql.NullTime
	)

	review := &domain.Review{}
	err := row.Scan(
		&review.ID,
		&review.ProductID,
		&review.PersonID,
		&status,
		&details,
		&decidedBy,
		&decidedAt,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if review.Status, err = domain.ParseReviewStatus(status); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(details, &review.ProductDetails); err != nil {
		return nil, fmt.Errorf("failed to decode product details: %w", err)
	}
	if decidedBy.Valid {
		review.DecidedBy = &decidedBy.String
	}
	if decidedAt.Valid {
		review.DecidedAt = &decidedAt.Time
	}

	return review, nil
}

// Create inserts a new review
func (r *reviewRepository) Create(ctx context.Context, review *domain.Review) error {
	details, err := json.Marshal(review.ProductDetails)
	if err != nil {
		return fmt.Errorf("failed to encode product details: %w", err)
	}

	query := `
		INSERT INTO reviews (id, product_id, person_id, status, product_details, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		review.ID,
		review.ProductID,
		review.PersonID,
		string(review.Status),
		details,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}

	return nil
}

// FindByID retrieves a review by ID
func (r *reviewRepository) FindByID(ctx context.Context, id string) (*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	review, err := scanReview(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if isNoRow(err) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to find review by ID: %w", err)
	}

	return review, nil
}

// ListByStatus returns reviews in the given status, oldest first
func (r *reviewRepository) ListByStatus(ctx context.Context, status domain.ReviewStatus) ([]*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE status = $1 ORDER BY created_at ASC`
	return r.list(ctx, query, string(status))
}

// ListByPerson returns every review submitted by personID, newest first. A
// person with no reviews and a malformed id both give an empty list.
func (r *reviewRepository) ListByPerson(ctx context.Context, personID string) ([]*domain.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE person_id = $1 ORDER BY created_at DESC`
	reviews, err := r.list(ctx, query, personID)
	if isNoRow(err) {
		return []*domain.Review{}, nil
	}
	return reviews, err
}

func (r *reviewRepository) list(ctx context.Context, query string, arg any) ([]*domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []*domain.Review{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}

	return reviews, nil
}

// Decide moves a pending review to a terminal status. The status guard is in
// the WHERE clause, so of two racing deciders only the first one matches a row.
func (r *reviewRepository) Decide(ctx context.Context, id string, decision domain.Decision, deciderID string, at time.Time) (*domain.Review, error) {
	if !domain.ReviewStatusPending.CanTransition(decision) {
		return nil, fmt.Errorf("%w: cannot decide review as %q", domain.ErrValidation, decision)
	}

	query := `
		UPDATE reviews
		SET status = $2, decided_by = $3, decided_at = $4, updated_at = $4
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + reviewColumns

	review, err := scanReview(r.db.QueryRowContext(ctx, query, id, string(decision), deciderID, at))
	if err == nil {
		return review, nil
	}
	if !isNoRow(err) {
		return nil, fmt.Errorf("failed to decide review: %w", err)
	}

	// Nothing matched: either the id is unknown or the review is terminal
	if _, findErr := r.FindByID(ctx, id); findErr != nil {
		return nil, findErr
	}
	return nil, ErrReviewAlreadyDecided
}

// Stats counts reviews by status. A nil personID counts the whole system; a
// malformed one counts nothing.
func (r *reviewRepository) Stats(ctx context.Context, personID *string) (domain.UserStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'approved'),
			COUNT(*) FILTER (WHERE status = 'rejected'),
			COUNT(*) FILTER (WHERE status = 'pending')
		FROM reviews
		WHERE $1::uuid IS NULL OR person_id = $1::uuid
	`

	var stats domain.UserStats
	err := r.db.QueryRowContext(ctx, query, personID).Scan(
		&stats.Total,
		&stats.Approved,
		&stats.Rejected,
		&stats.Pending,
	)
	if err != nil {
		if isNoRow(err) {
			return domain.UserStats{}, nil
		}
		return domain.UserStats{}, fmt.Errorf("failed to count reviews: %w", err)
	}

	return stats, nil
}
