package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"listing-review/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrProductNotFound      = fmt.Errorf("product %w", domain.ErrNotFound)
	ErrReviewNotFound       = fmt.Errorf("review %w", domain.ErrNotFound)
	ErrUserNotFound         = fmt.Errorf("user %w", domain.ErrNotFound)
	ErrReviewAlreadyDecided = fmt.Errorf("%w: review is no longer pending", domain.ErrConflict)
	ErrUserAlreadyExists    = fmt.Errorf("%w: user with this email already exists", domain.ErrConflict)
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// invalidTextRepresentation is raised for a malformed uuid, which can match no row
const invalidTextRepresentation = "22P02"

func isNoRow(err error) bool {
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation
}
