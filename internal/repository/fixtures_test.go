package repository

import (
	"context"
	"testing"
	"time"

	"listing-review/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func createUser(t *testing.T, role domain.Role) *domain.User {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "$2a$10$hash",
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, NewUserRepository(testDB).Create(context.Background(), user))
	return user
}

func createProduct(t *testing.T) *domain.Product {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	product := &domain.Product{
		ID:                 uuid.NewString(),
		ProductName:        "Widget",
		Price:              19.99,
		ProductDescription: "A widget",
		Department:         "Toys",
		Image:              "https://img.example.com/widget.png",
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	require.NoError(t, NewProductRepository(testDB).Create(context.Background(), product))
	return product
}

func createReview(t *testing.T, product *domain.Product, person *domain.User) *domain.Review {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	details := product.Details()
	details.ProductName = product.ProductName + " v2"
	review := &domain.Review{
		ID:             uuid.NewString(),
		ProductID:      product.ID,
		PersonID:       person.ID,
		Status:         domain.ReviewStatusPending,
		ProductDetails: details,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	require.NoError(t, NewReviewRepository(testDB).Create(context.Background(), review))
	return review
}
