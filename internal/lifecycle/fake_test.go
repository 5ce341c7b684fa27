package lifecycle

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"listing-review/internal/authz"
	"listing-review/internal/domain"
	"listing-review/internal/session"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// backend is an in-memory Product Store and Review Queue that counts calls
type backend struct {
	mu       sync.Mutex
	products map[string]*domain.Product
	reviews  map[string]*domain.Review
	calls    map[string]int

	// hook runs inside every call, after counting it
	hook func(ctx context.Context, op string)
}

func newBackend(products ...*domain.Product) *backend {
	b := &backend{
		products: map[string]*domain.Product{},
		reviews:  map[string]*domain.Review{},
		calls:    map[string]int{},
	}
	for _, p := range products {
		b.products[p.ID] = p
	}
	return b
}

func (b *backend) enter(ctx context.Context, op string) {
	b.mu.Lock()
	b.calls[op]++
	hook := b.hook
	b.mu.Unlock()
	if hook != nil {
		hook(ctx, op)
	}
}

func (b *backend) totalCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		n += c
	}
	return n
}

func (b *backend) ListProducts(ctx context.Context, _ string) ([]*domain.Product, error) {
	b.enter(ctx, "ListProducts")
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []*domain.Product{}
	for _, p := range b.products {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (b *backend) GetProduct(ctx context.Context, _, id string) (*domain.Product, error) {
	b.enter(ctx, "GetProduct")
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
	}
	cp := *p
	return &cp, nil
}

func (b *backend) UpdateProduct(ctx context.Context, _, id string, d domain.ProductDetails) (*domain.Product, error) {
	b.enter(ctx, "UpdateProduct")
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.products[id]
	if !ok {
		return nil, fmt.Errorf("%w: product %s", domain.ErrNotFound, id)
	}
	p.Apply(d)
	cp := *p
	return &cp, nil
}

func (b *backend) SubmitReview(ctx context.Context, _, productID, personID string, d domain.ProductDetails) (*domain.Review, error) {
	b.enter(ctx, "SubmitReview")
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.products[productID]; !ok {
		return nil, fmt.Errorf("%w: product %s", domain.ErrNotFound, productID)
	}
	r := &domain.Review{
		ID:             uuid.NewString(),
		ProductID:      productID,
		PersonID:       personID,
		Status:         domain.ReviewStatusPending,
		ProductDetails: d,
		CreatedAt:      time.Now(),
	}
	b.reviews[r.ID] = r
	cp := *r
	return &cp, nil
}

func (b *backend) PendingReviews(ctx context.Context, _ string) ([]*domain.Review, error) {
	b.enter(ctx, "PendingReviews")
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []*domain.Review{}
	for _, r := range b.reviews {
		if r.Status == domain.ReviewStatusPending {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (b *backend) GetReview(ctx context.Context, _, id string) (*domain.Review, error) {
	b.enter(ctx, "GetReview")
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.reviews[id]
	if !ok {
		return nil, fmt.Errorf("%w: review %s", domain.ErrNotFound, id)
	}
	cp := *r
	return &cp, nil
}

func (b *backend) DecideReview(ctx context.Context, _, id string, decision domain.Decision) (*domain.Review, error) {
	b.enter(ctx, "DecideReview")
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.reviews[id]
	if !ok {
		return nil, fmt.Errorf("%w: review %s", domain.ErrNotFound, id)
	}
	if !r.Status.CanTransition(decision) {
		return nil, fmt.Errorf("%w: review %s already %s", domain.ErrConflict, id, r.Status)
	}
	r.Status = decision
	cp := *r
	return &cp, nil
}

func (b *backend) ReviewsByPerson(ctx context.Context, _, personID string) (domain.ReviewPartition, error) {
	b.enter(ctx, "ReviewsByPerson")
	b.mu.Lock()
	defer b.mu.Unlock()
	var mine []*domain.Review
	for _, r := range b.reviews {
		if r.PersonID == personID {
			cp := *r
			mine = append(mine, &cp)
		}
	}
	return domain.PartitionReviews(mine)
}

func (b *backend) UserStats(ctx context.Context, token, personID string) (domain.UserStats, error) {
	p, err := b.ReviewsByPerson(ctx, token, personID)
	if err != nil {
		return domain.UserStats{}, err
	}
	return p.Stats(), nil
}

func (b *backend) UploadImage(ctx context.Context, _, filename string, r io.Reader) (string, error) {
	b.enter(ctx, "UploadImage")
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	return "http://images.local/products/" + filename, nil
}

const (
	adminID  = "11111111-1111-1111-1111-111111111111"
	memberID = "22222222-2222-2222-2222-222222222222"
	otherID  = "33333333-3333-3333-3333-333333333333"
)

func newSession(t *testing.T, id string, role domain.Role, ttl time.Duration) *session.Session {
	t.Helper()
	now := time.Now()
	claims := &session.Claims{
		User: session.UserClaim{ID: id, Role: role.String(), Email: id[:4] + "@example.com"},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	sess, err := session.New(token, now.Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return sess
}

func adminSession(t *testing.T) *session.Session {
	return newSession(t, adminID, domain.RoleAdmin, time.Hour)
}

func memberSession(t *testing.T) *session.Session {
	return newSession(t, memberID, domain.RoleTeamMember, time.Hour)
}

func newController(b *backend) *Controller {
	return NewController(b, b, b, authz.NewGate(), zap.NewNop())
}

func p1() *domain.Product {
	return &domain.Product{
		ID:          "P1",
		ProductName: "Gizmo",
		Price:       5,
		Department:  "Hardware",
	}
}
