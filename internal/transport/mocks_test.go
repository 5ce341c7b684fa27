package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"listing-review/internal/domain"
	"listing-review/internal/middleware"
	"listing-review/internal/repository"
	"listing-review/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	adminIdentity  = domain.Identity{ID: "11111111-1111-1111-1111-111111111111", Role: domain.RoleAdmin, Email: "admin@example.com"}
	memberIdentity = domain.Identity{ID: "22222222-2222-2222-2222-222222222222", Role: domain.RoleTeamMember, Email: "member@example.com"}
	otherIdentity  = domain.Identity{ID: "33333333-3333-3333-3333-333333333333", Role: domain.RoleTeamMember, Email: "other@example.com"}
)

type stubValidator map[string]domain.Identity

func (s stubValidator) ValidateToken(token string) (domain.Identity, error) {
	identity, ok := s[token]
	if !ok {
		return domain.Identity{}, errors.New("unknown token")
	}
	return identity, nil
}

var tokens = stubValidator{
	"admin":  adminIdentity,
	"member": memberIdentity,
	"other":  otherIdentity,
}

type fakeAuthService struct {
	users map[string]*domain.User
}

func (f *fakeAuthService) Register(_ context.Context, email, _ string, role domain.Role) (string, *domain.User, error) {
	if _, ok := f.users[email]; ok {
		return "", nil, repository.ErrUserAlreadyExists
	}
	user := &domain.User{ID: uuid.NewString(), Email: email, Role: role}
	f.users[email] = user
	return "token-" + user.ID, user, nil
}

func (f *fakeAuthService) Login(_ context.Context, email, password string) (string, *domain.User, error) {
	user, ok := f.users[email]
	if !ok || password != "correct-horse" {
		return "", nil, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthenticated)
	}
	return "token-" + user.ID, user, nil
}

func (f *fakeAuthService) ValidateToken(token string) (domain.Identity, error) {
	return tokens.ValidateToken(token)
}

func (f *fakeAuthService) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

type fakeProductService struct {
	mu       sync.Mutex
	products map[string]*domain.Product
}

func (f *fakeProductService) List(context.Context) ([]*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.Product{}
	for _, p := range f.products {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeProductService) Get(_ context.Context, id string) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProductService) Create(_ context.Context, d domain.ProductDetails) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &domain.Product{ID: uuid.NewString()}
	p.Apply(d)
	f.products[p.ID] = p
	cp := *p
	return &cp, nil
}

func (f *fakeProductService) Update(_ context.Context, id string, d domain.ProductDetails) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	p.Apply(d)
	cp := *p
	return &cp, nil
}

type fakeReviewService struct {
	mu       sync.Mutex
	products *fakeProductService
	reviews  map[string]*domain.Review
}

func (f *fakeReviewService) Submit(ctx context.Context, submitterID, productID string, d domain.ProductDetails) (*domain.Review, error) {
	if _, err := f.products.Get(ctx, productID); err != nil {
		return nil, err
	}
	d.ID = productID
	f.mu.Lock()
	defer f.mu.Unlock()
	r := &domain.Review{
		ID:             uuid.NewString(),
		ProductID:      productID,
		PersonID:       submitterID,
		Status:         domain.ReviewStatusPending,
		ProductDetails: d,
	}
	f.reviews[r.ID] = r
	cp := *r
	return &cp, nil
}

func (f *fakeReviewService) Pending(context.Context) ([]*domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*domain.Review{}
	for _, r := range f.reviews {
		if r.Status == domain.ReviewStatusPending {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeReviewService) Get(_ context.Context, requester domain.Identity, id string) (*domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reviews[id]
	if !ok {
		return nil, repository.ErrReviewNotFound
	}
	if requester.Role != domain.RoleAdmin && requester.ID != r.PersonID {
		return nil, domain.ErrUnauthorized
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReviewService) Decide(_ context.Context, decider domain.Identity, id string, decision domain.Decision) (*domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reviews[id]
	if !ok {
		return nil, repository.ErrReviewNotFound
	}
	if !r.Status.CanTransition(decision) {
		return nil, repository.ErrReviewAlreadyDecided
	}
	r.Status = decision
	r.DecidedBy = &decider.ID
	cp := *r
	return &cp, nil
}

func (f *fakeReviewService) ByPerson(_ context.Context, personID string) (domain.ReviewPartition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var mine []*domain.Review
	for _, r := range f.reviews {
		if r.PersonID == personID {
			cp := *r
			mine = append(mine, &cp)
		}
	}
	return domain.PartitionReviews(mine)
}

func (f *fakeReviewService) Stats(ctx context.Context, _ domain.Identity, personID string) (domain.UserStats, error) {
	p, err := f.ByPerson(ctx, personID)
	if err != nil {
		return domain.UserStats{}, err
	}
	return p.Stats(), nil
}

type fakeImageStore struct {
	stored map[string][]byte
	err    error
}

func (f *fakeImageStore) Put(_ context.Context, r io.Reader, _ int64, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if contentType != "image/png" && contentType != "image/jpeg" {
		return "", fmt.Errorf("%w: %s", storage.ErrUnsupportedImage, contentType)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	url := "http://images.local/products/" + uuid.NewString() + ".png"
	f.stored[url] = data
	return url, nil
}

type fixture struct {
	router   chi.Router
	auth     *fakeAuthService
	products *fakeProductService
	reviews  *fakeReviewService
	images   *fakeImageStore
}

func newFixture(seed ...*domain.Product) *fixture {
	logger := zap.NewNop()
	f := &fixture{
		auth:     &fakeAuthService{users: map[string]*domain.User{}},
		products: &fakeProductService{products: map[string]*domain.Product{}},
		images:   &fakeImageStore{stored: map[string][]byte{}},
	}
	for _, p := range seed {
		f.products.products[p.ID] = p
	}
	f.reviews = &fakeReviewService{products: f.products, reviews: map[string]*domain.Review{}}

	passthrough := func(next http.Handler) http.Handler { return next }
	authMiddleware := middleware.AuthMiddleware(f.auth, logger)

	r := chi.NewRouter()
	NewAuthHandler(f.auth, logger).RegisterRoutes(r, passthrough)
	NewProductHandler(f.products, logger).RegisterRoutes(r, authMiddleware)
	NewReviewHandler(f.reviews, logger).RegisterRoutes(r, authMiddleware)
	NewUploadHandler(f.images, logger).RegisterRoutes(r, authMiddleware)
	f.router = r
	return f
}

func (f *fixture) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return v
}

func widget() *domain.Product {
	return &domain.Product{
		ID:          "44444444-4444-4444-4444-444444444444",
		ProductName: "Widget",
		Price:       9.5,
		Department:  "Tools",
	}
}
