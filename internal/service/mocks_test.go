package service

import (
	"context"
	"sync"
	"time"

	"listing-review/internal/domain"
	"listing-review/internal/events"
	"listing-review/internal/repository"
)

type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*domain.User)}
}

func (m *mockUserRepository) Create(_ context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

type mockProductRepository struct {
	products map[string]*domain.Product
}

func newMockProductRepository(products ...*domain.Product) *mockProductRepository {
	m := &mockProductRepository{products: make(map[string]*domain.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *mockProductRepository) Create(_ context.Context, p *domain.Product) error {
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *mockProductRepository) Update(_ context.Context, p *domain.Product) error {
	if _, ok := m.products[p.ID]; !ok {
		return repository.ErrProductNotFound
	}
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *mockProductRepository) FindByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockProductRepository) List(_ context.Context) ([]*domain.Product, error) {
	out := make([]*domain.Product, 0, len(m.products))
	for _, p := range m.products {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

type mockReviewRepository struct {
	mu      sync.Mutex
	reviews map[string]*domain.Review
	order   []string
}

func newMockReviewRepository() *mockReviewRepository {
	return &mockReviewRepository{reviews: make(map[string]*domain.Review)}
}

func (m *mockReviewRepository) Create(_ context.Context, r *domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.reviews[r.ID] = &cp
	m.order = append(m.order, r.ID)
	return nil
}

func (m *mockReviewRepository) FindByID(_ context.Context, id string) (*domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok {
		return nil, repository.ErrReviewNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *mockReviewRepository) filter(keep func(*domain.Review) bool) []*domain.Review {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Review{}
	for _, id := range m.order {
		if r := m.reviews[id]; keep(r) {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out
}

func (m *mockReviewRepository) ListByStatus(_ context.Context, status domain.ReviewStatus) ([]*domain.Review, error) {
	return m.filter(func(r *domain.Review) bool { return r.Status == status }), nil
}

func (m *mockReviewRepository) ListByPerson(_ context.Context, personID string) ([]*domain.Review, error) {
	return m.filter(func(r *domain.Review) bool { return r.PersonID == personID }), nil
}

func (m *mockReviewRepository) Decide(_ context.Context, id string, decision domain.Decision, deciderID string, at time.Time) (*domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[id]
	if !ok {
		return nil, repository.ErrReviewNotFound
	}
	if !r.Status.CanTransition(decision) {
		return nil, repository.ErrReviewAlreadyDecided
	}
	r.Status = decision
	r.DecidedBy = &deciderID
	r.DecidedAt = &at
	r.UpdatedAt = at
	cp := *r
	return &cp, nil
}

func (m *mockReviewRepository) Stats(_ context.Context, personID *string) (domain.UserStats, error) {
	all := m.filter(func(r *domain.Review) bool { return personID == nil || r.PersonID == *personID })
	p, err := domain.PartitionReviews(all)
	if err != nil {
		return domain.UserStats{}, err
	}
	return p.Stats(), nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.ReviewEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e events.ReviewEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }
