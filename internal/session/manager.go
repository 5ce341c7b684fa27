package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"listing-review/internal/domain"

	"go.uber.org/zap"
)

// Authenticator obtains bearer tokens from the backend
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, email, password string, role domain.Role) (string, error)
}

// Manager owns the session lifecycle: created on login or register, read
// back on resume, destroyed on logout.
type Manager struct {
	auth   Authenticator
	store  TokenStore
	logger *zap.Logger
	now    func() time.Time
}

func NewManager(auth Authenticator, store TokenStore, logger *zap.Logger) *Manager {
	return &Manager{auth: auth, store: store, logger: logger, now: time.Now}
}

// Login authenticates and persists the token
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	token, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return m.establish(token)
}

// Register creates an account and logs straight in with the returned token
func (m *Manager) Register(ctx context.Context, email, password string, role domain.Role) (*Session, error) {
	token, err := m.auth.Register(ctx, email, password, role)
	if err != nil {
		return nil, err
	}
	return m.establish(token)
}

func (m *Manager) establish(token string) (*Session, error) {
	sess, err := New(token, m.now())
	if err != nil {
		return nil, err
	}
	if err := m.store.Save(token); err != nil {
		return nil, err
	}
	m.logger.Debug("Session established",
		zap.String("user_id", sess.Identity().ID),
		zap.Stringer("role", sess.Identity().Role),
	)
	return sess, nil
}

// Resume rebuilds the session from the stored token. A missing, undecodable
// or expired token is cleared and reported as ErrUnauthenticated.
func (m *Manager) Resume() (*Session, error) {
	token, err := m.store.Load()
	if errors.Is(err, ErrNoToken) {
		return nil, fmt.Errorf("%w: not logged in", domain.ErrUnauthenticated)
	}
	if err != nil {
		return nil, err
	}

	sess, err := New(token, m.now())
	if err != nil {
		if clearErr := m.store.Clear(); clearErr != nil {
			m.logger.Warn("Failed to clear stale token", zap.Error(clearErr))
		}
		return nil, err
	}
	return sess, nil
}

// Logout destroys the stored session
func (m *Manager) Logout() error {
	return m.store.Clear()
}
