// Package authz holds the role-based capability policy.
//
// On the client the Gate is advisory: it shapes navigation and stops requests
// that are certain to fail, but it is never a security boundary. The backend
// middleware consults the same policy table and is the authoritative check.
package authz

import (
	"fmt"
	"time"

	"listing-review/internal/domain"
	"listing-review/internal/session"
)

// Capability is an action guarded by role
type Capability int

const (
	ViewProducts Capability = iota + 1
	ViewPendingQueue
	DecideReview
	SaveProductDirect
	SubmitForReview
	ViewOwnProfile
	ViewOwnHistory
	UploadImage
)

func (c Capability) String() string {
	switch c {
	case ViewProducts:
		return "view-products"
	case ViewPendingQueue:
		return "view-pending-queue"
	case DecideReview:
		return "decide-review"
	case SaveProductDirect:
		return "save-product-direct"
	case SubmitForReview:
		return "submit-for-review"
	case ViewOwnProfile:
		return "view-own-profile"
	case ViewOwnHistory:
		return "view-own-history"
	case UploadImage:
		return "upload-image"
	}
	return fmt.Sprintf("Capability(%d)", int(c))
}

// Allows reports whether role holds capability
func Allows(role domain.Role, c Capability) bool {
	switch role {
	case domain.RoleAdmin:
		switch c {
		case ViewProducts, ViewPendingQueue, DecideReview, SaveProductDirect,
			ViewOwnProfile, ViewOwnHistory, UploadImage:
			return true
		case SubmitForReview:
			// admins save directly
			return false
		}
	case domain.RoleTeamMember:
		switch c {
		case ViewProducts, SubmitForReview, ViewOwnProfile, ViewOwnHistory, UploadImage:
			return true
		case ViewPendingQueue, DecideReview, SaveProductDirect:
			return false
		}
	}
	return false
}

// ActsFor reports whether identity may read records owned by personID
func ActsFor(identity domain.Identity, personID string) bool {
	return identity.Role == domain.RoleAdmin || identity.ID == personID
}

// View names a landing destination in the client
type View string

const (
	LandingLogin        View = "login"
	LandingDashboard    View = "dashboard"
	LandingPendingQueue View = "pending-request"
)

// Landing returns where an identity lands after login or after submitting
func Landing(role domain.Role) View {
	switch role {
	case domain.RoleAdmin, domain.RoleTeamMember:
		return LandingDashboard
	}
	return LandingLogin
}

// Gate checks capabilities against an explicit session
type Gate struct {
	now func() time.Time
}

// NewGate returns a gate using the wall clock
func NewGate() *Gate {
	return &Gate{now: time.Now}
}

// Authorize fails with ErrUnauthenticated when there is no valid session and
// ErrUnauthorized when the session's role lacks c.
func (g *Gate) Authorize(sess *session.Session, c Capability) error {
	if sess == nil || !sess.Valid(g.now()) {
		return fmt.Errorf("%w: %s requires a valid session", domain.ErrUnauthenticated, c)
	}
	role := sess.Identity().Role
	if !Allows(role, c) {
		return fmt.Errorf("%w: role %s may not %s", domain.ErrUnauthorized, role, c)
	}
	return nil
}

// AuthorizeSelf is Authorize plus the rule that non-admins may only act on
// their own person id.
func (g *Gate) AuthorizeSelf(sess *session.Session, c Capability, personID string) error {
	if err := g.Authorize(sess, c); err != nil {
		return err
	}
	if !ActsFor(sess.Identity(), personID) {
		return fmt.Errorf("%w: %s only for own account", domain.ErrUnauthorized, c)
	}
	return nil
}
