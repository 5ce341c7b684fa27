// Package lifecycle drives product reviews from a client's point of view:
// local drafts are validated and submitted, admins decide pending reviews,
// and approved snapshots are pushed to the product store.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"

	"listing-review/internal/authz"
	"listing-review/internal/domain"
	"listing-review/internal/session"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ProductStore is the backend's product surface
type ProductStore interface {
	ListProducts(ctx context.Context, token string) ([]*domain.Product, error)
	GetProduct(ctx context.Context, token, id string) (*domain.Product, error)
	UpdateProduct(ctx context.Context, token, id string, details domain.ProductDetails) (*domain.Product, error)
}

// ReviewQueue is the backend's review surface. It owns the state machine and
// refuses transitions out of a terminal status with domain.ErrConflict.
type ReviewQueue interface {
	SubmitReview(ctx context.Context, token, productID, personID string, details domain.ProductDetails) (*domain.Review, error)
	PendingReviews(ctx context.Context, token string) ([]*domain.Review, error)
	GetReview(ctx context.Context, token, id string) (*domain.Review, error)
	DecideReview(ctx context.Context, token, id string, decision domain.Decision) (*domain.Review, error)
	ReviewsByPerson(ctx context.Context, token, personID string) (domain.ReviewPartition, error)
	UserStats(ctx context.Context, token, personID string) (domain.UserStats, error)
}

// ImageUploader stores an image and returns its public URL
type ImageUploader interface {
	UploadImage(ctx context.Context, token, filename string, r io.Reader) (string, error)
}

// Profile is the caller's own dashboard
type Profile struct {
	Identity domain.Identity
	Stats    domain.UserStats
	History  domain.ReviewPartition
}

// Controller runs review operations for an explicit session. Every remote
// call is made at most once and is never retried.
type Controller struct {
	products ProductStore
	reviews  ReviewQueue
	images   ImageUploader
	gate     *authz.Gate
	logger   *zap.Logger
}

func NewController(products ProductStore, reviews ReviewQueue, images ImageUploader, gate *authz.Gate, logger *zap.Logger) *Controller {
	return &Controller{
		products: products,
		reviews:  reviews,
		images:   images,
		gate:     gate,
		logger:   logger,
	}
}

// settle drops a result whose caller has already gone away
func settle[T any](ctx context.Context, v T, err error) (T, error) {
	var zero T
	if ctxErr := ctx.Err(); ctxErr != nil {
		return zero, ctxErr
	}
	if err != nil {
		return zero, err
	}
	return v, nil
}

// ListProducts returns the product index
func (c *Controller) ListProducts(ctx context.Context, sess *session.Session) ([]*domain.Product, error) {
	if err := c.gate.Authorize(sess, authz.ViewProducts); err != nil {
		return nil, err
	}
	products, err := c.products.ListProducts(ctx, sess.Token())
	return settle(ctx, products, err)
}

// OpenDraft loads a product and starts a local edit buffer for it
func (c *Controller) OpenDraft(ctx context.Context, sess *session.Session, productID string) (*Draft, error) {
	if err := c.gate.Authorize(sess, authz.ViewProducts); err != nil {
		return nil, err
	}
	product, err := c.products.GetProduct(ctx, sess.Token(), productID)
	product, err = settle(ctx, product, err)
	if err != nil {
		return nil, err
	}
	return NewDraft(product), nil
}

// SubmitForReview validates draft locally and files it as a pending review.
// The live product is not touched. On success the draft is discarded.
func (c *Controller) SubmitForReview(ctx context.Context, sess *session.Session, productID string, draft *Draft) (*domain.Review, error) {
	if err := c.gate.Authorize(sess, authz.SubmitForReview); err != nil {
		return nil, err
	}
	snapshot, err := c.snapshot(productID, draft)
	if err != nil {
		return nil, err
	}

	identity := sess.Identity()
	review, err := c.reviews.SubmitReview(ctx, sess.Token(), productID, identity.ID, snapshot)
	review, err = settle(ctx, review, err)
	if err != nil {
		return nil, err
	}

	draft.Discard()
	c.logger.Info("Review submitted",
		zap.String("review_id", review.ID),
		zap.String("product_id", productID),
	)
	return review, nil
}

// ListPending returns the reviews awaiting a decision as of the call. Entries
// may already be stale when another admin decides concurrently.
func (c *Controller) ListPending(ctx context.Context, sess *session.Session) ([]*domain.Review, error) {
	if err := c.gate.Authorize(sess, authz.ViewPendingQueue); err != nil {
		return nil, err
	}
	result, err := c.reviews.PendingReviews(ctx, sess.Token())
	return settle(ctx, result, err)
}

// GetReviewDetail fetches one review; an unknown id is domain.ErrNotFound
func (c *Controller) GetReviewDetail(ctx context.Context, sess *session.Session, reviewID string) (*domain.Review, error) {
	if err := c.gate.Authorize(sess, authz.ViewOwnHistory); err != nil {
		return nil, err
	}
	if reviewID == "" {
		return nil, fmt.Errorf("%w: empty review id", domain.ErrNotFound)
	}
	result, err := c.reviews.GetReview(ctx, sess.Token(), reviewID)
	return settle(ctx, result, err)
}

// Decide approves or rejects a pending review. Terminal reviews are refused by
// the queue and reported as domain.ErrConflict.
//
// Approval then pushes the snapshot to the product store as a separate step.
// When that step fails the approved review is still returned along with the
// error; a product that no longer exists is reported as domain.ErrConflict.
func (c *Controller) Decide(ctx context.Context, sess *session.Session, reviewID string, decision domain.Decision) (*domain.Review, error) {
	if err := c.gate.Authorize(sess, authz.DecideReview); err != nil {
		return nil, err
	}
	if !domain.ReviewStatusPending.CanTransition(decision) {
		return nil, fmt.Errorf("%w: %q is not a decision", domain.ErrValidation, decision)
	}

	review, err := c.reviews.DecideReview(ctx, sess.Token(), reviewID, decision)
	review, err = settle(ctx, review, err)
	if err != nil {
		return nil, err
	}
	if review.Status != decision {
		return nil, fmt.Errorf("%w: review %s is %s", domain.ErrConflict, reviewID, review.Status)
	}

	c.logger.Info("Review decided",
		zap.String("review_id", review.ID),
		zap.String("status", string(review.Status)),
	)

	if decision != domain.ReviewStatusApproved {
		return review, nil
	}

	_, err = c.products.UpdateProduct(ctx, sess.Token(), review.ProductID, review.ProductDetails)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return review, ctxErr
	}
	switch {
	case err == nil:
		return review, nil
	case isStale(err):
		c.logger.Warn("Approved snapshot could not be applied",
			zap.String("review_id", review.ID),
			zap.String("product_id", review.ProductID),
			zap.Error(err),
		)
		return review, fmt.Errorf("%w: review %s approved but product %s was not updated: %w",
			domain.ErrConflict, review.ID, review.ProductID, err)
	default:
		return review, fmt.Errorf("review %s approved but product %s was not updated: %w",
			review.ID, review.ProductID, err)
	}
}

func isStale(err error) bool {
	return errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrValidation)
}

// ListByPerson returns personID's reviews split by status. Every review is in
// exactly one group. Non-admins may only list their own.
func (c *Controller) ListByPerson(ctx context.Context, sess *session.Session, personID string) (domain.ReviewPartition, error) {
	if err := c.gate.AuthorizeSelf(sess, authz.ViewOwnHistory, personID); err != nil {
		return domain.ReviewPartition{}, err
	}
	partition, err := c.reviews.ReviewsByPerson(ctx, sess.Token(), personID)
	partition, err = settle(ctx, partition, err)
	if err != nil {
		return domain.ReviewPartition{}, err
	}
	return repartition(partition)
}

// repartition rebuilds the groups from each review's own status so a
// misfiled entry cannot appear twice or under the wrong heading
func repartition(p domain.ReviewPartition) (domain.ReviewPartition, error) {
	all := make([]*domain.Review, 0, p.Total())
	seen := make(map[string]bool, p.Total())
	for _, group := range [][]*domain.Review{p.Pending, p.Approved, p.Rejected} {
		for _, r := range group {
			if seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			all = append(all, r)
		}
	}
	return domain.PartitionReviews(all)
}

// UserStats returns review counts for personID
func (c *Controller) UserStats(ctx context.Context, sess *session.Session, personID string) (domain.UserStats, error) {
	if err := c.gate.AuthorizeSelf(sess, authz.ViewOwnProfile, personID); err != nil {
		return domain.UserStats{}, err
	}
	result, err := c.reviews.UserStats(ctx, sess.Token(), personID)
	return settle(ctx, result, err)
}

// Profile fetches the caller's stats and review history concurrently
func (c *Controller) Profile(ctx context.Context, sess *session.Session) (Profile, error) {
	if err := c.gate.Authorize(sess, authz.ViewOwnProfile); err != nil {
		return Profile{}, err
	}
	identity := sess.Identity()

	var (
		stats   domain.UserStats
		history domain.ReviewPartition
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = c.UserStats(gctx, sess, identity.ID)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = c.ListByPerson(gctx, sess, identity.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Profile{}, ctxErr
		}
		return Profile{}, err
	}

	return Profile{Identity: identity, Stats: stats, History: history}, nil
}

// SaveProduct writes draft straight to the product store, bypassing review
func (c *Controller) SaveProduct(ctx context.Context, sess *session.Session, productID string, draft *Draft) (*domain.Product, error) {
	if err := c.gate.Authorize(sess, authz.SaveProductDirect); err != nil {
		return nil, err
	}
	snapshot, err := c.snapshot(productID, draft)
	if err != nil {
		return nil, err
	}

	product, err := c.products.UpdateProduct(ctx, sess.Token(), productID, snapshot)
	product, err = settle(ctx, product, err)
	if err != nil {
		return nil, err
	}
	draft.Discard()
	c.logger.Info("Product saved", zap.String("product_id", productID))
	return product, nil
}

// UploadImage stores an image and returns the URL to put in a draft
func (c *Controller) UploadImage(ctx context.Context, sess *session.Session, filename string, r io.Reader) (string, error) {
	if err := c.gate.Authorize(sess, authz.UploadImage); err != nil {
		return "", err
	}
	result, err := c.images.UploadImage(ctx, sess.Token(), filename, r)
	return settle(ctx, result, err)
}

// AfterSubmit is where the caller lands once a submission succeeds
func AfterSubmit(sess *session.Session) authz.View {
	if sess == nil {
		return authz.LandingLogin
	}
	return authz.Landing(sess.Identity().Role)
}

// AfterDecide is where the caller lands once a decision succeeds. The queue
// must be fetched again there.
func AfterDecide() authz.View {
	return authz.LandingPendingQueue
}

func (c *Controller) snapshot(productID string, draft *Draft) (domain.ProductDetails, error) {
	if draft == nil {
		return domain.ProductDetails{}, fmt.Errorf("%w: no draft", domain.ErrValidation)
	}
	if draft.ProductID() != productID {
		return domain.ProductDetails{}, fmt.Errorf("%w: draft edits product %s, not %s",
			domain.ErrValidation, draft.ProductID(), productID)
	}
	return draft.Snapshot()
}
