package domain

import (
	"fmt"
	"time"
)

// ReviewStatus is the lifecycle state of a review
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

// ParseReviewStatus converts a wire value into a ReviewStatus
func ParseReviewStatus(s string) (ReviewStatus, error) {
	switch ReviewStatus(s) {
	case ReviewStatusPending, ReviewStatusApproved, ReviewStatusRejected:
		return ReviewStatus(s), nil
	}
	return "", fmt.Errorf("%w: unknown review status %q", ErrValidation, s)
}

// Terminal reports whether no further transition is permitted
func (s ReviewStatus) Terminal() bool {
	return s == ReviewStatusApproved || s == ReviewStatusRejected
}

// CanTransition reports whether a review in status s may move to next.
// Only pending -> approved and pending -> rejected are legal.
func (s ReviewStatus) CanTransition(next ReviewStatus) bool {
	return s == ReviewStatusPending && next.Terminal()
}

// Decision is an admin verdict on a pending review
type Decision = ReviewStatus

// ParseDecision accepts only terminal statuses
func ParseDecision(s string) (Decision, error) {
	status, err := ParseReviewStatus(s)
	if err != nil {
		return "", err
	}
	if !status.Terminal() {
		return "", fmt.Errorf("%w: decision must be approved or rejected, got %q", ErrValidation, s)
	}
	return status, nil
}

// Review is a proposed change to a product awaiting an admin decision.
// ProductDetails is frozen at submission time.
type Review struct {
	ID             string         `json:"id"`
	ProductID      string         `json:"productId"`
	PersonID       string         `json:"personId"`
	Status         ReviewStatus   `json:"status"`
	ProductDetails ProductDetails `json:"productDetails"`
	DecidedBy      *string        `json:"decidedBy,omitempty"`
	DecidedAt      *time.Time     `json:"decidedAt,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// ReviewPartition groups one submitter's reviews by status
type ReviewPartition struct {
	Pending  []*Review `json:"pending"`
	Approved []*Review `json:"approved"`
	Rejected []*Review `json:"rejected"`
}

// PartitionReviews splits reviews by status. Every review lands in exactly
// one bucket; reviews with an unknown status are reported as an error.
func PartitionReviews(reviews []*Review) (ReviewPartition, error) {
	p := ReviewPartition{
		Pending:  []*Review{},
		Approved: []*Review{},
		Rejected: []*Review{},
	}
	for _, r := range reviews {
		switch r.Status {
		case ReviewStatusPending:
			p.Pending = append(p.Pending, r)
		case ReviewStatusApproved:
			p.Approved = append(p.Approved, r)
		case ReviewStatusRejected:
			p.Rejected = append(p.Rejected, r)
		default:
			return ReviewPartition{}, fmt.Errorf("review %s has unknown status %q", r.ID, r.Status)
		}
	}
	return p, nil
}

// Total returns the number of reviews across all partitions
func (p ReviewPartition) Total() int {
	return len(p.Pending) + len(p.Approved) + len(p.Rejected)
}

// Stats returns the aggregate counts of the partition
func (p ReviewPartition) Stats() UserStats {
	return UserStats{
		Total:    p.Total(),
		Approved: len(p.Approved),
		Rejected: len(p.Rejected),
		Pending:  len(p.Pending),
	}
}

// UserStats holds aggregate review counts
type UserStats struct {
	Total    int `json:"total"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Pending  int `json:"pending"`
}
