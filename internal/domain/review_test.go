package domain

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStatuses = []ReviewStatus{ReviewStatusPending, ReviewStatusApproved, ReviewStatusRejected}

func TestCanTransition(t *testing.T) {
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := from == ReviewStatusPending && to != ReviewStatusPending
			assert.Equal(t, want, from.CanTransition(to), "%s -> %s", from, to)
		}
	}
}

func TestParseDecision(t *testing.T) {
	d, err := ParseDecision("approved")
	require.NoError(t, err)
	assert.Equal(t, ReviewStatusApproved, d)

	_, err = ParseDecision("pending")
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = ParseDecision("maybe")
	assert.True(t, errors.Is(err, ErrValidation))
}

// Feature: listing-review, Property: person partitions are exhaustive and disjoint
func TestProperty_PartitionIsExhaustiveAndDisjoint(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every review lands in exactly one partition", prop.ForAll(
		func(statuses []string) bool {
			reviews := make([]*Review, len(statuses))
			for i, s := range statuses {
				reviews[i] = &Review{ID: string(rune('a' + i%26)), Status: ReviewStatus(s)}
			}

			p, err := PartitionReviews(reviews)
			if err != nil {
				return false
			}
			if p.Total() != len(reviews) {
				return false
			}

			seen := map[*Review]int{}
			for _, bucket := range [][]*Review{p.Pending, p.Approved, p.Rejected} {
				for _, r := range bucket {
					seen[r]++
				}
			}
			for _, r := range reviews {
				if seen[r] != 1 {
					return false
				}
			}

			stats := p.Stats()
			return stats.Total == stats.Pending+stats.Approved+stats.Rejected
		},
		gen.SliceOf(gen.OneConstOf("pending", "approved", "rejected")),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestPartitionReviews_UnknownStatus(t *testing.T) {
	_, err := PartitionReviews([]*Review{{ID: "r1", Status: "archived"}})
	assert.Error(t, err)
}

func TestParseRole(t *testing.T) {
	for in, want := range map[string]Role{
		"admin":       RoleAdmin,
		"team-member": RoleTeamMember,
		"team member": RoleTeamMember,
	} {
		got, err := ParseRole(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseRole("Admin")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestRoleText(t *testing.T) {
	b, err := RoleTeamMember.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "team-member", string(b))

	var r Role
	require.NoError(t, r.UnmarshalText([]byte("admin")))
	assert.Equal(t, RoleAdmin, r)

	_, err = Role(0).MarshalText()
	assert.Error(t, err)
}

func TestValidationErrorsMatchSentinel(t *testing.T) {
	err := ValidationErrors{{Field: "price", Message: "must be a number"}}
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "price: must be a number")
}
