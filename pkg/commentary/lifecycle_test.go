package commentary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lampstand/commentary/pkg/identity"
)

var allStatuses = []Status{StatusDraft, StatusPendingReview, StatusPublished, StatusRejected}

func TestLifecycleMachine_FullTable(t *testing.T) {
	m := NewLifecycleMachine()

	// Every (from, to) pair with to != from must be either in the table
	// or rejected with InvalidTransition carrying the current status.
	defined := map[[2]Status]bool{}
	for _, r := range m.Rules() {
		defined[[2]Status{r.From, r.To}] = true
	}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			rule, err := m.Rule(from, to)
			if defined[[2]Status{from, to}] {
				require.NoError(t, err, "%s -> %s", from, to)
				assert.Equal(t, from, rule.From)
				assert.Equal(t, to, rule.To)
				continue
			}
			require.Error(t, err, "%s -> %s should be undefined", from, to)
			e, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, CodeInvalidTransition, e.Code)
			assert.Equal(t, from, e.CurrentStatus)
		}
	}
}

func TestLifecycleMachine_UndefinedTransitions(t *testing.T) {
	m := NewLifecycleMachine()

	// The moderation flow has no shortcuts: these specific pairs must
	// never appear in the table.
	undefined := [][2]Status{
		{StatusDraft, StatusRejected},
		{StatusPublished, StatusPendingReview},
		{StatusPublished, StatusRejected},
		{StatusRejected, StatusPendingReview},
		{StatusRejected, StatusPublished},
	}
	for _, pair := range undefined {
		_, err := m.Rule(pair[0], pair[1])
		assert.Error(t, err, "%s -> %s", pair[0], pair[1])
	}
}

func TestLifecycleMachine_Authorize(t *testing.T) {
	m := NewLifecycleMachine()
	entry := &CommentaryEntry{ID: "e1", AuthorID: "alice", Status: StatusDraft}

	author := identity.Caller{ID: "alice", Role: identity.RoleContributor}
	other := identity.Caller{ID: "bob", Role: identity.RoleContributor}
	admin := identity.Caller{ID: "root", Role: identity.RoleAdmin}
	user := identity.Caller{ID: "carol", Role: identity.RoleUser}
	anon := identity.Caller{}

	submit, err := m.Rule(StatusDraft, StatusPendingReview)
	require.NoError(t, err)
	assert.NoError(t, m.Authorize(submit, author, entry))
	assert.NoError(t, m.Authorize(submit, admin, entry))
	assert.Error(t, m.Authorize(submit, other, entry))
	assert.Error(t, m.Authorize(submit, user, entry))
	assert.Error(t, m.Authorize(submit, anon, entry))

	entry.Status = StatusPendingReview
	publish, err := m.Rule(StatusPendingReview, StatusPublished)
	require.NoError(t, err)
	assert.NoError(t, m.Authorize(publish, admin, entry))
	// Authors cannot approve their own work.
	assert.Error(t, m.Authorize(publish, author, entry))

	withdraw, err := m.Rule(StatusPendingReview, StatusDraft)
	require.NoError(t, err)
	assert.NoError(t, m.Authorize(withdraw, author, entry))
	assert.Error(t, m.Authorize(withdraw, other, entry))

	entry.Status = StatusPublished
	unpublish, err := m.Rule(StatusPublished, StatusDraft)
	require.NoError(t, err)
	assert.Error(t, m.Authorize(unpublish, author, entry))
	assert.NoError(t, m.Authorize(unpublish, admin, entry))
}

func TestLifecycleMachine_RejectRequiresReason(t *testing.T) {
	m := NewLifecycleMachine()
	reject, err := m.Rule(StatusPendingReview, StatusRejected)
	require.NoError(t, err)
	assert.True(t, reject.RequiresReason)

	// No other transition demands a reason.
	for _, r := range m.Rules() {
		if r.From == StatusPendingReview && r.To == StatusRejected {
			continue
		}
		assert.False(t, r.RequiresReason, "%s -> %s", r.From, r.To)
	}
}

func TestTransitionSideEffects(t *testing.T) {
	m := NewLifecycleMachine()
	admin := identity.Caller{ID: "root", Role: identity.RoleAdmin}
	now := time.Now()

	entry := CommentaryEntry{ID: "e1", AuthorID: "alice", Status: StatusDraft}

	submit, _ := m.Rule(StatusDraft, StatusPendingReview)
	next := entry
	next.Status = StatusPendingReview
	submit.Apply(&next, admin, "", now)
	require.NotNil(t, next.SubmittedAt)
	assert.Equal(t, now, *next.SubmittedAt)
	assert.Empty(t, next.ReviewedByID)

	reject, _ := m.Rule(StatusPendingReview, StatusRejected)
	rejected := next
	rejected.Status = StatusRejected
	reject.Apply(&rejected, admin, "needs sources", now)
	assert.Equal(t, "root", rejected.ReviewedByID)
	assert.Equal(t, "needs sources", rejected.RejectionReason)
	require.NotNil(t, rejected.ReviewedAt)

	// Reopening clears every piece of review state, including the
	// rejection reason: rejectionReason is non-empty only in REJECTED.
	reopen, _ := m.Rule(StatusRejected, StatusDraft)
	reopened := rejected
	reopened.Status = StatusDraft
	reopen.Apply(&reopened, admin, "", now)
	assert.Empty(t, reopened.RejectionReason)
	assert.Empty(t, reopened.ReviewedByID)
	assert.Nil(t, reopened.ReviewedAt)
	assert.Nil(t, reopened.SubmittedAt)

	publish, _ := m.Rule(StatusPendingReview, StatusPublished)
	published := next
	published.Status = StatusPublished
	publish.Apply(&published, admin, "", now)
	assert.Equal(t, "root", published.ReviewedByID)
	assert.Empty(t, published.RejectionReason)
}

func TestAllowedTransitions(t *testing.T) {
	m := NewLifecycleMachine()
	entry := &CommentaryEntry{ID: "e1", AuthorID: "alice", Status: StatusDraft}

	author := identity.Caller{ID: "alice", Role: identity.RoleContributor}
	admin := identity.Caller{ID: "root", Role: identity.RoleAdmin}
	anon := identity.Caller{}

	assert.Equal(t, []Status{StatusPendingReview}, m.AllowedTransitions(entry, author))
	assert.ElementsMatch(t, []Status{StatusPendingReview, StatusPublished}, m.AllowedTransitions(entry, admin))
	assert.Empty(t, m.AllowedTransitions(entry, anon))

	entry.Status = StatusPendingReview
	assert.Equal(t, []Status{StatusDraft}, m.AllowedTransitions(entry, author))
	assert.ElementsMatch(t, []Status{StatusPublished, StatusRejected, StatusDraft}, m.AllowedTransitions(entry, admin))
}
