package commentary

import (
	"fmt"
	"time"

	"github.com/lampstand/commentary/pkg/identity"
)

// actorRule says who may perform a transition.
type actorRule int

const (
	// actorAuthorOrAdmin: the entry's author (contributor) or any admin.
	actorAuthorOrAdmin actorRule = iota

	// actorAdminOnly: admins only, on any entry regardless of author.
	actorAdminOnly
)

// TransitionRule defines one allowed lifecycle transition and its side
// effects.
type TransitionRule struct {
	From  Status
	To    Status
	Actor actorRule

	// RequiresReason marks transitions that must carry a non-empty
	// reason (rejections).
	RequiresReason bool

	// Apply mutates the entry with the transition's side effects.
	Apply func(e *CommentaryEntry, actor identity.Caller, reason string, now time.Time)
}

// DefaultTransitions is the lifecycle transition table. Adding a state
// or role is a data change here, not a control-flow rewrite.
var DefaultTransitions = []TransitionRule{
	// Content edit while drafting; a no-op transition that refreshes
	// updatedAt.
	{From: StatusDraft, To: StatusDraft, Actor: actorAuthorOrAdmin, Apply: applyTouch},

	{From: StatusDraft, To: StatusPendingReview, Actor: actorAuthorOrAdmin, Apply: applySubmit},
	{From: StatusDraft, To: StatusPublished, Actor: actorAdminOnly, Apply: applyPublish},

	{From: StatusPendingReview, To: StatusPublished, Actor: actorAdminOnly, Apply: applyPublish},
	{From: StatusPendingReview, To: StatusRejected, Actor: actorAdminOnly, RequiresReason: true, Apply: applyReject},
	// Withdraw.
	{From: StatusPendingReview, To: StatusDraft, Actor: actorAuthorOrAdmin, Apply: applyReopen},

	// Re-open for editing; removes the entry from public visibility.
	{From: StatusPublished, To: StatusDraft, Actor: actorAdminOnly, Apply: applyReopen},

	// Resume editing after rejection.
	{From: StatusRejected, To: StatusDraft, Actor: actorAuthorOrAdmin, Apply: applyReopen},
}

func applyTouch(e *CommentaryEntry, actor identity.Caller, reason string, now time.Time) {
	e.UpdatedAt = now
}

func applySubmit(e *CommentaryEntry, actor identity.Caller, reason string, now time.Time) {
	e.SubmittedAt = &now
	e.ReviewedByID = ""
	e.ReviewedAt = nil
	e.RejectionReason = ""
}

func applyPublish(e *CommentaryEntry, actor identity.Caller, reason string, now time.Time) {
	e.ReviewedByID = actor.ID
	e.ReviewedAt = &now
	e.RejectionReason = ""
}

func applyReject(e *CommentaryEntry, actor identity.Caller, reason string, now time.Time) {
	e.ReviewedByID = actor.ID
	e.ReviewedAt = &now
	e.RejectionReason = reason
}

func applyReopen(e *CommentaryEntry, actor identity.Caller, reason string, now time.Time) {
	e.ReviewedByID = ""
	e.ReviewedAt = nil
	e.RejectionReason = ""
	e.SubmittedAt = nil
}

// LifecycleMachine validates lifecycle transitions against the table.
type LifecycleMachine struct {
	rules []TransitionRule
}

// NewLifecycleMachine creates a machine with the default rules.
func NewLifecycleMachine() *LifecycleMachine {
	return &LifecycleMachine{rules: DefaultTransitions}
}

// Rules returns the transition table.
func (m *LifecycleMachine) Rules() []TransitionRule {
	return m.rules
}

// Rule looks up the transition rule for from -> to. Returns an
// InvalidTransition error when the state pair is not in the table.
func (m *LifecycleMachine) Rule(from, to Status) (*TransitionRule, error) {
	for i := range m.rules {
		if m.rules[i].From == from && m.rules[i].To == to {
			return &m.rules[i], nil
		}
	}
	return nil, errInvalidTransition(from, to)
}

// Authorize checks whether the actor may apply the rule to the entry.
// Admins are always permitted; contributors only on their own entries;
// plain users and anonymous callers never.
func (m *LifecycleMachine) Authorize(rule *TransitionRule, actor identity.Caller, entry *CommentaryEntry) error {
	if actor.IsAdmin() {
		return nil
	}
	switch rule.Actor {
	case actorAdminOnly:
		return errForbidden(fmt.Sprintf("transition %s -> %s requires the admin role", rule.From, rule.To))
	case actorAuthorOrAdmin:
		if actor.Role != identity.RoleContributor {
			return errForbidden("role has no transition permissions")
		}
		if entry.AuthorID != actor.ID {
			return errForbidden("contributors may only act on their own entries")
		}
		return nil
	default:
		return errForbidden("unrecognized actor rule")
	}
}

// AllowedTransitions returns the target statuses the actor may reach
// from the entry's current status.
func (m *LifecycleMachine) AllowedTransitions(entry *CommentaryEntry, actor identity.Caller) []Status {
	var out []Status
	for i := range m.rules {
		rule := &m.rules[i]
		if rule.From != entry.Status || rule.To == rule.From {
			continue
		}
		if m.Authorize(rule, actor, entry) == nil {
			out = append(out, rule.To)
		}
	}
	return out
}
