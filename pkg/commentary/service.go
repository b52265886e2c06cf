package commentary

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lampstand/commentary/pkg/identity"
	"github.com/lampstand/commentary/pkg/reference"
)

// Audit event types emitted by the lifecycle service.
const (
	EventEntryCreated     = "commentary.entry.created"
	EventEntryEdited      = "commentary.entry.edited"
	EventStatusChanged    = "commentary.status.changed"
	EventTransitionDenied = "commentary.transition.denied"
)

// LifecycleService owns entry creation, content edits, and the
// role-gated status state machine.
type LifecycleService struct {
	entries *EntryStore
	audit   *AuditStore
	machine *LifecycleMachine
}

// NewLifecycleService creates a lifecycle service over the given
// stores.
func NewLifecycleService(entries *EntryStore, audit *AuditStore) *LifecycleService {
	return &LifecycleService{
		entries: entries,
		audit:   audit,
		machine: NewLifecycleMachine(),
	}
}

// Machine exposes the transition table, primarily for listings of
// allowed next states.
func (s *LifecycleService) Machine() *LifecycleMachine { return s.machine }

// CreateDraft creates a new entry in DRAFT owned by the actor.
// Validation happens before any store write: the reference must be
// well formed and the content non-empty after trimming.
func (s *LifecycleService) CreateDraft(ctx context.Context, actor identity.Caller, book string, chapter int, verse *int, content string) (*CommentaryEntry, error) {
	if actor.Anonymous() || (actor.Role != identity.RoleContributor && actor.Role != identity.RoleAdmin) {
		return nil, errForbidden("creating commentary requires the contributor or admin role")
	}

	ref, err := buildRef(book, chapter, verse)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, errInvalidInput("content", "content must not be empty")
	}

	entry := &CommentaryEntry{
		ID:       uuid.New().String(),
		Book:     ref.Book,
		Chapter:  ref.Chapter,
		Verse:    verse,
		Content:  content,
		Status:   StatusDraft,
		AuthorID: actor.ID,
	}
	if err := s.entries.Create(entry); err != nil {
		return nil, err
	}

	_ = s.audit.Append(&AuditEventRecord{
		ID:        uuid.New().String(),
		EventType: EventEntryCreated,
		Actor:     actor.ID,
		EntryID:   entry.ID,
		Outcome:   "success",
		NewStatus: StatusDraft,
	})

	return entry, nil
}

// UpdateContent replaces an entry's content. Only the author or an
// admin may edit, and only while the entry is in DRAFT or REJECTED.
func (s *LifecycleService) UpdateContent(ctx context.Context, actor identity.Caller, entryID, content string) (*CommentaryEntry, error) {
	entry, err := s.entries.Get(entryID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, errNotFound(entryID)
	}

	if !actor.IsAdmin() {
		if actor.Anonymous() || actor.Role != identity.RoleContributor || entry.AuthorID != actor.ID {
			return nil, errForbidden("only the author or an admin may edit an entry")
		}
	}
	if entry.Status != StatusDraft && entry.Status != StatusRejected {
		return nil, &Error{
			Code:          CodeInvalidTransition,
			Message:       "content may only be edited in DRAFT or REJECTED",
			CurrentStatus: entry.Status,
		}
	}
	if strings.TrimSpace(content) == "" {
		return nil, errInvalidInput("content", "content must not be empty")
	}

	rows, err := s.entries.UpdateIfStatus(entryID, entry.Status, map[string]any{"content": content})
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, errConflict(entryID, entry.Status)
	}

	_ = s.audit.Append(&AuditEventRecord{
		ID:        uuid.New().String(),
		EventType: EventEntryEdited,
		Actor:     actor.ID,
		EntryID:   entryID,
		Outcome:   "success",
		OldStatus: entry.Status,
		NewStatus: entry.Status,
	})

	return s.entries.Get(entryID)
}

// Transition moves an entry to the target status. Permission and
// validation checks run before any write; the write itself is a
// conditional update keyed on the status read at decision time, so a
// concurrent transition surfaces as Conflict rather than a silent
// overwrite.
func (s *LifecycleService) Transition(ctx context.Context, actor identity.Caller, entryID string, target Status, reason string) (*CommentaryEntry, error) {
	entry, err := s.entries.Get(entryID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, errNotFound(entryID)
	}

	rule, err := s.machine.Rule(entry.Status, target)
	if err != nil {
		return nil, err
	}
	if err := s.machine.Authorize(rule, actor, entry); err != nil {
		_ = s.audit.Append(&AuditEventRecord{
			ID:        uuid.New().String(),
			EventType: EventTransitionDenied,
			Actor:     actor.ID,
			EntryID:   entryID,
			Outcome:   "denied",
			OldStatus: entry.Status,
			NewStatus: target,
		})
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	if rule.RequiresReason && reason == "" {
		return nil, errInvalidInput("reason", "a non-empty rejection reason is required")
	}

	now := time.Now()
	from := entry.Status
	next := *entry
	next.Status = target
	rule.Apply(&next, actor, reason, now)

	rows, err := s.entries.UpdateIfStatus(entryID, from, map[string]any{
		"status":           next.Status,
		"reviewed_by_id":   next.ReviewedByID,
		"reviewed_at":      next.ReviewedAt,
		"rejection_reason": next.RejectionReason,
		"submitted_at":     next.SubmittedAt,
		"updated_at":       now,
	})
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, errConflict(entryID, from)
	}

	_ = s.audit.Append(&AuditEventRecord{
		ID:        uuid.New().String(),
		EventType: EventStatusChanged,
		Actor:     actor.ID,
		EntryID:   entryID,
		Outcome:   "success",
		Reason:    reason,
		OldStatus: from,
		NewStatus: target,
	})

	return s.entries.Get(entryID)
}

// GetEntry fetches a single entry subject to the caller's visibility.
// Entries invisible to the caller are reported as not found rather
// than leaking their existence.
func (s *LifecycleService) GetEntry(ctx context.Context, actor identity.Caller, entryID string) (*CommentaryEntry, error) {
	entry, err := s.entries.Get(entryID)
	if err != nil {
		return nil, err
	}
	if entry == nil || !Visible(entry.Status, entry.AuthorID, actor) {
		return nil, errNotFound(entryID)
	}
	return entry, nil
}

// ListMine returns all of the actor's entries in every status.
func (s *LifecycleService) ListMine(ctx context.Context, actor identity.Caller) ([]CommentaryEntry, error) {
	if actor.Anonymous() {
		return nil, errForbidden("listing own entries requires authentication")
	}
	return s.entries.ListByAuthor(actor.ID)
}

// ListPendingReview returns the admin review queue, oldest submission
// first.
func (s *LifecycleService) ListPendingReview(ctx context.Context, actor identity.Caller) ([]CommentaryEntry, error) {
	if !actor.IsAdmin() {
		return nil, errForbidden("the review queue requires the admin role")
	}
	return s.entries.ListPendingReview()
}

// EntryHistory returns the audit trail for an entry the caller can see.
func (s *LifecycleService) EntryHistory(ctx context.Context, actor identity.Caller, entryID string, pageSize int, pageToken string) ([]AuditEventRecord, string, error) {
	if _, err := s.GetEntry(ctx, actor, entryID); err != nil {
		return nil, "", err
	}
	return s.audit.ListByEntry(entryID, pageSize, pageToken)
}

// buildRef validates raw coordinates into a canonical reference,
// mapping validation failures onto the service error taxonomy.
func buildRef(book string, chapter int, verse *int) (reference.Ref, error) {
	v := reference.WholeChapter
	if verse != nil {
		v = *verse
		if v < 1 {
			return reference.Ref{}, errInvalidReference("verse", "verse must be >= 1 when present")
		}
	}
	ref, err := reference.New(book, chapter, v)
	if err != nil {
		var re *reference.RefError
		if errors.As(err, &re) {
			return reference.Ref{}, errInvalidReference(re.Field, re.Reason)
		}
		return reference.Ref{}, errInvalidReference("reference", err.Error())
	}
	return ref, nil
}
