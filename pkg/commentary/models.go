// Package commentary implements the commentary core: the entry
// lifecycle state machine with role-gated transitions, and the anchor
// resolver that locates which commentary applies to a Bible reference.
package commentary

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Status is a commentary entry's moderation state.
type Status string

const (
	StatusDraft         Status = "DRAFT"
	StatusPendingReview Status = "PENDING_REVIEW"
	StatusPublished     Status = "PUBLISHED"
	StatusRejected      Status = "REJECTED"
)

// ParseStatus normalizes a raw status string. Returns false for
// unrecognized values.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusDraft, StatusPendingReview, StatusPublished, StatusRejected:
		return Status(s), true
	}
	return "", false
}

// CommentaryEntry is a contributor-authored commentary submission tied
// to exactly one chapter and optionally one verse.
type CommentaryEntry struct {
	ID      string `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	Book    string `gorm:"column:book;index:idx_entry_ref,priority:1;not null" json:"book"`
	Chapter int    `gorm:"column:chapter;index:idx_entry_ref,priority:2;not null" json:"chapter"`
	Verse   *int   `gorm:"column:verse;index:idx_entry_ref,priority:3" json:"verse,omitempty"`
	Content string `gorm:"column:content;type:text;not null" json:"content"`
	Status  Status `gorm:"column:status;index:idx_entry_status;not null;default:DRAFT" json:"status"`

	AuthorID string `gorm:"column:author_id;index;not null" json:"authorId"`

	// Review metadata. Set on admin-driven transitions into PUBLISHED or
	// REJECTED; cleared whenever the entry re-enters DRAFT.
	ReviewedByID    string     `gorm:"column:reviewed_by_id" json:"reviewedById,omitempty"`
	ReviewedAt      *time.Time `gorm:"column:reviewed_at" json:"reviewedAt,omitempty"`
	RejectionReason string     `gorm:"column:rejection_reason" json:"rejectionReason,omitempty"`

	// SubmittedAt is set on DRAFT -> PENDING_REVIEW and drives the FIFO
	// review queue ordering.
	SubmittedAt *time.Time `gorm:"column:submitted_at;index" json:"submittedAt,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName returns the GORM table name.
func (CommentaryEntry) TableName() string { return "commentary_entries" }

// ChapterWide reports whether the entry is a chapter-level note.
func (e *CommentaryEntry) ChapterWide() bool { return e.Verse == nil }

// AnchorPair is one explicit (chapter, verse) coordinate a segment is
// anchored to.
type AnchorPair struct {
	Chapter int `json:"chapter"`
	Verse   int `json:"verse"`
}

// AnchorList is a custom GORM type for []AnchorPair stored as JSON.
type AnchorList []AnchorPair

// Scan implements the sql.Scanner interface for AnchorList.
func (l *AnchorList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case string:
		bytes = []byte(v)
	case []byte:
		bytes = v
	default:
		return fmt.Errorf("unsupported type for AnchorList: %T", value)
	}
	return json.Unmarshal(bytes, l)
}

// Value implements the driver.Valuer interface for AnchorList.
func (l AnchorList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Contains reports whether the list holds the given coordinate.
func (l AnchorList) Contains(chapter, verse int) bool {
	for _, a := range l {
		if a.Chapter == chapter && a.Verse == verse {
			return true
		}
	}
	return false
}

// SourceSegment is one curated-source commentary unit (heading + body)
// tied to a chapter/verse range. Segments are written by the offline
// ingestion pipeline and read-only at request time.
type SourceSegment struct {
	// ID is deterministic, derived from a hash of the segment's
	// identifying fields so re-ingesting the same source is idempotent.
	ID string `gorm:"primaryKey;column:id;type:varchar(40)" json:"id"`

	SourceKey    string `gorm:"column:source_key;index:idx_seg_ref,priority:1;not null" json:"sourceKey"`
	Book         string `gorm:"column:book;index:idx_seg_ref,priority:2;not null" json:"book"`
	ChapterStart int    `gorm:"column:chapter_start;index:idx_seg_ref,priority:3;not null" json:"chapterStart"`
	ChapterEnd   int    `gorm:"column:chapter_end;not null" json:"chapterEnd"`

	// VerseStart/VerseEnd are nil on both for chapter-wide segments.
	VerseStart *int `gorm:"column:verse_start" json:"verseStart,omitempty"`
	VerseEnd   *int `gorm:"column:verse_end" json:"verseEnd,omitempty"`

	// Anchors lists explicit disjoint (chapter, verse) coordinates for
	// segments whose source text calls out verses like "20,22,33".
	Anchors AnchorList `gorm:"column:anchors;type:text" json:"anchors,omitempty"`

	Heading string `gorm:"column:heading" json:"heading"`
	Content string `gorm:"column:content;type:text;not null" json:"content"`

	// AnchorRaw retains the original unparsed anchor line. It is the
	// source of truth when verse fields need to be re-derived.
	AnchorRaw string `gorm:"column:anchor_raw" json:"anchorRaw"`

	// OrderIndex preserves source-document order for display.
	OrderIndex int `gorm:"column:order_index;not null" json:"orderIndex"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName returns the GORM table name.
func (SourceSegment) TableName() string { return "source_segments" }

// ChapterWide reports whether the segment applies to its whole chapter
// range rather than a verse range.
func (s *SourceSegment) ChapterWide() bool {
	return s.VerseStart == nil && s.VerseEnd == nil
}

// AuditEventRecord is an immutable audit log entry for lifecycle
// activity.
type AuditEventRecord struct {
	ID        string    `gorm:"primaryKey;column:id;type:varchar(36)"`
	EventType string    `gorm:"column:event_type;index:idx_audit_type_time,priority:1;not null"`
	Actor     string    `gorm:"column:actor;index;not null"`
	EntryID   string    `gorm:"column:entry_id;index:idx_audit_entry_time,priority:1;not null"`
	Outcome   string    `gorm:"column:outcome;not null"` // success, denied
	Reason    string    `gorm:"column:reason"`
	OldStatus Status    `gorm:"column:old_status"`
	NewStatus Status    `gorm:"column:new_status"`
	CreatedAt time.Time `gorm:"column:created_at;index:idx_audit_type_time,priority:2;index:idx_audit_entry_time,priority:2;autoCreateTime"`
}

// TableName returns the GORM table name.
func (AuditEventRecord) TableName() string { return "audit_events" }
