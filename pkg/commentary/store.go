package commentary

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/lampstand/commentary/pkg/identity"
)

// entryListLimit caps reference-scoped listings; a single verse never
// accumulates more visible commentary than this in practice.
const entryListLimit = 50

// EntryStore provides CRUD operations for commentary entries.
type EntryStore struct {
	db *gorm.DB
}

// NewEntryStore creates a new EntryStore.
func NewEntryStore(db *gorm.DB) *EntryStore {
	return &EntryStore{db: db}
}

// AutoMigrate creates or updates the commentary entry table.
func (s *EntryStore) AutoMigrate() error {
	if err := s.db.AutoMigrate(&CommentaryEntry{}); err != nil {
		return fmt.Errorf("auto-migrate commentary_entries: %w", err)
	}
	return nil
}

// Create inserts a new entry.
func (s *EntryStore) Create(entry *CommentaryEntry) error {
	if err := s.db.Create(entry).Error; err != nil {
		return fmt.Errorf("create commentary entry: %w", err)
	}
	return nil
}

// Get retrieves an entry by ID. Returns nil, nil if no entry exists.
func (s *EntryStore) Get(id string) (*CommentaryEntry, error) {
	var entry CommentaryEntry
	err := s.db.Where("id = ?", id).First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get commentary entry: %w", err)
	}
	return &entry, nil
}

// UpdateIfStatus applies updates to the entry only if its stored status
// still equals current. Returns the number of rows affected; zero means
// the entry was concurrently modified (or no longer exists) and the
// caller should surface a conflict.
func (s *EntryStore) UpdateIfStatus(id string, current Status, updates map[string]any) (int64, error) {
	if updates == nil {
		updates = map[string]any{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	result := s.db.Model(&CommentaryEntry{}).
		Where("id = ? AND status = ?", id, current).
		Updates(updates)
	if result.Error != nil {
		return 0, fmt.Errorf("conditional update commentary entry: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// ListByAuthor returns all of an author's entries in every status,
// newest-updated-first.
func (s *EntryStore) ListByAuthor(authorID string) ([]CommentaryEntry, error) {
	var entries []CommentaryEntry
	err := s.db.Where("author_id = ?", authorID).
		Order("updated_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list entries by author: %w", err)
	}
	return entries, nil
}

// ListPendingReview returns the review queue: every PENDING_REVIEW
// entry ordered oldest-submitted-first so the queue drains in
// submission order.
func (s *EntryStore) ListPendingReview() ([]CommentaryEntry, error) {
	var entries []CommentaryEntry
	err := s.db.Where("status = ?", StatusPendingReview).
		Order("submitted_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list pending review: %w", err)
	}
	return entries, nil
}

// ListVerseEntries returns entries anchored to the exact verse, subject
// to the caller's visibility, newest-updated-first.
func (s *EntryStore) ListVerseEntries(book string, chapter, verse int, caller identity.Caller) ([]CommentaryEntry, error) {
	var entries []CommentaryEntry
	err := s.db.Scopes(visibilityScope(caller)).
		Where("book = ? AND chapter = ? AND verse = ?", book, chapter, verse).
		Order("updated_at DESC").
		Limit(entryListLimit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list verse entries: %w", err)
	}
	return entries, nil
}

// ListChapterEntries returns chapter-level entries (verse IS NULL),
// subject to the caller's visibility, newest-updated-first.
func (s *EntryStore) ListChapterEntries(book string, chapter int, caller identity.Caller) ([]CommentaryEntry, error) {
	var entries []CommentaryEntry
	err := s.db.Scopes(visibilityScope(caller)).
		Where("book = ? AND chapter = ? AND verse IS NULL", book, chapter).
		Order("updated_at DESC").
		Limit(entryListLimit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list chapter entries: %w", err)
	}
	return entries, nil
}
