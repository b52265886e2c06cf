package commentary

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SegmentStore provides read access and ingestion-time writes for
// curated source segments.
type SegmentStore struct {
	db *gorm.DB
}

// NewSegmentStore creates a new SegmentStore.
func NewSegmentStore(db *gorm.DB) *SegmentStore {
	return &SegmentStore{db: db}
}

// AutoMigrate creates or updates the source segment table.
func (s *SegmentStore) AutoMigrate() error {
	if err := s.db.AutoMigrate(&SourceSegment{}); err != nil {
		return fmt.Errorf("auto-migrate source_segments: %w", err)
	}
	return nil
}

// Upsert writes a segment, updating the mutable fields in place when a
// segment with the same deterministic ID already exists. Re-running an
// ingest therefore converges instead of duplicating.
func (s *SegmentStore) Upsert(segment *SourceSegment) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"heading", "content", "anchors", "anchor_raw", "order_index", "updated_at",
		}),
	}).Create(segment).Error
	if err != nil {
		return fmt.Errorf("upsert source segment: %w", err)
	}
	return nil
}

// ListForChapter returns every segment of a book whose chapter range
// contains the requested chapter, in source-document order. Verse-level
// filtering happens in the resolver.
func (s *SegmentStore) ListForChapter(book string, chapter int) ([]SourceSegment, error) {
	var segments []SourceSegment
	err := s.db.Where("book = ? AND chapter_start <= ? AND chapter_end >= ?", book, chapter, chapter).
		Order("order_index ASC").
		Find(&segments).Error
	if err != nil {
		return nil, fmt.Errorf("list segments for chapter: %w", err)
	}
	return segments, nil
}

// ListRepairCandidates returns segments of a source whose verse fields
// are half-null (one of verse_start/verse_end set without the other),
// the shape a known-buggy import pass left behind, and whose anchorRaw
// is still present for re-parsing.
func (s *SegmentStore) ListRepairCandidates(sourceKey string) ([]SourceSegment, error) {
	var segments []SourceSegment
	err := s.db.Where("source_key = ? AND anchor_raw <> ''", sourceKey).
		Where("(verse_start IS NULL AND verse_end IS NOT NULL) OR (verse_start IS NOT NULL AND verse_end IS NULL)").
		Find(&segments).Error
	if err != nil {
		return nil, fmt.Errorf("list repair candidates: %w", err)
	}
	return segments, nil
}

// UpdateVerseFields overwrites a segment's parsed verse fields, used by
// the repair pass after re-deriving them from anchorRaw.
func (s *SegmentStore) UpdateVerseFields(id string, verseStart, verseEnd *int, anchors AnchorList) error {
	updates := map[string]any{
		"verse_start": verseStart,
		"verse_end":   verseEnd,
		"anchors":     anchors,
	}
	result := s.db.Model(&SourceSegment{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("update segment verse fields: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("segment %s not found", id)
	}
	return nil
}

// CountBySource returns the number of stored segments for a source.
func (s *SegmentStore) CountBySource(sourceKey string) (int64, error) {
	var n int64
	if err := s.db.Model(&SourceSegment{}).Where("source_key = ?", sourceKey).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count segments: %w", err)
	}
	return n, nil
}
