package ingest

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/lampstand/commentary/pkg/commentary"
	"github.com/lampstand/commentary/pkg/reference"
)

// Section is one parsed source-document unit: an anchor line, a
// heading, and the body text up to the next anchor line.
type Section struct {
	Anchor  Anchor
	Heading string
	Content string

	// OrderIndex is the 1-based position within the source document.
	OrderIndex int
}

// SplitDocument splits raw source text into sections. A section starts
// at each parseable anchor line; text before the first anchor line is
// discarded.
func SplitDocument(text string) []Section {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	type rawSection struct {
		anchor Anchor
		lines  []string
	}
	var raws []rawSection
	var current *rawSection

	for _, line := range lines {
		if anchor, ok := ParseAnchorLine(line); ok {
			if current != nil {
				raws = append(raws, *current)
			}
			current = &rawSection{anchor: *anchor}
			continue
		}
		if current != nil {
			current.lines = append(current.lines, line)
		}
	}
	if current != nil {
		raws = append(raws, *current)
	}

	sections := make([]Section, 0, len(raws))
	for i, raw := range raws {
		heading, content := splitHeading(raw.lines)
		sections = append(sections, Section{
			Anchor:     raw.anchor,
			Heading:    heading,
			Content:    content,
			OrderIndex: i + 1,
		})
	}
	return sections
}

// splitHeading takes the first non-empty body line as the section
// heading and the remainder as content.
func splitHeading(lines []string) (heading, content string) {
	idx := -1
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "Notes", ""
	}
	heading = strings.TrimSpace(lines[idx])
	content = strings.TrimSpace(strings.Join(lines[idx+1:], "\n"))
	return heading, content
}

// SegmentID derives the deterministic segment identifier. Re-ingesting
// identical source text yields the identical id, which is what makes
// the import idempotent. Chapter-wide markers keep chapter-level and
// verse-level sections with the same heading distinct.
func SegmentID(sourceKey, book string, chapter int, verseStart, verseEnd *int, heading, content string) string {
	contentSum := blake3.Sum256([]byte(content))
	seed := fmt.Sprintf("%s:%s:%d:%s:%s:%s:%s",
		sourceKey, book, chapter,
		verseMark(verseStart), verseMark(verseEnd),
		heading, hex.EncodeToString(contentSum[:8]))
	sum := blake3.Sum256([]byte(seed))
	return "seg_" + hex.EncodeToString(sum[:10])
}

func verseMark(v *int) string {
	if v == nil {
		return "c"
	}
	return fmt.Sprintf("%d", *v)
}

// BuildSegments parses one source document into storable segments.
// book is the canonical slug the document belongs to; sections whose
// anchor names a different book keep the document's book (the anchor
// book is advisory in the legacy material). Sections with empty
// content are dropped.
func BuildSegments(sourceKey, book, text string) []commentary.SourceSegment {
	sections := SplitDocument(text)
	segments := make([]commentary.SourceSegment, 0, len(sections))
	for _, sec := range sections {
		if sec.Content == "" {
			continue
		}
		a := sec.Anchor
		seg := commentary.SourceSegment{
			ID:           SegmentID(sourceKey, book, a.Chapter, a.VerseStart, a.VerseEnd, sec.Heading, sec.Content),
			SourceKey:    sourceKey,
			Book:         book,
			ChapterStart: a.Chapter,
			ChapterEnd:   a.Chapter,
			VerseStart:   a.VerseStart,
			VerseEnd:     a.VerseEnd,
			Anchors:      a.Anchors,
			Heading:      sec.Heading,
			Content:      sec.Content,
			AnchorRaw:    a.Raw,
			OrderIndex:   sec.OrderIndex,
		}
		segments = append(segments, seg)
	}
	return segments
}

// Stats summarizes an ingestion run.
type Stats struct {
	Files    int
	Segments int
	Skipped  int
}

// Ingestor loads source documents into the segment store. It is an
// offline batch process: it may assume exclusive access to its source
// files, and re-running it converges on the same rows.
type Ingestor struct {
	segments  *commentary.SegmentStore
	logger    *slog.Logger
	sourceKey string
}

// NewIngestor creates an ingestor writing segments under sourceKey.
func NewIngestor(segments *commentary.SegmentStore, sourceKey string, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{segments: segments, logger: logger, sourceKey: sourceKey}
}

// IngestFile parses one document whose filename names its book
// (e.g. "1chronicles.txt") and upserts the resulting segments.
func (i *Ingestor) IngestFile(ctx context.Context, path string) (int, error) {
	book := bookFromFilename(path)
	if !reference.KnownBook(book) {
		return 0, fmt.Errorf("filename %q does not name a known book", filepath.Base(path))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read source file: %w", err)
	}

	segments := BuildSegments(i.sourceKey, book, string(raw))
	for idx := range segments {
		if err := ctx.Err(); err != nil {
			return idx, err
		}
		if err := i.segments.Upsert(&segments[idx]); err != nil {
			return idx, err
		}
	}

	i.logger.Info("ingested source document",
		"book", book,
		"segments", len(segments),
	)
	return len(segments), nil
}

// IngestDir ingests every .txt document in a directory.
func (i *Ingestor) IngestDir(ctx context.Context, dir string) (Stats, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Stats{}, fmt.Errorf("read source dir: %w", err)
	}

	var stats Stats
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".txt") {
			continue
		}
		n, err := i.IngestFile(ctx, filepath.Join(dir, e.Name()))
		if err != nil {
			i.logger.Warn("skipping source document", "file", e.Name(), "error", err)
			stats.Skipped++
			continue
		}
		stats.Files++
		stats.Segments += n
	}
	if stats.Files == 0 && stats.Skipped == 0 {
		return stats, fmt.Errorf("no .txt source documents in %s", dir)
	}
	return stats, nil
}

// bookFromFilename converts "1chronicles.txt" to its book slug.
func bookFromFilename(path string) string {
	base := filepath.Base(path)
	slug := strings.TrimSuffix(strings.ToLower(base), filepath.Ext(base))
	if canon, ok := reference.CanonicalSlug(slug); ok {
		return canon
	}
	return slug
}
