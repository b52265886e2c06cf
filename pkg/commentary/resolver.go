package commentary

import (
	"context"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/lampstand/commentary/pkg/identity"
	"github.com/lampstand/commentary/pkg/reference"
)

// EntryMatchMode selects which contributor entries a resolution
// includes for a verse-specific request.
type EntryMatchMode string

const (
	// MatchVerseOnly returns entries anchored to the exact verse.
	MatchVerseOnly EntryMatchMode = "verse"

	// MatchChapterOnly returns chapter-level entries only.
	MatchChapterOnly EntryMatchMode = "chapter"

	// MatchUnion returns both, de-duplicated by entry ID.
	MatchUnion EntryMatchMode = "union"
)

// Resolution is the commentary applicable to one reference.
type Resolution struct {
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
	Verse   *int   `json:"verse,omitempty"`

	SourceSegments     []SourceSegment   `json:"sourceSegments"`
	ContributorEntries []CommentaryEntry `json:"contributorEntries"`
}

// Resolver locates the commentary segments and entries that apply to a
// (book, chapter, verse) reference. All of its queries are read-only;
// concurrent resolutions need no coordination.
type Resolver struct {
	entries  *EntryStore
	segments *SegmentStore
}

// NewResolver creates a resolver over the given stores.
func NewResolver(entries *EntryStore, segments *SegmentStore) *Resolver {
	return &Resolver{entries: entries, segments: segments}
}

// Resolve returns the ordered commentary for a reference. verse nil
// means a chapter-wide request. An empty result is a valid outcome,
// not an error.
func (r *Resolver) Resolve(ctx context.Context, book string, chapter int, verse *int, mode EntryMatchMode, caller identity.Caller) (*Resolution, error) {
	ref, err := buildRef(book, chapter, verse)
	if err != nil {
		return nil, err
	}
	if mode == "" {
		mode = MatchUnion
	}

	segments, err := r.resolveSegments(ref)
	if err != nil {
		return nil, err
	}

	entries, err := r.resolveEntries(ref, mode, caller)
	if err != nil {
		return nil, err
	}

	return &Resolution{
		Book:               ref.Book,
		Chapter:            ref.Chapter,
		Verse:              verse,
		SourceSegments:     segments,
		ContributorEntries: entries,
	}, nil
}

// resolveSegments applies the curated-source matching rules. The store
// narrows candidates to the chapter range; the verse rules run here on
// the structured fields the ingestion pass produced, so no text parsing
// happens at request time.
func (r *Resolver) resolveSegments(ref reference.Ref) ([]SourceSegment, error) {
	candidates, err := r.segments.ListForChapter(ref.Book, ref.Chapter)
	if err != nil {
		return nil, err
	}

	matched := make([]SourceSegment, 0, len(candidates))
	for _, seg := range candidates {
		if segmentMatches(&seg, ref) {
			matched = append(matched, seg)
		}
	}
	// ListForChapter already orders by order_index; keep the authorial
	// sequence stable after filtering.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].OrderIndex < matched[j].OrderIndex
	})
	return matched, nil
}

// segmentMatches reproduces the anchor notations of the source
// material (single verse, range, open-ended range, comma list, and
// chapter-wide headings) as integer comparisons.
func segmentMatches(seg *SourceSegment, ref reference.Ref) bool {
	if ref.IsChapterWide() {
		// Chapter-wide requests keep pure chapter-wide segments only.
		return seg.ChapterWide()
	}

	v := ref.Verse
	switch {
	case seg.VerseStart != nil && seg.VerseEnd != nil:
		return v >= *seg.VerseStart && v <= *seg.VerseEnd
	case seg.VerseStart == nil && seg.VerseEnd != nil:
		// Legacy open-ended "up to verse N" form.
		return v <= *seg.VerseEnd
	case seg.ChapterWide():
		// A chapter-wide heading whose body explicitly calls out
		// specific verses.
		return seg.Anchors.Contains(ref.Chapter, v)
	default:
		// Half-null (start without end) rows are a known-broken import
		// shape; the repair pass fixes them from anchorRaw. Never match.
		return false
	}
}

// resolveEntries gathers contributor entries for the reference. When
// two sub-queries are unioned the result is de-duplicated by entry ID.
func (r *Resolver) resolveEntries(ref reference.Ref, mode EntryMatchMode, caller identity.Caller) ([]CommentaryEntry, error) {
	if ref.IsChapterWide() {
		// Verse-specific matching is not applicable without a verse;
		// every mode collapses to chapter-level entries.
		return r.entries.ListChapterEntries(ref.Book, ref.Chapter, caller)
	}

	switch mode {
	case MatchVerseOnly:
		return r.entries.ListVerseEntries(ref.Book, ref.Chapter, ref.Verse, caller)
	case MatchChapterOnly:
		return r.entries.ListChapterEntries(ref.Book, ref.Chapter, caller)
	case MatchUnion:
		verseEntries, err := r.entries.ListVerseEntries(ref.Book, ref.Chapter, ref.Verse, caller)
		if err != nil {
			return nil, err
		}
		chapterEntries, err := r.entries.ListChapterEntries(ref.Book, ref.Chapter, caller)
		if err != nil {
			return nil, err
		}
		return mergeEntries(verseEntries, chapterEntries), nil
	default:
		return nil, errInvalidInput("mode", "unknown entry match mode")
	}
}

// mergeEntries unions independently queried entry lists, keeping each
// entry once and ordering the result newest-updated-first.
func mergeEntries(lists ...[]CommentaryEntry) []CommentaryEntry {
	seen := mapset.NewThreadUnsafeSet[string]()
	var merged []CommentaryEntry
	for _, list := range lists {
		for _, e := range list {
			if seen.Add(e.ID) {
				merged = append(merged, e)
			}
		}
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].UpdatedAt.After(merged[j].UpdatedAt)
	})
	return merged
}
