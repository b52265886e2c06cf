package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lampstand/commentary/pkg/commentary"
)

func intPtr(v int) *int { return &v }

func TestRepair_HalfNullSegments(t *testing.T) {
	store := newTestSegmentStore(t)

	// A half-null row: verse_start set, verse_end missing, the shape the
	// buggy import left behind. Its raw anchor line is intact.
	broken := &commentary.SourceSegment{
		ID: "broken", SourceKey: "src", Book: "john",
		ChapterStart: 1, ChapterEnd: 1,
		VerseStart: intPtr(26), VerseEnd: nil,
		AnchorRaw: "John 1:26-27",
		Heading:   "H", Content: "body", OrderIndex: 1,
	}
	require.NoError(t, store.Upsert(broken))

	// A healthy row must be left untouched.
	healthy := &commentary.SourceSegment{
		ID: "healthy", SourceKey: "src", Book: "john",
		ChapterStart: 1, ChapterEnd: 1,
		VerseStart: intPtr(29), VerseEnd: intPtr(29),
		AnchorRaw: "John 1:29",
		Heading:   "H", Content: "body", OrderIndex: 2,
	}
	require.NoError(t, store.Upsert(healthy))

	stats, err := NewRepairer(store, nil).Repair(context.Background(), "src")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Candidates)
	assert.Equal(t, 1, stats.Repaired)
	assert.Equal(t, 0, stats.Unparsable)

	segs, err := store.ListForChapter("john", 1)
	require.NoError(t, err)
	require.Len(t, segs, 2)
	for _, seg := range segs {
		if seg.ID != "broken" {
			continue
		}
		require.NotNil(t, seg.VerseStart)
		require.NotNil(t, seg.VerseEnd)
		assert.Equal(t, 26, *seg.VerseStart)
		assert.Equal(t, 27, *seg.VerseEnd)
	}
}

func TestRepair_CommaListAnchor(t *testing.T) {
	store := newTestSegmentStore(t)

	// The raw line is a disjoint list, so the repaired row gets anchor
	// pairs and nil range fields instead of a gap-spanning range.
	require.NoError(t, store.Upsert(&commentary.SourceSegment{
		ID: "listy", SourceKey: "src", Book: "john",
		ChapterStart: 1, ChapterEnd: 1,
		VerseStart: nil, VerseEnd: intPtr(33),
		AnchorRaw: "John 1:20,22,33",
		Heading:   "H", Content: "body", OrderIndex: 1,
	}))

	stats, err := NewRepairer(store, nil).Repair(context.Background(), "src")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Repaired)

	segs, err := store.ListForChapter("john", 1)
	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Nil(t, segs[0].VerseStart)
	assert.Nil(t, segs[0].VerseEnd)
	assert.Equal(t, commentary.AnchorList{
		{Chapter: 1, Verse: 20},
		{Chapter: 1, Verse: 22},
		{Chapter: 1, Verse: 33},
	}, segs[0].Anchors)
}

func TestRepair_UnparsableLeftAlone(t *testing.T) {
	store := newTestSegmentStore(t)

	require.NoError(t, store.Upsert(&commentary.SourceSegment{
		ID: "garbled", SourceKey: "src", Book: "john",
		ChapterStart: 1, ChapterEnd: 1,
		VerseStart: intPtr(5), VerseEnd: nil,
		AnchorRaw: "not an anchor line",
		Heading:   "H", Content: "body", OrderIndex: 1,
	}))

	stats, err := NewRepairer(store, nil).Repair(context.Background(), "src")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Candidates)
	assert.Equal(t, 0, stats.Repaired)
	assert.Equal(t, 1, stats.Unparsable)
}

func TestRepair_ScopedBySource(t *testing.T) {
	store := newTestSegmentStore(t)

	require.NoError(t, store.Upsert(&commentary.SourceSegment{
		ID: "other-source", SourceKey: "elsewhere", Book: "john",
		ChapterStart: 1, ChapterEnd: 1,
		VerseStart: intPtr(5), VerseEnd: nil,
		AnchorRaw: "John 1:5-6",
		Heading:   "H", Content: "body", OrderIndex: 1,
	}))

	stats, err := NewRepairer(store, nil).Repair(context.Background(), "src")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Candidates)
}
