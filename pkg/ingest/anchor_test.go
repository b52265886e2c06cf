package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lampstand/commentary/pkg/commentary"
)

func TestParseAnchorLine_SingleVerse(t *testing.T) {
	a, ok := ParseAnchorLine("John 1:26")
	require.True(t, ok)
	assert.Equal(t, "john", a.Book)
	assert.Equal(t, 1, a.Chapter)
	require.NotNil(t, a.VerseStart)
	require.NotNil(t, a.VerseEnd)
	assert.Equal(t, 26, *a.VerseStart)
	assert.Equal(t, 26, *a.VerseEnd)
	assert.Equal(t, commentary.AnchorList{{Chapter: 1, Verse: 26}}, a.Anchors)
	assert.Equal(t, "John 1:26", a.Raw)
}

func TestParseAnchorLine_Range(t *testing.T) {
	a, ok := ParseAnchorLine("John 1:26-27")
	require.True(t, ok)
	require.NotNil(t, a.VerseStart)
	require.NotNil(t, a.VerseEnd)
	assert.Equal(t, 26, *a.VerseStart)
	assert.Equal(t, 27, *a.VerseEnd)
	// Ranges carry no explicit anchor coordinates.
	assert.Empty(t, a.Anchors)
}

func TestParseAnchorLine_ReversedRange(t *testing.T) {
	a, ok := ParseAnchorLine("John 1:27-26")
	require.True(t, ok)
	assert.Equal(t, 26, *a.VerseStart)
	assert.Equal(t, 27, *a.VerseEnd)
}

func TestParseAnchorLine_CommaList(t *testing.T) {
	// Disjoint lists become anchor pairs with nil range fields, so the
	// gaps between listed verses never match.
	a, ok := ParseAnchorLine("John 1:20,22,33")
	require.True(t, ok)
	assert.Nil(t, a.VerseStart)
	assert.Nil(t, a.VerseEnd)
	assert.Equal(t, commentary.AnchorList{
		{Chapter: 1, Verse: 20},
		{Chapter: 1, Verse: 22},
		{Chapter: 1, Verse: 33},
	}, a.Anchors)
}

func TestParseAnchorLine_CommaListWithRange(t *testing.T) {
	a, ok := ParseAnchorLine("Acts 2:1-3,12")
	require.True(t, ok)
	assert.Nil(t, a.VerseStart)
	assert.Nil(t, a.VerseEnd)
	assert.Equal(t, commentary.AnchorList{
		{Chapter: 2, Verse: 1},
		{Chapter: 2, Verse: 2},
		{Chapter: 2, Verse: 3},
		{Chapter: 2, Verse: 12},
	}, a.Anchors)
}

func TestParseAnchorLine_NumberedBook(t *testing.T) {
	a, ok := ParseAnchorLine("1 Chronicles 4:9-10")
	require.True(t, ok)
	assert.Equal(t, "1chronicles", a.Book)
	assert.Equal(t, 4, a.Chapter)
}

func TestParseAnchorLine_MultiWordBook(t *testing.T) {
	a, ok := ParseAnchorLine("Song of Solomon 2:1")
	require.True(t, ok)
	assert.Equal(t, "songofsolomon", a.Book)
}

func TestParseAnchorLine_ExtraVerseCallouts(t *testing.T) {
	a, ok := ParseAnchorLine("John 1:26-27 and see V. 32 with V. 33")
	require.True(t, ok)
	assert.Equal(t, 26, *a.VerseStart)
	assert.Equal(t, 27, *a.VerseEnd)
	assert.Equal(t, commentary.AnchorList{
		{Chapter: 1, Verse: 32},
		{Chapter: 1, Verse: 33},
	}, a.Anchors)
}

func TestParseAnchorLine_TrailingSeparators(t *testing.T) {
	a, ok := ParseAnchorLine("John 1:3 - ")
	require.True(t, ok)
	assert.Equal(t, 3, *a.VerseStart)
	assert.Equal(t, 3, *a.VerseEnd)
}

func TestParseAnchorLine_Rejects(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"body text", "And this is the record of John."},
		{"no colon", "John 1"},
		{"unknown book", "Atlantis 1:26"},
		{"colon without verse digits", "Note: remember this"},
		{"empty", ""},
		{"zero chapter", "John 0:5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ParseAnchorLine(tt.line)
			assert.False(t, ok, "line %q should not parse", tt.line)
		})
	}
}

func TestParseAnchorLine_DuplicatesCollapse(t *testing.T) {
	a, ok := ParseAnchorLine("John 1:20,20,22")
	require.True(t, ok)
	assert.Equal(t, commentary.AnchorList{
		{Chapter: 1, Verse: 20},
		{Chapter: 1, Verse: 22},
	}, a.Anchors)
}
