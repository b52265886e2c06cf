// Package reference defines the canonical Bible coordinate system used
// throughout the commentary service: lowercase book slugs, 1-indexed
// chapters, and optional 1-indexed verses.
package reference

import (
	"fmt"
	"strings"
)

// WholeChapter is the Verse value for a chapter-wide reference.
const WholeChapter = 0

// Ref is a resolved (book, chapter, verse) coordinate.
// Verse == WholeChapter means the reference covers the entire chapter.
type Ref struct {
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
	Verse   int    `json:"verse,omitempty"`
}

// IsChapterWide reports whether the reference covers a whole chapter.
func (r Ref) IsChapterWide() bool {
	return r.Verse == WholeChapter
}

// canonicalBooks lists every recognized book slug in canonical order.
var canonicalBooks = []string{
	"genesis", "exodus", "leviticus", "numbers", "deuteronomy",
	"joshua", "judges", "ruth", "1samuel", "2samuel",
	"1kings", "2kings", "1chronicles", "2chronicles", "ezra",
	"nehemiah", "esther", "job", "psalms", "proverbs",
	"ecclesiastes", "songofsolomon", "isaiah", "jeremiah", "lamentations",
	"ezekiel", "daniel", "hosea", "joel", "amos",
	"obadiah", "jonah", "micah", "nahum", "habakkuk",
	"zephaniah", "haggai", "zechariah", "malachi",
	"matthew", "mark", "luke", "john", "acts",
	"romans", "1corinthians", "2corinthians", "galatians", "ephesians",
	"philippians", "colossians", "1thessalonians", "2thessalonians", "1timothy",
	"2timothy", "titus", "philemon", "hebrews", "james",
	"1peter", "2peter", "1john", "2john", "3john",
	"jude", "revelation",
}

var bookSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(canonicalBooks))
	for _, b := range canonicalBooks {
		m[b] = struct{}{}
	}
	return m
}()

// aliases maps common alternate spellings to their canonical slug.
var aliases = map[string]string{
	"psalm":            "psalms",
	"songofsongs":      "songofsolomon",
	"canticles":        "songofsolomon",
	"revelations":      "revelation",
	"revelationofjohn": "revelation",
}

// Books returns the canonical book slugs in canonical order.
func Books() []string {
	out := make([]string, len(canonicalBooks))
	copy(out, canonicalBooks)
	return out
}

// KnownBook reports whether slug is a recognized canonical book slug.
func KnownBook(slug string) bool {
	_, ok := bookSet[slug]
	return ok
}

// CanonicalSlug normalizes a book name to its canonical slug.
// Accepts display names ("1 Chronicles", "Song of Solomon"), slugs
// ("1chronicles"), and a small set of common aliases. Returns false if
// the name does not resolve to a known book.
func CanonicalSlug(name string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '.', '-', '_':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return "", false
	}
	if _, ok := bookSet[s]; ok {
		return s, true
	}
	if canon, ok := aliases[s]; ok {
		return canon, true
	}
	return "", false
}

// New builds a validated Ref from raw inputs. The book may be a display
// name or a slug; verse 0 means chapter-wide.
func New(book string, chapter, verse int) (Ref, error) {
	slug, ok := CanonicalSlug(book)
	if !ok {
		return Ref{}, &RefError{Field: "book", Value: book, Reason: "unknown book"}
	}
	r := Ref{Book: slug, Chapter: chapter, Verse: verse}
	if err := r.Validate(); err != nil {
		return Ref{}, err
	}
	return r, nil
}

// Validate checks the reference invariants: a known book slug,
// chapter >= 1, and verse >= 1 when present.
func (r Ref) Validate() error {
	if !KnownBook(r.Book) {
		return &RefError{Field: "book", Value: r.Book, Reason: "unknown book"}
	}
	if r.Chapter < 1 {
		return &RefError{Field: "chapter", Reason: "must be >= 1"}
	}
	if r.Verse < 0 {
		return &RefError{Field: "verse", Reason: "must be >= 1 when present"}
	}
	return nil
}

// RefError describes an invalid reference field.
type RefError struct {
	Field  string
	Value  string
	Reason string
}

func (e *RefError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid reference: %s %q: %s", e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid reference: %s: %s", e.Field, e.Reason)
}
