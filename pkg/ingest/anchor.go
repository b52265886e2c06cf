// Package ingest parses curated commentary source documents into
// structured segments. Parsing happens once here, offline; the live
// resolver only ever compares the integers this package produces.
package ingest

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/lampstand/commentary/pkg/commentary"
	"github.com/lampstand/commentary/pkg/reference"
)

// Anchor is one parsed anchor line, e.g. "John 1:26-27,33".
type Anchor struct {
	// Book is the canonical slug from the anchor line's book name.
	Book    string
	Chapter int

	// VerseStart/VerseEnd hold a contiguous range; both nil for
	// chapter-wide or disjoint-list anchors.
	VerseStart *int
	VerseEnd   *int

	// Anchors lists explicit (chapter, verse) coordinates: the members
	// of a comma list, plus any trailing "V. N" callouts.
	Anchors commentary.AnchorList

	// Raw is the original anchor line, retained verbatim for audit and
	// re-parsing.
	Raw string
}

// anchorGrammar parses the reference portion of an anchor line:
// an optional leading book number ("1 Chronicles"), the book words,
// then "<chapter>:<versePart>".
//
//nolint:govet // participle grammar tags are not standard struct tags
type anchorGrammar struct {
	BookNum   *int        `parser:"@Int?"`
	BookWords []string    `parser:"@Word+"`
	Chapter   int         `parser:"@Int ':'"`
	Verses    []verseItem `parser:"@@ ( ',' @@ )*"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type verseItem struct {
	Start int  `parser:"@Int"`
	End   *int `parser:"( '-' @Int )?"`
}

var anchorLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Word", Pattern: `[A-Za-z]+`},
	{Name: "Punct", Pattern: `[:,\-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var anchorParser = participle.MustBuild[anchorGrammar](
	participle.Lexer(anchorLexer),
	participle.Elide("Whitespace"),
)

// extraVerseRe finds trailing "V. 32" callouts in an anchor line.
var extraVerseRe = regexp.MustCompile(`(?i)\bV\.\s*([0-9]+)\b`)

// ParseAnchorLine parses a line of the form
// "<Book> <chapter>:<versePart>" with optional trailing text. Returns
// false for body lines and for anchor lines naming an unknown book.
func ParseAnchorLine(line string) (*Anchor, bool) {
	trimmed := strings.TrimSpace(line)
	refPart, rest, ok := splitRefPart(trimmed)
	if !ok {
		return nil, false
	}

	parsed, err := anchorParser.ParseString("", refPart)
	if err != nil {
		return nil, false
	}

	bookName := strings.Join(parsed.BookWords, " ")
	if parsed.BookNum != nil {
		bookName = fmt.Sprintf("%d %s", *parsed.BookNum, bookName)
	}
	slug, ok := reference.CanonicalSlug(bookName)
	if !ok {
		return nil, false
	}
	if parsed.Chapter < 1 {
		return nil, false
	}

	a := &Anchor{
		Book:    slug,
		Chapter: parsed.Chapter,
		Raw:     trimmed,
	}
	applyVersePart(a, parsed.Verses)

	// Extra "V. 32" references anywhere after the reference.
	for _, m := range extraVerseRe.FindAllStringSubmatch(rest, -1) {
		if v := atoi(m[1]); v >= 1 && !a.Anchors.Contains(a.Chapter, v) {
			a.Anchors = append(a.Anchors, commentary.AnchorPair{Chapter: a.Chapter, Verse: v})
		}
	}
	sortAnchors(a.Anchors)

	return a, true
}

// splitRefPart isolates "<Book> <chapter>:<versePart>" from the rest of
// the line. The reference ends where the run of digits, commas, and
// hyphens after the colon ends.
func splitRefPart(line string) (refPart, rest string, ok bool) {
	colon := strings.IndexByte(line, ':')
	if colon <= 0 || colon == len(line)-1 {
		return "", "", false
	}

	end := colon + 1
	for end < len(line) && strings.ContainsRune("0123456789,- \t", rune(line[end])) {
		end++
	}
	refPart = line[:end]
	rest = line[end:]

	// Trim the trailing separator run so "1:3 - " parses as "1:3".
	refPart = strings.TrimRight(refPart, ",- \t")
	if refPart == "" || !isDigit(refPart[len(refPart)-1]) {
		return "", "", false
	}
	return refPart, rest, true
}

// applyVersePart normalizes the verse notation:
// a single verse or contiguous range keeps VerseStart/VerseEnd; a
// disjoint comma list becomes an anchor-pair list with nil range fields
// (range matching across the gaps would be wrong); verse values < 1
// are dropped, and an empty result means chapter-wide.
func applyVersePart(a *Anchor, items []verseItem) {
	type span struct{ lo, hi int }
	var spans []span
	for _, it := range items {
		lo, hi := it.Start, it.Start
		if it.End != nil {
			hi = *it.End
		}
		if hi < lo {
			lo, hi = hi, lo
		}
		if hi < 1 {
			continue
		}
		if lo < 1 {
			lo = 1
		}
		spans = append(spans, span{lo, hi})
	}

	switch len(spans) {
	case 0:
		// Chapter-wide.
	case 1:
		vs, ve := spans[0].lo, spans[0].hi
		a.VerseStart = &vs
		a.VerseEnd = &ve
		if vs == ve {
			a.Anchors = commentary.AnchorList{{Chapter: a.Chapter, Verse: vs}}
		}
	default:
		for _, sp := range spans {
			for v := sp.lo; v <= sp.hi; v++ {
				if !a.Anchors.Contains(a.Chapter, v) {
					a.Anchors = append(a.Anchors, commentary.AnchorPair{Chapter: a.Chapter, Verse: v})
				}
			}
		}
	}
}

func sortAnchors(anchors commentary.AnchorList) {
	sort.Slice(anchors, func(i, j int) bool {
		if anchors[i].Chapter != anchors[j].Chapter {
			return anchors[i].Chapter < anchors[j].Chapter
		}
		return anchors[i].Verse < anchors[j].Verse
	})
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func atoi(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		n = n*10 + int(s[i]-'0')
	}
	return n
}
