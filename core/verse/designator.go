package verse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Designator identifies a record within a chapter: a single verse number or
// an inclusive range. A ranged designator is one record, not several.
type Designator struct {
	// First is the first covered verse number.
	First int `json:"first"`

	// Last is the last covered verse number; equal to First for a single verse.
	Last int `json:"last"`
}

// labelGrammar is the participle grammar for verse-number labels as they
// appear in the corpus, and for bare designators used by audit tooling.
// Examples: "TEXT 5", "TEXTS 2-3", "TEXTS 16–18", "TEXT 28.", "5", "2-3"
//
//nolint:govet // participle grammar tags are not standard struct tags
type labelGrammar struct {
	Keyword *string `@Word?`
	First   int     `@Int`
	Last    *int    `( Dash @Int )?`
}

// labelLexer tokenizes labels. Dash covers the hyphen and the Unicode dashes
// the typesetting uses interchangeably; stray punctuation is elided.
var labelLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Word", Pattern: `[A-Za-z]+`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Dash", Pattern: `[-\x{2010}\x{2012}\x{2013}\x{2014}]`},
	{Name: "Punct", Pattern: `[.,:;]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// labelParser is the participle parser for verse labels.
var labelParser = participle.MustBuild[labelGrammar](
	participle.Lexer(labelLexer),
	participle.Elide("Whitespace", "Punct"),
)

// ParseLabel parses a verse-number label ("TEXT 5", "TEXTS 2-3"). The keyword
// is required and case-insensitive; either keyword accepts either form.
func ParseLabel(s string) (Designator, error) {
	parsed, err := parseGrammar(s)
	if err != nil {
		return Designator{}, err
	}
	if parsed.Keyword == nil {
		return Designator{}, fmt.Errorf("verse label %q has no keyword", s)
	}
	kw := strings.ToUpper(*parsed.Keyword)
	if kw != "TEXT" && kw != "TEXTS" {
		return Designator{}, fmt.Errorf("verse label %q has unknown keyword %q", s, kw)
	}
	return designatorFrom(s, parsed)
}

// ParseDesignator parses a bare designator ("5", "2-3") with no keyword.
func ParseDesignator(s string) (Designator, error) {
	parsed, err := parseGrammar(s)
	if err != nil {
		return Designator{}, err
	}
	if parsed.Keyword != nil {
		return Designator{}, fmt.Errorf("designator %q has unexpected keyword", s)
	}
	return designatorFrom(s, parsed)
}

func parseGrammar(s string) (*labelGrammar, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, fmt.Errorf("empty verse label")
	}
	parsed, err := labelParser.ParseString("", trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid verse label %q: %w", s, err)
	}
	return parsed, nil
}

func designatorFrom(s string, parsed *labelGrammar) (Designator, error) {
	d := Designator{First: parsed.First, Last: parsed.First}
	if parsed.Last != nil {
		d.Last = *parsed.Last
	}
	if d.First < 1 {
		return Designator{}, fmt.Errorf("verse label %q: verse numbers start at 1", s)
	}
	if d.Last < d.First {
		return Designator{}, fmt.Errorf("verse label %q: descending range", s)
	}
	return d, nil
}

// String returns the designator in its canonical form: "5" or "2-3".
func (d Designator) String() string {
	if d.Last > d.First {
		return strconv.Itoa(d.First) + "-" + strconv.Itoa(d.Last)
	}
	return strconv.Itoa(d.First)
}

// IsRange returns true if the designator spans multiple verse numbers.
func (d Designator) IsRange() bool {
	return d.Last > d.First
}

// Covered returns every verse number the designator covers, in order.
func (d Designator) Covered() []int {
	nums := make([]int, 0, d.Last-d.First+1)
	for n := d.First; n <= d.Last; n++ {
		nums = append(nums, n)
	}
	return nums
}

// Covers returns true if the designator covers the verse number.
func (d Designator) Covers(n int) bool {
	return n >= d.First && n <= d.Last
}
