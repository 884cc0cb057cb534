// Package verify checks an assembled verse collection against the book's
// canonical count table. The verifier never aborts a run: it produces a
// report, and acting on a failing report is the caller's policy.
package verify

import (
	"fmt"
	"sort"

	"github.com/openvedabase/gitabase/core/corpus"
	"github.com/openvedabase/gitabase/core/verse"
)

// Delta is one chapter whose record count differs from the canonical table.
type Delta struct {
	Chapter  int `json:"chapter"`
	Expected int `json:"expected"`
	Actual   int `json:"actual"`
}

// Gap lists verse numbers of a chapter that no record's designator covers.
type Gap struct {
	Chapter int   `json:"chapter"`
	Missing []int `json:"missing"`
}

// Report is the outcome of verifying one run. It is computed once, after
// assembly, and is read-only thereafter.
type Report struct {
	Book       string      `json:"book"`
	Total      int         `json:"total"`
	Expected   int         `json:"expected"`
	PerChapter map[int]int `json:"per_chapter"`
	Deltas     []Delta     `json:"deltas,omitempty"`
	Duplicates []string    `json:"duplicates,omitempty"`
	Gaps       []Gap       `json:"gaps,omitempty"`
	Pass       bool        `json:"pass"`
}

// Check compares the finalized records against the canonical count table.
// Pass requires an exact total match, an exact match for every chapter in
// the table, and no duplicate fingerprints. Gaps are informational: a
// chapter can match its count yet still miss verse numbers when a ranged
// record overlaps a neighbor.
func Check(verses []verse.CanonicalVerse, book corpus.Book, table *corpus.CountTable) Report {
	r := Report{
		Book:       book.Code,
		Total:      len(verses),
		Expected:   table.Total,
		PerChapter: make(map[int]int),
	}

	seen := make(map[string]int)
	for _, v := range verses {
		r.PerChapter[v.Chapter]++
		seen[v.Fingerprint]++
	}

	for _, ch := range chapterUnion(r.PerChapter, table.Chapters) {
		expected := table.Chapters[ch]
		actual := r.PerChapter[ch]
		if expected != actual {
			r.Deltas = append(r.Deltas, Delta{Chapter: ch, Expected: expected, Actual: actual})
		}
	}

	for fp, n := range seen {
		if n > 1 {
			r.Duplicates = append(r.Duplicates, fp)
		}
	}
	sort.Strings(r.Duplicates)

	r.Gaps = coverageGaps(verses, table)

	r.Pass = r.Total == r.Expected && len(r.Deltas) == 0 && len(r.Duplicates) == 0
	return r
}

// Summary renders the report as one line for logs and command output.
func (r Report) Summary() string {
	verdict := "FAIL"
	if r.Pass {
		verdict = "PASS"
	}
	return fmt.Sprintf("%s: %d/%d records, %d chapter deltas, %d duplicates, %d chapters with gaps [%s]",
		r.Book, r.Total, r.Expected, len(r.Deltas), len(r.Duplicates), len(r.Gaps), verdict)
}

// chapterUnion returns the sorted union of chapter numbers present in
// either the run or the table, so surplus chapters surface as deltas too.
func chapterUnion(actual, expected map[int]int) []int {
	set := make(map[int]bool, len(actual)+len(expected))
	for ch := range actual {
		set[ch] = true
	}
	for ch := range expected {
		set[ch] = true
	}
	chapters := make([]int, 0, len(set))
	for ch := range set {
		chapters = append(chapters, ch)
	}
	sort.Ints(chapters)
	return chapters
}

// coverageGaps reports, per chapter in the table, the verse numbers between
// 1 and the expected count that no designator covers.
func coverageGaps(verses []verse.CanonicalVerse, table *corpus.CountTable) []Gap {
	covered := make(map[int]map[int]bool)
	for _, v := range verses {
		d, err := verse.ParseDesignator(v.Designator)
		if err != nil {
			continue
		}
		if covered[v.Chapter] == nil {
			covered[v.Chapter] = make(map[int]bool)
		}
		for _, n := range d.Covered() {
			covered[v.Chapter][n] = true
		}
	}

	var gaps []Gap
	for _, ch := range chapterUnion(nil, table.Chapters) {
		expected := table.Chapters[ch]
		var missing []int
		for n := 1; n <= expected; n++ {
			if !covered[ch][n] {
				missing = append(missing, n)
			}
		}
		if len(missing) > 0 {
			gaps = append(gaps, Gap{Chapter: ch, Missing: missing})
		}
	}
	return gaps
}
