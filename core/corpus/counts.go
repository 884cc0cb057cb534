package corpus

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/openvedabase/gitabase/core/errors"
)

// CountTable is the canonical ground truth the verifier checks a run against:
// expected verse records per chapter plus the expected grand total. A ranged
// record counts once.
type CountTable struct {
	// Total is the expected number of records across the whole book.
	Total int `json:"total"`

	// Chapters maps chapter number to its expected record count.
	Chapters map[int]int `json:"chapters"`
}

// Expected returns the expected count for a chapter.
func (t *CountTable) Expected(chapter int) (int, bool) {
	n, ok := t.Chapters[chapter]
	return n, ok
}

// MaxChapter returns the highest chapter number in the table.
func (t *CountTable) MaxChapter() int {
	max := 0
	for ch := range t.Chapters {
		if ch > max {
			max = ch
		}
	}
	return max
}

// Validate checks internal consistency: positive chapters, non-negative
// counts, and a total that matches the chapter sum.
func (t *CountTable) Validate() error {
	if len(t.Chapters) == 0 {
		return errors.NewConfiguration("count table", "no chapters")
	}
	sum := 0
	for ch, n := range t.Chapters {
		if ch < 1 {
			return errors.NewConfiguration("count table", fmt.Sprintf("invalid chapter %d", ch))
		}
		if n < 0 {
			return errors.NewConfiguration("count table", fmt.Sprintf("negative count for chapter %d", ch))
		}
		sum += n
	}
	if t.Total != sum {
		return errors.NewConfiguration("count table",
			fmt.Sprintf("total %d does not match chapter sum %d", t.Total, sum))
	}
	return nil
}

// LoadCountTable reads a canonical count table from a JSON file. A zero total
// is derived from the chapter sum.
func LoadCountTable(path string) (*CountTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading count table %s", path)
	}
	var t CountTable
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, errors.Wrapf(err, "parsing count table %s", path)
	}
	if t.Total == 0 {
		for _, n := range t.Chapters {
			t.Total += n
		}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// DefaultCountTable returns the canonical counts for the reference corpus:
// 700 verse records across 18 chapters of the 1972 edition.
func DefaultCountTable() *CountTable {
	return &CountTable{
		Total: 700,
		Chapters: map[int]int{
			1:  46,
			2:  72,
			3:  43,
			4:  42,
			5:  29,
			6:  47,
			7:  30,
			8:  28,
			9:  34,
			10: 42,
			11: 55,
			12: 20,
			13: 35,
			14: 27,
			15: 20,
			16: 24,
			17: 28,
			18: 78,
		},
	}
}
