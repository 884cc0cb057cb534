package corpus

import (
	"encoding/json"
	"os"

	"github.com/openvedabase/gitabase/core/errors"
)

// FileMapEntry is a static hint mapping a fragment to the chapter it is
// expected to start in. Fallback data only: an explicit header inside the
// fragment always wins.
type FileMapEntry struct {
	// Fragment is the fragment identifier the hint applies to.
	Fragment string `json:"fragment"`

	// Chapter is the primary chapter for the fragment.
	Chapter int `json:"chapter"`

	// Note is a free-text remark about why the entry exists.
	Note string `json:"note,omitempty"`
}

// FileMap is the immutable fragment-to-chapter overlay, loaded once per run
// and consulted only when a fragment is entered before any header is seen.
type FileMap struct {
	entries map[string]FileMapEntry
}

// NewFileMap builds a FileMap from entries. Later entries for the same
// fragment replace earlier ones.
func NewFileMap(entries []FileMapEntry) *FileMap {
	m := &FileMap{entries: make(map[string]FileMapEntry, len(entries))}
	for _, e := range entries {
		m.entries[e.Fragment] = e
	}
	return m
}

// Lookup returns the entry for a fragment. Absence is not an error; it only
// means the fallback transition cannot fire for that fragment.
func (m *FileMap) Lookup(fragment string) (FileMapEntry, bool) {
	e, ok := m.entries[fragment]
	return e, ok
}

// Len returns the number of entries.
func (m *FileMap) Len() int {
	return len(m.entries)
}

// Validate checks that the map is usable for a run. A run with no file map at
// all has nothing to attribute unmapped fragments to.
func (m *FileMap) Validate() error {
	if m == nil || len(m.entries) == 0 {
		return errors.NewConfiguration("file map", "no entries")
	}
	for _, e := range m.entries {
		if e.Chapter < 1 {
			return errors.NewConfiguration("file map", "entry for "+e.Fragment+" has no valid chapter")
		}
	}
	return nil
}

// fileMapDoc is the JSON shape of a file-map configuration file.
type fileMapDoc struct {
	Entries []FileMapEntry `json:"entries"`
}

// LoadFileMap reads a file-map overlay from a JSON file.
func LoadFileMap(path string) (*FileMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading file map %s", path)
	}
	var doc fileMapDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "parsing file map %s", path)
	}
	m := NewFileMap(doc.Entries)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// DefaultFileMap returns the overlay for the reference corpus. The map covers
// every verse-bearing fragment of the 1972 EPUB, including the fragments that
// open mid-chapter or mix chapters.
func DefaultFileMap() *FileMap {
	return NewFileMap([]FileMapEntry{
		{Fragment: "text/part0005.html", Chapter: 1, Note: "chapter 1 title page"},
		{Fragment: "text/part0013.html", Chapter: 1},
		{Fragment: "text/part0014.html", Chapter: 2},
		{Fragment: "text/part0015.html", Chapter: 2, Note: "continues chapter 2 from verse 35"},
		{Fragment: "text/part0016.html", Chapter: 3},
		{Fragment: "text/part0017.html", Chapter: 4},
		{Fragment: "text/part0018.html", Chapter: 5},
		{Fragment: "text/part0019.html", Chapter: 6},
		{Fragment: "text/part0020.html", Chapter: 7},
		{Fragment: "text/part0021.html", Chapter: 7, Note: "additional chapter 7 material"},
		{Fragment: "text/part0022.html", Chapter: 7},
		{Fragment: "text/part0023.html", Chapter: 8},
		{Fragment: "text/part0024.html", Chapter: 9},
		{Fragment: "text/part0025.html", Chapter: 10},
		{Fragment: "text/part0026.html", Chapter: 11, Note: "chapter 11 title page, no header text"},
		{Fragment: "text/part0027.html", Chapter: 12},
		{Fragment: "text/part0028.html", Chapter: 13},
		{Fragment: "text/part0029.html", Chapter: 14},
		{Fragment: "text/part0030.html", Chapter: 15},
		{Fragment: "text/part0031.html", Chapter: 16, Note: "chapter 16 title"},
		{Fragment: "text/part0032.html", Chapter: 15, Note: "chapter 15 verse 20 material"},
		{Fragment: "text/part0033.html", Chapter: 16, Note: "mixes chapters 16 and 18"},
		{Fragment: "text/part0034.html", Chapter: 17},
		{Fragment: "text/part0035.html", Chapter: 11, Note: "mixes chapters 11 and 18"},
		{Fragment: "text/part0036.html", Chapter: 18, Note: "additional chapter 18 material"},
	})
}
