package assemble

import (
	"github.com/openvedabase/gitabase/core/corpus"
	"github.com/openvedabase/gitabase/internal/logging"
)

// Tracker holds the chapter cursor for one run. It is mutated strictly in
// corpus order. The file-map fallback applies when a fragment is entered;
// an explicit header seen inside the fragment always wins over it.
type Tracker struct {
	fileMap    *corpus.FileMap
	fragment   string
	chapter    int
	headerSeen bool
}

// NewTracker returns a tracker with an unset cursor. fileMap may be nil.
func NewTracker(fileMap *corpus.FileMap) *Tracker {
	return &Tracker{fileMap: fileMap}
}

// EnterFragment moves the cursor into a new fragment. The header-seen flag
// resets, so a file-map entry for the fragment overrides whatever chapter
// carried over from earlier fragments.
func (t *Tracker) EnterFragment(id string) {
	t.fragment = id
	t.headerSeen = false
	if t.fileMap == nil {
		return
	}
	entry, ok := t.fileMap.Lookup(id)
	if !ok {
		return
	}
	if entry.Chapter != t.chapter {
		logging.ChapterTransition(id, t.chapter, entry.Chapter, "source", "file-map")
	}
	t.chapter = entry.Chapter
}

// ObserveHeader applies an explicit chapter header to the cursor. Values
// below 1 are ignored; the extractor reports those as warnings instead.
func (t *Tracker) ObserveHeader(chapter int) {
	if chapter < 1 {
		return
	}
	if chapter != t.chapter {
		logging.ChapterTransition(t.fragment, t.chapter, chapter, "source", "header")
	}
	t.chapter = chapter
	t.headerSeen = true
}

// Chapter returns the current chapter, 0 when unset.
func (t *Tracker) Chapter() int {
	return t.chapter
}

// HeaderSeen reports whether an explicit header has been observed in the
// fragment most recently entered.
func (t *Tracker) HeaderSeen() bool {
	return t.headerSeen
}

// Fragment returns the identifier of the fragment most recently entered.
func (t *Tracker) Fragment() string {
	return t.fragment
}
