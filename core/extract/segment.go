// Package extract turns one fragment's markup into an ordered stream of typed
// segments. Extraction is pure per fragment: no chapter state, no verse
// state, so distinct fragments can be extracted concurrently.
package extract

import (
	"github.com/openvedabase/gitabase/core/verse"
)

// Kind classifies a segment.
type Kind string

const (
	// KindChapterHeader is a resolved chapter marker found in loose text.
	KindChapterHeader Kind = "chapter-header"
	// KindVerseLabel is a parsed verse-number label ("TEXT 5", "TEXTS 2-3").
	KindVerseLabel Kind = "verse-label"
	// KindSanskrit is a transliterated verse block.
	KindSanskrit Kind = "sanskrit"
	// KindGlosses is a word-by-word meanings block.
	KindGlosses Kind = "glosses"
	// KindTranslation is a rendered translation block.
	KindTranslation Kind = "translation"
	// KindCommentary is a commentary block.
	KindCommentary Kind = "commentary"
	// KindWarning is markup that was recognized structurally but could not be
	// interpreted, such as a chapter marker with an unknown payload.
	KindWarning Kind = "warning"
)

// validKinds contains all valid segment kinds.
var validKinds = map[Kind]bool{
	KindChapterHeader: true,
	KindVerseLabel:    true,
	KindSanskrit:      true,
	KindGlosses:       true,
	KindTranslation:   true,
	KindCommentary:    true,
	KindWarning:       true,
}

// IsValid returns true if the kind is recognized.
func (k Kind) IsValid() bool {
	return validKinds[k]
}

// Segment is one structurally-tagged span within a fragment, produced by
// extraction and consumed immediately by assembly. Not persisted.
type Segment struct {
	// Kind classifies the segment.
	Kind Kind `json:"kind"`

	// Text is the normalized text of the span. For a chapter header this is
	// the matched phrase; for a warning, the offending text.
	Text string `json:"text"`

	// Chapter is the resolved chapter number. ChapterHeader only.
	Chapter int `json:"chapter,omitempty"`

	// Designator is the parsed verse designator. VerseLabel only.
	Designator verse.Designator `json:"designator,omitempty"`

	// Emphasis is the text of the block's bold runs. Commentary only; assembly
	// uses it to recover a translation from a bold-leading commentary block.
	Emphasis string `json:"emphasis,omitempty"`

	// Plain is the text outside the block's bold runs. Commentary only.
	Plain string `json:"plain,omitempty"`
}
