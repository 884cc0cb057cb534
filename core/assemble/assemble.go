// Package assemble merges the extracted segment stream with the chapter
// cursor into finalized canonical verse records. Assembly is strictly
// sequential over the whole corpus: each segment's interpretation depends on
// cursor state mutated by every prior segment in document order.
package assemble

import (
	"strings"

	"github.com/openvedabase/gitabase/core/corpus"
	"github.com/openvedabase/gitabase/core/errors"
	"github.com/openvedabase/gitabase/core/extract"
	"github.com/openvedabase/gitabase/core/verse"
	"github.com/openvedabase/gitabase/internal/logging"
)

// Result is the outcome of one assembly pass over the whole corpus.
// Sources holds, per verse, the fragment the verse was opened in.
type Result struct {
	Verses   []verse.CanonicalVerse
	Sources  []string
	Warnings []*errors.ParseWarning
	Failures []*errors.ExtractionFailure
}

// pending is a verse-in-progress. Its chapter is stamped when the verse
// opens and never re-evaluated, even if the cursor moves before it closes.
type pending struct {
	fragment    string
	chapter     int
	designator  verse.Designator
	labeled     bool
	sanskrit    []string
	glosses     []string
	translation []string
	commentary  []commentaryBlock
}

// commentaryBlock keeps a commentary segment's bold split, so an emphasized
// lead can still become the translation when the verse closes without one.
type commentaryBlock struct {
	text     string
	emphasis string
	plain    string
}

// Assembler consumes segments in corpus order and produces canonical
// verses. Callers must enter fragments in ordinal order and feed each
// fragment's segments in document order.
type Assembler struct {
	book     corpus.Book
	tracker  *Tracker
	counters map[int]int
	open     *pending
	result   Result
}

// New returns an assembler for one run over one book.
func New(book corpus.Book, fileMap *corpus.FileMap) *Assembler {
	return &Assembler{
		book:     book,
		tracker:  NewTracker(fileMap),
		counters: make(map[int]int),
	}
}

// EnterFragment closes any verse still in progress and moves the cursor to
// the named fragment.
func (a *Assembler) EnterFragment(id string) {
	a.close()
	a.tracker.EnterFragment(id)
}

// Consume processes one segment.
func (a *Assembler) Consume(seg extract.Segment) {
	switch seg.Kind {
	case extract.KindChapterHeader:
		a.tracker.ObserveHeader(seg.Chapter)
	case extract.KindWarning:
		a.warn(seg.Text)
	case extract.KindVerseLabel:
		a.close()
		a.openVerse(seg.Designator, true)
	case extract.KindSanskrit:
		// A fresh Sanskrit block after a completed translation means the
		// next verse has begun without a label.
		if a.open != nil && len(a.open.translation) > 0 {
			a.close()
		}
		a.ensureOpen()
		a.open.sanskrit = append(a.open.sanskrit, seg.Text)
	case extract.KindGlosses:
		a.ensureOpen()
		a.open.glosses = append(a.open.glosses, seg.Text)
	case extract.KindTranslation:
		if a.open != nil && len(a.open.translation) > 0 {
			a.close()
		}
		a.ensureOpen()
		a.open.translation = append(a.open.translation, seg.Text)
	case extract.KindCommentary:
		a.ensureOpen()
		a.open.commentary = append(a.open.commentary, commentaryBlock{
			text:     seg.Text,
			emphasis: seg.Emphasis,
			plain:    seg.Plain,
		})
	}
}

// Finish closes the last verse and returns the accumulated output.
func (a *Assembler) Finish() Result {
	a.close()
	return a.result
}

// Chapter returns the tracker's current chapter, 0 when unset.
func (a *Assembler) Chapter() int {
	return a.tracker.Chapter()
}

// openVerse starts a verse-in-progress. The chapter cursor is frozen into
// the record here and not re-read afterwards.
func (a *Assembler) openVerse(d verse.Designator, labeled bool) {
	a.open = &pending{
		fragment:   a.tracker.Fragment(),
		chapter:    a.tracker.Chapter(),
		designator: d,
		labeled:    labeled,
	}
}

// ensureOpen opens an unlabeled verse at the first content segment after
// the previous close.
func (a *Assembler) ensureOpen() {
	if a.open == nil {
		a.openVerse(verse.Designator{}, false)
	}
}

// close finalizes the verse in progress, if any. A verse that still has no
// translation after emphasis promotion, or whose chapter never resolved, is
// dropped and recorded as an extraction failure.
func (a *Assembler) close() {
	p := a.open
	if p == nil {
		return
	}
	a.open = nil

	translation := strings.Join(p.translation, " ")
	if verse.NormalizeText(translation) == "" {
		translation = p.promoteEmphasis()
	}
	if verse.NormalizeText(translation) == "" {
		a.drop(p, p.labelText(), "no translation")
		return
	}
	if p.chapter < 1 {
		a.drop(p, p.labelText(), "chapter unresolved")
		return
	}
	if p.chapter > a.book.Chapters {
		a.drop(p, p.labelText(), "chapter out of range")
		return
	}

	d := p.designator
	if p.labeled {
		a.counters[p.chapter] = d.Last
	} else {
		d = a.nextDesignator(p.chapter)
	}

	v, err := verse.New(a.book.Code, p.chapter, d,
		strings.Join(p.sanskrit, "\n"),
		strings.Join(p.glosses, " "),
		translation,
		p.commentaryText())
	if err != nil {
		a.drop(p, d.String(), err.Error())
		return
	}
	a.result.Verses = append(a.result.Verses, v)
	a.result.Sources = append(a.result.Sources, p.fragment)
}

// nextDesignator numbers an unlabeled verse: one past the last designator
// finalized for the chapter, explicit labels included.
func (a *Assembler) nextDesignator(chapter int) verse.Designator {
	a.counters[chapter]++
	n := a.counters[chapter]
	return verse.Designator{First: n, Last: n}
}

func (a *Assembler) warn(text string) {
	w := errors.NewParseWarning(a.tracker.Fragment(), text)
	a.result.Warnings = append(a.result.Warnings, w)
	logging.Warn("parse warning", "fragment", a.tracker.Fragment(), "text", text)
}

func (a *Assembler) drop(p *pending, designator, reason string) {
	f := errors.NewExtractionFailure(p.fragment, p.chapter, designator, reason)
	a.result.Failures = append(a.result.Failures, f)
	logging.RecordDropped(p.fragment, p.chapter, designator, reason)
}

func (p *pending) labelText() string {
	if !p.labeled {
		return ""
	}
	return p.designator.String()
}

// promoteEmphasis recovers a translation from the first commentary block
// carrying emphasized text. The block's plain remainder stays commentary.
// Returns "" when no block qualifies.
func (p *pending) promoteEmphasis() string {
	for i := range p.commentary {
		b := &p.commentary[i]
		if b.emphasis == "" {
			continue
		}
		translation := b.emphasis
		b.text = b.plain
		b.emphasis = ""
		b.plain = ""
		return translation
	}
	return ""
}

// commentaryText joins the surviving commentary blocks in document order.
func (p *pending) commentaryText() string {
	parts := make([]string, 0, len(p.commentary))
	for _, b := range p.commentary {
		if b.text != "" {
			parts = append(parts, b.text)
		}
	}
	return strings.Join(parts, "\n")
}
