package assemble

import (
	"fmt"
	"testing"

	"github.com/openvedabase/gitabase/core/corpus"
	"github.com/openvedabase/gitabase/core/extract"
	"github.com/openvedabase/gitabase/core/verse"
)

func seg(kind extract.Kind, text string) extract.Segment {
	return extract.Segment{Kind: kind, Text: text}
}

func headerSeg(chapter int) extract.Segment {
	return extract.Segment{
		Kind:    extract.KindChapterHeader,
		Text:    fmt.Sprintf("CHAPTER %d", chapter),
		Chapter: chapter,
	}
}

func labelSeg(first, last int) extract.Segment {
	return extract.Segment{
		Kind:       extract.KindVerseLabel,
		Designator: verse.Designator{First: first, Last: last},
	}
}

func feed(a *Assembler, segs ...extract.Segment) {
	for _, s := range segs {
		a.Consume(s)
	}
}

func TestAssembleGoldenRule(t *testing.T) {
	a := New(corpus.DefaultBook(), nil)
	a.EnterFragment("frag")
	feed(a,
		headerSeg(11),
		labelSeg(1, 1),
		seg(extract.KindSanskrit, "arjuna uvaca"),
		seg(extract.KindTranslation, "First verse."),
		labelSeg(2, 2),
		seg(extract.KindTranslation, "Second verse."),
		headerSeg(18),
		labelSeg(1, 1),
		seg(extract.KindTranslation, "Verse of the final chapter."),
	)
	res := a.Finish()

	if len(res.Verses) != 3 {
		t.Fatalf("got %d verses, want 3", len(res.Verses))
	}
	want := []int{11, 11, 18}
	for i, v := range res.Verses {
		if v.Chapter != want[i] {
			t.Errorf("verse %d: chapter = %d, want %d", i, v.Chapter, want[i])
		}
	}
}

func TestAssembleChapterFrozenAtOpen(t *testing.T) {
	a := New(corpus.DefaultBook(), nil)
	a.EnterFragment("frag")
	feed(a,
		headerSeg(11),
		labelSeg(55, 55),
		seg(extract.KindSanskrit, "sri-bhagavan uvaca"),
		headerSeg(18),
		seg(extract.KindTranslation, "Opened before the header moved the cursor."),
	)
	res := a.Finish()

	if len(res.Verses) != 1 {
		t.Fatalf("got %d verses, want 1", len(res.Verses))
	}
	if got := res.Verses[0].Chapter; got != 11 {
		t.Errorf("chapter = %d, want 11 frozen at open", got)
	}
	if got := a.Chapter(); got != 18 {
		t.Errorf("cursor = %d, want 18 after header", got)
	}
}

func TestAssembleFileMapFallback(t *testing.T) {
	fm := testFileMap(corpus.FileMapEntry{Fragment: "frag", Chapter: 2})
	a := New(corpus.DefaultBook(), fm)
	a.EnterFragment("frag")
	feed(a,
		labelSeg(35, 35),
		seg(extract.KindTranslation, "One."),
		labelSeg(36, 36),
		seg(extract.KindTranslation, "Two."),
	)
	res := a.Finish()

	if len(res.Verses) != 2 {
		t.Fatalf("got %d verses, want 2", len(res.Verses))
	}
	for i, v := range res.Verses {
		if v.Chapter != 2 {
			t.Errorf("verse %d: chapter = %d, want 2 from file map", i, v.Chapter)
		}
	}
}

func TestAssembleHeaderPrecedence(t *testing.T) {
	fm := testFileMap(corpus.FileMapEntry{Fragment: "frag", Chapter: 5})
	a := New(corpus.DefaultBook(), fm)
	a.EnterFragment("frag")
	feed(a,
		headerSeg(6),
		labelSeg(1, 1),
		seg(extract.KindTranslation, "Attributed by header, not map."),
	)
	res := a.Finish()

	if len(res.Verses) != 1 {
		t.Fatalf("got %d verses, want 1", len(res.Verses))
	}
	if got := res.Verses[0].Chapter; got != 6 {
		t.Errorf("chapter = %d, want 6", got)
	}
}

func TestAssembleRangeDesignatorOneRecord(t *testing.T) {
	a := New(corpus.DefaultBook(), nil)
	a.EnterFragment("frag")
	feed(a,
		headerSeg(16),
		labelSeg(2, 3),
		seg(extract.KindSanskrit, "..."),
		seg(extract.KindTranslation, "A ranged verse."),
	)
	res := a.Finish()

	if len(res.Verses) != 1 {
		t.Fatalf("got %d verses, want 1 for a ranged label", len(res.Verses))
	}
	if got := res.Verses[0].Designator; got != "2-3" {
		t.Errorf("designator = %q, want %q", got, "2-3")
	}
}

func TestAssembleCounterSyncsToLabels(t *testing.T) {
	a := New(corpus.DefaultBook(), nil)
	a.EnterFragment("frag")
	feed(a,
		headerSeg(16),
		labelSeg(2, 3),
		seg(extract.KindTranslation, "Ranged."),
		seg(extract.KindSanskrit, "next verse begins"),
		seg(extract.KindTranslation, "Unlabeled follower."),
	)
	res := a.Finish()

	if len(res.Verses) != 2 {
		t.Fatalf("got %d verses, want 2", len(res.Verses))
	}
	if got := res.Verses[1].Designator; got != "4" {
		t.Errorf("designator = %q, want %q (one past the range end)", got, "4")
	}
}

func TestAssembleUnlabeledVerses(t *testing.T) {
	fm := testFileMap(corpus.FileMapEntry{Fragment: "frag", Chapter: 2})
	a := New(corpus.DefaultBook(), fm)
	a.EnterFragment("frag")
	feed(a,
		seg(extract.KindSanskrit, "first"),
		seg(extract.KindTranslation, "First translation."),
		seg(extract.KindSanskrit, "second"),
		seg(extract.KindTranslation, "Second translation."),
	)
	res := a.Finish()

	if len(res.Verses) != 2 {
		t.Fatalf("got %d verses, want 2", len(res.Verses))
	}
	for i, want := range []string{"1", "2"} {
		if got := res.Verses[i].Designator; got != want {
			t.Errorf("verse %d: designator = %q, want %q", i, got, want)
		}
	}
}

func TestAssembleNewTranslationOpensNewVerse(t *testing.T) {
	a := New(corpus.DefaultBook(), nil)
	a.EnterFragment("frag")
	feed(a,
		headerSeg(9),
		seg(extract.KindTranslation, "One."),
		seg(extract.KindTranslation, "Two."),
	)
	res := a.Finish()

	if len(res.Verses) != 2 {
		t.Fatalf("got %d verses, want 2", len(res.Verses))
	}
}

func TestAssembleMissingTranslationDropped(t *testing.T) {
	fm := testFileMap(corpus.FileMapEntry{Fragment: "frag", Chapter: 2})
	a := New(corpus.DefaultBook(), fm)
	a.EnterFragment("frag")
	feed(a,
		labelSeg(7, 7),
		seg(extract.KindSanskrit, "sanskrit only"),
		seg(extract.KindGlosses, "word = meaning"),
		labelSeg(8, 8),
		seg(extract.KindTranslation, "The survivor."),
	)
	res := a.Finish()

	if len(res.Verses) != 1 {
		t.Fatalf("got %d verses, want 1", len(res.Verses))
	}
	if got := res.Verses[0].Designator; got != "8" {
		t.Errorf("surviving designator = %q, want %q", got, "8")
	}
	if len(res.Failures) != 1 {
		t.Fatalf("got %d failures, want 1", len(res.Failures))
	}
	f := res.Failures[0]
	if f.Fragment != "frag" || f.Chapter != 2 || f.Designator != "7" {
		t.Errorf("failure = %+v, want fragment frag chapter 2 designator 7", f)
	}
	if f.Reason != "no translation" {
		t.Errorf("reason = %q, want %q", f.Reason, "no translation")
	}
}

func TestAssembleUnresolvedChapterDropped(t *testing.T) {
	a := New(corpus.DefaultBook(), nil)
	a.EnterFragment("frag")
	feed(a,
		labelSeg(1, 1),
		seg(extract.KindTranslation, "No chapter was ever established."),
	)
	res := a.Finish()

	if len(res.Verses) != 0 {
		t.Fatalf("got %d verses, want 0", len(res.Verses))
	}
	if len(res.Failures) != 1 {
		t.Fatalf("got %d failures, want 1", len(res.Failures))
	}
	if got := res.Failures[0].Reason; got != "chapter unresolved" {
		t.Errorf("reason = %q, want %q", got, "chapter unresolved")
	}
}

func TestAssembleOutOfRangeChapterDropped(t *testing.T) {
	a := New(corpus.DefaultBook(), nil)
	a.EnterFragment("frag")
	feed(a,
		headerSeg(19),
		labelSeg(1, 1),
		seg(extract.KindTranslation, "Nineteen is past the end of the book."),
	)
	res := a.Finish()

	if len(res.Verses) != 0 {
		t.Fatalf("got %d verses, want 0", len(res.Verses))
	}
	if len(res.Failures) != 1 {
		t.Fatalf("got %d failures, want 1", len(res.Failures))
	}
	if got := res.Failures[0].Reason; got != "chapter out of range" {
		t.Errorf("reason = %q, want %q", got, "chapter out of range")
	}
}

func TestAssembleEmphasisPromotedToTranslation(t *testing.T) {
	a := New(corpus.DefaultBook(), nil)
	a.EnterFragment("frag")
	feed(a,
		headerSeg(12),
		labelSeg(2, 2),
		seg(extract.KindSanskrit, "sri-bhagavan uvaca"),
		extract.Segment{
			Kind:     extract.KindCommentary,
			Text:     "The bold lead. The rest of the commentary.",
			Emphasis: "The bold lead.",
			Plain:    "The rest of the commentary.",
		},
	)
	res := a.Finish()

	if len(res.Verses) != 1 {
		t.Fatalf("got %d verses, want 1", len(res.Verses))
	}
	v := res.Verses[0]
	if v.Translation != "The bold lead." {
		t.Errorf("translation = %q, want promoted emphasis", v.Translation)
	}
	if v.Commentary != "The rest of the commentary." {
		t.Errorf("commentary = %q, want plain remainder", v.Commentary)
	}
}

func TestAssembleEmphasisKeptWhenTranslationPresent(t *testing.T) {
	a := New(corpus.DefaultBook(), nil)
	a.EnterFragment("frag")
	feed(a,
		headerSeg(12),
		labelSeg(3, 3),
		seg(extract.KindTranslation, "The real translation."),
		extract.Segment{
			Kind:     extract.KindCommentary,
			Text:     "Bold opener. Ordinary text.",
			Emphasis: "Bold opener.",
			Plain:    "Ordinary text.",
		},
	)
	res := a.Finish()

	if len(res.Verses) != 1 {
		t.Fatalf("got %d verses, want 1", len(res.Verses))
	}
	v := res.Verses[0]
	if v.Translation != "The real translation." {
		t.Errorf("translation = %q, want the explicit block", v.Translation)
	}
	if v.Commentary != "Bold opener. Ordinary text." {
		t.Errorf("commentary = %q, want the whole block kept", v.Commentary)
	}
}

func TestAssemblePromotionTakesFirstEmphasizedBlock(t *testing.T) {
	a := New(corpus.DefaultBook(), nil)
	a.EnterFragment("frag")
	feed(a,
		headerSeg(12),
		labelSeg(4, 4),
		extract.Segment{Kind: extract.KindCommentary, Text: "No bold here.", Plain: "No bold here."},
		extract.Segment{Kind: extract.KindCommentary, Text: "Lead. Tail.", Emphasis: "Lead.", Plain: "Tail."},
		extract.Segment{Kind: extract.KindCommentary, Text: "Also bold. More.", Emphasis: "Also bold.", Plain: "More."},
	)
	res := a.Finish()

	if len(res.Verses) != 1 {
		t.Fatalf("got %d verses, want 1", len(res.Verses))
	}
	v := res.Verses[0]
	if v.Translation != "Lead." {
		t.Errorf("translation = %q, want first emphasized block", v.Translation)
	}
	if v.Commentary != "No bold here.\nTail.\nAlso bold. More." {
		t.Errorf("commentary = %q", v.Commentary)
	}
}

func TestAssembleFragmentBoundaryClosesVerse(t *testing.T) {
	fm := testFileMap(corpus.FileMapEntry{Fragment: "a", Chapter: 1})
	a := New(corpus.DefaultBook(), fm)

	a.EnterFragment("a")
	feed(a,
		labelSeg(1, 1),
		seg(extract.KindTranslation, "Closed by the boundary."),
	)
	a.EnterFragment("b")
	feed(a,
		seg(extract.KindSanskrit, "carries the cursor"),
		seg(extract.KindTranslation, "Second fragment, same chapter."),
	)
	res := a.Finish()

	if len(res.Verses) != 2 {
		t.Fatalf("got %d verses, want 2", len(res.Verses))
	}
	if got := res.Verses[1].Chapter; got != 1 {
		t.Errorf("second verse chapter = %d, want 1 carried over", got)
	}
	if got := res.Verses[1].Designator; got != "2" {
		t.Errorf("second verse designator = %q, want %q", got, "2")
	}
	if want := []string{"a", "b"}; len(res.Sources) != 2 || res.Sources[0] != want[0] || res.Sources[1] != want[1] {
		t.Errorf("Sources = %v, want %v", res.Sources, want)
	}
}

func TestAssembleFieldJoins(t *testing.T) {
	a := New(corpus.DefaultBook(), nil)
	a.EnterFragment("frag")
	feed(a,
		headerSeg(2),
		labelSeg(11, 11),
		seg(extract.KindSanskrit, "line one"),
		seg(extract.KindSanskrit, "line two"),
		seg(extract.KindGlosses, "a = b;"),
		seg(extract.KindGlosses, "c = d."),
		seg(extract.KindTranslation, "The translation."),
		seg(extract.KindCommentary, "First paragraph."),
		seg(extract.KindCommentary, "Second paragraph."),
	)
	res := a.Finish()

	if len(res.Verses) != 1 {
		t.Fatalf("got %d verses, want 1", len(res.Verses))
	}
	v := res.Verses[0]
	if v.Sanskrit != "line one\nline two" {
		t.Errorf("sanskrit = %q", v.Sanskrit)
	}
	if v.Glosses != "a = b; c = d." {
		t.Errorf("glosses = %q", v.Glosses)
	}
	if v.Commentary != "First paragraph.\nSecond paragraph." {
		t.Errorf("commentary = %q", v.Commentary)
	}
}

func TestAssembleEmptyLabelDropped(t *testing.T) {
	a := New(corpus.DefaultBook(), nil)
	a.EnterFragment("frag")
	feed(a,
		headerSeg(3),
		labelSeg(1, 1),
		labelSeg(2, 2),
		seg(extract.KindTranslation, "Only the second label got content."),
	)
	res := a.Finish()

	if len(res.Verses) != 1 {
		t.Fatalf("got %d verses, want 1", len(res.Verses))
	}
	if len(res.Failures) != 1 {
		t.Fatalf("got %d failures, want 1", len(res.Failures))
	}
	if got := res.Failures[0].Designator; got != "1" {
		t.Errorf("failure designator = %q, want %q", got, "1")
	}
}

func TestAssembleWarningRecorded(t *testing.T) {
	a := New(corpus.DefaultBook(), nil)
	a.EnterFragment("frag")
	feed(a,
		headerSeg(4),
		seg(extract.KindWarning, "CHAPTER NINETEEN"),
	)
	res := a.Finish()

	if len(res.Warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(res.Warnings))
	}
	w := res.Warnings[0]
	if w.Fragment != "frag" || w.Text != "CHAPTER NINETEEN" {
		t.Errorf("warning = %+v", w)
	}
	if got := a.Chapter(); got != 4 {
		t.Errorf("cursor = %d, want 4 unchanged by warning", got)
	}
}

func TestAssembleFinishClosesOpenVerse(t *testing.T) {
	a := New(corpus.DefaultBook(), nil)
	a.EnterFragment("frag")
	feed(a,
		headerSeg(18),
		labelSeg(78, 78),
		seg(extract.KindTranslation, "The last verse of the book."),
	)
	res := a.Finish()

	if len(res.Verses) != 1 {
		t.Fatalf("got %d verses, want 1", len(res.Verses))
	}
	v := res.Verses[0]
	if v.Chapter != 18 || v.Designator != "78" {
		t.Errorf("verse = %s, want BG 18.78", v.Ref())
	}
}
