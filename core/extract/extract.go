package extract

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"

	"github.com/openvedabase/gitabase/core/errors"
	"github.com/openvedabase/gitabase/core/verse"
)

// marker identifies which structural block class an element carries.
type marker int

const (
	markerNone marker = iota
	markerSanskrit
	markerGlosses
	markerTranslation
	markerCommentary
	markerLabel
	markerHeading
)

// markerFor maps an element's class attribute to its block marker. Substring
// match, so numbered variants (verse-trs1, data-trs2) are covered.
func markerFor(class string) marker {
	switch {
	case strings.Contains(class, "verse-trs"):
		return markerSanskrit
	case strings.Contains(class, "word-mean"):
		return markerGlosses
	case strings.Contains(class, "data-trs"):
		return markerTranslation
	case strings.Contains(class, "purport"):
		return markerCommentary
	case strings.Contains(class, "verse-text"):
		return markerLabel
	case strings.Contains(class, "verse-hed"):
		return markerHeading
	default:
		return markerNone
	}
}

// HasVerseContent reports whether raw markup carries at least one
// translation block marker. Fragments without one, and without a file-map
// entry, hold only front matter and are not worth scanning.
func HasVerseContent(raw []byte) bool {
	return bytes.Contains(raw, []byte("data-trs"))
}

// Extract scans one fragment's markup and returns its ordered segments.
// Unrecognized markup is ignored; nothing here is fatal except unreadable
// input.
func Extract(raw []byte) ([]Segment, error) {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "parsing fragment markup")
	}
	e := &extractor{}
	e.walk(doc)
	return e.segments, nil
}

// extractor carries the within-fragment state of one extraction pass. The
// only state is the pending TRANSLATION section header, which changes how the
// next commentary block is read.
type extractor struct {
	segments          []Segment
	expectTranslation bool
}

func (e *extractor) walk(n *html.Node) {
	switch n.Type {
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" {
			return
		}
		if m := markerFor(attr(n, "class")); m != markerNone {
			e.block(m, n)
			return
		}
	case html.TextNode:
		e.looseText(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		e.walk(c)
	}
}

// block consumes one marker element as a whole. Its subtree is never
// revisited by the loose-text scan, so chapter markers inside verse material
// cannot move the cursor.
func (e *extractor) block(m marker, n *html.Node) {
	text, emphasis, plain := blockParts(n)

	switch m {
	case markerSanskrit:
		if text != "" {
			e.emit(Segment{Kind: KindSanskrit, Text: text})
		}
	case markerGlosses:
		if text != "" {
			e.emit(Segment{Kind: KindGlosses, Text: text})
		}
	case markerTranslation:
		if text != "" {
			e.emit(Segment{Kind: KindTranslation, Text: text})
		}
	case markerLabel:
		if text == "" {
			return
		}
		d, err := verse.ParseLabel(text)
		if err != nil {
			e.emit(Segment{Kind: KindWarning, Text: text})
			return
		}
		e.emit(Segment{Kind: KindVerseLabel, Text: text, Designator: d})
	case markerHeading:
		if strings.Contains(strings.ToUpper(text), "TRANSLATION") {
			e.expectTranslation = true
		}
	case markerCommentary:
		if e.expectTranslation {
			// The block after a TRANSLATION section header holds the
			// translation in its bold runs; the rest is commentary.
			e.expectTranslation = false
			if emphasis != "" {
				e.emit(Segment{Kind: KindTranslation, Text: emphasis})
				if plain != "" {
					e.emit(Segment{Kind: KindCommentary, Text: plain, Plain: plain})
				}
				return
			}
		}
		if text != "" {
			e.emit(Segment{Kind: KindCommentary, Text: text, Emphasis: emphasis, Plain: plain})
		}
	}
}

// looseText scans text outside marker blocks for chapter markers.
func (e *extractor) looseText(data string) {
	phrase, chapter, found := FindChapterHeader(data)
	if !found {
		return
	}
	if chapter == 0 {
		e.emit(Segment{Kind: KindWarning, Text: phrase})
		return
	}
	e.emit(Segment{Kind: KindChapterHeader, Text: phrase, Chapter: chapter})
}

func (e *extractor) emit(s Segment) {
	e.segments = append(e.segments, s)
}

// attr returns the value of an attribute on an element node.
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// blockParts collects the normalized text of a block element: the whole
// text, the text inside bold runs, and the text outside them. Nodes broken
// across nested elements concatenate into one logical block.
func blockParts(n *html.Node) (text, emphasis, plain string) {
	var all, bold, rest []string
	var visit func(node *html.Node, inBold bool)
	visit = func(node *html.Node, inBold bool) {
		if node.Type == html.TextNode {
			all = append(all, node.Data)
			if inBold {
				bold = append(bold, node.Data)
			} else {
				rest = append(rest, node.Data)
			}
			return
		}
		if node.Type == html.ElementNode && node.Data == "b" {
			inBold = true
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			visit(c, inBold)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		visit(c, false)
	}
	return verse.NormalizeText(strings.Join(all, " ")),
		verse.NormalizeText(strings.Join(bold, " ")),
		verse.NormalizeText(strings.Join(rest, " "))
}
