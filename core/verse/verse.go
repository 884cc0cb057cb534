// Package verse defines the canonical verse record and its content
// fingerprint, the system's integrity and deduplication mechanism.
package verse

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// CanonicalVerse is one finalized scripture record. Immutable once created.
type CanonicalVerse struct {
	// Book is the book code (e.g., "BG").
	Book string `json:"book"`

	// Chapter is the chapter the record belongs to, frozen at verse-open time.
	Chapter int `json:"chapter"`

	// Designator is the verse number or inclusive range ("5", "2-3").
	Designator string `json:"designator"`

	// Sanskrit is the transliterated verse text, if present.
	Sanskrit string `json:"sanskrit,omitempty"`

	// Glosses is the word-by-word meanings block, if present.
	Glosses string `json:"glosses,omitempty"`

	// Translation is the rendered translation. Always non-empty.
	Translation string `json:"translation"`

	// Commentary is the commentary text, if present.
	Commentary string `json:"commentary,omitempty"`

	// Fingerprint is the content fingerprint over the canonicalized record.
	Fingerprint string `json:"fingerprint"`
}

// fieldSeparator joins fingerprint fields. The unit separator cannot occur in
// normalized text, so field boundaries are unambiguous.
const fieldSeparator = "\x1f"

// NormalizeText collapses whitespace runs to single spaces and trims. This is
// the canonical text normalization used for fingerprinting and comparison.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Fingerprint computes the content fingerprint for a record: SHA-256, hex
// encoded, over the UTF-8 canonicalized 7-tuple (book upper-cased, chapter in
// decimal, designator, Sanskrit, glosses, translation, commentary), each text
// field normalized per NormalizeText, joined by the unit separator. The
// canonicalization is fixed: independent implementations must produce
// identical fingerprints for identical logical content.
func Fingerprint(book string, chapter int, designator, sanskrit, glosses, translation, commentary string) string {
	fields := []string{
		strings.ToUpper(NormalizeText(book)),
		strconv.Itoa(chapter),
		NormalizeText(designator),
		NormalizeText(sanskrit),
		NormalizeText(glosses),
		NormalizeText(translation),
		NormalizeText(commentary),
	}
	sum := sha256.Sum256([]byte(strings.Join(fields, fieldSeparator)))
	return hex.EncodeToString(sum[:])
}

// New finalizes a record: validates the required fields, stamps the
// designator's canonical form, and computes the fingerprint.
func New(book string, chapter int, d Designator, sanskrit, glosses, translation, commentary string) (CanonicalVerse, error) {
	if NormalizeText(translation) == "" {
		return CanonicalVerse{}, fmt.Errorf("verse %d.%s: translation required", chapter, d)
	}
	if chapter < 1 {
		return CanonicalVerse{}, fmt.Errorf("verse %s: chapter unresolved", d)
	}
	v := CanonicalVerse{
		Book:        book,
		Chapter:     chapter,
		Designator:  d.String(),
		Sanskrit:    sanskrit,
		Glosses:     glosses,
		Translation: translation,
		Commentary:  commentary,
	}
	v.Fingerprint = Fingerprint(v.Book, v.Chapter, v.Designator, v.Sanskrit, v.Glosses, v.Translation, v.Commentary)
	return v, nil
}

// Equivalent reports whether two records carry the same canonical content.
// Used by the store to tell an idempotent re-insert from a true conflict.
func (v CanonicalVerse) Equivalent(other CanonicalVerse) bool {
	return strings.EqualFold(NormalizeText(v.Book), NormalizeText(other.Book)) &&
		v.Chapter == other.Chapter &&
		NormalizeText(v.Designator) == NormalizeText(other.Designator) &&
		NormalizeText(v.Sanskrit) == NormalizeText(other.Sanskrit) &&
		NormalizeText(v.Glosses) == NormalizeText(other.Glosses) &&
		NormalizeText(v.Translation) == NormalizeText(other.Translation) &&
		NormalizeText(v.Commentary) == NormalizeText(other.Commentary)
}

// Ref returns the human-readable reference for the record (e.g., "BG 2.11-12").
func (v CanonicalVerse) Ref() string {
	return fmt.Sprintf("%s %d.%s", v.Book, v.Chapter, v.Designator)
}
