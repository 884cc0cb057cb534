// Package corpus defines the source-side data model of an ingestion run:
// ordered markup fragments, the book being ingested, the file-map overlay,
// and the canonical count table the verifier checks against.
package corpus

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"github.com/zeebo/blake3"

	"github.com/openvedabase/gitabase/core/errors"
)

// Fragment is one unit of the source corpus: a single markup file from the
// container, read once per run and immutable afterwards.
type Fragment struct {
	// ID is the fragment identifier, the path inside the container
	// (e.g., "text/part0013.html"). File-map entries key on it.
	ID string `json:"id"`

	// Ordinal is the fragment's position in corpus order. Assembly consumes
	// fragments strictly by ascending ordinal.
	Ordinal int `json:"ordinal"`

	// Raw is the fragment's markup bytes as read from the container.
	Raw []byte `json:"-"`

	// SHA256 is the hex-encoded SHA-256 digest of Raw, for provenance.
	SHA256 string `json:"sha256"`

	// BLAKE3 is the hex-encoded BLAKE3 digest of Raw, for provenance.
	BLAKE3 string `json:"blake3"`

	// Size is the length of Raw in bytes.
	Size int64 `json:"size"`
}

// NewFragment builds a Fragment and computes its digests.
func NewFragment(id string, ordinal int, raw []byte) Fragment {
	sum := sha256.Sum256(raw)
	b3 := blake3.Sum256(raw)
	return Fragment{
		ID:      id,
		Ordinal: ordinal,
		Raw:     raw,
		SHA256:  hex.EncodeToString(sum[:]),
		BLAKE3:  hex.EncodeToString(b3[:]),
		Size:    int64(len(raw)),
	}
}

// Book identifies the work being ingested.
type Book struct {
	// Code is the short book code stamped on every record (e.g., "BG").
	Code string `json:"code"`

	// Title is the human-readable title.
	Title string `json:"title"`

	// Chapters is the number of chapters in the book. Records outside
	// [1, Chapters] are never finalized.
	Chapters int `json:"chapters"`
}

// DefaultBook returns the reference corpus: the 1972 Bhagavad-gītā edition.
func DefaultBook() Book {
	return Book{
		Code:     "BG",
		Title:    "Bhagavad-gītā As It Is",
		Chapters: 18,
	}
}

// SortFragments orders fragments by ascending ordinal, in place.
func SortFragments(fragments []Fragment) {
	sort.Slice(fragments, func(i, j int) bool {
		return fragments[i].Ordinal < fragments[j].Ordinal
	})
}

// ValidateFragments checks that a corpus is usable at all. An empty corpus
// aborts the run before any processing.
func ValidateFragments(fragments []Fragment) error {
	if len(fragments) == 0 {
		return errors.NewConfiguration("corpus", "no fragments to process")
	}
	return nil
}
