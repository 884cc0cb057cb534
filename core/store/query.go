package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/openvedabase/gitabase/core/errors"
	"github.com/openvedabase/gitabase/core/verse"
)

// SearchResult is one full-text match, best first.
type SearchResult struct {
	Verse   verse.CanonicalVerse `json:"verse"`
	Rank    float64              `json:"rank"`
	Snippet string               `json:"snippet"`
}

// Search runs an FTS5 match over the indexed verse fields and returns up to
// limit results ranked by bm25. The query uses FTS5 match syntax.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit < 1 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT v.fingerprint, v.book, v.chapter, v.designator,
			v.sanskrit, v.glosses, v.translation, v.commentary,
			bm25(verse_search) AS rank,
			snippet(verse_search, 3, '[', ']', '...', 12)
		FROM verse_search
		JOIN verses v ON v.fingerprint = verse_search.fingerprint
		WHERE verse_search MATCH ?
		ORDER BY rank
		LIMIT ?`, query, limit)
	if err != nil {
		return nil, errors.Wrapf(err, "searching for %q", query)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Verse.Fingerprint, &r.Verse.Book, &r.Verse.Chapter, &r.Verse.Designator,
			&r.Verse.Sanskrit, &r.Verse.Glosses, &r.Verse.Translation, &r.Verse.Commentary,
			&r.Rank, &r.Snippet); err != nil {
			return nil, errors.Wrap(err, "scanning search result")
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Verses returns all records of a book in canonical order: chapter, then
// the numeric start of the designator.
func (s *Store) Verses(ctx context.Context, book string) ([]verse.CanonicalVerse, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fingerprint, book, chapter, designator, sanskrit, glosses, translation, commentary
		FROM verses
		WHERE book = ?
		ORDER BY chapter, verse_first, verse_last`, book)
	if err != nil {
		return nil, errors.Wrapf(err, "reading verses of %s", book)
	}
	defer rows.Close()

	var verses []verse.CanonicalVerse
	for rows.Next() {
		var v verse.CanonicalVerse
		if err := rows.Scan(&v.Fingerprint, &v.Book, &v.Chapter, &v.Designator,
			&v.Sanskrit, &v.Glosses, &v.Translation, &v.Commentary); err != nil {
			return nil, errors.Wrap(err, "scanning verse")
		}
		verses = append(verses, v)
	}
	return verses, rows.Err()
}

// Get returns one record by reference.
func (s *Store) Get(ctx context.Context, book string, chapter int, designator string) (verse.CanonicalVerse, error) {
	ref := fmt.Sprintf("%s %d.%s", book, chapter, designator)
	v, err := scanVerse(s.db.QueryRowContext(ctx, `
		SELECT fingerprint, book, chapter, designator, sanskrit, glosses, translation, commentary
		FROM verses WHERE book = ? AND chapter = ? AND designator = ?`,
		book, chapter, designator))
	if err == sql.ErrNoRows {
		return verse.CanonicalVerse{}, errors.NewNotFound("verse", ref)
	}
	if err != nil {
		return verse.CanonicalVerse{}, errors.Wrapf(err, "reading %s", ref)
	}
	return v, nil
}

// Counts recounts stored records per chapter for a book.
func (s *Store) Counts(ctx context.Context, book string) (map[int]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT chapter, COUNT(*) FROM verses WHERE book = ? GROUP BY chapter`, book)
	if err != nil {
		return nil, errors.Wrapf(err, "counting verses of %s", book)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var chapter, n int
		if err := rows.Scan(&chapter, &n); err != nil {
			return nil, errors.Wrap(err, "scanning count")
		}
		counts[chapter] = n
	}
	return counts, rows.Err()
}

// RunRecord is one committed run from the history table.
type RunRecord struct {
	ID        string `json:"id"`
	Book      string `json:"book"`
	CreatedAt string `json:"created_at"`
	Total     int    `json:"total"`
	Expected  int    `json:"expected"`
	Pass      bool   `json:"pass"`
	Inserted  int    `json:"inserted"`
	Skipped   int    `json:"skipped"`
	Conflicts int    `json:"conflicts"`
	Report    string `json:"report"`
}

// Runs returns committed runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit < 1 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, book, created_at, total, expected, pass, inserted, skipped, conflicts, report
		FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "reading run history")
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var pass int
		if err := rows.Scan(&r.ID, &r.Book, &r.CreatedAt, &r.Total, &r.Expected,
			&pass, &r.Inserted, &r.Skipped, &r.Conflicts, &r.Report); err != nil {
			return nil, errors.Wrap(err, "scanning run")
		}
		r.Pass = pass == 1
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
