package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/openvedabase/gitabase/core/corpus"
	"github.com/openvedabase/gitabase/core/errors"
	"github.com/openvedabase/gitabase/core/verify"
	"github.com/openvedabase/gitabase/core/verse"
	"github.com/openvedabase/gitabase/internal/logging"
)

// Batch is one run's worth of verified records plus its report and
// provenance, handed over for the commit decision.
type Batch struct {
	RunID     string
	Book      corpus.Book
	Verses    []verse.CanonicalVerse
	Report    verify.Report
	Fragments []corpus.Fragment
}

// WriteResult describes what a WriteBatch call did.
type WriteResult struct {
	RunID     string
	Inserted  int
	Skipped   int
	Conflicts []*errors.ConflictError
	Committed bool
}

// WriteBatch commits a batch in a single transaction. The write happens only
// when the report passed or force is set; otherwise nothing touches the
// database and Committed is false. Within a committed batch, writes are
// insert-if-absent keyed by fingerprint: an existing equivalent row is
// skipped, a clash on fingerprint or on (book, chapter, designator) with a
// different payload is rejected as a conflict while the rest proceeds.
func (s *Store) WriteBatch(ctx context.Context, batch Batch, force bool) (*WriteResult, error) {
	res := &WriteResult{RunID: batch.RunID}
	if !batch.Report.Pass && !force {
		logging.StoreCommit(s.path, 0, 0, 0, false, "run_id", batch.RunID, "reason", "verification failed")
		return res, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "beginning store transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC().Format(time.RFC3339)
	for _, v := range batch.Verses {
		if err := s.writeVerse(ctx, tx, v, batch.RunID, now, res); err != nil {
			return nil, err
		}
	}
	if err := s.writeRun(ctx, tx, batch, now, res); err != nil {
		return nil, err
	}
	if err := s.writeFragments(ctx, tx, batch); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "committing store transaction")
	}
	res.Committed = true
	logging.StoreCommit(s.path, res.Inserted, res.Skipped, len(res.Conflicts), true, "run_id", batch.RunID)
	return res, nil
}

func (s *Store) writeVerse(ctx context.Context, tx *sql.Tx, v verse.CanonicalVerse, runID, now string, res *WriteResult) error {
	existing, err := scanVerse(tx.QueryRowContext(ctx, `
		SELECT fingerprint, book, chapter, designator, sanskrit, glosses, translation, commentary
		FROM verses WHERE fingerprint = ?`, v.Fingerprint))
	switch {
	case err == nil:
		if v.Equivalent(existing) {
			res.Skipped++
			return nil
		}
		res.Conflicts = append(res.Conflicts, conflict(v))
		return nil
	case err != sql.ErrNoRows:
		return errors.Wrapf(err, "looking up fingerprint %s", v.Fingerprint)
	}

	var clash string
	err = tx.QueryRowContext(ctx, `
		SELECT fingerprint FROM verses WHERE book = ? AND chapter = ? AND designator = ?`,
		v.Book, v.Chapter, v.Designator).Scan(&clash)
	switch {
	case err == nil:
		res.Conflicts = append(res.Conflicts, conflict(v))
		return nil
	case err != sql.ErrNoRows:
		return errors.Wrapf(err, "looking up reference %s", v.Ref())
	}

	d, err := verse.ParseDesignator(v.Designator)
	if err != nil {
		return errors.Wrapf(err, "parsing designator of %s", v.Ref())
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO verses (fingerprint, book, chapter, designator, verse_first, verse_last,
			sanskrit, glosses, translation, commentary, run_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.Fingerprint, v.Book, v.Chapter, v.Designator, d.First, d.Last,
		v.Sanskrit, v.Glosses, v.Translation, v.Commentary, runID, now); err != nil {
		return errors.Wrapf(err, "inserting %s", v.Ref())
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO verse_search (fingerprint, sanskrit, glosses, translation, commentary)
		VALUES (?, ?, ?, ?, ?)`,
		v.Fingerprint, v.Sanskrit, v.Glosses, v.Translation, v.Commentary); err != nil {
		return errors.Wrapf(err, "indexing %s", v.Ref())
	}
	res.Inserted++
	return nil
}

func (s *Store) writeRun(ctx context.Context, tx *sql.Tx, batch Batch, now string, res *WriteResult) error {
	report, err := json.Marshal(batch.Report)
	if err != nil {
		return errors.Wrap(err, "encoding report")
	}
	pass := 0
	if batch.Report.Pass {
		pass = 1
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (id, book, created_at, total, expected, pass, inserted, skipped, conflicts, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		batch.RunID, batch.Book.Code, now,
		batch.Report.Total, batch.Report.Expected, pass,
		res.Inserted, res.Skipped, len(res.Conflicts), string(report)); err != nil {
		return errors.Wrapf(err, "recording run %s", batch.RunID)
	}
	return nil
}

func (s *Store) writeFragments(ctx context.Context, tx *sql.Tx, batch Batch) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fragments (run_id, id, ordinal, sha256, blake3, size)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "preparing fragment insert")
	}
	defer stmt.Close()

	for _, f := range batch.Fragments {
		if _, err := stmt.ExecContext(ctx, batch.RunID, f.ID, f.Ordinal, f.SHA256, f.BLAKE3, f.Size); err != nil {
			return errors.Wrapf(err, "recording fragment %s", f.ID)
		}
	}
	return nil
}

func conflict(v verse.CanonicalVerse) *errors.ConflictError {
	return errors.NewConflict(v.Fingerprint, v.Book, v.Chapter, v.Designator)
}

func scanVerse(row *sql.Row) (verse.CanonicalVerse, error) {
	var v verse.CanonicalVerse
	err := row.Scan(&v.Fingerprint, &v.Book, &v.Chapter, &v.Designator,
		&v.Sanskrit, &v.Glosses, &v.Translation, &v.Commentary)
	return v, err
}
