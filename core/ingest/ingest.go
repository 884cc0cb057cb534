// Package ingest orchestrates one full pipeline run: fragments are extracted
// in parallel, assembled in strict corpus order, and the result verified
// against the canonical count table. Nothing here writes to a store; the
// caller decides what to do with the outcome.
package ingest

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/openvedabase/gitabase/core/assemble"
	"github.com/openvedabase/gitabase/core/corpus"
	"github.com/openvedabase/gitabase/core/errors"
	"github.com/openvedabase/gitabase/core/extract"
	"github.com/openvedabase/gitabase/core/verify"
	"github.com/openvedabase/gitabase/core/verse"
	"github.com/openvedabase/gitabase/internal/logging"
)

// Options configures one run. Book, FileMap and Counts are required: a run
// with no file map or no count table has nothing to attribute or verify
// against.
type Options struct {
	Book    corpus.Book
	FileMap *corpus.FileMap
	Counts  *corpus.CountTable

	// Workers bounds the extraction pool. Zero means one worker per CPU.
	Workers int
}

// Outcome is everything the caller needs for the commit decision and the
// audit trail.
type Outcome struct {
	RunID      string
	Book       corpus.Book
	Verses     []verse.CanonicalVerse
	Sources    []string
	Report     verify.Report
	Warnings   []*errors.ParseWarning
	Failures   []*errors.ExtractionFailure
	Duplicates []*errors.DuplicateError
	Fragments  []corpus.Fragment
}

// extraction is one fragment's extracted segment stream, funneled back to
// the sequential assembly pass.
type extraction struct {
	fragment corpus.Fragment
	segments []extract.Segment
	err      error
}

// Run executes the pipeline over the given fragments. The verifier sees the
// full assembled collection, duplicates included; Outcome.Verses is the
// deduplicated batch for the store, first occurrence winning.
func Run(ctx context.Context, fragments []corpus.Fragment, opts Options) (*Outcome, error) {
	if err := validate(fragments, opts); err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	ctx = logging.WithRunID(ctx, runID)
	log := logging.LoggerFromContext(ctx)

	corpus.SortFragments(fragments)
	kept := gate(fragments, opts.FileMap, log)

	workers := opts.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	logging.RunStage("extract", "run_id", runID, "fragments", len(kept), "workers", workers)
	extracted := extractAll(kept, workers)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logging.RunStage("assemble", "run_id", runID)
	asm := assemble.New(opts.Book, opts.FileMap)
	for _, ex := range extracted {
		asm.EnterFragment(ex.fragment.ID)
		if ex.err != nil {
			asm.Consume(extract.Segment{Kind: extract.KindWarning, Text: ex.err.Error()})
			continue
		}
		for _, seg := range ex.segments {
			asm.Consume(seg)
		}
	}
	res := asm.Finish()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logging.RunStage("verify", "run_id", runID, "verses", len(res.Verses))
	report := verify.Check(res.Verses, opts.Book, opts.Counts)

	out := &Outcome{
		RunID:     runID,
		Book:      opts.Book,
		Report:    report,
		Warnings:  res.Warnings,
		Failures:  res.Failures,
		Fragments: kept,
	}
	out.Verses, out.Sources, out.Duplicates = dedupe(res.Verses, res.Sources)

	logging.RunStage("done", "run_id", runID,
		"verses", len(out.Verses),
		"warnings", len(out.Warnings),
		"failures", len(out.Failures),
		"duplicates", len(out.Duplicates),
		"pass", report.Pass)
	return out, nil
}

func validate(fragments []corpus.Fragment, opts Options) error {
	if err := corpus.ValidateFragments(fragments); err != nil {
		return err
	}
	if opts.Book.Code == "" || opts.Book.Chapters < 1 {
		return errors.NewConfiguration("book", "code and chapter range are required")
	}
	if opts.FileMap == nil || opts.FileMap.Len() == 0 {
		return errors.NewConfiguration("file map", "no entries to attribute fragments with")
	}
	if err := opts.FileMap.Validate(); err != nil {
		return err
	}
	if opts.Counts == nil {
		return errors.NewConfiguration("count table", "missing")
	}
	return opts.Counts.Validate()
}

// gate drops fragments that have no file-map entry and no verse content.
// Front matter mentions chapters in passing; scanning it would move the
// cursor for no benefit.
func gate(fragments []corpus.Fragment, fileMap *corpus.FileMap, log *slog.Logger) []corpus.Fragment {
	kept := make([]corpus.Fragment, 0, len(fragments))
	for _, f := range fragments {
		if _, mapped := fileMap.Lookup(f.ID); !mapped && !extract.HasVerseContent(f.Raw) {
			log.Debug("fragment skipped", "fragment", f.ID, "size", f.Size)
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

// extractAll runs extraction on a bounded worker pool and funnels the
// results back into ordinal order for assembly.
func extractAll(fragments []corpus.Fragment, workers int) []extraction {
	jobs := make(chan corpus.Fragment)
	results := make(chan extraction)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for f := range jobs {
				segs, err := extract.Extract(f.Raw)
				results <- extraction{fragment: f, segments: segs, err: err}
			}
		}()
	}

	go func() {
		for _, f := range fragments {
			jobs <- f
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	extracted := make([]extraction, 0, len(fragments))
	for ex := range results {
		extracted = append(extracted, ex)
	}
	sort.Slice(extracted, func(i, j int) bool {
		return extracted[i].fragment.Ordinal < extracted[j].fragment.Ordinal
	})
	return extracted
}

// dedupe keeps the first record per fingerprint and classifies the rest.
func dedupe(verses []verse.CanonicalVerse, sources []string) ([]verse.CanonicalVerse, []string, []*errors.DuplicateError) {
	seen := make(map[string]bool, len(verses))
	keptVerses := make([]verse.CanonicalVerse, 0, len(verses))
	keptSources := make([]string, 0, len(sources))
	var dups []*errors.DuplicateError

	for i, v := range verses {
		if seen[v.Fingerprint] {
			source := ""
			if i < len(sources) {
				source = sources[i]
			}
			dup := errors.NewDuplicate(v.Fingerprint, source)
			dups = append(dups, dup)
			logging.Warn("duplicate record dropped",
				"fingerprint", v.Fingerprint, "fragment", source, "ref", v.Ref())
			continue
		}
		seen[v.Fingerprint] = true
		keptVerses = append(keptVerses, v)
		if i < len(sources) {
			keptSources = append(keptSources, sources[i])
		}
	}
	return keptVerses, keptSources, dups
}
