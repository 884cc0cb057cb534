// Command gitabase is the CLI for the verse ingestion pipeline.
// It converts an EPUB source into verified canonical verse records, keeps
// them in a SQLite store with a full-text index, and exports snapshots.
package main

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/openvedabase/gitabase/core/corpus"
	"github.com/openvedabase/gitabase/core/epub"
	"github.com/openvedabase/gitabase/core/export"
	"github.com/openvedabase/gitabase/core/ingest"
	"github.com/openvedabase/gitabase/core/store"
	"github.com/openvedabase/gitabase/core/verify"
	"github.com/openvedabase/gitabase/internal/logging"
)

const version = "0.1.0"

// CLI defines the command-line interface for gitabase.
var CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" help:"Log level" enum:"debug,info,warn,error" default:"info"`
	LogFormat string `name:"log-format" help:"Log output format" enum:"text,json" default:"text"`

	Ingest  IngestCmd  `cmd:"" help:"Run the full pipeline: extract, assemble, verify, store"`
	Verify  VerifyCmd  `cmd:"" help:"Recount a persisted store against the canonical table"`
	Search  SearchCmd  `cmd:"" help:"Full-text search over stored verses"`
	Export  ExportCmd  `cmd:"" help:"Write a snapshot archive of the store"`
	Runs    RunsCmd    `cmd:"" help:"List ingestion runs on record"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// IngestCmd runs the whole pipeline over one EPUB.
type IngestCmd struct {
	Epub    string `arg:"" help:"Path to the source EPUB" type:"existingfile"`
	DB      string `name:"db" required:"" help:"SQLite store path" type:"path"`
	Book    string `help:"Book code" default:"BG"`
	FileMap string `name:"file-map" help:"Fragment-to-chapter overlay JSON (default: built-in)" type:"existingfile"`
	Counts  string `help:"Canonical count table JSON (default: built-in)" type:"existingfile"`
	Workers int    `help:"Extraction workers (default: one per CPU)"`
	Force   bool   `help:"Commit even when verification fails"`
	DryRun  bool   `name:"dry-run" help:"Run the pipeline without writing the store"`
}

func (c *IngestCmd) Run() error {
	ctx := context.Background()

	book, fileMap, counts, err := loadConfig(c.Book, c.FileMap, c.Counts)
	if err != nil {
		return err
	}

	src, err := epub.Load(c.Epub)
	if err != nil {
		return err
	}
	logging.Info("container loaded",
		"path", c.Epub, "fragments", len(src.Fragments), "title", src.Metadata.Title)

	out, err := ingest.Run(ctx, src.Fragments, ingest.Options{
		Book:    book,
		FileMap: fileMap,
		Counts:  counts,
		Workers: c.Workers,
	})
	if err != nil {
		return err
	}
	printOutcome(out)

	if c.DryRun {
		fmt.Println("Dry run: store not written")
		if !out.Report.Pass && !c.Force {
			return fmt.Errorf("verification failed")
		}
		return nil
	}

	st, err := store.Open(c.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	res, err := st.WriteBatch(ctx, store.Batch{
		RunID:     out.RunID,
		Book:      book,
		Verses:    out.Verses,
		Report:    out.Report,
		Fragments: out.Fragments,
	}, c.Force)
	if err != nil {
		return err
	}
	if !res.Committed {
		return fmt.Errorf("verification failed; store not written (use --force to override)")
	}

	fmt.Printf("Committed %d records to %s (%d already present, %d conflicts)\n",
		res.Inserted, c.DB, res.Skipped, len(res.Conflicts))
	for _, conflict := range res.Conflicts {
		fmt.Printf("  conflict: %v\n", conflict)
	}
	return nil
}

// VerifyCmd recounts the persisted store against the canonical table.
type VerifyCmd struct {
	DB      string `name:"db" required:"" help:"SQLite store path" type:"existingfile"`
	Book    string `help:"Book code" default:"BG"`
	Counts  string `help:"Canonical count table JSON (default: built-in)" type:"existingfile"`
	Missing bool   `help:"List per-chapter verse numbers no record covers"`
}

func (c *VerifyCmd) Run() error {
	ctx := context.Background()

	book, _, counts, err := loadConfig(c.Book, "", c.Counts)
	if err != nil {
		return err
	}

	st, err := store.Open(c.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	verses, err := st.Verses(ctx, book.Code)
	if err != nil {
		return err
	}

	report := verify.Check(verses, book, counts)
	fmt.Println(report.Summary())
	for _, d := range report.Deltas {
		fmt.Printf("  chapter %d: expected %d, got %d\n", d.Chapter, d.Expected, d.Actual)
	}
	if c.Missing {
		for _, g := range report.Gaps {
			fmt.Printf("  chapter %d missing verses: %v\n", g.Chapter, g.Missing)
		}
	}
	if !report.Pass {
		return fmt.Errorf("verification failed")
	}
	return nil
}

// SearchCmd queries the full-text index.
type SearchCmd struct {
	Query string `arg:"" help:"Full-text match expression"`
	DB    string `name:"db" required:"" help:"SQLite store path" type:"existingfile"`
	Limit int    `help:"Maximum results" default:"10"`
}

func (c *SearchCmd) Run() error {
	st, err := store.Open(c.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	results, err := st.Search(context.Background(), c.Query, c.Limit)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("No matches.")
		return nil
	}
	for _, r := range results {
		fmt.Printf("%-10s %s\n", r.Verse.Ref(), r.Snippet)
	}
	return nil
}

// ExportCmd writes a snapshot archive of the store.
type ExportCmd struct {
	DB     string `name:"db" required:"" help:"SQLite store path" type:"existingfile"`
	Out    string `required:"" help:"Archive output path" type:"path"`
	Book   string `help:"Book code" default:"BG"`
	Format string `help:"Archive compression" enum:"xz,gzip" default:"xz"`
}

func (c *ExportCmd) Run() error {
	st, err := store.Open(c.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	manifest, err := export.Snapshot(context.Background(), st, c.Out, export.Options{
		Book:        c.Book,
		Compression: export.Compression(c.Format),
		Version:     version,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Exported %d records (%d chapters) to %s\n",
		manifest.Records, len(manifest.Chapters), c.Out)
	return nil
}

// RunsCmd lists ingestion runs on record, newest first.
type RunsCmd struct {
	DB    string `name:"db" required:"" help:"SQLite store path" type:"existingfile"`
	Limit int    `help:"Maximum runs to list" default:"20"`
}

func (c *RunsCmd) Run() error {
	st, err := store.Open(c.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.Runs(context.Background(), c.Limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs on record.")
		return nil
	}
	for _, r := range runs {
		verdict := "FAIL"
		if r.Pass {
			verdict = "PASS"
		}
		fmt.Printf("%s  %s  %s  %d/%d records  %d inserted  %d skipped  %d conflicts\n",
			r.CreatedAt, r.ID, verdict, r.Total, r.Expected, r.Inserted, r.Skipped, r.Conflicts)
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("gitabase version %s\n", version)
	return nil
}

// loadConfig resolves the book, file map and count table from flags, falling
// back to the built-in reference corpus configuration.
func loadConfig(bookCode, fileMapPath, countsPath string) (corpus.Book, *corpus.FileMap, *corpus.CountTable, error) {
	fileMap := corpus.DefaultFileMap()
	if fileMapPath != "" {
		m, err := corpus.LoadFileMap(fileMapPath)
		if err != nil {
			return corpus.Book{}, nil, nil, err
		}
		fileMap = m
	}

	counts := corpus.DefaultCountTable()
	if countsPath != "" {
		t, err := corpus.LoadCountTable(countsPath)
		if err != nil {
			return corpus.Book{}, nil, nil, err
		}
		counts = t
	}

	book := corpus.DefaultBook()
	if bookCode != "" && bookCode != book.Code {
		// An unfamiliar book code takes its chapter range from the table.
		book = corpus.Book{Code: bookCode, Title: bookCode, Chapters: counts.MaxChapter()}
	}
	return book, fileMap, counts, nil
}

func printOutcome(out *ingest.Outcome) {
	fmt.Printf("Run %s\n", out.RunID)
	fmt.Println(out.Report.Summary())
	for _, d := range out.Report.Deltas {
		fmt.Printf("  chapter %d: expected %d, got %d\n", d.Chapter, d.Expected, d.Actual)
	}
	if n := len(out.Failures); n > 0 {
		fmt.Printf("  %d records dropped during assembly\n", n)
	}
	if n := len(out.Duplicates); n > 0 {
		fmt.Printf("  %d duplicate records dropped\n", n)
	}
	if n := len(out.Warnings); n > 0 {
		fmt.Printf("  %d parse warnings\n", n)
	}
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("gitabase"),
		kong.Description("Deterministic verse ingestion for the Bhagavad-gita corpus"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	format := logging.FormatText
	if CLI.LogFormat == "json" {
		format = logging.FormatJSON
	}
	logging.InitLogger(logging.ParseLevel(CLI.LogLevel), format)

	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
