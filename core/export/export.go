// Package export writes verified store content as a portable snapshot:
// a verses.jsonl record stream plus a manifest, tarred and compressed.
package export

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/openvedabase/gitabase/core/errors"
	"github.com/openvedabase/gitabase/core/store"
)

// Injectable functions for testing
var (
	xzNewWriter        = xz.NewWriter
	gzipNewWriterLevel = gzip.NewWriterLevel
)

// Compression selects the snapshot's compression algorithm.
type Compression string

const (
	// CompressionXZ uses XZ/LZMA2 compression (default, best ratio).
	CompressionXZ Compression = "xz"
	// CompressionGzip uses gzip compression (stdlib, faster).
	CompressionGzip Compression = "gzip"
)

// Options configures a snapshot.
type Options struct {
	// Book is the book code to export.
	Book string
	// Compression selects the archive compression. Defaults to XZ.
	Compression Compression
	// Version is the tool version stamped into the manifest.
	Version string
}

// Manifest describes a snapshot's content.
type Manifest struct {
	Book      string      `json:"book"`
	Records   int         `json:"records"`
	Chapters  map[int]int `json:"chapters"`
	CreatedAt string      `json:"created_at"`
	Tool      string      `json:"tool"`
	Version   string      `json:"version,omitempty"`
}

// Snapshot writes the store's records for one book to an archive at out.
// Record order is canonical: chapter, then first covered number. The archive
// holds manifest.json first, then verses.jsonl with one record per line.
func Snapshot(ctx context.Context, st *store.Store, out string, opts Options) (*Manifest, error) {
	if opts.Book == "" {
		return nil, errors.NewConfiguration("book", "missing")
	}

	verses, err := st.Verses(ctx, opts.Book)
	if err != nil {
		return nil, err
	}
	if len(verses) == 0 {
		return nil, errors.NewNotFound("book", opts.Book)
	}

	manifest := &Manifest{
		Book:      opts.Book,
		Records:   len(verses),
		Chapters:  make(map[int]int),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Tool:      "gitabase",
		Version:   opts.Version,
	}

	var records bytes.Buffer
	enc := json.NewEncoder(&records)
	for _, v := range verses {
		manifest.Chapters[v.Chapter]++
		if err := enc.Encode(v); err != nil {
			return nil, errors.Wrapf(err, "encoding %s", v.Ref())
		}
	}

	manifestData, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encoding manifest")
	}

	f, err := os.Create(out)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s", out)
	}
	if err := writeArchive(f, opts.Compression, manifestData, records.Bytes()); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, errors.Wrapf(err, "closing %s", out)
	}
	return manifest, nil
}

func writeArchive(w io.Writer, compression Compression, manifest, records []byte) error {
	cw, err := newCompressor(w, compression)
	if err != nil {
		return err
	}
	tw := tar.NewWriter(cw)
	if err := writeToTar(tw, "manifest.json", manifest); err != nil {
		return err
	}
	if err := writeToTar(tw, "verses.jsonl", records); err != nil {
		return err
	}
	if err := tw.Close(); err != nil {
		return errors.Wrap(err, "closing archive")
	}
	if err := cw.Close(); err != nil {
		return errors.Wrap(err, "closing compressor")
	}
	return nil
}

func newCompressor(w io.Writer, compression Compression) (io.WriteCloser, error) {
	switch compression {
	case CompressionGzip:
		zw, err := gzipNewWriterLevel(w, gzip.BestCompression)
		if err != nil {
			return nil, errors.Wrap(err, "creating gzip writer")
		}
		return zw, nil
	case CompressionXZ, "":
		zw, err := xzNewWriter(w)
		if err != nil {
			return nil, errors.Wrap(err, "creating xz writer")
		}
		return zw, nil
	default:
		return nil, errors.NewConfiguration("compression",
			fmt.Sprintf("unknown format %q", compression))
	}
}

func writeToTar(tw *tar.Writer, name string, data []byte) error {
	header := &tar.Header{
		Name: name,
		Mode: 0o644,
		Size: int64(len(data)),
	}
	if err := tw.WriteHeader(header); err != nil {
		return errors.Wrapf(err, "writing %s header", name)
	}
	if _, err := tw.Write(data); err != nil {
		return errors.Wrapf(err, "writing %s", name)
	}
	return nil
}

// DetectCompression reports a snapshot archive's compression from its magic
// bytes.
func DetectCompression(name string) (Compression, error) {
	f, err := os.Open(name)
	if err != nil {
		return "", errors.Wrapf(err, "opening %s", name)
	}
	defer f.Close()

	magic := make([]byte, 6)
	n, err := f.Read(magic)
	if err != nil {
		return "", errors.Wrapf(err, "reading %s", name)
	}
	switch {
	case n >= 2 && magic[0] == 0x1f && magic[1] == 0x8b:
		return CompressionGzip, nil
	case n >= 6 && bytes.Equal(magic, []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}):
		return CompressionXZ, nil
	}
	return "", fmt.Errorf("unknown archive format")
}
