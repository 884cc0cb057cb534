// Package epub reads EPUB containers into ordered corpus fragments.
//
// Fragment order follows the package document's spine. Containers without a
// usable container.xml or OPF fall back to the sorted part-numbered layout
// that print-replica books use.
package epub

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/openvedabase/gitabase/core/corpus"
	"github.com/openvedabase/gitabase/core/errors"
	"github.com/openvedabase/gitabase/core/xml"
)

const containerPath = "META-INF/container.xml"

// BookMetadata contains the package document's Dublin Core fields.
type BookMetadata struct {
	Title       string
	Author      string
	Language    string
	Identifier  string
	Publisher   string
	Description string
}

// Book is a read container: its metadata and its ordered document fragments.
// Fragment identifiers are paths relative to the package document's
// directory, matching file-map keys like "text/part0013.html".
type Book struct {
	Metadata  BookMetadata
	Fragments []corpus.Fragment
}

// Load reads an EPUB file from disk.
func Load(name string) (*Book, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", name)
	}
	book, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", name)
	}
	return book, nil
}

// Parse reads an EPUB from bytes.
func Parse(data []byte) (*Book, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(err, "opening archive")
	}

	entries := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		entries[f.Name] = f
	}

	book := &Book{}
	if opfPath, doc := packageDocument(entries); doc != nil {
		book.Metadata = readMetadata(doc)
		fragments, err := spineFragments(entries, opfPath, doc)
		if err != nil {
			return nil, err
		}
		if len(fragments) > 0 {
			book.Fragments = fragments
			return book, nil
		}
	}

	fragments, err := partFragments(zr)
	if err != nil {
		return nil, err
	}
	if len(fragments) == 0 {
		return nil, fmt.Errorf("container has no readable documents")
	}
	book.Fragments = fragments
	return book, nil
}

// packageDocument locates and parses the OPF. A nil document means the
// container layout is unusable and the caller falls back to part order.
func packageDocument(entries map[string]*zip.File) (string, *xml.Document) {
	raw, err := readEntry(entries[containerPath])
	if err != nil {
		return "", nil
	}
	container, err := xml.Parse(raw)
	if err != nil {
		return "", nil
	}
	rootfile, err := container.XPathFirst("//*[local-name()='rootfile']")
	if err != nil || rootfile == nil {
		return "", nil
	}
	opfPath := rootfile.Attr("full-path")
	raw, err = readEntry(entries[opfPath])
	if err != nil {
		return "", nil
	}
	doc, err := xml.Parse(raw)
	if err != nil {
		return "", nil
	}
	return opfPath, doc
}

// readMetadata extracts the Dublin Core fields present in the OPF.
func readMetadata(doc *xml.Document) BookMetadata {
	field := func(name string) string {
		node, err := doc.XPathFirst("//*[local-name()='" + name + "']")
		if err != nil || node == nil {
			return ""
		}
		return strings.TrimSpace(node.Text())
	}
	return BookMetadata{
		Title:       field("title"),
		Author:      field("creator"),
		Language:    field("language"),
		Identifier:  field("identifier"),
		Publisher:   field("publisher"),
		Description: field("description"),
	}
}

// spineFragments maps spine idrefs through the manifest to document entries,
// in spine order. Non-document items and dangling references are skipped.
func spineFragments(entries map[string]*zip.File, opfPath string, doc *xml.Document) ([]corpus.Fragment, error) {
	items, err := doc.XPath("//*[local-name()='item']")
	if err != nil {
		return nil, err
	}
	hrefs := make(map[string]string, len(items))
	types := make(map[string]string, len(items))
	for _, item := range items {
		hrefs[item.Attr("id")] = item.Attr("href")
		types[item.Attr("id")] = item.Attr("media-type")
	}

	refs, err := doc.XPath("//*[local-name()='itemref']")
	if err != nil {
		return nil, err
	}

	root := path.Dir(opfPath)
	var fragments []corpus.Fragment
	for _, ref := range refs {
		id := ref.Attr("idref")
		href, ok := hrefs[id]
		if !ok || !isDocument(href, types[id]) {
			continue
		}
		f := entries[resolveHref(root, href)]
		if f == nil {
			continue
		}
		raw, err := readEntry(f)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", f.Name)
		}
		fragments = append(fragments, corpus.NewFragment(path.Clean(href), len(fragments), raw))
	}
	return fragments, nil
}

// partFragments is the fallback order: every part-numbered document entry in
// the archive, sorted by name. Identifiers are the full entry paths.
func partFragments(zr *zip.Reader) ([]corpus.Fragment, error) {
	var files []*zip.File
	for _, f := range zr.File {
		base := path.Base(f.Name)
		if strings.Contains(base, "part") && isDocument(f.Name, "") {
			files = append(files, f)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	var fragments []corpus.Fragment
	for i, f := range files {
		raw, err := readEntry(f)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", f.Name)
		}
		fragments = append(fragments, corpus.NewFragment(f.Name, i, raw))
	}
	return fragments, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	if f == nil {
		return nil, fmt.Errorf("entry missing")
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// isDocument reports whether a manifest entry is text content worth
// extracting from.
func isDocument(href, mediaType string) bool {
	if strings.Contains(mediaType, "html") {
		return true
	}
	switch strings.ToLower(path.Ext(href)) {
	case ".html", ".xhtml", ".htm":
		return true
	}
	return false
}

// resolveHref joins a manifest href onto the package document's directory.
func resolveHref(root, href string) string {
	if root == "." || root == "" {
		return path.Clean(href)
	}
	return path.Join(root, href)
}
