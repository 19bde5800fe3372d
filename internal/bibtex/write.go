package bibtex

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matsen/bibfix/internal/reference"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// Indent prefixes every field line.
const Indent = "    "

// CleanedSuffix is inserted before the extension of the input path.
const CleanedSuffix = "_cleaned"

// Format converts an entry to BibTeX text. Fields keep their order and are
// written in braces, one per line, with the comma at the end of the line.
func Format(e reference.Entry) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@%s{%s", e.Type, e.Key))
	for _, f := range e.Fields {
		b.WriteString(",\n")
		b.WriteString(fmt.Sprintf("%s%s = {%s}", Indent, f.Name, f.Value))
	}
	b.WriteString("\n}\n")

	return b.String()
}

// Write writes entries to w, separated by blank lines.
func Write(w io.Writer, entries []reference.Entry) error {
	for i, e := range entries {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, Format(e)); err != nil {
			return fmt.Errorf("writing entry %s: %w", e.Key, err)
		}
	}
	return nil
}

// WriteFile writes entries to path encoded with enc, replacing existing
// content. A nil enc writes UTF-8. Characters enc cannot represent are an
// error.
func WriteFile(path string, entries []reference.Entry, enc encoding.Encoding) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	var sink io.WriteCloser = nopCloser{f}
	if enc != nil {
		sink = transform.NewWriter(f, enc.NewEncoder())
	}

	w := bufio.NewWriter(sink)
	if err := Write(w, entries); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	if err := sink.Close(); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	return f.Close()
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// CleanedPath derives the output path for an input file:
// refs.bib becomes refs_cleaned.bib.
func CleanedPath(input string) string {
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + CleanedSuffix + ext
}
