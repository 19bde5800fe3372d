// Package citekey extracts citation keys from LaTeX manuscripts.
package citekey

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
)

// maxLineCapacity bounds a single manuscript line (1MB).
const maxLineCapacity = 1024 * 1024

// Set is a set of citation keys. A nil Set means "no filtering".
type Set map[string]struct{}

// Has reports whether key is in the set.
func (s Set) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Sorted returns the keys in lexical order.
func (s Set) Sorted() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// citeRegex matches \cite, \citet and \citep (optionally starred, with up to
// two [...] optional arguments) and captures the braced key list. [^}] also
// matches newlines, so key lists may span lines.
var citeRegex = regexp.MustCompile(`\\cite[tp]?\*?(?:\s*\[[^\]]*\]){0,2}\s*\{([^}]*)\}`)

// Extract reads a LaTeX document and returns every cited key.
// Lines whose first non-whitespace character is % are ignored.
func Extract(r io.Reader) (Set, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, maxLineCapacity)
	scanner.Buffer(buf, maxLineCapacity)

	var text strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "%") {
			continue
		}
		text.WriteString(line)
		text.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading manuscript: %w", err)
	}

	keys := make(Set)
	for _, m := range citeRegex.FindAllStringSubmatch(text.String(), -1) {
		for _, key := range strings.Split(m[1], ",") {
			if key = strings.TrimSpace(key); key != "" {
				keys[key] = struct{}{}
			}
		}
	}
	return keys, nil
}

// ExtractFile extracts keys from the manuscript at path.
// A missing file returns a nil Set and no error.
func ExtractFile(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening manuscript: %w", err)
	}
	defer f.Close()

	return Extract(f)
}
