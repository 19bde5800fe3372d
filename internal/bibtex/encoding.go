package bibtex

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultEncoding is used when no encoding is configured.
const DefaultEncoding = "utf-8"

// LookupEncoding resolves a WHATWG encoding label such as "utf-8",
// "latin1" or "windows-1252".
func LookupEncoding(label string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", label, err)
	}
	return enc, nil
}
