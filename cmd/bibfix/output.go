package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/matsen/bibfix/internal/storage"
)

// outputJSON writes a value as formatted JSON.
func outputJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string.
func outputHuman(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format, args...)
}

// outputWarnings prints the missing-field section of a summary.
func outputWarnings(w io.Writer, warnings []string) {
	if len(warnings) == 0 {
		outputHuman(w, "No missing fields.\n")
		return
	}
	outputHuman(w, "Missing fields:\n")
	for _, warning := range warnings {
		outputHuman(w, "%s\n", warning)
	}
}

// CleanResponse is the JSON summary of the clean command.
type CleanResponse struct {
	Output   string              `json:"output"`
	Entries  int                 `json:"entries"`
	Dropped  []string            `json:"dropped,omitempty"`
	Changes  map[string][]string `json:"changes,omitempty"` // Rewrites applied, by entry key
	Warnings []storage.Warning   `json:"warnings"`
}

// CheckResponse is the JSON summary of the check command.
type CheckResponse struct {
	Entries  int               `json:"entries"`
	Warnings []storage.Warning `json:"warnings"`
}

// KeysResponse lists the citation keys of a manuscript.
type KeysResponse struct {
	Manuscript string   `json:"manuscript"`
	Keys       []string `json:"keys"`
}
