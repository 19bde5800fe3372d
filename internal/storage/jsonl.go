// Package storage persists cleaning reports as JSONL, one warning per line.
package storage

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/matsen/bibfix/internal/clean"
)

// Warning records the required fields missing from one cleaned entry.
type Warning struct {
	Key     string   `json:"key"`
	Type    string   `json:"type"`
	Missing []string `json:"missing"`
	Message string   `json:"message"`
}

// WarningsFrom collects a Warning for every result with missing fields,
// in result order.
func WarningsFrom(results []clean.Result) []Warning {
	var warnings []Warning
	for _, r := range results {
		if len(r.Missing) == 0 {
			continue
		}
		warnings = append(warnings, Warning{
			Key:     r.Entry.Key,
			Type:    r.Entry.Type,
			Missing: r.Missing,
			Message: r.Warning,
		})
	}
	return warnings
}

// ReadAll reads all warnings from a JSONL report. A missing file reads as
// an empty report.
func ReadAll(path string) ([]Warning, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening report: %w", err)
	}
	defer f.Close()

	var warnings []Warning
	dec := json.NewDecoder(bufio.NewReader(f))
	for {
		var w Warning
		err := dec.Decode(&w)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing warning %d: %w", len(warnings)+1, err)
		}
		warnings = append(warnings, w)
	}

	return warnings, nil
}

// NewSince returns the warnings in current that do not appear in baseline.
// Warnings are matched by entry key and message, so an entry that gained
// or lost a missing field counts as new.
func NewSince(baseline, current []Warning) []Warning {
	seen := make(map[[2]string]bool, len(baseline))
	for _, w := range baseline {
		seen[[2]string{w.Key, w.Message}] = true
	}

	var fresh []Warning
	for _, w := range current {
		if !seen[[2]string{w.Key, w.Message}] {
			fresh = append(fresh, w)
		}
	}
	return fresh
}

// WriteAll writes all warnings to a JSONL file, replacing existing content.
// An empty slice produces an empty file.
func WriteAll(path string, warnings []Warning) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}

	w := bufio.NewWriter(f)
	for i, warning := range warnings {
		data, err := json.Marshal(warning)
		if err != nil {
			f.Close()
			return fmt.Errorf("encoding warning %d: %w", i, err)
		}
		w.Write(data)
		w.WriteByte('\n')
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing report: %w", err)
	}

	return nil
}
