// Package month normalizes BibTeX month values to three-letter abbreviations.
package month

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// byName maps lowercase English month names and abbreviations to the
// canonical form.
var byName = map[string]string{
	"january": "Jan", "jan": "Jan",
	"february": "Feb", "feb": "Feb",
	"march": "Mar", "mar": "Mar",
	"april": "Apr", "apr": "Apr",
	"may": "May",
	"june": "Jun", "jun": "Jun",
	"july": "Jul", "jul": "Jul",
	"august": "Aug", "aug": "Aug",
	"september": "Sep", "sep": "Sep", "sept": "Sep",
	"october": "Oct", "oct": "Oct",
	"november": "Nov", "nov": "Nov",
	"december": "Dec", "dec": "Dec",
}

// byNumber maps month numbers, with or without a leading zero.
var byNumber = map[string]string{
	"1": "Jan", "01": "Jan",
	"2": "Feb", "02": "Feb",
	"3": "Mar", "03": "Mar",
	"4": "Apr", "04": "Apr",
	"5": "May", "05": "May",
	"6": "Jun", "06": "Jun",
	"7": "Jul", "07": "Jul",
	"8": "Aug", "08": "Aug",
	"9": "Sep", "09": "Sep",
	"10": "Oct",
	"11": "Nov",
	"12": "Dec",
}

// Normalize maps a month spelling or number to its three-letter form
// ("january", "JAN", "1" and "01" all give "Jan").
//
// Unrecognized input is returned trimmed with its first character
// uppercased; Normalize never fails.
func Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	key := strings.ToLower(trimmed)

	if m, ok := byName[key]; ok {
		return m
	}
	if m, ok := byNumber[key]; ok {
		return m
	}

	if trimmed == "" {
		return trimmed
	}
	r, size := utf8.DecodeRuneInString(trimmed)
	return string(unicode.ToUpper(r)) + trimmed[size:]
}
