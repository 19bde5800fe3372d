// Package titlecase rewrites BibTeX titles to sentence case.
//
// A title is split into whitespace and word spans. Each word is either
// preserved (acronyms, mixed-case names, words with digits, configured
// exceptions) or recased: capitalized when it starts
// the title or follows sentence punctuation, lowercased otherwise.
// Whitespace is copied verbatim, so the output has the same layout as the
// input.
package titlecase

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Action is the decision taken for a word.
type Action int

const (
	Recase Action = iota
	Preserve
)

func (a Action) String() string {
	if a == Preserve {
		return "preserve"
	}
	return "recase"
}

// sentenceEnd holds the punctuation after which the next word is capitalized.
const sentenceEnd = ".:;!?"

// Classify decides whether a word keeps its casing.
//
// A word is preserved when its lowercase or alphanumeric form is an
// exception, when it has two or more uppercase letters, when all of its
// letters are uppercase, or when it contains a digit.
func Classify(word string, exc ExceptionSet) Action {
	if exc.Contains(sanitize(word)) || exc.Contains(strings.ToLower(word)) {
		return Preserve
	}

	letters, upper := 0, 0
	for _, r := range word {
		if unicode.IsDigit(r) {
			return Preserve
		}
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}

	if upper >= 2 || (letters > 0 && upper == letters) {
		return Preserve
	}
	return Recase
}

// Apply rewrites title to sentence case, leaving exceptions untouched.
// Applying it twice gives the same result as applying it once.
func Apply(title string, exc ExceptionSet) string {
	if title == "" {
		return title
	}

	var b strings.Builder
	b.Grow(len(title))
	capitalizeNext := true

	for _, span := range Tokenize(title) {
		if span.Kind == SpanSpace {
			b.WriteString(span.Text)
			continue
		}

		switch {
		case sanitize(span.Text) == "":
			// Pure punctuation: the pending capitalization carries over.
			b.WriteString(span.Text)
			if endsSentence(span.Text) {
				capitalizeNext = true
			}
			continue
		case Classify(span.Text, exc) == Preserve:
			b.WriteString(span.Text)
		default:
			b.WriteString(recase(span.Text, capitalizeNext))
		}

		capitalizeNext = endsSentence(span.Text)
	}

	return b.String()
}

// recase lowercases every letter of word, uppercasing the first letter
// instead when capitalize is set. Non-letters are left alone.
func recase(word string, capitalize bool) string {
	var b strings.Builder
	b.Grow(len(word))
	first := true
	for _, r := range word {
		if unicode.IsLetter(r) {
			if first && capitalize {
				r = unicode.ToUpper(r)
			} else {
				r = unicode.ToLower(r)
			}
			first = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// endsSentence reports whether the last rune of chunk is sentence
// punctuation. A closing bracket or quote after it does not count.
func endsSentence(chunk string) bool {
	last, _ := utf8.DecodeLastRuneInString(chunk)
	return strings.ContainsRune(sentenceEnd, last)
}
