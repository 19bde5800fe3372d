package titlecase

import "unicode"

// SpanKind tags a span produced by Tokenize.
type SpanKind int

const (
	SpanSpace SpanKind = iota // A run of whitespace
	SpanWord                  // A run of non-whitespace
)

func (k SpanKind) String() string {
	if k == SpanSpace {
		return "space"
	}
	return "word"
}

// Span is one chunk of a title.
type Span struct {
	Kind SpanKind
	Text string
}

// Tokenize splits s into alternating whitespace and word spans.
// Concatenating the Text of every span yields s exactly.
func Tokenize(s string) []Span {
	var spans []Span

	start := 0
	inSpace := false
	flush := func(end int) {
		if end <= start {
			return
		}
		kind := SpanWord
		if inSpace {
			kind = SpanSpace
		}
		spans = append(spans, Span{Kind: kind, Text: s[start:end]})
	}

	for i, r := range s {
		space := unicode.IsSpace(r)
		if i == 0 {
			inSpace = space
			continue
		}
		if space != inSpace {
			flush(i)
			start = i
			inSpace = space
		}
	}
	flush(len(s))

	return spans
}
