// Package bibtex reads and writes BibTeX files.
package bibtex

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/matsen/bibfix/internal/reference"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// ErrInputNotFound is returned by ParseFile when the file does not exist.
var ErrInputNotFound = errors.New("input file not found")

// ParseError represents an error while parsing BibTeX source.
type ParseError struct {
	Line    int    // Line number where error occurred (1-indexed)
	Message string // Description of the error
	Context string // Surrounding content for debugging
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// standardMacros are the month macros every BibTeX style defines.
var standardMacros = map[string]string{
	"jan": "January", "feb": "February", "mar": "March", "apr": "April",
	"may": "May", "jun": "June", "jul": "July", "aug": "August",
	"sep": "September", "oct": "October", "nov": "November", "dec": "December",
}

// ParseFile parses the BibTeX file at path, decoding it from enc.
// A nil enc reads the file as UTF-8.
func ParseFile(path string, enc encoding.Encoding) ([]reference.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("opening bibliography: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if enc != nil {
		r = transform.NewReader(f, enc.NewDecoder())
	}
	return Parse(r)
}

// Parse reads BibTeX entries in source order.
//
// Supported syntax:
//   - @type{key, name = value, ...} and @type(key, ...)
//   - values in braces (nested braces kept verbatim), double quotes, bare
//     numbers and macro names, joined with #
//   - @string macros; @comment and @preamble blocks are skipped
//
// Text outside entries is ignored. Entry types are lowercased; field names
// keep their spelling.
func Parse(r io.Reader) ([]reference.Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading bibliography: %w", err)
	}

	p := &parser{src: string(data), macros: make(map[string]string)}
	for k, v := range standardMacros {
		p.macros[k] = v
	}
	return p.parse()
}

type parser struct {
	src    string
	pos    int
	macros map[string]string
}

func (p *parser) errorf(format string, args ...interface{}) error {
	if p.pos > len(p.src) {
		p.pos = len(p.src)
	}
	line := strings.Count(p.src[:p.pos], "\n") + 1

	start := strings.LastIndex(p.src[:p.pos], "\n") + 1
	end := strings.IndexByte(p.src[p.pos:], '\n')
	if end < 0 {
		end = len(p.src)
	} else {
		end += p.pos
	}

	return &ParseError{
		Line:    line,
		Message: fmt.Sprintf(format, args...),
		Context: strings.TrimSpace(p.src[start:end]),
	}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() byte {
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for !p.eof() && isSpace(p.peek()) {
		p.pos++
	}
}

func (p *parser) parse() ([]reference.Entry, error) {
	var entries []reference.Entry

	for {
		at := strings.IndexByte(p.src[p.pos:], '@')
		if at < 0 {
			return entries, nil
		}
		p.pos += at + 1

		// A stray @ (an e-mail address in a comment) is not an entry.
		entryType := p.readIdent()
		if entryType == "" {
			continue
		}
		p.skipSpace()
		if p.eof() || (p.peek() != '{' && p.peek() != '(') {
			continue
		}
		closer := byte('}')
		if p.peek() == '(' {
			closer = ')'
		}
		p.pos++

		switch strings.ToLower(entryType) {
		case "comment", "preamble":
			if err := p.skipBlock(closer); err != nil {
				return nil, err
			}
		case "string":
			if err := p.parseString(closer); err != nil {
				return nil, err
			}
		default:
			entry, err := p.parseEntry(entryType, closer)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		}
	}
}

// skipBlock skips to the closer that balances the opening delimiter.
func (p *parser) skipBlock(closer byte) error {
	depth := 0
	for ; !p.eof(); p.pos++ {
		c := p.peek()
		switch {
		case c == '{':
			depth++
		case c == '}' && depth > 0:
			depth--
		case c == closer && depth == 0:
			p.pos++
			return nil
		}
	}
	return p.errorf("unterminated block")
}

// parseString reads an @string{name = value} definition.
func (p *parser) parseString(closer byte) error {
	p.skipSpace()
	name := p.readFieldName()
	if name == "" {
		return p.errorf("expected macro name in @string")
	}
	p.skipSpace()
	if p.eof() || p.peek() != '=' {
		return p.errorf("expected = after macro name %q", name)
	}
	p.pos++

	value, err := p.parseValue()
	if err != nil {
		return err
	}
	p.skipSpace()
	if p.eof() || p.peek() != closer {
		return p.errorf("expected %c to close @string", closer)
	}
	p.pos++

	p.macros[strings.ToLower(name)] = value
	return nil
}

// parseEntry reads the body of a regular entry after its opening delimiter.
func (p *parser) parseEntry(entryType string, closer byte) (reference.Entry, error) {
	p.skipSpace()
	start := p.pos
	for !p.eof() && p.peek() != ',' && p.peek() != closer {
		p.pos++
	}
	key := strings.TrimSpace(p.src[start:p.pos])
	if key == "" || strings.ContainsAny(key, "= \t\n") {
		return reference.Entry{}, p.errorf("missing citation key in @%s", entryType)
	}
	if p.eof() {
		return reference.Entry{}, p.errorf("unterminated entry %s", key)
	}

	entry := reference.New(entryType, key)
	if p.peek() == closer {
		p.pos++
		return entry, nil
	}
	p.pos++ // comma

	for {
		p.skipSpace()
		if p.eof() {
			return reference.Entry{}, p.errorf("unterminated entry %s", key)
		}
		if p.peek() == closer {
			p.pos++
			return entry, nil
		}

		name := p.readFieldName()
		if name == "" {
			return reference.Entry{}, p.errorf("expected field name in entry %s", key)
		}
		p.skipSpace()
		if p.eof() || p.peek() != '=' {
			return reference.Entry{}, p.errorf("expected = after field %q in entry %s", name, key)
		}
		p.pos++

		value, err := p.parseValue()
		if err != nil {
			return reference.Entry{}, err
		}
		entry.Set(name, value)

		p.skipSpace()
		if p.eof() {
			return reference.Entry{}, p.errorf("unterminated entry %s", key)
		}
		switch p.peek() {
		case ',':
			p.pos++
		case closer:
			p.pos++
			return entry, nil
		default:
			return reference.Entry{}, p.errorf("expected , or %c after field %q in entry %s", closer, name, key)
		}
	}
}

// parseValue reads one or more value parts joined by #.
func (p *parser) parseValue() (string, error) {
	var b strings.Builder
	for {
		p.skipSpace()
		if p.eof() {
			return "", p.errorf("expected value")
		}

		part, err := p.parsePart()
		if err != nil {
			return "", err
		}
		b.WriteString(part)

		p.skipSpace()
		if p.eof() || p.peek() != '#' {
			return b.String(), nil
		}
		p.pos++
	}
}

func (p *parser) parsePart() (string, error) {
	switch c := p.peek(); {
	case c == '{':
		return p.readBraced()
	case c == '"':
		return p.readQuoted()
	default:
		word := p.readFieldName()
		if word == "" {
			return "", p.errorf("unexpected character %q in value", c)
		}
		if isNumber(word) {
			return word, nil
		}
		if v, ok := p.macros[strings.ToLower(word)]; ok {
			return v, nil
		}
		return word, nil
	}
}

// readBraced reads a {...} group and returns its content without the outer braces.
func (p *parser) readBraced() (string, error) {
	p.pos++ // {
	start := p.pos
	depth := 1
	for ; !p.eof(); p.pos++ {
		switch p.peek() {
		case '\\':
			p.pos++ // skip escaped character
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				value := p.src[start:p.pos]
				p.pos++
				return value, nil
			}
		}
	}
	return "", p.errorf("unbalanced braces in value")
}

// readQuoted reads a "..." value. Quotes inside braces do not terminate it.
func (p *parser) readQuoted() (string, error) {
	p.pos++ // "
	start := p.pos
	depth := 0
	for ; !p.eof(); p.pos++ {
		switch p.peek() {
		case '\\':
			p.pos++
		case '{':
			depth++
		case '}':
			depth--
		case '"':
			if depth == 0 {
				value := p.src[start:p.pos]
				p.pos++
				return value, nil
			}
		}
	}
	return "", p.errorf("unterminated quoted value")
}

func (p *parser) readIdent() string {
	start := p.pos
	for !p.eof() {
		c := p.peek()
		if !(isLetter(c) || isDigit(c) || c == '_' || c == '-') {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

// readFieldName reads a field name, macro name, or bare value.
func (p *parser) readFieldName() string {
	start := p.pos
	for !p.eof() && !strings.ContainsRune(" \t\r\n=,#{}()\"", rune(p.peek())) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func isLetter(c byte) bool {
	return c < 0x80 && unicode.IsLetter(rune(c))
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isNumber(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return s != ""
}
