package gvariant

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Parse reads one value in GVariant text format. The result is a string,
// bool, float64, int64 or []string.
func Parse(text string) (any, error) {
	p := &parser{src: text}
	p.skipSpace()
	p.skipAnnotation()
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("trailing data")
	}
	return v, nil
}

// ParseString parses a quoted string.
func ParseString(text string) (string, error) {
	v, err := Parse(text)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("gvariant: %q is not a string", text)
	}
	return s, nil
}

// ParseBool parses true or false.
func ParseBool(text string) (bool, error) {
	v, err := Parse(text)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("gvariant: %q is not a boolean", text)
	}
	return b, nil
}

// ParseDouble parses a number. Integer literals are accepted because dconf
// users commonly write them for double keys.
func ParseDouble(text string) (float64, error) {
	v, err := Parse(text)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("gvariant: %q is not a number", text)
	}
}

// ParseStringArray parses an array of strings.
func ParseStringArray(text string) ([]string, error) {
	v, err := Parse(text)
	if err != nil {
		return nil, err
	}
	a, ok := v.([]string)
	if !ok {
		return nil, fmt.Errorf("gvariant: %q is not a string array", text)
	}
	return a, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("gvariant: "+format+" at offset %d in %q", append(args, p.pos, p.src)...)
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

// skipAnnotation drops a leading "@type" annotation such as "@as".
func (p *parser) skipAnnotation() {
	if p.pos >= len(p.src) || p.src[p.pos] != '@' {
		return
	}
	for p.pos < len(p.src) && p.src[p.pos] != ' ' {
		p.pos++
	}
	p.skipSpace()
}

func (p *parser) value() (any, error) {
	if p.pos >= len(p.src) {
		return nil, p.errorf("unexpected end of input")
	}
	switch c := p.src[p.pos]; {
	case c == '\'' || c == '"':
		return p.str()
	case c == '[':
		return p.array()
	case strings.HasPrefix(p.src[p.pos:], "true"):
		p.pos += len("true")
		return true, nil
	case strings.HasPrefix(p.src[p.pos:], "false"):
		p.pos += len("false")
		return false, nil
	default:
		return p.number()
	}
}

func (p *parser) str() (string, error) {
	quote := p.src[p.pos]
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == quote:
			p.pos++
			return b.String(), nil
		case c == '\\':
			if err := p.escape(&b); err != nil {
				return "", err
			}
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			b.WriteRune(r)
			p.pos += size
		}
	}
	return "", p.errorf("unterminated string")
}

func (p *parser) escape(b *strings.Builder) error {
	p.pos++
	if p.pos >= len(p.src) {
		return p.errorf("unterminated escape")
	}
	c := p.src[p.pos]
	p.pos++
	switch c {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'v':
		b.WriteByte('\v')
	case 'u', 'U':
		n := 4
		if c == 'U' {
			n = 8
		}
		if p.pos+n > len(p.src) {
			return p.errorf("short unicode escape")
		}
		code, err := strconv.ParseUint(p.src[p.pos:p.pos+n], 16, 32)
		if err != nil {
			return p.errorf("invalid unicode escape")
		}
		b.WriteRune(rune(code))
		p.pos += n
	default:
		// \' \" \\ and any other escaped character stand for themselves.
		b.WriteByte(c)
	}
	return nil
}

func (p *parser) array() ([]string, error) {
	p.pos++
	values := []string{}
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == ']' {
		p.pos++
		return values, nil
	}
	for {
		p.skipSpace()
		if p.pos >= len(p.src) || (p.src[p.pos] != '\'' && p.src[p.pos] != '"') {
			return nil, p.errorf("expected string element")
		}
		s, err := p.str()
		if err != nil {
			return nil, err
		}
		values = append(values, s)
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, p.errorf("unterminated array")
		}
		switch p.src[p.pos] {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return values, nil
		default:
			return nil, p.errorf("expected ',' or ']'")
		}
	}
}

func (p *parser) number() (any, error) {
	start := p.pos
	for p.pos < len(p.src) && strings.IndexByte("+-.0123456789eEinfa", p.src[p.pos]) >= 0 {
		p.pos++
	}
	lit := p.src[start:p.pos]
	if lit == "" {
		return nil, p.errorf("unexpected character %q", p.src[p.pos])
	}
	if n, err := strconv.ParseInt(lit, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		p.pos = start
		return nil, p.errorf("invalid number %q", lit)
	}
	return f, nil
}
