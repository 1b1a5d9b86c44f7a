package value

import (
	"fmt"
	"strings"
)

// FormatHstore renders d in hstore output form:
//
//	"a"=>"1", "b"=>NULL
//
// Pairs appear in storage order.
func FormatHstore(d Dict) string {
	var b strings.Builder
	for i, k := range d.Keys() {
		if i > 0 {
			b.WriteString(", ")
		}
		writeHstoreQuoted(&b, k)
		b.WriteString("=>")
		if v := d[k]; v != nil {
			writeHstoreQuoted(&b, *v)
		} else {
			b.WriteString("NULL")
		}
	}
	return b.String()
}

func writeHstoreQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
}

// ParseHstore parses hstore input form. Keys and values may be quoted or
// bare; a bare NULL (any case) value is SQL NULL. For duplicate keys the
// first occurrence wins.
func ParseHstore(s string) (Dict, error) {
	p := &hstoreParser{src: s}
	d := Dict{}
	p.skipSpace()
	for !p.done() {
		key, quoted, err := p.token()
		if err != nil {
			return nil, err
		}
		if !quoted && strings.EqualFold(key, "null") {
			return nil, p.errorf("NULL key")
		}
		p.skipSpace()
		if !strings.HasPrefix(p.src[p.pos:], "=>") {
			return nil, p.errorf("expected =>")
		}
		p.pos += 2
		p.skipSpace()
		val, quoted, err := p.token()
		if err != nil {
			return nil, err
		}
		if _, dup := d[key]; !dup {
			if !quoted && strings.EqualFold(val, "null") {
				d[key] = nil
			} else {
				d[key] = Str(val)
			}
		}
		p.skipSpace()
		if p.done() {
			break
		}
		if p.src[p.pos] != ',' {
			return nil, p.errorf("expected ','")
		}
		p.pos++
		p.skipSpace()
	}
	return d, nil
}

type hstoreParser struct {
	src string
	pos int
}

func (p *hstoreParser) done() bool { return p.pos >= len(p.src) }

func (p *hstoreParser) errorf(format string, args ...any) error {
	return fmt.Errorf("hstore at offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *hstoreParser) skipSpace() {
	for !p.done() && isHstoreSpace(p.src[p.pos]) {
		p.pos++
	}
}

func isHstoreSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// token reads a quoted or bare word.
func (p *hstoreParser) token() (string, bool, error) {
	if p.done() {
		return "", false, p.errorf("unexpected end of input")
	}
	var b strings.Builder
	if p.src[p.pos] == '"' {
		p.pos++
		for {
			if p.done() {
				return "", true, p.errorf("unterminated quoted string")
			}
			c := p.src[p.pos]
			p.pos++
			switch c {
			case '\\':
				if p.done() {
					return "", true, p.errorf("dangling escape")
				}
				b.WriteByte(p.src[p.pos])
				p.pos++
			case '"':
				return b.String(), true, nil
			default:
				b.WriteByte(c)
			}
		}
	}
	for !p.done() {
		c := p.src[p.pos]
		if isHstoreSpace(c) || c == ',' || c == '=' {
			break
		}
		if c == '\\' && p.pos+1 < len(p.src) {
			p.pos++
			c = p.src[p.pos]
		}
		b.WriteByte(c)
		p.pos++
	}
	if b.Len() == 0 {
		return "", false, p.errorf("empty token")
	}
	return b.String(), false, nil
}
