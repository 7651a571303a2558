// Package circfile implements the .circ snapshot format: an s-expression
// text file keyed by the integer IDs the circuit assigned at creation.
// Loading is a multi-pass reconstruction (vertices and symbols first, then
// segments, then cross-segment metadata); references that no longer resolve
// are logged and omitted rather than failing the load.
package circfile

import (
	"bufio"
	"fmt"
	"io"
	"unicode"
)

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenLeftParen
	tokenRightParen
	tokenAtom
)

type token struct {
	typ   tokenType
	value string
}

// lexer tokenizes s-expressions from a reader. Comments run from '#' to end
// of line; atoms are bare words or quoted strings.
type lexer struct {
	reader *bufio.Reader
	peeked *rune
}

func newLexer(r io.Reader) *lexer {
	return &lexer{reader: bufio.NewReader(r)}
}

func (l *lexer) next() (token, error) {
	for {
		ch, err := l.peek()
		if err != nil {
			if err == io.EOF {
				return token{typ: tokenEOF}, nil
			}
			return token{}, err
		}
		if unicode.IsSpace(ch) {
			l.read()
			continue
		}
		if ch == '#' {
			for {
				c, err := l.read()
				if err != nil || c == '\n' {
					break
				}
			}
			continue
		}
		break
	}

	ch, _ := l.peek()
	switch ch {
	case '(':
		l.read()
		return token{typ: tokenLeftParen, value: "("}, nil
	case ')':
		l.read()
		return token{typ: tokenRightParen, value: ")"}, nil
	case '"':
		return l.readString()
	default:
		return l.readAtom()
	}
}

func (l *lexer) peek() (rune, error) {
	if l.peeked != nil {
		return *l.peeked, nil
	}
	ch, _, err := l.reader.ReadRune()
	if err != nil {
		return 0, err
	}
	l.peeked = &ch
	return ch, nil
}

func (l *lexer) read() (rune, error) {
	if l.peeked != nil {
		ch := *l.peeked
		l.peeked = nil
		return ch, nil
	}
	ch, _, err := l.reader.ReadRune()
	return ch, err
}

func (l *lexer) readString() (token, error) {
	l.read() // opening quote
	var out []rune
	for {
		ch, err := l.read()
		if err != nil {
			return token{}, fmt.Errorf("unterminated string")
		}
		switch ch {
		case '"':
			return token{typ: tokenAtom, value: string(out)}, nil
		case '\\':
			esc, err := l.read()
			if err != nil {
				return token{}, fmt.Errorf("unterminated escape")
			}
			switch esc {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			default:
				out = append(out, esc)
			}
		default:
			out = append(out, ch)
		}
	}
}

func (l *lexer) readAtom() (token, error) {
	var out []rune
	for {
		ch, err := l.peek()
		if err != nil {
			break
		}
		if unicode.IsSpace(ch) || ch == '(' || ch == ')' || ch == '"' || ch == '#' {
			break
		}
		l.read()
		out = append(out, ch)
	}
	if len(out) == 0 {
		return token{}, fmt.Errorf("empty atom")
	}
	return token{typ: tokenAtom, value: string(out)}, nil
}
