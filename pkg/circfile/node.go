package circfile

import (
	"fmt"
	"io"
	"strconv"
)

// node is one parsed list: its leading atom names it, further leading atoms
// are its arguments, and nested lists are its children.
type node struct {
	name string
	args []string
	kids []*node
}

// parse reads the single top-level list from r.
func parse(r io.Reader) (*node, error) {
	lx := newLexer(r)
	tok, err := lx.next()
	if err != nil {
		return nil, err
	}
	if tok.typ != tokenLeftParen {
		return nil, fmt.Errorf("expected '(' at top level, got %q", tok.value)
	}
	root, err := parseList(lx)
	if err != nil {
		return nil, err
	}
	tok, err = lx.next()
	if err != nil {
		return nil, err
	}
	if tok.typ != tokenEOF {
		return nil, fmt.Errorf("trailing input after top-level list")
	}
	return root, nil
}

// parseList parses list contents after the opening paren.
func parseList(lx *lexer) (*node, error) {
	n := &node{}
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		switch tok.typ {
		case tokenRightParen:
			if n.name == "" {
				return nil, fmt.Errorf("empty list")
			}
			return n, nil
		case tokenEOF:
			return nil, fmt.Errorf("unexpected EOF in list")
		case tokenLeftParen:
			kid, err := parseList(lx)
			if err != nil {
				return nil, err
			}
			n.kids = append(n.kids, kid)
		case tokenAtom:
			if n.name == "" {
				n.name = tok.value
			} else {
				n.args = append(n.args, tok.value)
			}
		}
	}
}

// child returns the first child with the given name, nil when absent.
func (n *node) child(name string) *node {
	for _, k := range n.kids {
		if k.name == name {
			return k
		}
	}
	return nil
}

// children returns every child with the given name.
func (n *node) children(name string) []*node {
	var out []*node
	for _, k := range n.kids {
		if k.name == name {
			out = append(out, k)
		}
	}
	return out
}

// flag reports whether a child with the given name exists, for bare markers
// like (frozen).
func (n *node) flag(name string) bool { return n.child(name) != nil }

func (n *node) arg(i int) (string, error) {
	if i >= len(n.args) {
		return "", fmt.Errorf("(%s): missing argument %d", n.name, i)
	}
	return n.args[i], nil
}

func (n *node) intArg(i int) (int, error) {
	s, err := n.arg(i)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("(%s): argument %d: %w", n.name, i, err)
	}
	return v, nil
}

func (n *node) floatArg(i int) (float64, error) {
	s, err := n.arg(i)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("(%s): argument %d: %w", n.name, i, err)
	}
	return v, nil
}

// childInt reads the single integer argument of a named child, e.g.
// (start 12).
func (n *node) childInt(name string) (int, bool) {
	k := n.child(name)
	if k == nil {
		return 0, false
	}
	v, err := k.intArg(0)
	if err != nil {
		return 0, false
	}
	return v, true
}

// childString reads the single string argument of a named child.
func (n *node) childString(name string) (string, bool) {
	k := n.child(name)
	if k == nil || len(k.args) == 0 {
		return "", false
	}
	return k.args[0], true
}

// childFloat reads the single float argument of a named child.
func (n *node) childFloat(name string) (float64, bool) {
	k := n.child(name)
	if k == nil {
		return 0, false
	}
	v, err := k.floatArg(0)
	if err != nil {
		return 0, false
	}
	return v, true
}

// childXY reads a two-float child, e.g. (at 10 20).
func (n *node) childXY(name string) (float64, float64, bool) {
	k := n.child(name)
	if k == nil {
		return 0, 0, false
	}
	x, err1 := k.floatArg(0)
	y, err2 := k.floatArg(1)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return x, y, true
}
