/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package wire

import (
	"fmt"
	"strconv"
	"strings"
)

// Element is either a Term or a Group in a parsed profile tree (§4.2).
type Element interface {
	element()
}

// Term is a single `(name:type)` field or a `(literal)` byte-static.
type Term struct {
	Name    string
	Type    string // byte, short, int, long, float, double, boolean, bytes, string, strings, varint, varint-string
	Literal bool
	Value   byte // the literal byte when Literal is set

	// Pred, when set on a Literal term, makes the byte optionally
	// consumed: the decoder peeks the next byte and only advances past
	// it if Pred(b) is true, otherwise the byte is left in the stream.
	// This is the mechanism that terminates repeating exception groups
	// (§4.1 "byte-static").
	Pred func(b byte) bool
}

func (Term) element() {}

// Group is a `[ ... ]` sequence of elements, optionally labeled `{name}`
// and optionally marked repeating with a trailing + or *.
type Group struct {
	Label     string
	Repeating bool
	Plus      bool // true for '+' (one-or-more), false for '*' (zero-or-more); informational only
	Children  []Element
}

func (Group) element() {}

// canonicalDrivingNames enumerates the integer term names the executor
// recognizes as "drives the next repeating group's iteration count"
// (§4.3).
var canonicalDrivingNames = map[string]bool{
	"num-of-clusters":               true,
	"count-of-collection-changes":   true,
	"num-cfg-items":                 true,
	"created-record-count":          true,
	"updated-record-count":          true,
}

// NewTerm builds a named, typed term.
func NewTerm(name, typ string) Term { return Term{Name: name, Type: typ} }

// NewLiteral builds a byte-static term. If pred is non-nil the byte is
// peeked and conditionally consumed rather than always consumed.
func NewLiteral(value byte, pred func(byte) bool) Term {
	return Term{Literal: true, Value: value, Pred: pred}
}

// NewGroup builds an unlabeled, non-repeating group.
func NewGroup(children ...Element) *Group {
	return &Group{Children: children}
}

// Labeled returns a copy of g with the given label.
func (g *Group) Labeled(label string) *Group {
	ng := *g
	ng.Label = label
	return &ng
}

// Repeat returns a copy of g marked as a repeating group.
func (g *Group) Repeat(plus bool) *Group {
	ng := *g
	ng.Repeating = true
	ng.Plus = plus
	return &ng
}

// ParseProfile parses a profile string over the alphabet `( ) [ ] { } + *`
// into a tree of Elements (§4.2). The top level is treated as an implicit
// unlabeled, non-repeating group.
func ParseProfile(s string) (*Group, error) {
	p := &profileParser{src: s}
	children, err := p.parseElements()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("profile: unexpected trailing input at %d: %q", p.pos, p.src[p.pos:])
	}
	return &Group{Children: children}, nil
}

type profileParser struct {
	src string
	pos int
}

func (p *profileParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *profileParser) parseElements() ([]Element, error) {
	var out []Element
	for p.pos < len(p.src) {
		switch p.peek() {
		case '(':
			t, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		case '{', '[':
			g, err := p.parseGroup()
			if err != nil {
				return nil, err
			}
			out = append(out, g)
		default:
			return out, nil
		}
	}
	return out, nil
}

func (p *profileParser) parseTerm() (Term, error) {
	if p.peek() != '(' {
		return Term{}, fmt.Errorf("profile: expected '(' at %d", p.pos)
	}
	p.pos++
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != ')' {
		p.pos++
	}
	if p.pos >= len(p.src) {
		return Term{}, fmt.Errorf("profile: unterminated term starting at %d", start)
	}
	content := p.src[start:p.pos]
	p.pos++ // consume ')'

	if idx := strings.IndexByte(content, ':'); idx >= 0 {
		return Term{Name: content[:idx], Type: content[idx+1:]}, nil
	}
	// literal byte-static term: either a decimal integer or a single char
	if n, err := strconv.Atoi(content); err == nil {
		return Term{Literal: true, Value: byte(n)}, nil
	}
	if len(content) == 1 {
		return Term{Literal: true, Value: content[0]}, nil
	}
	return Term{}, fmt.Errorf("profile: cannot interpret literal term %q", content)
}

func (p *profileParser) parseGroup() (*Group, error) {
	label := ""
	if p.peek() == '{' {
		p.pos++
		start := p.pos
		for p.pos < len(p.src) && p.src[p.pos] != '}' {
			p.pos++
		}
		if p.pos >= len(p.src) {
			return nil, fmt.Errorf("profile: unterminated label starting at %d", start)
		}
		label = p.src[start:p.pos]
		p.pos++ // consume '}'
	}
	if p.peek() != '[' {
		return nil, fmt.Errorf("profile: expected '[' at %d", p.pos)
	}
	p.pos++
	children, err := p.parseElements()
	if err != nil {
		return nil, err
	}
	if p.peek() != ']' {
		return nil, fmt.Errorf("profile: expected ']' at %d", p.pos)
	}
	p.pos++
	g := &Group{Label: label, Children: children}
	switch p.peek() {
	case '+':
		p.pos++
		g.Repeating = true
		g.Plus = true
	case '*':
		p.pos++
		g.Repeating = true
	}
	return g, nil
}
