/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package query

import "strings"

// Select is the `select [proj,...] from <target> [prefix] <clauses>`
// statement (§4.7).
type Select struct {
	Projections []string
	Target      string

	clauses map[ClauseKind]QueryElement
}

// NewSelect builds a Select over target (a class name, cluster, or rid
// set) with the given projection field list; an empty projections list
// renders a bare "select from <target>" (§6).
func NewSelect(target string, projections ...string) *Select {
	return &Select{Target: target, Projections: projections, clauses: map[ClauseKind]QueryElement{}}
}

// With attaches one or more clauses, overwriting any previous clause of
// the same Kind. Clauses render in the fixed canonical order (§8
// property 8) regardless of the order they are attached in here.
func (s *Select) With(elems ...QueryElement) *Select {
	for _, e := range elems {
		s.clauses[e.Kind()] = e
	}
	return s
}

// Parse renders the canonical query string (§4.7, §6, §8 property 7).
func (s *Select) Parse() string {
	var b strings.Builder
	b.WriteString("select ")
	if len(s.Projections) > 0 {
		b.WriteString(strings.Join(s.Projections, ", "))
		b.WriteString(" ")
	}
	b.WriteString("from ")
	b.WriteString(s.Target)
	for _, k := range canonicalOrder {
		if c, ok := s.clauses[k]; ok {
			b.WriteString(c.Parse())
		}
	}
	return b.String()
}
