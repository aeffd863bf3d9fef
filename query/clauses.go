/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package query

import (
	"fmt"
	"strings"
)

// Where wraps a WhereNode operator tree (§4.7).
type Where struct {
	node WhereNode
}

// NewWhere builds a Where clause around an operator tree root.
func NewWhere(node WhereNode) *Where { return &Where{node: node} }

func (w *Where) Kind() ClauseKind { return KindWhere }

// Parse renders "  where" followed by the wrapped node's body, which
// reproduces §6's literal `where name = 'Berlin'` and
// `where  ( name = 'Eddies'  or type = 'Pizaaria'  )` forms exactly.
func (w *Where) Parse() string { return "  where" + w.node.Parse() }

// SortDirection is an OrderBy field's direction.
type SortDirection int

const (
	Asc SortDirection = iota
	Desc
)

func (d SortDirection) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

// SortField is one OrderBy entry.
type SortField struct {
	Field     string
	Direction SortDirection
}

// OrderBy renders "order by field1 asc, field2 desc" (§4.7).
type OrderBy struct {
	Fields []SortField
}

func NewOrderBy(fields ...SortField) *OrderBy { return &OrderBy{Fields: fields} }

func (o *OrderBy) Kind() ClauseKind { return KindOrderBy }

func (o *OrderBy) Parse() string {
	parts := make([]string, 0, len(o.Fields))
	for _, f := range o.Fields {
		parts = append(parts, f.Field+" "+f.Direction.String())
	}
	return "  order by " + strings.Join(parts, ", ")
}

// GroupBy renders "group by field1, field2" (§4.7).
type GroupBy struct {
	Fields []string
}

func NewGroupBy(fields ...string) *GroupBy { return &GroupBy{Fields: fields} }

func (g *GroupBy) Kind() ClauseKind { return KindGroupBy }

func (g *GroupBy) Parse() string {
	return "  group by " + strings.Join(g.Fields, ", ")
}

// Skip renders "skip N" (§4.7).
type Skip struct {
	N int64
}

func NewSkip(n int64) *Skip { return &Skip{N: n} }

func (s *Skip) Kind() ClauseKind { return KindSkip }

func (s *Skip) Parse() string { return fmt.Sprintf("  skip %d", s.N) }

// Limit renders "limit N" and carries no Timeout of its own (§4.7
// "Limit (with optional Timeout)"). Timeout is a separate clause that
// renders in its own slot of the canonical order, after Fetchplan.
type Limit struct {
	N int64
}

func NewLimit(n int64) *Limit { return &Limit{N: n} }

func (l *Limit) Kind() ClauseKind { return KindLimit }

func (l *Limit) Parse() string { return fmt.Sprintf("  limit %d", l.N) }

// Timeout renders "timeout N" in milliseconds.
type Timeout struct {
	Millis int64
}

func NewTimeout(millis int64) *Timeout { return &Timeout{Millis: millis} }

func (t *Timeout) Kind() ClauseKind { return KindTimeout }

func (t *Timeout) Parse() string { return fmt.Sprintf("  timeout %d", t.Millis) }

// Fetchplan renders "fetchplan <plan>" (§4.6 fetch-plan strings like
// "*:-1").
type Fetchplan struct {
	Plan string
}

func NewFetchplan(plan string) *Fetchplan { return &Fetchplan{Plan: plan} }

func (f *Fetchplan) Kind() ClauseKind { return KindFetchplan }

func (f *Fetchplan) Parse() string { return "  fetchplan " + f.Plan }

// LockMode selects the Lock clause's locking strategy.
type LockMode int

const (
	LockDefault LockMode = iota
	LockRecord
)

func (m LockMode) String() string {
	if m == LockRecord {
		return "record"
	}
	return "default"
}

// Lock renders "lock default"/"lock record" (§4.7).
type Lock struct {
	Mode LockMode
}

func NewLock(mode LockMode) *Lock { return &Lock{Mode: mode} }

func (l *Lock) Kind() ClauseKind { return KindLock }

func (l *Lock) Parse() string { return "  lock " + l.Mode.String() }

// Parallel renders "parallel true"/"parallel false" (§4.7).
type Parallel struct {
	Enabled bool
}

func NewParallel(enabled bool) *Parallel { return &Parallel{Enabled: enabled} }

func (p *Parallel) Kind() ClauseKind { return KindParallel }

func (p *Parallel) Parse() string {
	if p.Enabled {
		return "  parallel true"
	}
	return "  parallel false"
}

// Let binds either a field projection or a sub-select to a named
// variable (§4.7 "Let (by field or by sub-select)"). Exactly one of
// Field or SubSelect must be set; a Let wrapping anything other than a
// sub-select QueryType for the SubSelect form is an illegal construction
// (§7 SqlCommand) the caller is expected not to build.
type Let struct {
	Name      string
	Field     string
	SubSelect QueryType
}

// NewLetField binds name to a plain field reference.
func NewLetField(name, field string) *Let { return &Let{Name: name, Field: field} }

// NewLetSelect binds name to a parenthesized sub-select.
func NewLetSelect(name string, sub QueryType) *Let { return &Let{Name: name, SubSelect: sub} }

func (l *Let) Kind() ClauseKind { return KindLet }

func (l *Let) Parse() string {
	if l.SubSelect != nil {
		return "  let $" + l.Name + " = (" + l.SubSelect.Parse() + ")"
	}
	return "  let $" + l.Name + " = " + l.Field
}
