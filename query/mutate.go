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

	"github.com/daill/orientgo/model"
)

// Insert renders "insert into <target> (f1, f2) values (v1, v2)" (§4.7).
type Insert struct {
	Target string
	Fields []string
	Values []interface{}
}

func NewInsert(target string, fields []string, values []interface{}) *Insert {
	return &Insert{Target: target, Fields: fields, Values: values}
}

func (i *Insert) Parse() string {
	vals := make([]string, 0, len(i.Values))
	for _, v := range i.Values {
		vals = append(vals, quoteValue(v))
	}
	return fmt.Sprintf("insert into %s (%s) values (%s)", i.Target, strings.Join(i.Fields, ", "), strings.Join(vals, ", "))
}

// ReturnMode selects an Update's `return` modifier (§4.7 "Return
// (count/after/before)").
type ReturnMode int

const (
	ReturnNone ReturnMode = iota
	ReturnCount
	ReturnAfter
	ReturnBefore
)

func (r ReturnMode) String() string {
	switch r {
	case ReturnCount:
		return "count"
	case ReturnAfter:
		return "after"
	case ReturnBefore:
		return "before"
	}
	return ""
}

// Update renders "update <target> <verb> <actions> [where ...] [upsert]
// [return <mode>]" (§4.7). Actions must share one verb -- OrientDB SQL
// does not mix SET/ADD/REMOVE/etc. in one statement; Actions[0].verb()
// selects the rendered keyword.
type Update struct {
	Target  string
	Actions []Action
	Where   *Where
	Upsert  bool
	Return  ReturnMode
}

func NewUpdate(target string, actions ...Action) *Update {
	return &Update{Target: target, Actions: actions}
}

func (u *Update) WithWhere(w *Where) *Update   { u.Where = w; return u }
func (u *Update) WithUpsert() *Update          { u.Upsert = true; return u }
func (u *Update) WithReturn(m ReturnMode) *Update { u.Return = m; return u }

func (u *Update) Parse() string {
	if len(u.Actions) == 0 {
		return fmt.Sprintf("update %s", u.Target)
	}
	verb := u.Actions[0].verb()
	parts := make([]string, 0, len(u.Actions))
	for _, a := range u.Actions {
		parts = append(parts, a.Parse())
	}
	var b strings.Builder
	fmt.Fprintf(&b, "update %s %s %s", u.Target, verb, strings.Join(parts, ", "))
	if u.Where != nil {
		b.WriteString(u.Where.Parse())
	}
	if u.Upsert {
		b.WriteString(" upsert")
	}
	if u.Return != ReturnNone {
		b.WriteString(" return " + u.Return.String())
	}
	return b.String()
}

// DeleteSubclass is Delete's subclass token (§4.7: "Vertex" or "Edge").
type DeleteSubclass int

const (
	DeleteVertex DeleteSubclass = iota
	DeleteEdge
)

func (d DeleteSubclass) String() string {
	if d == DeleteEdge {
		return "edge"
	}
	return "vertex"
}

// Delete renders one of three shapes (§4.7): a subclass token plus an
// optional byRID/fromRID/toRID, a concrete class expression, or a
// concrete instance rid. from/to on a vertex subclass is a warning and
// is dropped rather than rendered.
type Delete struct {
	hasSubclass bool
	subclass    DeleteSubclass
	byRID       *model.Rid
	fromRID     *model.Rid
	toRID       *model.Rid
	classExpr   string
	instance    *model.Rid
}

// NewDeleteSubclass starts a subclass-token delete (vertex or edge).
func NewDeleteSubclass(sub DeleteSubclass) *Delete {
	return &Delete{hasSubclass: true, subclass: sub}
}

// ByRID scopes the delete to a single rid.
func (d *Delete) ByRID(rid model.Rid) *Delete { d.byRID = &rid; return d }

// FromTo scopes an edge delete to the edges between two endpoint rids.
// On a vertex subclass this is dropped (§4.7 "from/to on a vertex is a
// warning and is dropped").
func (d *Delete) FromTo(from, to model.Rid) *Delete {
	if d.subclass == DeleteVertex {
		return d
	}
	d.fromRID, d.toRID = &from, &to
	return d
}

// NewDeleteClass deletes by a concrete class expression (e.g. a class
// name, optionally with an embedded where clause the caller composed).
func NewDeleteClass(expr string) *Delete { return &Delete{classExpr: expr} }

// NewDeleteInstance deletes a single concrete instance by rid.
func NewDeleteInstance(rid model.Rid) *Delete { return &Delete{instance: &rid} }

func (d *Delete) Parse() string {
	if d.hasSubclass {
		base := "delete " + d.subclass.String()
		switch {
		case d.byRID != nil:
			return base + "  " + d.byRID.String()
		case d.fromRID != nil && d.toRID != nil:
			return base + "  from " + d.fromRID.String() + " to " + d.toRID.String()
		default:
			return base
		}
	}
	if d.instance != nil {
		return "delete " + d.instance.String()
	}
	return "delete from " + d.classExpr
}

// Truncate renders "truncate class <name>", "truncate cluster <name>",
// or "truncate record <rid>" (§4.7).
type Truncate struct {
	kind  string
	value string
}

func NewTruncateClass(name string) *Truncate   { return &Truncate{kind: "class", value: name} }
func NewTruncateCluster(name string) *Truncate { return &Truncate{kind: "cluster", value: name} }
func NewTruncateRecord(rid model.Rid) *Truncate {
	return &Truncate{kind: "record", value: rid.String()}
}

func (t *Truncate) Parse() string { return fmt.Sprintf("truncate %s %s", t.kind, t.value) }
