/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package query

import (
	"strings"

	"github.com/daill/orientgo/model"
)

// TraverseTarget is one element of a Traverse's `from` clause: a rid, a
// class, a cluster, or a sub-select (§4.7 "Traverse targets accept a
// rid, a class, a cluster, a sub-select, or a collection of any of the
// above"). A sub-select renders parenthesized.
type TraverseTarget struct {
	RID       *model.Rid
	Class     string
	Cluster   string
	SubSelect QueryType
}

// TargetRID wraps a rid traverse target.
func TargetRID(rid model.Rid) TraverseTarget { return TraverseTarget{RID: &rid} }

// TargetClass wraps a class-name traverse target.
func TargetClass(class string) TraverseTarget { return TraverseTarget{Class: class} }

// TargetCluster wraps a cluster-name traverse target.
func TargetCluster(cluster string) TraverseTarget { return TraverseTarget{Cluster: cluster} }

// TargetSelect wraps a parenthesized sub-select traverse target.
func TargetSelect(sub QueryType) TraverseTarget { return TraverseTarget{SubSelect: sub} }

func (t TraverseTarget) render() string {
	switch {
	case t.RID != nil:
		return t.RID.String()
	case t.SubSelect != nil:
		return "(" + t.SubSelect.Parse() + ")"
	case t.Cluster != "":
		return "cluster:" + t.Cluster
	default:
		return t.Class
	}
}

// Traverse renders `traverse <fields> from <targets> [while <cond>]`
// (§4.7, §6).
type Traverse struct {
	Fields  []string
	Targets []TraverseTarget
	While   WhereNode
}

func NewTraverse(targets []TraverseTarget, fields ...string) *Traverse {
	return &Traverse{Targets: targets, Fields: fields}
}

func (t *Traverse) WithWhile(node WhereNode) *Traverse { t.While = node; return t }

// Parse reproduces §6's literal
// `traverse a, b  from #13:4, #12:4   while a = 'b'` exactly: the target
// list carries no trailing space of its own, and the while clause's own
// leading two spaces combine with the single separating space to yield
// the literal's three-space gap. The condition's own trailing space is
// trimmed, so the text ends at the condition's value.
func (t *Traverse) Parse() string {
	parts := make([]string, 0, len(t.Targets))
	for _, tgt := range t.Targets {
		parts = append(parts, tgt.render())
	}
	s := "traverse " + strings.Join(t.Fields, ", ") + "  from " + strings.Join(parts, ", ")
	if t.While != nil {
		s += " " + "  while" + strings.TrimRight(t.While.Parse(), " ")
	}
	return s
}
