/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package query is the typed, composable query builder (§4.7): a
// QueryType sub-hierarchy for top-level statements (Select, Insert,
// Update, Delete, Create, Drop, Move, Traverse, Truncate) and a
// QueryElement sub-hierarchy for clause fragments (Where, OrderBy,
// GroupBy, Skip, Limit, Fetchplan, Lock, Parallel, Let). Every node
// exposes Parse(), which is deterministic and side-effect-free.
package query

import "fmt"

// QueryType is any top-level statement that renders to a complete
// query-language string.
type QueryType interface {
	Parse() string
}

// QueryElement is a clause fragment attachable to a Select statement.
// ClauseKind replaces the source's dynamic dispatch on the clause's
// class name (§9 "Dynamic dispatch on query-element class name"): the
// canonical rendering order is a fixed permutation over this enum,
// independent of the order clauses were added in (§8 property 8).
type QueryElement interface {
	Kind() ClauseKind
	Parse() string
}

// ClauseKind enumerates the clause fragments a Select can carry. The
// numeric order below *is* the canonical rendering order (§4.7): Let,
// Where, GroupBy, OrderBy, Skip, Limit, Fetchplan, Timeout, Lock,
// Parallel.
type ClauseKind int

const (
	KindLet ClauseKind = iota
	KindWhere
	KindGroupBy
	KindOrderBy
	KindSkip
	KindLimit
	KindFetchplan
	KindTimeout
	KindLock
	KindParallel
)

// canonicalOrder is consulted by Select.Parse to render attached clauses
// regardless of the order the caller called With(...) in.
var canonicalOrder = []ClauseKind{
	KindLet, KindWhere, KindGroupBy, KindOrderBy, KindSkip, KindLimit,
	KindFetchplan, KindTimeout, KindLock, KindParallel,
}

// quoteValue renders a condition/action operand the way §4.7 specifies:
// single-quoted for strings, bare for numerics.
func quoteValue(v interface{}) string {
	switch t := v.(type) {
	case string:
		return "'" + t + "'"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", t)
	}
}
