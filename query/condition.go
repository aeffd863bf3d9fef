/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package query

import "strings"

// WhereNode is the operator tree a Where clause wraps: Condition is the
// leaf, And/Or are binary combinators (§4.7 "Where (and its operator
// tree: And, Or, Condition with comparisons")).
type WhereNode interface {
	// Parse renders this node's body. A leaf Condition's body carries its
	// own leading and trailing space; a binary node's body carries a
	// leading two-space-and-paren so nesting reproduces the canonical
	// literal spacing validated by §8 property 7/§6's literal examples.
	Parse() string
}

// Op is a condition comparator (§4.7: =, <=, <, >=, >, in).
type Op int

const (
	OpEq Op = iota
	OpLte
	OpLt
	OpGte
	OpGt
	OpIn
)

func (o Op) symbol() string {
	switch o {
	case OpEq:
		return "="
	case OpLte:
		return "<="
	case OpLt:
		return "<"
	case OpGte:
		return ">="
	case OpGt:
		return ">"
	case OpIn:
		return "in"
	}
	return "?"
}

// Condition is a leaf comparison `field op value` (§4.7).
type Condition struct {
	field string
	op    Op
	value interface{}
}

// NewCondition starts a condition on field; call a comparator method
// (Eq, Lte, Lt, Gte, Gt, In) to fix the operator and operand.
func NewCondition(field string) *Condition {
	return &Condition{field: field}
}

func (c *Condition) Eq(v interface{}) *Condition  { c.op, c.value = OpEq, v; return c }
func (c *Condition) Lte(v interface{}) *Condition { c.op, c.value = OpLte, v; return c }
func (c *Condition) Lt(v interface{}) *Condition  { c.op, c.value = OpLt, v; return c }
func (c *Condition) Gte(v interface{}) *Condition { c.op, c.value = OpGte, v; return c }
func (c *Condition) Gt(v interface{}) *Condition  { c.op, c.value = OpGt, v; return c }

// In sets the comparator to "in" against an ordered value collection,
// rendered as a bracketed, comma-separated list.
func (c *Condition) In(values []interface{}) *Condition {
	c.op, c.value = OpIn, values
	return c
}

// Parse renders " field op value" with a leading and trailing space, the
// shape that reproduces §6's literal `where name = 'Berlin'` and the
// nested operator-tree examples once combined by And/Or (§8 property 7).
func (c *Condition) Parse() string {
	return " " + c.field + " " + c.op.symbol() + " " + c.renderValue() + " "
}

func (c *Condition) renderValue() string {
	if c.op == OpIn {
		values, _ := c.value.([]interface{})
		parts := make([]string, 0, len(values))
		for _, v := range values {
			parts = append(parts, quoteValue(v))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return quoteValue(c.value)
}

// BinaryOp is And/Or's shared implementation: a keyword joining two
// WhereNode operands, parenthesized.
type BinaryOp struct {
	keyword string
	lhs     WhereNode
	rhs     WhereNode
}

// And combines two operands with the "and" keyword.
func And(lhs, rhs WhereNode) *BinaryOp { return &BinaryOp{keyword: "and", lhs: lhs, rhs: rhs} }

// Or combines two operands with the "or" keyword.
func Or(lhs, rhs WhereNode) *BinaryOp { return &BinaryOp{keyword: "or", lhs: lhs, rhs: rhs} }

// Parse renders "  (<lhs> <keyword><rhs> )", which nests correctly with
// Condition's leading/trailing spaces to reproduce §6's literal
// `( name = 'Eddies'  or type = 'Pizaaria'  )`.
func (b *BinaryOp) Parse() string {
	return "  (" + b.lhs.Parse() + " " + b.keyword + b.rhs.Parse() + " )"
}
