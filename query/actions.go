/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package query

import "fmt"

// Action is one field-level mutation fragment an Update or Insert
// statement carries: Set/Add/Remove/Increment/Put/Content/Merge (§4.7).
// These are distinct from QueryElement clauses -- they are not attached
// to a Select and have no canonical ordering slot, since Update renders
// its own fixed verb-then-actions shape (§4.7).
type Action interface {
	Parse() string
	verb() string
}

// SetAction assigns a plain field value: "field = value".
type SetAction struct {
	Field string
	Value interface{}
}

func NewSet(field string, value interface{}) SetAction { return SetAction{Field: field, Value: value} }
func (a SetAction) Parse() string                      { return a.Field + " = " + quoteValue(a.Value) }
func (a SetAction) verb() string                       { return "set" }

// AddAction appends value to a collection-valued field.
type AddAction struct {
	Field string
	Value interface{}
}

func NewAdd(field string, value interface{}) AddAction { return AddAction{Field: field, Value: value} }
func (a AddAction) Parse() string                      { return a.Field + " = " + quoteValue(a.Value) }
func (a AddAction) verb() string                       { return "add" }

// RemoveAction drops a field, or a matching element from a collection
// field when Value is set.
type RemoveAction struct {
	Field string
	Value interface{}
	HasValue bool
}

func NewRemove(field string) RemoveAction { return RemoveAction{Field: field} }
func NewRemoveValue(field string, value interface{}) RemoveAction {
	return RemoveAction{Field: field, Value: value, HasValue: true}
}
func (a RemoveAction) Parse() string {
	if a.HasValue {
		return a.Field + " = " + quoteValue(a.Value)
	}
	return a.Field
}
func (a RemoveAction) verb() string { return "remove" }

// IncrementAction adds a numeric delta to a field.
type IncrementAction struct {
	Field string
	Delta interface{}
}

func NewIncrement(field string, delta interface{}) IncrementAction {
	return IncrementAction{Field: field, Delta: delta}
}
func (a IncrementAction) Parse() string { return a.Field + " = " + quoteValue(a.Delta) }
func (a IncrementAction) verb() string  { return "increment" }

// PutAction inserts a key/value pair into a map-valued field.
type PutAction struct {
	Field string
	Key   string
	Value interface{}
}

func NewPut(field, key string, value interface{}) PutAction {
	return PutAction{Field: field, Key: key, Value: value}
}
func (a PutAction) Parse() string {
	return fmt.Sprintf("%s = %s, %s", a.Field, quoteValue(a.Key), quoteValue(a.Value))
}
func (a PutAction) verb() string { return "put" }

// ContentAction replaces the whole record with a JSON document.
type ContentAction struct {
	JSON string
}

func NewContent(json string) ContentAction { return ContentAction{JSON: json} }
func (a ContentAction) Parse() string      { return a.JSON }
func (a ContentAction) verb() string       { return "content" }

// MergeAction deep-merges a JSON document into the record.
type MergeAction struct {
	JSON string
}

func NewMerge(json string) MergeAction { return MergeAction{JSON: json} }
func (a MergeAction) Parse() string    { return a.JSON }
func (a MergeAction) verb() string     { return "merge" }
