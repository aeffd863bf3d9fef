/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package model

// BaseType discriminates the two entity subclasses the core understands.
// Application domain classes subclass Vertex or Edge; the core never
// reflects on the host language to discover them (§9 "Subclass discovery
// for entity dictionary") -- callers register constructors explicitly via
// a Registry instead.
type BaseType int

const (
	BaseVertex BaseType = iota
	BaseEdge
)

// Entity is the embedded base every Vertex and Edge carries: an
// optimistic-concurrency version, a record id, and attribute fields
// decoded from the wire record that aren't part of the graph structure
// (§3 "Entity (base)").
type Entity struct {
	Version int32
	Rid     Rid
	Class   string

	// Fields holds every decoded attribute that is not an edge
	// collection -- the materializer's landing spot for both CSV and
	// binary record fields.
	Fields map[string]interface{}
}

func NewEntity(class string) Entity {
	return Entity{Class: class, Fields: map[string]interface{}{}}
}

// Persisted reports whether this entity has been assigned a resolved rid.
func (e *Entity) Persisted() bool {
	return !e.Rid.Zero() && e.Rid.Resolved()
}

// GraphEntity is implemented by *Vertex and *Edge; the materializer and
// the client's write traversal operate against this interface so they
// never need to know about application subclasses.
type GraphEntity interface {
	Base() BaseType
	EntityRef() *Entity
}
