/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package model

// Vertex is an entity with ordered, named sequences of incoming and
// outgoing edges (§3 "Vertex"). Application domain classes embed Vertex.
type Vertex struct {
	Entity
	inEdges  map[string][]*Edge
	outEdges map[string][]*Edge
}

func NewVertex(class string) *Vertex {
	return &Vertex{
		Entity:   NewEntity(class),
		inEdges:  map[string][]*Edge{},
		outEdges: map[string][]*Edge{},
	}
}

func (v *Vertex) Base() BaseType    { return BaseVertex }
func (v *Vertex) EntityRef() *Entity { return &v.Entity }

// OutEdges returns the outgoing edges for class name.
func (v *Vertex) OutEdges(class string) []*Edge { return v.outEdges[class] }

// InEdges returns the incoming edges for class name.
func (v *Vertex) InEdges(class string) []*Edge { return v.inEdges[class] }

// OutEdgeClasses lists every edge-class name with at least one outgoing
// edge -- the write traversal walks these. The order is map iteration
// order and is not defined.
func (v *Vertex) OutEdgeClasses() []string {
	return keysOf(v.outEdges)
}

func (v *Vertex) InEdgeClasses() []string {
	return keysOf(v.inEdges)
}

// SetOutEdges replaces the outgoing edge sequence for class name and
// back-links every edge's InVertex to v, maintaining the invariant that
// every edge reachable via v.OutEdges has InVertex == v (§3).
func (v *Vertex) SetOutEdges(class string, edges []*Edge) {
	for _, e := range edges {
		e.InVertex = v
	}
	v.outEdges[class] = edges
}

// AddOutEdge appends to the outgoing edge sequence for class name,
// back-linking the edge the same way SetOutEdges does.
func (v *Vertex) AddOutEdge(class string, e *Edge) {
	e.InVertex = v
	v.outEdges[class] = append(v.outEdges[class], e)
}

// SetInEdges replaces the incoming edge sequence for class name and
// back-links every edge's OutVertex to v.
func (v *Vertex) SetInEdges(class string, edges []*Edge) {
	for _, e := range edges {
		e.OutVertex = v
	}
	v.inEdges[class] = edges
}

func (v *Vertex) AddInEdge(class string, e *Edge) {
	e.OutVertex = v
	v.inEdges[class] = append(v.inEdges[class], e)
}

func keysOf(m map[string][]*Edge) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
