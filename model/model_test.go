/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRidStringAndParseRoundTrip(t *testing.T) {
	r := Rid{ClusterID: 12, Position: 2}
	require.Equal(t, "#12:2", r.String())
	got, err := ParseRid("#12:2")
	require.NoError(t, err)
	require.True(t, r.Equal(got))
}

func TestRidTemporaryVsResolved(t *testing.T) {
	tmp := NewTemporaryRid(9, 0)
	require.True(t, tmp.Temporary())
	require.False(t, tmp.Resolved())

	resolved := Rid{ClusterID: 9, Position: 4}
	require.True(t, resolved.Resolved())
	require.False(t, resolved.Temporary())
}

func TestVertexSetOutEdgesBackLinks(t *testing.T) {
	v := NewVertex("Person")
	e := NewEdge("Follows")
	v.AddOutEdge("Follows", e)
	require.Same(t, v, e.InVertex)
}

func TestVertexSetInEdgesBackLinks(t *testing.T) {
	v := NewVertex("Person")
	e := NewEdge("Follows")
	v.AddInEdge("Follows", e)
	require.Same(t, v, e.OutVertex)
}

func TestRegistryFallsBackToGenericForUnknownClass(t *testing.T) {
	reg := NewRegistry()
	v := reg.NewVertex("Unregistered")
	require.Equal(t, "Unregistered", v.Class)
	require.False(t, reg.IsVertexClass("Unregistered"))
}

func TestRegistryReturnsRegisteredConstructor(t *testing.T) {
	reg := NewRegistry()
	type Person struct {
		Vertex
		Name string
	}
	reg.RegisterVertex("Person", func() *Vertex {
		p := &Person{Vertex: *NewVertex("Person")}
		return &p.Vertex
	})
	v := reg.NewVertex("Person")
	require.Equal(t, "Person", v.Class)
	require.True(t, reg.IsVertexClass("Person"))
}
