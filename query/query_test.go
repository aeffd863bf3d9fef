/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package query

import (
	"testing"

	"github.com/daill/orientgo/model"
	"github.com/stretchr/testify/require"
)

// TestSelectLiterals reproduces §6's literal select forms character for
// character (§8 property 7).
func TestSelectLiterals(t *testing.T) {
	require.Equal(t, "select from TestLocation", NewSelect("TestLocation").Parse())
	require.Equal(t, "select name from TestLocation", NewSelect("TestLocation", "name").Parse())

	where := NewWhere(Or(NewCondition("name").Eq("Eddies"), NewCondition("type").Eq("Pizaaria")))
	got := NewSelect("TestLocation").With(where).Parse()
	require.Equal(t, "select from TestLocation  where  ( name = 'Eddies'  or type = 'Pizaaria'  )", got)
}

// TestSelectScenarioC reproduces §8 scenario C's query text exactly.
func TestSelectScenarioC(t *testing.T) {
	where := NewWhere(NewCondition("name").Eq("Berlin"))
	got := NewSelect("City").With(where).Parse()
	require.Equal(t, "select from City  where name = 'Berlin' ", got)
}

// TestClauseOrdering reproduces §8 property 8: clauses render in
// canonical order (Where before OrderBy before Limit) regardless of the
// order they were attached in.
func TestClauseOrdering(t *testing.T) {
	s := NewSelect("City").With(
		NewOrderBy(SortField{Field: "name", Direction: Asc}),
		NewWhere(NewCondition("name").Eq("Berlin")),
		NewLimit(10),
	)
	got := s.Parse()

	whereIdx := indexOf(got, "where")
	orderIdx := indexOf(got, "order by")
	limitIdx := indexOf(got, "limit")
	require.True(t, whereIdx >= 0 && orderIdx >= 0 && limitIdx >= 0)
	require.Less(t, whereIdx, orderIdx)
	require.Less(t, orderIdx, limitIdx)
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}

func TestCreateDropLiterals(t *testing.T) {
	require.Equal(t, "create class TestCoordinates extends V",
		NewCreate(ClassTarget{Name: "TestCoordinates", Extends: "V"}).Parse())
	require.Equal(t, "create property TestCoordinates.land STRING",
		NewCreate(PropertyTarget{Class: "TestCoordinates", Field: "land", Type: "STRING"}).Parse())
	require.Equal(t, "create property TestCoordinates.land EMBEDDEDLIST TestLocation",
		NewCreate(PropertyTarget{Class: "TestCoordinates", Field: "land", Type: "EMBEDDEDLIST", LinkedType: "TestLocation"}).Parse())
	require.Equal(t, "create index test on TestCoordinates (id, bla, hallo)",
		NewCreate(IndexTarget{Name: "test", OnClass: "TestCoordinates", Fields: []string{"id", "bla", "hallo"}}).Parse())
	require.Equal(t, "create index TestCoordinates.id unique",
		NewCreate(IndexTarget{ClassField: "TestCoordinates.id", Unique: true}).Parse())
}

func TestDeleteLiterals(t *testing.T) {
	rid := model.Rid{ClusterID: 12, Position: 2}
	require.Equal(t, "delete vertex  #12:2", NewDeleteSubclass(DeleteVertex).ByRID(rid).Parse())

	from := model.Rid{ClusterID: 2, Position: 3}
	to := model.Rid{ClusterID: 1, Position: 2}
	require.Equal(t, "delete edge  from #2:3 to #1:2", NewDeleteSubclass(DeleteEdge).FromTo(from, to).Parse())
}

func TestMoveLiteral(t *testing.T) {
	rid := model.Rid{ClusterID: 12, Position: 2}
	require.Equal(t, "move vertex #12:2 to class: TestLocation", NewMove(rid, "TestLocation").Parse())
}

func TestTraverseLiteral(t *testing.T) {
	targets := []TraverseTarget{
		TargetRID(model.Rid{ClusterID: 13, Position: 4}),
		TargetRID(model.Rid{ClusterID: 12, Position: 4}),
	}
	tr := NewTraverse(targets, "a", "b").WithWhile(NewCondition("a").Eq("b"))
	require.Equal(t, "traverse a, b  from #13:4, #12:4   while a = 'b'", tr.Parse())
}

func TestCreateInstanceLiterals(t *testing.T) {
	require.Equal(t, "create vertex Person", NewCreateVertex("Person", nil).Parse())
	require.Equal(t, "create vertex Person set age = 30, name = 'bob'",
		NewCreateVertex("Person", map[string]interface{}{"name": "bob", "age": 30}).Parse())

	from := model.Rid{ClusterID: 9, Position: 0}
	to := model.Rid{ClusterID: 9, Position: 1}
	require.Equal(t, "create edge Friend from #9:0 to #9:1", NewCreateEdge("Friend", from, to, nil).Parse())
}

func TestDeleteVertexDropsFromTo(t *testing.T) {
	from := model.Rid{ClusterID: 2, Position: 3}
	to := model.Rid{ClusterID: 1, Position: 2}
	d := NewDeleteSubclass(DeleteVertex).FromTo(from, to)
	require.Equal(t, "delete vertex", d.Parse())
}
