/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package graph

import (
	"github.com/daill/orientgo/model"
	"github.com/daill/orientgo/oerr"
)

// RecordWriter is the façade collaborator the write traversal depends
// on: issuing a CREATE VERTEX/CREATE EDGE statement and returning the
// server-assigned rid and version. Kept as an interface here (rather
// than importing the root façade package) so graph has no dependency on
// Connection/Client; orient.Client implements this directly.
type RecordWriter interface {
	CreateVertex(class string, fields map[string]interface{}) (model.Rid, int32, error)
	CreateEdge(class string, from, to model.Rid, fields map[string]interface{}) (model.Rid, int32, error)
}

// CreateVertex performs the write-graph traversal for createVertex(v)
// (§4.8): emit CREATE VERTEX for v, then depth-first recurse into every
// outgoing edge's target vertex before emitting that edge's CREATE EDGE,
// short-circuiting on any entity that already carries a resolved rid
// (§3 Entity lifecycle, §4.8 step "Cycles").
func CreateVertex(w RecordWriter, v *model.Vertex) error {
	return createVertex(w, v, map[*model.Vertex]bool{})
}

func createVertex(w RecordWriter, v *model.Vertex, visiting map[*model.Vertex]bool) error {
	if v.Persisted() {
		return nil
	}
	if visiting[v] {
		return oerr.New(oerr.Serialization, "write traversal: cycle detected among unresolved vertices", nil)
	}
	visiting[v] = true
	defer delete(visiting, v)

	rid, version, err := w.CreateVertex(v.Class, v.Fields)
	if err != nil {
		return err
	}
	v.Rid = rid
	v.Version = version

	for _, class := range v.OutEdgeClasses() {
		for _, e := range v.OutEdges(class) {
			if e.Persisted() {
				continue
			}
			target := e.OutVertex
			if target == nil {
				return oerr.Newf(oerr.Serialization, nil, "write traversal: edge %q from %v has no resolved out-vertex", class, v.Rid)
			}
			if err := createVertex(w, target, visiting); err != nil {
				return err
			}
			erid, eversion, err := w.CreateEdge(class, v.Rid, target.Rid, e.Fields)
			if err != nil {
				return err
			}
			e.Rid = erid
			e.Version = eversion
		}
	}
	return nil
}
