/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package graph implements the object-graph materializer and write
// traversal (§4.8): reconstructing linked vertex/edge graphs from
// decoded server records, and walking a detached entity graph to
// persist it depth-first while resolving temporary rids.
package graph

import (
	"github.com/daill/orientgo/model"
	"github.com/daill/orientgo/record"
)

// RawRecord pairs a decoded record body with the rid/version metadata
// the serializer layer carries separately from the record bytes
// themselves (§4.6, §4.4 RECORD_LOAD/COMMAND responses).
type RawRecord struct {
	Rid     model.Rid
	Version int32
	Doc     *record.Document
}

// Materialize decodes a batch of server records into a rid-indexed map
// of graph entities (§4.8 read-graph materialization steps 1-2):
//
//  1. every record becomes a *model.Vertex or *model.Edge, indexed by rid;
//  2. every in/out reference-bag placeholder is resolved against that map
//     when the target was part of the same batch, else left as a TmpRid.
//
// Both the classic heavy-edge shape (a record with its own rid and
// "in"/"out" LINK fields) and the lightweight embedded-edge shape (a
// vertex's out_/in_ reference bag naming adjacent vertices directly, with
// no edge record of its own) are handled; §3 and §8 property 6 describe
// the latter.
func Materialize(raws []RawRecord, registry *model.Registry) map[model.Rid]model.GraphEntity {
	byRid := make(map[model.Rid]model.GraphEntity, len(raws))
	docs := make(map[model.Rid]*record.Document, len(raws))

	for _, raw := range raws {
		doc := raw.Doc
		docs[raw.Rid] = doc

		if isEdgeShaped(doc, registry) {
			e := registry.NewEdge(doc.ClassName)
			e.Rid = raw.Rid
			e.Version = raw.Version
			copyPlainFields(e.Fields, doc, "in", "out")
			byRid[raw.Rid] = e
			continue
		}

		v := registry.NewVertex(doc.ClassName)
		v.Rid = raw.Rid
		v.Version = raw.Version
		copyPlainFields(v.Fields, doc)
		byRid[raw.Rid] = v
	}

	for rid, doc := range docs {
		ent := byRid[rid]
		if e, ok := ent.(*model.Edge); ok {
			resolveClassicEdgeEndpoints(e, doc, byRid)
		}
	}
	for rid, doc := range docs {
		if v, ok := byRid[rid].(*model.Vertex); ok {
			resolveVertexEdgeBags(v, doc, byRid, registry)
		}
	}

	return byRid
}

// FilterByClass returns the subset of entities whose class matches
// className (§4.8 read-graph step 3); every other decoded entity remains
// reachable through the full map Materialize returned.
func FilterByClass(entities map[model.Rid]model.GraphEntity, className string) []model.GraphEntity {
	var out []model.GraphEntity
	for _, e := range entities {
		if e.EntityRef().Class == className {
			out = append(out, e)
		}
	}
	return out
}

func isEdgeShaped(doc *record.Document, registry *model.Registry) bool {
	if registry.IsEdgeClass(doc.ClassName) {
		return true
	}
	_, hasIn := doc.Get("in")
	_, hasOut := doc.Get("out")
	return hasIn && hasOut
}

func copyPlainFields(dst map[string]interface{}, doc *record.Document, skip ...string) {
	skipSet := map[string]bool{}
	for _, s := range skip {
		skipSet[s] = true
	}
	for _, name := range doc.FieldOrder() {
		if skipSet[name] {
			continue
		}
		val, _ := doc.Get(name)
		dst[name] = val
	}
}

func resolveClassicEdgeEndpoints(e *model.Edge, doc *record.Document, byRid map[model.Rid]model.GraphEntity) {
	if inVal, ok := doc.Get("in"); ok {
		if rid, ok := inVal.(model.Rid); ok {
			if tgt, found := byRid[rid]; found {
				if v, ok := tgt.(*model.Vertex); ok {
					e.InVertex = v
				}
			} else {
				r := rid
				e.TmpRid = &r
			}
		}
	}
	if outVal, ok := doc.Get("out"); ok {
		if rid, ok := outVal.(model.Rid); ok {
			if tgt, found := byRid[rid]; found {
				if v, ok := tgt.(*model.Vertex); ok {
					e.OutVertex = v
				}
			} else {
				r := rid
				e.TmpRid = &r
			}
		}
	}
}

// resolveVertexEdgeBags rebuilds v's lightweight out/in edges from the
// document's reference-bag placeholders (§4.6, §8 property 6). Each bag
// entry names an adjacent vertex rid directly -- there is no separate
// edge record -- so a transient *model.Edge is synthesized per entry.
// Tree-variant bags are opaque (§9) and are left unresolved.
func resolveVertexEdgeBags(v *model.Vertex, doc *record.Document, byRid map[model.Rid]model.GraphEntity, registry *model.Registry) {
	for class, bag := range doc.OutEdges {
		if bag.Tree {
			continue
		}
		for _, rid := range bag.Rids {
			e := registry.NewEdge(class)
			if tgt, found := byRid[rid]; found {
				if tv, ok := tgt.(*model.Vertex); ok {
					e.OutVertex = tv
				}
			} else if !rid.Zero() {
				r := rid
				e.TmpRid = &r
			}
			v.AddOutEdge(class, e) // back-links e.InVertex = v (§3)
		}
	}
	for class, bag := range doc.InEdges {
		if bag.Tree {
			continue
		}
		for _, rid := range bag.Rids {
			e := registry.NewEdge(class)
			if tgt, found := byRid[rid]; found {
				if sv, ok := tgt.(*model.Vertex); ok {
					e.InVertex = sv
				}
			} else if !rid.Zero() {
				r := rid
				e.TmpRid = &r
			}
			v.AddInEdge(class, e) // back-links e.OutVertex = v (§3)
		}
	}
}
