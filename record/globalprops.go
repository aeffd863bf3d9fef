/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package record implements the two record serializers (§4.6): the
// textual CSV format and the positional binary format. The binary
// decoder consults a global-property dictionary; the entity-class
// directory lives in model.Registry and is not used by this package.
package record

import "sync"

// GlobalProperty is one entry of the schema-level field dictionary: a
// numeric property id maps to a field name and its declared binary type
// (§3 "Global-property dictionary").
type GlobalProperty struct {
	Name string
	Type BinaryType
}

// GlobalProperties is the process/session-scoped propId -> (name, type)
// table, fetched once from the schema metadata record at session open
// (§4.6) and mutated only when that record is loaded (§5 "Shared
// resources"). DB_RELOAD does not touch it.
type GlobalProperties struct {
	mtx   sync.RWMutex
	props map[int]GlobalProperty
}

func NewGlobalProperties() *GlobalProperties {
	return &GlobalProperties{props: map[int]GlobalProperty{}}
}

func (g *GlobalProperties) Set(id int, name string, typ BinaryType) {
	g.mtx.Lock()
	defer g.mtx.Unlock()
	g.props[id] = GlobalProperty{Name: name, Type: typ}
}

func (g *GlobalProperties) Get(id int) (GlobalProperty, bool) {
	g.mtx.RLock()
	defer g.mtx.RUnlock()
	p, ok := g.props[id]
	return p, ok
}

// Replace swaps the entire dictionary, used when the schema metadata
// record is loaded at open.
func (g *GlobalProperties) Replace(props map[int]GlobalProperty) {
	g.mtx.Lock()
	defer g.mtx.Unlock()
	g.props = props
}
