/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package record

import (
	"strings"

	"github.com/daill/orientgo/model"
)

// Document is the serializer-neutral output of a decode (and the input
// to an encode): a class name plus ordered fields, with reference-bag
// fields already split into outgoing/incoming edge buckets by the
// out_/in_ naming convention (§4.6). The graph materializer promotes a
// Document into a concrete *model.Vertex or *model.Edge; embedded values
// nested inside a record stay as a Document since they have no rid of
// their own.
type Document struct {
	ClassName string

	order  []string
	fields map[string]interface{}

	// OutEdges/InEdges hold reference-bag fields whose name began with
	// out_/in_, keyed by the edge-class suffix (§4.6).
	OutEdges map[string]model.ReferenceBag
	InEdges  map[string]model.ReferenceBag
}

func NewDocument(className string) *Document {
	return &Document{
		ClassName: className,
		fields:    map[string]interface{}{},
		OutEdges:  map[string]model.ReferenceBag{},
		InEdges:   map[string]model.ReferenceBag{},
	}
}

// Set assigns a field value, recording first-seen order for deterministic
// re-encoding.
func (d *Document) Set(name string, value interface{}) {
	if _, ok := d.fields[name]; !ok {
		d.order = append(d.order, name)
	}
	d.fields[name] = value
}

func (d *Document) Get(name string) (interface{}, bool) {
	v, ok := d.fields[name]
	return v, ok
}

// FieldOrder returns field names in first-set order.
func (d *Document) FieldOrder() []string {
	return d.order
}

func (d *Document) Fields() map[string]interface{} {
	return d.fields
}

// routeField assigns a decoded (name, value) pair either to the ordinary
// Fields map or, when it is a reference bag whose name carries the
// out_/in_ prefix, to OutEdges/InEdges keyed by the class-name suffix.
func (d *Document) routeField(name string, value interface{}) {
	if bag, ok := value.(model.ReferenceBag); ok {
		if suffix, ok := strings.CutPrefix(name, "out_"); ok {
			d.OutEdges[suffix] = bag
			return
		}
		if suffix, ok := strings.CutPrefix(name, "in_"); ok {
			d.InEdges[suffix] = bag
			return
		}
	}
	d.Set(name, value)
}
