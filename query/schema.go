/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package query

import (
	"fmt"
	"strings"
)

// SchemaTarget is a Create/Drop inner type (§4.7: Class, Cluster, Vertex,
// Edge, Index, Property): each renders its own CREATE and DROP text.
type SchemaTarget interface {
	CreateText() string
	DropText() string
}

// DeletableSchemaTarget additionally renders a DELETE form, a capability
// §4.7 reserves for Class/Vertex/Edge.
type DeletableSchemaTarget interface {
	SchemaTarget
	DeleteText() string
}

// ClassTarget is `class <Name> [extends <Extends>]`.
type ClassTarget struct {
	Name    string
	Extends string
}

func (c ClassTarget) CreateText() string {
	if c.Extends != "" {
		return "class " + c.Name + " extends " + c.Extends
	}
	return "class " + c.Name
}
func (c ClassTarget) DropText() string   { return "class " + c.Name }
func (c ClassTarget) DeleteText() string { return "class " + c.Name }

// ClusterTarget is `cluster <Name>`.
type ClusterTarget struct {
	Name string
}

func (c ClusterTarget) CreateText() string { return "cluster " + c.Name }
func (c ClusterTarget) DropText() string   { return "cluster " + c.Name }

// VertexTarget is `vertex <Name> [extends <Extends>]`.
type VertexTarget struct {
	Name    string
	Extends string
}

func (v VertexTarget) CreateText() string {
	if v.Extends != "" {
		return "vertex " + v.Name + " extends " + v.Extends
	}
	return "vertex " + v.Name
}
func (v VertexTarget) DropText() string   { return "vertex " + v.Name }
func (v VertexTarget) DeleteText() string { return "vertex " + v.Name }

// EdgeTarget is `edge <Name> [extends <Extends>]`.
type EdgeTarget struct {
	Name    string
	Extends string
}

func (e EdgeTarget) CreateText() string {
	if e.Extends != "" {
		return "edge " + e.Name + " extends " + e.Extends
	}
	return "edge " + e.Name
}
func (e EdgeTarget) DropText() string   { return "edge " + e.Name }
func (e EdgeTarget) DeleteText() string { return "edge " + e.Name }

// IndexTarget is either the named `index <Name> on <OnClass> (fields)`
// form or the shorthand `index <Class>.<Field> unique` form (§6).
type IndexTarget struct {
	Name       string
	OnClass    string
	Fields     []string
	ClassField string // e.g. "TestCoordinates.id" for the shorthand form
	Unique     bool
}

func (i IndexTarget) CreateText() string {
	if i.Name != "" && i.OnClass != "" && len(i.Fields) > 0 {
		return fmt.Sprintf("index %s on %s (%s)", i.Name, i.OnClass, strings.Join(i.Fields, ", "))
	}
	if i.Unique {
		return fmt.Sprintf("index %s unique", i.ClassField)
	}
	return fmt.Sprintf("index %s", i.ClassField)
}

func (i IndexTarget) DropText() string {
	if i.Name != "" {
		return "index " + i.Name
	}
	return "index " + i.ClassField
}

// PropertyTarget is `property <Class>.<Field> <Type> [<LinkedType>]`.
type PropertyTarget struct {
	Class      string
	Field      string
	Type       string
	LinkedType string // set for EMBEDDEDLIST/LINKSET/etc. (§6)
}

func (p PropertyTarget) CreateText() string {
	base := fmt.Sprintf("property %s.%s %s", p.Class, p.Field, p.Type)
	if p.LinkedType != "" {
		return base + " " + p.LinkedType
	}
	return base
}
func (p PropertyTarget) DropText() string { return fmt.Sprintf("property %s.%s", p.Class, p.Field) }

// Create renders `create <target>` (§4.7, §6).
type Create struct {
	Target SchemaTarget
}

func NewCreate(target SchemaTarget) *Create { return &Create{Target: target} }
func (c *Create) Parse() string             { return "create " + c.Target.CreateText() }

// Drop renders `drop <target>` (§4.7).
type Drop struct {
	Target SchemaTarget
}

func NewDrop(target SchemaTarget) *Drop { return &Drop{Target: target} }
func (d *Drop) Parse() string           { return "drop " + d.Target.DropText() }
