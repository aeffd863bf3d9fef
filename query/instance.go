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
	"sort"
	"strings"

	"github.com/daill/orientgo/model"
)

// fieldAssignments renders "f1 = v1, f2 = v2" in map iteration order sorted
// by key, giving deterministic, side-effect-free output (§4.7).
func fieldAssignments(fields map[string]interface{}) string {
	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s = %s", name, quoteValue(fields[name])))
	}
	return strings.Join(parts, ", ")
}

// CreateVertex renders `create vertex <class> [set f1 = v1, ...]` (§4.8
// write traversal step 1).
type CreateVertex struct {
	Class  string
	Fields map[string]interface{}
}

func NewCreateVertex(class string, fields map[string]interface{}) *CreateVertex {
	return &CreateVertex{Class: class, Fields: fields}
}

func (c *CreateVertex) Parse() string {
	if len(c.Fields) == 0 {
		return fmt.Sprintf("create vertex %s", c.Class)
	}
	return fmt.Sprintf("create vertex %s set %s", c.Class, fieldAssignments(c.Fields))
}

// CreateEdge renders `create edge <class> from <rid> to <rid> [set ...]`
// (§4.8 write traversal step 2).
type CreateEdge struct {
	Class  string
	From   model.Rid
	To     model.Rid
	Fields map[string]interface{}
}

func NewCreateEdge(class string, from, to model.Rid, fields map[string]interface{}) *CreateEdge {
	return &CreateEdge{Class: class, From: from, To: to, Fields: fields}
}

func (c *CreateEdge) Parse() string {
	base := fmt.Sprintf("create edge %s from %s to %s", c.Class, c.From.String(), c.To.String())
	if len(c.Fields) == 0 {
		return base
	}
	return base + " set " + fieldAssignments(c.Fields)
}
