/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package query

import "github.com/daill/orientgo/model"

// Move renders `move vertex <rid> to class: <ClassName>` (§4.7, §6).
type Move struct {
	RID       model.Rid
	ToClass   string
}

func NewMove(rid model.Rid, toClass string) *Move {
	return &Move{RID: rid, ToClass: toClass}
}

func (m *Move) Parse() string {
	return "move vertex " + m.RID.String() + " to class: " + m.ToClass
}
