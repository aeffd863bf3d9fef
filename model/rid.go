/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package model holds the record identifier, entity base, and
// vertex/edge/reference-bag types shared by the record serializers and
// the graph materializer.
package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Rid is a record identifier: a cluster id paired with a position within
// that cluster (§3). A Rid is temporary (not yet persisted) when
// Position is negative.
type Rid struct {
	ClusterID int16
	Position  int64
}

// NewTemporaryRid returns a Rid that has not been assigned a real
// position yet; callers use distinct negative positions as placeholders
// during a write traversal.
func NewTemporaryRid(clusterID int16, placeholder int64) Rid {
	if placeholder >= 0 {
		placeholder = -(placeholder + 1)
	}
	return Rid{ClusterID: clusterID, Position: placeholder}
}

// Temporary reports whether the rid has not yet been persisted.
func (r Rid) Temporary() bool { return r.Position < 0 }

// Resolved reports whether the rid refers to a persisted record.
func (r Rid) Resolved() bool { return r.Position >= 0 }

// Zero reports whether this is the zero-value Rid (never assigned).
func (r Rid) Zero() bool { return r.ClusterID == 0 && r.Position == 0 }

// String renders the canonical textual form "#clusterId:clusterPosition".
func (r Rid) String() string {
	return fmt.Sprintf("#%d:%d", r.ClusterID, r.Position)
}

// ParseRid parses the canonical "#clusterId:clusterPosition" textual
// form produced by String.
func ParseRid(s string) (Rid, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		return Rid{}, fmt.Errorf("model: rid %q missing leading '#'", s)
	}
	parts := strings.SplitN(s[1:], ":", 2)
	if len(parts) != 2 {
		return Rid{}, fmt.Errorf("model: rid %q missing ':' separator", s)
	}
	cid, err := strconv.ParseInt(parts[0], 10, 16)
	if err != nil {
		return Rid{}, fmt.Errorf("model: rid %q invalid cluster id: %w", s, err)
	}
	pos, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Rid{}, fmt.Errorf("model: rid %q invalid cluster position: %w", s, err)
	}
	return Rid{ClusterID: int16(cid), Position: pos}, nil
}

// Equal is rid equality, which is also entity equality (§3).
func (r Rid) Equal(o Rid) bool {
	return r.ClusterID == o.ClusterID && r.Position == o.Position
}
