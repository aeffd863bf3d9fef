/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package model

// BagPointer identifies a server-side sbtree-resident reference bag
// (§3 "ReferenceBag (tree variant)"). The core treats this as opaque and
// never dereferences it (§9 "Reference-bag tree variant").
type BagPointer struct {
	FileID     int64
	PageIndex  int64
	PageOffset int64
}

// ReferenceBag is the tagged variant called for by §9's re-architecture
// note: only Embedded is consumed by the materializer, Tree surfaces as
// an opaque handle to the caller.
type ReferenceBag struct {
	// Tree is true when this bag is sbtree-resident; in that case Rids is
	// unset and Pointer identifies the server-side structure.
	Tree bool

	// Rids is the ordered sequence of rids for an embedded bag. Invariant
	// (§3): len(Rids) equals the bag's declared size.
	Rids []Rid

	Pointer BagPointer
}

// NewEmbeddedBag wraps an ordered rid sequence as an embedded reference
// bag.
func NewEmbeddedBag(rids []Rid) ReferenceBag {
	return ReferenceBag{Rids: rids}
}

// NewTreeBag wraps an opaque tree-resident bag pointer.
func NewTreeBag(p BagPointer) ReferenceBag {
	return ReferenceBag{Tree: true, Pointer: p}
}
