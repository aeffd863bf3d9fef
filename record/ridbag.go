/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package record

import (
	"github.com/daill/orientgo/model"
	"github.com/daill/orientgo/oerr"
	"github.com/daill/orientgo/wire"
)

const (
	bagFlagUUID     byte = 1 << 1
	bagFlagEmbedded byte = 1 << 0
)

// DecodeRidBag decodes a LINKBAG value (§4.6): a flags byte, an optional
// two-long UUID when bit 2 is set, then either the embedded rid sequence
// (bit 1) or an opaque tree pointer. Only the embedded variant is ever
// dereferenced by the materializer; the tree variant surfaces as an
// opaque model.BagPointer (§9 "Reference-bag tree variant").
func DecodeRidBag(r *wire.Reader) (model.ReferenceBag, error) {
	flags, err := r.ReadByte()
	if err != nil {
		return model.ReferenceBag{}, err
	}
	if flags&bagFlagUUID != 0 {
		if _, err := r.ReadLong(); err != nil { // uuid most-significant bits
			return model.ReferenceBag{}, err
		}
		if _, err := r.ReadLong(); err != nil { // uuid least-significant bits
			return model.ReferenceBag{}, err
		}
	}
	if flags&bagFlagEmbedded != 0 {
		count, err := r.ReadInt()
		if err != nil {
			return model.ReferenceBag{}, err
		}
		if count < 0 {
			return model.ReferenceBag{}, oerr.Newf(oerr.Serialization, nil, "ridbag: negative embedded count %d", count)
		}
		rids := make([]model.Rid, 0, count)
		for i := int32(0); i < count; i++ {
			rid, err := decodeLink(r)
			if err != nil {
				return model.ReferenceBag{}, err
			}
			rids = append(rids, rid)
		}
		return model.NewEmbeddedBag(rids), nil
	}
	// tree variant: opaque, never dereferenced. Each field decode seeks
	// to its own absolute offset (§4.6), so it is safe to stop reading
	// this value here without knowing the trailing change-set's length.
	fileID, err := r.ReadVarint()
	if err != nil {
		return model.ReferenceBag{}, err
	}
	pageIndex, err := r.ReadVarint()
	if err != nil {
		return model.ReferenceBag{}, err
	}
	pageOffset, err := r.ReadVarint()
	if err != nil {
		return model.ReferenceBag{}, err
	}
	return model.NewTreeBag(model.BagPointer{FileID: fileID, PageIndex: pageIndex, PageOffset: pageOffset}), nil
}

// EncodeRidBag encodes an embedded reference bag. Encoding a tree-variant
// bag is not supported -- the client never originates one.
func EncodeRidBag(w *wire.Writer, bag model.ReferenceBag) error {
	if bag.Tree {
		return oerr.New(oerr.Serialization, "ridbag: cannot encode a tree-variant bag", nil)
	}
	if err := w.WriteByte(bagFlagEmbedded); err != nil {
		return err
	}
	if err := w.WriteInt(int32(len(bag.Rids))); err != nil {
		return err
	}
	for _, rid := range bag.Rids {
		if err := encodeLink(w, rid); err != nil {
			return err
		}
	}
	return nil
}

func decodeLink(r *wire.Reader) (model.Rid, error) {
	cluster, err := r.ReadVarint()
	if err != nil {
		return model.Rid{}, err
	}
	position, err := r.ReadVarint()
	if err != nil {
		return model.Rid{}, err
	}
	if cluster == wire.NullRidCluster {
		return model.Rid{}, nil
	}
	return model.Rid{ClusterID: int16(cluster), Position: position}, nil
}

func encodeLink(w *wire.Writer, rid model.Rid) error {
	if err := w.WriteVarint(int64(rid.ClusterID)); err != nil {
		return err
	}
	return w.WriteVarint(rid.Position)
}

// DecodeRidBagDocument decodes the ridbag "document" sub-format embedded
// in a base64 blob within a CSV record field (§4.6 "Textual (CSV)
// serializer"): the same flags-prefixed layout as a binary LINKBAG value.
func DecodeRidBagDocument(raw []byte) ([]model.Rid, error) {
	bag, err := DecodeRidBag(wire.NewReader(raw))
	if err != nil {
		return nil, err
	}
	if bag.Tree {
		return nil, oerr.New(oerr.Serialization, "ridbag document references an unsupported tree-resident bag", nil)
	}
	return bag.Rids, nil
}
