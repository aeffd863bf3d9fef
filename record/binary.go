/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package record

import (
	"time"

	"github.com/daill/orientgo/model"
	"github.com/daill/orientgo/oerr"
	"github.com/daill/orientgo/wire"
)

// binaryVersion is the only record-serializer version this client speaks.
const binaryVersion = 0

// headerEntry is one parsed header slot: either a schema-inline field name
// or a resolved global-property name, always carrying the field's
// absolute value offset and binary type (§4.6).
type headerEntry struct {
	Name   string
	Offset int32
	Type   BinaryType
}

// DecodeBinary decodes a positional binary record (§4.6). globals resolves
// header entries that reference the global-property dictionary by id
// instead of carrying an inline field name.
func DecodeBinary(raw []byte, globals *GlobalProperties) (*Document, error) {
	r := wire.NewReader(raw)

	version, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != binaryVersion {
		return nil, oerr.Newf(oerr.Serialization, nil, "binary record: unsupported version %d", version)
	}

	className, err := decodeRecordClassName(r)
	if err != nil {
		return nil, err
	}

	headers, err := decodeHeaders(r, globals)
	if err != nil {
		return nil, err
	}

	doc := NewDocument(className)
	current := r.Pos()
	for _, h := range headers {
		if h.Offset == 0 {
			doc.routeField(h.Name, nil)
			continue
		}
		if int(h.Offset) < current {
			return nil, oerr.Newf(oerr.Serialization, nil, "binary record: field %q offset %d precedes current position %d", h.Name, h.Offset, current)
		}
		r.Seek(int(h.Offset))
		val, err := decodeValue(r, h.Type, globals)
		if err != nil {
			return nil, err
		}
		doc.routeField(h.Name, val)
		current = r.Pos()
	}
	return doc, nil
}

func decodeRecordClassName(r *wire.Reader) (string, error) {
	n, err := r.ReadVarint()
	if err != nil {
		return "", err
	}
	if n <= 0 {
		return "", nil
	}
	b, err := r.ReadRaw(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeHeaders(r *wire.Reader, globals *GlobalProperties) ([]headerEntry, error) {
	var headers []headerEntry
	for {
		nameLen, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		if nameLen == 0 {
			return headers, nil
		}
		if nameLen > 0 {
			nameBytes, err := r.ReadRaw(int(nameLen))
			if err != nil {
				return nil, err
			}
			offset, err := r.ReadInt()
			if err != nil {
				return nil, err
			}
			typ, err := r.ReadByte()
			if err != nil {
				return nil, err
			}
			headers = append(headers, headerEntry{Name: string(nameBytes), Offset: offset, Type: BinaryType(typ)})
			continue
		}
		// Negative length: -propertyId-1 into the global-property dictionary.
		propID := int(-nameLen - 1)
		offset, err := r.ReadInt()
		if err != nil {
			return nil, err
		}
		prop, ok := globals.Get(propID)
		if !ok {
			return nil, oerr.Newf(oerr.Serialization, nil, "binary record: unknown global property id %d", propID)
		}
		headers = append(headers, headerEntry{Name: prop.Name, Offset: offset, Type: prop.Type})
	}
}

func decodeValue(r *wire.Reader, typ BinaryType, globals *GlobalProperties) (interface{}, error) {
	switch typ {
	case TBoolean:
		return r.ReadBoolean()
	case TByte:
		return r.ReadByte()
	case TShort:
		v, err := r.ReadVarint()
		return int16(v), err
	case TInt:
		v, err := r.ReadVarint()
		return int32(v), err
	case TLong:
		return r.ReadVarint()
	case TFloat:
		return r.ReadFloat()
	case TDouble:
		return r.ReadDouble()
	case TString:
		return r.ReadVarintString()
	case TDateTime:
		millis, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		return time.UnixMilli(millis).UTC(), nil
	case TDate:
		days, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		return time.Unix(0, 0).UTC().AddDate(0, 0, int(days)), nil
	case TBinary:
		n, err := r.ReadVarint()
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, oerr.Newf(oerr.Serialization, nil, "binary record: negative BINARY length %d", n)
		}
		return r.ReadRaw(int(n))
	case TEmbedded:
		return decodeEmbedded(r, globals)
	case TEmbeddedList, TEmbeddedSet:
		return decodeEmbeddedCollection(r, globals)
	case TEmbeddedMap:
		return decodeEmbeddedMap(r, globals)
	case TLink:
		return decodeLink(r)
	case TLinkList, TLinkSet:
		return decodeLinkCollection(r)
	case TLinkMap:
		return decodeLinkMap(r)
	case TLinkBag:
		return DecodeRidBag(r)
	default:
		return nil, oerr.Newf(oerr.TypeNotFound, nil, "binary record: unknown value type tag %d", byte(typ))
	}
}

// decodeEmbedded decodes a nested record with no leading version byte:
// class name, headers, values, same as the top-level record body.
func decodeEmbedded(r *wire.Reader, globals *GlobalProperties) (*Document, error) {
	className, err := decodeRecordClassName(r)
	if err != nil {
		return nil, err
	}
	headers, err := decodeHeaders(r, globals)
	if err != nil {
		return nil, err
	}
	doc := NewDocument(className)
	current := r.Pos()
	for _, h := range headers {
		if h.Offset == 0 {
			doc.routeField(h.Name, nil)
			continue
		}
		if int(h.Offset) < current {
			return nil, oerr.Newf(oerr.Serialization, nil, "embedded record: field %q offset %d precedes current position %d", h.Name, h.Offset, current)
		}
		r.Seek(int(h.Offset))
		val, err := decodeValue(r, h.Type, globals)
		if err != nil {
			return nil, err
		}
		doc.routeField(h.Name, val)
		current = r.Pos()
	}
	return doc, nil
}

// decodeEmbeddedCollection decodes EMBEDDEDLIST/EMBEDDEDSET: a varint
// count, a linked-type ANY tag byte, then that many self-describing
// (tag, value) pairs (§4.6).
func decodeEmbeddedCollection(r *wire.Reader, globals *GlobalProperties) ([]interface{}, error) {
	count, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, oerr.Newf(oerr.Serialization, nil, "binary record: negative collection count %d", count)
	}
	if _, err := r.ReadByte(); err != nil { // linked-type tag; elements still declare their own
		return nil, err
	}
	out := make([]interface{}, 0, count)
	for i := int64(0); i < count; i++ {
		tag, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		val, err := decodeValue(r, BinaryType(tag), globals)
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}
	return out, nil
}

// embeddedMapEntry mirrors headerEntry for EMBEDDEDMAP's keyed,
// offset-addressed values.
type embeddedMapEntry struct {
	Key    interface{}
	Offset int32
	Type   BinaryType
}

func decodeEmbeddedMap(r *wire.Reader, globals *GlobalProperties) (map[interface{}]interface{}, error) {
	count, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, oerr.Newf(oerr.Serialization, nil, "binary record: negative map count %d", count)
	}
	entries := make([]embeddedMapEntry, 0, count)
	for i := int64(0); i < count; i++ {
		keyTag, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		key, err := decodeValue(r, BinaryType(keyTag), globals)
		if err != nil {
			return nil, err
		}
		offset, err := r.ReadInt()
		if err != nil {
			return nil, err
		}
		valTag, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		entries = append(entries, embeddedMapEntry{Key: key, Offset: offset, Type: BinaryType(valTag)})
	}
	out := make(map[interface{}]interface{}, len(entries))
	current := r.Pos()
	for _, e := range entries {
		if e.Offset == 0 {
			out[e.Key] = nil
			continue
		}
		if int(e.Offset) < current {
			return nil, oerr.Newf(oerr.Serialization, nil, "binary record: map value offset %d precedes current position %d", e.Offset, current)
		}
		r.Seek(int(e.Offset))
		val, err := decodeValue(r, e.Type, globals)
		if err != nil {
			return nil, err
		}
		out[e.Key] = val
		current = r.Pos()
	}
	return out, nil
}

func decodeLinkCollection(r *wire.Reader) ([]model.Rid, error) {
	count, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, oerr.Newf(oerr.Serialization, nil, "binary record: negative link collection count %d", count)
	}
	out := make([]model.Rid, 0, count)
	for i := int64(0); i < count; i++ {
		rid, err := decodeLink(r)
		if err != nil {
			return nil, err
		}
		out = append(out, rid)
	}
	return out, nil
}

func decodeLinkMap(r *wire.Reader) (map[interface{}]model.Rid, error) {
	count, err := r.ReadVarint()
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, oerr.Newf(oerr.Serialization, nil, "binary record: negative link map count %d", count)
	}
	out := make(map[interface{}]model.Rid, count)
	for i := int64(0); i < count; i++ {
		keyTag, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		key, err := decodeValue(r, BinaryType(keyTag), nil)
		if err != nil {
			return nil, err
		}
		rid, err := decodeLink(r)
		if err != nil {
			return nil, err
		}
		out[key] = rid
	}
	return out, nil
}

// EncodeBinary encodes a Document in the positional binary format. Fields
// are always written with inline names; the global-property dictionary is
// a decode-side convenience this client never emits on writes (a
// simplification over the full protocol, which accepts either form).
func EncodeBinary(doc *Document) ([]byte, error) {
	// base=1: the version byte occupies absolute offset 0, so the body
	// (class name, headers, data) starts at offset 1. §4.6's header and
	// embedded-map offsets are measured from the start of the whole
	// record, including this version byte, so every absolute offset
	// computed while encoding the body must be threaded from here down
	// through nested embedded records/maps/collections rather than
	// restarting from zero in a sub-writer.
	body, err := encodeRecordBody(doc, 1)
	if err != nil {
		return nil, err
	}
	w := wire.NewWriter()
	if err := w.WriteByte(binaryVersion); err != nil {
		return nil, err
	}
	if err := w.WriteRaw(body.Bytes()); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// encodeRecordBody serializes doc's class name, header, and field data
// (§4.6), with every absolute offset measured from base -- the position
// the class-name length will occupy in the ultimate output buffer.
// EncodeBinary calls this with base set just past its own version byte;
// an embedded record (which has no version byte of its own) calls it
// with base set to wherever its bytes land inside the parent record, so
// that its header offsets stay whole-record-absolute like the decoder
// expects.
func encodeRecordBody(doc *Document, base int) (*wire.Writer, error) {
	names := make([]string, 0, len(doc.FieldOrder())+len(doc.OutEdges)+len(doc.InEdges))
	values := make([]interface{}, 0, cap(names))
	for _, name := range doc.FieldOrder() {
		val, _ := doc.Get(name)
		names = append(names, name)
		values = append(values, val)
	}
	for class, bag := range doc.OutEdges {
		names = append(names, "out_"+class)
		values = append(values, bag)
	}
	for class, bag := range doc.InEdges {
		names = append(names, "in_"+class)
		values = append(values, bag)
	}

	classNameLen := varintLen(0)
	if doc.ClassName != "" {
		classNameLen = varintLen(int64(len(doc.ClassName))) + len(doc.ClassName)
	}

	headerLen := 0
	for _, name := range names {
		headerLen += varintLen(int64(len(name))) + len(name) + 4 + 1
	}
	headerLen += varintLen(0) // terminator

	dataStart := base + classNameLen + headerLen

	type resolved struct {
		typ   BinaryType
		bytes []byte // nil means a null field (offset 0)
	}
	resolvedVals := make([]resolved, len(names))
	offsets := make([]int, len(names))
	offset := dataStart
	for i, val := range values {
		if val == nil {
			continue
		}
		typ, vw, err := encodeValue(val, offset)
		if err != nil {
			return nil, err
		}
		resolvedVals[i] = resolved{typ: typ, bytes: vw.Bytes()}
		offsets[i] = offset
		offset += len(vw.Bytes())
	}

	w := wire.NewWriter()
	if doc.ClassName == "" {
		if err := w.WriteVarint(0); err != nil {
			return nil, err
		}
	} else {
		if err := w.WriteVarint(int64(len(doc.ClassName))); err != nil {
			return nil, err
		}
		if err := w.WriteRaw([]byte(doc.ClassName)); err != nil {
			return nil, err
		}
	}
	for i, name := range names {
		if err := w.WriteVarint(int64(len(name))); err != nil {
			return nil, err
		}
		if err := w.WriteRaw([]byte(name)); err != nil {
			return nil, err
		}
		if err := w.WriteInt(int32(offsets[i])); err != nil {
			return nil, err
		}
		if err := w.WriteByte(byte(resolvedVals[i].typ)); err != nil {
			return nil, err
		}
	}
	if err := w.WriteVarint(0); err != nil {
		return nil, err
	}
	for _, rv := range resolvedVals {
		if rv.bytes == nil {
			continue
		}
		if err := w.WriteRaw(rv.bytes); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// encodeValue infers a BinaryType from a Go value's concrete type and
// returns its serialized form. base is the absolute offset, within the
// final record buffer, where the returned bytes will ultimately land;
// value kinds that themselves carry absolute offsets (embedded records,
// embedded maps, and anything nested inside a list) need it to stay
// record-relative instead of restarting from zero in their own
// sub-writer (§4.6).
func encodeValue(val interface{}, base int) (BinaryType, *wire.Writer, error) {
	w := wire.NewWriter()
	switch v := val.(type) {
	case bool:
		return TBoolean, w, w.WriteBoolean(v)
	case byte:
		return TByte, w, w.WriteByte(v)
	case int16:
		return TShort, w, w.WriteVarint(int64(v))
	case int32:
		return TInt, w, w.WriteVarint(int64(v))
	case int:
		return TInt, w, w.WriteVarint(int64(v))
	case int64:
		return TLong, w, w.WriteVarint(v)
	case float32:
		return TFloat, w, w.WriteFloat(v)
	case float64:
		return TDouble, w, w.WriteDouble(v)
	case string:
		return TString, w, w.WriteVarintString(v)
	case time.Time:
		return TDateTime, w, w.WriteVarint(v.UnixMilli())
	case []byte:
		if err := w.WriteVarint(int64(len(v))); err != nil {
			return 0, nil, err
		}
		return TBinary, w, w.WriteRaw(v)
	case *Document:
		body, err := encodeRecordBody(v, base)
		return TEmbedded, body, err
	case []interface{}:
		err := encodeEmbeddedCollectionInto(w, v, base)
		return TEmbeddedList, w, err
	case map[interface{}]interface{}:
		body, err := encodeEmbeddedMapBody(v, base)
		return TEmbeddedMap, body, err
	case model.Rid:
		return TLink, w, encodeLink(w, v)
	case []model.Rid:
		if err := w.WriteVarint(int64(len(v))); err != nil {
			return 0, nil, err
		}
		for _, rid := range v {
			if err := encodeLink(w, rid); err != nil {
				return 0, nil, err
			}
		}
		return TLinkList, w, nil
	case model.ReferenceBag:
		return TLinkBag, w, EncodeRidBag(w, v)
	default:
		return 0, nil, oerr.Newf(oerr.TypeNotFound, nil, "binary record: no encoding for Go type %T", val)
	}
}

// encodeEmbeddedCollectionInto writes an EMBEDDEDLIST/EMBEDDEDSET: a
// varint count, a linked-type ANY tag byte, then count x (tag byte,
// value) pairs inlined directly in the stream (§4.6) -- unlike header and
// map entries, list elements carry no stored offset of their own, but an
// element that is itself an embedded record/map still needs the running
// absolute position to keep its internal offsets record-relative.
func encodeEmbeddedCollectionInto(w *wire.Writer, vals []interface{}, base int) error {
	if err := w.WriteVarint(int64(len(vals))); err != nil {
		return err
	}
	if err := w.WriteByte(byte(TAny)); err != nil {
		return err
	}
	for _, v := range vals {
		elemBase := base + w.Len() + 1 // +1 for this element's own tag byte, written next
		typ, vw, err := encodeValue(v, elemBase)
		if err != nil {
			return err
		}
		if err := w.WriteByte(byte(typ)); err != nil {
			return err
		}
		if err := w.WriteRaw(vw.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

// encodeEmbeddedMapBody writes an EMBEDDEDMAP's header (count plus, per
// entry, keyTag+key and a placeholder int32 offset + valueTag) followed
// by the value data section, with offsets measured from base the same
// way encodeRecordBody measures its field offsets (§4.6).
func encodeEmbeddedMapBody(m map[interface{}]interface{}, base int) (*wire.Writer, error) {
	type entry struct {
		keyTag   BinaryType
		keyBytes []byte
		val      interface{}
	}
	entries := make([]entry, 0, len(m))
	for k, v := range m {
		kTag, kw, err := encodeValue(k, 0) // keys never carry internal absolute offsets
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{keyTag: kTag, keyBytes: kw.Bytes(), val: v})
	}

	headerLen := varintLen(int64(len(entries)))
	for _, e := range entries {
		headerLen += 1 + len(e.keyBytes) + 4 + 1
	}
	dataStart := base + headerLen

	type resolved struct {
		typ   BinaryType
		bytes []byte
	}
	resolvedVals := make([]resolved, len(entries))
	offsets := make([]int, len(entries))
	offset := dataStart
	for i, e := range entries {
		typ, vw, err := encodeValue(e.val, offset)
		if err != nil {
			return nil, err
		}
		resolvedVals[i] = resolved{typ: typ, bytes: vw.Bytes()}
		offsets[i] = offset
		offset += len(vw.Bytes())
	}

	w := wire.NewWriter()
	if err := w.WriteVarint(int64(len(entries))); err != nil {
		return nil, err
	}
	for i, e := range entries {
		if err := w.WriteByte(byte(e.keyTag)); err != nil {
			return nil, err
		}
		if err := w.WriteRaw(e.keyBytes); err != nil {
			return nil, err
		}
		if err := w.WriteInt(int32(offsets[i])); err != nil {
			return nil, err
		}
		if err := w.WriteByte(byte(resolvedVals[i].typ)); err != nil {
			return nil, err
		}
	}
	for _, rv := range resolvedVals {
		if err := w.WriteRaw(rv.bytes); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// varintLen reports the ZigZag-varint encoded length of v without writing
// it, used to precompute header size.
func varintLen(v int64) int {
	u := uint64((v << 1) ^ (v >> 63))
	n := 1
	for u >= 0x80 {
		u >>= 7
		n++
	}
	return n
}
