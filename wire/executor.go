/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package wire

import (
	"fmt"

	"github.com/daill/orientgo/oerr"
)

// DecodeContext threads the byte reader and the in-progress result map
// through a profile walk. It is the explicit re-architecture of the
// source's closed-over mutable decoder state (§9 "Closed-over mutable
// state inside decoders"): every recursive call receives ctx by
// reference instead of capturing free variables.
type DecodeContext struct {
	R               *Reader
	drivingValues   map[string]int64
	pendingDriveKey string
}

func NewDecodeContext(r *Reader) *DecodeContext {
	return &DecodeContext{R: r, drivingValues: map[string]int64{}}
}

// Map is the structured decode output: string keys to scalars, nested
// Maps (for labeled non-repeating groups), or []Map (for repeating
// groups).
type Map map[string]interface{}

// Decode walks a parsed profile against ctx's reader, producing a Map.
func Decode(ctx *DecodeContext, root *Group) (Map, error) {
	out := Map{}
	if err := decodeElements(ctx, root.Children, out); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeElements(ctx *DecodeContext, elems []Element, target Map) error {
	for _, el := range elems {
		switch e := el.(type) {
		case Term:
			if err := decodeTerm(ctx, e, target); err != nil {
				return err
			}
		case *Group:
			if err := decodeGroup(ctx, e, target); err != nil {
				return err
			}
		default:
			return fmt.Errorf("profile: unknown element type %T", el)
		}
	}
	return nil
}

func decodeTerm(ctx *DecodeContext, t Term, target Map) error {
	if t.Literal {
		if t.Pred != nil {
			b, err := ctx.R.PeekByte()
			if err != nil {
				return nil // end of buffer; sentinel simply fails to match
			}
			if t.Pred(b) {
				if _, err := ctx.R.ReadByte(); err != nil {
					return err
				}
			}
			return nil
		}
		b, err := ctx.R.ReadByte()
		if err != nil {
			return err
		}
		if b != t.Value {
			return oerr.Newf(oerr.ProfileNotMatch, nil, "expected literal byte 0x%x, got 0x%x at offset %d", t.Value, b, ctx.R.Pos()-1)
		}
		return nil
	}
	v, err := decodeTypedValue(ctx.R, t.Type)
	if err != nil {
		return err
	}
	target[t.Name] = v
	if canonicalDrivingNames[t.Name] {
		if n, ok := asInt64(v); ok {
			ctx.drivingValues[t.Name] = n
			ctx.pendingDriveKey = t.Name
		}
	}
	return nil
}

func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func decodeGroup(ctx *DecodeContext, g *Group, target Map) error {
	if !g.Repeating {
		child := Map{}
		if err := decodeElements(ctx, g.Children, child); err != nil {
			return err
		}
		if g.Label == "" {
			for k, v := range child {
				target[k] = v
			}
		} else {
			target[g.Label] = child
		}
		return nil
	}

	// Policy 1: sentinel-terminated repeating group -- first child is a
	// byte-static with a predicate.
	if len(g.Children) > 0 {
		if t, ok := g.Children[0].(Term); ok && t.Literal && t.Pred != nil {
			var list []Map
			for {
				b, err := ctx.R.PeekByte()
				if err != nil || !t.Pred(b) {
					break
				}
				child := Map{}
				if err := decodeElements(ctx, g.Children, child); err != nil {
					return err
				}
				list = append(list, child)
			}
			target[g.Label] = list
			return nil
		}
	}

	// Policy 2: driven by a preceding named integer term.
	if ctx.pendingDriveKey != "" {
		key := ctx.pendingDriveKey
		count := ctx.drivingValues[key]
		ctx.pendingDriveKey = "" // consumed; one driving value serves one group
		if count < 0 {
			return oerr.Newf(oerr.ProfileNotMatch, nil, "negative repeat count %d for group %q driven by %q", count, g.Label, key)
		}
		list := make([]Map, 0, count)
		for i := int64(0); i < count; i++ {
			child := Map{}
			if err := decodeElements(ctx, g.Children, child); err != nil {
				return err
			}
			list = append(list, child)
		}
		target[g.Label] = list
		return nil
	}

	// Policy 3: any other repeating group, labeled or not -- consume until
	// the buffer shrinks to at most one byte.
	var list []Map
	for ctx.R.Remaining() > 1 {
		child := Map{}
		if err := decodeElements(ctx, g.Children, child); err != nil {
			return err
		}
		list = append(list, child)
	}
	if g.Label == "" {
		target["_items"] = list
	} else {
		target[g.Label] = list
	}
	return nil
}

func decodeTypedValue(r *Reader, typ string) (interface{}, error) {
	switch typ {
	case "byte":
		return r.ReadByte()
	case "boolean":
		return r.ReadBoolean()
	case "short":
		return r.ReadShort()
	case "int":
		return r.ReadInt()
	case "long":
		return r.ReadLong()
	case "float":
		return r.ReadFloat()
	case "double":
		return r.ReadDouble()
	case "bytes":
		return r.ReadBytes()
	case "string":
		return r.ReadString()
	case "strings":
		return r.ReadStrings()
	case "varint":
		return r.ReadVarint()
	case "varint-string":
		return r.ReadVarintString()
	}
	return nil, fmt.Errorf("profile: unknown term type %q", typ)
}

// EncodeContext threads the byte writer and the caller-supplied argument
// map through an encode walk.
type EncodeContext struct {
	W *Writer
}

func NewEncodeContext(w *Writer) *EncodeContext { return &EncodeContext{W: w} }

// Encode walks a parsed profile, consuming values from args.
func Encode(ctx *EncodeContext, root *Group, args Map) error {
	return encodeElements(ctx, root.Children, args)
}

func encodeElements(ctx *EncodeContext, elems []Element, args Map) error {
	for _, el := range elems {
		switch e := el.(type) {
		case Term:
			if err := encodeTerm(ctx, e, args); err != nil {
				return err
			}
		case *Group:
			if err := encodeGroup(ctx, e, args); err != nil {
				return err
			}
		default:
			return fmt.Errorf("profile: unknown element type %T", el)
		}
	}
	return nil
}

func encodeTerm(ctx *EncodeContext, t Term, args Map) error {
	if t.Literal {
		return ctx.W.WriteByte(t.Value)
	}
	v, ok := args[t.Name]
	if !ok {
		return oerr.Newf(oerr.ProfileNotMatch, nil, "encode: missing required field %q", t.Name)
	}
	return encodeTypedValue(ctx.W, t.Type, v)
}

func encodeGroup(ctx *EncodeContext, g *Group, args Map) error {
	if !g.Repeating {
		var sub Map
		if g.Label == "" {
			sub = args
		} else {
			m, _ := args[g.Label].(Map)
			sub = m
			if sub == nil {
				sub = Map{}
			}
		}
		return encodeElements(ctx, g.Children, sub)
	}
	key := g.Label
	if key == "" {
		key = "_items"
	}
	raw, ok := args[key]
	if !ok {
		return oerr.Newf(oerr.ProfileNotMatch, nil, "encode: missing required repeating field %q", key)
	}
	list, ok := raw.([]Map)
	if !ok {
		return oerr.Newf(oerr.ProfileNotMatch, nil, "encode: field %q is not a list of maps", key)
	}
	for _, child := range list {
		if err := encodeElements(ctx, g.Children, child); err != nil {
			return err
		}
	}
	return nil
}

func encodeTypedValue(w *Writer, typ string, v interface{}) error {
	switch typ {
	case "byte":
		b, ok := v.(byte)
		if !ok {
			return oerr.Newf(oerr.TypeNotFound, nil, "expected byte, got %T", v)
		}
		return w.WriteByte(b)
	case "boolean":
		b, ok := v.(bool)
		if !ok {
			return oerr.Newf(oerr.TypeNotFound, nil, "expected bool, got %T", v)
		}
		return w.WriteBoolean(b)
	case "short":
		n, ok := toInt16(v)
		if !ok {
			return oerr.Newf(oerr.TypeNotFound, nil, "expected short, got %T", v)
		}
		return w.WriteShort(n)
	case "int":
		n, ok := toInt32(v)
		if !ok {
			return oerr.Newf(oerr.TypeNotFound, nil, "expected int, got %T", v)
		}
		return w.WriteInt(n)
	case "long":
		n, ok := toInt64(v)
		if !ok {
			return oerr.Newf(oerr.TypeNotFound, nil, "expected long, got %T", v)
		}
		return w.WriteLong(n)
	case "float":
		f, ok := v.(float32)
		if !ok {
			return oerr.Newf(oerr.TypeNotFound, nil, "expected float32, got %T", v)
		}
		return w.WriteFloat(f)
	case "double":
		f, ok := v.(float64)
		if !ok {
			return oerr.Newf(oerr.TypeNotFound, nil, "expected float64, got %T", v)
		}
		return w.WriteDouble(f)
	case "bytes":
		b, _ := v.([]byte)
		return w.WriteBytes(b)
	case "string":
		s, ok := v.(string)
		if !ok {
			return oerr.Newf(oerr.TypeNotFound, nil, "expected string, got %T", v)
		}
		return w.WriteString(s)
	case "strings":
		ss, ok := v.([]string)
		if !ok {
			return oerr.Newf(oerr.TypeNotFound, nil, "expected []string, got %T", v)
		}
		return w.WriteStrings(ss)
	case "varint":
		n, ok := toInt64(v)
		if !ok {
			return oerr.Newf(oerr.TypeNotFound, nil, "expected integer varint, got %T", v)
		}
		return w.WriteVarint(n)
	case "varint-string":
		s, ok := v.(string)
		if !ok {
			return oerr.Newf(oerr.TypeNotFound, nil, "expected string, got %T", v)
		}
		return w.WriteVarintString(s)
	}
	return fmt.Errorf("profile: unknown term type %q", typ)
}

func toInt16(v interface{}) (int16, bool) {
	switch n := v.(type) {
	case int16:
		return n, true
	case int:
		return int16(n), true
	}
	return 0, false
}

func toInt32(v interface{}) (int32, bool) {
	switch n := v.(type) {
	case int32:
		return n, true
	case int:
		return int32(n), true
	}
	return 0, false
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	}
	return 0, false
}
