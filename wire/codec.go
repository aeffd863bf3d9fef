/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package wire

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/daill/orientgo/oerr"
)

// NullRidCluster is the varint sentinel meaning "null rid cluster" (§4.1).
const NullRidCluster int64 = -2

// maxVarintBytes bounds a ZigZag varint to 10 continuation bytes, matching
// the 64-bit ZigZag encoding's worst case (one bit of overhead every 7
// payload bits).
const maxVarintBytes = 10

// Reader decodes primitives from a byte slice, tracking a position
// counter the same way entryReader.go's EntryReader tracks its read
// cursor -- callers that need to resolve a binary record's intra-record
// pointers read this counter directly via Pos.
type Reader struct {
	buf []byte
	pos int
}

func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Pos returns the current byte offset into the underlying buffer.
func (r *Reader) Pos() int { return r.pos }

// Seek repositions the cursor to an absolute offset, used by the binary
// record decoder to jump to an out-of-order field value.
func (r *Reader) Seek(pos int) { r.pos = pos }

// Remaining reports how many bytes are left unread.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// Bytes exposes the full underlying buffer (not just the unread tail),
// needed by decoders that compute absolute offsets from the record start.
func (r *Reader) Bytes() []byte { return r.buf }

func (r *Reader) requireErr(n int) error {
	if r.pos+n > len(r.buf) {
		return oerr.Newf(oerr.ProfileNotMatch, nil, "buffer truncated: need %d bytes at offset %d, have %d", n, r.pos, len(r.buf))
	}
	return nil
}

func (r *Reader) ReadByte() (byte, error) {
	if err := r.requireErr(1); err != nil {
		return 0, err
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *Reader) ReadBoolean() (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

func (r *Reader) ReadShort() (int16, error) {
	if err := r.requireErr(2); err != nil {
		return 0, err
	}
	v := int16(binary.BigEndian.Uint16(r.buf[r.pos:]))
	r.pos += 2
	return v, nil
}

func (r *Reader) ReadInt() (int32, error) {
	if err := r.requireErr(4); err != nil {
		return 0, err
	}
	v := int32(binary.BigEndian.Uint32(r.buf[r.pos:]))
	r.pos += 4
	return v, nil
}

func (r *Reader) ReadLong() (int64, error) {
	if err := r.requireErr(8); err != nil {
		return 0, err
	}
	v := int64(binary.BigEndian.Uint64(r.buf[r.pos:]))
	r.pos += 8
	return v, nil
}

func (r *Reader) ReadFloat() (float32, error) {
	v, err := r.ReadInt()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(uint32(v)), nil
}

func (r *Reader) ReadDouble() (float64, error) {
	v, err := r.ReadLong()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(uint64(v)), nil
}

// ReadBytes reads a length-prefixed blob. A length of -1 yields (nil, nil).
func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadInt()
	if err != nil {
		return nil, err
	}
	if n == -1 {
		return nil, nil
	}
	if n < 0 {
		return nil, oerr.Newf(oerr.ProfileNotMatch, nil, "negative blob length %d", n)
	}
	if err := r.requireErr(int(n)); err != nil {
		return nil, err
	}
	b := r.buf[r.pos : r.pos+int(n)]
	r.pos += int(n)
	return b, nil
}

// ReadString reads a length-prefixed UTF-8 string; -1 length yields "".
func (r *Reader) ReadString() (string, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadStrings reads a count-prefixed sequence of strings (the "strings"
// plural primitive).
func (r *Reader) ReadStrings() ([]string, error) {
	n, err := r.ReadInt()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, oerr.Newf(oerr.ProfileNotMatch, nil, "negative strings count %d", n)
	}
	out := make([]string, 0, n)
	for i := int32(0); i < n; i++ {
		s, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// PeekByte returns the next byte without advancing the cursor; used by
// byte-static terms that only conditionally consume a byte.
func (r *Reader) PeekByte() (byte, error) {
	if err := r.requireErr(1); err != nil {
		return 0, err
	}
	return r.buf[r.pos], nil
}

// ReadVarint decodes a ZigZag-encoded signed 64-bit varint (§4.1): 7-bit
// continuation groups, little-endian within the varint, max 10 bytes.
func (r *Reader) ReadVarint() (int64, error) {
	var result uint64
	var shift uint
	for i := 0; i < maxVarintBytes; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return zigzagDecode(result), nil
		}
		shift += 7
	}
	return 0, oerr.Newf(oerr.ProfileNotMatch, nil, "varint exceeds %d bytes", maxVarintBytes)
}

// ReadVarintString reads a varint length followed by raw UTF-8 bytes.
func (r *Reader) ReadVarintString() (string, error) {
	n, err := r.ReadVarint()
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", oerr.Newf(oerr.ProfileNotMatch, nil, "negative varint-string length %d", n)
	}
	if err := r.requireErr(int(n)); err != nil {
		return "", err
	}
	s := string(r.buf[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, nil
}

// ReadRaw reads exactly n unprefixed bytes, used where a preceding varint
// length is already known (binary record field names, BINARY values).
func (r *Reader) ReadRaw(n int) ([]byte, error) {
	if n < 0 {
		return nil, oerr.Newf(oerr.ProfileNotMatch, nil, "negative raw length %d", n)
	}
	if err := r.requireErr(n); err != nil {
		return nil, err
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func zigzagDecode(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}

func zigzagEncode(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

// Writer encodes primitives into a growing byte buffer, the same
// encoding/binary.Write-into-a-bytes.Buffer framing auth.go's
// challengeResponse.Write uses.
type Writer struct {
	buf bytes.Buffer
}

func NewWriter() *Writer { return &Writer{} }

func (w *Writer) Bytes() []byte { return w.buf.Bytes() }
func (w *Writer) Len() int      { return w.buf.Len() }

func (w *Writer) WriteByte(b byte) error {
	return w.buf.WriteByte(b)
}

func (w *Writer) WriteBoolean(v bool) error {
	if v {
		return w.WriteByte(1)
	}
	return w.WriteByte(0)
}

func (w *Writer) WriteShort(v int16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(v))
	_, err := w.buf.Write(b[:])
	return err
}

func (w *Writer) WriteInt(v int32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	_, err := w.buf.Write(b[:])
	return err
}

func (w *Writer) WriteLong(v int64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	_, err := w.buf.Write(b[:])
	return err
}

func (w *Writer) WriteFloat(v float32) error {
	return w.WriteInt(int32(math.Float32bits(v)))
}

func (w *Writer) WriteDouble(v float64) error {
	return w.WriteLong(int64(math.Float64bits(v)))
}

// WriteRaw writes b with no length prefix at all.
func (w *Writer) WriteRaw(b []byte) error {
	_, err := w.buf.Write(b)
	return err
}

// WriteBytes writes a length-prefixed blob; nil encodes as length -1.
func (w *Writer) WriteBytes(b []byte) error {
	if b == nil {
		return w.WriteInt(-1)
	}
	if err := w.WriteInt(int32(len(b))); err != nil {
		return err
	}
	_, err := w.buf.Write(b)
	return err
}

func (w *Writer) WriteString(s string) error {
	return w.WriteBytes([]byte(s))
}

func (w *Writer) WriteStrings(ss []string) error {
	if err := w.WriteInt(int32(len(ss))); err != nil {
		return err
	}
	for _, s := range ss {
		if err := w.WriteString(s); err != nil {
			return err
		}
	}
	return nil
}

// WriteVarint encodes a ZigZag signed 64-bit varint.
func (w *Writer) WriteVarint(v int64) error {
	u := zigzagEncode(v)
	for {
		b := byte(u & 0x7f)
		u >>= 7
		if u != 0 {
			if err := w.WriteByte(b | 0x80); err != nil {
				return err
			}
		} else {
			return w.WriteByte(b)
		}
	}
}

func (w *Writer) WriteVarintString(s string) error {
	if err := w.WriteVarint(int64(len(s))); err != nil {
		return err
	}
	_, err := w.buf.WriteString(s)
	return err
}
