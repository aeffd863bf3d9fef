/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package wire

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/daill/orientgo/oerr"
)

func TestVarintRoundTrip(t *testing.T) {
	values := []int64{1, 3, 300, math.MaxInt64, math.MaxInt64 - 1, 0, -1, NullRidCluster}
	for _, v := range values {
		w := NewWriter()
		require.NoError(t, w.WriteVarint(v))
		require.LessOrEqual(t, w.Len(), maxVarintBytes)
		r := NewReader(w.Bytes())
		got, err := r.ReadVarint()
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestPrimitiveRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		w := NewWriter()
		before := w.Len()
		v := int32(rnd.Int63())
		require.NoError(t, w.WriteInt(v))
		require.Equal(t, 4, w.Len()-before)
		r := NewReader(w.Bytes())
		got, err := r.ReadInt()
		require.NoError(t, err)
		require.Equal(t, v, got)
		require.Equal(t, 4, r.Pos())
	}
	for i := 0; i < 1000; i++ {
		w := NewWriter()
		v := rnd.Int63()
		require.NoError(t, w.WriteLong(v))
		r := NewReader(w.Bytes())
		got, err := r.ReadLong()
		require.NoError(t, err)
		require.Equal(t, v, got)
		require.Equal(t, 8, r.Pos())
	}
	for i := 0; i < 1000; i++ {
		w := NewWriter()
		v := int16(rnd.Intn(1 << 16))
		require.NoError(t, w.WriteShort(v))
		r := NewReader(w.Bytes())
		got, err := r.ReadShort()
		require.NoError(t, err)
		require.Equal(t, v, got)
		require.Equal(t, 2, r.Pos())
	}
	for i := 0; i < 1000; i++ {
		w := NewWriter()
		v := rnd.Float64()
		require.NoError(t, w.WriteDouble(v))
		r := NewReader(w.Bytes())
		got, err := r.ReadDouble()
		require.NoError(t, err)
		require.Equal(t, v, got)
		require.Equal(t, 8, r.Pos())
	}
	for i := 0; i < 1000; i++ {
		w := NewWriter()
		v := rnd.Intn(2) == 1
		require.NoError(t, w.WriteBoolean(v))
		r := NewReader(w.Bytes())
		got, err := r.ReadBoolean()
		require.NoError(t, err)
		require.Equal(t, v, got)
		require.Equal(t, 1, r.Pos())
	}
}

func TestStringNullRoundTrip(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.WriteBytes(nil))
	r := NewReader(w.Bytes())
	b, err := r.ReadBytes()
	require.NoError(t, err)
	require.Nil(t, b)

	w = NewWriter()
	require.NoError(t, w.WriteString("Barack"))
	r = NewReader(w.Bytes())
	s, err := r.ReadString()
	require.NoError(t, err)
	require.Equal(t, "Barack", s)
}

func TestTruncatedBufferIsProfileNotMatch(t *testing.T) {
	r := NewReader([]byte{0, 0})
	_, err := r.ReadInt()
	require.Error(t, err)
	var oe *oerr.Error
	require.ErrorAs(t, err, &oe)
	require.Equal(t, oerr.ProfileNotMatch, oe.Kind)
}
