/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package orient

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/daill/orientgo/model"
	"github.com/daill/orientgo/wire"
)

// encodeCommandRecord writes one `record` pseudo-type value the way a
// server would, mirroring decodeCommandRecord's three branches.
func encodeCommandRecord(t *testing.T, w *wire.Writer, rec CommandRecord) {
	t.Helper()
	switch {
	case rec.Null:
		require.NoError(t, w.WriteShort(-2))
	case rec.RidOnly:
		require.NoError(t, w.WriteShort(-3))
		require.NoError(t, w.WriteShort(rec.Rid.ClusterID))
		require.NoError(t, w.WriteLong(rec.Rid.Position))
	default:
		require.NoError(t, w.WriteShort(int16(rec.RecordType)))
		require.NoError(t, w.WriteByte(rec.RecordType))
		require.NoError(t, w.WriteShort(rec.Rid.ClusterID))
		require.NoError(t, w.WriteLong(rec.Rid.Position))
		require.NoError(t, w.WriteInt(rec.Version))
		require.NoError(t, w.WriteBytes(rec.Content))
	}
}

func TestDecodeCommandResponseNull(t *testing.T) {
	w := wire.NewWriter()
	require.NoError(t, w.WriteByte('n'))
	res, err := decodeCommandResponse(wire.NewReader(w.Bytes()), ModeSynchronous, 36)
	require.NoError(t, err)
	require.Equal(t, byte('n'), res.SyncResultType)
	require.Empty(t, res.Records)
}

func TestDecodeCommandResponseSingleRecord(t *testing.T) {
	want := CommandRecord{
		Rid:        model.Rid{ClusterID: 9, Position: 5},
		RecordType: 'd',
		Version:    2,
		Content:    []byte("payload"),
	}
	w := wire.NewWriter()
	require.NoError(t, w.WriteByte('r'))
	encodeCommandRecord(t, w, want)

	res, err := decodeCommandResponse(wire.NewReader(w.Bytes()), ModeSynchronous, 36)
	require.NoError(t, err)
	require.Equal(t, byte('r'), res.SyncResultType)
	require.Len(t, res.Records, 1)
	require.Equal(t, want, res.Records[0])
}

func TestDecodeCommandResponseList(t *testing.T) {
	recs := []CommandRecord{
		{RidOnly: true, Rid: model.Rid{ClusterID: 9, Position: 0}},
		{Rid: model.Rid{ClusterID: 9, Position: 1}, RecordType: 'd', Version: 1, Content: []byte("a")},
		{Null: true},
	}
	w := wire.NewWriter()
	require.NoError(t, w.WriteByte('l'))
	require.NoError(t, w.WriteInt(int32(len(recs))))
	for _, rec := range recs {
		encodeCommandRecord(t, w, rec)
	}

	res, err := decodeCommandResponse(wire.NewReader(w.Bytes()), ModeSynchronous, 36)
	require.NoError(t, err)
	require.Equal(t, int32(len(recs)), res.Count)
	require.Equal(t, recs, res.Records)
}

func TestDecodeAsyncCommandResponse(t *testing.T) {
	w := wire.NewWriter()
	rec := CommandRecord{Rid: model.Rid{ClusterID: 9, Position: 0}, RecordType: 'd', Version: 1, Content: []byte("x")}
	require.NoError(t, w.WriteByte(1)) // asynch-result-type: has a record
	encodeCommandRecord(t, w, rec)
	require.NoError(t, w.WriteByte(0)) // terminator

	res, err := decodeAsyncCommandResponse(wire.NewReader(w.Bytes()))
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	require.Equal(t, rec, res.Records[0])
}
