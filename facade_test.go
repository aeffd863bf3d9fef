/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package orient

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	orientlog "github.com/daill/orientgo/log"
	"github.com/daill/orientgo/model"
	"github.com/daill/orientgo/wire"
)

// pipedConnection wires a Connection directly to one end of an in-memory
// net.Pipe, already past the handshake (state pre-set), so façade methods
// requiring StateDbOpen can be exercised without replaying CONNECT/DB_OPEN.
func pipedConnection(state State) (*Connection, net.Conn) {
	client, server := net.Pipe()
	c := &Connection{
		conn:     client,
		state:    state,
		session:  7,
		timeouts: DefaultTimeoutConfig(),
		log:      orientlog.Discard(),
	}
	return c, server
}

func writeOKHead(t *testing.T, w *wire.Writer, session int32) {
	t.Helper()
	require.NoError(t, w.WriteByte(0))
	require.NoError(t, w.WriteInt(session))
}

func TestRecordLoadDecodesPayload(t *testing.T) {
	conn, server := pipedConnection(StateDbOpen)
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]byte, 4096)
		server.Read(buf)

		w := wire.NewWriter()
		writeOKHead(t, w, 7)
		require.NoError(t, w.WriteByte(1))         // payload-status: one payload
		require.NoError(t, w.WriteBytes([]byte("doc")))
		require.NoError(t, w.WriteInt(3))
		require.NoError(t, w.WriteByte('d'))
		require.NoError(t, w.WriteByte(0)) // terminate the payload/records repeating group
		server.Write(w.Bytes())
	}()

	rid := model.Rid{ClusterID: 9, Position: 0}
	payloads, err := conn.RecordLoad(rid, "", false)
	require.NoError(t, err)
	require.Len(t, payloads, 1)
	require.Equal(t, RecordPayload{Content: []byte("doc"), Version: 3, RecordType: 'd'}, payloads[0])
	<-done
}

func TestRecordCreateDecodesRidAndVersion(t *testing.T) {
	conn, server := pipedConnection(StateDbOpen)
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]byte, 4096)
		server.Read(buf)

		w := wire.NewWriter()
		writeOKHead(t, w, 7)
		require.NoError(t, w.WriteShort(9))  // cluster-id
		require.NoError(t, w.WriteLong(5))   // cluster-position
		require.NoError(t, w.WriteInt(1))    // record-version
		require.NoError(t, w.WriteInt(0))    // count-of-collection-changes: none
		server.Write(w.Bytes())
	}()

	rid, version, err := conn.RecordCreate(9, []byte("doc"), 'd', 0)
	require.NoError(t, err)
	require.Equal(t, model.Rid{ClusterID: 9, Position: 5}, rid)
	require.Equal(t, int32(1), version)
	<-done
}

func TestConfigListDecodesRepeatingGroup(t *testing.T) {
	conn, server := pipedConnection(StateAuthenticated)
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]byte, 4096)
		server.Read(buf)

		w := wire.NewWriter()
		writeOKHead(t, w, 7)
		require.NoError(t, w.WriteShort(2))
		require.NoError(t, w.WriteString("network.binary.maxLength"))
		require.NoError(t, w.WriteString("100000"))
		require.NoError(t, w.WriteString("db.pool.min"))
		require.NoError(t, w.WriteString("1"))
		server.Write(w.Bytes())
	}()

	cfg, err := conn.ConfigList()
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"network.binary.maxLength": "100000",
		"db.pool.min":              "1",
	}, cfg)
	<-done
}

func TestDBExistDecodesBool(t *testing.T) {
	conn, server := pipedConnection(StateAuthenticated)
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]byte, 4096)
		server.Read(buf)

		w := wire.NewWriter()
		writeOKHead(t, w, 7)
		require.NoError(t, w.WriteByte(1))
		server.Write(w.Bytes())
	}()

	ok, err := conn.DBExist("graph-db", "plocal")
	require.NoError(t, err)
	require.True(t, ok)
	<-done
}
