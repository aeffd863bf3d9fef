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
	"time"

	"github.com/stretchr/testify/require"

	orientlog "github.com/daill/orientgo/log"
	"github.com/daill/orientgo/wire"
)

// fakeServer accepts one connection on an in-process TCP listener and
// hands it to a caller-supplied script, the same
// net.Listen("tcp", "127.0.0.1:0")-backed fake-server shape
// entryWriter_test.go uses.
func fakeServer(t *testing.T, script func(net.Conn)) (addr string, done chan struct{}) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	done = make(chan struct{})
	go func() {
		defer close(done)
		defer ln.Close()
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		script(conn)
	}()
	return ln.Addr().String(), done
}

// drainRequest reads whatever the client already wrote without
// attempting to interpret it; local loopback delivers a synchronous
// client write as a single readable chunk. The client sends its next
// request only after its receive loop has gone idle three times (about
// 3s with DefaultTimeoutConfig), so the deadline leaves room for that.
func drainRequest(t *testing.T, conn net.Conn) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	buf := make([]byte, 4096)
	_, err := conn.Read(buf)
	require.NoError(t, err)
}

func writeGreeting(t *testing.T, conn net.Conn, protocolVersion int16) {
	t.Helper()
	w := wire.NewWriter()
	require.NoError(t, w.WriteShort(protocolVersion))
	_, err := conn.Write(w.Bytes())
	require.NoError(t, err)
}

func writeConnectResponse(t *testing.T, conn net.Conn, session int32, token []byte) {
	t.Helper()
	body := wire.NewWriter()
	require.NoError(t, body.WriteBytes(token))

	head := wire.NewWriter()
	require.NoError(t, head.WriteByte(0))
	require.NoError(t, head.WriteInt(session))
	require.NoError(t, head.WriteRaw(body.Bytes()))
	_, err := conn.Write(head.Bytes())
	require.NoError(t, err)
}

func writeDBOpenResponse(t *testing.T, conn net.Conn, session int32, clusters []ClusterInfo) {
	t.Helper()
	body := wire.NewWriter()
	require.NoError(t, body.WriteShort(int16(len(clusters))))
	for _, c := range clusters {
		require.NoError(t, body.WriteString(c.Name))
		require.NoError(t, body.WriteShort(c.ID))
	}
	require.NoError(t, body.WriteBytes(nil))  // cluster-config
	require.NoError(t, body.WriteString(""))  // orientdb-release
	require.NoError(t, body.WriteBytes(nil))  // token

	head := wire.NewWriter()
	require.NoError(t, head.WriteByte(0))
	require.NoError(t, head.WriteInt(session))
	require.NoError(t, head.WriteRaw(body.Bytes()))
	_, err := conn.Write(head.Bytes())
	require.NoError(t, err)
}

// TestConnectAndOpenStateTransitions exercises §4.5's state machine end
// to end (Closed -> Greeted -> Authenticated -> DbOpen) against a fake
// server, and confirms DB_OPEN's cluster directory round-trips through
// the façade (§6 scenario B).
func TestConnectAndOpenStateTransitions(t *testing.T) {
	addr, done := fakeServer(t, func(conn net.Conn) {
		writeGreeting(t, conn, 36)

		drainRequest(t, conn) // CONNECT
		writeConnectResponse(t, conn, 1, nil)

		drainRequest(t, conn) // DB_OPEN
		writeDBOpenResponse(t, conn, 1, []ClusterInfo{
			{Name: "default", ID: 0},
			{Name: "index", ID: 1},
			{Name: "orids", ID: 2},
		})

		// Keep the socket open until the client hangs up: an EOF inside
		// the client's receive loop is a read failure, not end of response.
		conn.Read(make([]byte, 1))
	})

	conn, err := Dial(addr, DefaultTimeoutConfig(), orientlog.Discard())
	require.NoError(t, err)
	require.Equal(t, StateGreeted, conn.State())

	cfg := DefaultDriverConfig(addr, "graph-db", "root", "root")
	require.NoError(t, conn.Connect(cfg))
	require.Equal(t, StateAuthenticated, conn.State())

	clusters, err := conn.DBOpen(cfg)
	require.NoError(t, err)
	require.Equal(t, StateDbOpen, conn.State())
	require.Len(t, clusters, 3)
	require.Equal(t, ClusterInfo{Name: "default", ID: 0}, clusters[0])
	require.Equal(t, ClusterInfo{Name: "orids", ID: 2}, clusters[2])

	conn.Close()
	<-done
}

// TestDispatchWrongStateFailsFast reproduces §8 property 9: an op issued
// below its required state fails immediately, without writing any bytes.
func TestDispatchWrongStateFailsFast(t *testing.T) {
	addr, done := fakeServer(t, func(conn net.Conn) {
		writeGreeting(t, conn, 36)
		// No further script: DB_OPEN must never arrive.
	})

	conn, err := Dial(addr, DefaultTimeoutConfig(), orientlog.Discard())
	require.NoError(t, err)

	_, err = conn.DBOpen(DefaultDriverConfig(addr, "graph-db", "root", "root"))
	require.Error(t, err)
	require.Equal(t, StateGreeted, conn.State())

	conn.Close()
	<-done
}
