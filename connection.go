/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package orient

import (
	"bytes"
	"io"
	"net"
	"sync"
	"time"

	"github.com/klauspost/compress/snappy"

	orientlog "github.com/daill/orientgo/log"
	"github.com/daill/orientgo/oerr"
	"github.com/daill/orientgo/wire"
)

// State is the connection lifecycle (§4.5):
// Closed -> Greeted -> Authenticated -> DbOpen -> Closed.
type State int

const (
	StateClosed State = iota
	StateGreeted
	StateAuthenticated
	StateDbOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "Closed"
	case StateGreeted:
		return "Greeted"
	case StateAuthenticated:
		return "Authenticated"
	case StateDbOpen:
		return "DbOpen"
	}
	return "Unknown"
}

// TimeoutConfig is the adaptive receive-loop's enumerated constants (§9
// "Per-connection adaptive timeout constants"), lifted out of the
// source's mutable per-connection attributes into an explicit value type.
type TimeoutConfig struct {
	Initial     time.Duration
	Short       time.Duration
	IncStep     time.Duration
	DecStep     time.Duration
	Min         time.Duration
	IdleRetries int
}

// DefaultTimeoutConfig matches §5's enumerated values.
func DefaultTimeoutConfig() TimeoutConfig {
	return TimeoutConfig{
		Initial:     time.Second,
		Short:       10 * time.Millisecond,
		IncStep:     10 * time.Millisecond,
		DecStep:     10 * time.Millisecond,
		Min:         10 * time.Microsecond,
		IdleRetries: 3,
	}
}

// Connection owns one TCP socket exclusively (§5 "Shared resources"):
// session id, token, and protocol version all live here, not on Client.
// Scheduling is single-threaded cooperative -- callers must not issue
// overlapping requests on the same Connection.
type Connection struct {
	mtx sync.Mutex

	conn            net.Conn
	state           State
	session         int32
	token           []byte
	tokenSession    bool
	protocolVersion int16

	timeouts    TimeoutConfig
	compression bool
	log         *orientlog.Logger
}

// SetCompression toggles optional snappy framing of request/response
// bodies (DOMAIN STACK: github.com/klauspost/compress/snappy). Off by
// default -- the base protocol's literal scenarios never negotiate it.
func (c *Connection) SetCompression(v bool) { c.compression = v }

// Dial opens the TCP socket and reads the server's initial greeting
// (§4.5): a bare (protocol:int16), no opcode framing.
func Dial(addr string, timeouts TimeoutConfig, logger *orientlog.Logger) (*Connection, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, oerr.Newf(oerr.NotConnected, err, "dial %s", addr)
	}
	c := &Connection{
		conn:     conn,
		state:    StateClosed,
		session:  -1,
		timeouts: timeouts,
		log:      logger,
	}
	if err := c.greet(); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

func (c *Connection) greet() error {
	buf, err := c.readExact(2)
	if err != nil {
		return oerr.Newf(oerr.NotConnected, err, "reading protocol greeting")
	}
	r := wire.NewReader(buf)
	proto, err := r.ReadShort()
	if err != nil {
		return oerr.Newf(oerr.NotConnected, err, "decoding protocol greeting")
	}
	c.protocolVersion = proto
	c.state = StateGreeted
	c.log.Infof("greeted, protocol version %d", proto)
	return nil
}

func (c *Connection) readExact(n int) ([]byte, error) {
	buf := make([]byte, n)
	c.conn.SetReadDeadline(time.Now().Add(c.timeouts.Initial))
	if _, err := io.ReadFull(c.conn, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (c *Connection) State() State { return c.state }

func (c *Connection) ProtocolVersion() int16 { return c.protocolVersion }

func (c *Connection) SetTokenSession(v bool) { c.tokenSession = v }

func (c *Connection) TokenSession() bool { return c.tokenSession }

// Close closes the socket unconditionally and marks the connection Closed.
func (c *Connection) Close() error {
	c.state = StateClosed
	return c.conn.Close()
}

// dispatch sends one request and returns its decoded response body (the
// shared success/session head and conditional token are consumed but not
// included in the returned map). A request issued from the wrong state
// fails fast without writing any bytes (§8 property 9).
func (c *Connection) dispatch(opcode Opcode, args wire.Map) (wire.Map, error) {
	op, ok := catalog[opcode]
	if !ok {
		return nil, oerr.Newf(oerr.NotConnected, nil, "unknown opcode %v", opcode)
	}
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.state < op.requiredMin {
		return nil, oerr.Newf(oerr.NotConnected, nil, "op %v requires state >= %v, connection is %v", opcode, op.requiredMin, c.state)
	}

	if err := c.send(opcode, args, op.request); err != nil {
		c.state = StateClosed
		return nil, oerr.Newf(oerr.NotConnected, err, "sending %v", opcode)
	}

	if opcode == OpDBClose {
		c.Close()
		return nil, nil
	}

	raw, err := c.recvAdaptive()
	if err != nil {
		c.state = StateClosed
		return nil, err
	}
	if len(raw) == 0 {
		c.state = StateClosed
		return nil, oerr.New(oerr.Serialization, "empty response from adaptive receive loop", nil)
	}

	return c.decodeResponse(opcode, op, raw)
}

// writeFrameHeader writes opcode:int8, session:int32, and the
// conditional post-head token (§4.5 framing) into w.
func (c *Connection) writeFrameHeader(w *wire.Writer, opcode Opcode) error {
	if err := w.WriteByte(byte(opcode)); err != nil {
		return err
	}
	if err := w.WriteInt(c.session); err != nil {
		return err
	}
	if c.tokenSession && opcode != OpConnect && opcode != OpDBOpen {
		if err := w.WriteBytes(c.token); err != nil {
			return err
		}
	}
	return nil
}

// writeFrameBody appends body to head, snappy-framing it first when
// compression is enabled.
func (c *Connection) writeFrameBody(head *wire.Writer, body []byte) error {
	if c.compression {
		return head.WriteBytes(snappy.Encode(nil, body))
	}
	return head.WriteRaw(body)
}

// readResponseHead reads the shared (success:byte)(session:int32) head
// plus the conditional post-head token, returning a non-nil error built
// from the decoded server exception list when success == 1.
func (c *Connection) readResponseHead(r *wire.Reader, opcode Opcode) error {
	success, err := r.ReadByte()
	if err != nil {
		return oerr.Newf(oerr.Serialization, err, "reading response head")
	}
	session, err := r.ReadInt()
	if err != nil {
		return oerr.Newf(oerr.Serialization, err, "reading response session")
	}
	if success == 1 {
		exceptions, _ := decodeErrorPayload(r)
		c.state = StateClosed
		c.log.Warnf("server error on %v: %d exception(s)", opcode, len(exceptions))
		return &oerr.Error{Kind: oerr.NotConnected, Msg: "server reported an error", Exceptions: exceptions}
	}
	c.session = session
	if c.tokenSession && opcode != OpConnect && opcode != OpDBOpen {
		tok, err := r.ReadBytes()
		if err != nil {
			return oerr.Newf(oerr.Serialization, err, "reading post-head token")
		}
		c.token = tok
	}
	return nil
}

// bodyReader returns the reader to decode the response body from,
// transparently snappy-decoding it first when compression is enabled.
func (c *Connection) bodyReader(r *wire.Reader) (*wire.Reader, error) {
	if !c.compression {
		return r, nil
	}
	blob, err := r.ReadBytes()
	if err != nil {
		return nil, oerr.Newf(oerr.Serialization, err, "reading compressed body")
	}
	raw, err := snappy.Decode(nil, blob)
	if err != nil {
		return nil, oerr.Newf(oerr.Serialization, err, "snappy-decoding body")
	}
	return wire.NewReader(raw), nil
}

func (c *Connection) send(opcode Opcode, args wire.Map, reqProfile *wire.Group) error {
	head := wire.NewWriter()
	if err := c.writeFrameHeader(head, opcode); err != nil {
		return err
	}

	body := wire.NewWriter()
	if reqProfile != nil {
		ctx := wire.NewEncodeContext(body)
		if err := wire.Encode(ctx, reqProfile, args); err != nil {
			return err
		}
	}

	if err := c.writeFrameBody(head, body.Bytes()); err != nil {
		return err
	}

	_, err := c.conn.Write(head.Bytes())
	return err
}

func (c *Connection) decodeResponse(opcode Opcode, op *operation, raw []byte) (wire.Map, error) {
	r := wire.NewReader(raw)
	if err := c.readResponseHead(r, opcode); err != nil {
		return nil, err
	}

	if op.response == nil {
		return wire.Map{}, nil
	}

	bodyReader, err := c.bodyReader(r)
	if err != nil {
		return nil, err
	}

	ctx := wire.NewDecodeContext(bodyReader)
	result, err := wire.Decode(ctx, op.response)
	if err != nil {
		return nil, err
	}

	switch opcode {
	case OpConnect:
		if tok, ok := result["token"].([]byte); ok && len(tok) > 0 {
			c.token = tok
			c.tokenSession = true
		}
		c.state = StateAuthenticated
	case OpDBOpen:
		if tok, ok := result["token"].([]byte); ok && len(tok) > 0 {
			c.token = tok
			c.tokenSession = true
		}
		c.state = StateDbOpen
	}
	return result, nil
}

// decodeErrorPayload reads the `[{exception}(1)(class:string)(message:string)]*(0)`
// block (§4.4, §7), optionally followed by a serialized-exception blob
// this client does not attempt to deserialize.
func decodeErrorPayload(r *wire.Reader) ([]oerr.ServerException, error) {
	var exceptions []oerr.ServerException
	for {
		marker, err := r.PeekByte()
		if err != nil {
			return exceptions, err
		}
		if marker == 0 {
			r.ReadByte()
			break
		}
		if _, err := r.ReadByte(); err != nil { // consume the '1' continuation marker
			return exceptions, err
		}
		class, err := r.ReadString()
		if err != nil {
			return exceptions, err
		}
		msg, err := r.ReadString()
		if err != nil {
			return exceptions, err
		}
		exceptions = append(exceptions, oerr.ServerException{Class: class, Message: msg})
	}
	// An optional trailing serialized-exception blob may follow; ignore it.
	r.ReadBytes()
	return exceptions, nil
}

// recvAdaptive implements the adaptive non-blocking receive loop (§4.5,
// §9): initial 1s timeout, shrinking toward a 10µs floor while the read
// buffer stays full, growing by 10ms on a partial read, terminating after
// three consecutive idle (timed-out) iterations.
func (c *Connection) recvAdaptive() ([]byte, error) {
	var buf bytes.Buffer
	chunk := make([]byte, 4096)
	timeout := c.timeouts.Initial
	idle := 0

	for idle < c.timeouts.IdleRetries {
		c.conn.SetReadDeadline(time.Now().Add(timeout))
		n, err := c.conn.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			idle = 0
			if n == len(chunk) {
				timeout -= c.timeouts.DecStep
				if timeout < c.timeouts.Min {
					timeout = c.timeouts.Min
				}
			} else {
				timeout += c.timeouts.IncStep
			}
			continue
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				idle++
				continue
			}
			return buf.Bytes(), oerr.Newf(oerr.NotConnected, err, "connection read failed")
		}
		idle++
	}
	return buf.Bytes(), nil
}
