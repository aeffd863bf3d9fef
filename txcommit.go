/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package orient

import (
	"github.com/daill/orientgo/oerr"
	"github.com/daill/orientgo/wire"
)

// TxOpType is a transaction entry's operation discriminant (§4.4
// "TX_COMMIT with alternating entry sub-profiles").
type TxOpType byte

const (
	TxCreate TxOpType = 1
	TxUpdate TxOpType = 2
	TxDelete TxOpType = 3
)

// TxEntry is one mutation within a TX_COMMIT request. Its wire shape
// varies by Op (§9 "alternating entry sub-profiles" open question): the
// exact field list per operation type is not given literally in the
// original source (entries_profile is supplied by the caller there), so
// this shape is an explicit, documented assumption grounded in
// RECORD_CREATE/RECORD_UPDATE/RECORD_DELETE's own request profiles.
type TxEntry struct {
	Op              TxOpType
	ClusterID       int16
	ClusterPosition int64 // temporary (negative) for a CREATE entry
	RecordType      byte
	RecordVersion   int32 // required for Update/Delete
	RecordContent   []byte
	UpdateContent   bool // Update only
}

// TxCreatedRecord maps a CREATE entry's client-specified temporary rid to
// its server-assigned rid.
type TxCreatedRecord struct {
	ClientClusterID       int16
	ClientClusterPosition int64
	ClusterID             int16
	ClusterPosition       int64
}

// TxUpdatedRecord carries an UPDATE entry's resulting version.
type TxUpdatedRecord struct {
	ClusterID       int16
	ClusterPosition int64
	NewVersion      int32
}

// TxCommitResult is the decoded TX_COMMIT response.
type TxCommitResult struct {
	Created []TxCreatedRecord
	Updated []TxUpdatedRecord
}

// CommitTransaction encodes and sends a TX_COMMIT request (§4.4, §4.8
// write traversal). The request profile is built at call time since its
// shape depends on the actual mutation list, unlike every other op in
// the catalog.
func (c *Connection) CommitTransaction(txID int32, entries []TxEntry) (*TxCommitResult, error) {
	if c.state < StateDbOpen {
		return nil, oerr.Newf(oerr.NotConnected, nil, "TX_COMMIT requires state >= DbOpen, connection is %v", c.state)
	}

	c.mtx.Lock()
	defer c.mtx.Unlock()

	body := wire.NewWriter()
	if err := body.WriteInt(txID); err != nil {
		return nil, err
	}
	if err := body.WriteBoolean(true); err != nil { // using-tx-log
		return nil, err
	}
	for _, e := range entries {
		if err := encodeTxEntry(body, e); err != nil {
			return nil, err
		}
	}
	if err := body.WriteByte(0); err != nil { // end marker
		return nil, err
	}
	if err := body.WriteString(""); err != nil { // remote-index-length
		return nil, err
	}

	head := wire.NewWriter()
	if err := c.writeFrameHeader(head, OpTxCommit); err != nil {
		return nil, err
	}
	if err := c.writeFrameBody(head, body.Bytes()); err != nil {
		return nil, err
	}

	if _, err := c.conn.Write(head.Bytes()); err != nil {
		c.state = StateClosed
		return nil, oerr.Newf(oerr.NotConnected, err, "sending TX_COMMIT")
	}

	raw, err := c.recvAdaptive()
	if err != nil {
		c.state = StateClosed
		return nil, err
	}
	if len(raw) == 0 {
		c.state = StateClosed
		return nil, oerr.New(oerr.Serialization, "empty response to TX_COMMIT", nil)
	}

	op := catalog[OpTxCommit]
	r := wire.NewReader(raw)
	if err := c.readResponseHead(r, OpTxCommit); err != nil {
		return nil, err
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
	return decodeTxCommitResult(result), nil
}

func encodeTxEntry(w *wire.Writer, e TxEntry) error {
	if err := w.WriteByte(1); err != nil { // begin marker
		return err
	}
	if err := w.WriteByte(byte(e.Op)); err != nil {
		return err
	}
	if err := w.WriteShort(e.ClusterID); err != nil {
		return err
	}
	if err := w.WriteLong(e.ClusterPosition); err != nil {
		return err
	}
	switch e.Op {
	case TxCreate:
		if err := w.WriteByte(e.RecordType); err != nil {
			return err
		}
		return w.WriteBytes(e.RecordContent)
	case TxUpdate:
		if err := w.WriteByte(e.RecordType); err != nil {
			return err
		}
		if err := w.WriteBoolean(e.UpdateContent); err != nil {
			return err
		}
		if err := w.WriteBytes(e.RecordContent); err != nil {
			return err
		}
		return w.WriteInt(e.RecordVersion)
	case TxDelete:
		return w.WriteInt(e.RecordVersion)
	}
	return oerr.Newf(oerr.SqlCommand, nil, "tx_commit: unknown entry operation type %d", e.Op)
}

func decodeTxCommitResult(m wire.Map) *TxCommitResult {
	res := &TxCommitResult{}
	if created, ok := m["record-created"].([]wire.Map); ok {
		for _, c := range created {
			res.Created = append(res.Created, TxCreatedRecord{
				ClientClusterID:       int16OrZero(c["client-specified-cluster-id"]),
				ClientClusterPosition: int64OrZero(c["client-specified-cluster-position"]),
				ClusterID:             int16OrZero(c["created-cluster-id"]),
				ClusterPosition:       int64OrZero(c["created-cluster-position"]),
			})
		}
	}
	if updated, ok := m["record-updated"].([]wire.Map); ok {
		for _, u := range updated {
			res.Updated = append(res.Updated, TxUpdatedRecord{
				ClusterID:       int16OrZero(u["updated-cluster-id"]),
				ClusterPosition: int64OrZero(u["updated-cluster-position"]),
				NewVersion:      int32OrZero(u["new-record-version"]),
			})
		}
	}
	return res
}

func int16OrZero(v interface{}) int16 {
	n, _ := v.(int16)
	return n
}

func int64OrZero(v interface{}) int64 {
	n, _ := v.(int64)
	return n
}

func int32OrZero(v interface{}) int32 {
	n, _ := v.(int32)
	return n
}
