/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package orient

import (
	"github.com/daill/orientgo/model"
	"github.com/daill/orientgo/wire"
)

// ClusterInfo is one entry of a cluster name/id directory, returned by
// both DB_OPEN and DB_RELOAD (§4.4, §9 SUPPLEMENTED FEATURES item 3).
type ClusterInfo struct {
	Name string
	ID   int16
}

// Connect performs the CONNECT handshake (§4.4, §4.5). On success the
// connection transitions Greeted -> Authenticated and, when cfg requests
// token-based auth, captures the returned bearer token.
func (c *Connection) Connect(cfg DriverConfig) error {
	c.SetTokenSession(cfg.TokenSession)
	args := wire.Map{
		"driver-name":         cfg.DriverName,
		"driver-version":      cfg.DriverVersion,
		"protocol-version":    c.protocolVersion,
		"client-id":           cfg.ClientID,
		"serialization-impl":  string(cfg.SerializationImpl),
		"token-session":       cfg.TokenSession,
		"user-name":           cfg.Username,
		"user-password":       cfg.Password,
	}
	_, err := c.dispatch(OpConnect, args)
	return err
}

// DBOpen opens a database (§4.4, §4.5). On success the connection
// transitions Authenticated -> DbOpen. The returned cluster directory
// feeds the cluster-name -> id lookups RECORD_CREATE and friends need.
func (c *Connection) DBOpen(cfg DriverConfig) ([]ClusterInfo, error) {
	args := wire.Map{
		"driver-name":      cfg.DriverName,
		"driver-version":   cfg.DriverVersion,
		"protocol-version": c.protocolVersion,
		"client-id":        cfg.ClientID,
		"database-name":    cfg.DatabaseName,
		"database-type":    cfg.DatabaseType,
		"user-name":        cfg.Username,
		"user-password":    cfg.Password,
	}
	result, err := c.dispatch(OpDBOpen, args)
	if err != nil {
		return nil, err
	}
	return decodeClusterList(result, "clusters", "cluster-name", "cluster-id"), nil
}

// DBClose sends DB_CLOSE and closes the socket; the server never replies
// (§4.4).
func (c *Connection) DBClose() error {
	_, err := c.dispatch(OpDBClose, nil)
	return err
}

// Shutdown sends SHUTDOWN and returns the server's protocol number.
func (c *Connection) Shutdown() (byte, error) {
	result, err := c.dispatch(OpShutdown, nil)
	if err != nil {
		return 0, err
	}
	b, _ := result["protocol-number"].(byte)
	return b, nil
}

func (c *Connection) DBCreate(name, dbType, storageType string) error {
	_, err := c.dispatch(OpDBCreate, wire.Map{
		"database-name": name,
		"database-type": dbType,
		"storage-type":  storageType,
	})
	return err
}

func (c *Connection) DBDrop(name, storageType string) error {
	_, err := c.dispatch(OpDBDrop, wire.Map{
		"database-name":       name,
		"server-storage-type": storageType,
	})
	return err
}

func (c *Connection) DBExist(name, storageType string) (bool, error) {
	result, err := c.dispatch(OpDBExist, wire.Map{
		"database-name":       name,
		"server-storage-type": storageType,
	})
	if err != nil {
		return false, err
	}
	b, _ := result["result"].(byte)
	return b != 0, nil
}

// DBList returns the server's serialized database directory record
// (§4.4); callers decode it with record.DecodeCSV/DecodeBinary per the
// negotiated SerializationImpl.
func (c *Connection) DBList() ([]byte, error) {
	result, err := c.dispatch(OpDBList, nil)
	if err != nil {
		return nil, err
	}
	b, _ := result["list"].([]byte)
	return b, nil
}

func (c *Connection) DBSize() (int64, error) {
	result, err := c.dispatch(OpDBSize, nil)
	if err != nil {
		return 0, err
	}
	n, _ := result["size"].(int64)
	return n, nil
}

func (c *Connection) DBCountRecords() (int64, error) {
	result, err := c.dispatch(OpDBCountRecords, nil)
	if err != nil {
		return 0, err
	}
	n, _ := result["count"].(int64)
	return n, nil
}

// DBReload refreshes the cluster directory (§9 SUPPLEMENTED FEATURES
// item 3); it never touches the global-property dictionary.
func (c *Connection) DBReload() ([]ClusterInfo, error) {
	result, err := c.dispatch(OpDBReload, nil)
	if err != nil {
		return nil, err
	}
	return decodeClusterList(result, "clusters", "cluster-name", "cluster-id"), nil
}

func (c *Connection) ConfigGet(key string) (string, error) {
	result, err := c.dispatch(OpConfigGet, wire.Map{"key": key})
	if err != nil {
		return "", err
	}
	v, _ := result["value"].(string)
	return v, nil
}

func (c *Connection) ConfigSet(key, value string) error {
	_, err := c.dispatch(OpConfigSet, wire.Map{"key": key, "value": value})
	return err
}

func (c *Connection) ConfigList() (map[string]string, error) {
	result, err := c.dispatch(OpConfigList, nil)
	if err != nil {
		return nil, err
	}
	out := map[string]string{}
	entries, _ := result["config"].([]wire.Map)
	for _, e := range entries {
		k, _ := e["config-key"].(string)
		v, _ := e["config-value"].(string)
		out[k] = v
	}
	return out, nil
}

// RecordPayload is one decoded RECORD_LOAD payload record (§4.4: a
// RECORD_LOAD response may carry the primary record plus fetch-plan
// prefetched records, all in the same repeated group).
type RecordPayload struct {
	Content    []byte
	Version    int32
	RecordType byte
}

// RecordLoad issues RECORD_LOAD (§4.4, §9 SUPPLEMENTED FEATURES item 2):
// fetchPlan is sent exactly as given; an empty string is sent empty and is
// not replaced by the driver config's plan (Client passes cfg.fetchPlan()).
func (c *Connection) RecordLoad(rid model.Rid, fetchPlan string, ignoreCache bool) ([]RecordPayload, error) {
	args := wire.Map{
		"cluster-id":       rid.ClusterID,
		"cluster-position": rid.Position,
		"fetch-plan":       fetchPlan,
		"ignore-cache":     boolToByte(ignoreCache),
		"load-tombstones":  byte(0),
	}
	result, err := c.dispatch(OpRecordLoad, args)
	if err != nil {
		return nil, err
	}
	var out []RecordPayload
	payloads, _ := result["payload"].([]wire.Map)
	for _, p := range payloads {
		recs, _ := p["records"].([]wire.Map)
		for _, r := range recs {
			content, _ := r["record-content"].([]byte)
			version, _ := r["record-version"].(int32)
			rtype, _ := r["record-type"].(byte)
			out = append(out, RecordPayload{Content: content, Version: version, RecordType: rtype})
		}
	}
	return out, nil
}

// RecordCreate issues RECORD_CREATE (§4.4, §4.8 write traversal) and
// returns the server-assigned rid and version.
func (c *Connection) RecordCreate(clusterID int16, content []byte, recordType byte, mode byte) (model.Rid, int32, error) {
	result, err := c.dispatch(OpRecordCreate, wire.Map{
		"cluster-id":      clusterID,
		"record-content":  content,
		"record-type":     recordType,
		"mode":            mode,
	})
	if err != nil {
		return model.Rid{}, 0, err
	}
	rid := model.Rid{
		ClusterID: int16OrZero(result["cluster-id"]),
		Position:  int64OrZero(result["cluster-position"]),
	}
	return rid, int32OrZero(result["record-version"]), nil
}

// RecordUpdate issues RECORD_UPDATE and returns the server's new version.
func (c *Connection) RecordUpdate(rid model.Rid, updateContent bool, content []byte, version int32, recordType byte, mode byte) (int32, error) {
	result, err := c.dispatch(OpRecordUpdate, wire.Map{
		"cluster-id":      rid.ClusterID,
		"cluster-position": rid.Position,
		"update-content":  updateContent,
		"record-content":  content,
		"record-version":  version,
		"record-type":     recordType,
		"mode":            mode,
	})
	if err != nil {
		return 0, err
	}
	return int32OrZero(result["record-version"]), nil
}

// RecordDelete issues RECORD_DELETE; the returned bool mirrors the
// payload-status byte (non-zero means the record existed and was
// deleted).
func (c *Connection) RecordDelete(rid model.Rid, version int32, mode byte) (bool, error) {
	result, err := c.dispatch(OpRecordDelete, wire.Map{
		"cluster-id":       rid.ClusterID,
		"cluster-position": rid.Position,
		"record-version":   version,
		"mode":             mode,
	})
	if err != nil {
		return false, err
	}
	b, _ := result["payload-status"].(byte)
	return b != 0, nil
}

// RidBagGetSize resolves a tree-resident reference bag's declared size
// without dereferencing its contents (§3, §9 "Reference-bag tree
// variant"): the core treats the pointer as opaque and only ever asks
// the server for its cardinality.
func (c *Connection) RidBagGetSize(collectionPointer, changes []byte) (int32, error) {
	result, err := c.dispatch(OpRidBagGetSize, wire.Map{
		"collection-pointer": collectionPointer,
		"changes":            changes,
	})
	if err != nil {
		return 0, err
	}
	return int32OrZero(result["size"]), nil
}

func boolToByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func decodeClusterList(m wire.Map, groupKey, nameKey, idKey string) []ClusterInfo {
	entries, ok := m[groupKey].([]wire.Map)
	if !ok {
		return nil
	}
	out := make([]ClusterInfo, 0, len(entries))
	for _, e := range entries {
		name, _ := e[nameKey].(string)
		id, _ := e[idKey].(int16)
		out = append(out, ClusterInfo{Name: name, ID: id})
	}
	return out
}
