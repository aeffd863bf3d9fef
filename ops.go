/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package orient is a native client for a length-framed, big-endian
// binary graph/document database protocol: wire codec, record
// serializers, connection state machine, query builder, and object-graph
// materializer.
package orient

import "github.com/daill/orientgo/wire"

// Opcode identifies a server operation (§4.4). Values match the
// protocol's own numbering so wire captures stay diffable against a
// live server trace.
type Opcode int8

const (
	OpShutdown       Opcode = 1
	OpConnect        Opcode = 2
	OpDBOpen         Opcode = 3
	OpDBCreate       Opcode = 4
	OpDBClose        Opcode = 5
	OpDBExist        Opcode = 6
	OpDBDrop         Opcode = 7
	OpDBSize         Opcode = 8
	OpDBCountRecords Opcode = 9
	OpRecordLoad     Opcode = 30
	OpRecordCreate   Opcode = 31
	OpRecordUpdate   Opcode = 32
	OpRecordDelete   Opcode = 33
	OpCommand        Opcode = 41
	OpTxCommit       Opcode = 60
	OpConfigGet      Opcode = 70
	OpConfigSet      Opcode = 71
	OpConfigList     Opcode = 72
	OpDBReload       Opcode = 73
	OpDBList         Opcode = 74
	OpRidBagGetSize  Opcode = 114
)

func (o Opcode) String() string {
	switch o {
	case OpShutdown:
		return "SHUTDOWN"
	case OpConnect:
		return "CONNECT"
	case OpDBOpen:
		return "DB_OPEN"
	case OpDBCreate:
		return "DB_CREATE"
	case OpDBClose:
		return "DB_CLOSE"
	case OpDBExist:
		return "DB_EXIST"
	case OpDBDrop:
		return "DB_DROP"
	case OpDBSize:
		return "DB_SIZE"
	case OpDBCountRecords:
		return "DB_COUNTRECORDS"
	case OpRecordLoad:
		return "RECORD_LOAD"
	case OpRecordCreate:
		return "RECORD_CREATE"
	case OpRecordUpdate:
		return "RECORD_UPDATE"
	case OpRecordDelete:
		return "RECORD_DELETE"
	case OpCommand:
		return "COMMAND"
	case OpTxCommit:
		return "TX_COMMIT"
	case OpConfigGet:
		return "CONFIG_GET"
	case OpConfigSet:
		return "CONFIG_SET"
	case OpConfigList:
		return "CONFIG_LIST"
	case OpDBReload:
		return "DB_RELOAD"
	case OpDBList:
		return "DB_LIST"
	case OpRidBagGetSize:
		return "RIDBAG_GET_SIZE"
	}
	return "UNKNOWN"
}

// operation bundles a parsed request/response profile pair. Both are
// nil-safe: Connection.dispatch treats a nil profile as "no body to
// encode/decode beyond the shared response head".
type operation struct {
	name         Opcode
	requiredMin  State // minimum connection state required to issue this op
	requestSpec  string
	responseSpec string
	request      *wire.Group
	response     *wire.Group
}

// mustParse panics on a malformed literal profile string, acceptable only
// because every string here is a fixed compile-time literal (§4.2).
func mustParse(spec string) *wire.Group {
	if spec == "" {
		return wire.NewGroup()
	}
	g, err := wire.ParseProfile(spec)
	if err != nil {
		panic("orient: invalid built-in profile " + spec + ": " + err.Error())
	}
	return g
}

// catalog is the operation descriptor table (§4.4). Profiles exclude the
// shared response head (success:byte)(session:int) and the conditional
// post-head token, both handled uniformly by Connection.dispatch.
var catalog = map[Opcode]*operation{
	OpConnect: {
		name:         OpConnect,
		requiredMin:  StateGreeted,
		requestSpec:  "(driver-name:string)(driver-version:string)(protocol-version:short)(client-id:string)(serialization-impl:string)(token-session:boolean)(user-name:string)(user-password:string)",
		responseSpec: "(token:bytes)",
	},
	OpDBOpen: {
		name:         OpDBOpen,
		requiredMin:  StateAuthenticated,
		requestSpec:  "(driver-name:string)(driver-version:string)(protocol-version:short)(client-id:string)(database-name:string)(database-type:string)(user-name:string)(user-password:string)",
		responseSpec: "(num-of-clusters:short){clusters}[(cluster-name:string)(cluster-id:short)]*(cluster-config:bytes)(orientdb-release:string)(token:bytes)",
	},
	OpDBClose: {
		name:        OpDBClose,
		requiredMin: StateDbOpen,
		requestSpec: "",
	},
	OpShutdown: {
		name:         OpShutdown,
		requiredMin:  StateGreeted,
		requestSpec:  "",
		responseSpec: "(protocol-number:byte)",
	},
	OpDBCreate: {
		name:         OpDBCreate,
		requiredMin:  StateAuthenticated,
		requestSpec:  "(database-name:string)(database-type:string)(storage-type:string)",
		responseSpec: "",
	},
	OpDBDrop: {
		name:         OpDBDrop,
		requiredMin:  StateAuthenticated,
		requestSpec:  "(database-name:string)(server-storage-type:string)",
		responseSpec: "",
	},
	OpDBExist: {
		name:         OpDBExist,
		requiredMin:  StateAuthenticated,
		requestSpec:  "(database-name:string)(server-storage-type:string)",
		responseSpec: "(result:byte)",
	},
	OpDBList: {
		name:         OpDBList,
		requiredMin:  StateAuthenticated,
		requestSpec:  "",
		responseSpec: "(list:bytes)",
	},
	OpDBSize: {
		name:         OpDBSize,
		requiredMin:  StateDbOpen,
		requestSpec:  "",
		responseSpec: "(size:long)",
	},
	OpDBCountRecords: {
		name:         OpDBCountRecords,
		requiredMin:  StateDbOpen,
		requestSpec:  "",
		responseSpec: "(count:long)",
	},
	OpDBReload: {
		name:         OpDBReload,
		requiredMin:  StateDbOpen,
		requestSpec:  "",
		responseSpec: "(num-of-clusters:short){clusters}[(cluster-name:string)(cluster-id:short)]*",
	},
	OpConfigGet: {
		name:         OpConfigGet,
		requiredMin:  StateAuthenticated,
		requestSpec:  "(key:string)",
		responseSpec: "(value:string)",
	},
	OpConfigSet: {
		name:         OpConfigSet,
		requiredMin:  StateAuthenticated,
		requestSpec:  "(key:string)(value:string)",
		responseSpec: "",
	},
	OpConfigList: {
		name:         OpConfigList,
		requiredMin:  StateAuthenticated,
		requestSpec:  "",
		responseSpec: "(num-cfg-items:short){config}[(config-key:string)(config-value:string)]*",
	},
	OpRecordLoad: {
		name:         OpRecordLoad,
		requiredMin:  StateDbOpen,
		requestSpec:  "(cluster-id:short)(cluster-position:long)(fetch-plan:string)(ignore-cache:byte)(load-tombstones:byte)",
		responseSpec: "{payload}[(payload-status:byte){records}[(record-content:bytes)(record-version:int)(record-type:byte)]*]+",
	},
	OpRecordCreate: {
		name:         OpRecordCreate,
		requiredMin:  StateDbOpen,
		requestSpec:  "(cluster-id:short)(record-content:bytes)(record-type:byte)(mode:byte)",
		responseSpec: "(cluster-id:short)(cluster-position:long)(record-version:int)(count-of-collection-changes:int){update-info}[(uuid-most-sig-bits:long)(uuid-least-sig-bits:long)(updated-file-id:long)(updated-page-index:long)(updated-page-offset:int)]*",
	},
	OpRecordUpdate: {
		name:         OpRecordUpdate,
		requiredMin:  StateDbOpen,
		requestSpec:  "(cluster-id:short)(cluster-position:long)(update-content:boolean)(record-content:bytes)(record-version:int)(record-type:byte)(mode:byte)",
		responseSpec: "(record-version:int)(count-of-collection-changes:int){changes}[(uuid-most-sig-bits:long)(uuid-least-sig-bits:long)(updated-file-id:long)(updated-page-index:long)(updated-page-offset:int)]*",
	},
	OpRecordDelete: {
		name:         OpRecordDelete,
		requiredMin:  StateDbOpen,
		requestSpec:  "(cluster-id:short)(cluster-position:long)(record-version:int)(mode:byte)",
		responseSpec: "(payload-status:byte)",
	},
	OpTxCommit: {
		name:         OpTxCommit,
		requiredMin:  StateDbOpen,
		responseSpec: "(created-record-count:int){record-created}[(client-specified-cluster-id:short)(client-specified-cluster-position:long)(created-cluster-id:short)(created-cluster-position:long)]*(updated-record-count:int){record-updated}[(updated-cluster-id:short)(updated-cluster-position:long)(new-record-version:int)]*(count-of-collection-changes:int){records-changed}[(uuid-most-sig-bits:long)(uuid-least-sig-bits:long)(updated-file-id:long)(updated-page-index:long)(updated-page-offset:int)]*",
	},
	OpRidBagGetSize: {
		name:         OpRidBagGetSize,
		requiredMin:  StateDbOpen,
		requestSpec:  "(collection-pointer:bytes)(changes:bytes)",
		responseSpec: "(size:int)",
	},
}

func init() {
	for _, op := range catalog {
		op.request = mustParse(op.requestSpec)
		if op.responseSpec != "" {
			op.response = mustParse(op.responseSpec)
		}
	}
}
