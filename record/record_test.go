/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package record

import (
	"testing"

	"github.com/daill/orientgo/model"
	"github.com/daill/orientgo/oerr"
	"github.com/daill/orientgo/wire"
	"github.com/stretchr/testify/require"
)

func TestBinaryRecordRoundTrip(t *testing.T) {
	doc := NewDocument("Person")
	doc.Set("name", "ada")
	doc.Set("age", int32(36))
	doc.Set("balance", 12.5)
	doc.Set("active", true)
	doc.Set("nickname", nil)
	doc.OutEdges["Knows"] = model.NewEmbeddedBag([]model.Rid{
		{ClusterID: 12, Position: 4},
		{ClusterID: 12, Position: 9},
	})

	raw, err := EncodeBinary(doc)
	require.NoError(t, err)

	globals := NewGlobalProperties()
	got, err := DecodeBinary(raw, globals)
	require.NoError(t, err)

	require.Equal(t, "Person", got.ClassName)
	name, _ := got.Get("name")
	require.Equal(t, "ada", name)
	age, _ := got.Get("age")
	require.Equal(t, int32(36), age)
	balance, _ := got.Get("balance")
	require.Equal(t, 12.5, balance)
	active, _ := got.Get("active")
	require.Equal(t, true, active)
	nickname, ok := got.Get("nickname")
	require.True(t, ok)
	require.Nil(t, nickname)

	bag, ok := got.OutEdges["Knows"]
	require.True(t, ok)
	require.False(t, bag.Tree)
	require.Equal(t, []model.Rid{{ClusterID: 12, Position: 4}, {ClusterID: 12, Position: 9}}, bag.Rids)
}

// TestBinaryRecordEmbeddedDocumentRoundTrip reproduces §8 property 4's
// required "embedded Vertex" case: a field of type EMBEDDED whose own
// header offsets must stay absolute to the whole outer record, not to
// the nested record's own start.
func TestBinaryRecordEmbeddedDocumentRoundTrip(t *testing.T) {
	addr := NewDocument("Address")
	addr.Set("city", "Berlin")
	addr.Set("zip", int32(10115))

	doc := NewDocument("Person")
	doc.Set("name", "ada")
	doc.Set("home", addr)

	raw, err := EncodeBinary(doc)
	require.NoError(t, err)

	got, err := DecodeBinary(raw, NewGlobalProperties())
	require.NoError(t, err)

	require.Equal(t, "Person", got.ClassName)
	name, _ := got.Get("name")
	require.Equal(t, "ada", name)

	home, ok := got.Get("home")
	require.True(t, ok)
	nested, ok := home.(*Document)
	require.True(t, ok)
	require.Equal(t, "Address", nested.ClassName)
	city, _ := nested.Get("city")
	require.Equal(t, "Berlin", city)
	zip, _ := nested.Get("zip")
	require.Equal(t, int32(10115), zip)
}

// TestBinaryRecordEmbeddedListRoundTrip covers the EMBEDDEDLIST leading
// ANY tag byte (§4.6): decode must skip it rather than misreading it as
// the first element's own type tag.
func TestBinaryRecordEmbeddedListRoundTrip(t *testing.T) {
	doc := NewDocument("Team")
	doc.Set("scores", []interface{}{int32(1), int32(2), int32(3)})

	raw, err := EncodeBinary(doc)
	require.NoError(t, err)

	got, err := DecodeBinary(raw, NewGlobalProperties())
	require.NoError(t, err)

	scores, ok := got.Get("scores")
	require.True(t, ok)
	require.Equal(t, []interface{}{int32(1), int32(2), int32(3)}, scores)
}

func TestBinaryRecordEmbeddedMapRoundTrip(t *testing.T) {
	doc := NewDocument("Config")
	doc.Set("settings", map[interface{}]interface{}{
		"timeout": int32(30),
		"retries": int32(3),
	})

	raw, err := EncodeBinary(doc)
	require.NoError(t, err)

	got, err := DecodeBinary(raw, NewGlobalProperties())
	require.NoError(t, err)

	settings, ok := got.Get("settings")
	require.True(t, ok)
	m, ok := settings.(map[interface{}]interface{})
	require.True(t, ok)
	require.Equal(t, int32(30), m["timeout"])
	require.Equal(t, int32(3), m["retries"])
}

// TestBinaryRecordGlobalPropertyHeader hand-assembles a record that
// references the global-property dictionary by negative header length
// (§4.6) -- a branch EncodeBinary never emits on its own, since this
// client always writes inline field names.
func TestBinaryRecordGlobalPropertyHeader(t *testing.T) {
	globals := NewGlobalProperties()
	globals.Set(7, "age", TInt)

	w := wire.NewWriter()
	require.NoError(t, w.WriteByte(binaryVersion))
	require.NoError(t, w.WriteVarint(0)) // no class name

	nameLen := int64(-8) // propertyId = -(-8)-1 = 7
	headerLen := varintLen(nameLen) + 4
	terminatorLen := varintLen(0)
	dataStart := w.Len() + headerLen + terminatorLen

	require.NoError(t, w.WriteVarint(nameLen))
	require.NoError(t, w.WriteInt(int32(dataStart)))
	require.NoError(t, w.WriteVarint(0)) // terminator
	require.NoError(t, w.WriteVarint(42))

	got, err := DecodeBinary(w.Bytes(), globals)
	require.NoError(t, err)

	age, ok := got.Get("age")
	require.True(t, ok)
	require.Equal(t, int32(42), age)
}

func TestCSVRecordRoundTrip(t *testing.T) {
	doc := NewDocument("Person")
	doc.Set("name", "ada")
	doc.Set("age", int64(36))
	doc.Set("active", true)
	doc.OutEdges["Knows"] = model.NewEmbeddedBag([]model.Rid{{ClusterID: 12, Position: 4}})

	raw, err := EncodeCSV(doc)
	require.NoError(t, err)

	got, err := DecodeCSV(raw)
	require.NoError(t, err)

	require.Equal(t, "Person", got.ClassName)
	name, _ := got.Get("name")
	require.Equal(t, "ada", name)
	age, _ := got.Get("age")
	require.Equal(t, int64(36), age)
	active, _ := got.Get("active")
	require.Equal(t, true, active)

	bag, ok := got.OutEdges["Knows"]
	require.True(t, ok)
	require.Equal(t, []model.Rid{{ClusterID: 12, Position: 4}}, bag.Rids)
}

func TestCSVRecordQuotedStringWithEmbeddedComma(t *testing.T) {
	got, err := DecodeCSV([]byte(`Person@name:"Lovelace, Ada",age:36`))
	require.NoError(t, err)
	name, _ := got.Get("name")
	require.Equal(t, "Lovelace, Ada", name)
	age, _ := got.Get("age")
	require.Equal(t, int64(36), age)
}

func TestCSVRecordUnrecognizedValueIsSerializationError(t *testing.T) {
	_, err := DecodeCSV([]byte(`Person@name:notquoted`))
	require.Error(t, err)
	var oe *oerr.Error
	require.ErrorAs(t, err, &oe)
	require.Equal(t, oerr.Serialization, oe.Kind)
}

func TestRidBagDocumentRoundTrip(t *testing.T) {
	bag := model.NewEmbeddedBag([]model.Rid{{ClusterID: 3, Position: 5}, {ClusterID: 3, Position: 6}})
	w := wire.NewWriter()
	require.NoError(t, EncodeRidBag(w, bag))

	rids, err := DecodeRidBagDocument(w.Bytes())
	require.NoError(t, err)
	require.Equal(t, bag.Rids, rids)
}
