/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseProfileSimple(t *testing.T) {
	g, err := ParseProfile("(protocol:short)")
	require.NoError(t, err)
	require.Len(t, g.Children, 1)
	term, ok := g.Children[0].(Term)
	require.True(t, ok)
	require.Equal(t, "protocol", term.Name)
	require.Equal(t, "short", term.Type)
}

func TestParseProfileGroupAndLabel(t *testing.T) {
	g, err := ParseProfile("(num-of-clusters:int){cluster}[(name:string)(id:short)]")
	require.NoError(t, err)
	require.Len(t, g.Children, 2)
	grp, ok := g.Children[1].(*Group)
	require.True(t, ok)
	require.Equal(t, "cluster", grp.Label)
	require.Len(t, grp.Children, 2)
}

func TestCountedRepeatingGroupDecode(t *testing.T) {
	profile := &Group{Children: []Element{
		NewTerm("num-of-clusters", "int"),
		(&Group{Children: []Element{NewTerm("name", "string"), NewTerm("id", "short")}}).Labeled("cluster").Repeat(false),
	}}
	w := NewWriter()
	require.NoError(t, w.WriteInt(2))
	require.NoError(t, w.WriteString("default"))
	require.NoError(t, w.WriteShort(0))
	require.NoError(t, w.WriteString("index"))
	require.NoError(t, w.WriteShort(1))

	ctx := NewDecodeContext(NewReader(w.Bytes()))
	out, err := Decode(ctx, profile)
	require.NoError(t, err)
	require.EqualValues(t, int32(2), out["num-of-clusters"])
	clusters, ok := out["cluster"].([]Map)
	require.True(t, ok)
	require.Len(t, clusters, 2)
	require.Equal(t, "default", clusters[0]["name"])
	require.EqualValues(t, int16(1), clusters[1]["id"])
}

// errorDecoderProfile mirrors §4.4's error decoder:
// [{exception}(1)(class:string)(message:string)]*(0)
func errorDecoderProfile() *Group {
	excGroup := (&Group{Children: []Element{
		NewLiteral(1, func(b byte) bool { return b == 1 }),
		NewTerm("class", "string"),
		NewTerm("message", "string"),
	}}).Labeled("exception").Repeat(true)
	return &Group{Children: []Element{excGroup, NewLiteral(0, nil)}}
}

func TestErrorDecodingSingleException(t *testing.T) {
	buf := []byte{0x01}
	buf = append(buf, encStr(t, "ClassX")...)
	buf = append(buf, encStr(t, "msg")...)
	buf = append(buf, 0x00)

	ctx := NewDecodeContext(NewReader(buf))
	out, err := Decode(ctx, errorDecoderProfile())
	require.NoError(t, err)
	exc, ok := out["exception"].([]Map)
	require.True(t, ok)
	require.Len(t, exc, 1)
	require.Equal(t, "ClassX", exc[0]["class"])
	require.Equal(t, "msg", exc[0]["message"])
}

func TestErrorDecodingTwoExceptions(t *testing.T) {
	buf := []byte{0x01}
	buf = append(buf, encStr(t, "ClassX")...)
	buf = append(buf, encStr(t, "msg")...)
	buf = append(buf, 0x01)
	buf = append(buf, encStr(t, "ClassY")...)
	buf = append(buf, encStr(t, "msg2")...)
	buf = append(buf, 0x00)

	ctx := NewDecodeContext(NewReader(buf))
	out, err := Decode(ctx, errorDecoderProfile())
	require.NoError(t, err)
	exc, ok := out["exception"].([]Map)
	require.True(t, ok)
	require.Len(t, exc, 2)
	require.Equal(t, "ClassY", exc[1]["class"])
}

func encStr(t *testing.T, s string) []byte {
	t.Helper()
	w := NewWriter()
	require.NoError(t, w.WriteString(s))
	return w.Bytes()
}
