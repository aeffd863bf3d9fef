/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package record

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/daill/orientgo/model"
	"github.com/daill/orientgo/oerr"
	"github.com/daill/orientgo/wire"
)

// DecodeCSV decodes the textual record format (§4.6):
// "ClassName@field:value,field:value,...". String values are
// double-quoted, numeric literals are bare, and a bare "%...;" token is
// base64 over a ridbag document sub-format.
func DecodeCSV(raw []byte) (*Document, error) {
	s := string(raw)

	className := ""
	if idx := topLevelIndex(s, '@'); idx >= 0 {
		className = s[:idx]
		s = s[idx+1:]
	}

	doc := NewDocument(className)
	for _, field := range splitTopLevel(s, ',') {
		if field == "" {
			continue
		}
		name, valStr, err := splitNameValue(field)
		if err != nil {
			return nil, err
		}
		val, err := decodeCSVValue(valStr)
		if err != nil {
			return nil, err
		}
		doc.routeField(name, val)
	}
	return doc, nil
}

// EncodeCSV is the inverse of DecodeCSV.
func EncodeCSV(doc *Document) ([]byte, error) {
	var b strings.Builder
	b.WriteString(doc.ClassName)
	b.WriteByte('@')

	first := true
	writeField := func(name string, val interface{}) error {
		if !first {
			b.WriteByte(',')
		}
		first = false
		b.WriteString(name)
		b.WriteByte(':')
		enc, err := encodeCSVValue(val)
		if err != nil {
			return err
		}
		b.WriteString(enc)
		return nil
	}

	for _, name := range doc.FieldOrder() {
		val, _ := doc.Get(name)
		if err := writeField(name, val); err != nil {
			return nil, err
		}
	}
	for class, bag := range doc.OutEdges {
		if err := writeField("out_"+class, bag); err != nil {
			return nil, err
		}
	}
	for class, bag := range doc.InEdges {
		if err := writeField("in_"+class, bag); err != nil {
			return nil, err
		}
	}
	return []byte(b.String()), nil
}

func decodeCSVValue(v string) (interface{}, error) {
	switch {
	case v == "":
		return nil, nil
	case v == "true":
		return true, nil
	case v == "false":
		return false, nil
	case strings.HasPrefix(v, `"`) && strings.HasSuffix(v, `"`) && len(v) >= 2:
		return unescapeCSVString(v[1 : len(v)-1]), nil
	case strings.HasPrefix(v, "%") && strings.HasSuffix(v, ";"):
		blob, err := base64.StdEncoding.DecodeString(v[1 : len(v)-1])
		if err != nil {
			return nil, oerr.Newf(oerr.Serialization, err, "csv record: malformed ridbag blob %q", v)
		}
		rids, err := DecodeRidBagDocument(blob)
		if err != nil {
			return nil, err
		}
		return model.NewEmbeddedBag(rids), nil
	default:
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i, nil
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, nil
		}
		return nil, oerr.Newf(oerr.Serialization, nil, "csv record: unrecognized field value syntax %q", v)
	}
}

func encodeCSVValue(val interface{}) (string, error) {
	switch v := val.(type) {
	case nil:
		return "", nil
	case bool:
		if v {
			return "true", nil
		}
		return "false", nil
	case string:
		return `"` + escapeCSVString(v) + `"`, nil
	case int:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case model.ReferenceBag:
		w := wire.NewWriter()
		if err := EncodeRidBag(w, v); err != nil {
			return "", err
		}
		return "%" + base64.StdEncoding.EncodeToString(w.Bytes()) + ";", nil
	default:
		return "", oerr.Newf(oerr.TypeNotFound, nil, "csv record: no textual encoding for Go type %T", val)
	}
}

func escapeCSVString(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

func unescapeCSVString(s string) string {
	return strings.ReplaceAll(s, `\"`, `"`)
}

func splitNameValue(field string) (name, value string, err error) {
	idx := topLevelIndex(field, ':')
	if idx < 0 {
		return "", "", oerr.Newf(oerr.Serialization, nil, "csv record: field %q missing name:value separator", field)
	}
	return field[:idx], field[idx+1:], nil
}

// splitTopLevel splits s on sep, ignoring separators that occur inside a
// double-quoted run.
func splitTopLevel(s string, sep byte) []string {
	var out []string
	inQuotes := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			if i == 0 || s[i-1] != '\\' {
				inQuotes = !inQuotes
			}
		case sep:
			if !inQuotes {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}

// topLevelIndex returns the index of the first occurrence of b outside of
// a quoted run, or -1.
func topLevelIndex(s string, b byte) int {
	inQuotes := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			if i == 0 || s[i-1] != '\\' {
				inQuotes = !inQuotes
			}
		case b:
			if !inQuotes {
				return i
			}
		}
	}
	return -1
}
