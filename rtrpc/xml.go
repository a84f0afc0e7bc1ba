// Copyright 2026 The rtorrent-rpc Authors
// SPDX-License-Identifier: Apache-2.0

package rtrpc

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// XML-RPC wire codec. Values map to Go as:
//
//	<string> / bare value  string
//	<i4> <int> <i8>        int64
//	<double>               float64
//	<boolean>              bool
//	<base64>               []byte
//	<array>                []any
//	<struct>               map[string]any
//	<nil/>                 nil
//
// Outgoing integers always use the <i8> extension the remote expects. The
// inverse helpers (UnmarshalCall, MarshalResponse, MarshalFault) exist for
// test harnesses that stand in for the remote; the client itself only
// encodes calls and decodes responses.

// MarshalCall encodes an XML-RPC methodCall document.
func MarshalCall(method string, args ...any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<methodCall><methodName>")
	_ = xml.EscapeText(&buf, []byte(method))
	buf.WriteString("</methodName><params>")
	for _, a := range args {
		buf.WriteString("<param>")
		if err := encodeValue(&buf, a); err != nil {
			return nil, err
		}
		buf.WriteString("</param>")
	}
	buf.WriteString("</params></methodCall>")
	return buf.Bytes(), nil
}

// MarshalResponse encodes a single-value methodResponse document.
func MarshalResponse(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<methodResponse><params><param>")
	if err := encodeValue(&buf, v); err != nil {
		return nil, err
	}
	buf.WriteString("</param></params></methodResponse>")
	return buf.Bytes(), nil
}

// MarshalFault encodes a fault methodResponse document.
func MarshalFault(code int64, msg string) []byte {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.WriteString("<methodResponse><fault>")
	// map encoding is deterministic here: keys are sorted.
	_ = encodeValue(&buf, map[string]any{"faultCode": code, "faultString": msg})
	buf.WriteString("</fault></methodResponse>")
	return buf.Bytes()
}

func encodeValue(buf *bytes.Buffer, v any) error {
	buf.WriteString("<value>")
	switch x := v.(type) {
	case string:
		buf.WriteString("<string>")
		_ = xml.EscapeText(buf, []byte(x))
		buf.WriteString("</string>")
	case int:
		buf.WriteString("<i8>")
		buf.WriteString(strconv.Itoa(x))
		buf.WriteString("</i8>")
	case int64:
		buf.WriteString("<i8>")
		buf.WriteString(strconv.FormatInt(x, 10))
		buf.WriteString("</i8>")
	case float64:
		buf.WriteString("<double>")
		buf.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
		buf.WriteString("</double>")
	case bool:
		if x {
			buf.WriteString("<boolean>1</boolean>")
		} else {
			buf.WriteString("<boolean>0</boolean>")
		}
	case []byte:
		buf.WriteString("<base64>")
		buf.WriteString(base64.StdEncoding.EncodeToString(x))
		buf.WriteString("</base64>")
	case []any:
		buf.WriteString("<array><data>")
		for _, e := range x {
			if err := encodeValue(buf, e); err != nil {
				return err
			}
		}
		buf.WriteString("</data></array>")
	case map[string]any:
		buf.WriteString("<struct>")
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			buf.WriteString("<member><name>")
			_ = xml.EscapeText(buf, []byte(k))
			buf.WriteString("</name>")
			if err := encodeValue(buf, x[k]); err != nil {
				return err
			}
			buf.WriteString("</member>")
		}
		buf.WriteString("</struct>")
	case nil:
		buf.WriteString("<nil/>")
	default:
		return transportError(fmt.Sprintf("cannot encode %T as an XML-RPC value", v), nil)
	}
	buf.WriteString("</value>")
	return nil
}

// UnmarshalResponse decodes a methodResponse document into its single
// untyped value. A <fault> response decodes into a KindTransport error
// carrying the remote fault code and string.
func UnmarshalResponse(data []byte) (any, error) {
	d := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, transportError("malformed XML-RPC response", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "methodResponse", "params", "param":
			// descend
		case "value":
			return decodeValue(d)
		case "fault":
			return nil, decodeFault(d)
		default:
			return nil, transportError(fmt.Sprintf("unexpected element <%s> in response", se.Name.Local), nil)
		}
	}
}

// UnmarshalCall decodes a methodCall document into its method name and
// untyped argument list.
func UnmarshalCall(data []byte) (string, []any, error) {
	d := xml.NewDecoder(bytes.NewReader(data))
	var method string
	var args []any
	for {
		tok, err := d.Token()
		if err != nil {
			if method != "" && errors.Is(err, io.EOF) {
				return method, args, nil
			}
			return "", nil, transportError("malformed XML-RPC call", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "methodCall", "params", "param":
		case "methodName":
			s, err := elementText(d)
			if err != nil {
				return "", nil, err
			}
			method = strings.TrimSpace(s)
		case "value":
			v, err := decodeValue(d)
			if err != nil {
				return "", nil, err
			}
			args = append(args, v)
		default:
			return "", nil, transportError(fmt.Sprintf("unexpected element <%s> in call", se.Name.Local), nil)
		}
	}
}

// decodeValue consumes the contents of a <value> element (the start tag has
// already been read) through its closing tag.
func decodeValue(d *xml.Decoder) (any, error) {
	var text strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, transportError("malformed XML-RPC value", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			v, err := decodeTyped(d, t)
			if err != nil {
				return nil, err
			}
			if err := consumeValueEnd(d); err != nil {
				return nil, err
			}
			return v, nil
		case xml.EndElement:
			// A <value> with no type element is a string.
			return text.String(), nil
		}
	}
}

// consumeValueEnd reads tokens up to the </value> closing tag, tolerating
// whitespace after the typed element.
func consumeValueEnd(d *xml.Decoder) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return transportError("malformed XML-RPC value", err)
		}
		switch t := tok.(type) {
		case xml.EndElement:
			return nil
		case xml.CharData:
		case xml.StartElement:
			return transportError(fmt.Sprintf("unexpected second element <%s> inside value", t.Name.Local), nil)
		}
	}
}

func decodeTyped(d *xml.Decoder, se xml.StartElement) (any, error) {
	switch se.Name.Local {
	case "string":
		return elementText(d)
	case "int", "i4", "i8":
		s, err := elementText(d)
		if err != nil {
			return nil, err
		}
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, transportError(fmt.Sprintf("invalid integer %q", s), nil)
		}
		return n, nil
	case "double":
		s, err := elementText(d)
		if err != nil {
			return nil, err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, transportError(fmt.Sprintf("invalid double %q", s), nil)
		}
		return f, nil
	case "boolean":
		s, err := elementText(d)
		if err != nil {
			return nil, err
		}
		switch strings.TrimSpace(s) {
		case "1":
			return true, nil
		case "0":
			return false, nil
		}
		return nil, transportError(fmt.Sprintf("invalid boolean %q", s), nil)
	case "base64":
		s, err := elementText(d)
		if err != nil {
			return nil, err
		}
		b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
		if err != nil {
			return nil, transportError("invalid base64 payload", err)
		}
		return b, nil
	case "nil":
		if _, err := elementText(d); err != nil {
			return nil, err
		}
		return nil, nil
	case "array":
		return decodeArray(d)
	case "struct":
		return decodeStruct(d)
	default:
		return nil, transportError(fmt.Sprintf("unknown value type <%s>", se.Name.Local), nil)
	}
}

// elementText collects the character data of a scalar element through its
// closing tag.
func elementText(d *xml.Decoder) (string, error) {
	var b strings.Builder
	for {
		tok, err := d.Token()
		if err != nil {
			return "", transportError("malformed XML-RPC value", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.EndElement:
			return b.String(), nil
		case xml.StartElement:
			return "", transportError(fmt.Sprintf("unexpected element <%s> in scalar value", t.Name.Local), nil)
		}
	}
}

func decodeArray(d *xml.Decoder) ([]any, error) {
	vals := []any{}
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, transportError("malformed XML-RPC array", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "data":
			case "value":
				v, err := decodeValue(d)
				if err != nil {
					return nil, err
				}
				vals = append(vals, v)
			default:
				return nil, transportError(fmt.Sprintf("unexpected element <%s> in array", t.Name.Local), nil)
			}
		case xml.EndElement:
			if t.Name.Local == "array" {
				return vals, nil
			}
			// </data>: keep reading until </array>.
		}
	}
}

func decodeStruct(d *xml.Decoder) (map[string]any, error) {
	m := map[string]any{}
	var name string
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, transportError("malformed XML-RPC struct", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "member":
			case "name":
				s, err := elementText(d)
				if err != nil {
					return nil, err
				}
				name = strings.TrimSpace(s)
			case "value":
				v, err := decodeValue(d)
				if err != nil {
					return nil, err
				}
				m[name] = v
			default:
				return nil, transportError(fmt.Sprintf("unexpected element <%s> in struct", t.Name.Local), nil)
			}
		case xml.EndElement:
			if t.Name.Local == "struct" {
				return m, nil
			}
		}
	}
}

// decodeFault turns the contents of a <fault> element into the transport
// error reported by the remote.
func decodeFault(d *xml.Decoder) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return transportError("malformed XML-RPC fault", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if se.Name.Local != "value" {
			return transportError(fmt.Sprintf("unexpected element <%s> in fault", se.Name.Local), nil)
		}
		v, err := decodeValue(d)
		if err != nil {
			return err
		}
		m, ok := v.(map[string]any)
		if !ok {
			return transportError("fault payload is not a struct", nil)
		}
		code, _ := m["faultCode"].(int64)
		msg, _ := m["faultString"].(string)
		return transportError(fmt.Sprintf("remote fault %d: %s", code, msg), nil)
	}
}
