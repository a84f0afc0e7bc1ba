// Copyright 2026 The rtorrent-rpc Authors
// SPDX-License-Identifier: Apache-2.0

package rtrpc

import (
	"errors"
	"testing"
)

func TestConvertValue(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		typ     FieldType
		want    any
		wantErr bool
	}{
		{"string ok", "abc", FieldString, "abc", false},
		{"string from int", int64(1), FieldString, nil, true},
		{"int ok", int64(42), FieldInt, int64(42), false},
		{"int from string", "42", FieldInt, nil, true},
		{"float ok", 1.5, FieldFloat, 1.5, false},
		{"float promoted from int", int64(1500), FieldFloat, 1500.0, false},
		{"bool native", true, FieldBool, true, false},
		{"bool from zero", int64(0), FieldBool, false, false},
		{"bool from one", int64(1), FieldBool, true, false},
		{"bool from two", int64(2), FieldBool, nil, true},
		{"bool from string", "1", FieldBool, nil, true},
		{"bytes ok", []byte("xyz"), FieldBytes, []byte("xyz"), false},
		{"bytes from string", "xyz", FieldBytes, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := convertValue(tt.in, tt.typ)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("got %#v, want error", got)
				}
				if !errors.Is(err, ErrUnexpectedStructure) {
					t.Errorf("error is not unexpected-structure: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			switch want := tt.want.(type) {
			case []byte:
				if string(got.([]byte)) != string(want) {
					t.Errorf("got %#v, want %#v", got, want)
				}
			default:
				if got != tt.want {
					t.Errorf("got %#v, want %#v", got, tt.want)
				}
			}
		})
	}
}

func TestAs(t *testing.T) {
	row := Row{
		cols: []Column{{Name: "d.name", Type: FieldString}, {Name: "d.size_bytes", Type: FieldInt}},
		vals: []any{"Ubuntu.iso", int64(4500)},
	}

	name, err := As[string](row, 0)
	if err != nil || name != "Ubuntu.iso" {
		t.Fatalf("As[string] = %q, %v", name, err)
	}
	size, err := As[int64](row, 1)
	if err != nil || size != 4500 {
		t.Fatalf("As[int64] = %d, %v", size, err)
	}

	if _, err := As[int64](row, 0); !errors.Is(err, ErrUnexpectedStructure) {
		t.Errorf("type mismatch not reported: %v", err)
	}
	if _, err := As[string](row, 2); !errors.Is(err, ErrUnexpectedStructure) {
		t.Errorf("out of range not reported: %v", err)
	}
	if _, err := As[string](row, -1); !errors.Is(err, ErrUnexpectedStructure) {
		t.Errorf("negative index not reported: %v", err)
	}
}

func TestFieldCatalogNames(t *testing.T) {
	if got := DName.RemoteName(); got != "d.name" {
		t.Errorf("DName = %q", got)
	}
	if got := DDownRate.RemoteName(); got != "d.down.rate" {
		t.Errorf("DDownRate = %q", got)
	}
	if got := FPath.RemoteName(); got != "f.path" {
		t.Errorf("FPath = %q", got)
	}
	if got := PAddress.RemoteName(); got != "p.address" {
		t.Errorf("PAddress = %q", got)
	}
	if got := TURL.RemoteName(); got != "t.url" {
		t.Errorf("TURL = %q", got)
	}
	if DRatio.Type() != FieldFloat {
		t.Errorf("DRatio type = %v", DRatio.Type())
	}
	if col := DIsActive.Column(); col.Name != "d.is_active" || col.Type != FieldBool {
		t.Errorf("DIsActive column = %+v", col)
	}
}
