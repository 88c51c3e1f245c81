// Copyright (c) 2024-2026 unyt.org and contributors
// SPDX-License-Identifier: MIT

package speck

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func decodeBuiltin(t *testing.T, typ ValueType, data []byte, e Endianness) (any, error) {
	t.Helper()
	return decodeValue(&ValueParser{Type: typ}, data, e, NewCodecRegistry())
}

func TestDecodeUint(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		endian Endianness
		want   uint64
	}{
		{"uint8", []byte{0xff}, BigEndian, 255},
		{"uint16 big", []byte{0x01, 0x00}, BigEndian, 256},
		{"uint16 little", []byte{0x00, 0x01}, LittleEndian, 256},
		{"uint32 big", []byte{0x00, 0x01, 0x00, 0x00}, BigEndian, 65536},
		{"uint64 little", []byte{1, 0, 0, 0, 0, 0, 0, 0}, LittleEndian, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeBuiltin(t, TypeUint, tt.data, tt.endian)
			if err != nil {
				t.Fatalf("uint decode error: %v", err)
			}
			if got != tt.want {
				t.Errorf("uint = %d, want %d", got, tt.want)
			}
		})
	}

	if _, err := decodeBuiltin(t, TypeUint, []byte{1, 2, 3}, BigEndian); !errors.Is(err, ErrDecode) {
		t.Errorf("3-byte uint error = %v, want ErrDecode", err)
	}
}

func TestDecodeSint(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		endian Endianness
		want   int64
	}{
		{"positive", []byte{0x7f}, BigEndian, 127},
		{"negative byte", []byte{0xff}, BigEndian, -1},
		{"negative short", []byte{0xff, 0xfe}, BigEndian, -2},
		{"negative int32 little", []byte{0xff, 0xff, 0xff, 0xff}, LittleEndian, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeBuiltin(t, TypeInt, tt.data, tt.endian)
			if err != nil {
				t.Fatalf("int decode error: %v", err)
			}
			if got != tt.want {
				t.Errorf("int = %d, want %d", got, tt.want)
			}
		})
	}

	if _, err := decodeBuiltin(t, TypeInt, []byte{1, 2, 3, 4, 5, 6, 7, 8}, BigEndian); !errors.Is(err, ErrDecode) {
		t.Errorf("8-byte int error = %v, want ErrDecode", err)
	}
}

func TestDecodeFloat(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		endian Endianness
		want   float64
	}{
		{"float32 big 1.0", []byte{0x3f, 0x80, 0x00, 0x00}, BigEndian, 1.0},
		{"float32 little 1.0", []byte{0x00, 0x00, 0x80, 0x3f}, LittleEndian, 1.0},
		{"float64 big 1.5", []byte{0x3f, 0xf8, 0, 0, 0, 0, 0, 0}, BigEndian, 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeBuiltin(t, TypeFloat, tt.data, tt.endian)
			if err != nil {
				t.Fatalf("float decode error: %v", err)
			}
			if got != tt.want {
				t.Errorf("float = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecodeBoolean(t *testing.T) {
	tests := []struct {
		data []byte
		want bool
	}{
		{[]byte{0x00}, false},
		{[]byte{0x01}, true},
		{[]byte{0xfe}, true},
	}
	for _, tt := range tests {
		got, err := decodeBuiltin(t, TypeBoolean, tt.data, LittleEndian)
		if err != nil {
			t.Fatalf("boolean decode error: %v", err)
		}
		if got != tt.want {
			t.Errorf("boolean(%x) = %v, want %v", tt.data, got, tt.want)
		}
	}

	if _, err := decodeBuiltin(t, TypeBoolean, []byte{0, 1}, LittleEndian); !errors.Is(err, ErrDecode) {
		t.Errorf("2-byte boolean error = %v, want ErrDecode", err)
	}
}

func TestDecodeStringHexArray(t *testing.T) {
	got, err := decodeBuiltin(t, TypeString, []byte("ab\x00c"), LittleEndian)
	if err != nil {
		t.Fatalf("string decode error: %v", err)
	}
	// Exact span, no trimming.
	if got != "ab\x00c" {
		t.Errorf("string = %q, want %q", got, "ab\x00c")
	}

	if _, err := decodeBuiltin(t, TypeString, []byte{0xff, 0xfe}, LittleEndian); !errors.Is(err, ErrDecode) {
		t.Errorf("invalid UTF-8 string error = %v, want ErrDecode", err)
	}

	gotHex, err := decodeBuiltin(t, TypeHex, []byte{0xDE, 0xAD}, LittleEndian)
	if err != nil {
		t.Fatalf("hex decode error: %v", err)
	}
	if gotHex != "dead" {
		t.Errorf("hex = %q, want %q", gotHex, "dead")
	}

	gotArr, err := decodeBuiltin(t, TypeArray, []byte{1, 2, 255}, LittleEndian)
	if err != nil {
		t.Fatalf("array decode error: %v", err)
	}
	if !reflect.DeepEqual(gotArr, []int{1, 2, 255}) {
		t.Errorf("array = %v, want [1 2 255]", gotArr)
	}
}

func TestDecodeEnum(t *testing.T) {
	entries := []EnumEntry{
		{Key: "0x01", Value: "A"},
		{Key: "2", Value: "B"},
	}
	p := &ValueParser{Type: TypeEnum, Enum: entries}

	tests := []struct {
		data    []byte
		want    any
		wantErr bool
	}{
		{[]byte{0x01}, "A", false},
		{[]byte{0x02}, "B", false},
		{[]byte{0x03}, nil, true},
	}

	for _, tt := range tests {
		got, err := decodeValue(p, tt.data, LittleEndian, NewCodecRegistry())
		if tt.wantErr {
			if !errors.Is(err, ErrDecode) {
				t.Errorf("enum(%x) error = %v, want ErrDecode", tt.data, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("enum(%x) error: %v", tt.data, err)
		}
		if got != tt.want {
			t.Errorf("enum(%x) = %v, want %v", tt.data, got, tt.want)
		}
	}
}

func TestDecodeEnumFirstMatchWins(t *testing.T) {
	p := &ValueParser{Type: TypeEnum, Enum: []EnumEntry{
		{Key: "0b101", Value: "first"},
		{Key: "5", Value: "second"},
	}}
	got, err := decodeValue(p, []byte{0x05}, LittleEndian, NewCodecRegistry())
	if err != nil {
		t.Fatalf("enum decode error: %v", err)
	}
	if got != "first" {
		t.Errorf("enum = %v, want first entry to win", got)
	}
}

func TestDecodeEnumBadLength(t *testing.T) {
	p := &ValueParser{Type: TypeEnum, Enum: []EnumEntry{{Key: "1", Value: "A"}}}
	if _, err := decodeValue(p, []byte{0, 0, 0}, LittleEndian, NewCodecRegistry()); !errors.Is(err, ErrDecode) {
		t.Errorf("3-byte enum error = %v, want ErrDecode", err)
	}
}

func TestDecodeEndpoint(t *testing.T) {
	zero := make([]byte, endpointSize)

	withType := func(t byte) []byte {
		b := make([]byte, endpointSize)
		b[0] = t
		return b
	}
	withID := func(id string) []byte {
		b := make([]byte, endpointSize)
		copy(b[1:], id)
		return b
	}
	withInstance := func(lo, hi byte) []byte {
		b := make([]byte, endpointSize)
		b[19], b[20] = lo, hi
		return b
	}

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"all zero", zero, "@local"},
		{"institution local", withType(1), "@+local"},
		{"broadcast local", withType(2), "@@local"},
		{"named id", withID("jonas"), "@jonas"},
		{"instance 7", withInstance(0x07, 0x00), "@local/7"},
		{"wildcard instance", withInstance(0xff, 0xff), "@local/*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeBuiltin(t, TypeEndpoint, tt.data, LittleEndian)
			if err != nil {
				t.Fatalf("endpoint decode error: %v", err)
			}
			if got != tt.want {
				t.Errorf("endpoint = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := decodeBuiltin(t, TypeEndpoint, withType(9), LittleEndian); !errors.Is(err, ErrDecode) {
		t.Errorf("type byte 9 error = %v, want ErrDecode", err)
	}
	if _, err := decodeBuiltin(t, TypeEndpoint, make([]byte, 20), LittleEndian); !errors.Is(err, ErrDecode) {
		t.Errorf("20-byte endpoint error = %v, want ErrDecode", err)
	}
}

func TestDecodeEndpointNulTruncation(t *testing.T) {
	b := make([]byte, endpointSize)
	copy(b[1:], "abc\x00def")
	got, err := decodeBuiltin(t, TypeEndpoint, b, LittleEndian)
	if err != nil {
		t.Fatalf("endpoint decode error: %v", err)
	}
	if got != "@abc" {
		t.Errorf("endpoint = %q, want %q", got, "@abc")
	}
}

func TestDecodePointer(t *testing.T) {
	data := make([]byte, pointerSize)
	data[0], data[25] = 0xAB, 0x01
	got, err := decodeBuiltin(t, TypePointer, data, LittleEndian)
	if err != nil {
		t.Fatalf("pointer decode error: %v", err)
	}
	want := "$ab" + strings.Repeat("0", 48) + "01"
	if got != want {
		t.Errorf("pointer = %q, want %q", got, want)
	}

	if _, err := decodeBuiltin(t, TypePointer, make([]byte, 25), LittleEndian); !errors.Is(err, ErrDecode) {
		t.Errorf("25-byte pointer error = %v, want ErrDecode", err)
	}
}

func TestDecodeCustomUnregistered(t *testing.T) {
	p := &ValueParser{Type: TypeCustom, Custom: "missing"}
	if _, err := decodeValue(p, []byte{1}, LittleEndian, NewCodecRegistry()); !errors.Is(err, ErrCodecNotFound) {
		t.Errorf("unregistered codec error = %v, want ErrCodecNotFound", err)
	}
}
