// Copyright (c) 2024-2026 unyt.org and contributors
// SPDX-License-Identifier: MIT

package speck

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// decodeValue runs one ValueParser over a field's raw bytes.
func decodeValue(p *ValueParser, data []byte, e Endianness, reg *CodecRegistry) (any, error) {
	switch p.Type {
	case TypeBoolean:
		if len(data) != 1 {
			return nil, fmt.Errorf("%w: boolean needs exactly 1 byte, got %d", ErrDecode, len(data))
		}
		return data[0] != 0, nil

	case TypeUint:
		switch len(data) {
		case 1, 2, 4, 8:
		default:
			return nil, fmt.Errorf("%w: uint length %d, want 1/2/4/8", ErrDecode, len(data))
		}
		return decodeUint(data, e), nil

	case TypeInt:
		return decodeSint(data, e)

	case TypeFloat:
		return decodeFloat(data, e)

	case TypeString:
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("%w: string field is not valid UTF-8", ErrDecode)
		}
		return string(data), nil

	case TypeEnum:
		return decodeEnum(p.Enum, data, e)

	case TypeEndpoint:
		return decodeEndpoint(data, e)

	case TypePointer:
		if len(data) != pointerSize {
			return nil, fmt.Errorf("%w: pointer needs %d bytes, got %d", ErrDecode, pointerSize, len(data))
		}
		return "$" + hex.EncodeToString(data), nil

	case TypeHex:
		return hex.EncodeToString(data), nil

	case TypeArray:
		out := make([]int, len(data))
		for i, b := range data {
			out[i] = int(b)
		}
		return out, nil

	case TypeCustom:
		fn, ok := reg.lookup(p.Custom)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrCodecNotFound, p.Custom)
		}
		v, err := fn(data, e)
		if err != nil {
			return nil, fmt.Errorf("%w: codec %q: %v", ErrDecode, p.Custom, err)
		}
		return v, nil
	}
	return nil, fmt.Errorf("%w: unknown parser type %q", ErrSchema, p.Type)
}

func decodeUint(data []byte, e Endianness) uint64 {
	var v uint64
	if e == BigEndian {
		for _, b := range data {
			v = v<<8 | uint64(b)
		}
		return v
	}
	for i := len(data) - 1; i >= 0; i-- {
		v = v<<8 | uint64(data[i])
	}
	return v
}

func decodeSint(data []byte, e Endianness) (int64, error) {
	u := decodeUint(data, e)
	switch len(data) {
	case 1:
		return int64(int8(u)), nil
	case 2:
		return int64(int16(u)), nil
	case 4:
		return int64(int32(u)), nil
	}
	return 0, fmt.Errorf("%w: int length %d, want 1/2/4", ErrDecode, len(data))
}

func decodeFloat(data []byte, e Endianness) (float64, error) {
	switch len(data) {
	case 4:
		return float64(math.Float32frombits(e.ByteOrder().Uint32(data))), nil
	case 8:
		return math.Float64frombits(e.ByteOrder().Uint64(data)), nil
	}
	return 0, fmt.Errorf("%w: float length %d, want 4 or 8", ErrDecode, len(data))
}

// decodeEnum matches the field's unsigned integer interpretation against the
// mapping in document order; the first matching key wins.
func decodeEnum(entries []EnumEntry, data []byte, e Endianness) (any, error) {
	switch len(data) {
	case 1, 2, 4:
	default:
		return nil, fmt.Errorf("%w: enum field length %d, want 1/2/4", ErrDecode, len(data))
	}
	v := decodeUint(data, e)
	for _, entry := range entries {
		k, err := parseEnumKey(entry.Key)
		if err != nil {
			return nil, err
		}
		if k == v {
			return entry.Value, nil
		}
	}
	return nil, fmt.Errorf("%w: enum value %d has no mapping", ErrDecode, v)
}

// parseEnumKey parses a decimal, 0x or 0b textual integer key.
func parseEnumKey(key string) (uint64, error) {
	base := 10
	digits := key
	switch {
	case strings.HasPrefix(key, "0x"), strings.HasPrefix(key, "0X"):
		base, digits = 16, key[2:]
	case strings.HasPrefix(key, "0b"), strings.HasPrefix(key, "0B"):
		base, digits = 2, key[2:]
	}
	v, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: enum key %q is not a textual integer", ErrSchema, key)
	}
	return v, nil
}

const (
	endpointSize   = 21
	endpointIDSize = 18
	pointerSize    = 26
)

// decodeEndpoint renders the fixed 21-byte endpoint wire format:
// byte 0 selects the prefix, bytes 1-18 hold the id, bytes 19-20 the
// uint16 instance.
func decodeEndpoint(data []byte, e Endianness) (string, error) {
	if len(data) != endpointSize {
		return "", fmt.Errorf("%w: endpoint needs %d bytes, got %d", ErrDecode, endpointSize, len(data))
	}
	var prefix string
	switch data[0] {
	case 0:
		prefix = "@"
	case 1:
		prefix = "@+"
	case 2:
		prefix = "@@"
	default:
		return "", fmt.Errorf("%w: endpoint type byte %d, want 0/1/2", ErrDecode, data[0])
	}

	idBytes := data[1 : 1+endpointIDSize]
	id := "local"
	if !bytes.Equal(idBytes, make([]byte, endpointIDSize)) {
		if i := bytes.IndexByte(idBytes, 0); i >= 0 {
			idBytes = idBytes[:i]
		}
		if !utf8.Valid(idBytes) {
			return "", fmt.Errorf("%w: endpoint id is not valid UTF-8", ErrDecode)
		}
		id = string(idBytes)
	}

	instance := decodeUint(data[1+endpointIDSize:], e)
	switch instance {
	case 0:
		return prefix + id, nil
	case 0xFFFF:
		return prefix + id + "/*", nil
	}
	return prefix + id + "/" + strconv.FormatUint(instance, 10), nil
}
