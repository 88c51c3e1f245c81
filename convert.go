// Copyright (c) 2024-2026 unyt.org and contributors
// SPDX-License-Identifier: MIT

package speck

import "reflect"

// toFloat64 coerces the numeric types produced by decoding and by YAML/JSON
// loading into a float64.
func toFloat64(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	}
	return 0, false
}

// toInt coerces v to an int, requiring an integral value.
func toInt(v any) (int, bool) {
	f, ok := toFloat64(v)
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

// valueEqual compares decoded values against schema literals. Numeric values
// compare by magnitude regardless of Go type; everything else compares
// structurally.
func valueEqual(a, b any) bool {
	if af, ok := toFloat64(a); ok {
		bf, ok := toFloat64(b)
		return ok && af == bf
	}
	if _, ok := toFloat64(b); ok {
		return false
	}
	return reflect.DeepEqual(a, b)
}
