// Copyright (c) 2024-2026 unyt.org and contributors
// SPDX-License-Identifier: MIT

package speck

import "fmt"

// CodecFunc decodes a field's raw bytes into a typed value. The structure's
// endianness is passed through so multi-byte custom formats can honor it.
type CodecFunc func(data []byte, e Endianness) (any, error)

// CodecRegistry holds named custom codecs referenced by schemas through
// parser type "custom". Each Interpreter owns one registry; there is no
// ambient global. Registries are not safe for concurrent mutation — callers
// that register from multiple goroutines must serialize externally, the same
// contract as a plain map.
type CodecRegistry struct {
	codecs map[string]CodecFunc
}

// NewCodecRegistry returns an empty registry.
func NewCodecRegistry() *CodecRegistry {
	return &CodecRegistry{codecs: make(map[string]CodecFunc)}
}

// Register installs fn under name, replacing any previous codec of that name.
func (r *CodecRegistry) Register(name string, fn CodecFunc) error {
	if name == "" {
		return fmt.Errorf("%w: codec name is empty", ErrSchema)
	}
	if fn == nil {
		return fmt.Errorf("%w: codec %q has no function", ErrSchema, name)
	}
	r.codecs[name] = fn
	return nil
}

// Unregister removes the named codec. Removing an unknown name is a no-op.
func (r *CodecRegistry) Unregister(name string) {
	delete(r.codecs, name)
}

func (r *CodecRegistry) lookup(name string) (CodecFunc, bool) {
	fn, ok := r.codecs[name]
	return fn, ok
}
