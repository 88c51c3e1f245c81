// Copyright (c) 2024-2026 unyt.org and contributors
// SPDX-License-Identifier: MIT

package speck

import (
	"fmt"
	"io"
	"strings"
)

// fieldPath identifies a field's position in the structure tree. The path is
// built from section and field names (falling back to ids when a name is
// empty) and addresses entries in a generation defaults tree.
type fieldPath []string

func (p fieldPath) push(elem string) fieldPath {
	next := make(fieldPath, len(p), len(p)+1)
	copy(next, p)
	return append(next, elem)
}

func (p fieldPath) String() string {
	return strings.Join(p, ".")
}

// byteSource feeds the resolver. readBytes consumes n bytes, peekBytes
// returns them without consuming. The path parameter is ignored by real-data
// sources and used for default lookup by the generation source.
type byteSource interface {
	readBytes(n int, path fieldPath) ([]byte, error)
	peekBytes(n int, path fieldPath) ([]byte, error)
}

// bufferSource reads real bytes from an in-memory payload with a single
// advancing cursor.
type bufferSource struct {
	data   []byte
	offset int
}

func newBufferSource(data []byte) *bufferSource {
	return &bufferSource{data: data}
}

func (s *bufferSource) remaining() int {
	return len(s.data) - s.offset
}

func (s *bufferSource) readBytes(n int, path fieldPath) ([]byte, error) {
	b, err := s.peekBytes(n, path)
	if err != nil {
		return nil, err
	}
	s.offset += n
	return b, nil
}

func (s *bufferSource) peekBytes(n int, path fieldPath) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative read of %d bytes at %q", ErrOutOfRange, n, path)
	}
	if s.offset+n > len(s.data) {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d for %q, %d remaining",
			ErrOutOfRange, n, s.offset, path, s.remaining())
	}
	return s.data[s.offset : s.offset+n], nil
}

// Defaults is a nested default-byte tree for generation mode, keyed by
// section and field names. Inner nodes are maps; leaves are flat byte
// sequences ([]byte, or a list of integers in 0-255).
type Defaults map[string]any

// defaultsSource synthesizes bytes instead of consuming them. Every request
// is answered from the defaults tree by path, or zero-filled when the path is
// absent, so read and peek behave identically and no cursor exists.
type defaultsSource struct {
	defaults Defaults
}

func newDefaultsSource(defaults Defaults) *defaultsSource {
	return &defaultsSource{defaults: defaults}
}

func (s *defaultsSource) readBytes(n int, path fieldPath) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative read of %d bytes at %q", ErrOutOfRange, n, path)
	}
	node, ok := lookupDefault(s.defaults, path)
	if !ok {
		return make([]byte, n), nil
	}
	b, ok := defaultBytes(node)
	if !ok {
		return nil, fmt.Errorf("%w: entry at %q is not a flat byte sequence", ErrInvalidDefaults, path)
	}
	if len(b) < n {
		return nil, fmt.Errorf("%w: entry at %q holds %d bytes, field needs %d",
			ErrInvalidDefaults, path, len(b), n)
	}
	return b[:n], nil
}

// peekBytes differs from readBytes in one way: a peek lands on container
// paths, where the defaults entry is legitimately an inner map rather than a
// byte leaf. Those answer with zero fill instead of failing.
func (s *defaultsSource) peekBytes(n int, path fieldPath) ([]byte, error) {
	if node, ok := lookupDefault(s.defaults, path); ok {
		if _, isTree := node.(map[string]any); isTree {
			return make([]byte, n), nil
		}
	}
	return s.readBytes(n, path)
}

func lookupDefault(tree Defaults, path fieldPath) (any, bool) {
	var node any = map[string]any(tree)
	if tree == nil {
		return nil, false
	}
	for _, elem := range path {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		node, ok = m[elem]
		if !ok {
			return nil, false
		}
	}
	return node, true
}

// defaultBytes coerces a defaults leaf into bytes. YAML and JSON loaders hand
// us integer lists rather than []byte, so both are accepted.
func defaultBytes(v any) ([]byte, bool) {
	switch t := v.(type) {
	case []byte:
		return t, true
	case string:
		return []byte(t), true
	case []any:
		b := make([]byte, len(t))
		for i, e := range t {
			n, ok := toInt(e)
			if !ok || n < 0 || n > 255 {
				return nil, false
			}
			b[i] = byte(n)
		}
		return b, true
	}
	return nil, false
}

// readAll buffers an io.Reader into a bufferSource. The resolver needs
// backward peeks, so streaming parse still materializes the payload.
func readAll(r io.Reader) (*bufferSource, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading payload: %w", err)
	}
	return newBufferSource(data), nil
}
