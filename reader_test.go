// Copyright (c) 2024-2026 unyt.org and contributors
// SPDX-License-Identifier: MIT

package speck

import (
	"bytes"
	"errors"
	"testing"
)

func TestBufferSource(t *testing.T) {
	src := newBufferSource([]byte{1, 2, 3, 4})
	path := fieldPath{"s", "f"}

	peeked, err := src.peekBytes(2, path)
	if err != nil {
		t.Fatalf("peekBytes: %v", err)
	}
	if !bytes.Equal(peeked, []byte{1, 2}) {
		t.Errorf("peek = %v", peeked)
	}

	// Peek did not consume.
	read, err := src.readBytes(3, path)
	if err != nil {
		t.Fatalf("readBytes: %v", err)
	}
	if !bytes.Equal(read, []byte{1, 2, 3}) {
		t.Errorf("read = %v", read)
	}

	if _, err := src.readBytes(2, path); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("overread error = %v, want ErrOutOfRange", err)
	}
	// The failed read consumed nothing.
	if rest, err := src.readBytes(1, path); err != nil || !bytes.Equal(rest, []byte{4}) {
		t.Errorf("tail read = %v, %v", rest, err)
	}
}

func TestDefaultsSourceLookup(t *testing.T) {
	src := newDefaultsSource(Defaults{
		"header": map[string]any{
			"magic": []byte{0xEB, 0x25, 0x99},
		},
	})

	got, err := src.readBytes(2, fieldPath{"header", "magic"})
	if err != nil {
		t.Fatalf("readBytes: %v", err)
	}
	if !bytes.Equal(got, []byte{0xEB, 0x25}) {
		t.Errorf("read = %x, want eb25", got)
	}

	// Absent paths zero-fill.
	got, err = src.readBytes(3, fieldPath{"header", "other"})
	if err != nil {
		t.Fatalf("readBytes absent: %v", err)
	}
	if !bytes.Equal(got, make([]byte, 3)) {
		t.Errorf("absent read = %x, want zeros", got)
	}

	// Reads are position-independent: the same path serves again.
	again, err := src.readBytes(3, fieldPath{"header", "magic"})
	if err != nil {
		t.Fatalf("readBytes again: %v", err)
	}
	if !bytes.Equal(again, []byte{0xEB, 0x25, 0x99}) {
		t.Errorf("second read = %x", again)
	}
}

func TestDefaultsSourceErrors(t *testing.T) {
	src := newDefaultsSource(Defaults{
		"s": map[string]any{
			"short": []byte{1},
			"tree":  map[string]any{"x": []byte{1}},
			"junk":  []any{"a", "b"},
		},
	})

	if _, err := src.readBytes(2, fieldPath{"s", "short"}); !errors.Is(err, ErrInvalidDefaults) {
		t.Errorf("short entry error = %v, want ErrInvalidDefaults", err)
	}
	if _, err := src.readBytes(1, fieldPath{"s", "tree"}); !errors.Is(err, ErrInvalidDefaults) {
		t.Errorf("tree entry error = %v, want ErrInvalidDefaults", err)
	}
	if _, err := src.readBytes(1, fieldPath{"s", "junk"}); !errors.Is(err, ErrInvalidDefaults) {
		t.Errorf("junk entry error = %v, want ErrInvalidDefaults", err)
	}

	// A container peek over an inner tree node is answered with zeros.
	b, err := src.peekBytes(2, fieldPath{"s", "tree"})
	if err != nil {
		t.Fatalf("peekBytes tree: %v", err)
	}
	if !bytes.Equal(b, []byte{0, 0}) {
		t.Errorf("tree peek = %x, want zeros", b)
	}
}

func TestFieldPath(t *testing.T) {
	p := fieldPath{"a"}
	q := p.push("b")
	if q.String() != "a.b" {
		t.Errorf("path = %q, want a.b", q.String())
	}
	// push copies; the parent path is untouched.
	_ = p.push("c")
	if q.String() != "a.b" {
		t.Errorf("path mutated to %q", q.String())
	}
}
