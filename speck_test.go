// Copyright (c) 2024-2026 unyt.org and contributors
// SPDX-License-Identifier: MIT

package speck

import (
	"bytes"
	"errors"
	"testing"
)

func customDef(t *testing.T) *StructureDefinition {
	t.Helper()
	return mustLoad(t, `
name: custom
sections:
  - name: body
    fields:
      - name: Data
        size: 4
        parser: { type: custom, name: double }
`)
}

func TestCustomCodecLifecycle(t *testing.T) {
	def := customDef(t)
	in := New()

	err := in.Registry().Register("double", func(data []byte, e Endianness) (any, error) {
		return len(data) * 2, nil
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	parsed, err := in.Parse(def, []byte{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := parsed.Section("body").Field("Data").Value; got != 8 {
		t.Errorf("custom value = %v, want 8", got)
	}

	in.Registry().Unregister("double")
	if _, err := in.Parse(def, []byte{1, 2, 3, 4}); !errors.Is(err, ErrCodecNotFound) {
		t.Errorf("after unregister error = %v, want ErrCodecNotFound", err)
	}
}

func TestRegistriesAreIsolated(t *testing.T) {
	def := customDef(t)

	a := New()
	if err := a.Registry().Register("double", func(data []byte, e Endianness) (any, error) {
		return len(data) * 2, nil
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	b := New()
	if _, err := b.Parse(def, []byte{1, 2, 3, 4}); !errors.Is(err, ErrCodecNotFound) {
		t.Errorf("foreign interpreter error = %v, want ErrCodecNotFound", err)
	}
}

func TestSharedRegistry(t *testing.T) {
	def := customDef(t)

	reg := NewCodecRegistry()
	if err := reg.Register("double", func(data []byte, e Endianness) (any, error) {
		return len(data) * 2, nil
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	in := New(WithRegistry(reg))
	parsed, err := in.Parse(def, []byte{9, 9, 9, 9})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := parsed.Section("body").Field("Data").Value; got != 8 {
		t.Errorf("custom value = %v, want 8", got)
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	reg := NewCodecRegistry()
	if err := reg.Register("", func(data []byte, e Endianness) (any, error) { return nil, nil }); !errors.Is(err, ErrSchema) {
		t.Errorf("empty name error = %v, want ErrSchema", err)
	}
	if err := reg.Register("x", nil); !errors.Is(err, ErrSchema) {
		t.Errorf("nil func error = %v, want ErrSchema", err)
	}
}

func TestPackageLevelCodecAPI(t *testing.T) {
	def := customDef(t)

	if err := RegisterCodec("double", func(data []byte, e Endianness) (any, error) {
		return len(data) * 2, nil
	}); err != nil {
		t.Fatalf("RegisterCodec: %v", err)
	}
	defer UnregisterCodec("double")

	parsed, err := Parse(def, []byte{0, 0, 0, 0})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := parsed.Section("body").Field("Data").Value; got != 8 {
		t.Errorf("custom value = %v, want 8", got)
	}
}

func TestParseReader(t *testing.T) {
	def := mustLoad(t, `
name: streamed
sections:
  - name: body
    fields:
      - { name: N, size: 1, parser: uint }
`)
	parsed, err := ParseReader(def, bytes.NewReader([]byte{0x11}))
	if err != nil {
		t.Fatalf("ParseReader: %v", err)
	}
	if got := parsed.Section("body").Field("N").Value; got != uint64(0x11) {
		t.Errorf("N = %v, want 17", got)
	}
}
