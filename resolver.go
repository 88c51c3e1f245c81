// Copyright (c) 2024-2026 unyt.org and contributors
// SPDX-License-Identifier: MIT

package speck

import (
	"bytes"
	"fmt"

	"github.com/rs/zerolog"
)

// Limits bounds resolution driven by schema data. The resolver itself would
// otherwise follow any repeat count or nesting depth the input demands.
type Limits struct {
	// MaxRepeat caps a single field's iteration count. 0 selects the
	// default of 65536.
	MaxRepeat int
	// MaxDepth caps nesting depth across sections, nested fields and
	// repeat bodies. 0 selects the default of 64.
	MaxDepth int
}

const (
	defaultMaxRepeat = 1 << 16
	defaultMaxDepth  = 64
)

func (l Limits) maxRepeat() int {
	if l.MaxRepeat > 0 {
		return l.MaxRepeat
	}
	return defaultMaxRepeat
}

func (l Limits) maxDepth() int {
	if l.MaxDepth > 0 {
		return l.MaxDepth
	}
	return defaultMaxDepth
}

// scope is the per-section accumulator for backward references: an
// append-only arena of every field instance resolved so far, depth-first,
// plus an id index. Ids resolve to the most recently parsed instance, so a
// repeat iteration sees its own values before the previous iteration's.
type scope struct {
	entries []scopeEntry
	ids     map[string]int
}

type scopeEntry struct {
	id    string
	value any
}

func newScope() *scope {
	return &scope{ids: make(map[string]int)}
}

func (sc *scope) record(id string, value any) {
	sc.entries = append(sc.entries, scopeEntry{id: id, value: value})
	if id != "" {
		sc.ids[id] = len(sc.entries) - 1
	}
}

func (sc *scope) value(id string) (any, bool) {
	i, ok := sc.ids[id]
	if !ok {
		return nil, false
	}
	return sc.entries[i].value, true
}

// Condition evaluation. A referenced id that has not been resolved yet makes
// the condition false rather than failing; partially applicable structures
// simply skip the gated field.

func (c Equals) eval(sc *scope) bool {
	v, ok := sc.value(c.ID)
	return ok && valueEqual(v, c.Value)
}

func (c LessThan) eval(sc *scope) bool {
	v, ok := sc.value(c.ID)
	if !ok {
		return false
	}
	f, ok := toFloat64(v)
	return ok && f < c.Value
}

func (c GreaterThan) eval(sc *scope) bool {
	v, ok := sc.value(c.ID)
	if !ok {
		return false
	}
	f, ok := toFloat64(v)
	return ok && f > c.Value
}

func (c Includes) eval(sc *scope) bool {
	v, ok := sc.value(c.ID)
	if !ok {
		return false
	}
	for _, candidate := range c.Values {
		if valueEqual(v, candidate) {
			return true
		}
	}
	return false
}

func (c Not) eval(sc *scope) bool {
	return !c.Cond.eval(sc)
}

func (c And) eval(sc *scope) bool {
	for _, sub := range c.Conds {
		if !sub.eval(sc) {
			return false
		}
	}
	return true
}

func (c Or) eval(sc *scope) bool {
	for _, sub := range c.Conds {
		if sub.eval(sc) {
			return true
		}
	}
	return false
}

// resolver carries one parse or generate call's configuration. It holds no
// mutable state of its own; all accumulation lives in per-section scopes.
type resolver struct {
	reg    *CodecRegistry
	limits Limits
	log    zerolog.Logger
	endian Endianness
}

// resolveStructure walks sections in order, threading one scope per section.
func (r *resolver) resolveStructure(def *StructureDefinition, src byteSource) (*ParsedStructure, error) {
	out := &ParsedStructure{Name: def.Name}
	for i := range def.Sections {
		sec := &def.Sections[i]
		r.log.Debug().Str("structure", def.Name).Str("section", sec.Name).Msg("resolving section")
		sc := newScope()
		path := fieldPath{sec.Name}
		parsed := ParsedSection{Name: sec.Name, Omit: sec.Omit}
		for j := range sec.Fields {
			instances, err := r.resolveField(&sec.Fields[j], src, sc, path, 1)
			if err != nil {
				return nil, fmt.Errorf("section %q: %w", sec.Name, err)
			}
			parsed.Fields = append(parsed.Fields, instances...)
		}
		out.Sections = append(out.Sections, parsed)
	}
	return out, nil
}

// resolveField resolves one field definition into zero or more parsed
// instances: condition gate, repeat resolution, then one instance per
// iteration with assertions applied as each value lands.
func (r *resolver) resolveField(f *FieldDefinition, src byteSource, sc *scope, parent fieldPath, depth int) ([]ParsedField, error) {
	if depth > r.limits.maxDepth() {
		return nil, fmt.Errorf("%w: nesting depth exceeds limit %d", ErrSchema, r.limits.maxDepth())
	}
	if f.If != nil && !f.If.eval(sc) {
		return nil, nil
	}

	path := parent.push(pathElem(f))

	count := 1
	if f.Repeat != nil {
		n, err := r.repeatCount(f.Repeat, sc, path)
		if err != nil {
			return nil, err
		}
		count = n
		r.log.Debug().Str("field", path.String()).Int("count", count).Msg("repeat expansion")
	}

	var out []ParsedField
	for i := 0; i < count; i++ {
		pf, err := r.resolveOne(f, src, sc, path, depth)
		if err != nil {
			return nil, err
		}
		if f.Assert != nil && !valueEqual(pf.Value, f.Assert.Is) {
			return nil, fmt.Errorf("%w: field %q decoded %v, expected %v",
				ErrAssertionFailed, path, pf.Value, f.Assert.Is)
		}
		out = append(out, pf)
	}
	return out, nil
}

func (r *resolver) repeatCount(rep *Repeat, sc *scope, path fieldPath) (int, error) {
	if rep.FieldID == "" {
		if rep.Count < 0 {
			return 0, fmt.Errorf("%w: field %q repeat count %d is negative", ErrSchema, path, rep.Count)
		}
		if rep.Count > r.limits.maxRepeat() {
			return 0, fmt.Errorf("%w: field %q repeat count %d exceeds limit %d",
				ErrSchema, path, rep.Count, r.limits.maxRepeat())
		}
		return rep.Count, nil
	}
	v, ok := sc.value(rep.FieldID)
	if !ok {
		return 0, fmt.Errorf("%w: repeat count id %q for field %q", ErrMissingReference, rep.FieldID, path)
	}
	n, ok := toInt(v)
	if !ok {
		return 0, fmt.Errorf("%w: repeat count id %q for field %q holds %v, not an integer",
			ErrTypeMismatch, rep.FieldID, path, v)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: repeat count id %q for field %q resolved to %d",
			ErrTypeMismatch, rep.FieldID, path, n)
	}
	if n > r.limits.maxRepeat() {
		return 0, fmt.Errorf("%w: field %q repeat count %d exceeds limit %d",
			ErrSchema, path, n, r.limits.maxRepeat())
	}
	return n, nil
}

// resolveOne builds a single instance. Nested containers peek their span and
// let the children consume; leaf and bitmasked fields consume directly.
func (r *resolver) resolveOne(f *FieldDefinition, src byteSource, sc *scope, path fieldPath, depth int) (ParsedField, error) {
	pf := ParsedField{Kind: f.Kind, ID: f.ID, Name: f.Name, Omit: f.Omit}

	switch f.Kind {
	case KindNested:
		if f.Size > 0 {
			raw, err := src.peekBytes(f.Size, path)
			if err != nil {
				return pf, err
			}
			pf.Raw = bytes.Clone(raw)
		}
		sc.record(f.ID, nil)
		for i := range f.Children {
			instances, err := r.resolveField(&f.Children[i], src, sc, path, depth+1)
			if err != nil {
				return pf, err
			}
			pf.Children = append(pf.Children, instances...)
		}
		// The children perform the actual consumption; once they are in,
		// their concatenated captures are the container's span in both
		// operating modes, so the capture follows them rather than the
		// peek. The peek above still validates the declared span.
		if consumed := flattenFields(nil, pf.Children); len(consumed) > 0 {
			pf.Raw = consumed
		}
		return pf, nil

	case KindBitMasked:
		raw, err := src.readBytes(f.Size, path)
		if err != nil {
			return pf, err
		}
		pf.Raw = bytes.Clone(raw)
		br := newBitReader(pf.Raw)
		for _, m := range f.Masks {
			child, err := r.resolveMask(m, br, path)
			if err != nil {
				return pf, err
			}
			sc.record(child.ID, child.Value)
			pf.Children = append(pf.Children, child)
		}
		sc.record(f.ID, nil)
		return pf, nil

	case KindLeaf:
		raw, err := src.readBytes(f.Size, path)
		if err != nil {
			return pf, err
		}
		pf.Raw = bytes.Clone(raw)
		if f.Parser != nil {
			v, err := decodeValue(f.Parser, pf.Raw, r.endian, r.reg)
			if err != nil {
				return pf, fmt.Errorf("field %q: %w", path, err)
			}
			pf.Value = v
		}
		sc.record(f.ID, pf.Value)
		return pf, nil
	}
	return pf, fmt.Errorf("%w: field %q has unknown kind %d", ErrSchema, path, f.Kind)
}

func (r *resolver) resolveMask(m BitMaskDefinition, br *bitReader, parent fieldPath) (ParsedField, error) {
	length := m.Length
	if length == 0 {
		length = 1
	}
	path := parent.push(maskElem(m))
	bits, err := br.readBits(length)
	if err != nil {
		return ParsedField{}, fmt.Errorf("mask %q: %w", path, err)
	}
	child := ParsedField{Kind: KindLeaf, ID: m.ID, Name: m.Name, Raw: bits}
	if m.Parser != nil {
		v, err := decodeValue(m.Parser, bits, r.endian, r.reg)
		if err != nil {
			return ParsedField{}, fmt.Errorf("mask %q: %w", path, err)
		}
		child.Value = v
	} else {
		child.Value = bitString(bits, length)
	}
	return child, nil
}

func pathElem(f *FieldDefinition) string {
	if f.Name != "" {
		return f.Name
	}
	if f.ID != "" {
		return f.ID
	}
	return f.Kind.String()
}

func maskElem(m BitMaskDefinition) string {
	if m.Name != "" {
		return m.Name
	}
	return m.ID
}
