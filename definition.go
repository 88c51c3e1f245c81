// Copyright (c) 2024-2026 unyt.org and contributors
// SPDX-License-Identifier: MIT

package speck

import "encoding/binary"

// Endianness selects the byte order for multi-byte values in a structure.
type Endianness string

const (
	LittleEndian Endianness = "little"
	BigEndian    Endianness = "big"
)

// ByteOrder returns the encoding/binary order for e. Unset defaults to little.
func (e Endianness) ByteOrder() binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// FieldKind discriminates the three field shapes. Every switch over a
// FieldKind in this package handles all three cases.
type FieldKind int

const (
	KindLeaf FieldKind = iota
	KindNested
	KindBitMasked
)

func (k FieldKind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindNested:
		return "nested"
	case KindBitMasked:
		return "bitmasked"
	}
	return "unknown"
}

// StructureDefinition is the root of a schema: a named, ordered list of
// sections with one structure-wide byte order. Definitions are externally
// authored, loaded once and treated as read-only.
type StructureDefinition struct {
	Name       string
	Endianness Endianness
	Sections   []SectionDefinition
}

// SectionDefinition groups ordered fields under a name unique within the
// structure. Id references never cross a section boundary.
type SectionDefinition struct {
	Name string
	// Omit excludes the whole section from packed projections; its fields
	// are still parsed and still consume bytes.
	Omit   bool
	Fields []FieldDefinition
}

// FieldDefinition describes one field. Kind decides which of Children, Masks
// or Parser is meaningful; the loader guarantees the other two are empty.
type FieldDefinition struct {
	Kind FieldKind

	// Optional id for backward references from repeat counts and conditions.
	ID   string
	Name string
	// Size is the byte span the field occupies per iteration.
	Size int

	Repeat *Repeat
	If     Condition
	// Omit excludes the field from packed projections. It is still parsed
	// and still consumes bytes.
	Omit   bool
	Assert *Assertion

	Children []FieldDefinition   // KindNested
	Masks    []BitMaskDefinition // KindBitMasked
	Parser   *ValueParser        // KindLeaf, optional
}

// Repeat is either a literal iteration count or a reference to an
// earlier-parsed numeric field in the same section.
type Repeat struct {
	Count   int
	FieldID string
}

// Assertion compares a field's decoded value against an expected literal
// after resolution. A mismatch is fatal.
type Assertion struct {
	Is any
}

// BitMaskDefinition is one sub-byte value inside a bitmasked field. Bits are
// consumed MSB-first in declaration order.
type BitMaskDefinition struct {
	ID     string
	Name   string
	Length int // bit count, default 1
	Parser *ValueParser
}

// ValueType enumerates the builtin scalar decoders.
type ValueType string

const (
	TypeBoolean  ValueType = "boolean"
	TypeInt      ValueType = "int"
	TypeUint     ValueType = "uint"
	TypeFloat    ValueType = "float"
	TypeString   ValueType = "string"
	TypeEnum     ValueType = "enum"
	TypeEndpoint ValueType = "endpoint"
	TypePointer  ValueType = "pointer"
	TypeHex      ValueType = "hex"
	TypeArray    ValueType = "array"
	TypeCustom   ValueType = "custom"
)

// ValueParser selects how a field's raw bytes become a typed value.
type ValueParser struct {
	Type ValueType
	// Enum holds the mapping for TypeEnum in document order; the first
	// entry whose key matches wins.
	Enum []EnumEntry
	// Custom names a registered codec for TypeCustom.
	Custom string
}

// EnumEntry is one enum mapping entry. Keys are textual integers in decimal,
// 0x hex or 0b binary form.
type EnumEntry struct {
	Key   string
	Value any
}

// Condition is a boolean expression over fields already resolved earlier in
// the same section. A condition that references an id not yet resolvable
// evaluates to false rather than failing, so partially applicable structures
// degrade to skipped fields.
type Condition interface {
	eval(sc *scope) bool
}

// Equals is true when the referenced field's value equals Value.
type Equals struct {
	ID    string
	Value any
}

// LessThan is true when the referenced field's numeric value is < Value.
type LessThan struct {
	ID    string
	Value float64
}

// GreaterThan is true when the referenced field's numeric value is > Value.
type GreaterThan struct {
	ID    string
	Value float64
}

// Includes is true when the referenced field's scalar value is a member of
// Values. This is membership, not list equality: the field contributes one
// value and Values is the candidate set.
type Includes struct {
	ID     string
	Values []any
}

// Not negates its inner condition.
type Not struct {
	Cond Condition
}

// And is true when every member condition is true. An empty list is true.
type And struct {
	Conds []Condition
}

// Or is true when at least one member condition is true.
type Or struct {
	Conds []Condition
}

// ParsedField is one resolved field instance. Repeated fields expand into one
// ParsedField per iteration, in place. Leaf and bitmask values land in Value;
// nested and bitmasked fields carry Children.
type ParsedField struct {
	Kind FieldKind
	ID   string
	Name string
	// Raw is the captured byte span: the consumed bytes for leaf and
	// bitmasked fields, a non-consuming peek of the declared span for
	// nested containers.
	Raw      []byte
	Value    any
	Children []ParsedField
	Omit     bool
}

// ParsedSection mirrors one SectionDefinition with repeats expanded.
type ParsedSection struct {
	Name   string
	Omit   bool
	Fields []ParsedField
}

// ParsedStructure is the result of one parse or generate call. It is built
// fresh per call and owned by the caller.
type ParsedStructure struct {
	Name     string
	Sections []ParsedSection
}

// Section returns the named parsed section, or nil.
func (p *ParsedStructure) Section(name string) *ParsedSection {
	for i := range p.Sections {
		if p.Sections[i].Name == name {
			return &p.Sections[i]
		}
	}
	return nil
}

// Field returns the first parsed field with the given name, or nil.
func (s *ParsedSection) Field(name string) *ParsedField {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}
	return nil
}
