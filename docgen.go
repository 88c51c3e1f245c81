// Copyright (c) 2024-2026 unyt.org and contributors
// SPDX-License-Identifier: MIT

package speck

import (
	"fmt"
	"strconv"
	"strings"
)

// DocTable renders a structure definition as markdown tables, one per
// section. It reads only the schema; no byte data is involved, so the output
// is a pure function of the definition.
func DocTable(def *StructureDefinition) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\nEndianness: %s\n", def.Name, def.Endianness.ByteOrderName())
	for i := range def.Sections {
		sec := &def.Sections[i]
		fmt.Fprintf(&sb, "\n## %s\n\n", sec.Name)
		sb.WriteString("| Field | Type | Size | Repeat | Condition |\n")
		sb.WriteString("|---|---|---|---|---|\n")
		writeFieldRows(&sb, sec.Fields, "")
	}
	return sb.String()
}

// ByteOrderName spells the effective order, including the implicit default.
func (e Endianness) ByteOrderName() string {
	if e == BigEndian {
		return "big"
	}
	return "little"
}

func writeFieldRows(sb *strings.Builder, fields []FieldDefinition, prefix string) {
	for i := range fields {
		f := &fields[i]
		label := prefix + pathElem(f)
		fmt.Fprintf(sb, "| %s | %s | %s | %s | %s |\n",
			label, fieldType(f), fieldSize(f), repeatLabel(f.Repeat), condLabel(f.If))
		switch f.Kind {
		case KindNested:
			writeFieldRows(sb, f.Children, label+".")
		case KindBitMasked:
			for _, m := range f.Masks {
				length := m.Length
				if length == 0 {
					length = 1
				}
				fmt.Fprintf(sb, "| %s.%s | %s | %d bit(s) |  |  |\n",
					label, maskElem(m), maskType(m), length)
			}
		case KindLeaf:
		}
	}
}

func fieldType(f *FieldDefinition) string {
	switch f.Kind {
	case KindNested:
		return "nested"
	case KindBitMasked:
		return "bitmask"
	case KindLeaf:
		if f.Parser == nil {
			return "raw"
		}
		if f.Parser.Type == TypeCustom {
			return "custom:" + f.Parser.Custom
		}
		return string(f.Parser.Type)
	}
	return "unknown"
}

func maskType(m BitMaskDefinition) string {
	if m.Parser == nil {
		return "bits"
	}
	if m.Parser.Type == TypeCustom {
		return "custom:" + m.Parser.Custom
	}
	return string(m.Parser.Type)
}

func fieldSize(f *FieldDefinition) string {
	if f.Kind == KindNested && f.Size == 0 {
		return ""
	}
	return strconv.Itoa(f.Size)
}

func repeatLabel(r *Repeat) string {
	switch {
	case r == nil:
		return ""
	case r.FieldID != "":
		return "× " + r.FieldID
	}
	return "× " + strconv.Itoa(r.Count)
}

// condLabel renders a condition expression for documentation.
func condLabel(c Condition) string {
	switch t := c.(type) {
	case nil:
		return ""
	case Equals:
		return fmt.Sprintf("%s == %v", t.ID, t.Value)
	case LessThan:
		return fmt.Sprintf("%s < %v", t.ID, t.Value)
	case GreaterThan:
		return fmt.Sprintf("%s > %v", t.ID, t.Value)
	case Includes:
		parts := make([]string, len(t.Values))
		for i, v := range t.Values {
			parts[i] = fmt.Sprintf("%v", v)
		}
		return fmt.Sprintf("%s in [%s]", t.ID, strings.Join(parts, ", "))
	case Not:
		return "not (" + condLabel(t.Cond) + ")"
	case And:
		return joinConds(t.Conds, " and ")
	case Or:
		return joinConds(t.Conds, " or ")
	}
	return "?"
}

func joinConds(conds []Condition, sep string) string {
	parts := make([]string, len(conds))
	for i, c := range conds {
		parts[i] = "(" + condLabel(c) + ")"
	}
	return strings.Join(parts, sep)
}
