// Copyright (c) 2024-2026 unyt.org and contributors
// SPDX-License-Identifier: MIT

package speck

// FlattenBytes concatenates a parsed structure back into the byte buffer it
// describes: depth-first, in schema order, taking each consuming field's
// captured bytes. Nested containers contribute nothing themselves — their
// capture is a peek over bytes the children own.
func FlattenBytes(p *ParsedStructure) []byte {
	var out []byte
	for _, sec := range p.Sections {
		out = flattenFields(out, sec.Fields)
	}
	return out
}

func flattenFields(out []byte, fields []ParsedField) []byte {
	for i := range fields {
		f := &fields[i]
		if f.Kind == KindNested {
			out = flattenFields(out, f.Children)
			continue
		}
		out = append(out, f.Raw...)
	}
	return out
}
