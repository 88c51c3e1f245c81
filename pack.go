// Copyright (c) 2024-2026 unyt.org and contributors
// SPDX-License-Identifier: MIT

package speck

import (
	"encoding/hex"
	"encoding/json"
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// normalizeKey lowercases a field or section name and collapses every run of
// non-alphanumeric characters into a single underscore.
func normalizeKey(name string) string {
	key := nonAlnum.ReplaceAllString(strings.ToLower(name), "_")
	return strings.Trim(key, "_")
}

// Pack projects a parsed structure into a plain keyed tree suitable for JSON
// serialization. Repeated fields become ordered lists, bitmask children are
// flattened into their parent's entry set, and omit-flagged fields and
// sections disappear even though they consumed bytes during parsing.
func Pack(p *ParsedStructure) map[string]any {
	out := make(map[string]any, len(p.Sections))
	for _, sec := range p.Sections {
		if sec.Omit {
			continue
		}
		out[normalizeKey(sec.Name)] = packFields(sec.Fields)
	}
	return out
}

// PackJSON packs and marshals in one step.
func PackJSON(p *ParsedStructure) ([]byte, error) {
	return json.Marshal(Pack(p))
}

func packFields(fields []ParsedField) map[string]any {
	type slot struct {
		values []any
	}
	order := make([]string, 0, len(fields))
	slots := make(map[string]*slot, len(fields))

	add := func(key string, v any) {
		if key == "" {
			return
		}
		s, ok := slots[key]
		if !ok {
			s = &slot{}
			slots[key] = s
			order = append(order, key)
		}
		s.values = append(s.values, v)
	}

	for i := range fields {
		f := &fields[i]
		if f.Omit {
			continue
		}
		switch f.Kind {
		case KindBitMasked:
			for j := range f.Children {
				m := &f.Children[j]
				add(fieldKey(m), m.Value)
			}
		case KindNested:
			add(fieldKey(f), packFields(f.Children))
		case KindLeaf:
			add(fieldKey(f), packValue(f))
		}
	}

	out := make(map[string]any, len(order))
	for _, key := range order {
		s := slots[key]
		if len(s.values) == 1 {
			out[key] = s.values[0]
			continue
		}
		out[key] = s.values
	}
	return out
}

func fieldKey(f *ParsedField) string {
	if f.Name != "" {
		return normalizeKey(f.Name)
	}
	return normalizeKey(f.ID)
}

// packValue projects one leaf. Parser-less fields carry no typed value, so
// their raw capture is rendered as hex.
func packValue(f *ParsedField) any {
	if f.Value != nil {
		return f.Value
	}
	return hex.EncodeToString(f.Raw)
}
