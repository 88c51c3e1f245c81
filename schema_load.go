// Copyright (c) 2024-2026 unyt.org and contributors
// SPDX-License-Identifier: MIT

package speck

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadDefinition parses a structure definition document. YAML is a superset
// of JSON, so both serializations go through the same path. The loader walks
// the node tree instead of an unmarshalled map: enum mappings are
// first-match-wins, so their document order has to survive loading.
func LoadDefinition(data []byte) (*StructureDefinition, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchema, err)
	}
	node := docRoot(&root)
	if node == nil || node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: document root is not a mapping", ErrSchema)
	}

	def := &StructureDefinition{Endianness: LittleEndian}
	err := eachEntry(node, func(key string, val *yaml.Node) error {
		switch key {
		case "name":
			return val.Decode(&def.Name)
		case "endianness":
			var e string
			if err := val.Decode(&e); err != nil {
				return err
			}
			switch Endianness(e) {
			case LittleEndian, BigEndian:
				def.Endianness = Endianness(e)
			default:
				return fmt.Errorf("%w: endianness %q, want little or big", ErrSchema, e)
			}
			return nil
		case "sections":
			if val.Kind != yaml.SequenceNode {
				return fmt.Errorf("%w: sections is not a list", ErrSchema)
			}
			for _, secNode := range val.Content {
				sec, err := loadSection(secNode)
				if err != nil {
					return err
				}
				def.Sections = append(def.Sections, sec)
			}
			return nil
		}
		return fmt.Errorf("%w: unknown structure attribute %q", ErrSchema, key)
	})
	if err != nil {
		return nil, err
	}
	if err := validateSections(def.Sections); err != nil {
		return nil, err
	}
	return def, nil
}

// LoadDefinitionFile reads and parses a definition document from disk.
func LoadDefinitionFile(path string) (*StructureDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading definition: %w", err)
	}
	def, err := LoadDefinition(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

func loadSection(node *yaml.Node) (SectionDefinition, error) {
	var sec SectionDefinition
	if node.Kind != yaml.MappingNode {
		return sec, fmt.Errorf("%w: section is not a mapping", ErrSchema)
	}
	err := eachEntry(node, func(key string, val *yaml.Node) error {
		switch key {
		case "name":
			return val.Decode(&sec.Name)
		case "omit":
			return val.Decode(&sec.Omit)
		case "fields":
			fields, err := loadFields(val)
			if err != nil {
				return err
			}
			sec.Fields = fields
			return nil
		}
		return fmt.Errorf("%w: unknown section attribute %q", ErrSchema, key)
	})
	if err != nil {
		return sec, err
	}
	if sec.Name == "" {
		return sec, fmt.Errorf("%w: section without a name", ErrSchema)
	}
	return sec, nil
}

func loadFields(node *yaml.Node) ([]FieldDefinition, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: fields is not a list", ErrSchema)
	}
	fields := make([]FieldDefinition, 0, len(node.Content))
	for _, fieldNode := range node.Content {
		f, err := loadField(fieldNode)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// loadField is the one place that probes a field's shape. The presence of
// "fields" or "bits" decides the Kind; from here on everything dispatches on
// the closed union.
func loadField(node *yaml.Node) (FieldDefinition, error) {
	var f FieldDefinition
	if node.Kind != yaml.MappingNode {
		return f, fmt.Errorf("%w: field is not a mapping", ErrSchema)
	}

	var hasChildren, hasMasks, hasParser bool
	err := eachEntry(node, func(key string, val *yaml.Node) error {
		switch key {
		case "id":
			return val.Decode(&f.ID)
		case "name":
			return val.Decode(&f.Name)
		case "size":
			if err := val.Decode(&f.Size); err != nil {
				return err
			}
			if f.Size < 0 {
				return fmt.Errorf("%w: field size %d is negative", ErrSchema, f.Size)
			}
			return nil
		case "omit":
			return val.Decode(&f.Omit)
		case "repeat":
			rep, err := loadRepeat(val)
			if err != nil {
				return err
			}
			f.Repeat = rep
			return nil
		case "if":
			cond, err := loadCondition(val)
			if err != nil {
				return err
			}
			f.If = cond
			return nil
		case "assert":
			a, err := loadAssert(val)
			if err != nil {
				return err
			}
			f.Assert = a
			return nil
		case "fields":
			children, err := loadFields(val)
			if err != nil {
				return err
			}
			f.Children = children
			hasChildren = true
			return nil
		case "bits":
			masks, err := loadMasks(val)
			if err != nil {
				return err
			}
			f.Masks = masks
			hasMasks = true
			return nil
		case "parser":
			p, err := loadParser(val)
			if err != nil {
				return err
			}
			f.Parser = p
			hasParser = true
			return nil
		}
		return fmt.Errorf("%w: unknown field attribute %q", ErrSchema, key)
	})
	if err != nil {
		return f, err
	}

	switch {
	case hasChildren && hasMasks:
		return f, fmt.Errorf("%w: field %q declares both fields and bits", ErrSchema, f.Name)
	case hasChildren:
		if hasParser {
			return f, fmt.Errorf("%w: nested field %q cannot carry a parser", ErrSchema, f.Name)
		}
		f.Kind = KindNested
	case hasMasks:
		if hasParser {
			return f, fmt.Errorf("%w: bitmasked field %q cannot carry a parser", ErrSchema, f.Name)
		}
		if f.Size <= 0 {
			return f, fmt.Errorf("%w: bitmasked field %q needs a positive size", ErrSchema, f.Name)
		}
		f.Kind = KindBitMasked
	default:
		f.Kind = KindLeaf
	}
	return f, nil
}

func loadMasks(node *yaml.Node) ([]BitMaskDefinition, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: bits is not a list", ErrSchema)
	}
	masks := make([]BitMaskDefinition, 0, len(node.Content))
	for _, maskNode := range node.Content {
		var m BitMaskDefinition
		if maskNode.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%w: bitmask entry is not a mapping", ErrSchema)
		}
		err := eachEntry(maskNode, func(key string, val *yaml.Node) error {
			switch key {
			case "id":
				return val.Decode(&m.ID)
			case "name":
				return val.Decode(&m.Name)
			case "length":
				if err := val.Decode(&m.Length); err != nil {
					return err
				}
				if m.Length <= 0 {
					return fmt.Errorf("%w: bitmask length %d is not positive", ErrSchema, m.Length)
				}
				return nil
			case "parser":
				p, err := loadParser(val)
				if err != nil {
					return err
				}
				m.Parser = p
				return nil
			}
			return fmt.Errorf("%w: unknown bitmask attribute %q", ErrSchema, key)
		})
		if err != nil {
			return nil, err
		}
		masks = append(masks, m)
	}
	return masks, nil
}

// loadRepeat accepts a literal count or an id reference string.
func loadRepeat(node *yaml.Node) (*Repeat, error) {
	if node.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("%w: repeat must be an integer or field id", ErrSchema)
	}
	var n int
	if err := node.Decode(&n); err == nil {
		if n < 0 {
			return nil, fmt.Errorf("%w: repeat count %d is negative", ErrSchema, n)
		}
		return &Repeat{Count: n}, nil
	}
	var id string
	if err := node.Decode(&id); err != nil || id == "" {
		return nil, fmt.Errorf("%w: repeat must be an integer or field id", ErrSchema)
	}
	return &Repeat{FieldID: id}, nil
}

func loadAssert(node *yaml.Node) (*Assertion, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: assert is not a mapping", ErrSchema)
	}
	a := &Assertion{}
	var hasIs bool
	err := eachEntry(node, func(key string, val *yaml.Node) error {
		if key != "is" {
			return fmt.Errorf("%w: unknown assert attribute %q", ErrSchema, key)
		}
		hasIs = true
		return val.Decode(&a.Is)
	})
	if err != nil {
		return nil, err
	}
	if !hasIs {
		return nil, fmt.Errorf("%w: assert without is", ErrSchema)
	}
	return a, nil
}

// loadParser accepts the scalar shorthand ("uint", "hex", ...) or the full
// mapping form with enum mappings and custom codec names.
func loadParser(node *yaml.Node) (*ValueParser, error) {
	if node.Kind == yaml.ScalarNode {
		var t string
		if err := node.Decode(&t); err != nil {
			return nil, fmt.Errorf("%w: parser is not a type name", ErrSchema)
		}
		return parserOfType(ValueType(t))
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: parser must be a type name or mapping", ErrSchema)
	}

	p := &ValueParser{}
	err := eachEntry(node, func(key string, val *yaml.Node) error {
		switch key {
		case "type":
			var t string
			if err := val.Decode(&t); err != nil {
				return err
			}
			p.Type = ValueType(t)
			return nil
		case "mapping":
			if val.Kind != yaml.MappingNode {
				return fmt.Errorf("%w: enum mapping is not a mapping", ErrSchema)
			}
			return eachEntry(val, func(enumKey string, enumVal *yaml.Node) error {
				var v any
				if err := enumVal.Decode(&v); err != nil {
					return err
				}
				if _, err := parseEnumKey(enumKey); err != nil {
					return err
				}
				p.Enum = append(p.Enum, EnumEntry{Key: enumKey, Value: v})
				return nil
			})
		case "name":
			return val.Decode(&p.Custom)
		}
		return fmt.Errorf("%w: unknown parser attribute %q", ErrSchema, key)
	})
	if err != nil {
		return nil, err
	}

	if _, err := parserOfType(p.Type); err != nil {
		return nil, err
	}
	if p.Type == TypeEnum && len(p.Enum) == 0 {
		return nil, fmt.Errorf("%w: enum parser without mapping", ErrSchema)
	}
	if p.Type == TypeCustom && p.Custom == "" {
		return nil, fmt.Errorf("%w: custom parser without name", ErrSchema)
	}
	if p.Type != TypeEnum && len(p.Enum) > 0 {
		return nil, fmt.Errorf("%w: mapping only applies to enum parsers", ErrSchema)
	}
	if p.Type != TypeCustom && p.Custom != "" {
		return nil, fmt.Errorf("%w: name only applies to custom parsers", ErrSchema)
	}
	return p, nil
}

func parserOfType(t ValueType) (*ValueParser, error) {
	switch t {
	case TypeBoolean, TypeInt, TypeUint, TypeFloat, TypeString,
		TypeEnum, TypeEndpoint, TypePointer, TypeHex, TypeArray, TypeCustom:
		return &ValueParser{Type: t}, nil
	}
	return nil, fmt.Errorf("%w: unknown parser type %q", ErrSchema, t)
}

// loadCondition builds the recursive boolean expression. Exactly one
// operator key per mapping.
func loadCondition(node *yaml.Node) (Condition, error) {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return nil, fmt.Errorf("%w: condition must be a single-operator mapping", ErrSchema)
	}
	op := node.Content[0].Value
	val := node.Content[1]

	switch op {
	case "equals":
		id, v, err := loadIDValue(val)
		if err != nil {
			return nil, err
		}
		return Equals{ID: id, Value: v}, nil
	case "lessThan", "greaterThan":
		id, v, err := loadIDValue(val)
		if err != nil {
			return nil, err
		}
		n, ok := toFloat64(v)
		if !ok {
			return nil, fmt.Errorf("%w: %s value %v is not a number", ErrSchema, op, v)
		}
		if op == "lessThan" {
			return LessThan{ID: id, Value: n}, nil
		}
		return GreaterThan{ID: id, Value: n}, nil
	case "includes":
		return loadIncludes(val)
	case "not":
		inner, err := loadCondition(val)
		if err != nil {
			return nil, err
		}
		return Not{Cond: inner}, nil
	case "and", "or":
		if val.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("%w: %s takes a list of conditions", ErrSchema, op)
		}
		conds := make([]Condition, 0, len(val.Content))
		for _, sub := range val.Content {
			c, err := loadCondition(sub)
			if err != nil {
				return nil, err
			}
			conds = append(conds, c)
		}
		if op == "and" {
			return And{Conds: conds}, nil
		}
		return Or{Conds: conds}, nil
	}
	return nil, fmt.Errorf("%w: unknown condition %q", ErrSchema, op)
}

func loadIDValue(node *yaml.Node) (string, any, error) {
	if node.Kind != yaml.MappingNode {
		return "", nil, fmt.Errorf("%w: condition operand is not a mapping", ErrSchema)
	}
	var id string
	var value any
	var hasValue bool
	err := eachEntry(node, func(key string, val *yaml.Node) error {
		switch key {
		case "id":
			return val.Decode(&id)
		case "value":
			hasValue = true
			return val.Decode(&value)
		}
		return fmt.Errorf("%w: unknown condition attribute %q", ErrSchema, key)
	})
	if err != nil {
		return "", nil, err
	}
	if id == "" || !hasValue {
		return "", nil, fmt.Errorf("%w: condition needs id and value", ErrSchema)
	}
	return id, value, nil
}

func loadIncludes(node *yaml.Node) (Condition, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: includes operand is not a mapping", ErrSchema)
	}
	var id string
	var values []any
	err := eachEntry(node, func(key string, val *yaml.Node) error {
		switch key {
		case "id":
			return val.Decode(&id)
		case "values":
			if val.Kind != yaml.SequenceNode {
				return fmt.Errorf("%w: includes values is not a list", ErrSchema)
			}
			return val.Decode(&values)
		}
		return fmt.Errorf("%w: unknown condition attribute %q", ErrSchema, key)
	})
	if err != nil {
		return nil, err
	}
	if id == "" || values == nil {
		return nil, fmt.Errorf("%w: includes needs id and values", ErrSchema)
	}
	return Includes{ID: id, Values: values}, nil
}

// validateSections enforces the structure-level invariants the loader can see
// without data: unique section names and leaf sizes.
func validateSections(sections []SectionDefinition) error {
	seen := make(map[string]bool, len(sections))
	for _, sec := range sections {
		if seen[sec.Name] {
			return fmt.Errorf("%w: duplicate section name %q", ErrSchema, sec.Name)
		}
		seen[sec.Name] = true
		if err := validateFields(sec.Fields); err != nil {
			return fmt.Errorf("section %q: %w", sec.Name, err)
		}
	}
	return nil
}

func validateFields(fields []FieldDefinition) error {
	for i := range fields {
		f := &fields[i]
		switch f.Kind {
		case KindLeaf:
			if f.Size <= 0 {
				return fmt.Errorf("%w: leaf field %q needs a positive size", ErrSchema, pathElem(f))
			}
		case KindBitMasked:
			total := 0
			for _, m := range f.Masks {
				length := m.Length
				if length == 0 {
					length = 1
				}
				total += length
			}
			if total > f.Size*8 {
				return fmt.Errorf("%w: bitmasked field %q declares %d bits in %d bytes",
					ErrSchema, pathElem(f), total, f.Size)
			}
		case KindNested:
			if err := validateFields(f.Children); err != nil {
				return err
			}
		}
	}
	return nil
}

func docRoot(n *yaml.Node) *yaml.Node {
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		return n.Content[0]
	}
	return n
}

// eachEntry visits a mapping node's key/value pairs in document order.
func eachEntry(node *yaml.Node, fn func(key string, val *yaml.Node) error) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if err := fn(node.Content[i].Value, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}
