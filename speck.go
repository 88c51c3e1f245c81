// Copyright (c) 2024-2026 unyt.org and contributors
// SPDX-License-Identifier: MIT

package speck

import (
	"io"

	"github.com/rs/zerolog"
)

// Interpreter binds a codec registry, resolution limits and a logger into a
// reusable parse/generate engine. Interpreters hold no per-call state; one
// instance serves any number of sequential calls.
type Interpreter struct {
	registry *CodecRegistry
	limits   Limits
	log      zerolog.Logger
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithRegistry substitutes a caller-owned codec registry.
func WithRegistry(reg *CodecRegistry) Option {
	return func(in *Interpreter) {
		if reg != nil {
			in.registry = reg
		}
	}
}

// WithLimits sets repeat and depth ceilings. Zero values keep the defaults.
func WithLimits(l Limits) Option {
	return func(in *Interpreter) { in.limits = l }
}

// WithLogger attaches a logger for resolution tracing. The default discards
// everything.
func WithLogger(log zerolog.Logger) Option {
	return func(in *Interpreter) { in.log = log }
}

// New returns an Interpreter with an empty codec registry.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{
		registry: NewCodecRegistry(),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Registry exposes the interpreter's codec registry for Register/Unregister.
func (in *Interpreter) Registry() *CodecRegistry {
	return in.registry
}

func (in *Interpreter) resolver(e Endianness) *resolver {
	return &resolver{reg: in.registry, limits: in.limits, log: in.log, endian: e}
}

// Parse resolves def against data and returns the typed field tree. A call
// either completes fully or fails; there are no partial results.
func (in *Interpreter) Parse(def *StructureDefinition, data []byte) (*ParsedStructure, error) {
	return in.resolver(def.Endianness).resolveStructure(def, newBufferSource(data))
}

// ParseReader parses a payload from r. The reader is drained before
// resolution starts.
func (in *Interpreter) ParseReader(def *StructureDefinition, r io.Reader) (*ParsedStructure, error) {
	src, err := readAll(r)
	if err != nil {
		return nil, err
	}
	return in.resolver(def.Endianness).resolveStructure(def, src)
}

// Generate resolves def against synthesized bytes: values come from the
// defaults tree where a dotted field path matches, and from zero bytes
// everywhere else. A nil defaults tree produces the all-zero rendition.
func (in *Interpreter) Generate(def *StructureDefinition, defaults Defaults) (*ParsedStructure, error) {
	return in.resolver(def.Endianness).resolveStructure(def, newDefaultsSource(defaults))
}

// GenerateBytes generates a structure and flattens it to the byte buffer it
// describes. Re-parsing that buffer with the same definition reproduces the
// generated tree for schemas whose conditions and repeats do not depend on
// the synthesized values.
func (in *Interpreter) GenerateBytes(def *StructureDefinition, defaults Defaults) ([]byte, error) {
	parsed, err := in.Generate(def, defaults)
	if err != nil {
		return nil, err
	}
	return FlattenBytes(parsed), nil
}

// defaultInterpreter backs the package-level convenience API. It is a single
// owned instance; embedders that need isolated codec registries create their
// own Interpreter with New.
var defaultInterpreter = New()

// Parse resolves def against data using the default interpreter.
func Parse(def *StructureDefinition, data []byte) (*ParsedStructure, error) {
	return defaultInterpreter.Parse(def, data)
}

// ParseReader parses a payload from r using the default interpreter.
func ParseReader(def *StructureDefinition, r io.Reader) (*ParsedStructure, error) {
	return defaultInterpreter.ParseReader(def, r)
}

// Generate generates a structure from defaults using the default interpreter.
func Generate(def *StructureDefinition, defaults Defaults) (*ParsedStructure, error) {
	return defaultInterpreter.Generate(def, defaults)
}

// GenerateBytes generates and flattens bytes using the default interpreter.
func GenerateBytes(def *StructureDefinition, defaults Defaults) ([]byte, error) {
	return defaultInterpreter.GenerateBytes(def, defaults)
}

// RegisterCodec installs a custom codec in the default interpreter's
// registry.
func RegisterCodec(name string, fn CodecFunc) error {
	return defaultInterpreter.registry.Register(name, fn)
}

// UnregisterCodec removes a custom codec from the default interpreter's
// registry.
func UnregisterCodec(name string) {
	defaultInterpreter.registry.Unregister(name)
}
