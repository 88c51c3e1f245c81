// Copyright (c) 2024-2026 unyt.org and contributors
// SPDX-License-Identifier: MIT

// Package speck interprets declarative binary structure definitions. A
// definition describes sections, fields, bit-level subfields, conditional
// inclusion, repetition and typed value decoding; the same definition drives
// both parsing raw bytes into a typed tree and synthesizing bytes from
// defaults.
package speck

import "errors"

// Common errors. Every failure returned by this package wraps exactly one of
// these sentinels; test with errors.Is.
var (
	ErrOutOfRange       = errors.New("byte source exhausted")
	ErrInvalidDefaults  = errors.New("invalid generation defaults")
	ErrDecode           = errors.New("value decode failed")
	ErrCodecNotFound    = errors.New("custom codec not registered")
	ErrMissingReference = errors.New("referenced field not resolved")
	ErrTypeMismatch     = errors.New("referenced field has wrong type")
	ErrAssertionFailed  = errors.New("assertion failed")
	ErrSchema           = errors.New("malformed structure definition")
)
