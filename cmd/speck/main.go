// Copyright (c) 2024-2026 unyt.org and contributors
// SPDX-License-Identifier: MIT

// Command speck parses, generates and documents binary payloads from
// declarative structure definitions.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
