// Copyright (c) 2024-2026 unyt.org and contributors
// SPDX-License-Identifier: MIT

package speck

import (
	"fmt"
	"strconv"
	"strings"
)

// bitReader extracts bit runs from a byte payload, MSB-first, with a private
// monotonically advancing cursor. One bitReader serves exactly one field's
// payload; the cursor never spans two fields.
type bitReader struct {
	buf []byte
	pos int // bits consumed so far
}

func newBitReader(buf []byte) *bitReader {
	return &bitReader{buf: buf}
}

func (r *bitReader) remaining() int {
	return len(r.buf)*8 - r.pos
}

// readBits consumes n bits and returns them right-aligned in the smallest
// byte slice that holds n bits. Non-positive counts are rejected rather than
// left undefined.
func (r *bitReader) readBits(n int) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: bit count %d is not positive", ErrDecode, n)
	}
	if n > r.remaining() {
		return nil, fmt.Errorf("%w: need %d bits, %d left in %d-byte payload",
			ErrOutOfRange, n, r.remaining(), len(r.buf))
	}
	out := make([]byte, (n+7)/8)
	// Write target bits from the right end of out.
	for i := n - 1; i >= 0; i-- {
		srcBit := r.pos + i
		bit := (r.buf[srcBit/8] >> (7 - srcBit%8)) & 1
		dstBit := len(out)*8 - n + i
		out[dstBit/8] |= bit << (7 - dstBit%8)
	}
	r.pos += n
	return out, nil
}

// readUint reads up to 64 bits as an unsigned integer.
func (r *bitReader) readUint(n int) (uint64, error) {
	if n > 64 {
		return 0, fmt.Errorf("%w: bit count %d exceeds 64", ErrDecode, n)
	}
	b, err := r.readBits(n)
	if err != nil {
		return 0, err
	}
	var v uint64
	for _, by := range b {
		v = v<<8 | uint64(by)
	}
	return v, nil
}

// bitString renders the low n bits of b as a binary digit string, e.g. a
// 3-bit mask holding 5 becomes "101".
func bitString(b []byte, n int) string {
	var sb strings.Builder
	sb.Grow(n)
	total := len(b) * 8
	for i := total - n; i < total; i++ {
		bit := (b[i/8] >> (7 - i%8)) & 1
		sb.WriteString(strconv.Itoa(int(bit)))
	}
	return sb.String()
}
