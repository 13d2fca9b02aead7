package buf

import (
	"fmt"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow uintptr.
func AddOverflowSafe(a, b uintptr) (uintptr, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}

// SubUnderflowSafe subtracts b from a, returning ok = false when b > a.
func SubUnderflowSafe(a, b uintptr) (uintptr, bool) {
	if b > a {
		return 0, false
	}
	return a - b, true
}

// MulOverflowSafe multiplies a and b, returning ok = false when the result would overflow uintptr.
// This is essential for count * pageSize calculations.
func MulOverflowSafe(a, b uintptr) (uintptr, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	p := a * b
	if p/b != a {
		return 0, false
	}
	return p, true
}

// CheckRange validates that [addr, addr+n) lies inside [base, base+length).
// Returns the offset of addr from base if valid, or an error describing
// the specific failure (overflow or out of bounds).
//
//	off, err := buf.CheckRange(r.Base(), r.Len(), addr, n)
//	if err != nil {
//	    return fmt.Errorf("region: %w", err)
//	}
//	view, _ := buf.Slice(mem, int(off), int(n))
func CheckRange(base, length, addr, n uintptr) (uintptr, error) {
	if addr < base {
		return 0, fmt.Errorf("bounds: addr=%#x below base=%#x", addr, base)
	}
	off := addr - base

	end, ok := AddOverflowSafe(off, n)
	if !ok {
		return 0, fmt.Errorf("overflow: off=%#x + n=%#x", off, n)
	}
	if end > length {
		return 0, fmt.Errorf("bounds: end=%#x > len=%#x", end, length)
	}
	return off, nil
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b). The
// result's capacity is capped at n so appends cannot reach past the range.
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end := off + n
	if end < off || end > len(b) {
		return nil, false
	}
	return b[off:end:end], true
}
