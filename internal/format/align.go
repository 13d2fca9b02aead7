package format

import "github.com/joshuapare/earlyalloc/internal/buf"

// Alignment utilities for address arithmetic.
// All helpers operate on uintptr and assume align is a power of two unless
// stated otherwise; callers validate with IsPowerOfTwo first.

// IsPowerOfTwo reports whether x is a non-zero power of two.
func IsPowerOfTwo(x uintptr) bool {
	return x != 0 && x&(x-1) == 0
}

// AlignUp returns addr rounded up to the next multiple of align.
// The result wraps if addr is within align-1 of the top of the address space;
// use AlignUpChecked when that matters.
//
// Example:
//
//	AlignUp(0x1001, 0x1000) = 0x2000
//	AlignUp(0x1000, 0x1000) = 0x1000
//	AlignUp(9, 8)           = 16
func AlignUp(addr, align uintptr) uintptr {
	return (addr + align - 1) &^ (align - 1)
}

// AlignDown returns addr rounded down to the previous multiple of align.
//
// Example:
//
//	AlignDown(0x1fff, 0x1000) = 0x1000
//	AlignDown(0x2000, 0x1000) = 0x2000
func AlignDown(addr, align uintptr) uintptr {
	return addr &^ (align - 1)
}

// IsAligned reports whether addr is a multiple of align.
func IsAligned(addr, align uintptr) bool {
	return addr&(align-1) == 0
}

// AlignUpChecked is AlignUp that reports overflow instead of wrapping.
func AlignUpChecked(addr, align uintptr) (uintptr, bool) {
	if _, ok := buf.AddOverflowSafe(addr, align-1); !ok {
		return 0, false
	}
	return AlignUp(addr, align), true
}
