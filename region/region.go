// Package region provides real address ranges for the early allocator to
// manage outside a kernel: an anonymous, page-backed mapping whose base
// address and byte views stand in for a physical memory range at boot.
package region

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/joshuapare/earlyalloc/internal/buf"
)

var (
	// ErrClosed indicates use of a Region after Close.
	ErrClosed = errors.New("region: closed")

	// ErrOutOfRange indicates an address range that is not inside the region.
	ErrOutOfRange = errors.New("region: range outside mapping")

	// ErrEmpty indicates a request to map zero bytes.
	ErrEmpty = errors.New("region: size must be > 0")
)

// Region is a mapped address range. The memory stays at a fixed address
// until Close, so addresses handed out by an allocator over [Base, Base+Len)
// can be turned back into byte slices with Bytes.
type Region struct {
	mem   []byte
	base  uintptr
	unmap func([]byte) error
}

// Map reserves size bytes of zeroed, read-write memory.
func Map(size uintptr) (*Region, error) {
	if size == 0 {
		return nil, ErrEmpty
	}
	if size > uintptr(^uint(0)>>1) {
		return nil, fmt.Errorf("region: size %#x too large to map", size)
	}
	mem, unmap, err := mapAnon(int(size))
	if err != nil {
		return nil, fmt.Errorf("region: map %#x bytes: %w", size, err)
	}
	return &Region{
		mem:   mem,
		base:  uintptr(unsafe.Pointer(&mem[0])),
		unmap: unmap,
	}, nil
}

// Base is the address of the first byte of the mapping.
func (r *Region) Base() uintptr {
	return r.base
}

// Len is the size of the mapping in bytes, or 0 after Close.
func (r *Region) Len() uintptr {
	return uintptr(len(r.mem))
}

// Contains reports whether [addr, addr+n) is inside the mapping.
func (r *Region) Contains(addr, n uintptr) bool {
	_, err := buf.CheckRange(r.base, r.Len(), addr, n)
	return err == nil && r.mem != nil
}

// Bytes returns the n bytes at addr as a slice aliasing the mapping.
func (r *Region) Bytes(addr, n uintptr) ([]byte, error) {
	if r.mem == nil {
		return nil, ErrClosed
	}
	off, err := buf.CheckRange(r.base, r.Len(), addr, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutOfRange, err)
	}
	view, ok := buf.Slice(r.mem, int(off), int(n))
	if !ok {
		return nil, fmt.Errorf("%w: %#x+%#x", ErrOutOfRange, addr, n)
	}
	return view, nil
}

// Close releases the mapping. Slices returned by Bytes must not be used
// afterwards. Closing twice is a no-op.
func (r *Region) Close() error {
	if r.mem == nil {
		return nil
	}
	mem := r.mem
	r.mem = nil
	return r.unmap(mem)
}
