// Package alloc provides the early boot allocator: one fixed address range
// serving both byte allocations and page allocations before the real heap
// and page allocators are online.
//
// # Overview
//
// EarlyAllocator is a double-ended bump allocator. Byte allocations grow
// forward from the low end of the range, page allocations grow backward from
// the high end, and both sides share whatever lies between the two frontiers:
//
//	[ bytes-used | available | pages-used ]
//	start       bPos      pPos          end
//
// There is no bookkeeping beyond a handful of integers: no free lists, no
// per-allocation headers.
//
// # Allocator Interfaces
//
// The allocator exposes three capability surfaces:
//
//   - BaseAllocator: Init(start, size), AddMemory(start, size)
//   - ByteAllocator: Alloc(layout), Dealloc(addr, layout), byte counters
//   - PageAllocator: PageSize(), AllocPages(count, align), DeallocPages, page counters
//
// Allocator is the union. Boot code should hold one of these interfaces,
// not *EarlyAllocator, so a full allocator can replace it without changes at
// call sites. Logged is an example of such a substitution: it wraps any
// Allocator and emits a slog record per call.
//
// # Reclamation
//
// Byte allocations are reference counted as a group. Dealloc decrements the
// count; only when it reaches zero does the byte frontier return to the
// start of the range. Freeing some but not all allocations reclaims nothing.
//
// Page allocations are permanent. DeallocPages is a no-op.
//
// # Usage Example
//
//	ea := alloc.NewEarly(4096)
//	if err := ea.Init(regionStart, regionSize); err != nil {
//	    return err
//	}
//
//	var a alloc.Allocator = ea
//	addr, err := a.Alloc(alloc.Layout{Size: 64, Align: 8})
//	if err != nil {
//	    return err
//	}
//	defer a.Dealloc(addr, alloc.Layout{Size: 64, Align: 8})
//
//	pages, err := a.AllocPages(4, 4096)
//
// # Errors
//
// Failures return ErrNoMemory (the frontiers would cross, or an operation
// like AddMemory is unsupported) or ErrInvalidParam (bad alignment, or a
// range that wraps the address space). A failed call changes nothing.
// Two conditions are programming errors and panic: constructing with a page
// size that is not a power of two, and calling Dealloc with no outstanding
// allocation.
//
// # Thread Safety
//
// Allocator instances are not thread-safe and do no locking. Callers must
// synchronize access externally if more than one context can reach them.
package alloc
