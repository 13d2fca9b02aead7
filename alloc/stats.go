package alloc

import (
	"errors"
	"fmt"

	"github.com/joshuapare/earlyalloc/internal/format"
)

// Stats is a point-in-time copy of an EarlyAllocator's state.
type Stats struct {
	PageSize uintptr `json:"page_size"`
	Start    uintptr `json:"start"`
	End      uintptr `json:"end"`

	BytePos   uintptr `json:"byte_pos"`
	PagePos   uintptr `json:"page_pos"`
	ByteCount uintptr `json:"byte_count"`

	TotalBytes     uintptr `json:"total_bytes"`
	UsedBytes      uintptr `json:"used_bytes"`
	AvailableBytes uintptr `json:"available_bytes"`

	TotalPages     uintptr `json:"total_pages"`
	UsedPages      uintptr `json:"used_pages"`
	AvailablePages uintptr `json:"available_pages"`
}

// Stats returns a snapshot of the allocator's frontiers and counters.
func (ea *EarlyAllocator) Stats() Stats {
	return Stats{
		PageSize:       ea.pageSize,
		Start:          ea.start,
		End:            ea.end,
		BytePos:        ea.bPos,
		PagePos:        ea.pPos,
		ByteCount:      ea.bytesCount,
		TotalBytes:     ea.TotalBytes(),
		UsedBytes:      ea.UsedBytes(),
		AvailableBytes: ea.AvailableBytes(),
		TotalPages:     ea.totalPages,
		UsedPages:      ea.usedPages,
		AvailablePages: ea.AvailablePages(),
	}
}

// CheckInvariants verifies the frontier ordering, page alignment of the
// bounds, byte-region compaction, and page accounting. Every violation is
// reported, each wrapped in ErrCorrupt.
func (ea *EarlyAllocator) CheckInvariants() error {
	var errs []error
	fail := func(msg string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+msg, append([]any{ErrCorrupt}, args...)...))
	}

	if !format.IsPowerOfTwo(ea.pageSize) {
		fail("page size %#x is not a power of two", ea.pageSize)
		return errors.Join(errs...)
	}

	if ea.start > ea.bPos || ea.bPos > ea.pPos || ea.pPos > ea.end {
		fail("frontiers out of order: start=%#x bPos=%#x pPos=%#x end=%#x",
			ea.start, ea.bPos, ea.pPos, ea.end)
	}
	if !format.IsAligned(ea.start, ea.pageSize) || !format.IsAligned(ea.end, ea.pageSize) {
		fail("bounds not page aligned: start=%#x end=%#x page=%#x", ea.start, ea.end, ea.pageSize)
	}
	if ea.bytesCount == 0 && ea.bPos != ea.start {
		fail("no live byte allocations but bPos=%#x != start=%#x", ea.bPos, ea.start)
	}
	if ea.end >= ea.start && ea.totalPages != (ea.end-ea.start)/ea.pageSize {
		fail("totalPages=%d does not match range %#x-%#x", ea.totalPages, ea.start, ea.end)
	}
	if ea.pPos <= ea.end && ea.end-ea.pPos != ea.usedPages*ea.pageSize {
		fail("page region %#x-%#x does not hold usedPages=%d", ea.pPos, ea.end, ea.usedPages)
	}
	if ea.usedPages > ea.totalPages {
		fail("usedPages=%d exceeds totalPages=%d", ea.usedPages, ea.totalPages)
	}

	return errors.Join(errs...)
}
