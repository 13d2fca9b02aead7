package replay

import (
	"fmt"
	"maps"
	"slices"

	"github.com/joshuapare/earlyalloc/alloc"
)

// Checker is implemented by allocators that can verify their own state.
type Checker interface {
	CheckInvariants() error
}

// Counters is what the capability interfaces expose about an allocator.
type Counters struct {
	TotalBytes     uintptr `json:"total_bytes"`
	UsedBytes      uintptr `json:"used_bytes"`
	AvailableBytes uintptr `json:"available_bytes"`
	PageSize       uintptr `json:"page_size"`
	TotalPages     uintptr `json:"total_pages"`
	UsedPages      uintptr `json:"used_pages"`
	AvailablePages uintptr `json:"available_pages"`
}

// CountersOf reads the counters of a.
func CountersOf(a alloc.Allocator) Counters {
	return Counters{
		TotalBytes:     a.TotalBytes(),
		UsedBytes:      a.UsedBytes(),
		AvailableBytes: a.AvailableBytes(),
		PageSize:       a.PageSize(),
		TotalPages:     a.TotalPages(),
		UsedPages:      a.UsedPages(),
		AvailablePages: a.AvailablePages(),
	}
}

// Result is the outcome of one op.
type Result struct {
	Op   Op
	Addr uintptr
	Err  error

	// Counters is set for stats ops.
	Counters *Counters
}

// OK reports whether the op succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Span is a live range handed out during a run.
type Span struct {
	ID   int
	Addr uintptr
	Size uintptr
	Page bool
}

// Report collects the results of a run.
type Report struct {
	Results  []Result
	Failures int

	// Live lists the allocations still outstanding when the run ended, in
	// the order they were made. Freed pages stay live since the allocator
	// never reclaims them.
	Live []Span
}

// Options controls Run.
type Options struct {
	// StopOnError ends the run at the first allocator error.
	StopOnError bool

	// OnResult, if set, is called after every op.
	OnResult func(Result)
}

type refState struct {
	span   Span
	layout alloc.Layout
	live   bool
}

// Run executes ops against a. Allocator errors are recorded in the report;
// the returned error is non-nil only for script errors (a $N that was never
// allocated, is already freed, or predates the last init) or, with
// StopOnError, for the first allocator error.
func Run(a alloc.Allocator, ops []Op, opts Options) (*Report, error) {
	rep := &Report{}
	refs := make(map[int]*refState)
	checker := checkerOf(a)

	for _, op := range ops {
		res := Result{Op: op}

		switch op.Kind {
		case KindInit:
			res.Err = a.Init(op.Args[0], op.Args[1])
			if res.Err == nil {
				// The allocator forgot everything; old refs must not reach Dealloc.
				for _, rs := range refs {
					rs.live = false
				}
			}

		case KindAlloc:
			layout := alloc.Layout{Size: op.Args[0], Align: op.Args[1]}
			res.Addr, res.Err = a.Alloc(layout)
			if res.Err == nil {
				refs[op.ID] = &refState{
					span:   Span{ID: op.ID, Addr: res.Addr, Size: layout.Size},
					layout: layout,
					live:   true,
				}
			}

		case KindFree:
			rs, ok := refs[op.Ref]
			if !ok || !rs.live {
				return rep, fmt.Errorf("line %d: %w: $%d is not a live allocation", op.Line, ErrBadRef, op.Ref)
			}
			a.Dealloc(rs.span.Addr, rs.layout)
			rs.live = false
			res.Addr = rs.span.Addr

		case KindPages:
			res.Addr, res.Err = a.AllocPages(op.Args[0], op.Args[1])
			if res.Err == nil {
				refs[op.ID] = &refState{
					span: Span{ID: op.ID, Addr: res.Addr, Size: op.Args[0] * a.PageSize(), Page: true},
					live: true,
				}
			}

		case KindFreePages:
			addr := op.Args[0]
			if op.Ref != 0 {
				rs, ok := refs[op.Ref]
				if !ok {
					return rep, fmt.Errorf("line %d: %w: $%d produced no pages", op.Line, ErrBadRef, op.Ref)
				}
				addr = rs.span.Addr
			}
			a.DeallocPages(addr, op.Args[1])
			res.Addr = addr

		case KindAddMemory:
			res.Err = a.AddMemory(op.Args[0], op.Args[1])

		case KindStats:
			c := CountersOf(a)
			res.Counters = &c

		case KindCheck:
			if checker == nil {
				res.Err = ErrNoChecker
			} else {
				res.Err = checker.CheckInvariants()
			}

		default:
			return rep, fmt.Errorf("line %d: %w: unknown op %s", op.Line, ErrSyntax, op.Kind)
		}

		rep.Results = append(rep.Results, res)
		if res.Err != nil {
			rep.Failures++
		}
		if opts.OnResult != nil {
			opts.OnResult(res)
		}
		if res.Err != nil && opts.StopOnError {
			rep.Live = liveSpans(refs)
			return rep, fmt.Errorf("line %d: %s: %w", op.Line, op, res.Err)
		}
	}

	rep.Live = liveSpans(refs)
	return rep, nil
}

func liveSpans(refs map[int]*refState) []Span {
	var out []Span
	for _, id := range slices.Sorted(maps.Keys(refs)) {
		if rs := refs[id]; rs.live {
			out = append(out, rs.span)
		}
	}
	return out
}

// checkerOf finds a Checker in a or in the allocators it wraps.
func checkerOf(a alloc.Allocator) Checker {
	for a != nil {
		if c, ok := a.(Checker); ok {
			return c
		}
		u, ok := a.(interface{ Unwrap() alloc.Allocator })
		if !ok {
			return nil
		}
		a = u.Unwrap()
	}
	return nil
}
