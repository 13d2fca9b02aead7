package alloc

import (
	"context"
	"log/slog"
	"strconv"
)

// Logged wraps an Allocator and writes one debug record per operation.
// Failed allocations are logged at warn level. The wrapped allocator is
// otherwise untouched, so Logged can sit in front of any implementation.
type Logged struct {
	next Allocator
	log  *slog.Logger
}

// NewLogged wraps next. A nil logger uses slog.Default().
func NewLogged(next Allocator, log *slog.Logger) *Logged {
	if log == nil {
		log = slog.Default()
	}
	return &Logged{next: next, log: log.With("component", "early_alloc")}
}

// Unwrap returns the wrapped allocator.
func (l *Logged) Unwrap() Allocator {
	return l.next
}

func (l *Logged) result(op string, err error, attrs ...slog.Attr) {
	level := slog.LevelDebug
	if err != nil {
		level = slog.LevelWarn
		attrs = append(attrs, slog.Any("error", err))
	}
	l.log.LogAttrs(context.Background(), level, op, attrs...)
}

func (l *Logged) Init(start, size uintptr) error {
	err := l.next.Init(start, size)
	l.result("init", err,
		slog.Any("start", hex(start)), slog.Any("size", hex(size)),
		slog.Uint64("total_pages", uint64(l.next.TotalPages())))
	return err
}

func (l *Logged) AddMemory(start, size uintptr) error {
	err := l.next.AddMemory(start, size)
	l.result("add_memory", err, slog.Any("start", hex(start)), slog.Any("size", hex(size)))
	return err
}

func (l *Logged) Alloc(layout Layout) (uintptr, error) {
	addr, err := l.next.Alloc(layout)
	l.result("alloc", err,
		slog.Any("size", hex(layout.Size)), slog.Any("align", hex(layout.Align)),
		slog.Any("addr", hex(addr)), slog.Any("available", hex(l.next.AvailableBytes())))
	return addr, err
}

func (l *Logged) Dealloc(addr uintptr, layout Layout) {
	l.next.Dealloc(addr, layout)
	l.result("dealloc", nil,
		slog.Any("addr", hex(addr)), slog.Any("size", hex(layout.Size)),
		slog.Any("used", hex(l.next.UsedBytes())))
}

func (l *Logged) TotalBytes() uintptr     { return l.next.TotalBytes() }
func (l *Logged) UsedBytes() uintptr      { return l.next.UsedBytes() }
func (l *Logged) AvailableBytes() uintptr { return l.next.AvailableBytes() }
func (l *Logged) PageSize() uintptr       { return l.next.PageSize() }

func (l *Logged) AllocPages(count, alignPow2 uintptr) (uintptr, error) {
	addr, err := l.next.AllocPages(count, alignPow2)
	l.result("alloc_pages", err,
		slog.Uint64("count", uint64(count)), slog.Any("align", hex(alignPow2)),
		slog.Any("addr", hex(addr)), slog.Uint64("available_pages", uint64(l.next.AvailablePages())))
	return addr, err
}

func (l *Logged) DeallocPages(addr, count uintptr) {
	l.next.DeallocPages(addr, count)
	l.result("dealloc_pages", nil, slog.Any("addr", hex(addr)), slog.Uint64("count", uint64(count)))
}

func (l *Logged) TotalPages() uintptr     { return l.next.TotalPages() }
func (l *Logged) UsedPages() uintptr      { return l.next.UsedPages() }
func (l *Logged) AvailablePages() uintptr { return l.next.AvailablePages() }

// hex renders addresses and sizes in hex in both text and JSON handlers.
type hex uintptr

func (h hex) LogValue() slog.Value {
	return slog.StringValue("0x" + strconv.FormatUint(uint64(h), 16))
}

var _ Allocator = (*Logged)(nil)
