package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/earlyalloc/cmd/earlyctl/logger"
	"github.com/joshuapare/earlyalloc/internal/buf"
	"github.com/joshuapare/earlyalloc/replay"
)

var (
	runTouch       bool
	runStopOnError bool
)

// errTouchMismatch is returned when an allocation's pattern was overwritten.
var errTouchMismatch = errors.New("live allocation overwritten")

func init() {
	cmd := newRunCmd()
	cmd.Flags().BoolVar(&runTouch, "touch", false, "Write a pattern into every allocation and verify it at the end")
	cmd.Flags().BoolVar(&runStopOnError, "stop-on-error", false, "Stop at the first failing operation")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [script]",
		Short: "Replay an allocation script",
		Long: `The run command maps a region, initialises the allocator over it and
replays a script of allocator operations, one per line. The script is read
from stdin when no file is given.

The allocator is already initialised when the script starts, so scripts
usually begin with an alloc or pages line. An explicit init line is
honoured as written.

Example:
  earlyctl run boot.script
  echo "alloc 64 16" | earlyctl run --touch
  earlyctl run boot.script --region-size 64KiB --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(args)
		},
	}
	return cmd
}

// runLine is one op in --json output.
type runLine struct {
	Line     int              `json:"line"`
	Op       string           `json:"op"`
	Addr     string           `json:"addr,omitempty"`
	Error    string           `json:"error,omitempty"`
	Counters *replay.Counters `json:"counters,omitempty"`
}

type runOutput struct {
	Results  []runLine `json:"results"`
	Failures int       `json:"failures"`
	Live     int       `json:"live"`
	Touched  int       `json:"touched,omitempty"`
	Stats    statsView `json:"stats"`
}

func runRun(args []string) error {
	ops, err := readScript(args)
	if err != nil {
		return err
	}

	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	printVerbose("Region: %s bytes at %s\n", formatCount(s.region.Len()), hexAddr(s.region.Base()))

	out := runOutput{Results: []runLine{}}
	opts := replay.Options{
		StopOnError: runStopOnError,
		OnResult: func(r replay.Result) {
			line := runLine{Line: r.Op.Line, Op: r.Op.String(), Counters: r.Counters}
			if r.Err != nil {
				line.Error = r.Err.Error()
			} else if r.Op.Kind != replay.KindStats && r.Op.Kind != replay.KindCheck && r.Op.Kind != replay.KindInit {
				line.Addr = hexAddr(r.Addr)
			}
			out.Results = append(out.Results, line)
			if !jsonOut {
				printResult(line)
			}
			if runTouch && r.Err == nil {
				stamp(s, r)
			}
		},
	}

	rep, runErr := replay.Run(s.alloc, ops, opts)
	if rep == nil {
		return runErr
	}

	out.Failures = rep.Failures
	out.Live = len(rep.Live)
	out.Stats = newStatsView(s.early.Stats())

	var touchErr error
	if runTouch {
		out.Touched, touchErr = verifyTouched(s, rep.Live)
	}

	if jsonOut {
		if err := printJSON(out); err != nil {
			return err
		}
	} else {
		printInfo("\n%s op(s), %s failed, %s live\n",
			formatCount(uintptr(len(rep.Results))), formatCount(uintptr(rep.Failures)), formatCount(uintptr(len(rep.Live))))
		if runTouch {
			printInfo("Touched:    %s allocation(s) verified\n", formatCount(uintptr(out.Touched)))
		}
		printStats(s.early.Stats())
	}

	return errors.Join(runErr, touchErr)
}

// readScript parses the script named by args[0], or stdin.
func readScript(args []string) ([]replay.Op, error) {
	var r io.Reader = os.Stdin
	name := "<stdin>"
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to open script: %w", err)
		}
		defer f.Close()
		r, name = f, args[0]
	}
	ops, err := replay.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	logger.Debug("script parsed", "script", name, "ops", len(ops))
	return ops, nil
}

func printResult(l runLine) {
	switch {
	case l.Error != "":
		printInfo("%4d  %-24s  FAIL %s\n", l.Line, l.Op, l.Error)
	case l.Counters != nil:
		c := l.Counters
		printInfo("%4d  %-24s  bytes %s/%s  pages %s/%s\n", l.Line, l.Op,
			formatBytes(c.UsedBytes), formatBytes(c.TotalBytes),
			formatCount(c.UsedPages), formatCount(c.TotalPages))
	case l.Addr != "":
		printInfo("%4d  %-24s  -> %s\n", l.Line, l.Op, l.Addr)
	default:
		printInfo("%4d  %-24s  ok\n", l.Line, l.Op)
	}
}

// touchPattern derives a distinct fill pattern from an allocation id.
func touchPattern(id int) uint64 {
	return uint64(id)*0x9E3779B97F4A7C15 | 1
}

// touchSize is the extent of memory an alloc or pages result covers.
func touchSize(s *session, r replay.Result) (uintptr, bool) {
	switch r.Op.Kind {
	case replay.KindAlloc:
		return r.Op.Args[0], true
	case replay.KindPages:
		return r.Op.Args[0] * s.alloc.PageSize(), true
	default:
		return 0, false
	}
}

// stamp fills a fresh allocation with its pattern. Ranges outside the
// mapping (from an explicit init line) are skipped.
func stamp(s *session, r replay.Result) {
	size, ok := touchSize(s, r)
	if !ok || size == 0 {
		return
	}
	if !s.region.Contains(r.Addr, size) {
		logger.Warn("not touching allocation outside the region", "line", r.Op.Line, "addr", hexAddr(r.Addr))
		return
	}
	view, err := s.region.Bytes(r.Addr, size)
	if err != nil {
		logger.Warn("not touching allocation", "line", r.Op.Line, "addr", hexAddr(r.Addr), "error", err)
		return
	}
	buf.Fill(view, touchPattern(r.Op.ID))
}

// verifyTouched checks that every live allocation still holds its pattern.
func verifyTouched(s *session, live []replay.Span) (int, error) {
	var errs []error
	n := 0
	for _, sp := range live {
		if sp.Size == 0 || !s.region.Contains(sp.Addr, sp.Size) {
			continue
		}
		view, err := s.region.Bytes(sp.Addr, sp.Size)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		n++
		if off := buf.Verify(view, touchPattern(sp.ID)); off >= 0 {
			errs = append(errs, fmt.Errorf("%w: $%d at %s, byte %d", errTouchMismatch, sp.ID, hexAddr(sp.Addr), off))
		}
	}
	return n, errors.Join(errs...)
}
