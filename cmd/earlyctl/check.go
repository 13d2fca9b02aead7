package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/earlyalloc/replay"
)

// errInvariants is returned when any step left the allocator inconsistent.
var errInvariants = errors.New("allocator invariants violated")

func init() {
	rootCmd.AddCommand(newCheckCmd())
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [script]",
		Short: "Replay a script and verify allocator invariants after every step",
		Long: `The check command replays a script like run does, but prints nothing
per step. After every operation it verifies the allocator's internal
invariants and reports each step that broke them. It exits non-zero if
any step did.

Allocation failures such as running out of memory are expected outcomes
and do not fail the check.

Example:
  earlyctl check boot.script
  earlyctl check boot.script --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args)
		},
	}
	return cmd
}

type violation struct {
	Line  int    `json:"line"`
	Op    string `json:"op"`
	Error string `json:"error"`
}

type checkOutput struct {
	Ops        int         `json:"ops"`
	Violations []violation `json:"violations"`
}

func runCheck(args []string) error {
	ops, err := readScript(args)
	if err != nil {
		return err
	}

	s, err := openSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	out := checkOutput{Violations: []violation{}}
	if err := s.early.CheckInvariants(); err != nil {
		out.Violations = append(out.Violations, violation{Op: "<initial>", Error: err.Error()})
	}

	rep, err := replay.Run(s.alloc, ops, replay.Options{
		OnResult: func(r replay.Result) {
			if err := s.early.CheckInvariants(); err != nil {
				out.Violations = append(out.Violations, violation{Line: r.Op.Line, Op: r.Op.String(), Error: err.Error()})
			}
		},
	})
	if err != nil {
		return err
	}
	out.Ops = len(rep.Results)

	if jsonOut {
		if err := printJSON(out); err != nil {
			return err
		}
	} else {
		for _, v := range out.Violations {
			printError("line %d: %s: %s\n", v.Line, v.Op, v.Error)
		}
		printInfo("Checked %s op(s), %s violation(s)\n", formatCount(uintptr(out.Ops)), formatCount(uintptr(len(out.Violations))))
	}

	if len(out.Violations) > 0 {
		return fmt.Errorf("%w: %d step(s)", errInvariants, len(out.Violations))
	}
	return nil
}
