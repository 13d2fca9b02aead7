// Package replay drives an allocator from a small line-oriented script, so
// boot-time allocation sequences can be reproduced and inspected outside
// the boot environment.
//
// A script holds one operation per line:
//
//	init      <start> <size>
//	alloc     <size> <align>
//	free      $N
//	pages     <count> <align>
//	freepages <addr|$N> <count>
//	addmem    <start> <size>
//	stats
//	check
//
// Numbers are decimal or 0x-prefixed hex. Every alloc and pages line gets a
// reference $1, $2, ... in order of appearance; free and freepages use it to
// name the address that line produced. Text after # is a comment.
package replay

import (
	"errors"
	"fmt"
)

// Kind identifies a script operation.
type Kind uint8

const (
	KindInit Kind = iota + 1
	KindAlloc
	KindFree
	KindPages
	KindFreePages
	KindAddMemory
	KindStats
	KindCheck
)

var kindNames = map[Kind]string{
	KindInit:      "init",
	KindAlloc:     "alloc",
	KindFree:      "free",
	KindPages:     "pages",
	KindFreePages: "freepages",
	KindAddMemory: "addmem",
	KindStats:     "stats",
	KindCheck:     "check",
}

var kindArity = map[Kind]int{
	KindInit:      2,
	KindAlloc:     2,
	KindFree:      1,
	KindPages:     2,
	KindFreePages: 2,
	KindAddMemory: 2,
	KindStats:     0,
	KindCheck:     0,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Op is one parsed script line.
type Op struct {
	Line int
	Kind Kind

	// Args holds the numeric operands in script order. For free, and for
	// freepages given a $N address, Args[0] is unused and Ref names the line.
	Args [2]uintptr

	// Ref is the $N operand of free/freepages, or 0.
	Ref int

	// ID is this op's own $N for alloc and pages lines, or 0.
	ID int
}

func (op Op) String() string {
	switch kindArity[op.Kind] {
	case 0:
		return op.Kind.String()
	case 1:
		return fmt.Sprintf("%s $%d", op.Kind, op.Ref)
	}
	if op.Ref != 0 {
		return fmt.Sprintf("%s $%d %d", op.Kind, op.Ref, op.Args[1])
	}
	return fmt.Sprintf("%s %#x %#x", op.Kind, op.Args[0], op.Args[1])
}

var (
	// ErrSyntax indicates a malformed script line.
	ErrSyntax = errors.New("replay: syntax error")

	// ErrBadRef indicates a $N that does not name a live allocation of the right kind.
	ErrBadRef = errors.New("replay: bad reference")

	// ErrNoChecker indicates a check op against an allocator without CheckInvariants.
	ErrNoChecker = errors.New("replay: allocator cannot check invariants")
)
