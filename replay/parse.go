package replay

import (
	"bufio"
	"fmt"
	"io"
	"math/bits"
	"strconv"
	"strings"
)

const (
	commentPrefix = "#"
	refPrefix     = "$"
)

// Parse reads a script. Errors name the offending line.
func Parse(r io.Reader) ([]Op, error) {
	byName := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		byName[name] = k
	}

	var ops []Op
	refKinds := []Kind{0} // refKinds[N] is the kind of the line that owns $N
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.Index(line, commentPrefix); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		kind, ok := byName[strings.ToLower(fields[0])]
		if !ok {
			return nil, fmt.Errorf("%w: line %d: unknown operation %q", ErrSyntax, lineNo, fields[0])
		}
		args := fields[1:]
		if want := kindArity[kind]; len(args) != want {
			return nil, fmt.Errorf("%w: line %d: %s takes %d operand(s), got %d",
				ErrSyntax, lineNo, kind, want, len(args))
		}

		op := Op{Line: lineNo, Kind: kind}
		switch kind {
		case KindFree:
			ref, err := parseRef(args[0], refKinds, KindAlloc)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			op.Ref = ref
		case KindFreePages:
			if strings.HasPrefix(args[0], refPrefix) {
				ref, err := parseRef(args[0], refKinds, KindPages)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				op.Ref = ref
			} else if op.Args[0], ok = parseNumber(args[0]); !ok {
				return nil, fmt.Errorf("%w: line %d: bad number %q", ErrSyntax, lineNo, args[0])
			}
			if op.Args[1], ok = parseNumber(args[1]); !ok {
				return nil, fmt.Errorf("%w: line %d: bad number %q", ErrSyntax, lineNo, args[1])
			}
		default:
			for i, a := range args {
				if op.Args[i], ok = parseNumber(a); !ok {
					return nil, fmt.Errorf("%w: line %d: bad number %q", ErrSyntax, lineNo, a)
				}
			}
		}

		if kind == KindAlloc || kind == KindPages {
			op.ID = len(refKinds)
			refKinds = append(refKinds, kind)
		}
		ops = append(ops, op)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ops, nil
}

func parseNumber(s string) (uintptr, bool) {
	n, err := strconv.ParseUint(s, 0, bits.UintSize)
	if err != nil {
		return 0, false
	}
	return uintptr(n), true
}

// parseRef resolves $N against the references defined so far.
func parseRef(s string, refKinds []Kind, want Kind) (int, error) {
	if !strings.HasPrefix(s, refPrefix) {
		return 0, fmt.Errorf("%w: expected $N, got %q", ErrSyntax, s)
	}
	n, err := strconv.Atoi(s[len(refPrefix):])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: bad reference %q", ErrSyntax, s)
	}
	if n >= len(refKinds) {
		return 0, fmt.Errorf("%w: %s used before it is defined", ErrBadRef, s)
	}
	if refKinds[n] != want {
		return 0, fmt.Errorf("%w: %s names a %s line, want %s", ErrBadRef, s, refKinds[n], want)
	}
	return n, nil
}
