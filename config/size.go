package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Size is a byte count. In YAML it may be a plain integer, a 0x-prefixed
// hex number, or a decimal number with a binary unit suffix (KiB, MiB, GiB;
// K, M and G are accepted as the same).
type Size uint64

// Common sizes.
const (
	Byte Size = 1
	KiB       = 1024 * Byte
	MiB       = 1024 * KiB
	GiB       = 1024 * MiB
)

var sizeUnits = []struct {
	suffix string
	mult   Size
}{
	{"KiB", KiB}, {"MiB", MiB}, {"GiB", GiB},
	{"K", KiB}, {"M", MiB}, {"G", GiB},
	{"B", Byte},
}

// ParseSize parses the textual forms accepted for Size.
func ParseSize(s string) (Size, error) {
	s = strings.TrimSpace(s)
	mult := Byte
	isHex := strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")
	for _, u := range sizeUnits {
		if isHex {
			break
		}
		if strings.HasSuffix(s, u.suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
			mult = u.mult
			break
		}
	}
	n, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	if n != 0 && uint64(mult) > ^uint64(0)/n {
		return 0, fmt.Errorf("size %q overflows", s)
	}
	return Size(n) * mult, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Size) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: size must be a scalar", node.Line)
	}
	v, err := ParseSize(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*s = v
	return nil
}

// MarshalYAML implements yaml.Marshaler, writing the largest exact unit.
func (s Size) MarshalYAML() (any, error) {
	return s.String(), nil
}

// Set implements pflag.Value so a Size can be bound directly to a flag.
func (s *Size) Set(text string) error {
	v, err := ParseSize(text)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Type implements pflag.Value.
func (s *Size) Type() string {
	return "size"
}

func (s Size) String() string {
	switch {
	case s == 0:
		return "0"
	case s%GiB == 0:
		return strconv.FormatUint(uint64(s/GiB), 10) + "GiB"
	case s%MiB == 0:
		return strconv.FormatUint(uint64(s/MiB), 10) + "MiB"
	case s%KiB == 0:
		return strconv.FormatUint(uint64(s/KiB), 10) + "KiB"
	default:
		return strconv.FormatUint(uint64(s), 10)
	}
}
