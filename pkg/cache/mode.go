package cache

import "fmt"

// Mode selects the materialization strategy for an encoding. The two modes
// produce the same logical encoded stream but segment it differently and
// have different memory profiles.
type Mode int

const (
	// Stream encodes fixed-size binary blocks one at a time; peak memory is
	// one block.
	Stream Mode = iota
	// Full encodes the entire file in one pass and then splits the encoded
	// buffer, guaranteeing byte-identity with whole-file encoding at the
	// cost of holding the file in memory.
	Full
)

func ParseMode(name string) (Mode, error) {
	switch name {
	case "stream", "":
		return Stream, nil
	case "full":
		return Full, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, name)
}

func (m Mode) String() string {
	if m == Full {
		return "full"
	}
	return "stream"
}
