package generation

import "fmt"

// Mode selects how combinations are drawn from the space.
type Mode int

const (
	// ModeExhaustive emits every combination exactly once.
	ModeExhaustive Mode = iota
	// ModeSampled draws SamplesPerSize combinations per size with a seeded PRNG.
	ModeSampled
)

func (m Mode) String() string {
	switch m {
	case ModeExhaustive:
		return "exhaustive"
	case ModeSampled:
		return "sampled"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode resolves a mode name as produced by String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "exhaustive", "":
		return ModeExhaustive, nil
	case "sampled", "sample":
		return ModeSampled, nil
	default:
		return 0, fmt.Errorf("unknown generation mode %q", s)
	}
}

// Config bounds the combination space.
type Config struct {
	// MinDimensions and MaxDimensions bound the combination size.
	// Both must lie in [1, catalog size]. Zero MaxDimensions means the
	// catalog size.
	MinDimensions int
	MaxDimensions int

	// MaxValuesPerDimension keeps only the first N values of every
	// dimension. Zero disables the cap.
	MaxValuesPerDimension int

	Mode Mode

	// SamplesPerSize and Seed apply to ModeSampled only.
	SamplesPerSize int
	Seed           uint64
}
