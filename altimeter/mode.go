package altimeter

import (
	"fmt"
	"strings"
)

// Mode selects which input is allowed to move the pressure.
type Mode int

const (
	// ModeSimulation accepts only simulated deltas; sensor samples are dropped.
	ModeSimulation Mode = iota
	// ModeLive accepts only sensor samples.
	ModeLive
)

func (m Mode) String() string {
	switch m {
	case ModeSimulation:
		return "simulation"
	case ModeLive:
		return "live"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "simulation"/"sim" and "live", case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "simulation", "sim":
		return ModeSimulation, nil
	case "live":
		return ModeLive, nil
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

func (m Mode) MarshalText() ([]byte, error) {
	if m != ModeSimulation && m != ModeLive {
		return nil, fmt.Errorf("invalid mode %d", int(m))
	}
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
