package entities

import (
	"fmt"
	"strings"
)

// State is the phase of a voting session. Phases only advance.
type State int

const (
	NominationPhase State = iota
	SelectionPhase
)

// States lists every phase in order.
var States = []State{NominationPhase, SelectionPhase}

func (s State) Valid() bool {
	return s == NominationPhase || s == SelectionPhase
}

func (s State) String() string {
	switch s {
	case NominationPhase:
		return "nomination"
	case SelectionPhase:
		return "selection"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown state %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	parsed, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func ParseState(raw string) (State, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "nomination", "nomination_phase":
		return NominationPhase, nil
	case "selection", "selection_phase":
		return SelectionPhase, nil
	default:
		return 0, fmt.Errorf("unknown state %q", raw)
	}
}
