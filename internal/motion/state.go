// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package motion

import "fmt"

// State is the classifier output. The zero value is Static.
type State uint8

const (
	Static State = iota
	Motion
)

func (s State) String() string {
	switch s {
	case Static:
		return "Static"
	case Motion:
		return "Motion"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// MarshalText encodes the state as "Static" or "Motion".
func (s State) MarshalText() ([]byte, error) {
	switch s {
	case Static, Motion:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("unknown motion state %d", uint8(s))
	}
}

// UnmarshalText accepts the strings produced by MarshalText.
func (s *State) UnmarshalText(b []byte) error {
	st, err := ParseState(string(b))
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// ParseState converts "Static" or "Motion" into a State.
func ParseState(v string) (State, error) {
	switch v {
	case "Static":
		return Static, nil
	case "Motion":
		return Motion, nil
	default:
		return Static, fmt.Errorf("unknown motion state %q", v)
	}
}
