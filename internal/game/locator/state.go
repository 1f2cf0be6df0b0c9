// Package locator tracks which catalogued room contains the player.
package locator

import "github.com/cory-johannsen/roomshelper/internal/game/room"

// State holds the current room. Only the Locator writes it; every other
// component reads it through Current.
type State struct {
	current *room.Descriptor
}

// NewState returns a State with no current room.
func NewState() *State {
	return &State{}
}

// Current returns the room the player is in, or nil.
func (s *State) Current() *room.Descriptor {
	return s.current
}

// Reader is the read-only view of State handed to consumers.
type Reader interface {
	Current() *room.Descriptor
}
