// Package storage defines persistence for exported room descriptors.
package storage

import (
	"context"
	"errors"

	"github.com/cory-johannsen/roomshelper/internal/game/room"
)

// ErrNotFound is returned when no export exists for a key.
var ErrNotFound = errors.New("room export not found")

// RoomStore persists resolved room descriptors keyed by Descriptor.FileKey.
type RoomStore interface {
	// Load returns the export stored under key, or ErrNotFound.
	Load(ctx context.Context, key string) (*room.Descriptor, error)
	// Save writes d under d.FileKey(), replacing any previous export.
	Save(ctx context.Context, d *room.Descriptor) error
	// ListByRoomID returns the keys of every stored instance of roomID.
	ListByRoomID(ctx context.Context, roomID string) ([]string, error)
}
