package command

import (
	"context"

	"go.uber.org/zap"

	"github.com/cory-johannsen/roomshelper/internal/game/hazard"
	"github.com/cory-johannsen/roomshelper/internal/game/locator"
	"github.com/cory-johannsen/roomshelper/internal/game/room"
	"github.com/cory-johannsen/roomshelper/internal/game/survey"
)

// Client is the game client surface commands act on.
type Client interface {
	// RunCommand sends a server command line without its leading slash.
	RunCommand(line string) error
	// SetFlySpeed sets the local player's flying speed.
	SetFlySpeed(speed float64) error
	// EnterSpectator switches the local player to spectator mode and reports
	// whether the switch took effect.
	EnterSpectator() (bool, error)
}

// Exporter scans and saves a room and lists saved exports.
type Exporter interface {
	Export(ctx context.Context, d *room.Descriptor) (survey.ExportResult, error)
	Exports(ctx context.Context, roomID string) ([]string, error)
}

// Env is everything command handlers may read or act on.
type Env struct {
	Catalog     *room.Catalog
	Rooms       locator.Reader
	Player      locator.PositionSource
	Session     locator.Session
	TrackedHost string
	Exporter    Exporter
	Tool        *hazard.Tool
	Client      Client
	// Overlay returns the overlay lines for the current room.
	Overlay func() []string
	Logger  *zap.Logger
}

// isLocal reports whether the client is connected to the tracked host.
func (e *Env) isLocal() bool {
	return e.Session.Host() == e.TrackedHost
}
