// Package addon wires the room catalog, locator, survey and hazard tool to
// the game client: chat commands, block clicks, per-tick updates and the
// render frame.
package addon

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/cory-johannsen/roomshelper/internal/game/command"
	"github.com/cory-johannsen/roomshelper/internal/game/hazard"
	"github.com/cory-johannsen/roomshelper/internal/game/locator"
	"github.com/cory-johannsen/roomshelper/internal/game/room"
	"github.com/cory-johannsen/roomshelper/internal/game/survey"
	"github.com/cory-johannsen/roomshelper/internal/observability"
	"github.com/cory-johannsen/roomshelper/internal/voxel"
)

// Game is the client surface the add-on consumes.
type Game interface {
	locator.PositionSource
	locator.Session
	command.Client
	// LookingAt returns the block the player targets, if any.
	LookingAt() (voxel.Pos, bool)
}

// Chat receives lines to show the player.
type Chat interface {
	Chat(line string)
}

// Deps are the collaborators of an Addon.
type Deps struct {
	Catalog     *room.Catalog
	Survey      *survey.Service
	Game        Game
	Chat        Chat
	TrackedHost string
	Metrics     *observability.Metrics
	Logger      *zap.Logger
}

// Addon is the add-on root. All methods must run on the event loop goroutine.
type Addon struct {
	catalog  *room.Catalog
	state    *locator.State
	locator  *locator.Locator
	survey   *survey.Service
	tool     *hazard.Tool
	registry *command.Registry
	env      *command.Env
	game     Game
	chat     Chat
	logger   *zap.Logger

	rendering bool
}

// New builds an Addon and registers its render hook on the locator.
//
// Precondition: every field of deps must be set.
func New(deps Deps) *Addon {
	a := &Addon{
		catalog:  deps.Catalog,
		state:    locator.NewState(),
		survey:   deps.Survey,
		tool:     hazard.NewTool(deps.Metrics, deps.Logger.Named("hazard")),
		registry: command.DefaultRegistry(),
		game:     deps.Game,
		chat:     deps.Chat,
		logger:   deps.Logger,
	}
	a.locator = locator.NewLocator(
		deps.Catalog,
		a.state,
		locator.ResolverFunc(a.resolve),
		deps.Game,
		deps.Game,
		deps.TrackedHost,
		deps.Metrics,
		deps.Logger.Named("locator"),
	)
	a.env = &command.Env{
		Catalog:     deps.Catalog,
		Rooms:       a.state,
		Player:      deps.Game,
		Session:     deps.Game,
		TrackedHost: deps.TrackedHost,
		Exporter:    deps.Survey,
		Tool:        a.tool,
		Client:      deps.Game,
		Overlay:     a.overlay,
		Logger:      deps.Logger.Named("command"),
	}
	a.locator.OnChange(a.onRoomChange)
	return a
}

// Attach registers the per-tick locator update on loop.
func (a *Addon) Attach(loop *Loop) {
	loop.OnTick(a.Tick)
}

// Tick runs one locator update.
func (a *Addon) Tick(ctx context.Context) {
	a.locator.Tick(ctx)
}

// Current returns the current room, or nil.
func (a *Addon) Current() *room.Descriptor {
	return a.state.Current()
}

// OnRoomChange registers an observer of room changes.
func (a *Addon) OnRoomChange(fn locator.Observer) (unsubscribe func()) {
	return a.locator.OnChange(fn)
}

// HandleCommand runs a slash command and sends its output to chat.
func (a *Addon) HandleCommand(ctx context.Context, line string) {
	for _, l := range command.Execute(ctx, a.env, a.registry, line) {
		a.chat.Chat(l)
	}
}

// Complete returns tab completions for a partial command line.
func (a *Addon) Complete(line string) []string {
	return command.Complete(a.env, a.registry, line)
}

// HandleInteraction offers a right-click on block b to the crusher tool.
//
// Postcondition: Returns true if the click was consumed and the game must
// suppress its default handling.
func (a *Addon) HandleInteraction(b voxel.Pos) bool {
	step, consumed := a.tool.HandleInteraction(b)
	if !consumed {
		return false
	}
	for _, l := range command.DescribeStep(step, a.tool.Draft()) {
		a.chat.Chat(l)
	}
	return true
}

// Frame returns what to draw this frame. The overlay and door boxes are
// present only while a room is current.
func (a *Addon) Frame() Frame {
	var f Frame
	if c, ok := a.tool.Corner1(); ok {
		x, y, z := float64(c.X), float64(c.Y), float64(c.Z)
		f.Boxes = append(f.Boxes, newBox(BoxPendingCorner, x, y, z, x+1, y+1, z+1))
	}
	cur := a.state.Current()
	if cur == nil {
		return f
	}
	if a.rendering {
		f.Overlay = a.overlay()
		f.Boxes = append(f.Boxes, DoorBoxes(cur)...)
	}
	f.Boxes = append(f.Boxes, DraftBoxes(a.tool.Draft())...)
	for _, c := range cur.Crushers {
		f.Boxes = append(f.Boxes, CrusherBoxes(cur, c)...)
	}
	return f
}

func (a *Addon) overlay() []string {
	cur := a.state.Current()
	if cur == nil {
		return nil
	}
	var target *voxel.Pos
	if p, ok := a.game.LookingAt(); ok {
		target = &p
	}
	return OverlayLines(cur, target)
}

func (a *Addon) onRoomChange(next, _ *room.Descriptor) {
	a.rendering = next != nil
}

// resolve upgrades a catalog stub and tells the player where it came from.
func (a *Addon) resolve(ctx context.Context, id string) (*room.Descriptor, error) {
	res, err := a.survey.ImportOrDefault(ctx, id)
	switch {
	case errors.Is(err, room.ErrUnknownRoom):
		a.chat.Chat("Could not find room!")
		return nil, err
	case err != nil:
		a.chat.Chat("Could not scan room: " + err.Error())
		return nil, err
	case res.Source == survey.SourceDefault:
		a.chat.Chat("File does not exist! creating default data.")
	default:
		a.chat.Chat("Imported successfully")
	}
	return res.Room, nil
}
