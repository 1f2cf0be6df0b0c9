package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/roomshelper/internal/addon"
	"github.com/cory-johannsen/roomshelper/internal/game/locator"
	"github.com/cory-johannsen/roomshelper/internal/game/room"
	"github.com/cory-johannsen/roomshelper/internal/storage"
	"github.com/cory-johannsen/roomshelper/internal/voxel"
)

// consoleGame stands in for the game client. It is only touched from the
// event loop goroutine.
type consoleGame struct {
	out       io.Writer
	host      string
	pos       locator.Point
	target    *voxel.Pos
	flySpeed  float64
	spectator bool
}

func newConsoleGame(host string, out io.Writer) *consoleGame {
	return &consoleGame{out: out, host: host, pos: locator.Point{Y: 100}}
}

func (g *consoleGame) PlayerPosition() locator.Point { return g.pos }

func (g *consoleGame) Host() string { return g.host }

func (g *consoleGame) LookingAt() (voxel.Pos, bool) {
	if g.target == nil {
		return voxel.Pos{}, false
	}
	return *g.target, true
}

func (g *consoleGame) Chat(line string) {
	fmt.Fprintf(g.out, "[chat] %s\n", line)
}

// RunCommand executes the subset of game commands the add-on issues: "tp @p
// x y z" moves the player; anything else is echoed.
func (g *consoleGame) RunCommand(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 5 && fields[0] == "tp" && fields[1] == "@p" {
		p, err := parsePoint(fields[2:])
		if err != nil {
			return fmt.Errorf("tp: %w", err)
		}
		g.pos = p
	}
	fmt.Fprintf(g.out, "[game] /%s\n", line)
	return nil
}

func (g *consoleGame) SetFlySpeed(v float64) error {
	g.flySpeed = v
	return nil
}

func (g *consoleGame) EnterSpectator() (bool, error) {
	g.spectator = !g.spectator
	return g.spectator, nil
}

func parsePoint(fields []string) (locator.Point, error) {
	if len(fields) != 3 {
		return locator.Point{}, fmt.Errorf("expected 3 coordinates, got %d", len(fields))
	}
	var v [3]float64
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return locator.Point{}, fmt.Errorf("coordinate %q: %w", f, err)
		}
		v[i] = n
	}
	return locator.Point{X: v[0], Y: v[1], Z: v[2]}, nil
}

// parseBlock returns the block containing the given point.
func parseBlock(fields []string) (voxel.Pos, error) {
	p, err := parsePoint(fields)
	if err != nil {
		return voxel.Pos{}, err
	}
	return voxel.Pos{
		X: int(math.Floor(p.X)),
		Y: int(math.Floor(p.Y)),
		Z: int(math.Floor(p.Z)),
	}, nil
}

// pasteExport writes the stored export under key back into world at its
// recorded origin and bottom.
func pasteExport(ctx context.Context, store storage.RoomStore, world *voxel.Memory, key string) (*room.Descriptor, error) {
	d, err := store.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if !d.Resolved() || d.BlockData == "" {
		return nil, fmt.Errorf("export %q has no block data", key)
	}
	origin := voxel.Pos{X: d.X, Y: *d.Bottom, Z: d.Z}
	if err := world.Paste(origin, d.Width, d.Length, d.BlockData); err != nil {
		return nil, fmt.Errorf("pasting %q: %w", key, err)
	}
	return d, nil
}

// console turns terminal lines into add-on events posted to the loop.
type console struct {
	in     io.Reader
	loop   *addon.Loop
	addon  *addon.Addon
	game   *consoleGame
	store  storage.RoomStore
	world  *voxel.Memory
	logger *zap.Logger
}

func newConsole(in io.Reader, loop *addon.Loop, a *addon.Addon, game *consoleGame, store storage.RoomStore, world *voxel.Memory, logger *zap.Logger) *console {
	return &console{in: in, loop: loop, addon: a, game: game, store: store, world: world, logger: logger}
}

// Run reads lines until EOF or ctx is cancelled. EOF ends the process.
func (c *console) Run(ctx context.Context) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(c.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errc:
			return err
		case line := <-lines:
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if err := c.loop.Post(ctx, func(ctx context.Context) { c.handle(ctx, line) }); err != nil {
				return nil
			}
		}
	}
}

func (c *console) handle(ctx context.Context, line string) {
	if strings.HasPrefix(line, "/") {
		c.addon.HandleCommand(ctx, line)
		return
	}
	fields := strings.Fields(line)
	var err error
	switch fields[0] {
	case "pos":
		c.game.pos, err = parsePoint(fields[1:])
	case "look":
		var p voxel.Pos
		if p, err = parseBlock(fields[1:]); err == nil {
			c.game.target = &p
		}
	case "click":
		var p voxel.Pos
		if p, err = parseBlock(fields[1:]); err == nil && !c.addon.HandleInteraction(p) {
			fmt.Fprintln(c.game.out, "[game] click not consumed")
		}
	case "paste":
		if len(fields) < 2 {
			err = errors.New("usage: paste <key>")
			break
		}
		var d *room.Descriptor
		if d, err = pasteExport(ctx, c.store, c.world, fields[1]); err == nil {
			fmt.Fprintf(c.game.out, "[game] pasted %s at %d,%d,%d\n", fields[1], d.X, *d.Bottom, d.Z)
		}
	case "host":
		if len(fields) > 1 {
			c.game.host = fields[1]
		}
	case "tab":
		fmt.Fprintln(c.game.out, strings.Join(c.addon.Complete(strings.TrimPrefix(line, "tab ")), " "))
	case "frame":
		c.printFrame()
	default:
		err = fmt.Errorf("unknown input %q", fields[0])
	}
	if err != nil {
		c.logger.Warn("console input rejected", zap.String("line", line), zap.Error(err))
	}
}

func (c *console) printFrame() {
	f := c.addon.Frame()
	for _, l := range f.Overlay {
		fmt.Fprintf(c.game.out, "[hud] %s\n", l)
	}
	for _, b := range f.Boxes {
		fmt.Fprintf(c.game.out, "[box] kind=%d min=%v max=%v %s\n", b.Kind, b.Min, b.Max, strings.Join(b.Labels, " / "))
	}
}
