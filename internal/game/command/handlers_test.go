package command

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/roomshelper/internal/game/hazard"
	"github.com/cory-johannsen/roomshelper/internal/game/locator"
	"github.com/cory-johannsen/roomshelper/internal/game/room"
	"github.com/cory-johannsen/roomshelper/internal/game/survey"
	"github.com/cory-johannsen/roomshelper/internal/observability"
	"github.com/cory-johannsen/roomshelper/internal/voxel"
)

type fakeClient struct {
	commands  []string
	flySpeed  float64
	spectator bool
	err       error
}

func (c *fakeClient) RunCommand(line string) error {
	c.commands = append(c.commands, line)
	return c.err
}

func (c *fakeClient) SetFlySpeed(speed float64) error {
	c.flySpeed = speed
	return c.err
}

func (c *fakeClient) EnterSpectator() (bool, error) {
	c.spectator = true
	return true, c.err
}

type fakeRooms struct{ cur *room.Descriptor }

func (f *fakeRooms) Current() *room.Descriptor { return f.cur }

type fakePlayer struct{ p locator.Point }

func (f *fakePlayer) PlayerPosition() locator.Point { return f.p }

type fakeSession struct{ host string }

func (f *fakeSession) Host() string { return f.host }

type fakeExporter struct {
	calls   int
	err     error
	keys    map[string][]string
	listErr error
}

func (f *fakeExporter) Exports(_ context.Context, roomID string) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.keys[roomID], nil
}

func (f *fakeExporter) Export(_ context.Context, d *room.Descriptor) (survey.ExportResult, error) {
	f.calls++
	if f.err != nil {
		return survey.ExportResult{}, f.err
	}
	return survey.ExportResult{Key: d.FileKey(), Elapsed: 42 * time.Millisecond}, nil
}

type harness struct {
	env      *Env
	reg      *Registry
	client   *fakeClient
	rooms    *fakeRooms
	player   *fakePlayer
	session  *fakeSession
	exporter *fakeExporter
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cat, err := room.NewCatalog([]room.ManifestEntry{
		{IDs: []string{"-200,-200", "-104,-40"}, Shape: room.Shape1x1, Name: "Small Room", RoomID: "1"},
		{IDs: []string{"-168,-200"}, Shape: room.Shape1x2, Name: "Long Hall", RoomID: "2"},
		{IDs: []string{"-8,-8"}, Shape: room.Shape1x1, Name: "small room", RoomID: "3"},
	})
	require.NoError(t, err)
	h := &harness{
		reg:      DefaultRegistry(),
		client:   &fakeClient{},
		rooms:    &fakeRooms{},
		player:   &fakePlayer{},
		session:  &fakeSession{host: "localhost"},
		exporter: &fakeExporter{},
	}
	h.env = &Env{
		Catalog:     cat,
		Rooms:       h.rooms,
		Player:      h.player,
		Session:     h.session,
		TrackedHost: "localhost",
		Exporter:    h.exporter,
		Tool:        hazard.NewTool(observability.NewMetrics(), zap.NewNop()),
		Client:      h.client,
		Overlay:     func() []string { return []string{"You are in:", h.rooms.cur.Name, string(h.rooms.cur.Shape)} },
		Logger:      zap.NewNop(),
	}
	return h
}

func (h *harness) run(line string) []string {
	return Execute(context.Background(), h.env, h.reg, line)
}

func TestTpRoom_Teleports(t *testing.T) {
	h := newHarness(t)
	lines := h.run("/tproom small_room 1")
	assert.Equal(t, []string{"Ids: -200,-200 | -104,-40 | -8,-8"}, lines)
	assert.Equal(t, []string{"tp @p -104 100 -40"}, h.client.commands)
}

func TestTpRoom_IndexWrapsAndDefaults(t *testing.T) {
	h := newHarness(t)
	h.run("/tproom SMALL_ROOM 4")
	h.run("/tproom small_room x")
	h.run("/tproom small_room -1")
	h.run("/tproom small_room")
	assert.Equal(t, []string{
		"tp @p -104 100 -40",
		"tp @p -200 100 -200",
		"tp @p -8 100 -8",
		"tp @p -200 100 -200",
	}, h.client.commands)
}

func TestTpRoom_NotFound(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, []string{"Room not found!"}, h.run("/tproom attic"))
	assert.Empty(t, h.client.commands)
}

func TestTpRoom_ClientFailure(t *testing.T) {
	h := newHarness(t)
	h.client.err = errors.New("disconnected")
	lines := h.run("/tproom long_hall")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "disconnected")
}

func TestCompleteTpRoom(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, []string{"small_room", "long_hall"}, Complete(h.env, h.reg, "/tproom "))
	assert.Equal(t, []string{"long_hall"}, Complete(h.env, h.reg, "/tproom LO"))
	assert.Equal(t, []string{"tproom"}, Complete(h.env, h.reg, "/tp"))
	assert.Equal(t, []string{"save", "delete", "ticks", "pause"}, Complete(h.env, h.reg, "/crusher s"))
	assert.Len(t, Complete(h.env, h.reg, "/rh "), 5)
	assert.Nil(t, Complete(h.env, h.reg, "/nope x"))
}

func TestExportRoom(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, []string{"No room!"}, h.run("/exportroom"))
	assert.Equal(t, 0, h.exporter.calls)

	h.rooms.cur, _ = h.env.Catalog.Lookup("-200,-200")
	assert.Equal(t, []string{"Export took 42ms"}, h.run("/exportroom"))

	h.exporter.err = survey.ErrEmptyColumn
	lines := h.run("/exportroom")
	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "Export failed"))
}

func TestExportRoom_List(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, []string{"No room!"}, h.run("/exportroom list"))

	h.rooms.cur, _ = h.env.Catalog.Lookup("-200,-200")
	assert.Equal(t, []string{"No exports for room 1"}, h.run("/exportroom list"))

	h.exporter.keys = map[string][]string{"1": {"1,small_room,-104,-40", "1,small_room,-200,-200"}}
	assert.Equal(t,
		[]string{"Exports of room 1: 1,small_room,-104,-40 | 1,small_room,-200,-200"},
		h.run("/exportroom list"),
	)
	assert.Equal(t, 0, h.exporter.calls, "listing does not scan")

	h.exporter.listErr = errors.New("disk gone")
	assert.Equal(t, []string{"Listing exports failed: disk gone"}, h.run("/exportroom list"))
	assert.Equal(t, []string{"list"}, Complete(h.env, h.reg, "/exportroom l"))
}

func TestCrusher_FullFlow(t *testing.T) {
	h := newHarness(t)
	h.rooms.cur, _ = h.env.Catalog.Lookup("-200,-200")

	assert.Equal(t, []string{"No crusher set!"}, h.run("/crusher save"))
	assert.Equal(t, []string{"Click first point..."}, h.run("/crusher"))

	tool := h.env.Tool
	step, _ := tool.HandleInteraction(voxel.Pos{X: -190, Y: 70, Z: -195})
	assert.Equal(t, []string{"Set second point..."}, DescribeStep(step, tool.Draft()))
	step, _ = tool.HandleInteraction(voxel.Pos{X: -190, Y: 72, Z: -192})
	desc := DescribeStep(step, tool.Draft())
	require.Len(t, desc, 2)
	assert.Contains(t, desc[0], `"width": 4`)
	assert.Contains(t, desc[0], `"max_length": null`)
	tool.HandleInteraction(voxel.Pos{X: -180, Y: 70, Z: -195})

	assert.Equal(t, []string{
		`Key "tick_per_block" is null.`,
		`Key "pause_duration" is null.`,
		"Null values present! Set these before saving.",
	}, h.run("/crusher save"))

	assert.Equal(t, []string{"Invalid tick amount"}, h.run("/crusher ticks -2"))
	assert.Equal(t, []string{"Invalid tick amount"}, h.run("/crusher pause"))
	assert.Equal(t, []string{"Set current crusher's ticks per block to 2"}, h.run("/crusher ticks 2"))
	assert.Equal(t, []string{"Set current crusher's pause duration to 8"}, h.run("/crusher pause 8"))
	assert.Equal(t, []string{"Added crusher entry to room. Do /exportroom to save it."}, h.run("/crusher save"))
	require.Len(t, h.rooms.cur.Crushers, 1)

	assert.Equal(t, []string{"Deleted crusher. Do /exportroom to save."}, h.run("/crusher delete"))
	assert.Equal(t, []string{"Nothing to delete!"}, h.run("/crusher delete"))
}

func TestCrusher_SaveWithoutRoom(t *testing.T) {
	h := newHarness(t)
	h.run("/crusher")
	assert.Equal(t, []string{"No room!"}, h.run("/crusher save"))
	assert.Equal(t, []string{"Reset current crusher."}, h.run("/crusher delete"))
	assert.Equal(t, []string{"No room!"}, h.run("/crusher delete"))
}

func TestRoomsHelper(t *testing.T) {
	h := newHarness(t)
	assert.Nil(t, h.run("/rh speedboots"))
	assert.Equal(t, []string{SpeedBootsCommand}, h.client.commands)

	assert.Equal(t, []string{"Fly speed set to 0.3"}, h.run("/roomshelper flyspeed 0.3"))
	assert.Equal(t, 0.3, h.client.flySpeed)
	assert.Equal(t, []string{"Invalid fly speed"}, h.run("/rh flyspeed fast"))
	assert.Equal(t, []string{"true"}, h.run("/rh sp"))
}

func TestRoomsHelper_RemoteIgnoresLocalOnly(t *testing.T) {
	h := newHarness(t)
	h.session.host = "play.example.net"
	assert.Nil(t, h.run("/rh flyspeed 0.3"))
	assert.Nil(t, h.run("/rh sp"))
	assert.Zero(t, h.client.flySpeed)
	assert.False(t, h.client.spectator)
}

func TestWhere(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, []string{"No room!"}, h.run("/where"))
	h.rooms.cur, _ = h.env.Catalog.Lookup("-168,-200")
	assert.Equal(t, []string{"You are in:", "Long Hall", "1x2"}, h.run("where"))
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, []string{"Unknown command: look"}, h.run("/look"))
	assert.Nil(t, h.run("   "))
}

func TestHelpListsEveryCommand(t *testing.T) {
	h := newHarness(t)
	assert.Len(t, h.run("/help"), len(BuiltinCommands()))
}

func TestPropertyTpRoomIndexAlwaysInRange(t *testing.T) {
	h := newHarness(t)
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(-1000, 1000).Draw(rt, "index")
		h.client.commands = nil
		HandleTpRoom(h.env, []string{"small_room", strconv.Itoa(n)})
		if len(h.client.commands) != 1 {
			rt.Fatalf("index %d issued %d commands", n, len(h.client.commands))
		}
	})
}
