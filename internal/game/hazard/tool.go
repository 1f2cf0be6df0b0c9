// Package hazard captures crusher geometry from block clicks and attaches
// finished crushers to rooms.
package hazard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/roomshelper/internal/game/room"
	"github.com/cory-johannsen/roomshelper/internal/observability"
	"github.com/cory-johannsen/roomshelper/internal/voxel"
)

var (
	// ErrNoDraft is returned when an operation needs a capture in progress.
	ErrNoDraft = errors.New("no crusher set")
	// ErrNoRoom is returned when an operation needs a current room.
	ErrNoRoom = errors.New("no room")
	// ErrNothingToDelete is returned when the current room has no crushers.
	ErrNothingToDelete = errors.New("nothing to delete")
	// ErrInvalidTicks is returned for negative tick counts.
	ErrInvalidTicks = errors.New("invalid tick amount")
)

// Phase is the capture state of the Tool.
type Phase int

const (
	// Idle consumes no clicks.
	Idle Phase = iota
	// AwaitingCorner1 waits for the first footprint corner.
	AwaitingCorner1
	// AwaitingCorner2 waits for the opposite footprint corner.
	AwaitingCorner2
	// AwaitingTravelClick waits for the click that sets travel length.
	AwaitingTravelClick
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case AwaitingCorner1:
		return "awaiting corner 1"
	case AwaitingCorner2:
		return "awaiting corner 2"
	case AwaitingTravelClick:
		return "awaiting travel click"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Step names what a consumed click recorded.
type Step int

const (
	StepCorner1 Step = iota + 1
	StepFootprint
	StepTravel
)

// Draft is a crusher under construction. Nil fields are unset. Position is
// world-absolute until saved.
type Draft struct {
	CaptureID     uuid.UUID       `json:"-"`
	Position      *[3]int         `json:"position"`
	Direction     *room.Direction `json:"direction"`
	Width         *int            `json:"width"`
	Height        *int            `json:"height"`
	MaxLength     *int            `json:"max_length"`
	TickPerBlock  *int            `json:"tick_per_block"`
	PauseDuration *int            `json:"pause_duration"`
}

// Missing returns the names of unset fields in declaration order.
func (d *Draft) Missing() []string {
	var out []string
	if d.Position == nil {
		out = append(out, "position")
	}
	if d.Direction == nil {
		out = append(out, "direction")
	}
	if d.Width == nil {
		out = append(out, "width")
	}
	if d.Height == nil {
		out = append(out, "height")
	}
	if d.MaxLength == nil {
		out = append(out, "max_length")
	}
	if d.TickPerBlock == nil {
		out = append(out, "tick_per_block")
	}
	if d.PauseDuration == nil {
		out = append(out, "pause_duration")
	}
	return out
}

// IncompleteError lists the draft fields that block saving.
type IncompleteError struct {
	Fields []string
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("crusher incomplete: %s unset", strings.Join(e.Fields, ", "))
}

// Tool is the interactive crusher capture state machine.
//
// Tool is not safe for concurrent use.
type Tool struct {
	phase   Phase
	draft   *Draft
	corner1 *voxel.Pos
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewTool returns an idle Tool.
func NewTool(metrics *observability.Metrics, logger *zap.Logger) *Tool {
	return &Tool{metrics: metrics, logger: logger}
}

// Phase returns the capture phase.
func (t *Tool) Phase() Phase { return t.phase }

// Draft returns the crusher under construction, or nil.
func (t *Tool) Draft() *Draft { return t.draft }

// Corner1 returns the first recorded corner while the second is awaited.
func (t *Tool) Corner1() (voxel.Pos, bool) {
	if t.corner1 == nil {
		return voxel.Pos{}, false
	}
	return *t.corner1, true
}

// Begin discards any draft and starts a new capture.
//
// Postcondition: Phase is AwaitingCorner1 and Draft has every field unset.
func (t *Tool) Begin() *Draft {
	t.draft = &Draft{CaptureID: uuid.New()}
	t.corner1 = nil
	t.phase = AwaitingCorner1
	t.logger.Debug("crusher capture started", zap.String("capture_id", t.draft.CaptureID.String()))
	return t.draft
}

// HandleInteraction feeds a targeted block to the capture.
//
// Postcondition: Returns consumed=false in Idle; the caller must then let the
// game handle the click. Otherwise the click is recorded and must be suppressed.
func (t *Tool) HandleInteraction(b voxel.Pos) (step Step, consumed bool) {
	switch t.phase {
	case AwaitingCorner1:
		p := b
		t.corner1 = &p
		t.phase = AwaitingCorner2
		return StepCorner1, true
	case AwaitingCorner2:
		t.setFootprint(*t.corner1, b)
		t.corner1 = nil
		t.phase = AwaitingTravelClick
		return StepFootprint, true
	case AwaitingTravelClick:
		t.setTravel(b)
		t.phase = Idle
		return StepTravel, true
	default:
		return 0, false
	}
}

func (t *Tool) setFootprint(a, b voxel.Pos) {
	pos := [3]int{min(a.X, b.X), min(a.Y, b.Y), min(a.Z, b.Z)}
	dx := abs(a.X - b.X)
	dz := abs(a.Z - b.Z)
	width := max(dx, dz) + 1
	height := abs(a.Y-b.Y) + 1

	// The crusher spans its longer horizontal extent and travels across it.
	dir := room.North
	if dx <= dz {
		dir = room.East
	}
	t.draft.Position = &pos
	t.draft.Width = &width
	t.draft.Height = &height
	t.draft.Direction = &dir
}

// setTravel points the crusher toward the click and records the distance.
func (t *Tool) setTravel(b voxel.Pos) {
	pos := *t.draft.Position
	dir := *t.draft.Direction
	var length int
	if dir == room.East {
		if b.X < pos[0] {
			dir = room.West
		}
		length = abs(pos[0] - b.X)
	} else {
		if b.Z > pos[2] {
			dir = room.South
		}
		length = abs(pos[2] - b.Z)
	}
	t.draft.Direction = &dir
	t.draft.MaxLength = &length
}

// SetTicks sets the draft's ticks per block.
//
// Postcondition: Returns ErrInvalidTicks for n < 0 or ErrNoDraft without a draft.
func (t *Tool) SetTicks(n int) error {
	if n < 0 {
		return ErrInvalidTicks
	}
	if t.draft == nil {
		return ErrNoDraft
	}
	t.draft.TickPerBlock = &n
	return nil
}

// SetPause sets the draft's pause duration.
//
// Postcondition: Returns ErrInvalidTicks for n < 0 or ErrNoDraft without a draft.
func (t *Tool) SetPause(n int) error {
	if n < 0 {
		return ErrInvalidTicks
	}
	if t.draft == nil {
		return ErrNoDraft
	}
	t.draft.PauseDuration = &n
	return nil
}

// Save appends the completed draft to current with its position rebased to
// the room origin on X and Z.
//
// Precondition: current is the player's current room, or nil.
// Postcondition: On success the draft is cleared and the Tool is Idle. On
// error the draft is kept for correction.
func (t *Tool) Save(current *room.Descriptor) (room.Crusher, error) {
	if t.draft == nil {
		return room.Crusher{}, ErrNoDraft
	}
	if current == nil {
		return room.Crusher{}, ErrNoRoom
	}
	if missing := t.draft.Missing(); len(missing) > 0 {
		return room.Crusher{}, &IncompleteError{Fields: missing}
	}

	d := t.draft
	pos := *d.Position
	c := room.Crusher{
		Position:      [3]int{pos[0] - current.X, pos[1], pos[2] - current.Z},
		Direction:     *d.Direction,
		Width:         *d.Width,
		Height:        *d.Height,
		MaxLength:     *d.MaxLength,
		TickPerBlock:  *d.TickPerBlock,
		PauseDuration: *d.PauseDuration,
	}
	current.Crushers = append(current.Crushers, c)
	t.reset()
	t.metrics.Hazards.Inc()
	t.logger.Info("crusher saved",
		zap.String("capture_id", d.CaptureID.String()),
		zap.String("corner_id", current.ID),
		zap.Stringer("direction", c.Direction),
	)
	return c, nil
}

// DeleteResult reports what Delete removed.
type DeleteResult struct {
	// Reset is set when an in-progress draft was discarded.
	Reset bool
	// Index is the removed crusher's position in the room, when Reset is false.
	Index int
	// Crusher is the removed crusher, when Reset is false.
	Crusher room.Crusher
}

// Delete discards the draft if one exists. Otherwise it removes the crusher of
// current nearest the player, measuring X and Z room-local and Y absolute.
// Ties go to the later crusher.
//
// Postcondition: Returns ErrNoRoom or ErrNothingToDelete when nothing can be removed.
func (t *Tool) Delete(current *room.Descriptor, px, py, pz float64) (DeleteResult, error) {
	if t.draft != nil {
		t.reset()
		return DeleteResult{Reset: true}, nil
	}
	if current == nil {
		return DeleteResult{}, ErrNoRoom
	}
	if len(current.Crushers) == 0 {
		return DeleteResult{}, ErrNothingToDelete
	}

	lx := px - float64(current.X)
	lz := pz - float64(current.Z)
	best := -1
	var bestDist float64
	for i, c := range current.Crushers {
		dx := lx - float64(c.Position[0])
		dy := py - float64(c.Position[1])
		dz := lz - float64(c.Position[2])
		dist := dx*dx + dy*dy + dz*dz
		if best >= 0 && dist > bestDist {
			continue
		}
		best, bestDist = i, dist
	}

	removed := current.Crushers[best]
	current.Crushers = append(current.Crushers[:best:best], current.Crushers[best+1:]...)
	return DeleteResult{Index: best, Crusher: removed}, nil
}

func (t *Tool) reset() {
	t.draft = nil
	t.corner1 = nil
	t.phase = Idle
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
