package addon

import (
	"fmt"

	"github.com/cory-johannsen/roomshelper/internal/game/hazard"
	"github.com/cory-johannsen/roomshelper/internal/game/room"
	"github.com/cory-johannsen/roomshelper/internal/voxel"
)

// BoxKind tells a renderer how to draw a box.
type BoxKind int

const (
	BoxDoor BoxKind = iota
	BoxPendingCorner
	BoxCrusherAnchor
	BoxCrusherBody
	BoxCrusherTravel
)

// Vec3 is a world-space point.
type Vec3 struct {
	X, Y, Z float64
}

// Box is an axis-aligned world-space box with Min <= Max on every axis.
type Box struct {
	Kind BoxKind
	Min  Vec3
	Max  Vec3
	// Labels are drawn stacked at the box centre, top first.
	Labels []string
}

func newBox(kind BoxKind, x0, y0, z0, x1, y1, z1 float64) Box {
	return Box{
		Kind: kind,
		Min:  Vec3{min(x0, x1), min(y0, y1), min(z0, z1)},
		Max:  Vec3{max(x0, x1), max(y0, y1), max(z0, z1)},
	}
}

// Frame is what the renderer draws this frame.
type Frame struct {
	Overlay []string
	Boxes   []Box
}

// OverlayLines returns the HUD lines for d. When the player targets a block,
// its offset from the room origin is appended.
func OverlayLines(d *room.Descriptor, target *voxel.Pos) []string {
	lines := []string{"You are in:", d.Name, string(d.Shape)}
	if target != nil {
		lines = append(lines,
			fmt.Sprintf("dx: %d", target.X-d.X),
			fmt.Sprintf("dz: %d", target.Z-d.Z),
		)
	}
	return lines
}

// DoorBoxes returns one box per open door of d, centred on the door slot and
// spanning DoorHeight blocks from DoorBaseY.
func DoorBoxes(d *room.Descriptor) []Box {
	doors := d.DoorOpenings()
	out := make([]Box, 0, len(doors))
	x, z := float64(d.X), float64(d.Z)
	for _, door := range doors {
		dx, dz := float64(door.DX), float64(door.DZ)
		w, l := float64(door.Width), float64(door.Length)
		out = append(out, newBox(BoxDoor,
			x+dx-w/2+0.5, room.DoorBaseY, z+dz-l/2+0.5,
			x+dx+w/2+0.5, room.DoorBaseY+room.DoorHeight, z+dz+l/2+0.5,
		))
	}
	return out
}

// crusherShape is the subset of crusher fields that drive its boxes.
type crusherShape struct {
	origin    [3]int
	direction room.Direction
	width     int
	height    int
	maxLength int
	ticks     string
	pause     string
}

// CrusherBoxes returns the boxes for a saved crusher of d.
func CrusherBoxes(d *room.Descriptor, c room.Crusher) []Box {
	return crusherShape{
		origin:    [3]int{c.Position[0] + d.X, c.Position[1], c.Position[2] + d.Z},
		direction: c.Direction,
		width:     c.Width,
		height:    c.Height,
		maxLength: c.MaxLength,
		ticks:     fmt.Sprint(c.TickPerBlock),
		pause:     fmt.Sprint(c.PauseDuration),
	}.boxes()
}

// DraftBoxes returns the boxes for a crusher under construction. Draft
// positions are already world-absolute.
func DraftBoxes(dr *hazard.Draft) []Box {
	if dr == nil || dr.Position == nil {
		return nil
	}
	s := crusherShape{origin: *dr.Position, ticks: "null", pause: "null"}
	if dr.Direction != nil {
		s.direction = *dr.Direction
	}
	if dr.Width != nil {
		s.width = *dr.Width
	}
	if dr.Height != nil {
		s.height = *dr.Height
	}
	if dr.MaxLength != nil {
		s.maxLength = *dr.MaxLength
	}
	if dr.TickPerBlock != nil {
		s.ticks = fmt.Sprint(*dr.TickPerBlock)
	}
	if dr.PauseDuration != nil {
		s.pause = fmt.Sprint(*dr.PauseDuration)
	}
	return s.boxes()
}

func (s crusherShape) boxes() []Box {
	x0, y0, z0 := float64(s.origin[0]), float64(s.origin[1]), float64(s.origin[2])
	out := []Box{newBox(BoxCrusherAnchor, x0, y0, z0, x0+1, y0+1, z0+1)}
	if s.width == 0 || s.height == 0 {
		return out
	}

	w, h := float64(s.width), float64(s.height)
	bx, bz := w, 1.0
	if s.direction.AlongX() {
		bx, bz = 1, w
	}
	out = append(out, newBox(BoxCrusherBody, x0, y0, z0, x0+bx, y0+h, z0+bz))
	if s.maxLength == 0 {
		return out
	}

	n := float64(s.maxLength)
	var tx, tz float64
	switch s.direction {
	case room.North:
		tx, tz = w, -n
	case room.East:
		tx, tz = n, w
	case room.South:
		tx, tz = w, n
	default:
		tx, tz = -n, w
	}
	travel := newBox(BoxCrusherTravel, x0, y0, z0, x0+tx, y0+h, z0+tz)
	travel.Labels = []string{
		"Crusher",
		"Ticks Per Block: " + s.ticks,
		"Pause Duration: " + s.pause,
	}
	return append(out, travel)
}
