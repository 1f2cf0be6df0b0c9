package room

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownRoom is returned when a corner identifier is absent from the catalog.
var ErrUnknownRoom = errors.New("room not found")

// Category is the dungeon room type tag.
type Category string

// Known room categories. Manifests may carry others; they are kept verbatim.
const (
	CategoryNormal   Category = "normal"
	CategoryPuzzle   Category = "puzzle"
	CategoryTrap     Category = "trap"
	CategoryFairy    Category = "fairy"
	CategoryEntrance Category = "entrance"
	CategoryBlood    Category = "blood"
	CategoryYellow   Category = "yellow"
	CategoryRare     Category = "rare"
	CategoryBoss     Category = "boss"
)

// Direction is the travel direction of a crusher.
type Direction int

// Cardinal travel directions, encoded as stored in exported room files.
const (
	North Direction = iota // -Z
	East                   // +X
	South                  // +Z
	West                   // -X
)

// String returns the lower-case direction name.
func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Offset returns the unit (dx, dz) step of the direction.
func (d Direction) Offset() (dx, dz int) {
	switch d {
	case North:
		return 0, -1
	case East:
		return 1, 0
	case South:
		return 0, 1
	case West:
		return -1, 0
	default:
		return 0, 0
	}
}

// AlongX reports whether the direction travels along the X axis.
func (d Direction) AlongX() bool {
	return d == East || d == West
}

// Crusher describes a moving-wall hazard inside a room. Position is relative to
// the owning room's origin on X and Z and absolute on Y.
type Crusher struct {
	Position      [3]int    `json:"position"`
	Direction     Direction `json:"direction"`
	Width         int       `json:"width"`
	Height        int       `json:"height"`
	MaxLength     int       `json:"max_length"`
	TickPerBlock  int       `json:"tick_per_block"`
	PauseDuration int       `json:"pause_duration"`
}

// Descriptor is one room instance in the catalog.
//
// A descriptor is a stub until it has been scanned or loaded from an export;
// resolved descriptors carry Height, Bottom and BlockData.
type Descriptor struct {
	// ID is the world-grid corner identifier, "x,z".
	ID string `json:"id"`
	// RoomID is the dungeon-layout identifier shared by every instance of the room.
	RoomID string `json:"room_id"`
	// X is the world X of the origin corner.
	X int `json:"x"`
	// Z is the world Z of the origin corner.
	Z int `json:"z"`
	// Name is the display name.
	Name string `json:"name"`
	// Type is the room category.
	Type Category `json:"type"`
	// Shape is the footprint template, possibly a 1x1 variant once resolved.
	Shape Shape `json:"shape"`
	// Width is the X extent derived from Shape.
	Width int `json:"width"`
	// Length is the Z extent derived from Shape.
	Length int `json:"length"`
	// Doors selects open door slots of a single-cell room. Empty means every slot.
	Doors string `json:"doors,omitempty"`
	// Height is top minus bottom of the scanned column. Nil on stubs.
	Height *int `json:"height,omitempty"`
	// Bottom is the lowest non-air Y of the scanned column. Nil on stubs.
	Bottom *int `json:"bottom,omitempty"`
	// BlockData is the uppercase hex voxel dump, empty until exported.
	BlockData string `json:"block_data"`
	// Crushers lists hazard annotations in insertion order.
	Crushers []Crusher `json:"crushers,omitempty"`
}

// Resolved reports whether the descriptor has scan-derived fields.
func (d *Descriptor) Resolved() bool {
	return d.Height != nil
}

// Contains reports whether the horizontal point (x, z) lies inside the room's
// closed bounding box.
func (d *Descriptor) Contains(x, z float64) bool {
	return float64(d.X) <= x && x <= float64(d.X+d.Width) &&
		float64(d.Z) <= z && z <= float64(d.Z+d.Length)
}

// DoorOpenings returns the open doors of the room. Only single-cell rooms
// honour the Doors bitstring; other shapes return every slot.
func (d *Descriptor) DoorOpenings() []Door {
	slots := d.Shape.DoorSlots()
	if d.Shape.IsSingleCell() && d.Doors != "" {
		return FilterDoors(slots, d.Doors)
	}
	return slots
}

// FileKey returns the export key "{room_id},{normalized_name},{id}".
func (d *Descriptor) FileKey() string {
	return fmt.Sprintf("%s,%s,%s", d.RoomID, NormalizeName(d.Name), d.ID)
}

// Clone returns a deep copy of d.
func (d *Descriptor) Clone() *Descriptor {
	out := *d
	if d.Height != nil {
		h := *d.Height
		out.Height = &h
	}
	if d.Bottom != nil {
		b := *d.Bottom
		out.Bottom = &b
	}
	if d.Crushers != nil {
		out.Crushers = make([]Crusher, len(d.Crushers))
		copy(out.Crushers, d.Crushers)
	}
	return &out
}

// Validate checks descriptor invariants.
//
// Postcondition: Returns nil if valid, or an error describing the first violation.
func (d *Descriptor) Validate() error {
	if d.ID == "" {
		return errors.New("room id must not be empty")
	}
	if d.Width <= 0 || d.Length <= 0 {
		return fmt.Errorf("room %q: footprint %dx%d must be positive", d.ID, d.Width, d.Length)
	}
	if (d.Height == nil) != (d.Bottom == nil) {
		return fmt.Errorf("room %q: height and bottom must be set together", d.ID)
	}
	return nil
}

// NormalizeName lower-cases name and replaces spaces with underscores.
func NormalizeName(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}

// ParseCornerID parses a "x,z" world-grid identifier.
//
// Postcondition: Returns the integer pair or a non-nil error.
func ParseCornerID(id string) (x, z int, err error) {
	xs, zs, ok := strings.Cut(id, ",")
	if !ok {
		return 0, 0, fmt.Errorf("corner id %q: expected \"x,z\"", id)
	}
	x, err = strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return 0, 0, fmt.Errorf("corner id %q: parsing x: %w", id, err)
	}
	z, err = strconv.Atoi(strings.TrimSpace(zs))
	if err != nil {
		return 0, 0, fmt.Errorf("corner id %q: parsing z: %w", id, err)
	}
	return x, z, nil
}
