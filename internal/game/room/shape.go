// Package room provides the dungeon room model: shapes, door layouts,
// room descriptors, the static manifest, and the room catalog.
package room

// Shape is a room footprint template.
type Shape string

// Base shapes as they appear in the manifest.
const (
	Shape1x1 Shape = "1x1"
	Shape1x2 Shape = "1x2"
	Shape1x3 Shape = "1x3"
	Shape1x4 Shape = "1x4"
	Shape2x2 Shape = "2x2"
	ShapeL   Shape = "L"
)

// Single-cell variants derived from a 1x1 room's door pattern.
const (
	Shape1x1End      Shape = "1x1_E"
	Shape1x1Straight Shape = "1x1_I"
	Shape1x1Triple   Shape = "1x1_3"
	Shape1x1Bend     Shape = "1x1_L"
	Shape1x1Cross    Shape = "1x1_X"
)

// AllShapes lists every known shape, base shapes first.
var AllShapes = []Shape{
	Shape1x1, Shape1x2, Shape1x3, Shape1x4, Shape2x2, ShapeL,
	Shape1x1End, Shape1x1Straight, Shape1x1Triple, Shape1x1Bend, Shape1x1Cross,
}

// DoorHeight is the vertical extent of every door opening.
const DoorHeight = 5

// DoorBaseY is the world Y coordinate of the bottom of every door opening.
const DoorBaseY = 69

// cell is the edge length of one grid cell; adjacent cells share a one-block gap.
const cell = 31

// Door is an opening in a room wall, relative to the room's origin corner.
type Door struct {
	// DX is the X offset of the door centre from the room origin.
	DX int
	// DZ is the Z offset of the door centre from the room origin.
	DZ int
	// Width is the extent along X.
	Width int
	// Length is the extent along Z.
	Length int
}

func doorNorth(dx int) Door      { return Door{DX: dx, DZ: -1, Width: 5, Length: 7} }
func doorEast(dx, dz int) Door  { return Door{DX: dx, DZ: dz, Width: 7, Length: 5} }
func doorSouth(dx, dz int) Door { return Door{DX: dx, DZ: dz, Width: 5, Length: 7} }
func doorWest(dz int) Door      { return Door{DX: -1, DZ: dz, Width: 7, Length: 5} }

var singleCellDoors = []Door{
	doorNorth(15),
	doorEast(31, 15),
	doorSouth(15, 31),
	doorWest(15),
}

var (
	oneByTwoDoors = []Door{
		doorNorth(15), doorNorth(47),
		doorEast(63, 15),
		doorSouth(47, 31), doorSouth(15, 31),
		doorWest(15),
	}
	oneByThreeDoors = []Door{
		doorNorth(15), doorNorth(47), doorNorth(79),
		doorEast(95, 15),
		doorSouth(79, 31), doorSouth(47, 31), doorSouth(15, 31),
		doorWest(15),
	}
	oneByFourDoors = []Door{
		doorNorth(15), doorNorth(47), doorNorth(79), doorNorth(111),
		doorEast(127, 15),
		doorSouth(111, 31), doorSouth(79, 31), doorSouth(47, 31), doorSouth(15, 31),
		doorWest(15),
	}
	twoByTwoDoors = []Door{
		doorNorth(15), doorNorth(47),
		doorEast(63, 15), doorEast(63, 47),
		doorSouth(47, 63), doorSouth(15, 63),
		doorWest(47), doorWest(15),
	}
	lShapeDoors = []Door{
		doorNorth(15),
		doorEast(31, 15),
		doorSouth(47, 31),
		doorEast(63, 47),
		doorSouth(47, 63), doorSouth(15, 63),
		doorWest(47), doorWest(15),
	}
)

// Footprint returns the (width, length) of the shape in blocks.
//
// Postcondition: Returns (w, l, true) with w, l > 0 for a known shape, or (0, 0, false).
func (s Shape) Footprint() (width, length int, ok bool) {
	switch s {
	case Shape1x1, Shape1x1End, Shape1x1Straight, Shape1x1Triple, Shape1x1Bend, Shape1x1Cross:
		return cell, cell, true
	case Shape1x2:
		return cell + 32, cell, true
	case Shape1x3:
		return cell + 32*2, cell, true
	case Shape1x4:
		return cell + 32*3, cell, true
	case Shape2x2, ShapeL:
		return cell + 32, cell + 32, true
	default:
		return 0, 0, false
	}
}

// IsKnown reports whether s is one of AllShapes.
func (s Shape) IsKnown() bool {
	_, _, ok := s.Footprint()
	return ok
}

// IsSingleCell reports whether s is the 1x1 shape or one of its variants.
func (s Shape) IsSingleCell() bool {
	switch s {
	case Shape1x1, Shape1x1End, Shape1x1Straight, Shape1x1Triple, Shape1x1Bend, Shape1x1Cross:
		return true
	default:
		return false
	}
}

// DoorSlots returns every door slot of the shape in table order. Single-cell
// variants share the 1x1 slots. Unknown shapes have no doors.
//
// Postcondition: The returned slice is a copy and may be modified by the caller.
func (s Shape) DoorSlots() []Door {
	var slots []Door
	switch s {
	case Shape1x1, Shape1x1End, Shape1x1Straight, Shape1x1Triple, Shape1x1Bend, Shape1x1Cross:
		slots = singleCellDoors
	case Shape1x2:
		slots = oneByTwoDoors
	case Shape1x3:
		slots = oneByThreeDoors
	case Shape1x4:
		slots = oneByFourDoors
	case Shape2x2:
		slots = twoByTwoDoors
	case ShapeL:
		slots = lShapeDoors
	default:
		// Shapes added to the manifest before this table learns them.
		return []Door{}
	}
	out := make([]Door, len(slots))
	copy(out, slots)
	return out
}

var singleCellVariants = map[string]Shape{
	"1000": Shape1x1End,
	"0101": Shape1x1Straight,
	"1011": Shape1x1Triple,
	"0011": Shape1x1Bend,
	"1111": Shape1x1Cross,
}

// SingleCellVariant maps a four-slot door bitstring to its 1x1 variant.
// Patterns outside the variant table map to the base 1x1 shape.
func SingleCellVariant(doors string) Shape {
	if v, ok := singleCellVariants[doors]; ok {
		return v
	}
	return Shape1x1
}

// FilterDoors keeps door slot i iff doors[i] == '1'. Slots beyond the end of
// the bitstring are dropped.
func FilterDoors(slots []Door, doors string) []Door {
	out := make([]Door, 0, len(slots))
	for i, d := range slots {
		if i < len(doors) && doors[i] == '1' {
			out = append(out, d)
		}
	}
	return out
}
