// Package voxel defines the world-voxel query consumed by room scanning, the
// block-data hex codec, and a sparse in-memory world.
package voxel

// Block is a block type id with its 4-bit metadata.
type Block struct {
	ID   uint16
	Meta uint8
}

// Air is the empty block.
var Air = Block{}

// IsAir reports whether b is the empty block.
func (b Block) IsAir() bool {
	return b.ID == 0
}

// Largest id and metadata that fit the 16-bit packed encoding.
const (
	MaxID   = 0x0FFF
	MaxMeta = 0xF
)

// Encodable reports whether b survives Packed without losing bits.
func (b Block) Encodable() bool {
	return b.ID <= MaxID && b.Meta <= MaxMeta
}

// Packed returns the 16-bit (id << 4 | meta) encoding of the block.
//
// Precondition: b.Encodable(); higher bits are dropped otherwise.
func (b Block) Packed() uint16 {
	return b.ID<<4 | uint16(b.Meta&0xF)
}

// Unpack reverses Packed.
func Unpack(v uint16) Block {
	return Block{ID: v >> 4, Meta: uint8(v & 0xF)}
}

// World answers block queries at integer world coordinates. Positions outside
// loaded terrain report Air.
type World interface {
	BlockAt(x, y, z int) Block
}

// Pos is an integer world position.
type Pos struct {
	X, Y, Z int
}
