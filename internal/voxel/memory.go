package voxel

import "fmt"

// Memory is a sparse in-memory World. Unset positions are Air.
//
// Memory is not safe for concurrent use.
type Memory struct {
	blocks map[Pos]Block
}

// NewMemory returns an empty world.
func NewMemory() *Memory {
	return &Memory{blocks: make(map[Pos]Block)}
}

// BlockAt implements World.
func (m *Memory) BlockAt(x, y, z int) Block {
	return m.blocks[Pos{x, y, z}]
}

// Set places b at (x, y, z). Setting Air clears the position.
func (m *Memory) Set(x, y, z int, b Block) {
	p := Pos{x, y, z}
	if b.IsAir() {
		delete(m.blocks, p)
		return
	}
	m.blocks[p] = b
}

// Fill sets every position of the inclusive box spanned by a and b.
func (m *Memory) Fill(a, b Pos, blk Block) {
	for y := min(a.Y, b.Y); y <= max(a.Y, b.Y); y++ {
		for z := min(a.Z, b.Z); z <= max(a.Z, b.Z); z++ {
			for x := min(a.X, b.X); x <= max(a.X, b.X); x++ {
				m.Set(x, y, z, blk)
			}
		}
	}
}

// Len returns the number of non-air blocks.
func (m *Memory) Len() int {
	return len(m.blocks)
}

// Paste writes hex block data into the volume whose lowest corner is origin,
// iterating Y, then Z, then X, the order room scans emit.
//
// Precondition: width and length must be > 0.
// Postcondition: Returns an error if data cannot be decoded or does not fill
// whole layers; the world is unchanged on error.
func (m *Memory) Paste(origin Pos, width, length int, data string) error {
	if width <= 0 || length <= 0 {
		return fmt.Errorf("paste footprint %dx%d must be positive", width, length)
	}
	blocks, err := DecodeHex(data)
	if err != nil {
		return err
	}
	layer := width * length
	if len(blocks)%layer != 0 {
		return fmt.Errorf("block count %d does not fill %dx%d layers", len(blocks), width, length)
	}
	for i, b := range blocks {
		y := origin.Y + i/layer
		rem := i % layer
		m.Set(origin.X+rem%width, y, origin.Z+rem/width, b)
	}
	return nil
}
