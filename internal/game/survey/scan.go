// Package survey reads room volumes out of the voxel world and moves room
// descriptors between the catalog and the export store.
package survey

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/roomshelper/internal/config"
	"github.com/cory-johannsen/roomshelper/internal/game/room"
	"github.com/cory-johannsen/roomshelper/internal/voxel"
)

// ErrEmptyColumn is returned when a room's corner column has no usable blocks.
var ErrEmptyColumn = errors.New("no blocks in room column")

// Column is the vertical extent of a room measured at its origin column.
type Column struct {
	Bottom int
	Top    int
}

// Height returns Top minus Bottom.
func (c Column) Height() int {
	return c.Top - c.Bottom
}

// Scanner reads block columns and volumes from a World.
type Scanner struct {
	world voxel.World
	cfg   config.ScanConfig
}

// NewScanner creates a Scanner bounded by cfg.
//
// Precondition: world must be non-nil; cfg.Ceiling > cfg.Floor.
func NewScanner(world voxel.World, cfg config.ScanConfig) *Scanner {
	return &Scanner{world: world, cfg: cfg}
}

// Lowest returns the first non-air Y scanning upward from the floor.
func (s *Scanner) Lowest(x, z int) (int, bool) {
	for y := s.cfg.Floor; y <= s.cfg.Ceiling; y++ {
		if !s.world.BlockAt(x, y, z).IsAir() {
			return y, true
		}
	}
	return 0, false
}

// Highest returns the first Y scanning down from the ceiling whose block is
// neither air nor the ignored top block. The floor itself is never reported.
func (s *Scanner) Highest(x, z int) (int, bool) {
	for y := s.cfg.Ceiling; y > s.cfg.Floor; y-- {
		b := s.world.BlockAt(x, y, z)
		if b.IsAir() || b.ID == s.cfg.IgnoredTopBlock {
			continue
		}
		return y, true
	}
	return 0, false
}

// ColumnProfile measures the column at (x, z).
//
// Postcondition: Returns Bottom <= Top, or ErrEmptyColumn.
func (s *Scanner) ColumnProfile(x, z int) (Column, error) {
	bottom, ok := s.Lowest(x, z)
	if !ok {
		return Column{}, fmt.Errorf("column %d,%d: %w", x, z, ErrEmptyColumn)
	}
	top, ok := s.Highest(x, z)
	if !ok || top < bottom {
		return Column{}, fmt.Errorf("column %d,%d: %w", x, z, ErrEmptyColumn)
	}
	return Column{Bottom: bottom, Top: top}, nil
}

// Result is the outcome of scanning a room.
type Result struct {
	Column
	// BlockData is empty unless the scan was full.
	BlockData string
}

// Scan measures d's origin column and, when full is set, dumps every block of
// the room volume from Bottom to Top inclusive in Y, Z, X order.
//
// Precondition: d must be non-nil with a positive footprint.
// Postcondition: Returns a Result, ErrEmptyColumn, or voxel.ErrUnencodable
// when a block in the volume cannot be written as block data.
func (s *Scanner) Scan(d *room.Descriptor, full bool) (Result, error) {
	col, err := s.ColumnProfile(d.X, d.Z)
	if err != nil {
		return Result{}, err
	}
	res := Result{Column: col}
	if !full {
		return res, nil
	}

	layers := col.Top - col.Bottom + 1
	buf := make([]byte, 0, layers*d.Width*d.Length*voxel.HexWidth)
	for y := col.Bottom; y <= col.Top; y++ {
		for z := d.Z; z < d.Z+d.Length; z++ {
			for x := d.X; x < d.X+d.Width; x++ {
				if buf, err = voxel.AppendHex(buf, s.world.BlockAt(x, y, z)); err != nil {
					return Result{}, fmt.Errorf("scanning %d,%d,%d: %w", x, y, z, err)
				}
			}
		}
	}
	res.BlockData = string(buf)
	return res, nil
}
