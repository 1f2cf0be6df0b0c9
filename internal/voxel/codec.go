package voxel

import (
	"errors"
	"fmt"
	"strconv"
)

// HexWidth is the number of hex digits encoding one block.
const HexWidth = 4

const hexDigits = "0123456789ABCDEF"

// ErrUnencodable is returned for blocks whose id or metadata do not fit in
// HexWidth digits.
var ErrUnencodable = errors.New("block does not fit the packed encoding")

// AppendHex appends the fixed-width uppercase hex encoding of b to dst.
//
// Postcondition: Returns dst unchanged and ErrUnencodable when b.ID > MaxID
// or b.Meta > MaxMeta.
func AppendHex(dst []byte, b Block) ([]byte, error) {
	if !b.Encodable() {
		return dst, fmt.Errorf("block id %d meta %d: %w", b.ID, b.Meta, ErrUnencodable)
	}
	v := b.Packed()
	return append(dst,
		hexDigits[v>>12&0xF],
		hexDigits[v>>8&0xF],
		hexDigits[v>>4&0xF],
		hexDigits[v&0xF],
	), nil
}

// DecodeHex splits a block-data string into blocks.
//
// Postcondition: Returns one block per HexWidth digits, or an error if the
// length is not a multiple of HexWidth or a digit is invalid.
func DecodeHex(data string) ([]Block, error) {
	if len(data)%HexWidth != 0 {
		return nil, fmt.Errorf("block data length %d is not a multiple of %d", len(data), HexWidth)
	}
	out := make([]Block, 0, len(data)/HexWidth)
	for i := 0; i < len(data); i += HexWidth {
		v, err := strconv.ParseUint(data[i:i+HexWidth], 16, 16)
		if err != nil {
			return nil, fmt.Errorf("block data at offset %d: %w", i, err)
		}
		out = append(out, Unpack(uint16(v)))
	}
	return out, nil
}
