package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func testDescriptor() *Descriptor {
	return &Descriptor{
		ID:     "0,0",
		RoomID: "R1",
		Name:   "Test Room",
		Type:   CategoryNormal,
		Shape:  Shape1x1,
		Width:  31,
		Length: 31,
	}
}

func TestDescriptor_ContainsClosedInterval(t *testing.T) {
	d := testDescriptor()
	assert.True(t, d.Contains(0, 0))
	assert.True(t, d.Contains(31, 31))
	assert.True(t, d.Contains(15.5, 15.5))
	assert.False(t, d.Contains(-0.01, 10))
	assert.False(t, d.Contains(10, 31.01))
}

func TestDescriptor_DoorOpenings(t *testing.T) {
	d := testDescriptor()
	assert.Len(t, d.DoorOpenings(), 4)

	d.Doors = "1011"
	assert.Len(t, d.DoorOpenings(), 3)

	d.Shape = Shape1x2
	assert.Len(t, d.DoorOpenings(), 6, "bitstring is ignored outside single-cell shapes")
}

func TestDescriptor_FileKey(t *testing.T) {
	d := testDescriptor()
	d.ID = "-200,-136"
	assert.Equal(t, "R1,test_room,-200,-136", d.FileKey())
}

func TestDescriptor_Resolved(t *testing.T) {
	d := testDescriptor()
	assert.False(t, d.Resolved())
	h, b := 30, 68
	d.Height, d.Bottom = &h, &b
	assert.True(t, d.Resolved())
}

func TestDescriptor_CloneIsDeep(t *testing.T) {
	d := testDescriptor()
	h, b := 30, 68
	d.Height, d.Bottom = &h, &b
	d.Crushers = []Crusher{{Width: 3}}

	c := d.Clone()
	*c.Height = 1
	c.Crushers[0].Width = 9

	assert.Equal(t, 30, *d.Height)
	assert.Equal(t, 3, d.Crushers[0].Width)
}

func TestDescriptor_Validate(t *testing.T) {
	d := testDescriptor()
	assert.NoError(t, d.Validate())

	d.Width = 0
	assert.Error(t, d.Validate())

	d = testDescriptor()
	h := 3
	d.Height = &h
	assert.Error(t, d.Validate())
}

func TestParseCornerID(t *testing.T) {
	x, z, err := ParseCornerID("-200,-136")
	require.NoError(t, err)
	assert.Equal(t, -200, x)
	assert.Equal(t, -136, z)

	_, _, err = ParseCornerID("12")
	assert.Error(t, err)
	_, _, err = ParseCornerID("a,b")
	assert.Error(t, err)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "gold_room", NormalizeName("Gold Room"))
}

func TestDirection_Offset(t *testing.T) {
	cases := map[Direction][2]int{
		North: {0, -1},
		East:  {1, 0},
		South: {0, 1},
		West:  {-1, 0},
	}
	for d, want := range cases {
		dx, dz := d.Offset()
		assert.Equal(t, want, [2]int{dx, dz}, d.String())
	}
	assert.True(t, East.AlongX())
	assert.False(t, South.AlongX())
}

func TestPropertyCornerIDRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		x := rapid.IntRange(-1000, 1000).Draw(t, "x")
		z := rapid.IntRange(-1000, 1000).Draw(t, "z")
		gx, gz, err := ParseCornerID(formatCorner(x, z))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if gx != x || gz != z {
			t.Fatalf("got (%d,%d), want (%d,%d)", gx, gz, x, z)
		}
	})
}
