package room

import (
	"fmt"
	"strings"
)

// Catalog is the ordered set of known room instances. Entries start as stubs
// expanded from the manifest and are replaced in place once resolved.
//
// Catalog is not safe for concurrent use; it is owned by the add-on event loop.
type Catalog struct {
	rooms []*Descriptor
	index map[string]int
}

// NewCatalog expands manifest entries into one descriptor per corner id.
//
// Precondition: entries should have passed ManifestEntry.Validate.
// Postcondition: Returns a Catalog in manifest order, or an error on an
// unparsable or duplicate corner id.
func NewCatalog(entries []ManifestEntry) (*Catalog, error) {
	c := &Catalog{index: make(map[string]int)}
	for _, e := range entries {
		width, length, ok := e.Shape.Footprint()
		if !ok {
			return nil, fmt.Errorf("manifest entry %q: unknown shape %q", e.Name, e.Shape)
		}
		for _, id := range e.IDs {
			x, z, err := ParseCornerID(id)
			if err != nil {
				return nil, fmt.Errorf("manifest entry %q: %w", e.Name, err)
			}
			if _, exists := c.index[id]; exists {
				return nil, fmt.Errorf("duplicate room id %q in %q", id, e.Name)
			}
			c.index[id] = len(c.rooms)
			c.rooms = append(c.rooms, &Descriptor{
				ID:     id,
				RoomID: e.RoomID,
				X:      x,
				Z:      z,
				Name:   e.Name,
				Type:   e.Type,
				Shape:  e.Shape,
				Width:  width,
				Length: length,
				Doors:  e.Doors,
			})
		}
	}
	return c, nil
}

// Len returns the number of room instances.
func (c *Catalog) Len() int {
	return len(c.rooms)
}

// Rooms returns the descriptors in catalog order.
//
// Postcondition: The slice is a copy; the descriptors are shared.
func (c *Catalog) Rooms() []*Descriptor {
	out := make([]*Descriptor, len(c.rooms))
	copy(out, c.rooms)
	return out
}

// Lookup returns the descriptor with the given corner id.
//
// Postcondition: Returns (descriptor, true) if found, or (nil, false) otherwise.
func (c *Catalog) Lookup(id string) (*Descriptor, bool) {
	i, ok := c.index[id]
	if !ok {
		return nil, false
	}
	return c.rooms[i], true
}

// Replace swaps the entry with d.ID for d, keeping its catalog position.
//
// Precondition: d must be non-nil.
// Postcondition: Returns ErrUnknownRoom if no entry has d.ID.
func (c *Catalog) Replace(d *Descriptor) error {
	i, ok := c.index[d.ID]
	if !ok {
		return fmt.Errorf("replacing %q: %w", d.ID, ErrUnknownRoom)
	}
	c.rooms[i] = d
	return nil
}

// FirstContaining returns the first descriptor in catalog order whose
// bounding box contains (x, z).
//
// Postcondition: Returns (descriptor, true) on a hit, or (nil, false).
func (c *Catalog) FirstContaining(x, z float64) (*Descriptor, bool) {
	for _, d := range c.rooms {
		if d.Contains(x, z) {
			return d, true
		}
	}
	return nil, false
}

// ByName returns every instance whose name matches, case-insensitively, after
// underscores in name are read as spaces.
//
// Postcondition: Returns matches in catalog order; may be empty.
func (c *Catalog) ByName(name string) []*Descriptor {
	want := strings.ToLower(strings.ReplaceAll(name, "_", " "))
	var out []*Descriptor
	for _, d := range c.rooms {
		if strings.ToLower(d.Name) == want {
			out = append(out, d)
		}
	}
	return out
}

// NormalizedNames returns the distinct normalized room names in order of
// first appearance.
func (c *Catalog) NormalizedNames() []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range c.rooms {
		n := NormalizeName(d.Name)
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
