package room

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestEntry lists every world-grid instance of one dungeon-layout room.
type ManifestEntry struct {
	// IDs are the "x,z" corner identifiers of each instance.
	IDs []string
	// Shape is the base footprint template.
	Shape Shape
	// Name is the display name shared by all instances.
	Name string
	// Type is the room category.
	Type Category
	// RoomID is the dungeon-layout identifier.
	RoomID string
	// Doors is the optional door bitstring for single-cell rooms.
	Doors string
}

// yamlManifestEntry is the on-disk form of a manifest record. JSON manifests
// decode through the same structure.
type yamlManifestEntry struct {
	IDs    []string `yaml:"ids"`
	Shape  string   `yaml:"shape"`
	Name   string   `yaml:"name"`
	Type   string   `yaml:"type"`
	RoomID string   `yaml:"room_id"`
	Doors  string   `yaml:"doors"`
}

// Validate checks manifest entry invariants.
//
// Postcondition: Returns nil if valid, or an error describing the first violation.
func (e ManifestEntry) Validate() error {
	if e.Name == "" {
		return fmt.Errorf("manifest entry: name must not be empty")
	}
	if !e.Shape.IsKnown() {
		return fmt.Errorf("manifest entry %q: unknown shape %q", e.Name, e.Shape)
	}
	if len(e.IDs) == 0 {
		return fmt.Errorf("manifest entry %q: must list at least one id", e.Name)
	}
	if strings.Trim(e.Doors, "01") != "" {
		return fmt.Errorf("manifest entry %q: doors %q must contain only 0 and 1", e.Name, e.Doors)
	}
	return nil
}

// LoadManifestFromFile reads and validates a manifest file.
//
// Precondition: path must point to a YAML or JSON list of manifest records.
// Postcondition: Returns validated entries or a non-nil error.
func LoadManifestFromFile(path string) ([]ManifestEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return LoadManifestFromBytes(data)
}

// LoadManifestFromBytes parses and validates manifest records.
//
// Precondition: data must be a YAML or JSON sequence of manifest records.
// Postcondition: Returns validated entries in file order or a non-nil error.
func LoadManifestFromBytes(data []byte) ([]ManifestEntry, error) {
	var raw []yamlManifestEntry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	entries := make([]ManifestEntry, 0, len(raw))
	for i, r := range raw {
		e := ManifestEntry{
			IDs:    r.IDs,
			Shape:  Shape(r.Shape),
			Name:   r.Name,
			Type:   Category(r.Type),
			RoomID: r.RoomID,
			Doors:  r.Doors,
		}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("validating manifest record %d: %w", i, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
