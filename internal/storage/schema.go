package storage

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/cory-johannsen/roomshelper/internal/game/room"
)

const schemaURL = "room.schema.json"

//go:embed room.schema.json
var roomSchema string

// RoomSchema returns the compiled schema of an exported room document. It is
// compiled on first use.
var RoomSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, strings.NewReader(roomSchema)); err != nil {
		return nil, fmt.Errorf("adding room schema: %w", err)
	}
	schema, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compiling room schema: %w", err)
	}
	return schema, nil
})

// DecodeRoom parses an exported room document. When schema is non-nil the raw
// document is checked against it first.
//
// Postcondition: Returns a descriptor that passes Descriptor.Validate, or a non-nil error.
func DecodeRoom(data []byte, schema *jsonschema.Schema) (*room.Descriptor, error) {
	if schema != nil {
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		if err := schema.Validate(doc); err != nil {
			return nil, fmt.Errorf("schema: %w", err)
		}
	}
	var d room.Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}
