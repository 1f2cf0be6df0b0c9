package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/cory-johannsen/roomshelper/internal/game/room"
	"github.com/cory-johannsen/roomshelper/internal/storage"
)

// RoomRepository keeps one JSONB document per room export key.
type RoomRepository struct {
	db     *pgxpool.Pool
	schema *jsonschema.Schema
}

var _ storage.RoomStore = (*RoomRepository)(nil)

// NewRoomRepository creates a RoomRepository backed by the given pool. Stored
// documents are checked against schema on load when it is non-nil.
//
// Precondition: db must be a valid, open connection pool.
func NewRoomRepository(db *pgxpool.Pool, schema *jsonschema.Schema) *RoomRepository {
	return &RoomRepository{db: db, schema: schema}
}

// ExportRecord is a stored export with its bookkeeping columns.
type ExportRecord struct {
	Key       string
	Room      *room.Descriptor
	UpdatedAt time.Time
}

// Save upserts d under d.FileKey().
//
// Precondition: d must be non-nil.
// Postcondition: The row for d.FileKey() holds d's document.
func (r *RoomRepository) Save(ctx context.Context, d *room.Descriptor) error {
	doc, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding room %q: %w", d.ID, err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO room_exports (key, corner_id, room_id, name, document, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (key) DO UPDATE
		SET document = EXCLUDED.document, updated_at = NOW()`,
		d.FileKey(), d.ID, d.RoomID, d.Name, doc,
	)
	if err != nil {
		return fmt.Errorf("saving room %q: %w", d.ID, err)
	}
	return nil
}

// Load returns the export stored under key.
//
// Postcondition: Returns the descriptor, or storage.ErrNotFound if absent.
func (r *RoomRepository) Load(ctx context.Context, key string) (*room.Descriptor, error) {
	rec, err := r.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return rec.Room, nil
}

// Get returns the export record stored under key.
//
// Postcondition: Returns the record, or storage.ErrNotFound if absent.
func (r *RoomRepository) Get(ctx context.Context, key string) (*ExportRecord, error) {
	var doc []byte
	rec := &ExportRecord{Key: key}
	err := r.db.QueryRow(ctx,
		`SELECT document, updated_at FROM room_exports WHERE key = $1`, key,
	).Scan(&doc, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("loading %q: %w", key, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", key, err)
	}
	d, err := storage.DecodeRoom(doc, r.schema)
	if err != nil {
		return nil, fmt.Errorf("decoding %q: %w", key, err)
	}
	rec.Room = d
	return rec, nil
}

// ListByRoomID returns the keys of every stored instance of a dungeon-layout room.
//
// Postcondition: Returns keys ordered by corner id; may be empty.
func (r *RoomRepository) ListByRoomID(ctx context.Context, roomID string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT key FROM room_exports WHERE room_id = $1 ORDER BY corner_id`, roomID)
	if err != nil {
		return nil, fmt.Errorf("listing exports: %w", err)
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning export keys: %w", err)
	}
	return keys, nil
}
