// Package file persists exported rooms as JSON documents on disk, optionally
// zstd-compressed and schema-checked on load.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"github.com/cory-johannsen/roomshelper/internal/config"
	"github.com/cory-johannsen/roomshelper/internal/game/room"
	"github.com/cory-johannsen/roomshelper/internal/storage"
)

const (
	plainExt      = ".json"
	compressedExt = ".json.zst"
)

// Store reads and writes one file per room instance under a directory.
type Store struct {
	dir      string
	compress bool
	schema   *jsonschema.Schema
	logger   *zap.Logger
}

var _ storage.RoomStore = (*Store)(nil)

// NewStore creates a Store rooted at cfg.ExportDir.
//
// Precondition: cfg.ExportDir must be non-empty; logger must be non-nil.
// Postcondition: Returns a Store or an error if the room schema fails to compile.
func NewStore(cfg config.CatalogConfig, logger *zap.Logger) (*Store, error) {
	s := &Store{
		dir:      cfg.ExportDir,
		compress: cfg.Compress,
		logger:   logger,
	}
	if cfg.ValidateSchema {
		schema, err := storage.RoomSchema()
		if err != nil {
			return nil, err
		}
		s.schema = schema
	}
	return s, nil
}

// Path returns the file a room with key would be written to.
func (s *Store) Path(key string) string {
	if s.compress {
		return filepath.Join(s.dir, key+compressedExt)
	}
	return filepath.Join(s.dir, key+plainExt)
}

// Load reads the export stored under key. The configured format is tried
// first, then the other one.
//
// Postcondition: Returns the decoded descriptor, storage.ErrNotFound when no
// file exists, or an error for unreadable or invalid documents.
func (s *Store) Load(ctx context.Context, key string) (*room.Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	order := []string{plainExt, compressedExt}
	if s.compress {
		order = []string{compressedExt, plainExt}
	}
	for _, ext := range order {
		path := filepath.Join(s.dir, key+ext)
		data, err := readExport(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		d, err := storage.DecodeRoom(data, s.schema)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		s.logger.Debug("loaded room export", zap.String("path", path))
		return d, nil
	}
	return nil, fmt.Errorf("loading %q: %w", key, storage.ErrNotFound)
}

// ListByRoomID returns the keys of every export of roomID in the directory,
// in either format, sorted.
//
// Postcondition: Returns an empty slice when the directory does not exist.
func (s *Store) ListByRoomID(ctx context.Context, roomID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.dir, err)
	}
	keys := []string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, roomID+",") {
			continue
		}
		key, ok := strings.CutSuffix(name, compressedExt)
		if !ok {
			if key, ok = strings.CutSuffix(name, plainExt); !ok {
				continue
			}
		}
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return slices.Compact(keys), nil
}

func readExport(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if !strings.HasSuffix(path, compressedExt) {
		return io.ReadAll(f)
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("opening zstd reader for %s: %w", path, err)
	}
	defer dec.Close()
	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decompressing %s: %w", path, err)
	}
	return data, nil
}

// Save writes d to its export file, replacing any previous export in either
// format. The write goes through a temporary file and a rename.
//
// Precondition: d must be non-nil.
// Postcondition: Exactly one export file exists for d.FileKey() on success.
func (s *Store) Save(ctx context.Context, d *room.Descriptor) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding room %q: %w", d.ID, err)
	}
	if s.compress {
		data, err = compress(data)
		if err != nil {
			return err
		}
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating export dir: %w", err)
	}

	key := d.FileKey()
	path := s.Path(key)
	if err := writeAtomic(path, data); err != nil {
		return err
	}

	stale := filepath.Join(s.dir, key+plainExt)
	if !s.compress {
		stale = filepath.Join(s.dir, key+compressedExt)
	}
	if err := os.Remove(stale); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("removing stale export", zap.String("path", stale), zap.Error(err))
	}
	s.logger.Info("saved room export", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("creating zstd writer: %w", err)
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		return nil, fmt.Errorf("compressing export: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("compressing export: %w", err)
	}
	return buf.Bytes(), nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	return nil
}
