package survey

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/roomshelper/internal/game/room"
	"github.com/cory-johannsen/roomshelper/internal/observability"
	"github.com/cory-johannsen/roomshelper/internal/storage"
	"github.com/cory-johannsen/roomshelper/internal/voxel"
)

// Source tells where a resolved descriptor came from.
type Source string

// Resolution sources.
const (
	SourceCache   Source = observability.SourceCache
	SourceDefault Source = observability.SourceDefault
)

// Resolution is a resolved catalog entry and its origin.
type Resolution struct {
	Room   *room.Descriptor
	Source Source
}

// ExportResult summarizes one export.
type ExportResult struct {
	Key     string
	Blocks  int
	Elapsed time.Duration
}

// Service exports rooms to a RoomStore and resolves catalog stubs.
//
// Service is not safe for concurrent use; it shares the catalog with the
// locator and runs on the add-on event loop.
type Service struct {
	catalog *room.Catalog
	scanner *Scanner
	store   storage.RoomStore
	metrics *observability.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires the catalog, scanner and store together.
//
// Precondition: all arguments must be non-nil.
func NewService(catalog *room.Catalog, scanner *Scanner, store storage.RoomStore, metrics *observability.Metrics, logger *zap.Logger) *Service {
	return &Service{
		catalog: catalog,
		scanner: scanner,
		store:   store,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Exports returns the stored export keys of every instance of roomID.
func (s *Service) Exports(ctx context.Context, roomID string) ([]string, error) {
	keys, err := s.store.ListByRoomID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("listing exports of %q: %w", roomID, err)
	}
	return keys, nil
}

// Export performs a full scan of d and writes it to the store. On success d
// itself is updated with the scanned Height, Bottom and BlockData, so existing
// references to d observe the export.
//
// Precondition: d must be non-nil.
// Postcondition: On error d and the store are unchanged.
func (s *Service) Export(ctx context.Context, d *room.Descriptor) (ExportResult, error) {
	start := s.now()
	res, err := s.scanner.Scan(d, true)
	if err != nil {
		return ExportResult{}, fmt.Errorf("exporting %q: %w", d.ID, err)
	}

	updated := d.Clone()
	height, bottom := res.Height(), res.Bottom
	updated.Height = &height
	updated.Bottom = &bottom
	updated.BlockData = res.BlockData

	if err := s.store.Save(ctx, updated); err != nil {
		return ExportResult{}, fmt.Errorf("exporting %q: %w", d.ID, err)
	}
	*d = *updated

	elapsed := s.now().Sub(start)
	s.metrics.ObserveExport(elapsed)
	s.logger.Info("exported room",
		zap.String("corner_id", d.ID),
		zap.String("room_id", d.RoomID),
		zap.String("name", d.Name),
		zap.Duration("elapsed", elapsed),
	)
	return ExportResult{
		Key:     d.FileKey(),
		Blocks:  len(d.BlockData) / voxel.HexWidth,
		Elapsed: elapsed,
	}, nil
}

// ImportOrDefault resolves the catalog entry with the given corner id. A
// cached export is used verbatim when one exists; otherwise a default
// descriptor is built from the origin column profile. Either way the result
// replaces the catalog entry at its position.
//
// Postcondition: Returns room.ErrUnknownRoom if id is not catalogued, or
// ErrEmptyColumn if no export exists and the column is empty.
func (s *Service) ImportOrDefault(ctx context.Context, id string) (Resolution, error) {
	entry, ok := s.catalog.Lookup(id)
	if !ok {
		return Resolution{}, fmt.Errorf("importing %q: %w", id, room.ErrUnknownRoom)
	}

	key := entry.FileKey()
	cached, err := s.store.Load(ctx, key)
	switch {
	case err == nil:
		if cached.ID != id {
			return Resolution{}, fmt.Errorf("importing %q: export %q holds room %q", id, key, cached.ID)
		}
		return s.install(cached, SourceCache)
	case !errors.Is(err, storage.ErrNotFound):
		return Resolution{}, fmt.Errorf("importing %q: %w", id, err)
	}

	def, err := s.defaultFor(entry)
	if err != nil {
		return Resolution{}, fmt.Errorf("importing %q: %w", id, err)
	}
	return s.install(def, SourceDefault)
}

func (s *Service) install(d *room.Descriptor, src Source) (Resolution, error) {
	if err := s.catalog.Replace(d); err != nil {
		return Resolution{}, err
	}
	s.metrics.Resolutions.WithLabelValues(string(src)).Inc()
	s.logger.Debug("resolved room",
		zap.String("corner_id", d.ID),
		zap.String("shape", string(d.Shape)),
		zap.String("source", string(src)),
	)
	return Resolution{Room: d, Source: src}, nil
}

// defaultFor builds the lightweight descriptor used when no export exists.
// Single-cell rooms take the variant shape selected by their door pattern.
func (s *Service) defaultFor(entry *room.Descriptor) (*room.Descriptor, error) {
	res, err := s.scanner.Scan(entry, false)
	if err != nil {
		return nil, err
	}
	d := entry.Clone()
	if d.Shape == room.Shape1x1 {
		d.Shape = room.SingleCellVariant(d.Doors)
	}
	height, bottom := res.Height(), res.Bottom
	d.Height = &height
	d.Bottom = &bottom
	d.BlockData = ""
	return d, nil
}
