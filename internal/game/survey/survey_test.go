package survey

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/roomshelper/internal/config"
	"github.com/cory-johannsen/roomshelper/internal/game/room"
	"github.com/cory-johannsen/roomshelper/internal/observability"
	"github.com/cory-johannsen/roomshelper/internal/storage"
	"github.com/cory-johannsen/roomshelper/internal/voxel"
)

var scanCfg = config.ScanConfig{Floor: 0, Ceiling: 255, IgnoredTopBlock: 4}

type mapStore struct {
	docs    map[string]*room.Descriptor
	loadErr error
}

func newMapStore() *mapStore {
	return &mapStore{docs: make(map[string]*room.Descriptor)}
}

func (m *mapStore) Load(_ context.Context, key string) (*room.Descriptor, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	d, ok := m.docs[key]
	if !ok {
		return nil, fmt.Errorf("%q: %w", key, storage.ErrNotFound)
	}
	return d.Clone(), nil
}

func (m *mapStore) Save(_ context.Context, d *room.Descriptor) error {
	m.docs[d.FileKey()] = d.Clone()
	return nil
}

func (m *mapStore) ListByRoomID(_ context.Context, roomID string) ([]string, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	var keys []string
	for k, d := range m.docs {
		if d.RoomID == roomID {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func newCatalog(t *testing.T, entries ...room.ManifestEntry) *room.Catalog {
	t.Helper()
	c, err := room.NewCatalog(entries)
	require.NoError(t, err)
	return c
}

func smallRoomEntry() room.ManifestEntry {
	return room.ManifestEntry{
		IDs:    []string{"0,0"},
		Shape:  room.Shape1x1,
		Name:   "Small Room",
		Type:   room.CategoryNormal,
		RoomID: "R1",
		Doors:  "1000",
	}
}

// buildRoom fills a floor at y=68, some walls and a ceiling at y=74 with an
// ignored block on top at y=80.
func buildRoom(w *voxel.Memory) {
	stone := voxel.Block{ID: 1}
	w.Fill(voxel.Pos{X: 0, Y: 68, Z: 0}, voxel.Pos{X: 30, Y: 68, Z: 30}, stone)
	w.Fill(voxel.Pos{X: 0, Y: 69, Z: 0}, voxel.Pos{X: 0, Y: 73, Z: 30}, voxel.Block{ID: 98, Meta: 2})
	w.Fill(voxel.Pos{X: 0, Y: 74, Z: 0}, voxel.Pos{X: 30, Y: 74, Z: 30}, voxel.Block{ID: 5, Meta: 1})
	w.Set(0, 80, 0, voxel.Block{ID: 4})
}

func newService(t *testing.T, w voxel.World, store storage.RoomStore) (*Service, *room.Catalog, *observability.Metrics) {
	t.Helper()
	cat := newCatalog(t, smallRoomEntry())
	m := observability.NewMetrics()
	return NewService(cat, NewScanner(w, scanCfg), store, m, zap.NewNop()), cat, m
}

func TestScanner_ColumnProfileSkipsIgnoredTop(t *testing.T) {
	w := voxel.NewMemory()
	buildRoom(w)
	col, err := NewScanner(w, scanCfg).ColumnProfile(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 68, col.Bottom)
	assert.Equal(t, 74, col.Top)
	assert.Equal(t, 6, col.Height())
}

func TestScanner_EmptyColumn(t *testing.T) {
	w := voxel.NewMemory()
	_, err := NewScanner(w, scanCfg).ColumnProfile(5, 5)
	assert.ErrorIs(t, err, ErrEmptyColumn)

	w.Set(5, 90, 5, voxel.Block{ID: 4})
	_, err = NewScanner(w, scanCfg).ColumnProfile(5, 5)
	assert.ErrorIs(t, err, ErrEmptyColumn, "only the ignored block is present")
}

func TestScanner_FullScanOrder(t *testing.T) {
	w := voxel.NewMemory()
	w.Set(0, 10, 0, voxel.Block{ID: 1})
	w.Set(1, 10, 0, voxel.Block{ID: 2})
	w.Set(0, 10, 1, voxel.Block{ID: 3})
	w.Set(1, 10, 1, voxel.Block{ID: 4, Meta: 15})
	d := &room.Descriptor{ID: "0,0", Width: 2, Length: 2}

	res, err := NewScanner(w, scanCfg).Scan(d, true)
	require.NoError(t, err)
	assert.Equal(t, 10, res.Bottom)
	assert.Equal(t, "001000200030004F", res.BlockData)
}

func TestScanner_PartialScanHasNoBlockData(t *testing.T) {
	w := voxel.NewMemory()
	buildRoom(w)
	res, err := NewScanner(w, scanCfg).Scan(&room.Descriptor{ID: "0,0", Width: 31, Length: 31}, false)
	require.NoError(t, err)
	assert.Empty(t, res.BlockData)
}

func TestService_ExportUpdatesInPlace(t *testing.T) {
	w := voxel.NewMemory()
	buildRoom(w)
	store := newMapStore()
	svc, cat, m := newService(t, w, store)

	d, ok := cat.Lookup("0,0")
	require.True(t, ok)
	res, err := svc.Export(context.Background(), d)
	require.NoError(t, err)

	require.True(t, d.Resolved())
	assert.Equal(t, 6, *d.Height)
	assert.Equal(t, 68, *d.Bottom)
	assert.Equal(t, 7*31*31, res.Blocks)
	assert.Equal(t, "R1,small_room,0,0", res.Key)
	assert.Equal(t, d.BlockData, store.docs[res.Key].BlockData)
	assert.Equal(t, 1, testutil.CollectAndCount(m.ExportDuration))
}

func TestService_ExportEmptyColumnLeavesRoomUnchanged(t *testing.T) {
	store := newMapStore()
	svc, cat, _ := newService(t, voxel.NewMemory(), store)
	d, _ := cat.Lookup("0,0")

	_, err := svc.Export(context.Background(), d)
	assert.ErrorIs(t, err, ErrEmptyColumn)
	assert.False(t, d.Resolved())
	assert.Empty(t, store.docs)
}

func TestService_ExportRejectsUnencodableBlock(t *testing.T) {
	w := voxel.NewMemory()
	buildRoom(w)
	w.Set(5, 70, 5, voxel.Block{ID: voxel.MaxID + 1})
	store := newMapStore()
	svc, cat, _ := newService(t, w, store)
	d, _ := cat.Lookup("0,0")

	_, err := svc.Export(context.Background(), d)
	assert.ErrorIs(t, err, voxel.ErrUnencodable)
	assert.False(t, d.Resolved())
	assert.Empty(t, store.docs)
}

func TestService_ExportThenImportIsIdempotent(t *testing.T) {
	w := voxel.NewMemory()
	buildRoom(w)
	store := newMapStore()
	svc, cat, _ := newService(t, w, store)
	d, _ := cat.Lookup("0,0")
	_, err := svc.Export(context.Background(), d)
	require.NoError(t, err)

	res, err := svc.ImportOrDefault(context.Background(), "0,0")
	require.NoError(t, err)
	assert.Equal(t, SourceCache, res.Source)

	rescan, err := NewScanner(w, scanCfg).Scan(res.Room, true)
	require.NoError(t, err)
	assert.Equal(t, res.Room.BlockData, rescan.BlockData)
}

func TestService_PastedExportRescansIdentically(t *testing.T) {
	w := voxel.NewMemory()
	buildRoom(w)
	svc, cat, _ := newService(t, w, newMapStore())
	d, _ := cat.Lookup("0,0")
	_, err := svc.Export(context.Background(), d)
	require.NoError(t, err)

	copyWorld := voxel.NewMemory()
	require.NoError(t, copyWorld.Paste(voxel.Pos{X: d.X, Y: *d.Bottom, Z: d.Z}, d.Width, d.Length, d.BlockData))
	res, err := NewScanner(copyWorld, scanCfg).Scan(d, true)
	require.NoError(t, err)
	assert.Equal(t, d.BlockData, res.BlockData)
}

func TestService_ImportOrDefault_Default(t *testing.T) {
	w := voxel.NewMemory()
	buildRoom(w)
	svc, cat, m := newService(t, w, newMapStore())
	stub, _ := cat.Lookup("0,0")

	res, err := svc.ImportOrDefault(context.Background(), "0,0")
	require.NoError(t, err)
	assert.Equal(t, SourceDefault, res.Source)
	assert.Equal(t, room.Shape1x1End, res.Room.Shape)
	assert.Equal(t, "1000", res.Room.Doors)
	assert.Equal(t, 6, *res.Room.Height)
	assert.Equal(t, 68, *res.Room.Bottom)
	assert.Empty(t, res.Room.BlockData)
	assert.False(t, stub.Resolved(), "stub is not mutated")

	got, _ := cat.Lookup("0,0")
	assert.Same(t, res.Room, got, "catalog entry replaced")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Resolutions.WithLabelValues(observability.SourceDefault)))
}

func TestService_ImportOrDefault_Cached(t *testing.T) {
	store := newMapStore()
	svc, cat, _ := newService(t, voxel.NewMemory(), store)
	stub, _ := cat.Lookup("0,0")
	cached := stub.Clone()
	h, b := 10, 60
	cached.Height, cached.Bottom, cached.BlockData = &h, &b, "0010"
	cached.Crushers = []room.Crusher{{Direction: room.West, Width: 1, Height: 1}}
	store.docs[cached.FileKey()] = cached

	res, err := svc.ImportOrDefault(context.Background(), "0,0")
	require.NoError(t, err)
	assert.Equal(t, SourceCache, res.Source)
	assert.Equal(t, cached, res.Room)
	got, _ := cat.Lookup("0,0")
	assert.Same(t, res.Room, got)
}

func TestService_ImportOrDefault_Unknown(t *testing.T) {
	svc, _, _ := newService(t, voxel.NewMemory(), newMapStore())
	_, err := svc.ImportOrDefault(context.Background(), "9,9")
	assert.ErrorIs(t, err, room.ErrUnknownRoom)
}

func TestService_ImportOrDefault_StoreFailure(t *testing.T) {
	store := newMapStore()
	store.loadErr = errors.New("disk on fire")
	svc, cat, _ := newService(t, voxel.NewMemory(), store)

	_, err := svc.ImportOrDefault(context.Background(), "0,0")
	require.Error(t, err)
	stub, _ := cat.Lookup("0,0")
	assert.False(t, stub.Resolved())
}

func TestPropertyScanPasteRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		width := rapid.IntRange(1, 6).Draw(t, "width")
		length := rapid.IntRange(1, 6).Draw(t, "length")
		layers := rapid.IntRange(1, 4).Draw(t, "layers")
		w := voxel.NewMemory()
		for y := 0; y < layers; y++ {
			for z := 0; z < length; z++ {
				for x := 0; x < width; x++ {
					id := rapid.Uint16Range(0, 300).Draw(t, "id")
					meta := rapid.Uint8Range(0, 15).Draw(t, "meta")
					w.Set(x, 20+y, z, voxel.Block{ID: id, Meta: meta})
				}
			}
		}
		// Pin the origin column so bottom and top are known.
		w.Set(0, 20, 0, voxel.Block{ID: 1})
		w.Set(0, 20+layers-1, 0, voxel.Block{ID: 1})
		d := &room.Descriptor{ID: "0,0", Width: width, Length: length}

		first, err := NewScanner(w, scanCfg).Scan(d, true)
		if err != nil {
			t.Fatalf("scan: %v", err)
		}
		copyWorld := voxel.NewMemory()
		if err := copyWorld.Paste(voxel.Pos{Y: first.Bottom}, width, length, first.BlockData); err != nil {
			t.Fatalf("paste: %v", err)
		}
		second, err := NewScanner(copyWorld, scanCfg).Scan(d, true)
		if err != nil {
			t.Fatalf("rescan: %v", err)
		}
		if first.BlockData != second.BlockData {
			t.Fatalf("block data differs after paste")
		}
	})
}

func TestService_Exports(t *testing.T) {
	w := voxel.NewMemory()
	buildRoom(w)
	store := newMapStore()
	svc, cat, _ := newService(t, w, store)
	ctx := context.Background()

	keys, err := svc.Exports(ctx, "R1")
	require.NoError(t, err)
	assert.Empty(t, keys)

	d, _ := cat.Lookup("0,0")
	_, err = svc.Export(ctx, d)
	require.NoError(t, err)
	keys, err = svc.Exports(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, []string{"R1,small_room,0,0"}, keys)

	store.loadErr = errors.New("offline")
	_, err = svc.Exports(ctx, "R1")
	assert.ErrorContains(t, err, "offline")
}
