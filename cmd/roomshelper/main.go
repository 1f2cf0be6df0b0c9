// Package main runs the rooms helper add-on against an in-memory world driven
// from the terminal. It wires configuration, the room catalog, export storage,
// the event loop and an optional metrics endpoint.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"github.com/cory-johannsen/roomshelper/internal/addon"
	"github.com/cory-johannsen/roomshelper/internal/config"
	"github.com/cory-johannsen/roomshelper/internal/game/room"
	"github.com/cory-johannsen/roomshelper/internal/game/survey"
	"github.com/cory-johannsen/roomshelper/internal/observability"
	"github.com/cory-johannsen/roomshelper/internal/server"
	"github.com/cory-johannsen/roomshelper/internal/storage"
	"github.com/cory-johannsen/roomshelper/internal/storage/file"
	"github.com/cory-johannsen/roomshelper/internal/storage/postgres"
	"github.com/cory-johannsen/roomshelper/internal/voxel"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	build := flag.Bool("build", true, "lay out a floor and ceiling for every catalog room")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	lifecycle := server.NewLifecycle(logger)

	entries, err := room.LoadManifestFromFile(cfg.Catalog.Manifest)
	if err != nil {
		logger.Fatal("loading room manifest", zap.Error(err))
	}
	catalog, err := room.NewCatalog(entries)
	if err != nil {
		logger.Fatal("building room catalog", zap.Error(err))
	}
	logger.Info("room catalog loaded",
		zap.String("manifest", cfg.Catalog.Manifest),
		zap.Int("rooms", catalog.Len()),
	)

	store := openStore(ctx, cfg, lifecycle, logger)

	world := voxel.NewMemory()
	if *build {
		layOut(world, catalog)
	}

	metrics := observability.NewMetrics()
	scanner := survey.NewScanner(world, cfg.Scan)
	svc := survey.NewService(catalog, scanner, store, metrics, logger.Named("survey"))

	game := newConsoleGame(cfg.Session.Host, os.Stdout)
	a := addon.New(addon.Deps{
		Catalog:     catalog,
		Survey:      svc,
		Game:        game,
		Chat:        game,
		TrackedHost: cfg.Session.TrackedHost,
		Metrics:     metrics,
		Logger:      logger,
	})

	loop := addon.NewLoop(cfg.Loop.TickInterval, logger.Named("loop"))
	a.Attach(loop)

	lifecycle.Add("loop", &server.FuncService{
		StartFn: loop.Start,
		StopFn:  loop.Stop,
	})

	console := newConsole(os.Stdin, loop, a, game, store, world, logger.Named("console"))
	lifecycle.Add("console", &server.FuncService{
		StartFn: console.Run,
	})

	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		lifecycle.Add("metrics", &server.FuncService{
			StartFn: func(context.Context) error {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			},
			StopFn: func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			},
		})
	}

	logger.Info("rooms helper initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("storage", cfg.Storage.Backend),
		zap.String("tracked_host", cfg.Session.TrackedHost),
		zap.String("metrics_addr", cfg.Metrics.Addr),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("rooms helper error", zap.Error(err))
	}
}

// openStore builds the configured export store. The postgres backend also
// registers a health-check service that owns the pool.
func openStore(ctx context.Context, cfg config.Config, lifecycle *server.Lifecycle, logger *zap.Logger) storage.RoomStore {
	if cfg.Storage.Backend != config.BackendPostgres {
		store, err := file.NewStore(cfg.Catalog, logger.Named("store"))
		if err != nil {
			logger.Fatal("opening export directory", zap.Error(err))
		}
		return store
	}

	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.Name),
		zap.Duration("elapsed", time.Since(dbStart)),
	)
	lifecycle.Add("postgres", &server.FuncService{
		StartFn: func(ctx context.Context) error {
			return pool.Watch(ctx, 30*time.Second, logger.Named("postgres"))
		},
		StopFn: pool.Close,
	})
	var schema *jsonschema.Schema
	if cfg.Catalog.ValidateSchema {
		if schema, err = storage.RoomSchema(); err != nil {
			logger.Fatal("compiling room schema", zap.Error(err))
		}
	}
	return postgres.NewRoomRepository(pool.DB(), schema)
}

// layOut builds a stone floor at y=68 and a plank ceiling at y=74 across every
// room footprint so scans have something to measure.
func layOut(w *voxel.Memory, catalog *room.Catalog) {
	for _, d := range catalog.Rooms() {
		w.Fill(voxel.Pos{X: d.X, Y: 68, Z: d.Z}, voxel.Pos{X: d.X + d.Width - 1, Y: 68, Z: d.Z + d.Length - 1}, voxel.Block{ID: 1})
		w.Fill(voxel.Pos{X: d.X, Y: 74, Z: d.Z}, voxel.Pos{X: d.X + d.Width - 1, Y: 74, Z: d.Z + d.Length - 1}, voxel.Block{ID: 5})
	}
}
