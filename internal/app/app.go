package app

import (
	"errors"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/FrankDatema/MindHop/internal/config"
	"github.com/FrankDatema/MindHop/internal/game"
	"github.com/FrankDatema/MindHop/internal/ledger"
	"github.com/FrankDatema/MindHop/internal/logx"
	"github.com/FrankDatema/MindHop/internal/nfc"
	"github.com/FrankDatema/MindHop/internal/placement"
	"github.com/FrankDatema/MindHop/internal/prefs"
	"github.com/FrankDatema/MindHop/internal/scene"
	"github.com/FrankDatema/MindHop/internal/server"
)

type Options struct {
	Config *config.Config
	Logger *logx.Logger
	// Clock overrides the wall clock, for tests and rehearsals.
	Clock game.Clock
	// Navigator receives scene requests after a successful scan.
	Navigator game.Navigator
}

// App is a fully wired engine with its storage, runtime and tag queue.
type App struct {
	Config  *config.Config
	Logger  *logx.Logger
	Store   prefs.Store
	Ledger  *ledger.Ledger
	Engine  *game.Engine
	Runtime *game.Runtime
	Tags    *nfc.Queue

	closeStore func() error
}

// NewLogger builds the JSON line logger selected by cfg.
func NewLogger(cfg *config.Config, w io.Writer) *logx.Logger {
	return logx.NewWriter(w, logx.ParseLevel(cfg.Log.Level)).With(logx.Fields{"service": "mindhop"})
}

func New(opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logx.Discard()
	}

	reg, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	store, closeStore, err := prefs.Open(cfg.Storage.Driver, cfg.Storage.DataDir, cfg.Storage.SQLitePath, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("storage_opened", logx.Fields{"driver": cfg.Storage.Driver, "data_dir": cfg.Storage.DataDir})

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	l := ledger.New(store, logger)
	engine, err := game.NewEngine(game.Options{
		Registry:  reg,
		Ledger:    l,
		Prefs:     store,
		Scene:     scene.New(scene.Options{GrowthDuration: cfg.Spawn.GrowthDuration, ShrinkSpeed: cfg.Spawn.ShrinkSpeed, Logger: logger}),
		Rand:      rng,
		Clock:     opts.Clock,
		Logger:    logger,
		Navigator: opts.Navigator,
		Placement: placement.Params{
			Anchor:        cfg.Spawn.Anchor,
			Radius:        cfg.Spawn.Radius,
			MinHeight:     cfg.Spawn.MinHeight,
			MaxHeight:     cfg.Spawn.MaxHeight,
			MinSeparation: cfg.Spawn.MinDistance,
			MaxAttempts:   cfg.Spawn.MaxAttempts,
		},
		DefaultScale: cfg.Spawn.DefaultScale,
		DefaultDays:  cfg.Reset.DefaultDays,
		ScanScene:    cfg.Runtime.ScanScene,
		MinInterval:  cfg.Spawn.MinInterval,
		MaxInterval:  cfg.Spawn.MaxInterval,
	})
	if err != nil {
		_ = closeStore()
		return nil, err
	}

	tags := nfc.NewQueue()
	rt := game.NewRuntime(engine, game.RuntimeOptions{
		Frame:         cfg.FrameDuration(),
		CheckInterval: cfg.Reset.CheckInterval,
		Ephemeral:     cfg.Spawn.Mode == config.ModeEphemeral,
		Tags:          tags,
		Logger:        logger,
	})

	return &App{
		Config:     cfg,
		Logger:     logger,
		Store:      store,
		Ledger:     l,
		Engine:     engine,
		Runtime:    rt,
		Tags:       tags,
		closeStore: closeStore,
	}, nil
}

// Handler is the HTTP surface over the app's runtime.
func (a *App) Handler() (http.Handler, error) {
	return server.NewHandler(server.Options{Runtime: a.Runtime, Tags: a.Tags, Logger: a.Logger})
}

func (a *App) Close() error {
	if a.closeStore == nil {
		return nil
	}
	return a.closeStore()
}
