package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Corsox-Tech/pathlight-backend/internal/db"
	"github.com/Corsox-Tech/pathlight-backend/internal/platform/logger"
	"github.com/Corsox-Tech/pathlight-backend/internal/signal"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Bus      signal.Bus
	cancel   context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	bus, err := wireBus(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, bus)
	handlerset := wireHandlers(log, serviceset, bus)
	router := wireRouter(cfg, handlerset)

	return &App{
		Log:      log,
		DB:       theDB,
		Router:   router,
		Cfg:      cfg,
		Repos:    reposet,
		Services: serviceset,
		Bus:      bus,
	}, nil
}

func wireBus(log *logger.Logger, cfg Config) (signal.Bus, error) {
	switch cfg.SignalMode {
	case SignalModeRedis:
		bus, err := signal.NewRedisBus(log)
		if err != nil {
			return nil, fmt.Errorf("init redis signal bus: %w", err)
		}
		return bus, nil
	default:
		return signal.NewInProcessBus(log), nil
	}
}

// Start connects the rollup aggregator to the recompute signal. Must run
// before the router serves traffic so no published event finds an empty bus.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if err := a.Bus.StartForwarder(ctx, a.Services.Rollup.OnRecomputeRequested); err != nil {
		cancel()
		a.cancel = nil
		return fmt.Errorf("start signal forwarder: %w", err)
	}
	return nil
}

func (a *App) Run(addr string) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Bus != nil {
		_ = a.Bus.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
