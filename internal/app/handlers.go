package app

import (
	"github.com/gin-gonic/gin"

	"github.com/Corsox-Tech/pathlight-backend/internal/handlers"
	"github.com/Corsox-Tech/pathlight-backend/internal/platform/logger"
	"github.com/Corsox-Tech/pathlight-backend/internal/server"
	"github.com/Corsox-Tech/pathlight-backend/internal/signal"
)

type Handlers struct {
	Availability *handlers.AvailabilityHandler
	Rollup       *handlers.RollupHandler
	State        *handlers.StateHandler
	Override     *handlers.OverrideHandler
}

func wireHandlers(log *logger.Logger, serviceset Services, bus signal.Bus) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Availability: handlers.NewAvailabilityHandler(serviceset.Availability),
		Rollup:       handlers.NewRollupHandler(serviceset.Rollup, bus),
		State:        handlers.NewStateHandler(serviceset.ActivityState),
		Override:     handlers.NewOverrideHandler(serviceset.Override),
	}
}

func wireRouter(cfg Config, handlerset Handlers) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AllowOrigins:        cfg.AllowOrigins,
		AvailabilityHandler: handlerset.Availability,
		RollupHandler:       handlerset.Rollup,
		StateHandler:        handlerset.State,
		OverrideHandler:     handlerset.Override,
	})
}
