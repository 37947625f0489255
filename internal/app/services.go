package app

import (
	"gorm.io/gorm"

	"github.com/Corsox-Tech/pathlight-backend/internal/platform/logger"
	"github.com/Corsox-Tech/pathlight-backend/internal/services"
	"github.com/Corsox-Tech/pathlight-backend/internal/signal"
)

type Services struct {
	Prerequisites services.PrerequisiteResolver
	Drip          services.DripScheduler
	Availability  services.AvailabilityService
	Rollup        services.RollupService
	ActivityState services.ActivityStateService
	Override      services.OverrideService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, bus signal.Bus) Services {
	log.Info("Wiring services...")

	providers := wireProviders(log, cfg)

	prereqResolver := services.NewPrerequisiteResolver(db, log, reposet.Prerequisite, reposet.ActivityState)
	dripScheduler := services.NewDripScheduler(db, log, reposet.DripRule, reposet.ActivityState)
	availability := services.NewAvailabilityService(db, log, reposet.ActivityState, reposet.Override, prereqResolver, dripScheduler)
	rollup := services.NewRollupService(db, log, reposet.Enrollment, reposet.Activity, reposet.ActivityState, reposet.CompletionRollup, providers, cfg.ProviderTimeout)
	activityState := services.NewActivityStateService(db, log, reposet.ActivityState, bus)
	override := services.NewOverrideService(db, log, reposet.Override)

	return Services{
		Prerequisites: prereqResolver,
		Drip:          dripScheduler,
		Availability:  availability,
		Rollup:        rollup,
		ActivityState: activityState,
		Override:      override,
	}
}
