package app

import (
	"gorm.io/gorm"

	"github.com/Corsox-Tech/pathlight-backend/internal/platform/logger"
	"github.com/Corsox-Tech/pathlight-backend/internal/repos"
)

type Repos struct {
	Enrollment       repos.EnrollmentRepo
	Activity         repos.ActivityRepo
	ActivityState    repos.ActivityStateRepo
	Prerequisite     repos.PrerequisiteRepo
	DripRule         repos.DripRuleRepo
	Override         repos.OverrideRepo
	CompletionRollup repos.CompletionRollupRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Enrollment:       repos.NewEnrollmentRepo(db, log),
		Activity:         repos.NewActivityRepo(db, log),
		ActivityState:    repos.NewActivityStateRepo(db, log),
		Prerequisite:     repos.NewPrerequisiteRepo(db, log),
		DripRule:         repos.NewDripRuleRepo(db, log),
		Override:         repos.NewOverrideRepo(db, log),
		CompletionRollup: repos.NewCompletionRollupRepo(db, log),
	}
}
