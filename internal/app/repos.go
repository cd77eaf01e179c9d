package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/funny-backend/internal/data/repos"
	"github.com/yungbote/funny-backend/internal/pkg/logger"
)

type Repos struct {
	User      repos.UserRepo
	Guardian  repos.GuardianRepo
	Class     repos.ClassRepo
	Child     repos.ChildRepo
	Diagnosis repos.DiagnosisRepo
	Activity  repos.ActivityRepo
	Progress  repos.ProgressRepo
	Report    repos.ReportRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:      repos.NewUserRepo(db, log),
		Guardian:  repos.NewGuardianRepo(db, log),
		Class:     repos.NewClassRepo(db, log),
		Child:     repos.NewChildRepo(db, log),
		Diagnosis: repos.NewDiagnosisRepo(db, log),
		Activity:  repos.NewActivityRepo(db, log),
		Progress:  repos.NewProgressRepo(db, log),
		Report:    repos.NewReportRepo(db, log),
	}
}
