package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/funny-backend/internal/data/repos/auth"
	"github.com/yungbote/funny-backend/internal/data/repos/games"
	"github.com/yungbote/funny-backend/internal/data/repos/roster"
	"github.com/yungbote/funny-backend/internal/pkg/logger"
)

type UserRepo = auth.UserRepo

type GuardianRepo = roster.GuardianRepo
type ClassRepo = roster.ClassRepo
type ChildRepo = roster.ChildRepo
type DiagnosisRepo = roster.DiagnosisRepo

type ActivityRepo = games.ActivityRepo
type ProgressRepo = games.ProgressRepo
type ReportRepo = games.ReportRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return auth.NewUserRepo(db, baseLog) }

func NewGuardianRepo(db *gorm.DB, baseLog *logger.Logger) GuardianRepo {
	return roster.NewGuardianRepo(db, baseLog)
}
func NewClassRepo(db *gorm.DB, baseLog *logger.Logger) ClassRepo {
	return roster.NewClassRepo(db, baseLog)
}
func NewChildRepo(db *gorm.DB, baseLog *logger.Logger) ChildRepo {
	return roster.NewChildRepo(db, baseLog)
}
func NewDiagnosisRepo(db *gorm.DB, baseLog *logger.Logger) DiagnosisRepo {
	return roster.NewDiagnosisRepo(db, baseLog)
}

func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
	return games.NewActivityRepo(db, baseLog)
}
func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	return games.NewProgressRepo(db, baseLog)
}
func NewReportRepo(db *gorm.DB, baseLog *logger.Logger) ReportRepo {
	return games.NewReportRepo(db, baseLog)
}
