package app

import (
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/funny-backend/internal/observability"
	"github.com/yungbote/funny-backend/internal/pkg/logger"
	"github.com/yungbote/funny-backend/internal/services"
)

type Services struct {
	Auth      services.AuthService
	Guardian  services.GuardianService
	Class     services.ClassService
	Child     services.ChildService
	Diagnosis services.DiagnosisService
	Activity  services.ActivityService
	Progress  services.ProgressService
	Report    services.ReportService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")

	var obs services.ReconcileObserver
	if metrics != nil {
		obs = metrics
	}
	resolver := services.NewActivityResolver(db, log, r.Activity, obs)
	guardians := services.NewGuardianResolver(r.Child, r.Class)

	return Services{
		Auth: services.NewAuthService(db, log, r.User, services.AuthConfig{
			SecretKey: cfg.JWT.SecretKey,
			AccessTTL: time.Duration(cfg.JWT.AccessTokenExpireMinutes) * time.Minute,
		}),
		Guardian:  services.NewGuardianService(db, log, r.Guardian),
		Class:     services.NewClassService(db, log, r.Class, r.Guardian),
		Child:     services.NewChildService(db, log, r.Child, r.Class, r.Diagnosis),
		Diagnosis: services.NewDiagnosisService(db, log, r.Diagnosis),
		Activity:  services.NewActivityService(db, log, r.Activity),
		Progress:  services.NewProgressService(db, log, resolver, guardians, r.Activity, r.Progress, obs),
		Report: services.NewReportService(log, services.ReportDeps{
			Children:   r.Child,
			Classes:    r.Class,
			Activities: r.Activity,
			Progress:   r.Progress,
			Reports:    r.Report,
			Client:     c.OpenAI,
			Limiter:    c.LLMLimiter,
			Timeout:    time.Duration(cfg.OpenAI.TimeoutSeconds) * time.Second,
		}),
	}
}
