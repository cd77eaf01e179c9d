package app

import (
	"github.com/yungbote/funny-backend/internal/http"
	httpH "github.com/yungbote/funny-backend/internal/http/handlers"
	httpMW "github.com/yungbote/funny-backend/internal/http/middleware"
	"github.com/yungbote/funny-backend/internal/observability"
	"github.com/yungbote/funny-backend/internal/pkg/logger"
)

type Handlers struct {
	Health    *httpH.HealthHandler
	Auth      *httpH.AuthHandler
	Guardian  *httpH.GuardianHandler
	Diagnosis *httpH.DiagnosisHandler
	Class     *httpH.ClassHandler
	Child     *httpH.ChildHandler
	Activity  *httpH.ActivityHandler
	Progress  *httpH.ProgressHandler
	Report    *httpH.ReportHandler
}

func wireHandlers(log *logger.Logger, cfg Config, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(cfg.App.Name, cfg.App.Version),
		Auth:      httpH.NewAuthHandler(s.Auth),
		Guardian:  httpH.NewGuardianHandler(s.Guardian),
		Diagnosis: httpH.NewDiagnosisHandler(s.Diagnosis),
		Class:     httpH.NewClassHandler(s.Class),
		Child:     httpH.NewChildHandler(s.Child),
		Activity:  httpH.NewActivityHandler(s.Activity),
		Progress:  httpH.NewProgressHandler(s.Progress),
		Report:    httpH.NewReportHandler(s.Report),
	}
}

func routerConfig(log *logger.Logger, cfg Config, h Handlers, s Services, metrics *observability.Metrics) http.RouterConfig {
	return http.RouterConfig{
		Log:              log,
		AuthMiddleware:   httpMW.NewAuthMiddleware(log, s.Auth),
		Metrics:          metrics,
		ServiceName:      serviceName(cfg),
		CORSOrigins:      cfg.CORSOrigins(),
		Tracing:          cfg.Otel.Enabled,
		HealthHandler:    h.Health,
		AuthHandler:      h.Auth,
		GuardianHandler:  h.Guardian,
		DiagnosisHandler: h.Diagnosis,
		ClassHandler:     h.Class,
		ChildHandler:     h.Child,
		ActivityHandler:  h.Activity,
		ProgressHandler:  h.Progress,
		ReportHandler:    h.Report,
	}
}
