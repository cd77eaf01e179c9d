package http

import (
	"errors"
	nethttp "net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/funny-backend/internal/http/handlers"
	httpMW "github.com/yungbote/funny-backend/internal/http/middleware"
	"github.com/yungbote/funny-backend/internal/http/response"
	"github.com/yungbote/funny-backend/internal/observability"
	"github.com/yungbote/funny-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	AuthMiddleware *httpMW.AuthMiddleware
	Metrics        *observability.Metrics
	ServiceName    string
	CORSOrigins    []string
	// Tracing mounts otelgin; leave off when no tracer provider is installed.
	Tracing bool

	HealthHandler    *httpH.HealthHandler
	AuthHandler      *httpH.AuthHandler
	GuardianHandler  *httpH.GuardianHandler
	DiagnosisHandler *httpH.DiagnosisHandler
	ClassHandler     *httpH.ClassHandler
	ChildHandler     *httpH.ChildHandler
	ActivityHandler  *httpH.ActivityHandler
	ProgressHandler  *httpH.ProgressHandler
	ReportHandler    *httpH.ReportHandler
}

var errRouteNotFound = errors.New("route not found")

// crud is the shape shared by the roster and activity handlers.
type crud interface {
	List(*gin.Context)
	Get(*gin.Context)
	Create(*gin.Context)
	Update(*gin.Context)
	Delete(*gin.Context)
}

func mountCRUD(g *gin.RouterGroup, path string, h crud) {
	g.GET(path, h.List)
	g.POST(path, h.Create)
	g.GET(path+"/:id", h.Get)
	g.PUT(path+"/:id", h.Update)
	g.DELETE(path+"/:id", h.Delete)
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	httpH.RegisterValidators()
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}

	r := gin.New()
	if cfg.Tracing {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.AttachRequestContext(log))
	r.Use(httpMW.RequestLogger(log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/", cfg.HealthHandler.Root)
		r.GET("/health", cfg.HealthHandler.Health)
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	// Auth (public)
	if cfg.AuthHandler != nil {
		r.POST("/auth/register", cfg.AuthHandler.Register)
		r.POST("/auth/login", cfg.AuthHandler.Login)
	}
	if cfg.ReportHandler != nil {
		r.GET("/relatorios-ia/health", cfg.ReportHandler.Health)
	}

	protected := r.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}
	{
		if cfg.AuthHandler != nil {
			protected.GET("/auth/me", cfg.AuthHandler.Me)
		}

		// Roster
		if cfg.GuardianHandler != nil {
			mountCRUD(protected, "/responsaveis", cfg.GuardianHandler)
		}
		if cfg.DiagnosisHandler != nil {
			mountCRUD(protected, "/diagnosticos", cfg.DiagnosisHandler)
		}
		if cfg.ClassHandler != nil {
			mountCRUD(protected, "/turmas", cfg.ClassHandler)
		}
		if cfg.ChildHandler != nil {
			mountCRUD(protected, "/criancas", cfg.ChildHandler)
		}
		if cfg.ActivityHandler != nil {
			mountCRUD(protected, "/atividades", cfg.ActivityHandler)
		}

		// Progress
		if cfg.ProgressHandler != nil {
			protected.POST("/progresso/registrar-minijogo", cfg.ProgressHandler.RecordMiniGame)
			protected.POST("/progresso/registrar", cfg.ProgressHandler.Record)
			protected.GET("/progresso/crianca/:id", cfg.ProgressHandler.ListByChild)
			protected.GET("/progresso/crianca/:id/resumo", cfg.ProgressHandler.Summary)
			protected.GET("/progresso/atividade/:id", cfg.ProgressHandler.ListByActivity)
		}

		// Reports
		if cfg.ReportHandler != nil {
			protected.POST("/relatorios-ia/crianca", cfg.ReportHandler.GenerateChild)
			protected.POST("/relatorios-ia/turma", cfg.ReportHandler.GenerateClass)
			protected.GET("/relatorios-ia/crianca/:id/preview", cfg.ReportHandler.PreviewChild)
			protected.GET("/relatorios-ia/crianca/:id/historico", cfg.ReportHandler.History)
			protected.GET("/relatorios-ia/turma/preview", cfg.ReportHandler.PreviewClass)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		response.RespondError(c, nethttp.StatusNotFound, "not_found", errRouteNotFound)
	})
	return r
}
