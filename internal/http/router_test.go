package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/funny-backend/internal/data/repos"
	"github.com/yungbote/funny-backend/internal/data/repos/testutil"
	httpH "github.com/yungbote/funny-backend/internal/http/handlers"
	httpMW "github.com/yungbote/funny-backend/internal/http/middleware"
	"github.com/yungbote/funny-backend/internal/observability"
	"github.com/yungbote/funny-backend/internal/services"
)

type apiClient struct {
	t      *testing.T
	engine *gin.Engine
	token  string
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)
	metrics, err := observability.New(prometheus.NewRegistry())
	require.NoError(t, err)

	users := repos.NewUserRepo(db, log)
	guardians := repos.NewGuardianRepo(db, log)
	classes := repos.NewClassRepo(db, log)
	children := repos.NewChildRepo(db, log)
	diagnoses := repos.NewDiagnosisRepo(db, log)
	activities := repos.NewActivityRepo(db, log)
	progress := repos.NewProgressRepo(db, log)
	reports := repos.NewReportRepo(db, log)

	auth := services.NewAuthService(db, log, users, services.AuthConfig{
		SecretKey:  "test-secret",
		AccessTTL:  time.Hour,
		BcryptCost: bcrypt.MinCost,
	})
	resolver := services.NewActivityResolver(db, log, activities, metrics)
	progressSvc := services.NewProgressService(db, log, resolver, services.NewGuardianResolver(children, classes), activities, progress, metrics)
	reportSvc := services.NewReportService(log, services.ReportDeps{
		Children:   children,
		Classes:    classes,
		Activities: activities,
		Progress:   progress,
		Reports:    reports,
	})

	engine := NewRouter(RouterConfig{
		Log:              log,
		AuthMiddleware:   httpMW.NewAuthMiddleware(log, auth),
		Metrics:          metrics,
		ServiceName:      "funny-test",
		HealthHandler:    httpH.NewHealthHandler("Funny Backend API", "test"),
		AuthHandler:      httpH.NewAuthHandler(auth),
		GuardianHandler:  httpH.NewGuardianHandler(services.NewGuardianService(db, log, guardians)),
		DiagnosisHandler: httpH.NewDiagnosisHandler(services.NewDiagnosisService(db, log, diagnoses)),
		ClassHandler:     httpH.NewClassHandler(services.NewClassService(db, log, classes, guardians)),
		ChildHandler:     httpH.NewChildHandler(services.NewChildService(db, log, children, classes, diagnoses)),
		ActivityHandler:  httpH.NewActivityHandler(services.NewActivityService(db, log, activities)),
		ProgressHandler:  httpH.NewProgressHandler(progressSvc),
		ReportHandler:    httpH.NewReportHandler(reportSvc),
	})
	return &apiClient{t: t, engine: engine}
}

func (a *apiClient) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type envelope struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

func (a *apiClient) login() {
	a.t.Helper()
	w := a.do(nethttp.MethodPost, "/auth/register", map[string]any{"nome": "Teste", "email": "teste@funny.local", "senha": "segredo123"})
	require.Equal(a.t, nethttp.StatusCreated, w.Code, w.Body.String())

	w = a.do(nethttp.MethodPost, "/auth/login", map[string]any{"email": "teste@funny.local", "senha": "segredo123"})
	require.Equal(a.t, nethttp.StatusOK, w.Code, w.Body.String())
	tok := decode[map[string]any](a.t, w)
	assert.Equal(a.t, "bearer", tok["token_type"])
	a.token = tok["access_token"].(string)
	require.NotEmpty(a.t, a.token)
}

func (a *apiClient) create(path string, body any) uint {
	a.t.Helper()
	w := a.do(nethttp.MethodPost, path, body)
	require.Equal(a.t, nethttp.StatusCreated, w.Code, w.Body.String())
	return uint(decode[map[string]any](a.t, w)["id"].(float64))
}

func TestPublicRoutes(t *testing.T) {
	api := newAPI(t)

	w := api.do(nethttp.MethodGet, "/healthcheck", nil)
	assert.Equal(t, nethttp.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	w = api.do(nethttp.MethodGet, "/health", nil)
	assert.Equal(t, "healthy", decode[map[string]any](t, w)["status"])

	w = api.do(nethttp.MethodGet, "/relatorios-ia/health", nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	health := decode[map[string]any](t, w)
	assert.Equal(t, "misconfigured", health["status"])
	assert.Equal(t, false, health["api_key_configured"])

	w = api.do(nethttp.MethodGet, "/metrics", nil)
	assert.Equal(t, nethttp.StatusOK, w.Code)

	w = api.do(nethttp.MethodGet, "/criancas", nil)
	assert.Equal(t, nethttp.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthorized", decode[envelope](t, w).Error.Code)

	w = api.do(nethttp.MethodGet, "/nope", nil)
	assert.Equal(t, nethttp.StatusNotFound, w.Code)
}

func TestMiniGameRecordingOverHTTP(t *testing.T) {
	api := newAPI(t)
	api.login()

	guardianID := api.create("/responsaveis", map[string]any{"nome": "Maria", "email": "maria@funny.local"})
	classID := api.create("/turmas", map[string]any{"nome": "Turma A", "responsavel_id": guardianID})
	diagnosisID := api.create("/diagnosticos", map[string]any{"tipo": "TEA"})
	childID := api.create("/criancas", map[string]any{"nome": "Ana", "idade": 7, "turma_id": classID, "diagnostico_id": diagnosisID})

	body := map[string]any{"pontuacao": 8.5, "categoria": "Lógica", "crianca_id": childID, "titulo": "Sequências"}
	w := api.do(nethttp.MethodPost, "/progresso/registrar-minijogo", body)
	require.Equal(t, nethttp.StatusCreated, w.Code, w.Body.String())
	first := decode[map[string]any](t, w)
	assert.Equal(t, 8.5, first["pontuacao"])
	assert.Equal(t, true, first["concluida"])
	assert.Equal(t, float64(guardianID), first["responsavel_id"])

	body["pontuacao"] = 6
	w = api.do(nethttp.MethodPost, "/progresso/registrar-minijogo", body)
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	second := decode[map[string]any](t, w)
	assert.Equal(t, first["id"], second["id"])
	assert.Equal(t, first["atividade_id"], second["atividade_id"])
	assert.Equal(t, float64(6), second["pontuacao"])

	w = api.do(nethttp.MethodGet, fmt.Sprintf("/progresso/crianca/%d", childID), nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = api.do(nethttp.MethodGet, fmt.Sprintf("/progresso/crianca/%d/resumo", childID), nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	sum := decode[map[string]any](t, w)
	assert.Equal(t, float64(1), sum["total"])
	assert.Equal(t, float64(6), sum["media_pontuacao"])

	w = api.do(nethttp.MethodGet, fmt.Sprintf("/relatorios-ia/crianca/%d/preview", childID), nil)
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	preview := decode[map[string]any](t, w)
	assert.Equal(t, "Ana", preview["nome"])
	assert.Equal(t, "TEA", preview["diagnostico"])

	w = api.do(nethttp.MethodPost, "/relatorios-ia/crianca", map[string]any{"crianca_id": childID})
	assert.Equal(t, nethttp.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "ai_not_configured", decode[envelope](t, w).Error.Code)
}

func TestMiniGameRejections(t *testing.T) {
	api := newAPI(t)
	api.login()
	childID := api.create("/criancas", map[string]any{"nome": "Bruno", "idade": 8})

	cases := []struct {
		name   string
		body   map[string]any
		status int
		code   string
	}{
		{"unknown category", map[string]any{"pontuacao": 5, "categoria": "Artes", "crianca_id": childID}, nethttp.StatusBadRequest, "invalid_request"},
		{"missing score", map[string]any{"categoria": "Lógica", "crianca_id": childID}, nethttp.StatusBadRequest, "invalid_request"},
		{"score above ten", map[string]any{"pontuacao": 11, "categoria": "Lógica", "crianca_id": childID}, nethttp.StatusBadRequest, "validation_error"},
		{"unknown child", map[string]any{"pontuacao": 5, "categoria": "Lógica", "crianca_id": 999}, nethttp.StatusNotFound, "not_found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := api.do(nethttp.MethodPost, "/progresso/registrar-minijogo", tc.body)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
			assert.Equal(t, tc.code, decode[envelope](t, w).Error.Code)
		})
	}

	w := api.do(nethttp.MethodGet, "/progresso/crianca/"+fmt.Sprint(childID), nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestChildPatchClearsClass(t *testing.T) {
	api := newAPI(t)
	api.login()
	classID := api.create("/turmas", map[string]any{"nome": "Turma B"})
	childID := api.create("/criancas", map[string]any{"nome": "Clara", "idade": 6, "turma_id": classID})
	path := fmt.Sprintf("/criancas/%d", childID)

	w := api.do(nethttp.MethodPut, path, map[string]any{"idade": 7})
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	got := decode[map[string]any](t, w)
	assert.Equal(t, float64(7), got["idade"])
	assert.Equal(t, float64(classID), got["turma_id"])

	w = api.do(nethttp.MethodPut, path, map[string]any{"turma_id": nil})
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	assert.Nil(t, decode[map[string]any](t, w)["turma_id"])

	w = api.do(nethttp.MethodDelete, path, nil)
	assert.Equal(t, nethttp.StatusNoContent, w.Code)
	w = api.do(nethttp.MethodGet, path, nil)
	assert.Equal(t, nethttp.StatusNotFound, w.Code)
}
