package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/yungbote/funny-backend/internal/data/repos"
	"github.com/yungbote/funny-backend/internal/data/repos/testutil"
	"github.com/yungbote/funny-backend/internal/domain"
	"github.com/yungbote/funny-backend/internal/pkg/dbctx"
	"github.com/yungbote/funny-backend/internal/pkg/pointers"
	"github.com/yungbote/funny-backend/internal/platform/openai"
)

type fakeLLM struct {
	mu    sync.Mutex
	calls []openai.ChatRequest
	body  map[string]any
	err   error
}

func (f *fakeLLM) GenerateJSON(_ context.Context, req openai.ChatRequest) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return f.body, f.err
}

func (f *fakeLLM) Model() string { return "fake-model" }

func (f *fixture) reportService(t *testing.T, client openai.Client) *reportService {
	t.Helper()
	deps := ReportDeps{
		Children:   f.children,
		Classes:    f.classes,
		Activities: f.activities,
		Progress:   f.progress,
		Reports:    f.reports,
		Client:     client,
		Limiter:    rate.NewLimiter(rate.Inf, 1),
	}
	return NewReportService(testutil.Logger(t), deps).(*reportService)
}

func TestPrepareChildData(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	d := testutil.SeedDiagnosis(t, ctx, f.db, "TDAH")
	child := testutil.SeedChild(t, ctx, f.db, nil, &d.ID)
	math1 := testutil.SeedActivity(t, ctx, f.db, "Somas", domain.CategoryMath)
	math2 := testutil.SeedActivity(t, ctx, f.db, "Restas", domain.CategoryMath)
	logic := testutil.SeedActivity(t, ctx, f.db, "Padrões", domain.CategoryLogic)
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)
	testutil.SeedProgress(t, ctx, f.db, child.ID, math1.ID, 9, now.AddDate(0, 0, -2))
	testutil.SeedProgress(t, ctx, f.db, child.ID, math2.ID, 6, now.AddDate(0, 0, -3))
	testutil.SeedProgress(t, ctx, f.db, child.ID, logic.ID, 3, now.AddDate(0, 0, -40))

	svc := f.reportService(t, nil)
	svc.now = func() time.Time { return now }

	all, err := svc.PrepareChildData(ctx, child.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "TDAH", all.Diagnosis)
	assert.Len(t, all.Progress, 3)
	assert.Len(t, all.Activities, 3)
	assert.Equal(t, 3, all.Stats.TotalProgress)
	assert.Equal(t, 100.0, all.Stats.CompletionRate)
	assert.Equal(t, 6.0, all.Stats.AvgScore)
	assert.Equal(t, 9.0, all.Stats.MaxScore)
	assert.Equal(t, 3.0, all.Stats.MinScore)
	assert.Equal(t, 7.5, all.Stats.AvgByCategory[domain.CategoryMath])
	assert.Equal(t, 3.0, all.Stats.AvgByCategory[domain.CategoryLogic])

	recent, err := svc.PrepareChildData(ctx, child.ID, pointers.Int(30))
	require.NoError(t, err)
	assert.Equal(t, 2, recent.Stats.TotalProgress)
	assert.NotContains(t, recent.Stats.AvgByCategory, domain.CategoryLogic)

	_, err = svc.PrepareChildData(ctx, child.ID, pointers.Int(-1))
	assert.Equal(t, KindValidation, KindOf(err))
	_, err = svc.PrepareChildData(ctx, 999, nil)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestPrepareChildDataWithoutHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	child := testutil.SeedChild(t, ctx, f.db, nil, nil)
	data, err := f.reportService(t, nil).PrepareChildData(ctx, child.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, diagnosisNotSpecified, data.Diagnosis)
	assert.Empty(t, data.Progress)
	assert.Zero(t, data.Stats.AvgScore)
	assert.NotNil(t, data.Stats.AvgByCategory)
}

func TestPrepareClassData(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	class := testutil.SeedClass(t, ctx, f.db, nil)
	d := testutil.SeedDiagnosis(t, ctx, f.db, "TEA")
	a := testutil.SeedChild(t, ctx, f.db, &class.ID, &d.ID)
	b := testutil.SeedChild(t, ctx, f.db, &class.ID, nil)
	testutil.SeedChild(t, ctx, f.db, nil, nil)
	played := testutil.SeedActivity(t, ctx, f.db, "Rotina", domain.CategoryDaily)
	testutil.SeedActivity(t, ctx, f.db, "Unplayed", domain.CategoryMath)
	testutil.SeedProgress(t, ctx, f.db, a.ID, played.ID, 8, time.Now().UTC())
	testutil.SeedProgress(t, ctx, f.db, b.ID, played.ID, 4, time.Now().UTC())

	svc := f.reportService(t, nil)
	data, err := svc.PrepareClassData(ctx, &class.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, data.TotalChildren)
	assert.Equal(t, 1, data.Stats.DiagnosisDistribution["TEA"])
	assert.Equal(t, 1, data.Stats.DiagnosisDistribution[diagnosisNotSpecified])
	assert.Equal(t, 1, data.Stats.TotalActivities)
	assert.Equal(t, []string{domain.CategoryDaily}, data.Stats.Categories)

	everyone, err := svc.PrepareClassData(ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, everyone.TotalChildren)

	_, err = svc.PrepareClassData(ctx, pointers.Uint(404), nil)
	assert.Equal(t, KindNotFound, KindOf(err))

	empty := testutil.SeedClass(t, ctx, f.db, nil)
	fallback, err := svc.PrepareClassData(ctx, &empty.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, fallback.Stats.TotalActivities)
	assert.Equal(t, []string{domain.CategoryDaily, domain.CategoryMath}, fallback.Stats.Categories)
}

func TestGenerateChildReportPersists(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	child := testutil.SeedChild(t, ctx, f.db, nil, nil)
	llm := &fakeLLM{body: map[string]any{
		"resumo_geral":             map[string]any{"progresso_geral": "bom"},
		"desempenho_por_categoria": map[string]any{},
		"resumo":                   "Ana evoluiu.",
	}}
	svc := f.reportService(t, llm)

	report, err := svc.GenerateChildReport(ctx, child.ID, pointers.Int(7))
	require.NoError(t, err)
	assert.Equal(t, "Ana evoluiu.", report.Summary)
	assert.Equal(t, "Últimos 7 dias", report.Period)
	assert.NotZero(t, report.ReportID)
	require.Len(t, llm.calls, 1)
	assert.Equal(t, reportMaxTokens, llm.calls[0].MaxTokens)
	assert.Equal(t, reportTemperature, pointers.Deref(llm.calls[0].Temperature))
	assert.Contains(t, llm.calls[0].User, `"nome": "Ana"`)

	history, err := svc.History(ctx, child.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "fake-model", history[0].Model)
	assert.Equal(t, 7, pointers.Deref(history[0].PeriodDays))
	var stored ChildReport
	require.NoError(t, json.Unmarshal(history[0].Content, &stored))
	assert.Equal(t, "Ana evoluiu.", stored.Summary)

	_, err = svc.History(ctx, 999, 0)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestGenerateReportFailures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	child := testutil.SeedChild(t, ctx, f.db, nil, nil)

	unconfigured := f.reportService(t, nil)
	_, err := unconfigured.GenerateChildReport(ctx, child.ID, nil)
	assert.Equal(t, KindOperational, KindOf(err))
	assert.ErrorIs(t, err, openai.ErrMissingAPIKey)
	_, err = unconfigured.GenerateClassReport(ctx, nil, nil)
	assert.ErrorIs(t, err, openai.ErrMissingAPIKey)
	assert.Equal(t, "misconfigured", unconfigured.Health().Status)

	malformed := f.reportService(t, &fakeLLM{body: map[string]any{"resumo": "sem resumo geral"}})
	_, err = malformed.GenerateChildReport(ctx, child.ID, nil)
	assert.Equal(t, KindOperational, KindOf(err))

	upstream := errors.New("upstream 500")
	failing := f.reportService(t, &fakeLLM{err: upstream})
	_, err = failing.GenerateChildReport(ctx, child.ID, nil)
	assert.ErrorIs(t, err, upstream)

	assert.EqualValues(t, 0, f.count(t, &domain.GeneratedReport{}))
}

func TestGenerateClassReport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	class := testutil.SeedClass(t, ctx, f.db, nil)
	testutil.SeedChild(t, ctx, f.db, &class.ID, nil)
	llm := &fakeLLM{body: map[string]any{
		"resumo_geral_turma":       map[string]any{"desempenho_geral": "estável"},
		"atividades_mais_efetivas": []any{map[string]any{"titulo": "Rotina"}},
		"resumo":                   "A turma progrediu.",
	}}
	svc := f.reportService(t, llm)

	report, err := svc.GenerateClassReport(ctx, &class.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalChildren)
	assert.Equal(t, "Todo o histórico", report.Period)
	assert.Len(t, report.TopActivities, 1)
	assert.NotNil(t, report.AvgPerformance)

	health := svc.Health()
	assert.Equal(t, "healthy", health.Status)
	assert.True(t, health.APIKeyConfigured)
	assert.Equal(t, "fake-model", health.Model)
}

type limitRecordingReports struct {
	repos.ReportRepo
	limits []int
}

func (r *limitRecordingReports) ListByChild(dbc dbctx.Context, childID uint, limit int) ([]*domain.GeneratedReport, error) {
	r.limits = append(r.limits, limit)
	return r.ReportRepo.ListByChild(dbc, childID, limit)
}

func TestHistoryLimitIsBounded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	child := testutil.SeedChild(t, ctx, f.db, nil, nil)
	rec := &limitRecordingReports{ReportRepo: f.reports}
	f.reports = rec
	svc := f.reportService(t, nil)

	for _, limit := range []int{0, -5, 7, 100000000} {
		rows, err := svc.History(ctx, child.ID, limit)
		require.NoError(t, err)
		assert.Empty(t, rows)
	}
	assert.Equal(t, []int{defaultHistoryLimit, defaultHistoryLimit, 7, maxHistoryLimit}, rec.limits)
}

// gatedLLM blocks each call until release is closed.
type gatedLLM struct {
	fakeLLM
	entered chan struct{}
	release chan struct{}
}

func (g *gatedLLM) GenerateJSON(ctx context.Context, req openai.ChatRequest) (map[string]any, error) {
	select {
	case g.entered <- struct{}{}:
	default:
	}
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return g.fakeLLM.GenerateJSON(ctx, req)
}

func TestSharedReportSurvivesFirstCallerCancel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	child := testutil.SeedChild(t, ctx, f.db, nil, nil)
	llm := &gatedLLM{
		fakeLLM: fakeLLM{body: map[string]any{
			"resumo_geral": map[string]any{"progresso_geral": "bom"},
			"resumo":       "Ana evoluiu.",
		}},
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	svc := f.reportService(t, llm)

	firstCtx, cancelFirst := context.WithCancel(ctx)
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.GenerateChildReport(firstCtx, child.ID, nil)
		firstErr <- err
	}()
	select {
	case <-llm.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("llm call never started")
	}

	type result struct {
		report *ChildReport
		err    error
	}
	second := make(chan result, 1)
	go func() {
		r, err := svc.GenerateChildReport(ctx, child.ID, nil)
		second <- result{r, err}
	}()

	cancelFirst()
	err := <-firstErr
	require.Error(t, err)
	assert.Equal(t, KindOperational, KindOf(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "request canceled")

	time.Sleep(50 * time.Millisecond)
	close(llm.release)

	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, "Ana evoluiu.", res.report.Summary)
	assert.Len(t, llm.calls, 1)
}

func TestReportCallClassifiesCancellation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	child := testutil.SeedChild(t, ctx, f.db, nil, nil)
	svc := f.reportService(t, &fakeLLM{err: context.Canceled})

	_, err := svc.GenerateChildReport(ctx, child.ID, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "request canceled")
}
