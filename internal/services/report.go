package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/yungbote/funny-backend/internal/data/repos"
	"github.com/yungbote/funny-backend/internal/domain"
	"github.com/yungbote/funny-backend/internal/pkg/dbctx"
	"github.com/yungbote/funny-backend/internal/pkg/logger"
	"github.com/yungbote/funny-backend/internal/pkg/pointers"
	"github.com/yungbote/funny-backend/internal/platform/openai"
)

const (
	diagnosisNotSpecified = "Not specified"
	reportTemperature     = 0.7
	reportMaxTokens       = 2000
	defaultHistoryLimit   = 20
	maxHistoryLimit       = 100
	defaultReportTimeout  = 120 * time.Second
)

const childReportSystemPrompt = "Você é um especialista em educação especial e desenvolvimento infantil. " +
	"Analise os dados de progresso de crianças em mini-jogos terapêuticos e responda somente com JSON válido."

const classReportSystemPrompt = "Você é um especialista em educação especial e gestão de turmas. " +
	"Analise os dados agregados de uma turma em mini-jogos terapêuticos e responda somente com JSON válido."

// ReportService prepares progress aggregates and turns them into LLM reports.
type ReportService interface {
	PrepareChildData(ctx context.Context, childID uint, periodDays *int) (*ChildData, error)
	PrepareClassData(ctx context.Context, classID *uint, periodDays *int) (*ClassData, error)
	GenerateChildReport(ctx context.Context, childID uint, periodDays *int) (*ChildReport, error)
	GenerateClassReport(ctx context.Context, classID *uint, periodDays *int) (*ClassReport, error)
	History(ctx context.Context, childID uint, limit int) ([]*domain.GeneratedReport, error)
	Health() ReportHealth
}

type ReportDeps struct {
	Children   repos.ChildRepo
	Classes    repos.ClassRepo
	Activities repos.ActivityRepo
	Progress   repos.ProgressRepo
	Reports    repos.ReportRepo
	// Client may be nil when no API key is configured.
	Client  openai.Client
	Limiter *rate.Limiter
	Timeout time.Duration
}

type reportService struct {
	log     *logger.Logger
	deps    ReportDeps
	group   singleflight.Group
	timeout time.Duration
	now     func() time.Time
}

func NewReportService(log *logger.Logger, deps ReportDeps) ReportService {
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = defaultReportTimeout
	}
	return &reportService{
		log:     log.With("service", "ReportService"),
		deps:    deps,
		timeout: timeout,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *reportService) PrepareChildData(ctx context.Context, childID uint, periodDays *int) (*ChildData, error) {
	const op = "report.child_data"
	since, err := s.since(op, periodDays)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	child, err := s.deps.Children.GetByID(dbc, childID)
	if err != nil {
		return nil, ClassifyDBError(op, err)
	}
	if child == nil {
		return nil, NotFoundError(op, "child not found")
	}
	rows, err := s.deps.Progress.ListByChild(dbc, childID, since)
	if err != nil {
		return nil, ClassifyDBError(op, err)
	}
	acts, err := s.activitiesOf(dbc, rows)
	if err != nil {
		return nil, ClassifyDBError(op, err)
	}
	data := buildChildData(child, rows, acts)
	return &data, nil
}

func (s *reportService) PrepareClassData(ctx context.Context, classID *uint, periodDays *int) (*ClassData, error) {
	const op = "report.class_data"
	since, err := s.since(op, periodDays)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}

	var children []*domain.Child
	if classID != nil {
		class, err := s.deps.Classes.GetByID(dbc, *classID)
		if err != nil {
			return nil, ClassifyDBError(op, err)
		}
		if class == nil {
			return nil, NotFoundError(op, "class not found")
		}
		children, err = s.deps.Children.ListByClass(dbc, *classID)
		if err != nil {
			return nil, ClassifyDBError(op, err)
		}
	} else {
		children, err = s.deps.Children.List(dbc, 0, 0)
		if err != nil {
			return nil, ClassifyDBError(op, err)
		}
	}

	ids := make([]uint, 0, len(children))
	for _, c := range children {
		ids = append(ids, c.ID)
	}
	rows, err := s.deps.Progress.ListByChildIDs(dbc, ids, since)
	if err != nil {
		return nil, ClassifyDBError(op, err)
	}
	byChild := make(map[uint][]*domain.Progress, len(children))
	for _, r := range rows {
		byChild[r.ChildID] = append(byChild[r.ChildID], r)
	}

	out := &ClassData{
		TotalChildren: len(children),
		Children:      make([]ChildData, 0, len(children)),
		Stats:         ClassStats{DiagnosisDistribution: map[string]int{}},
	}
	for _, c := range children {
		childRows := byChild[c.ID]
		acts, err := s.activitiesOf(dbc, childRows)
		if err != nil {
			return nil, ClassifyDBError(op, err)
		}
		cd := buildChildData(c, childRows, acts)
		out.Stats.DiagnosisDistribution[cd.Diagnosis]++
		out.Children = append(out.Children, cd)
	}

	played, err := s.activitiesOf(dbc, rows)
	if err != nil {
		return nil, ClassifyDBError(op, err)
	}
	if len(played) == 0 {
		played, err = s.deps.Activities.List(dbc, 0, 0)
		if err != nil {
			return nil, ClassifyDBError(op, err)
		}
	}
	out.Activities = toActivityData(played)
	out.Stats.TotalActivities = len(out.Activities)
	out.Stats.Categories = distinctCategories(out.Activities)
	return out, nil
}

func (s *reportService) GenerateChildReport(ctx context.Context, childID uint, periodDays *int) (*ChildReport, error) {
	const op = "report.generate_child"
	if err := s.ready(op); err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s:%d:%d", domain.ReportKindChild, childID, pointers.Deref(periodDays))
	v, err := s.shared(ctx, op, key, func(ctx context.Context) (any, error) {
		return s.generateChild(ctx, childID, periodDays)
	})
	if err != nil {
		return nil, err
	}
	return v.(*ChildReport), nil
}

func (s *reportService) generateChild(ctx context.Context, childID uint, periodDays *int) (*ChildReport, error) {
	const op = "report.generate_child"
	data, err := s.PrepareChildData(ctx, childID, periodDays)
	if err != nil {
		return nil, err
	}
	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, OperationalError(op, "encode child data", err)
	}
	prompt := "Analise os dados de progresso da criança abaixo e gere um relatório de desempenho.\n\n" +
		"DADOS DA CRIANÇA:\n" + string(payload) + "\n\n" +
		"Responda com um objeto JSON com exatamente estas chaves:\n" +
		"- \"resumo_geral\": objeto com \"pontos_fortes\" (lista), \"areas_melhoria\" (lista), \"progresso_geral\" (texto) e \"recomendacoes\" (lista);\n" +
		"- \"desempenho_por_categoria\": objeto cujas chaves são as categorias jogadas, cada uma com \"media_pontuacao\", \"observacoes\" e \"tendencia\";\n" +
		"- \"resumo\": texto de dois a três parágrafos, em português, para pais e educadores.\n" +
		"Considere o diagnóstico da criança, identifique padrões entre categorias e seja construtivo."

	body, err := s.call(ctx, op, childReportSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}
	overview, ok := body["resumo_geral"].(map[string]any)
	if !ok {
		return nil, OperationalError(op, "llm response missing resumo_geral", nil)
	}
	summary, ok := body["resumo"].(string)
	if !ok {
		return nil, OperationalError(op, "llm response missing resumo", nil)
	}
	byCategory, _ := body["desempenho_por_categoria"].(map[string]any)
	if byCategory == nil {
		byCategory = map[string]any{}
	}

	report := &ChildReport{
		ChildID:     data.ID,
		ChildName:   data.Name,
		Age:         data.Age,
		Diagnosis:   data.Diagnosis,
		Overview:    overview,
		ByCategory:  byCategory,
		Summary:     summary,
		GeneratedAt: s.now(),
		Period:      periodLabel(periodDays),
	}
	report.ReportID = s.persist(ctx, op, &domain.GeneratedReport{
		Kind:       domain.ReportKindChild,
		ChildID:    pointers.Uint(childID),
		PeriodDays: positiveDays(periodDays),
	}, report)
	return report, nil
}

func (s *reportService) GenerateClassReport(ctx context.Context, classID *uint, periodDays *int) (*ClassReport, error) {
	const op = "report.generate_class"
	if err := s.ready(op); err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s:%d:%d", domain.ReportKindClass, pointers.Deref(classID), pointers.Deref(periodDays))
	v, err := s.shared(ctx, op, key, func(ctx context.Context) (any, error) {
		return s.generateClass(ctx, classID, periodDays)
	})
	if err != nil {
		return nil, err
	}
	return v.(*ClassReport), nil
}

func (s *reportService) generateClass(ctx context.Context, classID *uint, periodDays *int) (*ClassReport, error) {
	const op = "report.generate_class"
	data, err := s.PrepareClassData(ctx, classID, periodDays)
	if err != nil {
		return nil, err
	}
	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, OperationalError(op, "encode class data", err)
	}
	prompt := "Analise os dados agregados da turma abaixo e gere um relatório coletivo.\n\n" +
		"DADOS DA TURMA:\n" + string(payload) + "\n\n" +
		"Responda com um objeto JSON com exatamente estas chaves:\n" +
		"- \"resumo_geral_turma\": objeto com \"desempenho_geral\" (texto), \"pontos_fortes_turma\" (lista), \"desafios_comuns\" (lista) e \"recomendacoes_pedagogicas\" (lista);\n" +
		"- \"distribuicao_diagnosticos\": objeto com a análise por diagnóstico;\n" +
		"- \"performance_media\": objeto com as médias gerais e por categoria;\n" +
		"- \"atividades_mais_efetivas\": lista de objetos com \"titulo\", \"categoria\" e \"motivo\";\n" +
		"- \"resumo\": texto de dois a três parágrafos, em português, para a coordenação pedagógica."

	body, err := s.call(ctx, op, classReportSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}
	overview, ok := body["resumo_geral_turma"].(map[string]any)
	if !ok {
		return nil, OperationalError(op, "llm response missing resumo_geral_turma", nil)
	}
	summary, ok := body["resumo"].(string)
	if !ok {
		return nil, OperationalError(op, "llm response missing resumo", nil)
	}
	dist, _ := body["distribuicao_diagnosticos"].(map[string]any)
	if dist == nil {
		dist = map[string]any{}
	}
	perf, _ := body["performance_media"].(map[string]any)
	if perf == nil {
		perf = map[string]any{}
	}
	top, _ := body["atividades_mais_efetivas"].([]any)
	if top == nil {
		top = []any{}
	}

	report := &ClassReport{
		ClassID:               classID,
		TotalChildren:         data.TotalChildren,
		Overview:              overview,
		DiagnosisDistribution: dist,
		AvgPerformance:        perf,
		TopActivities:         top,
		Summary:               summary,
		GeneratedAt:           s.now(),
		Period:                periodLabel(periodDays),
	}
	report.ReportID = s.persist(ctx, op, &domain.GeneratedReport{
		Kind:       domain.ReportKindClass,
		ClassID:    classID,
		PeriodDays: positiveDays(periodDays),
	}, report)
	return report, nil
}

func (s *reportService) History(ctx context.Context, childID uint, limit int) ([]*domain.GeneratedReport, error) {
	const op = "report.history"
	dbc := dbctx.Context{Ctx: ctx}
	child, err := s.deps.Children.GetByID(dbc, childID)
	if err != nil {
		return nil, ClassifyDBError(op, err)
	}
	if child == nil {
		return nil, NotFoundError(op, "child not found")
	}
	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}
	out, err := s.deps.Reports.ListByChild(dbc, childID, limit)
	if err != nil {
		return nil, ClassifyDBError(op, err)
	}
	return out, nil
}

func (s *reportService) Health() ReportHealth {
	if s.deps.Client == nil {
		return ReportHealth{
			Status:  "misconfigured",
			Message: openai.ErrMissingAPIKey.Error(),
		}
	}
	return ReportHealth{
		Status:           "healthy",
		APIKeyConfigured: true,
		Model:            s.deps.Client.Model(),
		Message:          "AI report service available",
	}
}

func (s *reportService) ready(op string) error {
	if s.deps.Client == nil {
		return OperationalError(op, openai.ErrMissingAPIKey.Error(), openai.ErrMissingAPIKey)
	}
	return nil
}

// shared runs fn once per key for all concurrent callers. The flight is
// detached from the caller that started it and bounded by the service
// timeout; each caller stops waiting when its own ctx ends.
func (s *reportService) shared(ctx context.Context, op, key string, fn func(context.Context) (any, error)) (any, error) {
	ch := s.group.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return fn(fctx)
	})
	select {
	case res := <-ch:
		if res.Shared {
			s.log.Debug("report shared", "key", key)
		}
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, canceledError(op, ctx.Err())
	}
}

func canceledError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return OperationalError(op, "report generation timed out", err)
	}
	return OperationalError(op, "request canceled", err)
}

func (s *reportService) call(ctx context.Context, op, system, prompt string) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if s.deps.Limiter != nil {
		if err := s.deps.Limiter.Wait(ctx); err != nil {
			return nil, OperationalError(op, "report rate limit", err)
		}
	}
	start := time.Now()
	body, err := s.deps.Client.GenerateJSON(ctx, openai.ChatRequest{
		System:      system,
		User:        prompt,
		Temperature: pointers.Float64(reportTemperature),
		MaxTokens:   reportMaxTokens,
	})
	if err != nil {
		s.log.Warn("llm report failed", "op", op, "error", err)
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, canceledError(op, err)
		}
		return nil, OperationalError(op, "report generation failed", err)
	}
	s.log.Info("llm report generated", "op", op, "duration_ms", time.Since(start).Milliseconds())
	return body, nil
}

// persist stores the report. A storage failure is logged and the report is
// still returned since the LLM call already succeeded.
func (s *reportService) persist(ctx context.Context, op string, row *domain.GeneratedReport, report any) uint {
	content, err := json.Marshal(report)
	if err != nil {
		s.log.Error("encode report", "op", op, "error", err)
		return 0
	}
	row.Model = s.deps.Client.Model()
	row.Content = content
	row.CreatedAt = s.now().Truncate(time.Microsecond)
	if err := s.deps.Reports.Create(dbctx.Context{Ctx: ctx}, row); err != nil {
		s.log.Error("persist report", "op", op, "error", err)
		return 0
	}
	return row.ID
}

func (s *reportService) since(op string, periodDays *int) (*time.Time, error) {
	if periodDays == nil || *periodDays == 0 {
		return nil, nil
	}
	if *periodDays < 0 {
		return nil, ValidationError(op, "periodo_dias must be positive")
	}
	t := s.now().AddDate(0, 0, -*periodDays)
	return &t, nil
}

func (s *reportService) activitiesOf(dbc dbctx.Context, rows []*domain.Progress) ([]*domain.Activity, error) {
	seen := map[uint]struct{}{}
	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		if _, ok := seen[r.ActivityID]; ok {
			continue
		}
		seen[r.ActivityID] = struct{}{}
		ids = append(ids, r.ActivityID)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return s.deps.Activities.GetByIDs(dbc, ids)
}

func buildChildData(child *domain.Child, rows []*domain.Progress, acts []*domain.Activity) ChildData {
	diagnosis := diagnosisNotSpecified
	if child.Diagnosis != nil && strings.TrimSpace(child.Diagnosis.Type) != "" {
		diagnosis = child.Diagnosis.Type
	}
	progress := make([]ProgressData, 0, len(rows))
	for _, r := range rows {
		pd := ProgressData{
			ID:        r.ID,
			Score:     r.Score,
			Completed: r.Completed,
			Notes:     r.Notes,
		}
		if r.Activity != nil {
			pd.ActivityTitle = r.Activity.Title
			pd.ActivityCategory = pointers.String(r.Activity.Category)
		}
		progress = append(progress, pd)
	}
	return ChildData{
		ID:         child.ID,
		Name:       child.Name,
		Age:        child.Age,
		Diagnosis:  diagnosis,
		Progress:   progress,
		Activities: toActivityData(acts),
		Stats:      computeChildStats(progress),
	}
}

func toActivityData(acts []*domain.Activity) []ActivityData {
	out := make([]ActivityData, 0, len(acts))
	for _, a := range acts {
		out = append(out, ActivityData{
			ID:          a.ID,
			Title:       a.Title,
			Description: a.Description,
			Category:    a.Category,
		})
	}
	return out
}

func periodLabel(periodDays *int) string {
	if periodDays != nil && *periodDays > 0 {
		return fmt.Sprintf("Últimos %d dias", *periodDays)
	}
	return "Todo o histórico"
}

func positiveDays(periodDays *int) *int {
	if periodDays == nil || *periodDays <= 0 {
		return nil
	}
	return pointers.Int(*periodDays)
}
