package services

import (
	"sort"
	"time"
)

// ChildData is the aggregate of one child's history sent to the LLM.
type ChildData struct {
	ID         uint           `json:"id"`
	Name       string         `json:"nome"`
	Age        int            `json:"idade"`
	Diagnosis  string         `json:"diagnostico"`
	Progress   []ProgressData `json:"progressos"`
	Activities []ActivityData `json:"atividades_realizadas"`
	Stats      ChildStats     `json:"resumo_estatisticas"`
}

type ProgressData struct {
	ID               uint    `json:"id"`
	Score            float64 `json:"pontuacao"`
	Completed        bool    `json:"concluida"`
	Notes            *string `json:"observacoes"`
	ActivityTitle    *string `json:"atividade_titulo"`
	ActivityCategory *string `json:"atividade_categoria"`
}

type ActivityData struct {
	ID          uint    `json:"id"`
	Title       *string `json:"titulo"`
	Description *string `json:"descricao,omitempty"`
	Category    string  `json:"categoria"`
}

type ChildStats struct {
	TotalProgress  int                `json:"total_progressos"`
	Completed      int                `json:"progressos_concluidos"`
	CompletionRate float64            `json:"taxa_conclusao"`
	AvgScore       float64            `json:"media_pontuacao"`
	MaxScore       float64            `json:"pontuacao_maxima"`
	MinScore       float64            `json:"pontuacao_minima"`
	AvgByCategory  map[string]float64 `json:"media_por_categoria"`
	TotalMiniGames int                `json:"total_mini_jogos_jogados"`
}

type ClassData struct {
	TotalChildren int            `json:"total_criancas"`
	Children      []ChildData    `json:"criancas"`
	Stats         ClassStats     `json:"estatisticas_gerais"`
	Activities    []ActivityData `json:"atividades_disponiveis"`
}

type ClassStats struct {
	DiagnosisDistribution map[string]int `json:"distribuicao_diagnosticos"`
	TotalActivities       int            `json:"total_atividades"`
	Categories            []string       `json:"categorias_atividades"`
}

type ChildReport struct {
	ReportID    uint           `json:"relatorio_id,omitempty"`
	ChildID     uint           `json:"crianca_id"`
	ChildName   string         `json:"nome_crianca"`
	Age         int            `json:"idade"`
	Diagnosis   string         `json:"diagnostico"`
	Overview    map[string]any `json:"resumo_geral"`
	ByCategory  map[string]any `json:"desempenho_por_categoria"`
	Summary     string         `json:"resumo"`
	GeneratedAt time.Time      `json:"data_geracao"`
	Period      string         `json:"periodo_analisado"`
}

type ClassReport struct {
	ReportID              uint           `json:"relatorio_id,omitempty"`
	ClassID               *uint          `json:"turma_id"`
	TotalChildren         int            `json:"total_criancas"`
	Overview              map[string]any `json:"resumo_geral_turma"`
	DiagnosisDistribution map[string]any `json:"distribuicao_diagnosticos"`
	AvgPerformance        map[string]any `json:"performance_media"`
	TopActivities         []any          `json:"atividades_mais_efetivas"`
	Summary               string         `json:"resumo"`
	GeneratedAt           time.Time      `json:"data_geracao"`
	Period                string         `json:"periodo_analisado"`
}

type ReportHealth struct {
	Status           string `json:"status"`
	APIKeyConfigured bool   `json:"api_key_configured"`
	Model            string `json:"model"`
	Message          string `json:"message"`
}

func computeChildStats(rows []ProgressData) ChildStats {
	stats := ChildStats{AvgByCategory: map[string]float64{}}
	if len(rows) == 0 {
		return stats
	}
	var (
		sum     float64
		byCat   = map[string][]float64{}
		minimum = rows[0].Score
		maximum = rows[0].Score
	)
	for _, r := range rows {
		sum += r.Score
		if r.Completed {
			stats.Completed++
		}
		if r.Score < minimum {
			minimum = r.Score
		}
		if r.Score > maximum {
			maximum = r.Score
		}
		if r.ActivityCategory != nil {
			byCat[*r.ActivityCategory] = append(byCat[*r.ActivityCategory], r.Score)
		}
	}
	total := len(rows)
	stats.TotalProgress = total
	stats.TotalMiniGames = total
	stats.CompletionRate = round2(float64(stats.Completed) / float64(total) * 100)
	stats.AvgScore = round2(sum / float64(total))
	stats.MaxScore = maximum
	stats.MinScore = minimum
	for cat, scores := range byCat {
		var s float64
		for _, v := range scores {
			s += v
		}
		stats.AvgByCategory[cat] = round2(s / float64(len(scores)))
	}
	return stats
}

func distinctCategories(acts []ActivityData) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(acts))
	for _, a := range acts {
		if _, ok := seen[a.Category]; ok {
			continue
		}
		seen[a.Category] = struct{}{}
		out = append(out, a.Category)
	}
	sort.Strings(out)
	return out
}
