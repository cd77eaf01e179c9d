package games

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ReportKindChild = "crianca"
	ReportKindClass = "turma"
)

// GeneratedReport persists one LLM report as returned to the caller.
type GeneratedReport struct {
	ID         uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Kind       string         `gorm:"column:tipo;not null;index:idx_relatorios_ia_tipo_alvo,priority:1" json:"tipo"`
	ChildID    *uint          `gorm:"column:crianca_id;index:idx_relatorios_ia_tipo_alvo,priority:2" json:"crianca_id"`
	ClassID    *uint          `gorm:"column:turma_id" json:"turma_id"`
	PeriodDays *int           `gorm:"column:periodo_dias" json:"periodo_dias"`
	Model      string         `gorm:"column:modelo;not null" json:"modelo"`
	Content    datatypes.JSON `gorm:"column:conteudo;not null" json:"conteudo"`
	CreatedAt  time.Time      `gorm:"column:created_at;not null" json:"created_at"`
}

func (GeneratedReport) TableName() string { return "relatorios_ia" }
