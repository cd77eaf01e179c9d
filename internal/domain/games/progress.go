package games

import (
	"time"

	"github.com/yungbote/funny-backend/internal/domain/roster"
)

// Progress is the single canonical outcome of one child performing one activity.
// GuardianID is denormalized from Child -> Class -> Guardian at write time.
type Progress struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ChildID        uint      `gorm:"column:crianca_id;not null;uniqueIndex:uq_progresso_crianca_atividade,priority:1" json:"crianca_id"`
	ActivityID     uint      `gorm:"column:atividade_id;not null;uniqueIndex:uq_progresso_crianca_atividade,priority:2" json:"atividade_id"`
	GuardianID     *uint     `gorm:"column:responsavel_id;index" json:"responsavel_id"`
	Score          float64   `gorm:"column:pontuacao;not null;check:chk_progresso_pontuacao,pontuacao >= 0" json:"pontuacao"`
	Notes          *string   `gorm:"column:observacoes" json:"observacoes"`
	Completed      bool      `gorm:"column:concluida;not null;default:true" json:"concluida"`
	ElapsedSeconds *int      `gorm:"column:tempo_segundos" json:"tempo_segundos"`
	PerformedAt    time.Time `gorm:"column:data_realizacao;not null" json:"data_realizacao"`
	CreatedAt      time.Time `gorm:"column:created_at;not null;autoCreateTime:false" json:"created_at"`

	Child    *roster.Child    `gorm:"foreignKey:ChildID" json:"-"`
	Activity *Activity        `gorm:"foreignKey:ActivityID" json:"-"`
	Guardian *roster.Guardian `gorm:"foreignKey:GuardianID" json:"-"`
}

func (Progress) TableName() string { return "progresso" }

// Summary aggregates a child's progress rows.
type Summary struct {
	Total     int     `json:"total"`
	Completed int     `json:"concluidas"`
	AvgScore  float64 `json:"media_pontuacao"`
}
