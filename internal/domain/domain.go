package domain

import (
	"github.com/yungbote/funny-backend/internal/domain/auth"
	"github.com/yungbote/funny-backend/internal/domain/games"
	"github.com/yungbote/funny-backend/internal/domain/roster"
)

type (
	User = auth.User

	Guardian  = roster.Guardian
	Class     = roster.Class
	Child     = roster.Child
	Diagnosis = roster.Diagnosis

	Activity        = games.Activity
	Progress        = games.Progress
	Summary         = games.Summary
	GeneratedReport = games.GeneratedReport
)

const (
	CategoryMath      = games.CategoryMath
	CategoryPortugues = games.CategoryPortugues
	CategoryLogic     = games.CategoryLogic
	CategoryDaily     = games.CategoryDaily

	DefaultDifficulty = games.DefaultDifficulty

	ReportKindChild = games.ReportKindChild
	ReportKindClass = games.ReportKindClass
)

// Models lists every persisted type in dependency order.
func Models() []any {
	return []any{
		&User{},
		&Guardian{},
		&Diagnosis{},
		&Class{},
		&Child{},
		&Activity{},
		&Progress{},
		&GeneratedReport{},
	}
}
