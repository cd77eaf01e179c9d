package games

import (
	"gorm.io/gorm"

	"github.com/yungbote/funny-backend/internal/domain"
	"github.com/yungbote/funny-backend/internal/pkg/dbctx"
	"github.com/yungbote/funny-backend/internal/pkg/logger"
)

type ReportRepo interface {
	Create(dbc dbctx.Context, row *domain.GeneratedReport) error
	ListByChild(dbc dbctx.Context, childID uint, limit int) ([]*domain.GeneratedReport, error)
}

type reportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReportRepo(db *gorm.DB, baseLog *logger.Logger) ReportRepo {
	return &reportRepo{db: db, log: baseLog.With("repo", "ReportRepo")}
}

func (r *reportRepo) Create(dbc dbctx.Context, row *domain.GeneratedReport) error {
	if row == nil {
		return nil
	}
	return dbc.Conn(r.db).Create(row).Error
}

// ListByChild returns the child's reports newest first.
func (r *reportRepo) ListByChild(dbc dbctx.Context, childID uint, limit int) ([]*domain.GeneratedReport, error) {
	out := []*domain.GeneratedReport{}
	if childID == 0 {
		return out, nil
	}
	q := dbc.Conn(r.db).
		Where("tipo = ? AND crianca_id = ?", domain.ReportKindChild, childID).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
