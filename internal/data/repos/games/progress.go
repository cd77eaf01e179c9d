package games

import (
	"database/sql"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/funny-backend/internal/domain"
	"github.com/yungbote/funny-backend/internal/pkg/dbctx"
	"github.com/yungbote/funny-backend/internal/pkg/logger"
)

type ProgressRepo interface {
	Create(dbc dbctx.Context, row *domain.Progress) error
	// UpdateResult overwrites the mutable result fields of an existing row.
	// created_at is never touched.
	UpdateResult(dbc dbctx.Context, row *domain.Progress) error
	// FindLatest returns the newest row for the pair by created_at, then id.
	FindLatest(dbc dbctx.Context, childID, activityID uint) (*domain.Progress, error)
	GetByID(dbc dbctx.Context, id uint) (*domain.Progress, error)
	ListByChild(dbc dbctx.Context, childID uint, since *time.Time) ([]*domain.Progress, error)
	ListByChildIDs(dbc dbctx.Context, childIDs []uint, since *time.Time) ([]*domain.Progress, error)
	ListByActivity(dbc dbctx.Context, activityID uint) ([]*domain.Progress, error)
	SummaryByChild(dbc dbctx.Context, childID uint) (*SummaryRow, error)
}

// SummaryRow is the raw aggregate over a child's rows.
type SummaryRow struct {
	Total     int64
	Completed int64
	AvgScore  sql.NullFloat64
}

type progressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	return &progressRepo{db: db, log: baseLog.With("repo", "ProgressRepo")}
}

func (r *progressRepo) Create(dbc dbctx.Context, row *domain.Progress) error {
	if row == nil {
		return nil
	}
	return dbc.Conn(r.db).Omit(clause.Associations).Create(row).Error
}

func (r *progressRepo) UpdateResult(dbc dbctx.Context, row *domain.Progress) error {
	if row == nil || row.ID == 0 {
		return nil
	}
	return dbc.Conn(r.db).
		Model(&domain.Progress{}).
		Where("id = ?", row.ID).
		Updates(map[string]interface{}{
			"pontuacao":       row.Score,
			"observacoes":     row.Notes,
			"concluida":       row.Completed,
			"tempo_segundos":  row.ElapsedSeconds,
			"responsavel_id":  row.GuardianID,
			"data_realizacao": row.PerformedAt,
		}).Error
}

func (r *progressRepo) FindLatest(dbc dbctx.Context, childID, activityID uint) (*domain.Progress, error) {
	if childID == 0 || activityID == 0 {
		return nil, nil
	}
	var rows []*domain.Progress
	if err := dbc.Conn(r.db).
		Where("crianca_id = ? AND atividade_id = ?", childID, activityID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *progressRepo) GetByID(dbc dbctx.Context, id uint) (*domain.Progress, error) {
	if id == 0 {
		return nil, nil
	}
	var rows []*domain.Progress
	if err := dbc.Conn(r.db).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *progressRepo) ListByChild(dbc dbctx.Context, childID uint, since *time.Time) ([]*domain.Progress, error) {
	if childID == 0 {
		return []*domain.Progress{}, nil
	}
	return r.ListByChildIDs(dbc, []uint{childID}, since)
}

// ListByChildIDs preloads the activity of each row. A non-nil since keeps rows
// performed at or after it.
func (r *progressRepo) ListByChildIDs(dbc dbctx.Context, childIDs []uint, since *time.Time) ([]*domain.Progress, error) {
	out := []*domain.Progress{}
	if len(childIDs) == 0 {
		return out, nil
	}
	q := dbc.Conn(r.db).
		Preload("Activity").
		Where("crianca_id IN ?", childIDs)
	if since != nil {
		q = q.Where("data_realizacao >= ?", since.UTC())
	}
	if err := q.Order("created_at ASC").Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *progressRepo) ListByActivity(dbc dbctx.Context, activityID uint) ([]*domain.Progress, error) {
	out := []*domain.Progress{}
	if activityID == 0 {
		return out, nil
	}
	if err := dbc.Conn(r.db).
		Where("atividade_id = ?", activityID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *progressRepo) SummaryByChild(dbc dbctx.Context, childID uint) (*SummaryRow, error) {
	out := &SummaryRow{}
	if childID == 0 {
		return out, nil
	}
	err := dbc.Conn(r.db).
		Model(&domain.Progress{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN concluida THEN 1 ELSE 0 END), 0) AS completed, AVG(pontuacao) AS avg_score").
		Where("crianca_id = ?", childID).
		Scan(out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
