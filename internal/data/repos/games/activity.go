package games

import (
	"gorm.io/gorm"

	"github.com/yungbote/funny-backend/internal/domain"
	"github.com/yungbote/funny-backend/internal/pkg/dbctx"
	"github.com/yungbote/funny-backend/internal/pkg/logger"
)

type ActivityRepo interface {
	Create(dbc dbctx.Context, row *domain.Activity) error
	GetByID(dbc dbctx.Context, id uint) (*domain.Activity, error)
	GetByIDs(dbc dbctx.Context, ids []uint) ([]*domain.Activity, error)
	// FindByTitleCategory returns the activity with exactly this title and
	// category. A nil title never matches.
	FindByTitleCategory(dbc dbctx.Context, title *string, category string) (*domain.Activity, error)
	List(dbc dbctx.Context, offset, limit int) ([]*domain.Activity, error)
	Update(dbc dbctx.Context, row *domain.Activity) error
	Delete(dbc dbctx.Context, id uint) (bool, error)
}

type activityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
	return &activityRepo{db: db, log: baseLog.With("repo", "ActivityRepo")}
}

func (r *activityRepo) Create(dbc dbctx.Context, row *domain.Activity) error {
	if row == nil {
		return nil
	}
	return dbc.Conn(r.db).Create(row).Error
}

func (r *activityRepo) GetByID(dbc dbctx.Context, id uint) (*domain.Activity, error) {
	if id == 0 {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []uint{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *activityRepo) GetByIDs(dbc dbctx.Context, ids []uint) ([]*domain.Activity, error) {
	var out []*domain.Activity
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.Conn(r.db).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *activityRepo) FindByTitleCategory(dbc dbctx.Context, title *string, category string) (*domain.Activity, error) {
	if title == nil || category == "" {
		return nil, nil
	}
	var rows []*domain.Activity
	if err := dbc.Conn(r.db).
		Where("titulo = ? AND categoria = ?", *title, category).
		Order("id ASC").
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *activityRepo) List(dbc dbctx.Context, offset, limit int) ([]*domain.Activity, error) {
	var out []*domain.Activity
	q := dbc.Conn(r.db).Order("id ASC").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *activityRepo) Update(dbc dbctx.Context, row *domain.Activity) error {
	if row == nil || row.ID == 0 {
		return nil
	}
	return dbc.Conn(r.db).
		Model(&domain.Activity{}).
		Where("id = ?", row.ID).
		Updates(map[string]interface{}{
			"categoria":         row.Category,
			"titulo":            row.Title,
			"descricao":         row.Description,
			"nivel_dificuldade": row.Difficulty,
		}).Error
}

func (r *activityRepo) Delete(dbc dbctx.Context, id uint) (bool, error) {
	if id == 0 {
		return false, nil
	}
	res := dbc.Conn(r.db).Where("id = ?", id).Delete(&domain.Activity{})
	return res.RowsAffected > 0, res.Error
}
