package roster

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/funny-backend/internal/domain"
	"github.com/yungbote/funny-backend/internal/pkg/dbctx"
	"github.com/yungbote/funny-backend/internal/pkg/logger"
)

type ClassRepo interface {
	Create(dbc dbctx.Context, row *domain.Class) error
	GetByID(dbc dbctx.Context, id uint) (*domain.Class, error)
	GetDetailed(dbc dbctx.Context, id uint) (*domain.Class, error)
	List(dbc dbctx.Context, offset, limit int) ([]*domain.Class, error)
	Update(dbc dbctx.Context, row *domain.Class) error
	Delete(dbc dbctx.Context, id uint) (bool, error)
}

type classRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClassRepo(db *gorm.DB, baseLog *logger.Logger) ClassRepo {
	return &classRepo{db: db, log: baseLog.With("repo", "ClassRepo")}
}

func (r *classRepo) Create(dbc dbctx.Context, row *domain.Class) error {
	if row == nil {
		return nil
	}
	return dbc.Conn(r.db).Omit(clause.Associations).Create(row).Error
}

// GetByID loads the bare row.
func (r *classRepo) GetByID(dbc dbctx.Context, id uint) (*domain.Class, error) {
	return r.get(dbc.Conn(r.db), id)
}

// GetDetailed also loads the guardian and the guardian's classes.
func (r *classRepo) GetDetailed(dbc dbctx.Context, id uint) (*domain.Class, error) {
	return r.get(withGuardian(dbc.Conn(r.db)), id)
}

func (r *classRepo) get(q *gorm.DB, id uint) (*domain.Class, error) {
	if id == 0 {
		return nil, nil
	}
	var rows []*domain.Class
	if err := q.Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *classRepo) List(dbc dbctx.Context, offset, limit int) ([]*domain.Class, error) {
	var out []*domain.Class
	q := withGuardian(dbc.Conn(r.db)).Order("id ASC").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *classRepo) Update(dbc dbctx.Context, row *domain.Class) error {
	if row == nil || row.ID == 0 {
		return nil
	}
	return dbc.Conn(r.db).
		Model(&domain.Class{}).
		Where("id = ?", row.ID).
		Updates(map[string]interface{}{
			"nome":           row.Name,
			"responsavel_id": row.GuardianID,
		}).Error
}

func (r *classRepo) Delete(dbc dbctx.Context, id uint) (bool, error) {
	if id == 0 {
		return false, nil
	}
	res := dbc.Conn(r.db).Where("id = ?", id).Delete(&domain.Class{})
	return res.RowsAffected > 0, res.Error
}

func withGuardian(q *gorm.DB) *gorm.DB {
	return q.Preload("Guardian").
		Preload("Guardian.Classes", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
}
