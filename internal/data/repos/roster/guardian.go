package roster

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/funny-backend/internal/domain"
	"github.com/yungbote/funny-backend/internal/pkg/dbctx"
	"github.com/yungbote/funny-backend/internal/pkg/logger"
)

type GuardianRepo interface {
	Create(dbc dbctx.Context, row *domain.Guardian) error
	GetByID(dbc dbctx.Context, id uint) (*domain.Guardian, error)
	GetByEmail(dbc dbctx.Context, email string) (*domain.Guardian, error)
	List(dbc dbctx.Context, offset, limit int) ([]*domain.Guardian, error)
	Update(dbc dbctx.Context, row *domain.Guardian) error
	Delete(dbc dbctx.Context, id uint) (bool, error)
}

type guardianRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGuardianRepo(db *gorm.DB, baseLog *logger.Logger) GuardianRepo {
	return &guardianRepo{db: db, log: baseLog.With("repo", "GuardianRepo")}
}

func (r *guardianRepo) Create(dbc dbctx.Context, row *domain.Guardian) error {
	if row == nil {
		return nil
	}
	return dbc.Conn(r.db).Omit(clause.Associations).Create(row).Error
}

// GetByID preloads the guardian's classes.
func (r *guardianRepo) GetByID(dbc dbctx.Context, id uint) (*domain.Guardian, error) {
	if id == 0 {
		return nil, nil
	}
	var rows []*domain.Guardian
	if err := dbc.Conn(r.db).
		Preload("Classes", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("id = ?", id).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *guardianRepo) GetByEmail(dbc dbctx.Context, email string) (*domain.Guardian, error) {
	if email == "" {
		return nil, nil
	}
	var rows []*domain.Guardian
	if err := dbc.Conn(r.db).Where("email = ?", email).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *guardianRepo) List(dbc dbctx.Context, offset, limit int) ([]*domain.Guardian, error) {
	var out []*domain.Guardian
	q := dbc.Conn(r.db).
		Preload("Classes", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("id ASC").
		Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *guardianRepo) Update(dbc dbctx.Context, row *domain.Guardian) error {
	if row == nil || row.ID == 0 {
		return nil
	}
	return dbc.Conn(r.db).
		Model(&domain.Guardian{}).
		Where("id = ?", row.ID).
		Updates(map[string]interface{}{
			"nome":     row.Name,
			"email":    row.Email,
			"telefone": row.Phone,
		}).Error
}

func (r *guardianRepo) Delete(dbc dbctx.Context, id uint) (bool, error) {
	if id == 0 {
		return false, nil
	}
	res := dbc.Conn(r.db).Where("id = ?", id).Delete(&domain.Guardian{})
	return res.RowsAffected > 0, res.Error
}
