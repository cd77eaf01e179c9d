package roster

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/funny-backend/internal/domain"
	"github.com/yungbote/funny-backend/internal/pkg/dbctx"
	"github.com/yungbote/funny-backend/internal/pkg/logger"
)

type ChildRepo interface {
	Create(dbc dbctx.Context, row *domain.Child) error
	GetByID(dbc dbctx.Context, id uint) (*domain.Child, error)
	List(dbc dbctx.Context, offset, limit int) ([]*domain.Child, error)
	ListByClass(dbc dbctx.Context, classID uint) ([]*domain.Child, error)
	Update(dbc dbctx.Context, row *domain.Child) error
	Delete(dbc dbctx.Context, id uint) (bool, error)
}

type childRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChildRepo(db *gorm.DB, baseLog *logger.Logger) ChildRepo {
	return &childRepo{db: db, log: baseLog.With("repo", "ChildRepo")}
}

func (r *childRepo) Create(dbc dbctx.Context, row *domain.Child) error {
	if row == nil {
		return nil
	}
	return dbc.Conn(r.db).Omit(clause.Associations).Create(row).Error
}

// GetByID preloads the diagnosis.
func (r *childRepo) GetByID(dbc dbctx.Context, id uint) (*domain.Child, error) {
	if id == 0 {
		return nil, nil
	}
	var rows []*domain.Child
	if err := dbc.Conn(r.db).
		Preload("Diagnosis").
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

func (r *childRepo) List(dbc dbctx.Context, offset, limit int) ([]*domain.Child, error) {
	var out []*domain.Child
	q := dbc.Conn(r.db).Preload("Diagnosis").Order("id ASC").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *childRepo) ListByClass(dbc dbctx.Context, classID uint) ([]*domain.Child, error) {
	var out []*domain.Child
	if classID == 0 {
		return out, nil
	}
	if err := dbc.Conn(r.db).
		Preload("Diagnosis").
		Where("turma_id = ?", classID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *childRepo) Update(dbc dbctx.Context, row *domain.Child) error {
	if row == nil || row.ID == 0 {
		return nil
	}
	return dbc.Conn(r.db).
		Model(&domain.Child{}).
		Where("id = ?", row.ID).
		Updates(map[string]interface{}{
			"nome":           row.Name,
			"idade":          row.Age,
			"diagnostico_id": row.DiagnosisID,
			"turma_id":       row.ClassID,
		}).Error
}

func (r *childRepo) Delete(dbc dbctx.Context, id uint) (bool, error) {
	if id == 0 {
		return false, nil
	}
	res := dbc.Conn(r.db).Where("id = ?", id).Delete(&domain.Child{})
	return res.RowsAffected > 0, res.Error
}
