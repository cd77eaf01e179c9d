package roster

import (
	"gorm.io/gorm"

	"github.com/yungbote/funny-backend/internal/domain"
	"github.com/yungbote/funny-backend/internal/pkg/dbctx"
	"github.com/yungbote/funny-backend/internal/pkg/logger"
)

type DiagnosisRepo interface {
	Create(dbc dbctx.Context, row *domain.Diagnosis) error
	GetByID(dbc dbctx.Context, id uint) (*domain.Diagnosis, error)
	GetByType(dbc dbctx.Context, tipo string) (*domain.Diagnosis, error)
	List(dbc dbctx.Context, offset, limit int) ([]*domain.Diagnosis, error)
	Update(dbc dbctx.Context, row *domain.Diagnosis) error
	Delete(dbc dbctx.Context, id uint) (bool, error)
}

type diagnosisRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDiagnosisRepo(db *gorm.DB, baseLog *logger.Logger) DiagnosisRepo {
	return &diagnosisRepo{db: db, log: baseLog.With("repo", "DiagnosisRepo")}
}

func (r *diagnosisRepo) Create(dbc dbctx.Context, row *domain.Diagnosis) error {
	if row == nil {
		return nil
	}
	return dbc.Conn(r.db).Create(row).Error
}

func (r *diagnosisRepo) GetByID(dbc dbctx.Context, id uint) (*domain.Diagnosis, error) {
	if id == 0 {
		return nil, nil
	}
	return r.first(dbc.Conn(r.db).Where("id = ?", id))
}

func (r *diagnosisRepo) GetByType(dbc dbctx.Context, tipo string) (*domain.Diagnosis, error) {
	if tipo == "" {
		return nil, nil
	}
	return r.first(dbc.Conn(r.db).Where("tipo = ?", tipo).Order("id ASC"))
}

func (r *diagnosisRepo) first(q *gorm.DB) (*domain.Diagnosis, error) {
	var rows []*domain.Diagnosis
	if err := q.Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *diagnosisRepo) List(dbc dbctx.Context, offset, limit int) ([]*domain.Diagnosis, error) {
	var out []*domain.Diagnosis
	q := dbc.Conn(r.db).Order("id ASC").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *diagnosisRepo) Update(dbc dbctx.Context, row *domain.Diagnosis) error {
	if row == nil || row.ID == 0 {
		return nil
	}
	return dbc.Conn(r.db).
		Model(&domain.Diagnosis{}).
		Where("id = ?", row.ID).
		Updates(map[string]interface{}{
			"tipo":      row.Type,
			"descricao": row.Description,
		}).Error
}

func (r *diagnosisRepo) Delete(dbc dbctx.Context, id uint) (bool, error) {
	if id == 0 {
		return false, nil
	}
	res := dbc.Conn(r.db).Where("id = ?", id).Delete(&domain.Diagnosis{})
	return res.RowsAffected > 0, res.Error
}
