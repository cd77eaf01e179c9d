package auth

import (
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/funny-backend/internal/domain"
	"github.com/yungbote/funny-backend/internal/pkg/dbctx"
	"github.com/yungbote/funny-backend/internal/pkg/logger"
)

type UserRepo interface {
	Create(dbc dbctx.Context, row *domain.User) error
	GetByID(dbc dbctx.Context, id uint) (*domain.User, error)
	GetByEmail(dbc dbctx.Context, email string) (*domain.User, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) Create(dbc dbctx.Context, row *domain.User) error {
	if row == nil {
		return nil
	}
	return dbc.Conn(r.db).Create(row).Error
}

func (r *userRepo) GetByID(dbc dbctx.Context, id uint) (*domain.User, error) {
	if id == 0 {
		return nil, nil
	}
	var rows []*domain.User
	if err := dbc.Conn(r.db).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// GetByEmail matches case-insensitively; stored emails are lowercased on write.
func (r *userRepo) GetByEmail(dbc dbctx.Context, email string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	var rows []*domain.User
	if err := dbc.Conn(r.db).Where("email = ?", email).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}
