package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/funny-backend/internal/data/repos"
	"github.com/yungbote/funny-backend/internal/domain"
	"github.com/yungbote/funny-backend/internal/domain/games"
	"github.com/yungbote/funny-backend/internal/pkg/dbctx"
	"github.com/yungbote/funny-backend/internal/pkg/logger"
)

type ActivityInput struct {
	Category    string
	Title       *string
	Description *string
	Difficulty  *int
}

type ActivityService interface {
	List(ctx context.Context, page Page) ([]*domain.Activity, error)
	Get(ctx context.Context, id uint) (*domain.Activity, error)
	Create(ctx context.Context, in ActivityInput) (*domain.Activity, error)
	Update(ctx context.Context, id uint, patch ActivityPatch) (*domain.Activity, error)
	Delete(ctx context.Context, id uint) error
}

type activityService struct {
	db         *gorm.DB
	log        *logger.Logger
	activities repos.ActivityRepo
}

func NewActivityService(db *gorm.DB, log *logger.Logger, activities repos.ActivityRepo) ActivityService {
	return &activityService{db: db, log: log.With("service", "ActivityService"), activities: activities}
}

func (s *activityService) List(ctx context.Context, page Page) ([]*domain.Activity, error) {
	rows, err := s.activities.List(dbctx.Context{Ctx: ctx}, page.Offset, page.Limit)
	if err != nil {
		return nil, ClassifyDBError("activity.list", err)
	}
	return rows, nil
}

func (s *activityService) Get(ctx context.Context, id uint) (*domain.Activity, error) {
	return s.get(dbctx.Context{Ctx: ctx}, "activity.get", id)
}

func (s *activityService) get(dbc dbctx.Context, op string, id uint) (*domain.Activity, error) {
	row, err := s.activities.GetByID(dbc, id)
	if err != nil {
		return nil, ClassifyDBError(op, err)
	}
	if row == nil {
		return nil, NotFoundError(op, "activity not found")
	}
	return row, nil
}

const activityExistsMsg = "an activity with this titulo and categoria already exists"

func (s *activityService) Create(ctx context.Context, in ActivityInput) (*domain.Activity, error) {
	const op = "activity.create"
	category, err := games.NormalizeCategory(in.Category)
	if err != nil {
		return nil, ValidationError(op, err.Error())
	}
	row := &domain.Activity{
		Category:    category,
		Title:       cleanText(in.Title),
		Description: cleanText(in.Description),
		Difficulty:  domain.DefaultDifficulty,
	}
	if in.Difficulty != nil {
		if *in.Difficulty < 1 {
			return nil, ValidationError(op, "nivel_dificuldade must be >= 1")
		}
		row.Difficulty = *in.Difficulty
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := s.ensureUnique(dbc, op, row); err != nil {
			return err
		}
		return duplicateAsValidation(op, s.activities.Create(dbc, row))
	})
	if err != nil {
		return nil, ClassifyDBError(op, err)
	}
	return row, nil
}

func (s *activityService) Update(ctx context.Context, id uint, patch ActivityPatch) (*domain.Activity, error) {
	const op = "activity.update"
	var out *domain.Activity
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		row, err := s.get(dbc, op, id)
		if err != nil {
			return err
		}
		if patch.Category != nil {
			if row.Category, err = games.NormalizeCategory(*patch.Category); err != nil {
				return ValidationError(op, err.Error())
			}
		}
		row.Title = patchedText(row.Title, patch.Title, patch.ClearTitle)
		row.Description = patchedText(row.Description, patch.Description, patch.ClearDescription)
		if patch.Difficulty != nil {
			if *patch.Difficulty < 1 {
				return ValidationError(op, "nivel_dificuldade must be >= 1")
			}
			row.Difficulty = *patch.Difficulty
		}
		if err := s.ensureUnique(dbc, op, row); err != nil {
			return err
		}
		out = row
		return duplicateAsValidation(op, s.activities.Update(dbc, row))
	})
	if err != nil {
		return nil, ClassifyDBError(op, err)
	}
	return out, nil
}

func (s *activityService) Delete(ctx context.Context, id uint) error {
	const op = "activity.delete"
	ok, err := s.activities.Delete(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return ClassifyDBError(op, err)
	}
	if !ok {
		return NotFoundError(op, "activity not found")
	}
	return nil
}

// duplicateAsValidation turns a unique violation from a concurrent writer that
// got past ensureUnique into the same validation error.
func duplicateAsValidation(op string, err error) error {
	if isUniqueViolation(err) {
		return &Error{Kind: KindValidation, Op: op, Msg: activityExistsMsg, Err: err}
	}
	return err
}

func (s *activityService) ensureUnique(dbc dbctx.Context, op string, row *domain.Activity) error {
	existing, err := s.activities.FindByTitleCategory(dbc, row.Title, row.Category)
	if err != nil {
		return ClassifyDBError(op, err)
	}
	if existing != nil && existing.ID != row.ID {
		return ValidationError(op, activityExistsMsg)
	}
	return nil
}
