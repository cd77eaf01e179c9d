package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/funny-backend/internal/data/repos"
	"github.com/yungbote/funny-backend/internal/domain"
	"github.com/yungbote/funny-backend/internal/domain/games"
	"github.com/yungbote/funny-backend/internal/pkg/dbctx"
	"github.com/yungbote/funny-backend/internal/pkg/logger"
)

// MiniGameMaxScore bounds scores submitted through the mini-game entry point.
const MiniGameMaxScore = 10

const (
	EntityActivity = "activity"
	EntityProgress = "progress"
)

// ActivityResolver finds or creates the activity identified by (title, category).
type ActivityResolver interface {
	ResolveOrCreate(dbc dbctx.Context, category string, title, description *string) (*domain.Activity, error)
}

type activityResolver struct {
	db         *gorm.DB
	log        *logger.Logger
	activities repos.ActivityRepo
	obs        ReconcileObserver
}

func NewActivityResolver(db *gorm.DB, log *logger.Logger, activities repos.ActivityRepo, obs ReconcileObserver) ActivityResolver {
	return &activityResolver{
		db:         db,
		log:        log.With("service", "ActivityResolver"),
		activities: activities,
		obs:        observerOrNop(obs),
	}
}

func (r *activityResolver) ResolveOrCreate(dbc dbctx.Context, category string, title, description *string) (*domain.Activity, error) {
	const op = "activity.resolve"
	canonical, err := games.NormalizeCategory(category)
	if err != nil {
		return nil, ValidationError(op, err.Error())
	}
	title = cleanText(title)

	existing, err := r.activities.FindByTitleCategory(dbc, title, canonical)
	if err != nil {
		return nil, ClassifyDBError(op, err)
	}
	if existing != nil {
		return existing, nil
	}

	row := &domain.Activity{
		Category:    canonical,
		Title:       title,
		Description: cleanText(description),
		Difficulty:  domain.DefaultDifficulty,
	}
	insErr := inSavepoint(dbc, r.db, func(sp dbctx.Context) error {
		return r.activities.Create(sp, row)
	})
	if insErr == nil {
		return row, nil
	}
	if title == nil || !isUniqueViolation(insErr) {
		return nil, ClassifyDBError(op, insErr)
	}

	// Another writer inserted the same (title, category) first.
	r.obs.ObserveReconcileConflict(EntityActivity)
	r.log.Debug("activity insert conflict, refetching", "categoria", canonical)
	existing, err = r.activities.FindByTitleCategory(dbc, title, canonical)
	if err != nil {
		return nil, ClassifyDBError(op, err)
	}
	if existing == nil {
		return nil, ClassifyDBError(op, insErr)
	}
	return existing, nil
}

// GuardianResolver derives the guardian of a child through its class.
type GuardianResolver interface {
	ResolveGuardian(dbc dbctx.Context, childID uint) (*uint, error)
}

type guardianResolver struct {
	children repos.ChildRepo
	classes  repos.ClassRepo
}

func NewGuardianResolver(children repos.ChildRepo, classes repos.ClassRepo) GuardianResolver {
	return &guardianResolver{children: children, classes: classes}
}

func (r *guardianResolver) ResolveGuardian(dbc dbctx.Context, childID uint) (*uint, error) {
	const op = "guardian.resolve"
	child, err := r.children.GetByID(dbc, childID)
	if err != nil {
		return nil, ClassifyDBError(op, err)
	}
	if child == nil {
		return nil, NotFoundError(op, "child not found")
	}
	if child.ClassID == nil {
		return nil, nil
	}
	class, err := r.classes.GetByID(dbc, *child.ClassID)
	if err != nil {
		return nil, ClassifyDBError(op, err)
	}
	if class == nil || class.GuardianID == nil {
		return nil, nil
	}
	id := *class.GuardianID
	return &id, nil
}

type RecordProgressInput struct {
	ChildID        uint
	ActivityID     uint
	Score          float64
	Notes          *string
	ElapsedSeconds *int
	// MaxScore bounds Score when positive.
	MaxScore float64
}

type MiniGameInput struct {
	ChildID        uint
	Category       string
	Title          *string
	Description    *string
	Notes          *string
	Score          float64
	ElapsedSeconds *int
}

type ProgressService interface {
	// RecordProgress writes the single progress row of (child, activity).
	// created reports whether this call inserted it.
	RecordProgress(ctx context.Context, in RecordProgressInput) (row *domain.Progress, created bool, err error)
	// RecordMiniGame resolves the activity and records progress in one transaction.
	RecordMiniGame(ctx context.Context, in MiniGameInput) (row *domain.Progress, created bool, err error)
	ListByChild(ctx context.Context, childID uint) ([]*domain.Progress, error)
	ListByActivity(ctx context.Context, activityID uint) ([]*domain.Progress, error)
	Summary(ctx context.Context, childID uint) (*domain.Summary, error)
}

type progressService struct {
	db         *gorm.DB
	log        *logger.Logger
	activities ActivityResolver
	guardians  GuardianResolver
	activity   repos.ActivityRepo
	progress   repos.ProgressRepo
	obs        ReconcileObserver
	now        func() time.Time
}

func NewProgressService(
	db *gorm.DB,
	log *logger.Logger,
	activities ActivityResolver,
	guardians GuardianResolver,
	activityRepo repos.ActivityRepo,
	progressRepo repos.ProgressRepo,
	obs ReconcileObserver,
) ProgressService {
	return &progressService{
		db:         db,
		log:        log.With("service", "ProgressService"),
		activities: activities,
		guardians:  guardians,
		activity:   activityRepo,
		progress:   progressRepo,
		obs:        observerOrNop(obs),
		now:        func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

func (s *progressService) RecordProgress(ctx context.Context, in RecordProgressInput) (*domain.Progress, bool, error) {
	const op = "progress.record"
	if err := validateProgress(op, in.Score, in.MaxScore, in.ElapsedSeconds); err != nil {
		return nil, false, err
	}

	var (
		out     *domain.Progress
		created bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, c, err := s.upsert(dbctx.Context{Ctx: ctx, Tx: tx}, in)
		if err != nil {
			return err
		}
		out, created = row, c
		return nil
	})
	return s.finish(op, out, created, err)
}

func (s *progressService) RecordMiniGame(ctx context.Context, in MiniGameInput) (*domain.Progress, bool, error) {
	const op = "progress.record_minigame"
	if _, err := games.NormalizeCategory(in.Category); err != nil {
		return nil, false, ValidationError(op, err.Error())
	}
	if err := validateProgress(op, in.Score, MiniGameMaxScore, in.ElapsedSeconds); err != nil {
		return nil, false, err
	}

	var (
		out     *domain.Progress
		created bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		act, err := s.activities.ResolveOrCreate(dbc, in.Category, in.Title, in.Description)
		if err != nil {
			return err
		}
		row, c, err := s.upsert(dbc, RecordProgressInput{
			ChildID:        in.ChildID,
			ActivityID:     act.ID,
			Score:          in.Score,
			Notes:          in.Notes,
			ElapsedSeconds: in.ElapsedSeconds,
			MaxScore:       MiniGameMaxScore,
		})
		if err != nil {
			return err
		}
		out, created = row, c
		return nil
	})
	return s.finish(op, out, created, err)
}

func (s *progressService) finish(op string, row *domain.Progress, created bool, err error) (*domain.Progress, bool, error) {
	if err != nil {
		s.obs.ObserveProgressRecord(OutcomeFailed)
		classified := ClassifyDBError(op, err)
		if k := KindOf(classified); k == KindIntegrity || k == KindOperational {
			s.log.Error("progress write failed", "op", op, "kind", string(k), "error", err)
		}
		return nil, false, classified
	}
	outcome := OutcomeUpdated
	if created {
		outcome = OutcomeCreated
	}
	s.obs.ObserveProgressRecord(outcome)
	s.log.Debug("progress recorded",
		"progress_id", row.ID,
		"crianca_id", row.ChildID,
		"atividade_id", row.ActivityID,
		"created", created,
	)
	return row, created, nil
}

// upsert runs inside the caller's transaction.
func (s *progressService) upsert(dbc dbctx.Context, in RecordProgressInput) (*domain.Progress, bool, error) {
	const op = "progress.upsert"
	guardianID, err := s.guardians.ResolveGuardian(dbc, in.ChildID)
	if err != nil {
		return nil, false, err
	}
	act, err := s.activity.GetByID(dbc, in.ActivityID)
	if err != nil {
		return nil, false, ClassifyDBError(op, err)
	}
	if act == nil {
		return nil, false, NotFoundError(op, "activity not found")
	}

	now := s.now()
	existing, err := s.progress.FindLatest(dbc, in.ChildID, in.ActivityID)
	if err != nil {
		return nil, false, ClassifyDBError(op, err)
	}
	if existing != nil {
		row, err := s.apply(dbc, existing, in, guardianID, now)
		return row, false, err
	}

	row := &domain.Progress{
		ChildID:        in.ChildID,
		ActivityID:     in.ActivityID,
		GuardianID:     guardianID,
		Score:          in.Score,
		Notes:          in.Notes,
		Completed:      true,
		ElapsedSeconds: in.ElapsedSeconds,
		PerformedAt:    now,
		CreatedAt:      now,
	}
	insErr := inSavepoint(dbc, s.db, func(sp dbctx.Context) error {
		return s.progress.Create(sp, row)
	})
	if insErr == nil {
		return row, true, nil
	}
	if !isUniqueViolation(insErr) {
		return nil, false, ClassifyDBError(op, insErr)
	}

	// Lost the insert race; the winner's row becomes ours to update.
	s.obs.ObserveReconcileConflict(EntityProgress)
	s.log.Debug("progress insert conflict, refetching", "crianca_id", in.ChildID, "atividade_id", in.ActivityID)
	existing, err = s.progress.FindLatest(dbc, in.ChildID, in.ActivityID)
	if err != nil {
		return nil, false, ClassifyDBError(op, err)
	}
	if existing == nil {
		return nil, false, ClassifyDBError(op, insErr)
	}
	updated, err := s.apply(dbc, existing, in, guardianID, now)
	return updated, false, err
}

func (s *progressService) apply(dbc dbctx.Context, row *domain.Progress, in RecordProgressInput, guardianID *uint, now time.Time) (*domain.Progress, error) {
	row.Score = in.Score
	row.Notes = in.Notes
	row.Completed = true
	row.ElapsedSeconds = in.ElapsedSeconds
	row.GuardianID = guardianID
	row.PerformedAt = now
	if err := s.progress.UpdateResult(dbc, row); err != nil {
		return nil, ClassifyDBError("progress.update", err)
	}
	return row, nil
}

func (s *progressService) ListByChild(ctx context.Context, childID uint) ([]*domain.Progress, error) {
	rows, err := s.progress.ListByChild(dbctx.Context{Ctx: ctx}, childID, nil)
	if err != nil {
		return nil, ClassifyDBError("progress.list_by_child", err)
	}
	return rows, nil
}

func (s *progressService) ListByActivity(ctx context.Context, activityID uint) ([]*domain.Progress, error) {
	rows, err := s.progress.ListByActivity(dbctx.Context{Ctx: ctx}, activityID)
	if err != nil {
		return nil, ClassifyDBError("progress.list_by_activity", err)
	}
	return rows, nil
}

func (s *progressService) Summary(ctx context.Context, childID uint) (*domain.Summary, error) {
	row, err := s.progress.SummaryByChild(dbctx.Context{Ctx: ctx}, childID)
	if err != nil {
		return nil, ClassifyDBError("progress.summary", err)
	}
	out := &domain.Summary{Total: int(row.Total), Completed: int(row.Completed)}
	if row.AvgScore.Valid {
		out.AvgScore = round2(row.AvgScore.Float64)
	}
	return out, nil
}

func validateProgress(op string, score, maxScore float64, elapsed *int) error {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return ValidationError(op, "pontuacao must be a finite number")
	}
	if score < 0 {
		return ValidationError(op, "pontuacao must be >= 0")
	}
	if maxScore > 0 && score > maxScore {
		return ValidationError(op, fmt.Sprintf("pontuacao must be between 0 and %g", maxScore))
	}
	if elapsed != nil && *elapsed < 0 {
		return ValidationError(op, "tempo_segundos must be >= 0")
	}
	return nil
}

// inSavepoint runs fn in a nested transaction so a failed insert leaves the
// outer transaction usable.
func inSavepoint(dbc dbctx.Context, fallback *gorm.DB, fn func(dbctx.Context) error) error {
	return dbc.Conn(fallback).Transaction(func(sp *gorm.DB) error {
		return fn(dbctx.Context{Ctx: dbc.Ctx, Tx: sp})
	})
}

func cleanText(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
