package testutil

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/funny-backend/internal/domain"
)

func SeedGuardian(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *domain.Guardian {
	tb.Helper()
	g := &domain.Guardian{Name: "Responsável", Email: email}
	if err := tx.WithContext(ctx).Create(g).Error; err != nil {
		tb.Fatalf("seed guardian: %v", err)
	}
	return g
}

func SeedClass(tb testing.TB, ctx context.Context, tx *gorm.DB, guardianID *uint) *domain.Class {
	tb.Helper()
	c := &domain.Class{Name: "Turma A", GuardianID: guardianID}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed class: %v", err)
	}
	return c
}

func SeedDiagnosis(tb testing.TB, ctx context.Context, tx *gorm.DB, tipo string) *domain.Diagnosis {
	tb.Helper()
	d := &domain.Diagnosis{Type: tipo}
	if err := tx.WithContext(ctx).Create(d).Error; err != nil {
		tb.Fatalf("seed diagnosis: %v", err)
	}
	return d
}

func SeedChild(tb testing.TB, ctx context.Context, tx *gorm.DB, classID, diagnosisID *uint) *domain.Child {
	tb.Helper()
	c := &domain.Child{Name: "Ana", Age: 7, ClassID: classID, DiagnosisID: diagnosisID}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed child: %v", err)
	}
	return c
}

func SeedActivity(tb testing.TB, ctx context.Context, tx *gorm.DB, title, category string) *domain.Activity {
	tb.Helper()
	a := &domain.Activity{Category: category, Difficulty: domain.DefaultDifficulty}
	if title != "" {
		a.Title = &title
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed activity: %v", err)
	}
	return a
}

func SeedProgress(tb testing.TB, ctx context.Context, tx *gorm.DB, childID, activityID uint, score float64, at time.Time) *domain.Progress {
	tb.Helper()
	p := &domain.Progress{
		ChildID:     childID,
		ActivityID:  activityID,
		Score:       score,
		Completed:   true,
		PerformedAt: at,
		CreatedAt:   at,
	}
	if err := tx.WithContext(ctx).Omit("Child", "Activity", "Guardian").Create(p).Error; err != nil {
		tb.Fatalf("seed progress: %v", err)
	}
	return p
}
