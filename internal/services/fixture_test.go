package services

import (
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/funny-backend/internal/data/repos"
	"github.com/yungbote/funny-backend/internal/data/repos/testutil"
	"github.com/yungbote/funny-backend/internal/domain"
	"github.com/yungbote/funny-backend/internal/pkg/dbctx"
)

type fixture struct {
	db         *gorm.DB
	users      repos.UserRepo
	guardians  repos.GuardianRepo
	classes    repos.ClassRepo
	children   repos.ChildRepo
	diagnoses  repos.DiagnosisRepo
	activities repos.ActivityRepo
	progress   repos.ProgressRepo
	reports    repos.ReportRepo
	obs        *countingObserver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return &fixture{
		db:         db,
		users:      repos.NewUserRepo(db, log),
		guardians:  repos.NewGuardianRepo(db, log),
		classes:    repos.NewClassRepo(db, log),
		children:   repos.NewChildRepo(db, log),
		diagnoses:  repos.NewDiagnosisRepo(db, log),
		activities: repos.NewActivityRepo(db, log),
		progress:   repos.NewProgressRepo(db, log),
		reports:    repos.NewReportRepo(db, log),
		obs:        &countingObserver{records: map[string]int{}, conflicts: map[string]int{}},
	}
}

// progressService wires the reconciliation stack over the given repos so
// tests can swap in conflict-injecting wrappers.
func (f *fixture) progressService(t *testing.T, activities repos.ActivityRepo, progress repos.ProgressRepo) *progressService {
	t.Helper()
	log := testutil.Logger(t)
	resolver := NewActivityResolver(f.db, log, activities, f.obs)
	guardians := NewGuardianResolver(f.children, f.classes)
	return NewProgressService(f.db, log, resolver, guardians, activities, progress, f.obs).(*progressService)
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

type countingObserver struct {
	mu        sync.Mutex
	records   map[string]int
	conflicts map[string]int
}

func (o *countingObserver) ObserveProgressRecord(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records[outcome]++
}

func (o *countingObserver) ObserveReconcileConflict(entity string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.conflicts[entity]++
}

func (o *countingObserver) conflictCount(entity string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.conflicts[entity]
}

// staleActivityRepo answers the first lookups as if the row did not exist yet,
// the view of a writer that lost an insert race.
type staleActivityRepo struct {
	repos.ActivityRepo
	misses int
}

func (r *staleActivityRepo) FindByTitleCategory(dbc dbctx.Context, title *string, category string) (*domain.Activity, error) {
	if r.misses > 0 {
		r.misses--
		return nil, nil
	}
	return r.ActivityRepo.FindByTitleCategory(dbc, title, category)
}

type staleProgressRepo struct {
	repos.ProgressRepo
	misses int
}

func (r *staleProgressRepo) FindLatest(dbc dbctx.Context, childID, activityID uint) (*domain.Progress, error) {
	if r.misses > 0 {
		r.misses--
		return nil, nil
	}
	return r.ProgressRepo.FindLatest(dbc, childID, activityID)
}

func fixedClock(times ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		t := times[i]
		if i < len(times)-1 {
			i++
		}
		return t
	}
}
