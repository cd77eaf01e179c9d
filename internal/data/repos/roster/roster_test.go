package roster

import (
	"context"
	"testing"

	"github.com/yungbote/funny-backend/internal/data/repos/testutil"
	"github.com/yungbote/funny-backend/internal/domain"
	"github.com/yungbote/funny-backend/internal/pkg/dbctx"
	"github.com/yungbote/funny-backend/internal/pkg/pointers"
)

func TestGuardianRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewGuardianRepo(db, testutil.Logger(t))

	g := &domain.Guardian{Name: "Maria", Email: "maria@example.com"}
	if err := repo.Create(dbc, g); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if g.ID == 0 {
		t.Fatalf("expected id to be assigned")
	}
	testutil.SeedClass(t, ctx, tx, &g.ID)
	testutil.SeedClass(t, ctx, tx, &g.ID)

	got, err := repo.GetByID(dbc, g.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if len(got.ClassIDs()) != 2 {
		t.Fatalf("expected 2 classes, got %v", got.ClassIDs())
	}

	if byEmail, err := repo.GetByEmail(dbc, "maria@example.com"); err != nil || byEmail == nil || byEmail.ID != g.ID {
		t.Fatalf("GetByEmail: got=%v err=%v", byEmail, err)
	}
	if missing, err := repo.GetByID(dbc, g.ID+100); err != nil || missing != nil {
		t.Fatalf("GetByID(missing): got=%v err=%v", missing, err)
	}

	g.Phone = pointers.String("5511999999999")
	if err := repo.Update(dbc, g); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ = repo.GetByID(dbc, g.ID)
	if got.Phone == nil || *got.Phone != "5511999999999" {
		t.Fatalf("phone not updated: %+v", got.Phone)
	}

	dup := &domain.Guardian{Name: "Other", Email: "maria@example.com"}
	if err := repo.Create(dbc, dup); err == nil {
		t.Fatalf("expected unique email violation")
	}
}

func TestClassAndChildRepos(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	classes := NewClassRepo(db, testutil.Logger(t))
	children := NewChildRepo(db, testutil.Logger(t))

	g := testutil.SeedGuardian(t, ctx, tx, "g@example.com")
	c := &domain.Class{Name: "Turma B", GuardianID: &g.ID}
	if err := classes.Create(dbc, c); err != nil {
		t.Fatalf("Create class: %v", err)
	}

	detailed, err := classes.GetDetailed(dbc, c.ID)
	if err != nil || detailed == nil {
		t.Fatalf("GetDetailed: got=%v err=%v", detailed, err)
	}
	if detailed.Guardian == nil || detailed.Guardian.ID != g.ID || len(detailed.Guardian.Classes) != 1 {
		t.Fatalf("guardian not preloaded: %+v", detailed.Guardian)
	}

	d := testutil.SeedDiagnosis(t, ctx, tx, "TEA")
	kid := &domain.Child{Name: "Pedro", Age: 8, ClassID: &c.ID, DiagnosisID: &d.ID}
	if err := children.Create(dbc, kid); err != nil {
		t.Fatalf("Create child: %v", err)
	}
	testutil.SeedChild(t, ctx, tx, nil, nil)

	inClass, err := children.ListByClass(dbc, c.ID)
	if err != nil || len(inClass) != 1 {
		t.Fatalf("ListByClass: err=%v len=%d", err, len(inClass))
	}
	if inClass[0].Diagnosis == nil || inClass[0].Diagnosis.Type != "TEA" {
		t.Fatalf("diagnosis not preloaded: %+v", inClass[0].Diagnosis)
	}

	kid.ClassID = nil
	if err := children.Update(dbc, kid); err != nil {
		t.Fatalf("Update child: %v", err)
	}
	got, _ := children.GetByID(dbc, kid.ID)
	if got.ClassID != nil {
		t.Fatalf("expected class to be cleared, got %v", *got.ClassID)
	}

	if ok, err := children.Delete(dbc, kid.ID); err != nil || !ok {
		t.Fatalf("Delete: ok=%v err=%v", ok, err)
	}
	if ok, err := children.Delete(dbc, kid.ID); err != nil || ok {
		t.Fatalf("Delete(again): ok=%v err=%v", ok, err)
	}
}

func TestDiagnosisRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewDiagnosisRepo(db, testutil.Logger(t))

	for _, tipo := range []string{"TDAH", "TEA"} {
		if err := repo.Create(dbc, &domain.Diagnosis{Type: tipo}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	rows, err := repo.List(dbc, 0, 0)
	if err != nil || len(rows) != 2 {
		t.Fatalf("List: err=%v len=%d", err, len(rows))
	}
	if rows, _ := repo.List(dbc, 1, 1); len(rows) != 1 || rows[0].Type != "TEA" {
		t.Fatalf("List(offset): %+v", rows)
	}
	if got, err := repo.GetByType(dbc, "TEA"); err != nil || got == nil {
		t.Fatalf("GetByType: got=%v err=%v", got, err)
	}
}
