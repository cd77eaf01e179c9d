package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/funny-backend/internal/data/repos"
	"github.com/yungbote/funny-backend/internal/domain"
	"github.com/yungbote/funny-backend/internal/pkg/dbctx"
	"github.com/yungbote/funny-backend/internal/pkg/logger"
)

// Page bounds a list query. A zero Limit means no limit.
type Page struct {
	Offset int
	Limit  int
}

type GuardianInput struct {
	Name  string
	Email string
	Phone *string
}

type GuardianService interface {
	List(ctx context.Context, page Page) ([]*domain.Guardian, error)
	Get(ctx context.Context, id uint) (*domain.Guardian, error)
	Create(ctx context.Context, in GuardianInput) (*domain.Guardian, error)
	Update(ctx context.Context, id uint, patch GuardianPatch) (*domain.Guardian, error)
	Delete(ctx context.Context, id uint) error
}

type guardianService struct {
	db        *gorm.DB
	log       *logger.Logger
	guardians repos.GuardianRepo
}

func NewGuardianService(db *gorm.DB, log *logger.Logger, guardians repos.GuardianRepo) GuardianService {
	return &guardianService{db: db, log: log.With("service", "GuardianService"), guardians: guardians}
}

func (s *guardianService) List(ctx context.Context, page Page) ([]*domain.Guardian, error) {
	rows, err := s.guardians.List(dbctx.Context{Ctx: ctx}, page.Offset, page.Limit)
	if err != nil {
		return nil, ClassifyDBError("guardian.list", err)
	}
	return rows, nil
}

func (s *guardianService) Get(ctx context.Context, id uint) (*domain.Guardian, error) {
	return s.get(dbctx.Context{Ctx: ctx}, "guardian.get", id)
}

func (s *guardianService) get(dbc dbctx.Context, op string, id uint) (*domain.Guardian, error) {
	row, err := s.guardians.GetByID(dbc, id)
	if err != nil {
		return nil, ClassifyDBError(op, err)
	}
	if row == nil {
		return nil, NotFoundError(op, "guardian not found")
	}
	return row, nil
}

func (s *guardianService) Create(ctx context.Context, in GuardianInput) (*domain.Guardian, error) {
	const op = "guardian.create"
	name, err := requiredText(op, "nome", in.Name)
	if err != nil {
		return nil, err
	}
	email, err := normalizeEmail(op, in.Email)
	if err != nil {
		return nil, err
	}
	row := &domain.Guardian{Name: name, Email: email, Phone: cleanText(in.Phone)}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := s.ensureEmailFree(dbc, op, email, 0); err != nil {
			return err
		}
		return s.guardians.Create(dbc, row)
	})
	if err != nil {
		return nil, ClassifyDBError(op, err)
	}
	return s.Get(ctx, row.ID)
}

func (s *guardianService) Update(ctx context.Context, id uint, patch GuardianPatch) (*domain.Guardian, error) {
	const op = "guardian.update"
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		row, err := s.get(dbc, op, id)
		if err != nil {
			return err
		}
		if patch.Name != nil {
			if row.Name, err = requiredText(op, "nome", *patch.Name); err != nil {
				return err
			}
		}
		if patch.Email != nil {
			email, err := normalizeEmail(op, *patch.Email)
			if err != nil {
				return err
			}
			if email != row.Email {
				if err := s.ensureEmailFree(dbc, op, email, row.ID); err != nil {
					return err
				}
			}
			row.Email = email
		}
		row.Phone = patchedText(row.Phone, patch.Phone, patch.ClearPhone)
		return s.guardians.Update(dbc, row)
	})
	if err != nil {
		return nil, ClassifyDBError(op, err)
	}
	return s.Get(ctx, id)
}

func (s *guardianService) Delete(ctx context.Context, id uint) error {
	const op = "guardian.delete"
	ok, err := s.guardians.Delete(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return ClassifyDBError(op, err)
	}
	if !ok {
		return NotFoundError(op, "guardian not found")
	}
	return nil
}

func (s *guardianService) ensureEmailFree(dbc dbctx.Context, op, email string, self uint) error {
	existing, err := s.guardians.GetByEmail(dbc, email)
	if err != nil {
		return ClassifyDBError(op, err)
	}
	if existing != nil && existing.ID != self {
		return ValidationError(op, "email already registered")
	}
	return nil
}

type ClassInput struct {
	Name       string
	GuardianID *uint
}

type ClassService interface {
	List(ctx context.Context, page Page) ([]*domain.Class, error)
	Get(ctx context.Context, id uint) (*domain.Class, error)
	Create(ctx context.Context, in ClassInput) (*domain.Class, error)
	Update(ctx context.Context, id uint, patch ClassPatch) (*domain.Class, error)
	Delete(ctx context.Context, id uint) error
}

type classService struct {
	db        *gorm.DB
	log       *logger.Logger
	classes   repos.ClassRepo
	guardians repos.GuardianRepo
}

func NewClassService(db *gorm.DB, log *logger.Logger, classes repos.ClassRepo, guardians repos.GuardianRepo) ClassService {
	return &classService{db: db, log: log.With("service", "ClassService"), classes: classes, guardians: guardians}
}

func (s *classService) List(ctx context.Context, page Page) ([]*domain.Class, error) {
	rows, err := s.classes.List(dbctx.Context{Ctx: ctx}, page.Offset, page.Limit)
	if err != nil {
		return nil, ClassifyDBError("class.list", err)
	}
	return rows, nil
}

// Get loads the class with its guardian.
func (s *classService) Get(ctx context.Context, id uint) (*domain.Class, error) {
	const op = "class.get"
	row, err := s.classes.GetDetailed(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, ClassifyDBError(op, err)
	}
	if row == nil {
		return nil, NotFoundError(op, "class not found")
	}
	return row, nil
}

func (s *classService) Create(ctx context.Context, in ClassInput) (*domain.Class, error) {
	const op = "class.create"
	name, err := requiredText(op, "nome", in.Name)
	if err != nil {
		return nil, err
	}
	row := &domain.Class{Name: name, GuardianID: in.GuardianID}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := s.ensureGuardian(dbc, op, row.GuardianID); err != nil {
			return err
		}
		return s.classes.Create(dbc, row)
	})
	if err != nil {
		return nil, ClassifyDBError(op, err)
	}
	return s.Get(ctx, row.ID)
}

func (s *classService) Update(ctx context.Context, id uint, patch ClassPatch) (*domain.Class, error) {
	const op = "class.update"
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		row, err := s.classes.GetByID(dbc, id)
		if err != nil {
			return ClassifyDBError(op, err)
		}
		if row == nil {
			return NotFoundError(op, "class not found")
		}
		if patch.Name != nil {
			if row.Name, err = requiredText(op, "nome", *patch.Name); err != nil {
				return err
			}
		}
		row.GuardianID = patchedRef(row.GuardianID, patch.GuardianID, patch.ClearGuardian)
		if patch.GuardianID != nil && !patch.ClearGuardian {
			if err := s.ensureGuardian(dbc, op, row.GuardianID); err != nil {
				return err
			}
		}
		return s.classes.Update(dbc, row)
	})
	if err != nil {
		return nil, ClassifyDBError(op, err)
	}
	return s.Get(ctx, id)
}

func (s *classService) Delete(ctx context.Context, id uint) error {
	const op = "class.delete"
	ok, err := s.classes.Delete(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return ClassifyDBError(op, err)
	}
	if !ok {
		return NotFoundError(op, "class not found")
	}
	return nil
}

func (s *classService) ensureGuardian(dbc dbctx.Context, op string, id *uint) error {
	if id == nil {
		return nil
	}
	g, err := s.guardians.GetByID(dbc, *id)
	if err != nil {
		return ClassifyDBError(op, err)
	}
	if g == nil {
		return NotFoundError(op, "guardian not found")
	}
	return nil
}

type ChildInput struct {
	Name        string
	Age         int
	DiagnosisID *uint
	ClassID     *uint
}

type ChildService interface {
	List(ctx context.Context, page Page) ([]*domain.Child, error)
	Get(ctx context.Context, id uint) (*domain.Child, error)
	Create(ctx context.Context, in ChildInput) (*domain.Child, error)
	Update(ctx context.Context, id uint, patch ChildPatch) (*domain.Child, error)
	Delete(ctx context.Context, id uint) error
}

type childService struct {
	db        *gorm.DB
	log       *logger.Logger
	children  repos.ChildRepo
	classes   repos.ClassRepo
	diagnoses repos.DiagnosisRepo
}

func NewChildService(db *gorm.DB, log *logger.Logger, children repos.ChildRepo, classes repos.ClassRepo, diagnoses repos.DiagnosisRepo) ChildService {
	return &childService{
		db:        db,
		log:       log.With("service", "ChildService"),
		children:  children,
		classes:   classes,
		diagnoses: diagnoses,
	}
}

func (s *childService) List(ctx context.Context, page Page) ([]*domain.Child, error) {
	rows, err := s.children.List(dbctx.Context{Ctx: ctx}, page.Offset, page.Limit)
	if err != nil {
		return nil, ClassifyDBError("child.list", err)
	}
	return rows, nil
}

func (s *childService) Get(ctx context.Context, id uint) (*domain.Child, error) {
	return s.get(dbctx.Context{Ctx: ctx}, "child.get", id)
}

func (s *childService) get(dbc dbctx.Context, op string, id uint) (*domain.Child, error) {
	row, err := s.children.GetByID(dbc, id)
	if err != nil {
		return nil, ClassifyDBError(op, err)
	}
	if row == nil {
		return nil, NotFoundError(op, "child not found")
	}
	return row, nil
}

func (s *childService) Create(ctx context.Context, in ChildInput) (*domain.Child, error) {
	const op = "child.create"
	name, err := requiredText(op, "nome", in.Name)
	if err != nil {
		return nil, err
	}
	if in.Age < 0 {
		return nil, ValidationError(op, "idade must be >= 0")
	}
	row := &domain.Child{Name: name, Age: in.Age, DiagnosisID: in.DiagnosisID, ClassID: in.ClassID}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := s.ensureRefs(dbc, op, row.ClassID, row.DiagnosisID); err != nil {
			return err
		}
		return s.children.Create(dbc, row)
	})
	if err != nil {
		return nil, ClassifyDBError(op, err)
	}
	return s.Get(ctx, row.ID)
}

func (s *childService) Update(ctx context.Context, id uint, patch ChildPatch) (*domain.Child, error) {
	const op = "child.update"
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		row, err := s.get(dbc, op, id)
		if err != nil {
			return err
		}
		if patch.Name != nil {
			if row.Name, err = requiredText(op, "nome", *patch.Name); err != nil {
				return err
			}
		}
		if patch.Age != nil {
			if *patch.Age < 0 {
				return ValidationError(op, "idade must be >= 0")
			}
			row.Age = *patch.Age
		}
		row.ClassID = patchedRef(row.ClassID, patch.ClassID, patch.ClearClass)
		row.DiagnosisID = patchedRef(row.DiagnosisID, patch.DiagnosisID, patch.ClearDiagnosis)

		var checkClass, checkDiagnosis *uint
		if !patch.ClearClass {
			checkClass = patch.ClassID
		}
		if !patch.ClearDiagnosis {
			checkDiagnosis = patch.DiagnosisID
		}
		if err := s.ensureRefs(dbc, op, checkClass, checkDiagnosis); err != nil {
			return err
		}
		return s.children.Update(dbc, row)
	})
	if err != nil {
		return nil, ClassifyDBError(op, err)
	}
	return s.Get(ctx, id)
}

func (s *childService) Delete(ctx context.Context, id uint) error {
	const op = "child.delete"
	ok, err := s.children.Delete(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return ClassifyDBError(op, err)
	}
	if !ok {
		return NotFoundError(op, "child not found")
	}
	return nil
}

func (s *childService) ensureRefs(dbc dbctx.Context, op string, classID, diagnosisID *uint) error {
	if classID != nil {
		c, err := s.classes.GetByID(dbc, *classID)
		if err != nil {
			return ClassifyDBError(op, err)
		}
		if c == nil {
			return NotFoundError(op, "class not found")
		}
	}
	if diagnosisID != nil {
		d, err := s.diagnoses.GetByID(dbc, *diagnosisID)
		if err != nil {
			return ClassifyDBError(op, err)
		}
		if d == nil {
			return NotFoundError(op, "diagnosis not found")
		}
	}
	return nil
}

type DiagnosisInput struct {
	Type        string
	Description *string
}

type DiagnosisService interface {
	List(ctx context.Context, page Page) ([]*domain.Diagnosis, error)
	Get(ctx context.Context, id uint) (*domain.Diagnosis, error)
	Create(ctx context.Context, in DiagnosisInput) (*domain.Diagnosis, error)
	Update(ctx context.Context, id uint, patch DiagnosisPatch) (*domain.Diagnosis, error)
	Delete(ctx context.Context, id uint) error
}

type diagnosisService struct {
	db        *gorm.DB
	log       *logger.Logger
	diagnoses repos.DiagnosisRepo
}

func NewDiagnosisService(db *gorm.DB, log *logger.Logger, diagnoses repos.DiagnosisRepo) DiagnosisService {
	return &diagnosisService{db: db, log: log.With("service", "DiagnosisService"), diagnoses: diagnoses}
}

func (s *diagnosisService) List(ctx context.Context, page Page) ([]*domain.Diagnosis, error) {
	rows, err := s.diagnoses.List(dbctx.Context{Ctx: ctx}, page.Offset, page.Limit)
	if err != nil {
		return nil, ClassifyDBError("diagnosis.list", err)
	}
	return rows, nil
}

func (s *diagnosisService) Get(ctx context.Context, id uint) (*domain.Diagnosis, error) {
	return s.get(dbctx.Context{Ctx: ctx}, "diagnosis.get", id)
}

func (s *diagnosisService) get(dbc dbctx.Context, op string, id uint) (*domain.Diagnosis, error) {
	row, err := s.diagnoses.GetByID(dbc, id)
	if err != nil {
		return nil, ClassifyDBError(op, err)
	}
	if row == nil {
		return nil, NotFoundError(op, "diagnosis not found")
	}
	return row, nil
}

func (s *diagnosisService) Create(ctx context.Context, in DiagnosisInput) (*domain.Diagnosis, error) {
	const op = "diagnosis.create"
	tipo, err := requiredText(op, "tipo", in.Type)
	if err != nil {
		return nil, err
	}
	row := &domain.Diagnosis{Type: tipo, Description: cleanText(in.Description)}
	if err := s.diagnoses.Create(dbctx.Context{Ctx: ctx}, row); err != nil {
		return nil, ClassifyDBError(op, err)
	}
	return row, nil
}

func (s *diagnosisService) Update(ctx context.Context, id uint, patch DiagnosisPatch) (*domain.Diagnosis, error) {
	const op = "diagnosis.update"
	var out *domain.Diagnosis
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		row, err := s.get(dbc, op, id)
		if err != nil {
			return err
		}
		if patch.Type != nil {
			if row.Type, err = requiredText(op, "tipo", *patch.Type); err != nil {
				return err
			}
		}
		row.Description = patchedText(row.Description, patch.Description, patch.ClearDescription)
		out = row
		return s.diagnoses.Update(dbc, row)
	})
	if err != nil {
		return nil, ClassifyDBError(op, err)
	}
	return out, nil
}

func (s *diagnosisService) Delete(ctx context.Context, id uint) error {
	const op = "diagnosis.delete"
	ok, err := s.diagnoses.Delete(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return ClassifyDBError(op, err)
	}
	if !ok {
		return NotFoundError(op, "diagnosis not found")
	}
	return nil
}
