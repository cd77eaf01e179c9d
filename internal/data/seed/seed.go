package seed

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/yungbote/funny-backend/internal/data/repos"
	"github.com/yungbote/funny-backend/internal/domain"
	"github.com/yungbote/funny-backend/internal/domain/games"
	"github.com/yungbote/funny-backend/internal/pkg/dbctx"
	"github.com/yungbote/funny-backend/internal/pkg/logger"
	"github.com/yungbote/funny-backend/internal/pkg/pointers"
)

//go:embed seed.yaml
var seedYAML []byte

type File struct {
	Diagnoses  []DiagnosisDoc `yaml:"diagnosticos"`
	Activities []ActivityDoc  `yaml:"atividades"`
	Demo       DemoDoc        `yaml:"demo"`
}

type DiagnosisDoc struct {
	Type        string `yaml:"tipo"`
	Description string `yaml:"descricao"`
}

type ActivityDoc struct {
	Title       string `yaml:"titulo"`
	Category    string `yaml:"categoria"`
	Description string `yaml:"descricao"`
	Difficulty  int    `yaml:"nivel_dificuldade"`
}

type DemoDoc struct {
	Guardian struct {
		Name  string `yaml:"nome"`
		Email string `yaml:"email"`
		Phone string `yaml:"telefone"`
	} `yaml:"responsavel"`
	Class    string     `yaml:"turma"`
	Children []ChildDoc `yaml:"criancas"`
}

type ChildDoc struct {
	Name      string `yaml:"nome"`
	Age       int    `yaml:"idade"`
	Diagnosis string `yaml:"diagnostico"`
}

// Result counts the rows a run inserted.
type Result struct {
	Diagnoses  int
	Activities int
	Guardians  int
	Classes    int
	Children   int
}

// Parse decodes a seed document, validating activity categories.
func Parse(raw []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	for i, a := range f.Activities {
		c, err := games.NormalizeCategory(a.Category)
		if err != nil {
			return nil, fmt.Errorf("seed activity %q: %w", a.Title, err)
		}
		f.Activities[i].Category = c
		if f.Activities[i].Difficulty < 1 {
			f.Activities[i].Difficulty = domain.DefaultDifficulty
		}
	}
	return &f, nil
}

// Default returns the embedded seed document.
func Default() (*File, error) {
	return Parse(seedYAML)
}

type Seeder struct {
	db         *gorm.DB
	log        *logger.Logger
	diagnoses  repos.DiagnosisRepo
	activities repos.ActivityRepo
	guardians  repos.GuardianRepo
	classes    repos.ClassRepo
	children   repos.ChildRepo
}

func NewSeeder(db *gorm.DB, log *logger.Logger) *Seeder {
	return &Seeder{
		db:         db,
		log:        log.With("component", "Seeder"),
		diagnoses:  repos.NewDiagnosisRepo(db, log),
		activities: repos.NewActivityRepo(db, log),
		guardians:  repos.NewGuardianRepo(db, log),
		classes:    repos.NewClassRepo(db, log),
		children:   repos.NewChildRepo(db, log),
	}
}

// Run inserts whatever reference rows are missing. Running it twice is a no-op.
// With demo set it also creates a demo guardian, class and children, once.
func (s *Seeder) Run(ctx context.Context, f *File, demo bool) (Result, error) {
	var res Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		byType := map[string]uint{}
		for _, d := range f.Diagnoses {
			existing, err := s.diagnoses.GetByType(dbc, d.Type)
			if err != nil {
				return err
			}
			if existing != nil {
				byType[d.Type] = existing.ID
				continue
			}
			row := &domain.Diagnosis{Type: d.Type, Description: pointers.NonEmpty(d.Description)}
			if err := s.diagnoses.Create(dbc, row); err != nil {
				return fmt.Errorf("seed diagnosis %q: %w", d.Type, err)
			}
			byType[d.Type] = row.ID
			res.Diagnoses++
		}

		for _, a := range f.Activities {
			title := pointers.NonEmpty(a.Title)
			existing, err := s.activities.FindByTitleCategory(dbc, title, a.Category)
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}
			row := &domain.Activity{
				Category:    a.Category,
				Title:       title,
				Description: pointers.NonEmpty(a.Description),
				Difficulty:  a.Difficulty,
			}
			if err := s.activities.Create(dbc, row); err != nil {
				return fmt.Errorf("seed activity %q: %w", a.Title, err)
			}
			res.Activities++
		}

		if !demo {
			return nil
		}
		return s.demo(dbc, f.Demo, byType, &res)
	})
	if err != nil {
		return Result{}, err
	}
	s.log.Info("seed complete",
		"diagnosticos", res.Diagnoses,
		"atividades", res.Activities,
		"responsaveis", res.Guardians,
		"turmas", res.Classes,
		"criancas", res.Children,
	)
	return res, nil
}

func (s *Seeder) demo(dbc dbctx.Context, d DemoDoc, byType map[string]uint, res *Result) error {
	if d.Guardian.Email == "" {
		return nil
	}
	existing, err := s.guardians.GetByEmail(dbc, d.Guardian.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		s.log.Debug("demo roster already present", "guardian_id", existing.ID)
		return nil
	}
	g := &domain.Guardian{Name: d.Guardian.Name, Email: d.Guardian.Email, Phone: pointers.NonEmpty(d.Guardian.Phone)}
	if err := s.guardians.Create(dbc, g); err != nil {
		return fmt.Errorf("seed demo guardian: %w", err)
	}
	res.Guardians++

	class := &domain.Class{Name: d.Class, GuardianID: &g.ID}
	if err := s.classes.Create(dbc, class); err != nil {
		return fmt.Errorf("seed demo class: %w", err)
	}
	res.Classes++

	for _, c := range d.Children {
		child := &domain.Child{Name: c.Name, Age: c.Age, ClassID: &class.ID}
		if id, ok := byType[c.Diagnosis]; ok {
			child.DiagnosisID = pointers.Uint(id)
		}
		if err := s.children.Create(dbc, child); err != nil {
			return fmt.Errorf("seed demo child %q: %w", c.Name, err)
		}
		res.Children++
	}
	return nil
}
