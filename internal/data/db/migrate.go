package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/yungbote/funny-backend/internal/data/migrations"
	"github.com/yungbote/funny-backend/internal/domain"
	"github.com/yungbote/funny-backend/internal/pkg/logger"
)

type gooseLogger struct {
	log *logger.Logger
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.log.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	g.log.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (s *Service) prepareGoose() error {
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(gooseLogger{log: s.log.With("component", "goose")})
	return goose.SetDialect("postgres")
}

// MigrateUp applies every pending migration. The SQL migrations are written
// for Postgres; sqlite databases are built from the models instead.
func (s *Service) MigrateUp(ctx context.Context) error {
	if s.driver == DriverSQLite {
		return s.AutoMigrateAll()
	}
	if err := s.prepareGoose(); err != nil {
		return err
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// MigrateDown rolls back the most recent migration.
func (s *Service) MigrateDown(ctx context.Context) error {
	if s.driver == DriverSQLite {
		return fmt.Errorf("migrate down is not supported for sqlite")
	}
	if err := s.prepareGoose(); err != nil {
		return err
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return goose.DownContext(ctx, sqlDB, ".")
}

// MigrateStatus logs the applied state of every migration.
func (s *Service) MigrateStatus(ctx context.Context) error {
	if s.driver == DriverSQLite {
		s.log.Info("sqlite schema is managed by AutoMigrate")
		return nil
	}
	if err := s.prepareGoose(); err != nil {
		return err
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return goose.StatusContext(ctx, sqlDB, ".")
}

func (s *Service) MigrateVersion(ctx context.Context) (int64, error) {
	if s.driver == DriverSQLite {
		return 0, nil
	}
	if err := s.prepareGoose(); err != nil {
		return 0, err
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, sqlDB)
}

func (s *Service) AutoMigrateAll() error {
	return s.db.AutoMigrate(domain.Models()...)
}
