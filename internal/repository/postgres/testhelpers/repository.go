package testhelpers

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/visitor-geolocation/internal/domain/repository"
	"github.com/visitor-geolocation/internal/repository/postgres"
)

// NewDBForTest creates a postgres.DB with test database and logger
func NewDBForTest(db *sqlx.DB, logger *zap.Logger) *postgres.DB {
	return postgres.NewDBForTest(db, logger)
}

// MigrateForTest применяет встроенные миграции к тестовой базе
func MigrateForTest(ctx context.Context, db *sqlx.DB, logger *zap.Logger) error {
	return NewDBForTest(db, logger).Migrate(ctx)
}

// NewVisitRepositoryForTest creates a visit repository with test database and logger
func NewVisitRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.VisitRepository {
	return postgres.NewVisitRepository(NewDBForTest(db, logger))
}
