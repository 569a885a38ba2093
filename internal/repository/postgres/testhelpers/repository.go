package testhelpers

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/trip-planner/internal/domain/repository"
	"github.com/trip-planner/internal/repository/postgres"
)

// NewDBForTest creates a postgres.DB with test database and logger
func NewDBForTest(db *sqlx.DB, logger *zap.Logger) *postgres.DB {
	return postgres.NewDBForTest(db, logger)
}

// NewTripRepositoryForTest creates a trip repository with test database and logger
func NewTripRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.TripRepository {
	pgDB := NewDBForTest(db, logger)
	return postgres.NewTripRepository(pgDB)
}
