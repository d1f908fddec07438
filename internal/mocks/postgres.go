package mocks

import (
	"github.com/draftlab/fastbreak/internal/dal"
	"github.com/draftlab/fastbreak/internal/logger"
)

// MockPostgresStore provides a mock Postgres snapshot store backed by SQLite
// for local development
type MockPostgresStore struct {
	dal.SnapshotStore
}

// NewMockPostgresStore creates a mock Postgres store using SQLite
func NewMockPostgresStore(sqliteFile string) (*MockPostgresStore, error) {
	logger.Info("Using MOCK Postgres (SQLite) for local development")

	sqliteStore, err := dal.NewSQLiteStore(sqliteFile)
	if err != nil {
		return nil, err
	}

	return &MockPostgresStore{
		SnapshotStore: sqliteStore,
	}, nil
}
