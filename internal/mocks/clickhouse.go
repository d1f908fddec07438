package mocks

import (
	"context"
	"math/rand"

	"github.com/draftlab/fastbreak/internal/logger"
)

// MockWarehouse provides a mock ClickHouse warehouse for local development
type MockWarehouse struct {
	baseProjections map[string]float64
}

// NewMockWarehouse creates a mock warehouse seeded with per-game projections
// for a handful of headline players
func NewMockWarehouse() *MockWarehouse {
	logger.Info("Using MOCK ClickHouse warehouse for local development")

	return &MockWarehouse{
		baseProjections: map[string]float64{
			"Nikola Jokic":            58.4,
			"Luka Doncic":             54.1,
			"Giannis Antetokounmpo":   52.7,
			"Shai Gilgeous-Alexander": 51.3,
			"Victor Wembanyama":       50.6,
			"Joel Embiid":             49.8,
			"Anthony Davis":           47.2,
			"Tyrese Haliburton":       44.9,
			"Domantas Sabonis":        43.5,
			"Jayson Tatum":            42.8,
			"LeBron James":            41.6,
			"Kevin Durant":            40.9,
			"Stephen Curry":           39.7,
			"Anthony Edwards":         38.4,
			"Trae Young":              37.8,
			"James Harden":            36.5,
			"Damian Lillard":          36.1,
			"De'Aaron Fox":            35.2,
		},
	}
}

// FetchProjections returns the mock projections with slight variation (±10%)
// so repeated refreshes actually move the board
func (m *MockWarehouse) FetchProjections(ctx context.Context) (map[string]float64, error) {
	result := make(map[string]float64, len(m.baseProjections))
	for name, base := range m.baseProjections {
		jitter := 1 + (rand.Float64()*0.2 - 0.1)
		result[name] = base * jitter
	}
	return result, nil
}

// Ping always succeeds for the mock warehouse
func (m *MockWarehouse) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for mock warehouse
func (m *MockWarehouse) Close() error {
	return nil
}
