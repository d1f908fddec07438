package dal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/draftlab/fastbreak/internal/models"
)

// PostgresStore implements SnapshotStore on PostgreSQL for deployments
// where the draft has to survive pod restarts.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects to PostgreSQL, verifies the connection and
// prepares the snapshot table.
func NewPostgresStore(connString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, err
	}

	// Pool settings sized for a CloudNativePG cluster: recycle
	// connections so failovers drain cleanly.
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	// Retry the first ping: in Kubernetes the database DNS name can
	// lag behind the pod coming up.
	maxRetries := 5
	retryDelay := 5 * time.Second
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		err := db.PingContext(ctx)
		cancel()

		if err == nil {
			lastErr = nil
			break
		}

		lastErr = err
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	if lastErr != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres after %d retries: %w", maxRetries, lastErr)
	}

	store := &PostgresStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (p *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS draft_snapshots (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		data JSONB NOT NULL,
		saved_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := p.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create draft_snapshots table: %w", err)
	}
	return nil
}

func (p *PostgresStore) Save(snap models.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = p.db.Exec(`
		INSERT INTO draft_snapshots (id, data, saved_at)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, saved_at = EXCLUDED.saved_at
	`, data, snap.SavedAt)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (p *PostgresStore) Load() (models.Snapshot, error) {
	var data []byte
	err := p.db.QueryRow(`SELECT data FROM draft_snapshots WHERE id = 1`).Scan(&data)
	if err == sql.ErrNoRows {
		return models.Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snap, nil
}

func (p *PostgresStore) Clear() error {
	if _, err := p.db.Exec(`DELETE FROM draft_snapshots`); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}

func (p *PostgresStore) Close() error {
	return p.db.Close()
}
