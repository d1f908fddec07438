package dal

import (
	"errors"

	"github.com/draftlab/fastbreak/internal/models"
)

// ErrNoSnapshot is returned by Load when no draft has been persisted.
var ErrNoSnapshot = errors.New("no draft snapshot stored")

// SnapshotStore persists the single active draft. Save overwrites the
// previous snapshot, Load retrieves it and Clear removes it, so a
// restarted server resumes exactly where the last pick left off.
type SnapshotStore interface {
	Save(snap models.Snapshot) error
	Load() (models.Snapshot, error)
	Clear() error
	Close() error
}
