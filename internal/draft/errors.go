package draft

import "fmt"

// PlayerNotFoundError reports a pick referencing a player who is not in
// the undrafted pool.
type PlayerNotFoundError struct {
	ID string
}

func (e *PlayerNotFoundError) Error() string {
	return fmt.Sprintf("player %q is not in the undrafted pool", e.ID)
}

// DraftNotStartedError reports an operation that needs a started draft.
type DraftNotStartedError struct{}

func (e *DraftNotStartedError) Error() string {
	return "draft has not been started"
}

// DraftCompletedError reports a pick attempted after the final pick of
// the sequence.
type DraftCompletedError struct{}

func (e *DraftCompletedError) Error() string {
	return "draft is already complete"
}

// CapacityError reports an assignment into a slot with no open seat. The
// assignment policy catches it while walking candidate slots; callers of
// Session never see it.
type CapacityError struct {
	Slot string
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("slot %s is already full", e.Slot)
}

// RosterFullError reports that no slot of any kind could seat the player.
// The pick is rejected: pool, rosters and cursor are left untouched.
type RosterFullError struct {
	Team   int
	Player string
}

func (e *RosterFullError) Error() string {
	return fmt.Sprintf("team %d has no open slot for %s", e.Team, e.Player)
}

// RestoreError reports a persisted snapshot that could not be reconciled
// with the loaded player table. Callers recover by starting fresh.
type RestoreError struct {
	Reason string
}

func (e *RestoreError) Error() string {
	return "restore draft snapshot: " + e.Reason
}
