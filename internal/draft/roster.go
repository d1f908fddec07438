package draft

import (
	"fmt"

	"github.com/draftlab/fastbreak/internal/models"
)

// Roster tracks one team's filled seats against the shared slot schedule.
// Seats hold player IDs in pick order. All mutation goes through Assign so
// that capacity limits hold.
type Roster struct {
	schedule []models.Slot
	seats    map[string][]string
}

// NewRoster returns an empty roster over the given schedule.
func NewRoster(schedule []models.Slot) *Roster {
	return &Roster{
		schedule: schedule,
		seats:    make(map[string][]string, len(schedule)),
	}
}

// Needed returns the slots with open seats, in schedule order.
func (r *Roster) Needed() []models.Slot {
	needed := make([]models.Slot, 0, len(r.schedule))
	for _, s := range r.schedule {
		if len(r.seats[s.Name]) < s.Seats {
			needed = append(needed, s)
		}
	}
	return needed
}

// Occupancy returns how many players are seated in the named slot.
func (r *Roster) Occupancy(slot string) int {
	return len(r.seats[slot])
}

// Size returns the total number of seated players.
func (r *Roster) Size() int {
	total := 0
	for _, ids := range r.seats {
		total += len(ids)
	}
	return total
}

// Assign seats a player in the named slot. A full slot fails with a
// CapacityError; a slot outside the schedule is a plain error.
func (r *Roster) Assign(slot, playerID string) error {
	for _, s := range r.schedule {
		if s.Name != slot {
			continue
		}
		if len(r.seats[slot]) >= s.Seats {
			return &CapacityError{Slot: slot}
		}
		r.seats[slot] = append(r.seats[slot], playerID)
		return nil
	}
	return fmt.Errorf("unknown roster slot %q", slot)
}

// Slots returns a copy of the seat map, keyed by slot name.
func (r *Roster) Slots() map[string][]string {
	out := make(map[string][]string, len(r.seats))
	for name, ids := range r.seats {
		out[name] = append([]string{}, ids...)
	}
	return out
}
