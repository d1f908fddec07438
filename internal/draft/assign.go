package draft

import (
	"sort"

	"github.com/draftlab/fastbreak/internal/models"
)

// SlotValue is the best Adjusted VORP still available in the pool among
// players eligible for the slot: an estimate of how much it would hurt to
// leave the slot for later. A slot nobody in the pool can fill is worth
// zero.
func SlotValue(slot models.Slot, pool []*models.Player) float64 {
	best := 0.0
	found := false
	for _, p := range pool {
		if !slot.Accepts(p.Positions) {
			continue
		}
		if !found || p.AdjVORP > best {
			best = p.AdjVORP
			found = true
		}
	}
	return best
}

// assign seats the player in the team's roster and returns the receiving
// slot. Open position-covering slots are walked most valuable first (ties
// in schedule order); the player lands in the first one they are eligible
// for. Whoever fits nowhere goes to an open universal slot, then the
// bench. With the bench also full the assignment fails with a
// RosterFullError and the roster is left unchanged.
//
// Slot values are computed against the pool as it stands before the pick,
// so the player being seated still counts toward them.
func assign(player *models.Player, roster *Roster, team int, pool []*models.Player) (string, error) {
	needed := roster.Needed()

	covered := make([]models.Slot, 0, len(needed))
	fallbacks := make([]models.Slot, 0, 2)
	for _, s := range needed {
		if !s.Bench && !s.Universal() {
			covered = append(covered, s)
		}
	}
	for _, s := range needed {
		if s.Universal() {
			fallbacks = append(fallbacks, s)
		}
	}
	for _, s := range needed {
		if s.Bench {
			fallbacks = append(fallbacks, s)
		}
	}

	values := make(map[string]float64, len(covered))
	for _, s := range covered {
		values[s.Name] = SlotValue(s, pool)
	}
	sort.SliceStable(covered, func(i, j int) bool {
		return values[covered[i].Name] > values[covered[j].Name]
	})

	for _, s := range covered {
		if !s.Accepts(player.Positions) {
			continue
		}
		if err := roster.Assign(s.Name, player.ID); err == nil {
			return s.Name, nil
		}
	}
	for _, s := range fallbacks {
		if err := roster.Assign(s.Name, player.ID); err == nil {
			return s.Name, nil
		}
	}
	return "", &RosterFullError{Team: team, Player: player.Name}
}
