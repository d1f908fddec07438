package draft

import (
	"sort"

	"github.com/draftlab/fastbreak/internal/models"
)

// Recommend ranks a team's unmet slots by draft urgency: the best
// Adjusted VORP still available for the slot, weighted by how few pool
// players could fill it. At most three slots come back, ordered by score
// with ties kept in schedule order. A team with nothing left to fill gets
// an empty list.
func Recommend(roster *Roster, pool []*models.Player) []models.Recommendation {
	needed := roster.Needed()
	recs := make([]models.Recommendation, 0, len(needed))
	for _, s := range needed {
		eligible := 0
		for _, p := range pool {
			if s.Accepts(p.Positions) {
				eligible++
			}
		}
		scarcity := 0.0
		if eligible > 0 {
			scarcity = 1 / float64(eligible)
		}
		recs = append(recs, models.Recommendation{
			Slot:  s.Name,
			Score: SlotValue(s, pool) * scarcity,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
	if len(recs) > 3 {
		recs = recs[:3]
	}
	return recs
}
