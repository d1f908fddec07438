package draft

import (
	"math"
	"sort"

	"github.com/draftlab/fastbreak/internal/models"
)

// Demand estimates, per position, how many players the league will
// eventually roster: specific seats plus covering flex seats plus
// universal seats, with bench seats shared evenly across the five
// positions, all scaled by team count.
func Demand(slots []models.Slot, numTeams int) map[models.Position]float64 {
	specifics := float64(len(models.SpecificPositions))
	demand := make(map[models.Position]float64, len(models.SpecificPositions))
	for _, pos := range models.SpecificPositions {
		seats := 0.0
		bench := 0.0
		for _, s := range slots {
			if s.Bench {
				bench += float64(s.Seats)
				continue
			}
			if s.Accepts([]models.Position{pos}) {
				seats += float64(s.Seats)
			}
		}
		demand[pos] = (seats + bench/specifics) * float64(numTeams)
	}
	return demand
}

// ReplacementLevels returns, per position, the projection of the last
// player the league is expected to roster there: eligible pool players
// are ranked by projection and the one at the demand cutoff is the
// replacement. A cutoff outside the pool means replacement level zero.
func ReplacementLevels(pool []*models.Player, demand map[models.Position]float64) map[models.Position]float64 {
	levels := make(map[models.Position]float64, len(models.SpecificPositions))
	for _, pos := range models.SpecificPositions {
		projections := projectionsAt(pool, pos)
		idx := int(demand[pos]) - 1
		if idx >= 0 && idx < len(projections) {
			levels[pos] = projections[idx]
		} else {
			levels[pos] = 0
		}
	}
	return levels
}

func projectionsAt(pool []*models.Player, pos models.Position) []float64 {
	projections := make([]float64, 0, len(pool))
	for _, p := range pool {
		if p.Eligible(pos) {
			projections = append(projections, p.Projection)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(projections)))
	return projections
}

// positionStd returns the sample standard deviation of projections among
// players eligible at each position. Positions with fewer than two
// eligible players are left out of the map.
func positionStd(pool []*models.Player) map[models.Position]float64 {
	std := make(map[models.Position]float64, len(models.SpecificPositions))
	for _, pos := range models.SpecificPositions {
		projections := make([]float64, 0, len(pool))
		for _, p := range pool {
			if p.Eligible(pos) {
				projections = append(projections, p.Projection)
			}
		}
		if len(projections) < 2 {
			continue
		}
		std[pos] = sampleStd(projections)
	}
	return std
}

func sampleStd(xs []float64) float64 {
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	ss := 0.0
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// Recompute rederives VORP, Adjusted VORP, Combined Score and Tier for
// every player in the pool and returns the replacement levels it used.
// It is a pure function of the pool, the slot schedule and the team
// count: the same pool always produces the same values, regardless of
// what was computed before.
func Recompute(pool []*models.Player, slots []models.Slot, numTeams int, blend Blend) map[models.Position]float64 {
	levels := ReplacementLevels(pool, Demand(slots, numTeams))
	if len(pool) == 0 {
		return levels
	}

	std := positionStd(pool)
	maxProj := 0.0
	for _, p := range pool {
		if p.Projection > maxProj {
			maxProj = p.Projection
		}
	}

	for _, p := range pool {
		p.VORP = bestVORP(p, levels)
		p.AdjVORP = bestAdjVORP(p, levels, std)
		norm := 0.0
		if maxProj > 0 {
			norm = p.Projection / maxProj
		}
		p.Score = blend.AdjVORP*p.AdjVORP + blend.Projection*norm
	}
	assignTiers(pool)
	return levels
}

// bestVORP is the most favorable value over replacement across the
// player's eligible positions, zero when no position is recognized.
func bestVORP(p *models.Player, levels map[models.Position]float64) float64 {
	best := 0.0
	found := false
	for _, pos := range p.Positions {
		level, ok := levels[pos]
		if !ok {
			continue
		}
		v := p.Projection - level
		if !found || v > best {
			best = v
			found = true
		}
	}
	return best
}

// bestAdjVORP normalizes the replacement gap by each position's
// projection spread and keeps the most favorable result. Positions with
// zero or undefined spread are skipped; if none qualify the value is
// zero.
func bestAdjVORP(p *models.Player, levels, std map[models.Position]float64) float64 {
	best := 0.0
	found := false
	for _, pos := range p.Positions {
		level, ok := levels[pos]
		if !ok {
			continue
		}
		s, ok := std[pos]
		if !ok || s == 0 {
			continue
		}
		v := (p.Projection - level) / s
		if !found || v > best {
			best = v
			found = true
		}
	}
	return best
}

// assignTiers buckets the pool into Combined Score quintiles, tier 1
// being the best. A pool too small or too flat to cut into five distinct
// buckets collapses entirely into tier 1.
func assignTiers(pool []*models.Player) {
	for _, p := range pool {
		p.Tier = 1
	}
	if len(pool) == 0 {
		return
	}

	scores := make([]float64, len(pool))
	for i, p := range pool {
		scores[i] = p.Score
	}
	sort.Float64s(scores)

	const buckets = 5
	n := len(scores)
	edges := make([]float64, buckets+1)
	for k := 0; k <= buckets; k++ {
		h := float64(k) / buckets * float64(n-1)
		lo := int(math.Floor(h))
		edge := scores[lo]
		if frac := h - float64(lo); frac > 0 && lo+1 < n {
			edge += frac * (scores[lo+1] - scores[lo])
		}
		edges[k] = edge
	}
	for k := 0; k < buckets; k++ {
		if edges[k] == edges[k+1] {
			return
		}
	}

	for _, p := range pool {
		bucket := 0
		for _, edge := range edges[1:buckets] {
			if p.Score > edge {
				bucket++
			}
		}
		p.Tier = buckets - bucket
	}
}
