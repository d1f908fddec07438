package draft

import "github.com/draftlab/fastbreak/internal/models"

// Standard league shape.
const (
	DefaultNumTeams  = 12
	DefaultNumRounds = 13
)

// Blend weights the two Combined Score terms. The projection term is
// normalized against the best projection left in the pool before it is
// weighted.
type Blend struct {
	AdjVORP    float64
	Projection float64
}

// DefaultBlend is the standard 70/30 split between scarcity-adjusted
// value and raw projection.
var DefaultBlend = Blend{AdjVORP: 0.7, Projection: 0.3}

// DefaultSlots returns the standard nine-slot roster schedule: one seat
// per specific position, a guard and a forward flex, three utility seats
// and three bench seats.
func DefaultSlots() []models.Slot {
	return []models.Slot{
		{Name: "PG", Covers: []models.Position{models.PG}, Seats: 1},
		{Name: "SG", Covers: []models.Position{models.SG}, Seats: 1},
		{Name: "SF", Covers: []models.Position{models.SF}, Seats: 1},
		{Name: "PF", Covers: []models.Position{models.PF}, Seats: 1},
		{Name: "C", Covers: []models.Position{models.C}, Seats: 1},
		{Name: "G", Covers: []models.Position{models.PG, models.SG}, Seats: 1},
		{Name: "F", Covers: []models.Position{models.SF, models.PF}, Seats: 1},
		{Name: "UTIL", Seats: 3},
		{Name: "Bench", Seats: 3, Bench: true},
	}
}

// Config fixes the league shape for the life of a session.
type Config struct {
	NumTeams  int
	NumRounds int
	Slots     []models.Slot
	Blend     Blend
}

func (c Config) normalized() Config {
	if c.NumTeams < 1 {
		c.NumTeams = DefaultNumTeams
	}
	if c.NumRounds < 1 {
		c.NumRounds = DefaultNumRounds
	}
	if len(c.Slots) == 0 {
		c.Slots = DefaultSlots()
	}
	if c.Blend == (Blend{}) {
		c.Blend = DefaultBlend
	}
	return c
}
