package draft

import (
	"errors"
	"testing"

	"github.com/draftlab/fastbreak/internal/models"
)

func TestSlotValueTracksBestEligible(t *testing.T) {
	a := mkPlayer("a", "A", 0, models.PG)
	b := mkPlayer("b", "B", 0, models.PG, models.SG)
	c := mkPlayer("c", "C", 0, models.C)
	a.AdjVORP = 2.5
	b.AdjVORP = 1.0
	c.AdjVORP = 4.0
	pool := []*models.Player{a, b, c}

	pg := models.Slot{Name: "PG", Covers: []models.Position{models.PG}, Seats: 1}
	if got := SlotValue(pg, pool); got != 2.5 {
		t.Errorf("PG slot value = %v, want 2.5", got)
	}
	util := models.Slot{Name: "UTIL", Seats: 1}
	if got := SlotValue(util, pool); got != 4.0 {
		t.Errorf("UTIL slot value = %v, want 4.0", got)
	}
	sf := models.Slot{Name: "SF", Covers: []models.Position{models.SF}, Seats: 1}
	if got := SlotValue(sf, pool); got != 0 {
		t.Errorf("slot with no eligible players = %v, want 0", got)
	}
}

func TestAssignWalksSlotsByValue(t *testing.T) {
	schedule := []models.Slot{
		{Name: "PG", Covers: []models.Position{models.PG}, Seats: 1},
		{Name: "C", Covers: []models.Position{models.C}, Seats: 1},
	}
	dual := mkPlayer("dual", "Dual", 0, models.PG, models.C)
	stud := mkPlayer("stud", "Stud", 0, models.C)
	dual.AdjVORP = 1.0
	stud.AdjVORP = 3.0
	pool := []*models.Player{dual, stud}

	// C carries the pool's best value, so the dual-eligible player
	// lands there ahead of PG.
	r := NewRoster(schedule)
	slot, err := assign(dual, r, 1, pool)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if slot != "C" {
		t.Errorf("seated in %q, want C", slot)
	}
}

func TestAssignTieKeepsScheduleOrder(t *testing.T) {
	schedule := []models.Slot{
		{Name: "SG", Covers: []models.Position{models.SG}, Seats: 1},
		{Name: "PG", Covers: []models.Position{models.PG}, Seats: 1},
	}
	dual := mkPlayer("dual", "Dual", 0, models.PG, models.SG)
	dual.AdjVORP = 2.0
	pool := []*models.Player{dual}

	r := NewRoster(schedule)
	slot, err := assign(dual, r, 1, pool)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if slot != "SG" {
		t.Errorf("equal-value slots should keep schedule order, got %q", slot)
	}
}

func TestAssignSkipsFilledSlots(t *testing.T) {
	schedule := []models.Slot{
		{Name: "PG", Covers: []models.Position{models.PG}, Seats: 1},
		{Name: "G", Covers: []models.Position{models.PG, models.SG}, Seats: 1},
	}
	r := NewRoster(schedule)
	if err := r.Assign("PG", "earlier"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	p := mkPlayer("p", "Guard", 0, models.PG)
	pool := []*models.Player{p}
	slot, err := assign(p, r, 1, pool)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if slot != "G" {
		t.Errorf("seated in %q, want the open flex G", slot)
	}
}

func TestAssignFallsBackToUniversalThenBench(t *testing.T) {
	schedule := []models.Slot{
		{Name: "C", Covers: []models.Position{models.C}, Seats: 1},
		{Name: "UTIL", Seats: 1},
		{Name: "Bench", Seats: 1, Bench: true},
	}
	r := NewRoster(schedule)
	pool := []*models.Player{
		mkPlayer("g1", "GuardOne", 0, models.PG),
		mkPlayer("g2", "GuardTwo", 0, models.PG),
		mkPlayer("g3", "GuardThree", 0, models.PG),
	}

	slot, err := assign(pool[0], r, 1, pool)
	if err != nil {
		t.Fatalf("first assign: %v", err)
	}
	if slot != "UTIL" {
		t.Errorf("first misfit seated in %q, want UTIL", slot)
	}

	slot, err = assign(pool[1], r, 1, pool)
	if err != nil {
		t.Fatalf("second assign: %v", err)
	}
	if slot != "Bench" {
		t.Errorf("second misfit seated in %q, want Bench", slot)
	}

	_, err = assign(pool[2], r, 1, pool)
	var fullErr *RosterFullError
	if !errors.As(err, &fullErr) {
		t.Fatalf("third assign: got %v, want RosterFullError", err)
	}
	if fullErr.Team != 1 || fullErr.Player != "GuardThree" {
		t.Errorf("RosterFullError = %+v", fullErr)
	}
	if r.Size() != 2 {
		t.Errorf("failed assign changed the roster: size %d, want 2", r.Size())
	}
}

func TestAssignNeverSeatsIneligibleInCoveredSlot(t *testing.T) {
	schedule := []models.Slot{
		{Name: "PG", Covers: []models.Position{models.PG}, Seats: 1},
		{Name: "F", Covers: []models.Position{models.SF, models.PF}, Seats: 1},
	}
	center := mkPlayer("c", "BigMan", 0, models.C)
	pool := []*models.Player{center}

	r := NewRoster(schedule)
	_, err := assign(center, r, 1, pool)
	var fullErr *RosterFullError
	if !errors.As(err, &fullErr) {
		t.Fatalf("got %v, want RosterFullError with no matching slot", err)
	}
	if r.Size() != 0 {
		t.Errorf("roster gained a player it cannot seat: size %d", r.Size())
	}
}
