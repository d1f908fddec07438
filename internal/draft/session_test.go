package draft

import (
	"errors"
	"testing"

	"github.com/draftlab/fastbreak/internal/logger"
	"github.com/draftlab/fastbreak/internal/models"
)

func init() {
	logger.Init()
}

// recordingStore captures snapshot traffic so tests can watch saves and
// clears without a database.
type recordingStore struct {
	saves  int
	clears int
	last   *models.Snapshot
}

func (r *recordingStore) Save(snap models.Snapshot) error {
	r.saves++
	r.last = &snap
	return nil
}

func (r *recordingStore) Clear() error {
	r.clears++
	r.last = nil
	return nil
}

func seedPlayer(id, name string, proj float64, positions ...models.Position) models.Player {
	return models.Player{ID: id, Name: name, Positions: positions, Projection: proj}
}

func smallLeague() Config {
	return Config{
		NumTeams:  2,
		NumRounds: 4,
		Slots: []models.Slot{
			{Name: "PG", Covers: []models.Position{models.PG}, Seats: 1},
			{Name: "C", Covers: []models.Position{models.C}, Seats: 1},
			{Name: "UTIL", Seats: 1},
			{Name: "Bench", Seats: 1, Bench: true},
		},
	}
}

func smallPool() []models.Player {
	return []models.Player{
		seedPlayer("p01", "Alpha", 52, models.PG),
		seedPlayer("p02", "Bravo", 49, models.C),
		seedPlayer("p03", "Charlie", 46, models.PG, models.SG),
		seedPlayer("p04", "Delta", 43, models.C, models.PF),
		seedPlayer("p05", "Echo", 40, models.SG),
		seedPlayer("p06", "Foxtrot", 37, models.SF),
		seedPlayer("p07", "Golf", 34, models.PG),
		seedPlayer("p08", "Hotel", 31, models.C),
		seedPlayer("p09", "India", 28, models.SF, models.PF),
		seedPlayer("p10", "Juliet", 25, models.SG),
	}
}

func TestSessionRequiresStart(t *testing.T) {
	s := NewSession(smallPool(), smallLeague(), nil)

	if s.Status() != models.StatusNotStarted {
		t.Fatalf("fresh session status = %q", s.Status())
	}

	var notStarted *DraftNotStartedError
	if _, err := s.Pick("p01"); !errors.As(err, &notStarted) {
		t.Errorf("Pick before Start: got %v, want DraftNotStartedError", err)
	}
	if _, err := s.AutoPick(); !errors.As(err, &notStarted) {
		t.Errorf("AutoPick before Start: got %v, want DraftNotStartedError", err)
	}
	if _, err := s.Recommendations(); !errors.As(err, &notStarted) {
		t.Errorf("Recommendations before Start: got %v, want DraftNotStartedError", err)
	}
}

func TestSessionStartValidation(t *testing.T) {
	s := NewSession(smallPool(), smallLeague(), nil)

	if err := s.Start(0); err == nil {
		t.Error("Start(0) should fail")
	}
	if err := s.Start(3); err == nil {
		t.Error("Start beyond team count should fail")
	}
	if err := s.Start(1); err != nil {
		t.Fatalf("Start(1): %v", err)
	}
	if err := s.Start(2); err == nil {
		t.Error("starting a running draft should fail")
	}
}

// Running a full draft must keep the pool and the rosters a strict
// partition of the loaded players, with the cursor climbing one pick at
// a time until the sequence is exhausted.
func TestSessionFullDraftPartition(t *testing.T) {
	store := &recordingStore{}
	players := smallPool()
	s := NewSession(players, smallLeague(), store)

	if err := s.Start(1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if store.saves != 1 {
		t.Errorf("saves after Start = %d, want 1", store.saves)
	}

	wantSequence := Sequence(2, 4)
	seen := make(map[string]bool, len(players))
	totalPicks := 2 * 4

	for i := 0; i < totalPicks; i++ {
		pick, err := s.AutoPick()
		if err != nil {
			t.Fatalf("pick %d: %v", i+1, err)
		}
		if pick.Overall != i+1 {
			t.Errorf("pick %d: overall = %d", i+1, pick.Overall)
		}
		if pick.Team != wantSequence[i] {
			t.Errorf("pick %d: team = %d, want %d", i+1, pick.Team, wantSequence[i])
		}
		if !pick.Auto {
			t.Errorf("pick %d not flagged auto", i+1)
		}
		if seen[pick.PlayerID] {
			t.Fatalf("player %s drafted twice", pick.PlayerID)
		}
		seen[pick.PlayerID] = true

		state := s.State()
		if state.Cursor != i+1 {
			t.Errorf("after pick %d: cursor = %d", i+1, state.Cursor)
		}
		seated := 0
		for _, roster := range state.Rosters {
			for _, names := range roster {
				seated += len(names)
			}
		}
		if state.PoolSize+seated != len(players) {
			t.Fatalf("after pick %d: pool %d + seated %d != %d players",
				i+1, state.PoolSize, seated, len(players))
		}
	}

	if s.Status() != models.StatusCompleted {
		t.Fatalf("status after final pick = %q", s.Status())
	}
	state := s.State()
	if state.OnClock != 0 || state.Overall != 0 {
		t.Errorf("completed draft still reports a team on the clock: %+v", state)
	}
	if store.clears != 1 {
		t.Errorf("clears after completion = %d, want 1", store.clears)
	}
	if store.last != nil {
		t.Error("snapshot still present after completion")
	}
}

func TestSessionPickUnknownPlayer(t *testing.T) {
	s := NewSession(smallPool(), smallLeague(), nil)
	if err := s.Start(1); err != nil {
		t.Fatalf("Start: %v", err)
	}

	_, err := s.Pick("nobody")
	var notFound *PlayerNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("got %v, want PlayerNotFoundError", err)
	}
	if notFound.ID != "nobody" {
		t.Errorf("error carries ID %q", notFound.ID)
	}
	state := s.State()
	if state.Cursor != 0 || state.PoolSize != 10 {
		t.Errorf("failed pick moved the draft: %+v", state)
	}
}

func TestSessionPickAfterCompletion(t *testing.T) {
	cfg := Config{
		NumTeams:  2,
		NumRounds: 1,
		Slots:     []models.Slot{{Name: "UTIL", Seats: 1}},
	}
	store := &recordingStore{}
	s := NewSession(smallPool()[:3], cfg, store)

	if err := s.Start(2); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := s.Pick("p01"); err != nil {
		t.Fatalf("pick 1: %v", err)
	}
	if _, err := s.Pick("p02"); err != nil {
		t.Fatalf("pick 2: %v", err)
	}

	if s.Status() != models.StatusCompleted {
		t.Fatalf("two-pick draft not complete: %q", s.Status())
	}
	if store.last != nil {
		t.Error("snapshot not cleared on completion")
	}

	before := s.State()
	_, err := s.Pick("p03")
	var completed *DraftCompletedError
	if !errors.As(err, &completed) {
		t.Fatalf("got %v, want DraftCompletedError", err)
	}
	after := s.State()
	if after.Cursor != before.Cursor || after.PoolSize != before.PoolSize ||
		len(after.Picks) != len(before.Picks) || after.Status != before.Status {
		t.Errorf("rejected pick changed state: before %+v, after %+v", before, after)
	}
}

func TestSessionSnakeTurnaround(t *testing.T) {
	cfg := Config{
		NumTeams:  2,
		NumRounds: 2,
		Slots: []models.Slot{
			{Name: "UTIL", Seats: 1},
			{Name: "Bench", Seats: 1, Bench: true},
		},
	}
	s := NewSession(smallPool()[:4], cfg, nil)
	if err := s.Start(1); err != nil {
		t.Fatalf("Start: %v", err)
	}

	wantTeams := []int{1, 2, 2, 1}
	wantRounds := []int{1, 1, 2, 2}
	for i := range wantTeams {
		pick, err := s.AutoPick()
		if err != nil {
			t.Fatalf("pick %d: %v", i+1, err)
		}
		if pick.Team != wantTeams[i] {
			t.Errorf("pick %d: team = %d, want %d", i+1, pick.Team, wantTeams[i])
		}
		if pick.Round != wantRounds[i] {
			t.Errorf("pick %d: round = %d, want %d", i+1, pick.Round, wantRounds[i])
		}
	}
}

func TestSessionOnClockTracksSequence(t *testing.T) {
	s := NewSession(smallPool(), smallLeague(), nil)
	if err := s.Start(1); err != nil {
		t.Fatalf("Start: %v", err)
	}

	state := s.State()
	if state.OnClock != 1 || state.Overall != 1 || state.Round != 1 {
		t.Fatalf("opening state = %+v", state)
	}

	if _, err := s.Pick("p01"); err != nil {
		t.Fatalf("pick: %v", err)
	}
	state = s.State()
	if state.OnClock != 2 || state.Overall != 2 || state.Round != 1 {
		t.Errorf("after one pick = on clock %d, overall %d", state.OnClock, state.Overall)
	}
}

func TestSessionStateRendersNames(t *testing.T) {
	s := NewSession(smallPool(), smallLeague(), nil)
	if err := s.Start(1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := s.Pick("p01"); err != nil {
		t.Fatalf("pick: %v", err)
	}

	roster := s.State().Rosters[1]
	names := roster["PG"]
	if len(names) != 1 || names[0] != "Alpha" {
		t.Errorf("roster shows %v, want the player name Alpha", names)
	}
}

func TestSessionAutoPickOnlyConsidersFittingPlayers(t *testing.T) {
	cfg := Config{
		NumTeams:  1,
		NumRounds: 1,
		Slots:     []models.Slot{{Name: "C", Covers: []models.Position{models.C}, Seats: 1}},
	}
	players := []models.Player{
		seedPlayer("pg", "BigNameGuard", 90, models.PG),
		seedPlayer("c", "QuietCenter", 30, models.C),
	}
	s := NewSession(players, cfg, nil)
	if err := s.Start(1); err != nil {
		t.Fatalf("Start: %v", err)
	}

	pick, err := s.AutoPick()
	if err != nil {
		t.Fatalf("AutoPick: %v", err)
	}
	if pick.PlayerID != "c" {
		t.Errorf("auto pick took %s over the only player fitting the open slot", pick.PlayerID)
	}
	if pick.Slot != "C" {
		t.Errorf("seated in %q, want C", pick.Slot)
	}
}

func TestSessionAutoPickPrefersAdjustedValue(t *testing.T) {
	cfg := Config{
		NumTeams:  1,
		NumRounds: 1,
		Slots: []models.Slot{
			{Name: "PG", Covers: []models.Position{models.PG}, Seats: 1},
			{Name: "C", Covers: []models.Position{models.C}, Seats: 1},
		},
	}
	players := []models.Player{
		seedPlayer("pgA", "GuardA", 50, models.PG),
		seedPlayer("pgB", "GuardB", 30, models.PG),
		seedPlayer("cX", "CenterX", 45, models.C),
		seedPlayer("cY", "CenterY", 20, models.C),
	}
	s := NewSession(players, cfg, nil)
	if err := s.Start(1); err != nil {
		t.Fatalf("Start: %v", err)
	}

	pick, err := s.AutoPick()
	if err != nil {
		t.Fatalf("AutoPick: %v", err)
	}
	// Both position leaders sit at adjusted value zero; the tie keeps
	// pool order, and the walk seats the guard in PG.
	if pick.PlayerID != "pgA" {
		t.Errorf("auto pick = %s, want pgA", pick.PlayerID)
	}
	if pick.Slot != "PG" {
		t.Errorf("seated in %q, want PG", pick.Slot)
	}
}

func TestSessionAutoPickRejectedWhenNobodySeats(t *testing.T) {
	cfg := Config{
		NumTeams:  1,
		NumRounds: 1,
		Slots:     []models.Slot{{Name: "C", Covers: []models.Position{models.C}, Seats: 1}},
	}
	players := []models.Player{
		seedPlayer("g1", "GuardOnly", 40, models.PG),
	}
	s := NewSession(players, cfg, nil)
	if err := s.Start(1); err != nil {
		t.Fatalf("Start: %v", err)
	}

	_, err := s.AutoPick()
	var fullErr *RosterFullError
	if !errors.As(err, &fullErr) {
		t.Fatalf("got %v, want RosterFullError", err)
	}
	state := s.State()
	if state.Cursor != 0 || state.PoolSize != 1 {
		t.Errorf("rejected auto pick moved the draft: %+v", state)
	}
}

func TestSessionScenarioRecommendations(t *testing.T) {
	cfg := Config{
		NumTeams:  2,
		NumRounds: 3,
		Slots: []models.Slot{
			{Name: "PG", Covers: []models.Position{models.PG}, Seats: 1},
			{Name: "SG", Covers: []models.Position{models.SG}, Seats: 1},
			{Name: "C", Covers: []models.Position{models.C}, Seats: 1},
		},
	}
	players := []models.Player{
		seedPlayer("a", "A", 40, models.PG),
		seedPlayer("b", "B", 35, models.PG, models.SG),
		seedPlayer("c", "C", 50, models.C),
	}
	s := NewSession(players, cfg, nil)
	if err := s.Start(1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := s.Pick("c"); err != nil {
		t.Fatalf("pick: %v", err)
	}

	recs, err := s.Recommendations()
	if err != nil {
		t.Fatalf("Recommendations: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(recs))
	}
	for _, rec := range recs {
		if rec.Slot == "C" {
			t.Fatal("recommended the slot the manager already filled")
		}
	}
	if recs[0].Slot != "PG" || recs[0].Score <= recs[1].Score {
		t.Errorf("recommendations = %+v, want PG ranked first", recs)
	}
}

func TestSessionPlayersFilter(t *testing.T) {
	s := NewSession(smallPool(), smallLeague(), nil)

	guards := s.Players("pg")
	for _, p := range guards {
		if !p.Eligible(models.PG) {
			t.Errorf("%s leaked into the PG filter", p.Name)
		}
	}
	if len(guards) != 3 {
		t.Errorf("PG filter matched %d players, want 3", len(guards))
	}

	all := s.Players("")
	if len(all) != 10 {
		t.Fatalf("unfiltered pool = %d players", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].Score > all[i-1].Score {
			t.Errorf("pool not sorted by score: %v after %v", all[i].Score, all[i-1].Score)
		}
	}
}

func TestSessionBestAvailableNarrowsToOpenSlots(t *testing.T) {
	cfg := Config{
		NumTeams:  2,
		NumRounds: 2,
		Slots: []models.Slot{
			{Name: "PG", Covers: []models.Position{models.PG}, Seats: 1},
			{Name: "C", Covers: []models.Position{models.C}, Seats: 1},
		},
	}
	players := []models.Player{
		seedPlayer("pg1", "GuardOne", 50, models.PG),
		seedPlayer("pg2", "GuardTwo", 45, models.PG),
		seedPlayer("c1", "CenterOne", 48, models.C),
		seedPlayer("c2", "CenterTwo", 30, models.C),
	}
	s := NewSession(players, cfg, nil)

	// Before the draft starts the whole pool qualifies.
	if got := len(s.BestAvailable(10)); got != 4 {
		t.Fatalf("pre-draft best available = %d players", got)
	}

	if err := s.Start(1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := s.Pick("pg1"); err != nil {
		t.Fatalf("pick: %v", err)
	}
	if _, err := s.AutoPick(); err != nil {
		t.Fatalf("auto pick: %v", err)
	}

	// Manager's PG seat is taken, so only centers remain relevant.
	for _, p := range s.BestAvailable(10) {
		if !p.Eligible(models.C) {
			t.Errorf("%s offered for a roster with only the C slot open", p.Name)
		}
	}

	if got := len(s.BestAvailable(1)); got != 1 {
		t.Errorf("limit 1 returned %d players", got)
	}
}

func TestSessionReset(t *testing.T) {
	store := &recordingStore{}
	s := NewSession(smallPool(), smallLeague(), store)

	if err := s.Start(1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := s.AutoPick(); err != nil {
		t.Fatalf("pick: %v", err)
	}
	if _, err := s.AutoPick(); err != nil {
		t.Fatalf("pick: %v", err)
	}

	if err := s.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	state := s.State()
	if state.Status != models.StatusNotStarted {
		t.Errorf("status after reset = %q", state.Status)
	}
	if state.PoolSize != 10 || state.Cursor != 0 || len(state.Picks) != 0 {
		t.Errorf("reset left progress behind: %+v", state)
	}
	if store.clears != 1 {
		t.Errorf("clears after reset = %d, want 1", store.clears)
	}

	if err := s.Start(2); err != nil {
		t.Fatalf("restart after reset: %v", err)
	}
}

func TestSessionSnapshotRoundTrip(t *testing.T) {
	store := &recordingStore{}
	players := smallPool()
	cfg := smallLeague()
	s := NewSession(players, cfg, store)

	if err := s.Start(1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := s.Pick("p01"); err != nil {
		t.Fatalf("pick 1: %v", err)
	}
	if _, err := s.Pick("p02"); err != nil {
		t.Fatalf("pick 2: %v", err)
	}
	if store.last == nil {
		t.Fatal("no snapshot saved")
	}
	snap := *store.last

	restored, err := Restore(smallPool(), snap, cfg, &recordingStore{})
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}

	state := restored.State()
	if state.Status != models.StatusInProgress {
		t.Fatalf("restored status = %q", state.Status)
	}
	if state.Cursor != 2 || state.PoolSize != 8 || len(state.Picks) != 2 {
		t.Errorf("restored state = %+v", state)
	}
	if state.ManagerTeam != 1 {
		t.Errorf("restored manager = %d", state.ManagerTeam)
	}
	if names := state.Rosters[1]["PG"]; len(names) != 1 || names[0] != "Alpha" {
		t.Errorf("restored roster = %v", state.Rosters[1])
	}

	// The restored session keeps drafting to completion.
	for restored.Status() != models.StatusCompleted {
		if _, err := restored.AutoPick(); err != nil {
			t.Fatalf("post-restore pick: %v", err)
		}
	}
}

func TestSessionRestoreCompletedSnapshot(t *testing.T) {
	cfg := Config{
		NumTeams:  2,
		NumRounds: 1,
		Slots:     []models.Slot{{Name: "UTIL", Seats: 1}},
	}
	players := []models.Player{
		seedPlayer("p1", "One", 40, models.PG),
		seedPlayer("p2", "Two", 30, models.C),
		seedPlayer("p3", "Three", 20, models.SG),
	}
	snap := models.Snapshot{
		NumTeams:    2,
		NumRounds:   1,
		ManagerTeam: 1,
		Cursor:      2,
		Picks: []models.DraftPick{
			{Overall: 1, Round: 1, Team: 1, PlayerID: "p1", Player: "One", Slot: "UTIL"},
			{Overall: 2, Round: 1, Team: 2, PlayerID: "p2", Player: "Two", Slot: "UTIL"},
		},
		Pool: []string{"p3"},
		Rosters: map[int]map[string][]string{
			1: {"UTIL": {"p1"}},
			2: {"UTIL": {"p2"}},
		},
	}

	s, err := Restore(players, snap, cfg, nil)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if s.Status() != models.StatusCompleted {
		t.Errorf("status = %q, want completed", s.Status())
	}

	var completed *DraftCompletedError
	if _, err := s.Pick("p3"); !errors.As(err, &completed) {
		t.Errorf("pick into restored completed draft: got %v", err)
	}
}

func TestSessionRestoreRejectsTamperedSnapshots(t *testing.T) {
	players := smallPool()
	cfg := smallLeague()

	base := func() models.Snapshot {
		return models.Snapshot{
			NumTeams:    2,
			NumRounds:   4,
			ManagerTeam: 1,
			Cursor:      1,
			Picks: []models.DraftPick{
				{Overall: 1, Round: 1, Team: 1, PlayerID: "p01", Player: "Alpha", Slot: "PG"},
			},
			Pool: []string{"p02", "p03", "p04", "p05", "p06", "p07", "p08", "p09", "p10"},
			Rosters: map[int]map[string][]string{
				1: {"PG": {"p01"}},
			},
		}
	}

	cases := []struct {
		name   string
		mutate func(*models.Snapshot)
	}{
		{"manager out of range", func(s *models.Snapshot) { s.ManagerTeam = 9 }},
		{"cursor beyond sequence", func(s *models.Snapshot) { s.Cursor = 99 }},
		{"pick log shorter than cursor", func(s *models.Snapshot) { s.Picks = nil }},
		{"unknown player in pool", func(s *models.Snapshot) { s.Pool[0] = "ghost" }},
		{"player both pooled and seated", func(s *models.Snapshot) { s.Pool[0] = "p01" }},
		{"roster for unknown team", func(s *models.Snapshot) {
			s.Rosters[7] = map[string][]string{"PG": {"p02"}}
		}},
		{"seat count disagrees with picks", func(s *models.Snapshot) {
			s.Rosters[1]["Bench"] = []string{"p10"}
			s.Pool = []string{"p02", "p03", "p04", "p05", "p06", "p07", "p08", "p09"}
		}},
		{"renamed player behind an ID", func(s *models.Snapshot) { s.Picks[0].Player = "Somebody Else" }},
		{"player dropped from the snapshot", func(s *models.Snapshot) { s.Pool = s.Pool[1:] }},
		{"overstuffed slot", func(s *models.Snapshot) {
			s.Rosters[1]["PG"] = []string{"p01", "p03"}
			s.Pool = []string{"p02", "p04", "p05", "p06", "p07", "p08", "p09", "p10"}
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := base()
			tc.mutate(&snap)

			_, err := Restore(players, snap, cfg, nil)
			var restoreErr *RestoreError
			if !errors.As(err, &restoreErr) {
				t.Fatalf("got %v, want RestoreError", err)
			}
		})
	}
}

func TestSessionUpdateProjections(t *testing.T) {
	s := NewSession(smallPool(), smallLeague(), nil)

	if lvl := s.ReplacementLevels()[models.SG]; lvl != 40 {
		t.Fatalf("SG replacement before refresh = %v, want 40", lvl)
	}

	updated := s.UpdateProjections(map[string]float64{
		"Juliet":  99,
		"Nobody":  88,
		"Alpha":   0, // non-positive values are ignored
		"Bravo":   49,
		"Charlie": -3,
	})
	if updated != 1 {
		t.Fatalf("updated = %d, want 1", updated)
	}

	for _, p := range s.Players("sg") {
		if p.Name == "Juliet" && p.Projection != 99 {
			t.Errorf("Juliet projection = %v, want 99", p.Projection)
		}
	}
	// Juliet's jump pushes the SG cutoff one projection higher.
	if lvl := s.ReplacementLevels()[models.SG]; lvl != 46 {
		t.Errorf("SG replacement after refresh = %v, want 46", lvl)
	}
}
