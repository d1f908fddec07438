package draft

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/draftlab/fastbreak/internal/logger"
	"github.com/draftlab/fastbreak/internal/models"
)

// SnapshotStore persists the active session between picks. Save runs
// after every successful pick, Clear on completion and reset. The dal
// package provides the implementations.
type SnapshotStore interface {
	Save(models.Snapshot) error
	Clear() error
}

// Session owns one draft from start to completion: the snake pick
// sequence, the undrafted pool, one roster per team and the cached
// replacement levels. Methods are safe for concurrent use; the write lock
// serializes picks, so each one sees a consistent pool.
type Session struct {
	mu sync.RWMutex

	cfg      Config
	initial  []*models.Player
	index    map[string]*models.Player
	pool     []*models.Player
	rosters  map[int]*Roster
	sequence []int
	picks    []models.DraftPick
	cursor   int
	manager  int
	status   models.Status
	levels   map[models.Position]float64
	store    SnapshotStore
}

// NewSession values the loaded players and returns a session waiting for
// Start. A nil store disables persistence.
func NewSession(players []models.Player, cfg Config, store SnapshotStore) *Session {
	s := &Session{
		cfg:     cfg.normalized(),
		initial: make([]*models.Player, len(players)),
		index:   make(map[string]*models.Player, len(players)),
		status:  models.StatusNotStarted,
		store:   store,
	}
	for i := range players {
		p := players[i]
		s.initial[i] = &p
		s.index[p.ID] = &p
	}
	s.pool = append([]*models.Player{}, s.initial...)
	s.levels = Recompute(s.pool, s.cfg.Slots, s.cfg.NumTeams, s.cfg.Blend)
	return s
}

// Start fixes the manager's draft position, generates the pick sequence
// and moves the session to in-progress.
func (s *Session) Start(managerTeam int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != models.StatusNotStarted {
		return fmt.Errorf("draft already started; reset it first")
	}
	if managerTeam < 1 || managerTeam > s.cfg.NumTeams {
		return fmt.Errorf("manager team %d out of range 1..%d", managerTeam, s.cfg.NumTeams)
	}

	s.manager = managerTeam
	s.sequence = Sequence(s.cfg.NumTeams, s.cfg.NumRounds)
	s.rosters = make(map[int]*Roster, s.cfg.NumTeams)
	for team := 1; team <= s.cfg.NumTeams; team++ {
		s.rosters[team] = NewRoster(s.cfg.Slots)
	}
	s.picks = []models.DraftPick{}
	s.cursor = 0
	s.status = models.StatusInProgress
	s.saveLocked()

	logger.Info("draft started",
		"managerTeam", managerTeam,
		"numTeams", s.cfg.NumTeams,
		"numRounds", s.cfg.NumRounds,
		"poolSize", len(s.pool))
	return nil
}

// Pick drafts the player for the team on the clock, seats them, revalues
// the shrunken pool and advances the cursor. The pick either fully
// applies or leaves the session untouched.
func (s *Session) Pick(playerID string) (models.DraftPick, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pickLocked(playerID, false)
}

// AutoPick drafts for the team on the clock: the highest Adjusted VORP
// player fitting any of the team's open slots, or the best of the whole
// pool when nobody fits.
func (s *Session) AutoPick() (models.DraftPick, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == models.StatusNotStarted {
		return models.DraftPick{}, &DraftNotStartedError{}
	}
	if s.cursor >= len(s.sequence) {
		return models.DraftPick{}, &DraftCompletedError{}
	}
	if len(s.pool) == 0 {
		return models.DraftPick{}, fmt.Errorf("no undrafted players remain")
	}

	team := s.sequence[s.cursor]
	choice := autoChoice(s.pool, s.rosters[team].Needed())
	return s.pickLocked(choice.ID, true)
}

func (s *Session) pickLocked(playerID string, auto bool) (models.DraftPick, error) {
	if s.status == models.StatusNotStarted {
		return models.DraftPick{}, &DraftNotStartedError{}
	}

	idx := -1
	for i, p := range s.pool {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.DraftPick{}, &PlayerNotFoundError{ID: playerID}
	}
	player := s.pool[idx]

	if s.cursor >= len(s.sequence) {
		return models.DraftPick{}, &DraftCompletedError{}
	}
	team := s.sequence[s.cursor]

	slot, err := assign(player, s.rosters[team], team, s.pool)
	if err != nil {
		return models.DraftPick{}, err
	}

	s.pool = append(s.pool[:idx], s.pool[idx+1:]...)
	s.levels = Recompute(s.pool, s.cfg.Slots, s.cfg.NumTeams, s.cfg.Blend)

	pick := models.DraftPick{
		Overall:  s.cursor + 1,
		Round:    RoundOf(s.cursor+1, s.cfg.NumTeams),
		Team:     team,
		PlayerID: player.ID,
		Player:   player.Name,
		Slot:     slot,
		Auto:     auto,
	}
	s.picks = append(s.picks, pick)
	s.cursor++

	if s.cursor == len(s.sequence) {
		s.status = models.StatusCompleted
		if err := s.clearLocked(); err != nil {
			logger.Warn("failed to clear draft snapshot on completion", "error", err)
		}
		logger.Info("draft completed", "picks", s.cursor)
	} else {
		s.saveLocked()
	}

	logger.Debug("pick executed",
		"overall", pick.Overall,
		"team", pick.Team,
		"player", pick.Player,
		"slot", pick.Slot,
		"auto", auto)
	return pick, nil
}

// autoChoice returns the highest Adjusted VORP pool player who fits any
// of the open slots, widening to the whole pool when nobody fits. Ties
// keep the earliest player in pool order.
func autoChoice(pool []*models.Player, needed []models.Slot) *models.Player {
	var best *models.Player
	for _, p := range pool {
		if !fitsAny(p, needed) {
			continue
		}
		if best == nil || p.AdjVORP > best.AdjVORP {
			best = p
		}
	}
	if best == nil {
		for _, p := range pool {
			if best == nil || p.AdjVORP > best.AdjVORP {
				best = p
			}
		}
	}
	return best
}

func fitsAny(p *models.Player, slots []models.Slot) bool {
	for _, s := range slots {
		if s.Accepts(p.Positions) {
			return true
		}
	}
	return false
}

// Reset discards all draft progress, restores the full pool and clears
// the persisted snapshot.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pool = append([]*models.Player{}, s.initial...)
	s.rosters = nil
	s.sequence = nil
	s.picks = nil
	s.cursor = 0
	s.manager = 0
	s.status = models.StatusNotStarted
	s.levels = Recompute(s.pool, s.cfg.Slots, s.cfg.NumTeams, s.cfg.Blend)

	if err := s.clearLocked(); err != nil {
		return fmt.Errorf("clear draft snapshot: %w", err)
	}
	logger.Info("draft reset", "poolSize", len(s.pool))
	return nil
}

// Status returns the lifecycle state.
func (s *Session) Status() models.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// State returns a copy of everything the UI needs: lifecycle, cursor,
// pick log, rosters rendered with player names and the replacement
// levels behind the current valuations.
func (s *Session) State() models.DraftState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := models.DraftState{
		Status:      s.status,
		NumTeams:    s.cfg.NumTeams,
		NumRounds:   s.cfg.NumRounds,
		ManagerTeam: s.manager,
		Cursor:      s.cursor,
		PoolSize:    len(s.pool),
		Picks:       append([]models.DraftPick{}, s.picks...),
		Rosters:     make(map[int]map[string][]string, len(s.rosters)),
		Replacement: s.levelsCopyLocked(),
	}
	if s.status == models.StatusInProgress && s.cursor < len(s.sequence) {
		state.Overall = s.cursor + 1
		state.Round = RoundOf(s.cursor+1, s.cfg.NumTeams)
		state.OnClock = s.sequence[s.cursor]
	}
	for team, r := range s.rosters {
		named := make(map[string][]string)
		for slot, ids := range r.Slots() {
			names := make([]string, len(ids))
			for i, id := range ids {
				names[i] = s.playerNameLocked(id)
			}
			named[slot] = names
		}
		state.Rosters[team] = named
	}
	return state
}

// Players returns the undrafted pool, best Combined Score first,
// optionally narrowed to a single position code.
func (s *Session) Players(position string) []models.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos := models.Position(strings.ToUpper(strings.TrimSpace(position)))
	out := make([]models.Player, 0, len(s.pool))
	for _, p := range s.pool {
		if position != "" && !p.Eligible(pos) {
			continue
		}
		out = append(out, *p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// BestAvailable returns the top undrafted players by Combined Score. In a
// running draft the list is narrowed to players who fit one of the
// manager's open slots, widening to the whole pool when nobody fits.
func (s *Session) BestAvailable(limit int) []models.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = 10
	}
	candidates := s.pool
	if s.status == models.StatusInProgress {
		fits := make([]*models.Player, 0, len(s.pool))
		needed := s.rosters[s.manager].Needed()
		for _, p := range s.pool {
			if fitsAny(p, needed) {
				fits = append(fits, p)
			}
		}
		if len(fits) > 0 {
			candidates = fits
		}
	}

	out := make([]models.Player, 0, len(candidates))
	for _, p := range candidates {
		out = append(out, *p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Recommendations ranks the manager's unmet slots by scarcity-weighted
// value.
func (s *Session) Recommendations() ([]models.Recommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.status == models.StatusNotStarted {
		return nil, &DraftNotStartedError{}
	}
	return Recommend(s.rosters[s.manager], s.pool), nil
}

// ReplacementLevels returns the levels cached by the last recompute.
func (s *Session) ReplacementLevels() map[models.Position]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.levelsCopyLocked()
}

// UpdateProjections overwrites raw projections with fresh numbers from
// the stats warehouse, keyed by player name, and revalues the pool when
// anything changed. Returns the number of players updated.
func (s *Session) UpdateProjections(points map[string]float64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := 0
	for _, p := range s.initial {
		v, ok := points[p.Name]
		if !ok || v <= 0 || v == p.Projection {
			continue
		}
		p.Projection = v
		updated++
	}
	if updated > 0 {
		s.levels = Recompute(s.pool, s.cfg.Slots, s.cfg.NumTeams, s.cfg.Blend)
	}
	return updated
}

func (s *Session) levelsCopyLocked() map[models.Position]float64 {
	out := make(map[models.Position]float64, len(s.levels))
	for pos, v := range s.levels {
		out[pos] = v
	}
	return out
}

func (s *Session) playerNameLocked(id string) string {
	if p, ok := s.index[id]; ok {
		return p.Name
	}
	return id
}

func (s *Session) snapshotLocked() models.Snapshot {
	snap := models.Snapshot{
		NumTeams:    s.cfg.NumTeams,
		NumRounds:   s.cfg.NumRounds,
		ManagerTeam: s.manager,
		Cursor:      s.cursor,
		Picks:       append([]models.DraftPick{}, s.picks...),
		Pool:        make([]string, len(s.pool)),
		Rosters:     make(map[int]map[string][]string, len(s.rosters)),
		SavedAt:     time.Now().UTC(),
	}
	for i, p := range s.pool {
		snap.Pool[i] = p.ID
	}
	for team, r := range s.rosters {
		snap.Rosters[team] = r.Slots()
	}
	return snap
}

func (s *Session) saveLocked() {
	if s.store == nil {
		return
	}
	if err := s.store.Save(s.snapshotLocked()); err != nil {
		logger.Warn("failed to persist draft snapshot", "error", err)
	}
}

func (s *Session) clearLocked() error {
	if s.store == nil {
		return nil
	}
	return s.store.Clear()
}

// Restore rebuilds a session from a persisted snapshot, validating every
// reference against the freshly loaded player table. Snapshots that do
// not reconcile fail with a RestoreError; callers fall back to a fresh
// NewSession.
func Restore(players []models.Player, snap models.Snapshot, cfg Config, store SnapshotStore) (*Session, error) {
	if snap.NumTeams < 1 || snap.NumRounds < 1 {
		return nil, &RestoreError{Reason: fmt.Sprintf("invalid league shape %dx%d", snap.NumTeams, snap.NumRounds)}
	}
	if snap.ManagerTeam < 1 || snap.ManagerTeam > snap.NumTeams {
		return nil, &RestoreError{Reason: fmt.Sprintf("manager team %d out of range", snap.ManagerTeam)}
	}
	sequence := Sequence(snap.NumTeams, snap.NumRounds)
	if snap.Cursor < 0 || snap.Cursor > len(sequence) {
		return nil, &RestoreError{Reason: fmt.Sprintf("cursor %d outside the pick sequence", snap.Cursor)}
	}
	if len(snap.Picks) != snap.Cursor {
		return nil, &RestoreError{Reason: "pick log does not match cursor"}
	}

	s := NewSession(players, cfg, store)
	s.cfg.NumTeams = snap.NumTeams
	s.cfg.NumRounds = snap.NumRounds

	seen := make(map[string]bool, len(players))
	pool := make([]*models.Player, 0, len(snap.Pool))
	for _, id := range snap.Pool {
		p, ok := s.index[id]
		if !ok {
			return nil, &RestoreError{Reason: fmt.Sprintf("pool references unknown player %q", id)}
		}
		if seen[id] {
			return nil, &RestoreError{Reason: fmt.Sprintf("player %q appears twice", id)}
		}
		seen[id] = true
		pool = append(pool, p)
	}

	rosters := make(map[int]*Roster, snap.NumTeams)
	for team := 1; team <= snap.NumTeams; team++ {
		rosters[team] = NewRoster(s.cfg.Slots)
	}
	seated := 0
	for team, slots := range snap.Rosters {
		r, ok := rosters[team]
		if !ok {
			return nil, &RestoreError{Reason: fmt.Sprintf("roster for unknown team %d", team)}
		}
		for slot, ids := range slots {
			for _, id := range ids {
				if _, ok := s.index[id]; !ok {
					return nil, &RestoreError{Reason: fmt.Sprintf("team %d references unknown player %q", team, id)}
				}
				if seen[id] {
					return nil, &RestoreError{Reason: fmt.Sprintf("player %q appears twice", id)}
				}
				seen[id] = true
				if err := r.Assign(slot, id); err != nil {
					return nil, &RestoreError{Reason: fmt.Sprintf("team %d: %v", team, err)}
				}
				seated++
			}
		}
	}
	if seated != len(snap.Picks) {
		return nil, &RestoreError{Reason: "rosters do not match the pick log"}
	}
	if len(seen) != len(players) {
		return nil, &RestoreError{Reason: fmt.Sprintf("snapshot accounts for %d of %d players", len(seen), len(players))}
	}

	for _, pick := range snap.Picks {
		p, ok := s.index[pick.PlayerID]
		if !ok {
			return nil, &RestoreError{Reason: fmt.Sprintf("pick %d references unknown player %q", pick.Overall, pick.PlayerID)}
		}
		if p.Name != pick.Player {
			return nil, &RestoreError{Reason: fmt.Sprintf("player %q is %q in the table but %q in the snapshot", pick.PlayerID, p.Name, pick.Player)}
		}
	}

	s.pool = pool
	s.rosters = rosters
	s.sequence = sequence
	s.manager = snap.ManagerTeam
	s.cursor = snap.Cursor
	s.picks = append([]models.DraftPick{}, snap.Picks...)
	s.levels = Recompute(s.pool, s.cfg.Slots, s.cfg.NumTeams, s.cfg.Blend)
	if s.cursor >= len(sequence) {
		s.status = models.StatusCompleted
	} else {
		s.status = models.StatusInProgress
	}

	logger.Info("draft restored from snapshot",
		"cursor", s.cursor,
		"poolSize", len(s.pool),
		"managerTeam", s.manager,
		"savedAt", snap.SavedAt)
	return s, nil
}
