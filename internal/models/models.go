package models

import (
	"fmt"
	"strings"
	"time"
)

// Position is one of the five on-court position codes.
type Position string

const (
	PG Position = "PG"
	SG Position = "SG"
	SF Position = "SF"
	PF Position = "PF"
	C  Position = "C"
)

// SpecificPositions lists the five position codes in schedule order.
var SpecificPositions = []Position{PG, SG, SF, PF, C}

// ParsePositions parses a comma separated eligibility string such as
// "PG, SG" into position codes. Any unknown code fails the whole string;
// callers treat a failed parse as an empty eligibility set.
func ParsePositions(s string) ([]Position, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	positions := make([]Position, 0, len(parts))
	for _, part := range parts {
		code := Position(strings.ToUpper(strings.TrimSpace(part)))
		switch code {
		case PG, SG, SF, PF, C:
		default:
			return nil, fmt.Errorf("unknown position code %q", strings.TrimSpace(part))
		}
		for _, seen := range positions {
			if seen == code {
				return nil, fmt.Errorf("duplicate position code %q", code)
			}
		}
		positions = append(positions, code)
	}
	return positions, nil
}

// Player is one draftable player. Identity fields are fixed at load time;
// the value fields (VORP through Tier) are rederived every time the
// undrafted pool changes.
type Player struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Team       string             `json:"team,omitempty"`
	Positions  []Position         `json:"positions"`
	Stats      map[string]float64 `json:"stats,omitempty"`
	Projection float64            `json:"projection"`
	VORP       float64            `json:"vorp"`
	AdjVORP    float64            `json:"adjVorp"`
	Score      float64            `json:"score"`
	Tier       int                `json:"tier"`
}

// Eligible reports whether the player can play the given position.
func (p *Player) Eligible(pos Position) bool {
	for _, own := range p.Positions {
		if own == pos {
			return true
		}
	}
	return false
}

// Slot is one entry in the roster slot schedule shared by every team.
// Covers lists the positions the slot accepts; an empty list means any
// position. Bench slots also accept anyone and are filled last.
type Slot struct {
	Name   string     `json:"name"`
	Covers []Position `json:"covers,omitempty"`
	Seats  int        `json:"seats"`
	Bench  bool       `json:"bench,omitempty"`
}

// Universal reports whether the slot is an any-position starter slot.
func (s Slot) Universal() bool {
	return !s.Bench && len(s.Covers) == 0
}

// Accepts reports whether a player with the given eligible positions can
// occupy the slot.
func (s Slot) Accepts(positions []Position) bool {
	if s.Bench || len(s.Covers) == 0 {
		return true
	}
	for _, cover := range s.Covers {
		for _, pos := range positions {
			if cover == pos {
				return true
			}
		}
	}
	return false
}

// Status is the draft lifecycle state.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// DraftPick records one executed selection.
type DraftPick struct {
	Overall  int    `json:"overall"`
	Round    int    `json:"round"`
	Team     int    `json:"team"`
	PlayerID string `json:"playerId"`
	Player   string `json:"player"`
	Slot     string `json:"slot"`
	Auto     bool   `json:"auto,omitempty"`
}

// DraftState is the wire view of a session. Rosters map team number to
// slot name to player names in pick order.
type DraftState struct {
	Status      Status                      `json:"status"`
	NumTeams    int                         `json:"numTeams"`
	NumRounds   int                         `json:"numRounds"`
	ManagerTeam int                         `json:"managerTeam,omitempty"`
	Cursor      int                         `json:"cursor"`
	Overall     int                         `json:"overall,omitempty"`
	Round       int                         `json:"round,omitempty"`
	OnClock     int                         `json:"onClock,omitempty"`
	PoolSize    int                         `json:"poolSize"`
	Picks       []DraftPick                 `json:"picks"`
	Rosters     map[int]map[string][]string `json:"rosters"`
	Replacement map[Position]float64        `json:"replacement,omitempty"`
}

// Recommendation scores one unmet roster slot for the manager.
type Recommendation struct {
	Slot  string  `json:"slot"`
	Score float64 `json:"score"`
}

// Snapshot is the persisted form of an in-progress session. Pool and
// roster entries are player IDs; names are resolved against the player
// table on restore.
type Snapshot struct {
	NumTeams    int                         `json:"numTeams"`
	NumRounds   int                         `json:"numRounds"`
	ManagerTeam int                         `json:"managerTeam"`
	Cursor      int                         `json:"cursor"`
	Picks       []DraftPick                 `json:"picks"`
	Pool        []string                    `json:"pool"`
	Rosters     map[int]map[string][]string `json:"rosters"`
	SavedAt     time.Time                   `json:"savedAt"`
}
