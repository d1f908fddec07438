// Package loader reads the cleaned projections CSV into the player table
// the draft engine works from.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/draftlab/fastbreak/internal/logger"
	"github.com/draftlab/fastbreak/internal/models"
)

// ProjectionColumn carries a precomputed fantasy total. When the CSV has
// it, its value wins; otherwise the projection is the scoring-weighted
// sum of the player's stat columns.
const ProjectionColumn = "Projected Fantasy Points"

// Load reads players from the CSV at path. The file needs a header row
// with at least a Player and a Position column; stat columns are matched
// against the scoring table's keys. Players without a positive projection
// are dropped, and the survivors get stable ordinal IDs in file order.
func Load(path string, scoring map[string]float64) ([]models.Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open players file: %w", err)
	}
	defer f.Close()

	players, err := Read(f, scoring)
	if err != nil {
		return nil, fmt.Errorf("read players file %s: %w", path, err)
	}
	return players, nil
}

// Read parses CSV player data from r. See Load for the format.
func Read(r io.Reader, scoring map[string]float64) ([]models.Player, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	if _, ok := cols["Player"]; !ok {
		return nil, fmt.Errorf("missing required column %q", "Player")
	}
	if _, ok := cols["Position"]; !ok {
		return nil, fmt.Errorf("missing required column %q", "Position")
	}

	players := make([]models.Player, 0, 256)
	dropped := 0
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		name := strings.TrimSpace(field(record, cols, "Player"))
		if name == "" {
			continue
		}

		positions, err := models.ParsePositions(field(record, cols, "Position"))
		if err != nil {
			// Still draftable through universal and bench slots.
			logger.Warn("unrecognized position, keeping player without eligibility",
				"player", name, "error", err)
			positions = nil
		}

		stats := make(map[string]float64, len(scoring))
		for stat := range scoring {
			if v, ok := numericField(record, cols, stat); ok {
				stats[stat] = v
			}
		}

		projection, ok := numericField(record, cols, ProjectionColumn)
		if !ok {
			projection = 0
			for stat, weight := range scoring {
				if v, present := stats[stat]; present {
					projection += v * weight
				}
			}
		}
		if projection <= 0 {
			dropped++
			continue
		}

		players = append(players, models.Player{
			ID:         fmt.Sprintf("p%03d", len(players)+1),
			Name:       name,
			Team:       strings.TrimSpace(field(record, cols, "Team")),
			Positions:  positions,
			Stats:      stats,
			Projection: projection,
		})
	}

	if len(players) == 0 {
		return nil, fmt.Errorf("no players with a positive projection")
	}
	logger.Info("player table loaded", "players", len(players), "dropped", dropped)
	return players, nil
}

func field(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return record[idx]
}

// numericField parses the named column, treating blanks and the feed's
// "--" placeholder as absent.
func numericField(record []string, cols map[string]int, name string) (float64, bool) {
	raw := strings.TrimSpace(field(record, cols, name))
	if raw == "" || raw == "--" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
