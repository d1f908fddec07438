package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/draftlab/fastbreak/internal/draft"
	"github.com/draftlab/fastbreak/internal/models"
)

// Config is the full service configuration. Values are resolved in three
// layers: built-in defaults, an optional YAML file, then environment
// variables.
type Config struct {
	Environment string `yaml:"environment"`

	HTTP struct {
		Port string `yaml:"port"`
	} `yaml:"http"`

	Database struct {
		Driver     string `yaml:"driver"`
		SQLiteFile string `yaml:"sqliteFile"`
		URL        string `yaml:"url"`
	} `yaml:"database"`

	NATS struct {
		URL     string `yaml:"url"`
		Subject string `yaml:"subject"`
	} `yaml:"nats"`

	ClickHouse struct {
		Addr     string `yaml:"addr"`
		Database string `yaml:"database"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"clickhouse"`

	Auth struct {
		BaseURL      string `yaml:"baseUrl"`
		ClientID     string `yaml:"clientId"`
		ClientSecret string `yaml:"clientSecret"`
		RedirectURL  string `yaml:"redirectUrl"`
	} `yaml:"auth"`

	Players struct {
		CSV string `yaml:"csv"`
	} `yaml:"players"`

	League League `yaml:"league"`
}

// League shapes the draft: team count, rounds, the roster slot schedule,
// the scoring weights behind raw projections and the Combined Score blend.
type League struct {
	Teams   int                `yaml:"teams"`
	Rounds  int                `yaml:"rounds"`
	Scoring map[string]float64 `yaml:"scoring"`
	Blend   struct {
		AdjVorp    float64 `yaml:"adjVorp"`
		Projection float64 `yaml:"projection"`
	} `yaml:"blend"`
	Slots []SlotConfig `yaml:"slots"`
}

// SlotConfig is the YAML form of one roster slot.
type SlotConfig struct {
	Name   string   `yaml:"name"`
	Covers []string `yaml:"covers"`
	Seats  int      `yaml:"seats"`
	Bench  bool     `yaml:"bench"`
}

// DefaultScoring returns the per-category weights used to project fantasy
// points from raw stats.
func DefaultScoring() map[string]float64 {
	return map[string]float64{
		"FGM": 2,
		"FGA": -1,
		"FTM": 1,
		"FTA": -1,
		"3PM": 1,
		"REB": 1,
		"AST": 2,
		"STL": 4,
		"BLK": 4,
		"TO":  -2,
		"PTS": 1,
	}
}

// Load builds the configuration. When path is empty the CONFIG_FILE
// environment variable is consulted; a missing file is not an error, a
// malformed one is.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Environment = "development"
	cfg.HTTP.Port = "3000"
	cfg.Database.Driver = "memory"
	cfg.Database.SQLiteFile = "./fastbreak.db"
	cfg.NATS.URL = "nats://localhost:4222"
	cfg.NATS.Subject = "draft.events"
	cfg.ClickHouse.Database = "default"
	cfg.ClickHouse.Username = "default"
	cfg.Players.CSV = "./cleaned_players_data.csv"
	cfg.League.Scoring = DefaultScoring()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if _, err := cfg.League.Schedule(); err != nil {
		return nil, fmt.Errorf("league config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setFromEnv(&cfg.Environment, "ENVIRONMENT")
	setFromEnv(&cfg.HTTP.Port, "PORT")
	setFromEnv(&cfg.Database.Driver, "DB_DRIVER")
	setFromEnv(&cfg.Database.SQLiteFile, "SQLITE_FILE")
	setFromEnv(&cfg.Database.URL, "DATABASE_URL")
	setFromEnv(&cfg.NATS.URL, "NATS_URL")
	setFromEnv(&cfg.NATS.Subject, "NATS_SUBJECT")
	setFromEnv(&cfg.ClickHouse.Addr, "CLICKHOUSE_ADDR")
	setFromEnv(&cfg.ClickHouse.Database, "CLICKHOUSE_DB")
	setFromEnv(&cfg.ClickHouse.Username, "CLICKHOUSE_USER")
	setFromEnv(&cfg.ClickHouse.Password, "CLICKHOUSE_PASSWORD")
	setFromEnv(&cfg.Auth.BaseURL, "AUTHENTIK_BASE_URL")
	setFromEnv(&cfg.Auth.ClientID, "AUTHENTIK_CLIENT_ID")
	setFromEnv(&cfg.Auth.ClientSecret, "AUTHENTIK_CLIENT_SECRET")
	setFromEnv(&cfg.Auth.RedirectURL, "AUTHENTIK_REDIRECT_URL")
	setFromEnv(&cfg.Players.CSV, "PLAYERS_CSV")
}

func setFromEnv(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

// Schedule converts the configured slots into the roster slot schedule,
// falling back to the standard nine-slot layout when none are configured.
func (l League) Schedule() ([]models.Slot, error) {
	if len(l.Slots) == 0 {
		return draft.DefaultSlots(), nil
	}

	slots := make([]models.Slot, 0, len(l.Slots))
	seen := make(map[string]bool, len(l.Slots))
	for _, sc := range l.Slots {
		if sc.Name == "" {
			return nil, fmt.Errorf("slot with empty name")
		}
		if seen[sc.Name] {
			return nil, fmt.Errorf("duplicate slot %q", sc.Name)
		}
		seen[sc.Name] = true
		if sc.Seats < 1 {
			return nil, fmt.Errorf("slot %q needs at least one seat", sc.Name)
		}

		covers := make([]models.Position, 0, len(sc.Covers))
		for _, code := range sc.Covers {
			parsed, err := models.ParsePositions(code)
			if err != nil || len(parsed) != 1 {
				return nil, fmt.Errorf("slot %q: invalid position code %q", sc.Name, code)
			}
			covers = append(covers, parsed[0])
		}
		slots = append(slots, models.Slot{
			Name:   sc.Name,
			Covers: covers,
			Seats:  sc.Seats,
			Bench:  sc.Bench,
		})
	}
	return slots, nil
}

// DraftConfig assembles the engine configuration for this league.
func (l League) DraftConfig() (draft.Config, error) {
	slots, err := l.Schedule()
	if err != nil {
		return draft.Config{}, err
	}

	cfg := draft.Config{
		NumTeams:  l.Teams,
		NumRounds: l.Rounds,
		Slots:     slots,
	}
	if l.Blend.AdjVorp != 0 || l.Blend.Projection != 0 {
		cfg.Blend = draft.Blend{AdjVORP: l.Blend.AdjVorp, Projection: l.Blend.Projection}
	}
	return cfg, nil
}
