package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Client reads the nightly box-score warehouse and rolls the raw lines up
// into per-game fantasy-point projections for the draft engine.
type Client struct {
	conn driver.Conn
}

// NewClient connects to the ClickHouse warehouse
func NewClient(addr, database, username, password string) (*Client, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
	})

	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &Client{conn: conn}, nil
}

// FetchProjections returns a fresh projection for every player with recent
// box scores, keyed by player name. Each projection is the player's average
// fantasy output per game over the last 30 days, scored with the standard
// league weights.
func (c *Client) FetchProjections(ctx context.Context) (map[string]float64, error) {
	projections := make(map[string]float64)

	query := `
		SELECT
			player_name,
			avg(
				fgm * 2 - fga         -- field goals: made +2, attempted -1
				+ ftm - fta           -- free throws: made +1, attempted -1
				+ tpm                 -- threes made +1
				+ reb + ast * 2       -- rebounds +1, assists +2
				+ stl * 4 + blk * 4   -- steals and blocks +4
				- tov * 2             -- turnovers -2
				+ pts                 -- points +1
			) AS projection
		FROM box_scores
		WHERE game_date >= now() - INTERVAL 30 DAY
		GROUP BY player_name
		HAVING projection > 0
	`

	rows, err := c.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query projections: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var projection float64
		if err := rows.Scan(&name, &projection); err != nil {
			return nil, err
		}
		projections[name] = projection
	}

	return projections, rows.Err()
}

// Ping verifies the warehouse connection is still alive
func (c *Client) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

// Close closes the ClickHouse connection
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
