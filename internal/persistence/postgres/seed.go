package postgres

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jaredmoss/exchange-core/internal/api/logger"
)

// SeedMarkets implements the "upgrade" collaborator from
// original_source/src/database.rs::upgrade_db (spec.md §6 market
// seeding format): CSV-like lines "action,symbol,name". The only
// documented action is "add", which inserts a new market row with
// zeroed counters and a NULL price. This is a one-shot
// startup/migration helper, not part of the request-serving path.
func (s *Store) SeedMarkets(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.SplitN(line, ",", 3)
		if len(fields) != 3 {
			return fmt.Errorf("postgres: seed_markets: line %d malformed: %q", lineNo, line)
		}
		action, symbol, name := fields[0], fields[1], fields[2]
		if action != "add" {
			return fmt.Errorf("postgres: seed_markets: line %d unknown action %q", lineNo, action)
		}

		// Single-quotes inside names are escaped by doubling per §6;
		// parameterized queries make the doubling unnecessary for SQL
		// safety, but we still normalize it so re-exported seed files
		// round-trip.
		name = strings.ReplaceAll(name, "''", "'")

		_, err := s.pool.Exec(ctx, `
			INSERT INTO markets (symbol, name, total_buys, total_sells, filled_buys, filled_sells, latest_price)
			VALUES ($1, $2, 0, 0, 0, 0, NULL)
			ON CONFLICT (symbol) DO NOTHING
		`, symbol, name)
		if err != nil {
			return fmt.Errorf("postgres: seed_markets: insert %q: %w", symbol, err)
		}
		logger.Info("postgres.SeedMarkets inserted market", map[string]interface{}{"symbol": symbol})
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("postgres: seed_markets: scan: %w", err)
	}
	return nil
}
