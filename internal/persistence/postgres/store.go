// Package postgres implements the persistence port (spec.md §4.6)
// against PostgreSQL via pgx/v5, grounded on the teacher's
// PostgresOrderStore: a pgxpool-backed store whose batch operations
// run inside pgx.Batch pipelines wrapped in a single transaction.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jaredmoss/exchange-core/internal/account"
	"github.com/jaredmoss/exchange-core/internal/exchange"
	"github.com/jaredmoss/exchange-core/internal/persistence"
	"github.com/jaredmoss/exchange-core/internal/types"
)

// Store implements persistence.Store against a PostgreSQL database.
type Store struct {
	pool *pgxpool.Pool
}

var _ persistence.Store = (*Store)(nil)

// New wraps an already-connected pool. Callers typically build the
// pool with NewPool and run RunMigrations before constructing Store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool.
func (s *Store) Close() { s.pool.Close() }

func (s *Store) LoadAllOpenBooks(ctx context.Context) (map[string][]*types.Order, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT o.order_id, o.symbol, o.action, o.quantity, o.filled, o.price,
		       o.user_id, o.status, o.time_placed, o.time_updated
		FROM orders o
		JOIN pending_orders p ON p.order_id = o.order_id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: load_all_open_books: %w", err)
	}
	defer rows.Close()

	books := make(map[string][]*types.Order)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: load_all_open_books scan: %w", err)
		}
		books[o.Symbol] = append(books[o.Symbol], o)
	}
	return books, rows.Err()
}

func (s *Store) LoadMarketStats(ctx context.Context) ([]persistence.MarketSeed, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT symbol, name, total_buys, total_sells, filled_buys, filled_sells, latest_price
		FROM markets
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: load_market_stats: %w", err)
	}
	defer rows.Close()

	var out []persistence.MarketSeed
	for rows.Next() {
		var m persistence.MarketSeed
		var lastPrice *float64
		if err := rows.Scan(&m.Symbol, &m.Name, &m.TotalBuys, &m.TotalSells, &m.FilledBuys, &m.FilledSells, &lastPrice); err != nil {
			return nil, fmt.Errorf("postgres: load_market_stats scan: %w", err)
		}
		m.LastPrice = lastPrice
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) LoadExchangeCounter(ctx context.Context) (uint64, error) {
	var total uint64
	err := s.pool.QueryRow(ctx, `SELECT total_orders FROM exchange_stats WHERE key = 1`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("postgres: load_exchange_counter: %w", err)
	}
	return total, nil
}

func (s *Store) AccountExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("postgres: account_exists: %w", err)
	}
	return exists, nil
}

func (s *Store) CountAccounts(ctx context.Context) (uint64, error) {
	var count uint64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("postgres: count_accounts: %w", err)
	}
	return count, nil
}

func (s *Store) AuthLookup(ctx context.Context, username string) (uint64, string, bool, error) {
	var userID uint64
	var hash string
	err := s.pool.QueryRow(ctx, `SELECT id, password_hash FROM accounts WHERE username = $1`, username).Scan(&userID, &hash)
	if err == pgx.ErrNoRows {
		return 0, "", false, nil
	}
	if err != nil {
		return 0, "", false, fmt.Errorf("postgres: auth_lookup: %w", err)
	}
	return userID, hash, true, nil
}

func (s *Store) LoadAccount(ctx context.Context, username string) (*account.Account, error) {
	var userID uint64
	var hash string
	err := s.pool.QueryRow(ctx, `SELECT id, password_hash FROM accounts WHERE username = $1`, username).Scan(&userID, &hash)
	if err != nil {
		return nil, fmt.Errorf("postgres: load_account: %w", err)
	}

	a := account.NewWithHash(userID, username, hash)
	pending, err := s.LoadOpenOrders(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, bySymbol := range pending {
		for _, o := range bySymbol {
			a.Insert(o)
		}
	}
	a.Modified = false
	a.MarkComplete()
	return a, nil
}

func (s *Store) LoadUsername(ctx context.Context, userID uint64) (string, error) {
	var username string
	err := s.pool.QueryRow(ctx, `SELECT username FROM accounts WHERE id = $1`, userID).Scan(&username)
	if err != nil {
		return "", fmt.Errorf("postgres: load_username: %w", err)
	}
	return username, nil
}

func (s *Store) LoadOpenOrders(ctx context.Context, userID uint64) (map[string]map[uint64]*types.Order, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT o.order_id, o.symbol, o.action, o.quantity, o.filled, o.price,
		       o.user_id, o.status, o.time_placed, o.time_updated
		FROM orders o
		JOIN pending_orders p ON p.order_id = o.order_id
		WHERE o.user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: load_open_orders: %w", err)
	}
	defer rows.Close()

	out := make(map[string]map[uint64]*types.Order)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: load_open_orders scan: %w", err)
		}
		bySymbol, ok := out[o.Symbol]
		if !ok {
			bySymbol = make(map[uint64]*types.Order)
			out[o.Symbol] = bySymbol
		}
		bySymbol[o.OrderID] = o
	}
	return out, rows.Err()
}

func (s *Store) LoadUserTrades(ctx context.Context, userID uint64) ([]types.Trade, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT symbol, action, price, filled_oid, filled_uid, filler_oid, filler_uid, exchanged, execution_time
		FROM executed_trades
		WHERE filled_uid = $1 OR filler_uid = $1
		ORDER BY execution_time
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: load_user_trades: %w", err)
	}
	defer rows.Close()

	var out []types.Trade
	for rows.Next() {
		var t types.Trade
		var side string
		if err := rows.Scan(&t.Symbol, &side, &t.Price, &t.FilledOrderID, &t.FilledUserID,
			&t.FillerOrderID, &t.FillerUserID, &t.Exchanged, &t.ExecutionTime); err != nil {
			return nil, fmt.Errorf("postgres: load_user_trades scan: %w", err)
		}
		t.Side = types.Side(side)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) InsertAccount(ctx context.Context, a *account.Account) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO accounts (id, username, password_hash) VALUES ($1, $2, $3)`,
		a.UserID, a.Username, a.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert_account: %w", err)
	}
	return nil
}

// BatchInsertOrders runs one INSERT per diff through a pipelined
// pgx.Batch inside a single transaction (spec.md §4.6).
func (s *Store) BatchInsertOrders(ctx context.Context, diffs []persistence.OrderDiff) error {
	return s.withBatchTx(ctx, func(batch *pgx.Batch) {
		for _, d := range diffs {
			batch.Queue(`
				INSERT INTO orders (order_id, symbol, action, quantity, filled, price, user_id, status, time_placed, time_updated)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
				ON CONFLICT (order_id) DO NOTHING
			`, d.OrderID, d.Symbol, string(d.Side), d.Quantity, d.Filled, d.Price, d.UserID, string(d.Status), d.TimePlaced, d.TimeUpdated)
		}
	}, len(diffs))
}

// BatchUpdateOrders applies only the fields each update-shape diff
// actually carries, per spec.md §3's update semantics.
func (s *Store) BatchUpdateOrders(ctx context.Context, diffs []persistence.OrderDiff) error {
	return s.withBatchTx(ctx, func(batch *pgx.Batch) {
		for _, d := range diffs {
			switch {
			case d.HasStatus() && d.HasFilled():
				batch.Queue(`UPDATE orders SET status = $2, filled = $3, time_updated = $4 WHERE order_id = $1`,
					d.OrderID, string(d.Status), d.Filled, d.TimeUpdated)
			case d.HasStatus():
				batch.Queue(`UPDATE orders SET status = $2, time_updated = $3 WHERE order_id = $1`,
					d.OrderID, string(d.Status), d.TimeUpdated)
			case d.HasFilled():
				batch.Queue(`UPDATE orders SET filled = $2, time_updated = $3 WHERE order_id = $1`,
					d.OrderID, d.Filled, d.TimeUpdated)
			default:
				batch.Queue(`UPDATE orders SET time_updated = $2 WHERE order_id = $1`, d.OrderID, d.TimeUpdated)
			}
		}
	}, len(diffs))
}

func (s *Store) BatchInsertPending(ctx context.Context, orderIDs []uint64) error {
	return s.withBatchTx(ctx, func(batch *pgx.Batch) {
		for _, id := range orderIDs {
			batch.Queue(`INSERT INTO pending_orders (order_id) VALUES ($1) ON CONFLICT DO NOTHING`, id)
		}
	}, len(orderIDs))
}

func (s *Store) BatchDeletePending(ctx context.Context, orderIDs []uint64) error {
	return s.withBatchTx(ctx, func(batch *pgx.Batch) {
		for _, id := range orderIDs {
			batch.Queue(`DELETE FROM pending_orders WHERE order_id = $1`, id)
		}
	}, len(orderIDs))
}

func (s *Store) UpsertExchangeCounter(ctx context.Context, totalOrders uint64) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO exchange_stats (key, total_orders) VALUES (1, $1)
		 ON CONFLICT (key) DO UPDATE SET total_orders = EXCLUDED.total_orders`,
		totalOrders,
	)
	if err != nil {
		return fmt.Errorf("postgres: upsert_exchange_counter: %w", err)
	}
	return nil
}

func (s *Store) BatchUpdateMarkets(ctx context.Context, stats []exchange.MarketStats) error {
	return s.withBatchTx(ctx, func(batch *pgx.Batch) {
		for _, m := range stats {
			batch.Queue(`
				INSERT INTO markets (symbol, name, total_buys, total_sells, filled_buys, filled_sells, latest_price)
				VALUES ($1, $1, $2, $3, $4, $5, $6)
				ON CONFLICT (symbol) DO UPDATE SET
					total_buys = EXCLUDED.total_buys,
					total_sells = EXCLUDED.total_sells,
					filled_buys = EXCLUDED.filled_buys,
					filled_sells = EXCLUDED.filled_sells,
					latest_price = EXCLUDED.latest_price
			`, m.Symbol, m.TotalBuys, m.TotalSells, m.FilledBuys, m.FilledSells, m.LastPrice)
		}
	}, len(stats))
}

func (s *Store) BatchInsertTrades(ctx context.Context, trades []types.Trade) error {
	return s.withBatchTx(ctx, func(batch *pgx.Batch) {
		for _, t := range trades {
			batch.Queue(`
				INSERT INTO executed_trades (symbol, action, price, filled_oid, filled_uid, filler_oid, filler_uid, exchanged, execution_time)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			`, t.Symbol, string(t.Side), t.Price, t.FilledOrderID, t.FilledUserID, t.FillerOrderID, t.FillerUserID, t.Exchanged, t.ExecutionTime)
		}
	}, len(trades))
}

// withBatchTx runs queue against a pgx.Batch, sends it through a
// single transaction, and commits. Every exported Batch* method
// above fulfils spec.md §4.6's "each batch operation is expected to
// run in a single transaction".
func (s *Store) withBatchTx(ctx context.Context, queue func(*pgx.Batch), n int) error {
	if n == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	queue(batch)

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < n; i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("postgres: batch exec %d/%d: %w", i+1, n, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("postgres: close batch results: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit tx: %w", err)
	}
	return nil
}

func scanOrder(rows pgx.Rows) (*types.Order, error) {
	var o types.Order
	var side, status string
	var timeUpdated sql.NullTime
	if err := rows.Scan(&o.OrderID, &o.Symbol, &side, &o.Quantity, &o.Filled, &o.Price,
		&o.UserID, &status, &o.TimePlaced, &timeUpdated); err != nil {
		return nil, err
	}
	o.Side = types.Side(side)
	o.Status = types.Status(status)
	if timeUpdated.Valid {
		o.TimeUpdated = timeUpdated.Time
	}
	return &o, nil
}
