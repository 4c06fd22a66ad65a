package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jaredmoss/exchange-core/config"
	"github.com/jaredmoss/exchange-core/internal/api/handlers"
	"github.com/jaredmoss/exchange-core/internal/api/logger"
	"github.com/jaredmoss/exchange-core/internal/api/routes"
	"github.com/jaredmoss/exchange-core/internal/dispatch"
	"github.com/jaredmoss/exchange-core/internal/exchange"
	"github.com/jaredmoss/exchange-core/internal/persistence"
	"github.com/jaredmoss/exchange-core/internal/persistence/postgres"
	"github.com/jaredmoss/exchange-core/internal/persistence/rediscache"
	"github.com/jaredmoss/exchange-core/internal/usercache"
)

var logLevels = map[string]logger.LogLevel{
	"DEBUG": logger.DEBUG,
	"INFO":  logger.INFO,
	"WARN":  logger.WARN,
	"ERROR": logger.ERROR,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	if level, ok := logLevels[cfg.Logger.Level]; ok {
		logger.SetMinLevel(level)
	}

	logger.Info("Starting exchange server", map[string]interface{}{"version": "1.0.0"})

	ctx := context.Background()

	store, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to build persistence store", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	defer closeStore()

	ex, err := hydrateExchange(ctx, store)
	if err != nil {
		logger.Error("Failed to hydrate exchange", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	persistence.FullWatermark = cfg.Buffers.DrainWatermark
	bc := persistence.NewBufferCollection(cfg.Buffers.OrderCapacity, cfg.Buffers.TradeCapacity, store, ex)
	cache := usercache.New(cfg.Cache.UserCapacity)
	d := dispatch.New(cache, ex, bc, store)

	dh := handlers.NewDispatchHolder(d)
	handler := routes.SetupRoutes(dh)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("Server starting", map[string]interface{}{
			"port":    cfg.Server.Port,
			"address": fmt.Sprintf("http://localhost:%s", cfg.Server.Port),
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server shutting down...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	if err := bc.ForceFlush(shutdownCtx); err != nil {
		logger.Error("Final flush failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	logger.Info("Server exited successfully", nil)
}

// buildStore constructs the persistence port: a Postgres-backed Store,
// optionally wrapped in the Redis read-through cache. The returned
// close func releases both the pool and the Redis client.
func buildStore(ctx context.Context, cfg *config.Config) (persistence.Store, func(), error) {
	if !cfg.Database.Enabled {
		return nil, nil, fmt.Errorf("DATABASE_ENABLED must be true: the exchange has no in-memory-only persistence mode")
	}

	pool, err := postgres.NewPool(ctx, postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		Database:        cfg.Database.Name,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		MaxConns:        cfg.Database.MaxConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		SSLMode:         cfg.Database.SSLMode,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("postgres pool: %w", err)
	}

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}

	base := postgres.New(pool)

	if !cfg.Redis.Enabled {
		return base, func() { pool.Close() }, nil
	}

	client, err := rediscache.NewClient(rediscache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxRetries:   cfg.Redis.MaxRetries,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		TLSEnabled:   cfg.Redis.TLSEnabled,
		OrderTTL:     cfg.Redis.OrderTTL,
	})
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("redis client: %w", err)
	}

	wrapped := rediscache.Wrap(base, client, cfg.Redis.OrderTTL)
	closeAll := func() {
		_ = client.Close()
		pool.Close()
	}
	return wrapped, closeAll, nil
}

// hydrateExchange rebuilds the in-memory registry from durable state:
// the order-id counter, every resting order across every symbol's
// open book, and each symbol's durable counters. Stats are seeded
// before books, per Exchange.SeedStats's ordering requirement.
func hydrateExchange(ctx context.Context, store persistence.Store) (*exchange.Exchange, error) {
	counter, err := store.LoadExchangeCounter(ctx)
	if err != nil {
		return nil, fmt.Errorf("load_exchange_counter: %w", err)
	}
	ex := exchange.New(counter)

	stats, err := store.LoadMarketStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("load_market_stats: %w", err)
	}
	for _, s := range stats {
		ex.SeedStats(s.Symbol, s.TotalBuys, s.TotalSells, s.FilledBuys, s.FilledSells, s.LastPrice)
	}

	books, err := store.LoadAllOpenBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load_all_open_books: %w", err)
	}
	var seeded int
	for symbol, orders := range books {
		for _, o := range orders {
			ex.SeedBook(symbol, o)
			seeded++
		}
	}

	logger.Info("Exchange hydrated from persistence", map[string]interface{}{
		"order_counter": counter, "markets": len(stats), "open_orders": seeded,
	})

	return ex, nil
}
