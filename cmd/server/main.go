package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"factorhub/internal/events"
	"factorhub/internal/funds"
	"factorhub/internal/ledger"
	"factorhub/internal/market"
	"factorhub/internal/platform/config"
	"factorhub/internal/platform/httpserver"
	"factorhub/internal/platform/logger"
	"factorhub/internal/platform/metrics"
	platformredis "factorhub/internal/platform/redis"
	"factorhub/internal/pricing"
	"factorhub/internal/reconcile"
	"factorhub/internal/registry"
	"factorhub/internal/settlement"
	httptransport "factorhub/internal/transport/http"
	"factorhub/pkg/platform/middleware/auth"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slogger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	publisher := events.NewPublisher(cfg.EventBuffer, log, m.EventDropped)

	// Stores: Postgres when configured, in-memory otherwise.
	var (
		assetStore  ledger.Store
		eventStore  events.Store
		fundsLedger funds.Ledger
	)
	if cfg.PostgresURL != "" {
		db, err := sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			log.Fatalf("open postgres: %v", err)
		}
		defer db.Close()

		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			log.Fatalf("open pgx pool: %v", err)
		}
		defer pool.Close()

		pgAssets := ledger.NewPostgresStore(db)
		pgEvents := events.NewPostgresStore(db)
		pgFunds := funds.NewPostgresLedger(pool)
		for _, ensure := range []func(context.Context) error{
			pgAssets.EnsureSchema, pgEvents.EnsureSchema, pgFunds.EnsureSchema,
		} {
			if err := ensure(ctx); err != nil {
				log.Fatalf("schema: %v", err)
			}
		}
		assetStore, eventStore, fundsLedger = pgAssets, pgEvents, pgFunds
		log.Printf("using postgres-backed stores")
	} else {
		assetStore = ledger.NewInMemoryStore()
		eventStore = events.NewInMemoryStore()
		fundsLedger = funds.NewInMemoryLedger()
		log.Printf("using in-memory stores; set POSTGRES_URL for durability")
	}

	// Registry store, optionally fronted by Redis.
	var registryStore registry.Store = registry.NewInMemoryStore()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		registryStore = registry.NewCachedStore(registryStore, redisClient.Client)
		log.Printf("registry cache enabled")
	}

	// Optional Kafka sink for the event log.
	var sink events.Sink
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := events.NewKafkaSink(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
		defer kafkaSink.Close()
		sink = kafkaSink
		log.Printf("publishing events to kafka topic %s", cfg.Kafka.Topic)
	}

	watcher := reconcile.NewWatcher(log)
	worker := events.NewWorker(eventStore, publisher.Inbox(), sink, log, watcher)

	assetLedger := ledger.NewService(assetStore, publisher, ledger.WithMintRecorded(m.MintRecorded))
	marketSvc := market.NewService(assetLedger, fundsLedger, publisher, m)
	settlementSvc := settlement.NewService(assetLedger, fundsLedger, publisher, m)
	advisor := pricing.NewAdvisor(assetLedger, nil)
	registrySvc := registry.NewService(registryStore, nil)

	router := httptransport.NewRouter(httptransport.Handlers{
		Assets:   httptransport.NewAssetHandler(assetLedger, marketSvc, settlementSvc, advisor),
		Registry: httptransport.NewRegistryHandler(registrySvc, m.RegistrationRecorded),
		Accounts: httptransport.NewAccountHandler(fundsLedger),
		Events:   httptransport.NewEventHandler(eventStore),
	}, auth.NewHMACValidator(cfg.JWTSigningKey), slogger)

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("starting factorhub on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := worker.Run(gctx); err != nil && err != context.Canceled {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
