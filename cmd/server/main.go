package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"luxeleads/internal/config"
	"luxeleads/internal/db"
	"luxeleads/internal/email"
	"luxeleads/internal/handlers/api"
	"luxeleads/internal/jobs"
	"luxeleads/internal/leads"
	"luxeleads/internal/metrics"
	"luxeleads/internal/queue"
	"luxeleads/internal/server"
	"luxeleads/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	catalog, err := config.LoadCatalog(cfg.CatalogFile)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	// Record store
	var (
		client store.Client
		pinger api.Pinger
		stats  metrics.StatsSource
	)
	switch cfg.StoreDriver {
	case "memory":
		log.Println("Using in-memory record store; data is lost on restart")
		client = store.NewMemory()
	default:
		database, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close()

		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("Migrations completed successfully")

		feed := jobs.NewChangeFeed(database, db.ChangeChannel, cfg.ListenerRetryInterval, logger)
		g.Go(func() error {
			feed.Start(gctx)
			return nil
		})

		client = store.Join(database, feed)
		pinger = database
		stats = database
	}

	// Lead events
	notifier := email.NewNotifier(cfg, email.LogWhatsApp{})
	var publisher queue.Publisher
	if cfg.AMQPURL != "" {
		mq, err := queue.Dial(cfg.AMQPURL)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer mq.Close()

		consumeCh, err := mq.Conn.Channel()
		if err != nil {
			log.Fatalf("Failed to open consumer channel: %v", err)
		}
		worker := queue.NewWorker(consumeCh, notifier, logger)
		g.Go(func() error {
			if err := worker.Start(gctx); err != nil {
				logger.Error("lead event worker exited", "error", err)
			}
			return nil
		})
		publisher = mq
		log.Println("Lead events published to RabbitMQ")
	} else {
		inline := queue.NewInline(notifier, logger)
		defer inline.Wait()
		publisher = inline
	}

	leadService := leads.NewService(client, catalog, publisher, logger)
	if err := leadService.SeedScoreTiers(ctx); err != nil {
		log.Fatalf("Failed to seed score tiers: %v", err)
	}
	if cfg.SeedDevData {
		if err := leadService.SeedDevLeads(ctx); err != nil {
			log.Printf("Warning: failed to seed sample leads: %v", err)
		}
	}

	if stats == nil {
		stats = leadService
	}
	metrics.Init(stats)

	srv := server.New(cfg)
	srv.RegisterRoutes(gctx, server.Deps{
		Leads:    leadService,
		Store:    client,
		Health:   pinger,
		Observer: metrics.SyncObserver{},
		Logger:   logger,
	})

	// Graceful shutdown
	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
			stop()
		}
	}()

	<-gctx.Done()

	log.Println("Shutting down server...")
	if err := srv.Shutdown(10 * time.Second); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	if err := g.Wait(); err != nil {
		log.Printf("Background worker error: %v", err)
	}
	log.Println("Server exited")
}

func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsDev() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}
