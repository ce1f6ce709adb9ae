package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/brewline/coffee-pos/internal/config"
	"github.com/brewline/coffee-pos/internal/database"
	"github.com/brewline/coffee-pos/internal/events"
	"github.com/brewline/coffee-pos/internal/router"
	"github.com/brewline/coffee-pos/internal/ws"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MigrationsPath != "" {
		if err := database.Migrate(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			return err
		}
		log.Println("Migrations applied")
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	log.Println("Connected to database")

	hub := ws.NewHub()
	publishers := []events.Publisher{events.NewHubPublisher(hub)}

	var amqpPub *events.AMQPPublisher
	if cfg.AMQPURL != "" {
		amqpPub, err = events.NewAMQPPublisher(ctx, cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return err
		}
		defer amqpPub.Close() //nolint:errcheck
		publishers = append(publishers, amqpPub)
		log.Printf("Publishing events to exchange %q", cfg.AMQPExchange)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.New(cfg, pool, hub, events.NewNotifier(publishers...)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return hub.Run(gctx)
	})

	if amqpPub != nil {
		g.Go(func() error {
			return amqpPub.Run(gctx)
		})
	}

	g.Go(func() error {
		log.Printf("Starting server on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
