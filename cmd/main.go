package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ViBaTo/panel-control-tm/analysis"
	"github.com/ViBaTo/panel-control-tm/config"
	"github.com/ViBaTo/panel-control-tm/database"
	"github.com/ViBaTo/panel-control-tm/logger"
	"github.com/ViBaTo/panel-control-tm/monitoring"
	"github.com/ViBaTo/panel-control-tm/realtime"
	"github.com/ViBaTo/panel-control-tm/repositories"
	"github.com/ViBaTo/panel-control-tm/routes"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "panel",
		Short: "Clinic dashboard API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(analyzeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <table>",
		Short: "Sample a table and print its inferred schema as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logger.New(cfg.Env, cfg.LogLevel)

			db, err := openDB(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}

			report, err := analysis.AnalyzeTable(cmd.Context(), repositories.NewTableRepository(db), args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
}

func openDB(ctx context.Context, cfg *config.AppConfig, log *logger.Logger) (*gorm.DB, error) {
	db, err := database.InitDB(ctx, database.Options{
		DSN:         cfg.DBURL,
		Env:         cfg.Env,
		PingTimeout: 30 * time.Second,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, nil
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log := logger.New(cfg.Env, cfg.LogLevel)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	db, err := openDB(ctx, cfg, log)
	if err != nil {
		return err
	}

	redisClient, err := database.NewRedisClient(ctx, database.RedisConfig{
		URL:          cfg.RedisAddress,
		PoolSize:     cfg.RedisPoolSize,
		DialTimeout:  cfg.RedisDialTimeout,
		MinIdleConns: cfg.RedisMinIdleConns,
		ReadTimeout:  cfg.RedisReadTimeout,
		MaxRetries:   cfg.RedisMaxRetries,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis client: %w", err)
	}
	defer redisClient.Close()
	database.MonitorRedisPool(redisClient, log)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := monitoring.NewDashboardMetrics(registry)

	hub := realtime.NewHub(redisClient, log)

	var wg sync.WaitGroup

	if cfg.RealtimeTriggers {
		if err := database.InstallChangeTriggers(ctx, db, "patients", "appointment_calls"); err != nil {
			return fmt.Errorf("failed to install change triggers: %w", err)
		}
		listener := realtime.NewPGListener(cfg.DBURL, database.ChangeChannel, hub, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := listener.Run(ctx); err != nil {
				log.WithError(err).Error("row change listener stopped")
			}
		}()
	}

	handler, err := routes.SetupRoutes(routes.Deps{
		Config:   cfg,
		DB:       db,
		Redis:    redisClient,
		Hub:      hub,
		Log:      log,
		Metrics:  metrics,
		Gatherer: registry,
	})
	if err != nil {
		return fmt.Errorf("failed to set up routes: %w", err)
	}

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        handler,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
		IdleTimeout:    60 * time.Second,
	}

	serveErr := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Infof("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		stop()
		wg.Wait()
		return fmt.Errorf("listen and serve: %w", err)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	log.Info("Shutting down server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	stop()

	wg.Wait()
	log.Info("Server exited gracefully")
	return nil
}
