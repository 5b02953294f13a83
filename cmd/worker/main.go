package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/MatviieshynO/auth-service/internal/config"
	"github.com/MatviieshynO/auth-service/internal/db"
	"github.com/MatviieshynO/auth-service/internal/notifications"
	"github.com/MatviieshynO/auth-service/internal/observability"
	"github.com/MatviieshynO/auth-service/internal/queue/worker"
	"github.com/MatviieshynO/auth-service/internal/repo/postgres"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)

	defer stop()

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	prom := observability.NewProm(prometheus.DefaultRegisterer)
	jobsRepo := postgres.NewJobsRepo(pool, prom)

	var transport notifications.Notifier

	if cfg.SMTPUser != "" {
		transport = notifications.NewSMTPNotifier(notifications.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	} else {
		log.Warn("no smtp credentials, using log notifier")
		transport = notifications.NewLogNotifier()
	}

	notifier := notifications.NewProtectedNotifier(transport, notifications.ProtectedNotifierConfig{
		Timeout:          10 * time.Second,
		FailureThreshold: 3,
		Cooldown:         30 * time.Second,
	})

	host, _ := os.Hostname()
	workerID := host + "-" + strconv.Itoa(os.Getpid())

	w := worker.New(worker.Config{
		PollInterval: 250 * time.Millisecond,
		WorkerID:     workerID,
	}, jobsRepo, notifier, prom, log)

	// health endpoints on a side listener
	healthSrv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port+1),
		Handler:           w.HealthHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		err := healthSrv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("worker health server failed", "err", err)
		}
	}()

	log.Info("worker started", "worker_id", workerID)

	if err := w.Run(ctx); err != nil {
		log.Error("worker stopped with error", "err", err)
	}

	shutdownCtx, cancel := config.WithTimeout(5 * time.Second)
	_ = healthSrv.Shutdown(shutdownCtx)
	cancel()

	log.Info("worker shutdown complete")
}
