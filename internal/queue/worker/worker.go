package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MatviieshynO/auth-service/internal/domain/job"
	"github.com/MatviieshynO/auth-service/internal/jobs"
	"github.com/MatviieshynO/auth-service/internal/notifications"
	"github.com/MatviieshynO/auth-service/internal/observability"
)

type JobsRepository interface {
	ClaimNext(ctx context.Context, workerID string) (job.Job, error)
	MarkDone(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
	Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error
}

type Config struct {
	PollInterval time.Duration
	WorkerID     string
}

// Worker drains the confirmation-email queue: claim, send, settle.
type Worker struct {
	cfg      Config
	repo     JobsRepository
	notifier notifications.Notifier
	prom     *observability.Prom
	log      *slog.Logger

	readyMu sync.RWMutex
	ready   bool
}

func New(cfg Config, repo JobsRepository, notifier notifications.Notifier, prom *observability.Prom, log *slog.Logger) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 100 * time.Millisecond
	}

	return &Worker{
		cfg:      cfg,
		repo:     repo,
		notifier: notifier,
		prom:     prom,
		log:      log,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	w.setReady(true)
	defer w.setReady(false)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker received shutdown signal")
			return nil

		case <-ticker.C:
			// drain everything currently runnable before sleeping again
			for {
				processed, err := w.ProcessOne(ctx)

				if err != nil {
					w.log.Error("process job", "err", err)
					break
				}

				if !processed {
					break
				}
			}
		}
	}
}

// ProcessOne claims and executes a single job. It reports whether a job was
// claimed at all, so the caller can tell an empty queue from a failure.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)

	j, err := w.repo.ClaimNext(claimCtx, w.cfg.WorkerID)
	cancel()

	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			return false, nil
		}

		return false, err
	}

	if w.prom != nil {
		w.prom.JobsInFlight.Inc()
		defer w.prom.JobsInFlight.Dec()
	}

	start := time.Now()

	err = w.execute(ctx, j)

	if err != nil {
		w.handleFailure(ctx, j, err)

		if w.prom != nil {
			result := "retry"
			if j.Attempts >= j.MaxAttempts {
				result = "failed"
			}
			w.prom.ObserveJob(j.Type, result, time.Since(start))
		}

		return true, nil
	}

	err = w.repo.MarkDone(ctx, j.ID)

	if err != nil {
		_ = w.repo.MarkFailed(ctx, j.ID, "mark_done_failed: "+err.Error())
		return true, err
	}

	if w.prom != nil {
		w.prom.ObserveJob(j.Type, "done", time.Since(start))
	}

	return true, nil
}

func (w *Worker) execute(ctx context.Context, j job.Job) error {
	payload, err := jobs.DecodePayload(j)

	if err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	switch p := payload.(type) {
	case jobs.EmailConfirmationPayload:
		return w.notifier.SendConfirmation(ctx, notifications.SendConfirmationInput{
			Name:  p.FirstName,
			Link:  p.VerificationLink,
			Code:  p.ConfirmCode,
			Email: p.Email,
		})

	default:
		return fmt.Errorf("%w: %s", jobs.ErrInvalidJobType, j.Type)
	}
}

func (w *Worker) handleFailure(ctx context.Context, j job.Job, execErr error) {
	// Attempts was already bumped by the claim.
	if j.Attempts >= j.MaxAttempts {
		w.log.Error("job failed permanently", "job_id", j.ID, "type", j.Type, "attempts", j.Attempts, "err", execErr)

		if err := w.repo.MarkFailed(ctx, j.ID, execErr.Error()); err != nil {
			w.log.Error("mark failed", "job_id", j.ID, "err", err)
		}
		return
	}

	delay := ExponentialBackoff(j.Attempts)

	w.log.Warn("job rescheduled", "job_id", j.ID, "type", j.Type, "attempts", j.Attempts, "delay", delay, "err", execErr)

	if err := w.repo.Reschedule(ctx, j.ID, time.Now().UTC().Add(delay), execErr.Error()); err != nil {
		w.log.Error("reschedule", "job_id", j.ID, "err", err)
	}
}

func (w *Worker) setReady(v bool) {
	w.readyMu.Lock()
	w.ready = v
	w.readyMu.Unlock()
}
