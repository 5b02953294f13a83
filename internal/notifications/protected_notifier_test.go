package notifications_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MatviieshynO/auth-service/internal/notifications"
)

type stubNotifier struct {
	sendFn func(ctx context.Context, in notifications.SendConfirmationInput) error
	calls  int
}

func (s *stubNotifier) SendConfirmation(ctx context.Context, in notifications.SendConfirmationInput) error {
	s.calls++
	if s.sendFn != nil {
		return s.sendFn(ctx, in)
	}
	return nil
}

func sampleInput() notifications.SendConfirmationInput {
	return notifications.SendConfirmationInput{
		Name:  "Jane",
		Link:  "http://localhost:3000/auth/confirm-email/tok",
		Code:  12345678,
		Email: "jane@example.com",
	}
}

func TestProtectedNotifierPassesThrough(t *testing.T) {
	inner := &stubNotifier{}
	n := notifications.NewProtectedNotifier(inner, notifications.ProtectedNotifierConfig{})

	if err := n.SendConfirmation(context.Background(), sampleInput()); err != nil {
		t.Fatalf("SendConfirmation: %v", err)
	}

	if inner.calls != 1 {
		t.Fatalf("inner calls = %d, want 1", inner.calls)
	}
}

func TestProtectedNotifierOpensAfterThreshold(t *testing.T) {
	sendErr := errors.New("smtp unreachable")
	inner := &stubNotifier{
		sendFn: func(ctx context.Context, in notifications.SendConfirmationInput) error {
			return sendErr
		},
	}

	n := notifications.NewProtectedNotifier(inner, notifications.ProtectedNotifierConfig{
		FailureThreshold: 3,
		Cooldown:         time.Minute,
	})

	for i := 0; i < 3; i++ {
		if err := n.SendConfirmation(context.Background(), sampleInput()); !errors.Is(err, sendErr) {
			t.Fatalf("failure %d: err = %v, want the transport error", i+1, err)
		}
	}

	// threshold reached, the next call must fail fast without hitting the transport
	err := n.SendConfirmation(context.Background(), sampleInput())

	if !errors.Is(err, notifications.ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen", err)
	}

	if inner.calls != 3 {
		t.Fatalf("inner calls = %d, want 3", inner.calls)
	}
}

func TestProtectedNotifierHalfOpenRecovery(t *testing.T) {
	fail := true
	inner := &stubNotifier{
		sendFn: func(ctx context.Context, in notifications.SendConfirmationInput) error {
			if fail {
				return errors.New("smtp unreachable")
			}
			return nil
		},
	}

	n := notifications.NewProtectedNotifier(inner, notifications.ProtectedNotifierConfig{
		FailureThreshold: 1,
		Cooldown:         10 * time.Millisecond,
	})

	if err := n.SendConfirmation(context.Background(), sampleInput()); err == nil {
		t.Fatal("expected the transport error")
	}

	if err := n.SendConfirmation(context.Background(), sampleInput()); !errors.Is(err, notifications.ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen while open", err)
	}

	time.Sleep(20 * time.Millisecond)
	fail = false

	// trial call after cooldown closes the circuit again
	if err := n.SendConfirmation(context.Background(), sampleInput()); err != nil {
		t.Fatalf("half-open trial: %v", err)
	}

	if err := n.SendConfirmation(context.Background(), sampleInput()); err != nil {
		t.Fatalf("after recovery: %v", err)
	}
}

func TestProtectedNotifierHalfOpenFailureReopens(t *testing.T) {
	inner := &stubNotifier{
		sendFn: func(ctx context.Context, in notifications.SendConfirmationInput) error {
			return errors.New("smtp unreachable")
		},
	}

	n := notifications.NewProtectedNotifier(inner, notifications.ProtectedNotifierConfig{
		FailureThreshold: 1,
		Cooldown:         10 * time.Millisecond,
	})

	if err := n.SendConfirmation(context.Background(), sampleInput()); err == nil {
		t.Fatal("expected the transport error")
	}

	time.Sleep(20 * time.Millisecond)

	// half-open trial fails, circuit reopens
	if err := n.SendConfirmation(context.Background(), sampleInput()); err == nil {
		t.Fatal("expected the transport error on the trial call")
	}

	if err := n.SendConfirmation(context.Background(), sampleInput()); !errors.Is(err, notifications.ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen after a failed trial", err)
	}

	if inner.calls != 2 {
		t.Fatalf("inner calls = %d, want 2", inner.calls)
	}
}

func TestProtectedNotifierAppliesTimeout(t *testing.T) {
	inner := &stubNotifier{
		sendFn: func(ctx context.Context, in notifications.SendConfirmationInput) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}

	n := notifications.NewProtectedNotifier(inner, notifications.ProtectedNotifierConfig{
		Timeout: 10 * time.Millisecond,
	})

	start := time.Now()
	err := n.SendConfirmation(context.Background(), sampleInput())

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}

	if time.Since(start) > time.Second {
		t.Fatal("timeout was not enforced")
	}
}
