package users_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/MatviieshynO/auth-service/internal/domain/job"
	"github.com/MatviieshynO/auth-service/internal/domain/user"
	"github.com/MatviieshynO/auth-service/internal/jobs"
	"github.com/MatviieshynO/auth-service/internal/repo/memory"
	"github.com/MatviieshynO/auth-service/internal/users"
)

type fakeHasher struct{}

func (fakeHasher) Hash(plain string) (string, error) { return "digest:" + plain, nil }

func (fakeHasher) Check(plain, hash string) (bool, error) {
	return hash == "digest:"+plain, nil
}

type fakeIssuer struct {
	issueFn func(userID int64, email string) (string, error)
}

func (f fakeIssuer) Issue(userID int64, email string) (string, error) {
	if f.issueFn != nil {
		return f.issueFn(userID, email)
	}
	return fmt.Sprintf("tok-%d", userID), nil
}

type fakeQueue struct {
	createFn func(ctx context.Context, req job.CreateRequest) (job.Job, error)
	requests []job.CreateRequest
}

func (f *fakeQueue) Create(ctx context.Context, req job.CreateRequest) (job.Job, error) {
	f.requests = append(f.requests, req)
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}
	return job.New(req), nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(repo users.Repository, queue users.JobsCreator) *users.Service {
	return users.NewService(repo, fakeHasher{}, fakeIssuer{}, queue, "http://localhost:3000", testLogger())
}

func validCreateInput() users.CreateInput {
	return users.CreateInput{
		FirstName:       "Jane",
		FamilyName:      "Doe",
		Email:           "jane@example.com",
		Password:        "Test123!",
		ConfirmPassword: "Test123!",
		Gender:          user.GenderFemale,
		Role:            user.RoleUser,
	}
}

func TestCreatePasswordMismatch(t *testing.T) {
	repo := memory.NewUsersRepo()
	queue := &fakeQueue{}
	svc := newTestService(repo, queue)

	in := validCreateInput()
	in.ConfirmPassword = "Other123!"

	_, err := svc.Create(context.Background(), in)

	var uerr *user.Error
	if !errors.As(err, &uerr) {
		t.Fatalf("expected a classified error, got %v", err)
	}

	if uerr.Kind != user.KindValidation {
		t.Fatalf("Kind = %v, want validation", uerr.Kind)
	}

	if len(uerr.Messages) != 1 || uerr.Messages[0] != "Passwords must match" {
		t.Fatalf("Messages = %v, want [Passwords must match]", uerr.Messages)
	}

	if _, lookupErr := repo.GetByEmail(context.Background(), in.Email); !errors.Is(lookupErr, user.ErrNotFound) {
		t.Fatal("a mismatched request must not persist the user")
	}

	if len(queue.requests) != 0 {
		t.Fatal("a mismatched request must not enqueue mail")
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo := memory.NewUsersRepo()
	queue := &fakeQueue{}
	svc := newTestService(repo, queue)

	if _, err := svc.Create(context.Background(), validCreateInput()); err != nil {
		t.Fatalf("first create: %v", err)
	}

	queue.requests = nil

	_, err := svc.Create(context.Background(), validCreateInput())

	var uerr *user.Error
	if !errors.As(err, &uerr) {
		t.Fatalf("expected a classified error, got %v", err)
	}

	// Deliberately vague wording so the endpoint does not confirm which
	// emails are registered.
	if len(uerr.Messages) != 1 || uerr.Messages[0] != "Invalid credentials" {
		t.Fatalf("Messages = %v, want [Invalid credentials]", uerr.Messages)
	}

	if len(queue.requests) != 0 {
		t.Fatal("a duplicate must not enqueue mail")
	}

	if got := len(repo.Verifications()); got != 1 {
		t.Fatalf("verification records = %d, want only the first create's", got)
	}
}

// raceRepo reports no user on the email pre-check but refuses the insert,
// simulating a concurrent create winning the race.
type raceRepo struct {
	*memory.UsersRepo
}

func (raceRepo) Create(ctx context.Context, params user.CreateParams) (user.User, error) {
	return user.User{}, user.ErrEmailTaken
}

func TestCreateLosesEmailRace(t *testing.T) {
	repo := raceRepo{memory.NewUsersRepo()}
	svc := newTestService(repo, &fakeQueue{})

	_, err := svc.Create(context.Background(), validCreateInput())

	var uerr *user.Error
	if !errors.As(err, &uerr) || uerr.Messages[0] != "Invalid credentials" {
		t.Fatalf("expected the duplicate outcome, got %v", err)
	}
}

func TestCreateSuccess(t *testing.T) {
	repo := memory.NewUsersRepo()
	queue := &fakeQueue{}
	svc := newTestService(repo, queue)

	before := time.Now()
	p, err := svc.Create(context.Background(), validCreateInput())

	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if p.ID == 0 || p.Email != "jane@example.com" || p.FirstName != "Jane" {
		t.Fatalf("unexpected projection %+v", p)
	}

	stored, err := repo.GetByID(context.Background(), p.ID)

	if err != nil {
		t.Fatalf("GetByID after create: %v", err)
	}

	if stored.PasswordHash == "Test123!" {
		t.Fatal("plaintext password must never be stored")
	}

	if stored.PasswordHash != "digest:Test123!" {
		t.Fatalf("PasswordHash = %q, want the hasher output", stored.PasswordHash)
	}

	verifications := repo.Verifications()

	if len(verifications) != 1 {
		t.Fatalf("verification records = %d, want 1", len(verifications))
	}

	v := verifications[0]

	if v.UserID != p.ID {
		t.Fatalf("verification UserID = %d, want %d", v.UserID, p.ID)
	}

	if v.Token == "" {
		t.Fatal("verification token must be set")
	}

	if v.ConfirmCode < 10_000_000 || v.ConfirmCode > 99_999_999 {
		t.Fatalf("ConfirmCode %d is not an eight digit number", v.ConfirmCode)
	}

	wantExpiry := before.Add(12 * time.Hour)

	if v.ExpiresAt.Before(wantExpiry.Add(-time.Minute)) || v.ExpiresAt.After(wantExpiry.Add(time.Minute)) {
		t.Fatalf("ExpiresAt %v not within a minute of %v", v.ExpiresAt, wantExpiry)
	}

	if len(queue.requests) != 1 {
		t.Fatalf("enqueued jobs = %d, want 1", len(queue.requests))
	}

	req := queue.requests[0]

	if req.Type != jobs.TypeEmailConfirmation {
		t.Fatalf("job type = %q, want %q", req.Type, jobs.TypeEmailConfirmation)
	}

	decoded, err := jobs.DecodePayload(job.New(req))

	if err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}

	payload, ok := decoded.(jobs.EmailConfirmationPayload)

	if !ok {
		t.Fatalf("payload type %T", decoded)
	}

	if payload.Email != "jane@example.com" || payload.ConfirmCode != v.ConfirmCode {
		t.Fatalf("unexpected payload %+v", payload)
	}

	wantLink := fmt.Sprintf("http://localhost:3000/auth/confirm-email/%s", v.Token)

	if payload.VerificationLink != wantLink {
		t.Fatalf("VerificationLink = %q, want %q", payload.VerificationLink, wantLink)
	}
}

func TestCreateSurvivesEnqueueFailure(t *testing.T) {
	repo := memory.NewUsersRepo()
	queue := &fakeQueue{
		createFn: func(ctx context.Context, req job.CreateRequest) (job.Job, error) {
			return job.Job{}, errors.New("queue down")
		},
	}
	svc := newTestService(repo, queue)

	p, err := svc.Create(context.Background(), validCreateInput())

	if err != nil {
		t.Fatalf("Create must not fail on an enqueue error, got %v", err)
	}

	if _, err := repo.GetByID(context.Background(), p.ID); err != nil {
		t.Fatalf("user must still be persisted: %v", err)
	}

	if len(repo.Verifications()) != 1 {
		t.Fatal("verification record must still be persisted")
	}
}

func TestFindOneNotFound(t *testing.T) {
	svc := newTestService(memory.NewUsersRepo(), &fakeQueue{})

	_, err := svc.FindOne(context.Background(), 42)

	var uerr *user.Error
	if !errors.As(err, &uerr) {
		t.Fatalf("expected a classified error, got %v", err)
	}

	if uerr.Kind != user.KindNotFound {
		t.Fatalf("Kind = %v, want not found", uerr.Kind)
	}

	if len(uerr.Messages) != 1 || uerr.Messages[0] != "User with id 42 not found" {
		t.Fatalf("Messages = %v", uerr.Messages)
	}
}

func TestGetAllEmptyStore(t *testing.T) {
	svc := newTestService(memory.NewUsersRepo(), &fakeQueue{})

	_, err := svc.GetAll(context.Background())

	var uerr *user.Error
	if !errors.As(err, &uerr) {
		t.Fatalf("expected a classified error, got %v", err)
	}

	if uerr.Kind != user.KindNotFound || uerr.Messages[0] != "No records found" {
		t.Fatalf("got %v / %v", uerr.Kind, uerr.Messages)
	}
}

func TestGetAllReturnsProjections(t *testing.T) {
	repo := memory.NewUsersRepo()
	svc := newTestService(repo, &fakeQueue{})

	for i := 0; i < 3; i++ {
		in := validCreateInput()
		in.Email = fmt.Sprintf("user%d@example.com", i)
		if _, err := svc.Create(context.Background(), in); err != nil {
			t.Fatalf("seed create: %v", err)
		}
	}

	all, err := svc.GetAll(context.Background())

	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}

	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}

	for i, p := range all {
		if p.ID != int64(i+1) {
			t.Fatalf("projection %d has id %d, want ascending ids", i, p.ID)
		}
	}
}

func TestUpdateAppliesPatch(t *testing.T) {
	repo := memory.NewUsersRepo()
	svc := newTestService(repo, &fakeQueue{})

	created, err := svc.Create(context.Background(), validCreateInput())

	if err != nil {
		t.Fatalf("seed create: %v", err)
	}

	newName := "Janet"
	p, err := svc.Update(context.Background(), created.ID, users.UpdateInput{FirstName: &newName})

	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if p.FirstName != "Janet" || p.FamilyName != "Doe" {
		t.Fatalf("patch applied wrong: %+v", p)
	}
}

func TestUpdateNotFound(t *testing.T) {
	svc := newTestService(memory.NewUsersRepo(), &fakeQueue{})

	name := "Janet"
	_, err := svc.Update(context.Background(), 7, users.UpdateInput{FirstName: &name})

	var uerr *user.Error
	if !errors.As(err, &uerr) || uerr.Messages[0] != "User with id 7 not found" {
		t.Fatalf("got %v", err)
	}
}

func TestDeleteReturnsDeleted(t *testing.T) {
	repo := memory.NewUsersRepo()
	svc := newTestService(repo, &fakeQueue{})

	created, err := svc.Create(context.Background(), validCreateInput())

	if err != nil {
		t.Fatalf("seed create: %v", err)
	}

	p, err := svc.Delete(context.Background(), created.ID)

	if err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if p.ID != created.ID || p.Email != created.Email {
		t.Fatalf("deleted projection %+v, want the removed account", p)
	}

	if _, err := repo.GetByID(context.Background(), created.ID); !errors.Is(err, user.ErrNotFound) {
		t.Fatal("account must be gone after delete")
	}
}

func TestChangePasswordOrdering(t *testing.T) {
	repo := memory.NewUsersRepo()
	svc := newTestService(repo, &fakeQueue{})

	created, err := svc.Create(context.Background(), validCreateInput())

	if err != nil {
		t.Fatalf("seed create: %v", err)
	}

	tests := []struct {
		name    string
		id      int64
		in      users.ChangePasswordInput
		wantMsg string
	}{
		{
			name: "mismatched confirmation checked first",
			id:   9999,
			in: users.ChangePasswordInput{
				CurrentPassword:    "whatever",
				NewPassword:        "New123!",
				ConfirmNewPassword: "Other123!",
			},
			wantMsg: "Passwords must match",
		},
		{
			name: "same password checked before lookup",
			id:   9999,
			in: users.ChangePasswordInput{
				CurrentPassword:    "New123!",
				NewPassword:        "New123!",
				ConfirmNewPassword: "New123!",
			},
			wantMsg: "The current and new password cannot be the same",
		},
		{
			name: "unknown account",
			id:   9999,
			in: users.ChangePasswordInput{
				CurrentPassword:    "Test123!",
				NewPassword:        "New123!",
				ConfirmNewPassword: "New123!",
			},
			wantMsg: "User with id 9999 not found",
		},
		{
			name: "wrong current password",
			id:   created.ID,
			in: users.ChangePasswordInput{
				CurrentPassword:    "Wrong123!",
				NewPassword:        "New123!",
				ConfirmNewPassword: "New123!",
			},
			wantMsg: "Current password is incorrect",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ChangePassword(context.Background(), tc.id, tc.in)

			var uerr *user.Error
			if !errors.As(err, &uerr) {
				t.Fatalf("expected a classified error, got %v", err)
			}

			if len(uerr.Messages) != 1 || uerr.Messages[0] != tc.wantMsg {
				t.Fatalf("Messages = %v, want [%s]", uerr.Messages, tc.wantMsg)
			}
		})
	}

	// The failed attempts above must leave the credential untouched.
	stored, _ := repo.GetByID(context.Background(), created.ID)
	if !strings.HasSuffix(stored.PasswordHash, "Test123!") {
		t.Fatalf("hash changed by a failed attempt: %q", stored.PasswordHash)
	}
}

func TestChangePasswordSuccess(t *testing.T) {
	repo := memory.NewUsersRepo()
	svc := newTestService(repo, &fakeQueue{})

	created, err := svc.Create(context.Background(), validCreateInput())

	if err != nil {
		t.Fatalf("seed create: %v", err)
	}

	p, err := svc.ChangePassword(context.Background(), created.ID, users.ChangePasswordInput{
		CurrentPassword:    "Test123!",
		NewPassword:        "New123!",
		ConfirmNewPassword: "New123!",
	})

	if err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	if p.ID != created.ID {
		t.Fatalf("projection id = %d, want %d", p.ID, created.ID)
	}

	stored, _ := repo.GetByID(context.Background(), created.ID)

	if stored.PasswordHash != "digest:New123!" {
		t.Fatalf("PasswordHash = %q, want the new digest", stored.PasswordHash)
	}
}
