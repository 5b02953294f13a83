// Package users holds the account lifecycle service: validation rules,
// credential management and the error taxonomy for every user operation.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MatviieshynO/auth-service/internal/domain/job"
	"github.com/MatviieshynO/auth-service/internal/domain/user"
	"github.com/MatviieshynO/auth-service/internal/jobs"
	"github.com/MatviieshynO/auth-service/internal/security"
	"github.com/MatviieshynO/auth-service/internal/token"
)

// Repository is the persistence contract the lifecycle logic consumes.
type Repository interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, params user.CreateParams) (user.User, error)
	Update(ctx context.Context, id int64, patch user.UpdateParams) (user.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) (user.User, error)
	Delete(ctx context.Context, id int64) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	CreateVerification(ctx context.Context, v user.EmailVerification) error
}

// Hasher is the one-way credential digest contract.
type Hasher interface {
	Hash(plain string) (string, error)
	Check(plain, hash string) (bool, error)
}

// TokenIssuer signs email confirmation tokens.
type TokenIssuer interface {
	Issue(userID int64, email string) (string, error)
}

// JobsCreator submits background work. Enqueued jobs are not awaited; the
// mail round trip never sits on the create response path.
type JobsCreator interface {
	Create(ctx context.Context, req job.CreateRequest) (job.Job, error)
}

// BcryptHasher adapts the security package to the Hasher contract.
type BcryptHasher struct{}

func (BcryptHasher) Hash(plain string) (string, error)      { return security.HashPassword(plain) }
func (BcryptHasher) Check(plain, hash string) (bool, error) { return security.CheckPassword(plain, hash) }

type Service struct {
	repo   Repository
	hasher Hasher
	tokens TokenIssuer
	queue  JobsCreator
	apiURL string
	log    *slog.Logger
}

func NewService(repo Repository, hasher Hasher, tokens TokenIssuer, queue JobsCreator, apiURL string, log *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		queue:  queue,
		apiURL: apiURL,
		log:    log,
	}
}

type CreateInput struct {
	FirstName       string
	FamilyName      string
	Email           string
	Password        string
	ConfirmPassword string
	Gender          user.Gender
	Role            user.Role
}

type UpdateInput struct {
	FirstName  *string
	FamilyName *string
	Gender     *user.Gender
}

type ChangePasswordInput struct {
	CurrentPassword    string
	NewPassword        string
	ConfirmNewPassword string
}

// fail classifies an operation outcome: Validation/NotFound pass through
// untouched (expected client-input outcomes), anything else is logged with
// context before being returned.
func (s *Service) fail(ctx context.Context, op string, err error) error {
	var uerr *user.Error
	if errors.As(err, &uerr) {
		return err
	}

	s.log.ErrorContext(ctx, "users service error", "op", op, "err", err)
	return err
}

func (s *Service) Create(ctx context.Context, in CreateInput) (user.Projection, error) {
	if in.Password != in.ConfirmPassword {
		return user.Projection{}, user.ErrPasswordMismatch
	}

	// Best-effort pre-check; the unique constraint on email is the authority.
	_, err := s.repo.GetByEmail(ctx, in.Email)

	switch {
	case err == nil:
		return user.Projection{}, user.ErrDuplicateEmail
	case !errors.Is(err, user.ErrNotFound):
		return user.Projection{}, s.fail(ctx, "create", fmt.Errorf("lookup by email: %w", err))
	}

	hash, err := s.hasher.Hash(in.Password)

	if err != nil {
		return user.Projection{}, s.fail(ctx, "create", fmt.Errorf("hash password: %w", err))
	}

	newUser, err := s.repo.Create(ctx, user.CreateParams{
		FirstName:    in.FirstName,
		FamilyName:   in.FamilyName,
		Email:        in.Email,
		PasswordHash: hash,
		Gender:       in.Gender,
		Role:         in.Role,
	})

	if err != nil {
		// Lost a benign race with a concurrent create on the same email.
		if errors.Is(err, user.ErrEmailTaken) {
			return user.Projection{}, user.ErrDuplicateEmail
		}
		return user.Projection{}, s.fail(ctx, "create", fmt.Errorf("insert user: %w", err))
	}

	confirmToken, err := s.tokens.Issue(newUser.ID, newUser.Email)

	if err != nil {
		return user.Projection{}, s.fail(ctx, "create", fmt.Errorf("issue confirmation token: %w", err))
	}

	confirmCode := token.GenerateConfirmationCode()
	expiry := token.ComputeExpiry(12)

	s.dispatchConfirmation(ctx, newUser, confirmToken, confirmCode)

	err = s.repo.CreateVerification(ctx, user.EmailVerification{
		UserID:      newUser.ID,
		Token:       confirmToken,
		ConfirmCode: confirmCode,
		ExpiresAt:   expiry,
	})

	if err != nil {
		return user.Projection{}, s.fail(ctx, "create", fmt.Errorf("persist verification record: %w", err))
	}

	return newUser.Projection(), nil
}

// dispatchConfirmation submits the confirmation email to the background queue.
// Failure here never fails the create; it is logged so lost confirmation mail
// is at least visible.
func (s *Service) dispatchConfirmation(ctx context.Context, u user.User, confirmToken string, confirmCode int) {
	payload := jobs.EmailConfirmationPayload{
		UserID:           u.ID,
		Email:            u.Email,
		FirstName:        u.FirstName,
		VerificationLink: fmt.Sprintf("%s/auth/confirm-email/%s", s.apiURL, confirmToken),
		ConfirmCode:      confirmCode,
		RequestedAt:      time.Now().UTC(),
	}

	raw, err := jobs.EncodePayload(jobs.TypeEmailConfirmation, payload)

	if err != nil {
		s.log.ErrorContext(ctx, "encode confirmation payload", "user_id", u.ID, "err", err)
		return
	}

	key := fmt.Sprintf("user:confirm:%d", u.ID)

	_, err = s.queue.Create(ctx, job.CreateRequest{
		Type:           jobs.TypeEmailConfirmation,
		Payload:        raw,
		RunAt:          time.Now().UTC(),
		MaxAttempts:    10,
		IdempotencyKey: &key,
	})

	if err != nil {
		s.log.ErrorContext(ctx, "enqueue confirmation email", "user_id", u.ID, "err", err)
	}
}

func (s *Service) FindOne(ctx context.Context, id int64) (user.Projection, error) {
	u, err := s.repo.GetByID(ctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.Projection{}, user.NotFoundByID(id)
		}
		return user.Projection{}, s.fail(ctx, "find_one", fmt.Errorf("lookup by id: %w", err))
	}

	return u.Projection(), nil
}

// GetAll returns every account's projection. An empty store is a NotFound
// outcome, not an empty list.
func (s *Service) GetAll(ctx context.Context) ([]user.Projection, error) {
	all, err := s.repo.List(ctx)

	if err != nil {
		return nil, s.fail(ctx, "get_all", fmt.Errorf("list users: %w", err))
	}

	if len(all) == 0 {
		return nil, user.ErrNoRecords
	}

	projections := make([]user.Projection, 0, len(all))

	for _, u := range all {
		projections = append(projections, u.Projection())
	}

	return projections, nil
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (user.Projection, error) {
	u, err := s.repo.Update(ctx, id, user.UpdateParams{
		FirstName:  in.FirstName,
		FamilyName: in.FamilyName,
		Gender:     in.Gender,
	})

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.Projection{}, user.NotFoundByID(id)
		}
		return user.Projection{}, s.fail(ctx, "update", fmt.Errorf("update user: %w", err))
	}

	return u.Projection(), nil
}

func (s *Service) Delete(ctx context.Context, id int64) (user.Projection, error) {
	u, err := s.repo.Delete(ctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.Projection{}, user.NotFoundByID(id)
		}
		return user.Projection{}, s.fail(ctx, "delete", fmt.Errorf("delete user: %w", err))
	}

	return u.Projection(), nil
}

func (s *Service) ChangePassword(ctx context.Context, id int64, in ChangePasswordInput) (user.Projection, error) {
	// Syntactic checks come first; a malformed request never touches the store.
	if in.NewPassword != in.ConfirmNewPassword {
		return user.Projection{}, user.ErrPasswordMismatch
	}

	if in.NewPassword == in.CurrentPassword {
		return user.Projection{}, user.ErrSamePassword
	}

	u, err := s.repo.GetByID(ctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.Projection{}, user.NotFoundByID(id)
		}
		return user.Projection{}, s.fail(ctx, "change_password", fmt.Errorf("lookup by id: %w", err))
	}

	ok, err := s.hasher.Check(in.CurrentPassword, u.PasswordHash)

	if err != nil {
		return user.Projection{}, s.fail(ctx, "change_password", fmt.Errorf("verify current password: %w", err))
	}

	if !ok {
		return user.Projection{}, user.ErrWrongPassword
	}

	newHash, err := s.hasher.Hash(in.NewPassword)

	if err != nil {
		return user.Projection{}, s.fail(ctx, "change_password", fmt.Errorf("hash new password: %w", err))
	}

	updated, err := s.repo.UpdatePassword(ctx, id, newHash)

	if err != nil {
		return user.Projection{}, s.fail(ctx, "change_password", fmt.Errorf("persist new password: %w", err))
	}

	return updated.Projection(), nil
}
