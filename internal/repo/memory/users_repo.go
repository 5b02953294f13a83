package memory

import (
	"context"
	"sync"
	"time"

	"github.com/MatviieshynO/auth-service/internal/domain/user"
)

// UsersRepo is an in-memory implementation of the users repository contract,
// used by tests and local development without a database.
type UsersRepo struct {
	mu            sync.RWMutex
	nextID        int64
	users         map[int64]user.User
	verifications []user.EmailVerification
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		nextID: 1,
		users:  make(map[int64]user.User),
	}
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) Create(ctx context.Context, params user.CreateParams) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == params.Email {
			return user.User{}, user.ErrEmailTaken
		}
	}

	now := time.Now().UTC()

	u := user.User{
		ID:           r.nextID,
		FirstName:    params.FirstName,
		FamilyName:   params.FamilyName,
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		Gender:       params.Gender,
		Role:         params.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	r.nextID++
	r.users[u.ID] = u

	return u, nil
}

func (r *UsersRepo) Update(ctx context.Context, id int64, patch user.UpdateParams) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	if patch.FirstName != nil {
		u.FirstName = *patch.FirstName
	}
	if patch.FamilyName != nil {
		u.FamilyName = *patch.FamilyName
	}
	if patch.Gender != nil {
		u.Gender = *patch.Gender
	}
	u.UpdatedAt = time.Now().UTC()

	r.users[id] = u

	return u, nil
}

func (r *UsersRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u

	return u, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id int64) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	delete(r.users, id)

	return u, nil
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]user.User, 0, len(r.users))

	// stable order by id
	for id := int64(1); id < r.nextID; id++ {
		if u, ok := r.users[id]; ok {
			users = append(users, u)
		}
	}

	return users, nil
}

func (r *UsersRepo) CreateVerification(ctx context.Context, v user.EmailVerification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.verifications = append(r.verifications, v)
	return nil
}

// Verifications returns a copy of the stored verification records.
func (r *UsersRepo) Verifications() []user.EmailVerification {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.EmailVerification, len(r.verifications))
	copy(out, r.verifications)
	return out
}
