package user

import "time"

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

type User struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"first_name"`
	FamilyName   string    `json:"family_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Gender       Gender    `json:"gender"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Projection is the public shape of a user. Every read/write response returns
// this and nothing else; the password hash stays server-side.
type Projection struct {
	ID         int64  `json:"id"`
	FirstName  string `json:"first_name"`
	FamilyName string `json:"family_name"`
	Email      string `json:"email"`
	Gender     Gender `json:"gender"`
	Role       Role   `json:"role"`
}

func (u User) Projection() Projection {
	return Projection{
		ID:         u.ID,
		FirstName:  u.FirstName,
		FamilyName: u.FamilyName,
		Email:      u.Email,
		Gender:     u.Gender,
		Role:       u.Role,
	}
}

// EmailVerification is persisted once per created account. Its consumption by
// the confirm-email endpoint happens elsewhere; this side only issues it.
type EmailVerification struct {
	UserID      int64     `json:"userId"`
	Token       string    `json:"token"`
	ConfirmCode int       `json:"confirmCode"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type CreateParams struct {
	FirstName    string
	FamilyName   string
	Email        string
	PasswordHash string
	Gender       Gender
	Role         Role
}

// UpdateParams carries the fields mutable through Update. Email and role do
// not change through this path.
type UpdateParams struct {
	FirstName  *string
	FamilyName *string
	Gender     *Gender
}
