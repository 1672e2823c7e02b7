package users

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("user not found")
	ErrConflict = errors.New("user already exists")
)

// persistence contract for user identity records
type Store interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByExternalUID(ctx context.Context, uid string) (*User, error)
	Create(ctx context.Context, u NewUser) (*User, error)
	AttachExternalUID(ctx context.Context, id, uid string) (*User, error)
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*User, error)
}

// handles user database operations
type Repository struct {
	db *pgxpool.Pool
}

// represents a user identity record
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	PasswordHash string    `json:"-"`
	ExternalUID  string    `json:"uid,omitempty"`
	PhotoURL     string    `json:"photo_url,omitempty"`
	Title        string    `json:"title,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Location     string    `json:"location,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// fields for a new record; exactly the credential the caller authenticated with
type NewUser struct {
	Email        string
	Name         string
	PasswordHash string
	ExternalUID  string
	PhotoURL     string
}

// nil fields are left unchanged
type ProfileUpdate struct {
	Name     *string
	PhotoURL *string
	Title    *string
	Phone    *string
	Location *string
	Bio      *string
}

// identity asserted by a federated provider after token verification
type ExternalIdentity struct {
	UID           string
	Email         string
	EmailVerified bool // only a verified email may be linked to an existing account
	Name          string
	PhotoURL      string
}

func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
