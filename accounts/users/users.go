package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SQLSTATE for unique_violation
const uniqueViolation = "23505"

var _ Store = (*Repository)(nil)

// creates a new user repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// finds a user by their ID
func (r *Repository) FindByID(ctx context.Context, id string) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	return r.queryOne(ctx, queryFindByID, id)
}

// finds a user by email, compared lower-case
func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.queryOne(ctx, queryFindByEmail, NormalizeEmail(email))
}

// finds the user bound to a federated identity
func (r *Repository) FindByExternalUID(ctx context.Context, uid string) (*User, error) {
	if uid == "" {
		return nil, ErrNotFound
	}

	return r.queryOne(ctx, queryFindByExternalUID, uid)
}

// inserts a new user; duplicate email or UID yields ErrConflict
func (r *Repository) Create(ctx context.Context, u NewUser) (*User, error) {
	if err := u.validate(); err != nil {
		return nil, err
	}

	user, err := r.queryOne(ctx, queryCreate,
		uuid.NewString(),
		NormalizeEmail(u.Email),
		nullIfEmpty(u.Name),
		nullIfEmpty(u.PasswordHash),
		nullIfEmpty(u.ExternalUID),
		nullIfEmpty(u.PhotoURL),
	)

	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// binds uid to a user that has none yet
func (r *Repository) AttachExternalUID(ctx context.Context, id, uid string) (*User, error) {
	user, err := r.queryOne(ctx, queryAttachExternalUID, id, uid)

	if errors.Is(err, ErrNotFound) {
		// row exists but is bound to another UID
		if _, findErr := r.FindByID(ctx, id); findErr == nil {
			return nil, ErrConflict
		}

		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("attach external uid: %w", err)
	}

	return user, nil
}

// updates the editable profile fields
func (r *Repository) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	user, err := r.queryOne(ctx, queryUpdateProfile,
		id,
		update.Name,
		update.PhotoURL,
		update.Title,
		update.Phone,
		update.Location,
		update.Bio,
	)

	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	return user, err
}

func (r *Repository) queryOne(ctx context.Context, query string, args ...any) (*User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, query, args...))

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return nil, ErrConflict
	}

	if err != nil {
		return nil, err
	}

	return user, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var (
		user                        User
		name, hash, uid, photo      *string
		title, phone, location, bio *string
	)

	err := row.Scan(
		&user.ID,
		&user.Email,
		&name,
		&hash,
		&uid,
		&photo,
		&title,
		&phone,
		&location,
		&bio,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	user.Name = deref(name)
	user.PasswordHash = deref(hash)
	user.ExternalUID = deref(uid)
	user.PhotoURL = deref(photo)
	user.Title = deref(title)
	user.Phone = deref(phone)
	user.Location = deref(location)
	user.Bio = deref(bio)

	return &user, nil
}

// lower-cases and trims an email address for storage and lookup
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u NewUser) validate() error {
	if NormalizeEmail(u.Email) == "" {
		return fmt.Errorf("create user: email is required")
	}

	if u.PasswordHash == "" && u.ExternalUID == "" {
		return fmt.Errorf("create user: a password hash or external uid is required")
	}

	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
