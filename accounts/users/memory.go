package users

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// in-process Store for tests and STORE=memory development runs
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]*User // by id
	now   func() time.Time
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]*User),
		now:   time.Now,
	}
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u, ok := s.users[id]; ok {
		return clone(u), nil
	}

	return nil, ErrNotFound
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u := s.byEmail(NormalizeEmail(email)); u != nil {
		return clone(u), nil
	}

	return nil, ErrNotFound
}

func (s *MemoryStore) FindByExternalUID(_ context.Context, uid string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if u := s.byUID(uid); u != nil {
		return clone(u), nil
	}

	return nil, ErrNotFound
}

func (s *MemoryStore) Create(_ context.Context, nu NewUser) (*User, error) {
	if err := nu.validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	email := NormalizeEmail(nu.Email)

	if s.byEmail(email) != nil || s.byUID(nu.ExternalUID) != nil {
		return nil, ErrConflict
	}

	now := s.now().UTC()
	u := &User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         nu.Name,
		PasswordHash: nu.PasswordHash,
		ExternalUID:  nu.ExternalUID,
		PhotoURL:     nu.PhotoURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.users[u.ID] = u

	return clone(u), nil
}

func (s *MemoryStore) AttachExternalUID(_ context.Context, id, uid string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}

	if u.ExternalUID == uid {
		return clone(u), nil
	}

	if u.ExternalUID != "" {
		return nil, ErrConflict
	}

	if other := s.byUID(uid); other != nil {
		return nil, ErrConflict
	}

	u.ExternalUID = uid
	u.UpdatedAt = s.now().UTC()

	return clone(u), nil
}

func (s *MemoryStore) UpdateProfile(_ context.Context, id string, update ProfileUpdate) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}

	apply(&u.Name, update.Name)
	apply(&u.PhotoURL, update.PhotoURL)
	apply(&u.Title, update.Title)
	apply(&u.Phone, update.Phone)
	apply(&u.Location, update.Location)
	apply(&u.Bio, update.Bio)
	u.UpdatedAt = s.now().UTC()

	return clone(u), nil
}

// caller holds the lock
func (s *MemoryStore) byEmail(email string) *User {
	for _, u := range s.users {
		if u.Email == email {
			return u
		}
	}

	return nil
}

// caller holds the lock
func (s *MemoryStore) byUID(uid string) *User {
	if uid == "" {
		return nil
	}

	for _, u := range s.users {
		if u.ExternalUID == uid {
			return u
		}
	}

	return nil
}

func apply(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func clone(u *User) *User {
	c := *u
	return &c
}
