package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"quillpress/internal/apperr"
	"quillpress/internal/models"
)

// UserStore is an in-memory store.Users.
type UserStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]models.User
	seq   map[uuid.UUID]uint64
	ids   sequence
}

// NewUserStore creates an empty in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		users: make(map[uuid.UUID]models.User),
		seq:   make(map[uuid.UUID]uint64),
	}
}

func cloneUser(u models.User) *models.User {
	if u.AvatarRef != nil {
		v := *u.AvatarRef
		u.AvatarRef = &v
	}
	if u.TOTPSecret != nil {
		v := *u.TOTPSecret
		u.TOTPSecret = &v
	}
	return &u
}

// FindByID returns the user with id, or nil.
func (s *UserStore) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return cloneUser(u), nil
}

// FindByEmail returns the user with email, or nil.
func (s *UserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

// List returns all users in creation order.
func (s *UserStore) List(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return s.seq[out[i].ID] < s.seq[out[j].ID]
	})
	return out, nil
}

// emailTaken reports whether another user already owns email. Caller holds mu.
func (s *UserStore) emailTaken(email string, except uuid.UUID) bool {
	for id, u := range s.users {
		if id != except && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

// Create stores a new user.
func (s *UserStore) Create(_ context.Context, u *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emailTaken(u.Email, uuid.Nil) {
		return nil, apperr.Conflict("User already exists")
	}
	c := *cloneUser(*u)
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	s.users[c.ID] = c
	s.seq[c.ID] = s.ids.next()
	return cloneUser(c), nil
}

// Update replaces a stored user. Returns nil if it does not exist.
func (s *UserStore) Update(_ context.Context, u *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.users[u.ID]
	if !ok {
		return nil, nil
	}
	if s.emailTaken(u.Email, u.ID) {
		return nil, apperr.Conflict("User already exists")
	}
	c := *cloneUser(*u)
	c.CreatedAt = old.CreatedAt
	s.users[c.ID] = c
	return cloneUser(c), nil
}

// Delete removes a user. Missing ids are ignored.
func (s *UserStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	delete(s.seq, id)
	return nil
}
