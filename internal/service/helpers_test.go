package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"quillpress/internal/models"
	"quillpress/internal/store/memory"
)

// fixture wires the services to a fresh in-memory database with a
// deterministic clock that advances one second per call.
type fixture struct {
	db         *memory.DB
	categories *Categories
	posts      *Posts
	users      *Users
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.New()
	tick := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	f := &fixture{
		db:         db,
		categories: NewCategories(db.Categories),
		posts:      NewPosts(db.Posts, db.Categories),
		users:      NewUsers(db.Users),
	}
	f.categories.now = now
	f.posts.now = now
	f.users.now = now
	return f
}

func principal(role models.Role) *models.Principal {
	return &models.Principal{ID: uuid.New(), Role: role}
}

func ptr[T any](v T) *T { return &v }

func (f *fixture) category(t *testing.T, owner *models.Principal, name string) *models.Category {
	t.Helper()
	c, err := f.categories.Create(context.Background(), owner, CategoryInput{Name: ptr(name)})
	require.NoError(t, err)
	return c
}

func (f *fixture) post(t *testing.T, owner *models.Principal, categoryID uuid.UUID, title string, tags ...string) *models.Post {
	t.Helper()
	p, err := f.posts.Create(context.Background(), owner, PostInput{
		Title:      ptr(title),
		Content:    ptr(strings.Repeat("x", 20)),
		CategoryID: ptr(categoryID.String()),
		Tags:       tags,
	})
	require.NoError(t, err)
	return p
}
