package memory

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quillpress/internal/apperr"
	"quillpress/internal/models"
	"quillpress/internal/store"
)

var (
	_ store.Users      = (*UserStore)(nil)
	_ store.Categories = (*CategoryStore)(nil)
	_ store.Posts      = (*PostStore)(nil)
)

func TestUserStore_EmailUnique(t *testing.T) {
	s := NewUserStore()
	ctx := context.Background()

	u, err := s.Create(ctx, &models.User{Name: "A", Email: "a@example.com", Role: models.RoleUser})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, u.ID)

	_, err = s.Create(ctx, &models.User{Name: "B", Email: "a@example.com"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	missing, err := s.FindByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserStore_ReturnsCopies(t *testing.T) {
	s := NewUserStore()
	ctx := context.Background()

	u, err := s.Create(ctx, &models.User{Name: "A", Email: "a@example.com"})
	require.NoError(t, err)
	u.Name = "mutated"

	got, err := s.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)
}

func TestCategoryStore_ConflictsAndOrder(t *testing.T) {
	s := NewCategoryStore()
	ctx := context.Background()

	_, err := s.Create(ctx, &models.Category{Name: "Zeta", Slug: "zeta"})
	require.NoError(t, err)
	alpha, err := s.Create(ctx, &models.Category{Name: "Alpha", Slug: "alpha"})
	require.NoError(t, err)

	_, err = s.Create(ctx, &models.Category{Name: "ZETA", Slug: "zeta-2"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alpha", list[0].Name)

	alpha.Name = "Zeta"
	alpha.Slug = "zeta"
	_, err = s.Update(ctx, alpha)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	found, err := s.FindByName(ctx, "alpha")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "alpha", found.Slug)
}

func TestPostStore_ListOrderAndWindow(t *testing.T) {
	s := NewPostStore()
	ctx := context.Background()

	same := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cat := uuid.New()
	for _, slug := range []string{"first", "second", "third"} {
		_, err := s.Create(ctx, &models.Post{Slug: slug, CategoryID: cat, CreatedAt: same})
		require.NoError(t, err)
	}
	_, err := s.Create(ctx, &models.Post{Slug: "other", CategoryID: uuid.New(), CreatedAt: same.Add(-time.Hour)})
	require.NoError(t, err)

	page, total, err := s.List(ctx, models.PostFilter{CategoryID: &cat, Offset: 0, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	// Equal timestamps fall back to insertion order, latest first.
	assert.Equal(t, "third", page[0].Slug)
	assert.Equal(t, "second", page[1].Slug)

	page, total, err = s.List(ctx, models.PostFilter{Offset: 10, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.NotNil(t, page)
	assert.Empty(t, page)

	page, total, err = s.List(ctx, models.PostFilter{Offset: -1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Empty(t, page)

	page, _, err = s.List(ctx, models.PostFilter{Offset: 3, Limit: math.MaxInt})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestPostStore_SearchAndUpdate(t *testing.T) {
	s := NewPostStore()
	ctx := context.Background()

	p, err := s.Create(ctx, &models.Post{Title: "Hello", Slug: "hello", Content: "body text", Tags: []string{"GoLang"}})
	require.NoError(t, err)

	found, err := s.Search(ctx, "golang", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)

	found, err = s.Search(ctx, "missing", 10)
	require.NoError(t, err)
	assert.Empty(t, found)

	_, err = s.Create(ctx, &models.Post{Slug: "hello"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	require.NoError(t, s.SetViewCount(ctx, p.ID, 3))
	got, err := s.FindBySlug(ctx, "hello")
	require.NoError(t, err)
	assert.EqualValues(t, 3, got.ViewCount)

	got.Comments = append(got.Comments, models.Comment{ID: uuid.New(), Content: "hi"})
	updated, err := s.Update(ctx, got)
	require.NoError(t, err)
	assert.Len(t, updated.Comments, 1)

	missing, err := s.Update(ctx, &models.Post{ID: uuid.New()})
	require.NoError(t, err)
	assert.Nil(t, missing)
}
