package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quillpress/internal/models"
	"quillpress/internal/service"
	"quillpress/internal/store/memory"
)

func TestParseSeedFile(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr string
	}{
		{
			name:  "two categories",
			input: "categories:\n  - name: Tech\n    description: Software\n  - name: Travel\n",
			want:  2,
		},
		{name: "empty document list", input: "categories: []\n", want: 0},
		{name: "unknown key", input: "categories:\n  - name: Tech\n    colour: red\n", wantErr: "colour"},
		{name: "missing name", input: "categories:\n  - description: nameless\n", wantErr: "category 1 has no name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := parseSeedFile(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, f.Categories, tt.want)
		})
	}
}

func TestSeedCategoriesSkipsExisting(t *testing.T) {
	db := memory.New()
	svc := service.NewCategories(db.Categories)
	author := &models.Principal{ID: uuid.New(), Role: models.RoleAdmin}
	ctx := context.Background()

	f, err := parseSeedFile(strings.NewReader("categories:\n  - name: Tech\n  - name: Travel\n    description: Trips\n"))
	require.NoError(t, err)

	var out bytes.Buffer
	n, err := seedCategories(ctx, &out, svc, author, f)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Contains(t, out.String(), `created "Tech" (tech)`)

	out.Reset()
	n, err = seedCategories(ctx, &out, svc, author, f)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Contains(t, out.String(), `skip "Travel": already exists`)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Trips", all[1].Description)
}

// run executes quillctl with args against server and returns its output.
func run(t *testing.T, server string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--server", server}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPostsCommand(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":[{"id":"` + uuid.NewString() + `","title":"Hello World","slug":"hello-world",
			"excerpt":"x","categoryId":"` + uuid.NewString() + `","authorId":"` + uuid.NewString() + `","tags":[],
			"commentCount":2,"viewCount":7,"createdAt":"2026-03-01T12:00:00Z","updatedAt":"2026-03-01T12:00:00Z"}],
			"pagination":{"page":2,"limit":1,"total":3,"pages":3}}`))
	}))
	defer srv.Close()

	out, err := run(t, srv.URL, "posts", "--page", "2", "--limit", "1")
	require.NoError(t, err)
	assert.Equal(t, "limit=1&page=2", query)
	assert.Contains(t, out, "hello-world")
	assert.Contains(t, out, "2026-03-01")
	assert.Contains(t, out, "page 2 of 3 (3 posts)")

	_, err = run(t, srv.URL, "posts", "--category", "nope")
	assert.ErrorContains(t, err, "invalid category id")
}

func TestSearchCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("q") == "missing" {
			w.Write([]byte(`{"success":true,"data":[]}`))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success":false,"error":"Please provide a search term"}`))
	}))
	defer srv.Close()

	out, err := run(t, srv.URL, "search", "missing")
	require.NoError(t, err)
	assert.Contains(t, out, "no matches")

	_, err = run(t, srv.URL, "search", "other")
	assert.ErrorContains(t, err, "Please provide a search term")
}
