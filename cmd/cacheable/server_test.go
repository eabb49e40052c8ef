package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-cacheable/pkg/di"
	"github.com/goliatone/go-cacheable/pkg/testsupport"
)

type fixture struct {
	db     *bun.DB
	server *echo.Echo
	posts  *di.CachedModel[*Post]
	insert func(slug, title string)
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	db, err := openDB(dbDriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrate(ctx, db))
	repo := newPostRepository(db)
	require.NoError(t, seed(ctx, repo))

	container, err := di.NewContainer(testsupport.MemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close(ctx) })

	posts, err := newPostModel(container, repo)
	require.NoError(t, err)
	require.NoError(t, container.SyncAll(ctx))

	return fixture{
		db:     db,
		server: newServer(posts, zerolog.Nop()),
		posts:  posts,
		insert: func(slug, title string) {
			_, err := db.NewInsert().Model(&Post{ID: uuid.New(), Slug: slug, Title: title}).Exec(ctx)
			require.NoError(t, err)
		},
	}
}

func (f fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func decodePosts(t *testing.T, rec *httptest.ResponseRecorder) []Post {
	t.Helper()
	var posts []Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posts))
	return posts
}

func TestServer_ListServesCachedPosts(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/posts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodePosts(t, rec), len(demoPosts))

	// Rows written behind the repository's back stay invisible until the next sync.
	f.insert("stale", "Not cached yet")
	rec = f.do(http.MethodGet, "/posts", "")
	assert.Len(t, decodePosts(t, rec), len(demoPosts))
}

func TestServer_ShowBindsBySlug(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/posts/route-binding", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var post Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	assert.Equal(t, "Resolving routes from cache", post.Title)
	assert.NotEqual(t, uuid.Nil, post.ID)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/posts/missing", "").Code)
}

func TestServer_ShowFallsBackToDatabase(t *testing.T) {
	f := newFixture(t)

	f.insert("uncached", "Only in the database")

	rec := f.do(http.MethodGet, "/posts/uncached", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Only in the database")
}

func TestServer_WritesSyncTheCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec := f.do(http.MethodPost, "/posts", `{"slug":"new-post","title":"Fresh"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	cached, err := f.posts.GetCached(ctx)
	require.NoError(t, err)
	_, ok := cached.Where("slug", "new-post").First()
	assert.True(t, ok, "created post should be cached")

	rec = f.do(http.MethodPut, "/posts/new-post", `{"title":"Edited"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	cached, err = f.posts.GetCached(ctx)
	require.NoError(t, err)
	post, ok := cached.Where("slug", "new-post").First()
	require.True(t, ok)
	assert.Equal(t, "Edited", post.Title)

	rec = f.do(http.MethodDelete, "/posts/new-post", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	cached, err = f.posts.GetCached(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(demoPosts), cached.Len())
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/posts/new-post", "").Code)
}

func TestServer_CreateValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing slug", body: `{"title":"No slug"}`},
		{name: "invalid slug", body: `{"slug":"Not A Slug","title":"x"}`},
		{name: "missing title", body: `{"slug":"no-title"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(http.MethodPost, "/posts", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		})
	}
}

func TestServer_HealthAndMetrics(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	f.do(http.MethodGet, "/posts/hello-world", "")

	rec = f.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cacheable_model_syncs_total")
}
