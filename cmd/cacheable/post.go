package main

import (
	"context"
	"database/sql"
	"fmt"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-cacheable/model"
	"github.com/goliatone/go-cacheable/pkg/di"
)

// Post is the demo model served by the serve command.
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:p" json:"-" msgpack:"-"`

	ID    uuid.UUID `bun:"id,pk,type:uuid" json:"id" msgpack:"id"`
	Slug  string    `bun:"slug,notnull,unique" json:"slug" msgpack:"slug"`
	Title string    `bun:"title,notnull" json:"title" msgpack:"title"`
}

const (
	dbDriverSQLite   = "sqlite"
	dbDriverPostgres = "postgres"
)

func openDB(driver, dsn string) (*bun.DB, error) {
	switch driver {
	case dbDriverSQLite:
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, err
		}
		// sqlite serializes writers; one connection also keeps :memory: databases alive.
		sqldb.SetMaxOpenConns(1)
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	case dbDriverPostgres:
		sqldb, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, err
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("unknown db driver %q", driver)
	}
}

func migrate(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*Post)(nil)).IfNotExists().Exec(ctx)
	return err
}

func newPostRepository(db *bun.DB) repository.Repository[*Post] {
	handlers := repository.ModelHandlers[*Post]{
		NewRecord: func() *Post { return &Post{} },
		GetID: func(p *Post) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *Post, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
	}
	return repository.NewRepository[*Post](db, handlers)
}

// postsCacheKey holds every post; "posts.ForBinding" is unused since binding
// reads the same dataset.
const postsCacheKey = "posts"

// newPostModel caches every post under postsCacheKey and binds routes by
// slug, querying the database for posts missing from the cache.
func newPostModel(c *di.Container, repo repository.Repository[*Post]) (*di.CachedModel[*Post], error) {
	return di.NewCachedModel[*Post](c, repo,
		model.WithCacheKey[*Post](postsCacheKey),
		model.WithRouteKeyName[*Post]("slug"),
		model.WithRouteBinding(model.Binding[*Post]{Fallback: true}),
	)
}

var demoPosts = []struct{ slug, title string }{
	{"hello-world", "Hello, World"},
	{"caching-models", "Caching whole tables"},
	{"route-binding", "Resolving routes from cache"},
}

// seed inserts the demo posts into an empty table.
func seed(ctx context.Context, repo repository.Repository[*Post]) error {
	count, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	posts := make([]*Post, 0, len(demoPosts))
	for _, p := range demoPosts {
		posts = append(posts, &Post{ID: uuid.New(), Slug: p.slug, Title: p.title})
	}
	_, err = repo.CreateMany(ctx, posts)
	return err
}
