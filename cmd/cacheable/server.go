package main

import (
	"net/http"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-cacheable/httpbind"
	"github.com/goliatone/go-cacheable/pkg/di"
)

const postParam = "post"

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

type postInput struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

func (in postInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Slug, validation.Required, validation.Length(1, 128), validation.Match(slugPattern)),
		validation.Field(&in.Title, validation.Required, validation.Length(1, 256)),
	)
}

type postsHandler struct {
	posts *di.CachedModel[*Post]
}

func newServer(posts *di.CachedModel[*Post], logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	h := postsHandler{posts: posts}
	bind := httpbind.Bind[*Post](posts, postParam, "")

	g := e.Group("/posts")
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:post", h.show, bind)
	g.PUT("/:post", h.update, bind)
	g.DELETE("/:post", h.delete, bind)

	return e
}

func (h postsHandler) list(c echo.Context) error {
	posts, err := h.posts.GetCached(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

func (h postsHandler) show(c echo.Context) error {
	post, _ := httpbind.Model[*Post](c, postParam)
	return c.JSON(http.StatusOK, post)
}

func (h postsHandler) create(c echo.Context) error {
	var in postInput
	if err := c.Bind(&in); err != nil {
		return err
	}
	if err := in.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	post, err := h.posts.Observed.Create(c.Request().Context(), &Post{
		ID:    uuid.New(),
		Slug:  in.Slug,
		Title: in.Title,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, post)
}

func (h postsHandler) update(c echo.Context) error {
	post, _ := httpbind.Model[*Post](c, postParam)

	in := postInput{Slug: post.Slug, Title: post.Title}
	if err := c.Bind(&in); err != nil {
		return err
	}
	if err := in.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	post.Slug = in.Slug
	post.Title = in.Title
	updated, err := h.posts.Observed.Update(c.Request().Context(), post)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

func (h postsHandler) delete(c echo.Context) error {
	post, _ := httpbind.Model[*Post](c, postParam)
	if err := h.posts.Observed.Delete(c.Request().Context(), post); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func requestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			logger.Info().
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Int("status", c.Response().Status).
				Dur("duration", time.Since(start)).
				Msg("request")
			return nil
		}
	}
}
