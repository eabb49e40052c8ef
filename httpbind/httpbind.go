// Package httpbind resolves echo route parameters to cached model records.
//
//	e.GET("/users/:user", show, httpbind.Bind[User](users, "user", "email"))
//
//	func show(c echo.Context) error {
//		user, _ := httpbind.Model[User](c, "user")
//		return c.JSON(http.StatusOK, user)
//	}
package httpbind

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Resolver resolves a route value to a record. *model.Model[T] implements it.
type Resolver[T any] interface {
	ResolveRouteBinding(ctx context.Context, value, field string) (T, bool, error)
}

// Option configures Bind.
type Option func(*options)

type options struct {
	contextKey string
	skipEmpty  bool
}

// WithContextKey stores the record under key instead of the parameter name.
func WithContextKey(key string) Option {
	return func(o *options) {
		if key != "" {
			o.contextKey = key
		}
	}
}

// WithOptional lets requests with an empty parameter through unresolved.
func WithOptional() Option {
	return func(o *options) {
		o.skipEmpty = true
	}
}

// Bind returns middleware resolving the route parameter param against field
// (empty for the model's route key). Absent records answer 404 and resolver
// failures 500; otherwise the record is stored in the echo context.
func Bind[T any](r Resolver[T], param, field string, opts ...Option) echo.MiddlewareFunc {
	o := options{contextKey: param}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			value := c.Param(param)
			if value == "" && o.skipEmpty {
				return next(c)
			}

			record, found, err := r.ResolveRouteBinding(c.Request().Context(), value, field)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "failed to resolve "+param).SetInternal(err)
			}
			if !found {
				return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("%s %q not found", param, value))
			}

			c.Set(o.contextKey, record)
			return next(c)
		}
	}
}

// Model returns the record Bind stored under key.
func Model[T any](c echo.Context, key string) (T, bool) {
	record, ok := c.Get(key).(T)
	return record, ok
}
