// Package model gives a repository backed record type a class-level cache
// slot: one entry holding the whole dataset, kept current by flushing and
// rebuilding it whenever a record is created, updated or deleted.
//
// # Basic Usage
//
//	users, _ := model.New[User](facade, repo)
//	all, err := users.GetCached(ctx)
//
// # Lifecycle Sync
//
// Boot subscribes SyncCache to the events of a repositorycache.ObservedRepository.
// Writes made through that repository then refresh the cached dataset:
//
//	observed := repositorycache.New[User](repo, nil)
//	users, _ := model.New[User](facade, observed)
//	users.Boot(observed.Events())
//
// Boot does nothing when the facade's auto_model_caching setting is off,
// unless WithAutoSync overrides it.
//
// # Route Binding
//
// ResolveRouteBinding matches a route value against the cached dataset. With
// WithRouteBinding the binding can keep its own dataset under the
// "<key>.ForBinding" entry and fall back to a database lookup on a miss:
//
//	users, _ := model.New[User](facade, observed, model.WithRouteBinding(model.Binding[User]{
//		Fallback: true,
//	}))
//	user, found, err := users.ResolveRouteBinding(ctx, "jane@example.com", "email")
package model
