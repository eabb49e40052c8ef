// Package repositorycache turns go-repository-bun writes into model lifecycle events.
//
// # Overview
//
// ObservedRepository wraps a base repository.Repository[T] and, after every
// successful write, dispatches an Event[T] to the listeners registered on its
// Events[T] registry. Reads are delegated untouched.
//
// # Basic Usage
//
//	base := repository.NewRepository[User](db, handlers)
//	events := repositorycache.NewEvents[User]()
//	users := repositorycache.New(base, events)
//
//	events.On(repositorycache.EventCreated, func(ctx context.Context, e repositorycache.Event[User]) error {
//		log.Printf("created %d users", len(e.Records))
//		return nil
//	})
//
//	_, err := users.Create(ctx, &User{Name: "Ada"})
//
// The model package subscribes Model[T].SyncCache to all three kinds through
// Model[T].Boot.
//
// # Event Mapping
//
//   - EventCreated: Create, CreateMany, GetOrCreate (and their Tx variants)
//   - EventUpdated: Update, UpdateMany, Upsert, UpsertMany (and their Tx variants)
//   - EventDeleted: Delete, ForceDelete, DeleteMany, DeleteWhere (and their Tx variants)
//
// GetOrCreate is always reported as a create since the base repository does
// not tell whether a record was inserted. Criteria based deletes carry no
// records.
//
// # Error Handling
//
// Listeners run synchronously in registration order. The first listener error
// stops the dispatch and is returned from the write method together with the
// write's result. The write itself is not rolled back.
//
// # Transactions
//
// Tx variants dispatch as soon as the statement succeeds, before the caller
// commits, and set Event.Tx so listeners can read through the transaction
// that holds the uncommitted rows. RunInTx defers every event of its
// transaction until commit and drops them on rollback:
//
//	err := users.RunInTx(ctx, db, nil, func(ctx context.Context, tx bun.Tx) error {
//		_, err := users.CreateTx(ctx, tx, &User{Name: "Ada"})
//		return err
//	})
package repositorycache
