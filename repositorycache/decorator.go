package repositorycache

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// ErrNilDB is returned by RunInTx without a database handle.
var ErrNilDB = errors.New("repositorycache: RunInTx requires a database handle")

// Interface assertion to ensure ObservedRepository implements Repository[T]
var _ repository.Repository[any] = (*ObservedRepository[any])(nil)

// ObservedRepository decorates a base repository and dispatches lifecycle
// events after successful writes. Reads pass through untouched.
type ObservedRepository[T any] struct {
	base   repository.Repository[T]
	events *Events[T]
}

// New wraps base. A nil events registry gets a fresh one.
func New[T any](base repository.Repository[T], events *Events[T]) *ObservedRepository[T] {
	if events == nil {
		events = NewEvents[T]()
	}
	return &ObservedRepository[T]{
		base:   base,
		events: events,
	}
}

// Events returns the registry listeners subscribe to.
func (o *ObservedRepository[T]) Events() *Events[T] {
	return o.events
}

// Base returns the wrapped repository.
func (o *ObservedRepository[T]) Base() repository.Repository[T] {
	return o.base
}

// Get retrieves a single record using the provided criteria
func (o *ObservedRepository[T]) Get(ctx context.Context, criteria ...repository.SelectCriteria) (T, error) {
	return o.base.Get(ctx, criteria...)
}

// GetByID retrieves a record by ID with optional criteria
func (o *ObservedRepository[T]) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (T, error) {
	return o.base.GetByID(ctx, id, criteria...)
}

// List retrieves multiple records using the provided criteria
func (o *ObservedRepository[T]) List(ctx context.Context, criteria ...repository.SelectCriteria) ([]T, int, error) {
	return o.base.List(ctx, criteria...)
}

// Count returns the number of records matching the criteria
func (o *ObservedRepository[T]) Count(ctx context.Context, criteria ...repository.SelectCriteria) (int, error) {
	return o.base.Count(ctx, criteria...)
}

// GetByIdentifier retrieves a record by identifier with optional criteria
func (o *ObservedRepository[T]) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (T, error) {
	return o.base.GetByIdentifier(ctx, identifier, criteria...)
}

// Create creates a new record and dispatches EventCreated
func (o *ObservedRepository[T]) Create(ctx context.Context, record T, criteria ...repository.InsertCriteria) (T, error) {
	result, err := o.base.Create(ctx, record, criteria...)
	if err != nil {
		return result, err
	}
	return result, o.dispatch(ctx, nil, EventCreated, result)
}

// CreateTx creates a new record within a transaction
func (o *ObservedRepository[T]) CreateTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.InsertCriteria) (T, error) {
	result, err := o.base.CreateTx(ctx, tx, record, criteria...)
	if err != nil {
		return result, err
	}
	return result, o.dispatch(ctx, tx, EventCreated, result)
}

// CreateMany creates multiple records
func (o *ObservedRepository[T]) CreateMany(ctx context.Context, records []T, criteria ...repository.InsertCriteria) ([]T, error) {
	result, err := o.base.CreateMany(ctx, records, criteria...)
	if err != nil {
		return result, err
	}
	return result, o.dispatch(ctx, nil, EventCreated, result...)
}

// CreateManyTx creates multiple records within a transaction
func (o *ObservedRepository[T]) CreateManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.InsertCriteria) ([]T, error) {
	result, err := o.base.CreateManyTx(ctx, tx, records, criteria...)
	if err != nil {
		return result, err
	}
	return result, o.dispatch(ctx, tx, EventCreated, result...)
}

// GetOrCreate gets a record or creates it if it doesn't exist. The base
// repository does not report which happened, so EventCreated is always sent.
func (o *ObservedRepository[T]) GetOrCreate(ctx context.Context, record T) (T, error) {
	result, err := o.base.GetOrCreate(ctx, record)
	if err != nil {
		return result, err
	}
	return result, o.dispatch(ctx, nil, EventCreated, result)
}

// GetOrCreateTx gets a record or creates it if it doesn't exist within a transaction
func (o *ObservedRepository[T]) GetOrCreateTx(ctx context.Context, tx bun.IDB, record T) (T, error) {
	result, err := o.base.GetOrCreateTx(ctx, tx, record)
	if err != nil {
		return result, err
	}
	return result, o.dispatch(ctx, tx, EventCreated, result)
}

// Update updates a record and dispatches EventUpdated
func (o *ObservedRepository[T]) Update(ctx context.Context, record T, criteria ...repository.UpdateCriteria) (T, error) {
	result, err := o.base.Update(ctx, record, criteria...)
	if err != nil {
		return result, err
	}
	return result, o.dispatch(ctx, nil, EventUpdated, result)
}

// UpdateTx updates a record within a transaction
func (o *ObservedRepository[T]) UpdateTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.UpdateCriteria) (T, error) {
	result, err := o.base.UpdateTx(ctx, tx, record, criteria...)
	if err != nil {
		return result, err
	}
	return result, o.dispatch(ctx, tx, EventUpdated, result)
}

// UpdateMany updates multiple records
func (o *ObservedRepository[T]) UpdateMany(ctx context.Context, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	result, err := o.base.UpdateMany(ctx, records, criteria...)
	if err != nil {
		return result, err
	}
	return result, o.dispatch(ctx, nil, EventUpdated, result...)
}

// UpdateManyTx updates multiple records within a transaction
func (o *ObservedRepository[T]) UpdateManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	result, err := o.base.UpdateManyTx(ctx, tx, records, criteria...)
	if err != nil {
		return result, err
	}
	return result, o.dispatch(ctx, tx, EventUpdated, result...)
}

// Upsert inserts or updates a record. It is reported as an update.
func (o *ObservedRepository[T]) Upsert(ctx context.Context, record T, criteria ...repository.UpdateCriteria) (T, error) {
	result, err := o.base.Upsert(ctx, record, criteria...)
	if err != nil {
		return result, err
	}
	return result, o.dispatch(ctx, nil, EventUpdated, result)
}

// UpsertTx inserts or updates a record within a transaction
func (o *ObservedRepository[T]) UpsertTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.UpdateCriteria) (T, error) {
	result, err := o.base.UpsertTx(ctx, tx, record, criteria...)
	if err != nil {
		return result, err
	}
	return result, o.dispatch(ctx, tx, EventUpdated, result)
}

// UpsertMany inserts or updates multiple records
func (o *ObservedRepository[T]) UpsertMany(ctx context.Context, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	result, err := o.base.UpsertMany(ctx, records, criteria...)
	if err != nil {
		return result, err
	}
	return result, o.dispatch(ctx, nil, EventUpdated, result...)
}

// UpsertManyTx inserts or updates multiple records within a transaction
func (o *ObservedRepository[T]) UpsertManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	result, err := o.base.UpsertManyTx(ctx, tx, records, criteria...)
	if err != nil {
		return result, err
	}
	return result, o.dispatch(ctx, tx, EventUpdated, result...)
}

// Delete deletes a record and dispatches EventDeleted
func (o *ObservedRepository[T]) Delete(ctx context.Context, record T) error {
	if err := o.base.Delete(ctx, record); err != nil {
		return err
	}
	return o.dispatch(ctx, nil, EventDeleted, record)
}

// DeleteTx deletes a record within a transaction
func (o *ObservedRepository[T]) DeleteTx(ctx context.Context, tx bun.IDB, record T) error {
	if err := o.base.DeleteTx(ctx, tx, record); err != nil {
		return err
	}
	return o.dispatch(ctx, tx, EventDeleted, record)
}

// DeleteMany deletes multiple records based on criteria
func (o *ObservedRepository[T]) DeleteMany(ctx context.Context, criteria ...repository.DeleteCriteria) error {
	if err := o.base.DeleteMany(ctx, criteria...); err != nil {
		return err
	}
	return o.dispatch(ctx, nil, EventDeleted)
}

// DeleteManyTx deletes multiple records based on criteria within a transaction
func (o *ObservedRepository[T]) DeleteManyTx(ctx context.Context, tx bun.IDB, criteria ...repository.DeleteCriteria) error {
	if err := o.base.DeleteManyTx(ctx, tx, criteria...); err != nil {
		return err
	}
	return o.dispatch(ctx, tx, EventDeleted)
}

// DeleteWhere deletes records based on criteria
func (o *ObservedRepository[T]) DeleteWhere(ctx context.Context, criteria ...repository.DeleteCriteria) error {
	if err := o.base.DeleteWhere(ctx, criteria...); err != nil {
		return err
	}
	return o.dispatch(ctx, nil, EventDeleted)
}

// DeleteWhereTx deletes records based on criteria within a transaction
func (o *ObservedRepository[T]) DeleteWhereTx(ctx context.Context, tx bun.IDB, criteria ...repository.DeleteCriteria) error {
	if err := o.base.DeleteWhereTx(ctx, tx, criteria...); err != nil {
		return err
	}
	return o.dispatch(ctx, tx, EventDeleted)
}

// ForceDelete force deletes a record (bypassing soft delete)
func (o *ObservedRepository[T]) ForceDelete(ctx context.Context, record T) error {
	if err := o.base.ForceDelete(ctx, record); err != nil {
		return err
	}
	return o.dispatch(ctx, nil, EventDeleted, record)
}

// ForceDeleteTx force deletes a record within a transaction (bypassing soft delete)
func (o *ObservedRepository[T]) ForceDeleteTx(ctx context.Context, tx bun.IDB, record T) error {
	if err := o.base.ForceDeleteTx(ctx, tx, record); err != nil {
		return err
	}
	return o.dispatch(ctx, tx, EventDeleted, record)
}

// GetTx retrieves a single record using the provided criteria within a transaction
func (o *ObservedRepository[T]) GetTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) (T, error) {
	return o.base.GetTx(ctx, tx, criteria...)
}

// GetByIDTx retrieves a record by ID with optional criteria within a transaction
func (o *ObservedRepository[T]) GetByIDTx(ctx context.Context, tx bun.IDB, id string, criteria ...repository.SelectCriteria) (T, error) {
	return o.base.GetByIDTx(ctx, tx, id, criteria...)
}

// ListTx retrieves multiple records using the provided criteria within a transaction
func (o *ObservedRepository[T]) ListTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) ([]T, int, error) {
	return o.base.ListTx(ctx, tx, criteria...)
}

// CountTx returns the number of records matching the criteria within a transaction
func (o *ObservedRepository[T]) CountTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) (int, error) {
	return o.base.CountTx(ctx, tx, criteria...)
}

// GetByIdentifierTx retrieves a record by identifier with optional criteria within a transaction
func (o *ObservedRepository[T]) GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (T, error) {
	return o.base.GetByIdentifierTx(ctx, tx, identifier, criteria...)
}

// Raw executes a raw SQL query and returns the results
func (o *ObservedRepository[T]) Raw(ctx context.Context, sql string, args ...any) ([]T, error) {
	return o.base.Raw(ctx, sql, args...)
}

// RawTx executes a raw SQL query within a transaction and returns the results
func (o *ObservedRepository[T]) RawTx(ctx context.Context, tx bun.IDB, sql string, args ...any) ([]T, error) {
	return o.base.RawTx(ctx, tx, sql, args...)
}

// Handlers returns the model handlers from the base repository
func (o *ObservedRepository[T]) Handlers() repository.ModelHandlers[T] {
	return o.base.Handlers()
}

// RunInTx runs fn inside a transaction on db. Events from writes made with
// the ctx passed to fn are held back and dispatched, without Tx, once the
// transaction has committed. They are dropped when fn or the commit fails.
func (o *ObservedRepository[T]) RunInTx(ctx context.Context, db bun.IDB, opts *sql.TxOptions, fn func(ctx context.Context, tx bun.Tx) error) error {
	if db == nil {
		return ErrNilDB
	}

	batch := &pending[T]{}
	txCtx := context.WithValue(ctx, pendingKey{repo: o}, batch)
	if err := db.RunInTx(txCtx, opts, fn); err != nil {
		return err
	}

	for _, ev := range batch.drain() {
		if err := o.events.Dispatch(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

func (o *ObservedRepository[T]) dispatch(ctx context.Context, tx bun.IDB, kind EventKind, records ...T) error {
	if batch, ok := ctx.Value(pendingKey{repo: o}).(*pending[T]); ok {
		batch.add(Event[T]{Kind: kind, Records: records})
		return nil
	}
	return o.events.Dispatch(ctx, Event[T]{Kind: kind, Records: records, Tx: tx})
}

type pendingKey struct{ repo any }

// pending collects the events of a RunInTx transaction.
type pending[T any] struct {
	mu     sync.Mutex
	events []Event[T]
}

func (p *pending[T]) add(ev Event[T]) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *pending[T]) drain() []Event[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	events := p.events
	p.events = nil
	return events
}
