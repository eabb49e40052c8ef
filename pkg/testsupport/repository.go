package testsupport

import (
	"context"
	"database/sql"
	"sync"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

var _ repository.Repository[User] = (*MemoryRepository[User])(nil)

// MemoryRepository is an in-memory repository.Repository[T] keyed by the
// value idOf returns. Criteria are ignored: reads return every record in
// insertion order, criteria based deletes remove everything. Calls are
// recorded and errors can be injected per method.
type MemoryRepository[T any] struct {
	mu      sync.Mutex
	idOf    func(T) string
	order   []string
	records map[string]T
	calls   []string
	errors  map[string]error
}

// NewMemoryRepository creates a repository seeded with records.
func NewMemoryRepository[T any](idOf func(T) string, records ...T) *MemoryRepository[T] {
	r := &MemoryRepository[T]{
		idOf:    idOf,
		records: make(map[string]T),
		errors:  make(map[string]error),
	}
	for _, rec := range records {
		r.put(rec)
	}
	return r
}

// SetError makes every call to method fail with err. A nil err clears it.
func (r *MemoryRepository[T]) SetError(method string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.errors, method)
		return
	}
	r.errors[method] = err
}

// Calls returns the recorded method names.
func (r *MemoryRepository[T]) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// CallCount returns how many times method was called.
func (r *MemoryRepository[T]) CallCount(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == method {
			n++
		}
	}
	return n
}

// ClearCalls resets the recorded calls.
func (r *MemoryRepository[T]) ClearCalls() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// Len returns the number of stored records.
func (r *MemoryRepository[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

func (r *MemoryRepository[T]) begin(method string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, method)
	return r.errors[method]
}

func (r *MemoryRepository[T]) put(rec T) {
	id := r.idOf(rec)
	if _, ok := r.records[id]; !ok {
		r.order = append(r.order, id)
	}
	r.records[id] = rec
}

func (r *MemoryRepository[T]) remove(id string) {
	if _, ok := r.records[id]; !ok {
		return
	}
	delete(r.records, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *MemoryRepository[T]) all() []T {
	out := make([]T, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.records[id])
	}
	return out
}

func (r *MemoryRepository[T]) Get(ctx context.Context, criteria ...repository.SelectCriteria) (T, error) {
	var zero T
	if err := r.begin("Get"); err != nil {
		return zero, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.order) == 0 {
		return zero, sql.ErrNoRows
	}
	return r.records[r.order[0]], nil
}

func (r *MemoryRepository[T]) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (T, error) {
	var zero T
	if err := r.begin("GetByID"); err != nil {
		return zero, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return zero, sql.ErrNoRows
	}
	return rec, nil
}

func (r *MemoryRepository[T]) List(ctx context.Context, criteria ...repository.SelectCriteria) ([]T, int, error) {
	if err := r.begin("List"); err != nil {
		return nil, 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	records := r.all()
	return records, len(records), nil
}

func (r *MemoryRepository[T]) Count(ctx context.Context, criteria ...repository.SelectCriteria) (int, error) {
	if err := r.begin("Count"); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order), nil
}

func (r *MemoryRepository[T]) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (T, error) {
	return r.GetByID(ctx, identifier, criteria...)
}

func (r *MemoryRepository[T]) Create(ctx context.Context, record T, criteria ...repository.InsertCriteria) (T, error) {
	if err := r.begin("Create"); err != nil {
		var zero T
		return zero, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(record)
	return record, nil
}

func (r *MemoryRepository[T]) CreateTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.InsertCriteria) (T, error) {
	return r.Create(ctx, record, criteria...)
}

func (r *MemoryRepository[T]) CreateMany(ctx context.Context, records []T, criteria ...repository.InsertCriteria) ([]T, error) {
	if err := r.begin("CreateMany"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range records {
		r.put(rec)
	}
	return records, nil
}

func (r *MemoryRepository[T]) CreateManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.InsertCriteria) ([]T, error) {
	return r.CreateMany(ctx, records, criteria...)
}

func (r *MemoryRepository[T]) GetOrCreate(ctx context.Context, record T) (T, error) {
	if err := r.begin("GetOrCreate"); err != nil {
		var zero T
		return zero, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.records[r.idOf(record)]; ok {
		return existing, nil
	}
	r.put(record)
	return record, nil
}

func (r *MemoryRepository[T]) GetOrCreateTx(ctx context.Context, tx bun.IDB, record T) (T, error) {
	return r.GetOrCreate(ctx, record)
}

func (r *MemoryRepository[T]) Update(ctx context.Context, record T, criteria ...repository.UpdateCriteria) (T, error) {
	var zero T
	if err := r.begin("Update"); err != nil {
		return zero, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[r.idOf(record)]; !ok {
		return zero, sql.ErrNoRows
	}
	r.put(record)
	return record, nil
}

func (r *MemoryRepository[T]) UpdateTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.UpdateCriteria) (T, error) {
	return r.Update(ctx, record, criteria...)
}

func (r *MemoryRepository[T]) UpdateMany(ctx context.Context, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	if err := r.begin("UpdateMany"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range records {
		r.put(rec)
	}
	return records, nil
}

func (r *MemoryRepository[T]) UpdateManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	return r.UpdateMany(ctx, records, criteria...)
}

func (r *MemoryRepository[T]) Upsert(ctx context.Context, record T, criteria ...repository.UpdateCriteria) (T, error) {
	if err := r.begin("Upsert"); err != nil {
		var zero T
		return zero, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(record)
	return record, nil
}

func (r *MemoryRepository[T]) UpsertTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.UpdateCriteria) (T, error) {
	return r.Upsert(ctx, record, criteria...)
}

func (r *MemoryRepository[T]) UpsertMany(ctx context.Context, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	if err := r.begin("UpsertMany"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range records {
		r.put(rec)
	}
	return records, nil
}

func (r *MemoryRepository[T]) UpsertManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	return r.UpsertMany(ctx, records, criteria...)
}

func (r *MemoryRepository[T]) Delete(ctx context.Context, record T) error {
	if err := r.begin("Delete"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remove(r.idOf(record))
	return nil
}

func (r *MemoryRepository[T]) DeleteTx(ctx context.Context, tx bun.IDB, record T) error {
	return r.Delete(ctx, record)
}

func (r *MemoryRepository[T]) DeleteMany(ctx context.Context, criteria ...repository.DeleteCriteria) error {
	if err := r.begin("DeleteMany"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = nil
	r.records = make(map[string]T)
	return nil
}

func (r *MemoryRepository[T]) DeleteManyTx(ctx context.Context, tx bun.IDB, criteria ...repository.DeleteCriteria) error {
	return r.DeleteMany(ctx, criteria...)
}

func (r *MemoryRepository[T]) DeleteWhere(ctx context.Context, criteria ...repository.DeleteCriteria) error {
	return r.DeleteMany(ctx, criteria...)
}

func (r *MemoryRepository[T]) DeleteWhereTx(ctx context.Context, tx bun.IDB, criteria ...repository.DeleteCriteria) error {
	return r.DeleteMany(ctx, criteria...)
}

func (r *MemoryRepository[T]) ForceDelete(ctx context.Context, record T) error {
	return r.Delete(ctx, record)
}

func (r *MemoryRepository[T]) ForceDeleteTx(ctx context.Context, tx bun.IDB, record T) error {
	return r.Delete(ctx, record)
}

func (r *MemoryRepository[T]) GetTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) (T, error) {
	return r.Get(ctx, criteria...)
}

func (r *MemoryRepository[T]) GetByIDTx(ctx context.Context, tx bun.IDB, id string, criteria ...repository.SelectCriteria) (T, error) {
	return r.GetByID(ctx, id, criteria...)
}

func (r *MemoryRepository[T]) ListTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) ([]T, int, error) {
	return r.List(ctx, criteria...)
}

func (r *MemoryRepository[T]) CountTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) (int, error) {
	return r.Count(ctx, criteria...)
}

func (r *MemoryRepository[T]) GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (T, error) {
	return r.GetByIdentifier(ctx, identifier, criteria...)
}

// Raw ignores the query and returns every record.
func (r *MemoryRepository[T]) Raw(ctx context.Context, sql string, args ...any) ([]T, error) {
	if err := r.begin("Raw"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.all(), nil
}

func (r *MemoryRepository[T]) RawTx(ctx context.Context, tx bun.IDB, sql string, args ...any) ([]T, error) {
	return r.Raw(ctx, sql, args...)
}

func (r *MemoryRepository[T]) Handlers() repository.ModelHandlers[T] {
	return repository.ModelHandlers[T]{}
}
