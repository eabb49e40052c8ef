package repositorycache

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"sync"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-cacheable/pkg/testsupport"
)

type User = testsupport.User

// eventRecorder collects dispatched events for assertions.
type eventRecorder struct {
	mu     sync.Mutex
	events []Event[User]
}

func (r *eventRecorder) listen(ctx context.Context, e Event[User]) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *eventRecorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventKind, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

func newObserved(t *testing.T) (*ObservedRepository[User], *testsupport.MemoryRepository[User], *eventRecorder) {
	t.Helper()

	base := testsupport.NewUserRepository(t)
	observed := New[User](base, nil)

	rec := &eventRecorder{}
	for _, kind := range []EventKind{EventCreated, EventUpdated, EventDeleted} {
		observed.Events().On(kind, rec.listen)
	}
	return observed, base, rec
}

func TestNew(t *testing.T) {
	base := testsupport.NewUserRepository(t)
	events := NewEvents[User]()

	observed := New[User](base, events)
	if observed == nil {
		t.Fatal("New() returned nil")
	}
	if observed.Base() != base {
		t.Error("base repository not stored correctly")
	}
	if observed.Events() != events {
		t.Error("events registry not stored correctly")
	}

	if New[User](base, nil).Events() == nil {
		t.Error("expected a registry to be created when none is given")
	}
}

func TestObservedRepository_WritesDispatch(t *testing.T) {
	tests := []struct {
		name      string
		operation func(context.Context, *ObservedRepository[User]) error
		want      []EventKind
		records   int
	}{
		{
			name: "Create",
			operation: func(ctx context.Context, o *ObservedRepository[User]) error {
				_, err := o.Create(ctx, User{ID: "4"})
				return err
			},
			want:    []EventKind{EventCreated},
			records: 1,
		},
		{
			name: "CreateTx",
			operation: func(ctx context.Context, o *ObservedRepository[User]) error {
				_, err := o.CreateTx(ctx, nil, User{ID: "4"})
				return err
			},
			want:    []EventKind{EventCreated},
			records: 1,
		},
		{
			name: "CreateMany",
			operation: func(ctx context.Context, o *ObservedRepository[User]) error {
				_, err := o.CreateMany(ctx, []User{{ID: "4"}, {ID: "5"}})
				return err
			},
			want:    []EventKind{EventCreated},
			records: 2,
		},
		{
			name: "GetOrCreate",
			operation: func(ctx context.Context, o *ObservedRepository[User]) error {
				_, err := o.GetOrCreate(ctx, User{ID: "1"})
				return err
			},
			want:    []EventKind{EventCreated},
			records: 1,
		},
		{
			name: "Update",
			operation: func(ctx context.Context, o *ObservedRepository[User]) error {
				_, err := o.Update(ctx, User{ID: "1", Name: "changed"})
				return err
			},
			want:    []EventKind{EventUpdated},
			records: 1,
		},
		{
			name: "UpdateManyTx",
			operation: func(ctx context.Context, o *ObservedRepository[User]) error {
				_, err := o.UpdateManyTx(ctx, nil, []User{{ID: "1"}, {ID: "2"}})
				return err
			},
			want:    []EventKind{EventUpdated},
			records: 2,
		},
		{
			name: "Upsert",
			operation: func(ctx context.Context, o *ObservedRepository[User]) error {
				_, err := o.Upsert(ctx, User{ID: "9"})
				return err
			},
			want:    []EventKind{EventUpdated},
			records: 1,
		},
		{
			name: "UpsertMany",
			operation: func(ctx context.Context, o *ObservedRepository[User]) error {
				_, err := o.UpsertMany(ctx, []User{{ID: "9"}})
				return err
			},
			want:    []EventKind{EventUpdated},
			records: 1,
		},
		{
			name: "Delete",
			operation: func(ctx context.Context, o *ObservedRepository[User]) error {
				return o.Delete(ctx, User{ID: "1"})
			},
			want:    []EventKind{EventDeleted},
			records: 1,
		},
		{
			name: "ForceDeleteTx",
			operation: func(ctx context.Context, o *ObservedRepository[User]) error {
				return o.ForceDeleteTx(ctx, nil, User{ID: "1"})
			},
			want:    []EventKind{EventDeleted},
			records: 1,
		},
		{
			name: "DeleteWhere",
			operation: func(ctx context.Context, o *ObservedRepository[User]) error {
				return o.DeleteWhere(ctx)
			},
			want:    []EventKind{EventDeleted},
			records: 0,
		},
		{
			name: "DeleteManyTx",
			operation: func(ctx context.Context, o *ObservedRepository[User]) error {
				return o.DeleteManyTx(ctx, nil)
			},
			want:    []EventKind{EventDeleted},
			records: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			observed, _, rec := newObserved(t)

			if err := tt.operation(context.Background(), observed); err != nil {
				t.Fatalf("operation failed: %v", err)
			}

			if got := rec.kinds(); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected events %v, got %v", tt.want, got)
			}
			if got := len(rec.events[0].Records); got != tt.records {
				t.Errorf("expected %d records in event, got %d", tt.records, got)
			}
		})
	}
}

func TestObservedRepository_ReadsDoNotDispatch(t *testing.T) {
	observed, base, rec := newObserved(t)
	ctx := context.Background()

	if _, _, err := observed.List(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if _, err := observed.GetByID(ctx, "1"); err != nil {
		t.Fatalf("get by id failed: %v", err)
	}
	if _, err := observed.Count(ctx); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if _, err := observed.GetByIdentifierTx(ctx, nil, "2"); err != nil {
		t.Fatalf("get by identifier failed: %v", err)
	}
	if _, err := observed.Raw(ctx, "SELECT 1"); err != nil {
		t.Fatalf("raw failed: %v", err)
	}

	if len(rec.kinds()) != 0 {
		t.Errorf("expected reads not to dispatch, got %v", rec.kinds())
	}

	want := []string{"List", "GetByID", "Count", "GetByID", "Raw"}
	if got := base.Calls(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected base calls %v, got %v", want, got)
	}
}

func TestObservedRepository_FailedWriteDoesNotDispatch(t *testing.T) {
	observed, base, rec := newObserved(t)
	ctx := context.Background()

	boom := errors.New("constraint violation")
	base.SetError("Create", boom)
	base.SetError("Delete", boom)

	if _, err := observed.Create(ctx, User{ID: "4"}); !errors.Is(err, boom) {
		t.Errorf("expected base error, got %v", err)
	}
	if err := observed.Delete(ctx, User{ID: "1"}); !errors.Is(err, boom) {
		t.Errorf("expected base error, got %v", err)
	}

	if len(rec.kinds()) != 0 {
		t.Errorf("expected no events after failed writes, got %v", rec.kinds())
	}
}

func TestObservedRepository_ListenerErrorReturned(t *testing.T) {
	base := testsupport.NewUserRepository(t)
	observed := New[User](base, nil)

	syncErr := errors.New("sync failed")
	observed.Events().On(EventUpdated, func(context.Context, Event[User]) error {
		return syncErr
	})

	result, err := observed.Update(context.Background(), User{ID: "1", Name: "changed"})
	if !errors.Is(err, syncErr) {
		t.Fatalf("expected listener error, got %v", err)
	}
	if result.Name != "changed" {
		t.Errorf("expected write result alongside listener error, got %+v", result)
	}

	stored, _ := base.GetByID(context.Background(), "1")
	if stored.Name != "changed" {
		t.Error("expected write to stay applied when a listener fails")
	}
}

func openSQLite(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open("sqlite3", "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestObservedRepository_TxEventsCarryTx(t *testing.T) {
	observed, _, rec := newObserved(t)
	db := openSQLite(t)
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := observed.CreateTx(ctx, tx, User{ID: "4"}); err != nil {
		t.Fatalf("create tx failed: %v", err)
	}
	if _, err := observed.Update(ctx, User{ID: "1", Name: "changed"}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if len(rec.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(rec.events))
	}
	if rec.events[0].Tx == nil {
		t.Error("expected the transactional write to carry its tx")
	}
	if rec.events[1].Tx != nil {
		t.Error("expected the plain write to carry no tx")
	}
}

func TestObservedRepository_RunInTxDefersUntilCommit(t *testing.T) {
	observed, base, rec := newObserved(t)
	db := openSQLite(t)
	ctx := context.Background()

	err := observed.RunInTx(ctx, db, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := observed.CreateTx(ctx, tx, User{ID: "4"}); err != nil {
			return err
		}
		if err := observed.DeleteTx(ctx, tx, User{ID: "1"}); err != nil {
			return err
		}
		if n := len(rec.kinds()); n != 0 {
			t.Errorf("expected no events before commit, got %d", n)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run in tx failed: %v", err)
	}

	want := []EventKind{EventCreated, EventDeleted}
	if got := rec.kinds(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected events %v, got %v", want, got)
	}
	for _, e := range rec.events {
		if e.Tx != nil {
			t.Errorf("expected committed %s event to carry no tx", e.Kind)
		}
	}
	if base.Len() != 3 {
		t.Errorf("expected 3 records after commit, got %d", base.Len())
	}
}

func TestObservedRepository_RunInTxRollbackDropsEvents(t *testing.T) {
	observed, _, rec := newObserved(t)
	db := openSQLite(t)
	ctx := context.Background()
	boom := errors.New("abort")

	err := observed.RunInTx(ctx, db, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := observed.CreateTx(ctx, tx, User{ID: "4"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected abort error, got %v", err)
	}
	if len(rec.kinds()) != 0 {
		t.Errorf("expected no events after rollback, got %v", rec.kinds())
	}
}

func TestObservedRepository_RunInTxListenerError(t *testing.T) {
	base := testsupport.NewUserRepository(t)
	observed := New[User](base, nil)
	db := openSQLite(t)

	syncErr := errors.New("sync failed")
	observed.Events().On(EventCreated, func(context.Context, Event[User]) error {
		return syncErr
	})

	err := observed.RunInTx(context.Background(), db, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := observed.CreateTx(ctx, tx, User{ID: "4"})
		return err
	})
	if !errors.Is(err, syncErr) {
		t.Errorf("expected listener error after commit, got %v", err)
	}
}

func TestObservedRepository_RunInTxNilDB(t *testing.T) {
	observed, _, _ := newObserved(t)

	err := observed.RunInTx(context.Background(), nil, nil, func(context.Context, bun.Tx) error { return nil })
	if !errors.Is(err, ErrNilDB) {
		t.Errorf("expected ErrNilDB, got %v", err)
	}
}
