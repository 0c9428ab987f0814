package services

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
)

// fakeDB dispatches on the SQL text so each test scripts exactly the
// queries it expects. A nil func means the call is unexpected.
type fakeDB struct {
	queryRow func(sql string, args []any) Row
	query    func(sql string, args []any) (Rows, error)
	exec     func(sql string, args []any) (Result, error)
	begin    func() (Tx, error)
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) Row {
	if f.queryRow == nil {
		return fakeRow{err: fmt.Errorf("unexpected QueryRow: %s", sql)}
	}
	return f.queryRow(sql, args)
}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	if f.query == nil {
		return nil, fmt.Errorf("unexpected Query: %s", sql)
	}
	return f.query(sql, args)
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (Result, error) {
	if f.exec == nil {
		return nil, fmt.Errorf("unexpected Exec: %s", sql)
	}
	return f.exec(sql, args)
}

func (f *fakeDB) Begin(ctx context.Context) (Tx, error) {
	if f.begin == nil {
		return nil, fmt.Errorf("unexpected Begin")
	}
	return f.begin()
}

// fakeTx is a fakeDB that records its outcome.
type fakeTx struct {
	fakeDB
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	t.rolledBack = true
	return nil
}

type fakeRow struct {
	err    error
	values []any
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(r.values))
	}
	for i := range dest {
		if err := assign(dest[i], r.values[i]); err != nil {
			return err
		}
	}
	return nil
}

func rowOf(values ...any) Row { return fakeRow{values: values} }

func noRow() Row { return fakeRow{err: pgx.ErrNoRows} }

type fakeRows struct {
	rows [][]any
	idx  int
	err  error
}

func rowsOf(rows ...[]any) *fakeRows { return &fakeRows{rows: rows} }

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx <= len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	return fakeRow{values: r.rows[r.idx-1]}.Scan(dest...)
}

func (r *fakeRows) Close() {}

func (r *fakeRows) Err() error { return r.err }

type fakeResult int64

func (r fakeResult) RowsAffected() int64 { return int64(r) }

func assign(dest, value any) error {
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Ptr {
		return fmt.Errorf("assign: destination %T is not a pointer", dest)
	}
	ev := dv.Elem()
	if value == nil {
		ev.Set(reflect.Zero(ev.Type()))
		return nil
	}
	vv := reflect.ValueOf(value)
	if vv.Type().AssignableTo(ev.Type()) {
		ev.Set(vv)
		return nil
	}
	if vv.Type().ConvertibleTo(ev.Type()) {
		ev.Set(vv.Convert(ev.Type()))
		return nil
	}
	return fmt.Errorf("assign: cannot assign %T to %T", value, dest)
}

// fixture describes the acting user's profiles and relations, and answers
// the queries loadPrincipal issues.
type fixture struct {
	userID       uuid.UUID
	requesterID  uuid.UUID
	shopperID    uuid.UUID
	accountID    uuid.UUID
	hasRequester bool
	hasShopper   bool
	shopperIDs   []uuid.UUID
	requesterIDs []uuid.UUID
	now          time.Time
}

func newFixture() *fixture {
	return &fixture{
		userID:      uuid.New(),
		requesterID: uuid.New(),
		shopperID:   uuid.New(),
		accountID:   uuid.New(),
		now:         time.Now(),
	}
}

// principalRow answers loadPrincipal's profile lookups; the second return
// is false for any other query.
func (fx *fixture) principalRow(sql string) (Row, bool) {
	switch {
	case strings.Contains(sql, "FROM requesters WHERE user_id"):
		if !fx.hasRequester {
			return noRow(), true
		}
		return rowOf(fx.requesterID, fx.userID, fx.accountID, fx.now), true
	case strings.Contains(sql, "FROM shoppers WHERE user_id"):
		if !fx.hasShopper {
			return noRow(), true
		}
		return rowOf(fx.shopperID, fx.userID, fx.accountID, fx.now), true
	}
	return nil, false
}

// principalRows answers loadPrincipal's relation lookups.
func (fx *fixture) principalRows(sql string) (Rows, bool) {
	switch {
	case strings.Contains(sql, "FROM requester_shoppers WHERE requester_id"):
		rows := [][]any{}
		for _, id := range fx.shopperIDs {
			rows = append(rows, []any{id})
		}
		return rowsOf(rows...), true
	case strings.Contains(sql, "FROM requester_shoppers WHERE shopper_id"):
		rows := [][]any{}
		for _, id := range fx.requesterIDs {
			rows = append(rows, []any{id})
		}
		return rowsOf(rows...), true
	}
	return nil, false
}

// fakeKV is an in-memory KV with redis miss semantics.
type fakeKV struct {
	data   map[string]string
	setErr error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}}
}

func (k *fakeKV) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	if k.setErr != nil {
		return k.setErr
	}
	k.data[key] = value
	return nil
}

func (k *fakeKV) Get(ctx context.Context, key string) (string, error) {
	v, ok := k.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (k *fakeKV) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return nil
}

func (k *fakeKV) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(k.data, key)
	}
	return nil
}
