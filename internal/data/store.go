package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go-wiki-store/internal/logger"

	"github.com/jmoiron/sqlx"
)

// Store is the generic CRUD engine. It borrows records for the duration of
// a single call and runs their hooks around each statement. It does not own
// the connection: closing the *sqlx.DB is up to whoever opened it.
type Store struct {
	db       *sqlx.DB
	dialect  Dialect
	registry *Registry
	log      logger.Logger
	now      func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger statements are reported to.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock replaces the clock used for store-assigned timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithDialect overrides the dialect derived from the driver name.
func WithDialect(d Dialect) Option {
	return func(s *Store) { s.dialect = d }
}

// WithRegistry replaces the schemas CreateAll works on.
func WithRegistry(r *Registry) Option {
	return func(s *Store) { s.registry = r }
}

// NewStore creates a Store over db.
func NewStore(db *sqlx.DB, opts ...Option) *Store {
	s := &Store{
		db:       db,
		registry: DefaultRegistry,
		log:      logger.Nop(),
		now:      time.Now,
	}
	if d, err := DialectFor(db.DriverName()); err == nil {
		s.dialect = d
	} else {
		s.dialect = SQLite
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB returns the underlying handle.
func (s *Store) DB() *sqlx.DB { return s.db }

// Dialect returns the dialect DDL is generated for.
func (s *Store) Dialect() Dialect { return s.dialect }

// Now returns the store clock reading in UTC, truncated to microseconds so it
// survives a round trip through every supported backend.
func (s *Store) Now() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *Store) logStatement(op, table string) {
	s.log.With(map[string]interface{}{"op": op, "table": table}).Debug("statement executed")
}

// CreateTable issues the schema's DDL. With recreate set, any existing table
// is dropped first.
func (s *Store) CreateTable(ctx context.Context, schema *Schema, recreate bool) error {
	if recreate {
		if err := s.DropTable(ctx, schema); err != nil {
			return err
		}
	}
	if _, err := s.db.ExecContext(ctx, schema.CreateSQL(s.dialect)); err != nil {
		return &SchemaError{Table: schema.Table, Err: err}
	}
	s.logStatement("create", schema.Table)
	return nil
}

// DropTable removes the schema's table if it exists.
func (s *Store) DropTable(ctx context.Context, schema *Schema) error {
	if _, err := s.db.ExecContext(ctx, schema.DropSQL()); err != nil {
		return &SchemaError{Table: schema.Table, Err: err}
	}
	s.logStatement("drop", schema.Table)
	return nil
}

// CreateAll creates every registered table in registration order. When
// recreating, the tables are dropped in reverse order first so references
// never dangle.
func (s *Store) CreateAll(ctx context.Context, recreate bool) error {
	schemas := s.registry.All()
	if recreate {
		for i := len(schemas) - 1; i >= 0; i-- {
			if err := s.DropTable(ctx, schemas[i]); err != nil {
				return err
			}
		}
	}
	for _, schema := range schemas {
		if err := s.CreateTable(ctx, schema, false); err != nil {
			return err
		}
	}
	return nil
}

// Select runs a filtered read and binds each row to a new T through its
// Fields. Zero rows yield an empty, non-nil slice.
func Select[T any, P RecordPtr[T]](ctx context.Context, s *Store, fragment string, args ...any) ([]*T, error) {
	var zero T
	schema := P(&zero).Schema()

	rows, err := s.db.QueryxContext(ctx, s.db.Rebind(schema.SelectSQL(fragment)), args...)
	if err != nil {
		return nil, storageErr("select", schema.Table, err)
	}
	defer rows.Close()

	out := make([]*T, 0)
	for rows.Next() {
		rec := new(T)
		if err := rows.Scan(P(rec).Fields()...); err != nil {
			return nil, storageErr("scan", schema.Table, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("select", schema.Table, err)
	}
	return out, nil
}

// SelectOne returns the first row matched, or ErrNotFound.
func SelectOne[T any, P RecordPtr[T]](ctx context.Context, s *Store, fragment string, args ...any) (*T, error) {
	recs, err := Select[T, P](ctx, s, fragment, args...)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNotFound
	}
	return recs[0], nil
}

// Count returns the number of rows of schema matching fragment.
func (s *Store) Count(ctx context.Context, schema *Schema, fragment string, args ...any) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, s.db.Rebind(schema.CountSQL(fragment)), args...); err != nil {
		return 0, storageErr("count", schema.Table, err)
	}
	return n, nil
}

// Exec runs a statement outside the record lifecycle. Hooks use it for
// cascades.
func (s *Store) Exec(ctx context.Context, table, query string, args ...any) (sql.Result, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, storageErr("exec", table, err)
	}
	s.logStatement("exec", table)
	return res, nil
}

// Save runs validate, before-save, persist and after-save, in that order.
// A record without an identity is inserted and receives the generated id;
// otherwise its row is updated by id. If validation fails Save returns
// ErrValidationFailed and writes nothing. On any failure before the commit
// the record's id is left untouched.
func (s *Store) Save(ctx context.Context, rec Record) error {
	schema := rec.Schema()

	if v, ok := rec.(Validator); ok {
		rec.ResetErrors()
		valid, err := v.Validate(ctx, s)
		if err != nil {
			return fmt.Errorf("validate %s: %w", schema.Table, err)
		}
		if !valid {
			return fmt.Errorf("save %s: %w", schema.Table, ErrValidationFailed)
		}
	}

	if h, ok := rec.(BeforeSaver); ok {
		if err := h.BeforeSave(ctx, s); err != nil {
			return fmt.Errorf("before save %s: %w", schema.Table, err)
		}
	}

	id, err := s.persist(ctx, rec)
	if err != nil {
		return err
	}
	rec.SetPrimaryKey(id)

	if h, ok := rec.(AfterSaver); ok {
		if err := h.AfterSave(ctx, s); err != nil {
			return fmt.Errorf("after save %s: %w", schema.Table, err)
		}
	}
	return nil
}

// persist writes the row inside its own transaction and returns the record's
// identity.
func (s *Store) persist(ctx context.Context, rec Record) (int64, error) {
	schema := rec.Schema()
	id := rec.PrimaryKey()
	op := "update"
	if id == 0 {
		op = "insert"
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, storageErr(op, schema.Table, err)
	}
	defer tx.Rollback()

	if id == 0 {
		res, err := tx.ExecContext(ctx, tx.Rebind(schema.InsertSQL()), rec.Values()...)
		if err != nil {
			return 0, storageErr(op, schema.Table, err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return 0, storageErr(op, schema.Table, err)
		}
	} else {
		args := append(rec.Values(), id)
		res, err := tx.ExecContext(ctx, tx.Rebind(schema.UpdateSQL()), args...)
		if err != nil {
			return 0, storageErr(op, schema.Table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, storageErr(op, schema.Table, err)
		}
		if n == 0 {
			return 0, storageErr(op, schema.Table, fmt.Errorf("id %d: %w", id, ErrNotFound))
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, storageErr(op, schema.Table, err)
	}
	s.logStatement(op, schema.Table)
	return id, nil
}

// Delete removes the record's row, running before-delete first and
// after-delete last. Records without an identity are ignored. The
// before-delete hook and the row removal are separate statements: if the
// second fails, whatever the hook did stays done.
func (s *Store) Delete(ctx context.Context, rec Record) error {
	id := rec.PrimaryKey()
	if id == 0 {
		return nil
	}
	schema := rec.Schema()

	if h, ok := rec.(BeforeDeleter); ok {
		if err := h.BeforeDelete(ctx, s); err != nil {
			return fmt.Errorf("before delete %s: %w", schema.Table, err)
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return storageErr("delete", schema.Table, err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, tx.Rebind(schema.DeleteSQL()), id); err != nil {
		return storageErr("delete", schema.Table, err)
	}
	if err := tx.Commit(); err != nil {
		return storageErr("delete", schema.Table, err)
	}
	s.logStatement("delete", schema.Table)

	if h, ok := rec.(AfterDeleter); ok {
		if err := h.AfterDelete(ctx, s); err != nil {
			return fmt.Errorf("after delete %s: %w", schema.Table, err)
		}
	}
	return nil
}

// IsNotFound reports whether err means a lookup matched nothing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
