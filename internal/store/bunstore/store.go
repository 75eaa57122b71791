package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"slotbook/internal/store"
)

const pgUniqueViolation = "23505"

// Store is the SQL-backed store.Store. The same queries serve Postgres and
// SQLite; only locking and error decoding depend on the dialect.
type Store struct {
	db           *bun.DB
	owners       *OwnerRepo
	availability *AvailabilityRepo
	appointments *AppointmentRepo
}

var _ store.Store = (*Store)(nil)

func New(db *bun.DB) *Store {
	return &Store{
		db:           db,
		owners:       NewOwnerRepo(db),
		availability: NewAvailabilityRepo(db),
		appointments: NewAppointmentRepo(db),
	}
}

func (s *Store) Owners() store.OwnerStore             { return s.owners }
func (s *Store) Availability() store.AvailabilityStore { return s.availability }
func (s *Store) Appointments() store.AppointmentStore  { return s.appointments }
func (s *Store) DB() *bun.DB                           { return s.db }

func (s *Store) Close() error {
	return Close(s.db)
}

// lockOwner serializes writers for one owner until tx ends. SQLite runs on a
// single connection, so it needs no extra lock.
func lockOwner(ctx context.Context, tx bun.Tx, ownerID uuid.UUID) error {
	if tx.Dialect().Name() != dialect.PG {
		return nil
	}
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", ownerID.String()).Exec(ctx)
	return err
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}
