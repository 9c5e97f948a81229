package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("duplicate key value violates unique constraint")
	ErrForeignKey = errors.New("foreign key constraint violation")
	ErrNotNull    = errors.New("not null constraint violation")
)

// PostgreSQL SQLSTATE codes of the integrity_constraint_violation class.
const (
	pgNotNullViolation    = "23502"
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// ConstraintError pairs a sentinel with the engine error that caused it. Both
// are reachable through errors.Is and errors.As.
type ConstraintError struct {
	Kind error
	Err  error
}

func (e *ConstraintError) Error() string {
	return e.Kind.Error() + ": " + e.Err.Error()
}

func (e *ConstraintError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// TranslateError wraps driver errors from PostgreSQL (pgx or lib/pq) and SQLite
// with the matching sentinel. Unknown errors are returned unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &ConstraintError{Kind: ErrNotFound, Err: err}
	}
	if kind := classify(err); kind != nil {
		return &ConstraintError{Kind: kind, Err: err}
	}
	return err
}

func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fromSQLState(pgErr.Code)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fromSQLState(string(pqErr.Code))
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return ErrDuplicate
		case sqlite3.ErrConstraintForeignKey:
			return ErrForeignKey
		case sqlite3.ErrConstraintNotNull:
			return ErrNotNull
		}
	}
	return nil
}

func fromSQLState(code string) error {
	switch code {
	case pgUniqueViolation:
		return ErrDuplicate
	case pgForeignKeyViolation:
		return ErrForeignKey
	case pgNotNullViolation:
		return ErrNotNull
	}
	return nil
}
