package query

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Kind classifies a failed query.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalid
	KindConstraint
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindConstraint:
		return "constraint"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Kind sentinels, matched with errors.Is against any *Error.
var (
	ErrInvalid     = errors.New("invalid query")
	ErrConstraint  = errors.New("constraint violation")
	ErrUnavailable = errors.New("database unavailable")
)

// Builder misuse.
var (
	ErrConflictingMode    = errors.New("insert, update and delete are mutually exclusive")
	ErrInvalidIdentifier  = errors.New("invalid identifier")
	ErrInvalidLimit       = errors.New("limit must be positive")
	ErrInvalidOffset      = errors.New("offset must not be negative")
	ErrEmptyPayload       = errors.New("no columns to write")
	ErrUnfilteredMutation = errors.New("update and delete require at least one filter")
	ErrNoConnection       = errors.New("no database handle")
)

// Error is the failure carried by a Result.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("query %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrInvalid:
		return e.Kind == KindInvalid
	case ErrConstraint:
		return e.Kind == KindConstraint
	case ErrUnavailable:
		return e.Kind == KindUnavailable
	}
	return false
}

// KindOf returns the kind of err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Kind
	}
	return KindUnknown
}

func invalid(op string, err error) *Error {
	return &Error{Kind: KindInvalid, Op: op, Err: err}
}

// classify maps a driver error to a Kind.
func classify(op string, err error) *Error {
	return &Error{Kind: kindOf(err), Op: op, Err: err}
}

func kindOf(err error) Kind {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, sql.ErrConnDone) || errors.Is(err, driver.ErrBadConn) {
		return KindUnavailable
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "23"): // integrity_constraint_violation
			return KindConstraint
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "57P"):
			return KindUnavailable
		}
		return KindUnknown
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_CONSTRAINT:
			return KindConstraint
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_CANTOPEN:
			return KindUnavailable
		}
		return KindUnknown
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindUnavailable
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"),
		strings.Contains(msg, "FOREIGN KEY constraint failed"),
		strings.Contains(msg, "duplicate key value"):
		return KindConstraint
	case strings.Contains(msg, "database is closed"):
		return KindUnavailable
	}
	return KindUnknown
}
