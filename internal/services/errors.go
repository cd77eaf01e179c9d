package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Kind classifies a service failure for the transport layer.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindIntegrity    Kind = "integrity"
	KindOperational  Kind = "operational"
	KindUnauthorized Kind = "unauthorized"
)

// Error is the only error type returned across the service boundary.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	// Constraint names the violated constraint for KindIntegrity, when known.
	Constraint string
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Constraint != "" {
		msg = fmt.Sprintf("%s (constraint %s)", msg, e.Constraint)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func ValidationError(op, msg string) *Error {
	return &Error{Kind: KindValidation, Op: op, Msg: msg}
}

func NotFoundError(op, msg string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Msg: msg}
}

func UnauthorizedError(op, msg string) *Error {
	return &Error{Kind: KindUnauthorized, Op: op, Msg: msg}
}

func OperationalError(op, msg string, err error) *Error {
	return &Error{Kind: KindOperational, Op: op, Msg: msg, Err: err}
}

// KindOf returns the kind of a service error, or KindOperational for anything else.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindOperational
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ClassifyDBError maps a storage error onto a service error. Errors that are
// already classified pass through unchanged.
func ClassifyDBError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return OperationalError(op, "request canceled", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if strings.HasPrefix(pgErr.Code, "23") {
			return &Error{
				Kind:       KindIntegrity,
				Op:         op,
				Msg:        integrityMessage(pgErr.Code),
				Constraint: pgErr.ConstraintName,
				Err:        err,
			}
		}
		return OperationalError(op, "database error", err)
	}

	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &Error{Kind: KindIntegrity, Op: op, Msg: "duplicate key", Err: err}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &Error{Kind: KindIntegrity, Op: op, Msg: "foreign key violation", Err: err}
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return &Error{Kind: KindIntegrity, Op: op, Msg: "check constraint violation", Err: err}
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return &Error{Kind: KindIntegrity, Op: op, Msg: "duplicate key", Err: err}
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return &Error{Kind: KindIntegrity, Op: op, Msg: "foreign key violation", Err: err}
	case strings.Contains(msg, "NOT NULL constraint failed"):
		return &Error{Kind: KindIntegrity, Op: op, Msg: "not-null violation", Err: err}
	case strings.Contains(msg, "CHECK constraint failed"):
		return &Error{Kind: KindIntegrity, Op: op, Msg: "check constraint violation", Err: err}
	}
	return OperationalError(op, "database error", err)
}

// isUniqueViolation reports whether err came from a unique index.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func integrityMessage(code string) string {
	switch code {
	case "23505":
		return "duplicate key"
	case "23503":
		return "foreign key violation"
	case "23502":
		return "not-null violation"
	case "23514":
		return "check constraint violation"
	default:
		return "integrity constraint violation"
	}
}
