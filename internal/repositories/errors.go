package repositories

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound reports a missing row, or a write referencing one.
	ErrNotFound = errors.New("record not found")
	// ErrConflict reports a write that would duplicate a unique username,
	// email or like.
	ErrConflict = errors.New("record conflict")
)

// SQLSTATE codes the postgres repositories translate.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// translate maps driver errors onto ErrNotFound and ErrConflict, wrapping
// anything else with op.
func translate(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return ErrConflict
		case foreignKeyViolation:
			return ErrNotFound
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
