package catalog

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/prakira-pmo/prakira-pmo/internal/shared"
)

func TestMapUniqueViolationMapsConstraintToConflict(t *testing.T) {
	pgErr := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "uq_blp_reference"}
	wrapped := fmt.Errorf("catalog: insert: %w", pgErr)

	err := mapUniqueViolation(wrapped, "uq_blp_reference")
	if !errors.Is(err, shared.ErrConflict) {
		t.Fatalf("expected ErrConflict for unique violation, got: %v", err)
	}
}

func TestMapUniqueViolationIgnoresOtherConstraints(t *testing.T) {
	pgErr := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "uq_blnp_reference"}

	err := mapUniqueViolation(pgErr, "uq_blp_reference")
	if errors.Is(err, shared.ErrConflict) {
		t.Fatalf("unexpected conflict mapping for foreign constraint: %v", err)
	}
}

func TestMapUniqueViolationIgnoresOtherCodes(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23503", ConstraintName: "uq_blp_reference"}

	err := mapUniqueViolation(pgErr, "uq_blp_reference")
	if errors.Is(err, shared.ErrConflict) {
		t.Fatalf("unexpected conflict mapping for non-unique violation: %v", err)
	}
}

func TestMapUniqueViolationPassesThroughPlainErrors(t *testing.T) {
	plain := errors.New("connection reset")

	if err := mapUniqueViolation(plain, "uq_blp_reference"); err != plain {
		t.Fatalf("expected plain error untouched, got: %v", err)
	}
}
