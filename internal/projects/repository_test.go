package projects

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/prakira-pmo/prakira-pmo/internal/shared"
)

func TestMapUniqueViolationMapsDuplicateCodeToConflict(t *testing.T) {
	pgErr := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "uq_projects_code"}
	wrapped := fmt.Errorf("projects: insert: %w", pgErr)

	err := mapUniqueViolation(wrapped, "uq_projects_code")
	if !errors.Is(err, shared.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate project code, got: %v", err)
	}
}

func TestMapUniqueViolationPassesThroughOtherErrors(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23502", ConstraintName: "uq_projects_code"}

	if err := mapUniqueViolation(pgErr, "uq_projects_code"); errors.Is(err, shared.ErrConflict) {
		t.Fatalf("unexpected conflict mapping: %v", err)
	}
}
