package pgsql

import (
	"errors"
	"fmt"
	"testing"

	"github.com/SscSPs/collectibles_market/internal/apperrors"
	portsrepo "github.com/SscSPs/collectibles_market/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestWriteErr_ClassifiesPgCodes(t *testing.T) {
	unique := &pgconn.PgError{Code: codeUniqueViolation}
	serialization := fmt.Errorf("exec: %w", &pgconn.PgError{Code: codeSerializationFailure})
	other := &pgconn.PgError{Code: "23502"}

	assert.ErrorIs(t, writeErr(unique, portsrepo.ErrConflictDetected, "item"), portsrepo.ErrConflictDetected)
	assert.ErrorIs(t, writeErr(unique, apperrors.ErrDuplicate, "series"), apperrors.ErrDuplicate)
	assert.ErrorIs(t, writeErr(serialization, apperrors.ErrDuplicate, "series"), portsrepo.ErrConflictDetected)

	var appErr *apperrors.AppError
	assert.True(t, errors.As(writeErr(other, portsrepo.ErrConflictDetected, "item"), &appErr))
	assert.Equal(t, 500, appErr.Code)
}

func TestReadErr_MapsNoRows(t *testing.T) {
	assert.Equal(t, apperrors.ErrNotFound, readErr(pgx.ErrNoRows, "account"))
	assert.NotErrorIs(t, readErr(errors.New("conn reset"), "account"), apperrors.ErrNotFound)
}

func TestReadErr_ClassifiesRetryableCodes(t *testing.T) {
	s := &Store{}
	for _, code := range []string{codeDeadlockDetected, codeSerializationFailure} {
		err := readErr(fmt.Errorf("scan: %w", &pgconn.PgError{Code: code}), "account")
		assert.ErrorIs(t, err, portsrepo.ErrConflictDetected, code)
		assert.True(t, s.IsConflict(err), code)
	}

	var appErr *apperrors.AppError
	assert.True(t, errors.As(readErr(&pgconn.PgError{Code: "57014"}, "account"), &appErr))
	assert.Equal(t, 500, appErr.Code)
}

func TestStore_IsConflict(t *testing.T) {
	s := &Store{}
	assert.True(t, s.IsConflict(fmt.Errorf("%w: mint number", portsrepo.ErrConflictDetected)))
	assert.False(t, s.IsConflict(apperrors.ErrConflict), "sold out is final")
	assert.True(t, isRetryable(&pgconn.PgError{Code: codeDeadlockDetected}))
}
