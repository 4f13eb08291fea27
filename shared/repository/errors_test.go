package repository_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"appointer/shared/repository"
)

func wrapped(code string) error {
	return fmt.Errorf("failed to insert data (booking): %w", &pq.Error{Code: pq.ErrorCode(code), Constraint: "bookings_no_overlap"})
}

func TestViolations(t *testing.T) {
	assert.True(t, repository.IsUniqueViolation(wrapped("23505")))
	assert.False(t, repository.IsUniqueViolation(wrapped("23P01")))
	assert.True(t, repository.IsExclusionViolation(wrapped("23P01")))
	assert.True(t, repository.IsFkViolation(wrapped("23503")))
	assert.False(t, repository.IsFkViolation(errors.New("plain")))
	assert.True(t, repository.IsCheckViolation(wrapped("23514")))
	assert.False(t, repository.IsCheckViolation(wrapped("23505")))
	assert.False(t, repository.IsTransient(wrapped("23514")))
	assert.False(t, repository.IsTransient(wrapped("22008")))
	assert.Equal(t, "bookings_no_overlap", repository.Constraint(wrapped("23P01")))
	assert.Empty(t, repository.Constraint(errors.New("plain")))
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"serialization failure", wrapped("40001"), true},
		{"deadlock", wrapped("40P01"), true},
		{"query canceled", wrapped("57014"), true},
		{"connection failure", wrapped("08006"), true},
		{"too many connections", wrapped("53300"), true},
		{"unique violation", wrapped("23505"), false},
		{"syntax error", wrapped("42601"), false},
		{"deadline", fmt.Errorf("select: %w", context.DeadlineExceeded), true},
		{"bad conn", driver.ErrBadConn, true},
		{"network", &net.OpError{Op: "dial", Err: errors.New("refused")}, true},
		{"plain", errors.New("plain"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repository.IsTransient(tt.err))
		})
	}
}
