package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/lib/pq"

	"appointer/shared/constant"
)

// PqCode extracts the SQLSTATE of a wrapped *pq.Error.
func PqCode(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), true
	}

	return "", false
}

// Constraint returns the violated constraint name, if any.
func Constraint(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}

	return ""
}

func IsUniqueViolation(err error) bool {
	code, ok := PqCode(err)

	return ok && code == constant.PqErrorCodeUniqueViolation
}

func IsExclusionViolation(err error) bool {
	code, ok := PqCode(err)

	return ok && code == constant.PqErrorCodeExclusionViolation
}

func IsFkViolation(err error) bool {
	code, ok := PqCode(err)

	return ok && code == constant.PqErrorCodeFkViolation
}

func IsCheckViolation(err error) bool {
	code, ok := PqCode(err)

	return ok && code == constant.PqErrorCodeCheckViolation
}

// IsTransient reports failures worth retrying: serialization conflicts,
// deadlocks, cancelled statements, timeouts and lost connections.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) {
		return true
	}

	if code, ok := PqCode(err); ok {
		switch {
		case code == constant.PqErrorCodeSerializationFailure,
			code == constant.PqErrorCodeDeadlockDetected,
			code == constant.PqErrorCodeQueryCanceled,
			strings.HasPrefix(code, constant.PqErrorClassConnectionException),
			strings.HasPrefix(code, constant.PqErrorClassInsufficientResources):
			return true
		default:
			return false
		}
	}

	var netErr net.Error

	return errors.As(err, &netErr)
}
