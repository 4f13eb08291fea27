package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"appointer/shared/failure"
)

func TestFailure_Error(t *testing.T) {
	f := &failure.Failure{
		Code:    http.StatusBadRequest,
		Message: "test error message",
	}

	if f.Error() != "test error message" {
		t.Errorf("expected error message to be 'test error message', got %s", f.Error())
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		kind failure.Kind
	}{
		{"bad request", failure.BadRequestFromString("bad"), http.StatusBadRequest, failure.KindValidation},
		{"outside availability", failure.OutsideAvailability("closed"), http.StatusUnprocessableEntity, failure.KindOutsideAvailability},
		{"overlap", failure.Overlap("taken"), http.StatusConflict, failure.KindOverlap},
		{"not found", failure.NotFound("booking"), http.StatusNotFound, failure.KindNotFound},
		{"forbidden", failure.Forbidden("no"), http.StatusForbidden, failure.KindForbidden},
		{"unauthorized", failure.Unauthorized("who"), http.StatusUnauthorized, failure.KindUnauthorized},
		{"storage", failure.Storage(errors.New("conn reset")), http.StatusServiceUnavailable, failure.KindStorage},
		{"internal", failure.InternalError(errors.New("boom")), http.StatusInternalServerError, failure.KindInternal},
		{"predefined forbidden", failure.ForbiddenError, http.StatusForbidden, failure.KindForbidden},
		{"predefined page", failure.InvalidPageParam, http.StatusBadRequest, failure.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := failure.GetCode(tt.err); got != tt.code {
				t.Errorf("expected code %d, got %d", tt.code, got)
			}
			if got := failure.GetKind(tt.err); got != tt.kind {
				t.Errorf("expected kind %s, got %s", tt.kind, got)
			}
		})
	}
}

func TestBadRequest(t *testing.T) {
	if failure.BadRequest(nil) != nil {
		t.Error("expected nil for nil error")
	}

	f, ok := failure.BadRequest(errors.New("validation failed")).(*failure.Failure)
	if !ok {
		t.Fatal("expected *failure.Failure")
	}
	if f.Code != http.StatusBadRequest || f.Message != "validation failed" {
		t.Errorf("unexpected failure %+v", f)
	}
}

func TestStorage_HidesCause(t *testing.T) {
	cause := errors.New("pq: could not serialize access")
	err := failure.Storage(cause)

	if err.Error() == cause.Error() {
		t.Error("storage failure must not expose backend detail")
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
	if failure.Storage(nil) != nil {
		t.Error("expected nil for nil error")
	}
}

func TestGetKind_Wrapped(t *testing.T) {
	err := fmt.Errorf("creating booking: %w", failure.Overlap("slot taken"))

	if failure.GetKind(err) != failure.KindOverlap {
		t.Errorf("expected overlap, got %s", failure.GetKind(err))
	}
	if failure.GetKind(errors.New("plain")) != failure.KindInternal {
		t.Error("expected foreign errors to be internal")
	}
	if failure.GetCode(errors.New("plain")) != http.StatusInternalServerError {
		t.Error("expected foreign errors to map to 500")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"storage", failure.Storage(errors.New("timeout")), true},
		{"wrapped storage", fmt.Errorf("insert: %w", failure.Storage(errors.New("x"))), true},
		{"overlap", failure.Overlap("taken"), false},
		{"validation", failure.BadRequestFromString("bad"), false},
		{"nil", nil, false},
		{"foreign", errors.New("x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := failure.IsRetryable(tt.err); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
