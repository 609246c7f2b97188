package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"fleet/shared/failure"
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

func TestPredefinedFailures(t *testing.T) {
	tests := []struct {
		name    string
		failure *failure.Failure
		code    int
		message string
	}{
		{
			name:    "InvalidPageParam",
			failure: failure.InvalidPageParam,
			code:    http.StatusBadRequest,
			message: "invalid page parameter",
		},
		{
			name:    "InvalidLimitParam",
			failure: failure.InvalidLimitParam,
			code:    http.StatusBadRequest,
			message: "invalid limit parameter",
		},
		{
			name:    "ForbiddenError",
			failure: failure.ForbiddenError,
			code:    http.StatusForbidden,
			message: "You don't have the required permissions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.failure.Code != tt.code {
				t.Errorf("expected code to be %d, got %d", tt.code, tt.failure.Code)
			}
			if tt.failure.Message != tt.message {
				t.Errorf("expected message to be %s, got %s", tt.message, tt.failure.Message)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		build    func() error
		wantCode int
		wantMsg  string
	}{
		{
			name:     "BadRequest",
			build:    func() error { return failure.BadRequest(errors.New("validation failed")) },
			wantCode: http.StatusBadRequest,
			wantMsg:  "validation failed",
		},
		{
			name:     "BadRequestFromString",
			build:    func() error { return failure.BadRequestFromString("custom bad request") },
			wantCode: http.StatusBadRequest,
			wantMsg:  "custom bad request",
		},
		{
			name:     "UnprocessableEntity",
			build:    func() error { return failure.UnprocessableEntity("rule violated") },
			wantCode: http.StatusUnprocessableEntity,
			wantMsg:  "rule violated",
		},
		{
			name:     "Unauthorized",
			build:    func() error { return failure.Unauthorized("missing token") },
			wantCode: http.StatusUnauthorized,
			wantMsg:  "missing token",
		},
		{
			name:     "InternalError",
			build:    func() error { return failure.InternalError(errors.New("boom")) },
			wantCode: http.StatusInternalServerError,
			wantMsg:  "boom",
		},
		{
			name:     "NotFound",
			build:    func() error { return failure.NotFound("booking not found") },
			wantCode: http.StatusNotFound,
			wantMsg:  "booking not found",
		},
		{
			name:     "Conflict",
			build:    func() error { return failure.Conflict("dates taken") },
			wantCode: http.StatusConflict,
			wantMsg:  "dates taken",
		},
		{
			name:     "Forbidden",
			build:    func() error { return failure.Forbidden("not yours") },
			wantCode: http.StatusForbidden,
			wantMsg:  "not yours",
		},
		{
			name:     "GatewayTimeout",
			build:    func() error { return failure.GatewayTimeout("storage timeout") },
			wantCode: http.StatusGatewayTimeout,
			wantMsg:  "storage timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build()

			f, ok := err.(*failure.Failure)
			if !ok {
				t.Fatalf("expected result to be *failure.Failure, got %T", err)
			}

			if f.Code != tt.wantCode {
				t.Errorf("expected code to be %d, got %d", tt.wantCode, f.Code)
			}

			if f.Message != tt.wantMsg {
				t.Errorf("expected message to be %s, got %s", tt.wantMsg, f.Message)
			}
		})
	}
}

func TestNilConstructors(t *testing.T) {
	if failure.BadRequest(nil) != nil {
		t.Error("expected BadRequest(nil) to be nil")
	}

	if failure.InternalError(nil) != nil {
		t.Error("expected InternalError(nil) to be nil")
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "failure error",
			err:      failure.NotFound("missing"),
			expected: http.StatusNotFound,
		},
		{
			name:     "wrapped failure error",
			err:      fmt.Errorf("context: %w", failure.Conflict("dates taken")),
			expected: http.StatusConflict,
		},
		{
			name:     "plain error defaults to internal",
			err:      errors.New("boom"),
			expected: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := failure.GetCode(tt.err); code != tt.expected {
				t.Errorf("expected code %d, got %d", tt.expected, code)
			}
		})
	}
}
