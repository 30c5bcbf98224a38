package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIs_MatchesByCode(t *testing.T) {
	err := New(CodeSessionNotFound, "session sess-1 not found")
	target := New(CodeSessionNotFound, "different message")

	if !stderrors.Is(err, target) {
		t.Fatal("expected errors with the same code to match")
	}
	other := New(CodeCharacterNotFound, "other")
	if stderrors.Is(err, other) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(CodeStorageFailure, "append event", cause)

	if !stderrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable via errors.Is")
	}
	if err.Error() != "append event" {
		t.Fatalf("message = %q, want %q", err.Error(), "append event")
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"domain error", New(CodeEventTypeMissing, "missing t"), CodeEventTypeMissing},
		{"wrapped domain error", fmt.Errorf("outer: %w", New(CodeSkillUnknown, "no such skill")), CodeSkillUnknown},
		{"plain error", stderrors.New("plain"), CodeUnknown},
		{"nil", nil, CodeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Fatalf("CodeOf = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeSessionIDRequired, http.StatusBadRequest},
		{CodeSessionNotFound, http.StatusNotFound},
		{CodeSessionAlreadyExists, http.StatusConflict},
		{CodeStorageFailure, http.StatusInternalServerError},
		{CodeUnknown, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.code.HTTPStatus(); got != tt.want {
			t.Fatalf("%s.HTTPStatus() = %d, want %d", tt.code, got, tt.want)
		}
	}
}
