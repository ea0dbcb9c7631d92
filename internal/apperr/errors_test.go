package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("bad"), http.StatusBadRequest},
		{"phase", Phase("closed"), http.StatusBadRequest},
		{"not found", NotFound("missing"), http.StatusNotFound},
		{"conflict", Conflict("dup"), http.StatusConflict},
		{"state", State("done"), http.StatusConflict},
		{"forbidden", Forbidden("no"), http.StatusForbidden},
		{"external", External(errors.New("timeout"), "gateway"), http.StatusBadGateway},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("cast vote: %w", Conflict("already voted").With("voted_song_id", uint(4)))
	if KindOf(err) != KindConflict {
		t.Fatalf("KindOf = %q, want conflict", KindOf(err))
	}
	var e *Error
	if !errors.As(err, &e) || e.Details["voted_song_id"] != uint(4) {
		t.Fatalf("details lost through wrapping: %+v", e)
	}
}

func TestExternalIsRetryable(t *testing.T) {
	cause := errors.New("dial tcp: i/o timeout")
	err := External(cause, "payment gateway unavailable")
	if !Retryable(err) {
		t.Error("external errors should be retryable")
	}
	if !errors.Is(err, cause) {
		t.Error("cause should unwrap")
	}
	if Retryable(Validation("x")) {
		t.Error("validation errors are not retryable")
	}
}
