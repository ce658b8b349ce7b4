package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	t.Parallel()

	err := New(CodeCooldownActive, "cooldown active")
	target := New(CodeCooldownActive, "different message")
	if !stderrors.Is(err, target) {
		t.Fatal("expected errors with same code to match")
	}

	other := New(CodeNotFound, "not found")
	if stderrors.Is(err, other) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("disk full")
	err := Wrap(CodeStorageFault, "append placement", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be found in chain")
	}
}

func TestCodeOf(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("handler: %w", New(CodeInvalidColor, "bad color"))
	if got := CodeOf(wrapped); got != CodeInvalidColor {
		t.Fatalf("code = %q, want %q", got, CodeInvalidColor)
	}
	if got := CodeOf(stderrors.New("plain")); got != CodeUnknown {
		t.Fatalf("code = %q, want %q", got, CodeUnknown)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code Code
		want int
	}{
		{CodeInvalidCoordinates, http.StatusBadRequest},
		{CodeInvalidColor, http.StatusBadRequest},
		{CodeCooldownActive, http.StatusTooManyRequests},
		{CodeNotFound, http.StatusNotFound},
		{CodeStorageFault, http.StatusInternalServerError},
		{CodeUnknown, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.code.HTTPStatus(); got != tc.want {
			t.Fatalf("%s status = %d, want %d", tc.code, got, tc.want)
		}
	}
}
