package apperr

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/pkg/errors"
)

func TestKindOf(t *testing.T) {
	sentinel := Conflict("STEP_DECIDED", "step already decided")

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "bare sentinel", err: sentinel, want: KindConflict},
		{name: "fmt wrapped", err: fmt.Errorf("approve: %w", sentinel), want: KindConflict},
		{name: "pkg/errors wrapped", err: pkgerrors.Wrap(sentinel, "tx"), want: KindConflict},
		{name: "plain error", err: errors.New("boom"), want: KindInternal},
		{name: "not found", err: NotFound("X", "x"), want: KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Fatalf("KindOf = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSentinelIdentity(t *testing.T) {
	a := Forbidden("NOT_AUTHOR", "not the author")
	b := Forbidden("NOT_AUTHOR", "not the author")

	if !errors.Is(pkgerrors.Wrap(a, "ctx"), a) {
		t.Fatalf("wrapped sentinel should match itself")
	}
	if errors.Is(a, b) {
		t.Fatalf("distinct sentinels with equal fields must not match")
	}
	e, ok := As(pkgerrors.Wrap(a, "ctx"))
	if !ok || e.Code != "NOT_AUTHOR" {
		t.Fatalf("As: got %+v ok=%v", e, ok)
	}
}
