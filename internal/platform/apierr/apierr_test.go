package apierr

import (
	"errors"
	"net/http"
	"testing"
)

func TestInternalHidesCauseButKeepsIt(t *testing.T) {
	t.Parallel()
	cause := errors.New("pq: connection refused")
	ae := Internal(cause)

	if ae.Status != http.StatusInternalServerError || ae.Code != CodeInternal {
		t.Fatalf("unexpected taxonomy: status=%d code=%q", ae.Status, ae.Code)
	}
	if got := ae.Error(); got != "internal error" {
		t.Fatalf("caller-visible message leaks detail: %q", got)
	}
	// The cause stays on the chain for server-side logging.
	if !errors.Is(ae, cause) {
		t.Fatal("cause dropped from the error chain")
	}
}

func TestResolveDefaultsUntypedToInternal(t *testing.T) {
	t.Parallel()
	cause := errors.New("boom")

	ae := Resolve(cause)
	if ae.Status != http.StatusInternalServerError || ae.Code != CodeInternal {
		t.Fatalf("untyped error not defaulted: status=%d code=%q", ae.Status, ae.Code)
	}
	if got := ae.Error(); got != "internal error" {
		t.Fatalf("untyped cause leaked: %q", got)
	}

	typed := NotFound(errors.New("shipment 7 not found"))
	if got := Resolve(typed); got != typed {
		t.Fatalf("typed error not passed through: %+v", got)
	}
}
