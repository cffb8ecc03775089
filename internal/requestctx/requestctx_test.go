package requestctx

import (
	"context"
	"testing"
)

func TestIDRoundTrip(t *testing.T) {
	ctx := WithID(context.Background(), "req-123")
	if got := ID(ctx); got != "req-123" {
		t.Fatalf("got %q", got)
	}
}

func TestIDAbsent(t *testing.T) {
	if got := ID(context.Background()); got != "" {
		t.Fatalf("expected empty id, got %q", got)
	}
}

type otherKey string

func TestIDKeyDoesNotCollideWithForeignKeys(t *testing.T) {
	ctx := context.WithValue(context.Background(), otherKey("request_id"), "spoofed")
	if got := ID(ctx); got != "" {
		t.Fatalf("foreign-keyed value leaked through: %q", got)
	}
}
