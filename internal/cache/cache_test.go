package cache

import (
	"context"
	"testing"
	"time"
)

func TestNoopCache(t *testing.T) {
	var c Cache = NewNoop()
	ctx := context.Background()

	if err := c.Set(ctx, KeyMechanics, []byte("x"), time.Minute); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if _, ok, err := c.Get(ctx, KeyMechanics); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := c.DeletePrefix(ctx, PrefixAppointments); err != nil {
		t.Fatalf("DeletePrefix error: %v", err)
	}
}

func TestNewRedisFromURLInvalid(t *testing.T) {
	if _, err := NewRedisFromURL("http://not-redis"); err == nil {
		t.Fatalf("expected error for non redis scheme")
	}
}
