package cache

import (
	"testing"
	"time"
)

func TestCache_SetGet(t *testing.T) {
	c := New(time.Minute)
	defer c.Stop()

	c.Set("stats:overview", 42)

	v, ok := c.Get("stats:overview")
	if !ok {
		t.Fatal("expected a hit")
	}
	if v.(int) != 42 {
		t.Errorf("Get() = %v, want 42", v)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("expected a miss for an unknown key")
	}
}

func TestCache_Expiry(t *testing.T) {
	c := New(time.Minute)
	defer c.Stop()

	c.SetWithTTL("snapshot", "stale", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("snapshot"); ok {
		t.Error("expected the entry to expire")
	}
}

func TestCache_Overwrite(t *testing.T) {
	c := New(time.Minute)
	defer c.Stop()

	c.Set("key", "first")
	c.Set("key", "second")

	v, _ := c.Get("key")
	if v != "second" {
		t.Errorf("Get() = %v, want 'second'", v)
	}
}

func TestCache_Delete(t *testing.T) {
	c := New(time.Minute)
	defer c.Stop()

	c.Set("key", "value")
	c.Delete("key")

	if _, ok := c.Get("key"); ok {
		t.Error("expected the entry to be gone")
	}
}
