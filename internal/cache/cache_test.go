package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := New[string, int](10, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache returned ok")
	}

	c.Set("a", 1)
	v, ok := c.Get("a")
	if !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v; want 1, true", v, ok)
	}

	c.Set("a", 2)
	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("Get(a) after overwrite = %d, want 2", v)
	}
}

func TestLRUEviction(t *testing.T) {
	c := New[string, int](2, 0)
	c.Set("a", 1)
	c.Set("b", 2)

	// Touch "a" so "b" is the eviction candidate.
	c.Get("a")
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("least recently used entry survived eviction")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("recently used entry was evicted")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestTTLExpiry(t *testing.T) {
	c := New[string, int](10, 0)
	c.SetWithTTL("a", 1, 10*time.Millisecond)
	c.SetWithTTL("b", 2, 0) // never expires

	if _, ok := c.Get("a"); !ok {
		t.Fatal("entry expired immediately")
	}
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("entry survived past its TTL")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("zero-TTL entry expired")
	}
}

func TestGetOrLoad(t *testing.T) {
	c := New[string, int](10, 0)
	var loads atomic.Int32

	load := func() (int, error) {
		loads.Add(1)
		return 42, nil
	}
	for i := 0; i < 3; i++ {
		v, err := c.GetOrLoad("k", load)
		if err != nil || v != 42 {
			t.Fatalf("GetOrLoad = %d, %v", v, err)
		}
	}
	if got := loads.Load(); got != 1 {
		t.Errorf("loader ran %d times, want 1", got)
	}
}

func TestGetOrLoadError(t *testing.T) {
	c := New[string, int](10, 0)
	boom := errors.New("load failed")

	if _, err := c.GetOrLoad("k", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Errorf("error = %v, want %v", err, boom)
	}
	// A failed load must not be cached.
	v, err := c.GetOrLoad("k", func() (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Errorf("GetOrLoad after failure = %d, %v; want 7, nil", v, err)
	}
}

func TestGetOrLoadSingleflight(t *testing.T) {
	c := New[string, int](10, 0)
	var loads atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrLoad("k", func() (int, error) {
				loads.Add(1)
				<-release
				return 99, nil
			})
			if err != nil || v != 99 {
				t.Errorf("GetOrLoad = %d, %v", v, err)
			}
		}()
	}
	// Give the goroutines a chance to pile up on the same key.
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := loads.Load(); got != 1 {
		t.Errorf("loader ran %d times under concurrency, want 1", got)
	}
}

func TestInvalidateAndFlush(t *testing.T) {
	c := New[string, int](10, 0)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Error("invalidated entry still present")
	}

	c.Flush()
	if c.Len() != 0 {
		t.Errorf("Len after Flush = %d, want 0", c.Len())
	}
}

func TestStats(t *testing.T) {
	c := New[string, int](1, 0)
	c.Set("a", 1)
	c.Get("a")
	c.Get("missing")
	c.Set("b", 2) // evicts "a"

	s := c.Stats()
	if s.Hits != 1 || s.Misses != 1 {
		t.Errorf("hits/misses = %d/%d, want 1/1", s.Hits, s.Misses)
	}
	if s.Evictions != 1 {
		t.Errorf("evictions = %d, want 1", s.Evictions)
	}
	if s.Entries != 1 {
		t.Errorf("entries = %d, want 1", s.Entries)
	}
	if s.HitRate != 0.5 {
		t.Errorf("hit rate = %v, want 0.5", s.HitRate)
	}
}
