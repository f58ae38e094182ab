package cache

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/faustbrian/jsgrep/regex"
)

func TestCompileReturnsCachedInstance(t *testing.T) {
	c := New(nil, 0)
	p1, err := c.Compile(`\d+`, regex.FlagGlobal)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := c.Compile(`\d+`, regex.FlagGlobal)
	if err != nil {
		t.Fatal(err)
	}
	if p1 != p2 {
		t.Error("second Compile built a new Pattern instead of hitting the cache")
	}
}

func TestCompileDistinguishesFlags(t *testing.T) {
	c := New(nil, 0)
	p1, _ := c.Compile("abc", 0)
	p2, _ := c.Compile("abc", regex.FlagIgnoreCase)
	if p1 == p2 {
		t.Error("same instance for different flag sets")
	}
}

func TestCachedPatternMatches(t *testing.T) {
	c := New(nil, 0)
	p, err := c.Compile("h(ello)", 0)
	if err != nil {
		t.Fatal(err)
	}
	res := p.Exec("hello world")
	if !res.Matched || res.Index != 0 || res.Captures[0].Value != "ello" {
		t.Errorf("cached pattern result = %+v", res)
	}
}

func TestStoreTierPromotion(t *testing.T) {
	store := NewMemoryStore()
	c1 := New(store, time.Minute)
	p1, err := c1.Compile("fox", 0)
	if err != nil {
		t.Fatal(err)
	}

	// A second cache over the same store must see the entry without
	// recompiling.
	c2 := New(store, time.Minute)
	p2, err := c2.Compile("fox", 0)
	if err != nil {
		t.Fatal(err)
	}
	if p1 != p2 {
		t.Error("store tier missed; pattern was recompiled")
	}
}

func TestStoreTTLExpiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	c1 := New(store, time.Minute)
	p1, err := c1.Compile("fox", 0)
	if err != nil {
		t.Fatal(err)
	}

	now = now.Add(2 * time.Minute)

	c2 := New(store, time.Minute)
	p2, err := c2.Compile("fox", 0)
	if err != nil {
		t.Fatal(err)
	}
	if p1 == p2 {
		t.Error("expired store entry was served")
	}
	if !p2.Test("the fox") {
		t.Error("recompiled pattern does not match")
	}
}

func TestFlushClearsBothTiers(t *testing.T) {
	store := NewMemoryStore()
	c := New(store, 0)
	p1, _ := c.Compile("fox", 0)
	c.Flush()

	if _, ok := store.Get(Key("fox", 0)); ok {
		t.Error("store still holds the entry after Flush")
	}
	p2, _ := c.Compile("fox", 0)
	if p1 == p2 {
		t.Error("Flush did not evict the in-process tier")
	}
}

func TestCompileErrorNotCached(t *testing.T) {
	store := NewMemoryStore()
	c := New(store, 0)
	_, err := c.Compile("[unclosed", 0)
	var pe *regex.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *regex.ParseError", err)
	}
	if _, ok := store.Get(Key("[unclosed", 0)); ok {
		t.Error("failed compilation was stored")
	}
}

func TestKeyStability(t *testing.T) {
	if Key("abc", regex.FlagGlobal) != Key("abc", regex.FlagGlobal) {
		t.Error("same inputs hashed to different keys")
	}
	if Key("abc", 0) == Key("abc", regex.FlagGlobal) {
		t.Error("flags are not part of the key")
	}
	if Key("abc", 0) == Key("abd", 0) {
		t.Error("source is not part of the key")
	}
}

func TestConcurrentCompile(t *testing.T) {
	c := New(NewMemoryStore(), time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				p, err := c.Compile(`(\w+)@(\w+)`, 0)
				if err != nil {
					t.Error(err)
					return
				}
				if !p.Test("user@example") {
					t.Error("cached pattern failed to match")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestDefaultCache(t *testing.T) {
	Flush()
	p1, err := Compile("abc", 0)
	if err != nil {
		t.Fatal(err)
	}
	p2, _ := Compile("abc", 0)
	if p1 != p2 {
		t.Error("package-level Compile bypassed the default cache")
	}
}
