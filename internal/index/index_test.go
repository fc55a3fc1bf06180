package index

import (
	"fmt"
	"sync"
	"testing"
)

// TestVisited tests the claim semantics of the visited set.
func TestVisited(t *testing.T) {
	t.Parallel()

	t.Run("first claim wins", func(t *testing.T) {
		t.Parallel()

		v := NewVisited()
		if !v.MarkIfNotVisited("http://a.test/") {
			t.Fatal("expected first claim to succeed")
		}
		if v.MarkIfNotVisited("http://a.test/") {
			t.Error("expected second claim to fail")
		}
		if !v.Contains("http://a.test/") {
			t.Error("expected URL to be contained")
		}
		if v.Len() != 1 {
			t.Errorf("expected 1 URL, got %d", v.Len())
		}
	})

	t.Run("concurrent claims admit exactly one winner", func(t *testing.T) {
		t.Parallel()

		v := NewVisited()
		var wg sync.WaitGroup
		var mu sync.Mutex
		winners := 0

		for range 64 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if v.MarkIfNotVisited("http://a.test/page") {
					mu.Lock()
					winners++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		if winners != 1 {
			t.Errorf("expected exactly 1 winner, got %d", winners)
		}
	})
}

// TestIndex tests word-location bookkeeping.
func TestIndex(t *testing.T) {
	t.Parallel()

	t.Run("records each URL once per word", func(t *testing.T) {
		t.Parallel()

		ix := New()
		ix.Add("u1", []string{"cat", "dog", "cat"})
		ix.Add("u2", []string{"cat"})

		urls, ok := ix.Lookup("cat")
		if !ok {
			t.Fatal("expected cat to be indexed")
		}
		if len(urls) != 2 || urls[0] != "u1" || urls[1] != "u2" {
			t.Errorf("unexpected URLs for cat: %v", urls)
		}

		urls, _ = ix.Lookup("dog")
		if len(urls) != 1 || urls[0] != "u1" {
			t.Errorf("unexpected URLs for dog: %v", urls)
		}
	})

	t.Run("preserves case", func(t *testing.T) {
		t.Parallel()

		ix := New()
		ix.Add("u1", []string{"Cat", "cat"})

		if ix.Len() != 2 {
			t.Errorf("expected 2 distinct words, got %d", ix.Len())
		}
	})

	t.Run("missing word", func(t *testing.T) {
		t.Parallel()

		ix := New()
		if _, ok := ix.Lookup("fox"); ok {
			t.Error("expected fox to be absent")
		}
	})

	t.Run("words are sorted", func(t *testing.T) {
		t.Parallel()

		ix := New()
		ix.Add("u1", []string{"gamma", "alpha", "beta"})

		got := ix.Words()
		want := []string{"alpha", "beta", "gamma"}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("got %v, want %v", got, want)
			}
		}
	})

	t.Run("concurrent writers lose no updates", func(t *testing.T) {
		t.Parallel()

		ix := New()
		var wg sync.WaitGroup
		for i := range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ix.Add(fmt.Sprintf("u%d", i), []string{"shared"})
			}()
		}
		wg.Wait()

		urls, _ := ix.Lookup("shared")
		if len(urls) != 50 {
			t.Errorf("expected 50 URLs, got %d", len(urls))
		}
	})
}
