package index

import "sync"

// Visited is the set of URLs a crawl has claimed.
// It only grows during a crawl.
type Visited struct {
	mu   sync.Mutex
	urls map[string]struct{}
}

// NewVisited returns an empty set.
func NewVisited() *Visited {
	return &Visited{urls: make(map[string]struct{})}
}

// MarkIfNotVisited adds pageURL to the set and reports whether the caller
// claimed it. Check and insert happen under one lock, so two workers can
// never both claim the same URL.
func (v *Visited) MarkIfNotVisited(pageURL string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.urls[pageURL]; ok {
		return false
	}
	v.urls[pageURL] = struct{}{}
	return true
}

// Contains reports whether pageURL has been claimed.
func (v *Visited) Contains(pageURL string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.urls[pageURL]
	return ok
}

// Len returns the number of claimed URLs.
func (v *Visited) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.urls)
}
