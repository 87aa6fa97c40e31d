package crawler

import "sync"

// visitedSet tracks canonical URLs across one crawl. A URL moves through
// two states: enqueued (claimed for the frontier) and settled (fetched,
// then recorded or deliberately skipped). Every check-and-insert happens
// under a single lock acquisition, so two workers can never both claim
// the same URL.
type visitedSet struct {
	mutex    sync.Mutex
	enqueued map[string]bool
	settled  map[string]bool
}

func newVisitedSet() *visitedSet {
	return &visitedSet{
		enqueued: make(map[string]bool),
		settled:  make(map[string]bool),
	}
}

// markEnqueued claims a canonical URL for the frontier. It returns false
// when the URL was already enqueued or already settled, in which case
// the caller must not enqueue it again.
func (v *visitedSet) markEnqueued(canonical string) bool {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	if v.enqueued[canonical] || v.settled[canonical] {
		return false
	}
	v.enqueued[canonical] = true
	return true
}

// markSettled claims a canonical URL as fetched. It returns false when
// another task already settled the same URL, which happens when a
// redirect lands on a page that was fetched under its own address.
func (v *visitedSet) markSettled(canonical string) bool {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	if v.settled[canonical] {
		return false
	}
	v.settled[canonical] = true
	return true
}

// isSettled reports whether the canonical URL has already been fetched.
func (v *visitedSet) isSettled(canonical string) bool {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	return v.settled[canonical]
}

// uniqueURLs returns the number of distinct URLs that entered the
// frontier, for crawl statistics.
func (v *visitedSet) uniqueURLs() int {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	n := len(v.enqueued)
	for u := range v.settled {
		if !v.enqueued[u] {
			n++
		}
	}
	return n
}
