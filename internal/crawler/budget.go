package crawler

import "sync"

// pageBudget enforces the global page cap. A slot is reserved before
// each fetch and released again when the fetch produces no page record,
// so the number of recorded pages can never exceed the cap even while
// fetches are in flight.
type pageBudget struct {
	mutex sync.Mutex
	max   int
	used  int
}

func newPageBudget(max int) *pageBudget {
	return &pageBudget{max: max}
}

// tryReserve claims one page slot. Returning false means the budget is
// spent and the traversal must stop.
func (b *pageBudget) tryReserve() bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.used >= b.max {
		return false
	}
	b.used++
	return true
}

// release returns a slot claimed by tryReserve. Called when a fetch
// fails or its response is skipped without creating a page record.
func (b *pageBudget) release() {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.used > 0 {
		b.used--
	}
}
