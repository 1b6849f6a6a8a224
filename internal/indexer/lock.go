package indexer

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/dshills/sitesearch-mcp/internal/source"
)

// IndexLock admits one sync at a time and remembers what that sync covers.
// A second TryAcquire fails instead of queueing.
type IndexLock struct {
	holder atomic.Pointer[string]
}

// TryAcquire takes the lock for the named sources and reports whether it
// was free
func (l *IndexLock) TryAcquire(names ...string) bool {
	holder := strings.Join(names, ",")
	return l.holder.CompareAndSwap(nil, &holder)
}

// Release frees the lock. Only the caller whose TryAcquire succeeded may
// call it.
func (l *IndexLock) Release() {
	l.holder.Store(nil)
}

// Holder returns the sources of the running sync, if any
func (l *IndexLock) Holder() (string, bool) {
	p := l.holder.Load()
	if p == nil {
		return "", false
	}
	return *p, true
}

func (idx *Indexer) acquire(sources []source.Source) error {
	names := make([]string, len(sources))
	for i, src := range sources {
		names[i] = src.Name()
	}
	if idx.lock.TryAcquire(names...) {
		return nil
	}
	if holder, ok := idx.lock.Holder(); ok && holder != "" {
		return fmt.Errorf("%w: syncing %s", ErrIndexingInProgress, holder)
	}
	return ErrIndexingInProgress
}
