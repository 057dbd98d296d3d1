package cache

import (
	"log/slog"
	"time"
)

// Cache is the read-through contract used by the draft service.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V)
	Delete(key K)
	Size() int
}

// Cleaner is implemented by caches that can drop expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Janitor periodically cleans the registered caches until stopped.
type Janitor struct {
	caches []Cleaner
	stop   chan struct{}
	done   chan struct{}
}

func NewJanitor(caches ...Cleaner) *Janitor {
	return &Janitor{
		caches: caches,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start launches the cleanup loop.
func (j *Janitor) Start(interval time.Duration) {
	go j.run(interval)
}

func (j *Janitor) run(interval time.Duration) {
	defer close(j.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed := 0
			for _, c := range j.caches {
				removed += c.CleanExpired()
			}
			if removed > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", removed)
			}
		case <-j.stop:
			return
		}
	}
}

// Stop ends the loop and waits for it to exit. Start must have been called.
func (j *Janitor) Stop() {
	close(j.stop)
	<-j.done
}
