// Package syncutil provides a debug-instrumented RWMutex, logging when a
// lock is held for longer than a threshold. Used by the peer registry,
// whose single exclusive lock is the one contended resource in the spec's
// concurrency model (see SPEC_FULL.md §5 / DESIGN.md internal/peer entry).
package syncutil

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/mojtab23/mojika/internal/logger"
)

const threshold = 100 * time.Millisecond

var debug = logger.Debug("syncutil")

// RWMutex is a drop-in for sync.RWMutex that logs slow holds when the
// MOJIKA_TRACE facility "syncutil" is enabled.
type RWMutex struct {
	mut      sync.RWMutex
	start    time.Time
	lockedAt string
}

func (m *RWMutex) Lock() {
	m.mut.Lock()
	m.start = time.Now()
	m.lockedAt = caller()
}

func (m *RWMutex) Unlock() {
	if debug {
		if d := time.Since(m.start); d >= threshold {
			logger.L.Debugf("RWMutex held for %v, locked at %s unlocked at %s", d, m.lockedAt, caller())
		}
	}
	m.mut.Unlock()
}

func (m *RWMutex) RLock() {
	m.mut.RLock()
}

func (m *RWMutex) RUnlock() {
	m.mut.RUnlock()
}

func caller() string {
	_, file, line, _ := runtime.Caller(2)
	file = filepath.Join(filepath.Base(filepath.Dir(file)), filepath.Base(file))
	return fmt.Sprintf("%s:%d", file, line)
}
