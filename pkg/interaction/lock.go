package interaction

import "sync/atomic"

// Lock is an advisory flag raised while a drag or resize gesture is in
// progress. Other subsystems, such as the preferences writer, consult it to
// hold back conflicting writes. Nothing blocks on it.
type Lock struct {
	held atomic.Bool
}

// DefaultLock is the process-wide interaction lock.
var DefaultLock = &Lock{}

// Acquire raises the flag. It reports whether the flag was previously clear.
func (l *Lock) Acquire() bool {
	return l.held.CompareAndSwap(false, true)
}

// Release clears the flag. It reports whether the flag was previously set.
func (l *Lock) Release() bool {
	return l.held.CompareAndSwap(true, false)
}

// Held reports whether a gesture currently holds the flag.
func (l *Lock) Held() bool {
	return l.held.Load()
}
