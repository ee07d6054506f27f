package memory

import "sync/atomic"

// loopGuard is the Go analogue of "is a scheduler already running on this
// thread?": Go has no single global event loop to introspect, so each
// System tracks its own in-flight blocking call with a CAS flag instead.
// A blocking (Sync-suffixed) facade method takes the flag for its
// duration; a second blocking call on the same System while one is still
// in flight fails fast with types.ErrLoopMisuse rather than deadlocking.
type loopGuard struct {
	inBlockingCall int32
}

// enter attempts to take the guard, returning true on success.
func (g *loopGuard) enter() bool {
	return atomic.CompareAndSwapInt32(&g.inBlockingCall, 0, 1)
}

// exit releases the guard.
func (g *loopGuard) exit() {
	atomic.StoreInt32(&g.inBlockingCall, 0)
}
