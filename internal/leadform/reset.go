package leadform

import (
	"sync"
	"time"
)

// resetTimer ends a form's success window.  Callers hold the form mutex
// around cancel and schedule; the callback takes the same mutex itself.
type resetTimer struct {
	gen   uint64
	timer *time.Timer
}

// cancel stops a pending expiry.  A callback already waiting on the mutex
// sees the bumped generation and does nothing.
func (r *resetTimer) cancel() {
	r.gen++
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// schedule runs expire under mu after d, then calls closed (if non-nil)
// with mu released.  A later cancel or schedule supersedes it.
func (r *resetTimer) schedule(d time.Duration, mu *sync.Mutex, expire func(), closed func()) {
	r.cancel()
	g := r.gen
	r.timer = time.AfterFunc(d, func() {
		mu.Lock()
		if r.gen != g {
			mu.Unlock()
			return
		}
		r.timer = nil
		expire()
		mu.Unlock()

		if closed != nil {
			closed()
		}
	})
}
