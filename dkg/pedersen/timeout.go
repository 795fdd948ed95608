package dkg

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Deadline arms a clockwork.Clock to call SetTimeout on d after delay
// elapses, so a caller does not have to hand-roll its own timer goroutine
// around every DKG round. Using clockwork rather than time.AfterFunc
// directly keeps the round's timeout behavior under the control of a fake
// clock in tests.
func Deadline(clock clockwork.Clock, d *DistKeyGenerator, delay time.Duration) func() {
	stop := make(chan struct{})
	go func() {
		select {
		case <-clock.After(delay):
			d.SetTimeout()
		case <-stop:
		}
	}()
	return func() { close(stop) }
}
