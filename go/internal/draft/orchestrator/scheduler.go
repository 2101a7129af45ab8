package orchestrator

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// deadlineTimer is the pick clock for one draft. It is only touched from the
// coordinator loop; the fire callback runs on the timer goroutine and carries
// the (pick, generation) tag it was armed with so late fires can be told apart.
type deadlineTimer struct {
	clock clockwork.Clock
	fire  func(pick int, generation uint64)

	timer      clockwork.Timer
	stop       chan struct{}
	pick       int
	generation uint64
	armed      bool
}

func newDeadlineTimer(clock clockwork.Clock, fire func(pick int, generation uint64)) *deadlineTimer {
	return &deadlineTimer{clock: clock, fire: fire}
}

// arm replaces any running timer with a one-shot timer for pick.
func (t *deadlineTimer) arm(pick int, d time.Duration) {
	t.cancel()
	t.generation++
	t.pick = pick
	t.armed = true

	timer := t.clock.NewTimer(d)
	stop := make(chan struct{})
	t.timer = timer
	t.stop = stop

	generation := t.generation
	go func() {
		select {
		case <-timer.Chan():
			t.fire(pick, generation)
		case <-stop:
		}
	}()
}

// disarm stops the clock. Any fire already in flight becomes stale.
func (t *deadlineTimer) disarm() {
	t.cancel()
	t.generation++
	t.armed = false
}

// isCurrent reports whether a fire belongs to the armed timer.
func (t *deadlineTimer) isCurrent(pick int, generation uint64) bool {
	return t.armed && t.pick == pick && t.generation == generation
}

// expire marks the current fire as consumed.
func (t *deadlineTimer) expire() {
	t.armed = false
	t.timer = nil
	t.stop = nil
}

func (t *deadlineTimer) cancel() {
	if t.timer == nil {
		return
	}
	stopAndDrainTimer(t.timer)
	close(t.stop)
	t.timer = nil
	t.stop = nil
}

// stopAndDrainTimer stops a timer and drains its channel if it already fired.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
