package utils

import "time"

// Timer wraps time.Timer with a deadline so the remaining duration can
// be inspected before a reset.
type Timer struct {
	timer    *time.Timer
	deadline time.Time
}

func NewTimer(d time.Duration) *Timer {
	return &Timer{
		timer:    time.NewTimer(d),
		deadline: time.Now().Add(d),
	}
}

func (t *Timer) C() <-chan time.Time {
	return t.timer.C
}

func (t *Timer) Reset(d time.Duration) {
	t.deadline = time.Now().Add(d)
	t.timer.Reset(d)
}

func (t *Timer) Stop() bool {
	return t.timer.Stop()
}

func (t *Timer) TimeRemaining() time.Duration {
	remaining := time.Until(t.deadline)
	if remaining < 0 {
		return 0
	}
	return remaining
}
