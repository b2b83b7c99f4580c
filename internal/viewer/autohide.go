package viewer

import "time"

// ControlsHideDelay is how long controls remain visible after the last
// pointer activity while fullscreen.
const ControlsHideDelay = 3 * time.Second

// AutoHide is a debounced visibility timer. Activity shows the target and
// (re)starts a countdown; a tick past the deadline hides it. It has no
// internal clock, making it testable without a real input device.
type AutoHide struct {
	delay    time.Duration
	deadline time.Time
	visible  bool
}

// NewAutoHide creates a timer that starts visible with no pending countdown.
func NewAutoHide(delay time.Duration) *AutoHide {
	return &AutoHide{
		delay:   delay,
		visible: true,
	}
}

// Visible reports the current visibility.
func (a *AutoHide) Visible() bool { return a.visible }

// OnActivity shows the target and restarts the countdown from now.
func (a *AutoHide) OnActivity(now time.Time) {
	a.visible = true
	a.deadline = now.Add(a.delay)
}

// Tick hides the target when a countdown is pending and the deadline has
// passed without further activity.
func (a *AutoHide) Tick(now time.Time) {
	if a.deadline.IsZero() {
		return
	}
	if !now.Before(a.deadline) {
		a.visible = false
		a.deadline = time.Time{}
	}
}

// Reset forces visibility and cancels any pending countdown.
func (a *AutoHide) Reset() {
	a.visible = true
	a.deadline = time.Time{}
}
