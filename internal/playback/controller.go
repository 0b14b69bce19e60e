// Package playback implements the timer-driven state machine that steps the
// selected investigation through the investigation list. The controller is
// pure: it never owns a real timer. The host arms one timer per generation
// and tags each fired tick with the generation it was armed under; Advance
// rejects ticks from any earlier parameterization, so a cancelled timer that
// still fires can never move the selection.
package playback

import "time"

// DefaultSpeed is the interval between automatic advances.
const DefaultSpeed = 2 * time.Second

// Controller is the playback finite state machine. Zero value is not ready;
// use New.
type Controller struct {
	playing    bool
	speed      time.Duration
	order      []string
	selected   string
	generation int
}

func New(speed time.Duration) *Controller {
	if speed <= 0 {
		speed = DefaultSpeed
	}
	return &Controller{speed: speed}
}

// Playing reports whether the machine is in the Playing state.
func (c *Controller) Playing() bool { return c.playing }

// Speed is the current advance interval.
func (c *Controller) Speed() time.Duration { return c.speed }

// Generation identifies the current timer parameterization. The host must
// tag every armed tick with this value and pass it back to Advance.
func (c *Controller) Generation() int { return c.generation }

// Selected is the id of the currently selected investigation, or "" when
// nothing is selected.
func (c *Controller) Selected() string { return c.selected }

// Order is the current investigation id order.
func (c *Controller) Order() []string { return c.order }

// Toggle flips Playing/Paused on explicit user input and returns the new
// playing state. Either direction invalidates the pending timer.
func (c *Controller) Toggle() bool {
	c.playing = !c.playing
	c.generation++
	return c.playing
}

// SetSpeed re-parameterizes the advance interval and reports whether a
// re-parameterization actually happened. On change the pending timer (if
// any) is invalidated exactly once and the host re-arms from the new
// Generation; on a no-op (same or invalid speed) the generation is untouched
// and the host must NOT arm another timer, or two live ticks would share one
// generation.
func (c *Controller) SetSpeed(speed time.Duration) bool {
	if speed <= 0 || speed == c.speed {
		return false
	}
	c.speed = speed
	c.generation++
	return true
}

// SetOrder replaces the investigation list order. The pending timer is
// invalidated; a selection pointing at a vanished id is kept — the host
// resolves it against whatever list it renders.
func (c *Controller) SetOrder(ids []string) {
	c.order = append(c.order[:0:0], ids...)
	c.generation++
}

// Select records an explicit user selection. Selection changes never touch
// the timer: playback continues from the new position on its own schedule.
func (c *Controller) Select(id string) {
	c.selected = id
}

// Advance is the timer-fired transition. A tick from a stale generation is
// discarded. While Playing: with no selection the first investigation is
// selected; otherwise the next one in order. On the last investigation the
// machine auto-stops (Playing→Paused) without moving the selection. The
// returned rearm is true when the host should arm the next tick under the
// same generation.
func (c *Controller) Advance(generation int) (rearm bool) {
	if !c.playing || generation != c.generation {
		return false
	}
	if len(c.order) == 0 {
		return true
	}
	if c.selected == "" {
		c.selected = c.order[0]
		return true
	}
	// indexOf is -1 for a selection no longer in the list, which steps to
	// the first investigation rather than stalling.
	idx := c.indexOf(c.selected)
	if idx < len(c.order)-1 {
		c.selected = c.order[idx+1]
		return true
	}
	// Reached the end: auto-stop without moving the selection.
	c.playing = false
	c.generation++
	return false
}

func (c *Controller) indexOf(id string) int {
	for i, v := range c.order {
		if v == id {
			return i
		}
	}
	return -1
}
