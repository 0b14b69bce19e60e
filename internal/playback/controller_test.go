package playback

import (
	"testing"
	"time"
)

func TestAdvanceWalksListThenAutoStops(t *testing.T) {
	c := New(0)
	c.SetOrder([]string{"I1", "I2", "I3"})
	if !c.Toggle() {
		t.Fatal("expected Toggle to start playback")
	}

	want := []string{"I1", "I2", "I3"}
	for i, id := range want {
		if rearm := c.Advance(c.Generation()); !rearm {
			t.Fatalf("advance %d: expected rearm", i)
		}
		if c.Selected() != id {
			t.Fatalf("advance %d: expected selection %s, got %s", i, id, c.Selected())
		}
	}

	// Fourth advance: auto-stop, selection stays on the last investigation.
	if rearm := c.Advance(c.Generation()); rearm {
		t.Fatal("expected no rearm at end of list")
	}
	if c.Playing() {
		t.Fatal("expected auto-stop into Paused")
	}
	if c.Selected() != "I3" {
		t.Fatalf("expected selection to remain I3, got %s", c.Selected())
	}
}

func TestAdvanceIgnoredWhenPaused(t *testing.T) {
	c := New(0)
	c.SetOrder([]string{"I1"})
	if c.Advance(c.Generation()) {
		t.Fatal("expected no advance while paused")
	}
	if c.Selected() != "" {
		t.Fatalf("expected no selection, got %s", c.Selected())
	}
}

func TestStaleGenerationTickDiscarded(t *testing.T) {
	c := New(0)
	c.SetOrder([]string{"I1", "I2"})
	c.Toggle()
	stale := c.Generation()

	// Re-parameterize: the tick armed under `stale` must be a no-op.
	c.SetSpeed(5 * time.Second)
	if c.Advance(stale) {
		t.Fatal("expected stale tick to be discarded")
	}
	if c.Selected() != "" {
		t.Fatalf("stale tick moved selection to %s", c.Selected())
	}

	// The fresh generation advances exactly once — no double-advance.
	if !c.Advance(c.Generation()) {
		t.Fatal("expected fresh tick to advance")
	}
	if c.Selected() != "I1" {
		t.Fatalf("expected I1, got %s", c.Selected())
	}
}

func TestSetSpeedBumpsGenerationExactlyOnce(t *testing.T) {
	c := New(time.Second)
	c.Toggle()
	g := c.Generation()
	if !c.SetSpeed(3 * time.Second) {
		t.Fatal("expected speed change to report a re-parameterization")
	}
	if c.Generation() != g+1 {
		t.Fatalf("expected one generation bump, got %d -> %d", g, c.Generation())
	}
	// Same speed again: no re-arm.
	if c.SetSpeed(3 * time.Second) {
		t.Fatal("expected no-op for same speed")
	}
	if c.Generation() != g+1 {
		t.Fatal("expected unchanged generation for same speed")
	}
	if c.Speed() != 3*time.Second {
		t.Fatalf("unexpected speed %v", c.Speed())
	}
}

func TestListChangeInvalidatesPendingTimer(t *testing.T) {
	c := New(0)
	c.SetOrder([]string{"I1", "I2"})
	c.Toggle()
	pending := c.Generation()

	c.SetOrder([]string{"I1", "I2", "I3"})
	if c.Advance(pending) {
		t.Fatal("tick from before the list change must not fire")
	}
	if !c.Advance(c.Generation()) {
		t.Fatal("expected advance under new generation")
	}
}

func TestSelectDoesNotTouchTimerGeneration(t *testing.T) {
	c := New(0)
	c.SetOrder([]string{"I1", "I2", "I3"})
	c.Toggle()
	g := c.Generation()
	c.Select("I2")
	if c.Generation() != g {
		t.Fatal("user selection must not re-arm the timer")
	}
	if !c.Advance(g) {
		t.Fatal("expected advance from user-selected position")
	}
	if c.Selected() != "I3" {
		t.Fatalf("expected I3, got %s", c.Selected())
	}
}

func TestAdvanceAfterSelectionVanished(t *testing.T) {
	c := New(0)
	c.SetOrder([]string{"I1", "I2"})
	c.Toggle()
	c.Select("gone")
	if !c.Advance(c.Generation()) {
		t.Fatal("expected advance")
	}
	if c.Selected() != "I1" {
		t.Fatalf("expected restart at I1, got %s", c.Selected())
	}
}

func TestNewClampsSpeed(t *testing.T) {
	if New(0).Speed() != DefaultSpeed {
		t.Fatal("expected default speed")
	}
	if New(-time.Second).Speed() != DefaultSpeed {
		t.Fatal("expected default speed for negative input")
	}
}
