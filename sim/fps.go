package sim

import (
	"math"
	"time"
)

// FPSCounter measures the frame rate of a host loop. Call Tick once per
// frame; every refresh interval the minimum and maximum seen since the
// previous refresh are published and the window starts over.
type FPSCounter struct {
	interval  time.Duration
	onRefresh func(min, current, max float64)

	last    time.Time
	refresh time.Time

	current   float64
	windowMin float64
	windowMax float64
	shownMin  float64
	shownMax  float64
	refreshes int
}

// NewFPSCounter creates a counter that publishes every interval.
// onRefresh may be nil.
func NewFPSCounter(interval time.Duration, onRefresh func(min, current, max float64)) *FPSCounter {
	f := &FPSCounter{interval: interval, onRefresh: onRefresh}
	f.Restart(time.Now())
	return f
}

// Restart starts a new frame and refresh window at now.
func (f *FPSCounter) Restart(now time.Time) {
	f.last = now
	f.refresh = now
	f.resetWindow()
}

// Tick records the end of a frame at now.
func (f *FPSCounter) Tick(now time.Time) {
	if dt := now.Sub(f.last); dt > 0 {
		f.current = float64(time.Second) / float64(dt)
	}
	f.last = now

	f.windowMin = math.Min(f.windowMin, f.current)
	f.windowMax = math.Max(f.windowMax, f.current)

	if now.Sub(f.refresh) > f.interval {
		f.refresh = now
		f.shownMin, f.shownMax = f.windowMin, f.windowMax
		f.refreshes++
		f.resetWindow()

		if f.onRefresh != nil {
			f.onRefresh(f.shownMin, f.current, f.shownMax)
		}
	}
}

// Current returns the rate implied by the most recent frame.
func (f *FPSCounter) Current() float64 { return f.current }

// Min returns the lowest rate of the last published window.
func (f *FPSCounter) Min() float64 { return f.shownMin }

// Max returns the highest rate of the last published window.
func (f *FPSCounter) Max() float64 { return f.shownMax }

// Refreshes returns how many windows have been published.
func (f *FPSCounter) Refreshes() int { return f.refreshes }

func (f *FPSCounter) resetWindow() {
	f.windowMin = math.Inf(1)
	f.windowMax = 0
}
