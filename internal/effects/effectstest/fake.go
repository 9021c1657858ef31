// Package effectstest provides recording fakes for effects.Device and
// effects.SleepFunc.
package effectstest

import (
	"context"
	"sync"
	"time"

	"github.com/dokzlo13/gsilight/internal/effects"
)

// Step is one recorded instruction or wait, in call order.
type Step struct {
	State effects.State
	IDs   []string
	Wait  time.Duration // non-zero for waits
}

// IsWait reports whether the step is a wait.
func (s Step) IsWait() bool {
	return s.Wait > 0
}

// Recorder records instructions and waits. It never actually sleeps.
type Recorder struct {
	mu        sync.Mutex
	steps     []Step
	devices   []string
	connected bool

	// OnWait, if set, is called after every recorded wait.
	OnWait func(d time.Duration)
}

// NewRecorder creates a connected Recorder controlling the given devices.
func NewRecorder(devices ...string) *Recorder {
	if len(devices) == 0 {
		devices = []string{"1", "2"}
	}
	return &Recorder{devices: devices, connected: true}
}

// SetConnected changes the reported connection state.
func (r *Recorder) SetConnected(connected bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connected = connected
}

// SetState implements effects.Device.
func (r *Recorder) SetState(_ context.Context, ids []string, state effects.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, Step{State: state, IDs: append([]string(nil), ids...)})
}

// ListDevices implements effects.Device.
func (r *Recorder) ListDevices() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.devices...)
}

// IsConnected implements effects.Device.
func (r *Recorder) IsConnected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connected
}

// Sleep is an effects.SleepFunc that records the wait and returns at once.
func (r *Recorder) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	r.mu.Lock()
	r.steps = append(r.steps, Step{Wait: d})
	onWait := r.OnWait
	r.mu.Unlock()

	if onWait != nil {
		onWait(d)
	}
	return ctx.Err()
}

// Steps returns every recorded step.
func (r *Recorder) Steps() []Step {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Step(nil), r.steps...)
}

// States returns only the recorded instructions.
func (r *Recorder) States() []effects.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []effects.State
	for _, s := range r.steps {
		if !s.IsWait() {
			out = append(out, s.State)
		}
	}
	return out
}

// Waits returns only the recorded waits.
func (r *Recorder) Waits() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []time.Duration
	for _, s := range r.steps {
		if s.IsWait() {
			out = append(out, s.Wait)
		}
	}
	return out
}

// Reset clears recorded steps.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = nil
}

// NewPlayer returns an effects.Player wired to r for both device and sleep.
func (r *Recorder) NewPlayer() *effects.Player {
	return effects.NewPlayer(r, r.Sleep)
}
