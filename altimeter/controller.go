package altimeter

import (
	"fmt"
	"sync"
)

const (
	// MinSimulatedPressure and MaxSimulatedPressure bound the pressure
	// while simulating. Live samples are not clamped.
	MinSimulatedPressure = 800.0
	MaxSimulatedPressure = 1100.0

	// SimulationStep is the pressure change of one +100m/-100m command.
	SimulationStep = 10.0
)

// State is a consistent snapshot of the controller.
type State struct {
	Pressure float64 `json:"pressure_hpa"`
	Altitude float64 `json:"altitude_m"`
	Mode     Mode    `json:"mode"`
	Color    Color   `json:"color"`
}

func (s State) String() string {
	return fmt.Sprintf("%.2f m, %.2f hPa (%s)", s.Altitude, s.Pressure, s.Mode)
}

// Controller owns the pressure reading, the altitude derived from it and
// the input mode. Pressure and altitude are always updated together under
// the same lock. Writers are serialized, so listeners see changes in the
// order they were applied.
type Controller struct {
	writeMu sync.Mutex

	mu       sync.RWMutex
	pressure float64
	altitude float64
	mode     Mode

	listenersMu sync.Mutex
	listeners   []func(State)
}

// NewController starts at sea level in the given mode.
func NewController(mode Mode) *Controller {
	return &Controller{
		pressure: SeaLevelPressure,
		altitude: ComputeAltitude(SeaLevelPressure),
		mode:     mode,
	}
}

// ApplySimulatedDelta shifts the pressure by delta hPa, clamped to
// [MinSimulatedPressure, MaxSimulatedPressure], and recomputes the altitude
// from the clamped value. It is ignored in live mode and reports whether
// the delta was applied.
func (c *Controller) ApplySimulatedDelta(delta float64) bool {
	return c.update(func() bool {
		if c.mode != ModeSimulation {
			return false
		}
		c.setPressureLocked(clamp(c.pressure+delta, MinSimulatedPressure, MaxSimulatedPressure))
		return true
	})
}

// ApplySensorReading takes a pressure sample from a live sensor. Samples
// arriving in simulation mode are dropped; the return value reports
// whether the sample was applied.
func (c *Controller) ApplySensorReading(pressure float64) bool {
	return c.update(func() bool {
		if c.mode != ModeLive {
			return false
		}
		c.setPressureLocked(pressure)
		return true
	})
}

// IncreaseAltitude is the "+100m" command: lower pressure, higher altitude.
func (c *Controller) IncreaseAltitude() bool {
	return c.ApplySimulatedDelta(-SimulationStep)
}

// DecreaseAltitude is the "-100m" command.
func (c *Controller) DecreaseAltitude() bool {
	return c.ApplySimulatedDelta(SimulationStep)
}

// SetMode switches the input mode. Pressure and altitude are kept; in
// simulation mode the next delta clamps them back into range.
func (c *Controller) SetMode(m Mode) {
	c.update(func() bool {
		if c.mode == m {
			return false
		}
		c.mode = m
		return true
	})
}

func (c *Controller) Pressure() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pressure
}

func (c *Controller) Altitude() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.altitude
}

func (c *Controller) Mode() Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

// Snapshot returns pressure, altitude, mode and color read under one lock.
func (c *Controller) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

// OnChange registers fn to be called with the new state after every
// accepted input or mode change. fn runs on the caller's goroutine while
// other writers wait, so it must return quickly (queue, don't do I/O) and
// must not call back into the controller's mutating methods.
func (c *Controller) OnChange(fn func(State)) {
	c.listenersMu.Lock()
	c.listeners = append(c.listeners, fn)
	c.listenersMu.Unlock()
}

// update runs apply under the state lock and, if it changed anything,
// notifies listeners before the next writer can start.
func (c *Controller) update(apply func() bool) bool {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	changed := apply()
	s := c.snapshotLocked()
	c.mu.Unlock()

	if changed {
		c.notify(s)
	}
	return changed
}

func (c *Controller) setPressureLocked(p float64) {
	c.pressure = p
	c.altitude = ComputeAltitude(p)
}

func (c *Controller) snapshotLocked() State {
	return State{
		Pressure: c.pressure,
		Altitude: c.altitude,
		Mode:     c.mode,
		Color:    MapAltitudeToColor(c.altitude),
	}
}

func (c *Controller) notify(s State) {
	c.listenersMu.Lock()
	listeners := make([]func(State), len(c.listeners))
	copy(listeners, c.listeners)
	c.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(s)
	}
}
