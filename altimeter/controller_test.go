package altimeter

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewControllerStartsAtSeaLevel(t *testing.T) {
	c := NewController(ModeSimulation)

	assert.Equal(t, SeaLevelPressure, c.Pressure())
	assert.InDelta(t, 0.0, c.Altitude(), 1e-9)
	assert.Equal(t, ModeSimulation, c.Mode())
}

func TestApplySimulatedDeltaClampsLow(t *testing.T) {
	c := NewController(ModeSimulation)

	for i := 0; i < 40; i++ {
		require.True(t, c.ApplySimulatedDelta(-10))
		require.GreaterOrEqual(t, c.Pressure(), MinSimulatedPressure)
		require.LessOrEqual(t, c.Pressure(), MaxSimulatedPressure)
	}

	assert.Equal(t, MinSimulatedPressure, c.Pressure())
	assert.Equal(t, ComputeAltitude(MinSimulatedPressure), c.Altitude())
}

func TestApplySimulatedDeltaClampsHigh(t *testing.T) {
	c := NewController(ModeSimulation)

	c.ApplySimulatedDelta(500)

	assert.Equal(t, MaxSimulatedPressure, c.Pressure())
	assert.Equal(t, ComputeAltitude(MaxSimulatedPressure), c.Altitude())
}

func TestAltitudeTracksPressure(t *testing.T) {
	c := NewController(ModeSimulation)
	for _, d := range []float64{-10, -37.5, 12, 300, -999, 4.25} {
		c.ApplySimulatedDelta(d)
		assert.Equal(t, ComputeAltitude(c.Pressure()), c.Altitude(), "after delta %v", d)
	}

	c.SetMode(ModeLive)
	for _, p := range []float64{990.1, 1200, 300, 1013.25} {
		require.True(t, c.ApplySensorReading(p))
		assert.Equal(t, p, c.Pressure())
		assert.Equal(t, ComputeAltitude(p), c.Altitude())
	}
}

func TestAccessorsAreStable(t *testing.T) {
	c := NewController(ModeSimulation)
	c.IncreaseAltitude()

	assert.Equal(t, c.Pressure(), c.Pressure())
	assert.Equal(t, c.Altitude(), c.Altitude())
	assert.Equal(t, c.Snapshot(), c.Snapshot())
}

func TestSensorReadingIgnoredWhileSimulating(t *testing.T) {
	c := NewController(ModeSimulation)
	c.DecreaseAltitude()
	before := c.Snapshot()

	assert.False(t, c.ApplySensorReading(950))
	assert.Equal(t, before, c.Snapshot())
}

func TestSimulatedDeltaIgnoredWhileLive(t *testing.T) {
	c := NewController(ModeLive)
	require.True(t, c.ApplySensorReading(1200))
	before := c.Snapshot()

	assert.False(t, c.ApplySimulatedDelta(-10))
	assert.False(t, c.IncreaseAltitude())
	assert.Equal(t, before, c.Snapshot())
}

func TestLiveReadingsAreNotClamped(t *testing.T) {
	c := NewController(ModeLive)

	c.ApplySensorReading(700)

	assert.Equal(t, 700.0, c.Pressure())
}

func TestAltitudeCommands(t *testing.T) {
	c := NewController(ModeSimulation)

	require.True(t, c.IncreaseAltitude())
	assert.Equal(t, SeaLevelPressure-SimulationStep, c.Pressure())
	assert.Greater(t, c.Altitude(), 0.0)

	require.True(t, c.DecreaseAltitude())
	require.True(t, c.DecreaseAltitude())
	assert.Equal(t, SeaLevelPressure+SimulationStep, c.Pressure())
	assert.Less(t, c.Altitude(), 0.0)
}

func TestSetModeNotifiesOnlyOnChange(t *testing.T) {
	c := NewController(ModeSimulation)
	var got []State
	c.OnChange(func(s State) { got = append(got, s) })

	c.SetMode(ModeSimulation)
	require.Empty(t, got)

	c.SetMode(ModeLive)
	require.Len(t, got, 1)
	assert.Equal(t, ModeLive, got[0].Mode)
}

func TestOnChange(t *testing.T) {
	c := NewController(ModeSimulation)
	var got []State
	c.OnChange(func(s State) { got = append(got, s) })

	c.IncreaseAltitude()
	c.ApplySensorReading(900) // dropped, no notification
	c.DecreaseAltitude()

	require.Len(t, got, 2)
	assert.Equal(t, SeaLevelPressure-SimulationStep, got[0].Pressure)
	assert.Equal(t, MapAltitudeToColor(got[0].Altitude), got[0].Color)
	assert.Equal(t, SeaLevelPressure, got[1].Pressure)
}

func TestConcurrentWritersKeepStateConsistent(t *testing.T) {
	c := NewController(ModeSimulation)
	c.OnChange(func(s State) {
		if s.Altitude != ComputeAltitude(s.Pressure) {
			t.Errorf("out of sync: %v", s)
		}
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if (i+j)%2 == 0 {
					c.IncreaseAltitude()
				} else {
					c.DecreaseAltitude()
				}
				_ = c.Snapshot()
			}
		}(i)
	}
	wg.Wait()

	s := c.Snapshot()
	assert.Equal(t, ComputeAltitude(s.Pressure), s.Altitude)
	assert.GreaterOrEqual(t, s.Pressure, MinSimulatedPressure)
	assert.LessOrEqual(t, s.Pressure, MaxSimulatedPressure)
}

func TestStateString(t *testing.T) {
	s := State{Pressure: 1003.25, Altitude: 83.5, Mode: ModeSimulation}
	assert.Equal(t, "83.50 m, 1003.25 hPa (simulation)", s.String())
}
