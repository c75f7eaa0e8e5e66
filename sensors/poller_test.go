package sensors

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSensor struct {
	reads atomic.Int32
	fail  bool
}

func (f *fakeSensor) Name() string { return "fake" }

func (f *fakeSensor) Read() (*SensorData, error) {
	n := f.reads.Add(1)
	if f.fail {
		return nil, errors.New("bus error")
	}
	return &SensorData{
		SensorType: "fake",
		Fields:     map[string]float64{FieldPressure: 1000 + float64(n)},
		Timestamp:  time.Now(),
	}, nil
}

func TestPollerDeliversSamples(t *testing.T) {
	p := NewPoller(&fakeSensor{}, 5*time.Millisecond)
	samples := make(chan *SensorData, 16)

	require.NoError(t, p.Start(context.Background(), func(d *SensorData) {
		select {
		case samples <- d:
		default:
		}
	}))
	defer p.Stop()

	for i := 0; i < 3; i++ {
		select {
		case d := <-samples:
			pressure, ok := d.Pressure()
			require.True(t, ok)
			assert.Greater(t, pressure, 1000.0)
		case <-time.After(time.Second):
			t.Fatal("no sample from poller")
		}
	}
}

func TestPollerStopHaltsReads(t *testing.T) {
	s := &fakeSensor{}
	p := NewPoller(s, 2*time.Millisecond)
	require.NoError(t, p.Start(context.Background(), func(*SensorData) {}))

	time.Sleep(20 * time.Millisecond)
	p.Stop()
	after := s.reads.Load()
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, after, s.reads.Load())
	p.Stop()
}

func TestPollerSkipsFailedReads(t *testing.T) {
	s := &fakeSensor{fail: true}
	p := NewPoller(s, 2*time.Millisecond)
	var delivered atomic.Int32
	require.NoError(t, p.Start(context.Background(), func(*SensorData) { delivered.Add(1) }))

	require.Eventually(t, func() bool { return s.reads.Load() >= 3 }, time.Second, time.Millisecond)
	p.Stop()

	assert.Zero(t, delivered.Load())
}

func TestPollerStartTwice(t *testing.T) {
	p := NewPoller(&fakeSensor{}, time.Hour)
	require.NoError(t, p.Start(context.Background(), func(*SensorData) {}))
	defer p.Stop()

	assert.ErrorIs(t, p.Start(context.Background(), func(*SensorData) {}), ErrAlreadyStarted)
}

func TestPollerRejectsZeroInterval(t *testing.T) {
	p := NewPoller(&fakeSensor{}, 0)
	assert.Error(t, p.Start(context.Background(), func(*SensorData) {}))
}

func TestPollerStopsWithContext(t *testing.T) {
	s := &fakeSensor{}
	p := NewPoller(s, 2*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, p.Start(ctx, func(*SensorData) {}))

	cancel()
	p.Stop()
}
