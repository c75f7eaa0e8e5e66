package sensors

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

var ErrAlreadyStarted = errors.New("source already started")

// Poller turns a Sensor into a Source by reading it on a fixed interval.
type Poller struct {
	sensor   Sensor
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPoller(s Sensor, interval time.Duration) *Poller {
	return &Poller{sensor: s, interval: interval}
}

func (p *Poller) Name() string {
	return p.sensor.Name()
}

// Start begins polling in a new goroutine. Read errors are logged and the
// sample is skipped.
func (p *Poller) Start(ctx context.Context, h Handler) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return ErrAlreadyStarted
	}
	if p.interval <= 0 {
		return errors.New("poll interval must be positive")
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.run(ctx, h, p.done)
	return nil
}

// Stop cancels polling and waits for the loop to exit. It is safe to call
// more than once.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *Poller) run(ctx context.Context, h Handler, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			data, err := p.sensor.Read()
			if err != nil {
				log.Printf("Error reading %s: %v", p.sensor.Name(), err)
				continue
			}
			h(data)
		}
	}
}
