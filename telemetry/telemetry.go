// Package telemetry exports altimeter state changes to external systems.
// Nothing here is read back; the altimeter itself keeps no history.
package telemetry

import "github.com/Uranury/altimeter/altimeter"

// Sink receives every state change. Record must not block.
type Sink interface {
	Record(s altimeter.State)
}

// Fanout records to every sink in order.
type Fanout []Sink

func (f Fanout) Record(s altimeter.State) {
	for _, sink := range f {
		sink.Record(s)
	}
}
