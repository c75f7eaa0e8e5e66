package sensors

import (
	"context"
	"math"
	"time"
)

const (
	FieldPressure    = "pressure"
	FieldTemperature = "temperature"
	FieldHumidity    = "humidity"
)

// SensorData is the unified data structure for all sensors.
// Pressure is in hPa, temperature in °C, humidity in %.
type SensorData struct {
	SensorType string             `json:"sensor_type"`
	Fields     map[string]float64 `json:"fields"`
	Timestamp  time.Time          `json:"timestamp"`
}

// Pressure returns the pressure field if the sample carries a usable one.
func (d *SensorData) Pressure() (float64, bool) {
	if d == nil {
		return 0, false
	}
	p, ok := d.Fields[FieldPressure]
	if !ok || !ValidPressure(p) {
		return 0, false
	}
	return p, true
}

// ValidPressure reports whether p can be turned into an altitude: finite
// and above zero. Large or small values are still accepted as is.
func ValidPressure(p float64) bool {
	return p > 0 && !math.IsInf(p, 1)
}

// Sensor interface that all polled sensors must implement
type Sensor interface {
	Read() (*SensorData, error)
	Name() string
}

// Handler receives samples pushed by a Source.
type Handler func(*SensorData)

// Source pushes samples to a handler between Start and Stop. The host
// application owns this lifecycle.
type Source interface {
	Name() string
	Start(ctx context.Context, h Handler) error
	Stop()
}
