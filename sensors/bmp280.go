package sensors

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/host/v3"
)

// DefaultBMP280Address is the I2C address with SDO pulled low.
const DefaultBMP280Address = 0x76

// BMP280 reads pressure and temperature from a Bosch BMP280 over I2C.
type BMP280 struct {
	Bus     string
	Address uint16

	mu  sync.Mutex
	bus i2c.BusCloser
	dev *bmxx80.Dev
}

// NewBMP280 opens the I2C bus (e.g. "1" or "/dev/i2c-1") and initializes
// the sensor.
func NewBMP280(busName string, addr uint16) (*BMP280, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("BMP280 I2C open %q: %w", busName, err)
	}

	dev, err := bmxx80.NewI2C(bus, addr, &bmxx80.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("BMP280 init at 0x%02x: %w", addr, err)
	}

	return &BMP280{Bus: busName, Address: addr, bus: bus, dev: dev}, nil
}

func (b *BMP280) Name() string {
	return "BMP280"
}

func (b *BMP280) Read() (*SensorData, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var e physic.Env
	if err := b.dev.Sense(&e); err != nil {
		return nil, fmt.Errorf("BMP280 sense: %w", err)
	}

	pressurePa := float64(e.Pressure) / float64(physic.Pascal)
	return &SensorData{
		SensorType: "bmp280",
		Fields: map[string]float64{
			FieldPressure:    pressurePa / 100.0, // 1 hPa = 100 Pa
			FieldTemperature: e.Temperature.Celsius(),
		},
		Timestamp: time.Now(),
	}, nil
}

func (b *BMP280) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.dev.Halt(); err != nil {
		b.bus.Close()
		return fmt.Errorf("BMP280 halt: %w", err)
	}
	return b.bus.Close()
}

// MockBMP280 stands in for the barometer on machines without I2C. The
// pressure drifts randomly around Base by at most Step per read.
type MockBMP280 struct {
	Base float64
	Step float64

	mu       sync.Mutex
	pressure float64
}

func NewMockBMP280(base, step float64) *MockBMP280 {
	return &MockBMP280{Base: base, Step: step, pressure: base}
}

func (m *MockBMP280) Name() string {
	return "BMP280 (mock)"
}

func (m *MockBMP280) Read() (*SensorData, error) {
	m.mu.Lock()
	m.pressure += (rand.Float64()*2 - 1) * m.Step
	// pull back toward the base so the walk stays near it
	m.pressure += (m.Base - m.pressure) * 0.1
	pressure := m.pressure
	m.mu.Unlock()

	return &SensorData{
		SensorType: "bmp280",
		Fields: map[string]float64{
			FieldPressure:    pressure,
			FieldTemperature: 20.0 + rand.Float64()*10.0,
		},
		Timestamp: time.Now(),
	}, nil
}
