package sensors

import (
	"fmt"
	"sync"
	"time"

	"github.com/MichaelS11/go-dht"
)

var (
	dhtHostOnce sync.Once
	dhtHostErr  error
)

// DHT22 reports ambient temperature and humidity. Its samples carry no
// pressure and never move the altitude.
type DHT22 struct {
	Pin     string
	Retries int

	dht *dht.DHT
}

func NewDHT22(pin string) (*DHT22, error) {
	dhtHostOnce.Do(func() {
		dhtHostErr = dht.HostInit()
	})
	if dhtHostErr != nil {
		return nil, fmt.Errorf("dht host init: %w", dhtHostErr)
	}

	d, err := dht.NewDHT(pin, dht.Celsius, "")
	if err != nil {
		return nil, fmt.Errorf("DHT22 on pin %s: %w", pin, err)
	}

	return &DHT22{Pin: pin, Retries: 11, dht: d}, nil
}

func (d *DHT22) Name() string {
	return "DHT22"
}

func (d *DHT22) Read() (*SensorData, error) {
	humidity, temperature, err := d.dht.ReadRetry(d.Retries)
	if err != nil {
		return nil, err
	}

	return &SensorData{
		SensorType: "dht22",
		Fields: map[string]float64{
			FieldTemperature: temperature,
			FieldHumidity:    humidity,
		},
		Timestamp: time.Now(),
	}, nil
}
