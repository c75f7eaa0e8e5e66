package sensors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// pressureSample is the payload published by remote barometers, e.g.
// {"source":"left","temp_c":21.4,"pressure_hpa":1009.8}.
type pressureSample struct {
	Source      string   `json:"source"`
	Temperature *float64 `json:"temp_c"`
	PressureHPa *float64 `json:"pressure_hpa"`
}

// MQTTBarometer receives pressure samples pushed to an MQTT topic.
type MQTTBarometer struct {
	client mqtt.Client
	topic  string
	qos    byte

	mu      sync.Mutex
	started bool
}

// NewMQTTBarometer uses an already connected client.
func NewMQTTBarometer(client mqtt.Client, topic string) *MQTTBarometer {
	return &MQTTBarometer{client: client, topic: topic}
}

func (m *MQTTBarometer) Name() string {
	return "mqtt:" + m.topic
}

func (m *MQTTBarometer) Start(ctx context.Context, h Handler) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrAlreadyStarted
	}

	token := m.client.Subscribe(m.topic, m.qos, func(_ mqtt.Client, msg mqtt.Message) {
		data, err := decodePressureSample(msg.Payload(), time.Now())
		if err != nil {
			log.Printf("%s: %v", m.Name(), err)
			return
		}
		h(data)
	})
	if err := waitToken(ctx, token); err != nil {
		if ctx.Err() != nil {
			// the subscribe may still land on the broker
			m.client.Unsubscribe(m.topic)
		}
		return fmt.Errorf("subscribe %s: %w", m.topic, err)
	}

	m.started = true
	log.Printf("subscribed to MQTT topic %s", m.topic)
	return nil
}

func (m *MQTTBarometer) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return
	}
	m.started = false

	token := m.client.Unsubscribe(m.topic)
	if !token.WaitTimeout(2*time.Second) || token.Error() != nil {
		log.Printf("unsubscribe %s: %v", m.topic, token.Error())
	}
}

func decodePressureSample(payload []byte, now time.Time) (*SensorData, error) {
	var s pressureSample
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, fmt.Errorf("payload unmarshal: %w", err)
	}
	if s.PressureHPa == nil {
		return nil, errors.New("payload has no pressure_hpa")
	}
	if !ValidPressure(*s.PressureHPa) {
		return nil, fmt.Errorf("invalid pressure_hpa %v", *s.PressureHPa)
	}

	data := &SensorData{
		SensorType: "mqtt",
		Fields:     map[string]float64{FieldPressure: *s.PressureHPa},
		Timestamp:  now,
	}
	if s.Source != "" {
		data.SensorType = "mqtt/" + s.Source
	}
	if s.Temperature != nil {
		data.Fields[FieldTemperature] = *s.Temperature
	}
	return data, nil
}

func waitToken(ctx context.Context, token mqtt.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}
