package telemetry

import (
	"encoding/json"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/Uranury/altimeter/altimeter"
)

// MQTTPublisher publishes each state as retained JSON so late subscribers
// get the current altitude immediately.
type MQTTPublisher struct {
	client mqtt.Client
	topic  string
	qos    byte
}

func NewMQTTPublisher(client mqtt.Client, topic string) *MQTTPublisher {
	return &MQTTPublisher{client: client, topic: topic}
}

func (p *MQTTPublisher) Record(s altimeter.State) {
	payload, err := json.Marshal(s)
	if err != nil {
		log.Printf("json marshal error: %v", err)
		return
	}

	token := p.client.Publish(p.topic, p.qos, true, payload)
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			log.Printf("MQTT publish %s: %v", p.topic, err)
		}
	}()
}
