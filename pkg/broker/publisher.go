package broker

import (
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// IPublisher interface defines the method to publish a message
type IPublisher interface {
	Publish(topic string, payload string) error
}

// Publisher publishes on the shared MQTT client.
type Publisher struct {
	client   mqtt.Client
	qos      byte
	retained bool
}

func NewPublisher(client mqtt.Client, qos byte) *Publisher {
	return &Publisher{client: client, qos: qos}
}

func (p *Publisher) Publish(topic string, payload string) error {
	token := p.client.Publish(topic, p.qos, p.retained, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish message: %w", token.Error())
	}
	return nil
}
