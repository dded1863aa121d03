package broker

import (
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// Handler processes one message received on a subscription.
type Handler func(subscription string, message mqtt.Message) error

// Consumer subscribes a handler to a set of topic filters.
type Consumer struct {
	topics  []string
	qos     byte
	handler Handler
	log     zerolog.Logger
}

func NewConsumer(topics []string, qos byte, handler Handler, log zerolog.Logger) *Consumer {
	if qos > 2 {
		qos = 2
	}
	return &Consumer{topics: topics, qos: qos, handler: handler, log: log}
}

// Subscribe (re)issues every subscription. Use it as Config.OnConnect so a
// reconnect with a clean session gets its subscriptions back.
func (c *Consumer) Subscribe(client mqtt.Client) {
	for _, topic := range c.topics {
		token := client.Subscribe(topic, c.qos, func(_ mqtt.Client, msg mqtt.Message) {
			if c.handler == nil {
				c.log.Warn().Str("topic", topic).Msg("no handler set")
				return
			}
			if err := c.handler(topic, msg); err != nil {
				c.log.Error().Err(err).Str("topic", msg.Topic()).Msg("error handling message")
			}
		})
		if token.Wait() && token.Error() != nil {
			c.log.Error().Err(token.Error()).Str("topic", topic).Msg("subscribe failed")
			continue
		}
		c.log.Info().Str("topic", topic).Uint8("qos", c.qos).Msg("subscribed")
	}
}

// Unsubscribe drops every subscription if the client is still connected.
func (c *Consumer) Unsubscribe(client mqtt.Client) {
	if client == nil || !client.IsConnected() || len(c.topics) == 0 {
		return
	}
	client.Unsubscribe(c.topics...).Wait()
}
