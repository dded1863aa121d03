package broker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Config struct {
	URL      string // tcp://host:1883, ssl://host:8883, ws://...
	User     string
	Password string
	ClientID string // a random suffix is appended when empty or ending in "-"

	MaxRetries int
	MaxElapsed time.Duration
	KeepAlive  time.Duration

	// OnConnect runs after every (re)connect, e.g. to re-subscribe.
	OnConnect func(mqtt.Client)
}

// clientID returns cfg.ClientID, completed with a uuid when it is empty or
// ends with "-", so several replicas never kick each other off the broker.
func (cfg *Config) clientID() string {
	id := strings.TrimSpace(cfg.ClientID)
	if id == "" {
		id = "connevents-"
	}
	if strings.HasSuffix(id, "-") {
		id += uuid.NewString()[:8]
	}
	return id
}

// NewConn connects to the broker, retrying with exponential backoff, and
// disconnects when ctx is done.
func NewConn(ctx context.Context, cfg *Config, log zerolog.Logger) (mqtt.Client, error) {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 5
	}
	if cfg.MaxElapsed <= 0 {
		cfg.MaxElapsed = 10 * time.Second
	}
	if cfg.KeepAlive <= 0 {
		cfg.KeepAlive = 30 * time.Second
	}
	opts := clientOptions(cfg, log)

	// Exponential backoff per le retry in caso di fail
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = cfg.MaxElapsed

	var client mqtt.Client
	err := backoff.Retry(func() error {
		client = mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			log.Warn().Err(token.Error()).Msg("failed to connect to mqtt broker")
			return token.Error()
		}
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(cfg.MaxRetries-1)), ctx))
	if err != nil {
		return nil, fmt.Errorf("could not establish mqtt connection after retries: %w", err)
	}

	go func() {
		<-ctx.Done()
		Close(client, log)
	}()

	return client, nil
}

// clientOptions keeps paho's ordered delivery: callbacks run one at a time in
// arrival order, so consecutive payloads of a device are decoded in sequence.
func clientOptions(cfg *Config, log zerolog.Logger) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.URL).
		SetClientID(cfg.clientID()).
		SetCleanSession(true).
		SetKeepAlive(cfg.KeepAlive).
		SetAutoReconnect(true)
	if cfg.User != "" {
		opts.SetUsername(cfg.User)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.OnConnect = func(c mqtt.Client) {
		log.Info().Str("broker", cfg.URL).Msg("mqtt connected")
		if cfg.OnConnect != nil {
			cfg.OnConnect(c)
		}
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Msg("mqtt connection lost")
	}
	return opts
}

func Close(client mqtt.Client, log zerolog.Logger) {
	if client != nil && client.IsConnected() {
		client.Disconnect(250)
		log.Info().Msg("mqtt connection closed")
	}
}
