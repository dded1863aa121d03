package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// ErrMissingSetting is wrapped by Validate for every required value left empty.
var ErrMissingSetting = errors.New("missing setting")

type BrokerConfig struct {
	URL      string   `yaml:"url"`
	User     string   `yaml:"user"`
	Password string   `yaml:"password"`
	ClientID string   `yaml:"client_id"`
	Topics   []string `yaml:"topics"`
	QoS      int      `yaml:"qos"`
}

type RosterConfig struct {
	File          string `yaml:"file"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	RedisKey      string `yaml:"redis_key"`
}

type InfluxConfig struct {
	URL             string `yaml:"url"`
	Token           string `yaml:"token"`
	Org             string `yaml:"org"`
	Bucket          string `yaml:"bucket"`
	BatchSize       int    `yaml:"batch_size"`
	FlushIntervalMs int    `yaml:"flush_interval_ms"`
}

type KafkaConfig struct {
	Brokers         []string `yaml:"brokers"`
	Topic           string   `yaml:"topic"`
	BreakerFailures int      `yaml:"breaker_failures"`
	BreakerOpenMs   int      `yaml:"breaker_open_ms"`
}

type DedupConfig struct {
	TTLSeconds int `yaml:"ttl_seconds"` // 0 disables dedup
	Max        int `yaml:"max"`
}

type Config struct {
	EventName string       `yaml:"event_name"`
	Broker    BrokerConfig `yaml:"broker"`
	Roster    RosterConfig `yaml:"roster"`
	Console   bool         `yaml:"console"`
	Influx    InfluxConfig `yaml:"influx"`
	Kafka     KafkaConfig  `yaml:"kafka"`
	Dedup     DedupConfig  `yaml:"dedup"`

	HTTPPort  int    `yaml:"http_port"`
	GRPCPort  int    `yaml:"grpc_port"`
	LogLevel  string `yaml:"log_level"`
	LogPretty bool   `yaml:"log_pretty"`
}

func defaultConfig() Config {
	return Config{
		EventName: "connEventStats",
		Broker: BrokerConfig{
			URL:      "tcp://localhost:1883",
			ClientID: "event-svc-",
			Topics:   []string{"particle/+/connEventStats"},
			QoS:      1,
		},
		Roster:  RosterConfig{RedisKey: "devices:names"},
		Console: true,
		Influx: InfluxConfig{
			Org:             "sdcc",
			Bucket:          "connevents",
			BatchSize:       50,
			FlushIntervalMs: 500,
		},
		Kafka:    KafkaConfig{Topic: "connection-events", BreakerFailures: 5, BreakerOpenMs: 10000},
		Dedup:    DedupConfig{TTLSeconds: 600, Max: 20000},
		HTTPPort: 8080,
		GRPCPort: 50052,
		LogLevel: "info",
	}
}

// loadConfig layers defaults < YAML file < environment < changed flags.
func loadConfig(path string, getenv func(string) string, flags *pflag.FlagSet) (Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config load failed: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config parse failed: %w", err)
		}
	}
	if getenv != nil {
		applyEnv(&cfg, getenv)
	}
	if flags != nil {
		if err := applyFlags(&cfg, flags); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	envStr := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	envInt := func(key string, dst *int) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	envBool := func(key string, dst *bool) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}
	envList := func(key string, dst *[]string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = splitList(v)
		}
	}

	envStr("EVENT_NAME", &cfg.EventName)
	envStr("MQTT_BROKER_URL", &cfg.Broker.URL)
	envStr("MQTT_USER", &cfg.Broker.User)
	envStr("MQTT_PASSWORD", &cfg.Broker.Password)
	envStr("MQTT_CLIENT_ID", &cfg.Broker.ClientID)
	envList("EVENT_SUB_TOPICS", &cfg.Broker.Topics)
	envInt("MQTT_QOS", &cfg.Broker.QoS)

	envStr("ROSTER_FILE", &cfg.Roster.File)
	envStr("ROSTER_REDIS_ADDR", &cfg.Roster.RedisAddr)
	envStr("ROSTER_REDIS_PASSWORD", &cfg.Roster.RedisPassword)
	envInt("ROSTER_REDIS_DB", &cfg.Roster.RedisDB)
	envStr("ROSTER_REDIS_KEY", &cfg.Roster.RedisKey)

	envBool("CONSOLE_OUTPUT", &cfg.Console)

	envStr("INFLUX_URL", &cfg.Influx.URL)
	envStr("INFLUX_TOKEN", &cfg.Influx.Token)
	envStr("INFLUX_ORG", &cfg.Influx.Org)
	envStr("INFLUX_BUCKET", &cfg.Influx.Bucket)
	envInt("WRITE_BATCH_SIZE", &cfg.Influx.BatchSize)
	envInt("WRITE_FLUSH_INTERVAL_MS", &cfg.Influx.FlushIntervalMs)

	envList("KAFKA_BROKERS", &cfg.Kafka.Brokers)
	envStr("KAFKA_TOPIC", &cfg.Kafka.Topic)
	envInt("KAFKA_BREAKER_FAILURES", &cfg.Kafka.BreakerFailures)
	envInt("KAFKA_BREAKER_OPEN_MS", &cfg.Kafka.BreakerOpenMs)

	envInt("DEDUP_TTL_SECONDS", &cfg.Dedup.TTLSeconds)
	envInt("DEDUP_MAX", &cfg.Dedup.Max)

	envInt("HTTP_PORT", &cfg.HTTPPort)
	envInt("GRPC_PORT", &cfg.GRPCPort)
	envStr("LOG_LEVEL", &cfg.LogLevel)
	envBool("LOG_PRETTY", &cfg.LogPretty)
}

// registerFlags declares the command line overrides. Only flags the user
// actually set are applied, so a flag default never hides env or file values.
func registerFlags(f *pflag.FlagSet) {
	d := defaultConfig()
	f.String("config", "", "YAML config file")
	f.String("event-name", d.EventName, "event name to decode")
	f.String("broker", d.Broker.URL, "MQTT broker URL")
	f.String("mqtt-user", "", "MQTT user")
	f.String("mqtt-password", "", "MQTT password")
	f.StringSlice("topic", d.Broker.Topics, "MQTT topic filters (repeatable)")
	f.String("roster", "", "YAML device roster file")
	f.String("roster-redis", "", "Redis address holding the device roster hash")
	f.Bool("console", d.Console, "print decoded lines to stdout")
	f.String("influx-url", "", "InfluxDB URL (enables the Influx sink)")
	f.StringSlice("kafka-brokers", nil, "Kafka brokers (enables the Kafka sink)")
	f.String("kafka-topic", d.Kafka.Topic, "Kafka topic for decoded events")
	f.Int("http-port", d.HTTPPort, "HTTP port for health, metrics and queries")
	f.Int("grpc-port", d.GRPCPort, "gRPC health port (0 disables)")
	f.String("log-level", d.LogLevel, "log level [debug,info,warn,error,quiet]")
	f.Bool("log-pretty", false, "human readable logs")
}

func applyFlags(cfg *Config, f *pflag.FlagSet) error {
	var err error
	str := func(name string, dst *string) {
		if err == nil && f.Changed(name) {
			*dst, err = f.GetString(name)
		}
	}
	slice := func(name string, dst *[]string) {
		if err == nil && f.Changed(name) {
			*dst, err = f.GetStringSlice(name)
		}
	}
	num := func(name string, dst *int) {
		if err == nil && f.Changed(name) {
			*dst, err = f.GetInt(name)
		}
	}
	boolean := func(name string, dst *bool) {
		if err == nil && f.Changed(name) {
			*dst, err = f.GetBool(name)
		}
	}

	str("event-name", &cfg.EventName)
	str("broker", &cfg.Broker.URL)
	str("mqtt-user", &cfg.Broker.User)
	str("mqtt-password", &cfg.Broker.Password)
	slice("topic", &cfg.Broker.Topics)
	str("roster", &cfg.Roster.File)
	str("roster-redis", &cfg.Roster.RedisAddr)
	boolean("console", &cfg.Console)
	str("influx-url", &cfg.Influx.URL)
	slice("kafka-brokers", &cfg.Kafka.Brokers)
	str("kafka-topic", &cfg.Kafka.Topic)
	num("http-port", &cfg.HTTPPort)
	num("grpc-port", &cfg.GRPCPort)
	str("log-level", &cfg.LogLevel)
	boolean("log-pretty", &cfg.LogPretty)
	if err != nil {
		return fmt.Errorf("read flags: %w", err)
	}
	return nil
}

func (c Config) InfluxEnabled() bool { return strings.TrimSpace(c.Influx.URL) != "" }
func (c Config) KafkaEnabled() bool  { return len(c.Kafka.Brokers) > 0 }

func (c Config) DedupTTL() time.Duration { return time.Duration(c.Dedup.TTLSeconds) * time.Second }

// Validate checks the settings the service cannot start without.
func (c Config) Validate() error {
	var errs []error
	missing := func(name string) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrMissingSetting, name))
	}
	if strings.TrimSpace(c.Broker.URL) == "" {
		missing("broker url")
	}
	if len(c.Broker.Topics) == 0 {
		missing("broker topics")
	}
	if strings.TrimSpace(c.EventName) == "" {
		missing("event name")
	}
	if !c.Console && !c.InfluxEnabled() && !c.KafkaEnabled() {
		missing("output sink (console, influx or kafka)")
	}
	if c.InfluxEnabled() && (c.Influx.Org == "" || c.Influx.Bucket == "") {
		missing("influx org/bucket")
	}
	if c.KafkaEnabled() && c.Kafka.Topic == "" {
		missing("kafka topic")
	}
	if c.Broker.QoS < 0 || c.Broker.QoS > 2 {
		errs = append(errs, fmt.Errorf("invalid mqtt qos %d", c.Broker.QoS))
	}
	return errors.Join(errs...)
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
