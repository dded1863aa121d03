package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/LeonardoBeccarini/connevents/internal/model"
	"github.com/LeonardoBeccarini/connevents/internal/services/event"
	"github.com/LeonardoBeccarini/connevents/internal/services/event/roster"
	"github.com/LeonardoBeccarini/connevents/pkg/broker"
	"github.com/LeonardoBeccarini/connevents/pkg/dedup"
	"github.com/LeonardoBeccarini/connevents/pkg/logging"
)

func main() {
	cmd := &cobra.Command{
		Use:           "event-svc",
		Short:         "Decode device connection event logs from MQTT",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := loadConfig(path, os.Getenv, cmd.Flags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			log, err := logging.New(cfg.LogLevel, cfg.LogPretty, os.Stderr)
			if err != nil {
				return err
			}
			return run(cfg, log)
		},
	}
	registerFlags(cmd.Flags())

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "event-svc: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg Config, log zerolog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// === Roster ===
	devices, err := loadRoster(ctx, cfg.Roster, log)
	if err != nil {
		return err
	}
	dir := event.DirectoryFromDevices(devices)
	log.Info().Int("devices", dir.Len()).Msg("device names loaded")
	engine := event.NewEngine(dir)

	// === Metrics ===
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := event.NewMetrics(reg)

	// === Sinks ===
	var (
		sinks  []event.NamedSink
		influx influxdb2.Client
		writer *event.Writer
		ks     *event.KafkaSink
	)
	if cfg.Console {
		sinks = append(sinks, event.NamedSink{Name: "console", Sink: event.NewConsoleSink(os.Stdout)})
	}
	if cfg.InfluxEnabled() {
		opts := influxdb2.DefaultOptions().
			SetBatchSize(uint(cfg.Influx.BatchSize)).
			SetFlushInterval(uint(cfg.Influx.FlushIntervalMs))
		influx = influxdb2.NewClientWithOptions(cfg.Influx.URL, cfg.Influx.Token, opts)
		defer influx.Close()
		writer = event.NewWriter(influx.WriteAPI(cfg.Influx.Org, cfg.Influx.Bucket), log)
		defer writer.Flush()
		sinks = append(sinks, event.NamedSink{Name: "influx", Sink: writer})
	}
	if cfg.KafkaEnabled() {
		ks = event.NewKafkaSink(event.KafkaConfig{
			Brokers:         cfg.Kafka.Brokers,
			Topic:           cfg.Kafka.Topic,
			BreakerFailures: cfg.Kafka.BreakerFailures,
			BreakerOpenFor:  time.Duration(cfg.Kafka.BreakerOpenMs) * time.Millisecond,
		})
		defer func() {
			if err := ks.Close(); err != nil {
				log.Warn().Err(err).Msg("kafka writer close")
			}
		}()
		sinks = append(sinks, event.NamedSink{Name: "kafka", Sink: ks})
	}
	sink := event.NewMultiSink(func(name string, err error) {
		metrics.SinkErrors.WithLabelValues(name).Inc()
		log.Warn().Err(err).Str("sink", name).Msg("sink delivery failed")
	}, sinks...)

	// === Handler ===
	opts := []event.HandlerOption{
		event.WithEventName(cfg.EventName),
		event.WithMetrics(metrics),
		event.WithLogger(log),
	}
	if cfg.Dedup.TTLSeconds > 0 {
		opts = append(opts, event.WithDeduper(dedup.New(cfg.DedupTTL(), cfg.Dedup.Max)))
	}
	h := event.NewMQTTHandler(engine, sink, opts...)

	// === MQTT ===
	consumer := broker.NewConsumer(cfg.Broker.Topics, byte(cfg.Broker.QoS), h.Handle, log)
	mqttClient, err := broker.NewConn(ctx, &broker.Config{
		URL:       cfg.Broker.URL,
		User:      cfg.Broker.User,
		Password:  cfg.Broker.Password,
		ClientID:  cfg.Broker.ClientID,
		OnConnect: consumer.Subscribe,
	}, log)
	if err != nil {
		return fmt.Errorf("mqtt connection error: %w", err)
	}
	defer broker.Close(mqttClient, log)

	// === HTTP ===
	mux := http.NewServeMux()
	mux.Handle("/healthz", event.NewHealthHandler(mqttClient, writer, ks))
	mux.Handle("/readyz", event.NewReadyHandler(mqttClient, writer, 2*time.Second))
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	if influx != nil {
		mux.Handle("/events/recent", event.NewRecentEventsHandler(influx, cfg.Influx.Org, cfg.Influx.Bucket))
	}
	hs := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("http listening")
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server error")
			cancel()
		}
	}()

	// === gRPC health ===
	var gs *grpc.Server
	if cfg.GRPCPort > 0 {
		lis, err := net.Listen("tcp", ":"+strconv.Itoa(cfg.GRPCPort))
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		gs = grpc.NewServer()
		hsrv := health.NewServer()
		healthpb.RegisterHealthServer(gs, hsrv)
		go event.WatchHealth(ctx, hsrv, mqttClient, 2*time.Second)
		go func() {
			log.Info().Int("port", cfg.GRPCPort).Msg("grpc health listening")
			if err := gs.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				log.Error().Err(err).Msg("grpc server error")
			}
		}()
	}

	log.Info().Strs("topics", cfg.Broker.Topics).Str("event", cfg.EventName).Int("sinks", sink.Len()).Msg("event-svc started")

	// === Wait for signal ===
	<-ctx.Done()
	log.Info().Msg("event-svc: shutting down...")

	consumer.Unsubscribe(mqttClient)
	if gs != nil {
		gs.GracefulStop()
	}
	shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shCancel()
	_ = hs.Shutdown(shCtx)
	return nil
}

// loadRoster prefers the YAML file, then the Redis hash. Without either, or
// when the source lists no devices, the service still runs and prints raw
// device ids.
func loadRoster(ctx context.Context, rc RosterConfig, log zerolog.Logger) ([]model.Device, error) {
	switch {
	case rc.File != "":
		devices, err := roster.LoadFile(rc.File)
		if errors.Is(err, roster.ErrEmptyRoster) {
			log.Warn().Str("file", rc.File).Msg("device roster is empty, printing device ids")
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("roster file: %w", err)
		}
		return devices, nil
	case rc.RedisAddr != "":
		devices, err := roster.LoadRedis(ctx, roster.RedisOpts{
			Addr:       rc.RedisAddr,
			Password:   rc.RedisPassword,
			DB:         rc.RedisDB,
			Key:        rc.RedisKey,
			Timeout:    3 * time.Second,
			MaxElapsed: 30 * time.Second,
		})
		if errors.Is(err, roster.ErrEmptyRoster) {
			log.Warn().Str("key", rc.RedisKey).Msg("device roster is empty, printing device ids")
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("roster redis: %w", err)
		}
		return devices, nil
	}
	log.Warn().Msg("no device roster configured, printing device ids")
	return nil, nil
}
