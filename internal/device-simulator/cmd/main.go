package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	deviceSimulator "github.com/LeonardoBeccarini/connevents/internal/device-simulator"
	"github.com/LeonardoBeccarini/connevents/pkg/broker"
	"github.com/LeonardoBeccarini/connevents/pkg/logging"
)

func main() {
	var (
		brokerURL   string
		user        string
		password    string
		devices     []string
		topicTmpl   string
		interval    time.Duration
		failureRate float64
		noClock     bool
		logLevel    string
	)

	cmd := &cobra.Command{
		Use:   "device-sim",
		Short: "Publish simulated connection event logs over MQTT",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := logging.New(logLevel, true, os.Stderr)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			client, err := broker.NewConn(ctx, &broker.Config{
				URL:      brokerURL,
				User:     user,
				Password: password,
				ClientID: "device-sim-",
			}, log)
			if err != nil {
				return err
			}
			defer broker.Close(client, log)
			publisher := broker.NewPublisher(client, 1)

			var wg sync.WaitGroup
			for i, id := range devices {
				q := deviceSimulator.NewQueue(time.Now)
				q.SetClockValid(!noClock)
				g := deviceSimulator.NewGenerator(q, time.Now().UnixNano()+int64(i))
				g.FailureRate = failureRate
				topic := strings.ReplaceAll(topicTmpl, "{device}", id)
				sim := deviceSimulator.NewDeviceSimulator(id, topic, q, g, publisher, log)

				wg.Add(1)
				go func() {
					defer wg.Done()
					sim.Start(ctx, interval)
				}()
			}
			log.Info().Strs("devices", devices).Msg("simulators started")
			wg.Wait()
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&brokerURL, "broker", "tcp://localhost:1883", "MQTT broker URL")
	f.StringVar(&user, "user", "guest", "MQTT user")
	f.StringVar(&password, "password", "guest", "MQTT password")
	f.StringSliceVar(&devices, "device", []string{"e00fce68sim000000000001"}, "device ids to simulate (repeatable)")
	f.StringVar(&topicTmpl, "topic", "particle/{device}/connEventStats", "publish topic template")
	f.DurationVar(&interval, "interval", 2*time.Second, "simulation step")
	f.Float64Var(&failureRate, "failure-rate", 0.05, "probability of a link failure per step")
	f.BoolVar(&noClock, "no-clock", false, "publish epoch 0 (device without time sync)")
	f.StringVar(&logLevel, "log-level", "info", "log level")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "device-sim: %v\n", err)
		os.Exit(1)
	}
}
