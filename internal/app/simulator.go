// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/glove_computer/internal/config"
	"github.com/relabs-tech/glove_computer/internal/glove"
	"github.com/relabs-tech/glove_computer/internal/telemetry"
)

// Simulator output formats.
const (
	SimulateFrames    = "frames"    // binary frames on TOPIC_SAMPLES
	SimulateSentences = "sentences" // $GLACC lines on the given writer
)

// RunSimulator plays the mock glove at SAMPLE_INTERVAL. With
// SimulateFrames it stands in for a glove bridge publishing over MQTT, so
// a producer with GLOVE_SOURCE=mqtt can be tested without hardware. With
// SimulateSentences it writes what the serial bridge would send.
func RunSimulator(ctx context.Context, seed uint64, format string, out io.Writer) error {
	cfg := config.Get()
	log := slog.With("component", "simulator", "format", format)
	log.Info("starting glove simulator")

	var emit func(glove.Reading) error
	switch format {
	case SimulateFrames:
		client, err := telemetry.Connect(cfg.MQTTBroker, cfg.MQTTClientIDSimulator)
		if err != nil {
			return err
		}
		defer telemetry.Disconnect(client)
		emit = frameEmitter(client, cfg.TopicSamples)
	case SimulateSentences:
		emit = func(r glove.Reading) error {
			_, err := fmt.Fprintf(out, "%s\r\n", glove.FormatSentence(r))
			return err
		}
	default:
		return fmt.Errorf("unknown simulator format %q (want %s or %s)", format, SimulateFrames, SimulateSentences)
	}

	interval := config.Millis(cfg.SampleInterval)
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	src := glove.NewMockSource(seed, mockPunchPeriod)
	defer src.Close()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		r, err := src.Next(ctx)
		if err != nil {
			return err
		}
		if err := emit(r); err != nil {
			log.Warn("simulator emit error", "error", err)
			continue
		}
		log.Debug("simulated reading", "ax", r.Ax, "ay", r.Ay, "az", r.Az, "force", r.Force)
	}
}

func frameEmitter(client mqtt.Client, topic string) func(glove.Reading) error {
	return func(r glove.Reading) error {
		token := client.Publish(topic, 0, false, glove.EncodeFrame(r))
		token.Wait()
		return token.Error()
	}
}
