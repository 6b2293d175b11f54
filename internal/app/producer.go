// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/sync/errgroup"

	"github.com/relabs-tech/glove_computer/internal/acquire"
	"github.com/relabs-tech/glove_computer/internal/broker"
	"github.com/relabs-tech/glove_computer/internal/config"
	"github.com/relabs-tech/glove_computer/internal/glove"
	"github.com/relabs-tech/glove_computer/internal/motion"
	"github.com/relabs-tech/glove_computer/internal/session"
	"github.com/relabs-tech/glove_computer/internal/telemetry"
)

// mockPunchPeriod is the number of readings between simulated punches.
const mockPunchPeriod = 20

// RunProducer reads the glove, runs the motion session and publishes every
// update on TOPIC_STATS. Reset commands arrive on TOPIC_COMMAND.
func RunProducer(ctx context.Context) error {
	cfg := config.Get()
	log := slog.With("component", "producer")
	log.Info("starting glove producer", "source", cfg.GloveSource, "peak_scope", cfg.PeakScope())

	if cfg.MQTTEmbeddedBroker {
		srv, err := broker.Start(cfg.MQTTEmbeddedAddr)
		if err != nil {
			return err
		}
		defer srv.Close()
	}

	client, err := telemetry.Connect(cfg.MQTTBroker, cfg.MQTTClientIDProducer)
	if err != nil {
		return err
	}
	defer telemetry.Disconnect(client)

	sess := session.New(motion.WithPeakScope(cfg.PeakScope()))
	log = log.With("session", sess.ID())

	if err := telemetry.SubscribeCommands(client, cfg.TopicCommand, sess.Reset); err != nil {
		return err
	}

	loop := &acquire.Loop{
		Dial:           dialer(cfg, client),
		Sink:           sess,
		AzOffset:       cfg.GloveAzOffsetG,
		Interval:       config.Millis(cfg.SampleInterval),
		ReconnectDelay: config.Millis(cfg.GloveReconnectDelay),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sess.Run(ctx) })
	g.Go(func() error { return telemetry.PublishUpdates(ctx, client, cfg.TopicStats, sess) })
	g.Go(func() error { return loop.Run(ctx) })

	log.Info("producer running")
	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		log.Info("producer stopped")
		return nil
	}
	return err
}

// dialer picks the glove transport named by GLOVE_SOURCE.
func dialer(cfg *config.Config, client mqtt.Client) acquire.DialFunc {
	switch cfg.GloveSource {
	case config.SourceMQTT:
		return func(context.Context) (glove.Source, error) {
			src, err := glove.NewMQTTSource(client, cfg.TopicSamples)
			if err != nil {
				return nil, err
			}
			return src, nil
		}
	case config.SourceMock:
		return func(context.Context) (glove.Source, error) {
			return glove.NewMockSource(uint64(time.Now().UnixNano()), mockPunchPeriod), nil
		}
	default:
		return func(context.Context) (glove.Source, error) {
			src, err := glove.OpenSerial(cfg.GloveSerialPort, uint(cfg.GloveBaudRate))
			if err != nil {
				return nil, fmt.Errorf("glove bridge: %w", err)
			}
			return src, nil
		}
	}
}
