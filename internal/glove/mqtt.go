// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package glove

import (
	"context"
	"log/slog"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/glove_computer/internal/telemetry"
)

// mqttBacklog bounds how many frames may queue between the MQTT callback
// and the acquisition loop before new frames are dropped.
const mqttBacklog = 64

// MQTTSource receives binary frames (see DecodeFrame) on an MQTT topic.
type MQTTSource struct {
	client mqtt.Client
	topic  string
	frames chan Reading
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

// NewMQTTSource subscribes to topic on an already connected client. The
// subscription is restored whenever the client reconnects.
func NewMQTTSource(client mqtt.Client, topic string) (*MQTTSource, error) {
	s := &MQTTSource{
		client: client,
		topic:  topic,
		frames: make(chan Reading, mqttBacklog),
		done:   make(chan struct{}),
		logger: slog.With("component", "glove", "source", "mqtt", "topic", topic),
	}
	if err := telemetry.Subscribe(client, topic, s.handle); err != nil {
		return nil, err
	}
	s.logger.Info("subscribed to glove frames")
	return s, nil
}

func (s *MQTTSource) handle(_ mqtt.Client, msg mqtt.Message) {
	r, err := DecodeFrame(msg.Payload())
	if err != nil {
		s.logger.Warn("glove frame decode error", "error", err)
		return
	}
	select {
	case s.frames <- r:
	case <-s.done:
	default:
		s.logger.Warn("glove frame backlog full, dropping frame")
	}
}

func (s *MQTTSource) Next(ctx context.Context) (Reading, error) {
	select {
	case r := <-s.frames:
		return r, nil
	case <-s.done:
		return Reading{}, ErrSourceClosed
	case <-ctx.Done():
		return Reading{}, ctx.Err()
	}
}

// Close unsubscribes. The MQTT client itself is owned by the caller.
func (s *MQTTSource) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = telemetry.Unsubscribe(s.client, s.topic)
	})
	return err
}
