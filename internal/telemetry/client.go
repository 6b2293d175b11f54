// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package telemetry carries session updates and control commands over MQTT.
package telemetry

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	publishTimeout       = 2 * time.Second
	disconnectMs         = 250
	maxReconnectInterval = 5 * time.Second
)

// subscriptions remembers what a client subscribed to so the set can be
// replayed after a reconnect. The broker may have lost it with the session.
type subscriptions struct {
	mu     sync.Mutex
	topics map[string]mqtt.MessageHandler
}

func (s *subscriptions) add(topic string, cb mqtt.MessageHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics[topic] = cb
}

func (s *subscriptions) remove(topic string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.topics, topic)
}

func (s *subscriptions) snapshot() map[string]mqtt.MessageHandler {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]mqtt.MessageHandler, len(s.topics))
	for t, cb := range s.topics {
		out[t] = cb
	}
	return out
}

var registry sync.Map // mqtt.Client -> *subscriptions

// Connect dials the broker. The client reconnects on its own after the
// first successful connection and restores every subscription made
// through Subscribe.
func Connect(broker, clientID string) (mqtt.Client, error) {
	log := slog.With("component", "mqtt", "client_id", clientID)
	subs := &subscriptions{topics: make(map[string]mqtt.MessageHandler)}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Warn("MQTT connection lost", "error", err)
		}).
		SetMaxReconnectInterval(maxReconnectInterval).
		SetReconnectingHandler(func(mqtt.Client, *mqtt.ClientOptions) {
			log.Info("MQTT reconnecting", "broker", broker)
		}).
		SetOnConnectHandler(func(c mqtt.Client) {
			for topic, cb := range subs.snapshot() {
				token := c.Subscribe(topic, 0, cb)
				if !token.WaitTimeout(publishTimeout) || token.Error() != nil {
					log.Warn("MQTT resubscribe failed", "topic", topic, "error", token.Error())
					continue
				}
				log.Info("MQTT resubscribed", "topic", topic)
			}
		})

	client := mqtt.NewClient(opts)
	registry.Store(client, subs)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		registry.Delete(client)
		return nil, fmt.Errorf("MQTT connect %s: %w", broker, token.Error())
	}
	log.Info("connected to MQTT broker", "broker", broker)
	return client, nil
}

// Disconnect closes the client after giving in-flight work a moment.
func Disconnect(client mqtt.Client) {
	registry.Delete(client)
	client.Disconnect(disconnectMs)
}

// Subscribe subscribes cb to topic at QoS 0. On clients made by Connect
// the subscription survives reconnects.
func Subscribe(client mqtt.Client, topic string, cb mqtt.MessageHandler) error {
	token := client.Subscribe(topic, 0, cb)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("MQTT subscribe %s: %w", topic, err)
	}
	if subs, ok := registry.Load(client); ok {
		subs.(*subscriptions).add(topic, cb)
	}
	return nil
}

// Unsubscribe drops topic and forgets it for later reconnects.
func Unsubscribe(client mqtt.Client, topic string) error {
	if subs, ok := registry.Load(client); ok {
		subs.(*subscriptions).remove(topic)
	}
	token := client.Unsubscribe(topic)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("MQTT unsubscribe %s: timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("MQTT unsubscribe %s: %w", topic, err)
	}
	return nil
}

func publish(client mqtt.Client, topic string, retained bool, payload []byte) error {
	token := client.Publish(topic, 0, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("MQTT publish %s: timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("MQTT publish %s: %w", topic, err)
	}
	return nil
}
