// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/ethereum/go-ethereum/event"

	"github.com/relabs-tech/glove_computer/internal/session"
)

// updateBacklog is the publisher's feed buffer.
const updateBacklog = 64

func EncodeUpdate(u session.Update) ([]byte, error) {
	b, err := json.Marshal(u)
	if err != nil {
		return nil, fmt.Errorf("encode update: %w", err)
	}
	return b, nil
}

func DecodeUpdate(payload []byte) (session.Update, error) {
	var u session.Update
	if err := json.Unmarshal(payload, &u); err != nil {
		return session.Update{}, fmt.Errorf("decode update: %w", err)
	}
	return u, nil
}

// Source is the part of a session the publisher needs.
type Source interface {
	Subscribe(ch chan<- session.Update) event.Subscription
}

// PublishUpdates forwards every session update to topic, retained, until
// ctx is done. Publish failures are logged; the broker connection heals
// itself.
func PublishUpdates(ctx context.Context, client mqtt.Client, topic string, src Source) error {
	log := slog.With("component", "telemetry", "topic", topic)

	ch := make(chan session.Update, updateBacklog)
	sub := src.Subscribe(ch)
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-sub.Err():
			return err
		case u := <-ch:
			payload, err := EncodeUpdate(u)
			if err != nil {
				log.Error("dropping update", "error", err)
				continue
			}
			if err := publish(client, topic, true, payload); err != nil {
				log.Warn("stats publish failed", "seq", u.Seq, "error", err)
			}
		}
	}
}

// SubscribeUpdates decodes every update published on topic and hands it
// to fn. fn runs on the MQTT client's goroutine.
func SubscribeUpdates(client mqtt.Client, topic string, fn func(session.Update)) error {
	log := slog.With("component", "telemetry", "topic", topic)
	err := Subscribe(client, topic, func(_ mqtt.Client, msg mqtt.Message) {
		u, err := DecodeUpdate(msg.Payload())
		if err != nil {
			log.Warn("stats unmarshal error", "error", err)
			return
		}
		fn(u)
	})
	if err != nil {
		return err
	}
	log.Info("subscribed to stats")
	return nil
}
