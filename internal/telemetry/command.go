// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// CommandReset clears the session's accumulated state.
const CommandReset = "reset"

var ErrUnknownCommand = errors.New("unknown command")

// Command is the JSON body published on the command topic.
type Command struct {
	Command string `json:"command"`
}

// ParseCommand accepts {"command":"reset"} as well as a bare "reset".
func ParseCommand(payload []byte) (string, error) {
	text := strings.TrimSpace(string(payload))
	name := text
	if strings.HasPrefix(text, "{") {
		var c Command
		if err := json.Unmarshal([]byte(text), &c); err != nil {
			return "", fmt.Errorf("decode command: %w", err)
		}
		name = c.Command
	}
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case CommandReset:
		return name, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
}

// PublishCommand sends a command. Commands are never retained so a late
// subscriber does not replay an old reset.
func PublishCommand(client mqtt.Client, topic, name string) error {
	payload, err := json.Marshal(Command{Command: name})
	if err != nil {
		return fmt.Errorf("encode command: %w", err)
	}
	return publish(client, topic, false, payload)
}

// SubscribeCommands calls onReset for every reset received on topic.
// Anything else is logged and ignored.
func SubscribeCommands(client mqtt.Client, topic string, onReset func()) error {
	log := slog.With("component", "telemetry", "topic", topic)
	err := Subscribe(client, topic, func(_ mqtt.Client, msg mqtt.Message) {
		name, err := ParseCommand(msg.Payload())
		if err != nil {
			log.Warn("ignoring command", "error", err)
			return
		}
		log.Info("command received", "command", name)
		onReset()
	})
	if err != nil {
		return err
	}
	log.Info("subscribed to commands")
	return nil
}
