// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package broker runs an in-process MQTT broker so a single board can host
// the producer and its consumers without an external mosquitto.
package broker

import (
	"fmt"
	"log/slog"

	mochi "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"
)

// Start listens on addr (for example ":1883") and serves in the
// background. Every client is allowed; the broker is meant for a closed
// network. Call Close on the returned server to stop it.
func Start(addr string) (*mochi.Server, error) {
	server := mochi.New(&mochi.Options{
		InlineClient: true,
		Logger:       slog.With("component", "broker"),
	})

	if err := server.AddHook(new(auth.AllowHook), nil); err != nil {
		return nil, fmt.Errorf("broker auth hook: %w", err)
	}

	tcp := listeners.NewTCP(listeners.Config{ID: "glove-tcp", Type: "tcp", Address: addr})
	if err := server.AddListener(tcp); err != nil {
		return nil, fmt.Errorf("broker listener %s: %w", addr, err)
	}

	if err := server.Serve(); err != nil {
		return nil, fmt.Errorf("broker serve: %w", err)
	}
	slog.Info("embedded MQTT broker listening", "addr", addr)
	return server, nil
}
