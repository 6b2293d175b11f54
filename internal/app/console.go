// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/relabs-tech/glove_computer/internal/config"
	"github.com/relabs-tech/glove_computer/internal/session"
	"github.com/relabs-tech/glove_computer/internal/telemetry"
)

// formatUpdate renders one update as a console line.
func formatUpdate(u session.Update) string {
	if u.Kind == session.KindReset {
		return fmt.Sprintf("[RESET] session %s cleared", shortID(u.SessionID))
	}
	return fmt.Sprintf(
		"[GLOVE] #%-8s %-6s  F=%7.2f N  v_max=%6.2f m/s  f_max=%7.2f N  count=%s",
		humanize.Comma(int64(u.Seq)), u.State, u.Force, u.MaxSpeed, u.MaxForce,
		humanize.Comma(int64(u.EventCount)),
	)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// isResetLine reports whether an operator typed a reset at the console.
func isResetLine(line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "r", telemetry.CommandReset:
		return true
	}
	return false
}

// readCommands calls onReset for every reset line read from in, until in
// is exhausted or ctx is done.
func readCommands(ctx context.Context, in io.Reader, onReset func()) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		if isResetLine(scanner.Text()) {
			onReset()
		}
	}
}

// RunConsole prints every session update published by the producer and
// sends a reset when the operator types "r".
func RunConsole(ctx context.Context, in io.Reader, out io.Writer) error {
	cfg := config.Get()
	log := slog.With("component", "console")

	client, err := telemetry.Connect(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}
	defer telemetry.Disconnect(client)

	err = telemetry.SubscribeUpdates(client, cfg.TopicStats, func(u session.Update) {
		fmt.Fprintln(out, formatUpdate(u))
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "type r + enter to reset the session")
	go readCommands(ctx, in, func() {
		if err := telemetry.PublishCommand(client, cfg.TopicCommand, telemetry.CommandReset); err != nil {
			log.Warn("reset command failed", "error", err)
			return
		}
		log.Info("reset requested")
	})

	<-ctx.Done()
	log.Info("console: shutting down")
	return nil
}
