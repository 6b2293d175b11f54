// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/glove_computer/internal/config"
)

var optConfigPath string

var rootCmd = &cobra.Command{
	Use:   "glove",
	Short: "Boxing glove motion and force computer",
	Long: `Reads a sensor glove (serial bridge, MQTT frames or a mock), detects
punches, integrates speed and calibrates force, and publishes the session
statistics over MQTT to a console, a web dashboard and an OLED display.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&optConfigPath, "config", "c", "glove_config.txt",
		"KEY=VALUE configuration file")
}

// setup loads the configuration, installs the default slog handler at
// LOG_LEVEL and returns a context cancelled on SIGINT/SIGTERM.
func setup(cmd *cobra.Command) (context.Context, context.CancelFunc, error) {
	if err := config.InitGlobal(optConfigPath); err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg := config.Get()

	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, nil, err
	}
	setDefaultSlog(level)
	slog.Info(fmt.Sprintf("starting glove %s", cmd.Name()), "config", optConfigPath)

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	return ctx, cancel, nil
}

func setDefaultSlog(level slog.Level) {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelDebug,
	})
	slog.SetDefault(slog.New(handler))
}

// runWith wraps an app entry point in the common setup.
func runWith(fn func(ctx context.Context) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel, err := setup(cmd)
		if err != nil {
			return err
		}
		defer cancel()
		return fn(ctx)
	}
}
