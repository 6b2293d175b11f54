// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/glove_computer/internal/app"
)

var optSimFormat string

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Emit mock glove readings",
	Long: `Plays the mock glove at SAMPLE_INTERVAL. --format frames publishes binary
frames on TOPIC_SAMPLES (pair with GLOVE_SOURCE=mqtt); --format sentences
writes $GLACC lines to stdout, e.g. into a pty for GLOVE_SOURCE=serial.`,
	RunE: runWith(func(ctx context.Context) error {
		return app.RunSimulator(ctx, seedOrNow(), optSimFormat, os.Stdout)
	}),
}

func init() {
	flags := simulateCmd.Flags()
	flags.StringVar(&optSimFormat, "format", app.SimulateFrames, "frames or sentences")
	addSeedFlag(flags)
	rootCmd.AddCommand(simulateCmd)
}
