// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/relabs-tech/glove_computer/internal/app"
)

var optSeed uint64

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Print session updates; type r to reset",
	RunE: runWith(func(ctx context.Context) error {
		return app.RunConsole(ctx, os.Stdin, os.Stdout)
	}),
}

var replayMockCmd = &cobra.Command{
	Use:   "replay-mock",
	Short: "Run a session against the mock glove without MQTT",
	RunE: runWith(func(ctx context.Context) error {
		return app.RunMockConsole(ctx, seedOrNow(), os.Stdin, os.Stdout)
	}),
}

func seedOrNow() uint64 {
	if optSeed != 0 {
		return optSeed
	}
	return uint64(time.Now().UnixNano())
}

// addSeedFlag registers --seed on commands that drive the mock glove.
func addSeedFlag(fs *pflag.FlagSet) {
	fs.Uint64Var(&optSeed, "seed", 0, "mock glove seed (0 picks one)")
}

func init() {
	addSeedFlag(replayMockCmd.Flags())
	rootCmd.AddCommand(consoleCmd, replayMockCmd)
}
