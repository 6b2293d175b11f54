// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"github.com/spf13/cobra"

	"github.com/relabs-tech/glove_computer/internal/app"
)

var producerCmd = &cobra.Command{
	Use:   "producer",
	Short: "Read the glove and publish session statistics",
	Long: `Reads the glove from GLOVE_SOURCE, runs the motion session and publishes
every update on TOPIC_STATS. Resets are taken from TOPIC_COMMAND.`,
	RunE: runWith(app.RunProducer),
}

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Serve the dashboard API and websockets",
	RunE:  runWith(app.RunWeb),
}

var displayCmd = &cobra.Command{
	Use:   "display",
	Short: "Show session statistics on the SSD1306 OLED",
	RunE:  runWith(app.RunDisplay),
}

func init() {
	rootCmd.AddCommand(producerCmd, webCmd, displayCmd)
}
