// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Command glove runs the glove computer: the producer that turns glove
// readings into punch statistics, and the consumers that show them.
package main

func main() {
	Execute()
}
