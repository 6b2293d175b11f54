// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package glove

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	serial "github.com/jacobsa/go-serial/serial"
)

// LineSource reads $GLACC sentences from a byte stream, typically the
// serial port of the glove bridge.
type LineSource struct {
	rc     io.ReadCloser
	reader *bufio.Reader
	logger *slog.Logger
}

// OpenSerial opens the bridge's serial port (8N1, blocking reads).
func OpenSerial(portName string, baudRate uint) (*LineSource, error) {
	opts := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              baudRate,
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}
	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open glove serial port %s: %w", portName, err)
	}
	slog.Info("glove serial port opened", "port", portName, "baud", baudRate)
	return NewLineSource(port), nil
}

// NewLineSource wraps any line-oriented stream.
func NewLineSource(rc io.ReadCloser) *LineSource {
	return &LineSource{
		rc:     rc,
		reader: bufio.NewReader(rc),
		logger: slog.With("component", "glove", "source", "serial"),
	}
}

// Next returns the next glove reading. Blank lines, non-NMEA noise, bad
// checksums and foreign sentences are skipped. A read can only be
// interrupted between lines; closing the source unblocks it.
func (s *LineSource) Next(ctx context.Context) (Reading, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Reading{}, err
		}
		line, err := s.reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if line != "" && strings.HasPrefix(line, "$") {
			r, perr := ParseSentence(line)
			if perr == nil {
				return r, nil
			}
			if !errors.Is(perr, ErrUnexpectedSentence) {
				s.logger.Debug("dropping glove line", "line", line, "error", perr)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Reading{}, fmt.Errorf("glove serial read: %w", ErrSourceClosed)
			}
			return Reading{}, fmt.Errorf("glove serial read: %w", err)
		}
	}
}

func (s *LineSource) Close() error {
	return s.rc.Close()
}
