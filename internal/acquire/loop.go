// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package acquire pulls readings from a glove source, times them and
// feeds them to a session, redialling the source when it fails.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/relabs-tech/glove_computer/internal/glove"
	"github.com/relabs-tech/glove_computer/internal/motion"
)

// DialFunc opens a fresh glove source.
type DialFunc func(ctx context.Context) (glove.Source, error)

// Sink receives timed samples. *session.Session implements it.
type Sink interface {
	Submit(ctx context.Context, smp motion.Sample) error
}

// Loop is the acquisition loop. Interval paces polled sources only; push
// sources are drained as fast as they deliver. Zero durations disable
// pacing and use a one second reconnect delay.
type Loop struct {
	Dial           DialFunc
	Sink           Sink
	AzOffset       float64
	Interval       time.Duration
	ReconnectDelay time.Duration

	// Now is the clock used to measure elapsed time. Defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

func (l *Loop) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

func (l *Loop) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.With("component", "acquire")
}

func (l *Loop) reconnectDelay() time.Duration {
	if l.ReconnectDelay > 0 {
		return l.ReconnectDelay
	}
	return time.Second
}

// Run dials the source and streams samples into the sink until ctx is
// cancelled. Transport failures close the source, wait the reconnect delay
// and dial again; the sink is never told about them.
func (l *Loop) Run(ctx context.Context) error {
	if l.Dial == nil || l.Sink == nil {
		return errors.New("acquire: Dial and Sink are required")
	}
	log := l.logger()

	for {
		src, err := l.Dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("glove connect failed, retrying", "error", err, "delay", l.reconnectDelay())
		} else {
			log.Info("connected to glove")
			err = l.stream(ctx, src)
			if cerr := src.Close(); cerr != nil {
				log.Debug("glove source close", "error", cerr)
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("glove disconnected, reconnecting", "error", err, "delay", l.reconnectDelay())
		}

		if !sleep(ctx, l.reconnectDelay()) {
			return ctx.Err()
		}
	}
}

// stream reads until the source fails. Elapsed time is measured between
// successive accepted read completions, the first one from the moment the
// source was connected. A discarded reading does not restart the window.
func (l *Loop) stream(ctx context.Context, src glove.Source) error {
	log := l.logger()
	paced := l.Interval > 0 && glove.IsPolled(src)
	last := l.now()

	for {
		r, err := src.Next(ctx)
		if err != nil {
			return fmt.Errorf("read glove: %w", err)
		}
		t := l.now()
		elapsed := t.Sub(last).Seconds()

		if err := l.Sink.Submit(ctx, r.Sample(l.AzOffset, elapsed)); err != nil {
			if errors.Is(err, motion.ErrMalformedSample) {
				log.Warn("discarding malformed sample", "error", err)
				continue
			}
			return err
		}
		last = t

		if paced && !sleep(ctx, l.Interval) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
