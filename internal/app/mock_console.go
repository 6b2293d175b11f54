// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/relabs-tech/glove_computer/internal/acquire"
	"github.com/relabs-tech/glove_computer/internal/config"
	"github.com/relabs-tech/glove_computer/internal/glove"
	"github.com/relabs-tech/glove_computer/internal/motion"
	"github.com/relabs-tech/glove_computer/internal/session"
)

// RunMockConsole runs a whole session against the mock glove and prints
// the updates, no broker needed. Typing "r" resets the session directly.
func RunMockConsole(ctx context.Context, seed uint64, in io.Reader, out io.Writer) error {
	cfg := config.Get()
	sess := session.New(motion.WithPeakScope(cfg.PeakScope()))

	interval := config.Millis(cfg.SampleInterval)
	if interval <= 0 {
		// Unpaced mock readings arrive microseconds apart and never
		// register as motion.
		interval = 100 * time.Millisecond
	}
	loop := &acquire.Loop{
		Dial: func(context.Context) (glove.Source, error) {
			return glove.NewMockSource(seed, mockPunchPeriod), nil
		},
		Sink:           sess,
		AzOffset:       glove.DefaultAzOffset,
		Interval:       interval,
		ReconnectDelay: config.Millis(cfg.GloveReconnectDelay),
	}

	updates := make(chan session.Update, 16)
	sub := sess.Subscribe(updates)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sess.Run(ctx) })
	g.Go(func() error { return loop.Run(ctx) })
	g.Go(func() error {
		// Unsubscribing here unblocks a session stuck delivering to us.
		defer sub.Unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case u := <-updates:
				fmt.Fprintln(out, formatUpdate(u))
			}
		}
	})
	go readCommands(ctx, in, sess.Reset)

	err := g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
