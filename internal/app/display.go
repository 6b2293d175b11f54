// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/glove_computer/internal/config"
	"github.com/relabs-tech/glove_computer/internal/session"
	"github.com/relabs-tech/glove_computer/internal/telemetry"
)

const (
	displayWidth  = 128
	displayHeight = 64
)

// addrBus pins every transaction to the configured display address; the
// ssd1306 driver always talks to the default 0x3C.
type addrBus struct {
	i2c.Bus
	addr uint16
}

func (b addrBus) Tx(_ uint16, w, r []byte) error {
	return b.Bus.Tx(b.addr, w, r)
}

// displayData holds the latest update for the display loop.
type displayData struct {
	mu     sync.RWMutex
	update session.Update
	have   bool
}

func (d *displayData) set(u session.Update) {
	d.mu.Lock()
	d.update = u
	d.have = true
	d.mu.Unlock()
}

func (d *displayData) get() (session.Update, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.update, d.have
}

// RunDisplay mirrors the session stats on an SSD1306 OLED.
func RunDisplay(ctx context.Context) error {
	cfg := config.Get()
	log := slog.With("component", "display")

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open(cfg.DisplayI2CBus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(addrBus{Bus: bus, addr: cfg.DisplayI2CAddr}, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	defer dev.Halt()
	log.Info(fmt.Sprintf("display initialized at 0x%02X", cfg.DisplayI2CAddr))

	if err := dev.Draw(dev.Bounds(), renderStats(session.Update{}, false), image.Point{}); err != nil {
		log.Warn("error showing splash", "error", err)
	}

	data := &displayData{}
	client, err := telemetry.Connect(cfg.MQTTBroker, cfg.MQTTClientIDDisplay)
	if err != nil {
		return err
	}
	defer telemetry.Disconnect(client)

	if err := telemetry.SubscribeUpdates(client, cfg.TopicStats, data.set); err != nil {
		return err
	}

	ticker := time.NewTicker(config.Millis(cfg.DisplayUpdateInterval))
	defer ticker.Stop()

	log.Info("starting update loop")
	var last screenKey
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		u, have := data.get()
		key := screenKeyOf(u, have)
		if key == last {
			continue
		}
		last = key
		if err := dev.Draw(dev.Bounds(), renderStats(u, have), image.Point{}); err != nil {
			log.Warn("error updating display", "error", err)
		}
	}
}

// screenKey identifies what is on the screen. Seq restarts at 1 with every
// session, so the session ID is part of the key.
type screenKey struct {
	sessionID string
	seq       uint64
	have      bool
}

func screenKeyOf(u session.Update, have bool) screenKey {
	return screenKey{sessionID: u.SessionID, seq: u.Seq, have: have}
}

// renderStats draws the four stat lines, or a placeholder until the first
// update arrives.
func renderStats(u session.Update, have bool) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, displayWidth, displayHeight))

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	if !have {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawString("Glove")
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawString("Waiting...")
		return img
	}

	lines := []string{
		fmt.Sprintf("Count: %d", u.EventCount),
		fmt.Sprintf("Vmax %6.2f m/s", u.MaxSpeed),
		fmt.Sprintf("Fmax %7.1f N", u.MaxForce),
		fmt.Sprintf("State: %s", u.State),
	}
	for i, line := range lines {
		drawer.Dot = fixed.P(0, 13*(i+1))
		drawer.DrawString(line)
	}
	return img
}
