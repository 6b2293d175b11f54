package app

import (
	"context"
	"fmt"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/glove_computer/internal/config"
	"github.com/relabs-tech/glove_computer/internal/glove"
	"github.com/relabs-tech/glove_computer/internal/session"
	"github.com/relabs-tech/glove_computer/internal/telemetry"
)

func connectEventually(t *testing.T, clientID string) mqtt.Client {
	t.Helper()
	broker := fmt.Sprintf("tcp://127.0.0.1:%d", testBrokerPort)
	deadline := time.Now().Add(5 * time.Second)
	for {
		client, err := telemetry.Connect(broker, clientID)
		if err == nil {
			return client
		}
		if time.Now().After(deadline) {
			t.Fatalf("broker never came up: %v", err)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func TestRunProducer_MockGlove(t *testing.T) {
	cfg := config.Get()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- RunProducer(ctx) }()

	client := connectEventually(t, "test-producer-observer")
	defer telemetry.Disconnect(client)

	updates := make(chan session.Update, 256)
	require.NoError(t, telemetry.SubscribeUpdates(client, cfg.TopicStats, func(u session.Update) {
		select {
		case updates <- u:
		default:
		}
	}))

	waitFor := func(kind session.Kind) session.Update {
		timeout := time.After(5 * time.Second)
		for {
			select {
			case u := <-updates:
				if u.Kind == kind {
					return u
				}
			case <-timeout:
				t.Fatalf("no %s update", kind)
			}
		}
	}

	first := waitFor(session.KindSample)
	assert.NotEmpty(t, first.SessionID)
	assert.Positive(t, first.Elapsed)

	require.NoError(t, telemetry.PublishCommand(client, cfg.TopicCommand, telemetry.CommandReset))
	reset := waitFor(session.KindReset)
	assert.Equal(t, first.SessionID, reset.SessionID)
	assert.Zero(t, reset.EventCount)
	assert.Zero(t, reset.MaxForce)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("producer did not stop")
	}
}

func TestDialer(t *testing.T) {
	cfg := *config.Get()

	cfg.GloveSource = config.SourceMock
	src, err := dialer(&cfg, nil)(context.Background())
	require.NoError(t, err)
	_, ok := src.(*glove.MockSource)
	assert.True(t, ok)
	require.NoError(t, src.Close())

	cfg.GloveSource = config.SourceSerial
	cfg.GloveSerialPort = "/dev/does-not-exist-glove"
	src, err = dialer(&cfg, nil)(context.Background())
	assert.Error(t, err)
	assert.Nil(t, src)
}
