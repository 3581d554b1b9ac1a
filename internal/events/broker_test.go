package events

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBroker_PublishWithoutSubscribers(t *testing.T) {
	broker := NewBroker(slog.Default())
	defer broker.Close()

	// Must be a silent no-op.
	broker.Publish("logUpdate", map[string]any{"msg": "tick"})
}

func TestBroker_FanOut(t *testing.T) {
	broker := NewBroker(slog.Default())
	defer broker.Close()

	first, cancelFirst := broker.Subscribe("statusChange")
	defer cancelFirst()

	second, cancelSecond := broker.Subscribe("statusChange")
	defer cancelSecond()

	other, cancelOther := broker.Subscribe("logUpdate")
	defer cancelOther()

	broker.Publish("statusChange", "running")

	require.Equal(t, "running", recv(t, first))
	require.Equal(t, "running", recv(t, second))

	select {
	case data := <-other:
		t.Fatalf("logUpdate subscriber received %v", data)
	default:
	}
}

func TestBroker_PreservesOrder(t *testing.T) {
	broker := NewBroker(slog.Default())
	defer broker.Close()

	ch, cancel := broker.Subscribe("logUpdate")
	defer cancel()

	for i := 0; i < 5; i++ {
		broker.Publish("logUpdate", i)
	}

	for i := 0; i < 5; i++ {
		require.Equal(t, i, recv(t, ch))
	}
}

func TestBroker_Unsubscribe(t *testing.T) {
	broker := NewBroker(slog.Default())
	defer broker.Close()

	ch, cancel := broker.Subscribe("logUpdate")

	cancel()
	cancel() // safe to call twice

	broker.Publish("logUpdate", "dropped")

	_, open := <-ch
	require.False(t, open, "channel closed on unsubscribe")
}

func TestBroker_SlowSubscriberDropsExcess(t *testing.T) {
	broker := NewBroker(slog.Default())
	defer broker.Close()

	ch, cancel := broker.Subscribe("logUpdate")
	defer cancel()

	// Nobody drains; the buffer fills and the rest are dropped without
	// blocking Publish.
	for i := 0; i < subscriberBuffer+10; i++ {
		broker.Publish("logUpdate", i)
	}

	require.Len(t, ch, subscriberBuffer)
}

func TestBroker_SetLoggerReportsDrops(t *testing.T) {
	var buf bytes.Buffer

	broker := NewBroker(slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer broker.Close()

	broker.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	_, cancel := broker.Subscribe("logUpdate")
	defer cancel()

	for i := 0; i < subscriberBuffer+1; i++ {
		broker.Publish("logUpdate", i)
	}

	require.Contains(t, buf.String(), "Subscriber buffer full")
}

func TestBroker_Close(t *testing.T) {
	broker := NewBroker(slog.Default())

	ch, cancel := broker.Subscribe("logUpdate")
	defer cancel()

	broker.Close()
	broker.Close() // safe to call twice

	_, open := <-ch
	require.False(t, open)

	// Publish and Subscribe after Close are no-ops.
	broker.Publish("logUpdate", "late")

	late, _ := broker.Subscribe("logUpdate")
	_, open = <-late
	require.False(t, open)
}

func recv(t *testing.T, ch <-chan any) any {
	t.Helper()

	select {
	case data := <-ch:
		return data
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")

		return nil
	}
}
