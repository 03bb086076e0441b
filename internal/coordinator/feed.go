package coordinator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nerrad567/gray-logic-cozytouch/internal/cozytouch"
	"github.com/nerrad567/gray-logic-cozytouch/internal/infrastructure/mqtt"
)

// Subscriber is the subset of the MQTT client the feed needs.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// Logger defines the logging interface used by the feed.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Feed decodes snapshots published by the external poller and pushes them
// into a Coordinator.
type Feed struct {
	coord  *Coordinator
	topic  string
	qos    byte
	logger Logger

	mu  sync.Mutex
	sub Subscriber
}

// NewFeed creates a feed for the given topic.
func NewFeed(coord *Coordinator, topic string, qos byte) *Feed {
	return &Feed{
		coord:  coord,
		topic:  topic,
		qos:    qos,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the feed.
func (f *Feed) SetLogger(logger Logger) {
	f.logger = logger
}

// Start subscribes to the snapshot topic. The subscription is restored by
// the MQTT client on reconnect, and a retained snapshot arrives immediately.
func (f *Feed) Start(sub Subscriber) error {
	if err := sub.Subscribe(f.topic, f.qos, f.handle); err != nil {
		return fmt.Errorf("subscribing to snapshot topic %s: %w", f.topic, err)
	}

	f.mu.Lock()
	f.sub = sub
	f.mu.Unlock()
	return nil
}

// Stop unsubscribes from the snapshot topic. The coordinator keeps its
// last snapshot. Stopping a feed that is not started is a no-op.
func (f *Feed) Stop() error {
	f.mu.Lock()
	sub := f.sub
	f.sub = nil
	f.mu.Unlock()

	if sub == nil {
		return nil
	}
	if err := sub.Unsubscribe(f.topic); err != nil {
		return fmt.Errorf("unsubscribing from snapshot topic %s: %w", f.topic, err)
	}
	return nil
}

// handle decodes one snapshot message.
func (f *Feed) handle(_ string, payload []byte) error {
	dec := json.NewDecoder(bytes.NewReader(payload))
	var snap cozytouch.Snapshot
	if err := dec.Decode(&snap); err != nil {
		err = fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
		f.coord.SetUpdateError(err)
		f.logger.Warn("discarding snapshot", "error", err)
		return err
	}

	f.coord.Update(&snap)
	f.logger.Debug("snapshot received", "devices", len(snap.Devices))
	return nil
}
