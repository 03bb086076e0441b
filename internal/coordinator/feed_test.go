package coordinator

import (
	"errors"
	"testing"

	"github.com/nerrad567/gray-logic-cozytouch/internal/infrastructure/mqtt"
)

type fakeSubscriber struct {
	topic        string
	qos          byte
	handler      mqtt.MessageHandler
	err          error
	unsubscribed []string
}

func (f *fakeSubscriber) Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error {
	if f.err != nil {
		return f.err
	}
	f.topic, f.qos, f.handler = topic, qos, handler
	return nil
}

func (f *fakeSubscriber) Unsubscribe(topic string) error {
	f.unsubscribed = append(f.unsubscribed, topic)
	return nil
}

func TestFeed_Start(t *testing.T) {
	sub := &fakeSubscriber{}
	feed := NewFeed(New(), "cozytouch/coordinator/snapshot", 1)

	if err := feed.Start(sub); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if sub.topic != "cozytouch/coordinator/snapshot" || sub.qos != 1 {
		t.Errorf("subscribed to %q qos %d", sub.topic, sub.qos)
	}
}

func TestFeed_StartError(t *testing.T) {
	sub := &fakeSubscriber{err: mqtt.ErrNotConnected}
	feed := NewFeed(New(), "t", 1)

	if err := feed.Start(sub); !errors.Is(err, mqtt.ErrNotConnected) {
		t.Errorf("Start() error = %v, want ErrNotConnected", err)
	}
}

func TestFeed_DecodesSnapshot(t *testing.T) {
	coord := New()
	sub := &fakeSubscriber{}
	feed := NewFeed(coord, "t", 0)
	if err := feed.Start(sub); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	payload := []byte(`{"devices":{"win-1":{"id":"win-1","widget":"CONTACT","is_opened":true}}}`)
	if err := sub.handler("t", payload); err != nil {
		t.Fatalf("handler error = %v", err)
	}

	dev := coord.Data().Device("win-1")
	if dev == nil || !dev.IsOpened {
		t.Fatalf("win-1 not decoded: %+v", dev)
	}
	if !coord.LastUpdateSuccess() {
		t.Error("LastUpdateSuccess() = false")
	}
}

func TestFeed_InvalidPayload(t *testing.T) {
	coord := New()
	feed := NewFeed(coord, "t", 0)

	err := feed.handle("t", []byte("not json"))
	if !errors.Is(err, ErrInvalidSnapshot) {
		t.Fatalf("handle() error = %v, want ErrInvalidSnapshot", err)
	}
	if coord.LastUpdateSuccess() {
		t.Error("LastUpdateSuccess() = true after invalid payload")
	}
	if !errors.Is(coord.LastError(), ErrInvalidSnapshot) {
		t.Errorf("LastError() = %v, want ErrInvalidSnapshot", coord.LastError())
	}
}

func TestFeed_Stop(t *testing.T) {
	sub := &fakeSubscriber{}
	feed := NewFeed(New(), "cozytouch/coordinator/snapshot", 1)

	if err := feed.Stop(); err != nil {
		t.Fatalf("Stop() before Start error = %v", err)
	}
	if len(sub.unsubscribed) != 0 {
		t.Fatalf("Stop() before Start unsubscribed %v", sub.unsubscribed)
	}

	if err := feed.Start(sub); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := feed.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := feed.Stop(); err != nil {
		t.Fatalf("second Stop() error = %v", err)
	}

	if len(sub.unsubscribed) != 1 || sub.unsubscribed[0] != "cozytouch/coordinator/snapshot" {
		t.Errorf("unsubscribed = %v, want the snapshot topic once", sub.unsubscribed)
	}
}
