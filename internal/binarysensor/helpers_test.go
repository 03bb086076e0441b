package binarysensor

import "github.com/nerrad567/gray-logic-cozytouch/internal/infrastructure/mqtt"

// nopPublisher discards everything the platform publishes.
type nopPublisher struct{}

func (nopPublisher) Publish(string, []byte, byte, bool) error { return nil }

func (nopPublisher) Subscribe(string, byte, mqtt.MessageHandler) error { return nil }

func (nopPublisher) Unsubscribe(string) error { return nil }
