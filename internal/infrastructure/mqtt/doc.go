// Package mqtt provides MQTT connectivity for the Cozytouch bridge.
//
// The bridge uses a single broker connection for two jobs:
//
//	external poller ──snapshot──▶ broker ──▶ bridge (coordinator feed)
//	bridge ──discovery/state/availability──▶ broker ──▶ Home Assistant
//
// This package manages:
//   - Connection with auto-reconnect and subscription restore
//   - A retained bridge status topic with Last Will and Testament
//   - Publishing with QoS and payload size checks
//   - Topic builders for Home Assistant discovery
//
// # Usage
//
//	topics := mqtt.Topics{DiscoveryPrefix: "homeassistant", StatePrefix: "cozytouch", NodeID: "cozytouch"}
//	client, err := mqtt.Connect(cfg.MQTT, topics)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Publish(topics.EntityState("io-123"), []byte("ON"), 1, true)
package mqtt
