// Package coordinator holds the latest Cozytouch snapshot shared by all entities.
//
// The refresh itself happens elsewhere: an external poller talks to the
// vendor cloud and publishes each snapshot over MQTT. Feed decodes those
// messages and hands them to the Coordinator, which swaps its pointer
// atomically and notifies listeners.
//
//	poller ──MQTT──▶ Feed ──Update──▶ Coordinator ──listeners──▶ hass.Platform
//	                                      ▲
//	                     entities ──Data()┘
//
// Readers always see a complete snapshot. Data() never blocks.
package coordinator
