// Package hass is the bridge's entity platform: it plays the part Home
// Assistant's entity platform plays for a Python integration.
//
// Integrations register entities through an AddEntitiesFunc bound to a
// ConfigEntry. The Platform then:
//   - records each entity in the entity registry (SQLite)
//   - announces it with a retained MQTT discovery config
//   - publishes ON/OFF state and per-entity availability on every
//     coordinator refresh, re-reading IsOn each time
//   - republishes everything when Home Assistant sends its birth message
//
// An entity whose IsOn returns an error is published as unavailable; the
// error is logged and never propagated back to the integration.
//
// # Topics
//
//	<discovery_prefix>/binary_sensor/<node_id>/<unique_id>/config  (retained JSON)
//	<state_prefix>/<unique_id>/state                               (retained ON|OFF)
//	<state_prefix>/<unique_id>/availability                        (retained online|offline)
//	<state_prefix>/bridge/status                                   (retained, LWT)
package hass
