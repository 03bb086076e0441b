// Package cozytouch defines the Cozytouch hub data model as seen by the bridge.
//
// These types mirror what the external poller publishes: a Snapshot of every
// device on the account, each device listing its sensors. The vendor also
// lists every sensor as a top-level device keyed by the sensor id; that entry
// carries the sensor's live readings (IsOccupied, IsOpened).
//
// Snapshots are immutable once published. Nothing in the bridge mutates one;
// a refresh replaces the whole value.
package cozytouch
