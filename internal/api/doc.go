// Package api implements the bridge's diagnostics HTTP API and WebSocket
// state stream.
//
// This package provides:
//   - Read-only REST endpoints for registered entities and bridge health
//   - WebSocket hub broadcasting entity state changes
//   - Middleware stack (request ID, logging, recovery, bearer auth)
//
// # Endpoints
//
//	GET /api/v1/health          bridge, MQTT and coordinator status
//	GET /api/v1/entities        every entity's last published state
//	GET /api/v1/entities/{id}   one entity (404 not_found if unknown)
//	GET /ws                     WebSocket; subscribe to "entity.state_changed"
//
// When api.auth.secret is set, the entity endpoints and the WebSocket require
// an HS256 bearer token (see IssueToken). The WebSocket also accepts it as a
// token query parameter. Health is always unauthenticated.
//
// The API never changes entity state: binary sensors are read-only.
package api
