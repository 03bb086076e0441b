// Package database provides SQLite connectivity for the Cozytouch bridge.
//
// The bridge stores only its entity registry (which unique ids have been
// announced to Home Assistant and under which config entry). Sensor state is
// never persisted.
//
// This package manages:
//   - Opening the database with WAL mode and a busy timeout
//   - Applying embedded, additive-only schema migrations
//   - Health checks and lifecycle
//
// All queries use parameterised statements. The database file is chmod 0600.
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
