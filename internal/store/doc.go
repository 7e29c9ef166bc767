// Package store provides persistent storage for cosmo-server using SQLite.
//
// # Architecture
//
// The store package exposes a single Store interface covering the three
// record collections the server persists:
//
//   - Mission: kid-created tasks with binary completion state
//   - ChatTurn: the conversational log between the kid and the AI buddy
//   - GalleryEntry: saved images, uploaded or AI-generated
//
// The collections are independent: no cross-collection joins or
// transactions are required. Every write is a single-row operation and
// commits immediately.
//
// SQLiteStore implements the interface on an embedded SQLite database;
// MockStore implements it in memory for tests.
//
// # Data Models
//
//   - Mission: {ID, Title, Description, Status pending|completed, CreatedAt}
//   - ChatTurn: {ID, Role user|model, Content, CreatedAt}, append-only
//     except for a full clear
//   - GalleryEntry: {ID, Kind uploaded|generated, URL, Prompt, CreatedAt},
//     never mutated in place
//
// IDs are SQLite INTEGER PRIMARY KEY AUTOINCREMENT values; identity gaps
// after deletion are expected. Timestamps are stored as RFC3339 UTC
// strings.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// # Error Handling
//
// ErrNotFound is returned when an update or delete targets a row that
// does not exist. All methods accept context.Context.
//
// # Testing
//
// Use NewMockStore() for unit tests and NewSQLiteStore with a t.TempDir
// path for integration tests against real SQLite.
//
// # Migrations
//
// Schema creation is idempotent; column additions for existing databases
// run automatically on startup via pragma_table_info checks.
package store
