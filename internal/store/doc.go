// Package store provides a SQLite-backed catalog.
//
// The database holds the three catalog tables (securities, attributes,
// facts). Open prepares a database for Import, which replaces the contents
// in one transaction. OpenReadOnly serves lookups from a database that
// Import has already written and never changes the file. Store implements
// catalog.Catalog and catalog.Lister, so an engine can evaluate documents
// straight against a database file.
//
// # Lookup semantics
//
//   - Symbol and name comparisons are exact (BINARY collation).
//   - When a key appears more than once the row imported first wins, the
//     same rule catalog.Memory applies.
//   - A miss returns an error wrapping catalog.ErrNotFound.
//
// Every connection waits up to five seconds for a lock held by an import.
// Schema changes are tracked with PRAGMA user_version.
package store
