// Package snapcache keeps the merged channel snapshot between runs.
//
// A Cache answers Get from memory while the snapshot is younger than the
// configured TTL, then from the persisted copy, and only then runs the
// fetch+merge stage. Concurrent refreshes share one in-flight fetch.
// Snapshots are persisted either as a JSON file (FileStore) or as a single
// row in a SQLite database (SQLiteStore).
package snapcache
