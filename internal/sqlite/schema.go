package sqlite

// DatabaseFile is the SQLite database created inside the data directory.
const DatabaseFile = "shelf.db"

// Schema DDL. Each collection is one row whose value is the collection's
// JSON array.
const (
	createEntries = `CREATE TABLE IF NOT EXISTS entries (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`
)

// Connection pragmas applied after open.
const (
	pragmaBusyTimeout = `PRAGMA busy_timeout = 5000;`
	pragmaJournalMode = `PRAGMA journal_mode = WAL;`
)

// Statements used by Store.
const (
	selectValue = `SELECT value FROM entries WHERE key = ?`
	selectKeys  = `SELECT key FROM entries ORDER BY key`
	upsertEntry = `INSERT INTO entries (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
)

// schemaStatements are executed in order by Open.
var schemaStatements = []string{
	pragmaBusyTimeout,
	pragmaJournalMode,
	createEntries,
}
