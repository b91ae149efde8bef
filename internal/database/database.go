package database

import (
	"database/sql"

	_ "modernc.org/sqlite" // SQLite driver
)

// New creates a new database connection pool.
func New(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dataSourceName+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs the SQL statements to set up the database schema.
//
// The table set here must stay in sync with backup.DefaultTableOrder so the
// backup engine keeps exporting and restoring every table.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		is_admin INTEGER NOT NULL DEFAULT 0,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS humidors (
		id TEXT NOT NULL PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		description TEXT,
		capacity INTEGER,
		target_humidity INTEGER,
		location TEXT,
		image_url TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS brands (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		country TEXT,
		website TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sizes (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL,
		length_inches REAL,
		ring_gauge INTEGER,
		description TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS ring_gauges (
		id TEXT NOT NULL PRIMARY KEY,
		gauge INTEGER NOT NULL,
		description TEXT,
		-- String list, e.g. ["corona", "petit corona"]
		common_names JSON,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS strengths (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL,
		level INTEGER NOT NULL,
		description TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS origins (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL,
		country TEXT NOT NULL,
		region TEXT,
		description TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS cigars (
		id TEXT NOT NULL PRIMARY KEY,
		humidor_id TEXT NOT NULL REFERENCES humidors(id) ON DELETE CASCADE,
		brand_id TEXT REFERENCES brands(id),
		name TEXT NOT NULL,
		size_id TEXT REFERENCES sizes(id),
		strength_id TEXT REFERENCES strengths(id),
		origin_id TEXT REFERENCES origins(id),
		wrapper TEXT,
		binder TEXT,
		filler TEXT,
		price REAL,
		purchase_date DATETIME,
		notes TEXT,
		quantity INTEGER NOT NULL DEFAULT 0,
		ring_gauge_id TEXT REFERENCES ring_gauges(id),
		length REAL,
		image_url TEXT,
		retail_link TEXT,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS favorites (
		id TEXT NOT NULL PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		cigar_id TEXT NOT NULL REFERENCES cigars(id) ON DELETE CASCADE,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(user_id, cigar_id)
	);

	CREATE TABLE IF NOT EXISTS wish_list (
		id TEXT NOT NULL PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		cigar_id TEXT NOT NULL REFERENCES cigars(id) ON DELETE CASCADE,
		notes TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(user_id, cigar_id)
	);

	CREATE TABLE IF NOT EXISTS humidor_shares (
		id TEXT NOT NULL PRIMARY KEY,
		humidor_id TEXT NOT NULL REFERENCES humidors(id) ON DELETE CASCADE,
		shared_with_user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		shared_by_user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		permission_level TEXT NOT NULL, -- view, edit or full
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(humidor_id, shared_with_user_id)
	);
	`
	_, err := db.Exec(sqlStmt)
	return err
}
