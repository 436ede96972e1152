package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// isUniqueViolation reports whether err came from a UNIQUE constraint.
func isUniqueViolation(err error) bool {
	var se *msqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

// Open opens a SQLite database with the given DSN. A single connection is
// kept so that in-memory databases are shared and writers never contend.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	for _, pragma := range []string{
		`PRAGMA foreign_keys = ON;`,
		`PRAGMA busy_timeout = 5000;`,
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}
	return db, nil
}

// Migrate runs idempotent CREATE TABLE / CREATE INDEX statements.
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			username VARCHAR(80) UNIQUE NOT NULL,
			email VARCHAR(120) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			avatar VARCHAR(255),
			description TEXT NOT NULL DEFAULT '',
			skills TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS articles (
			id INTEGER PRIMARY KEY,
			user_id INTEGER NOT NULL,
			title VARCHAR(200) NOT NULL,
			content TEXT NOT NULL,
			image_path VARCHAR(255),
			file_path VARCHAR(255),
			file_name VARCHAR(255),
			created_at DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id)
		);`,
		// One row per unordered pair: the pair is stored ordered and unique.
		`CREATE TABLE IF NOT EXISTS chats (
			id INTEGER PRIMARY KEY,
			user_low_id INTEGER NOT NULL,
			user_high_id INTEGER NOT NULL,
			created_at DATETIME NOT NULL,
			UNIQUE (user_low_id, user_high_id),
			CHECK (user_low_id < user_high_id),
			FOREIGN KEY (user_low_id) REFERENCES users(id),
			FOREIGN KEY (user_high_id) REFERENCES users(id)
		);`,
		`CREATE TABLE IF NOT EXISTS chat_participants (
			chat_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			PRIMARY KEY (chat_id, user_id),
			FOREIGN KEY (chat_id) REFERENCES chats(id),
			FOREIGN KEY (user_id) REFERENCES users(id)
		);`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY,
			chat_id INTEGER NOT NULL,
			sender_id INTEGER NOT NULL,
			content TEXT,
			file_path VARCHAR(255),
			file_name VARCHAR(255),
			mime_type VARCHAR(100),
			created_at DATETIME NOT NULL,
			CHECK (content IS NOT NULL OR file_path IS NOT NULL),
			FOREIGN KEY (chat_id) REFERENCES chats(id),
			FOREIGN KEY (sender_id) REFERENCES users(id)
		);`,
		`CREATE TABLE IF NOT EXISTS products (
			id INTEGER PRIMARY KEY,
			name VARCHAR(200) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price_cents INTEGER NOT NULL CHECK (price_cents >= 0),
			image_path VARCHAR(255),
			discount_percent INTEGER NOT NULL DEFAULT 0 CHECK (discount_percent BETWEEN 0 AND 90),
			created_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_articles_user_created ON articles(user_id, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_articles_created ON articles(created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_chat_participants_user ON chat_participants(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_chat_created ON messages(chat_id, created_at, id);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages(sender_id);`,
		`CREATE INDEX IF NOT EXISTS idx_products_discount ON products(discount_percent);`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
