package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// Open opens a PostgreSQL database using the pgx stdlib driver.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate runs idempotent DDL migrations for the devconnect schema on PostgreSQL.
func Migrate(db *sql.DB) error {
	stmts := []string{
		// Users
		`CREATE TABLE IF NOT EXISTS users (
			id            BIGSERIAL    PRIMARY KEY,
			username      VARCHAR(80)  UNIQUE NOT NULL,
			email         VARCHAR(120) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			avatar        VARCHAR(255),
			description   TEXT         NOT NULL DEFAULT '',
			skills        JSONB        NOT NULL DEFAULT '[]',
			created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`,

		// Articles
		`CREATE TABLE IF NOT EXISTS articles (
			id         BIGSERIAL    PRIMARY KEY,
			user_id    BIGINT       NOT NULL REFERENCES users(id),
			title      VARCHAR(200) NOT NULL,
			content    TEXT         NOT NULL,
			image_path VARCHAR(255),
			file_path  VARCHAR(255),
			file_name  VARCHAR(255),
			created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`,

		// Chats: one row per unordered pair
		`CREATE TABLE IF NOT EXISTS chats (
			id           BIGSERIAL   PRIMARY KEY,
			user_low_id  BIGINT      NOT NULL REFERENCES users(id),
			user_high_id BIGINT      NOT NULL REFERENCES users(id),
			created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (user_low_id, user_high_id),
			CHECK (user_low_id < user_high_id)
		)`,

		// Chat participants
		`CREATE TABLE IF NOT EXISTS chat_participants (
			chat_id BIGINT NOT NULL REFERENCES chats(id),
			user_id BIGINT NOT NULL REFERENCES users(id),
			PRIMARY KEY (chat_id, user_id)
		)`,

		// Messages
		`CREATE TABLE IF NOT EXISTS messages (
			id         BIGSERIAL    PRIMARY KEY,
			chat_id    BIGINT       NOT NULL REFERENCES chats(id),
			sender_id  BIGINT       NOT NULL REFERENCES users(id),
			content    TEXT,
			file_path  VARCHAR(255),
			file_name  VARCHAR(255),
			mime_type  VARCHAR(100),
			created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			CHECK (content IS NOT NULL OR file_path IS NOT NULL)
		)`,

		// Products
		`CREATE TABLE IF NOT EXISTS products (
			id               BIGSERIAL    PRIMARY KEY,
			name             VARCHAR(200) NOT NULL,
			description      TEXT         NOT NULL DEFAULT '',
			price_cents      BIGINT       NOT NULL CHECK (price_cents >= 0),
			image_path       VARCHAR(255),
			discount_percent INTEGER      NOT NULL DEFAULT 0 CHECK (discount_percent BETWEEN 0 AND 90),
			created_at       TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_articles_user_created ON articles(user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_created ON articles(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_file_path ON articles(file_path)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_participants_user ON chat_participants(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_chat_created ON messages(chat_id, created_at, id)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages(sender_id)`,
		`CREATE INDEX IF NOT EXISTS idx_products_discount ON products(discount_percent)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w\nSQL: %s", err, stmt)
		}
	}
	return nil
}
