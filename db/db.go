// Package db provides database connection helpers, schema migration, and the
// translation history store. The database is optional: when DB_DSN is empty
// the relay runs stateless and nothing in this package is used.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx postgres driver registered as 'pgx'
)

// Connect opens a Postgres connection for the given DSN.
func Connect(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty dsn")
	}
	return sql.Open("pgx", dsn)
}

// Migrate applies idempotent schema changes for all required tables and indices.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS translations (
			id SERIAL PRIMARY KEY,
			channel TEXT NOT NULL,
			author TEXT,
			source_text TEXT,
			source_lang TEXT,
			target_lang TEXT,
			translated_text TEXT,
			message_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS oauth_tokens (
			provider TEXT PRIMARY KEY,
			access_token TEXT,
			refresh_token TEXT,
			expires_at TIMESTAMPTZ,
			scope TEXT,
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_translations_channel_created ON translations(channel, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_translations_source_lang ON translations(source_lang)`,
	}
	for i, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("postgres migrate step %d failed: %w", i, err)
		}
	}
	return nil
}

// TranslationRecord is one relayed translation persisted for history queries.
type TranslationRecord struct {
	ID             int64     `json:"id"`
	Channel        string    `json:"channel"`
	Author         string    `json:"author"`
	SourceText     string    `json:"source_text"`
	SourceLang     string    `json:"source_lang"`
	TargetLang     string    `json:"target_lang"`
	TranslatedText string    `json:"translated_text"`
	MessageAt      time.Time `json:"message_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// InsertTranslation appends a record to the history table.
func InsertTranslation(ctx context.Context, db *sql.DB, rec TranslationRecord) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO translations (channel, author, source_text, source_lang, target_lang, translated_text, message_at) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		rec.Channel, rec.Author, rec.SourceText, rec.SourceLang, rec.TargetLang, rec.TranslatedText, rec.MessageAt)
	return err
}

// RecentTranslations returns up to limit most recent records for a channel,
// newest first. An empty channel returns records across all channels.
func RecentTranslations(ctx context.Context, db *sql.DB, channel string, limit int) ([]TranslationRecord, error) {
	if limit <= 0 {
		limit = 50
	} else if limit > 500 {
		limit = 500
	}
	var (
		rows *sql.Rows
		err  error
	)
	if channel == "" {
		rows, err = db.QueryContext(ctx,
			`SELECT id, channel, author, source_text, source_lang, target_lang, translated_text, message_at, created_at FROM translations ORDER BY created_at DESC LIMIT $1`, limit)
	} else {
		rows, err = db.QueryContext(ctx,
			`SELECT id, channel, author, source_text, source_lang, target_lang, translated_text, message_at, created_at FROM translations WHERE channel=$1 ORDER BY created_at DESC LIMIT $2`, channel, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TranslationRecord
	for rows.Next() {
		var rec TranslationRecord
		if err := rows.Scan(&rec.ID, &rec.Channel, &rec.Author, &rec.SourceText, &rec.SourceLang, &rec.TargetLang, &rec.TranslatedText, &rec.MessageAt, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CountTranslations returns how many translations have been relayed for a channel.
func CountTranslations(ctx context.Context, db *sql.DB, channel string) (int64, error) {
	var n int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM translations WHERE channel=$1`, channel).Scan(&n)
	return n, err
}

// UpsertToken stores or replaces an oauth token row for a provider so the
// refresher has something to work with.
func UpsertToken(ctx context.Context, db *sql.DB, provider, accessToken, refreshToken, scope string, expiresAt time.Time) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO oauth_tokens (provider, access_token, refresh_token, expires_at, scope, updated_at)
		 VALUES ($1,$2,$3,$4,$5,NOW())
		 ON CONFLICT (provider) DO UPDATE SET access_token=$2, refresh_token=$3, expires_at=$4, scope=$5, updated_at=NOW()`,
		provider, accessToken, refreshToken, expiresAt, scope)
	return err
}
