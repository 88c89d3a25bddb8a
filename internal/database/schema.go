package database

import (
	"context"
	"database/sql"
)

// schema lists idempotent DDL for every table the service owns. Statements
// run in order because of foreign key references.
//
// votes carries a unique (user_id, show_id) pair: one active vote per user
// per show. reactions carries a unique (vote_id, user_id) pair so a second
// reaction from the same user replaces the first instead of duplicating it.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(64) NOT NULL UNIQUE,
		name VARCHAR(128) NOT NULL DEFAULT '',
		password_hash VARCHAR(100) NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS shows (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		title VARCHAR(255) NOT NULL,
		media VARCHAR(255) NOT NULL,
		type VARCHAR(32) NOT NULL DEFAULT 'brand_new',
		tvshow_type VARCHAR(16) NOT NULL DEFAULT 'movie',
		serie_season INT NOT NULL DEFAULT 1,
		miniseries TINYINT(1) NOT NULL DEFAULT 0,
		link VARCHAR(512) NOT NULL DEFAULT '',
		poster VARCHAR(255) NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		CONSTRAINT fk_shows_user FOREIGN KEY (user_id) REFERENCES users(id)
	)`,
	`CREATE TABLE IF NOT EXISTS votes (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		show_id BIGINT UNSIGNED NOT NULL,
		score DECIMAL(4,1) NOT NULL DEFAULT 0,
		now_watching TINYINT(1) NOT NULL DEFAULT 0,
		season INT NOT NULL DEFAULT 1,
		episode INT NOT NULL DEFAULT 1,
		comment TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_votes_user_show (user_id, show_id),
		CONSTRAINT fk_votes_user FOREIGN KEY (user_id) REFERENCES users(id),
		CONSTRAINT fk_votes_show FOREIGN KEY (show_id) REFERENCES shows(id)
	)`,
	`CREATE TABLE IF NOT EXISTS reactions (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		vote_id BIGINT UNSIGNED NOT NULL,
		user_id BIGINT UNSIGNED NOT NULL,
		code CHAR(1) NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_reactions_vote_user (vote_id, user_id),
		CONSTRAINT fk_reactions_vote FOREIGN KEY (vote_id) REFERENCES votes(id),
		CONSTRAINT fk_reactions_user FOREIGN KEY (user_id) REFERENCES users(id)
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		type VARCHAR(16) NOT NULL,
		title VARCHAR(255) NOT NULL,
		message VARCHAR(512) NOT NULL,
		username VARCHAR(64) NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS catalogue (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		category VARCHAR(64) NOT NULL,
		label VARCHAR(255) NOT NULL,
		KEY idx_catalogue_category (category)
	)`,
}

// Migrate applies the schema. Safe to run on every startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
