package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateSessionsTable, downCreateSessionsTable)
}

// Schedule fields are stored as strings on purpose: flight_date is
// "YYYY-MM-DD" and the clock columns are zero-padded "HH:mm". The
// status engine parses these exact forms, so the database never
// reinterprets them through a timezone.
func upCreateSessionsTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE sessions (
	  id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
	  code VARCHAR(4) NOT NULL,
	  number INT NOT NULL,
	  flight_date CHAR(10) NOT NULL,
	  registration_start CHAR(5) NOT NULL,
	  starts_at CHAR(5) NOT NULL,
	  ends_at CHAR(5) NULL,
	  closing_minutes INT NOT NULL DEFAULT 60,
	  status VARCHAR(16) NOT NULL DEFAULT 'open',
	  comment VARCHAR(500) NOT NULL DEFAULT '',
	  creator_id BIGINT UNSIGNED NULL,
	  created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	  updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	  KEY idx_sessions_flight_date (flight_date),
	  KEY idx_sessions_code_created (code, created_at),
	  KEY idx_sessions_status (status),
	  CONSTRAINT fk_sessions_creator FOREIGN KEY (creator_id) REFERENCES users (id) ON DELETE SET NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`
	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreateSessionsTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS sessions;`)
	return err
}
