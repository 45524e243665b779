package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateValidKeysTable, downCreateValidKeysTable)
}

// The (key_value, month_tag) unique index is the authoritative guard
// against same-month duplicate keys; the application-level probe only
// extends the check to the previous month's tag. session_id carries no
// foreign key on purpose: issued keys outlive a deleted session so
// their values stay burned for the rest of the month window, and a
// restricting FK would block the session delete instead.
func upCreateValidKeysTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE valid_keys (
	  id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
	  session_id BIGINT UNSIGNED NOT NULL,
	  key_value VARCHAR(4) NOT NULL,
	  pilot_name VARCHAR(255) NOT NULL,
	  month_tag CHAR(7) NOT NULL,
	  created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	  UNIQUE KEY uq_valid_keys_value_month (key_value, month_tag),
	  KEY idx_valid_keys_session (session_id),
	  KEY idx_valid_keys_pilot (session_id, pilot_name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`
	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreateValidKeysTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS valid_keys;`)
	return err
}
