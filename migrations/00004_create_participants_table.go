package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateParticipantsTable, downCreateParticipantsTable)
}

func upCreateParticipantsTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE participants (
	  id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
	  session_id BIGINT UNSIGNED NOT NULL,
	  name VARCHAR(255) NOT NULL,
	  validation_code CHAR(3) NOT NULL,
	  personal_code CHAR(3) NOT NULL,
	  validated TINYINT(1) NULL,
	  registered_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	  KEY idx_participants_session (session_id),
	  CONSTRAINT fk_participants_session FOREIGN KEY (session_id) REFERENCES sessions (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`
	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreateParticipantsTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS participants;`)
	return err
}
