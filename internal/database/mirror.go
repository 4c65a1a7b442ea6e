// internal/database/mirror.go
//
// Append-only MySQL copy of every row written to the spreadsheet.
//
// Context
//   The spreadsheet is the source of truth.  The mirror exists so operators
//   can query leads with SQL without touching the Google API.  It is written
//   only after the sheet append succeeded, and its failures are logged by
//   the caller, never returned to the visitor.
//
//   Expected schema:
//
//     CREATE TABLE lead_row (
//       id           BIGINT AUTO_INCREMENT PRIMARY KEY,
//       sheet        VARCHAR(32)  NOT NULL,
//       submitted_at DATETIME(3)  NOT NULL,
//       cells        JSON         NOT NULL
//     );
//
//------------------------------------------------------------------------------

package database

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/jmoiron/sqlx"

	"github.com/easybac/landing/internal/lead"
)

var identRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

// Mirror inserts lead rows into one table.
type Mirror struct {
	db     *sqlx.DB
	insert string
}

// NewMirror validates table and prepares the insert statement text.
func NewMirror(db *sqlx.DB, table string) (*Mirror, error) {
	if !identRE.MatchString(table) {
		return nil, fmt.Errorf("mirror: invalid table name %q", table)
	}
	return &Mirror{
		db:     db,
		insert: fmt.Sprintf("INSERT INTO %s (sheet, submitted_at, cells) VALUES (?, ?, ?)", table),
	}, nil
}

// Record stores row.  cells is the full row as written to the sheet.
func (m *Mirror) Record(ctx context.Context, row lead.Row) error {
	cells, err := json.Marshal(row.Cells())
	if err != nil {
		return err
	}
	if _, err := m.db.ExecContext(ctx, m.insert,
		row.Destination.String(),
		row.Timestamp,
		cells,
	); err != nil {
		return fmt.Errorf("mirror insert: %w", err)
	}
	return nil
}
