// internal/database/mirror_test.go
//
// Unit-tests for the row mirror.
//
// Each test builds a sqlmock DB wrapped in sqlx, fires Record, and checks
// that the statement, table name, and arguments match the row.

package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/easybac/landing/internal/lead"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { raw.Close() })
	return sqlx.NewDb(raw, "mysql"), mock
}

func TestMirrorRecord(t *testing.T) {
	db, mock := newMock(t)
	m, err := NewMirror(db, "lead_row")
	if err != nil {
		t.Fatalf("NewMirror: %v", err)
	}

	ts := time.Date(2025, 6, 1, 9, 30, 45, 0, time.UTC)
	row := lead.NewRow(lead.Subscription{Email: "a@b.com"}, ts)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO lead_row (sheet, submitted_at, cells) VALUES (?, ?, ?)")).
		WithArgs("newsletter", ts, []byte(`["2025-06-01T09:30:45.000Z","a@b.com"]`)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := m.Record(context.Background(), row); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMirrorRecord_Error(t *testing.T) {
	db, mock := newMock(t)
	m, _ := NewMirror(db, "lead_row")

	mock.ExpectExec("INSERT INTO lead_row").WillReturnError(errors.New("deadlock"))

	row := lead.NewRow(lead.StudentSubmission{Name: "Ion", Phone: "069123456", Course: "BAC la Chimie"}, time.Now())
	if err := m.Record(context.Background(), row); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewMirror_RejectsBadTable(t *testing.T) {
	db, _ := newMock(t)
	for _, bad := range []string{"", "lead row", "lead;drop", "1lead"} {
		if _, err := NewMirror(db, bad); err == nil {
			t.Errorf("NewMirror(%q) should fail", bad)
		}
	}
}
