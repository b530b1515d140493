package repository

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// discount_history.created_at is a timestamptz, which pgx delivers in binary
// format under the default query mode. The scan destination must be a
// time.Time; a string destination fails at runtime for every row.
func TestHistoryEntryScansBinaryTimestamptz(t *testing.T) {
	m := pgtype.NewMap()
	want := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	buf, err := m.Encode(pgtype.TimestamptzOID, pgx.BinaryFormatCode, want, nil)
	if err != nil {
		t.Fatalf("encode timestamptz: %v", err)
	}

	var entry HistoryEntry
	if err := m.Scan(pgtype.TimestamptzOID, pgx.BinaryFormatCode, buf, &entry.CreatedAt); err != nil {
		t.Fatalf("scan timestamptz into HistoryEntry.CreatedAt: %v", err)
	}
	if !entry.CreatedAt.Equal(want) {
		t.Fatalf("expected %v, got %v", want, entry.CreatedAt)
	}
}
