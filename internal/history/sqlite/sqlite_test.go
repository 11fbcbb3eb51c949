package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/henribesnard/ragkit/internal/history"
)

func TestSinkRoundTrip(t *testing.T) {
	sink, err := New(":memory:")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = sink.Close() }()

	ctx := context.Background()
	events := []history.Event{
		{Type: history.EventStarted, OccurredAt: time.Now().UTC(), Port: 8100, PID: 321, Strategy: "sidecar"},
		{Type: history.EventReady, OccurredAt: time.Now().UTC(), Port: 8100, PID: 321, Strategy: "sidecar"},
		{Type: history.EventFailed, OccurredAt: time.Now().UTC(), Port: 8101, Strategy: "sidecar", Detail: "readiness deadline exceeded"},
	}
	for _, e := range events {
		if err := sink.Send(ctx, e); err != nil {
			t.Fatalf("Send(%s): %v", e.Type, err)
		}
	}

	var count int
	if err := sink.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM backend_history").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != len(events) {
		t.Fatalf("count = %d, want %d", count, len(events))
	}

	var detail string
	err = sink.db.QueryRowContext(ctx,
		"SELECT detail FROM backend_history WHERE event = ?", string(history.EventFailed)).Scan(&detail)
	if err != nil {
		t.Fatalf("select failed event: %v", err)
	}
	if detail != "readiness deadline exceeded" {
		t.Fatalf("detail = %q", detail)
	}
}

func TestNewAcceptsPrefixedDSN(t *testing.T) {
	sink, err := New("sqlite://:memory:")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_ = sink.Close()
}

func TestNewRejectsEmptyDSN(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatal("expected error for empty DSN")
	}
}
