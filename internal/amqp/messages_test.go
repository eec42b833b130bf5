package amqp

import (
	"testing"
	"time"
)

func TestValueSyncMessageRoundTrip(t *testing.T) {
	msg := NewValueSyncMessage(42, 7)
	if msg.Timestamp.IsZero() {
		t.Fatalf("expected timestamp to be set")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := ValueSyncMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ValueID != 42 || got.KPIID != 7 {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
	if !got.Timestamp.Truncate(time.Millisecond).Equal(msg.Timestamp.Truncate(time.Millisecond)) {
		t.Fatalf("timestamp mismatch: %v vs %v", got.Timestamp, msg.Timestamp)
	}
}

func TestValueDeleteMessageRoundTrip(t *testing.T) {
	msg := NewValueDeleteMessage(42, 7, "Monthly Revenue", "2024-09")
	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := ValueDeleteMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ValueID != 42 || got.KPIID != 7 || got.KPIName != "Monthly Revenue" || got.Period != "2024-09" {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestMessageFromJSONRejectsGarbage(t *testing.T) {
	if _, err := ValueSyncMessageFromJSON([]byte("not json")); err == nil {
		t.Fatalf("expected error for invalid sync payload")
	}
	if _, err := ValueDeleteMessageFromJSON([]byte("{")); err == nil {
		t.Fatalf("expected error for invalid delete payload")
	}
}
