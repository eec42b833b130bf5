package amqp

import (
	"encoding/json"
	"time"
)

// Message types carried in the AMQP Type property so the worker can
// dispatch without sniffing the payload.
const (
	TypeValueSync   = "value_sync"
	TypeValueDelete = "value_delete"
)

// ValueSyncMessage asks the worker to export one recorded KPI value.
// It carries only identifiers; the worker fetches the full row from the
// database so it always exports the current state.
type ValueSyncMessage struct {
	ValueID   int64     `json:"value_id"`
	KPIID     int64     `json:"kpi_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewValueSyncMessage creates a sync message for a recorded value.
func NewValueSyncMessage(valueID, kpiID int64) *ValueSyncMessage {
	return &ValueSyncMessage{
		ValueID:   valueID,
		KPIID:     kpiID,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ValueSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ValueSyncMessageFromJSON creates a message from JSON bytes
func ValueSyncMessageFromJSON(data []byte) (*ValueSyncMessage, error) {
	var msg ValueSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ValueDeleteMessage asks the worker to remove an exported row. The local
// database row is already gone when this is consumed, so the message
// carries the data needed to locate the row in the export target.
type ValueDeleteMessage struct {
	ValueID   int64     `json:"value_id"`
	KPIID     int64     `json:"kpi_id"`
	KPIName   string    `json:"kpi_name"`
	Period    string    `json:"period"`
	Timestamp time.Time `json:"timestamp"`
}

// NewValueDeleteMessage creates a delete message for a removed value.
func NewValueDeleteMessage(valueID, kpiID int64, kpiName, period string) *ValueDeleteMessage {
	return &ValueDeleteMessage{
		ValueID:   valueID,
		KPIID:     kpiID,
		KPIName:   kpiName,
		Period:    period,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ValueDeleteMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ValueDeleteMessageFromJSON creates a message from JSON bytes
func ValueDeleteMessageFromJSON(data []byte) (*ValueDeleteMessage, error) {
	var msg ValueDeleteMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
