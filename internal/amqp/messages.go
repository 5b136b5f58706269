package amqp

import (
	"encoding/json"
	"time"
)

// Change operations carried on the bus.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// ChangeMessage notifies other clients that a document in the shared
// collection changed. It carries no field values; receivers re-read the
// collection, so the store stays the single source of truth.
type ChangeMessage struct {
	Collection string    `json:"collection"`
	DocID      string    `json:"docId"`
	Op         string    `json:"op"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewChangeMessage creates a change notification stamped with the current time.
func NewChangeMessage(collection, docID, op string) *ChangeMessage {
	return &ChangeMessage{
		Collection: collection,
		DocID:      docID,
		Op:         op,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON creates a message from JSON bytes
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
