package amqp

import (
	"encoding/json"
	"time"
)

const (
	EntityBudget  = "budget"
	EntityExpense = "expense"

	OpAdd    = "add"
	OpDelete = "delete"
)

// ChangeMessage announces a committed ledger mutation. It carries only the
// entity kind, operation and id; consumers fetch the full record from the
// shared kv store.
type ChangeMessage struct {
	Entity    string    `json:"entity"`
	Op        string    `json:"op"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewChangeMessage(entity, op, id string) *ChangeMessage {
	return &ChangeMessage{
		Entity:    entity,
		Op:        op,
		ID:        id,
		Timestamp: time.Now(),
	}
}

func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
