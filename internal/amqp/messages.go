package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExpenseExportMessage asks the worker to push one expense to the export
// target. It carries only the row id; the worker reads the full record from
// the database so the queue never holds stale copies.
type ExpenseExportMessage struct {
	MessageID string    `json:"message_id"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseExportMessage creates an export message for the given expense id.
func NewExpenseExportMessage(id int64) *ExpenseExportMessage {
	return &ExpenseExportMessage{
		MessageID: uuid.NewString(),
		ID:        id,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseExportMessageFromJSON creates a message from JSON bytes
func ExpenseExportMessageFromJSON(data []byte) (*ExpenseExportMessage, error) {
	var msg ExpenseExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
