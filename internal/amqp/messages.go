package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"enoteca/internal/core"
)

// RecordSubmittedMessage announces that a step of a daily record was submitted.
// It carries only the date; the worker reads the record from the store.
type RecordSubmittedMessage struct {
	Date      core.DateKey `json:"date"`
	Step      core.Step    `json:"step"`
	Timestamp time.Time    `json:"timestamp"`
}

func NewRecordSubmittedMessage(date core.DateKey, step core.Step) *RecordSubmittedMessage {
	return &RecordSubmittedMessage{
		Date:      date,
		Step:      step,
		Timestamp: time.Now(),
	}
}

func (m *RecordSubmittedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordSubmittedMessageFromJSON decodes a message and rejects an invalid date.
func RecordSubmittedMessageFromJSON(data []byte) (*RecordSubmittedMessage, error) {
	var msg RecordSubmittedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	date, err := core.ParseDateKey(msg.Date.String())
	if err != nil {
		return nil, fmt.Errorf("message date: %w", err)
	}
	msg.Date = date
	msg.Step = core.ParseStep(msg.Step.String())
	return &msg, nil
}
