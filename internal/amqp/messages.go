package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// EventType says what happened to an expense.
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
)

// ExpenseEvent announces a write. It carries only the identity of the
// expense; consumers load the current record from the store.
type ExpenseEvent struct {
	Type      EventType `json:"type"`
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseEvent(t EventType, ownerID, id string, at time.Time) ExpenseEvent {
	return ExpenseEvent{Type: t, ID: id, OwnerID: ownerID, Timestamp: at.UTC()}
}

func (e ExpenseEvent) Validate() error {
	switch e.Type {
	case EventCreated, EventUpdated, EventDeleted:
	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.ID == "" {
		return errors.New("event without expense id")
	}
	if e.OwnerID == "" {
		return errors.New("event without owner id")
	}
	return nil
}

func (e ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ExpenseEventFromJSON decodes and validates an event body.
func ExpenseEventFromJSON(data []byte) (ExpenseEvent, error) {
	var ev ExpenseEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return ExpenseEvent{}, err
	}
	if err := ev.Validate(); err != nil {
		return ExpenseEvent{}, err
	}
	return ev, nil
}
