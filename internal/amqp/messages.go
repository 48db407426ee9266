package amqp

import (
	"encoding/json"
	"time"
)

// Event names published on the ledger/schedule stream.
const (
	EventExpenseRecorded = "ledger.expense_recorded"
	EventBudgetSet       = "ledger.budget_set"
	EventActivityAdded   = "schedule.activity_added"
	EventActivityDeleted = "schedule.activity_deleted"
)

// Event is a lightweight notification that something changed for a user.
// Consumers fetch whatever detail they need from the database by EntityID;
// the message itself stays small.
type Event struct {
	Name      string    `json:"name"`
	UserID    int64     `json:"user_id"`
	EntityID  int64     `json:"entity_id"`
	Month     string    `json:"month,omitempty"` // YYYY-MM, set on ledger events
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent builds an event stamped with the current time.
func NewEvent(name string, userID, entityID int64, month string) Event {
	return Event{
		Name:      name,
		UserID:    userID,
		EntityID:  entityID,
		Month:     month,
		Timestamp: time.Now(),
	}
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func EventFromJSON(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	return e, nil
}
