package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// MutationMessage announces a committed mutation of one of the canonical
// collections. Consumers only observe; they never replay the mutation.
type MutationMessage struct {
	Entity     string    `json:"entity"` // "transaction" | "category"
	Action     string    `json:"action"` // "created" | "deleted"
	EntityID   string    `json:"entity_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewMutationMessage(entity, action, entityID string) *MutationMessage {
	return &MutationMessage{
		Entity:     entity,
		Action:     action,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
	}
}

func (m *MutationMessage) Validate() error {
	switch m.Entity {
	case "transaction", "category":
	default:
		return fmt.Errorf("unknown entity %q", m.Entity)
	}
	switch m.Action {
	case "created", "deleted":
	default:
		return fmt.Errorf("unknown action %q", m.Action)
	}
	if m.EntityID == "" {
		return fmt.Errorf("missing entity id")
	}
	return nil
}

func (m *MutationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MutationMessageFromJSON(data []byte) (*MutationMessage, error) {
	var msg MutationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
