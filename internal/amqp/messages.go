package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"worklog/internal/core"
)

// ChangeMessage carries one work log mutation to downstream consumers. The
// owning job travels with entry changes so consumers need no lookup.
type ChangeMessage struct {
	ID               string          `json:"id"`
	Kind             core.ChangeKind `json:"kind"`
	Job              *core.Job       `json:"job,omitempty"`
	Entry            *core.WorkEntry `json:"entry,omitempty"`
	CascadedEntryIDs []string        `json:"cascadedEntryIds,omitempty"`
	Timestamp        time.Time       `json:"timestamp"`
}

// NewChangeMessage wraps a change with a fresh message id.
func NewChangeMessage(c core.Change) *ChangeMessage {
	return &ChangeMessage{
		ID:               uuid.NewString(),
		Kind:             c.Kind,
		Job:              c.Job,
		Entry:            c.Entry,
		CascadedEntryIDs: c.CascadedEntryIDs,
		Timestamp:        time.Now().UTC(),
	}
}

// Change converts the message back to a domain change.
func (m *ChangeMessage) Change() core.Change {
	return core.Change{
		Kind:             m.Kind,
		Job:              m.Job,
		Entry:            m.Entry,
		CascadedEntryIDs: m.CascadedEntryIDs,
	}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON decodes a message and checks it names a known kind
// with the payload that kind needs.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Kind {
	case core.JobUpserted, core.JobDeleted:
		if msg.Job == nil {
			return nil, fmt.Errorf("%s message without job", msg.Kind)
		}
	case core.EntryUpserted, core.EntryDeleted:
		if msg.Entry == nil {
			return nil, fmt.Errorf("%s message without entry", msg.Kind)
		}
	default:
		return nil, fmt.Errorf("unknown change kind %q", msg.Kind)
	}
	return &msg, nil
}
