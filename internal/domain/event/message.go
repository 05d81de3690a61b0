package event

import "encoding/json"

// StreamMessage is what live subscribers receive: either the one-time
// initial snapshot or a single committed event. The wire shape is a
// tagged envelope {"type": ..., "data": ...}.
type StreamMessage interface {
	isStreamMessage()
}

// InitialMessage carries the bounded snapshot sent once per connection.
type InitialMessage struct {
	Events []Event
}

// EventMessage carries one committed event.
type EventMessage struct {
	Event Event
}

func (InitialMessage) isStreamMessage() {}
func (EventMessage) isStreamMessage()   {}

type streamEnvelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func (m InitialMessage) MarshalJSON() ([]byte, error) {
	events := m.Events
	if events == nil {
		events = []Event{}
	}
	return json.Marshal(streamEnvelope{Type: "initial", Data: events})
}

func (m EventMessage) MarshalJSON() ([]byte, error) {
	return json.Marshal(streamEnvelope{Type: "event", Data: m.Event})
}
