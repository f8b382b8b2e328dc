package sse

import (
	"encoding/json"
	"fmt"
)

// Event types broadcast by the daemon.
const (
	TypeVolumeChange = "volume-change"
	TypeMuteChange   = "mute-change"
	TypeStateChange  = "state-change"
)

// Event is one Server-Sent Event. Data is JSON-encoded on the wire.
type Event struct {
	Type string
	Data any
	ID   string
}

// String formats the event according to the SSE specification:
// "id: ...\nevent: type\ndata: json\n\n".
func (e Event) String() string {
	var result string

	if e.ID != "" {
		result += fmt.Sprintf("id: %s\n", e.ID)
	}
	if e.Type != "" {
		result += fmt.Sprintf("event: %s\n", e.Type)
	}

	dataBytes, err := json.Marshal(e.Data)
	if err != nil {
		return result + fmt.Sprintf("data: {\"error\":%q}\n\n", err.Error())
	}
	return result + fmt.Sprintf("data: %s\n\n", dataBytes)
}
