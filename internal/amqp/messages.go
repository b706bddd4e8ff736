package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CalculationEvent is published after every successful calculator run.
// It carries the inputs but never the results; consumers that need the
// numbers recompute them.
type CalculationEvent struct {
	ID         uuid.UUID          `json:"id"`
	Calculator string             `json:"calculator"`
	Kind       string             `json:"kind"`
	Inputs     map[string]float64 `json:"inputs,omitempty"`
	CacheHit   bool               `json:"cache_hit"`
	RequestID  string             `json:"request_id,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
}

// NewCalculationEvent creates an event stamped with a fresh ID and the current time
func NewCalculationEvent(calculator, kind string, inputs map[string]float64, cacheHit bool, requestID string) *CalculationEvent {
	return &CalculationEvent{
		ID:         uuid.New(),
		Calculator: calculator,
		Kind:       kind,
		Inputs:     inputs,
		CacheHit:   cacheHit,
		RequestID:  requestID,
		Timestamp:  time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *CalculationEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// CalculationEventFromJSON decodes an event
func CalculationEventFromJSON(data []byte) (*CalculationEvent, error) {
	var event CalculationEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
