package publishers

import (
	"time"

	"github.com/samvad-hq/samvad-httpclient/internal/domain"
)

// Event is published when a target changes between reachable and unreachable.
type Event struct {
	TargetID       string             `json:"target_id"`
	Status         string             `json:"status"`
	PreviousStatus string             `json:"previous_status,omitempty"`
	Result         domain.ProbeResult `json:"result"`
	EmittedAt      time.Time          `json:"emitted_at"`
}

// NewEvent builds a transition event. previous is empty on first observation.
func NewEvent(result domain.ProbeResult, previous string) Event {
	return Event{
		TargetID:       result.TargetID,
		Status:         result.Status(),
		PreviousStatus: previous,
		Result:         result,
		EmittedAt:      time.Now().UTC(),
	}
}
