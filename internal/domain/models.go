package domain

import "time"

// ProbeResult is the outcome of one reachability check against a target.
type ProbeResult struct {
	TargetID   string    `json:"target_id"`
	TargetName string    `json:"target_name"`
	URL        string    `json:"url"`
	Reachable  bool      `json:"reachable"`
	CheckedAt  time.Time `json:"checked_at"`
	ElapsedMs  int64     `json:"elapsed_ms"`
}

// Status renders Reachable as "up" or "down".
func (r ProbeResult) Status() string {
	if r.Reachable {
		return "up"
	}
	return "down"
}
