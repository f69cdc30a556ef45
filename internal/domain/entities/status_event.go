package entities

import "time"

// CenterStatusEvent signals that the consensus status of a center changed
// after a rebuild. Consumed by the SSE stream.
type CenterStatusEvent struct {
	CenterName string     `json:"center_name"`
	OldStatus  LiveStatus `json:"old_status"`
	NewStatus  LiveStatus `json:"new_status"`
	Reason     string     `json:"reason"`
	Timestamp  time.Time  `json:"timestamp"`
}

// NewCenterStatusEvent builds a status-change event stamped with the current
// time. OldStatus is LiveStatusOK when the center had no previous signal.
func NewCenterStatusEvent(centerName string, oldStatus, newStatus LiveStatus, reason string) *CenterStatusEvent {
	return &CenterStatusEvent{
		CenterName: centerName,
		OldStatus:  oldStatus,
		NewStatus:  newStatus,
		Reason:     reason,
		Timestamp:  time.Now(),
	}
}
