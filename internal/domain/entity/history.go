package entity

import "time"

// HistoryEntry is one immutable record of the requisition audit trail.
// Entries are only ever appended, never updated or deleted.
type HistoryEntry struct {
	ID             int64     `json:"id"`
	RequisitionID  int64     `json:"requisition_id"`
	ActorID        string    `json:"actor_id"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	Note           string    `json:"note"`
	Timestamp      time.Time `json:"timestamp"`
}
