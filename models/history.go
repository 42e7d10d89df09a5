package models

import "time"

// Actors recorded in the UpdatedBy field of a history entry.
const (
	HistoryActorSystem = "System"
	HistoryActorUser   = "User"
)

// HistoryEntry is a single record in a shipment's append-only audit trail.
// Entries are never mutated or deleted individually; they only disappear
// together with their shipment. For display they are ordered by timestamp
// descending.
type HistoryEntry struct {
	// ShipmentID references the owning shipment. Entries are returned
	// nested under their shipment, so the reference is not serialized.
	ShipmentID string `json:"-"`

	Timestamp time.Time      `json:"timestamp"`
	Location  string         `json:"location"`
	Status    ShipmentStatus `json:"status"`

	// UpdatedBy records who produced the entry: HistoryActorSystem for the
	// synthetic creation entry, HistoryActorUser for status updates.
	UpdatedBy string `json:"updatedBy"`

	Remarks string `json:"remarks"`
}

// TableName returns the name of the database table
// associated with the HistoryEntry model.
func (e HistoryEntry) TableName() string {
	return "shipment_history"
}
