package models

import "time"

// ShipmentStatus is the lifecycle state of a shipment record.
type ShipmentStatus string

// All statuses a shipment can be in. Transitions between them are free-form;
// every change is recorded in the shipment's history log.
const (
	StatusPending   ShipmentStatus = "PENDING"
	StatusInTransit ShipmentStatus = "IN_TRANSIT"
	StatusDelivered ShipmentStatus = "DELIVERED"
	StatusCancelled ShipmentStatus = "CANCELLED"
)

// Valid reports whether s is one of the known shipment statuses.
func (s ShipmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInTransit, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// Shipment is a single tracked shipment record owned by exactly one user.
//
// ShippingCost is a derived field: it always equals WeightKg * RatePerKg and
// is recomputed by the service whenever weight or rate changes. Metadata is
// an open extension point for carrier-specific attributes; keys and values
// are opaque strings.
type Shipment struct {
	// ID is the external shipment identifier (UUIDv7), used in tracking URLs.
	ID string `json:"id"`

	// OwnerID references the user the shipment belongs to. It is immutable
	// after creation and never exposed via JSON.
	OwnerID int64 `json:"-"`

	Origin      string         `json:"origin"`
	Destination string         `json:"destination"`
	Status      ShipmentStatus `json:"status"`

	WeightKg     float64 `json:"weightInKg"`
	RatePerKg    float64 `json:"ratePerKg"`
	ShippingCost float64 `json:"shippingCost"`

	IsFragile bool `json:"isFragile"`

	Metadata map[string]string `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName returns the name of the database table
// associated with the Shipment model.
func (s Shipment) TableName() string {
	return "shipments"
}

// CreateShipmentRequest carries the caller-supplied fields for a new shipment.
// Status defaults to PENDING when empty; ShippingCost is never accepted from
// the caller.
type CreateShipmentRequest struct {
	Origin      string            `json:"origin"`
	Destination string            `json:"destination"`
	Status      ShipmentStatus    `json:"status,omitempty"`
	WeightKg    float64           `json:"weightInKg"`
	RatePerKg   float64           `json:"ratePerKg"`
	IsFragile   bool              `json:"isFragile"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// ShipmentPatch describes a partial update to a shipment. Nil pointer fields
// are left untouched.
//
// Location and Remarks are not shipment fields: when the patch changes the
// shipment's status they annotate the history entry written for the change,
// and are ignored otherwise.
type ShipmentPatch struct {
	Origin      *string            `json:"origin,omitempty"`
	Destination *string            `json:"destination,omitempty"`
	Status      *ShipmentStatus    `json:"status,omitempty"`
	WeightKg    *float64           `json:"weightInKg,omitempty"`
	RatePerKg   *float64           `json:"ratePerKg,omitempty"`
	IsFragile   *bool              `json:"isFragile,omitempty"`
	Metadata    *map[string]string `json:"metadata,omitempty"`

	Location *string `json:"location,omitempty"`
	Remarks  *string `json:"remarks,omitempty"`

	// ShippingCost is derived from weight and rate by the service layer.
	// It is never accepted from callers.
	ShippingCost *float64 `json:"-"`
}

// IsZero reports whether the patch carries no shipment field changes.
// History annotations (Location, Remarks) do not count.
func (p ShipmentPatch) IsZero() bool {
	return p.Origin == nil && p.Destination == nil && p.Status == nil &&
		p.WeightKg == nil && p.RatePerKg == nil && p.IsFragile == nil &&
		p.Metadata == nil
}

// Apply copies every non-nil patch field onto s. ShippingCost is applied
// last so a recomputed cost always wins over the stored one.
func (p ShipmentPatch) Apply(s *Shipment) {
	if p.Origin != nil {
		s.Origin = *p.Origin
	}
	if p.Destination != nil {
		s.Destination = *p.Destination
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.WeightKg != nil {
		s.WeightKg = *p.WeightKg
	}
	if p.RatePerKg != nil {
		s.RatePerKg = *p.RatePerKg
	}
	if p.IsFragile != nil {
		s.IsFragile = *p.IsFragile
	}
	if p.Metadata != nil {
		s.Metadata = *p.Metadata
	}
	if p.ShippingCost != nil {
		s.ShippingCost = *p.ShippingCost
	}
}

// ShipmentFilter narrows and pages a shipment listing. A zero Status means
// no status filtering; Page and Limit are normalised by the service.
type ShipmentFilter struct {
	Status ShipmentStatus
	Page   int
	Limit  int
}

// Offset returns the number of records to skip for the filter's page.
func (f ShipmentFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}
