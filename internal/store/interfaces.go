package store

import (
	"context"

	"github.com/shiptrack-io/shiptrack/models"
)

// UserRepository persists user accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByUsername(ctx context.Context, username string) (models.User, error)
}

// ShipmentRepository persists shipment records and their append-only history
// logs. Every read and mutation is scoped to the owning user: a shipment id
// that exists but belongs to someone else behaves exactly like a missing one
// ([ErrShipmentNotFound]), so existence is never leaked to non-owners.
//
// Mutations that touch both a shipment and its history (create with the
// synthetic first entry, update with a status-change entry, delete with the
// history cascade) must appear atomic to any concurrent reader.
type ShipmentRepository interface {
	// CreateShipment persists a new shipment together with its first history
	// entry and returns the stored record.
	CreateShipment(ctx context.Context, shipment models.Shipment, first models.HistoryEntry) (models.Shipment, error)

	// FindShipment returns the shipment with the given id owned by ownerID,
	// or ErrShipmentNotFound.
	FindShipment(ctx context.Context, ownerID int64, id string) (models.Shipment, error)

	// ListHistory returns the shipment's history entries ordered newest
	// first. Callers must have established ownership via FindShipment.
	ListHistory(ctx context.Context, shipmentID string) ([]models.HistoryEntry, error)

	// ListShipments returns one page of the owner's shipments matching the
	// filter, ordered by creation time descending, together with the total
	// number of matching records across all pages.
	ListShipments(ctx context.Context, ownerID int64, filter models.ShipmentFilter) ([]models.Shipment, int64, error)

	// UpdateShipment applies the patch to the owner's shipment and, when
	// entry is non-nil, appends it to the history log in the same atomic
	// step. Returns the updated record or ErrShipmentNotFound.
	UpdateShipment(ctx context.Context, ownerID int64, id string, patch models.ShipmentPatch, entry *models.HistoryEntry) (models.Shipment, error)

	// DeleteShipment removes the owner's shipment and all of its history
	// entries, history first, atomically. Returns ErrShipmentNotFound when
	// the shipment does not exist for that owner.
	DeleteShipment(ctx context.Context, ownerID int64, id string) error
}
