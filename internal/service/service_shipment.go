package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shiptrack-io/shiptrack/internal/logger"
	"github.com/shiptrack-io/shiptrack/internal/store"
	"github.com/shiptrack-io/shiptrack/internal/utils"
	"github.com/shiptrack-io/shiptrack/models"
)

// Listing page defaults. Callers asking for more than maxPageLimit records
// per page are clamped, not rejected.
const (
	defaultPage  = 1
	defaultLimit = 5
	maxPageLimit = 100
)

// shipmentService is the concrete implementation of ShipmentService. It owns
// every business rule around shipment records:
//
//   - shipping cost is always WeightKg * RatePerKg, recomputed on every
//     weight or rate change and never accepted from callers;
//   - the history log gains an entry only when the status actually changes,
//     plus one synthetic "created" entry at creation time;
//   - all reads and writes are scoped to the owner, with foreign records
//     indistinguishable from missing ones.
type shipmentService struct {
	shipments store.ShipmentRepository
	ids       *utils.UUIDGenerator

	// now is stubberable in tests.
	now func() time.Time

	logger *logger.Logger
}

// NewShipmentService constructs a ShipmentService backed by the given
// repository.
func NewShipmentService(shipments store.ShipmentRepository, logger *logger.Logger) ShipmentService {
	return &shipmentService{
		shipments: shipments,
		ids:       utils.NewUUIDGenerator(),
		now:       func() time.Time { return time.Now().UTC() },
		logger:    logger,
	}
}

// Create validates the request, derives the server-side fields (id, status
// default, shipping cost, timestamps) and persists the shipment together
// with its synthetic creation history entry.
//
// Returns the stored shipment or ErrValidation when the request is rejected.
func (s *shipmentService) Create(ctx context.Context, ownerID int64, req models.CreateShipmentRequest) (models.Shipment, error) {
	log := logger.FromContext(ctx)

	if err := validateCreateRequest(req); err != nil {
		log.Error().Err(err).Int64("owner_id", ownerID).Msg("shipment creation rejected")
		return models.Shipment{}, err
	}

	status := req.Status
	if status == "" {
		status = models.StatusPending
	}

	now := s.now()
	shipment := models.Shipment{
		ID:           s.ids.Generate(),
		OwnerID:      ownerID,
		Origin:       req.Origin,
		Destination:  req.Destination,
		Status:       status,
		WeightKg:     req.WeightKg,
		RatePerKg:    req.RatePerKg,
		ShippingCost: req.WeightKg * req.RatePerKg,
		IsFragile:    req.IsFragile,
		Metadata:     req.Metadata,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	first := models.HistoryEntry{
		ShipmentID: shipment.ID,
		Timestamp:  now,
		Location:   shipment.Origin,
		Status:     shipment.Status,
		UpdatedBy:  models.HistoryActorSystem,
		Remarks:    "created",
	}

	created, err := s.shipments.CreateShipment(ctx, shipment, first)
	if err != nil {
		log.Err(err).Int64("owner_id", ownerID).Msg("shipment creation ended with error")
		return models.Shipment{}, fmt.Errorf("shipment creation ended with error: %w", err)
	}

	return created, nil
}

// Get returns the owner's shipment together with its full history log,
// newest entry first.
func (s *shipmentService) Get(ctx context.Context, ownerID int64, id string) (models.ShipmentDetail, error) {
	log := logger.FromContext(ctx)

	shipment, err := s.shipments.FindShipment(ctx, ownerID, id)
	if err != nil {
		return models.ShipmentDetail{}, fmt.Errorf("shipment lookup failed: %w", err)
	}

	history, err := s.shipments.ListHistory(ctx, id)
	if err != nil {
		log.Err(err).Str("shipment_id", id).Msg("history lookup failed")
		return models.ShipmentDetail{}, fmt.Errorf("history lookup failed: %w", err)
	}

	return models.ShipmentDetail{
		Shipment: shipment,
		History:  history,
	}, nil
}

// List returns one page of the owner's shipments with pagination metadata.
//
// Page and limit are normalised: non-positive values fall back to the
// defaults and limits above maxPageLimit are clamped. An unknown status in
// the filter is a validation error rather than an empty result, so typos do
// not silently hide data.
func (s *shipmentService) List(ctx context.Context, ownerID int64, filter models.ShipmentFilter) (models.ShipmentList, error) {
	log := logger.FromContext(ctx)

	if filter.Status != "" && !filter.Status.Valid() {
		return models.ShipmentList{}, fmt.Errorf("%w: unknown status %q", ErrValidation, filter.Status)
	}

	if filter.Page < 1 {
		filter.Page = defaultPage
	}
	if filter.Limit < 1 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}

	shipments, total, err := s.shipments.ListShipments(ctx, ownerID, filter)
	if err != nil {
		log.Err(err).Int64("owner_id", ownerID).Msg("shipment listing failed")
		return models.ShipmentList{}, fmt.Errorf("shipment listing failed: %w", err)
	}

	return models.ShipmentList{
		Data: shipments,
		Pagination: models.Pagination{
			Total:      total,
			Page:       filter.Page,
			Limit:      filter.Limit,
			TotalPages: (total + int64(filter.Limit) - 1) / int64(filter.Limit),
		},
	}, nil
}

// Update applies a partial update to the owner's shipment.
//
// The current record is loaded first so the service can detect an actual
// status change and recompute the shipping cost from the effective weight
// and rate. A history entry is appended only when the status changes; its
// location and remarks come from the patch annotations, with "status
// updated" as the default remark.
func (s *shipmentService) Update(ctx context.Context, ownerID int64, id string, patch models.ShipmentPatch) (models.Shipment, error) {
	log := logger.FromContext(ctx)

	if err := validatePatch(patch); err != nil {
		log.Error().Err(err).Str("shipment_id", id).Msg("shipment update rejected")
		return models.Shipment{}, err
	}

	current, err := s.shipments.FindShipment(ctx, ownerID, id)
	if err != nil {
		return models.Shipment{}, fmt.Errorf("shipment lookup failed: %w", err)
	}

	if patch.WeightKg != nil || patch.RatePerKg != nil {
		weight := current.WeightKg
		if patch.WeightKg != nil {
			weight = *patch.WeightKg
		}
		rate := current.RatePerKg
		if patch.RatePerKg != nil {
			rate = *patch.RatePerKg
		}
		cost := weight * rate
		patch.ShippingCost = &cost
	}

	var entry *models.HistoryEntry
	if patch.Status != nil && *patch.Status != current.Status {
		e := models.HistoryEntry{
			ShipmentID: id,
			Timestamp:  s.now(),
			Status:     *patch.Status,
			UpdatedBy:  models.HistoryActorUser,
			Remarks:    "status updated",
		}
		if patch.Location != nil {
			e.Location = *patch.Location
		}
		if patch.Remarks != nil {
			e.Remarks = *patch.Remarks
		}
		entry = &e
	}

	updated, err := s.shipments.UpdateShipment(ctx, ownerID, id, patch, entry)
	if err != nil {
		log.Err(err).Str("shipment_id", id).Msg("shipment update ended with error")
		return models.Shipment{}, fmt.Errorf("shipment update ended with error: %w", err)
	}

	return updated, nil
}

// Delete removes the owner's shipment and its entire history log.
func (s *shipmentService) Delete(ctx context.Context, ownerID int64, id string) error {
	log := logger.FromContext(ctx)

	if err := s.shipments.DeleteShipment(ctx, ownerID, id); err != nil {
		log.Err(err).Str("shipment_id", id).Int64("owner_id", ownerID).Msg("shipment deletion ended with error")
		return fmt.Errorf("shipment deletion ended with error: %w", err)
	}

	return nil
}

func validateCreateRequest(req models.CreateShipmentRequest) error {
	switch {
	case req.Origin == "":
		return fmt.Errorf("%w: origin is required", ErrValidation)
	case req.Destination == "":
		return fmt.Errorf("%w: destination is required", ErrValidation)
	case req.WeightKg <= 0:
		return fmt.Errorf("%w: weight must be positive", ErrValidation)
	case req.RatePerKg <= 0:
		return fmt.Errorf("%w: rate must be positive", ErrValidation)
	case req.Status != "" && !req.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", ErrValidation, req.Status)
	default:
		return nil
	}
}

func validatePatch(patch models.ShipmentPatch) error {
	switch {
	case patch.IsZero():
		return fmt.Errorf("%w: no fields to update", ErrValidation)
	case patch.Origin != nil && *patch.Origin == "":
		return fmt.Errorf("%w: origin cannot be empty", ErrValidation)
	case patch.Destination != nil && *patch.Destination == "":
		return fmt.Errorf("%w: destination cannot be empty", ErrValidation)
	case patch.WeightKg != nil && *patch.WeightKg <= 0:
		return fmt.Errorf("%w: weight must be positive", ErrValidation)
	case patch.RatePerKg != nil && *patch.RatePerKg <= 0:
		return fmt.Errorf("%w: rate must be positive", ErrValidation)
	case patch.Status != nil && !patch.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", ErrValidation, *patch.Status)
	default:
		return nil
	}
}
