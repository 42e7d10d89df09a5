package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shiptrack-io/shiptrack/internal/logger"
	"github.com/shiptrack-io/shiptrack/models"
)

// shipmentRepository is the PostgreSQL-backed implementation of
// [ShipmentRepository]. It executes all shipment and history operations
// against the "shipments" and "shipment_history" tables using the embedded
// [*DB] connection.
//
// Mutations that must be atomic (create with the first history entry, update
// with a status-change entry, delete with the history cascade) run inside a
// single database transaction, so concurrent readers either see the whole
// mutation or none of it.
type shipmentRepository struct {
	*DB
	logger *logger.Logger
}

// NewShipmentRepository constructs a [ShipmentRepository] backed by the
// provided database connection and logger.
func NewShipmentRepository(db *DB, logger *logger.Logger) ShipmentRepository {
	logger.Debug().Msg("creating shipment repository")
	return &shipmentRepository{
		DB:     db,
		logger: logger,
	}
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan code.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanShipmentRow reads one shipment row in the shipmentColumns order.
func scanShipmentRow(row rowScanner) (models.Shipment, error) {
	var shipment models.Shipment
	var metadataRaw []byte

	err := row.Scan(
		&shipment.ID,
		&shipment.OwnerID,
		&shipment.Origin,
		&shipment.Destination,
		&shipment.Status,
		&shipment.WeightKg,
		&shipment.RatePerKg,
		&shipment.ShippingCost,
		&shipment.IsFragile,
		&metadataRaw,
		&shipment.CreatedAt,
		&shipment.UpdatedAt,
	)
	if err != nil {
		return models.Shipment{}, err
	}

	if len(metadataRaw) > 0 {
		if err := json.Unmarshal(metadataRaw, &shipment.Metadata); err != nil {
			return models.Shipment{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
	}

	return shipment, nil
}

// CreateShipment inserts the shipment and its first history entry inside a
// single transaction and returns the stored record.
func (r *shipmentRepository) CreateShipment(ctx context.Context, shipment models.Shipment, first models.HistoryEntry) (models.Shipment, error) {
	log := logger.FromContext(ctx)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "shipmentRepository.CreateShipment").
			Str("shipment_id", shipment.ID).
			Msg("failed to begin transaction")
		return models.Shipment{}, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	metadataJSON, err := marshalMetadata(shipment.Metadata)
	if err != nil {
		return models.Shipment{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	_, err = tx.ExecContext(ctx, insertShipment,
		shipment.ID,
		shipment.OwnerID,
		shipment.Origin,
		shipment.Destination,
		shipment.Status,
		shipment.WeightKg,
		shipment.RatePerKg,
		shipment.ShippingCost,
		shipment.IsFragile,
		metadataJSON,
		shipment.CreatedAt,
		shipment.UpdatedAt,
	)
	if err != nil {
		log.Err(err).
			Str("func", "shipmentRepository.CreateShipment").
			Str("shipment_id", shipment.ID).
			Int64("owner_id", shipment.OwnerID).
			Msg("failed to insert shipment")
		return models.Shipment{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if err := insertHistory(ctx, tx, first); err != nil {
		log.Err(err).
			Str("func", "shipmentRepository.CreateShipment").
			Str("shipment_id", shipment.ID).
			Msg("failed to insert initial history entry")
		return models.Shipment{}, err
	}

	if commitErr := tx.Commit(); commitErr != nil {
		log.Err(commitErr).
			Str("func", "shipmentRepository.CreateShipment").
			Str("shipment_id", shipment.ID).
			Msg("failed to commit transaction")
		return models.Shipment{}, fmt.Errorf("%w: %w", ErrCommitingTransaction, commitErr)
	}

	return shipment, nil
}

// FindShipment retrieves the shipment with the given id owned by ownerID.
func (r *shipmentRepository) FindShipment(ctx context.Context, ownerID int64, id string) (models.Shipment, error) {
	log := logger.FromContext(ctx)

	row := r.DB.QueryRowContext(ctx, findShipmentByID, id, ownerID)

	shipment, err := scanShipmentRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Shipment{}, ErrShipmentNotFound
		}

		log.Err(err).
			Str("func", "shipmentRepository.FindShipment").
			Str("shipment_id", id).
			Int64("owner_id", ownerID).
			Msg("failed to scan shipment row")
		return models.Shipment{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return shipment, nil
}

// ListHistory returns the shipment's history entries ordered newest first.
func (r *shipmentRepository) ListHistory(ctx context.Context, shipmentID string) ([]models.HistoryEntry, error) {
	log := logger.FromContext(ctx)

	rows, err := r.DB.QueryContext(ctx, listHistoryEntries, shipmentID)
	if err != nil {
		log.Err(err).
			Str("func", "shipmentRepository.ListHistory").
			Str("shipment_id", shipmentID).
			Msg("failed to execute history query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	entries := make([]models.HistoryEntry, 0, 8)

	for rows.Next() {
		var entry models.HistoryEntry

		scanErr := rows.Scan(
			&entry.ShipmentID,
			&entry.Timestamp,
			&entry.Location,
			&entry.Status,
			&entry.UpdatedBy,
			&entry.Remarks,
		)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "shipmentRepository.ListHistory").
				Str("shipment_id", shipmentID).
				Msg("failed to scan history row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		entries = append(entries, entry)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "shipmentRepository.ListHistory").
			Str("shipment_id", shipmentID).
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return entries, nil
}

// ListShipments returns one page of the owner's shipments matching the
// filter plus the total match count.
func (r *shipmentRepository) ListShipments(ctx context.Context, ownerID int64, filter models.ShipmentFilter) ([]models.Shipment, int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListShipmentsQuery(ownerID, filter)
	if err != nil {
		log.Err(err).
			Str("func", "shipmentRepository.ListShipments").
			Int64("owner_id", ownerID).
			Msg("failed to build list query")
		return nil, 0, err
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "shipmentRepository.ListShipments").
			Int64("owner_id", ownerID).
			Msg("failed to execute list query")
		return nil, 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	shipments := make([]models.Shipment, 0, filter.Limit)

	for rows.Next() {
		shipment, scanErr := scanShipmentRow(rows)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "shipmentRepository.ListShipments").
				Int64("owner_id", ownerID).
				Msg("failed to scan shipment row")
			return nil, 0, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		shipments = append(shipments, shipment)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "shipmentRepository.ListShipments").
			Int64("owner_id", ownerID).
			Msg("error occurred during rows iteration")
		return nil, 0, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	countQuery, countArgs, err := buildCountShipmentsQuery(ownerID, filter)
	if err != nil {
		log.Err(err).
			Str("func", "shipmentRepository.ListShipments").
			Int64("owner_id", ownerID).
			Msg("failed to build count query")
		return nil, 0, err
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		log.Err(err).
			Str("func", "shipmentRepository.ListShipments").
			Int64("owner_id", ownerID).
			Msg("failed to execute count query")
		return nil, 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return shipments, total, nil
}

// UpdateShipment applies the patch to the owner's shipment and, when entry
// is non-nil, appends it to the history log in the same transaction.
func (r *shipmentRepository) UpdateShipment(ctx context.Context, ownerID int64, id string, patch models.ShipmentPatch, entry *models.HistoryEntry) (models.Shipment, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildUpdateShipmentQuery(ownerID, id, patch)
	if err != nil {
		log.Err(err).
			Str("func", "shipmentRepository.UpdateShipment").
			Str("shipment_id", id).
			Msg("failed to build update query")
		return models.Shipment{}, err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "shipmentRepository.UpdateShipment").
			Str("shipment_id", id).
			Msg("failed to begin transaction")
		return models.Shipment{}, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, query, args...)

	updated, err := scanShipmentRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Warn().
				Str("func", "shipmentRepository.UpdateShipment").
				Str("shipment_id", id).
				Int64("owner_id", ownerID).
				Msg("shipment not found")
			return models.Shipment{}, ErrShipmentNotFound
		}

		log.Err(err).
			Str("func", "shipmentRepository.UpdateShipment").
			Str("shipment_id", id).
			Msg("failed to execute update query")
		return models.Shipment{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	if entry != nil {
		if err := insertHistory(ctx, tx, *entry); err != nil {
			log.Err(err).
				Str("func", "shipmentRepository.UpdateShipment").
				Str("shipment_id", id).
				Msg("failed to append history entry")
			return models.Shipment{}, err
		}
	}

	if commitErr := tx.Commit(); commitErr != nil {
		log.Err(commitErr).
			Str("func", "shipmentRepository.UpdateShipment").
			Str("shipment_id", id).
			Msg("failed to commit transaction")
		return models.Shipment{}, fmt.Errorf("%w: %w", ErrCommitingTransaction, commitErr)
	}

	return updated, nil
}

// DeleteShipment removes the owner's shipment and its history entries in a
// single transaction: history rows first, then the shipment row. When the
// shipment row turns out not to exist for that owner, the transaction is
// rolled back so the history delete never takes effect either.
func (r *shipmentRepository) DeleteShipment(ctx context.Context, ownerID int64, id string) error {
	log := logger.FromContext(ctx)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).
			Str("func", "shipmentRepository.DeleteShipment").
			Str("shipment_id", id).
			Msg("failed to begin transaction")
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, deleteHistoryEntries, id); err != nil {
		log.Err(err).
			Str("func", "shipmentRepository.DeleteShipment").
			Str("shipment_id", id).
			Msg("failed to delete history entries")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	result, err := tx.ExecContext(ctx, deleteShipmentByID, id, ownerID)
	if err != nil {
		log.Err(err).
			Str("func", "shipmentRepository.DeleteShipment").
			Str("shipment_id", id).
			Msg("failed to delete shipment")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).
			Str("func", "shipmentRepository.DeleteShipment").
			Str("shipment_id", id).
			Msg("failed to read affected rows")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if affected == 0 {
		log.Warn().
			Str("func", "shipmentRepository.DeleteShipment").
			Str("shipment_id", id).
			Int64("owner_id", ownerID).
			Msg("shipment not found")
		return ErrShipmentNotFound
	}

	if commitErr := tx.Commit(); commitErr != nil {
		log.Err(commitErr).
			Str("func", "shipmentRepository.DeleteShipment").
			Str("shipment_id", id).
			Msg("failed to commit transaction")
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, commitErr)
	}

	return nil
}

// insertHistory appends one history entry within the given transaction.
func insertHistory(ctx context.Context, tx *sql.Tx, entry models.HistoryEntry) error {
	_, err := tx.ExecContext(ctx, insertHistoryEntry,
		entry.ShipmentID,
		entry.Timestamp,
		entry.Location,
		entry.Status,
		entry.UpdatedBy,
		entry.Remarks,
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}
