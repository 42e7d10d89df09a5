package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/shiptrack-io/shiptrack/models"
)

// psql builds queries with PostgreSQL-style $N placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// shipmentColumns is the canonical column order used by every shipment
// SELECT and RETURNING clause. Scan destinations in scanShipmentRow must
// match this order.
var shipmentColumns = []string{
	"id",
	"owner_id",
	"origin",
	"destination",
	"status",
	"weight_kg",
	"rate_per_kg",
	"shipping_cost",
	"is_fragile",
	"metadata",
	"created_at",
	"updated_at",
}

const (
	createUser = `INSERT INTO users (username, password_hash)
    VALUES ($1, $2)
    RETURNING user_id, username, password_hash, created_at;`

	findUserByUsername = `SELECT user_id, username, password_hash, created_at
    FROM users
    WHERE username = $1;`

	insertShipment = `INSERT INTO shipments (
			id,
			owner_id,
			origin,
			destination,
			status,
			weight_kg,
			rate_per_kg,
			shipping_cost,
			is_fragile,
			metadata,
			created_at,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);`

	insertHistoryEntry = `INSERT INTO shipment_history (shipment_id, ts, location, status, updated_by, remarks)
		VALUES ($1, $2, $3, $4, $5, $6);`

	findShipmentByID = `SELECT id, owner_id, origin, destination, status, weight_kg, rate_per_kg, shipping_cost, is_fragile, metadata, created_at, updated_at
		FROM shipments
		WHERE id = $1 AND owner_id = $2;`

	listHistoryEntries = `SELECT shipment_id, ts, location, status, updated_by, remarks
		FROM shipment_history
		WHERE shipment_id = $1
		ORDER BY ts DESC, entry_id DESC;`

	deleteHistoryEntries = `DELETE FROM shipment_history
		WHERE shipment_id = $1;`

	deleteShipmentByID = `DELETE FROM shipments
		WHERE id = $1 AND owner_id = $2;`
)

// buildListShipmentsQuery builds the paged SELECT for an owner's shipments,
// with an optional status equality filter, ordered newest first.
func buildListShipmentsQuery(ownerID int64, filter models.ShipmentFilter) (string, []any, error) {
	qb := psql.Select(shipmentColumns...).
		From("shipments").
		Where(sq.Eq{"owner_id": ownerID})

	if filter.Status != "" {
		qb = qb.Where(sq.Eq{"status": filter.Status})
	}

	qb = qb.OrderBy("created_at DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset()))

	query, args, err := qb.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

// buildCountShipmentsQuery builds the COUNT companion to
// buildListShipmentsQuery, sharing its WHERE clause but not its page window.
func buildCountShipmentsQuery(ownerID int64, filter models.ShipmentFilter) (string, []any, error) {
	qb := psql.Select("COUNT(*)").
		From("shipments").
		Where(sq.Eq{"owner_id": ownerID})

	if filter.Status != "" {
		qb = qb.Where(sq.Eq{"status": filter.Status})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

// buildUpdateShipmentQuery builds a partial UPDATE from the patch's non-nil
// fields, scoped to the owner and returning the full updated row. The
// updated_at column is always bumped.
func buildUpdateShipmentQuery(ownerID int64, id string, patch models.ShipmentPatch) (string, []any, error) {
	qb := psql.Update("shipments").
		Set("updated_at", time.Now().UTC())

	if patch.Origin != nil {
		qb = qb.Set("origin", *patch.Origin)
	}
	if patch.Destination != nil {
		qb = qb.Set("destination", *patch.Destination)
	}
	if patch.Status != nil {
		qb = qb.Set("status", *patch.Status)
	}
	if patch.WeightKg != nil {
		qb = qb.Set("weight_kg", *patch.WeightKg)
	}
	if patch.RatePerKg != nil {
		qb = qb.Set("rate_per_kg", *patch.RatePerKg)
	}
	if patch.ShippingCost != nil {
		qb = qb.Set("shipping_cost", *patch.ShippingCost)
	}
	if patch.IsFragile != nil {
		qb = qb.Set("is_fragile", *patch.IsFragile)
	}
	if patch.Metadata != nil {
		metadataJSON, err := marshalMetadata(*patch.Metadata)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}
		qb = qb.Set("metadata", metadataJSON)
	}

	qb = qb.Where(sq.Eq{"id": id, "owner_id": ownerID}).
		Suffix("RETURNING " + strings.Join(shipmentColumns, ", "))

	query, args, err := qb.ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return query, args, nil
}

// marshalMetadata serializes a metadata map for the jsonb column. A nil map
// is stored as an empty object so reads never see SQL NULL.
func marshalMetadata(metadata map[string]string) ([]byte, error) {
	if metadata == nil {
		metadata = map[string]string{}
	}
	return json.Marshal(metadata)
}
