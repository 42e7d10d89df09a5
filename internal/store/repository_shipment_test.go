package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/shiptrack-io/shiptrack/internal/logger"
	"github.com/shiptrack-io/shiptrack/models"
)

func newTestShipmentRepo(t *testing.T) (*shipmentRepository, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	l := logger.Nop()
	repo := &shipmentRepository{
		DB:     &DB{DB: db, logger: l},
		logger: l,
	}
	return repo, mock, db
}

func testShipment() models.Shipment {
	now := time.Now().UTC()
	return models.Shipment{
		ID:           "0198f3a2-1111-7abc-8def-000000000001",
		OwnerID:      42,
		Origin:       "Rotterdam",
		Destination:  "Hamburg",
		Status:       models.StatusPending,
		WeightKg:     12.5,
		RatePerKg:    3.2,
		ShippingCost: 40,
		IsFragile:    true,
		Metadata:     map[string]string{"carrier": "maersk"},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func shipmentRows(s models.Shipment) *sqlmock.Rows {
	metadataJSON, _ := marshalMetadata(s.Metadata)
	return sqlmock.NewRows(shipmentColumns).
		AddRow(s.ID, s.OwnerID, s.Origin, s.Destination, s.Status, s.WeightKg,
			s.RatePerKg, s.ShippingCost, s.IsFragile, metadataJSON, s.CreatedAt, s.UpdatedAt)
}

func TestCreateShipment_Success(t *testing.T) {
	repo, mock, db := newTestShipmentRepo(t)
	defer db.Close()

	ctx := context.Background()
	shipment := testShipment()
	first := models.HistoryEntry{
		ShipmentID: shipment.ID,
		Timestamp:  shipment.CreatedAt,
		Location:   shipment.Origin,
		Status:     shipment.Status,
		UpdatedBy:  models.HistoryActorSystem,
		Remarks:    "created",
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO shipments").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO shipment_history").
		WithArgs(first.ShipmentID, first.Timestamp, first.Location, first.Status, first.UpdatedBy, first.Remarks).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	created, err := repo.CreateShipment(ctx, shipment, first)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != shipment.ID {
		t.Errorf("expected id %s, got %s", shipment.ID, created.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestCreateShipment_HistoryInsertFails_RollsBack(t *testing.T) {
	repo, mock, db := newTestShipmentRepo(t)
	defer db.Close()

	ctx := context.Background()
	shipment := testShipment()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO shipments").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO shipment_history").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.CreateShipment(ctx, shipment, models.HistoryEntry{ShipmentID: shipment.ID})
	if !errors.Is(err, ErrExecutingStatement) {
		t.Fatalf("expected ErrExecutingStatement, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestFindShipment_Success(t *testing.T) {
	repo, mock, db := newTestShipmentRepo(t)
	defer db.Close()

	ctx := context.Background()
	shipment := testShipment()

	mock.ExpectQuery("SELECT (.+) FROM shipments").
		WithArgs(shipment.ID, shipment.OwnerID).
		WillReturnRows(shipmentRows(shipment))

	found, err := repo.FindShipment(ctx, shipment.OwnerID, shipment.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found.Destination != shipment.Destination {
		t.Errorf("expected destination %s, got %s", shipment.Destination, found.Destination)
	}
	if found.Metadata["carrier"] != "maersk" {
		t.Errorf("metadata not restored: %v", found.Metadata)
	}
}

func TestFindShipment_NotFound(t *testing.T) {
	repo, mock, db := newTestShipmentRepo(t)
	defer db.Close()

	ctx := context.Background()

	mock.ExpectQuery("SELECT (.+) FROM shipments").
		WithArgs("missing-id", int64(42)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindShipment(ctx, 42, "missing-id")
	if !errors.Is(err, ErrShipmentNotFound) {
		t.Fatalf("expected ErrShipmentNotFound, got %v", err)
	}
}

func TestListHistory_ReturnsEntries(t *testing.T) {
	repo, mock, db := newTestShipmentRepo(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"shipment_id", "ts", "location", "status", "updated_by", "remarks"}).
		AddRow("ship-1", now, "", models.StatusInTransit, models.HistoryActorUser, "status updated").
		AddRow("ship-1", now.Add(-time.Hour), "Rotterdam", models.StatusPending, models.HistoryActorSystem, "created")

	mock.ExpectQuery("SELECT shipment_id, ts, location, status, updated_by, remarks").
		WithArgs("ship-1").
		WillReturnRows(rows)

	entries, err := repo.ListHistory(ctx, "ship-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Status != models.StatusInTransit {
		t.Errorf("expected newest entry first, got status %s", entries[0].Status)
	}
}

func TestListShipments_WithStatusFilter(t *testing.T) {
	repo, mock, db := newTestShipmentRepo(t)
	defer db.Close()

	ctx := context.Background()
	shipment := testShipment()
	filter := models.ShipmentFilter{Status: models.StatusPending, Page: 1, Limit: 5}

	mock.ExpectQuery("SELECT (.+) FROM shipments WHERE owner_id = (.+) AND status =").
		WithArgs(shipment.OwnerID, filter.Status).
		WillReturnRows(shipmentRows(shipment))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM shipments`).
		WithArgs(shipment.OwnerID, filter.Status).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	shipments, total, err := repo.ListShipments(ctx, shipment.OwnerID, filter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(shipments) != 1 {
		t.Fatalf("expected 1 shipment, got %d", len(shipments))
	}
	if total != 1 {
		t.Errorf("expected total=1, got %d", total)
	}
}

func TestListShipments_EmptyPage(t *testing.T) {
	repo, mock, db := newTestShipmentRepo(t)
	defer db.Close()

	ctx := context.Background()
	filter := models.ShipmentFilter{Page: 3, Limit: 5}

	mock.ExpectQuery("SELECT (.+) FROM shipments WHERE owner_id =").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(shipmentColumns))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM shipments`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	shipments, total, err := repo.ListShipments(ctx, 42, filter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(shipments) != 0 {
		t.Fatalf("expected empty page, got %d shipments", len(shipments))
	}
	if total != 11 {
		t.Errorf("expected total=11, got %d", total)
	}
}

func TestUpdateShipment_WithHistoryEntry(t *testing.T) {
	repo, mock, db := newTestShipmentRepo(t)
	defer db.Close()

	ctx := context.Background()
	shipment := testShipment()
	newStatus := models.StatusInTransit
	patch := models.ShipmentPatch{Status: &newStatus}
	entry := &models.HistoryEntry{
		ShipmentID: shipment.ID,
		Timestamp:  time.Now().UTC(),
		Status:     newStatus,
		UpdatedBy:  models.HistoryActorUser,
		Remarks:    "status updated",
	}

	updated := shipment
	updated.Status = newStatus

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE shipments SET").
		WillReturnRows(shipmentRows(updated))
	mock.ExpectExec("INSERT INTO shipment_history").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	got, err := repo.UpdateShipment(ctx, shipment.OwnerID, shipment.ID, patch, entry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != newStatus {
		t.Errorf("expected status %s, got %s", newStatus, got.Status)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateShipment_NoHistoryEntry(t *testing.T) {
	repo, mock, db := newTestShipmentRepo(t)
	defer db.Close()

	ctx := context.Background()
	shipment := testShipment()
	newDestination := "Antwerp"
	patch := models.ShipmentPatch{Destination: &newDestination}

	updated := shipment
	updated.Destination = newDestination

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE shipments SET").
		WillReturnRows(shipmentRows(updated))
	mock.ExpectCommit()

	got, err := repo.UpdateShipment(ctx, shipment.OwnerID, shipment.ID, patch, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Destination != newDestination {
		t.Errorf("expected destination %s, got %s", newDestination, got.Destination)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateShipment_NotFound(t *testing.T) {
	repo, mock, db := newTestShipmentRepo(t)
	defer db.Close()

	ctx := context.Background()
	newDestination := "Antwerp"
	patch := models.ShipmentPatch{Destination: &newDestination}

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE shipments SET").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.UpdateShipment(ctx, 42, "missing-id", patch, nil)
	if !errors.Is(err, ErrShipmentNotFound) {
		t.Fatalf("expected ErrShipmentNotFound, got %v", err)
	}
}

func TestDeleteShipment_Success(t *testing.T) {
	repo, mock, db := newTestShipmentRepo(t)
	defer db.Close()

	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM shipment_history").
		WithArgs("ship-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM shipments").
		WithArgs("ship-1", int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.DeleteShipment(ctx, 42, "ship-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDeleteShipment_NotOwned_RollsBack(t *testing.T) {
	repo, mock, db := newTestShipmentRepo(t)
	defer db.Close()

	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM shipment_history").
		WithArgs("ship-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM shipments").
		WithArgs("ship-1", int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.DeleteShipment(ctx, 99, "ship-1")
	if !errors.Is(err, ErrShipmentNotFound) {
		t.Fatalf("expected ErrShipmentNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
