package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/shiptrack-io/shiptrack/internal/logger"
	"github.com/shiptrack-io/shiptrack/models"
)

// fileStore is a single-file JSON storage backend implementing both
// [UserRepository] and [ShipmentRepository]. It is meant for single-box
// deployments where running PostgreSQL is not worth it.
//
// The whole data set lives in one snapshot file. Every operation takes the
// store mutex, so all reads and mutations are serialised: a status change
// and its history entry, or a delete and its history cascade, are observed
// together or not at all. Writes go through a temp file plus rename, so a
// crash mid-write never corrupts the previous snapshot.
//
// Concurrent writers in other processes are out of scope.
type fileStore struct {
	path   string
	logger *logger.Logger

	mu sync.Mutex
}

// persisted snapshot shapes. The wire models hide credential and ownership
// fields from JSON, so the snapshot uses its own mirrors with every field
// serialised.

type fileUser struct {
	UserID       int64     `json:"user_id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

type fileShipment struct {
	ID           string                `json:"id"`
	OwnerID      int64                 `json:"owner_id"`
	Origin       string                `json:"origin"`
	Destination  string                `json:"destination"`
	Status       models.ShipmentStatus `json:"status"`
	WeightKg     float64               `json:"weight_kg"`
	RatePerKg    float64               `json:"rate_per_kg"`
	ShippingCost float64               `json:"shipping_cost"`
	IsFragile    bool                  `json:"is_fragile"`
	Metadata     map[string]string     `json:"metadata,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

type fileHistoryEntry struct {
	ShipmentID string                `json:"shipment_id"`
	Timestamp  time.Time             `json:"timestamp"`
	Location   string                `json:"location"`
	Status     models.ShipmentStatus `json:"status"`
	UpdatedBy  string                `json:"updated_by"`
	Remarks    string                `json:"remarks"`
}

type fileSnapshot struct {
	LastUserID int64                         `json:"last_user_id"`
	Users      []fileUser                    `json:"users"`
	Shipments  []fileShipment                `json:"shipments"`
	History    map[string][]fileHistoryEntry `json:"history"`
}

// NewFileStore opens (or lazily creates) the JSON snapshot at path and
// returns a store that serves both the user and the shipment repository
// interfaces from it.
func NewFileStore(path string, log *logger.Logger) (*fileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("error creating file store directory: %w", err)
	}

	fs := &fileStore{
		path:   path,
		logger: log,
	}

	// fail fast on an unreadable or corrupted snapshot
	if _, err := fs.load(); err != nil {
		return nil, err
	}

	log.Info().Str("path", path).Msg("file store opened")

	return fs, nil
}

// load reads the snapshot from disk. A missing file yields an empty
// snapshot, matching first-run behaviour. Callers must hold mu.
func (f *fileStore) load() (*fileSnapshot, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &fileSnapshot{History: map[string][]fileHistoryEntry{}}, nil
		}
		return nil, fmt.Errorf("error reading file store: %w", err)
	}

	var snapshot fileSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("error decoding file store: %w", err)
	}

	if snapshot.History == nil {
		snapshot.History = map[string][]fileHistoryEntry{}
	}

	return &snapshot, nil
}

// save writes the snapshot atomically via a temp file and rename.
// Callers must hold mu.
func (f *fileStore) save(snapshot *fileSnapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding file store: %w", err)
	}

	tmpPath := f.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("error writing file store: %w", err)
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("error replacing file store: %w", err)
	}

	return nil
}

// CreateUser persists a new user record, assigning the next sequential id.
// Returns [ErrUsernameTaken] when the username is already registered.
func (f *fileStore) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()

	snapshot, err := f.load()
	if err != nil {
		return models.User{}, err
	}

	for _, existing := range snapshot.Users {
		if existing.Username == user.Username {
			log.Warn().Str("func", "fileStore.CreateUser").Str("username", user.Username).Msg("username already exists")
			return models.User{}, ErrUsernameTaken
		}
	}

	snapshot.LastUserID++
	user.UserID = snapshot.LastUserID
	user.CreatedAt = time.Now().UTC()

	snapshot.Users = append(snapshot.Users, fileUser{
		UserID:       user.UserID,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	})

	if err := f.save(snapshot); err != nil {
		return models.User{}, err
	}

	return user, nil
}

// FindUserByUsername retrieves the user record with the given username,
// or [ErrUserNotFound].
func (f *fileStore) FindUserByUsername(ctx context.Context, username string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	snapshot, err := f.load()
	if err != nil {
		return models.User{}, err
	}

	for _, user := range snapshot.Users {
		if user.Username == username {
			return models.User{
				UserID:       user.UserID,
				Username:     user.Username,
				PasswordHash: user.PasswordHash,
				CreatedAt:    user.CreatedAt,
			}, nil
		}
	}

	return models.User{}, ErrUserNotFound
}

// CreateShipment persists the shipment and its first history entry in one
// snapshot write.
func (f *fileStore) CreateShipment(ctx context.Context, shipment models.Shipment, first models.HistoryEntry) (models.Shipment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	snapshot, err := f.load()
	if err != nil {
		return models.Shipment{}, err
	}

	snapshot.Shipments = append(snapshot.Shipments, toFileShipment(shipment))
	snapshot.History[shipment.ID] = append(snapshot.History[shipment.ID], toFileHistoryEntry(first))

	if err := f.save(snapshot); err != nil {
		return models.Shipment{}, err
	}

	return shipment, nil
}

// FindShipment returns the shipment with the given id owned by ownerID,
// or [ErrShipmentNotFound].
func (f *fileStore) FindShipment(ctx context.Context, ownerID int64, id string) (models.Shipment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	snapshot, err := f.load()
	if err != nil {
		return models.Shipment{}, err
	}

	for _, shipment := range snapshot.Shipments {
		if shipment.ID == id && shipment.OwnerID == ownerID {
			return fromFileShipment(shipment), nil
		}
	}

	return models.Shipment{}, ErrShipmentNotFound
}

// ListHistory returns the shipment's history entries ordered newest first.
func (f *fileStore) ListHistory(ctx context.Context, shipmentID string) ([]models.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	snapshot, err := f.load()
	if err != nil {
		return nil, err
	}

	stored := snapshot.History[shipmentID]
	entries := make([]models.HistoryEntry, 0, len(stored))
	for _, entry := range stored {
		entries = append(entries, fromFileHistoryEntry(entry))
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})

	return entries, nil
}

// ListShipments returns one page of the owner's shipments matching the
// filter, newest first, plus the total match count.
func (f *fileStore) ListShipments(ctx context.Context, ownerID int64, filter models.ShipmentFilter) ([]models.Shipment, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	snapshot, err := f.load()
	if err != nil {
		return nil, 0, err
	}

	matched := make([]models.Shipment, 0, len(snapshot.Shipments))
	for _, shipment := range snapshot.Shipments {
		if shipment.OwnerID != ownerID {
			continue
		}
		if filter.Status != "" && shipment.Status != filter.Status {
			continue
		}
		matched = append(matched, fromFileShipment(shipment))
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))

	offset := filter.Offset()
	if offset >= len(matched) {
		return []models.Shipment{}, total, nil
	}

	end := offset + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}

	return matched[offset:end], total, nil
}

// UpdateShipment applies the patch to the owner's shipment and, when entry
// is non-nil, appends it to the history log in the same snapshot write.
func (f *fileStore) UpdateShipment(ctx context.Context, ownerID int64, id string, patch models.ShipmentPatch, entry *models.HistoryEntry) (models.Shipment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	snapshot, err := f.load()
	if err != nil {
		return models.Shipment{}, err
	}

	for i, stored := range snapshot.Shipments {
		if stored.ID != id || stored.OwnerID != ownerID {
			continue
		}

		shipment := fromFileShipment(stored)
		patch.Apply(&shipment)
		shipment.UpdatedAt = time.Now().UTC()

		snapshot.Shipments[i] = toFileShipment(shipment)

		if entry != nil {
			snapshot.History[id] = append(snapshot.History[id], toFileHistoryEntry(*entry))
		}

		if err := f.save(snapshot); err != nil {
			return models.Shipment{}, err
		}

		return shipment, nil
	}

	return models.Shipment{}, ErrShipmentNotFound
}

// DeleteShipment removes the owner's shipment with all of its history
// entries in one snapshot write.
func (f *fileStore) DeleteShipment(ctx context.Context, ownerID int64, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	snapshot, err := f.load()
	if err != nil {
		return err
	}

	for i, stored := range snapshot.Shipments {
		if stored.ID != id || stored.OwnerID != ownerID {
			continue
		}

		snapshot.Shipments = append(snapshot.Shipments[:i], snapshot.Shipments[i+1:]...)
		delete(snapshot.History, id)

		return f.save(snapshot)
	}

	return ErrShipmentNotFound
}

func toFileShipment(s models.Shipment) fileShipment {
	return fileShipment{
		ID:           s.ID,
		OwnerID:      s.OwnerID,
		Origin:       s.Origin,
		Destination:  s.Destination,
		Status:       s.Status,
		WeightKg:     s.WeightKg,
		RatePerKg:    s.RatePerKg,
		ShippingCost: s.ShippingCost,
		IsFragile:    s.IsFragile,
		Metadata:     s.Metadata,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func fromFileShipment(s fileShipment) models.Shipment {
	return models.Shipment{
		ID:           s.ID,
		OwnerID:      s.OwnerID,
		Origin:       s.Origin,
		Destination:  s.Destination,
		Status:       s.Status,
		WeightKg:     s.WeightKg,
		RatePerKg:    s.RatePerKg,
		ShippingCost: s.ShippingCost,
		IsFragile:    s.IsFragile,
		Metadata:     s.Metadata,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func toFileHistoryEntry(e models.HistoryEntry) fileHistoryEntry {
	return fileHistoryEntry{
		ShipmentID: e.ShipmentID,
		Timestamp:  e.Timestamp,
		Location:   e.Location,
		Status:     e.Status,
		UpdatedBy:  e.UpdatedBy,
		Remarks:    e.Remarks,
	}
}

func fromFileHistoryEntry(e fileHistoryEntry) models.HistoryEntry {
	return models.HistoryEntry{
		ShipmentID: e.ShipmentID,
		Timestamp:  e.Timestamp,
		Location:   e.Location,
		Status:     e.Status,
		UpdatedBy:  e.UpdatedBy,
		Remarks:    e.Remarks,
	}
}
