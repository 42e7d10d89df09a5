package service

import (
	"context"

	"github.com/shiptrack-io/shiptrack/models"
)

// AuthService handles user accounts and the bearer-token lifecycle.
type AuthService interface {
	// Register creates a new account with a hashed password.
	Register(ctx context.Context, username, password string) (models.User, error)

	// Login verifies credentials and issues a signed token. Unknown
	// usernames and wrong passwords are indistinguishable to the caller.
	Login(ctx context.Context, username, password string) (models.Token, error)

	CreateToken(ctx context.Context, user models.User) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

// ShipmentService implements the owner-scoped shipment operations. Every
// method takes the authenticated owner's id; shipments belonging to other
// users are reported as not found, never as forbidden.
type ShipmentService interface {
	Create(ctx context.Context, ownerID int64, req models.CreateShipmentRequest) (models.Shipment, error)
	Get(ctx context.Context, ownerID int64, id string) (models.ShipmentDetail, error)
	List(ctx context.Context, ownerID int64, filter models.ShipmentFilter) (models.ShipmentList, error)
	Update(ctx context.Context, ownerID int64, id string, patch models.ShipmentPatch) (models.Shipment, error)
	Delete(ctx context.Context, ownerID int64, id string) error
}
