package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiptrack-io/shiptrack/internal/service"
	"github.com/shiptrack-io/shiptrack/models"
)

// tokenAuthService resolves a fixed set of bearer tokens to user ids and
// rejects everything else.
func tokenAuthService(tokens map[string]int64) *mockAuthService {
	return &mockAuthService{
		parseTokenFn: func(ctx context.Context, tokenString string) (models.Token, error) {
			userID, ok := tokens[tokenString]
			if !ok {
				return models.Token{}, service.ErrTokenIsExpiredOrInvalid
			}
			return models.Token{SignedString: tokenString, UserID: userID}, nil
		},
	}
}

func getWithToken(t *testing.T, router http.Handler, path, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	router := newTestRouter(&service.Services{
		AuthService:     tokenAuthService(nil),
		ShipmentService: &mockShipmentService{},
	})

	rec := getWithToken(t, router, "/shipments", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	router := newTestRouter(&service.Services{
		AuthService:     tokenAuthService(nil),
		ShipmentService: &mockShipmentService{},
	})

	req := httptest.NewRequest(http.MethodGet, "/shipments", nil)
	req.Header.Set("Authorization", "Bearer")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	router := newTestRouter(&service.Services{
		AuthService:     tokenAuthService(map[string]int64{"good-token": 1}),
		ShipmentService: &mockShipmentService{},
	})

	rec := getWithToken(t, router, "/shipments", "forged-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddleware_PassesUserIDDownstream(t *testing.T) {
	var gotOwner int64
	shipments := &mockShipmentService{
		listFn: func(ctx context.Context, ownerID int64, filter models.ShipmentFilter) (models.ShipmentList, error) {
			gotOwner = ownerID
			return models.ShipmentList{Data: []models.Shipment{}}, nil
		},
	}
	router := newTestRouter(&service.Services{
		AuthService:     tokenAuthService(map[string]int64{"alice-token": 7}),
		ShipmentService: shipments,
	})

	rec := getWithToken(t, router, "/shipments", "alice-token")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), gotOwner)
}
