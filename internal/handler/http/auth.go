package http

import (
	"encoding/json"
	"net/http"

	"github.com/shiptrack-io/shiptrack/internal/logger"
	"github.com/shiptrack-io/shiptrack/internal/utils"
	"github.com/shiptrack-io/shiptrack/models"
)

// credentialsRequest is the JSON body shared by registration and login.
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var creds credentialsRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&creds); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeJSONError(w, r, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	registered, err := h.services.AuthService.Register(ctx, creds.Username, creds.Password)
	if err != nil {
		log.Err(err).Str("username", creds.Username).Msg("user registration failed")
		writeError(w, r, err)
		return
	}

	log.Info().Int64("id", registered.UserID).Str("username", registered.Username).Msg("user registered")

	if _, err := utils.WriteJSON(w, models.MessageResponse{Message: "User created"}, http.StatusCreated); err != nil {
		log.Err(err).Msg("error writing registration response")
	}
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var creds credentialsRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&creds); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeJSONError(w, r, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	token, err := h.services.AuthService.Login(ctx, creds.Username, creds.Password)
	if err != nil {
		log.Err(err).Str("username", creds.Username).Msg("user login failed")
		writeError(w, r, err)
		return
	}

	log.Debug().Int64("id", token.UserID).Msg("user successfully logged in")

	if _, err := utils.WriteJSON(w, models.TokenResponse{Token: token.String()}, http.StatusOK); err != nil {
		log.Err(err).Msg("error writing login response")
	}
}

// writeJSONError writes an ad-hoc JSON error envelope for failures that do
// not come from the service layer, such as malformed request bodies.
func writeJSONError(w http.ResponseWriter, r *http.Request, message string, status int) {
	if _, err := utils.WriteJSON(w, models.MessageResponse{Message: message}, status); err != nil {
		logger.FromRequest(r).Err(err).Msg("error writing error response")
	}
}
