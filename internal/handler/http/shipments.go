package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shiptrack-io/shiptrack/internal/logger"
	"github.com/shiptrack-io/shiptrack/internal/utils"
	"github.com/shiptrack-io/shiptrack/models"
)

func (h *Handler) createShipment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	ownerID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		log.Error().Msg("no user ID in request context")
		writeJSONError(w, r, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req models.CreateShipmentRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeJSONError(w, r, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	created, err := h.services.ShipmentService.Create(ctx, ownerID, req)
	if err != nil {
		log.Err(err).Int64("owner_id", ownerID).Msg("shipment creation failed")
		writeError(w, r, err)
		return
	}

	log.Info().Str("shipment_id", created.ID).Int64("owner_id", ownerID).Msg("shipment created")

	if _, err := utils.WriteJSON(w, created, http.StatusCreated); err != nil {
		log.Err(err).Msg("error writing shipment response")
	}
}

func (h *Handler) getShipment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	ownerID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		log.Error().Msg("no user ID in request context")
		writeJSONError(w, r, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")

	detail, err := h.services.ShipmentService.Get(ctx, ownerID, id)
	if err != nil {
		log.Err(err).Str("shipment_id", id).Msg("shipment lookup failed")
		writeError(w, r, err)
		return
	}

	if _, err := utils.WriteJSON(w, detail, http.StatusOK); err != nil {
		log.Err(err).Msg("error writing shipment response")
	}
}

func (h *Handler) listShipments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	ownerID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		log.Error().Msg("no user ID in request context")
		writeJSONError(w, r, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	filter, err := filterFromQuery(r)
	if err != nil {
		log.Err(err).Msg("invalid listing parameters")
		writeJSONError(w, r, err.Error(), http.StatusBadRequest)
		return
	}

	list, err := h.services.ShipmentService.List(ctx, ownerID, filter)
	if err != nil {
		log.Err(err).Int64("owner_id", ownerID).Msg("shipment listing failed")
		writeError(w, r, err)
		return
	}

	if _, err := utils.WriteJSON(w, list, http.StatusOK); err != nil {
		log.Err(err).Msg("error writing shipment list response")
	}
}

func (h *Handler) updateShipment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	ownerID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		log.Error().Msg("no user ID in request context")
		writeJSONError(w, r, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")

	var patch models.ShipmentPatch
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		writeJSONError(w, r, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	updated, err := h.services.ShipmentService.Update(ctx, ownerID, id, patch)
	if err != nil {
		log.Err(err).Str("shipment_id", id).Msg("shipment update failed")
		writeError(w, r, err)
		return
	}

	log.Info().Str("shipment_id", id).Int64("owner_id", ownerID).Msg("shipment updated")

	if _, err := utils.WriteJSON(w, updated, http.StatusOK); err != nil {
		log.Err(err).Msg("error writing shipment response")
	}
}

func (h *Handler) deleteShipment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	ownerID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		log.Error().Msg("no user ID in request context")
		writeJSONError(w, r, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")

	if err := h.services.ShipmentService.Delete(ctx, ownerID, id); err != nil {
		log.Err(err).Str("shipment_id", id).Msg("shipment deletion failed")
		writeError(w, r, err)
		return
	}

	log.Info().Str("shipment_id", id).Int64("owner_id", ownerID).Msg("shipment deleted")

	w.WriteHeader(http.StatusNoContent)
}

// filterFromQuery reads the status, page and limit query parameters.
// Non-numeric page or limit values are rejected here; range normalisation
// happens in the service layer.
func filterFromQuery(r *http.Request) (models.ShipmentFilter, error) {
	var filter models.ShipmentFilter

	query := r.URL.Query()
	filter.Status = models.ShipmentStatus(query.Get("status"))

	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return models.ShipmentFilter{}, errInvalidPageParam
		}
		filter.Page = page
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return models.ShipmentFilter{}, errInvalidLimitParam
		}
		filter.Limit = limit
	}

	return filter, nil
}
