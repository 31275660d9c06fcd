package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"logitrack/tracker/internal/common"
	"logitrack/tracker/internal/constants"
	"logitrack/tracker/internal/logging"
	"logitrack/tracker/internal/services"
)

// Detail handles GET /api/v1/detail/{shipment_id}
func (h *Handlers) Detail() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "shipment_id")

		detail, err := h.deps.Services.Detail.GetDetail(r.Context(), id)
		if err != nil {
			respondLookupError(w, id, err)
			return
		}
		common.RespondSuccess(w, detail)
	}
}

// Timeline handles GET /api/v1/shipments/{id}/timeline
func (h *Handlers) Timeline() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		tl, err := h.deps.Services.Detail.GetTimeline(r.Context(), id)
		if err != nil {
			respondLookupError(w, id, err)
			return
		}
		common.RespondSuccess(w, tl)
	}
}

func respondLookupError(w http.ResponseWriter, id string, err error) {
	if errors.Is(err, services.ErrShipmentNotFound) {
		common.RespondError(w, constants.MsgNotFound, http.StatusNotFound)
		return
	}
	logging.Error("Detail lookup failed", "shipment_id", id, "error", err)
	common.RespondError(w, constants.MsgInternalServerError, http.StatusInternalServerError)
}
