package api

import (
	"net/http"

	"logitrack/tracker/internal/common"
	"logitrack/tracker/internal/constants"
	"logitrack/tracker/internal/logging"
	"logitrack/tracker/internal/models/dtos"
)

// Search handles GET /api/v1/search
func (h *Handlers) Search() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		params := dtos.SearchParams{
			Q:               q.Get("q"),
			POL:             q.Get("pol"),
			POD:             q.Get("pod"),
			PlaceOfDelivery: q.Get("place_of_delivery"),
			Mode:            q.Get("mode"),
			SortBy:          q.Get("sortBy"),
			Dir:             q.Get("dir"),
		}

		res, err := h.deps.Services.Search.Search(r.Context(), params)
		if err != nil {
			logging.Error("Search failed", "q", params.Q, "error", err)
			common.RespondError(w, constants.MsgInternalServerError, http.StatusInternalServerError)
			return
		}

		w.Header().Set(constants.SearchTierHeader, res.Tier)
		common.RespondSuccess(w, res.Rows)
	}
}
