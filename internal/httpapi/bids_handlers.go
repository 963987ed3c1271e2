package httpapi

import (
	"database/sql"
	"net/http"
	"strconv"

	"bidwatch-engine/internal/store"
)

type BidsHandler struct {
	DB *sql.DB
}

func (h BidsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if q := r.URL.Query().Get("limit"); q != "" {
		limit, _ = strconv.Atoi(q)
	}

	bids, err := store.ListBids(r.Context(), h.DB, limit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "db_error", err.Error())
		return
	}
	if bids == nil {
		bids = []store.BidRecord{}
	}
	writeJSON(w, bids)
}
