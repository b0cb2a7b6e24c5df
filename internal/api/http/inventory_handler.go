package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"hotel-booking-backend/internal/domain"
)

type provisionRequest struct {
	RoomID int64  `json:"roomId"`
	From   string `json:"from"`
	To     string `json:"to"`
	Total  int    `json:"total"`
}

func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	roomID, err := strconv.ParseInt(mux.Vars(r)["roomId"], 10, 64)
	if err != nil {
		badRequest(w, "invalid room id")
		return
	}
	from, err := domain.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		badRequest(w, "from must be YYYY-MM-DD")
		return
	}
	to, err := domain.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		badRequest(w, "to must be YYYY-MM-DD")
		return
	}

	nights, err := h.services.Inventory.Availability(r.Context(), roomID, from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nights)
}

func (h *Handler) Provision(w http.ResponseWriter, r *http.Request) {
	var body provisionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "malformed request body")
		return
	}
	from, err := domain.ParseDate(body.From)
	if err != nil {
		badRequest(w, "from must be YYYY-MM-DD")
		return
	}
	to, err := domain.ParseDate(body.To)
	if err != nil {
		badRequest(w, "to must be YYYY-MM-DD")
		return
	}

	nights, err := h.services.Inventory.Provision(r.Context(), domain.ProvisionRequest{
		RoomID: body.RoomID,
		From:   from,
		To:     to,
		Total:  body.Total,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nights)
}
