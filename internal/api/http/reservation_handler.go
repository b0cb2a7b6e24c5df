package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"hotel-booking-backend/internal/config"
	"hotel-booking-backend/internal/domain"
	"hotel-booking-backend/internal/service"
)

type holdRequest struct {
	RoomID      int64  `json:"roomId"`
	Qty         int    `json:"qty"`
	CheckIn     string `json:"checkIn"`
	CheckOut    string `json:"checkOut"`
	Adults      int    `json:"adults"`
	Children    int    `json:"children"`
	HoldSeconds int    `json:"holdSeconds"`
}

type confirmRequest struct {
	TransactionID string `json:"transactionId"`
}

// Hold places a hold for the authenticated caller. A userId in the body is ignored.
func (h *Handler) Hold(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	var body holdRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "malformed request body")
		return
	}
	checkIn, err := domain.ParseDate(body.CheckIn)
	if err != nil {
		badRequest(w, "checkIn must be YYYY-MM-DD")
		return
	}
	checkOut, err := domain.ParseDate(body.CheckOut)
	if err != nil {
		badRequest(w, "checkOut must be YYYY-MM-DD")
		return
	}

	res, err := h.services.Hold.Hold(r.Context(), domain.HoldRequest{
		UserID:      claims.UserID,
		RoomID:      body.RoomID,
		Quantity:    body.Qty,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		Adults:      body.Adults,
		Children:    body.Children,
		HoldSeconds: body.HoldSeconds,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	detail, ok := h.ownedReservation(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	detail, ok := h.ownedReservation(w, r)
	if !ok {
		return
	}

	var body confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "malformed request body")
		return
	}
	var opts []service.ConfirmOption
	if body.TransactionID != "" {
		opts = append(opts, service.WithTransactionID(body.TransactionID))
	}

	if err := h.services.Lifecycle.Confirm(r.Context(), detail.ID, opts...); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	detail, ok := h.ownedReservation(w, r)
	if !ok {
		return
	}
	if err := h.services.Lifecycle.Cancel(r.Context(), detail.ID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, ClaimsFromContext(r.Context()).UserID)
}

func (h *Handler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(mux.Vars(r)["userId"], 10, 64)
	if err != nil {
		badRequest(w, "invalid user id")
		return
	}
	h.list(w, r, userID)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, userID int64) {
	page, err := queryInt(r, "page", 0)
	if err != nil {
		badRequest(w, "page must be an integer")
		return
	}
	size, err := queryInt(r, "size", 0)
	if err != nil {
		badRequest(w, "size must be an integer")
		return
	}

	list, err := h.services.Query.ListByUser(r.Context(), userID, page, size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ownedReservation loads the path reservation and hides it from callers who
// neither own it nor hold the admin role.
func (h *Handler) ownedReservation(w http.ResponseWriter, r *http.Request) (*domain.ReservationDetail, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		badRequest(w, "invalid reservation id")
		return nil, false
	}

	detail, err := h.services.Query.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	claims := ClaimsFromContext(r.Context())
	if detail.UserID != claims.UserID && !claims.HasRole(config.RoleAdmin) {
		writeError(w, r, domain.ErrReservationNotFound)
		return nil, false
	}
	return detail, true
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
