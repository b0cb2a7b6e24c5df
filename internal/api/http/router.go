package http

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"hotel-booking-backend/internal/security"
	"hotel-booking-backend/internal/service"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Services bundles what the REST handlers call into.
type Services struct {
	Hold      service.HoldService
	Lifecycle service.LifecycleService
	Query     service.QueryService
	Inventory service.InventoryService
}

type Handler struct {
	services Services
	db       Pinger
}

func NewHandler(services Services, db Pinger) *Handler {
	return &Handler{services: services, db: db}
}

// NewRouter registers every REST route under /api/v1 plus /healthz. Route
// names double as keys into the endpoint security table.
func NewRouter(h *Handler, tokens security.TokenManager) *mux.Router {
	router := mux.NewRouter()
	router.Use(requestIDMiddleware)
	router.Use(NewAuthMiddleware(tokens).Middleware)

	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet).Name("health")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/reservations/hold", h.Hold).Methods(http.MethodPost).Name("reservations.hold")
	api.HandleFunc("/reservations/my", h.ListMine).Methods(http.MethodGet).Name("reservations.my")
	api.HandleFunc("/reservations/user/{userId:[0-9]+}", h.ListByUser).Methods(http.MethodGet).Name("reservations.by_user")
	api.HandleFunc("/reservations/{id:[0-9]+}", h.Get).Methods(http.MethodGet).Name("reservations.get")
	api.HandleFunc("/reservations/{id:[0-9]+}/confirm", h.Confirm).Methods(http.MethodPost).Name("reservations.confirm")
	api.HandleFunc("/reservations/{id:[0-9]+}/cancel", h.Cancel).Methods(http.MethodPost).Name("reservations.cancel")
	api.HandleFunc("/rooms/{roomId:[0-9]+}/availability", h.Availability).Methods(http.MethodGet).Name("rooms.availability")
	api.HandleFunc("/inventory/provision", h.Provision).Methods(http.MethodPost).Name("inventory.provision")

	return router
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
