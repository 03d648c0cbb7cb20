package handler

import (
	"encoding/json"
	"net/http"

	"busline/internal/buses/repository"
	"busline/internal/buses/service"
	"busline/pkg/config"
	httputil "busline/pkg/http"
	"busline/pkg/logger"
	"busline/pkg/middleware"
	"busline/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BusHandler struct {
	service service.BusService
	authn   *middleware.Authenticator
	log     *logger.Logger
}

// SeatsResponse exposes the per-seat state of one bus.
type SeatsResponse struct {
	BusID          string       `json:"bus_id"`
	TotalSeats     int          `json:"total_seats"`
	AvailableSeats int          `json:"available_seats"`
	Seats          []model.Seat `json:"seats"`
}

func NewBusHandler(service service.BusService, authn *middleware.Authenticator, log *logger.Logger) *BusHandler {
	return &BusHandler{
		service: service,
		authn:   authn,
		log:     log,
	}
}

func (h *BusHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var bus model.Bus
	if err := json.NewDecoder(r.Body).Decode(&bus); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.Create(r.Context(), &bus); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, bus.Response()); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BusHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	bus, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, bus.Response()); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BusHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	query := r.URL.Query()
	filter := repository.BusFilter{
		Departure: query.Get("departure"),
		Arrival:   query.Get("arrival"),
		BusType:   query.Get("bus_type"),
	}

	buses, total, err := h.service.GetAll(r.Context(), filter, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	responses := make([]*model.BusResponse, 0, len(buses))
	for _, bus := range buses {
		responses = append(responses, bus.Response())
	}

	if err := httputil.WritePaginated(w, responses, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *BusHandler) GetSeats(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	seats, err := h.service.GetSeats(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetSeats", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	available := 0
	for i := range seats {
		if !seats[i].IsBooked() {
			available++
		}
	}

	resp := SeatsResponse{
		BusID:          id,
		TotalSeats:     len(seats),
		AvailableSeats: available,
		Seats:          seats,
	}
	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "GetSeats", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BusHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.BusUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	bus, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, bus.Response()); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BusHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BusHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/buses", h.authn.RequireRole(config.RoleAdmin, h.Create))
	router.GET("/api/v1/buses", h.GetAll)
	router.GET("/api/v1/buses/id/:id", h.GetByID)
	router.GET("/api/v1/buses/id/:id/seats", h.GetSeats)
	router.PATCH("/api/v1/buses/id/:id", h.authn.RequireRole(config.RoleAdmin, h.Update))
	router.DELETE("/api/v1/buses/id/:id", h.authn.RequireRole(config.RoleAdmin, h.Delete))
}
