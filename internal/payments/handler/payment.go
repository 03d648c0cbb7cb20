package handler

import (
	"encoding/json"
	"net/http"

	"busline/internal/payments/service"
	"busline/pkg/config"
	apperrors "busline/pkg/errors"
	httputil "busline/pkg/http"
	"busline/pkg/logger"
	"busline/pkg/middleware"
	"busline/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type PaymentHandler struct {
	service service.PaymentService
	authn   *middleware.Authenticator
	log     *logger.Logger
}

func NewPaymentHandler(service service.PaymentService, authn *middleware.Authenticator, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		authn:   authn,
		log:     log,
	}
}

func (h *PaymentHandler) Reserve(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		if writeErr := httputil.WriteError(w, apperrors.Unauthorized("authentication required")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Reserve", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	var req model.ReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Reserve", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	result, err := h.service.Reserve(r.Context(), identity.UserID, &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Reserve", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, result); err != nil {
		h.log.Error("failed to write created response", "handler", "Reserve", "operation", "WriteCreated", "error", err)
	}
}

func (h *PaymentHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		if writeErr := httputil.WriteError(w, apperrors.Unauthorized("authentication required")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	id := ps.ByName("id")
	payment, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	// A foreign payment id answers 404, the same as an absent one, so
	// callers cannot probe which ids exist.
	if identity.UserID != payment.UserID && identity.Role != config.RoleAdmin {
		if writeErr := httputil.WriteError(w, apperrors.NotFoundWithID("Payment", id)); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, payment); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PaymentHandler) GetByUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID := ps.ByName("id")
	if !h.allowOwnerOrAdmin(w, r, userID) {
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByUser", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	payments, total, err := h.service.GetByUser(r.Context(), userID, limit, offset)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByUser", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, payments, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetByUser", "operation", "WritePaginated", "error", err)
	}
}

func (h *PaymentHandler) allowOwnerOrAdmin(w http.ResponseWriter, r *http.Request, ownerID string) bool {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		if writeErr := httputil.WriteError(w, apperrors.Unauthorized("authentication required")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "allowOwnerOrAdmin", "operation", "WriteError", "error", writeErr)
		}
		return false
	}
	if identity.UserID != ownerID && identity.Role != config.RoleAdmin {
		if writeErr := httputil.WriteError(w, apperrors.Forbidden("insufficient permissions")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "allowOwnerOrAdmin", "operation", "WriteError", "error", writeErr)
		}
		return false
	}
	return true
}

func (h *PaymentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/payments", h.authn.Require(h.Reserve))
	router.GET("/api/v1/payments/id/:id", h.authn.Require(h.GetByID))
	router.GET("/api/v1/payments/user/:id", h.authn.Require(h.GetByUser))
}
