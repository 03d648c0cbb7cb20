package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"busline/internal/users/service"
	"busline/pkg/config"
	apperrors "busline/pkg/errors"
	httputil "busline/pkg/http"
	"busline/pkg/logger"
	"busline/pkg/middleware"
	"busline/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type UserHandler struct {
	service service.UserService
	authn   *middleware.Authenticator
	log     *logger.Logger
}

// SignInResponse carries the issued token alongside the account.
type SignInResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

func NewUserHandler(service service.UserService, authn *middleware.Authenticator, log *logger.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		authn:   authn,
		log:     log,
	}
}

func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "SignUp", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	user, err := h.service.SignUp(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SignUp", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, user); err != nil {
		h.log.Error("failed to write created response", "handler", "SignUp", "operation", "WriteCreated", "error", err)
	}
}

func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "SignIn", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	token, user, err := h.service.SignIn(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "SignIn", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	resp := SignInResponse{
		Token:     token.Token,
		ExpiresAt: token.Exp,
		User:      user,
	}
	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "SignIn", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if !h.allowSelfOrAdmin(w, r, id) {
		return
	}

	user, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, user); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if !h.allowSelfOrAdmin(w, r, id) {
		return
	}

	var updates model.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	user, err := h.service.Update(r.Context(), id, &updates)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, user); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if !h.allowSelfOrAdmin(w, r, id) {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

// allowSelfOrAdmin lets users act on their own account and admins on any.
func (h *UserHandler) allowSelfOrAdmin(w http.ResponseWriter, r *http.Request, id string) bool {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		if writeErr := httputil.WriteError(w, apperrors.Unauthorized("authentication required")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "allowSelfOrAdmin", "operation", "WriteError", "error", writeErr)
		}
		return false
	}
	if identity.UserID != id && identity.Role != config.RoleAdmin {
		if writeErr := httputil.WriteError(w, apperrors.Forbidden("insufficient permissions")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "allowSelfOrAdmin", "operation", "WriteError", "error", writeErr)
		}
		return false
	}
	return true
}

func (h *UserHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/users/signup", h.SignUp)
	router.POST("/api/v1/users/signin", h.SignIn)
	router.GET("/api/v1/users/id/:id", h.authn.Require(h.GetByID))
	router.PATCH("/api/v1/users/id/:id", h.authn.Require(h.Update))
	router.DELETE("/api/v1/users/id/:id", h.authn.Require(h.Delete))
}
