package users

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/stewardhq/steward/internal/platform/httpx"
	"github.com/stewardhq/steward/internal/shared"
)

// Handler manages user management endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listUsers)
	r.Post("/", h.createUser)
	r.Put("/{id}", h.updateUser)
	r.Delete("/{id}", h.deleteUser)
}

// createUserRequest is the explicit schema for POST /users. Role is a role
// id; permissions are permission names; status defaults to ACTIVE.
type createUserRequest struct {
	Email       string   `json:"email" validate:"required,email"`
	Name        *string  `json:"name"`
	Role        string   `json:"role" validate:"required,uuid"`
	Permissions []string `json:"permissions"`
	Status      string   `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

// updateUserRequest is the schema for PUT /users/{id}. Same shape as create,
// but status is mandatory: an update always states the resulting status.
type updateUserRequest struct {
	Email       string   `json:"email" validate:"required,email"`
	Name        *string  `json:"name"`
	Role        string   `json:"role" validate:"required,uuid"`
	Permissions []string `json:"permissions"`
	Status      string   `json:"status" validate:"required,oneof=ACTIVE INACTIVE"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if users == nil {
		users = []User{}
	}
	httpx.JSON(w, http.StatusOK, users)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Validation("Malformed request body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, shared.Validation(validationMessage(err)))
		return
	}
	roleID, err := uuid.Parse(req.Role)
	if err != nil {
		httpx.RespondError(w, shared.Validation("Role must be a valid id"))
		return
	}
	user, err := h.service.CreateUser(r.Context(), Input{
		Email:       req.Email,
		Name:        req.Name,
		RoleID:      roleID,
		Permissions: req.Permissions,
		Status:      Status(req.Status),
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, shared.Validation("ID parameter is required"))
		return
	}
	var req updateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Validation("Malformed request body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, shared.Validation(validationMessage(err)))
		return
	}
	roleID, err := uuid.Parse(req.Role)
	if err != nil {
		httpx.RespondError(w, shared.Validation("Role must be a valid id"))
		return
	}
	user, err := h.service.UpdateUser(r.Context(), id, Input{
		Email:       req.Email,
		Name:        req.Name,
		RoleID:      roleID,
		Permissions: req.Permissions,
		Status:      Status(req.Status),
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, shared.Validation("ID parameter is required"))
		return
	}
	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

// validationMessage flattens the first field error into a caller-facing hint.
func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		switch first.Tag() {
		case "required":
			return first.Field() + " is required"
		case "email":
			return "Email must be a valid address"
		case "uuid":
			return first.Field() + " must be a valid id"
		case "oneof":
			return first.Field() + " must be one of ACTIVE, INACTIVE"
		}
	}
	return "Validation failed"
}
