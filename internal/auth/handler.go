package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/stewardhq/steward/internal/platform/httpx"
	"github.com/stewardhq/steward/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	secure    bool
}

// NewHandler constructs a Handler instance. secure controls the cookie's
// Secure attribute and should be true in production.
func NewHandler(logger *slog.Logger, service *Service, secure bool) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
		secure:    secure,
	}
}

// MountRoutes registers auth routes at the router root.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/auth", h.handleLogin)
	r.Post("/verify-token", h.handleVerify)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

type decodedClaims struct {
	ID   int64  `json:"id"`
	Role string `json:"role"`
	Iat  int64  `json:"iat"`
	Exp  int64  `json:"exp"`
}

type verifyResponse struct {
	Valid   bool          `json:"valid"`
	Decoded decodedClaims `json:"decoded"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Validation("Malformed request body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, shared.Validation("Email and password are required"))
		return
	}

	token, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	// Cookie lifetime is bound to the token's own expiry so a stale cookie
	// never outlives the credential it carries.
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token.Raw,
		Path:     "/",
		MaxAge:   int(time.Until(token.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	httpx.JSON(w, http.StatusOK, loginResponse{Token: token.Raw, Role: token.Role})
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	claims, err := h.service.Verify(BearerToken(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, verifyResponse{
		Valid: true,
		Decoded: decodedClaims{
			ID:   claims.AccountID,
			Role: claims.Role,
			Iat:  claims.IssuedAt.Unix(),
			Exp:  claims.ExpiresAt.Unix(),
		},
	})
}
