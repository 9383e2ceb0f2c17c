package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/festipay/festipay/internal/middleware"
	"github.com/festipay/festipay/internal/models"
)

// AuthService defines the auth-gate operations required by the HTTP
// handlers.
type AuthService interface {
	// Register creates a USER-role account.
	Register(ctx context.Context, username, password string) models.Result
	// Login checks credentials and issues a session token on success.
	Login(ctx context.Context, username, password string) (models.Result, string, *models.User)
	// Logout revokes the session token unconditionally.
	Logout(token string)
	// RequestPasswordReset flags the account for administrator attention.
	RequestPasswordReset(ctx context.Context, username string) models.Result
	// AdminResetPassword overwrites a user's secret; the role check is
	// performed inside the operation.
	AdminResetPassword(ctx context.Context, actor *models.User, userID, newPassword string) models.Result
}

// AuthHandler handles registration, login, logout and the password-reset
// flow.
type AuthHandler struct {
	// AuthService performs the underlying auth operations.
	AuthService AuthService
}

// Register handles POST /api/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeValid(w, r, &req) {
		return
	}
	writeResult(w, h.AuthService.Register(r.Context(), req.Username, req.Password))
}

// Login handles POST /api/login. On success the response carries the
// session token gated routes require.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeValid(w, r, &req) {
		return
	}

	res, token, user := h.AuthService.Login(r.Context(), req.Username, req.Password)
	if !res.OK {
		writeJSON(w, http.StatusUnauthorized, LoginResponse{Result: res})
		return
	}
	u := toUserResponse(*user)
	writeJSON(w, http.StatusOK, LoginResponse{Result: res, Token: token, User: &u})
}

// Logout handles POST /api/logout, revoking the presented token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	h.AuthService.Logout(token)
	writeJSON(w, http.StatusOK, models.Ok("Logged out."))
}

// RequestReset handles POST /api/password-reset.
func (h *AuthHandler) RequestReset(w http.ResponseWriter, r *http.Request) {
	var req ResetRequest
	if !decodeValid(w, r, &req) {
		return
	}
	writeResult(w, h.AuthService.RequestPasswordReset(r.Context(), req.Username))
}

// AdminReset handles POST /api/users/{id}/password.
func (h *AuthHandler) AdminReset(w http.ResponseWriter, r *http.Request) {
	var req AdminResetRequest
	if !decodeValid(w, r, &req) {
		return
	}
	actor := middleware.ActorFromContext(r.Context())
	writeResult(w, h.AuthService.AdminResetPassword(r.Context(), actor, chi.URLParam(r, "id"), req.NewPassword))
}
