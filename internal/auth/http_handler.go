package auth

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"booknook/internal/httpx"
	"booknook/internal/platform/crypto"
	"booknook/internal/user"
)

const (
	stateCookieName = "booknook_oauth_state"
	stateCookiePath = "/v1/auth/google"
	stateMaxAge     = 600
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

func clientInfo(r *http.Request) ClientInfo {
	return ClientInfo{
		UserAgent: r.UserAgent(),
		IPAddress: httpx.ClientIP(r),
	}
}

type LoginReq struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"remember_me"`
}

// Login handles POST /v1/users/login
// @Summary User login
// @Description Authenticate user and receive access and refresh tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginReq true "Login request"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /v1/users/login [post]
func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}
	req.Email = user.NormalizeEmail(req.Email)

	if validationErrors := httpx.ValidateStruct(req); len(validationErrors) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", validationErrors)
		return
	}

	tokens, err := h.service.Login(r.Context(), req.Email, req.Password, req.RememberMe, clientInfo(r))
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password", nil)
			return
		}
		httpx.InternalError(w, r, err)
		return
	}

	httpx.JSONSuccess(w, r, tokens, nil)
}

type RefreshReq struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshToken handles POST /v1/auth/refresh
// @Summary Refresh access token
// @Description Exchange a refresh token for a new token pair. The old refresh token stops working.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshReq true "Refresh token request"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /v1/auth/refresh [post]
func (h *HTTPHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
		return
	}

	if validationErrors := httpx.ValidateStruct(req); len(validationErrors) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", validationErrors)
		return
	}

	tokens, err := h.service.Refresh(r.Context(), req.RefreshToken, clientInfo(r))
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired refresh token", nil)
			return
		}
		httpx.InternalError(w, r, err)
		return
	}

	httpx.JSONSuccess(w, r, tokens, nil)
}

// Logout handles POST /v1/auth/logout
// @Summary User logout
// @Description Revoke the current access token and close its session
// @Tags auth
// @Security Bearer
// @Success 204 "No Content"
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /v1/auth/logout [post]
func (h *HTTPHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return
	}

	err := h.service.Logout(r.Context(), userID, httpx.TokenIDFrom(r), httpx.TokenExpiryFrom(r), httpx.SessionIDFrom(r))
	if err != nil {
		httpx.InternalError(w, r, err)
		return
	}

	httpx.JSONSuccessNoContent(w)
}

// GoogleLogin handles GET /v1/auth/google/login
// @Summary Start Google sign-in
// @Description Redirect to Google's consent screen. A short-lived state cookie is set.
// @Tags auth
// @Success 302 "Redirect to Google"
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/auth/google/login [get]
func (h *HTTPHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.service.GoogleEnabled() {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Google sign-in is not configured", nil)
		return
	}

	state, err := crypto.NewOpaqueToken()
	if err != nil {
		httpx.InternalError(w, r, err)
		return
	}
	target, err := h.service.GoogleAuthURL(state)
	if err != nil {
		httpx.InternalError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     stateCookiePath,
		MaxAge:   stateMaxAge,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, target, http.StatusFound)
}

// GoogleCallback handles GET /v1/auth/google/callback
// @Summary Finish Google sign-in
// @Description Exchange the authorization code, link or create the user, and return tokens
// @Tags auth
// @Produce json
// @Param code query string true "Authorization code"
// @Param state query string true "OAuth state"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /v1/auth/google/callback [get]
func (h *HTTPHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if !h.service.GoogleEnabled() {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Google sign-in is not configured", nil)
		return
	}

	// The state cookie is single use.
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     stateCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
	})

	if err := checkState(r); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid OAuth state", nil)
		return
	}

	q := r.URL.Query()
	if reason := q.Get("error"); reason != "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Google sign-in was cancelled", nil)
		return
	}
	code := q.Get("code")
	if code == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Missing authorization code", nil)
		return
	}

	tokens, err := h.service.GoogleSignIn(r.Context(), code, clientInfo(r))
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailNotVerified):
			httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Google email is not verified", nil)
		case errors.Is(err, ErrOAuthFailed):
			slog.WarnContext(r.Context(), "google sign-in failed", "error", err)
			httpx.JSONError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Google sign-in failed", nil)
		default:
			httpx.InternalError(w, r, err)
		}
		return
	}

	httpx.JSONSuccess(w, r, tokens, nil)
}

func checkState(r *http.Request) error {
	cookie, err := r.Cookie(stateCookieName)
	if err != nil || cookie.Value == "" {
		return ErrOAuthState
	}
	state := r.URL.Query().Get("state")
	if subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
		return ErrOAuthState
	}
	return nil
}
