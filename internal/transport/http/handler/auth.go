package handler

import (
	"encoding/json"
	"net/http"

	"github.com/campus-market-api/internal/application/auth"
	"github.com/campus-market-api/internal/application/otp"
	"github.com/campus-market-api/internal/application/user"
	"github.com/campus-market-api/internal/domain"
	"github.com/campus-market-api/internal/pkg/validate"
	"github.com/campus-market-api/internal/transport/http/cookie"
	"github.com/campus-market-api/internal/transport/http/middleware"
)

// AuthHandler handles registration, verification, and session endpoints.
type AuthHandler struct {
	authSvc auth.Service
	otpSvc  otp.Service
	userSvc user.Service
	cookies cookie.Policy
}

func NewAuthHandler(authSvc auth.Service, otpSvc otp.Service, userSvc user.Service, cookies cookie.Policy) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, otpSvc: otpSvc, userSvc: userSvc, cookies: cookies}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	u, err := h.authSvc.Register(r.Context(), req)
	if err != nil {
		respondFlat400(w, err, domain.ErrConflict)
		return
	}
	writeJSON(w, http.StatusCreated, AuthEnvelope{
		User:    u,
		Message: "registered, check your inbox for a verification code",
	})
}

func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.SendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.otpSvc.Issue(r.Context(), auth.NormalizeEmail(req.Email)); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "verification code sent"})
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.otpSvc.Verify(r.Context(), auth.NormalizeEmail(req.Email), req.OTP); err != nil {
		respondFlat400(w, err, domain.ErrNotFound, domain.ErrExpired, domain.ErrUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "email verified"})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	u, pair, err := h.authSvc.Login(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	h.cookies.Set(w, pair.AccessToken, pair.RefreshToken)
	writeJSON(w, http.StatusOK, AuthEnvelope{User: u, Message: "logged in"})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.authSvc.Logout(r.Context(), userID); err != nil {
		respondError(w, err)
		return
	}
	h.cookies.Clear(w)
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "logged out"})
}

// Refresh rotates the session: the presented refresh token must match the one
// stored for the user, and both cookies are reissued. The token is read from
// the session cookie, with a JSON body fallback for non-browser clients.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	presented := cookie.RefreshTokenFromRequest(r)
	if presented == "" {
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}
		presented = req.RefreshToken
	}
	if presented == "" {
		writeError(w, http.StatusUnauthorized, "missing refresh token")
		return
	}
	pair, err := h.authSvc.Refresh(r.Context(), presented)
	if err != nil {
		h.cookies.Clear(w)
		respondError(w, err)
		return
	}
	h.cookies.Set(w, pair.AccessToken, pair.RefreshToken)
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "session refreshed"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	u, err := h.userSvc.Get(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{User: u.Sanitize()})
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	u, err := h.userSvc.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{User: u.Sanitize()})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.authSvc.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondFlat400(w, err, domain.ErrUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "password changed"})
}
