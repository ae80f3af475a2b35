package authhandler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"account-service/internal/domain"
	"account-service/internal/middleware"
	"account-service/internal/response"
	accservice "account-service/internal/service/acc"
	authservice "account-service/internal/service/auth"
	"account-service/internal/xerrors"
)

// AuthHandler exposes the OTP flow and the session-bound account routes.
type AuthHandler struct {
	auth     *authservice.AuthService
	accounts *accservice.AccountService
}

func NewAuthHandler(auth *authservice.AuthService, accounts *accservice.AccountService) *AuthHandler {
	return &AuthHandler{auth: auth, accounts: accounts}
}

type sendOTPRequest struct {
	Email string `json:"email"`
}

// HandleSendOTP asks the identity provider to email a passcode.
func (h *AuthHandler) HandleSendOTP(w http.ResponseWriter, r *http.Request) {
	var req sendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.auth.SendOTP(r.Context(), req.Email); err != nil {
		if xerrors.IsValidation(err) {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("[ERROR] send otp failed: %v", err)
		response.Error(w, http.StatusInternalServerError, "Could not send code")
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Code sent",
	})
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// HandleVerifyOTP exchanges the emailed code for a provider session.
func (h *AuthHandler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ident, sess, err := h.auth.VerifyOTP(r.Context(), req.Email, req.Token)
	if err != nil {
		switch {
		case xerrors.IsValidation(err):
			response.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, xerrors.ErrInvalidOTP):
			response.Error(w, http.StatusUnauthorized, "Invalid or expired code")
		default:
			log.Printf("[ERROR] verify otp failed: %v", err)
			response.Error(w, http.StatusInternalServerError, "Could not verify code")
		}
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    ident,
		"session": sess,
	})
}

type createAccountRequest struct {
	Name string `json:"name"`
}

// HandleCreateAccount upserts the account row for the authenticated
// identity. Calling it again updates rather than duplicates.
func (h *AuthHandler) HandleCreateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok || userID == "" {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	email, _ := middleware.GetEmail(r.Context())

	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	acc, err := h.accounts.CreateAccount(r.Context(), domain.Identity{UserID: userID, Email: email}, req.Name)
	if err != nil {
		if xerrors.IsValidation(err) {
			response.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("[ERROR] create account failed for uuid=%s: %v", userID, err)
		response.Error(w, http.StatusInternalServerError, "Could not create account")
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"account": acc,
	})
}

// HandleMe returns the identity behind the bearer token.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.GetToken(r.Context())
	if !ok || token == "" {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ident, err := h.auth.Resolve(r.Context(), token)
	if err != nil {
		if errors.Is(err, xerrors.ErrSessionNotFound) {
			response.Error(w, http.StatusUnauthorized, "Session not found")
			return
		}
		log.Printf("[ERROR] session lookup failed: %v", err)
		response.Error(w, http.StatusInternalServerError, "Could not resolve session")
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    ident,
	})
}

// HandleLogout revokes the bearer session.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.GetToken(r.Context())
	if !ok || token == "" {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.auth.Logout(r.Context(), token); err != nil {
		log.Printf("[ERROR] logout failed: %v", err)
		response.Error(w, http.StatusInternalServerError, "Could not log out")
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Logged out successfully",
	})
}
