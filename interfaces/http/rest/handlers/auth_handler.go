package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"tripchat/application/services"
	"tripchat/pkg/auth"
	"tripchat/pkg/common"
	apperrors "tripchat/pkg/errors"
	"tripchat/pkg/utils"
)

const maxAuthBodyBytes = 1 << 16 // 64KB

// refreshCookieName is the HTTP-only cookie carrying the refresh token
const refreshCookieName = "jwt"

// AuthHandler handles registration, login, and token refresh
type AuthHandler struct {
	accounts *services.AccountService
	tokens   *auth.TokenIssuer
	logger   *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(accounts *services.AccountService, tokens *auth.TokenIssuer, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		tokens:   tokens,
		logger:   logger,
	}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Register handles POST /users
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := common.ParseJSONBody(r, &req, maxAuthBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.accounts.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, common.Envelope{"userId": user.ID})
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := common.ParseJSONBody(r, &req, maxAuthBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    result.RefreshToken,
		Path:     "/",
		MaxAge:   int(h.tokens.RefreshTTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	common.RespondJSON(w, http.StatusOK, common.Envelope{"result": result})
}

// Refresh handles POST /refresh, exchanging the refresh cookie for a fresh
// access token
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		common.RespondAppError(w, apperrors.NewUnauthorizedError("missing refresh token"))
		return
	}

	accessToken, err := h.accounts.Refresh(cookie.Value)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, common.Envelope{"token": accessToken})
}
