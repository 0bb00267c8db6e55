package handlers

import (
	"context"
	"errors"
	"net/http"

	"workforce_backend/internal/middleware"
	"workforce_backend/internal/models"
	"workforce_backend/internal/services"
	"workforce_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service.
type AuthHandler struct {
	authService  services.AuthService
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler. secureCookie marks the token cookie Secure.
func NewAuthHandler(as services.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: as, secureCookie: secureCookie}
}

type loginFunc func(ctx context.Context, creds models.Credentials) (*services.AuthResponse, error)

// LoginEmployee handles employee login.
func (h *AuthHandler) LoginEmployee(c *gin.Context) {
	h.login(c, "LoginEmployee", h.authService.LoginEmployee)
}

// LoginAdmin handles admin login.
func (h *AuthHandler) LoginAdmin(c *gin.Context) {
	h.login(c, "LoginAdmin", h.authService.LoginAdmin)
}

func (h *AuthHandler) login(c *gin.Context, handlerName string, fn loginFunc) {
	var req models.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, handlerName+": Failed to bind JSON")
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	authResp, err := fn(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			utils.LogWarn(handlerName+": rejected credentials", map[string]interface{}{"email": req.Email})
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid email or password.", err.Error()))
			return
		}
		utils.LogError(err, handlerName+": Error from authService")
		utils.RespondInternalError(c, "Failed to login.")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, authResp.AccessToken, int(authResp.ExpiresIn), "/", "", h.secureCookie, true)
	utils.RespondWithSuccess(c, http.StatusOK, "Login successful", gin.H{
		"token":     authResp.AccessToken,
		"expiresIn": authResp.ExpiresIn,
		"user":      authResp.Account,
	})
}

// Logout clears the token cookie. Bearer tokens are discarded client-side.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", h.secureCookie, true)
	utils.RespondWithSuccess(c, http.StatusOK, "Logged out successfully", nil)
}

// Me returns the account behind the caller's token.
func (h *AuthHandler) Me(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		utils.LogError(errors.New("identity not found in context"), "Me: identity not in context")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Unauthorized", "Missing identity in context"))
		return
	}

	account, err := h.authService.Me(c.Request.Context(), identity)
	if err != nil {
		if errors.Is(err, services.ErrAccountNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Not authorized, user not found", err.Error()))
			return
		}
		utils.LogError(err, "Me: Error from authService.Me")
		utils.RespondInternalError(c, "Failed to retrieve account.")
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, "", gin.H{"user": account})
}
