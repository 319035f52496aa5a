package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/evelynko/skinsight/internal/domain/auth"
	"github.com/evelynko/skinsight/internal/domain/scan"
	apperrors "github.com/evelynko/skinsight/pkg/errors"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	authSvc  auth.Service
	scanSvc  *scan.Service
	sessions *sessionRegistry
	logger   *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(authSvc auth.Service, scanSvc *scan.Service, decoder scan.FrameDecoder, logger *slog.Logger) *Handler {
	return &Handler{
		authSvc:  authSvc,
		scanSvc:  scanSvc,
		sessions: newSessionRegistry(decoder),
		logger:   logger.With("component", "http.handler"),
	}
}

// Register creates a password account.
func (h *Handler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	view, err := h.authSvc.Register(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		code := "register_failed"
		switch {
		case apperrors.IsCode(err, "invalid_input"):
			status = http.StatusBadRequest
			code = "invalid_request"
		case apperrors.IsCode(err, "email_exists"):
			status = http.StatusConflict
			code = "email_exists"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusCreated, view)
}

// Login exchanges credentials for a token pair.
func (h *Handler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		code := "login_failed"
		switch {
		case apperrors.IsCode(err, "invalid_input"):
			status = http.StatusBadRequest
			code = "invalid_request"
		case apperrors.IsCode(err, "invalid_credentials"):
			status = http.StatusUnauthorized
			code = "invalid_credentials"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Refresh rotates the token pair.
func (h *Handler) Refresh(c *gin.Context) {
	var req auth.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		status := http.StatusInternalServerError
		code := "refresh_failed"
		switch {
		case apperrors.IsCode(err, "invalid_input"):
			status = http.StatusBadRequest
			code = "invalid_request"
		case apperrors.IsCode(err, "invalid_token"):
			status = http.StatusUnauthorized
			code = "invalid_token"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GoogleAuthURL starts the PKCE flow and hands the consent URL to the client.
func (h *Handler) GoogleAuthURL(c *gin.Context) {
	state, codeVerifier, codeChallenge, err := auth.NewOAuthState()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "oauth_failed", "failed to start oauth flow", err))
		return
	}

	url, err := h.authSvc.GoogleAuthURL(c.Request.Context(), state, codeChallenge)
	if err != nil {
		status := http.StatusInternalServerError
		code := "oauth_failed"
		if apperrors.IsCode(err, "auth_not_configured") {
			status = http.StatusServiceUnavailable
			code = "auth_not_configured"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	setOAuthStateCookie(c, state, codeVerifier)
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// GoogleCallback completes the PKCE flow.
func (h *Handler) GoogleCallback(c *gin.Context) {
	cookie, ok := readOAuthStateCookie(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "missing oauth state", nil))
		return
	}
	clearOAuthStateCookie(c)

	if c.Query("state") != cookie.State {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "oauth state mismatch", nil))
		return
	}
	code := c.Query("code")
	if code == "" {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "missing authorization code", nil))
		return
	}

	resp, err := h.authSvc.GoogleCallback(c.Request.Context(), code, cookie.CodeVerifier)
	if err != nil {
		status := http.StatusInternalServerError
		errCode := "oauth_failed"
		switch {
		case apperrors.IsCode(err, "invalid_input"):
			status = http.StatusBadRequest
			errCode = "invalid_request"
		case apperrors.IsCode(err, "auth_not_configured"):
			status = http.StatusServiceUnavailable
			errCode = "auth_not_configured"
		case apperrors.IsCode(err, "oauth_exchange_failed"):
			status = http.StatusBadGateway
			errCode = "oauth_exchange_failed"
		}
		abortWithError(c, NewHTTPError(status, errCode, errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Me returns the authenticated account.
func (h *Handler) Me(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}

	view, err := h.authSvc.Account(c.Request.Context(), claims.UserID)
	if err != nil {
		status := http.StatusInternalServerError
		code := "fetch_failed"
		if apperrors.IsCode(err, "user_not_found") {
			status = http.StatusNotFound
			code = "not_found"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, view)
}

// Logout revokes external refresh tokens for the account.
func (h *Handler) Logout(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), claims.UserID); err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "logout_failed", errMessage(err), err))
		return
	}

	c.Status(http.StatusNoContent)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
