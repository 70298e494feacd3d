package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"demo-auth/internal/service"
)

// WWW-Authenticate challenge values in accordance with RFC 6750 Section 3.1.
// The error code is included only when a credential was actually presented
// and rejected; a missing credential gets the bare scheme.
const (
	challengeBearer             = `Bearer`
	challengeInvalidCredentials = `Bearer error="invalid_token", error_description="Invalid credentials"`
	challengeInvalidToken       = `Bearer error="invalid_token", error_description="The token is invalid or expired"`
)

// Handler wires HTTP routes to the credential service.
type Handler struct {
	creds service.CredentialService
}

func NewHandler(creds service.CredentialService) *Handler {
	return &Handler{creds: creds}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	auth := router.Group("/auth")
	{
		auth.POST("/token", h.issueToken)
		auth.GET("/validate", h.validateToken)
		auth.GET("/whoami", h.whoami)
		auth.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// tokenRequest carries the OAuth2 password-grant form fields.
type tokenRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// TokenResponse is the access-token payload per RFC 6749 Section 4.1.4.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// IdentityResponse is the body of a successful validate call.
type IdentityResponse struct {
	UserID string `json:"user_id"`
	Scopes string `json:"scopes"`
}

// WhoAmIResponse extends IdentityResponse with the current username.
type WhoAmIResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Scopes   string `json:"scopes"`
}

func (h *Handler) issueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	tok, err := h.creds.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.Header("WWW-Authenticate", challengeInvalidCredentials)
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid username or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}

	c.JSON(http.StatusOK, TokenResponse{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
	})
}

func (h *Handler) validateToken(c *gin.Context) {
	identity, ok := h.authenticate(c)
	if !ok {
		return
	}

	// Validated identity is mirrored into response headers so the endpoint
	// can serve as a ForwardAuth middleware.
	c.Header("X-User-ID", identity.UserID.String())
	c.Header("X-Scopes", identity.Scopes)
	c.JSON(http.StatusOK, IdentityResponse{
		UserID: identity.UserID.String(),
		Scopes: identity.Scopes,
	})
}

func (h *Handler) whoami(c *gin.Context) {
	identity, ok := h.authenticate(c)
	if !ok {
		return
	}

	user, err := h.creds.WhoAmI(c.Request.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}

	c.JSON(http.StatusOK, WhoAmIResponse{
		UserID:   user.UserID.String(),
		Username: user.Username,
		Scopes:   user.Scopes,
	})
}

// authenticate extracts the bearer token from the Authorization header and
// validates it, writing the 401 response itself when validation fails.
func (h *Handler) authenticate(c *gin.Context) (*service.Identity, bool) {
	identity, err := h.creds.Validate(c.Request.Context(), bearerToken(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthenticated):
			c.Header("WWW-Authenticate", challengeBearer)
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "User is not authenticated"})
		case errors.Is(err, service.ErrSessionExpired):
			c.Header("WWW-Authenticate", challengeInvalidToken)
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "User session has expired"})
		default:
			c.Header("WWW-Authenticate", challengeInvalidToken)
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Invalid login token"})
		}
		return nil, false
	}
	return identity, true
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
