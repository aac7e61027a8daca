package identity

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/example/yotei/pkg/yotei/models"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

// Handler handles login and session requests
type Handler struct {
	db       *gorm.DB
	baseURL  string
	provider *providerConfig
}

type providerConfig struct {
	config   oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// StateData stores OIDC state for validation across the redirect round-trip
type StateData struct {
	ReturnURL string `json:"return_url"`
	Nonce     string `json:"nonce"`
}

// NewHandler creates a new identity handler
func NewHandler(db *gorm.DB, baseURL string) *Handler {
	return &Handler{db: db, baseURL: baseURL}
}

// LoadProvider configures the external identity provider from the
// environment (OIDC_ISSUER, OIDC_CLIENT_ID, OIDC_CLIENT_SECRET). Login is
// unavailable until this succeeds; existing sessions keep working.
func (h *Handler) LoadProvider() error {
	issuer := os.Getenv("OIDC_ISSUER")
	clientID := os.Getenv("OIDC_CLIENT_ID")
	clientSecret := os.Getenv("OIDC_CLIENT_SECRET")
	if issuer == "" || clientID == "" {
		return ErrProviderNotConfigured
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return err
	}

	config := oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     provider.Endpoint(),
		RedirectURL:  h.baseURL + "/api/auth/callback",
		Scopes:       []string{oidc.ScopeOpenID, "profile"},
	}

	h.provider = &providerConfig{
		config:   config,
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}

	return nil
}

// ErrProviderNotConfigured is returned when the OIDC environment is not set
var ErrProviderNotConfigured = errors.New("identity provider not configured")

// UserResponse represents the authenticated user in API responses
type UserResponse struct {
	ExternalID  string `json:"external_id"`
	DisplayName string `json:"display_name"`
}

// Login redirects the browser to the identity provider
// @Summary Start a login
// @Description Redirect to the external identity provider's consent page
// @Tags auth
// @Param return_url query string false "URL to return to after login"
// @Success 302
// @Failure 503 {object} map[string]string "Provider not configured"
// @Router /auth/login [get]
func (h *Handler) Login(c *gin.Context) {
	if h.provider == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Identity provider not configured"})
		return
	}

	nonce := randomString(32)
	stateData := StateData{
		ReturnURL: c.Query("return_url"),
		Nonce:     nonce,
	}
	stateJSON, _ := json.Marshal(stateData)
	state := base64.URLEncoding.EncodeToString(stateJSON)

	c.Redirect(http.StatusFound, h.provider.config.AuthCodeURL(state, oidc.Nonce(nonce)))
}

// Callback handles the identity provider's redirect back to us. The verified
// ID token is reduced to a {externalId, displayName} profile, reconciled
// into the local users table, and exchanged for a session JWT. Provider
// tokens are discarded here and never stored.
// @Summary Finish a login
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Invalid state or code"
// @Router /auth/callback [get]
func (h *Handler) Callback(c *gin.Context) {
	if h.provider == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Identity provider not configured"})
		return
	}

	stateJSON, err := base64.URLEncoding.DecodeString(c.Query("state"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid state"})
		return
	}
	var stateData StateData
	if err := json.Unmarshal(stateJSON, &stateData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid state"})
		return
	}

	code := c.Query("code")
	if code == "" {
		errorDesc := c.Query("error_description")
		if errorDesc == "" {
			errorDesc = c.Query("error")
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Authentication failed: " + errorDesc})
		return
	}

	ctx := context.Background()
	oauth2Token, err := h.provider.config.Exchange(ctx, code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to exchange token"})
		return
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No ID token in response"})
		return
	}

	idToken, err := h.provider.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify ID token"})
		return
	}

	if idToken.Nonce != stateData.Nonce {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid nonce"})
		return
	}

	var claims struct {
		Name              string `json:"name"`
		PreferredUsername string `json:"preferred_username"`
	}
	if err := idToken.Claims(&claims); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse claims"})
		return
	}

	displayName := claims.PreferredUsername
	if displayName == "" {
		displayName = claims.Name
	}

	user, err := Reconcile(h.db, Profile{
		ExternalID:  idToken.Subject,
		DisplayName: strings.TrimSpace(displayName),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process user"})
		return
	}

	token, err := GenerateToken(user.ExternalID, user.DisplayName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	// Redirect with token or return JSON based on return URL. Absolute
	// return URLs are rejected to avoid an open redirect.
	if stateData.ReturnURL != "" && !strings.Contains(stateData.ReturnURL, "://") {
		c.Redirect(http.StatusFound, stateData.ReturnURL+"?token="+token)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": UserResponse{
			ExternalID:  user.ExternalID,
			DisplayName: user.DisplayName,
		},
	})
}

// Me returns the current authenticated user
// @Summary Get current user
// @Tags auth
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 404 {object} map[string]string "User not found"
// @Security BearerAuth
// @Router /auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	userID, _ := GetUserID(c)

	var user models.User
	if err := h.db.First(&user, "external_id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, UserResponse{
		ExternalID:  user.ExternalID,
		DisplayName: user.DisplayName,
	})
}

// RegisterRoutes registers the public login routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/login", h.Login)
	rg.GET("/callback", h.Callback)
}

// RegisterSessionRoutes registers routes that require an established session
func (h *Handler) RegisterSessionRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.Me)
}

// randomString returns a URL-safe random string with n bytes of entropy
func randomString(n int) string {
	b := make([]byte, n)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
