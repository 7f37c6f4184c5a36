package controllers

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"gitea.com/go-chi/session"
	"github.com/blogem/audio-library/authenticator"
	"github.com/blogem/audio-library/middleware"
	"github.com/blogem/audio-library/models"
	"github.com/blogem/audio-library/services"
	"github.com/blogem/audio-library/userctx"
	"go.uber.org/zap"
)

const sessionOIDCState = "oidc_state"

// AuthController handles registration, sign-in and sign-out
type AuthController struct {
	services *services.Services
	provider authenticator.Provider
	logger   *zap.Logger
}

// NewAuthController creates a new auth controller. provider may be nil.
func NewAuthController(services *services.Services, provider authenticator.Provider, logger *zap.Logger) *AuthController {
	return &AuthController{
		services: services,
		provider: provider,
		logger:   logger,
	}
}

// signIn moves the request to a fresh session id and stores the account in it
func signIn(w http.ResponseWriter, r *http.Request, user *models.User) error {
	sess, err := session.RegenerateSession(w, r)
	if err != nil {
		return fmt.Errorf("failed to regenerate session: %w", err)
	}
	if err := sess.Set(middleware.SessionAccountID, user.ID); err != nil {
		return err
	}
	return sess.Set(middleware.SessionUsername, user.Username)
}

// Register handles POST /register
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var form models.RegisterForm
	if !decodeJSON(w, r, &form) {
		return
	}
	if messages := form.Validate(); len(messages) > 0 {
		writeError(w, http.StatusBadRequest, messages[0])
		return
	}

	user, err := c.services.User.Register(r.Context(), &form)
	if err != nil {
		respondError(w, c.logger, err, "Not found")
		return
	}

	if err := signIn(w, r, user); err != nil {
		c.logger.Error("failed to sign in registered user", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User registered successfully",
		"user":    user,
	})
}

// Login handles POST /login
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var form models.LoginForm
	if !decodeJSON(w, r, &form) {
		return
	}
	if messages := form.Validate(); len(messages) > 0 {
		writeError(w, http.StatusBadRequest, messages[0])
		return
	}

	user, err := c.services.User.Authenticate(r.Context(), form.Username, form.Password)
	if err != nil {
		respondError(w, c.logger, err, "Not found")
		return
	}

	if err := signIn(w, r, user); err != nil {
		c.logger.Error("failed to sign in", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.logger.Info("user signed in", zap.Int64("account_id", user.ID))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"user":    user,
	})
}

// Logout handles GET /logout
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	if err := session.GetSession(r).Flush(); err != nil {
		c.logger.Warn("failed to clear session", zap.Error(err))
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Me handles GET /user/me
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	accountID, _ := userctx.GetAccountID(r.Context())

	user, err := c.services.User.GetUser(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			// The account was deleted in another session
			session.GetSession(r).Flush()
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		respondError(w, c.logger, err, "Not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// OIDCLogin handles GET /login/oidc
func (c *AuthController) OIDCLogin(w http.ResponseWriter, r *http.Request) {
	if c.provider == nil {
		http.NotFound(w, r)
		return
	}

	state, err := generateRandomState()
	if err != nil {
		c.logger.Error("failed to generate state", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Save the state in the session to validate in callback
	session.GetSession(r).Set(sessionOIDCState, state)

	http.Redirect(w, r, c.provider.GetAuthURL(state), http.StatusTemporaryRedirect)
}

// Callback handles GET /callback. The email claim must belong to a registered account.
func (c *AuthController) Callback(w http.ResponseWriter, r *http.Request) {
	if c.provider == nil {
		http.NotFound(w, r)
		return
	}

	sess := session.GetSession(r)

	storedState, ok := sess.Get(sessionOIDCState).(string)
	if !ok || storedState == "" {
		http.Error(w, "State not found in session", http.StatusBadRequest)
		return
	}
	sess.Delete(sessionOIDCState)

	if r.URL.Query().Get("state") != storedState {
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	token, err := c.provider.ExchangeCode(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		c.logger.Warn("failed to exchange authorization code", zap.Error(err))
		http.Error(w, "Failed to exchange authorization code", http.StatusUnauthorized)
		return
	}

	claims, err := c.provider.GetClaims(r.Context(), token)
	if err != nil {
		c.logger.Warn("failed to verify ID token", zap.Error(err))
		http.Error(w, "Failed to verify ID token", http.StatusUnauthorized)
		return
	}

	email := claims.Email()
	if email == "" {
		http.Error(w, "The identity provider did not supply a verified email", http.StatusUnauthorized)
		return
	}

	user, err := c.services.User.GetUserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			http.Error(w, "No account is registered for this email", http.StatusUnauthorized)
			return
		}
		c.logger.Error("failed to look up account for OIDC sign-in", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := signIn(w, r, user); err != nil {
		c.logger.Error("failed to sign in via OIDC", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	c.logger.Info("user signed in via OIDC", zap.Int64("account_id", user.ID))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// generateRandomState generates a random state value for CSRF protection
func generateRandomState() (string, error) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
