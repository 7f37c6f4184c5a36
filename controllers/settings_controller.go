package controllers

import (
	"net/http"
	"strings"

	"gitea.com/go-chi/session"
	"github.com/blogem/audio-library/middleware"
	"github.com/blogem/audio-library/models"
	"github.com/blogem/audio-library/services"
	"github.com/blogem/audio-library/userctx"
	"go.uber.org/zap"
)

const accountNotFound = "Account not found"

// SettingsController handles account settings requests
type SettingsController struct {
	services *services.Services
	logger   *zap.Logger
}

// NewSettingsController creates a new settings controller
func NewSettingsController(services *services.Services, logger *zap.Logger) *SettingsController {
	return &SettingsController{
		services: services,
		logger:   logger,
	}
}

// ChangeUsername handles PUT /user/username
func (c *SettingsController) ChangeUsername(w http.ResponseWriter, r *http.Request) {
	accountID, _ := userctx.GetAccountID(r.Context())

	var form models.ChangeUsernameForm
	if !decodeJSON(w, r, &form) {
		return
	}
	if messages := form.Validate(); len(messages) > 0 {
		writeError(w, http.StatusBadRequest, messages[0])
		return
	}

	newUsername := strings.TrimSpace(form.NewUsername)
	if err := c.services.Settings.ChangeUsername(r.Context(), accountID, newUsername, form.Password); err != nil {
		respondError(w, c.logger, err, accountNotFound)
		return
	}

	session.GetSession(r).Set(middleware.SessionUsername, newUsername)
	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "Username updated successfully",
		"username": newUsername,
	})
}

// ChangePassword handles PUT /user/password
func (c *SettingsController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	accountID, _ := userctx.GetAccountID(r.Context())

	var form models.ChangePasswordForm
	if !decodeJSON(w, r, &form) {
		return
	}
	if messages := form.Validate(); len(messages) > 0 {
		writeError(w, http.StatusBadRequest, messages[0])
		return
	}

	if err := c.services.Settings.ChangePassword(r.Context(), accountID, form.CurrentPassword, form.NewPassword); err != nil {
		respondError(w, c.logger, err, accountNotFound)
		return
	}
	writeMessage(w, http.StatusOK, "Password updated successfully")
}

// GetProfile handles GET /user/profile
func (c *SettingsController) GetProfile(w http.ResponseWriter, r *http.Request) {
	accountID, _ := userctx.GetAccountID(r.Context())

	profile, err := c.services.Settings.GetProfile(r.Context(), accountID)
	if err != nil {
		respondError(w, c.logger, err, accountNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"profile": profile})
}

// UpdateProfile handles PUT /user/profile
func (c *SettingsController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	accountID, _ := userctx.GetAccountID(r.Context())

	var form models.ProfileForm
	if !decodeJSON(w, r, &form) {
		return
	}

	profile, err := c.services.Settings.UpdateProfile(r.Context(), accountID, &form)
	if err != nil {
		respondError(w, c.logger, err, accountNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Profile updated successfully",
		"profile": profile,
	})
}

// DeleteAccount handles DELETE /user/account and ends the session
func (c *SettingsController) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	accountID, _ := userctx.GetAccountID(r.Context())

	var form models.DeleteAccountForm
	if !decodeJSON(w, r, &form) {
		return
	}
	if messages := form.Validate(); len(messages) > 0 {
		writeError(w, http.StatusBadRequest, messages[0])
		return
	}

	if err := c.services.Settings.DeleteAccount(r.Context(), accountID, form.Password); err != nil {
		respondError(w, c.logger, err, accountNotFound)
		return
	}

	if err := session.GetSession(r).Flush(); err != nil {
		c.logger.Warn("failed to clear session", zap.Error(err))
	}
	writeMessage(w, http.StatusOK, "Account deleted successfully")
}

// Activity handles GET /user/activity
func (c *SettingsController) Activity(w http.ResponseWriter, r *http.Request) {
	accountID, _ := userctx.GetAccountID(r.Context())

	entries, err := c.services.Audit.Recent(r.Context(), accountID)
	if err != nil {
		respondError(w, c.logger, err, accountNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}
