package controllers

import (
	"net/http"
	"strconv"

	"github.com/blogem/audio-library/middleware"
	"github.com/blogem/audio-library/models"
	"github.com/blogem/audio-library/services"
	"github.com/blogem/audio-library/userctx"
	"go.uber.org/zap"
)

// PageController renders the HTML pages
type PageController struct {
	services    *services.Services
	maxFileSize int64
	oidcEnabled bool
	logger      *zap.Logger
}

// NewPageController creates a new page controller
func NewPageController(services *services.Services, opts Options, logger *zap.Logger) *PageController {
	return &PageController{
		services:    services,
		maxFileSize: opts.MaxFileSize,
		oidcEnabled: opts.OIDC != nil,
		logger:      logger,
	}
}

// LibraryData is the data for the library page
type LibraryData struct {
	Categories       []models.Category
	Files            []models.AudioFile
	SelectedCategory int64
	MaxFileSize      int64
}

// SettingsData is the data for the settings page
type SettingsData struct {
	Profile  *models.ProfileView
	Activity []models.AuditLogEntry
}

func (c *PageController) pageData(title, page string) models.PageData {
	return models.PageData{
		Title:       title,
		CurrentPage: page,
		OIDCEnabled: c.oidcEnabled,
	}
}

// Index handles GET /. Signed-out visitors see the sign-in form, signed-in users their library.
func (c *PageController) Index(w http.ResponseWriter, r *http.Request) {
	data := c.pageData("Audio Library", "library")

	accountID, ok := middleware.SessionAccountIDFrom(r)
	if !ok {
		renderTemplate(w, "index", "templates/index.html", data)
		return
	}

	user, err := c.services.User.GetUser(r.Context(), accountID)
	if err != nil {
		// Stale session for a deleted account
		renderTemplate(w, "index", "templates/index.html", data)
		return
	}
	data.User = user

	library := LibraryData{MaxFileSize: c.maxFileSize}
	var categoryID *int64
	if id, err := strconv.ParseInt(r.URL.Query().Get("categoryId"), 10, 64); err == nil && id > 0 {
		categoryID = &id
		library.SelectedCategory = id
	}

	library.Categories, err = c.services.Audio.Categories(r.Context())
	if err != nil {
		c.logger.Error("failed to load categories", zap.Error(err))
		http.Error(w, "Failed to load library", http.StatusInternalServerError)
		return
	}
	library.Files, err = c.services.Audio.ListForAccount(r.Context(), accountID, categoryID)
	if err != nil {
		c.logger.Error("failed to load library", zap.Int64("account_id", accountID), zap.Error(err))
		http.Error(w, "Failed to load library", http.StatusInternalServerError)
		return
	}
	data.Data = library

	renderTemplate(w, "index", "templates/index.html", data)
}

// Register handles GET /register
func (c *PageController) Register(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.SessionAccountIDFrom(r); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	renderTemplate(w, "register", "templates/register.html", c.pageData("Create account", "register"))
}

// Settings handles GET /settings
func (c *PageController) Settings(w http.ResponseWriter, r *http.Request) {
	accountID, _ := userctx.GetAccountID(r.Context())

	user, err := c.services.User.GetUser(r.Context(), accountID)
	if err != nil {
		http.Redirect(w, r, "/logout", http.StatusSeeOther)
		return
	}

	profile, err := c.services.Settings.GetProfile(r.Context(), accountID)
	if err != nil {
		c.logger.Error("failed to load profile", zap.Int64("account_id", accountID), zap.Error(err))
		http.Error(w, "Failed to load settings", http.StatusInternalServerError)
		return
	}
	activity, err := c.services.Audit.Recent(r.Context(), accountID)
	if err != nil {
		http.Error(w, "Failed to load settings", http.StatusInternalServerError)
		return
	}

	data := c.pageData("Settings", "settings")
	data.User = user
	data.Data = SettingsData{Profile: profile, Activity: activity}

	renderTemplate(w, "settings", "templates/settings.html", data)
}
