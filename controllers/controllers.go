package controllers

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/blogem/audio-library/authenticator"
	"github.com/blogem/audio-library/services"
	"github.com/blogem/audio-library/web"
	"go.uber.org/zap"
)

// maxJSONBodyBytes caps JSON request bodies
const maxJSONBodyBytes = 1 << 20

// renderTemplate creates a template set and renders it with the provided data
func renderTemplate(w http.ResponseWriter, templateName string, pageTemplate string, data interface{}) error {
	return renderTemplateWithStatus(w, http.StatusOK, templateName, pageTemplate, data)
}

// renderTemplateWithStatus creates a template set and renders it with the provided data and status code
func renderTemplateWithStatus(w http.ResponseWriter, statusCode int, templateName string, pageTemplate string, data interface{}) error {
	tmpl := template.New(templateName)
	tmpl.Funcs(template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	})

	_, err := tmpl.ParseFS(web.FS, "templates/layout.html", pageTemplate)
	if err != nil {
		http.Error(w, "Failed to parse template", http.StatusInternalServerError)
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}

	return tmpl.ExecuteTemplate(w, "layout.html", data)
}

// writeJSON writes v as a JSON response body
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// decodeJSON reads a JSON body into dst, writing a 400 on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// respondError maps a service error onto a status code and user-facing message.
// Unexpected errors are logged and reported as a generic 500.
func respondError(w http.ResponseWriter, logger *zap.Logger, err error, notFound string) {
	var validationErr *services.ValidationError
	var existsErr *services.AlreadyExistsError

	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &existsErr):
		writeError(w, http.StatusBadRequest, existsErr.Error())
	case errors.Is(err, services.ErrInvalidPassword):
		writeError(w, http.StatusUnauthorized, "Invalid password")
	case errors.Is(err, services.ErrCurrentPasswordIncorrect):
		writeError(w, http.StatusUnauthorized, "Current password is incorrect")
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
	case errors.Is(err, services.ErrUsernameTaken):
		writeError(w, http.StatusConflict, "Username is already taken")
	case errors.Is(err, services.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	default:
		logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// Options carries the settings controllers need from the configuration
type Options struct {
	MaxRequestBytes int64
	MaxFileSize     int64
	// OIDC is nil when external sign-in is not configured
	OIDC authenticator.Provider
}

// Controllers holds all controller instances
type Controllers struct {
	Auth     *AuthController
	Audio    *AudioController
	Category *CategoryController
	Settings *SettingsController
	Pages    *PageController
}

// NewControllers creates and initializes all controller instances
func NewControllers(services *services.Services, opts Options, logger *zap.Logger) *Controllers {
	return &Controllers{
		Auth:     NewAuthController(services, opts.OIDC, logger.Named("auth")),
		Audio:    NewAudioController(services, opts.MaxRequestBytes, logger.Named("audio")),
		Category: NewCategoryController(services, logger.Named("categories")),
		Settings: NewSettingsController(services, logger.Named("settings")),
		Pages:    NewPageController(services, opts, logger.Named("pages")),
	}
}
