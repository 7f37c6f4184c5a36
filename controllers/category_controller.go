package controllers

import (
	"net/http"

	"github.com/blogem/audio-library/services"
	"go.uber.org/zap"
)

// CategoryController serves the seeded categories
type CategoryController struct {
	services *services.Services
	logger   *zap.Logger
}

func NewCategoryController(services *services.Services, logger *zap.Logger) *CategoryController {
	return &CategoryController{services: services, logger: logger}
}

// List handles GET /categories
func (c *CategoryController) List(w http.ResponseWriter, r *http.Request) {
	categories, err := c.services.Audio.Categories(r.Context())
	if err != nil {
		respondError(w, c.logger, err, "Not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
}
