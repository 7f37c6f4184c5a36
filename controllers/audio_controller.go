package controllers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/blogem/audio-library/models"
	"github.com/blogem/audio-library/services"
	"github.com/blogem/audio-library/userctx"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	audioNotFound = "Audio file not found"

	// multipartMemory is how much of a multipart body is held in memory before spilling to temp files
	multipartMemory = 32 << 20
)

// AudioController handles uploads, playback and library management
type AudioController struct {
	services        *services.Services
	maxRequestBytes int64
	logger          *zap.Logger
}

// NewAudioController creates a new audio controller
func NewAudioController(services *services.Services, maxRequestBytes int64, logger *zap.Logger) *AudioController {
	return &AudioController{
		services:        services,
		maxRequestBytes: maxRequestBytes,
		logger:          logger,
	}
}

func audioID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// formValue returns the first value of key in the multipart form
func formValue(form *multipart.Form, key string) (string, bool) {
	values := form.Value[key]
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// parseCategoryID reads categoryIds[i], falling back to categoryId
func parseCategoryID(form *multipart.Form, index int) (int64, bool) {
	raw, ok := formValue(form, fmt.Sprintf("categoryIds[%d]", index))
	if !ok {
		raw, ok = formValue(form, "categoryId")
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	return id, err == nil
}

// Upload handles POST /audio/upload
func (c *AudioController) Upload(w http.ResponseWriter, r *http.Request) {
	accountID, _ := userctx.GetAccountID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, c.maxRequestBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Upload is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		headers = r.MultipartForm.File["file"]
	}
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "No files uploaded")
		return
	}

	inputs := make([]services.UploadInput, 0, len(headers))
	for i, header := range headers {
		categoryID, ok := parseCategoryID(r.MultipartForm, i)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Category is required for file: %s", header.Filename))
			return
		}

		input := services.UploadInput{
			FileName:   header.Filename,
			MimeType:   header.Header.Get("Content-Type"),
			SizeBytes:  header.Size,
			CategoryID: categoryID,
		}
		if description, ok := formValue(r.MultipartForm, fmt.Sprintf("descriptions[%d]", i)); ok && description != "" {
			input.Description = &description
		} else if description, ok := formValue(r.MultipartForm, "description"); ok && description != "" && len(headers) == 1 {
			input.Description = &description
		}

		file, err := header.Open()
		if err != nil {
			c.logger.Error("failed to open uploaded part", zap.String("file_name", header.Filename), zap.Error(err))
			writeError(w, http.StatusBadRequest, "Failed to read uploaded file")
			return
		}
		defer file.Close()

		input.File = file
		inputs = append(inputs, input)
	}

	files, err := c.services.Audio.Upload(r.Context(), accountID, inputs)
	if err != nil {
		respondError(w, c.logger, err, audioNotFound)
		return
	}

	c.logger.Info("upload accepted",
		zap.Int64("account_id", accountID),
		zap.String("username", userctx.GetUsername(r.Context())),
		zap.Int("files", len(files)),
	)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":    fmt.Sprintf("%d file(s) uploaded successfully", len(files)),
		"audioFiles": files,
	})
}

// List handles GET /audio with an optional categoryId filter
func (c *AudioController) List(w http.ResponseWriter, r *http.Request) {
	accountID, _ := userctx.GetAccountID(r.Context())

	var categoryID *int64
	if raw := r.URL.Query().Get("categoryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid category ID")
			return
		}
		categoryID = &id
	}

	files, err := c.services.Audio.ListForAccount(r.Context(), accountID, categoryID)
	if err != nil {
		respondError(w, c.logger, err, audioNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"audioFiles": files})
}

// Get handles GET /audio/{id}. download=true sends the file as an attachment.
func (c *AudioController) Get(w http.ResponseWriter, r *http.Request) {
	accountID, _ := userctx.GetAccountID(r.Context())
	id, ok := audioID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid audio file ID")
		return
	}

	stream, err := c.services.Audio.Retrieve(r.Context(), id, accountID)
	if err != nil {
		respondError(w, c.logger, err, audioNotFound)
		return
	}
	defer stream.Body.Close()

	download, _ := strconv.ParseBool(r.URL.Query().Get("download"))

	w.Header().Set("Content-Type", services.PlaybackMimeType(stream.FileName))
	if download {
		w.Header().Set("Content-Disposition",
			mime.FormatMediaType("attachment", map[string]string{"filename": stream.FileName}))
	} else {
		w.Header().Set("Content-Disposition",
			mime.FormatMediaType("inline", map[string]string{"filename": stream.FileName}))
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	}

	if seeker, ok := stream.Body.(io.ReadSeeker); ok {
		http.ServeContent(w, r, stream.FileName, stream.ModTime, seeker)
		return
	}

	w.Header().Set("Content-Length", strconv.FormatInt(stream.Size, 10))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, stream.Body); err != nil {
		c.logger.Warn("audio stream interrupted", zap.Int64("audio_file_id", id), zap.Error(err))
	}
}

// Update handles PUT /audio/{id}
func (c *AudioController) Update(w http.ResponseWriter, r *http.Request) {
	accountID, _ := userctx.GetAccountID(r.Context())
	id, ok := audioID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid audio file ID")
		return
	}

	var update models.AudioFileUpdate
	if !decodeJSON(w, r, &update) {
		return
	}

	file, err := c.services.Audio.Update(r.Context(), id, accountID, &update)
	if err != nil {
		respondError(w, c.logger, err, audioNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Audio file updated successfully",
		"audioFile": file,
	})
}

// Delete handles DELETE /audio/{id}
func (c *AudioController) Delete(w http.ResponseWriter, r *http.Request) {
	accountID, _ := userctx.GetAccountID(r.Context())
	id, ok := audioID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid audio file ID")
		return
	}

	if _, err := c.services.Audio.Delete(r.Context(), id, accountID); err != nil {
		respondError(w, c.logger, err, audioNotFound)
		return
	}
	writeMessage(w, http.StatusOK, "Audio file deleted successfully")
}
