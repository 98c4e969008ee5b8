package ingestion

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/your-org/videogate/pkg/storage/objectstore"
)

// HTTPHandler exposes the upload endpoint and the public asset path.
type HTTPHandler struct {
	service      *Service
	store        objectstore.Client
	logger       *zap.Logger
	maxSizeBytes int64
	formMemBytes int64
	router       chi.Router
}

// NewHTTPHandler constructs the HTTP handler and wires routes.
func NewHTTPHandler(service *Service, store objectstore.Client, logger *zap.Logger, maxSizeBytes, formMemBytes int64) *HTTPHandler {
	h := &HTTPHandler{
		service:      service,
		store:        store,
		logger:       logger,
		maxSizeBytes: maxSizeBytes,
		formMemBytes: formMemBytes,
	}
	h.buildRouter()
	return h
}

func (h *HTTPHandler) buildRouter() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))

	r.Get("/healthz", h.handleHealth)
	r.Post("/upload-video", h.handleUpload)
	r.Get("/*", h.handleAsset)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "Not found", http.StatusNotFound)
	})

	h.router = r
}

// Router exposes the configured chi router.
func (h *HTTPHandler) Router() http.Handler {
	return h.router
}

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

type uploadResponse struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	VideoTitle       string `json:"videoTitle"`
	ScheduleDateTime string `json:"scheduleDateTime"`
	VideoType        string `json:"videoType"`
	R2URL            string `json:"r2Url"`
}

// handleUpload validates the request completely before any external call, so
// a rejected upload has zero side effects.
func (h *HTTPHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
		http.Error(w, "Expected multipart/form-data", http.StatusBadRequest)
		return
	}

	if r.ContentLength > 0 && r.ContentLength > h.maxSizeBytes {
		http.Error(w, "Payload too large", http.StatusRequestEntityTooLarge)
		return
	}

	if err := r.ParseMultipartForm(h.formMemBytes); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		http.Error(w, "Missing required fields", http.StatusBadRequest)
		return
	}
	defer file.Close()

	title := r.FormValue("title")
	scheduleDateTime := r.FormValue("scheduleDateTime")
	videoType := r.FormValue("videoType")
	if title == "" || scheduleDateTime == "" || videoType == "" {
		http.Error(w, "Missing required fields", http.StatusBadRequest)
		return
	}

	result, err := h.service.Ingest(r.Context(), Upload{
		File:             file,
		Size:             header.Size,
		ContentType:      header.Header.Get("Content-Type"),
		Filename:         header.Filename,
		Title:            title,
		ScheduleDateTime: scheduleDateTime,
		VideoType:        videoType,
	})
	if err != nil {
		h.logger.Error("upload pipeline failed",
			zap.String("title", title),
			zap.Error(err))
		writeUploadError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Success:          true,
		Message:          fmt.Sprintf("Uploaded %s and updated Airtable", result.Title),
		VideoTitle:       result.Title,
		ScheduleDateTime: result.ScheduleDateTime,
		VideoType:        result.VideoType,
		R2URL:            result.R2URL,
	})
}

// writeUploadError maps pipeline failures onto the wire contract: metadata
// sync failures are 500, transcription failures 502, anything else a plain
// 500. The raw upstream error text is quoted for operability.
func writeUploadError(w http.ResponseWriter, err error) {
	var syncErr *SyncError
	if errors.As(err, &syncErr) {
		http.Error(w, "Airtable Worker failed: "+syncErr.Message, http.StatusInternalServerError)
		return
	}

	var dispatchErr *DispatchError
	if errors.As(err, &dispatchErr) {
		http.Error(w, "Rev.ai Worker failed: "+dispatchErr.Body, http.StatusBadGateway)
		return
	}

	http.Error(w, "Error: "+err.Error(), http.StatusInternalServerError)
}

// handleAsset serves stored objects by key, the GET side of the gateway.
func (h *HTTPHandler) handleAsset(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/")
	if key == "" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	body, info, err := h.store.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, objectstore.ErrNotFound) {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		h.logger.Error("asset fetch failed", zap.String("key", key), zap.Error(err))
		http.Error(w, "Error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	defer body.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")

	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("asset stream interrupted", zap.String("key", key), zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
