package handler

import (
	"encoding/json"
	"mime/multipart"
	"net/http"

	"github.com/campus-market-api/internal/application/upload"
	"github.com/campus-market-api/internal/transport/http/middleware"
)

// maxUploadBody bounds the whole multipart request, with headroom over the
// per-file limit for form framing.
const maxUploadBody = upload.MaxFiles*upload.MaxFileSize + 1<<20

// UploadHandler handles image upload endpoints.
type UploadHandler struct {
	svc upload.Service
}

func NewUploadHandler(svc upload.Service) *UploadHandler { return &UploadHandler{svc: svc} }

// Images accepts a multipart form with up to five files under the "images"
// field and responds with their public URLs.
func (h *UploadHandler) Images(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	headers := r.MultipartForm.File["images"]
	files := make([]upload.FileInput, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	defer func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}()
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable file in form")
			return
		}
		opened = append(opened, f)
		files = append(files, upload.FileInput{
			Reader:      f,
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
		})
	}

	urls, err := h.svc.UploadImages(r.Context(), userID, files)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, UploadEnvelope{URLs: urls})
}

// DeleteImage removes a previously uploaded image by object key.
func (h *UploadHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key == "" {
		writeError(w, http.StatusBadRequest, "body must carry the object key")
		return
	}
	if err := h.svc.Delete(r.Context(), userID, req.Key); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "image deleted"})
}
