package handlers

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/banjirlab/relief-assistant/internal/application/services"
	apperrors "github.com/banjirlab/relief-assistant/pkg/errors"
)

// maxUploadMemory caps how much of a multipart body is held in memory.
const maxUploadMemory = 32 << 20

// UploadHandler accepts guideline documents and feeds them into the
// ingestion pipeline so their content becomes retrievable.
type UploadHandler struct {
	ingestion *services.IngestionService
	uploadDir string
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(ingestion *services.IngestionService, uploadDir string) *UploadHandler {
	return &UploadHandler{
		ingestion: ingestion,
		uploadDir: uploadDir,
	}
}

// UploadDocument handles POST /api/upload. The document arrives either as a
// multipart `file` or as a `file_path` form field naming a file already on
// disk.
func (h *UploadHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}

	path, method, err := h.resolveDocument(r)
	if err != nil {
		respondWithAppError(w, err, "failed to accept document")
		return
	}

	count, err := h.ingestion.IngestFile(r.Context(), path)
	if err != nil {
		respondWithAppError(w, err, "failed to process document")
		return
	}

	log.Printf("Document ingested via %s: %s (%d chunks)", method, filepath.Base(path), count)

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":           "ok",
		"method":           method,
		"processed_chunks": count,
		"message":          fmt.Sprintf("processed %d chunks from %s", count, filepath.Base(path)),
	})
}

// resolveDocument yields a local path for the submitted document, saving the
// uploaded file under the upload directory when one was attached.
func (h *UploadHandler) resolveDocument(r *http.Request) (string, string, error) {
	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()

		name := filepath.Base(header.Filename)
		if name == "" || name == "." || name == string(filepath.Separator) {
			return "", "", apperrors.NewValidationError("uploaded file has no usable name")
		}

		dst, err := h.saveUpload(file, name)
		if err != nil {
			return "", "", err
		}
		return dst, "file_upload", nil
	}

	if path := strings.TrimSpace(r.FormValue("file_path")); path != "" {
		return path, "file_path", nil
	}

	return "", "", apperrors.NewValidationError("file or file_path is required")
}

func (h *UploadHandler) saveUpload(file io.Reader, name string) (string, error) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", apperrors.NewStorageError("failed to prepare upload directory", err)
	}

	dst := filepath.Join(h.uploadDir, name)
	out, err := os.Create(dst)
	if err != nil {
		return "", apperrors.NewStorageError("failed to store uploaded file", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(dst)
		return "", apperrors.NewStorageError("failed to store uploaded file", err)
	}
	return dst, nil
}
