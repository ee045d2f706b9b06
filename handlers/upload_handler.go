package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/adilhn/supportflow/services/extract_service"
)

const maxUploadSize = 10 << 20 // 10 MiB

// UploadHandler accepts a support attachment and returns its extracted text,
// so the frontend can fold document content into a query.
type UploadHandler struct {
	Extractor *extract_service.DocumentExtractor
	Logger    *slog.Logger
}

func NewUploadHandler(extractor *extract_service.DocumentExtractor, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{Extractor: extractor, Logger: logger}
}

func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid multipart form or file too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.Logger.Error("Failed to read uploaded file", slog.String("error", err.Error()))
		writeJSONError(w, http.StatusInternalServerError, "Failed to read uploaded file")
		return
	}

	var text string
	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".pdf":
		text, err = h.Extractor.ExtractTextFromPDF(data)
	case ".docx", ".doc":
		text, err = h.Extractor.ExtractTextFromWord(data)
	case ".html", ".htm":
		text, err = h.Extractor.ExtractTextFromHTML(data)
	case ".txt":
		text = string(data)
	default:
		writeJSONError(w, http.StatusUnsupportedMediaType,
			"Unsupported file type, expected .pdf, .docx, .html or .txt")
		return
	}
	if err != nil {
		h.Logger.Error("Text extraction failed",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()))
		writeJSONError(w, http.StatusUnprocessableEntity, "Could not extract text from the file")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"filename": header.Filename,
		"size":     header.Size,
		"type":     ext,
		"text":     text,
	})
}
