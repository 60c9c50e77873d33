package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/buddy-dubby/reselling-app/internal/imaging"
)

// handleRemoveBackground accepts one image in the multipart field "image",
// runs it through the removal service, and saves both renditions under the
// upload directory.
func (s *Server) handleRemoveBackground(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "upload too large or malformed")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no image provided")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "no image selected")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading image failed")
		return
	}

	variants, err := s.remover.ProcessPhoto(r.Context(), data)
	if err != nil {
		if errors.Is(err, imaging.ErrNotConfigured) {
			writeError(w, http.StatusServiceUnavailable, "background removal is not configured")
			return
		}
		s.logger.Error().Err(err).Msg("background removal failed")
		writeError(w, http.StatusBadGateway, "background removal failed")
		return
	}

	base := sanitizeFilename(header.Filename)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = "image"
	}

	transparentName := fmt.Sprintf("%s_transparent_%s.png", stem, uploadToken())
	whiteName := fmt.Sprintf("%s_white_%s.jpg", stem, uploadToken())

	if err := s.writeUpload(transparentName, variants.TransparentPNG); err != nil {
		s.logger.Error().Err(err).Msg("saving processed image failed")
		writeError(w, http.StatusInternalServerError, "saving processed image failed")
		return
	}
	if err := s.writeUpload(whiteName, variants.WhiteJPEG); err != nil {
		s.logger.Error().Err(err).Msg("saving processed image failed")
		writeError(w, http.StatusInternalServerError, "saving processed image failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"transparent": map[string]string{
			"filename": transparentName,
			"url":      "/uploads/" + transparentName,
		},
		"white_bg": map[string]string{
			"filename": whiteName,
			"url":      "/uploads/" + whiteName,
		},
	})
}

// handleUploadedFile serves saved photos and processed renditions.
func (s *Server) handleUploadedFile(w http.ResponseWriter, r *http.Request) {
	name := sanitizeFilename(r.PathValue("file"))
	http.ServeFile(w, r, filepath.Join(s.uploadDir, name))
}

func (s *Server) writeUpload(name string, data []byte) error {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.uploadDir, name), data, 0o644)
}
