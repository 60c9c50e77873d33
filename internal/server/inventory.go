package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/buddy-dubby/reselling-app/internal/storage"
)

func (s *Server) handleInventoryList(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListItems(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("listing inventory failed")
		writeError(w, http.StatusInternalServerError, "listing inventory failed")
		return
	}
	if items == nil {
		items = []storage.Item{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleInventoryCreate(w http.ResponseWriter, r *http.Request) {
	var item storage.Item
	if err := decodeJSON(r, &item); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(item.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	item.Status = storage.ParseItemStatus(string(item.Status))

	saved, err := s.store.AddItem(r.Context(), item)
	if err != nil {
		s.logger.Error().Err(err).Msg("adding item failed")
		writeError(w, http.StatusInternalServerError, "adding item failed")
		return
	}

	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleInventoryGet(w http.ResponseWriter, r *http.Request) {
	item, ok := s.fetchItem(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// handleInventoryUpdate decodes the body over the stored item, so fields the
// request omits keep their current values.
func (s *Server) handleInventoryUpdate(w http.ResponseWriter, r *http.Request) {
	item, ok := s.fetchItem(w, r)
	if !ok {
		return
	}

	if err := decodeJSON(r, &item); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	item.ID = r.PathValue("id")
	if strings.TrimSpace(item.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	item.Status = storage.ParseItemStatus(string(item.Status))

	updated, err := s.store.UpdateItem(r.Context(), item)
	if err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		s.logger.Error().Err(err).Str("item_id", item.ID).Msg("updating item failed")
		writeError(w, http.StatusInternalServerError, "updating item failed")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleInventoryDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.DeleteItem(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		s.logger.Error().Err(err).Str("item_id", id).Msg("deleting item failed")
		writeError(w, http.StatusInternalServerError, "deleting item failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type revalueResponse struct {
	ItemID         string              `json:"item_id"`
	DataSource     string              `json:"data_source"`
	Recommendation recommendationTiers `json:"recommendation"`
	PreviousFair   float64             `json:"previous_fair"`
	DriftPct       float64             `json:"drift_pct"`
	Alerted        bool                `json:"alerted"`
	CreatedAt      time.Time           `json:"created_at"`
}

func (s *Server) handleInventoryRevalue(w http.ResponseWriter, r *http.Request) {
	item, ok := s.fetchItem(w, r)
	if !ok {
		return
	}

	result, err := s.revaluer.RevalueItem(r.Context(), item)
	if err != nil {
		s.logger.Error().Err(err).Str("item_id", item.ID).Msg("revaluation failed")
		writeError(w, http.StatusInternalServerError, "revaluation failed")
		return
	}

	writeJSON(w, http.StatusOK, revalueResponse{
		ItemID:         item.ID,
		DataSource:     result.Valuation.DataSource,
		Recommendation: tiersOf(result.Recommendation.Tiers),
		PreviousFair:   result.PreviousFair.InexactFloat64(),
		DriftPct:       result.DriftPct.InexactFloat64(),
		Alerted:        result.Alerted,
		CreatedAt:      result.Valuation.CreatedAt,
	})
}

func (s *Server) handleInventoryValuations(w http.ResponseWriter, r *http.Request) {
	item, ok := s.fetchItem(w, r)
	if !ok {
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	valuations, err := s.store.ListValuations(r.Context(), item.ID, limit)
	if err != nil {
		s.logger.Error().Err(err).Str("item_id", item.ID).Msg("listing valuations failed")
		writeError(w, http.StatusInternalServerError, "listing valuations failed")
		return
	}
	if valuations == nil {
		valuations = []storage.Valuation{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"item_id":    item.ID,
		"valuations": valuations,
	})
}

func (s *Server) handleInventoryPhotos(w http.ResponseWriter, r *http.Request) {
	item, ok := s.fetchItem(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "upload too large or malformed")
		return
	}

	files := r.MultipartForm.File["photos"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no photos provided")
		return
	}

	var added []string
	for _, fh := range files {
		name, err := s.savePhoto(item.ID, fh)
		if err != nil {
			s.logger.Error().Err(err).Str("item_id", item.ID).Msg("saving photo failed")
			writeError(w, http.StatusInternalServerError, "saving photo failed")
			return
		}
		added = append(added, name)
	}

	item.Photos = append(item.Photos, added...)
	updated, err := s.store.UpdateItem(r.Context(), item)
	if err != nil {
		s.logger.Error().Err(err).Str("item_id", item.ID).Msg("attaching photos failed")
		writeError(w, http.StatusInternalServerError, "attaching photos failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"item_id": updated.ID,
		"added":   added,
		"photos":  updated.Photos,
	})
}

// fetchItem resolves the {id} path parameter, writing the error response
// itself when the item cannot be loaded.
func (s *Server) fetchItem(w http.ResponseWriter, r *http.Request) (storage.Item, bool) {
	id := r.PathValue("id")
	item, err := s.store.GetItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrItemNotFound) {
			writeError(w, http.StatusNotFound, "item not found")
			return storage.Item{}, false
		}
		s.logger.Error().Err(err).Str("item_id", id).Msg("loading item failed")
		writeError(w, http.StatusInternalServerError, "loading item failed")
		return storage.Item{}, false
	}
	return item, true
}

func (s *Server) savePhoto(itemID string, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s_%s_%s", itemID, uploadToken(), sanitizeFilename(fh.Filename))
	dst, err := os.Create(filepath.Join(s.uploadDir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return name, nil
}
