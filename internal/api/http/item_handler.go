package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"sharesphere-backend/internal/domain"
	"sharesphere-backend/internal/errors"
)

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var item domain.Item
	if err := decodeJSON(r, &item); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.itemSvc.CreateItem(r.Context(), userIDFrom(r.Context()), &item)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := queryInt32(q.Get("page"), 1)
	pageSize := queryInt32(q.Get("page_size"), 20)
	items, total, err := s.itemSvc.ListItems(r.Context(), q.Get("category"), q.Get("q"), page, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": total,
		"page":  page,
	})
}

func (s *Server) handleListMyItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.itemSvc.ListMyItems(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.itemSvc.GetItem(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleSetItemStatus(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status domain.ItemStatus `json:"status"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.itemSvc.SetItemStatus(r.Context(), userIDFrom(r.Context()), mux.Vars(r)["id"], in.Status); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": in.Status})
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := s.itemSvc.DeleteItem(r.Context(), userIDFrom(r.Context()), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// handleUploadImages accepts a multipart batch of images and returns the
// storage keys. Clients upload item photos here first, then reference the
// keys in the create request.
func (s *Server) handleUploadImages(w http.ResponseWriter, r *http.Request) {
	keys, err := s.storedImages(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(keys) == 0 {
		writeError(w, r, errors.Validation("no images in upload"))
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"keys": keys})
}

func (s *Server) handleSuggestTokens(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	value := queryInt32(q.Get("value"), 0)
	category := domain.ItemCategory(q.Get("category"))
	if value <= 0 {
		writeError(w, r, errors.Validation("item value must be positive"))
		return
	}
	if !category.Valid() {
		writeError(w, r, errors.Validation("unknown category %q", category))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tokens_per_day": domain.SuggestTokensPerDay(value, category),
	})
}

func queryInt32(raw string, fallback int32) int32 {
	if raw == "" {
		return fallback
	}
	n, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return fallback
	}
	return int32(n)
}
