package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/campus-market-api/internal/application/item"
	"github.com/campus-market-api/internal/domain"
	"github.com/campus-market-api/internal/pkg/validate"
	"github.com/campus-market-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// ItemHandler handles marketplace listing endpoints.
type ItemHandler struct {
	svc item.Service
}

func NewItemHandler(svc item.Service) *ItemHandler { return &ItemHandler{svc: svc} }

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	it, err := h.svc.Create(r.Context(), sellerID, req)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ItemEnvelope{Item: it})
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	it, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ItemEnvelope{Item: it})
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, cursor := parsePage(r)
	items, next, err := h.svc.List(r.Context(), f, limit, cursor)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PaginatedItemsEnvelope{Data: items, NextCursor: next, Count: len(items)})
}

// BySeller lists a seller's items newest first, sold ones included.
func (h *ItemHandler) BySeller(w http.ResponseWriter, r *http.Request) {
	limit, cursor := parsePage(r)
	items, next, err := h.svc.ListBySeller(r.Context(), chi.URLParam(r, "id"), limit, cursor)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PaginatedItemsEnvelope{Data: items, NextCursor: next, Count: len(items)})
}

// Mine lists the authenticated seller's items, sold ones included.
func (h *ItemHandler) Mine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	limit, cursor := parsePage(r)
	items, next, err := h.svc.ListBySeller(r.Context(), userID, limit, cursor)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PaginatedItemsEnvelope{Data: items, NextCursor: next, Count: len(items)})
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	it, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), userID, req)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ItemEnvelope{Item: it})
}

func (h *ItemHandler) MarkSold(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Sold *bool `json:"sold"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Sold == nil {
		writeError(w, http.StatusBadRequest, "body must carry a boolean 'sold' field")
		return
	}
	it, err := h.svc.MarkSold(r.Context(), chi.URLParam(r, "id"), userID, *req.Sold)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ItemEnvelope{Item: it})
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "item deleted"})
}

func filterFromQuery(r *http.Request) (domain.ItemFilter, error) {
	q := r.URL.Query()
	f := domain.ItemFilter{
		Search:    q.Get("search"),
		Category:  q.Get("category"),
		Condition: q.Get("condition"),
		Location:  q.Get("location"),
	}
	if v := q.Get("min_price"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil || p < 0 {
			return f, errBadPrice("min_price")
		}
		f.MinPrice = &p
	}
	if v := q.Get("max_price"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil || p < 0 {
			return f, errBadPrice("max_price")
		}
		f.MaxPrice = &p
	}
	return f, nil
}

func errBadPrice(param string) error {
	return fmt.Errorf("%s must be a non-negative number", param)
}

func parsePage(r *http.Request) (limit int, cursor string) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 0 // service applies the default
	}
	return limit, r.URL.Query().Get("cursor")
}
