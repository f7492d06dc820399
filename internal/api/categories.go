package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"pharmstock/m/internal/inventory"
	"pharmstock/m/internal/validation"
)

type categoryRequest struct {
	Name              string `json:"name"`
	ResponsiblePerson string `json:"responsible_person"`
	Password          string `json:"password"`
}

func (req categoryRequest) input() inventory.CategoryInput {
	return inventory.CategoryInput{Name: req.Name, ResponsiblePerson: req.ResponsiblePerson}
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := h.svc.ListCategories(r.Context(), q.Get("name"), q.Get("person"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !readJSON(w, r, validation.Category, &req) {
		return
	}
	c, err := h.svc.CreateCategory(r.Context(), req.Password, req.input())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !readJSON(w, r, validation.Category, &req) {
		return
	}
	c, err := h.svc.UpdateCategory(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) notifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Notifications(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

type shortageRequest struct {
	Image     string `json:"image"`
	Note      string `json:"note"`
	SmartCrop bool   `json:"smart_crop"`
}

func (h *Handler) listShortages(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Shortages(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *Handler) addShortage(w http.ResponseWriter, r *http.Request) {
	var req shortageRequest
	if !readJSON(w, r, validation.Shortage, &req) {
		return
	}
	sh, err := h.svc.AddShortage(r.Context(), inventory.ShortageInput{Image: req.Image, Note: req.Note, SmartCrop: req.SmartCrop})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, sh)
}

func (h *Handler) deleteShortage(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteShortage(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
