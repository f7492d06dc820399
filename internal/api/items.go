package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"pharmstock/m/domain"
	"pharmstock/m/internal/export"
	"pharmstock/m/internal/inventory"
	"pharmstock/m/internal/validation"
)

// scopeFunc resolves the item scope of a request, writing an error response when it
// cannot.
type scopeFunc func(w http.ResponseWriter, r *http.Request) (domain.Scope, bool)

func (h *Handler) employeeScope(w http.ResponseWriter, r *http.Request) (domain.Scope, bool) {
	employee, _ := r.Context().Value(ctxEmployee).(string)
	if employee == "" {
		respondError(w, http.StatusForbidden, "an employee session is required")
		return domain.Scope{}, false
	}
	return domain.EmployeeScope(employee), true
}

func (h *Handler) categoryScope(w http.ResponseWriter, r *http.Request) (domain.Scope, bool) {
	return domain.CategoryScope(chi.URLParam(r, "id")), true
}

// mountItems registers the item routes of one scope kind on r.
func (h *Handler) mountItems(r chi.Router, scopeOf scopeFunc) {
	r.Get("/", h.withScope(scopeOf, h.dashboard))
	r.Post("/", h.withScope(scopeOf, h.addItem))
	r.Get("/export.xlsx", h.withScope(scopeOf, h.exportItems))
	r.Get("/live", h.withScope(scopeOf, h.liveItems))
	r.Put("/{itemID}", h.withScope(scopeOf, h.updateItem))
	r.Post("/{itemID}/quantity", h.withScope(scopeOf, h.adjustQuantity))
	r.Delete("/{itemID}", h.withScope(scopeOf, h.deleteItem))
}

func (h *Handler) withScope(scopeOf scopeFunc, next func(http.ResponseWriter, *http.Request, domain.Scope)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := scopeOf(w, r)
		if !ok {
			return
		}
		next(w, r, scope)
	}
}

type itemRequest struct {
	Name           string          `json:"name"`
	Quantity       json.RawMessage `json:"quantity"`
	Expiry         string          `json:"expiry"`
	Notes          string          `json:"notes"`
	Image          string          `json:"image"`
	SmartCrop      bool            `json:"smart_crop"`
	DrugCategory   string          `json:"drug_category"`
	ProductionDate string          `json:"production_date"`
	SKU            string          `json:"sku"`
}

func (req itemRequest) input() inventory.ItemInput {
	return inventory.ItemInput{
		Name:           req.Name,
		Quantity:       parseQuantity(req.Quantity),
		Expiry:         strings.TrimSpace(req.Expiry),
		Notes:          req.Notes,
		Image:          req.Image,
		SmartCrop:      req.SmartCrop,
		DrugCategory:   req.DrugCategory,
		ProductionDate: req.ProductionDate,
		SKU:            req.SKU,
	}
}

// parseQuantity accepts a JSON integer or a form string. Anything else, including
// null and negative values, is 0.
func parseQuantity(raw json.RawMessage) int {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return domain.ParseQuantity(s)
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil || n < 0 {
		return 0
	}
	return n
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request, scope domain.Scope) {
	view, err := h.svc.Dashboard(r.Context(), scope, r.URL.Query().Get("search"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request, scope domain.Scope) {
	var req itemRequest
	if !readJSON(w, r, validation.Item, &req) {
		return
	}
	item, err := h.svc.AddItem(r.Context(), scope, req.input())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request, scope domain.Scope) {
	var req itemRequest
	if !readJSON(w, r, validation.Item, &req) {
		return
	}
	item, err := h.svc.UpdateItem(r.Context(), scope, chi.URLParam(r, "itemID"), req.input())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

type quantityRequest struct {
	Delta int `json:"delta"`
}

func (h *Handler) adjustQuantity(w http.ResponseWriter, r *http.Request, scope domain.Scope) {
	var req quantityRequest
	if !readJSON(w, r, validation.Quantity, &req) {
		return
	}
	item, err := h.svc.AdjustQuantity(r.Context(), scope, chi.URLParam(r, "itemID"), req.Delta)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request, scope domain.Scope) {
	if err := h.svc.DeleteItem(r.Context(), scope, chi.URLParam(r, "itemID")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) exportItems(w http.ResponseWriter, r *http.Request, scope domain.Scope) {
	view, err := h.svc.Dashboard(r.Context(), scope, r.URL.Query().Get("search"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	data, err := export.Workbook(scope.Path(), view)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to build workbook")
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", scope.Kind.Root()+".xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) liveItems(w http.ResponseWriter, r *http.Request, scope domain.Scope) {
	if err := h.hub.Serve(w, r, scope); err != nil {
		respondServiceError(w, err)
	}
}
