package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"pharmstock/m/internal/access"
	"pharmstock/m/internal/blob"
	"pharmstock/m/internal/inventory"
	"pharmstock/m/internal/live"
	"pharmstock/m/internal/validation"
)

type ctxKey string

const (
	ctxEmployee ctxKey = "employee"
	ctxRole     ctxKey = "role"
)

const maxBodyBytes = 16 << 20

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	svc       *inventory.Service
	blobs     blob.Store
	tokens    *access.Tokens
	adminGate *access.Gate
	hub       *live.Hub
}

// New constructs a Handler. adminPassword guards admin sessions.
func New(svc *inventory.Service, blobs blob.Store, secret, adminPassword string) (*Handler, error) {
	gate, err := access.NewGate(adminPassword)
	if err != nil {
		return nil, err
	}
	return &Handler{
		svc:       svc,
		blobs:     blobs,
		tokens:    access.NewTokens(secret),
		adminGate: gate,
		hub:       live.NewHub(svc),
	}, nil
}

// Close disconnects live feed clients.
func (h *Handler) Close() {
	h.hub.Close()
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)
	r.Get("/employees", h.listEmployees)
	r.Post("/sessions", h.createSession)
	r.Post("/admin/sessions", h.createAdminSession)
	r.Get("/blobs/*", h.serveBlob)

	r.Group(func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		pr.Route("/inventory", func(r chi.Router) {
			h.mountItems(r, h.employeeScope)
		})

		pr.Route("/categories", func(r chi.Router) {
			r.Get("/", h.listCategories)
			r.Post("/", h.createCategory)
			r.Put("/{id}", h.updateCategory)
			r.Delete("/{id}", h.deleteCategory)
			r.Route("/{id}/medicines", func(r chi.Router) {
				h.mountItems(r, h.categoryScope)
			})
		})

		pr.Get("/notifications", h.notifications)

		pr.Route("/shortages", func(r chi.Router) {
			r.Get("/", h.listShortages)
			r.Post("/", h.addShortage)
			r.Delete("/{id}", h.deleteShortage)
		})

		pr.Get("/admin/activities", h.activities)
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) listEmployees(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Employees())
}

// Authentication helpers

type sessionRequest struct {
	Employee string `json:"employee"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token    string `json:"token"`
	Employee string `json:"employee,omitempty"`
	Role     string `json:"role"`
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !readJSON(w, r, validation.Session, &req) {
		return
	}
	if !h.svc.Employees().Contains(req.Employee) {
		respondError(w, http.StatusNotFound, "unknown employee")
		return
	}
	token, err := h.tokens.Issue(req.Employee, access.RoleEmployee)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate token")
		return
	}
	respondJSON(w, http.StatusCreated, sessionResponse{Token: token, Employee: req.Employee, Role: access.RoleEmployee})
}

func (h *Handler) createAdminSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !readJSON(w, r, validation.Session, &req) {
		return
	}
	if err := h.adminGate.Check(req.Password); err != nil {
		respondError(w, http.StatusUnauthorized, "wrong password")
		return
	}
	token, err := h.tokens.Issue(req.Employee, access.RoleAdmin)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to generate token")
		return
	}
	respondJSON(w, http.StatusCreated, sessionResponse{Token: token, Employee: req.Employee, Role: access.RoleAdmin})
}

// authMiddleware accepts a bearer token, or a token query parameter for WebSocket
// clients that cannot set headers.
func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := r.URL.Query().Get("token")
		if header := r.Header.Get("Authorization"); header != "" {
			if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
				respondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			tokenString = strings.TrimSpace(header[len("Bearer "):])
		}
		if tokenString == "" {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := h.tokens.Parse(tokenString)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), ctxEmployee, claims.Employee)
		ctx = context.WithValue(ctx, ctxRole, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) requireRole(w http.ResponseWriter, r *http.Request, allowed ...string) bool {
	role, _ := r.Context().Value(ctxRole).(string)
	if role == "" {
		respondError(w, http.StatusUnauthorized, "missing role")
		return false
	}
	for _, allowedRole := range allowed {
		if role == allowedRole {
			return true
		}
	}
	respondError(w, http.StatusForbidden, "insufficient permissions")
	return false
}

func (h *Handler) activities(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, access.RoleAdmin) {
		return
	}
	acts, err := h.svc.Activities(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, acts)
}

func (h *Handler) serveBlob(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "*")
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}
	obj, err := h.blobs.Open(r.Context(), path)
	if errors.Is(err, blob.ErrNotFound) {
		respondError(w, http.StatusNotFound, "blob not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeContent(w, r, obj.Path, obj.CreatedAt, bytes.NewReader(obj.Data))
}

// readJSON validates the body against the named schema and decodes it into dest.
// It writes a 400 response and returns false on failure.
func readJSON(w http.ResponseWriter, r *http.Request, kind string, dest any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "unable to read body")
		return false
	}
	if err := validation.Validate(kind, body); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	if err := decodeJSON(body, dest); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func respondServiceError(w http.ResponseWriter, err error) {
	var ve *inventory.ValidationError
	switch {
	case errors.As(err, &ve):
		respondError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, inventory.ErrWrongPassword):
		respondError(w, http.StatusUnauthorized, "wrong password")
	case errors.Is(err, inventory.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(data []byte, dest any) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
