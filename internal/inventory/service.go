// Package inventory is the application service behind the API: item CRUD per scope,
// drug categories, expiry notifications, the admin activity log and the shortage list.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"pharmstock/m/domain"
	"pharmstock/m/internal/access"
	"pharmstock/m/internal/blob"
	"pharmstock/m/internal/crop"
	"pharmstock/m/internal/expiry"
	"pharmstock/m/internal/store"
	"pharmstock/m/internal/viewmodel"
)

var (
	// ErrNotFound is returned for unknown items, categories, scopes and shortages.
	ErrNotFound = store.ErrNotFound
	// ErrWrongPassword is returned when a shared-password gate rejects the caller.
	ErrWrongPassword = access.ErrWrongPassword
)

// ValidationError rejects a request before anything is written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// Options configure a Service. Zero values fall back to the defaults noted per field.
type Options struct {
	Roster           domain.Roster // DefaultEmployees
	CategoryPassword string        // "964"
	HorizonMonths    int           // 3
	NotificationDays int           // 30
	LowStockAt       int
	Now              func() time.Time
}

// Service implements the inventory operations on top of a store backend and a blob store.
type Service struct {
	store        store.Backend
	blobs        blob.Store
	categoryGate *access.Gate
	roster       domain.Roster
	horizon      expiry.Horizon
	notifyWithin expiry.Horizon
	lowStockAt   int
	now          func() time.Time
}

// New constructs a Service.
func New(backend store.Backend, blobs blob.Store, opts Options) (*Service, error) {
	if opts.Roster == nil {
		opts.Roster = domain.DefaultEmployees
	}
	if opts.CategoryPassword == "" {
		opts.CategoryPassword = "964"
	}
	if opts.HorizonMonths <= 0 {
		opts.HorizonMonths = 3
	}
	if opts.NotificationDays <= 0 {
		opts.NotificationDays = 30
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	gate, err := access.NewGate(opts.CategoryPassword)
	if err != nil {
		return nil, err
	}
	return &Service{
		store:        backend,
		blobs:        blobs,
		categoryGate: gate,
		roster:       opts.Roster,
		horizon:      expiry.Months(opts.HorizonMonths),
		notifyWithin: expiry.Days(opts.NotificationDays),
		lowStockAt:   opts.LowStockAt,
		now:          opts.Now,
	}, nil
}

// Now is the service clock.
func (s *Service) Now() time.Time {
	return s.now()
}

// Employees returns the roster.
func (s *Service) Employees() domain.Roster {
	return s.roster
}

// ViewOptions returns the projection used for scope. Category listings sort by expiry.
func (s *Service) ViewOptions(scope domain.Scope) viewmodel.Options {
	return viewmodel.Options{
		Horizon:      s.horizon,
		SortByExpiry: scope.Kind == domain.ScopeCategory,
		LowStockAt:   s.lowStockAt,
	}
}

// resolveScope validates scope and, for category scopes, returns the owning category.
func (s *Service) resolveScope(ctx context.Context, scope domain.Scope) (*domain.Category, error) {
	if err := scope.Validate(); err != nil {
		return nil, invalid("scope", err.Error())
	}
	switch scope.Kind {
	case domain.ScopeEmployee:
		if !s.roster.Contains(scope.Key) {
			return nil, ErrNotFound
		}
		return nil, nil
	default:
		c, err := s.store.Categories.Get(ctx, scope.Key)
		if err != nil {
			return nil, err
		}
		return &c, nil
	}
}

// Dashboard returns the projected view of scope for a search term.
func (s *Service) Dashboard(ctx context.Context, scope domain.Scope, search string) (viewmodel.View, error) {
	if _, err := s.resolveScope(ctx, scope); err != nil {
		return viewmodel.View{}, err
	}
	items, err := s.store.Items.List(ctx, scope)
	if err != nil {
		return viewmodel.View{}, err
	}
	return viewmodel.Build(items, search, s.now(), s.ViewOptions(scope)), nil
}

// Watch streams full item snapshots of scope until ctx is done.
func (s *Service) Watch(ctx context.Context, scope domain.Scope) (<-chan []domain.Item, error) {
	if _, err := s.resolveScope(ctx, scope); err != nil {
		return nil, err
	}
	return store.Watch(ctx, s.store.Notifier, scope.Path(), func(ctx context.Context) ([]domain.Item, error) {
		return s.store.Items.List(ctx, scope)
	}), nil
}

// upload stores an inline data URL photo under prefix and returns its URL and blob path.
func (s *Service) upload(ctx context.Context, prefix, dataURL string, smartCrop bool) (string, string, error) {
	contentType, data, err := blob.DecodeDataURL(dataURL)
	if err != nil {
		return "", "", invalid("image", err.Error())
	}
	if smartCrop {
		out, cropped, err := crop.Photo(data)
		switch {
		case err != nil:
			log.Printf("inventory: smart crop skipped: %v", err)
		case cropped:
			data, contentType = out, "image/jpeg"
		}
	}
	path := prefix + "/" + store.NewKey() + blob.Extension(contentType)
	url, err := s.blobs.Upload(ctx, path, contentType, data)
	if err != nil {
		return "", "", fmt.Errorf("upload image: %w", err)
	}
	return url, path, nil
}

// discard deletes a blob and only logs failures.
func (s *Service) discard(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := s.blobs.Delete(ctx, path); err != nil && !errors.Is(err, blob.ErrNotFound) {
		log.Printf("inventory: unable to delete blob %s: %v", path, err)
	}
}

func (s *Service) logActivity(ctx context.Context, kind domain.ActivityType, medicine string, c *domain.Category) {
	if c == nil {
		return
	}
	_, err := s.store.Activities.Append(ctx, domain.Activity{
		Type:         kind,
		MedicineName: medicine,
		CategoryID:   c.ID,
		CategoryName: c.Name,
		Timestamp:    s.now(),
	})
	if err != nil {
		log.Printf("inventory: unable to record %s of %q: %v", kind, medicine, err)
	}
}

func trimmed(field, value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", invalid(field, "is required")
	}
	return v, nil
}
