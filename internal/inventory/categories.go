package inventory

import (
	"context"
	"log"
	"slices"
	"strings"
	"time"

	"pharmstock/m/domain"
	"pharmstock/m/internal/expiry"
)

// CategoryInput is the category form.
type CategoryInput struct {
	Name              string
	ResponsiblePerson string
}

func (in CategoryInput) clean() (CategoryInput, error) {
	name, err := trimmed("name", in.Name)
	if err != nil {
		return in, err
	}
	person, err := trimmed("responsible_person", in.ResponsiblePerson)
	if err != nil {
		return in, err
	}
	return CategoryInput{Name: name, ResponsiblePerson: person}, nil
}

// CategorySummary is a category with the number of medicines kept under it.
type CategorySummary struct {
	domain.Category
	MedicineCount int `json:"medicine_count"`
}

// CreateCategory adds a category after checking the shared category password.
func (s *Service) CreateCategory(ctx context.Context, password string, in CategoryInput) (domain.Category, error) {
	if err := s.categoryGate.Check(password); err != nil {
		return domain.Category{}, err
	}
	in, err := in.clean()
	if err != nil {
		return domain.Category{}, err
	}
	c, err := s.store.Categories.Push(ctx, domain.Category{
		Name:              in.Name,
		ResponsiblePerson: in.ResponsiblePerson,
		CreatedAt:         s.now(),
	})
	if err != nil {
		return domain.Category{}, err
	}
	log.Printf("inventory: created category %q", c.Name)
	return c, nil
}

// UpdateCategory renames a category or changes its responsible person.
func (s *Service) UpdateCategory(ctx context.Context, id string, in CategoryInput) (domain.Category, error) {
	in, err := in.clean()
	if err != nil {
		return domain.Category{}, err
	}
	c, err := s.store.Categories.Get(ctx, id)
	if err != nil {
		return domain.Category{}, err
	}
	c.Name, c.ResponsiblePerson = in.Name, in.ResponsiblePerson
	if err := s.store.Categories.Set(ctx, c); err != nil {
		return domain.Category{}, err
	}
	return c, nil
}

// DeleteCategory removes a category together with its medicines and their photos.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	c, err := s.store.Categories.Get(ctx, id)
	if err != nil {
		return err
	}
	items, err := s.store.Items.List(ctx, c.Scope())
	if err != nil {
		return err
	}
	if err := s.store.Items.RemoveScope(ctx, c.Scope()); err != nil {
		return err
	}
	if err := s.store.Categories.Remove(ctx, id); err != nil {
		return err
	}
	for _, item := range items {
		s.discard(ctx, item.StoragePath)
	}
	log.Printf("inventory: deleted category %q with %d medicines", c.Name, len(items))
	return nil
}

// ListCategories returns categories newest first with their medicine counts. Both
// filters are case-insensitive substrings and must both match.
func (s *Service) ListCategories(ctx context.Context, name, person string) ([]CategorySummary, error) {
	all, err := s.store.Categories.List(ctx)
	if err != nil {
		return nil, err
	}
	name, person = strings.ToLower(name), strings.ToLower(person)
	out := make([]CategorySummary, 0, len(all))
	for _, c := range all {
		if !strings.Contains(strings.ToLower(c.Name), name) || !strings.Contains(strings.ToLower(c.ResponsiblePerson), person) {
			continue
		}
		items, err := s.store.Items.List(ctx, c.Scope())
		if err != nil {
			return nil, err
		}
		out = append(out, CategorySummary{Category: c, MedicineCount: len(items)})
	}
	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b CategorySummary) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// Notification is a category medicine that expires within the notification window.
type Notification struct {
	domain.Item
	CategoryID        string    `json:"category_id"`
	CategoryName      string    `json:"category_name"`
	ResponsiblePerson string    `json:"responsible_person"`
	DaysLeft          int       `json:"days_left"`
	expires           time.Time
}

// Notifications lists medicines across all categories that are not yet expired and
// expire within the notification window, closest first.
func (s *Service) Notifications(ctx context.Context) ([]Notification, error) {
	cats, err := s.store.Categories.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := []Notification{}
	for _, c := range cats {
		items, err := s.store.Items.List(ctx, c.Scope())
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			res := expiry.EvaluateWithin(item.Expiry, now, s.notifyWithin)
			if !res.IsExpiringSoon {
				continue
			}
			out = append(out, Notification{
				Item:              item,
				CategoryID:        c.ID,
				CategoryName:      c.Name,
				ResponsiblePerson: c.ResponsiblePerson,
				DaysLeft:          expiry.DaysUntil(res.Parsed, now),
				expires:           res.Parsed,
			})
		}
	}
	slices.SortStableFunc(out, func(a, b Notification) int {
		return a.expires.Compare(b.expires)
	})
	return out, nil
}

// Activities returns the admin log newest first.
func (s *Service) Activities(ctx context.Context) ([]domain.Activity, error) {
	acts, err := s.store.Activities.List(ctx)
	if err != nil {
		return nil, err
	}
	slices.Reverse(acts)
	return acts, nil
}
