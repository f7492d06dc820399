package inventory

import (
	"context"
	"log"

	"pharmstock/m/domain"
)

// ItemInput is the add/edit form.
type ItemInput struct {
	Name           string
	Quantity       int
	Expiry         string
	Notes          string
	Image          string
	SmartCrop      bool
	DrugCategory   string
	ProductionDate string
	SKU            string
}

func (in ItemInput) item() (domain.Item, error) {
	name, err := trimmed("name", in.Name)
	if err != nil {
		return domain.Item{}, err
	}
	return domain.Item{
		Name:           name,
		Quantity:       max(in.Quantity, 0),
		Expiry:         in.Expiry,
		Notes:          in.Notes,
		Image:          in.Image,
		DrugCategory:   in.DrugCategory,
		ProductionDate: in.ProductionDate,
		SKU:            in.SKU,
	}, nil
}

// AddItem stores a new item under scope. An inline photo is uploaded first and a
// failed upload aborts the save.
func (s *Service) AddItem(ctx context.Context, scope domain.Scope, in ItemInput) (domain.Item, error) {
	item, err := in.item()
	if err != nil {
		return domain.Item{}, err
	}
	category, err := s.resolveScope(ctx, scope)
	if err != nil {
		return domain.Item{}, err
	}
	if item.HasInlineImage() {
		if item.Image, item.StoragePath, err = s.upload(ctx, scope.Path(), item.Image, in.SmartCrop); err != nil {
			return domain.Item{}, err
		}
	}
	stored, err := s.store.Items.Push(ctx, scope, item)
	if err != nil {
		s.discard(ctx, item.StoragePath)
		return domain.Item{}, err
	}
	s.logActivity(ctx, domain.ActivityAdd, stored.Name, category)
	log.Printf("inventory: added %q to %s", stored.Name, scope)
	return stored, nil
}

// UpdateItem overwrites the item in place, keeping its id and position. A replaced
// uploaded photo is deleted after the write.
func (s *Service) UpdateItem(ctx context.Context, scope domain.Scope, id string, in ItemInput) (domain.Item, error) {
	item, err := in.item()
	if err != nil {
		return domain.Item{}, err
	}
	if _, err := s.resolveScope(ctx, scope); err != nil {
		return domain.Item{}, err
	}
	existing, err := s.store.Items.Get(ctx, scope, id)
	if err != nil {
		return domain.Item{}, err
	}
	item.ID, item.Seq = existing.ID, existing.Seq

	switch {
	case item.HasInlineImage():
		if item.Image, item.StoragePath, err = s.upload(ctx, scope.Path(), item.Image, in.SmartCrop); err != nil {
			return domain.Item{}, err
		}
	case item.Image == existing.Image:
		item.StoragePath = existing.StoragePath
	}

	if err := s.store.Items.Set(ctx, scope, item); err != nil {
		if item.StoragePath != existing.StoragePath {
			s.discard(ctx, item.StoragePath)
		}
		return domain.Item{}, err
	}
	if existing.StoragePath != item.StoragePath {
		s.discard(ctx, existing.StoragePath)
	}
	return item, nil
}

// AdjustQuantity adds delta to the item's quantity, stopping at zero.
func (s *Service) AdjustQuantity(ctx context.Context, scope domain.Scope, id string, delta int) (domain.Item, error) {
	if _, err := s.resolveScope(ctx, scope); err != nil {
		return domain.Item{}, err
	}
	item, err := s.store.Items.Get(ctx, scope, id)
	if err != nil {
		return domain.Item{}, err
	}
	item.Quantity = domain.AdjustQuantity(item.Quantity, delta)
	if err := s.store.Items.Update(ctx, scope, id, domain.ItemPatch{Quantity: &item.Quantity}); err != nil {
		return domain.Item{}, err
	}
	return item, nil
}

// DeleteItem removes the item. Its photo is deleted best-effort.
func (s *Service) DeleteItem(ctx context.Context, scope domain.Scope, id string) error {
	category, err := s.resolveScope(ctx, scope)
	if err != nil {
		return err
	}
	item, err := s.store.Items.Get(ctx, scope, id)
	if err != nil {
		return err
	}
	if err := s.store.Items.Remove(ctx, scope, id); err != nil {
		return err
	}
	s.discard(ctx, item.StoragePath)
	s.logActivity(ctx, domain.ActivityDelete, item.Name, category)
	log.Printf("inventory: deleted %q from %s", item.Name, scope)
	return nil
}
