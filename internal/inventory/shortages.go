package inventory

import (
	"context"
	"slices"

	"pharmstock/m/domain"
)

// ShortageInput is a photo of a missing product with an optional note.
type ShortageInput struct {
	Image     string
	Note      string
	SmartCrop bool
}

// AddShortage uploads the photo and appends a shortage entry. A photo is required.
func (s *Service) AddShortage(ctx context.Context, in ShortageInput) (domain.Shortage, error) {
	if !domain.IsDataURL(in.Image) {
		return domain.Shortage{}, invalid("image", "a photo is required")
	}
	url, path, err := s.upload(ctx, domain.ShortagesPath, in.Image, in.SmartCrop)
	if err != nil {
		return domain.Shortage{}, err
	}
	sh, err := s.store.Shortages.Push(ctx, domain.Shortage{
		Image:       url,
		StoragePath: path,
		Note:        in.Note,
		At:          s.now(),
	})
	if err != nil {
		s.discard(ctx, path)
		return domain.Shortage{}, err
	}
	return sh, nil
}

// Shortages lists the shortage entries newest first.
func (s *Service) Shortages(ctx context.Context) ([]domain.Shortage, error) {
	list, err := s.store.Shortages.List(ctx)
	if err != nil {
		return nil, err
	}
	slices.Reverse(list)
	return list, nil
}

// DeleteShortage removes an entry and deletes its photo best-effort.
func (s *Service) DeleteShortage(ctx context.Context, id string) error {
	sh, err := s.store.Shortages.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Shortages.Remove(ctx, id); err != nil {
		return err
	}
	s.discard(ctx, sh.StoragePath)
	return nil
}
