package item

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/BhanuRekulampati/item-tracker/internal/model"
	"github.com/BhanuRekulampati/item-tracker/internal/store"
)

var (
	// ErrNotFound means no item matches the given id or token.
	ErrNotFound = errors.New("item not found")
	// ErrForbidden means the caller does not own the item.
	ErrForbidden = errors.New("not the item owner")
)

// maxTokenAttempts bounds the collision retry loop in Create. With 60-bit
// tokens a single retry is already vanishingly unlikely.
const maxTokenAttempts = 5

// Service implements the item registry on top of a Store.
type Service struct {
	store store.Store
}

func NewService(s store.Store) *Service {
	return &Service{store: s}
}

// Create registers a new item for the user and mints its QR token. The
// token is checked against existing items and regenerated on collision.
func (s *Service) Create(ctx context.Context, userID int64, name, description, icon string) (*model.Item, error) {
	if icon == "" {
		icon = model.DefaultIcon
	}

	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		token, err := NewToken()
		if err != nil {
			return nil, err
		}

		existing, err := s.store.GetItemByToken(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("checking token: %w", err)
		}
		if existing != nil {
			continue
		}

		it, err := s.store.CreateItem(ctx, userID, name, description, icon, token)
		if err != nil {
			return nil, fmt.Errorf("creating item: %w", err)
		}
		return it, nil
	}

	return nil, fmt.Errorf("could not mint a unique token after %d attempts", maxTokenAttempts)
}

// Get returns the item if it exists and belongs to the user.
func (s *Service) Get(ctx context.Context, userID, id int64) (*model.Item, error) {
	it, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, ErrNotFound
	}
	if !CanMutate(it, userID) {
		return nil, ErrForbidden
	}
	return it, nil
}

// ListByOwner returns the user's items, newest first.
func (s *Service) ListByOwner(ctx context.Context, userID int64) ([]model.Item, error) {
	return s.store.ListItemsByUser(ctx, userID)
}

// Update holds the mutable item fields. Nil fields are left unchanged.
// The QR token and scan counters are never client-writable.
type Update struct {
	Name        *string
	Description *string
	Icon        *string
	IsActive    *bool
}

// Update applies a partial update to an item owned by the user.
func (s *Service) Update(ctx context.Context, userID, id int64, upd Update) (*model.Item, error) {
	it, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	name, description, icon, active := it.Name, it.Description, it.Icon, it.IsActive
	if upd.Name != nil {
		name = *upd.Name
	}
	if upd.Description != nil {
		description = *upd.Description
	}
	if upd.Icon != nil {
		icon = *upd.Icon
	}
	if upd.IsActive != nil {
		active = *upd.IsActive
	}

	updated, err := s.store.UpdateItem(ctx, id, name, description, icon, active)
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}
	return updated, nil
}

// Delete removes an item owned by the user.
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}

	deleted, err := s.store.DeleteItem(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// Disclose resolves a QR token to its item and records the scan. Every
// successful resolution counts, including the owner scanning their own
// label. An unknown token leaves no trace.
func (s *Service) Disclose(ctx context.Context, token string) (*model.Item, error) {
	it, err := s.store.GetItemByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, ErrNotFound
	}

	scanned, err := s.store.RecordScan(ctx, it.ID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("recording scan: %w", err)
	}
	if scanned == nil {
		// Deleted between lookup and increment.
		return nil, ErrNotFound
	}
	return scanned, nil
}
