package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/planetaagua/storefront/internal/models"
	"github.com/planetaagua/storefront/internal/repo"
	"github.com/planetaagua/storefront/internal/transport"
)

// AddressService scopes every read and write to the calling user.
type AddressService struct {
	Addresses repo.Repository[models.Address]
}

func (s *AddressService) List(ctx context.Context, userID uint) ([]models.Address, error) {
	return s.Addresses.Find(ctx, repo.Filter{"user_id": userID}, repo.OrderBy("id asc"))
}

func (s *AddressService) Get(ctx context.Context, userID, id uint) (*models.Address, error) {
	a, err := s.Addresses.FindOne(ctx, repo.Filter{"id": id, "user_id": userID})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: address %d", ErrNotFound, id)
		}
		return nil, err
	}
	return a, nil
}

func (s *AddressService) Create(ctx context.Context, userID uint, req transport.AddressRequest) (*models.Address, error) {
	a := &models.Address{
		UserID:       userID,
		Street:       req.Street,
		Number:       req.Number,
		Complement:   req.Complement,
		Neighborhood: req.Neighborhood,
		City:         req.City,
		State:        req.State,
		ZipCode:      req.ZipCode,
	}
	if err := s.Addresses.Insert(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AddressService) Update(ctx context.Context, userID, id uint, req transport.AddressRequest) (*models.Address, error) {
	a, err := s.Addresses.Update(ctx, repo.Filter{"id": id, "user_id": userID}, map[string]any{
		"street":       req.Street,
		"number":       req.Number,
		"complement":   req.Complement,
		"neighborhood": req.Neighborhood,
		"city":         req.City,
		"state":        req.State,
		"zip_code":     req.ZipCode,
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: address %d", ErrNotFound, id)
		}
		return nil, err
	}
	return a, nil
}

func (s *AddressService) Delete(ctx context.Context, userID, id uint) error {
	n, err := s.Addresses.Delete(ctx, repo.Filter{"id": id, "user_id": userID})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: address %d", ErrNotFound, id)
	}
	return nil
}

// FormatShipping renders the address snapshot stored on an order.
func FormatShipping(a *models.Address) string {
	var b strings.Builder
	b.WriteString(a.Street)
	if a.Number != "" {
		b.WriteString(", " + a.Number)
	}
	if a.Complement != "" {
		b.WriteString(", " + a.Complement)
	}
	fmt.Fprintf(&b, " - %s, %s/%s - CEP %s", a.Neighborhood, a.City, a.State, a.ZipCode)
	return b.String()
}
