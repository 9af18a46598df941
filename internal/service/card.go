package service

import (
	"context"
	"fmt"

	"github.com/planetaagua/storefront/internal/models"
	"github.com/planetaagua/storefront/internal/repo"
	"github.com/planetaagua/storefront/internal/transport"
)

// CardService stores display data for saved cards. There is no update.
type CardService struct {
	Cards repo.Repository[models.CreditCard]
}

func (s *CardService) List(ctx context.Context, userID uint) ([]models.CreditCard, error) {
	return s.Cards.Find(ctx, repo.Filter{"user_id": userID}, repo.OrderBy("id asc"))
}

func (s *CardService) Create(ctx context.Context, userID uint, req transport.CardRequest) (*models.CreditCard, error) {
	c := &models.CreditCard{
		UserID:     userID,
		Brand:      req.Brand,
		LastFour:   req.LastFour,
		HolderName: req.HolderName,
		ExpiryDate: req.ExpiryDate,
	}
	if err := s.Cards.Insert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CardService) Delete(ctx context.Context, userID, id uint) error {
	n, err := s.Cards.Delete(ctx, repo.Filter{"id": id, "user_id": userID})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: credit card %d", ErrNotFound, id)
	}
	return nil
}
