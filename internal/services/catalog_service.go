package services

import (
	"context"
	"errors"
	"strings"

	"github.com/ejdotp/digiWallet/internal/models"
	repo "github.com/ejdotp/digiWallet/internal/repository"
)

type CatalogService struct{ r repo.Products }

func NewCatalogService(r repo.Products) *CatalogService { return &CatalogService{r: r} }

func (s *CatalogService) Add(ctx context.Context, name string, price int64, description string) (models.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Product{}, errors.New("name required")
	}
	if price <= 0 {
		return models.Product{}, models.ErrInvalidAmount
	}
	return s.r.Create(ctx, name, price, description)
}

func (s *CatalogService) Get(ctx context.Context, id string) (models.Product, error) {
	return s.r.GetByID(ctx, id)
}

func (s *CatalogService) List(ctx context.Context) ([]models.Product, error) {
	return s.r.List(ctx)
}
