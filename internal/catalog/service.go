package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/omarhassan/retailops-backend/pkg/db/models"
	apperrors "github.com/omarhassan/retailops-backend/pkg/errors"
)

// Service resolves catalog lookups for the POS surfaces.
type Service interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	LookupProduct(ctx context.Context, barcode, code string) (*models.Product, error)
}

type service struct {
	repo Repository
}

// NewService wires a catalog service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if id == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "looking up product")
	}
	if product == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "product not found")
	}
	return product, nil
}

// LookupProduct resolves a product by barcode first, falling back to the
// internal code. Scanners send barcodes; manual entry sends codes.
func (s *service) LookupProduct(ctx context.Context, barcode, code string) (*models.Product, error) {
	if barcode == "" && code == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "barcode or code is required")
	}
	if barcode != "" {
		product, err := s.repo.FindProductByBarcode(ctx, barcode)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "looking up product by barcode")
		}
		if product != nil {
			return product, nil
		}
	}
	if code != "" {
		product, err := s.repo.FindProductByCode(ctx, code)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeInternal, err, "looking up product by code")
		}
		if product != nil {
			return product, nil
		}
	}
	return nil, apperrors.New(apperrors.CodeNotFound, "product not found")
}
