package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omarhassan/retailops-backend/pkg/db/models"
)

// Repository exposes read access to the catalog and directory tables the
// ledger workflows validate against. Catalog maintenance itself happens
// elsewhere; this surface only resolves references.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindProductByBarcode(ctx context.Context, barcode string) (*models.Product, error)
	FindProductByCode(ctx context.Context, code string) (*models.Product, error)
	FindProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error)
	FindBranch(ctx context.Context, id uuid.UUID) (*models.Branch, error)
	FindSupplier(ctx context.Context, id uuid.UUID) (*models.Supplier, error)
	FindCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	FirstActiveLocation(ctx context.Context, branchID uuid.UUID) (*models.StockLocation, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&product).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindProductByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	if barcode == "" {
		return nil, nil
	}
	var product models.Product
	if err := r.db.WithContext(ctx).
		Where("barcode = ?", barcode).
		First(&product).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindProductByCode(ctx context.Context, code string) (*models.Product, error) {
	if code == "" {
		return nil, nil
	}
	var product models.Product
	if err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&product).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*models.Product{}, nil
	}
	var products []models.Product
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&products).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]*models.Product, len(products))
	for i := range products {
		out[products[i].ID] = &products[i]
	}
	return out, nil
}

func (r *repository) FindBranch(ctx context.Context, id uuid.UUID) (*models.Branch, error) {
	var branch models.Branch
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&branch).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &branch, nil
}

func (r *repository) FindSupplier(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&supplier).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &supplier, nil
}

func (r *repository) FindCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&customer).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

func (r *repository) FirstActiveLocation(ctx context.Context, branchID uuid.UUID) (*models.StockLocation, error) {
	var location models.StockLocation
	if err := r.db.WithContext(ctx).
		Where("branch_id = ? AND active", branchID).
		Order("created_at ASC").
		First(&location).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &location, nil
}
