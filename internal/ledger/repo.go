package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omarhassan/retailops-backend/pkg/db/models"
)

// LocationQuantity is the signed movement sum for one stock location.
type LocationQuantity struct {
	StockLocationID uuid.UUID `json:"stock_location_id"`
	LocationName    string    `json:"location_name"`
	Quantity        int       `json:"quantity"`
}

// LowStockRow pairs a product with its current on-hand quantity when that
// quantity has fallen below the reorder level.
type LowStockRow struct {
	ProductID    uuid.UUID `json:"product_id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	ReorderLevel int       `json:"reorder_level"`
	OnHand       int       `json:"on_hand"`
}

// Repository manages persistence for the stock movement ledger. The table
// is append-only; there is no update or delete surface.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, movement *models.StockMovement) error
	SumQuantity(ctx context.Context, productID uuid.UUID, locationID *uuid.UUID) (int, error)
	SumByLocation(ctx context.Context, productID uuid.UUID) ([]LocationQuantity, error)
	ListByRef(ctx context.Context, refTable string, refID uuid.UUID) ([]models.StockMovement, error)
	LowStock(ctx context.Context) ([]LowStockRow, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, movement *models.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *repository) SumQuantity(ctx context.Context, productID uuid.UUID, locationID *uuid.UUID) (int, error) {
	query := r.db.WithContext(ctx).
		Model(&models.StockMovement{}).
		Select("COALESCE(SUM(qty_change), 0)").
		Where("product_id = ?", productID)
	if locationID != nil {
		query = query.Where("stock_location_id = ?", *locationID)
	}
	var total int
	if err := query.Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repository) SumByLocation(ctx context.Context, productID uuid.UUID) ([]LocationQuantity, error) {
	var rows []LocationQuantity
	err := r.db.WithContext(ctx).
		Model(&models.StockMovement{}).
		Select("stock_movements.stock_location_id AS stock_location_id, stock_locations.name AS location_name, COALESCE(SUM(stock_movements.qty_change), 0) AS quantity").
		Joins("JOIN stock_locations ON stock_locations.id = stock_movements.stock_location_id").
		Where("stock_movements.product_id = ?", productID).
		Group("stock_movements.stock_location_id, stock_locations.name").
		Order("stock_locations.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListByRef(ctx context.Context, refTable string, refID uuid.UUID) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	if err := r.db.WithContext(ctx).
		Where("ref_table = ? AND ref_id = ?", refTable, refID).
		Order("created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

func (r *repository) LowStock(ctx context.Context) ([]LowStockRow, error) {
	var rows []LowStockRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT products.id AS product_id,
		       products.code AS code,
		       products.name AS name,
		       products.reorder_level AS reorder_level,
		       COALESCE(SUM(stock_movements.qty_change), 0) AS on_hand
		FROM products
		LEFT JOIN stock_movements ON stock_movements.product_id = products.id
		WHERE products.active
		GROUP BY products.id, products.code, products.name, products.reorder_level
		HAVING COALESCE(SUM(stock_movements.qty_change), 0) < products.reorder_level
		ORDER BY products.code ASC`).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
