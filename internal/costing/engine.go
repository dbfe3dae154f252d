package costing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/omarhassan/retailops-backend/pkg/db/models"
	apperrors "github.com/omarhassan/retailops-backend/pkg/errors"
)

// Engine maintains the weighted average cost on product rows. It is the
// only writer of Product.CostAvg; every goods receipt line passes through
// ApplyReceipt before its ledger entry is appended, so the on-hand quantity
// read here never includes the incoming batch.
type Engine struct{}

// NewEngine returns a costing engine.
func NewEngine() *Engine {
	return &Engine{}
}

// ApplyReceipt folds one received batch into the product's average cost and
// returns the updated product. Batches with a non-positive quantity leave
// the product untouched.
//
// With a positive on-hand quantity the new average is
//
//	(onHand*costAvg + batchQty*batchCost) / (onHand + batchQty)
//
// With zero or negative on-hand stock the batch cost is adopted verbatim:
// averaging against stock that is not there would poison the figure.
func (e *Engine) ApplyReceipt(ctx context.Context, tx *gorm.DB, productID uuid.UUID, batchQty int, batchCost decimal.Decimal) (*models.Product, error) {
	if tx == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "costing requires a transaction")
	}
	if productID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "product id is required")
	}
	if batchCost.IsNegative() {
		return nil, apperrors.New(apperrors.CodeValidation, "batch cost cannot be negative")
	}

	product, err := e.lockProduct(ctx, tx, productID)
	if err != nil {
		return nil, err
	}
	if batchQty <= 0 {
		return product, nil
	}

	onHand, err := e.onHand(ctx, tx, productID)
	if err != nil {
		return nil, err
	}

	newAvg := batchCost
	if onHand > 0 {
		onHandDec := decimal.NewFromInt(int64(onHand))
		batchDec := decimal.NewFromInt(int64(batchQty))
		newAvg = product.CostAvg.Mul(onHandDec).
			Add(batchCost.Mul(batchDec)).
			Div(onHandDec.Add(batchDec)).
			Round(4)
	}

	if err := tx.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]any{"cost": newAvg, "cost_avg": newAvg}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "updating product cost")
	}
	product.Cost = newAvg
	product.CostAvg = newAvg
	return product, nil
}

func (e *Engine) lockProduct(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (*models.Product, error) {
	query := tx.WithContext(ctx)
	// sqlite has no row locks; serialization there comes from its single
	// writer.
	if tx.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var product models.Product
	if err := query.Where("id = ?", productID).First(&product).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.New(apperrors.CodeNotFound, "product not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading product for costing")
	}
	return &product, nil
}

func (e *Engine) onHand(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (int, error) {
	var total int
	if err := tx.WithContext(ctx).
		Model(&models.StockMovement{}).
		Select("COALESCE(SUM(qty_change), 0)").
		Where("product_id = ?", productID).
		Scan(&total).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.CodeInternal, err, "summing stock for costing")
	}
	return total, nil
}
