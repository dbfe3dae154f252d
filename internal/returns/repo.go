package returns

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omarhassan/retailops-backend/pkg/db/models"
	"github.com/omarhassan/retailops-backend/pkg/pagination"
)

// ListQuery configures sales return list queries.
type ListQuery struct {
	BranchID   *uuid.UUID
	InvoiceID  *uuid.UUID
	From       *time.Time
	To         *time.Time
	Pagination pagination.Params
}

// Repository manages persistence for sales returns.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, ret *models.SalesReturn) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.SalesReturn, error)
	List(ctx context.Context, params ListQuery) ([]models.SalesReturn, int64, error)
	SumReturnedByInvoice(ctx context.Context, invoiceID uuid.UUID) (map[uuid.UUID]int, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a returns repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, ret *models.SalesReturn) error {
	return r.db.WithContext(ctx).Create(ret).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.SalesReturn, error) {
	var ret models.SalesReturn
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Lines.Product").
		Preload("Invoice").
		Where("id = ?", id).
		First(&ret).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &ret, nil
}

func (r *repository) List(ctx context.Context, params ListQuery) ([]models.SalesReturn, int64, error) {
	page := params.Pagination.Normalize()
	query := r.db.WithContext(ctx).Model(&models.SalesReturn{})
	if params.BranchID != nil {
		query = query.Where("branch_id = ?", *params.BranchID)
	}
	if params.InvoiceID != nil {
		query = query.Where("sales_invoice_id = ?", *params.InvoiceID)
	}
	if params.From != nil {
		query = query.Where("created_at >= ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("created_at < ?", *params.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rets []models.SalesReturn
	if err := query.
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&rets).Error; err != nil {
		return nil, 0, err
	}
	return rets, total, nil
}

// SumReturnedByInvoice totals already-returned quantities per product
// across every return filed against the invoice.
func (r *repository) SumReturnedByInvoice(ctx context.Context, invoiceID uuid.UUID) (map[uuid.UUID]int, error) {
	type row struct {
		ProductID uuid.UUID
		Total     int
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.SalesReturnLine{}).
		Select("sales_return_lines.product_id AS product_id, COALESCE(SUM(sales_return_lines.qty_returned), 0) AS total").
		Joins("JOIN sales_returns ON sales_returns.id = sales_return_lines.sales_return_id").
		Where("sales_returns.sales_invoice_id = ?", invoiceID).
		Group("sales_return_lines.product_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int, len(rows))
	for _, r := range rows {
		out[r.ProductID] = r.Total
	}
	return out, nil
}
