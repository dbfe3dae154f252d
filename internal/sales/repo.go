package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/omarhassan/retailops-backend/pkg/db/models"
	"github.com/omarhassan/retailops-backend/pkg/enums"
	"github.com/omarhassan/retailops-backend/pkg/pagination"
)

// ListQuery configures invoice list queries.
type ListQuery struct {
	BranchID   *uuid.UUID
	CustomerID *uuid.UUID
	Status     *enums.PaymentStatus
	Channel    *enums.SalesChannel
	From       *time.Time
	To         *time.Time
	Pagination pagination.Params
}

// Repository manages persistence for sales invoices and their payments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, invoice *models.SalesInvoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.SalesInvoice, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.SalesInvoice, error)
	UpdatePaymentState(ctx context.Context, invoice *models.SalesInvoice) error
	MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) error
	CreatePayment(ctx context.Context, payment *models.Payment) error
	List(ctx context.Context, params ListQuery) ([]models.SalesInvoice, int64, error)
	ListPendingByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.SalesInvoice, error)
	ListBetween(ctx context.Context, branchID *uuid.UUID, from, to time.Time) ([]models.SalesInvoice, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a sales repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, invoice *models.SalesInvoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.SalesInvoice, error) {
	var invoice models.SalesInvoice
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Lines.Product").
		Preload("Payments").
		Preload("Customer").
		Preload("Branch").
		Where("id = ?", id).
		First(&invoice).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByIDForUpdate loads an invoice with its lines under a row lock so
// payment and delivery transitions serialize. sqlite has no row locks; its
// single writer provides the same guarantee in tests.
func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.SalesInvoice, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var invoice models.SalesInvoice
	if err := query.
		Where("id = ?", id).
		First(&invoice).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Where("sales_invoice_id = ?", id).
		Find(&invoice.Lines).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) UpdatePaymentState(ctx context.Context, invoice *models.SalesInvoice) error {
	return r.db.WithContext(ctx).
		Model(&models.SalesInvoice{}).
		Where("id = ?", invoice.ID).
		Updates(map[string]any{
			"paid_amount":      invoice.PaidAmount,
			"remaining_amount": invoice.RemainingAmount,
			"payment_status":   invoice.PaymentStatus,
		}).Error
}

func (r *repository) MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.SalesInvoice{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"delivered":     true,
			"delivery_date": at,
		}).Error
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) List(ctx context.Context, params ListQuery) ([]models.SalesInvoice, int64, error) {
	page := params.Pagination.Normalize()
	query := r.db.WithContext(ctx).Model(&models.SalesInvoice{})
	if params.BranchID != nil {
		query = query.Where("branch_id = ?", *params.BranchID)
	}
	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}
	if params.Status != nil {
		query = query.Where("payment_status = ?", *params.Status)
	}
	if params.Channel != nil {
		query = query.Where("channel = ?", *params.Channel)
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

	var invoices []models.SalesInvoice
	if err := query.
		Preload("Customer").
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&invoices).Error; err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

func (r *repository) ListPendingByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.SalesInvoice, error) {
	var invoices []models.SalesInvoice
	if err := r.db.WithContext(ctx).
		Where("customer_id = ? AND payment_status <> ?", customerID, enums.PaymentStatusPaid).
		Order("created_at ASC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repository) ListBetween(ctx context.Context, branchID *uuid.UUID, from, to time.Time) ([]models.SalesInvoice, error) {
	query := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from, to)
	if branchID != nil {
		query = query.Where("branch_id = ?", *branchID)
	}
	var invoices []models.SalesInvoice
	if err := query.Order("created_at ASC").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}
