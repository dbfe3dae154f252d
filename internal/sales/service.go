package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/omarhassan/retailops-backend/internal/catalog"
	"github.com/omarhassan/retailops-backend/internal/docnum"
	"github.com/omarhassan/retailops-backend/internal/ledger"
	"github.com/omarhassan/retailops-backend/pkg/db"
	"github.com/omarhassan/retailops-backend/pkg/db/models"
	"github.com/omarhassan/retailops-backend/pkg/enums"
	apperrors "github.com/omarhassan/retailops-backend/pkg/errors"
	"github.com/omarhassan/retailops-backend/pkg/logger"
	"github.com/omarhassan/retailops-backend/pkg/metrics"
	"github.com/omarhassan/retailops-backend/pkg/pagination"
)

const (
	workflowCreateSale = "create_sale"
	workflowAddPayment = "add_payment"
	workflowDeliver    = "deliver_sale"
)

var hundred = decimal.NewFromInt(100)

// Service runs the sales invoice workflows: creation with proportional
// discount and tax allocation, the payment state machine, and delivery.
type Service interface {
	CreateSale(ctx context.Context, input CreateSaleInput) (*models.SalesInvoice, error)
	AddPayment(ctx context.Context, input AddPaymentInput) (*models.SalesInvoice, error)
	DeliverSale(ctx context.Context, invoiceID, userID uuid.UUID) (*models.SalesInvoice, error)
	GetSale(ctx context.Context, id uuid.UUID) (*models.SalesInvoice, error)
	ListSales(ctx context.Context, params ListQuery) (*pagination.Page[models.SalesInvoice], error)
	DailySummary(ctx context.Context, branchID *uuid.UUID, day time.Time) (*DailySummary, error)
	PendingPayments(ctx context.Context, customerID uuid.UUID) (*PendingPayments, error)
}

// ServiceParams groups dependencies for the sales service.
type ServiceParams struct {
	DB      *db.Client
	Repo    Repository
	Catalog catalog.Repository
	Ledger  ledger.Service
	Numbers *docnum.Service
	Logger  *logger.Logger
	Metrics *metrics.WorkflowMetrics
}

type service struct {
	db      *db.Client
	repo    Repository
	catalog catalog.Repository
	ledger  ledger.Service
	numbers *docnum.Service
	logg    *logger.Logger
	metrics *metrics.WorkflowMetrics
}

// NewService builds the sales service and registers its invoice number
// seeder.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, errors.New("db client is required")
	}
	if params.Repo == nil {
		return nil, errors.New("sales repository is required")
	}
	if params.Catalog == nil {
		return nil, errors.New("catalog repository is required")
	}
	if params.Ledger == nil {
		return nil, errors.New("ledger service is required")
	}
	if params.Numbers == nil {
		return nil, errors.New("document number service is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}

	params.Numbers.RegisterSeeder(docnum.SeriesInvoice, func(ctx context.Context, tx *gorm.DB, branchCode, day string) (int, error) {
		var branch models.Branch
		if err := tx.WithContext(ctx).Where("code = ?", branchCode).First(&branch).Error; err != nil {
			return 0, err
		}
		prefix := branch.SeriesPrefix() + "-" + day + "-"
		return docnum.MaxSuffix(ctx, tx, "sales_invoices", "invoice_no", prefix)
	})

	return &service{
		db:      params.DB,
		repo:    params.Repo,
		catalog: params.Catalog,
		ledger:  params.Ledger,
		numbers: params.Numbers,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

// CreateSale prices the invoice, allocates the invoice-level discount
// across lines in proportion to their raw amounts, snapshots profit
// figures, and applies the initial payment. Stock is deducted at creation
// only when DeliverNow is set; otherwise delivery waits for full payment
// or an explicit DeliverSale call.
func (s *service) CreateSale(ctx context.Context, input CreateSaleInput) (*models.SalesInvoice, error) {
	started := time.Now()

	branch, location, products, err := s.validateCreate(ctx, input)
	if err != nil {
		return nil, err
	}

	// Raw amounts drive the proportional discount split.
	rawSubtotal := decimal.Zero
	lineRaw := make([]decimal.Decimal, len(input.Lines))
	for i, line := range input.Lines {
		lineRaw[i] = line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Qty)))
		rawSubtotal = rawSubtotal.Add(lineRaw[i])
	}
	discount := input.InvoiceDiscount
	if discount.GreaterThan(rawSubtotal) {
		return nil, apperrors.New(apperrors.CodeValidation, "discount exceeds the invoice subtotal")
	}

	totalTax := decimal.Zero
	lines := make([]models.SalesInvoiceLine, len(input.Lines))
	for i, line := range input.Lines {
		share := decimal.Zero
		if rawSubtotal.GreaterThan(decimal.Zero) {
			share = lineRaw[i].Div(rawSubtotal).Mul(discount)
		}
		taxed := lineRaw[i].Sub(share)
		lineTax := taxed.Mul(line.TaxRatePercent).Div(hundred).Round(2)
		totalTax = totalTax.Add(lineTax)

		lines[i] = models.SalesInvoiceLine{
			ID:           uuid.New(),
			ProductID:    line.ProductID,
			Qty:          line.Qty,
			UnitPrice:    line.UnitPrice,
			LineDiscount: share.Round(2),
			TaxRate:      line.TaxRatePercent,
			LineTotal:    taxed.Add(lineTax).Round(2),
		}
	}

	total := rawSubtotal.Sub(discount).Add(totalTax).Round(2)

	// Cost of goods is snapshotted at the product's current average cost.
	costOfGoods := decimal.Zero
	for _, line := range input.Lines {
		costOfGoods = costOfGoods.Add(products[line.ProductID].Cost.Mul(decimal.NewFromInt(int64(line.Qty))))
	}
	grossProfit := rawSubtotal.Sub(discount).Sub(costOfGoods).Round(2)
	netProfit := grossProfit.Sub(input.PlatformCommission).Sub(input.ShippingFee).Round(2)
	margin := decimal.Zero
	if total.GreaterThan(decimal.Zero) {
		margin = netProfit.Div(total).Mul(hundred).Round(2)
	}

	// An over-tendered initial payment is clamped; the invoice never
	// records more than its total.
	paid := total
	if input.PaidAmount != nil {
		paid = input.PaidAmount.Round(2)
		if paid.IsNegative() {
			return nil, apperrors.New(apperrors.CodeValidation, "paid amount cannot be negative")
		}
		if paid.GreaterThan(total) {
			paid = total
		}
	}
	status := StatusFor(total, paid)

	var invoice *models.SalesInvoice
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		seq, err := s.numbers.NextSeq(ctx, tx, docnum.SeriesInvoice, branch.Code, started)
		if err != nil {
			return err
		}
		invoiceNo := docnum.FormatInvoice(branch.SeriesPrefix(), docnum.Day(started), seq)

		doc := &models.SalesInvoice{
			ID:                 uuid.New(),
			InvoiceNo:          invoiceNo,
			BranchID:           input.BranchID,
			CustomerID:         input.CustomerID,
			Subtotal:           rawSubtotal.Round(2),
			TotalDiscount:      discount.Round(2),
			TotalTax:           totalTax.Round(2),
			Total:              total,
			CostOfGoods:        costOfGoods.Round(2),
			GrossProfit:        grossProfit,
			NetProfit:          netProfit,
			ProfitMargin:       margin,
			PaymentStatus:      status,
			PaymentMethod:      input.PaymentMethod,
			PaidAmount:         paid,
			RemainingAmount:    total.Sub(paid),
			Channel:            input.Channel,
			PlatformCommission: input.PlatformCommission.Round(2),
			ShippingFee:        input.ShippingFee.Round(2),
			Notes:              input.Notes,
			CreatedBy:          input.CreatedBy,
		}
		for i := range lines {
			lines[i].SalesInvoiceID = doc.ID
		}
		doc.Lines = lines
		if err := s.repo.WithTx(tx).Create(ctx, doc); err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "creating sales invoice")
		}

		if paid.GreaterThan(decimal.Zero) {
			payment := &models.Payment{
				ID:             uuid.New(),
				SalesInvoiceID: doc.ID,
				Amount:         paid,
				PaymentMethod:  input.PaymentMethod,
				CreatedBy:      input.CreatedBy,
			}
			if err := s.repo.WithTx(tx).CreatePayment(ctx, payment); err != nil {
				return apperrors.Wrap(apperrors.CodeInternal, err, "recording initial payment")
			}
		}

		if input.DeliverNow {
			if err := s.deliverLocked(ctx, tx, doc, location, input.CreatedBy); err != nil {
				return err
			}
		}

		invoice = doc
		return nil
	})
	if err != nil {
		s.metrics.IncFailure(workflowCreateSale)
		return nil, err
	}

	s.metrics.IncDocument(docnum.SeriesInvoice)
	s.metrics.ObserveDuration(workflowCreateSale, time.Since(started))
	ctx = s.logg.WithDocumentNo(ctx, invoice.InvoiceNo)
	s.logg.Info(ctx, "sales invoice committed")
	return invoice, nil
}

func (s *service) validateCreate(ctx context.Context, input CreateSaleInput) (*models.Branch, *models.StockLocation, map[uuid.UUID]*models.Product, error) {
	if input.CreatedBy == uuid.Nil {
		return nil, nil, nil, apperrors.New(apperrors.CodeValidation, "created by is required")
	}
	if len(input.Lines) == 0 {
		return nil, nil, nil, apperrors.New(apperrors.CodeValidation, "at least one line is required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, nil, nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid payment method %q", input.PaymentMethod))
	}
	if input.Channel != nil && !input.Channel.IsValid() {
		return nil, nil, nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid sales channel %q", *input.Channel))
	}
	if input.InvoiceDiscount.IsNegative() {
		return nil, nil, nil, apperrors.New(apperrors.CodeValidation, "discount cannot be negative")
	}
	if input.PlatformCommission.IsNegative() || input.ShippingFee.IsNegative() {
		return nil, nil, nil, apperrors.New(apperrors.CodeValidation, "commission and shipping cannot be negative")
	}

	branch, err := s.catalog.FindBranch(ctx, input.BranchID)
	if err != nil {
		return nil, nil, nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading branch")
	}
	if branch == nil || !branch.Active {
		return nil, nil, nil, apperrors.New(apperrors.CodeNotFound, "branch not found")
	}

	// The fulfilment location must exist before any invoice row is written.
	location, err := s.activeLocation(ctx, nil, input.BranchID)
	if err != nil {
		return nil, nil, nil, err
	}

	if input.CustomerID != nil {
		customer, err := s.catalog.FindCustomer(ctx, *input.CustomerID)
		if err != nil {
			return nil, nil, nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading customer")
		}
		if customer == nil || !customer.Active {
			return nil, nil, nil, apperrors.New(apperrors.CodeNotFound, "customer not found")
		}
	}

	ids := make([]uuid.UUID, 0, len(input.Lines))
	for i, line := range input.Lines {
		if line.Qty < 1 {
			return nil, nil, nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("line %d: quantity must be at least 1", i+1))
		}
		if line.UnitPrice.IsNegative() {
			return nil, nil, nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("line %d: unit price cannot be negative", i+1))
		}
		if line.TaxRatePercent.IsNegative() {
			return nil, nil, nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("line %d: tax rate cannot be negative", i+1))
		}
		ids = append(ids, line.ProductID)
	}
	products, err := s.catalog.FindProducts(ctx, ids)
	if err != nil {
		return nil, nil, nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading products")
	}
	for i, line := range input.Lines {
		product, ok := products[line.ProductID]
		if !ok || !product.Active {
			return nil, nil, nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("line %d: product not found", i+1))
		}
	}
	return branch, location, products, nil
}

// AddPayment applies one settlement. Reaching the full total flips the
// invoice to PAID and triggers delivery inside the same transaction.
func (s *service) AddPayment(ctx context.Context, input AddPaymentInput) (*models.SalesInvoice, error) {
	started := time.Now()
	if input.InvoiceID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "invoice id is required")
	}
	if input.CreatedBy == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "created by is required")
	}
	if !input.Method.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid payment method %q", input.Method))
	}
	amount := input.Amount.Round(2)

	var invoice *models.SalesInvoice
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		doc, err := repo.FindByIDForUpdate(ctx, input.InvoiceID)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "loading invoice")
		}
		if doc == nil {
			return apperrors.New(apperrors.CodeNotFound, "invoice not found")
		}
		if err := CheckAddPayment(doc, amount); err != nil {
			return err
		}

		payment := &models.Payment{
			ID:             uuid.New(),
			SalesInvoiceID: doc.ID,
			Amount:         amount,
			PaymentMethod:  input.Method,
			Notes:          input.Notes,
			CreatedBy:      input.CreatedBy,
		}
		if err := repo.CreatePayment(ctx, payment); err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "recording payment")
		}

		doc.PaidAmount = doc.PaidAmount.Add(amount)
		doc.RemainingAmount = doc.Total.Sub(doc.PaidAmount)
		doc.PaymentStatus = StatusFor(doc.Total, doc.PaidAmount)
		if err := repo.UpdatePaymentState(ctx, doc); err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "updating payment state")
		}

		if doc.PaymentStatus == enums.PaymentStatusPaid && !doc.Delivered {
			location, err := s.activeLocation(ctx, tx, doc.BranchID)
			if err != nil {
				return err
			}
			if err := s.deliverLocked(ctx, tx, doc, location, input.CreatedBy); err != nil {
				return err
			}
		}

		invoice = doc
		return nil
	})
	if err != nil {
		s.metrics.IncFailure(workflowAddPayment)
		return nil, err
	}

	s.metrics.ObserveDuration(workflowAddPayment, time.Since(started))
	ctx = s.logg.WithDocumentNo(ctx, invoice.InvoiceNo)
	s.logg.Info(ctx, "payment recorded")
	return invoice, nil
}

// DeliverSale hands the goods over for an invoice that was paid earlier.
func (s *service) DeliverSale(ctx context.Context, invoiceID, userID uuid.UUID) (*models.SalesInvoice, error) {
	started := time.Now()
	if invoiceID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "invoice id is required")
	}
	if userID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "user id is required")
	}

	var invoice *models.SalesInvoice
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		doc, err := s.repo.WithTx(tx).FindByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "loading invoice")
		}
		if doc == nil {
			return apperrors.New(apperrors.CodeNotFound, "invoice not found")
		}
		if err := CheckDeliver(doc); err != nil {
			return err
		}
		location, err := s.activeLocation(ctx, tx, doc.BranchID)
		if err != nil {
			return err
		}
		if err := s.deliverLocked(ctx, tx, doc, location, userID); err != nil {
			return err
		}
		invoice = doc
		return nil
	})
	if err != nil {
		s.metrics.IncFailure(workflowDeliver)
		return nil, err
	}

	s.metrics.ObserveDuration(workflowDeliver, time.Since(started))
	ctx = s.logg.WithDocumentNo(ctx, invoice.InvoiceNo)
	s.logg.Info(ctx, "sale delivered")
	return invoice, nil
}

// activeLocation resolves the branch's fulfilment location. Pass the open
// transaction when one is held.
func (s *service) activeLocation(ctx context.Context, tx *gorm.DB, branchID uuid.UUID) (*models.StockLocation, error) {
	location, err := s.catalog.WithTx(tx).FirstActiveLocation(ctx, branchID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading stock location")
	}
	if location == nil {
		return nil, apperrors.New(apperrors.CodeValidation, "branch has no active stock location")
	}
	return location, nil
}

// deliverLocked appends one SALE movement per line and marks the invoice
// delivered. Callers resolve the location and verify the transition.
func (s *service) deliverLocked(ctx context.Context, tx *gorm.DB, invoice *models.SalesInvoice, location *models.StockLocation, userID uuid.UUID) error {
	txLedger := s.ledger.WithTx(tx)
	for _, line := range invoice.Lines {
		if _, err := txLedger.Record(ctx, ledger.RecordMovementInput{
			ProductID:       line.ProductID,
			StockLocationID: location.ID,
			QtyChange:       -line.Qty,
			MovementType:    enums.MovementSale,
			RefTable:        "sales_invoices",
			RefID:           invoice.ID,
			CreatedBy:       userID,
		}); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	if err := s.repo.WithTx(tx).MarkDelivered(ctx, invoice.ID, now); err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, err, "marking invoice delivered")
	}
	invoice.Delivered = true
	invoice.DeliveryDate = &now
	return nil
}

func (s *service) GetSale(ctx context.Context, id uuid.UUID) (*models.SalesInvoice, error) {
	if id == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "invoice id is required")
	}
	invoice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading invoice")
	}
	if invoice == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "invoice not found")
	}
	return invoice, nil
}

func (s *service) ListSales(ctx context.Context, params ListQuery) (*pagination.Page[models.SalesInvoice], error) {
	invoices, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "listing invoices")
	}
	return &pagination.Page[models.SalesInvoice]{Data: invoices, Total: total}, nil
}

// DailySummary aggregates the day's invoices in UTC.
func (s *service) DailySummary(ctx context.Context, branchID *uuid.UUID, day time.Time) (*DailySummary, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	invoices, err := s.repo.ListBetween(ctx, branchID, from, to)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading invoices for summary")
	}

	summary := &DailySummary{Date: from.Format("2006-01-02"), InvoiceCount: len(invoices)}
	for _, invoice := range invoices {
		summary.TotalSales = summary.TotalSales.Add(invoice.Total)
		summary.TotalDiscount = summary.TotalDiscount.Add(invoice.TotalDiscount)
		summary.TotalTax = summary.TotalTax.Add(invoice.TotalTax)
		summary.TotalCostOfGoods = summary.TotalCostOfGoods.Add(invoice.CostOfGoods)
		summary.GrossProfit = summary.GrossProfit.Add(invoice.GrossProfit)
		summary.NetProfit = summary.NetProfit.Add(invoice.NetProfit)
		summary.TotalPaid = summary.TotalPaid.Add(invoice.PaidAmount)
		summary.TotalOutstanding = summary.TotalOutstanding.Add(invoice.RemainingAmount)
	}
	return summary, nil
}

func (s *service) PendingPayments(ctx context.Context, customerID uuid.UUID) (*PendingPayments, error) {
	if customerID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "customer id is required")
	}
	customer, err := s.catalog.FindCustomer(ctx, customerID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading customer")
	}
	if customer == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "customer not found")
	}

	invoices, err := s.repo.ListPendingByCustomer(ctx, customerID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "listing pending invoices")
	}
	pending := &PendingPayments{CustomerID: customerID, Invoices: invoices}
	for _, invoice := range invoices {
		pending.TotalOutstanding = pending.TotalOutstanding.Add(invoice.RemainingAmount)
	}
	return pending, nil
}
