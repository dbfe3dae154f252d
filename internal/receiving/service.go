package receiving

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/omarhassan/retailops-backend/internal/catalog"
	"github.com/omarhassan/retailops-backend/internal/costing"
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

const workflowName = "receive_goods"

// ReceiveGoodsLineInput is one incoming product batch.
type ReceiveGoodsLineInput struct {
	ProductID uuid.UUID
	Qty       int
	Cost      decimal.Decimal
}

// ReceiveGoodsInput captures a goods receipt request. A nil TaxRate falls
// back to the configured default rate.
type ReceiveGoodsInput struct {
	BranchID    uuid.UUID
	SupplierID  uuid.UUID
	PaymentTerm enums.PaymentTerm
	TaxRate     *decimal.Decimal
	Notes       *string
	CreatedBy   uuid.UUID
	Lines       []ReceiveGoodsLineInput
}

// Service runs the goods receipt workflow.
type Service interface {
	ReceiveGoods(ctx context.Context, input ReceiveGoodsInput) (*models.GoodsReceipt, error)
	GetReceipt(ctx context.Context, id uuid.UUID) (*models.GoodsReceipt, error)
	ListReceipts(ctx context.Context, params ListQuery) (*pagination.Page[models.GoodsReceipt], error)
}

// ServiceParams groups dependencies for the receiving service.
type ServiceParams struct {
	DB             *db.Client
	Repo           Repository
	Catalog        catalog.Repository
	Ledger         ledger.Service
	Costing        *costing.Engine
	Numbers        *docnum.Service
	Logger         *logger.Logger
	Metrics        *metrics.WorkflowMetrics
	DefaultTaxRate int
}

type service struct {
	db             *db.Client
	repo           Repository
	catalog        catalog.Repository
	ledger         ledger.Service
	costing        *costing.Engine
	numbers        *docnum.Service
	logg           *logger.Logger
	metrics        *metrics.WorkflowMetrics
	defaultTaxRate decimal.Decimal
}

// NewService builds the receiving service and registers its document
// number seeder.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, errors.New("db client is required")
	}
	if params.Repo == nil {
		return nil, errors.New("receiving repository is required")
	}
	if params.Catalog == nil {
		return nil, errors.New("catalog repository is required")
	}
	if params.Ledger == nil {
		return nil, errors.New("ledger service is required")
	}
	if params.Costing == nil {
		return nil, errors.New("costing engine is required")
	}
	if params.Numbers == nil {
		return nil, errors.New("document number service is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}

	params.Numbers.RegisterSeeder(docnum.SeriesGRN, func(ctx context.Context, tx *gorm.DB, branchCode, day string) (int, error) {
		prefix := docnum.SeriesGRN + "-" + branchCode + "-" + day + "-"
		return docnum.MaxSuffix(ctx, tx, "goods_receipts", "grn_no", prefix)
	})

	return &service{
		db:             params.DB,
		repo:           params.Repo,
		catalog:        params.Catalog,
		ledger:         params.Ledger,
		costing:        params.Costing,
		numbers:        params.Numbers,
		logg:           params.Logger,
		metrics:        params.Metrics,
		defaultTaxRate: decimal.NewFromInt(int64(params.DefaultTaxRate)),
	}, nil
}

// ReceiveGoods validates the request, then atomically creates the GRN,
// folds each batch into the product's average cost, and appends one RECEIPT
// movement per line. Costing runs before the ledger append so the average
// never counts the incoming batch twice.
func (s *service) ReceiveGoods(ctx context.Context, input ReceiveGoodsInput) (*models.GoodsReceipt, error) {
	started := time.Now()

	branch, location, err := s.validate(ctx, input)
	if err != nil {
		return nil, err
	}

	taxRate := s.defaultTaxRate
	if input.TaxRate != nil {
		taxRate = *input.TaxRate
	}

	subtotal := decimal.Zero
	for _, line := range input.Lines {
		subtotal = subtotal.Add(line.Cost.Mul(decimal.NewFromInt(int64(line.Qty))))
	}
	taxAmount := subtotal.Mul(taxRate).Div(decimal.NewFromInt(100)).Round(2)
	subtotal = subtotal.Round(2)
	total := subtotal.Add(taxAmount)

	var receipt *models.GoodsReceipt
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		seq, err := s.numbers.NextSeq(ctx, tx, docnum.SeriesGRN, branch.Code, started)
		if err != nil {
			return err
		}
		grnNo := docnum.FormatGRN(branch.Code, docnum.Day(started), seq)

		doc := &models.GoodsReceipt{
			ID:          uuid.New(),
			GRNNo:       grnNo,
			SupplierID:  input.SupplierID,
			BranchID:    input.BranchID,
			PaymentTerm: input.PaymentTerm,
			TaxRate:     taxRate,
			Subtotal:    subtotal,
			TaxAmount:   taxAmount,
			Total:       total,
			Notes:       input.Notes,
			CreatedBy:   input.CreatedBy,
		}
		for _, line := range input.Lines {
			doc.Lines = append(doc.Lines, models.GoodsReceiptLine{
				ID:             uuid.New(),
				GoodsReceiptID: doc.ID,
				ProductID:      line.ProductID,
				Qty:            line.Qty,
				Cost:           line.Cost,
			})
		}
		if err := s.repo.WithTx(tx).Create(ctx, doc); err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "creating goods receipt")
		}

		txLedger := s.ledger.WithTx(tx)
		for _, line := range input.Lines {
			if _, err := s.costing.ApplyReceipt(ctx, tx, line.ProductID, line.Qty, line.Cost); err != nil {
				return err
			}
			if _, err := txLedger.Record(ctx, ledger.RecordMovementInput{
				ProductID:       line.ProductID,
				StockLocationID: location.ID,
				QtyChange:       line.Qty,
				MovementType:    enums.MovementReceipt,
				RefTable:        "goods_receipts",
				RefID:           doc.ID,
				CreatedBy:       input.CreatedBy,
			}); err != nil {
				return err
			}
		}

		receipt = doc
		return nil
	})
	if err != nil {
		s.metrics.IncFailure(workflowName)
		return nil, err
	}

	s.metrics.IncDocument(docnum.SeriesGRN)
	s.metrics.ObserveDuration(workflowName, time.Since(started))
	ctx = s.logg.WithDocumentNo(ctx, receipt.GRNNo)
	s.logg.Info(ctx, "goods receipt committed")
	return receipt, nil
}

func (s *service) validate(ctx context.Context, input ReceiveGoodsInput) (*models.Branch, *models.StockLocation, error) {
	if input.CreatedBy == uuid.Nil {
		return nil, nil, apperrors.New(apperrors.CodeValidation, "created by is required")
	}
	if !input.PaymentTerm.IsValid() {
		return nil, nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid payment term %q", input.PaymentTerm))
	}
	if len(input.Lines) == 0 {
		return nil, nil, apperrors.New(apperrors.CodeValidation, "at least one line is required")
	}
	if input.TaxRate != nil && input.TaxRate.IsNegative() {
		return nil, nil, apperrors.New(apperrors.CodeValidation, "tax rate cannot be negative")
	}

	branch, err := s.catalog.FindBranch(ctx, input.BranchID)
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading branch")
	}
	if branch == nil || !branch.Active {
		return nil, nil, apperrors.New(apperrors.CodeNotFound, "branch not found")
	}

	supplier, err := s.catalog.FindSupplier(ctx, input.SupplierID)
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading supplier")
	}
	if supplier == nil || !supplier.Active {
		return nil, nil, apperrors.New(apperrors.CodeNotFound, "supplier not found")
	}

	location, err := s.catalog.FirstActiveLocation(ctx, input.BranchID)
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading stock location")
	}
	if location == nil {
		return nil, nil, apperrors.New(apperrors.CodeValidation, "branch has no active stock location")
	}

	ids := make([]uuid.UUID, 0, len(input.Lines))
	for i, line := range input.Lines {
		if line.Qty < 1 {
			return nil, nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("line %d: quantity must be at least 1", i+1))
		}
		if line.Cost.IsNegative() {
			return nil, nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("line %d: cost cannot be negative", i+1))
		}
		ids = append(ids, line.ProductID)
	}
	products, err := s.catalog.FindProducts(ctx, ids)
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading products")
	}
	for i, line := range input.Lines {
		product, ok := products[line.ProductID]
		if !ok || !product.Active {
			return nil, nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("line %d: product not found", i+1))
		}
	}

	return branch, location, nil
}

func (s *service) GetReceipt(ctx context.Context, id uuid.UUID) (*models.GoodsReceipt, error) {
	if id == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "receipt id is required")
	}
	receipt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading goods receipt")
	}
	if receipt == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "goods receipt not found")
	}
	return receipt, nil
}

func (s *service) ListReceipts(ctx context.Context, params ListQuery) (*pagination.Page[models.GoodsReceipt], error) {
	receipts, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "listing goods receipts")
	}
	return &pagination.Page[models.GoodsReceipt]{Data: receipts, Total: total}, nil
}
