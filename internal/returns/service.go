package returns

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/omarhassan/retailops-backend/internal/audit"
	"github.com/omarhassan/retailops-backend/internal/catalog"
	"github.com/omarhassan/retailops-backend/internal/docnum"
	"github.com/omarhassan/retailops-backend/internal/ledger"
	"github.com/omarhassan/retailops-backend/internal/sales"
	"github.com/omarhassan/retailops-backend/pkg/db"
	"github.com/omarhassan/retailops-backend/pkg/db/models"
	"github.com/omarhassan/retailops-backend/pkg/enums"
	apperrors "github.com/omarhassan/retailops-backend/pkg/errors"
	"github.com/omarhassan/retailops-backend/pkg/logger"
	"github.com/omarhassan/retailops-backend/pkg/metrics"
	"github.com/omarhassan/retailops-backend/pkg/pagination"
)

const workflowName = "create_return"

// CreateReturnLineInput is one returned product. The refund amount is what
// the shop agreed to give back, not a recomputation of the sale price.
type CreateReturnLineInput struct {
	ProductID    uuid.UUID
	Qty          int
	RefundAmount decimal.Decimal
}

// CreateReturnInput captures a sales return request.
type CreateReturnInput struct {
	InvoiceID uuid.UUID
	Reason    *string
	CreatedBy uuid.UUID
	Lines     []CreateReturnLineInput
}

// Service runs the sales return workflow.
type Service interface {
	CreateReturn(ctx context.Context, input CreateReturnInput) (*models.SalesReturn, error)
	GetReturn(ctx context.Context, id uuid.UUID) (*models.SalesReturn, error)
	ListReturns(ctx context.Context, params ListQuery) (*pagination.Page[models.SalesReturn], error)
}

// ServiceParams groups dependencies for the returns service.
type ServiceParams struct {
	DB      *db.Client
	Repo    Repository
	Sales   sales.Repository
	Catalog catalog.Repository
	Ledger  ledger.Service
	Audit   audit.Service
	Numbers *docnum.Service
	Logger  *logger.Logger
	Metrics *metrics.WorkflowMetrics
}

type service struct {
	db      *db.Client
	repo    Repository
	sales   sales.Repository
	catalog catalog.Repository
	ledger  ledger.Service
	audit   audit.Service
	numbers *docnum.Service
	logg    *logger.Logger
	metrics *metrics.WorkflowMetrics
}

// NewService builds the returns service and registers its document number
// seeder.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, errors.New("db client is required")
	}
	if params.Repo == nil {
		return nil, errors.New("returns repository is required")
	}
	if params.Sales == nil {
		return nil, errors.New("sales repository is required")
	}
	if params.Catalog == nil {
		return nil, errors.New("catalog repository is required")
	}
	if params.Ledger == nil {
		return nil, errors.New("ledger service is required")
	}
	if params.Audit == nil {
		return nil, errors.New("audit service is required")
	}
	if params.Numbers == nil {
		return nil, errors.New("document number service is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}

	params.Numbers.RegisterSeeder(docnum.SeriesReturn, func(ctx context.Context, tx *gorm.DB, branchCode, day string) (int, error) {
		prefix := docnum.SeriesReturn + "-" + branchCode + "-" + day + "-"
		return docnum.MaxSuffix(ctx, tx, "sales_returns", "return_no", prefix)
	})

	return &service{
		db:      params.DB,
		repo:    params.Repo,
		sales:   params.Sales,
		catalog: params.Catalog,
		ledger:  params.Ledger,
		audit:   params.Audit,
		numbers: params.Numbers,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

// CreateReturn reconciles returned quantities against the invoice, puts the
// stock back with RETURN movements, and leaves an audit record per line.
// The guard is cumulative: quantities across all of an invoice's returns
// never exceed what the invoice sold.
func (s *service) CreateReturn(ctx context.Context, input CreateReturnInput) (*models.SalesReturn, error) {
	started := time.Now()

	if input.CreatedBy == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "created by is required")
	}
	if input.InvoiceID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "invoice id is required")
	}
	if len(input.Lines) == 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "at least one line is required")
	}
	for i, line := range input.Lines {
		if line.Qty < 1 {
			return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("line %d: quantity must be at least 1", i+1))
		}
		if line.RefundAmount.IsNegative() {
			return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("line %d: refund cannot be negative", i+1))
		}
	}

	var ret *models.SalesReturn
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		invoice, err := s.sales.WithTx(tx).FindByIDForUpdate(ctx, input.InvoiceID)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "loading invoice")
		}
		if invoice == nil {
			return apperrors.New(apperrors.CodeNotFound, "invoice not found")
		}
		if !invoice.Delivered {
			return apperrors.New(apperrors.CodeStateConflict, "only delivered invoices can take returns")
		}

		soldByProduct := map[uuid.UUID]int{}
		for _, line := range invoice.Lines {
			soldByProduct[line.ProductID] += line.Qty
		}
		txRepo := s.repo.WithTx(tx)
		returnedByProduct, err := txRepo.SumReturnedByInvoice(ctx, input.InvoiceID)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "summing prior returns")
		}

		requested := map[uuid.UUID]int{}
		for i, line := range input.Lines {
			sold, ok := soldByProduct[line.ProductID]
			if !ok {
				return apperrors.New(apperrors.CodeValidation, fmt.Sprintf("line %d: product was not on the invoice", i+1))
			}
			requested[line.ProductID] += line.Qty
			if returnedByProduct[line.ProductID]+requested[line.ProductID] > sold {
				return apperrors.New(apperrors.CodeValidation, fmt.Sprintf("line %d: return exceeds the quantity sold", i+1)).
					WithDetails(map[string]int{
						"sold":             sold,
						"already_returned": returnedByProduct[line.ProductID],
						"requested":        requested[line.ProductID],
					})
			}
		}

		branch, err := s.catalog.WithTx(tx).FindBranch(ctx, invoice.BranchID)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "loading branch")
		}
		if branch == nil {
			return apperrors.New(apperrors.CodeInternal, "invoice branch missing")
		}
		location, err := s.catalog.WithTx(tx).FirstActiveLocation(ctx, invoice.BranchID)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "loading stock location")
		}
		if location == nil {
			return apperrors.New(apperrors.CodeValidation, "branch has no active stock location")
		}

		seq, err := s.numbers.NextSeq(ctx, tx, docnum.SeriesReturn, branch.Code, started)
		if err != nil {
			return err
		}
		returnNo := docnum.FormatReturn(branch.Code, docnum.Day(started), seq)

		totalRefund := decimal.Zero
		doc := &models.SalesReturn{
			ID:             uuid.New(),
			ReturnNo:       returnNo,
			SalesInvoiceID: invoice.ID,
			BranchID:       invoice.BranchID,
			Reason:         input.Reason,
			CreatedBy:      input.CreatedBy,
		}
		for _, line := range input.Lines {
			totalRefund = totalRefund.Add(line.RefundAmount)
			doc.Lines = append(doc.Lines, models.SalesReturnLine{
				ID:            uuid.New(),
				SalesReturnID: doc.ID,
				ProductID:     line.ProductID,
				QtyReturned:   line.Qty,
				RefundAmount:  line.RefundAmount,
			})
		}
		doc.TotalRefund = totalRefund.Round(2)
		if err := txRepo.Create(ctx, doc); err != nil {
			return apperrors.Wrap(apperrors.CodeInternal, err, "creating sales return")
		}

		txLedger := s.ledger.WithTx(tx)
		txAudit := s.audit.WithTx(tx)
		for _, line := range input.Lines {
			if _, err := txLedger.Record(ctx, ledger.RecordMovementInput{
				ProductID:       line.ProductID,
				StockLocationID: location.ID,
				QtyChange:       line.Qty,
				MovementType:    enums.MovementReturn,
				RefTable:        "sales_returns",
				RefID:           doc.ID,
				CreatedBy:       input.CreatedBy,
			}); err != nil {
				return err
			}

			snapshot, err := json.Marshal(map[string]any{
				"return_no":     returnNo,
				"invoice_no":    invoice.InvoiceNo,
				"qty_returned":  line.Qty,
				"refund_amount": line.RefundAmount.StringFixed(2),
			})
			if err != nil {
				return apperrors.Wrap(apperrors.CodeInternal, err, "encoding audit snapshot")
			}
			if _, err := txAudit.Record(ctx, audit.RecordInput{
				ProductID: line.ProductID,
				Action:    enums.AuditActionReturn,
				NewData:   snapshot,
				UserID:    input.CreatedBy,
			}); err != nil {
				return err
			}
		}

		ret = doc
		return nil
	})
	if err != nil {
		s.metrics.IncFailure(workflowName)
		return nil, err
	}

	s.metrics.IncDocument(docnum.SeriesReturn)
	s.metrics.ObserveDuration(workflowName, time.Since(started))
	ctx = s.logg.WithDocumentNo(ctx, ret.ReturnNo)
	s.logg.Info(ctx, "sales return committed")
	return ret, nil
}

func (s *service) GetReturn(ctx context.Context, id uuid.UUID) (*models.SalesReturn, error) {
	if id == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "return id is required")
	}
	ret, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "loading sales return")
	}
	if ret == nil {
		return nil, apperrors.New(apperrors.CodeNotFound, "sales return not found")
	}
	return ret, nil
}

func (s *service) ListReturns(ctx context.Context, params ListQuery) (*pagination.Page[models.SalesReturn], error) {
	rets, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "listing sales returns")
	}
	return &pagination.Page[models.SalesReturn]{Data: rets, Total: total}, nil
}
