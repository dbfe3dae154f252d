package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/omarhassan/retailops-backend/api/responses"
	"github.com/omarhassan/retailops-backend/api/validators"
	"github.com/omarhassan/retailops-backend/internal/receiving"
	"github.com/omarhassan/retailops-backend/pkg/enums"
	pkgerrors "github.com/omarhassan/retailops-backend/pkg/errors"
	"github.com/omarhassan/retailops-backend/pkg/logger"
)

type goodsReceiptLineRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Qty       int             `json:"qty" validate:"required,min=1"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

type createGoodsReceiptRequest struct {
	BranchID       string                    `json:"branch_id" validate:"required,uuid"`
	SupplierID     string                    `json:"supplier_id" validate:"required,uuid"`
	PaymentTerm    string                    `json:"payment_term" validate:"required"`
	TaxRatePercent *decimal.Decimal          `json:"tax_rate_percent,omitempty"`
	Notes          *string                   `json:"notes,omitempty"`
	Lines          []goodsReceiptLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func (r createGoodsReceiptRequest) toInput(createdBy uuid.UUID) (receiving.ReceiveGoodsInput, error) {
	branchID, err := uuid.Parse(r.BranchID)
	if err != nil {
		return receiving.ReceiveGoodsInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid branch id")
	}
	supplierID, err := uuid.Parse(r.SupplierID)
	if err != nil {
		return receiving.ReceiveGoodsInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid supplier id")
	}
	term, err := enums.ParsePaymentTerm(strings.TrimSpace(r.PaymentTerm))
	if err != nil {
		return receiving.ReceiveGoodsInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment term")
	}

	lines := make([]receiving.ReceiveGoodsLineInput, 0, len(r.Lines))
	for _, line := range r.Lines {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			return receiving.ReceiveGoodsInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
		}
		lines = append(lines, receiving.ReceiveGoodsLineInput{
			ProductID: productID,
			Qty:       line.Qty,
			Cost:      line.UnitCost,
		})
	}

	return receiving.ReceiveGoodsInput{
		BranchID:    branchID,
		SupplierID:  supplierID,
		PaymentTerm: term,
		TaxRate:     r.TaxRatePercent,
		Notes:       r.Notes,
		CreatedBy:   createdBy,
		Lines:       lines,
	}, nil
}

// CreateGoodsReceipt books a supplier delivery into stock.
func CreateGoodsReceipt(svc receiving.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "receiving service unavailable"))
			return
		}

		createdBy, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createGoodsReceiptRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(createdBy)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.ReceiveGoods(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, receipt)
	}
}

// GetGoodsReceipt fetches one receipt with its lines.
func GetGoodsReceipt(svc receiving.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "receiving service unavailable"))
			return
		}

		id, err := validators.ParseURLUUID(r, "receiptId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.GetReceipt(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, receipt)
	}
}

// ListGoodsReceipts pages through receipts with optional filters.
func ListGoodsReceipts(svc receiving.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "receiving service unavailable"))
			return
		}

		params, err := goodsReceiptListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListReceipts(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteList(w, page.Data, page.Total)
	}
}

func goodsReceiptListQuery(r *http.Request) (receiving.ListQuery, error) {
	branchID, err := validators.ParseQueryUUID(r, "branch_id")
	if err != nil {
		return receiving.ListQuery{}, err
	}
	supplierID, err := validators.ParseQueryUUID(r, "supplier_id")
	if err != nil {
		return receiving.ListQuery{}, err
	}
	from, err := validators.ParseQueryDate(r, "from")
	if err != nil {
		return receiving.ListQuery{}, err
	}
	to, err := validators.ParseQueryDate(r, "to")
	if err != nil {
		return receiving.ListQuery{}, err
	}
	page, err := validators.ParsePagination(r)
	if err != nil {
		return receiving.ListQuery{}, err
	}
	return receiving.ListQuery{
		BranchID:   branchID,
		SupplierID: supplierID,
		From:       from,
		To:         to,
		Pagination: page,
	}, nil
}
