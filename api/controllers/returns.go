package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/omarhassan/retailops-backend/api/responses"
	"github.com/omarhassan/retailops-backend/api/validators"
	"github.com/omarhassan/retailops-backend/internal/returns"
	pkgerrors "github.com/omarhassan/retailops-backend/pkg/errors"
	"github.com/omarhassan/retailops-backend/pkg/logger"
)

type returnLineRequest struct {
	ProductID    string          `json:"product_id" validate:"required,uuid"`
	Qty          int             `json:"qty" validate:"required,min=1"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
}

type createReturnRequest struct {
	InvoiceID string              `json:"invoice_id" validate:"required,uuid"`
	Reason    *string             `json:"reason,omitempty"`
	Lines     []returnLineRequest `json:"lines" validate:"required,min=1,dive"`
}

func (r createReturnRequest) toInput(createdBy uuid.UUID) (returns.CreateReturnInput, error) {
	invoiceID, err := uuid.Parse(r.InvoiceID)
	if err != nil {
		return returns.CreateReturnInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid invoice id")
	}

	lines := make([]returns.CreateReturnLineInput, 0, len(r.Lines))
	for _, line := range r.Lines {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			return returns.CreateReturnInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
		}
		lines = append(lines, returns.CreateReturnLineInput{
			ProductID:    productID,
			Qty:          line.Qty,
			RefundAmount: line.RefundAmount,
		})
	}

	return returns.CreateReturnInput{
		InvoiceID: invoiceID,
		Reason:    r.Reason,
		CreatedBy: createdBy,
		Lines:     lines,
	}, nil
}

// CreateSalesReturn books returned goods back into stock.
func CreateSalesReturn(svc returns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "returns service unavailable"))
			return
		}

		createdBy, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createReturnRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(createdBy)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ret, err := svc.CreateReturn(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, ret)
	}
}

// GetSalesReturn fetches one return with its lines.
func GetSalesReturn(svc returns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "returns service unavailable"))
			return
		}

		id, err := validators.ParseURLUUID(r, "returnId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ret, err := svc.GetReturn(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, ret)
	}
}

// ListSalesReturns pages through returns with optional filters.
func ListSalesReturns(svc returns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "returns service unavailable"))
			return
		}

		params, err := returnListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListReturns(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteList(w, page.Data, page.Total)
	}
}

func returnListQuery(r *http.Request) (returns.ListQuery, error) {
	branchID, err := validators.ParseQueryUUID(r, "branch_id")
	if err != nil {
		return returns.ListQuery{}, err
	}
	invoiceID, err := validators.ParseQueryUUID(r, "invoice_id")
	if err != nil {
		return returns.ListQuery{}, err
	}
	from, err := validators.ParseQueryDate(r, "from")
	if err != nil {
		return returns.ListQuery{}, err
	}
	to, err := validators.ParseQueryDate(r, "to")
	if err != nil {
		return returns.ListQuery{}, err
	}
	page, err := validators.ParsePagination(r)
	if err != nil {
		return returns.ListQuery{}, err
	}
	return returns.ListQuery{
		BranchID:   branchID,
		InvoiceID:  invoiceID,
		From:       from,
		To:         to,
		Pagination: page,
	}, nil
}
