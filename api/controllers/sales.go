package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/omarhassan/retailops-backend/api/responses"
	"github.com/omarhassan/retailops-backend/api/validators"
	"github.com/omarhassan/retailops-backend/internal/sales"
	"github.com/omarhassan/retailops-backend/pkg/enums"
	pkgerrors "github.com/omarhassan/retailops-backend/pkg/errors"
	"github.com/omarhassan/retailops-backend/pkg/logger"
)

type saleLineRequest struct {
	ProductID      string          `json:"product_id" validate:"required,uuid"`
	Qty            int             `json:"qty" validate:"required,min=1"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	TaxRatePercent decimal.Decimal `json:"tax_rate_percent"`
}

type createSaleRequest struct {
	BranchID           string            `json:"branch_id" validate:"required,uuid"`
	CustomerID         *string           `json:"customer_id,omitempty" validate:"omitempty,uuid"`
	Lines              []saleLineRequest `json:"lines" validate:"required,min=1,dive"`
	InvoiceDiscount    decimal.Decimal   `json:"invoice_discount"`
	PaymentMethod      string            `json:"payment_method" validate:"required"`
	PaidAmount         *decimal.Decimal  `json:"paid_amount,omitempty"`
	DeliverNow         bool              `json:"deliver_now"`
	Channel            *string           `json:"channel,omitempty"`
	PlatformCommission decimal.Decimal   `json:"platform_commission"`
	ShippingFee        decimal.Decimal   `json:"shipping_fee"`
	Notes              *string           `json:"notes,omitempty"`
}

func (r createSaleRequest) toInput(createdBy uuid.UUID) (sales.CreateSaleInput, error) {
	branchID, err := uuid.Parse(r.BranchID)
	if err != nil {
		return sales.CreateSaleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid branch id")
	}

	var customerID *uuid.UUID
	if r.CustomerID != nil {
		parsed, err := uuid.Parse(*r.CustomerID)
		if err != nil {
			return sales.CreateSaleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer id")
		}
		customerID = &parsed
	}

	method, err := enums.ParsePaymentMethod(strings.TrimSpace(r.PaymentMethod))
	if err != nil {
		return sales.CreateSaleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}

	var channel *enums.SalesChannel
	if r.Channel != nil {
		parsed, err := enums.ParseSalesChannel(strings.TrimSpace(*r.Channel))
		if err != nil {
			return sales.CreateSaleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sales channel")
		}
		channel = &parsed
	}

	lines := make([]sales.CreateSaleLineInput, 0, len(r.Lines))
	for _, line := range r.Lines {
		productID, err := uuid.Parse(line.ProductID)
		if err != nil {
			return sales.CreateSaleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
		}
		lines = append(lines, sales.CreateSaleLineInput{
			ProductID:      productID,
			Qty:            line.Qty,
			UnitPrice:      line.UnitPrice,
			TaxRatePercent: line.TaxRatePercent,
		})
	}

	return sales.CreateSaleInput{
		BranchID:           branchID,
		CustomerID:         customerID,
		Lines:              lines,
		InvoiceDiscount:    r.InvoiceDiscount,
		PaymentMethod:      method,
		PaidAmount:         r.PaidAmount,
		DeliverNow:         r.DeliverNow,
		Channel:            channel,
		PlatformCommission: r.PlatformCommission,
		ShippingFee:        r.ShippingFee,
		Notes:              r.Notes,
		CreatedBy:          createdBy,
	}, nil
}

type addPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method" validate:"required"`
	Notes  *string         `json:"notes,omitempty"`
}

// CreateSale books an invoice; deliver_now deducts stock at creation.
func CreateSale(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		createdBy, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(createdBy)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.CreateSale(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, invoice)
	}
}

// AddSalePayment settles part or all of an open invoice.
func AddSalePayment(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		createdBy, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoiceID, err := validators.ParseURLUUID(r, "invoiceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(strings.TrimSpace(payload.Method))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		invoice, err := svc.AddPayment(r.Context(), sales.AddPaymentInput{
			InvoiceID: invoiceID,
			Amount:    payload.Amount,
			Method:    method,
			Notes:     payload.Notes,
			CreatedBy: createdBy,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, invoice)
	}
}

// DeliverSale hands a fully paid invoice over and writes its stock movements.
func DeliverSale(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoiceID, err := validators.ParseURLUUID(r, "invoiceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.DeliverSale(r.Context(), invoiceID, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, invoice)
	}
}

// GetSale fetches one invoice with lines and payments.
func GetSale(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		id, err := validators.ParseURLUUID(r, "invoiceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.GetSale(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, invoice)
	}
}

// ListSales pages through invoices with optional filters.
func ListSales(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		params, err := saleListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListSales(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteList(w, page.Data, page.Total)
	}
}

// DailySalesSummary aggregates one day of invoicing.
func DailySalesSummary(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		branchID, err := validators.ParseQueryUUID(r, "branch_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		day := time.Now().UTC()
		if parsed, err := validators.ParseQueryDate(r, "date"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else if parsed != nil {
			day = *parsed
		}

		summary, err := svc.DailySummary(r.Context(), branchID, day)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}

// CustomerPendingPayments lists a customer's open invoices and balance.
func CustomerPendingPayments(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		customerID, err := validators.ParseURLUUID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pending, err := svc.PendingPayments(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, pending)
	}
}

func saleListQuery(r *http.Request) (sales.ListQuery, error) {
	branchID, err := validators.ParseQueryUUID(r, "branch_id")
	if err != nil {
		return sales.ListQuery{}, err
	}
	customerID, err := validators.ParseQueryUUID(r, "customer_id")
	if err != nil {
		return sales.ListQuery{}, err
	}

	var status *enums.PaymentStatus
	if raw := validators.ParseQueryString(r, "status"); raw != "" {
		parsed, err := enums.ParsePaymentStatus(raw)
		if err != nil {
			return sales.ListQuery{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment status")
		}
		status = &parsed
	}

	var channel *enums.SalesChannel
	if raw := validators.ParseQueryString(r, "channel"); raw != "" {
		parsed, err := enums.ParseSalesChannel(raw)
		if err != nil {
			return sales.ListQuery{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sales channel")
		}
		channel = &parsed
	}

	from, err := validators.ParseQueryDate(r, "from")
	if err != nil {
		return sales.ListQuery{}, err
	}
	to, err := validators.ParseQueryDate(r, "to")
	if err != nil {
		return sales.ListQuery{}, err
	}
	page, err := validators.ParsePagination(r)
	if err != nil {
		return sales.ListQuery{}, err
	}

	return sales.ListQuery{
		BranchID:   branchID,
		CustomerID: customerID,
		Status:     status,
		Channel:    channel,
		From:       from,
		To:         to,
		Pagination: page,
	}, nil
}
