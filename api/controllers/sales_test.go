package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/omarhassan/retailops-backend/api/middleware"
	"github.com/omarhassan/retailops-backend/internal/sales"
	"github.com/omarhassan/retailops-backend/pkg/db/models"
	"github.com/omarhassan/retailops-backend/pkg/logger"
	"github.com/omarhassan/retailops-backend/pkg/pagination"
)

type stubSalesService struct {
	created   *sales.CreateSaleInput
	paid      *sales.AddPaymentInput
	delivered bool
	invoice   *models.SalesInvoice
}

func (s *stubSalesService) CreateSale(_ context.Context, input sales.CreateSaleInput) (*models.SalesInvoice, error) {
	s.created = &input
	return s.invoice, nil
}

func (s *stubSalesService) AddPayment(_ context.Context, input sales.AddPaymentInput) (*models.SalesInvoice, error) {
	s.paid = &input
	return s.invoice, nil
}

func (s *stubSalesService) DeliverSale(context.Context, uuid.UUID, uuid.UUID) (*models.SalesInvoice, error) {
	s.delivered = true
	return s.invoice, nil
}

func (s *stubSalesService) GetSale(context.Context, uuid.UUID) (*models.SalesInvoice, error) {
	return s.invoice, nil
}

func (s *stubSalesService) ListSales(context.Context, sales.ListQuery) (*pagination.Page[models.SalesInvoice], error) {
	return &pagination.Page[models.SalesInvoice]{Data: []models.SalesInvoice{*s.invoice}, Total: 1}, nil
}

func (s *stubSalesService) DailySummary(context.Context, *uuid.UUID, time.Time) (*sales.DailySummary, error) {
	return &sales.DailySummary{Date: "2026-01-15"}, nil
}

func (s *stubSalesService) PendingPayments(context.Context, uuid.UUID) (*sales.PendingPayments, error) {
	return &sales.PendingPayments{}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func TestCreateSale(t *testing.T) {
	logg := testLogger()
	userID := uuid.New()
	branchID := uuid.New()
	productID := uuid.New()

	body := `{
		"branch_id": "` + branchID.String() + `",
		"payment_method": "CASH",
		"deliver_now": true,
		"lines": [{"product_id": "` + productID.String() + `", "qty": 2, "unit_price": "50", "tax_rate_percent": "14"}]
	}`

	t.Run("missing user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", strings.NewReader(body))
		rec := httptest.NewRecorder()
		CreateSale(&stubSalesService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 when user missing, got %d", rec.Code)
		}
	})

	t.Run("invalid body", func(t *testing.T) {
		ctx := middleware.WithUserID(context.Background(), userID.String())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", strings.NewReader(`{"lines": []}`))
		req = req.WithContext(ctx)
		rec := httptest.NewRecorder()
		CreateSale(&stubSalesService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for empty lines, got %d", rec.Code)
		}
	})

	t.Run("invalid payment method", func(t *testing.T) {
		ctx := middleware.WithUserID(context.Background(), userID.String())
		bad := strings.Replace(body, "CASH", "BARTER", 1)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", strings.NewReader(bad))
		req = req.WithContext(ctx)
		rec := httptest.NewRecorder()
		CreateSale(&stubSalesService{}, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for bad method, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		stub := &stubSalesService{invoice: &models.SalesInvoice{ID: uuid.New(), InvoiceNo: "DT-20260115-0001"}}
		ctx := middleware.WithUserID(context.Background(), userID.String())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sales", strings.NewReader(body))
		req = req.WithContext(ctx)
		rec := httptest.NewRecorder()
		CreateSale(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.created == nil {
			t.Fatalf("expected CreateSale to be invoked")
		}
		if stub.created.CreatedBy != userID {
			t.Fatalf("expected actor %s, got %s", userID, stub.created.CreatedBy)
		}
		if stub.created.BranchID != branchID || len(stub.created.Lines) != 1 {
			t.Fatalf("input not mapped: %+v", stub.created)
		}
		if stub.created.Lines[0].Qty != 2 || !stub.created.Lines[0].UnitPrice.Equal(decimalFromString(t, "50")) {
			t.Fatalf("line not mapped: %+v", stub.created.Lines[0])
		}
		if !stub.created.DeliverNow {
			t.Fatalf("expected deliver_now mapped: %+v", stub.created)
		}

		var payload struct {
			Data struct {
				InvoiceNo string
			} `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if payload.Data.InvoiceNo != "DT-20260115-0001" {
			t.Fatalf("unexpected invoice no %q", payload.Data.InvoiceNo)
		}
	})
}

func TestAddSalePayment(t *testing.T) {
	logg := testLogger()
	userID := uuid.New()
	invoiceID := uuid.New()

	stub := &stubSalesService{invoice: &models.SalesInvoice{ID: invoiceID}}

	ctx := middleware.WithUserID(context.Background(), userID.String())
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("invoiceId", invoiceID.String())
	ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales/"+invoiceID.String()+"/payments", strings.NewReader(`{"amount": "30", "method": "CASH"}`))
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	AddSalePayment(stub, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if stub.paid == nil || stub.paid.InvoiceID != invoiceID {
		t.Fatalf("expected AddPayment to be invoked with invoice %s", invoiceID)
	}
	if !stub.paid.Amount.Equal(decimalFromString(t, "30")) {
		t.Fatalf("unexpected amount %s", stub.paid.Amount)
	}
}

func TestGetSaleInvalidID(t *testing.T) {
	logg := testLogger()

	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("invoiceId", "not-a-uuid")
	ctx := context.WithValue(context.Background(), chi.RouteCtxKey, routeCtx)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales/not-a-uuid", nil)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	GetSale(&stubSalesService{}, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid id, got %d", rec.Code)
	}
}

func TestListSalesRejectsBadStatus(t *testing.T) {
	logg := testLogger()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales?status=SETTLED", nil)
	rec := httptest.NewRecorder()
	ListSales(&stubSalesService{invoice: &models.SalesInvoice{}}, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", rec.Code)
	}
}
