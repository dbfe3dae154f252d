package returns

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/omarhassan/retailops-backend/internal/audit"
	"github.com/omarhassan/retailops-backend/internal/catalog"
	"github.com/omarhassan/retailops-backend/internal/costing"
	"github.com/omarhassan/retailops-backend/internal/docnum"
	"github.com/omarhassan/retailops-backend/internal/ledger"
	"github.com/omarhassan/retailops-backend/internal/receiving"
	"github.com/omarhassan/retailops-backend/internal/sales"
	"github.com/omarhassan/retailops-backend/internal/testdb"
	"github.com/omarhassan/retailops-backend/pkg/db"
	"github.com/omarhassan/retailops-backend/pkg/db/models"
	"github.com/omarhassan/retailops-backend/pkg/enums"
	apperrors "github.com/omarhassan/retailops-backend/pkg/errors"
	"github.com/omarhassan/retailops-backend/pkg/logger"
)

type testEnv struct {
	conn      *gorm.DB
	fixtures  testdb.Fixtures
	returns   Service
	sales     sales.Service
	receiving receiving.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conn := testdb.Open(t)
	f := testdb.SeedBase(t, conn)
	client := db.NewWithConn(conn)
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	numbers := docnum.NewService()
	catalogRepo := catalog.NewRepository(conn)

	ledgerSvc, err := ledger.NewService(ledger.NewRepository(conn))
	if err != nil {
		t.Fatalf("ledger service: %v", err)
	}
	auditSvc, err := audit.NewService(audit.NewRepository(conn))
	if err != nil {
		t.Fatalf("audit service: %v", err)
	}
	receivingSvc, err := receiving.NewService(receiving.ServiceParams{
		DB:             client,
		Repo:           receiving.NewRepository(conn),
		Catalog:        catalogRepo,
		Ledger:         ledgerSvc,
		Costing:        costing.NewEngine(),
		Numbers:        numbers,
		Logger:         logg,
		DefaultTaxRate: 14,
	})
	if err != nil {
		t.Fatalf("receiving service: %v", err)
	}
	salesRepo := sales.NewRepository(conn)
	salesSvc, err := sales.NewService(sales.ServiceParams{
		DB:      client,
		Repo:    salesRepo,
		Catalog: catalogRepo,
		Ledger:  ledgerSvc,
		Numbers: numbers,
		Logger:  logg,
	})
	if err != nil {
		t.Fatalf("sales service: %v", err)
	}
	returnsSvc, err := NewService(ServiceParams{
		DB:      client,
		Repo:    NewRepository(conn),
		Sales:   salesRepo,
		Catalog: catalogRepo,
		Ledger:  ledgerSvc,
		Audit:   auditSvc,
		Numbers: numbers,
		Logger:  logg,
	})
	if err != nil {
		t.Fatalf("returns service: %v", err)
	}
	return &testEnv{conn: conn, fixtures: f, returns: returnsSvc, sales: salesSvc, receiving: receivingSvc}
}

func (e *testEnv) sellDelivered(t *testing.T, productID uuid.UUID, qty int, price decimal.Decimal) *models.SalesInvoice {
	t.Helper()
	invoice, err := e.sales.CreateSale(context.Background(), sales.CreateSaleInput{
		BranchID:      e.fixtures.Branch.ID,
		CustomerID:    &e.fixtures.Customer.ID,
		PaymentMethod: enums.PaymentMethodCash,
		DeliverNow:    true,
		Lines: []sales.CreateSaleLineInput{
			{ProductID: productID, Qty: qty, UnitPrice: price},
		},
		CreatedBy: e.fixtures.User.ID,
	})
	if err != nil {
		t.Fatalf("create delivered sale: %v", err)
	}
	if !invoice.Delivered {
		t.Fatal("expected sale delivered on creation")
	}
	return invoice
}

func (e *testEnv) onHand(t *testing.T, productID uuid.UUID) int {
	t.Helper()
	var total int
	if err := e.conn.Model(&models.StockMovement{}).
		Select("COALESCE(SUM(qty_change), 0)").
		Where("product_id = ?", productID).
		Scan(&total).Error; err != nil {
		t.Fatalf("sum movements: %v", err)
	}
	return total
}

func TestCreateReturnPutsStockBack(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	product := testdb.SeedProduct(t, env.conn, "RET-A", decimal.NewFromInt(10), decimal.NewFromInt(20))
	ctx := context.Background()

	// Receive 100 at 10, sell 10 at 20 delivered, return 4.
	if _, err := env.receiving.ReceiveGoods(ctx, receiving.ReceiveGoodsInput{
		BranchID:    env.fixtures.Branch.ID,
		SupplierID:  env.fixtures.Supplier.ID,
		PaymentTerm: enums.PaymentTermCash,
		CreatedBy:   env.fixtures.User.ID,
		Lines: []receiving.ReceiveGoodsLineInput{
			{ProductID: product.ID, Qty: 100, Cost: decimal.NewFromInt(10)},
		},
	}); err != nil {
		t.Fatalf("receive goods: %v", err)
	}
	invoice := env.sellDelivered(t, product.ID, 10, decimal.NewFromInt(20))
	if qty := env.onHand(t, product.ID); qty != 90 {
		t.Fatalf("expected on-hand 90 after sale, got %d", qty)
	}

	ret, err := env.returns.CreateReturn(ctx, CreateReturnInput{
		InvoiceID: invoice.ID,
		CreatedBy: env.fixtures.User.ID,
		Lines: []CreateReturnLineInput{
			{ProductID: product.ID, Qty: 4, RefundAmount: decimal.NewFromInt(80)},
		},
	})
	if err != nil {
		t.Fatalf("create return: %v", err)
	}

	if ret.ReturnNo == "" || ret.ReturnNo[:7] != "RET-DT-" {
		t.Fatalf("unexpected return number: %s", ret.ReturnNo)
	}
	if !ret.TotalRefund.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("expected refund 80, got %s", ret.TotalRefund)
	}
	if qty := env.onHand(t, product.ID); qty != 94 {
		t.Fatalf("expected on-hand 94 after return, got %d", qty)
	}

	var movements []models.StockMovement
	if err := env.conn.Where("ref_id = ?", ret.ID).Find(&movements).Error; err != nil {
		t.Fatalf("load movements: %v", err)
	}
	if len(movements) != 1 || movements[0].MovementType != enums.MovementReturn || movements[0].QtyChange != 4 {
		t.Fatalf("unexpected return movement: %+v", movements)
	}

	var audits []models.ProductAudit
	if err := env.conn.Where("product_id = ?", product.ID).Find(&audits).Error; err != nil {
		t.Fatalf("load audits: %v", err)
	}
	if len(audits) != 1 || audits[0].Action != enums.AuditActionReturn {
		t.Fatalf("expected one RETURN audit record, got %+v", audits)
	}
}

func TestCreateReturnCumulativeGuard(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	product := testdb.SeedProduct(t, env.conn, "RET-B", decimal.NewFromInt(10), decimal.NewFromInt(20))
	ctx := context.Background()
	invoice := env.sellDelivered(t, product.ID, 5, decimal.NewFromInt(20))

	// 3 then 2 exhaust the sold quantity; 1 more must fail.
	for _, qty := range []int{3, 2} {
		if _, err := env.returns.CreateReturn(ctx, CreateReturnInput{
			InvoiceID: invoice.ID,
			CreatedBy: env.fixtures.User.ID,
			Lines: []CreateReturnLineInput{
				{ProductID: product.ID, Qty: qty, RefundAmount: decimal.NewFromInt(int64(qty) * 20)},
			},
		}); err != nil {
			t.Fatalf("return of %d: %v", qty, err)
		}
	}

	_, err := env.returns.CreateReturn(ctx, CreateReturnInput{
		InvoiceID: invoice.ID,
		CreatedBy: env.fixtures.User.ID,
		Lines: []CreateReturnLineInput{
			{ProductID: product.ID, Qty: 1, RefundAmount: decimal.NewFromInt(20)},
		},
	})
	if typed := apperrors.As(err); typed == nil || typed.Code() != apperrors.CodeValidation {
		t.Fatalf("expected validation error on over-return, got %v", err)
	}
}

func TestCreateReturnGuards(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	product := testdb.SeedProduct(t, env.conn, "RET-C", decimal.NewFromInt(10), decimal.NewFromInt(20))
	other := testdb.SeedProduct(t, env.conn, "RET-D", decimal.NewFromInt(10), decimal.NewFromInt(20))
	ctx := context.Background()

	// Undelivered invoice takes no returns.
	unpaid := decimal.Zero
	open, err := env.sales.CreateSale(ctx, sales.CreateSaleInput{
		BranchID:      env.fixtures.Branch.ID,
		PaymentMethod: enums.PaymentMethodCash,
		PaidAmount:    &unpaid,
		Lines: []sales.CreateSaleLineInput{
			{ProductID: product.ID, Qty: 2, UnitPrice: decimal.NewFromInt(20)},
		},
		CreatedBy: env.fixtures.User.ID,
	})
	if err != nil {
		t.Fatalf("create open sale: %v", err)
	}
	_, err = env.returns.CreateReturn(ctx, CreateReturnInput{
		InvoiceID: open.ID,
		CreatedBy: env.fixtures.User.ID,
		Lines: []CreateReturnLineInput{
			{ProductID: product.ID, Qty: 1, RefundAmount: decimal.NewFromInt(20)},
		},
	})
	if typed := apperrors.As(err); typed == nil || typed.Code() != apperrors.CodeStateConflict {
		t.Fatalf("expected state conflict for undelivered invoice, got %v", err)
	}

	invoice := env.sellDelivered(t, product.ID, 2, decimal.NewFromInt(20))

	tests := []struct {
		name     string
		input    CreateReturnInput
		wantCode apperrors.Code
	}{
		{
			"unknown invoice",
			CreateReturnInput{
				InvoiceID: uuid.New(),
				CreatedBy: env.fixtures.User.ID,
				Lines:     []CreateReturnLineInput{{ProductID: product.ID, Qty: 1, RefundAmount: decimal.NewFromInt(1)}},
			},
			apperrors.CodeNotFound,
		},
		{
			"product not on invoice",
			CreateReturnInput{
				InvoiceID: invoice.ID,
				CreatedBy: env.fixtures.User.ID,
				Lines:     []CreateReturnLineInput{{ProductID: other.ID, Qty: 1, RefundAmount: decimal.NewFromInt(1)}},
			},
			apperrors.CodeValidation,
		},
		{
			"zero quantity",
			CreateReturnInput{
				InvoiceID: invoice.ID,
				CreatedBy: env.fixtures.User.ID,
				Lines:     []CreateReturnLineInput{{ProductID: product.ID, Qty: 0, RefundAmount: decimal.NewFromInt(1)}},
			},
			apperrors.CodeValidation,
		},
		{
			"negative refund",
			CreateReturnInput{
				InvoiceID: invoice.ID,
				CreatedBy: env.fixtures.User.ID,
				Lines:     []CreateReturnLineInput{{ProductID: product.ID, Qty: 1, RefundAmount: decimal.NewFromInt(-1)}},
			},
			apperrors.CodeValidation,
		},
		{
			"no lines",
			CreateReturnInput{InvoiceID: invoice.ID, CreatedBy: env.fixtures.User.ID},
			apperrors.CodeValidation,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.returns.CreateReturn(ctx, tc.input)
			if typed := apperrors.As(err); typed == nil || typed.Code() != tc.wantCode {
				t.Fatalf("expected %s, got %v", tc.wantCode, err)
			}
		})
	}
}

func TestCreateReturnNeedsActiveLocation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	product := testdb.SeedProduct(t, env.conn, "RET-F", decimal.NewFromInt(10), decimal.NewFromInt(20))
	ctx := context.Background()
	invoice := env.sellDelivered(t, product.ID, 2, decimal.NewFromInt(20))

	// The branch loses its only location between sale and return.
	if err := env.conn.Model(&models.StockLocation{}).
		Where("id = ?", env.fixtures.Location.ID).
		Update("active", false).Error; err != nil {
		t.Fatalf("deactivate location: %v", err)
	}

	_, err := env.returns.CreateReturn(ctx, CreateReturnInput{
		InvoiceID: invoice.ID,
		CreatedBy: env.fixtures.User.ID,
		Lines: []CreateReturnLineInput{
			{ProductID: product.ID, Qty: 1, RefundAmount: decimal.NewFromInt(20)},
		},
	})
	if typed := apperrors.As(err); typed == nil || typed.Code() != apperrors.CodeValidation {
		t.Fatalf("expected validation error without a location, got %v", err)
	}
}

func TestGetAndListReturns(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	product := testdb.SeedProduct(t, env.conn, "RET-E", decimal.NewFromInt(10), decimal.NewFromInt(20))
	ctx := context.Background()
	invoice := env.sellDelivered(t, product.ID, 3, decimal.NewFromInt(20))

	created, err := env.returns.CreateReturn(ctx, CreateReturnInput{
		InvoiceID: invoice.ID,
		CreatedBy: env.fixtures.User.ID,
		Lines: []CreateReturnLineInput{
			{ProductID: product.ID, Qty: 1, RefundAmount: decimal.NewFromInt(20)},
		},
	})
	if err != nil {
		t.Fatalf("create return: %v", err)
	}

	got, err := env.returns.GetReturn(ctx, created.ID)
	if err != nil {
		t.Fatalf("get return: %v", err)
	}
	if got.ReturnNo != created.ReturnNo || len(got.Lines) != 1 {
		t.Fatalf("unexpected return detail: %+v", got)
	}

	page, err := env.returns.ListReturns(ctx, ListQuery{InvoiceID: &invoice.ID})
	if err != nil {
		t.Fatalf("list returns: %v", err)
	}
	if page.Total != 1 || len(page.Data) != 1 {
		t.Fatalf("unexpected list result: total=%d len=%d", page.Total, len(page.Data))
	}
}
