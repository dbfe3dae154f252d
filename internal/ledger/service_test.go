package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/omarhassan/retailops-backend/internal/testdb"
	"github.com/omarhassan/retailops-backend/pkg/db/models"
	"github.com/omarhassan/retailops-backend/pkg/enums"
	apperrors "github.com/omarhassan/retailops-backend/pkg/errors"
)

func TestRecordAndOnHand(t *testing.T) {
	t.Parallel()

	db := testdb.Open(t)
	f := testdb.SeedBase(t, db)
	product := testdb.SeedProduct(t, db, "SKU1", decimal.NewFromInt(5), decimal.NewFromInt(9))
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	entries := []RecordMovementInput{
		{ProductID: product.ID, StockLocationID: f.Location.ID, QtyChange: 10, MovementType: enums.MovementReceipt, RefTable: "goods_receipts", RefID: uuid.New(), CreatedBy: f.User.ID},
		{ProductID: product.ID, StockLocationID: f.Location.ID, QtyChange: -3, MovementType: enums.MovementSale, RefTable: "sales_invoices", RefID: uuid.New(), CreatedBy: f.User.ID},
		{ProductID: product.ID, StockLocationID: f.Location.ID, QtyChange: 1, MovementType: enums.MovementReturn, RefTable: "sales_returns", RefID: uuid.New(), CreatedBy: f.User.ID},
	}
	for _, input := range entries {
		if _, err := svc.Record(ctx, input); err != nil {
			t.Fatalf("record movement: %v", err)
		}
	}

	onHand, err := svc.OnHand(ctx, product.ID, nil)
	if err != nil {
		t.Fatalf("on hand: %v", err)
	}
	if onHand != 8 {
		t.Fatalf("expected on-hand 8, got %d", onHand)
	}

	level, err := svc.StockLevel(ctx, product.ID)
	if err != nil {
		t.Fatalf("stock level: %v", err)
	}
	if level.Total != 8 || len(level.Locations) != 1 {
		t.Fatalf("unexpected stock level: %+v", level)
	}
	if level.Locations[0].StockLocationID != f.Location.ID || level.Locations[0].Quantity != 8 {
		t.Fatalf("unexpected location quantity: %+v", level.Locations[0])
	}
}

func TestRecordSignConvention(t *testing.T) {
	t.Parallel()

	db := testdb.Open(t)
	f := testdb.SeedBase(t, db)
	product := testdb.SeedProduct(t, db, "SKU2", decimal.NewFromInt(5), decimal.NewFromInt(9))
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	tests := []struct {
		name         string
		movementType enums.MovementType
		qty          int
	}{
		{"receipt must be positive", enums.MovementReceipt, -5},
		{"receipt cannot be zero", enums.MovementReceipt, 0},
		{"sale must be negative", enums.MovementSale, 5},
		{"return must be positive", enums.MovementReturn, -1},
		{"adjustment cannot be zero", enums.MovementAdjustment, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Record(ctx, RecordMovementInput{
				ProductID:       product.ID,
				StockLocationID: f.Location.ID,
				QtyChange:       tc.qty,
				MovementType:    tc.movementType,
				RefTable:        "adjustments",
				RefID:           uuid.New(),
				CreatedBy:       f.User.ID,
			})
			if typed := apperrors.As(err); typed == nil || typed.Code() != apperrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestRecordValidation(t *testing.T) {
	t.Parallel()

	db := testdb.Open(t)
	f := testdb.SeedBase(t, db)
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()
	valid := RecordMovementInput{
		ProductID:       uuid.New(),
		StockLocationID: f.Location.ID,
		QtyChange:       5,
		MovementType:    enums.MovementReceipt,
		RefTable:        "goods_receipts",
		RefID:           uuid.New(),
		CreatedBy:       f.User.ID,
	}

	tests := []struct {
		name   string
		mutate func(input *RecordMovementInput)
	}{
		{"missing product", func(in *RecordMovementInput) { in.ProductID = uuid.Nil }},
		{"missing location", func(in *RecordMovementInput) { in.StockLocationID = uuid.Nil }},
		{"missing ref table", func(in *RecordMovementInput) { in.RefTable = "" }},
		{"missing ref id", func(in *RecordMovementInput) { in.RefID = uuid.Nil }},
		{"missing actor", func(in *RecordMovementInput) { in.CreatedBy = uuid.Nil }},
		{"invalid type", func(in *RecordMovementInput) { in.MovementType = enums.MovementType("TRANSFER") }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := valid
			tc.mutate(&input)
			if _, err := svc.Record(ctx, input); err == nil {
				t.Fatalf("expected validation error for %s", tc.name)
			}
		})
	}
}

func TestLowStock(t *testing.T) {
	t.Parallel()

	db := testdb.Open(t)
	f := testdb.SeedBase(t, db)
	low := testdb.SeedProduct(t, db, "LOW1", decimal.NewFromInt(5), decimal.NewFromInt(9))
	ok := testdb.SeedProduct(t, db, "OK1", decimal.NewFromInt(5), decimal.NewFromInt(9))
	if err := db.Model(&models.Product{}).Where("id IN ?", []uuid.UUID{low.ID, ok.ID}).Update("reorder_level", 10).Error; err != nil {
		t.Fatalf("set reorder levels: %v", err)
	}
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()

	// low ends at 4 on hand, ok at 25.
	seedMovements := []RecordMovementInput{
		{ProductID: low.ID, StockLocationID: f.Location.ID, QtyChange: 6, MovementType: enums.MovementReceipt, RefTable: "goods_receipts", RefID: uuid.New(), CreatedBy: f.User.ID},
		{ProductID: low.ID, StockLocationID: f.Location.ID, QtyChange: -2, MovementType: enums.MovementSale, RefTable: "sales_invoices", RefID: uuid.New(), CreatedBy: f.User.ID},
		{ProductID: ok.ID, StockLocationID: f.Location.ID, QtyChange: 25, MovementType: enums.MovementReceipt, RefTable: "goods_receipts", RefID: uuid.New(), CreatedBy: f.User.ID},
	}
	for _, input := range seedMovements {
		if _, err := svc.Record(ctx, input); err != nil {
			t.Fatalf("seed movement: %v", err)
		}
	}

	rows, err := svc.LowStock(ctx)
	if err != nil {
		t.Fatalf("low stock: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 low-stock row, got %d: %+v", len(rows), rows)
	}
	if rows[0].ProductID != low.ID || rows[0].OnHand != 4 || rows[0].ReorderLevel != 10 {
		t.Fatalf("unexpected low-stock row: %+v", rows[0])
	}
}
