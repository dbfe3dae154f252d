package costing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/omarhassan/retailops-backend/internal/testdb"
	"github.com/omarhassan/retailops-backend/pkg/db/models"
	"github.com/omarhassan/retailops-backend/pkg/enums"
	apperrors "github.com/omarhassan/retailops-backend/pkg/errors"
)

func seedMovement(t *testing.T, db *gorm.DB, f testdb.Fixtures, productID uuid.UUID, qty int) {
	t.Helper()
	movementType := enums.MovementReceipt
	if qty < 0 {
		movementType = enums.MovementSale
	}
	movement := models.StockMovement{
		ID:              uuid.New(),
		ProductID:       productID,
		StockLocationID: f.Location.ID,
		QtyChange:       qty,
		MovementType:    movementType,
		RefTable:        "goods_receipts",
		RefID:           uuid.New(),
		CreatedBy:       f.User.ID,
	}
	if err := db.Create(&movement).Error; err != nil {
		t.Fatalf("seed movement: %v", err)
	}
}

func applyInTx(t *testing.T, db *gorm.DB, productID uuid.UUID, qty int, cost decimal.Decimal) (*models.Product, error) {
	t.Helper()
	engine := NewEngine()
	var updated *models.Product
	err := db.Transaction(func(tx *gorm.DB) error {
		product, err := engine.ApplyReceipt(context.Background(), tx, productID, qty, cost)
		if err != nil {
			return err
		}
		updated = product
		return nil
	})
	return updated, err
}

func TestApplyReceiptWeightedAverage(t *testing.T) {
	t.Parallel()

	db := testdb.Open(t)
	f := testdb.SeedBase(t, db)
	product := testdb.SeedProduct(t, db, "WAC1", decimal.NewFromInt(5), decimal.NewFromInt(9))
	seedMovement(t, db, f, product.ID, 10)

	// 10 on hand at 5.00, receiving 5 at 8.00 -> (50 + 40) / 15 = 6.00
	updated, err := applyInTx(t, db, product.ID, 5, decimal.NewFromInt(8))
	if err != nil {
		t.Fatalf("apply receipt: %v", err)
	}
	want := decimal.NewFromInt(6)
	if !updated.CostAvg.Equal(want) {
		t.Fatalf("expected average 6, got %s", updated.CostAvg)
	}
	if !updated.Cost.Equal(want) {
		t.Fatalf("expected cost to mirror average, got %s", updated.Cost)
	}

	var persisted models.Product
	if err := db.First(&persisted, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if !persisted.CostAvg.Equal(want) {
		t.Fatalf("expected persisted average 6, got %s", persisted.CostAvg)
	}
}

func TestApplyReceiptAdoptsBatchCostWhenEmpty(t *testing.T) {
	t.Parallel()

	db := testdb.Open(t)
	f := testdb.SeedBase(t, db)

	tests := []struct {
		name   string
		onHand int
	}{
		{"zero on hand", 0},
		{"negative on hand", -4},
	}
	for i, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			product := testdb.SeedProduct(t, db, "EMPTY"+string(rune('A'+i)), decimal.NewFromInt(5), decimal.NewFromInt(9))
			if tc.onHand != 0 {
				seedMovement(t, db, f, product.ID, tc.onHand)
			}
			updated, err := applyInTx(t, db, product.ID, 3, decimal.NewFromFloat(7.5))
			if err != nil {
				t.Fatalf("apply receipt: %v", err)
			}
			if !updated.CostAvg.Equal(decimal.NewFromFloat(7.5)) {
				t.Fatalf("expected batch cost adopted, got %s", updated.CostAvg)
			}
		})
	}
}

func TestApplyReceiptNonPositiveQtyIsNoop(t *testing.T) {
	t.Parallel()

	db := testdb.Open(t)
	f := testdb.SeedBase(t, db)
	product := testdb.SeedProduct(t, db, "NOOP1", decimal.NewFromInt(5), decimal.NewFromInt(9))
	seedMovement(t, db, f, product.ID, 10)

	updated, err := applyInTx(t, db, product.ID, 0, decimal.NewFromInt(99))
	if err != nil {
		t.Fatalf("apply receipt: %v", err)
	}
	if !updated.CostAvg.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("expected average unchanged, got %s", updated.CostAvg)
	}
}

func TestApplyReceiptFractionalAverage(t *testing.T) {
	t.Parallel()

	db := testdb.Open(t)
	f := testdb.SeedBase(t, db)
	product := testdb.SeedProduct(t, db, "FRAC1", decimal.NewFromInt(3), decimal.NewFromInt(9))
	seedMovement(t, db, f, product.ID, 7)

	// 7 at 3.00 plus 3 at 4.50 -> 34.5 / 10 = 3.45
	updated, err := applyInTx(t, db, product.ID, 3, decimal.NewFromFloat(4.5))
	if err != nil {
		t.Fatalf("apply receipt: %v", err)
	}
	if !updated.CostAvg.Equal(decimal.NewFromFloat(3.45)) {
		t.Fatalf("expected average 3.45, got %s", updated.CostAvg)
	}
}

func TestApplyReceiptErrors(t *testing.T) {
	t.Parallel()

	db := testdb.Open(t)
	testdb.SeedBase(t, db)

	_, err := applyInTx(t, db, uuid.New(), 5, decimal.NewFromInt(2))
	if typed := apperrors.As(err); typed == nil || typed.Code() != apperrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}

	product := testdb.SeedProduct(t, db, "ERR1", decimal.NewFromInt(5), decimal.NewFromInt(9))
	_, err = applyInTx(t, db, product.ID, 5, decimal.NewFromInt(-1))
	if typed := apperrors.As(err); typed == nil || typed.Code() != apperrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
