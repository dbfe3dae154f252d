package docnum

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omarhassan/retailops-backend/internal/testdb"
	"github.com/omarhassan/retailops-backend/pkg/db/models"
	"github.com/omarhassan/retailops-backend/pkg/enums"
)

var testDay = time.Date(2026, time.January, 15, 10, 30, 0, 0, time.UTC)

func nextInTx(t *testing.T, db *gorm.DB, svc *Service, series, branchCode string, at time.Time) int {
	t.Helper()
	var seq int
	err := db.Transaction(func(tx *gorm.DB) error {
		got, err := svc.NextSeq(context.Background(), tx, series, branchCode, at)
		if err != nil {
			return err
		}
		seq = got
		return nil
	})
	if err != nil {
		t.Fatalf("next seq: %v", err)
	}
	return seq
}

func TestNextSeqIncrements(t *testing.T) {
	t.Parallel()

	db := testdb.Open(t)
	svc := NewService()

	for want := 1; want <= 3; want++ {
		if got := nextInTx(t, db, svc, SeriesGRN, "DT", testDay); got != want {
			t.Fatalf("expected seq %d, got %d", want, got)
		}
	}
}

func TestNextSeqIsolatedPerKey(t *testing.T) {
	t.Parallel()

	db := testdb.Open(t)
	svc := NewService()

	if got := nextInTx(t, db, svc, SeriesGRN, "DT", testDay); got != 1 {
		t.Fatalf("expected first GRN seq 1, got %d", got)
	}
	// Different series, branch, and day each start their own count.
	if got := nextInTx(t, db, svc, SeriesReturn, "DT", testDay); got != 1 {
		t.Fatalf("expected first RET seq 1, got %d", got)
	}
	if got := nextInTx(t, db, svc, SeriesGRN, "UP", testDay); got != 1 {
		t.Fatalf("expected other branch seq 1, got %d", got)
	}
	nextDay := testDay.Add(24 * time.Hour)
	if got := nextInTx(t, db, svc, SeriesGRN, "DT", nextDay); got != 1 {
		t.Fatalf("expected next day seq 1, got %d", got)
	}
	if got := nextInTx(t, db, svc, SeriesGRN, "DT", testDay); got != 2 {
		t.Fatalf("expected same key to continue at 2, got %d", got)
	}
}

func TestNextSeqSeedsFromExistingDocuments(t *testing.T) {
	t.Parallel()

	db := testdb.Open(t)
	f := testdb.SeedBase(t, db)
	day := Day(testDay)

	// Documents issued before the counter table existed.
	for _, seq := range []int{1, 2, 7} {
		grn := models.GoodsReceipt{
			ID:          uuid.New(),
			GRNNo:       FormatGRN("DT", day, seq),
			SupplierID:  f.Supplier.ID,
			BranchID:    f.Branch.ID,
			PaymentTerm: enums.PaymentTermCash,
			CreatedBy:   f.User.ID,
		}
		if err := db.Create(&grn).Error; err != nil {
			t.Fatalf("seed receipt: %v", err)
		}
	}

	svc := NewService()
	svc.RegisterSeeder(SeriesGRN, func(ctx context.Context, tx *gorm.DB, branchCode, d string) (int, error) {
		return MaxSuffix(ctx, tx, "goods_receipts", "grn_no", SeriesGRN+"-"+branchCode+"-"+d+"-")
	})

	if got := nextInTx(t, db, svc, SeriesGRN, "DT", testDay); got != 8 {
		t.Fatalf("expected seeding to continue at 8, got %d", got)
	}
	if got := nextInTx(t, db, svc, SeriesGRN, "DT", testDay); got != 9 {
		t.Fatalf("expected 9 after seeded counter, got %d", got)
	}
}

func TestRollbackDoesNotAdvanceCounter(t *testing.T) {
	t.Parallel()

	db := testdb.Open(t)
	svc := NewService()

	if got := nextInTx(t, db, svc, SeriesInvoice, "DT", testDay); got != 1 {
		t.Fatalf("expected seq 1, got %d", got)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := svc.NextSeq(context.Background(), tx, SeriesInvoice, "DT", testDay); err != nil {
			return err
		}
		return gorm.ErrInvalidData
	})
	if err == nil {
		t.Fatal("expected rollback error")
	}

	if got := nextInTx(t, db, svc, SeriesInvoice, "DT", testDay); got != 2 {
		t.Fatalf("expected rolled-back increment to be reissued as 2, got %d", got)
	}
}

func TestFormatters(t *testing.T) {
	t.Parallel()

	day := Day(testDay)
	if day != "20260115" {
		t.Fatalf("unexpected day render: %s", day)
	}
	if got := FormatGRN("DT", day, 3); got != "GRN-DT-20260115-0003" {
		t.Fatalf("unexpected GRN number: %s", got)
	}
	if got := FormatReturn("DT", day, 12); got != "RET-DT-20260115-0012" {
		t.Fatalf("unexpected return number: %s", got)
	}
	if got := FormatInvoice("POS", day, 42); got != "POS-20260115-0042" {
		t.Fatalf("unexpected invoice number: %s", got)
	}
}
