package sales

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/omarhassan/retailops-backend/pkg/db/models"
	"github.com/omarhassan/retailops-backend/pkg/enums"
	apperrors "github.com/omarhassan/retailops-backend/pkg/errors"
)

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		total float64
		paid  float64
		want  enums.PaymentStatus
	}{
		{"nothing paid", 100, 0, enums.PaymentStatusUnpaid},
		{"partially paid", 100, 40, enums.PaymentStatusPartial},
		{"exactly paid", 100, 100, enums.PaymentStatusPaid},
		{"zero total", 0, 0, enums.PaymentStatusPaid},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := StatusFor(decimal.NewFromFloat(tc.total), decimal.NewFromFloat(tc.paid))
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestCheckAddPayment(t *testing.T) {
	t.Parallel()

	open := &models.SalesInvoice{
		Total:           decimal.NewFromInt(100),
		PaidAmount:      decimal.NewFromInt(40),
		RemainingAmount: decimal.NewFromInt(60),
		PaymentStatus:   enums.PaymentStatusPartial,
	}

	if err := CheckAddPayment(open, decimal.NewFromInt(60)); err != nil {
		t.Fatalf("expected exact settle to pass: %v", err)
	}
	if err := CheckAddPayment(open, decimal.NewFromInt(61)); err == nil {
		t.Fatal("expected overpayment to fail")
	} else if typed := apperrors.As(err); typed.Code() != apperrors.CodeValidation {
		t.Fatalf("expected validation code, got %s", typed.Code())
	}
	if err := CheckAddPayment(open, decimal.Zero); err == nil {
		t.Fatal("expected zero amount to fail")
	}

	paid := &models.SalesInvoice{
		Total:         decimal.NewFromInt(100),
		PaidAmount:    decimal.NewFromInt(100),
		PaymentStatus: enums.PaymentStatusPaid,
	}
	err := CheckAddPayment(paid, decimal.NewFromInt(1))
	if typed := apperrors.As(err); typed == nil || typed.Code() != apperrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestCheckDeliver(t *testing.T) {
	t.Parallel()

	if err := CheckDeliver(&models.SalesInvoice{PaymentStatus: enums.PaymentStatusPaid}); err != nil {
		t.Fatalf("expected paid undelivered invoice to pass: %v", err)
	}

	err := CheckDeliver(&models.SalesInvoice{PaymentStatus: enums.PaymentStatusPartial})
	if typed := apperrors.As(err); typed == nil || typed.Code() != apperrors.CodeStateConflict {
		t.Fatalf("expected state conflict for partial invoice, got %v", err)
	}

	err = CheckDeliver(&models.SalesInvoice{PaymentStatus: enums.PaymentStatusPaid, Delivered: true})
	if typed := apperrors.As(err); typed == nil || typed.Code() != apperrors.CodeStateConflict {
		t.Fatalf("expected state conflict for delivered invoice, got %v", err)
	}
}
