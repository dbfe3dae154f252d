package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/omarhassan/retailops-backend/pkg/enums"
)

// SalesInvoice is created once per sale. The paid/remaining/status and
// delivery fields are the only mutable parts, and only the sales engine's
// payment and delivery operations touch them.
type SalesInvoice struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvoiceNo  string     `gorm:"column:invoice_no;uniqueIndex;not null"`
	BranchID   uuid.UUID  `gorm:"column:branch_id;type:uuid;not null;index"`
	CustomerID *uuid.UUID `gorm:"column:customer_id;type:uuid;index"`

	Subtotal      decimal.Decimal `gorm:"column:subtotal;type:numeric(20,4);not null;default:0"`
	TotalDiscount decimal.Decimal `gorm:"column:total_discount;type:numeric(20,4);not null;default:0"`
	TotalTax      decimal.Decimal `gorm:"column:total_tax;type:numeric(20,4);not null;default:0"`
	Total         decimal.Decimal `gorm:"column:total;type:numeric(20,4);not null;default:0"`

	CostOfGoods  decimal.Decimal `gorm:"column:cost_of_goods;type:numeric(20,4);not null;default:0"`
	GrossProfit  decimal.Decimal `gorm:"column:gross_profit;type:numeric(20,4);not null;default:0"`
	NetProfit    decimal.Decimal `gorm:"column:net_profit;type:numeric(20,4);not null;default:0"`
	ProfitMargin decimal.Decimal `gorm:"column:profit_margin;type:numeric(20,4);not null;default:0"`

	PaymentStatus   enums.PaymentStatus `gorm:"column:payment_status;not null"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;not null"`
	PaidAmount      decimal.Decimal     `gorm:"column:paid_amount;type:numeric(20,4);not null;default:0"`
	RemainingAmount decimal.Decimal     `gorm:"column:remaining_amount;type:numeric(20,4);not null;default:0"`

	Delivered    bool       `gorm:"column:delivered;not null;default:false"`
	DeliveryDate *time.Time `gorm:"column:delivery_date"`

	Channel            *enums.SalesChannel `gorm:"column:channel"`
	PlatformCommission decimal.Decimal     `gorm:"column:platform_commission;type:numeric(20,4);not null;default:0"`
	ShippingFee        decimal.Decimal     `gorm:"column:shipping_fee;type:numeric(20,4);not null;default:0"`

	Notes     *string   `gorm:"column:notes"`
	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Branch   *Branch            `gorm:"foreignKey:BranchID"`
	Customer *Customer          `gorm:"foreignKey:CustomerID"`
	Lines    []SalesInvoiceLine `gorm:"foreignKey:SalesInvoiceID;constraint:OnDelete:CASCADE"`
	Payments []Payment          `gorm:"foreignKey:SalesInvoiceID;constraint:OnDelete:CASCADE"`
}

// SalesInvoiceLine carries the per-line allocation results computed at sale
// time; it is never recomputed afterwards.
type SalesInvoiceLine struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SalesInvoiceID uuid.UUID       `gorm:"column:sales_invoice_id;type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Qty            int             `gorm:"column:qty;not null"`
	UnitPrice      decimal.Decimal `gorm:"column:unit_price;type:numeric(20,4);not null"`
	LineDiscount   decimal.Decimal `gorm:"column:line_discount;type:numeric(20,4);not null;default:0"`
	TaxRate        decimal.Decimal `gorm:"column:tax_rate;type:numeric(20,4);not null;default:0"`
	LineTotal      decimal.Decimal `gorm:"column:line_total;type:numeric(20,4);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}
