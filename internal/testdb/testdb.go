// Package testdb opens throwaway sqlite databases carrying the ledger
// schema, for use in package tests. Production runs on Postgres; the DDL
// here mirrors the goose migrations in sqlite dialect.
package testdb

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var schema = []string{
	`CREATE TABLE users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  full_name TEXT NOT NULL,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME
);`,
	`CREATE TABLE branches (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  code TEXT NOT NULL UNIQUE,
  invoice_prefix TEXT NOT NULL DEFAULT '',
  address TEXT,
  phone TEXT,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE stock_locations (
  id TEXT PRIMARY KEY,
  branch_id TEXT NOT NULL,
  name TEXT NOT NULL,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME
);`,
	`CREATE TABLE products (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  barcode TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  local_name TEXT,
  cost NUMERIC NOT NULL DEFAULT 0,
  cost_avg NUMERIC NOT NULL DEFAULT 0,
  retail_price NUMERIC NOT NULL DEFAULT 0,
  wholesale_price NUMERIC NOT NULL DEFAULT 0,
  reorder_level INTEGER NOT NULL DEFAULT 0,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE suppliers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  contact TEXT,
  phone TEXT,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME
);`,
	`CREATE TABLE customers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  phone TEXT,
  type TEXT,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME
);`,
	`CREATE TABLE stock_movements (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  stock_location_id TEXT NOT NULL,
  qty_change INTEGER NOT NULL,
  movement_type TEXT NOT NULL,
  ref_table TEXT NOT NULL,
  ref_id TEXT NOT NULL,
  notes TEXT,
  created_by TEXT NOT NULL,
  created_at DATETIME
);`,
	`CREATE TABLE goods_receipts (
  id TEXT PRIMARY KEY,
  grn_no TEXT NOT NULL UNIQUE,
  supplier_id TEXT NOT NULL,
  branch_id TEXT NOT NULL,
  payment_term TEXT NOT NULL,
  tax_rate NUMERIC NOT NULL DEFAULT 0,
  subtotal NUMERIC NOT NULL DEFAULT 0,
  tax_amount NUMERIC NOT NULL DEFAULT 0,
  total NUMERIC NOT NULL DEFAULT 0,
  notes TEXT,
  created_by TEXT NOT NULL,
  created_at DATETIME
);`,
	`CREATE TABLE goods_receipt_lines (
  id TEXT PRIMARY KEY,
  goods_receipt_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  qty INTEGER NOT NULL,
  cost NUMERIC NOT NULL
);`,
	`CREATE TABLE sales_invoices (
  id TEXT PRIMARY KEY,
  invoice_no TEXT NOT NULL UNIQUE,
  branch_id TEXT NOT NULL,
  customer_id TEXT,
  subtotal NUMERIC NOT NULL DEFAULT 0,
  total_discount NUMERIC NOT NULL DEFAULT 0,
  total_tax NUMERIC NOT NULL DEFAULT 0,
  total NUMERIC NOT NULL DEFAULT 0,
  cost_of_goods NUMERIC NOT NULL DEFAULT 0,
  gross_profit NUMERIC NOT NULL DEFAULT 0,
  net_profit NUMERIC NOT NULL DEFAULT 0,
  profit_margin NUMERIC NOT NULL DEFAULT 0,
  payment_status TEXT NOT NULL,
  payment_method TEXT NOT NULL,
  paid_amount NUMERIC NOT NULL DEFAULT 0,
  remaining_amount NUMERIC NOT NULL DEFAULT 0,
  delivered INTEGER NOT NULL DEFAULT 0,
  delivery_date DATETIME,
  channel TEXT,
  platform_commission NUMERIC NOT NULL DEFAULT 0,
  shipping_fee NUMERIC NOT NULL DEFAULT 0,
  notes TEXT,
  created_by TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE sales_invoice_lines (
  id TEXT PRIMARY KEY,
  sales_invoice_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  qty INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  line_discount NUMERIC NOT NULL DEFAULT 0,
  tax_rate NUMERIC NOT NULL DEFAULT 0,
  line_total NUMERIC NOT NULL
);`,
	`CREATE TABLE payments (
  id TEXT PRIMARY KEY,
  sales_invoice_id TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  payment_method TEXT NOT NULL,
  notes TEXT,
  created_by TEXT NOT NULL,
  created_at DATETIME
);`,
	`CREATE TABLE sales_returns (
  id TEXT PRIMARY KEY,
  return_no TEXT NOT NULL UNIQUE,
  sales_invoice_id TEXT NOT NULL,
  branch_id TEXT NOT NULL,
  total_refund NUMERIC NOT NULL DEFAULT 0,
  reason TEXT,
  created_by TEXT NOT NULL,
  created_at DATETIME
);`,
	`CREATE TABLE sales_return_lines (
  id TEXT PRIMARY KEY,
  sales_return_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  qty_returned INTEGER NOT NULL,
  refund_amount NUMERIC NOT NULL
);`,
	`CREATE TABLE product_audits (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  action TEXT NOT NULL,
  old_data TEXT,
  new_data TEXT,
  user_id TEXT NOT NULL,
  created_at DATETIME
);`,
	`CREATE TABLE document_counters (
  series TEXT NOT NULL,
  branch_code TEXT NOT NULL,
  day TEXT NOT NULL,
  last_seq INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (series, branch_code, day)
);`,
}

// Open returns a fresh in-memory database seeded with the full schema.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:testdb_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	for _, ddl := range schema {
		if err := db.Exec(ddl).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}
