package testdb

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/omarhassan/retailops-backend/pkg/db/models"
)

// Fixtures holds the directory rows most workflow tests need.
type Fixtures struct {
	Branch   models.Branch
	Location models.StockLocation
	Supplier models.Supplier
	Customer models.Customer
	User     models.User
}

// SeedBase inserts one branch with an active location plus a supplier,
// customer, and user.
func SeedBase(t *testing.T, db *gorm.DB) Fixtures {
	t.Helper()
	f := Fixtures{
		Branch: models.Branch{
			ID:   uuid.New(),
			Name: "Downtown",
			Code: "DT",
		},
		Supplier: models.Supplier{ID: uuid.New(), Name: "Acme Wholesale", Active: true},
		Customer: models.Customer{ID: uuid.New(), Name: "Walk-in Regular", Active: true},
		User:     models.User{ID: uuid.New(), Username: "cashier1", FullName: "Cashier One", Active: true},
	}
	f.Branch.Active = true
	f.Location = models.StockLocation{
		ID:       uuid.New(),
		BranchID: f.Branch.ID,
		Name:     "Main Floor",
		Active:   true,
	}
	for _, row := range []any{&f.Branch, &f.Location, &f.Supplier, &f.Customer, &f.User} {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed fixtures: %v", err)
		}
	}
	return f
}

// SeedBranch inserts an active branch with no stock locations.
func SeedBranch(t *testing.T, db *gorm.DB, name, code string) models.Branch {
	t.Helper()
	branch := models.Branch{
		ID:     uuid.New(),
		Name:   name,
		Code:   code,
		Active: true,
	}
	if err := db.Create(&branch).Error; err != nil {
		t.Fatalf("seed branch: %v", err)
	}
	return branch
}

// SeedProduct inserts an active product with the given code and prices.
func SeedProduct(t *testing.T, db *gorm.DB, code string, cost, retail decimal.Decimal) models.Product {
	t.Helper()
	product := models.Product{
		ID:          uuid.New(),
		Code:        code,
		Barcode:     "bar-" + code,
		Name:        "Product " + code,
		Cost:        cost,
		CostAvg:     cost,
		RetailPrice: retail,
		Active:      true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}
