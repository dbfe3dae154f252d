package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/omarhassan/retailops-backend/pkg/db/models"
	"github.com/omarhassan/retailops-backend/pkg/enums"
	apperrors "github.com/omarhassan/retailops-backend/pkg/errors"
)

// Service defines operations that append to and read from the stock
// movement ledger. On-hand stock is always derived from the signed sum of
// movements; nothing in the system keeps a cached quantity.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Record(ctx context.Context, input RecordMovementInput) (*models.StockMovement, error)
	OnHand(ctx context.Context, productID uuid.UUID, locationID *uuid.UUID) (int, error)
	StockLevel(ctx context.Context, productID uuid.UUID) (*StockLevel, error)
	LowStock(ctx context.Context) ([]LowStockRow, error)
	Movements(ctx context.Context, refTable string, refID uuid.UUID) ([]models.StockMovement, error)
}

type service struct {
	repo Repository
}

// RecordMovementInput captures the immutable data a ledger entry requires.
type RecordMovementInput struct {
	ProductID       uuid.UUID
	StockLocationID uuid.UUID
	QtyChange       int
	MovementType    enums.MovementType
	RefTable        string
	RefID           uuid.UUID
	Notes           *string
	CreatedBy       uuid.UUID
}

// StockLevel is the on-hand picture for one product.
type StockLevel struct {
	ProductID uuid.UUID          `json:"product_id"`
	Total     int                `json:"total"`
	Locations []LocationQuantity `json:"locations"`
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx)}
}

// Record appends one movement. It rejects malformed entries only; whether a
// movement makes business sense is the calling workflow's responsibility.
func (s *service) Record(ctx context.Context, input RecordMovementInput) (*models.StockMovement, error) {
	if input.ProductID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "product id is required")
	}
	if input.StockLocationID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "stock location id is required")
	}
	if input.RefTable == "" || input.RefID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "movement reference is required")
	}
	if input.CreatedBy == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "created by is required")
	}
	if !input.MovementType.IsValid() {
		return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid movement type %q", input.MovementType))
	}
	if err := checkSign(input.MovementType, input.QtyChange); err != nil {
		return nil, err
	}

	movement := &models.StockMovement{
		ID:              uuid.New(),
		ProductID:       input.ProductID,
		StockLocationID: input.StockLocationID,
		QtyChange:       input.QtyChange,
		MovementType:    input.MovementType,
		RefTable:        input.RefTable,
		RefID:           input.RefID,
		Notes:           input.Notes,
		CreatedBy:       input.CreatedBy,
	}
	if err := s.repo.Create(ctx, movement); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "appending stock movement")
	}
	return movement, nil
}

// checkSign enforces the ledger's sign convention: receipts and returns add
// stock, sales remove it, adjustments move either way but never zero.
func checkSign(movementType enums.MovementType, qtyChange int) error {
	switch movementType {
	case enums.MovementReceipt, enums.MovementReturn:
		if qtyChange <= 0 {
			return apperrors.New(apperrors.CodeValidation, fmt.Sprintf("%s movements require a positive quantity", movementType))
		}
	case enums.MovementSale:
		if qtyChange >= 0 {
			return apperrors.New(apperrors.CodeValidation, "SALE movements require a negative quantity")
		}
	case enums.MovementAdjustment:
		if qtyChange == 0 {
			return apperrors.New(apperrors.CodeValidation, "ADJUSTMENT movements require a non-zero quantity")
		}
	}
	return nil
}

func (s *service) OnHand(ctx context.Context, productID uuid.UUID, locationID *uuid.UUID) (int, error) {
	if productID == uuid.Nil {
		return 0, apperrors.New(apperrors.CodeValidation, "product id is required")
	}
	total, err := s.repo.SumQuantity(ctx, productID, locationID)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeInternal, err, "summing stock movements")
	}
	return total, nil
}

func (s *service) StockLevel(ctx context.Context, productID uuid.UUID) (*StockLevel, error) {
	if productID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "product id is required")
	}
	locations, err := s.repo.SumByLocation(ctx, productID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "summing stock movements by location")
	}
	level := &StockLevel{ProductID: productID, Locations: locations}
	for _, loc := range locations {
		level.Total += loc.Quantity
	}
	return level, nil
}

func (s *service) LowStock(ctx context.Context) ([]LowStockRow, error) {
	rows, err := s.repo.LowStock(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "querying low stock")
	}
	return rows, nil
}

// Movements returns the ledger entries written for one source document.
func (s *service) Movements(ctx context.Context, refTable string, refID uuid.UUID) ([]models.StockMovement, error) {
	if refTable == "" || refID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "movement reference is required")
	}
	movements, err := s.repo.ListByRef(ctx, refTable, refID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInternal, err, "listing stock movements")
	}
	return movements, nil
}
