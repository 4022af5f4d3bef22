package stock

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"warehouse.GO/core/apperror"
	"warehouse.GO/model/entity"
	inventoryRepo "warehouse.GO/model/repository/inventory"
	movementRepo "warehouse.GO/model/repository/movement"
	productRepo "warehouse.GO/model/repository/product"
	warehouseRepo "warehouse.GO/model/repository/warehouse"
)

const (
	AdjustSet      = "set"
	AdjustIncrease = "increase"
	AdjustDecrease = "decrease"
)

type AdjustInput struct {
	ProductID    uint   `json:"productId" validate:"required"`
	WarehouseID  uint   `json:"warehouseId" validate:"required"`
	LocationCode string `json:"locationCode" validate:"max=50"`
	Type         string `json:"type" validate:"required,oneof=set increase decrease"`
	Quantity     int64  `json:"quantity" validate:"gte=0"`
	Reason       string `json:"reason" validate:"required,max=255"`
}

type TransferInput struct {
	ProductID        uint   `json:"productId" validate:"required"`
	FromWarehouseID  uint   `json:"fromWarehouseId" validate:"required"`
	FromLocationCode string `json:"fromLocationCode" validate:"max=50"`
	ToWarehouseID    uint   `json:"toWarehouseId" validate:"required"`
	ToLocationCode   string `json:"toLocationCode" validate:"max=50"`
	Quantity         int64  `json:"quantity" validate:"required,gt=0"`
	Reason           string `json:"reason" validate:"max=255"`
}

// TransferResult is the pair of movements a transfer writes.
type TransferResult struct {
	Reference string                `json:"reference"`
	Out       *entity.StockMovement `json:"out"`
	In        *entity.StockMovement `json:"in"`
}

func (s *Service) loadTarget(db *gorm.DB, productID, warehouseID uint, location, field string) (*entity.Product, *entity.Warehouse, error) {
	p, err := productRepo.NewProductRepository(db).FindByID(productID)
	if err != nil {
		return nil, nil, apperror.FromDB(err, "Product")
	}
	w, err := warehouseRepo.NewWarehouseRepository(db).FindByID(warehouseID)
	if err != nil {
		return nil, nil, apperror.FromDB(err, "Warehouse")
	}
	if err := checkLocation(w, location, field); err != nil {
		return nil, nil, err
	}
	return p, w, nil
}

// Adjust changes on-hand stock of one inventory row by hand and appends an adjustment movement.
// The result may never drop below the reserved quantity.
func (s *Service) Adjust(ctx context.Context, actor *entity.User, in AdjustInput) (*entity.StockMovement, error) {
	in.LocationCode = entity.NormalizeCode(in.LocationCode)
	if in.Type != AdjustSet && in.Quantity <= 0 {
		return nil, apperror.Validation("Validation failed", apperror.FieldError{Field: "quantity", Message: "quantity must be greater than 0"})
	}
	p, _, err := s.loadTarget(s.db.WithContext(ctx), in.ProductID, in.WarehouseID, in.LocationCode, "locationCode")
	if err != nil {
		return nil, err
	}
	k := inventoryRepo.Key{ProductID: in.ProductID, WarehouseID: in.WarehouseID, LocationCode: in.LocationCode}
	var result *entity.StockMovement
	err = s.withWarehouses(ctx, []uint{in.WarehouseID}, func(tx *gorm.DB) error {
		inv := inventoryRepo.NewInventoryRepository(tx)
		now := s.now()
		var (
			bal   inventoryRepo.Balance
			delta int64
			err   error
		)
		switch in.Type {
		case AdjustIncrease:
			delta = in.Quantity
			bal, err = inv.Increase(k, in.Quantity, now)
		case AdjustDecrease:
			delta = -in.Quantity
			bal, err = inv.Decrease(k, in.Quantity, now)
			if errors.Is(err, inventoryRepo.ErrNotEnough) {
				return insufficient(tx, k, in.Quantity)
			}
		default:
			var current int64
			if row, gerr := inv.Get(k); gerr == nil {
				current = row.Quantity
			} else if !errors.Is(gerr, gorm.ErrRecordNotFound) {
				return gerr
			}
			delta = in.Quantity - current
			if delta == 0 {
				return apperror.BadRequest(fmt.Sprintf("Quantity of %s is already %d", p.SKU, current))
			}
			bal, err = inv.Set(k, current, in.Quantity, now)
			if errors.Is(err, inventoryRepo.ErrNotEnough) {
				return apperror.InsufficientStock(
					fmt.Sprintf("Quantity of %s cannot be set below its reserved quantity %d", p.SKU, bal.Reserved),
					map[string]interface{}{"productId": p.ID, "sku": p.SKU, "requested": in.Quantity, "reserved": bal.Reserved})
			}
			if errors.Is(err, inventoryRepo.ErrChanged) {
				return apperror.Conflict("Stock was modified by another request")
			}
		}
		if err != nil {
			return err
		}
		m := movement(k, entity.MovementAdjustment, delta, bal.Quantity, actor)
		m.ReferenceType = entity.RefAdjustment
		m.ReferenceNumber = "ADJ-" + strings.ToUpper(uuid.NewString()[:8])
		m.Reason = in.Reason
		m.Metadata = map[string]interface{}{"adjustType": in.Type, "requested": in.Quantity}
		if err := movementRepo.NewMovementRepository(tx).Create(m); err != nil {
			return err
		}
		result = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Transfer moves available stock from one location to another, possibly across warehouses.
func (s *Service) Transfer(ctx context.Context, actor *entity.User, in TransferInput) (*TransferResult, error) {
	in.FromLocationCode = entity.NormalizeCode(in.FromLocationCode)
	in.ToLocationCode = entity.NormalizeCode(in.ToLocationCode)
	if in.FromWarehouseID == in.ToWarehouseID && in.FromLocationCode == in.ToLocationCode {
		return nil, apperror.BadRequest("Source and destination are the same")
	}
	db := s.db.WithContext(ctx)
	if _, _, err := s.loadTarget(db, in.ProductID, in.FromWarehouseID, in.FromLocationCode, "fromLocationCode"); err != nil {
		return nil, err
	}
	_, to, err := s.loadTarget(db, in.ProductID, in.ToWarehouseID, in.ToLocationCode, "toLocationCode")
	if err != nil {
		return nil, err
	}
	if !to.IsActive {
		return nil, apperror.Validation("Validation failed", apperror.FieldError{Field: "toWarehouseId", Message: "warehouse is inactive"})
	}
	ref := "TRF-" + s.now().Format("20060102") + "-" + strings.ToUpper(uuid.NewString()[:8])
	from := inventoryRepo.Key{ProductID: in.ProductID, WarehouseID: in.FromWarehouseID, LocationCode: in.FromLocationCode}
	dest := inventoryRepo.Key{ProductID: in.ProductID, WarehouseID: in.ToWarehouseID, LocationCode: in.ToLocationCode}
	res := &TransferResult{Reference: ref}
	err = s.withWarehouses(ctx, []uint{in.FromWarehouseID, in.ToWarehouseID}, func(tx *gorm.DB) error {
		inv := inventoryRepo.NewInventoryRepository(tx)
		moves := movementRepo.NewMovementRepository(tx)
		now := s.now()
		outBal, err := inv.Decrease(from, in.Quantity, now)
		if errors.Is(err, inventoryRepo.ErrNotEnough) {
			return insufficient(tx, from, in.Quantity)
		}
		if err != nil {
			return err
		}
		inBal, err := inv.Increase(dest, in.Quantity, now)
		if err != nil {
			return err
		}
		res.Out = movement(from, entity.MovementTransferOut, -in.Quantity, outBal.Quantity, actor)
		res.In = movement(dest, entity.MovementTransferIn, in.Quantity, inBal.Quantity, actor)
		for _, m := range []*entity.StockMovement{res.Out, res.In} {
			m.ReferenceType = entity.RefTransfer
			m.ReferenceNumber = ref
			m.Reason = in.Reason
			m.Metadata = map[string]interface{}{
				"fromWarehouseId": in.FromWarehouseID, "fromLocationCode": in.FromLocationCode,
				"toWarehouseId": in.ToWarehouseID, "toLocationCode": in.ToLocationCode,
			}
			if err := moves.Create(m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
