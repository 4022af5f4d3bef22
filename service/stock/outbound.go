package stock

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"warehouse.GO/core/apperror"
	"warehouse.GO/model/entity"
	customerRepo "warehouse.GO/model/repository/customer"
	inventoryRepo "warehouse.GO/model/repository/inventory"
	movementRepo "warehouse.GO/model/repository/movement"
	outboundRepo "warehouse.GO/model/repository/outbound"
)

type OutboundItemInput struct {
	ProductID    uint            `json:"productId" validate:"required"`
	LocationCode string          `json:"locationCode" validate:"max=50"`
	Quantity     int64           `json:"quantity" validate:"required,gt=0"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Notes        string          `json:"notes" validate:"max=255"`
}

type OutboundInput struct {
	Type            entity.OutboundType `json:"type" validate:"omitempty,oneof=sale transfer return disposal"`
	WarehouseID     uint                `json:"warehouseId" validate:"required"`
	CustomerID      *uint               `json:"customerId"`
	ReferenceNumber string              `json:"referenceNumber" validate:"max=100"`
	ExpectedDate    *time.Time          `json:"expectedDate"`
	ShippingAddress string              `json:"shippingAddress"`
	Notes           string              `json:"notes"`
	Items           []OutboundItemInput `json:"items" validate:"required,min=1,dive"`
}

func (in OutboundInput) lines() []line {
	out := make([]line, len(in.Items))
	for i, it := range in.Items {
		out[i] = line{ProductID: it.ProductID, LocationCode: entity.NormalizeCode(it.LocationCode), UnitPrice: it.UnitPrice}
	}
	return out
}

func (in OutboundInput) items(products map[uint]entity.Product) []entity.OutboundItem {
	out := make([]entity.OutboundItem, len(in.Items))
	for i, it := range in.Items {
		price := it.UnitPrice
		if price.IsZero() {
			price = products[it.ProductID].SellingPrice
		}
		out[i] = entity.OutboundItem{
			ProductID:    it.ProductID,
			LocationCode: entity.NormalizeCode(it.LocationCode),
			Quantity:     it.Quantity,
			UnitPrice:    price,
			Notes:        it.Notes,
		}
	}
	return out
}

func (s *Service) checkOutbound(db *gorm.DB, in OutboundInput) (map[uint]entity.Product, error) {
	if in.CustomerID != nil {
		if _, err := customerRepo.NewCustomerRepository(db).FindByID(*in.CustomerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.Validation("Validation failed", apperror.FieldError{Field: "customerId", Message: "customer not found"})
			}
			return nil, err
		}
	}
	_, products, err := checkDocument(db, in.WarehouseID, in.lines(), true)
	return products, err
}

// CreateOutbound stores a new draft outbound. Lines without a unit price use the product's selling price.
func (s *Service) CreateOutbound(ctx context.Context, actor *entity.User, in OutboundInput) (*entity.Outbound, error) {
	db := s.db.WithContext(ctx)
	products, err := s.checkOutbound(db, in)
	if err != nil {
		return nil, err
	}
	doc := &entity.Outbound{
		Number:          entity.NewDocumentNumber("OUT", s.now()),
		Type:            in.Type,
		Status:          entity.StatusDraft,
		WarehouseID:     in.WarehouseID,
		CustomerID:      in.CustomerID,
		ReferenceNumber: in.ReferenceNumber,
		ExpectedDate:    in.ExpectedDate,
		ShippingAddress: in.ShippingAddress,
		Notes:           in.Notes,
		CreatedByID:     actor.ID,
		Items:           in.items(products),
	}
	if doc.Type == "" {
		doc.Type = entity.OutboundSale
	}
	doc.Recalculate()
	if err := outboundRepo.NewOutboundRepository(db).Create(doc); err != nil {
		return nil, apperror.FromDB(err, "Outbound")
	}
	return s.Outbound(ctx, doc.ID)
}

// Outbound loads one outbound with its relations.
func (s *Service) Outbound(ctx context.Context, id uint) (*entity.Outbound, error) {
	doc, err := outboundRepo.NewOutboundRepository(s.db.WithContext(ctx)).FindByID(id)
	if err != nil {
		return nil, apperror.FromDB(err, "Outbound")
	}
	return doc, nil
}

// UpdateOutbound replaces header and items of a draft outbound.
func (s *Service) UpdateOutbound(ctx context.Context, id uint, in OutboundInput) (*entity.Outbound, error) {
	cur, err := s.Outbound(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur.Status != entity.StatusDraft {
		return nil, apperror.InvalidStatus("Only draft outbounds can be edited")
	}
	products, err := s.checkOutbound(s.db.WithContext(ctx), in)
	if err != nil {
		return nil, err
	}
	doc := &entity.Outbound{ID: id, Items: in.items(products)}
	doc.Recalculate()
	typ := in.Type
	if typ == "" {
		typ = cur.Type
	}
	header := map[string]interface{}{
		"type":             typ,
		"warehouse_id":     in.WarehouseID,
		"customer_id":      in.CustomerID,
		"reference_number": in.ReferenceNumber,
		"expected_date":    in.ExpectedDate,
		"shipping_address": in.ShippingAddress,
		"notes":            in.Notes,
		"total_quantity":   doc.TotalQuantity,
		"total_amount":     doc.TotalAmount,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := outboundRepo.NewOutboundRepository(tx)
		ok, err := repo.Transition(id, entity.StatusDraft, entity.StatusDraft, header)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.Conflict("Outbound was modified by another request")
		}
		return repo.ReplaceItems(doc, nil)
	})
	if err != nil {
		return nil, err
	}
	return s.Outbound(ctx, id)
}

// DeleteOutbound removes a draft outbound.
func (s *Service) DeleteOutbound(ctx context.Context, id uint) error {
	cur, err := s.Outbound(ctx, id)
	if err != nil {
		return err
	}
	if cur.Status != entity.StatusDraft {
		return apperror.InvalidStatus("Only draft outbounds can be deleted")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := outboundRepo.NewOutboundRepository(tx).Delete(id, entity.StatusDraft)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.Conflict("Outbound was modified by another request")
		}
		return nil
	})
}

// SubmitOutbound moves a draft to pending.
func (s *Service) SubmitOutbound(ctx context.Context, id uint) (*entity.Outbound, error) {
	cur, err := s.Outbound(ctx, id)
	if err != nil {
		return nil, err
	}
	if !entity.CanTransition(cur.Status, entity.StatusPending) {
		return nil, transitionError("Outbound", cur.Status, entity.StatusPending)
	}
	if len(cur.Items) == 0 {
		return nil, apperror.BadRequest("Outbound has no items")
	}
	ok, err := outboundRepo.NewOutboundRepository(s.db.WithContext(ctx)).Transition(id, cur.Status, entity.StatusPending, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.Conflict("Outbound was modified by another request")
	}
	s.cache.DeleteByTag(ctx, DashboardTag)
	return s.Outbound(ctx, id)
}

// stockStep runs one inventory change for every item of an outbound and records its movement.
type stockStep func(inv *inventoryRepo.InventoryRepository, k inventoryRepo.Key, qty int64) (inventoryRepo.Balance, error)

func (s *Service) outboundStock(ctx context.Context, cur *entity.Outbound, to entity.DocumentStatus, extra map[string]interface{},
	typ entity.MovementType, step stockStep, actor *entity.User, reason string) error {
	return s.withWarehouses(ctx, []uint{cur.WarehouseID}, func(tx *gorm.DB) error {
		ok, err := outboundRepo.NewOutboundRepository(tx).Transition(cur.ID, cur.Status, to, extra)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.Conflict("Outbound was modified by another request")
		}
		if step == nil {
			return nil
		}
		inv := inventoryRepo.NewInventoryRepository(tx)
		moves := movementRepo.NewMovementRepository(tx)
		for _, it := range cur.Items {
			k := inventoryRepo.Key{ProductID: it.ProductID, WarehouseID: cur.WarehouseID, LocationCode: it.LocationCode}
			bal, err := step(inv, k, it.Quantity)
			if errors.Is(err, inventoryRepo.ErrNotEnough) {
				return insufficient(tx, k, it.Quantity)
			}
			if err != nil {
				return err
			}
			var m *entity.StockMovement
			switch typ {
			case entity.MovementReservation:
				m = movement(k, typ, it.Quantity, bal.Reserved, actor)
			case entity.MovementRelease:
				m = movement(k, typ, -it.Quantity, bal.Reserved, actor)
			default:
				m = movement(k, typ, -it.Quantity, bal.Quantity, actor)
			}
			m.ReferenceType = entity.RefOutbound
			m.ReferenceID = cur.ID
			m.ReferenceNumber = cur.Number
			m.Reason = reason
			if err := moves.Create(m); err != nil {
				return err
			}
		}
		return nil
	})
}

// ApproveOutbound reserves stock for every item. Any shortfall rolls the whole approval back.
func (s *Service) ApproveOutbound(ctx context.Context, id uint, actor *entity.User) (*entity.Outbound, error) {
	cur, err := s.Outbound(ctx, id)
	if err != nil {
		return nil, err
	}
	if !entity.CanTransition(cur.Status, entity.StatusApproved) {
		return nil, transitionError("Outbound", cur.Status, entity.StatusApproved)
	}
	extra := map[string]interface{}{"approved_by_id": actor.ID, "approved_at": s.now()}
	reserve := func(inv *inventoryRepo.InventoryRepository, k inventoryRepo.Key, q int64) (inventoryRepo.Balance, error) {
		return inv.Reserve(k, q)
	}
	if err := s.outboundStock(ctx, cur, entity.StatusApproved, extra, entity.MovementReservation, reserve, actor,
		"Reserved for outbound "+cur.Number); err != nil {
		return nil, err
	}
	return s.Outbound(ctx, id)
}

// CompleteOutbound ships the reserved stock.
func (s *Service) CompleteOutbound(ctx context.Context, id uint, actor *entity.User) (*entity.Outbound, error) {
	cur, err := s.Outbound(ctx, id)
	if err != nil {
		return nil, err
	}
	if !entity.CanTransition(cur.Status, entity.StatusCompleted) {
		return nil, transitionError("Outbound", cur.Status, entity.StatusCompleted)
	}
	now := s.now()
	extra := map[string]interface{}{"completed_at": now}
	if cur.ShippedDate == nil {
		extra["shipped_date"] = now
	}
	consume := func(inv *inventoryRepo.InventoryRepository, k inventoryRepo.Key, q int64) (inventoryRepo.Balance, error) {
		return inv.Consume(k, q, now)
	}
	if err := s.outboundStock(ctx, cur, entity.StatusCompleted, extra, entity.MovementOutbound, consume, actor,
		"Outbound "+cur.Number+" completed"); err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{"outbound": cur.Number, "items": len(cur.Items)}).Info("outbound completed")
	return s.Outbound(ctx, id)
}

// CancelOutbound cancels an outbound; an approved one gives its reservations back.
func (s *Service) CancelOutbound(ctx context.Context, id uint, actor *entity.User, reason string) (*entity.Outbound, error) {
	cur, err := s.Outbound(ctx, id)
	if err != nil {
		return nil, err
	}
	if !entity.CanTransition(cur.Status, entity.StatusCancelled) {
		return nil, transitionError("Outbound", cur.Status, entity.StatusCancelled)
	}
	extra := map[string]interface{}{"cancelled_at": s.now(), "cancel_reason": reason}
	var release stockStep
	if cur.Status == entity.StatusApproved {
		release = func(inv *inventoryRepo.InventoryRepository, k inventoryRepo.Key, q int64) (inventoryRepo.Balance, error) {
			return inv.Release(k, q)
		}
	}
	if err := s.outboundStock(ctx, cur, entity.StatusCancelled, extra, entity.MovementRelease, release, actor,
		"Outbound "+cur.Number+" cancelled"); err != nil {
		return nil, err
	}
	return s.Outbound(ctx, id)
}
