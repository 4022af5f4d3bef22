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
	inboundRepo "warehouse.GO/model/repository/inbound"
	inventoryRepo "warehouse.GO/model/repository/inventory"
	movementRepo "warehouse.GO/model/repository/movement"
	supplierRepo "warehouse.GO/model/repository/supplier"
)

type InboundItemInput struct {
	ProductID    uint            `json:"productId" validate:"required"`
	LocationCode string          `json:"locationCode" validate:"max=50"`
	Quantity     int64           `json:"quantity" validate:"required,gt=0"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	BatchNumber  string          `json:"batchNumber" validate:"max=64"`
	ExpiryDate   *time.Time      `json:"expiryDate"`
	Notes        string          `json:"notes" validate:"max=255"`
}

type InboundInput struct {
	Type            entity.InboundType `json:"type" validate:"omitempty,oneof=purchase return transfer other"`
	WarehouseID     uint               `json:"warehouseId" validate:"required"`
	SupplierID      *uint              `json:"supplierId"`
	ReferenceNumber string             `json:"referenceNumber" validate:"max=100"`
	ExpectedDate    *time.Time         `json:"expectedDate"`
	Notes           string             `json:"notes"`
	Items           []InboundItemInput `json:"items" validate:"required,min=1,dive"`
}

func (in InboundInput) lines() []line {
	out := make([]line, len(in.Items))
	for i, it := range in.Items {
		out[i] = line{ProductID: it.ProductID, LocationCode: entity.NormalizeCode(it.LocationCode), UnitPrice: it.UnitPrice}
	}
	return out
}

func (in InboundInput) items() []entity.InboundItem {
	out := make([]entity.InboundItem, len(in.Items))
	for i, it := range in.Items {
		out[i] = entity.InboundItem{
			ProductID:    it.ProductID,
			LocationCode: entity.NormalizeCode(it.LocationCode),
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			BatchNumber:  it.BatchNumber,
			ExpiryDate:   it.ExpiryDate,
			Notes:        it.Notes,
		}
	}
	return out
}

func (s *Service) checkInbound(db *gorm.DB, in InboundInput) error {
	if in.SupplierID != nil {
		if _, err := supplierRepo.NewSupplierRepository(db).FindByID(*in.SupplierID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.Validation("Validation failed", apperror.FieldError{Field: "supplierId", Message: "supplier not found"})
			}
			return err
		}
	}
	_, _, err := checkDocument(db, in.WarehouseID, in.lines(), false)
	return err
}

// CreateInbound stores a new draft inbound with computed totals.
func (s *Service) CreateInbound(ctx context.Context, actor *entity.User, in InboundInput) (*entity.Inbound, error) {
	db := s.db.WithContext(ctx)
	if err := s.checkInbound(db, in); err != nil {
		return nil, err
	}
	doc := &entity.Inbound{
		Number:          entity.NewDocumentNumber("IN", s.now()),
		Type:            in.Type,
		Status:          entity.StatusDraft,
		WarehouseID:     in.WarehouseID,
		SupplierID:      in.SupplierID,
		ReferenceNumber: in.ReferenceNumber,
		ExpectedDate:    in.ExpectedDate,
		Notes:           in.Notes,
		CreatedByID:     actor.ID,
		Items:           in.items(),
	}
	if doc.Type == "" {
		doc.Type = entity.InboundPurchase
	}
	doc.Recalculate()
	if err := inboundRepo.NewInboundRepository(db).Create(doc); err != nil {
		return nil, apperror.FromDB(err, "Inbound")
	}
	return s.Inbound(ctx, doc.ID)
}

// Inbound loads one inbound with its relations.
func (s *Service) Inbound(ctx context.Context, id uint) (*entity.Inbound, error) {
	doc, err := inboundRepo.NewInboundRepository(s.db.WithContext(ctx)).FindByID(id)
	if err != nil {
		return nil, apperror.FromDB(err, "Inbound")
	}
	return doc, nil
}

// UpdateInbound replaces header and items of a draft inbound.
func (s *Service) UpdateInbound(ctx context.Context, id uint, in InboundInput) (*entity.Inbound, error) {
	cur, err := s.Inbound(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur.Status != entity.StatusDraft {
		return nil, apperror.InvalidStatus("Only draft inbounds can be edited")
	}
	if err := s.checkInbound(s.db.WithContext(ctx), in); err != nil {
		return nil, err
	}
	doc := &entity.Inbound{ID: id, Items: in.items()}
	doc.Recalculate()
	typ := in.Type
	if typ == "" {
		typ = cur.Type
	}
	header := map[string]interface{}{
		"type":             typ,
		"warehouse_id":     in.WarehouseID,
		"supplier_id":      in.SupplierID,
		"reference_number": in.ReferenceNumber,
		"expected_date":    in.ExpectedDate,
		"notes":            in.Notes,
		"total_quantity":   doc.TotalQuantity,
		"total_amount":     doc.TotalAmount,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := inboundRepo.NewInboundRepository(tx)
		ok, err := repo.Transition(id, entity.StatusDraft, entity.StatusDraft, header)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.Conflict("Inbound was modified by another request")
		}
		return repo.ReplaceItems(doc, nil)
	})
	if err != nil {
		return nil, err
	}
	return s.Inbound(ctx, id)
}

// DeleteInbound removes a draft inbound.
func (s *Service) DeleteInbound(ctx context.Context, id uint) error {
	cur, err := s.Inbound(ctx, id)
	if err != nil {
		return err
	}
	if cur.Status != entity.StatusDraft {
		return apperror.InvalidStatus("Only draft inbounds can be deleted")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := inboundRepo.NewInboundRepository(tx).Delete(id, entity.StatusDraft)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.Conflict("Inbound was modified by another request")
		}
		return nil
	})
}

// transitionInbound applies a status change without stock effects.
func (s *Service) transitionInbound(ctx context.Context, id uint, to entity.DocumentStatus, extra map[string]interface{}) (*entity.Inbound, error) {
	cur, err := s.Inbound(ctx, id)
	if err != nil {
		return nil, err
	}
	if !entity.CanTransition(cur.Status, to) {
		return nil, transitionError("Inbound", cur.Status, to)
	}
	if to == entity.StatusPending && len(cur.Items) == 0 {
		return nil, apperror.BadRequest("Inbound has no items")
	}
	ok, err := inboundRepo.NewInboundRepository(s.db.WithContext(ctx)).Transition(id, cur.Status, to, extra)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.Conflict("Inbound was modified by another request")
	}
	s.cache.DeleteByTag(ctx, DashboardTag)
	return s.Inbound(ctx, id)
}

// SubmitInbound moves a draft to pending.
func (s *Service) SubmitInbound(ctx context.Context, id uint) (*entity.Inbound, error) {
	return s.transitionInbound(ctx, id, entity.StatusPending, nil)
}

// ApproveInbound moves a pending inbound to approved.
func (s *Service) ApproveInbound(ctx context.Context, id uint, actor *entity.User) (*entity.Inbound, error) {
	return s.transitionInbound(ctx, id, entity.StatusApproved, map[string]interface{}{
		"approved_by_id": actor.ID,
		"approved_at":    s.now(),
	})
}

// CancelInbound cancels an inbound that has not been completed. No stock was touched yet.
func (s *Service) CancelInbound(ctx context.Context, id uint, reason string) (*entity.Inbound, error) {
	return s.transitionInbound(ctx, id, entity.StatusCancelled, map[string]interface{}{
		"cancelled_at":  s.now(),
		"cancel_reason": reason,
	})
}

// CompleteInbound receives every item into inventory and appends one inbound movement per item.
func (s *Service) CompleteInbound(ctx context.Context, id uint, actor *entity.User) (*entity.Inbound, error) {
	cur, err := s.Inbound(ctx, id)
	if err != nil {
		return nil, err
	}
	if !entity.CanTransition(cur.Status, entity.StatusCompleted) {
		return nil, transitionError("Inbound", cur.Status, entity.StatusCompleted)
	}
	now := s.now()
	extra := map[string]interface{}{"completed_at": now}
	if cur.ReceivedDate == nil {
		extra["received_date"] = now
	}
	err = s.withWarehouses(ctx, []uint{cur.WarehouseID}, func(tx *gorm.DB) error {
		ok, err := inboundRepo.NewInboundRepository(tx).Transition(id, cur.Status, entity.StatusCompleted, extra)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.Conflict("Inbound was modified by another request")
		}
		inv := inventoryRepo.NewInventoryRepository(tx)
		moves := movementRepo.NewMovementRepository(tx)
		for _, it := range cur.Items {
			k := inventoryRepo.Key{ProductID: it.ProductID, WarehouseID: cur.WarehouseID, LocationCode: it.LocationCode}
			bal, err := inv.Increase(k, it.Quantity, now)
			if err != nil {
				return err
			}
			m := movement(k, entity.MovementInbound, it.Quantity, bal.Quantity, actor)
			m.ReferenceType = entity.RefInbound
			m.ReferenceID = cur.ID
			m.ReferenceNumber = cur.Number
			m.Reason = "Inbound " + cur.Number + " completed"
			if it.BatchNumber != "" {
				m.Metadata = map[string]interface{}{"batchNumber": it.BatchNumber}
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
	s.logger.WithFields(logrus.Fields{"inbound": cur.Number, "items": len(cur.Items)}).Info("inbound completed")
	return s.Inbound(ctx, id)
}
