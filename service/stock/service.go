// Package stock owns every operation that changes inventory: the inbound/outbound workflow,
// manual adjustments and transfers. Each operation runs in one database transaction.
package stock

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"warehouse.GO/config"
	"warehouse.GO/core/apperror"
	"warehouse.GO/core/cache"
	"warehouse.GO/core/lock"
	"warehouse.GO/model/entity"
	inventoryRepo "warehouse.GO/model/repository/inventory"
	productRepo "warehouse.GO/model/repository/product"
)

// DashboardTag is the cache tag invalidated after every committed stock change.
const DashboardTag = "dashboard"

type Service struct {
	db     *gorm.DB
	locker *lock.Locker
	cache  *cache.Cache
	logger *logrus.Logger
	now    func() time.Time
}

func NewService(db *gorm.DB, locker *lock.Locker, c *cache.Cache, logger *logrus.Logger) *Service {
	return &Service{db: db, locker: locker, cache: c, logger: logger, now: time.Now}
}

// withWarehouses holds the stock locks of the given warehouses (in id order) while fn runs
// inside a transaction, then invalidates the dashboard cache when fn committed.
func (s *Service) withWarehouses(ctx context.Context, warehouseIDs []uint, fn func(tx *gorm.DB) error) error {
	ids := append([]uint(nil), warehouseIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var last uint
	for i, id := range ids {
		if i > 0 && id == last {
			continue
		}
		last = id
		release, err := s.locker.Acquire(ctx, fmt.Sprintf("lock:stock:warehouse:%d", id))
		if err != nil {
			return err
		}
		defer release()
	}
	if err := s.db.WithContext(ctx).Transaction(fn); err != nil {
		return err
	}
	s.cache.DeleteByTag(ctx, DashboardTag)
	return nil
}

// movement builds a ledger entry for a balance change of k.
func movement(k inventoryRepo.Key, typ entity.MovementType, delta, after int64, actor *entity.User) *entity.StockMovement {
	m := &entity.StockMovement{
		ProductID:     k.ProductID,
		WarehouseID:   k.WarehouseID,
		LocationCode:  k.LocationCode,
		Type:          typ,
		Quantity:      delta,
		BalanceBefore: after - delta,
		BalanceAfter:  after,
	}
	if actor != nil {
		id := actor.ID
		m.CreatedByID = &id
	}
	return m
}

// insufficient builds the INSUFFICIENT_STOCK error for k reading the current availability through tx.
func insufficient(tx *gorm.DB, k inventoryRepo.Key, requested int64) error {
	var available int64
	if inv, err := inventoryRepo.NewInventoryRepository(tx).Get(k); err == nil {
		available = inv.AvailableQuantity
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	sku := fmt.Sprintf("#%d", k.ProductID)
	if p, err := productRepo.NewProductRepository(tx).FindByID(k.ProductID); err == nil {
		sku = p.SKU
	}
	msg := fmt.Sprintf("Insufficient stock for %s: requested %d, available %d", sku, requested, available)
	return apperror.InsufficientStock(msg, map[string]interface{}{
		"productId":    k.ProductID,
		"sku":          sku,
		"warehouseId":  k.WarehouseID,
		"locationCode": k.LocationCode,
		"requested":    requested,
		"available":    available,
	})
}

// checkLocation validates that code names a location of w.
func checkLocation(w *entity.Warehouse, code, field string) error {
	if !w.HasLocation(code) {
		return apperror.Validation("Validation failed", apperror.FieldError{
			Field:   field,
			Message: fmt.Sprintf("location %q does not exist in warehouse %s", code, w.Code),
		})
	}
	return nil
}

// transitionError explains why a conditional status update matched no row.
func transitionError(kind string, from, to entity.DocumentStatus) error {
	if !entity.CanTransition(from, to) {
		return apperror.InvalidStatus(fmt.Sprintf("Cannot change %s from %s to %s", kind, from, to))
	}
	return apperror.Conflict(fmt.Sprintf("%s was modified by another request", kind))
}

// NewDefaultService wires the shared locker and cache.
func NewDefaultService(db *gorm.DB) *Service {
	return NewService(db, lock.Default(), cache.GetInstance(), config.GetLogger())
}
