package entity

import (
	"time"

	"gorm.io/gorm"
)

// Inventory is the stock of one product at one warehouse location.
// AvailableQuantity is always Quantity - ReservedQuantity: the stock service writes all three
// in the same statement and BeforeSave recomputes it for whole-row saves.
type Inventory struct {
	ID                uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID         uint       `gorm:"not null;uniqueIndex:idx_inventory_key,priority:1" json:"productId"`
	Product           *Product   `json:"product,omitempty"`
	WarehouseID       uint       `gorm:"not null;uniqueIndex:idx_inventory_key,priority:2;index" json:"warehouseId"`
	Warehouse         *Warehouse `json:"warehouse,omitempty"`
	LocationCode      string     `gorm:"type:varchar(50);not null;default:'';uniqueIndex:idx_inventory_key,priority:3" json:"locationCode"`
	Quantity          int64      `gorm:"not null;default:0" json:"quantity"`
	ReservedQuantity  int64      `gorm:"not null;default:0" json:"reservedQuantity"`
	AvailableQuantity int64      `gorm:"not null;default:0" json:"availableQuantity"`
	LastStockIn       *time.Time `json:"lastStockIn,omitempty"`
	LastStockOut      *time.Time `json:"lastStockOut,omitempty"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Inventory) TableName() string {
	return "inventories"
}

func (i *Inventory) BeforeSave(tx *gorm.DB) error {
	i.AvailableQuantity = i.Quantity - i.ReservedQuantity
	return nil
}
