package entity

import (
	"time"

	"gorm.io/datatypes"
)

type MovementType string

const (
	MovementInbound     MovementType = "inbound"
	MovementOutbound    MovementType = "outbound"
	MovementAdjustment  MovementType = "adjustment"
	MovementTransferIn  MovementType = "transfer_in"
	MovementTransferOut MovementType = "transfer_out"
	MovementReservation MovementType = "reservation"
	MovementRelease     MovementType = "release"
)

// Reference types of a movement.
const (
	RefInbound    = "inbound"
	RefOutbound   = "outbound"
	RefAdjustment = "adjustment"
	RefTransfer   = "transfer"
)

// StockMovement is an append-only ledger entry. Quantity is the signed change of the
// affected balance; reservation/release entries track reserved stock, all others on-hand stock.
type StockMovement struct {
	ID              uint              `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID       uint              `gorm:"not null;index:idx_movement_product" json:"productId"`
	Product         *Product          `json:"product,omitempty"`
	WarehouseID     uint              `gorm:"not null;index" json:"warehouseId"`
	Warehouse       *Warehouse        `json:"warehouse,omitempty"`
	LocationCode    string            `gorm:"type:varchar(50);not null;default:''" json:"locationCode"`
	Type            MovementType      `gorm:"type:varchar(20);not null;index" json:"type"`
	Quantity        int64             `gorm:"not null" json:"quantity"`
	BalanceBefore   int64             `gorm:"not null" json:"balanceBefore"`
	BalanceAfter    int64             `gorm:"not null" json:"balanceAfter"`
	ReferenceType   string            `gorm:"type:varchar(20);index:idx_movement_ref,priority:1" json:"referenceType"`
	ReferenceID     uint              `gorm:"index:idx_movement_ref,priority:2" json:"referenceId"`
	ReferenceNumber string            `gorm:"type:varchar(50)" json:"referenceNumber"`
	Reason          string            `gorm:"type:varchar(255)" json:"reason"`
	Metadata        datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedByID     *uint             `json:"createdById"`
	CreatedBy       *User             `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	CreatedAt       time.Time         `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (StockMovement) TableName() string {
	return "stock_movements"
}

func ValidMovementType(t MovementType) bool {
	switch t {
	case MovementInbound, MovementOutbound, MovementAdjustment, MovementTransferIn,
		MovementTransferOut, MovementReservation, MovementRelease:
		return true
	}
	return false
}
