package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type OutboundType string

const (
	OutboundSale     OutboundType = "sale"
	OutboundTransfer OutboundType = "transfer"
	OutboundReturn   OutboundType = "return"
	OutboundDisposal OutboundType = "disposal"
)

type Outbound struct {
	ID              uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Number          string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"number"`
	Type            OutboundType    `gorm:"type:varchar(16);not null;default:sale" json:"type"`
	Status          DocumentStatus  `gorm:"type:varchar(16);not null;default:draft;index" json:"status"`
	WarehouseID     uint            `gorm:"not null;index" json:"warehouseId"`
	Warehouse       *Warehouse      `json:"warehouse,omitempty"`
	CustomerID      *uint           `gorm:"index" json:"customerId"`
	Customer        *Customer       `json:"customer,omitempty"`
	ReferenceNumber string          `gorm:"type:varchar(100)" json:"referenceNumber"`
	ExpectedDate    *time.Time      `json:"expectedDate"`
	ShippedDate     *time.Time      `json:"shippedDate"`
	ShippingAddress string          `gorm:"type:text" json:"shippingAddress"`
	TotalQuantity   int64           `gorm:"not null;default:0" json:"totalQuantity"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"totalAmount"`
	Notes           string          `gorm:"type:text" json:"notes"`
	CreatedByID     uint            `gorm:"not null;index" json:"createdById"`
	CreatedBy       *User           `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	ApprovedByID    *uint           `json:"approvedById"`
	ApprovedBy      *User           `gorm:"foreignKey:ApprovedByID" json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time      `json:"approvedAt"`
	CompletedAt     *time.Time      `json:"completedAt"`
	CancelledAt     *time.Time      `json:"cancelledAt"`
	CancelReason    string          `gorm:"type:varchar(255)" json:"cancelReason"`
	Items           []OutboundItem  `gorm:"foreignKey:OutboundID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt       time.Time       `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Outbound) TableName() string {
	return "outbounds"
}

type OutboundItem struct {
	ID           uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	OutboundID   uint            `gorm:"not null;index" json:"outboundId"`
	ProductID    uint            `gorm:"not null;index" json:"productId"`
	Product      *Product        `json:"product,omitempty"`
	LocationCode string          `gorm:"type:varchar(50);not null;default:''" json:"locationCode"`
	Quantity     int64           `gorm:"not null" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"unitPrice"`
	Amount       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"amount"`
	Notes        string          `gorm:"type:varchar(255)" json:"notes"`
}

func (OutboundItem) TableName() string {
	return "outbound_items"
}

func (out *Outbound) Recalculate() {
	var qty int64
	total := decimal.Zero
	for idx := range out.Items {
		it := &out.Items[idx]
		it.Amount = it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity))
		qty += it.Quantity
		total = total.Add(it.Amount)
	}
	out.TotalQuantity = qty
	out.TotalAmount = total
}
