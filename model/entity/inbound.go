package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type InboundType string

const (
	InboundPurchase InboundType = "purchase"
	InboundReturn   InboundType = "return"
	InboundTransfer InboundType = "transfer"
	InboundOther    InboundType = "other"
)

type Inbound struct {
	ID              uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Number          string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"number"`
	Type            InboundType     `gorm:"type:varchar(16);not null;default:purchase" json:"type"`
	Status          DocumentStatus  `gorm:"type:varchar(16);not null;default:draft;index" json:"status"`
	WarehouseID     uint            `gorm:"not null;index" json:"warehouseId"`
	Warehouse       *Warehouse      `json:"warehouse,omitempty"`
	SupplierID      *uint           `gorm:"index" json:"supplierId"`
	Supplier        *Supplier       `json:"supplier,omitempty"`
	ReferenceNumber string          `gorm:"type:varchar(100)" json:"referenceNumber"`
	ExpectedDate    *time.Time      `json:"expectedDate"`
	ReceivedDate    *time.Time      `json:"receivedDate"`
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
	Items           []InboundItem   `gorm:"foreignKey:InboundID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt       time.Time       `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Inbound) TableName() string {
	return "inbounds"
}

type InboundItem struct {
	ID           uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	InboundID    uint            `gorm:"not null;index" json:"inboundId"`
	ProductID    uint            `gorm:"not null;index" json:"productId"`
	Product      *Product        `json:"product,omitempty"`
	LocationCode string          `gorm:"type:varchar(50);not null;default:''" json:"locationCode"`
	Quantity     int64           `gorm:"not null" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"unitPrice"`
	Amount       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"amount"`
	BatchNumber  string          `gorm:"type:varchar(64)" json:"batchNumber"`
	ExpiryDate   *time.Time      `json:"expiryDate"`
	Notes        string          `gorm:"type:varchar(255)" json:"notes"`
}

func (InboundItem) TableName() string {
	return "inbound_items"
}

// Recalculate refreshes item amounts and document totals.
func (in *Inbound) Recalculate() {
	var qty int64
	total := decimal.Zero
	for idx := range in.Items {
		it := &in.Items[idx]
		it.Amount = it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity))
		qty += it.Quantity
		total = total.Add(it.Amount)
	}
	in.TotalQuantity = qty
	in.TotalAmount = total
}
