package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductStatus string

const (
	ProductActive       ProductStatus = "active"
	ProductInactive     ProductStatus = "inactive"
	ProductDiscontinued ProductStatus = "discontinued"
)

type Product struct {
	ID           uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	SKU          string          `gorm:"column:sku;type:varchar(64);not null;uniqueIndex" json:"sku"`
	Name         string          `gorm:"type:varchar(200);not null;index" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	CategoryID   *uint           `gorm:"index" json:"categoryId"`
	Category     *Category       `json:"category,omitempty"`
	Unit         string          `gorm:"type:varchar(20);not null;default:pcs" json:"unit"`
	Barcode      string          `gorm:"type:varchar(64);index" json:"barcode"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"costPrice"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"sellingPrice"`
	MinStock     int64           `gorm:"not null;default:0" json:"minStock"`
	MaxStock     int64           `gorm:"not null;default:0" json:"maxStock"`
	ReorderPoint int64           `gorm:"not null;default:0" json:"reorderPoint"`
	ImageURL     string          `gorm:"type:varchar(255)" json:"imageUrl"`
	Status       ProductStatus   `gorm:"type:varchar(16);not null;default:active;index" json:"status"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Product) TableName() string {
	return "products"
}

// BeforeSave normalizes the SKU.
func (p *Product) BeforeSave(tx *gorm.DB) error {
	p.SKU = NormalizeSKU(p.SKU)
	if p.Unit == "" {
		p.Unit = "pcs"
	}
	if p.Status == "" {
		p.Status = ProductActive
	}
	return nil
}

func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

func ValidProductStatus(s ProductStatus) bool {
	return s == ProductActive || s == ProductInactive || s == ProductDiscontinued
}
