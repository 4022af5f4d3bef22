package entity

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Location is a storage slot inside a zone.
type Location struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Capacity int64  `json:"capacity"`
}

// Zone groups locations of a warehouse.
type Zone struct {
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	Locations []Location `json:"locations"`
}

type Warehouse struct {
	ID        uint                        `gorm:"primaryKey;autoIncrement" json:"id"`
	Code      string                      `gorm:"type:varchar(50);not null;uniqueIndex" json:"code"`
	Name      string                      `gorm:"type:varchar(200);not null" json:"name"`
	Address   string                      `gorm:"type:text" json:"address"`
	ManagerID *uint                       `gorm:"index" json:"managerId"`
	Manager   *User                       `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
	Capacity  int64                       `gorm:"not null;default:0" json:"capacity"`
	Zones     datatypes.JSONType[[]Zone]  `json:"zones"`
	IsActive  bool                        `gorm:"not null;default:true" json:"isActive"`
	CreatedAt time.Time                   `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time                   `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Warehouse) TableName() string {
	return "warehouses"
}

// NormalizeCode is the stored form of warehouse, zone and location codes.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// HasLocation reports whether code names a location of the warehouse.
// The empty code is the warehouse-level default location and always exists.
func (w *Warehouse) HasLocation(code string) bool {
	if code == "" {
		return true
	}
	for _, z := range w.Zones.Data() {
		for _, l := range z.Locations {
			if l.Code == code {
				return true
			}
		}
	}
	return false
}

// DuplicateLocation returns the first location code used twice across zones, or "".
func DuplicateLocation(zones []Zone) string {
	seen := make(map[string]struct{})
	for _, z := range zones {
		for _, l := range z.Locations {
			if _, ok := seen[l.Code]; ok {
				return l.Code
			}
			seen[l.Code] = struct{}{}
		}
	}
	return ""
}
