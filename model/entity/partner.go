package entity

import "time"

type CustomerType string

const (
	CustomerIndividual CustomerType = "individual"
	CustomerCompany    CustomerType = "company"
)

// Contact holds the columns shared by customers and suppliers.
type Contact struct {
	Code          string `gorm:"type:varchar(50);not null;uniqueIndex" json:"code"`
	Name          string `gorm:"type:varchar(200);not null;index" json:"name"`
	ContactPerson string `gorm:"type:varchar(100)" json:"contactPerson"`
	Email         string `gorm:"type:varchar(128)" json:"email"`
	Phone         string `gorm:"type:varchar(20)" json:"phone"`
	Address       string `gorm:"type:text" json:"address"`
	TaxCode       string `gorm:"type:varchar(50)" json:"taxCode"`
	Notes         string `gorm:"type:text" json:"notes"`
	IsActive      bool   `gorm:"not null;default:true" json:"isActive"`
}

type Customer struct {
	ID        uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	Contact   `gorm:"embedded"`
	Type      CustomerType `gorm:"type:varchar(16);not null;default:individual" json:"type"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time    `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Customer) TableName() string {
	return "customers"
}

type Supplier struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Contact      `gorm:"embedded"`
	PaymentTerms string    `gorm:"type:varchar(100)" json:"paymentTerms"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Supplier) TableName() string {
	return "suppliers"
}
