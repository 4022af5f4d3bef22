// Package partner serves /api/customers and /api/suppliers.
package partner

import (
	"strings"

	"warehouse.GO/model/entity"
)

type contactCreate struct {
	Code          string `json:"code" validate:"required,max=50"`
	Name          string `json:"name" validate:"required,max=200"`
	ContactPerson string `json:"contactPerson" validate:"max=100"`
	Email         string `json:"email" validate:"omitempty,email,max=128"`
	Phone         string `json:"phone" validate:"omitempty,phone"`
	Address       string `json:"address"`
	TaxCode       string `json:"taxCode" validate:"max=50"`
	Notes         string `json:"notes"`
}

func (in contactCreate) contact() entity.Contact {
	return entity.Contact{
		Code:          strings.ToUpper(strings.TrimSpace(in.Code)),
		Name:          strings.TrimSpace(in.Name),
		ContactPerson: in.ContactPerson,
		Email:         strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:         in.Phone,
		Address:       in.Address,
		TaxCode:       in.TaxCode,
		Notes:         in.Notes,
		IsActive:      true,
	}
}

type contactUpdate struct {
	Code          *string `json:"code" validate:"omitempty,min=1,max=50"`
	Name          *string `json:"name" validate:"omitempty,min=1,max=200"`
	ContactPerson *string `json:"contactPerson" validate:"omitempty,max=100"`
	Email         *string `json:"email" validate:"omitempty,email,max=128"`
	Phone         *string `json:"phone" validate:"omitempty,phone"`
	Address       *string `json:"address"`
	TaxCode       *string `json:"taxCode" validate:"omitempty,max=50"`
	Notes         *string `json:"notes"`
	IsActive      *bool   `json:"isActive"`
}

func (in contactUpdate) fields() map[string]interface{} {
	f := map[string]interface{}{}
	if in.Code != nil {
		f["code"] = strings.ToUpper(strings.TrimSpace(*in.Code))
	}
	if in.Name != nil {
		f["name"] = strings.TrimSpace(*in.Name)
	}
	if in.ContactPerson != nil {
		f["contact_person"] = *in.ContactPerson
	}
	if in.Email != nil {
		f["email"] = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Phone != nil {
		f["phone"] = *in.Phone
	}
	if in.Address != nil {
		f["address"] = *in.Address
	}
	if in.TaxCode != nil {
		f["tax_code"] = *in.TaxCode
	}
	if in.Notes != nil {
		f["notes"] = *in.Notes
	}
	if in.IsActive != nil {
		f["is_active"] = *in.IsActive
	}
	return f
}
