package stock

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"warehouse.GO/core/apperror"
	"warehouse.GO/model/entity"
	productRepo "warehouse.GO/model/repository/product"
	warehouseRepo "warehouse.GO/model/repository/warehouse"
)

// line is the part of an inbound or outbound item the checks below need.
type line struct {
	ProductID    uint
	LocationCode string
	UnitPrice    decimal.Decimal
}

// checkDocument validates warehouse, lines and prices of a document before it is stored.
// Outbound lines additionally need active products.
func checkDocument(db *gorm.DB, warehouseID uint, lines []line, outbound bool) (*entity.Warehouse, map[uint]entity.Product, error) {
	w, err := warehouseRepo.NewWarehouseRepository(db).FindByID(warehouseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, apperror.Validation("Validation failed", apperror.FieldError{Field: "warehouseId", Message: "warehouse not found"})
	}
	if err != nil {
		return nil, nil, err
	}
	if !w.IsActive {
		return nil, nil, apperror.Validation("Validation failed", apperror.FieldError{Field: "warehouseId", Message: "warehouse is inactive"})
	}
	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	products, err := productRepo.NewProductRepository(db).FindByIDs(ids)
	if err != nil {
		return nil, nil, err
	}
	var fields []apperror.FieldError
	for i, l := range lines {
		p, ok := products[l.ProductID]
		switch {
		case !ok:
			fields = append(fields, apperror.FieldError{Field: fmt.Sprintf("items[%d].productId", i), Message: "product not found"})
		case p.Status == entity.ProductDiscontinued || (outbound && p.Status != entity.ProductActive):
			fields = append(fields, apperror.FieldError{Field: fmt.Sprintf("items[%d].productId", i), Message: fmt.Sprintf("product %s is %s", p.SKU, p.Status)})
		}
		if !w.HasLocation(l.LocationCode) {
			fields = append(fields, apperror.FieldError{
				Field:   fmt.Sprintf("items[%d].locationCode", i),
				Message: fmt.Sprintf("location %q does not exist in warehouse %s", l.LocationCode, w.Code),
			})
		}
		if l.UnitPrice.IsNegative() {
			fields = append(fields, apperror.FieldError{Field: fmt.Sprintf("items[%d].unitPrice", i), Message: "unitPrice must be greater than or equal to 0"})
		}
	}
	if len(fields) > 0 {
		return nil, nil, apperror.Validation("Validation failed", fields...)
	}
	return w, products, nil
}
