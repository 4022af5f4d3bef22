package resolvers

import (
	"math"
	"strconv"

	gql "github.com/graph-gophers/graphql-go"

	gqlmodels "warehouse.GO/graphql/models"
	"warehouse.GO/model/entity"
)

func id(v uint) gql.ID {
	return gql.ID(strconv.FormatUint(uint64(v), 10))
}

// int32Of saturates v to the GraphQL Int range.
func int32Of(v int64) int32 {
	switch {
	case v > math.MaxInt32:
		return math.MaxInt32
	case v < math.MinInt32:
		return math.MinInt32
	}
	return int32(v)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func mapProduct(p *entity.Product) *gqlmodels.Product {
	cost, _ := p.CostPrice.Float64()
	price, _ := p.SellingPrice.Float64()
	out := &gqlmodels.Product{
		ID:           id(p.ID),
		SKU:          p.SKU,
		Name:         p.Name,
		Description:  optional(p.Description),
		Unit:         p.Unit,
		Barcode:      optional(p.Barcode),
		CostPrice:    cost,
		SellingPrice: price,
		MinStock:     int32Of(p.MinStock),
		MaxStock:     int32Of(p.MaxStock),
		ReorderPoint: int32Of(p.ReorderPoint),
		ImageURL:     optional(p.ImageURL),
		Status:       string(p.Status),
	}
	if p.Category != nil {
		out.Category = &gqlmodels.Category{ID: id(p.Category.ID), Code: p.Category.Code, Name: p.Category.Name}
	}
	return out
}

func mapWarehouse(w *entity.Warehouse) *gqlmodels.Warehouse {
	out := &gqlmodels.Warehouse{
		ID:       id(w.ID),
		Code:     w.Code,
		Name:     w.Name,
		Address:  optional(w.Address),
		Capacity: int32Of(w.Capacity),
		IsActive: w.IsActive,
		Zones:    []*gqlmodels.Zone{},
	}
	for _, z := range w.Zones.Data() {
		zone := &gqlmodels.Zone{Code: z.Code, Name: optional(z.Name), Locations: []*gqlmodels.Location{}}
		for _, l := range z.Locations {
			zone.Locations = append(zone.Locations, &gqlmodels.Location{Code: l.Code, Name: optional(l.Name), Capacity: int32Of(l.Capacity)})
		}
		out.Zones = append(out.Zones, zone)
	}
	return out
}

func mapInventory(i *entity.Inventory) *gqlmodels.Inventory {
	out := &gqlmodels.Inventory{
		ID:                id(i.ID),
		LocationCode:      i.LocationCode,
		Quantity:          int32Of(i.Quantity),
		ReservedQuantity:  int32Of(i.ReservedQuantity),
		AvailableQuantity: int32Of(i.AvailableQuantity),
	}
	if i.Warehouse != nil {
		out.Warehouse = mapWarehouse(i.Warehouse)
	} else {
		out.Warehouse = &gqlmodels.Warehouse{ID: id(i.WarehouseID), Zones: []*gqlmodels.Zone{}}
	}
	return out
}

func mapUser(u *entity.User) *gqlmodels.User {
	return &gqlmodels.User{
		ID:       id(u.ID),
		Username: u.Username,
		Email:    u.Email,
		FullName: optional(u.FullName),
		Role:     string(u.Role),
	}
}
