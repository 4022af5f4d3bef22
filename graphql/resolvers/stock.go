package resolvers

import (
	"context"
	"fmt"
	"strconv"

	gql "github.com/graph-gophers/graphql-go"

	gqlmodels "warehouse.GO/graphql/models"
)

// Warehouses lists every warehouse ordered by code.
func (r *QueryResolver) Warehouses(ctx context.Context) ([]*gqlmodels.Warehouse, error) {
	items, err := r.warehouses(ctx).All()
	if err != nil {
		return nil, err
	}
	out := make([]*gqlmodels.Warehouse, 0, len(items))
	for i := range items {
		out = append(out, mapWarehouse(&items[i]))
	}
	return out, nil
}

type InventoryArgs struct {
	ProductID gql.ID
}

// Inventory returns the stock rows of one product over all warehouses.
func (r *QueryResolver) Inventory(ctx context.Context, args InventoryArgs) ([]*gqlmodels.Inventory, error) {
	id, err := strconv.ParseUint(string(args.ProductID), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid productId %q", args.ProductID)
	}
	rows, err := r.inventory(ctx).ByProduct(uint(id))
	if err != nil {
		return nil, err
	}
	out := make([]*gqlmodels.Inventory, 0, len(rows))
	for i := range rows {
		out = append(out, mapInventory(&rows[i]))
	}
	return out, nil
}

type LowStockArgs struct {
	Limit int32
}

func (r *QueryResolver) LowStock(ctx context.Context, args LowStockArgs) ([]*gqlmodels.LowStockItem, error) {
	limit := int(args.Limit)
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	rows, err := r.products(ctx).LowStock(limit)
	if err != nil {
		return nil, err
	}
	out := make([]*gqlmodels.LowStockItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, &gqlmodels.LowStockItem{
			ProductID:         id(row.ProductID),
			SKU:               row.SKU,
			Name:              row.Name,
			Unit:              row.Unit,
			MinStock:          int32Of(row.MinStock),
			Quantity:          int32Of(row.Quantity),
			AvailableQuantity: int32Of(row.Available),
			Shortage:          int32Of(row.Shortage),
		})
	}
	return out, nil
}
