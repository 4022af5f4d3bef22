// Package models holds the GraphQL object types. Field names match the schema case-insensitively.
package models

import gql "github.com/graph-gophers/graphql-go"

type Category struct {
	ID   gql.ID
	Code string
	Name string
}

type Product struct {
	ID           gql.ID
	SKU          string
	Name         string
	Description  *string
	Category     *Category
	Unit         string
	Barcode      *string
	CostPrice    float64
	SellingPrice float64
	MinStock     int32
	MaxStock     int32
	ReorderPoint int32
	ImageURL     *string
	Status       string
}

type ProductPage struct {
	Items []*Product
	Total int32
	Page  int32
	Limit int32
}

type Location struct {
	Code     string
	Name     *string
	Capacity int32
}

type Zone struct {
	Code      string
	Name      *string
	Locations []*Location
}

type Warehouse struct {
	ID       gql.ID
	Code     string
	Name     string
	Address  *string
	Capacity int32
	IsActive bool
	Zones    []*Zone
}

type Inventory struct {
	ID                gql.ID
	Warehouse         *Warehouse
	LocationCode      string
	Quantity          int32
	ReservedQuantity  int32
	AvailableQuantity int32
}

type LowStockItem struct {
	ProductID         gql.ID
	SKU               string
	Name              string
	Unit              string
	MinStock          int32
	Quantity          int32
	AvailableQuantity int32
	Shortage          int32
}

type User struct {
	ID       gql.ID
	Username string
	Email    string
	FullName *string
	Role     string
}
