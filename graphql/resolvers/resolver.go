package resolvers

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"

	"warehouse.GO/graphql"
	gqlmodels "warehouse.GO/graphql/models"
	gqlregistry "warehouse.GO/graphql/registry"
	inventoryRepo "warehouse.GO/model/repository/inventory"
	productRepo "warehouse.GO/model/repository/product"
	warehouseRepo "warehouse.GO/model/repository/warehouse"
	"warehouse.GO/service/search"
)

// QueryResolver is the single resolver for all Query fields.
// Methods live in product.go and stock.go; dynamic fields are served by Extension.
type QueryResolver struct {
	db     *gorm.DB
	finder *search.Service
}

func NewQueryResolver(db *gorm.DB, finder *search.Service) *QueryResolver {
	return &QueryResolver{db: db, finder: finder}
}

func (r *QueryResolver) products(ctx context.Context) *productRepo.ProductRepository {
	return productRepo.NewProductRepository(r.db.WithContext(ctx))
}

func (r *QueryResolver) warehouses(ctx context.Context) *warehouseRepo.WarehouseRepository {
	return warehouseRepo.NewWarehouseRepository(r.db.WithContext(ctx))
}

func (r *QueryResolver) inventory(ctx context.Context) *inventoryRepo.InventoryRepository {
	return inventoryRepo.NewInventoryRepository(r.db.WithContext(ctx))
}

// notFound turns a missing row into a null result.
func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func (r *QueryResolver) Me(ctx context.Context) (*gqlmodels.User, error) {
	u := graphql.UserFromContext(ctx)
	if u == nil {
		return nil, nil
	}
	return mapUser(u), nil
}

type ExtensionArgs struct {
	Name string
	Args *string
}

// Extension dispatches to registered custom resolvers and returns their result as JSON.
func (r *QueryResolver) Extension(ctx context.Context, args ExtensionArgs) (*string, error) {
	m := make(map[string]interface{})
	if args.Args != nil && *args.Args != "" {
		if err := json.Unmarshal([]byte(*args.Args), &m); err != nil {
			return nil, err
		}
	}
	out, err := gqlregistry.Resolve(graphql.WithDB(ctx, r.db.WithContext(ctx)), args.Name, m)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}
