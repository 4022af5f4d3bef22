package resolvers

import (
	"context"

	"warehouse.GO/core/query"
	gqlmodels "warehouse.GO/graphql/models"
	"warehouse.GO/model/entity"
	productRepo "warehouse.GO/model/repository/product"
)

// ProductsArgs matches the products query arguments (defaults in schema: page=1, limit=20).
type ProductsArgs struct {
	Search *string
	Page   int32
	Limit  int32
}

// Products searches through the search service when a term is given, otherwise lists by SKU.
func (r *QueryResolver) Products(ctx context.Context, args ProductsArgs) (*gqlmodels.ProductPage, error) {
	p := query.Page{Page: int(args.Page), Limit: int(args.Limit), Sort: "sku"}
	if args.Search != nil {
		p.Search = *args.Search
	}
	p.Normalize()
	var (
		items []entity.Product
		total int64
		err   error
	)
	if p.Search != "" && r.finder != nil {
		items, total, err = r.finder.Search(ctx, p.Search, p)
	} else {
		items, total, err = r.products(ctx).List(productRepo.Filter{Page: p})
	}
	if err != nil {
		return nil, err
	}
	page := &gqlmodels.ProductPage{
		Items: make([]*gqlmodels.Product, 0, len(items)),
		Total: int32(total),
		Page:  int32(p.Page),
		Limit: int32(p.Limit),
	}
	for i := range items {
		page.Items = append(page.Items, mapProduct(&items[i]))
	}
	return page, nil
}

type ProductArgs struct {
	Sku string
}

func (r *QueryResolver) Product(ctx context.Context, args ProductArgs) (*gqlmodels.Product, error) {
	p, err := r.products(ctx).FindBySKU(args.Sku)
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return mapProduct(p), nil
}
