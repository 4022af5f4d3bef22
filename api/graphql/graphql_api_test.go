package graphql

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"warehouse.GO/api/apitest"
	"warehouse.GO/core/auth"
	"warehouse.GO/graphqlserver"
	"warehouse.GO/model/entity"
	authRepo "warehouse.GO/model/repository/auth"
	userRepo "warehouse.GO/model/repository/user"
	"warehouse.GO/service/search"
)

type result struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct{ Message string } `json:"errors"`
}

func setup(t *testing.T) (*apitest.Env, string) {
	env := apitest.New(t)
	schema, err := graphqlserver.NewSchema(env.DB, search.NewService(env.DB, nil, "products", env.Logger))
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	bl := auth.NewBlacklist(authRepo.NewAuthRepository(env.DB), nil, env.Logger)
	Routes(env.E, schema, auth.NewMiddleware(env.Tokens, bl, userRepo.NewUserRepository(env.DB), nil))
	_, token := env.Login(entity.RoleStaff)

	zones := []entity.Zone{{Code: "A", Name: "Aisle A", Locations: []entity.Location{{Code: "A-1", Capacity: 50}}}}
	env.DB.Create(&entity.Warehouse{Code: "W1", Name: "Main", IsActive: true, Zones: datatypes.NewJSONType(zones)})
	env.DB.Create(&entity.Category{Code: "PUMPS", Name: "Pumps", IsActive: true})
	cat := uint(1)
	env.DB.Create(&entity.Product{SKU: "P1", Name: "Water pump", CategoryID: &cat, Status: entity.ProductActive, SellingPrice: decimal.RequireFromString("12.5"), MinStock: 10})
	env.DB.Create(&entity.Product{SKU: "P2", Name: "Hose", Status: entity.ProductActive})
	env.DB.Create(&entity.Inventory{ProductID: 1, WarehouseID: 1, LocationCode: "A-1", Quantity: 4, ReservedQuantity: 1})
	return env, token
}

func run(t *testing.T, env *apitest.Env, token, q string) result {
	t.Helper()
	rec := env.Do(http.MethodPost, "/graphql", map[string]any{"query": q}, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
	var res result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return res
}

func TestGraphQL_RequiresToken(t *testing.T) {
	env, _ := setup(t)
	rec := env.Do(http.MethodPost, "/graphql", map[string]any{"query": "{ me { username } }"}, "")
	apitest.Expect(t, rec, http.StatusUnauthorized, "UNAUTHORIZED")

	rec = env.Do(http.MethodGet, "/playground", nil, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "GraphQLPlayground") {
		t.Errorf("playground = %d", rec.Code)
	}
}

func TestGraphQL_CatalogAndStock(t *testing.T) {
	env, token := setup(t)
	res := run(t, env, token, `{
		products(search: "pump") { total items { sku sellingPrice category { code } } }
		product(sku: "p2") { name description }
		missing: product(sku: "nope") { name }
		warehouses { code zones { code locations { code capacity } } }
		inventory(productId: "1") { warehouse { code } locationCode quantity availableQuantity }
		lowStock(limit: 5) { sku shortage }
		me { role }
	}`)
	if len(res.Errors) > 0 {
		t.Fatalf("errors: %v", res.Errors)
	}

	var products struct {
		Total int
		Items []struct {
			SKU          string
			SellingPrice float64
			Category     *struct{ Code string }
		}
	}
	json.Unmarshal(res.Data["products"], &products)
	if products.Total != 1 || products.Items[0].SKU != "P1" || products.Items[0].SellingPrice != 12.5 || products.Items[0].Category.Code != "PUMPS" {
		t.Errorf("products = %+v", products)
	}
	if string(res.Data["missing"]) != "null" {
		t.Errorf("missing product = %s", res.Data["missing"])
	}
	var product struct {
		Name        string
		Description *string
	}
	json.Unmarshal(res.Data["product"], &product)
	if product.Name != "Hose" || product.Description != nil {
		t.Errorf("product = %+v", product)
	}

	var inv []struct {
		Warehouse         struct{ Code string }
		LocationCode      string
		Quantity          int
		AvailableQuantity int
	}
	json.Unmarshal(res.Data["inventory"], &inv)
	if len(inv) != 1 || inv[0].Warehouse.Code != "W1" || inv[0].AvailableQuantity != 3 {
		t.Errorf("inventory = %+v", inv)
	}

	var low []struct {
		SKU      string
		Shortage int
	}
	json.Unmarshal(res.Data["lowStock"], &low)
	if len(low) != 1 || low[0].SKU != "P1" || low[0].Shortage != 6 {
		t.Errorf("lowStock = %+v", low)
	}
	if !strings.Contains(string(res.Data["me"]), `"staff"`) {
		t.Errorf("me = %s", res.Data["me"])
	}
	if !strings.Contains(string(res.Data["warehouses"]), `"A-1"`) {
		t.Errorf("warehouses = %s", res.Data["warehouses"])
	}
}

func TestGraphQL_UnknownExtension(t *testing.T) {
	env, token := setup(t)
	res := run(t, env, token, `{ _extension(name: "nope") }`)
	if len(res.Errors) == 0 || !strings.Contains(res.Errors[0].Message, "unknown extension") {
		t.Errorf("errors = %v", res.Errors)
	}
}
