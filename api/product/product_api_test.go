package product

import (
	"bytes"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"warehouse.GO/api/apitest"
	"warehouse.GO/model/entity"
	"warehouse.GO/service/media"
	"warehouse.GO/service/search"
)

func setup(t *testing.T) (*apitest.Env, string, string) {
	env := apitest.New(t)
	Routes(env.API, env.DB, search.NewService(env.DB, nil, "products", env.Logger), media.NewService(t.TempDir(), "/media"))
	_, manager := env.Login(entity.RoleManager)
	_, staff := env.Login(entity.RoleStaff)
	return env, manager, staff
}

func TestProductCRUD(t *testing.T) {
	env, manager, staff := setup(t)
	body := map[string]any{"sku": "ab-100", "name": "Anchor bolt", "costPrice": 1.25, "sellingPrice": "2.50", "minStock": 5}

	rec := env.Do(http.MethodPost, "/api/products", body, staff)
	apitest.Expect(t, rec, http.StatusForbidden, "FORBIDDEN")

	rec = env.Do(http.MethodPost, "/api/products", body, manager)
	apitest.Expect(t, rec, http.StatusCreated, "")
	var p entity.Product
	apitest.Decode(t, rec, &p)
	if p.SKU != "AB-100" || p.Unit != "pcs" || p.Status != entity.ProductActive {
		t.Errorf("product = %+v", p)
	}

	rec = env.Do(http.MethodPost, "/api/products", body, manager)
	apitest.Expect(t, rec, http.StatusConflict, "DUPLICATE_KEY")

	rec = env.Do(http.MethodGet, "/api/products/sku/ab-100", nil, staff)
	apitest.Expect(t, rec, http.StatusOK, "")

	rec = env.Do(http.MethodGet, "/api/products/999", nil, staff)
	apitest.Expect(t, rec, http.StatusNotFound, "NOT_FOUND")

	rec = env.Do(http.MethodPut, "/api/products/1", map[string]any{"maxStock": 2}, manager)
	apitest.Expect(t, rec, http.StatusBadRequest, "VALIDATION_ERROR")

	rec = env.Do(http.MethodPut, "/api/products/1", map[string]any{"name": "Anchor bolt M8", "costPrice": -1}, manager)
	apitest.Expect(t, rec, http.StatusBadRequest, "VALIDATION_ERROR")

	rec = env.Do(http.MethodPut, "/api/products/1", map[string]any{"name": "Anchor bolt M8", "status": "inactive"}, manager)
	apitest.Expect(t, rec, http.StatusOK, "")
	apitest.Decode(t, rec, &p)
	if p.Name != "Anchor bolt M8" || p.Status != entity.ProductInactive {
		t.Errorf("updated = %+v", p)
	}

	rec = env.Do(http.MethodGet, "/api/products?search=anchor&limit=5", nil, staff)
	var list []entity.Product
	b := apitest.Expect(t, rec, http.StatusOK, "")
	apitest.Decode(t, rec, &list)
	if len(list) != 1 || b.Pagination == nil || b.Pagination.Total != 1 || b.Pagination.Limit != 5 {
		t.Errorf("list = %v pagination = %+v", list, b.Pagination)
	}

	rec = env.Do(http.MethodGet, "/api/products/search?q=m8", nil, staff)
	apitest.Decode(t, rec, &list)
	if rec.Code != http.StatusOK || len(list) != 1 {
		t.Errorf("search: %d %s", rec.Code, rec.Body.String())
	}

	rec = env.Do(http.MethodDelete, "/api/products/1", nil, manager)
	apitest.Expect(t, rec, http.StatusOK, "")
	rec = env.Do(http.MethodGet, "/api/products/1", nil, staff)
	apitest.Expect(t, rec, http.StatusNotFound, "NOT_FOUND")
}

func TestProductDetail_StockAndDeleteGuard(t *testing.T) {
	env, manager, staff := setup(t)
	p := entity.Product{SKU: "X1", Name: "X"}
	w := entity.Warehouse{Code: "W1", Name: "Main"}
	env.DB.Create(&p)
	env.DB.Create(&w)
	env.DB.Create(&entity.Inventory{ProductID: p.ID, WarehouseID: w.ID, Quantity: 7, ReservedQuantity: 2})

	rec := env.Do(http.MethodGet, "/api/products/1", nil, staff)
	var d struct {
		SKU   string `json:"sku"`
		Stock struct {
			Quantity          int64 `json:"quantity"`
			AvailableQuantity int64 `json:"availableQuantity"`
		} `json:"stock"`
	}
	apitest.Expect(t, rec, http.StatusOK, "")
	apitest.Decode(t, rec, &d)
	if d.SKU != "X1" || d.Stock.Quantity != 7 || d.Stock.AvailableQuantity != 5 {
		t.Errorf("detail = %+v", d)
	}

	rec = env.Do(http.MethodDelete, "/api/products/1", nil, manager)
	apitest.Expect(t, rec, http.StatusBadRequest, "BAD_REQUEST")
}

func TestProductImageUpload(t *testing.T) {
	env, manager, _ := setup(t)
	env.DB.Create(&entity.Product{SKU: "IMG", Name: "With image"})

	var img bytes.Buffer
	if err := png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 40, 20))); err != nil {
		t.Fatal(err)
	}
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("image", "a.png")
	_, _ = fw.Write(img.Bytes())
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/products/1/image", &body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+manager)
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)

	var out media.Image
	apitest.Expect(t, rec, http.StatusOK, "")
	apitest.Decode(t, rec, &out)
	if !strings.HasPrefix(out.URL, "/media/products/1-") {
		t.Errorf("url = %s", out.URL)
	}
	var p entity.Product
	env.DB.First(&p, 1)
	if p.ImageURL != out.URL {
		t.Errorf("imageUrl = %q, want %q", p.ImageURL, out.URL)
	}
}
