// Package product imports catalog rows and opening stock from CSV.
package product

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"warehouse.GO/model/entity"
	"warehouse.GO/service/stock"
)

// ImportOptions configures a product import run.
type ImportOptions struct {
	BatchSize int
	// Actor is recorded on the opening-stock movements.
	Actor *entity.User
}

// ImportResult holds counters and timing from an import run.
type ImportResult struct {
	TotalRows   int           `json:"totalRows"`
	Created     int           `json:"created"`
	Updated     int           `json:"updated"`
	Skipped     int           `json:"skipped"`
	Stocked     int           `json:"stocked"`
	Warnings    []string      `json:"warnings"`
	ProcessTime time.Duration `json:"-"`
	DBTime      time.Duration `json:"-"`
	TotalTime   time.Duration `json:"-"`
}

// productColumns maps CSV headers to products columns.
var productColumns = map[string]string{
	"sku":           "sku",
	"name":          "name",
	"description":   "description",
	"category_code": "category_id",
	"unit":          "unit",
	"barcode":       "barcode",
	"cost_price":    "cost_price",
	"selling_price": "selling_price",
	"min_stock":     "min_stock",
	"max_stock":     "max_stock",
	"reorder_point": "reorder_point",
	"status":        "status",
}

// knownColumns returns all column names handled by the importer.
func knownColumns() map[string]bool {
	known := make(map[string]bool, len(productColumns)+len(stockColumns))
	for col := range productColumns {
		known[col] = true
	}
	for col := range stockColumns {
		known[col] = true
	}
	return known
}

// ImportProducts reads CSV data from r and upserts products by SKU. Rows that carry
// warehouse_code and qty also set the on-hand stock of that location through svc.
func ImportProducts(ctx context.Context, db *gorm.DB, svc *stock.Service, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	startTotal := time.Now()
	if opts.BatchSize <= 0 {
		opts.BatchSize = 500
	}
	db = db.WithContext(ctx)

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	colIndex := make(map[string]int, len(headers))
	for i, h := range headers {
		h = strings.ToLower(strings.TrimSpace(h))
		headers[i] = h
		colIndex[h] = i
	}
	if _, ok := colIndex["sku"]; !ok {
		return nil, fmt.Errorf("CSV must contain a 'sku' column")
	}

	result := &ImportResult{}
	known := knownColumns()
	for _, h := range headers {
		if !known[h] {
			result.Warnings = append(result.Warnings, fmt.Sprintf("column %q: unknown, skipping", h))
		}
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV rows: %w", err)
	}
	result.TotalRows = len(rows)

	categories, err := categoryCodes(db)
	if err != nil {
		return nil, err
	}

	startProcess := time.Now()
	skus := make([]string, 0, len(rows))
	for _, row := range rows {
		if sku := entity.NormalizeSKU(cell(row, colIndex, "sku")); sku != "" {
			skus = append(skus, sku)
		}
	}
	skuToID, err := lookupSKUs(db, skus, opts.BatchSize)
	if err != nil {
		return nil, err
	}

	products := make([]entity.Product, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for i, row := range rows {
		p, warn := parseProduct(row, colIndex, categories)
		if warn != "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: %s", i+2, warn))
			result.Skipped++
			continue
		}
		if seen[p.SKU] {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d: sku=%s repeated, skipping", i+2, p.SKU))
			result.Skipped++
			continue
		}
		seen[p.SKU] = true
		if _, exists := skuToID[p.SKU]; exists {
			result.Updated++
		} else {
			result.Created++
		}
		products = append(products, p)
	}
	result.ProcessTime = time.Since(startProcess)

	startDB := time.Now()
	if err := upsertProducts(db, products, updateColumns(headers), opts.BatchSize); err != nil {
		return nil, err
	}
	if skuToID, err = lookupSKUs(db, skus, opts.BatchSize); err != nil {
		return nil, err
	}
	stocked, warnings, err := applyStock(ctx, db, svc, collectStock(rows, colIndex), skuToID, opts)
	if err != nil {
		return nil, err
	}
	result.Stocked = stocked
	result.Warnings = append(result.Warnings, warnings...)
	result.DBTime = time.Since(startDB)
	result.TotalTime = time.Since(startTotal)
	return result, nil
}

func cell(row []string, colIndex map[string]int, col string) string {
	i, ok := colIndex[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func categoryCodes(db *gorm.DB) (map[string]uint, error) {
	var items []entity.Category
	if err := db.Select("id", "code").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	out := make(map[string]uint, len(items))
	for _, c := range items {
		out[strings.ToUpper(c.Code)] = c.ID
	}
	return out, nil
}

// parseProduct converts one CSV row. A non-empty warning means the row is skipped.
func parseProduct(row []string, colIndex map[string]int, categories map[string]uint) (entity.Product, string) {
	p := entity.Product{SKU: entity.NormalizeSKU(cell(row, colIndex, "sku"))}
	if p.SKU == "" {
		return p, "empty sku"
	}
	if p.Name = cell(row, colIndex, "name"); p.Name == "" {
		return p, fmt.Sprintf("sku=%s: name is required", p.SKU)
	}
	p.Description = cell(row, colIndex, "description")
	p.Unit = cell(row, colIndex, "unit")
	p.Barcode = cell(row, colIndex, "barcode")

	if code := cell(row, colIndex, "category_code"); code != "" {
		id, ok := categories[strings.ToUpper(code)]
		if !ok {
			return p, fmt.Sprintf("sku=%s: unknown category %q", p.SKU, code)
		}
		p.CategoryID = &id
	}
	for col, dst := range map[string]*decimal.Decimal{"cost_price": &p.CostPrice, "selling_price": &p.SellingPrice} {
		v := cell(row, colIndex, col)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil || d.IsNegative() {
			return p, fmt.Sprintf("sku=%s: invalid %s %q", p.SKU, col, v)
		}
		*dst = d
	}
	for col, dst := range map[string]*int64{"min_stock": &p.MinStock, "max_stock": &p.MaxStock, "reorder_point": &p.ReorderPoint} {
		v := cell(row, colIndex, col)
		if v == "" {
			continue
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return p, fmt.Sprintf("sku=%s: invalid %s %q", p.SKU, col, v)
		}
		*dst = n
	}
	if p.MaxStock > 0 && p.MaxStock < p.MinStock {
		return p, fmt.Sprintf("sku=%s: max_stock below min_stock", p.SKU)
	}
	if v := cell(row, colIndex, "status"); v != "" {
		p.Status = entity.ProductStatus(strings.ToLower(v))
		if !entity.ValidProductStatus(p.Status) {
			return p, fmt.Sprintf("sku=%s: invalid status %q", p.SKU, v)
		}
	}
	return p, ""
}

// updateColumns lists the product columns an existing SKU takes from the file.
func updateColumns(headers []string) []string {
	cols := []string{"updated_at"}
	for _, h := range headers {
		if col, ok := productColumns[h]; ok && h != "sku" {
			cols = append(cols, col)
		}
	}
	return cols
}

func upsertProducts(db *gorm.DB, products []entity.Product, columns []string, batchSize int) error {
	if len(products) == 0 {
		return nil
	}
	upsert := clause.OnConflict{
		Columns:   []clause.Column{{Name: "sku"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}
	if err := db.Clauses(upsert).CreateInBatches(&products, batchSize).Error; err != nil {
		return fmt.Errorf("product upsert: %w", err)
	}
	return nil
}

// lookupSKUs batch-queries existing SKUs and returns sku->id map.
func lookupSKUs(db *gorm.DB, skus []string, batchSize int) (map[string]uint, error) {
	type skuRow struct {
		ID  uint
		SKU string `gorm:"column:sku"`
	}
	m := make(map[string]uint, len(skus))
	for i := 0; i < len(skus); i += batchSize {
		end := i + batchSize
		if end > len(skus) {
			end = len(skus)
		}
		var chunk []skuRow
		if err := db.Model(&entity.Product{}).Select("id, sku").Where("sku IN ?", skus[i:end]).Find(&chunk).Error; err != nil {
			return nil, fmt.Errorf("lookup skus: %w", err)
		}
		for _, r := range chunk {
			m[r.SKU] = r.ID
		}
	}
	return m, nil
}
