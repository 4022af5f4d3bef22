package product

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"warehouse.GO/core/apperror"
	"warehouse.GO/model/entity"
	"warehouse.GO/service/stock"
)

var stockColumns = map[string]bool{
	"warehouse_code": true, "location_code": true, "qty": true,
}

// stockRow is an opening-stock line: set the on-hand quantity of sku at a location.
type stockRow struct {
	SKU           string
	WarehouseCode string
	LocationCode  string
	Qty           string
}

// collectStock buffers the stock part of rows that name a warehouse and a quantity.
func collectStock(rows [][]string, colIndex map[string]int) []stockRow {
	if _, ok := colIndex["qty"]; !ok {
		return nil
	}
	out := make([]stockRow, 0, len(rows))
	for _, row := range rows {
		r := stockRow{
			SKU:           entity.NormalizeSKU(cell(row, colIndex, "sku")),
			WarehouseCode: strings.ToUpper(cell(row, colIndex, "warehouse_code")),
			LocationCode:  strings.ToUpper(cell(row, colIndex, "location_code")),
			Qty:           cell(row, colIndex, "qty"),
		}
		if r.SKU == "" || r.WarehouseCode == "" || r.Qty == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

// StockItemInput is the JSON input for the stock import API.
type StockItemInput struct {
	SKU           string `json:"sku" validate:"required"`
	WarehouseCode string `json:"warehouseCode" validate:"required"`
	LocationCode  string `json:"locationCode" validate:"max=50"`
	Qty           int64  `json:"qty" validate:"gte=0"`
}

// StockImportResult reports a JSON stock import.
type StockImportResult struct {
	Imported  int      `json:"imported"`
	Unchanged int      `json:"unchanged"`
	Skipped   int      `json:"skipped"`
	Warnings  []string `json:"warnings"`
}

// ImportStock sets the on-hand quantity for each item, one adjustment movement per change.
func ImportStock(ctx context.Context, db *gorm.DB, svc *stock.Service, actor *entity.User, items []StockItemInput) (*StockImportResult, error) {
	rows := make([]stockRow, 0, len(items))
	skus := make([]string, 0, len(items))
	for _, it := range items {
		r := stockRow{
			SKU:           entity.NormalizeSKU(it.SKU),
			WarehouseCode: entity.NormalizeCode(it.WarehouseCode),
			LocationCode:  entity.NormalizeCode(it.LocationCode),
			Qty:           strconv.FormatInt(it.Qty, 10),
		}
		rows = append(rows, r)
		skus = append(skus, r.SKU)
	}
	skuToID, err := lookupSKUs(db.WithContext(ctx), skus, 500)
	if err != nil {
		return nil, err
	}
	res := &StockImportResult{}
	res.Imported, res.Unchanged, res.Warnings, err = setStock(ctx, db, svc, rows, skuToID, actor)
	if err != nil {
		return nil, err
	}
	res.Skipped = len(rows) - res.Imported - res.Unchanged
	return res, nil
}

func applyStock(ctx context.Context, db *gorm.DB, svc *stock.Service, rows []stockRow, skuToID map[string]uint, opts ImportOptions) (int, []string, error) {
	if len(rows) == 0 {
		return 0, nil, nil
	}
	applied, _, warnings, err := setStock(ctx, db, svc, rows, skuToID, opts.Actor)
	return applied, warnings, err
}

// setStock runs one "set" adjustment per row. Business errors become warnings, anything else aborts.
func setStock(ctx context.Context, db *gorm.DB, svc *stock.Service, rows []stockRow, skuToID map[string]uint, actor *entity.User) (applied, unchanged int, warnings []string, err error) {
	warehouses, err := warehouseCodes(db.WithContext(ctx))
	if err != nil {
		return 0, 0, nil, err
	}
	for _, r := range rows {
		productID, ok := skuToID[r.SKU]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("sku=%s: unknown product", r.SKU))
			continue
		}
		warehouseID, ok := warehouses[r.WarehouseCode]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("sku=%s: unknown warehouse %q", r.SKU, r.WarehouseCode))
			continue
		}
		qty, perr := strconv.ParseInt(r.Qty, 10, 64)
		if perr != nil || qty < 0 {
			warnings = append(warnings, fmt.Sprintf("sku=%s: invalid qty %q", r.SKU, r.Qty))
			continue
		}
		_, aerr := svc.Adjust(ctx, actor, stock.AdjustInput{
			ProductID:    productID,
			WarehouseID:  warehouseID,
			LocationCode: r.LocationCode,
			Type:         stock.AdjustSet,
			Quantity:     qty,
			Reason:       "Stock import",
		})
		if aerr == nil {
			applied++
			continue
		}
		ae := apperror.As(aerr)
		if ae.Status >= 500 {
			return applied, unchanged, warnings, aerr
		}
		if ae.Code == apperror.CodeBadRequest {
			unchanged++
			continue
		}
		msg := ae.Message
		if len(ae.Fields) > 0 {
			msg = ae.Fields[0].Message
		}
		warnings = append(warnings, fmt.Sprintf("sku=%s: %s", r.SKU, msg))
	}
	return applied, unchanged, warnings, nil
}

func warehouseCodes(db *gorm.DB) (map[string]uint, error) {
	var items []entity.Warehouse
	if err := db.Select("id", "code").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("load warehouses: %w", err)
	}
	out := make(map[string]uint, len(items))
	for _, w := range items {
		out[strings.ToUpper(w.Code)] = w.ID
	}
	return out, nil
}
