// Package report builds tabular reports and renders them as JSON, xlsx or pdf.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"warehouse.GO/core/apperror"
	"warehouse.GO/model/entity"
	inboundRepo "warehouse.GO/model/repository/inbound"
	inventoryRepo "warehouse.GO/model/repository/inventory"
	movementRepo "warehouse.GO/model/repository/movement"
	outboundRepo "warehouse.GO/model/repository/outbound"
)

// MaxRows caps the rows of a single report.
const MaxRows = 10000

const (
	FormatJSON = "json"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// Filter is the query string of every /api/reports endpoint.
type Filter struct {
	WarehouseID *uint     `mapstructure:"warehouseId"`
	CategoryID  *uint     `mapstructure:"categoryId"`
	ProductID   *uint     `mapstructure:"productId"`
	CustomerID  *uint     `mapstructure:"customerId"`
	SupplierID  *uint     `mapstructure:"supplierId"`
	Type        string    `mapstructure:"type"`
	Status      string    `mapstructure:"status"`
	From        time.Time `mapstructure:"from"`
	To          time.Time `mapstructure:"to"`
	Format      string    `mapstructure:"format"`
}

// CheckFormat defaults an empty format to json and rejects unknown ones.
func (f *Filter) CheckFormat() error {
	switch f.Format {
	case "":
		f.Format = FormatJSON
	case FormatJSON, FormatXLSX, FormatPDF:
	default:
		return apperror.Validation("Validation failed", apperror.FieldError{
			Field: "format", Message: "format must be one of [json xlsx pdf]",
		})
	}
	return nil
}

type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

type Report struct {
	Name        string                   `json:"-"`
	Title       string                   `json:"title"`
	GeneratedAt time.Time                `json:"generatedAt"`
	Columns     []Column                 `json:"columns"`
	Rows        []map[string]interface{} `json:"rows"`
	Summary     map[string]interface{}   `json:"summary"`
}

// Filename is the attachment name for format.
func (r *Report) Filename(format string) string {
	return fmt.Sprintf("%s-report-%s.%s", r.Name, r.GeneratedAt.Format("20060102-150405"), format)
}

type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func (s *Service) Inventory(ctx context.Context, f Filter) (*Report, error) {
	rows, err := inventoryRepo.NewInventoryRepository(s.db.WithContext(ctx)).All(inventoryRepo.Filter{
		WarehouseID: f.WarehouseID,
		ProductID:   f.ProductID,
		CategoryID:  f.CategoryID,
	}, MaxRows)
	if err != nil {
		return nil, err
	}
	r := &Report{
		Name:        "inventory",
		Title:       "Inventory Report",
		GeneratedAt: s.now(),
		Columns: []Column{
			{"sku", "SKU"}, {"productName", "Product"}, {"warehouse", "Warehouse"}, {"locationCode", "Location"},
			{"quantity", "Quantity"}, {"reservedQuantity", "Reserved"}, {"availableQuantity", "Available"},
			{"unitCost", "Unit Cost"}, {"value", "Value"},
		},
		Rows: make([]map[string]interface{}, 0, len(rows)),
	}
	var qty, reserved, available int64
	total := decimal.Zero
	for _, inv := range rows {
		row := map[string]interface{}{
			"locationCode":      inv.LocationCode,
			"quantity":          inv.Quantity,
			"reservedQuantity":  inv.ReservedQuantity,
			"availableQuantity": inv.AvailableQuantity,
		}
		value := decimal.Zero
		if inv.Product != nil {
			value = inv.Product.CostPrice.Mul(decimal.NewFromInt(inv.Quantity))
			row["sku"], row["productName"] = inv.Product.SKU, inv.Product.Name
			row["unitCost"] = money(inv.Product.CostPrice)
		}
		if inv.Warehouse != nil {
			row["warehouse"] = inv.Warehouse.Name
		}
		row["value"] = money(value)
		r.Rows = append(r.Rows, row)
		qty += inv.Quantity
		reserved += inv.ReservedQuantity
		available += inv.AvailableQuantity
		total = total.Add(value)
	}
	r.Summary = map[string]interface{}{
		"rows":              len(r.Rows),
		"totalQuantity":     qty,
		"reservedQuantity":  reserved,
		"availableQuantity": available,
		"totalValue":        money(total),
	}
	return r, nil
}

func (s *Service) Movements(ctx context.Context, f Filter) (*Report, error) {
	rows, err := movementRepo.NewMovementRepository(s.db.WithContext(ctx)).All(movementRepo.Filter{
		ProductID:   f.ProductID,
		WarehouseID: f.WarehouseID,
		Type:        f.Type,
		From:        f.From,
		To:          f.To,
	}, MaxRows)
	if err != nil {
		return nil, err
	}
	r := &Report{
		Name:        "movements",
		Title:       "Stock Movement Report",
		GeneratedAt: s.now(),
		Columns: []Column{
			{"createdAt", "Date"}, {"type", "Type"}, {"sku", "SKU"}, {"productName", "Product"},
			{"warehouse", "Warehouse"}, {"locationCode", "Location"}, {"quantity", "Quantity"},
			{"balanceBefore", "Before"}, {"balanceAfter", "After"}, {"referenceNumber", "Reference"}, {"reason", "Reason"},
		},
		Rows: make([]map[string]interface{}, 0, len(rows)),
	}
	var in, out int64
	for _, m := range rows {
		row := map[string]interface{}{
			"createdAt":       m.CreatedAt,
			"type":            string(m.Type),
			"locationCode":    m.LocationCode,
			"quantity":        m.Quantity,
			"balanceBefore":   m.BalanceBefore,
			"balanceAfter":    m.BalanceAfter,
			"referenceNumber": m.ReferenceNumber,
			"reason":          m.Reason,
		}
		if m.Product != nil {
			row["sku"], row["productName"] = m.Product.SKU, m.Product.Name
		}
		if m.Warehouse != nil {
			row["warehouse"] = m.Warehouse.Name
		}
		r.Rows = append(r.Rows, row)
		switch m.Type {
		case entity.MovementReservation, entity.MovementRelease:
		default:
			if m.Quantity > 0 {
				in += m.Quantity
			} else {
				out -= m.Quantity
			}
		}
	}
	r.Summary = map[string]interface{}{
		"rows":      len(r.Rows),
		"totalIn":   in,
		"totalOut":  out,
		"netChange": in - out,
	}
	return r, nil
}

var documentColumns = []Column{
	{"number", "Number"}, {"type", "Type"}, {"status", "Status"}, {"warehouse", "Warehouse"},
	{"partner", "Partner"}, {"totalQuantity", "Quantity"}, {"totalAmount", "Amount"},
	{"createdAt", "Created"}, {"completedAt", "Completed"},
}

func documentSummary(rows []map[string]interface{}, qty int64, amount decimal.Decimal, byStatus map[string]int) map[string]interface{} {
	return map[string]interface{}{
		"rows":          len(rows),
		"totalQuantity": qty,
		"totalAmount":   money(amount),
		"byStatus":      byStatus,
	}
}

func (s *Service) Inbounds(ctx context.Context, f Filter) (*Report, error) {
	docs, err := inboundRepo.NewInboundRepository(s.db.WithContext(ctx)).All(inboundRepo.Filter{
		Status:      f.Status,
		Type:        f.Type,
		WarehouseID: f.WarehouseID,
		SupplierID:  f.SupplierID,
		From:        f.From,
		To:          f.To,
	}, MaxRows)
	if err != nil {
		return nil, err
	}
	r := &Report{Name: "inbounds", Title: "Inbound Report", GeneratedAt: s.now(), Columns: documentColumns}
	r.Rows = make([]map[string]interface{}, 0, len(docs))
	var qty int64
	amount := decimal.Zero
	byStatus := map[string]int{}
	for _, d := range docs {
		row := map[string]interface{}{
			"number":        d.Number,
			"type":          string(d.Type),
			"status":        string(d.Status),
			"totalQuantity": d.TotalQuantity,
			"totalAmount":   money(d.TotalAmount),
			"createdAt":     d.CreatedAt,
			"completedAt":   d.CompletedAt,
		}
		if d.Warehouse != nil {
			row["warehouse"] = d.Warehouse.Name
		}
		if d.Supplier != nil {
			row["partner"] = d.Supplier.Name
		}
		r.Rows = append(r.Rows, row)
		qty += d.TotalQuantity
		amount = amount.Add(d.TotalAmount)
		byStatus[string(d.Status)]++
	}
	r.Summary = documentSummary(r.Rows, qty, amount, byStatus)
	return r, nil
}

func (s *Service) Outbounds(ctx context.Context, f Filter) (*Report, error) {
	docs, err := outboundRepo.NewOutboundRepository(s.db.WithContext(ctx)).All(outboundRepo.Filter{
		Status:      f.Status,
		Type:        f.Type,
		WarehouseID: f.WarehouseID,
		CustomerID:  f.CustomerID,
		From:        f.From,
		To:          f.To,
	}, MaxRows)
	if err != nil {
		return nil, err
	}
	r := &Report{Name: "outbounds", Title: "Outbound Report", GeneratedAt: s.now(), Columns: documentColumns}
	r.Rows = make([]map[string]interface{}, 0, len(docs))
	var qty int64
	amount := decimal.Zero
	byStatus := map[string]int{}
	for _, d := range docs {
		row := map[string]interface{}{
			"number":        d.Number,
			"type":          string(d.Type),
			"status":        string(d.Status),
			"totalQuantity": d.TotalQuantity,
			"totalAmount":   money(d.TotalAmount),
			"createdAt":     d.CreatedAt,
			"completedAt":   d.CompletedAt,
		}
		if d.Warehouse != nil {
			row["warehouse"] = d.Warehouse.Name
		}
		if d.Customer != nil {
			row["partner"] = d.Customer.Name
		}
		r.Rows = append(r.Rows, row)
		qty += d.TotalQuantity
		amount = amount.Add(d.TotalAmount)
		byStatus[string(d.Status)]++
	}
	r.Summary = documentSummary(r.Rows, qty, amount, byStatus)
	return r, nil
}

func summaryKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
