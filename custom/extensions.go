// Package custom wires site-specific extensions into the shared registries:
// a GraphQL _extension resolver, a CLI command, a cron job and a public route.
package custom

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"warehouse.GO/api"
	"warehouse.GO/cmd"
	"warehouse.GO/config"
	"warehouse.GO/cron"
	"warehouse.GO/graphql"
	gqlregistry "warehouse.GO/graphql/registry"
	inventoryRepo "warehouse.GO/model/repository/inventory"
	productRepo "warehouse.GO/model/repository/product"
	warehouseRepo "warehouse.GO/model/repository/warehouse"
)

const (
	ExtStockBySKU    = "stockBySku"
	JobReconcile     = "inventory:reconcile"
	CommandSummary   = "inventory:summary"
	VersionPath      = "/version"
	reconcileDefault = "15 3 * * *"
)

// Version is overridden at build time with -ldflags "-X warehouse.GO/custom.Version=...".
var Version = "dev"

func init() {
	// _extension(name: "stockBySku", args: "{\"sku\":\"P-1\"}")
	gqlregistry.Register(ExtStockBySKU, StockBySKU)

	cmd.Register(&cobra.Command{
		Use:   CommandSummary,
		Short: "Print stock totals per warehouse",
		RunE: func(c *cobra.Command, args []string) error {
			db, err := cmd.OpenDB()
			if err != nil {
				return err
			}
			return PrintSummary(c, db)
		},
	})

	cron.Register(JobReconcile, config.CronSchedule(JobReconcile, reconcileDefault), Reconcile)

	api.RegisterGET(VersionPath, VersionHandler)
}

// StockBySKU resolves inventory totals for one product.
func StockBySKU(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	sku, err := gqlregistry.StringArg(args, "sku", true)
	if err != nil {
		return nil, err
	}
	db := graphql.DBFromContext(ctx)
	if db == nil {
		return nil, errors.New("no database in context")
	}
	repo := productRepo.NewProductRepository(db)
	p, err := repo.FindBySKU(sku)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s, err := repo.StockSummary(p.ID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"sku":               p.SKU,
		"name":              p.Name,
		"quantity":          s.Quantity,
		"reservedQuantity":  s.ReservedQuantity,
		"availableQuantity": s.AvailableQuantity,
		"warehouses":        s.Warehouses,
	}, nil
}

// Reconcile repairs inventory rows whose available quantity drifted.
func Reconcile(ctx context.Context, db *gorm.DB) error {
	n, err := inventoryRepo.NewInventoryRepository(db.WithContext(ctx)).Reconcile()
	if err != nil {
		return err
	}
	if n > 0 {
		config.GetLogger().WithFields(logrus.Fields{"job": JobReconcile, "rows": n}).Warn("available quantity repaired")
	}
	return nil
}

// PrintSummary writes one line per warehouse followed by the grand total.
func PrintSummary(c *cobra.Command, db *gorm.DB) error {
	warehouses, err := warehouseRepo.NewWarehouseRepository(db).All()
	if err != nil {
		return err
	}
	inv := inventoryRepo.NewInventoryRepository(db)
	out := c.OutOrStdout()
	for _, w := range warehouses {
		t, err := inv.Totals(w.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%-12s qty=%d reserved=%d available=%d value=%.2f\n", w.Code, t.Quantity, t.Reserved, t.Available, t.Value)
	}
	t, err := inv.Totals(0)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%-12s qty=%d reserved=%d available=%d value=%.2f\n", "TOTAL", t.Quantity, t.Reserved, t.Available, t.Value)
	return nil
}

func VersionHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"name":    config.GetConfig().AppName,
		"version": Version,
	})
}
