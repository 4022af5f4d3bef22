// Package jobs registers the built-in scheduled jobs. Import it for its side effects.
package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"warehouse.GO/config"
	"warehouse.GO/core/auth"
	"warehouse.GO/cron"
	productRepo "warehouse.GO/model/repository/product"
	"warehouse.GO/service/search"
)

const (
	TokensPurge   = "tokens:purge"
	StockLowAlert = "stock:lowalert"
	SearchReindex = "search:reindex"
	lowAlertLimit = 200
)

func init() {
	cron.Register(TokensPurge, config.CronSchedule(TokensPurge, "@hourly"), PurgeTokens)
	cron.Register(StockLowAlert, config.CronSchedule(StockLowAlert, "*/30 * * * *"), LowStockAlert)
	cron.Register(SearchReindex, config.CronSchedule(SearchReindex, "0 2 * * *"), ReindexProducts)
}

// PurgeTokens deletes blacklist rows whose token already expired.
func PurgeTokens(ctx context.Context, db *gorm.DB) error {
	n, err := auth.NewDefaultBlacklist(db.WithContext(ctx)).Purge(time.Now())
	if err != nil {
		return err
	}
	config.GetLogger().WithField("purged", n).Info("tokens: expired blacklist entries removed")
	return nil
}

// LowStockAlert logs one warning per active product at or below its minimum stock.
func LowStockAlert(ctx context.Context, db *gorm.DB) error {
	rows, err := productRepo.NewProductRepository(db.WithContext(ctx)).LowStock(lowAlertLimit)
	if err != nil {
		return err
	}
	logger := config.GetLogger()
	for _, r := range rows {
		logger.WithFields(logrus.Fields{
			"sku":       r.SKU,
			"quantity":  r.Quantity,
			"available": r.Available,
			"minStock":  r.MinStock,
			"shortage":  r.Shortage,
		}).Warn("stock: product below minimum")
	}
	logger.WithField("count", len(rows)).Info("stock: low-stock scan done")
	return nil
}

// ReindexProducts rebuilds the product search index. A no-op without Elasticsearch.
func ReindexProducts(ctx context.Context, db *gorm.DB) error {
	svc := search.GetService(db)
	if !svc.Enabled() {
		config.GetLogger().Info("search: elasticsearch not configured, reindex skipped")
		return nil
	}
	n, err := svc.Reindex(ctx)
	if err != nil {
		return err
	}
	config.GetLogger().WithField("indexed", n).Info("search: products reindexed")
	return nil
}
