//go:build !cli
// +build !cli

package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"

	"github.com/common-nighthawk/go-figure"

	_ "warehouse.GO/api/auth"
	_ "warehouse.GO/api/category"
	_ "warehouse.GO/api/dashboard"
	_ "warehouse.GO/api/document"
	_ "warehouse.GO/api/graphql"
	_ "warehouse.GO/api/health"
	_ "warehouse.GO/api/inventory"
	_ "warehouse.GO/api/movement"
	_ "warehouse.GO/api/partner"
	_ "warehouse.GO/api/product"
	_ "warehouse.GO/api/report"
	_ "warehouse.GO/api/stock"
	_ "warehouse.GO/api/user"
	_ "warehouse.GO/api/warehouse"
	_ "warehouse.GO/custom"

	"warehouse.GO/config"
	"warehouse.GO/core/cache"
	"warehouse.GO/migrations"
	"warehouse.GO/model/entity"
	"warehouse.GO/server"
)

func main() {
	config.LoadEnv()
	config.LoadAppConfig()
	config.ConfigureLogger()
	logger := config.GetLogger()
	cfg := config.GetConfig()
	entity.PasswordCost = cfg.BcryptCost

	config.InitRedis()
	logger.Info(config.PingRedis(context.Background()))
	if config.RedisClient != nil {
		cache.GetInstance().WithRedis(config.RedisClient)
	}

	db, err := config.NewDB()
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to DB")
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.WithError(err).Fatal("failed to get DB instance")
	}
	if err := sqlDB.Ping(); err != nil {
		logger.WithError(err).Fatal("database connection failed")
	}
	logger.Info("Database connection successful.")
	if config.GetEnv("AUTO_MIGRATE", "") == "true" {
		if err := migrations.Auto(db); err != nil {
			logger.WithError(err).Fatal("auto migrate failed")
		}
	}

	e := server.New(db, cfg, logger)

	fonts := []string{"standard", "slant", "small", "big", "doom", "larry3d"}
	figure.NewFigure("warehouse.GO", fonts[rand.Intn(len(fonts))], true).Print()
	fmt.Printf("\n%s (%s) on :%s\n", cfg.AppName, cfg.Env, cfg.Port)

	if err := server.Run(e, ":"+cfg.Port, logger); err != nil {
		logger.WithError(err).Error("server stopped")
		os.Exit(1)
	}
}
