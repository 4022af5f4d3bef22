// Standalone GraphQL server — run with: go run ./cmd/graphql
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"

	"github.com/common-nighthawk/go-figure"

	_ "warehouse.GO/api/graphql"
	_ "warehouse.GO/api/health"
	_ "warehouse.GO/custom"

	"warehouse.GO/config"
	"warehouse.GO/server"
)

func main() {
	config.LoadEnv()
	config.LoadAppConfig()
	config.ConfigureLogger()
	logger := config.GetLogger()
	cfg := config.GetConfig()
	config.InitRedis()
	logger.Info(config.PingRedis(context.Background()))

	db, err := config.NewDB()
	if err != nil {
		logger.WithError(err).Fatal("db")
	}

	e := server.New(db, cfg, logger)

	// ASCII banner on start (random font each run)
	gqlFonts := []string{"banner", "big", "block", "slant", "standard", "small", "shadow", "speed", "thick", "doom", "larry3d"}
	figure.NewFigure("warehouse GQL", gqlFonts[rand.Intn(len(gqlFonts))], true).Print()
	fmt.Println("Standalone GraphQL server")

	logger.Infof("GraphQL at http://localhost:%s/graphql  Playground at http://localhost:%s/playground", cfg.Port, cfg.Port)
	if err := server.Run(e, ":"+cfg.Port, logger); err != nil {
		logger.WithError(err).Error("server stopped")
		os.Exit(1)
	}
}
