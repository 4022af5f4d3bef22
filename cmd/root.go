// Package cmd holds the operator CLI built with cobra.
package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"warehouse.GO/config"
	"warehouse.GO/model/entity"
)

var rootCmd = &cobra.Command{
	Use:          "warehouse",
	Short:        "warehouse.GO operator commands",
	SilenceUsage: true,
}

// Execute adds the registered extension commands and runs the CLI.
func Execute() {
	Apply()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// OpenDB loads config, connects Redis when configured and opens the database.
func OpenDB() (*gorm.DB, error) {
	config.LoadAppConfig()
	config.ConfigureLogger()
	config.InitRedis()
	config.GetLogger().Info(config.PingRedis(context.Background()))
	entity.PasswordCost = config.GetConfig().BcryptCost
	return config.NewDB()
}
