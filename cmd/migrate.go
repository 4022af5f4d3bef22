package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"warehouse.GO/config"
	"warehouse.GO/migrations"
)

var downSteps int

func requireMySQL() error {
	if driver := config.GetEnv("DB_DRIVER", "mysql"); driver != "mysql" {
		return fmt.Errorf("SQL migrations target MySQL, DB_DRIVER is %q: use migrate:auto", driver)
	}
	return nil
}

var migrateUpCmd = &cobra.Command{
	Use:   "migrate:up",
	Short: "Apply pending SQL migrations (MySQL)",
	RunE: func(c *cobra.Command, args []string) error {
		if err := requireMySQL(); err != nil {
			return err
		}
		db, err := OpenDB()
		if err != nil {
			return err
		}
		v, err := migrations.Up(db)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.OutOrStdout(), "Schema at version %d\n", v)
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "migrate:down",
	Short: "Roll back SQL migrations (MySQL)",
	RunE: func(c *cobra.Command, args []string) error {
		if err := requireMySQL(); err != nil {
			return err
		}
		db, err := OpenDB()
		if err != nil {
			return err
		}
		v, err := migrations.Down(db, downSteps)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.OutOrStdout(), "Schema at version %d\n", v)
		return nil
	},
}

var migrateAutoCmd = &cobra.Command{
	Use:   "migrate:auto",
	Short: "Create or update tables from the models (any driver)",
	RunE: func(c *cobra.Command, args []string) error {
		db, err := OpenDB()
		if err != nil {
			return err
		}
		if err := migrations.Auto(db); err != nil {
			return err
		}
		fmt.Fprintln(c.OutOrStdout(), "Tables migrated")
		return nil
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&downSteps, "steps", 1, "number of migrations to roll back")
	rootCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateAutoCmd)
}
