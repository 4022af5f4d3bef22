package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"warehouse.GO/config"
	"warehouse.GO/model/entity"
)

// SeedOptions names the initial administrator.
type SeedOptions struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// SeedResult counts the rows a seed run created.
type SeedResult struct {
	Users      int
	Categories int
	Warehouses int
}

var seedCategories = []entity.Category{
	{Code: "GENERAL", Name: "General goods"},
	{Code: "SPARE", Name: "Spare parts"},
	{Code: "PACKAGING", Name: "Packaging"},
}

func seedWarehouse() entity.Warehouse {
	zones := []entity.Zone{
		{Code: "A", Name: "Zone A", Locations: []entity.Location{{Code: "A-01", Name: "Rack A-01"}, {Code: "A-02", Name: "Rack A-02"}}},
		{Code: "B", Name: "Zone B", Locations: []entity.Location{{Code: "B-01", Name: "Rack B-01"}}},
	}
	return entity.Warehouse{Code: "MAIN", Name: "Main warehouse", Zones: datatypes.NewJSONType(zones)}
}

// Seed inserts the administrator, base categories and a main warehouse. Existing rows are kept.
func Seed(db *gorm.DB, opts SeedOptions) (*SeedResult, error) {
	res := &SeedResult{}
	err := db.Transaction(func(tx *gorm.DB) error {
		var u entity.User
		err := tx.Where("username = ?", opts.AdminUsername).First(&u).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			u = entity.User{
				Username: opts.AdminUsername,
				Email:    opts.AdminEmail,
				Password: opts.AdminPassword,
				FullName: "Administrator",
				Role:     entity.RoleAdmin,
				IsActive: true,
			}
			if err := tx.Create(&u).Error; err != nil {
				return err
			}
			res.Users++
		} else if err != nil {
			return err
		}

		for _, c := range seedCategories {
			c.IsActive = true
			created, err := createMissing(tx, &c, c.Code)
			if err != nil {
				return err
			}
			if created {
				res.Categories++
			}
		}

		w := seedWarehouse()
		w.IsActive = true
		w.ManagerID = &u.ID
		created, err := createMissing(tx, &w, w.Code)
		if err != nil {
			return err
		}
		if created {
			res.Warehouses++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// createMissing inserts dest unless a row with the same code exists.
func createMissing(tx *gorm.DB, dest interface{}, code string) (bool, error) {
	var n int64
	if err := tx.Model(dest).Where("code = ?", code).Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	return true, tx.Create(dest).Error
}

var seedOpts SeedOptions

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the admin user, base categories and the main warehouse",
	RunE: func(c *cobra.Command, args []string) error {
		db, err := OpenDB()
		if err != nil {
			return err
		}
		if seedOpts.AdminUsername == "" {
			seedOpts.AdminUsername = config.GetEnv("SEED_ADMIN_USERNAME", "admin")
		}
		if seedOpts.AdminEmail == "" {
			seedOpts.AdminEmail = config.GetEnv("SEED_ADMIN_EMAIL", "admin@warehouse.local")
		}
		if seedOpts.AdminPassword == "" {
			seedOpts.AdminPassword = config.GetEnv("SEED_ADMIN_PASSWORD", "admin123")
		}
		res, err := Seed(db, seedOpts)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.OutOrStdout(), "Seeded users=%d categories=%d warehouses=%d\n", res.Users, res.Categories, res.Warehouses)
		if res.Users > 0 && seedOpts.AdminPassword == "admin123" {
			fmt.Fprintln(c.OutOrStdout(), "Default admin password in use, change it after the first login.")
		}
		return nil
	},
}

func init() {
	f := seedCmd.Flags()
	f.StringVar(&seedOpts.AdminUsername, "admin-user", "", "administrator username (SEED_ADMIN_USERNAME, default admin)")
	f.StringVar(&seedOpts.AdminEmail, "admin-email", "", "administrator email (SEED_ADMIN_EMAIL)")
	f.StringVar(&seedOpts.AdminPassword, "admin-password", "", "administrator password (SEED_ADMIN_PASSWORD)")
	rootCmd.AddCommand(seedCmd)
}
