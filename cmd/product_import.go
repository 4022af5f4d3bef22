package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	productService "warehouse.GO/service/product"
	"warehouse.GO/service/stock"
)

var (
	importFile  string
	importBatch int
)

var importCmd = &cobra.Command{
	Use:   "products:import",
	Short: "Import products and opening stock from CSV",
	RunE: func(c *cobra.Command, args []string) error {
		f, err := os.Open(importFile)
		if err != nil {
			return fmt.Errorf("open CSV: %w", err)
		}
		defer f.Close()

		db, err := OpenDB()
		if err != nil {
			return err
		}
		res, err := productService.ImportProducts(c.Context(), db, stock.NewDefaultService(db), f, productService.ImportOptions{
			BatchSize: importBatch,
		})
		if err != nil {
			return err
		}

		out := c.OutOrStdout()
		for _, w := range res.Warnings {
			fmt.Fprintf(out, "  [warn] %s\n", w)
		}
		fmt.Fprintf(out, `
=== Import Report ===
CSV rows:       %d
Created:        %d
Updated:        %d
Skipped:        %d
Stock set:      %d
Process time:   %s
DB time:        %s
Total time:     %s
`, res.TotalRows, res.Created, res.Updated, res.Skipped, res.Stocked, res.ProcessTime, res.DBTime, res.TotalTime)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "CSV file (columns: sku,name,category_code,unit,...,warehouse_code,location_code,qty)")
	importCmd.Flags().IntVarP(&importBatch, "batch", "b", 500, "rows per insert batch")
	importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
