package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"warehouse.GO/service/search"
)

var searchReindexCmd = &cobra.Command{
	Use:   "search:reindex",
	Short: "Rebuild the Elasticsearch product index",
	RunE: func(c *cobra.Command, args []string) error {
		db, err := OpenDB()
		if err != nil {
			return err
		}
		n, err := search.GetService(db).Reindex(c.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(c.OutOrStdout(), "Indexed %d products\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchReindexCmd)
}
