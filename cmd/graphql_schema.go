package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"warehouse.GO/graphql"
)

var graphqlSchemaCmd = &cobra.Command{
	Use:   "graphql:schema",
	Short: "Print the GraphQL schema",
	Run: func(c *cobra.Command, args []string) {
		fmt.Fprint(c.OutOrStdout(), graphql.Schema())
	},
}

func init() {
	rootCmd.AddCommand(graphqlSchemaCmd)
}
