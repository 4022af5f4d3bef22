// Package graphqlserver builds the read-only GraphQL schema served at /graphql.
package graphqlserver

import (
	gql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"gorm.io/gorm"

	"warehouse.GO/graphql"
	"warehouse.GO/graphql/resolvers"
	"warehouse.GO/service/search"
)

// RootResolver is the root for graphql-go. Query fields are the promoted methods of
// resolvers.QueryResolver.
type RootResolver struct {
	*resolvers.QueryResolver
}

// NewSchema parses the schema (base plus registered extensions) against the resolvers.
func NewSchema(db *gorm.DB, finder *search.Service) (*gql.Schema, error) {
	root := &RootResolver{QueryResolver: resolvers.NewQueryResolver(db, finder)}
	return gql.ParseSchema(graphql.Schema(), root,
		gql.UseFieldResolvers(),
		gql.MaxDepth(8),
	)
}

// Handler returns an http.Handler for GraphQL (relay format).
func Handler(schema *gql.Schema) *relay.Handler {
	return &relay.Handler{Schema: schema}
}
