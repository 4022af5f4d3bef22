// Package graphql mounts the read-only GraphQL endpoint and its playground.
package graphql

import (
	"net/http"

	gql "github.com/graph-gophers/graphql-go"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"warehouse.GO/api"
	"warehouse.GO/core/auth"
	graphqlpkg "warehouse.GO/graphql"
	"warehouse.GO/graphqlserver"
	"warehouse.GO/service/search"
)

func init() {
	api.RegisterRoute(RegisterGraphQLRoutes)
}

func RegisterGraphQLRoutes(e *echo.Echo, db *gorm.DB) {
	schema, err := graphqlserver.NewSchema(db, search.GetService(db))
	if err != nil {
		panic("graphql schema: " + err.Error())
	}
	Routes(e, schema, auth.Middleware(db))
}

// Routes registers /graphql behind authn and the public /playground page.
func Routes(e *echo.Echo, schema *gql.Schema, authn echo.MiddlewareFunc) {
	handler := graphqlserver.Handler(schema)
	serve := func(c echo.Context) error {
		r := c.Request()
		if u := auth.CurrentUser(c); u != nil {
			r = r.WithContext(graphqlpkg.WithUser(r.Context(), u))
		}
		handler.ServeHTTP(c.Response(), r)
		return nil
	}
	e.POST("/graphql", serve, authn)
	e.GET("/graphql", serve, authn)
	e.GET("/playground", echo.WrapHandler(playgroundHandler()))
}

func playgroundHandler() http.Handler {
	html := `<!DOCTYPE html>
<html>
<head>
	<title>GraphQL Playground</title>
	<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/graphql-playground-react/build/static/css/index.css"/>
</head>
<body>
	<div id="root"/>
	<script src="https://cdn.jsdelivr.net/npm/graphql-playground-react/build/static/js/middleware.js"></script>
	<script>window.addEventListener('load', function() {
		var token = window.localStorage.getItem('accessToken');
		GraphQLPlayground.init(document.getElementById('root'), {
			endpoint: '/graphql',
			headers: token ? { Authorization: 'Bearer ' + token } : {}
		});
	})</script>
</body>
</html>`
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(html))
	})
}
