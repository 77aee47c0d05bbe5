package main

import (
	"github.com/julienschmidt/httprouter"
	httpswagger "github.com/swaggo/http-swagger/v2"
)

// SetupBookRoutes injects book related the api endpoints. The books
// collection is served both at the root and under the /v1 prefix.
func (api *APIHandler) SetupBookRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.RedirectTrailingSlash = true
	router.GET("/", m.public(api.Index))
	router.GET("/status", m.public(api.Status))
	router.GET("/openapi.json", m.public(api.OpenAPI))
	router.GET("/swagger/*any", m.public(api.OpsHandlerWrapper(httpswagger.WrapHandler)))

	for _, prefix := range []string{"", "/v1"} {
		router.POST(prefix+"/books", m.public(api.CreateBook))
		router.GET(prefix+"/books", m.public(api.GetAllBooks))
		router.GET(prefix+"/books/:id", m.public(api.GetOneBook))
		router.PUT(prefix+"/books/:id", m.public(api.UpdateBook))
		router.DELETE(prefix+"/books/:id", m.public(api.DeleteOneBook))
	}
	return router
}
