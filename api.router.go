package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// MiddlewareMap contains middlwares chain to
// use for public-facing and ops requests.
type MiddlewareMap struct {
	public func(httprouter.Handle) httprouter.Handle
	ops    func(httprouter.Handle) httprouter.Handle
}

// SetupRoutes injects book and ops related endpoints if required.
func (api *APIHandler) SetupRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.RedirectTrailingSlash = true
	router.HandleMethodNotAllowed = true
	router.NotFound = api.NotFound()
	router.MethodNotAllowed = api.MethodNotAllowed()
	api.SetupBookRoutes(router, m)
	if api.config.OpsEndpointsEnable {
		api.SetupOpsRoutes(router, m)
	}
	return router
}

// NotFound is the handler used when no route matches the request.
func (api *APIHandler) NotFound() http.Handler {
	return api.fallback(http.StatusNotFound, RouteNotFoundDetail)
}

// MethodNotAllowed is the handler used when the route exists
// but does not support the request method.
func (api *APIHandler) MethodNotAllowed() http.Handler {
	return api.fallback(http.StatusMethodNotAllowed, MethodNotAllowedDetail)
}

func (api *APIHandler) fallback(status int, detail string) http.Handler {
	h := api.fallbackStack().Chain(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		api.GetLoggerFromContext(r.Context()).Info("route not served",
			zap.String("request.method", r.Method),
			zap.String("request.path", r.URL.Path),
			zap.Int("response.status", status),
		)
		api.sendError(w, r, status, detail)
	})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h(w, r, nil)
	})
}
