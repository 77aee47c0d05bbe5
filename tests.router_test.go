package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

// TestSetupBookRoutes ensures all expected book endpoints are implemented.
func TestSetupBookRoutes(t *testing.T) {
	testCases := []struct {
		name        string
		request     *http.Request
		implemented bool
	}{
		{"index endpoint", httptest.NewRequest(http.MethodGet, "/", nil), true},
		{"status endpoint", httptest.NewRequest(http.MethodGet, "/status", nil), true},
		{"openapi endpoint", httptest.NewRequest(http.MethodGet, "/openapi.json", nil), true},
		{"swagger ui endpoint", httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil), true},
		{"create book endpoint", httptest.NewRequest(http.MethodPost, "/books", nil), true},
		{"fetch all books endpoint", httptest.NewRequest(http.MethodGet, "/books", nil), true},
		{"fetch all books endpoint with slash", httptest.NewRequest(http.MethodGet, "/books/", nil), true},
		{"fetch single book endpoint", httptest.NewRequest(http.MethodGet, "/books/1", nil), true},
		{"update book endpoint", httptest.NewRequest(http.MethodPut, "/books/1", nil), true},
		{"delete book endpoint", httptest.NewRequest(http.MethodDelete, "/books/1", nil), true},
		{"versioned create book endpoint", httptest.NewRequest(http.MethodPost, "/v1/books", nil), true},
		{"versioned fetch single book endpoint", httptest.NewRequest(http.MethodGet, "/v1/books/1", nil), true},
		{"invalid api endpoint", httptest.NewRequest(http.MethodGet, "/v1", nil), false},
		{"invalid books endpoint", httptest.NewRequest(http.MethodGet, "/v2/books", nil), false},
	}

	api, _ := newTestAPIHandler(nil, nil, nil)
	router := httprouter.New()
	m := &MiddlewareMap{public: (&Middlewares{}).Chain, ops: (&Middlewares{}).Chain}
	api.SetupBookRoutes(router, m)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, tc.request)
			if tc.implemented {
				assert.NotEqual(t, 404, w.Code)
			} else {
				assert.Equal(t, 404, w.Code)
			}
		})
	}
}

// TestSetupOpsRoutes ensures all expected operations endpoints are implemented.
func TestSetupOpsRoutes(t *testing.T) {
	testCases := []struct {
		name        string
		request     *http.Request
		implemented bool
	}{
		{"fetch configs endpoint", httptest.NewRequest(http.MethodGet, "/ops/configs", nil), true},
		{"fetch stats endpoint", httptest.NewRequest(http.MethodGet, "/ops/stats", nil), true},
		{"maintenance mode endpoint", httptest.NewRequest(http.MethodGet, "/ops/maintenance?status=disable", nil), true},
		{"metrics endpoint", httptest.NewRequest(http.MethodGet, "/ops/metrics", nil), true},
		{"mirror endpoint", httptest.NewRequest(http.MethodGet, "/ops/mirror", nil), true},
		{"reset books endpoint", httptest.NewRequest(http.MethodDelete, "/ops/books", nil), true},
		{"debug vars endpoint", httptest.NewRequest(http.MethodGet, "/ops/debug/vars", nil), true},
		{"invalid ops endpoint", httptest.NewRequest(http.MethodGet, "/ops", nil), false},
		{"unknown ops endpoint", httptest.NewRequest(http.MethodGet, "/ops/unknown", nil), false},
		{"disabled profiler endpoint", httptest.NewRequest(http.MethodGet, "/ops/debug/pprof/", nil), false},
	}

	api, _ := newTestAPIHandler(&Config{ProfilerEndpointsEnable: false}, nil, nil)
	router := httprouter.New()
	m := &MiddlewareMap{public: (&Middlewares{}).Chain, ops: (&Middlewares{}).Chain}
	api.SetupOpsRoutes(router, m)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, tc.request)
			if tc.implemented {
				assert.NotEqual(t, 404, w.Code)
			} else {
				assert.Equal(t, 404, w.Code)
			}
		})
	}
}

// TestSetupRoutes ensures ops endpoints are only served when enabled.
func TestSetupRoutes(t *testing.T) {
	testCases := []struct {
		name               string
		OpsEndpointsEnable bool
		ProfilerEnable     bool
		request            *http.Request
		implemented        bool
	}{
		{"ops disable:fetch configs endpoint", false, false, httptest.NewRequest(http.MethodGet, "/ops/configs", nil), false},
		{"ops enable:fetch configs endpoint", true, false, httptest.NewRequest(http.MethodGet, "/ops/configs", nil), true},
		{"ops disable:profiler endpoint", false, true, httptest.NewRequest(http.MethodGet, "/ops/debug/pprof/", nil), false},
		{"ops enable:disabled profiler endpoint", true, false, httptest.NewRequest(http.MethodGet, "/ops/debug/pprof/", nil), false},
		{"ops enable:enabled profiler endpoint", true, true, httptest.NewRequest(http.MethodGet, "/ops/debug/pprof/cmdline", nil), true},
		{"ops disable:create book endpoint", false, false, httptest.NewRequest(http.MethodPost, "/books", nil), true},
		{"ops enable:create book endpoint", true, false, httptest.NewRequest(http.MethodPost, "/books", nil), true},
		{"invalid book endpoint", false, false, httptest.NewRequest(http.MethodGet, "/x/books/", nil), false},
	}

	m := &MiddlewareMap{public: (&Middlewares{}).Chain, ops: (&Middlewares{}).Chain}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := &Config{OpsEndpointsEnable: tc.OpsEndpointsEnable, ProfilerEndpointsEnable: tc.ProfilerEnable}
			api, _ := newTestAPIHandler(config, nil, nil)
			router := api.SetupRoutes(httprouter.New(), m)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, tc.request)
			if tc.implemented {
				assert.NotEqual(t, 404, w.Code)
			} else {
				assert.Equal(t, 404, w.Code)
			}
		})
	}
}

// TestSetupRoutes_NotFound ensures exact status code and json response body when a user requests an inexistant route.
func TestSetupRoutes_NotFound(t *testing.T) {
	api, _ := newTestAPIHandler(nil, nil, nil)
	router := newTestBooksRouter(api)
	res := doRequest(t, router, http.MethodGet, "/x/books/", "")

	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "application/json; charset=UTF-8", res.Header.Get("Content-Type"))
	assert.Equal(t, "r:abc", res.Header.Get("X-Request-ID"))
	assert.JSONEq(t, `{"detail":"Not Found"}`, readBody(t, res))
	assert.Equal(t, uint64(1), api.stats.status[http.StatusNotFound])
}

// TestSetupRoutes_MethodNotAllowed ensures a json body is sent for unsupported methods.
func TestSetupRoutes_MethodNotAllowed(t *testing.T) {
	api, _ := newTestAPIHandler(nil, nil, nil)
	router := newTestBooksRouter(api)
	res := doRequest(t, router, http.MethodPatch, "/books/1", `{"title":"x"}`)

	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
	assert.Contains(t, res.Header.Get("Allow"), http.MethodPut)
	assert.JSONEq(t, `{"detail":"Method Not Allowed"}`, readBody(t, res))
}
