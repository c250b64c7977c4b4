package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRoute(t *testing.T) {
	cases := map[string]string{
		"/api/organisations":                              "/api/organisations",
		"/api/organisations/abc-123":                      "/api/organisations/{orgId}",
		"/api/organisations/abc-123/users":                "/api/organisations/{orgId}/users",
		"/api/users/0b9af1e2-5a55-4a6e-9a3f-1f2e3d4c5b6a": "/api/users/{id}",
		"/auth/register":                                  "/auth/register",
		"/health":                                         "/health",
	}

	for path, expected := range cases {
		assert.Equal(t, expected, normalizeRoute(path), "path %q", path)
	}
}

func TestHandler_Uninitialized(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHTTPMetricsMiddleware_PassesThroughWhenUninitialized(t *testing.T) {
	called := false
	handler := HTTPMetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/organisations", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestInitialize_PrometheusExporter(t *testing.T) {
	err := Initialize(Config{
		ExporterType:   "prometheus",
		ServiceName:    "identity-backend-test",
		ServiceVersion: "test",
	})
	assert.NoError(t, err)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Counters are live after initialization
	RecordAuthEvent("login", "success")
}

func TestInitialize_UnknownExporter(t *testing.T) {
	err := Initialize(Config{ExporterType: "graphite", ServiceName: "identity-backend-test"})
	assert.Error(t, err)
}

func TestInitialize_OTLPRequiresEndpoint(t *testing.T) {
	err := Initialize(Config{ExporterType: "otlp", ServiceName: "identity-backend-test"})
	assert.Error(t, err)
}
