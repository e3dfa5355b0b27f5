package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mfg/loader"
	"mfg/respond"
)

func TestSetupRoutes(t *testing.T) {
	db, err := loader.OpenDatabase(t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mux := http.NewServeMux()
	SetupRoutes(mux, db)
	handler := respond.Middleware(mux)

	for _, path := range []string{"/api/companies", "/api/categories", "/api/units/map", "/api/workorders", "/api/orders/without_workorder", "/api/config", "/metrics"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"), path)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/workorders/details", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRootCommandHasSubcommands(t *testing.T) {
	cmd := newRootCommand()
	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "initdb", "seed", "import-details", "generate-details"} {
		assert.True(t, names[want], want)
	}
}
