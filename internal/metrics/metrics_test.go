package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAreSafeBeforeInit(t *testing.T) {
	// must not panic when Init was never called
	IncPage()
	IncReport(OutcomeProcessed)
	IncGeoLookup(true)
	AddSources(3)
}

func TestInitAndIncrement(t *testing.T) {
	Init()
	Init() // idempotent

	IncPage()
	IncReport(OutcomeSkipped)
	IncGeoLookup(false)
	AddSources(2)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "chronik_pages_total")
	assert.Contains(t, body, "chronik_reports_total")
	assert.Contains(t, body, "chronik_geo_lookups_total")
	assert.Contains(t, body, "chronik_sources_total")
}
