package health

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lanclip/lanclip/internal/logging"
)

func staticChecker(name string, status Status) Checker {
	return CheckerFunc(name, func() (Status, string) { return status, "" })
}

func TestManagerAggregatesWorstStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"no checkers", nil, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"one unhealthy", []Status{StatusDegraded, StatusUnhealthy}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager("test", logging.DiscardLogger())
			for i, s := range tt.statuses {
				m.Register(staticChecker(string(rune('a'+i)), s))
			}
			report := m.Check()
			assert.Equal(t, tt.want, report.Status)
			assert.Len(t, report.Components, len(tt.statuses))
		})
	}
}

func TestManagerReRegisterReplaces(t *testing.T) {
	m := NewManager("test", logging.DiscardLogger())
	m.Register(staticChecker("clipboard", StatusUnhealthy))
	m.Register(staticChecker("clipboard", StatusHealthy))

	report := m.Check()
	assert.Equal(t, StatusHealthy, report.Status)
	assert.Len(t, report.Components, 1)
}

func TestHandlerHealthy(t *testing.T) {
	m := NewManager("1.0.0", logging.DiscardLogger())
	m.Register(staticChecker("clipboard", StatusHealthy))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	require.Equal(t, 200, rec.Code)

	var report Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, StatusHealthy, report.Status)
	assert.Equal(t, "1.0.0", report.Version)
	assert.Contains(t, report.Components, "clipboard")
}

func TestHandlerUnhealthyReturns503(t *testing.T) {
	m := NewManager("1.0.0", logging.DiscardLogger())
	m.Register(staticChecker("network", StatusUnhealthy))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, 503, rec.Code)
}

func TestCheckerFuncCarriesMessage(t *testing.T) {
	c := CheckerFunc("network", func() (Status, string) {
		return StatusDegraded, "flapping"
	})
	component := c.Check()
	assert.Equal(t, "network", component.Name)
	assert.Equal(t, StatusDegraded, component.Status)
	assert.Equal(t, "flapping", component.Message)
	assert.False(t, component.LastChecked.IsZero())
}
