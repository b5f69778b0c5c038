// Package health reports component liveness over HTTP, served from the
// same mux as the metrics endpoint.
package health

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Status grades a component or the whole node.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

var componentStatus = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "lanclip_component_health",
		Help: "Component health (1=healthy, 0.5=degraded, 0=unhealthy)",
	},
	[]string{"component"},
)

// Component is one checker's verdict.
type Component struct {
	Name        string    `json:"name"`
	Status      Status    `json:"status"`
	Message     string    `json:"message,omitempty"`
	LastChecked time.Time `json:"last_checked"`
}

// Report is the aggregate answer returned to HTTP clients.
type Report struct {
	Status     Status               `json:"status"`
	Timestamp  time.Time            `json:"timestamp"`
	Uptime     time.Duration        `json:"uptime"`
	Version    string               `json:"version"`
	Goroutines int                  `json:"goroutines"`
	Components map[string]Component `json:"components"`
}

// Checker is one probeable component.
type Checker interface {
	Name() string
	Check() Component
}

// CheckerFunc adapts a probe function into a Checker.
func CheckerFunc(name string, probe func() (Status, string)) Checker {
	return funcChecker{name: name, probe: probe}
}

type funcChecker struct {
	name  string
	probe func() (Status, string)
}

func (f funcChecker) Name() string { return f.name }

func (f funcChecker) Check() Component {
	status, msg := f.probe()
	return Component{
		Name:        f.name,
		Status:      status,
		Message:     msg,
		LastChecked: time.Now(),
	}
}

// Manager runs all registered checkers on demand.
type Manager struct {
	start   time.Time
	version string
	log     *zap.Logger

	mu       sync.Mutex
	checkers map[string]Checker
}

// NewManager builds an empty manager.
func NewManager(version string, log *zap.Logger) *Manager {
	return &Manager{
		start:    time.Now(),
		version:  version,
		log:      log,
		checkers: make(map[string]Checker),
	}
}

// Register adds a checker; later registrations with the same name win.
func (m *Manager) Register(c Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkers[c.Name()] = c
}

// Check probes every component and aggregates the worst status.
func (m *Manager) Check() *Report {
	m.mu.Lock()
	checkers := make([]Checker, 0, len(m.checkers))
	for _, c := range m.checkers {
		checkers = append(checkers, c)
	}
	m.mu.Unlock()

	report := &Report{
		Status:     StatusHealthy,
		Timestamp:  time.Now(),
		Uptime:     time.Since(m.start),
		Version:    m.version,
		Goroutines: runtime.NumGoroutine(),
		Components: make(map[string]Component),
	}
	for _, c := range checkers {
		component := c.Check()
		report.Components[component.Name] = component
		componentStatus.WithLabelValues(component.Name).Set(statusValue(component.Status))

		switch component.Status {
		case StatusUnhealthy:
			report.Status = StatusUnhealthy
		case StatusDegraded:
			if report.Status == StatusHealthy {
				report.Status = StatusDegraded
			}
		}
	}
	return report
}

func statusValue(s Status) float64 {
	switch s {
	case StatusHealthy:
		return 1
	case StatusDegraded:
		return 0.5
	default:
		return 0
	}
}

// Handler serves the JSON report; unhealthy nodes answer 503.
func (m *Manager) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		report := m.Check()
		w.Header().Set("Content-Type", "application/json")
		if report.Status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		if err := json.NewEncoder(w).Encode(report); err != nil {
			m.log.Warn("health response encode failed", zap.Error(err))
		}
	})
}
