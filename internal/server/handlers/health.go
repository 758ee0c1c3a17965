package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	apperrors "github.com/skonghq/skong/internal/errors"
)

// HealthChecker reports whether one dependency of the server is usable.
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

// HealthResponse is the body of a successful health check.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// HealthManager runs registered checkers and serves the health endpoints.
type HealthManager struct {
	version string

	mu       sync.RWMutex
	checkers map[string]HealthChecker
}

var (
	healthMu             sync.RWMutex
	defaultHealthManager *HealthManager
)

// NewHealthManager creates a manager reporting the given version.
func NewHealthManager(version string) *HealthManager {
	return &HealthManager{
		version:  version,
		checkers: make(map[string]HealthChecker),
	}
}

// InitHealthManager installs the process-wide health manager.
func InitHealthManager(version string) *HealthManager {
	healthMu.Lock()
	defer healthMu.Unlock()
	defaultHealthManager = NewHealthManager(version)
	return defaultHealthManager
}

// GetHealthManager returns the process-wide manager, creating a default
// one if InitHealthManager has not been called.
func GetHealthManager() *HealthManager {
	healthMu.Lock()
	defer healthMu.Unlock()
	if defaultHealthManager == nil {
		defaultHealthManager = NewHealthManager("dev")
	}
	return defaultHealthManager
}

// RegisterChecker adds a named dependency check.
func (m *HealthManager) RegisterChecker(name string, checker HealthChecker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkers[name] = checker
}

// HealthHandler runs all checkers. Any failure produces a 503 with the
// per-check results in the error details.
func (m *HealthManager) HealthHandler(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	checkers := make(map[string]HealthChecker, len(m.checkers))
	for name, c := range m.checkers {
		checkers[name] = c
	}
	m.mu.RUnlock()

	checks := make(map[string]string, len(checkers))
	healthy := true
	for name, c := range checkers {
		if err := c.CheckHealth(r.Context()); err != nil {
			checks[name] = err.Error()
			healthy = false
		} else {
			checks[name] = "healthy"
		}
	}

	if !healthy {
		details := make(map[string]any, len(checks))
		for name, status := range checks {
			details[name] = status
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(apperrors.HTTPErrorResponse{
			Error: apperrors.HTTPError{
				Code:    apperrors.CodeServiceUnavailable,
				Message: "one or more health checks failed",
				Details: details,
			},
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(HealthResponse{
		Status:  "healthy",
		Version: m.version,
		Checks:  checks,
	})
}

// LivenessHandler always reports alive; it proves only that the process
// is serving requests.
func (m *HealthManager) LivenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "alive"})
}

// ReadinessHandler is the full health check under its readiness alias.
func (m *HealthManager) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	m.HealthHandler(w, r)
}
