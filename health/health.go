// Package health reports whether a hedwig validator has a usable schema document.
package health

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/glimte/hedwig-go/contracts"
	"github.com/glimte/hedwig-go/schema"
)

// Status represents the health status
type Status string

const (
	// StatusHealthy means a document is installed and the last load succeeded
	StatusHealthy Status = "healthy"
	// StatusDegraded means the last reload failed and the previous document is still served
	StatusDegraded Status = "degraded"
	// StatusUnhealthy means no document has ever been installed
	StatusUnhealthy Status = "unhealthy"
)

// Report describes the schema document currently in use
type Report struct {
	Status    Status              `json:"status"`
	Timestamp time.Time           `json:"timestamp"`
	Root      string              `json:"root,omitempty"`
	Schemas   map[string][]string `json:"schemas,omitempty"`
	LoadedAt  *time.Time          `json:"loaded_at,omitempty"`
	Issues    []string            `json:"issues,omitempty"`
	Error     string              `json:"error,omitempty"`
}

// SchemaChecker tracks the installed schema document and the outcome of the last load
type SchemaChecker struct {
	mu       sync.RWMutex
	doc      *schema.Document
	loadedAt time.Time
	lastErr  error
	now      func() time.Time
}

// NewSchemaChecker creates a checker with no document installed
func NewSchemaChecker() *SchemaChecker {
	return &SchemaChecker{now: time.Now}
}

// Install records doc as the document in use and clears any previous load failure
func (c *SchemaChecker) Install(doc *schema.Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.doc = doc
	c.loadedAt = c.now()
	c.lastErr = nil
}

// Reject records a failed load. The installed document, if any, stays in use.
func (c *SchemaChecker) Reject(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = err
}

// Document returns the installed document, or nil
func (c *SchemaChecker) Document() *schema.Document {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.doc
}

// Report summarizes the installed document and the last load failure
func (c *SchemaChecker) Report() Report {
	c.mu.RLock()
	defer c.mu.RUnlock()

	report := Report{Timestamp: c.now()}

	switch {
	case c.doc == nil:
		report.Status = StatusUnhealthy
	case c.lastErr != nil:
		report.Status = StatusDegraded
	default:
		report.Status = StatusHealthy
	}

	if c.doc != nil {
		loadedAt := c.loadedAt
		report.Root = c.doc.RootID()
		report.LoadedAt = &loadedAt
		report.Schemas = make(map[string][]string)
		for _, t := range c.doc.MessageTypes() {
			report.Schemas[t] = c.doc.Versions(t)
		}
	}

	if c.lastErr != nil {
		var schemaErr *contracts.SchemaError
		if errors.As(c.lastErr, &schemaErr) {
			report.Issues = schemaErr.Issues
		} else {
			report.Error = c.lastErr.Error()
		}
	}

	return report
}

// Handler serves the checker report as JSON, with 503 while no document is installed
func Handler(checker *SchemaChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := checker.Report()

		body, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			http.Error(w, "Failed to encode health response", http.StatusInternalServerError)
			return
		}

		statusCode := http.StatusOK
		if report.Status == StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_, _ = w.Write(body)
	}
}

// ReadinessHandler reports "ready" once a document is installed
func ReadinessHandler(checker *SchemaChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker.Document() == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}
}

// LivenessHandler provides a simple liveness check
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("alive"))
	}
}
