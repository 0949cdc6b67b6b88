package backend

// Backend paths
const (
	IngestPath = "/ingest"
	HealthPath = "/health"
)

// IngestRequest represents the body of POST /ingest
type IngestRequest struct {
	All bool `json:"all"`
}

// IngestAll is the only payload the desktop shell sends
var IngestAll = IngestRequest{All: true}

// IngestResponse represents the backend reply to POST /ingest.
// The shell only needs the status code; the body is informational.
type IngestResponse struct {
	JobID   string                   `json:"job_id"`
	Stats   map[string]int           `json:"stats"`
	Results []map[string]interface{} `json:"results"`
}

// HealthResponse represents GET /health
type HealthResponse struct {
	OK bool `json:"ok"`
}
