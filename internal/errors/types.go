package errors

// standardized JSON error body
type ErrorResponse struct {
	Error   string            `json:"error"`             // error code (e.g., "unauthorized", "conflict")
	Message string            `json:"message"`           // user-friendly message
	Details string            `json:"details,omitempty"` // sanitized in production
	Issues  map[string]string `json:"issues,omitempty"`  // per-field validation failures
}

type ErrorInfo struct {
	category  string
	sanitized string
}
