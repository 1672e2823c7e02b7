package health

import "context"

// Response represents the health check response
type Response struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Version  string `json:"version,omitempty"`
	AuthMode string `json:"auth_mode,omitempty"`
	Database string `json:"database,omitempty"`
}

// anything that can report backing-store reachability; *pgxpool.Pool satisfies it
type Pinger interface {
	Ping(ctx context.Context) error
}
