package instance

import (
	"os"

	"github.com/angelmondragon/retailpos-backend/pkg/env"
)

// ID identifies this process in logs: RETAILPOS_WORKER_ID, then the platform
// dyno name, then the hostname, then fallback.
func ID(fallback string) string {
	if id := env.First("", "RETAILPOS_WORKER_ID", "DYNO"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return fallback
}
