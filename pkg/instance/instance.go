package instance

import (
	"os"

	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/env"
)

const envInstanceID = "NOWAROUND_INSTANCE_ID"

// GetID names the running process in logs. It prefers NOWAROUND_INSTANCE_ID,
// then the host name.
func GetID() string {
	if id := env.Get(envInstanceID, ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
