package config

import (
	"os"
	"sync"
)

// containerMarker exists in every Docker container filesystem.
const containerMarker = "/.dockerenv"

// dockerHostGateway reaches services published on the Docker host.
const dockerHostGateway = "host.docker.internal"

var detectContainer = sync.OnceValue(func() bool {
	_, err := os.Stat(containerMarker)
	return err == nil
})

// IsRunningInDocker reports whether the process runs inside a Docker container.
func IsRunningInDocker() bool {
	return detectContainer()
}

// ResolveHostForDocker points loopback hosts at the Docker host gateway when running in a
// container, so a row store or Redis started on the host stays reachable.
func ResolveHostForDocker(host string) string {
	return resolveHost(host, IsRunningInDocker())
}

func resolveHost(host string, inContainer bool) string {
	if !inContainer {
		return host
	}
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return dockerHostGateway
	}
	// Empty stays empty: an empty Redis host disables the profile cache.
	return host
}
