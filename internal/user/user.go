// Package user names the person running a sync client.
package user

import (
	"os"
	"os/user"
	"strings"
)

// EnvName overrides the detected name
const EnvName = "PASOSYNC_USER"

// Name returns the display name a client reports to the sync server.
// It tries, in order: PASOSYNC_USER, the OS account, the USER environment
// variable, and finally "unknown".
func Name() string {
	if name := strings.TrimSpace(os.Getenv(EnvName)); name != "" {
		return name
	}

	if currentUser, err := user.Current(); err == nil && currentUser.Username != "" {
		return currentUser.Username
	}

	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "unknown"
}
