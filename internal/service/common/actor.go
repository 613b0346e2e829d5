//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"
	"os"
	"os/user"
)

// DetectIdentity derives a default caller identity as username@hostname.
// Operators without an explicit --as flag act under this identity.
func DetectIdentity() (string, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("hostname: %w", err)
	}

	currentUser, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("current user: %w", err)
	}

	return currentUser.Username + "@" + hostname, nil
}

// ResolveIdentity returns explicit when set, otherwise the detected identity.
func ResolveIdentity(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	return DetectIdentity()
}
