package commands

import (
	"fmt"
	"io"
)

// RunGenKeys prints a random 32-byte KEK and token signing key, hex-encoded,
// for development setups using the local KMS provider.
func RunGenKeys(w io.Writer) error {
	kek, err := randomHex(32)
	if err != nil {
		return fmt.Errorf("failed to generate kek: %w", err)
	}
	signingKey, err := randomHex(32)
	if err != nil {
		return fmt.Errorf("failed to generate signing key: %w", err)
	}

	writeLine(w, "DEV_KEK=%s", kek)
	writeLine(w, "AUTH_SIGNING_KEY=%s", signingKey)
	return nil
}
