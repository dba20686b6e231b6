package commands

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	authDomain "github.com/keywarden/keywarden/internal/auth/domain"
	authUseCase "github.com/keywarden/keywarden/internal/auth/usecase"
)

// clientResult is what create-client prints. The secret is the plaintext the
// caller must hand to the client; it is never stored or shown again.
type clientResult struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Secret      string   `json:"secret"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// RunCreateClient registers a new API client. When secret is empty a random
// one is generated. Roles and permissions are comma-separated lists.
func RunCreateClient(
	ctx context.Context,
	clientUseCase authUseCase.ClientUseCase,
	logger *slog.Logger,
	io CommandIO,
	name, secret, rolesCSV, permissionsCSV, format string,
) error {
	logger.Info("creating new client", slog.String("name", name))

	if secret == "" {
		generated, err := randomHex(32)
		if err != nil {
			return fmt.Errorf("failed to generate client secret: %w", err)
		}
		secret = generated
	}

	input := &authDomain.RegisterClientInput{
		Name:        name,
		Secret:      secret,
		Roles:       splitCSV(rolesCSV),
		Permissions: splitCSV(permissionsCSV),
	}

	client, err := clientUseCase.Register(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	result := clientResult{
		ID:          client.ID.String(),
		Name:        client.Name,
		Secret:      secret,
		Roles:       client.Roles,
		Permissions: client.Permissions,
	}

	if format == "json" {
		outputJSON(result, io.Writer)
	} else {
		writeLine(io.Writer, "Client created")
		writeLine(io.Writer, "  ID:          %s", result.ID)
		writeLine(io.Writer, "  Name:        %s", result.Name)
		writeLine(io.Writer, "  Secret:      %s", result.Secret)
		writeLine(io.Writer, "  Roles:       %s", strings.Join(result.Roles, ", "))
		writeLine(io.Writer, "  Permissions: %s", strings.Join(result.Permissions, ", "))
		writeLine(io.Writer, "Store the secret now; it cannot be recovered later.")
	}

	logger.Info("client created successfully",
		slog.String("client_id", result.ID),
		slog.String("name", name),
	)

	return nil
}

// splitCSV parses a comma-separated list, trimming whitespace and dropping
// empty items.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// randomHex returns n random bytes hex-encoded.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
