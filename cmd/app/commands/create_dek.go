package commands

import (
	"context"
	"fmt"
	"log/slog"

	cryptoUseCase "github.com/keywarden/keywarden/internal/crypto/usecase"
)

// dekResult is what create-dek prints.
type dekResult struct {
	ID    uint32 `json:"id"`
	Name  string `json:"name"`
	KekID string `json:"kekId"`
}

// RunCreateDek generates a fresh DEK, wraps it under the current KEK and
// makes it the default for new encryptions.
//
// Requires a loaded keyring only for subsequent seal operations; creation
// itself talks to the KMS directly.
func RunCreateDek(
	ctx context.Context,
	dekUseCase cryptoUseCase.DekUseCase,
	logger *slog.Logger,
	io CommandIO,
	name, format string,
) error {
	logger.Info("creating new dek", slog.String("name", name))

	dek, err := dekUseCase.Create(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to create dek: %w", err)
	}

	result := dekResult{
		ID:    dek.ID,
		Name:  dek.Name,
		KekID: dek.KekID,
	}

	if format == "json" {
		outputJSON(result, io.Writer)
	} else {
		writeLine(io.Writer, "DEK created")
		writeLine(io.Writer, "  ID:     %d", result.ID)
		writeLine(io.Writer, "  Name:   %s", result.Name)
		writeLine(io.Writer, "  KEK ID: %s", result.KekID)
	}

	logger.Info("dek created successfully",
		slog.Any("dek_id", dek.ID),
		slog.String("kek_id", dek.KekID),
	)

	return nil
}
